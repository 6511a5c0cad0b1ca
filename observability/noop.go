package observability

import "context"

// NoOpObserver discards all events with zero overhead.
type NoOpObserver struct{}

func (NoOpObserver) OnEvent(ctx context.Context, event Event) {}

// Noop returns an Observer that discards everything. Useful as a default
// before a real sink is wired in.
func Noop() Observer {
	return NoOpObserver{}
}
