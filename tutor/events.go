package tutor

import "github.com/homework-ai/tutor/observability"

// Engine event types emitted while answering a question.
const (
	EventSessionStart    observability.EventType = "tutor.session.start"
	EventQuestion        observability.EventType = "tutor.question"
	EventInvalidQuestion observability.EventType = "tutor.question.invalid"
	EventAnswer          observability.EventType = "tutor.answer"
	EventBackendError    observability.EventType = "tutor.backend.error"
	EventParseError      observability.EventType = "tutor.parse.error"
)
