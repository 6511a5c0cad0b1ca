package tutor

import "errors"

// ErrUnknownSession is returned by History for ids the store has never
// issued. History lookups never create sessions as a side effect, unlike
// HandleQuestion which silently resolves unknown ids to fresh sessions.
var ErrUnknownSession = errors.New("unknown session")
