package health

import "errors"

// ErrStale is returned by checks whose component has stopped making progress.
var ErrStale = errors.New("health: component stalled")
