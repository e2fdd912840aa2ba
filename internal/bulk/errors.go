package bulk

import "errors"

// ErrSkipped marks items not attempted because an earlier item failed and
// ContinueOnError was false.
var ErrSkipped = errors.New("skipped after earlier failure")
