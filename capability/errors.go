package capability

import "errors"

// ErrProbePanicked is logged when a probe's check panics.
var ErrProbePanicked = errors.New("capability probe panicked")
