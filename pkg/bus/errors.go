package bus

import "github.com/zeebo/errs"

// Error is the root class for message-bus failures.
var Error = errs.Class("bus")

// Transient indicates a retryable publish/request failure.
var Transient = errs.Class("bus: transient")
