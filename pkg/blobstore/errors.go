package blobstore

import "github.com/zeebo/errs"

// Error is the root class for blob-store failures.
var Error = errs.Class("blobstore")

// NotFound indicates the key does not exist (spec §4.3 step 1's "404-like").
var NotFound = errs.Class("blobstore: not found")

// Transient indicates a retryable backend failure.
var Transient = errs.Class("blobstore: transient")
