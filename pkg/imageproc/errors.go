package imageproc

import "github.com/zeebo/errs"

// Error is the root class for image/EXIF processing failures.
var Error = errs.Class("imageproc")

// Unparseable indicates the source bytes could not be decoded at all —
// the worker-poison case of spec §4.3 step 1 / §4.4 step 4 (Term, not
// retried).
var Unparseable = errs.Class("imageproc: unparseable")
