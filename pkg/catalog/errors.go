package catalog

import "github.com/zeebo/errs"

// Error is the root class for every error this package returns. Catalog
// callers should never see a bare pgx/sql error — everything crossing the
// package boundary is wrapped in one of the classes below so handlers can
// branch on error kind without string matching.
var Error = errs.Class("catalog")

// NotFound indicates a row did not exist, or existed but was scoped away
// (wrong owner, already deleted). Catalog intentionally does not
// distinguish "absent" from "not yours" — see spec §7: that collapse
// happens here, not just at the HTTP layer, so no caller can leak
// existence by inspecting the error.
var NotFound = errs.Class("catalog: not found")

// AlreadyExists indicates a unique-constraint violation: duplicate
// username on add_user, or duplicate (user_id, hash) on add_media.
var AlreadyExists = errs.Class("catalog: already exists")

// Transient indicates a retryable backend failure (connection loss,
// statement timeout) as opposed to a data-shape problem.
var Transient = errs.Class("catalog: transient")
