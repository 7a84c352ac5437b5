package authcore

import "github.com/zeebo/errs"

// Error is the root class for auth-core failures.
var Error = errs.Class("authcore")

// Forbidden covers spec §4.1's "forbidden" outcomes: unknown user,
// bcrypt mismatch, expired refresh, or refresh/access mismatch.
var Forbidden = errs.Class("authcore: forbidden")

// BadRequest covers undecodable tokens.
var BadRequest = errs.Class("authcore: bad request")

// Unauthorized covers middleware rejection: missing/malformed header,
// decode failure, or now outside [iat, exp].
var Unauthorized = errs.Class("authcore: unauthorized")
