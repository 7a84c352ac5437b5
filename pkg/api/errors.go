// Package api is the HTTP surface of spec §6: registration/login/refresh,
// the upload ingress, and the stateless sync/browse/faces/search
// endpoints. It is the single layer that maps domain error classes from
// pkg/catalog, pkg/blobstore, pkg/bus, and pkg/authcore to HTTP status
// codes (spec §7).
package api

import (
	"errors"
	"net/http"

	"github.com/Chronolens/chronolens/pkg/authcore"
	"github.com/Chronolens/chronolens/pkg/blobstore"
	"github.com/Chronolens/chronolens/pkg/bus"
	"github.com/Chronolens/chronolens/pkg/catalog"
)

// statusFor maps a domain error to the HTTP status spec §7 assigns it.
// Unrecognized errors (a leaky driver error that slipped past a
// collaborator's own wrapping) fall back to 500.
func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case catalog.AlreadyExists.Has(err):
		return http.StatusForbidden
	case catalog.NotFound.Has(err):
		return http.StatusForbidden
	case catalog.Transient.Has(err):
		return http.StatusInternalServerError
	case blobstore.NotFound.Has(err):
		return http.StatusForbidden
	case blobstore.Transient.Has(err):
		return http.StatusInternalServerError
	case bus.Transient.Has(err):
		return http.StatusInternalServerError
	case authcore.Forbidden.Has(err):
		return http.StatusForbidden
	case authcore.Unauthorized.Has(err):
		return http.StatusUnauthorized
	case authcore.BadRequest.Has(err):
		return http.StatusBadRequest
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, errPreconditionFailed):
		return http.StatusPreconditionFailed
	case errors.Is(err, errUnsupportedMediaType):
		return http.StatusUnsupportedMediaType
	default:
		return http.StatusInternalServerError
	}
}

// Sentinel validation errors for the ingress's own request parsing (spec
// §4.2 step 1), which has no collaborator to wrap it in a domain class.
var (
	errBadRequest           = errors.New("malformed request")
	errPreconditionFailed   = errors.New("precondition failed")
	errUnsupportedMediaType = errors.New("unsupported media type")
)
