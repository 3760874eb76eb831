// internal/app/features/errors/fault.go
package errors

import (
	"errors"
	"net/http"

	"github.com/dalemusser/arenahub/internal/app/service/fault"
)

// LogFault maps a service-layer failure to the right error page.
//
// Authorization failures render forbidden, conflicts and invalid input
// render bad-request with the service's own message, and not-found
// renders a 404 (which is also how the services report hidden
// organizations and events to outsiders). Anything else is treated as a
// server error.
func (e *ErrorLogger) LogFault(w http.ResponseWriter, r *http.Request, logMsg string, err error, backURL string) {
	switch {
	case errors.Is(err, fault.ErrNotAuthorized):
		e.LogForbidden(w, r, logMsg, "You don't have permission to do that.", backURL)
	case errors.Is(err, fault.ErrNotFound):
		RenderNotFound(w, r, "Not found.", backURL)
	case errors.Is(err, fault.ErrConflict), errors.Is(err, fault.ErrInvalid):
		RenderBadRequest(w, r, userMessage(err), backURL)
	default:
		e.LogServerError(w, r, logMsg, err, "A server error occurred.", backURL)
	}
}

// userMessage strips the wrapped sentinel suffix (": conflict",
// ": invalid input") so the reason reads cleanly on the page.
func userMessage(err error) string {
	msg := err.Error()
	for _, sentinel := range []error{fault.ErrConflict, fault.ErrInvalid} {
		suffix := ": " + sentinel.Error()
		if len(msg) > len(suffix) && msg[len(msg)-len(suffix):] == suffix {
			return msg[:len(msg)-len(suffix)] + "."
		}
	}
	return msg
}
