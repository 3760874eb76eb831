// internal/app/features/errors/logger.go
package errors

import (
	"net/http"

	"go.uber.org/zap"
)

// ErrorLogger pairs zap logging with user-facing error rendering so
// handlers can report a failure in one call. The log message carries the
// technical detail; the user message stays generic.
type ErrorLogger struct {
	log *zap.Logger
}

// NewErrorLogger constructs an ErrorLogger around the given zap logger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{log: logger}
}

// LogServerError logs an internal error and renders a 500 page.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	e.log.Error(logMsg,
		zap.Error(err),
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method),
	)
	RenderServerError(w, r, userMsg, backURL)
}

// LogBadRequest logs a client error and renders a 400 page.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	e.log.Warn(logMsg,
		zap.Error(err),
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method),
	)
	RenderBadRequest(w, r, userMsg, backURL)
}

// LogForbidden logs a denied action and renders a 403 page.
func (e *ErrorLogger) LogForbidden(w http.ResponseWriter, r *http.Request, logMsg string, userMsg, backURL string) {
	e.log.Warn(logMsg,
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method),
	)
	RenderForbidden(w, r, userMsg, backURL)
}

// HTMXLogServerError logs an internal error and returns a plain 500 body
// suitable for an HTMX swap target.
func (e *ErrorLogger) HTMXLogServerError(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	e.log.Error(logMsg,
		zap.Error(err),
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method),
	)
	http.Error(w, userMsg, http.StatusInternalServerError)
}

// HTMXLogBadRequest logs a client error and returns a plain 400 body
// suitable for an HTMX swap target.
func (e *ErrorLogger) HTMXLogBadRequest(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	e.log.Warn(logMsg,
		zap.Error(err),
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method),
	)
	http.Error(w, userMsg, http.StatusBadRequest)
}

// HTMXLogForbidden logs a denied action and returns a plain 403 body.
func (e *ErrorLogger) HTMXLogForbidden(w http.ResponseWriter, r *http.Request, logMsg string, userMsg, backURL string) {
	e.log.Warn(logMsg,
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method),
	)
	http.Error(w, userMsg, http.StatusForbidden)
}
