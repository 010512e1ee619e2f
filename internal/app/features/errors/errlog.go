// internal/app/features/errors/errlog.go
package errors

import (
	"net/http"

	"github.com/dalemusser/tilestock/internal/app/system/authz"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// ErrorLogger pairs structured logging with user-facing error pages so
// handlers report failures in one call instead of repeating the log,
// status and render dance everywhere.
type ErrorLogger struct {
	log *zap.Logger
}

// NewErrorLogger constructs an ErrorLogger around the app logger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{log: logger}
}

// LogBadRequest logs a client error and renders an error page with a 400.
// userMsg is shown to the user; the error detail stays in the log.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	e.log.Warn(logMsg,
		zap.Error(err),
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method))
	e.render(w, r, http.StatusBadRequest, "Invalid request", userMsg, backURL)
}

// LogNotFound logs a missing-record lookup and renders a 404 page.
func (e *ErrorLogger) LogNotFound(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	e.log.Warn(logMsg,
		zap.Error(err),
		zap.String("path", r.URL.Path))
	e.render(w, r, http.StatusNotFound, "Not found", userMsg, backURL)
}

// LogServerError logs a server-side failure and renders a 500 page.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	e.log.Error(logMsg,
		zap.Error(err),
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method))
	e.render(w, r, http.StatusInternalServerError, "Something went wrong", userMsg, backURL)
}

func (e *ErrorLogger) render(w http.ResponseWriter, r *http.Request, status int, title, msg, backURL string) {
	role, name, _, signedIn := authz.UserCtx(r)
	if backURL == "" {
		backURL = "/dashboard"
	}

	w.WriteHeader(status)
	templates.Render(w, r, "error_page", pageData{
		Title:      title,
		IsLoggedIn: signedIn,
		Role:       role,
		UserName:   name,
		Message:    msg,
		BackURL:    backURL,
	})
}
