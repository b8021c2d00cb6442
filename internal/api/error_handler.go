package api

import (
	"net/http"
	"strings"

	"github.com/vytor/worddee/internal/errors"
	"github.com/vytor/worddee/internal/logger"
)

// handleError centralizes error responses outside the page flows: JSON for
// clients that ask for it, plain text otherwise.
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())

	appErr, ok := errors.As(err)
	if !ok {
		appErr = errors.NewInternalError(err)
	}

	switch {
	case appErr.Status >= 500:
		log.Error("server error: %v", appErr)
	case appErr.Status >= 400:
		log.Warn("client error: %v", appErr)
	default:
		log.Debug("error: %v", appErr)
	}

	if wantsJSON(r) {
		writeJSON(w, r, appErr.Status, errorBody(appErr.Code, appErr.Message))
		return
	}
	http.Error(w, appErr.Message, appErr.Status)
}

func errorBody(code, message string) map[string]any {
	return map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	}
}

// statusOf maps err to the HTTP status a page render should carry.
func statusOf(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if appErr, ok := errors.As(err); ok {
		return appErr.Status
	}
	return http.StatusInternalServerError
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
