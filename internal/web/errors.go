package web

// errors.go provides unified error response handling for the web layer.
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls respondError(w, r, err)
//  3. Error is mapped via core.MapError to get a user-friendly message and code
//  4. The code picks the HTTP status
//  5. Technical error is logged with the request ID, the user message is sent
//     as JSON for API routes and as an HTML alert elsewhere

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/JonMunkholm/filemeta/internal/core"
	"github.com/JonMunkholm/filemeta/internal/logging"
	"github.com/JonMunkholm/filemeta/internal/web/templates"
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// statusByCode maps user message codes to HTTP statuses. Unlisted codes are 500.
var statusByCode = map[string]int{
	"FILE001": http.StatusRequestEntityTooLarge,
	"FILE002": http.StatusNotFound,
	"FILE003": http.StatusUnprocessableEntity,
	"FILE004": http.StatusBadRequest,
	"FMT001":  http.StatusUnprocessableEntity,
	"FMT002":  http.StatusBadRequest,
	"FMT003":  http.StatusUnprocessableEntity,
	"ENC001":  http.StatusBadRequest,
	"OPT001":  http.StatusBadRequest,
	"ANL001":  http.StatusServiceUnavailable,
	"ANL003":  http.StatusGatewayTimeout,
	"ANL004":  http.StatusNotFound,
	"ANL005":  http.StatusNotFound,
}

// statusFor returns the HTTP status for a user message code.
func statusFor(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// respondError logs the technical error server-side and returns the mapped
// user message.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	userMsg := core.MapError(err)
	status := statusFor(userMsg.Code)

	logger := logging.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		logger.Error("request error", "path", r.URL.Path, "status", status, "error", err.Error(), "code", userMsg.Code)
	} else {
		logger.Warn("request rejected", "path", r.URL.Path, "status", status, "error", err.Error(), "code", userMsg.Code)
	}

	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "5")
	}

	if wantsJSON(r) {
		respondErrorJSON(w, userMsg, status)
	} else {
		renderErrorAlert(w, r, userMsg, status)
	}
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, msg core.UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// renderErrorAlert writes the user message as an HTML alert fragment.
func renderErrorAlert(w http.ResponseWriter, r *http.Request, msg core.UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	templates.ErrorAlert(msg.Message, msg.Action, msg.Code).Render(r.Context(), w)
}

// wantsJSON checks if the client prefers a JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}

	// API routes default to JSON
	return strings.HasPrefix(r.URL.Path, "/api/")
}
