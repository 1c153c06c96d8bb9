// response.go - JSON response envelope shared by every endpoint.
package server

import (
	"encoding/json"
	"net/http"
)

// apiResponse is the envelope every endpoint answers with.
type apiResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, resp apiResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func writeSuccess(w http.ResponseWriter, status int, data any, message string) {
	writeJSON(w, status, apiResponse{Success: true, Message: message, Data: data})
}

// writeError resolves validation, auth, and not-found failures at the
// boundary. These are client faults and are not logged.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, apiResponse{Success: false, Message: message, Error: message})
}

// writeServerError reports a dependency or configuration fault. The
// generic message goes to the caller together with the underlying error
// text for diagnostics; callers log the detail before getting here.
func writeServerError(w http.ResponseWriter, message string, err error) {
	resp := apiResponse{Success: false, Message: message, Error: message}
	if err != nil {
		resp.Error = err.Error()
	}
	writeJSON(w, http.StatusInternalServerError, resp)
}
