package server

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

// APIError is the JSON error body returned by every failing endpoint.
type APIError struct {
	Status    int    `json:"-"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

// Render implements render.Renderer.
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.Status)
	return nil
}

func errNotFound(code, message string) *APIError {
	return &APIError{Status: http.StatusNotFound, Code: code, Message: message}
}

func errInternal(message string) *APIError {
	return &APIError{Status: http.StatusInternalServerError, Code: "INTERNAL_ERROR", Message: message}
}

// respondError attaches the request ID and renders the error body.
func respondError(w http.ResponseWriter, r *http.Request, apiErr *APIError) {
	apiErr.RequestID = middleware.GetReqID(r.Context())
	_ = render.Render(w, r, apiErr)
}
