// internal/activities/handler.go
package activities

import (
	"net/http"

	"mergington-activities/internal/common/errors"
	"mergington-activities/internal/common/logger"
)

// Handler exposes the service over HTTP.
type Handler struct {
	service    *Service
	errHandler *errors.ErrorHandler
}

func NewHandler(service *Service, log logger.Logger) *Handler {
	return &Handler{
		service:    service,
		errHandler: errors.NewErrorHandler(log),
	}
}

// RegisterRoutes mounts the activity endpoints on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /activities", h.list)
	mux.HandleFunc("POST /activities/{name}/signup", h.signup)
	mux.HandleFunc("DELETE /activities/{name}/unregister", h.unregister)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	errors.WriteJSON(w, http.StatusOK, h.service.List(r.Context()))
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Signup(r.Context(), r.PathValue("name"), r.URL.Query().Get("email"))
	if err != nil {
		h.errHandler.HandleHTTPError(w, r, err)
		return
	}
	errors.WriteJSON(w, http.StatusOK, MessageResponse{Message: result.Message})
}

func (h *Handler) unregister(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Unregister(r.Context(), r.PathValue("name"), r.URL.Query().Get("email"))
	if err != nil {
		h.errHandler.HandleHTTPError(w, r, err)
		return
	}
	errors.WriteJSON(w, http.StatusOK, MessageResponse{Message: result.Message})
}
