package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"storefront-session/internal/model"
	"storefront-session/internal/service"
)

// UserHandler serves the admin-only user lookups of the back office.
type UserHandler struct {
	service *service.SessionService
}

func NewUserHandler(svc *service.SessionService) *UserHandler {
	return &UserHandler{service: svc}
}

func (h *UserHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	user, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, model.VerifyPayload{User: user})
}
