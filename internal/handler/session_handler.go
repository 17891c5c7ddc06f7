package handler

import (
	"net/http"

	"storefront-session/internal/session"
)

// SessionHandler exposes the process-level session cache: its current
// snapshot and a gated view that waits out the loading state.
type SessionHandler struct {
	cache *session.Cache
	gate  *session.Gate
}

func NewSessionHandler(cache *session.Cache, gate *session.Gate) *SessionHandler {
	return &SessionHandler{cache: cache, gate: gate}
}

type sessionStatus struct {
	IsLoading       bool `json:"is_loading"`
	IsAuthenticated bool `json:"is_authenticated"`
	User            any  `json:"user,omitempty"`
}

func (h *SessionHandler) Status(w http.ResponseWriter, r *http.Request) {
	snap := h.cache.Snapshot()

	status := sessionStatus{
		IsLoading:       snap.Loading,
		IsAuthenticated: snap.Authenticated,
	}
	if snap.User != nil {
		status.User = *snap.User
	}
	writeSuccess(w, http.StatusOK, status)
}

// Account suspends until the cache has resolved, then requires an
// authenticated session. Unlike Status it never reports a half-initialized
// state.
func (h *SessionHandler) Account(w http.ResponseWriter, r *http.Request) {
	user, err := h.gate.Authorize(r.Context(), "")
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"user": *user})
}
