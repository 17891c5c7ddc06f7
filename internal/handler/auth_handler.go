package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"storefront-session/internal/middleware"
	"storefront-session/internal/model"
	"storefront-session/internal/service"
	"storefront-session/internal/session"
	"storefront-session/pkg/apierror"
)

const authCookieName = session.SlotName

// AuthHandler exposes the session operations over HTTP. Login, register and
// logout go through the cache so the persisted slot and sibling contexts stay
// in sync; the stateless operations talk to the service directly.
type AuthHandler struct {
	service   *service.SessionService
	cache     *session.Cache
	validate  *validator.Validate
	cookieTTL time.Duration
}

func NewAuthHandler(svc *service.SessionService, cache *session.Cache, cookieTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		service:   svc,
		cache:     cache,
		validate:  validator.New(),
		cookieTTL: cookieTTL,
	}
}

func (h *AuthHandler) decodeAndValidate(r *http.Request, payload any) error {
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(payload); err != nil {
		return apierror.BadRequest("invalid JSON body", "")
	}

	if err := h.validate.Struct(payload); err != nil {
		var details []string
		if fieldErrors, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range fieldErrors {
				details = append(details, fmt.Sprintf("%s: failed %s", fe.Field(), fe.Tag()))
			}
		}
		return apierror.ValidationFailed(strings.Join(details, "; "))
	}

	return nil
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload model.LoginRequest
	if err := h.decodeAndValidate(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	res, err := h.cache.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	h.setAuthCookie(w, res.Token)
	writeSuccess(w, http.StatusOK, model.SessionPayload{User: res.User, Token: res.Token})
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload model.RegisterRequest
	if err := h.decodeAndValidate(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	res, err := h.cache.Register(r.Context(), payload.Email, payload.Password, payload.Name, payload.Phone)
	if err != nil {
		writeError(w, err)
		return
	}

	h.setAuthCookie(w, res.Token)
	writeSuccess(w, http.StatusCreated, model.SessionPayload{User: res.User, Token: res.Token})
}

// Verify resolves the presented token without requiring the auth middleware,
// so clients can probe a stored token and get a precise failure code.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	token := requestToken(r)
	if token == "" {
		writeError(w, apierror.Unauthorized("missing token"))
		return
	}

	user, err := h.service.Verify(r.Context(), token)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, model.VerifyPayload{User: user})
}

// Logout clears the slot and the cookie unconditionally; there is no failure
// mode a client needs to handle.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.cache.Logout(r.Context())
	h.clearAuthCookie(w)
	writeSuccess(w, http.StatusOK, map[string]any{"logged_out": true})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthorized)
		return
	}

	writeSuccess(w, http.StatusOK, model.VerifyPayload{User: *user})
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthorized)
		return
	}

	var payload model.ChangePasswordRequest
	if err := h.decodeAndValidate(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.ChangePassword(r.Context(), user.ID, payload.CurrentPassword, payload.NewPassword); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"changed": true})
}

func (h *AuthHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var payload model.ResetRequestRequest
	if err := h.decodeAndValidate(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	if _, err := h.service.RequestPasswordReset(r.Context(), payload.Email); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"sent": true})
}

func (h *AuthHandler) ConfirmPasswordReset(w http.ResponseWriter, r *http.Request) {
	var payload model.ResetConfirmRequest
	if err := h.decodeAndValidate(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.ConfirmPasswordReset(r.Context(), payload.Token, payload.NewPassword); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"reset": true})
}

func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthorized)
		return
	}

	var payload model.UpdateProfileRequest
	if err := h.decodeAndValidate(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	updated, err := h.service.UpdateProfile(r.Context(), user.ID, payload.Name, payload.Phone)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, model.VerifyPayload{User: updated})
}

func (h *AuthHandler) setAuthCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cookieTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearAuthCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func requestToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return strings.TrimSpace(header[7:])
	}

	if cookie, err := r.Cookie(authCookieName); err == nil {
		return cookie.Value
	}
	return ""
}
