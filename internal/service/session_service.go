package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"storefront-session/internal/credential"
	"storefront-session/internal/model"
	"storefront-session/internal/repository"
	"storefront-session/internal/token"
)

// ResetSender delivers a password-reset token out of band (mail, SMS). The
// default implementation only logs; delivery is not this service's concern.
type ResetSender func(ctx context.Context, email string, resetToken string)

func logResetSender(ctx context.Context, email string, resetToken string) {
	slog.Info("password reset requested", "email", email)
}

// SessionResult is what login and register hand back: the sanitized user and
// a freshly signed session token.
type SessionResult struct {
	User  model.AuthUser
	Token string
}

// SessionService orchestrates login, registration, verification and the
// password flows. Every operation either fully succeeds or returns a typed
// error; callers never observe partial session state.
type SessionService struct {
	users       repository.UserStore
	creds       *credential.Store
	codec       *token.Codec
	sessionTTL  time.Duration
	resetTTL    time.Duration
	resetSender ResetSender
	now         func() time.Time
}

func NewSessionService(
	users repository.UserStore,
	creds *credential.Store,
	codec *token.Codec,
	sessionTTL time.Duration,
	resetTTL time.Duration,
) *SessionService {
	return &SessionService{
		users:       users,
		creds:       creds,
		codec:       codec,
		sessionTTL:  sessionTTL,
		resetTTL:    resetTTL,
		resetSender: logResetSender,
		now:         time.Now,
	}
}

// SetResetSender swaps the out-of-band delivery channel.
func (s *SessionService) SetResetSender(sender ResetSender) {
	if sender != nil {
		s.resetSender = sender
	}
}

func (s *SessionService) Login(ctx context.Context, email string, password string) (SessionResult, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		// Unknown email and bad password are indistinguishable to callers.
		if errors.Is(err, model.ErrUserNotFound) {
			return SessionResult{}, model.ErrInvalidCredentials
		}
		return SessionResult{}, err
	}

	if !user.IsActive || !s.creds.Verify(password, user.PasswordHash) {
		return SessionResult{}, model.ErrInvalidCredentials
	}

	now := s.now().UTC()
	user, err = s.users.Update(ctx, user.ID, model.UserPatch{LastLoginAt: &now})
	if err != nil {
		return SessionResult{}, err
	}

	signed, err := s.codec.Issue(user.ID, user.Email, user.Role, s.sessionTTL)
	if err != nil {
		return SessionResult{}, err
	}

	return SessionResult{User: user.Sanitized(), Token: signed}, nil
}

func (s *SessionService) Register(ctx context.Context, email string, password string, name string, phone string) (SessionResult, error) {
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return SessionResult{}, model.ErrDuplicateEmail
	} else if !errors.Is(err, model.ErrUserNotFound) {
		return SessionResult{}, err
	}

	hash, err := s.creds.Hash(password)
	if err != nil {
		return SessionResult{}, err
	}

	user := model.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		Phone:        phone,
		PasswordHash: hash,
		Role:         model.RoleCustomer,
		IsActive:     true,
		CreatedAt:    s.now().UTC(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		return SessionResult{}, err
	}

	signed, err := s.codec.Issue(user.ID, user.Email, user.Role, s.sessionTTL)
	if err != nil {
		return SessionResult{}, err
	}

	return SessionResult{User: user.Sanitized(), Token: signed}, nil
}

// Verify checks the token and resolves it to a live user. It never mutates
// the user record, so repeated calls with the same token are idempotent.
func (s *SessionService) Verify(ctx context.Context, signed string) (model.AuthUser, error) {
	claims, err := s.codec.Verify(signed)
	if err != nil {
		return model.AuthUser{}, err
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return model.AuthUser{}, err
	}

	if !user.IsActive {
		return model.AuthUser{}, model.ErrUserNotFound
	}

	return user.Sanitized(), nil
}

func (s *SessionService) ChangePassword(ctx context.Context, userID string, current string, next string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if !s.creds.Verify(current, user.PasswordHash) {
		return model.ErrInvalidCredentials
	}

	hash, err := s.creds.Hash(next)
	if err != nil {
		return err
	}

	_, err = s.users.Update(ctx, userID, model.UserPatch{PasswordHash: &hash})
	return err
}

// RequestPasswordReset mints a short-lived reset token, stores it on the
// user and hands it to the out-of-band sender. The token is also returned so
// the confirm flow can be driven in tests.
func (s *SessionService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", err
	}

	resetToken, err := s.codec.Issue(user.ID, user.Email, user.Role, s.resetTTL)
	if err != nil {
		return "", err
	}

	expiry := s.now().UTC().Add(s.resetTTL)
	_, err = s.users.Update(ctx, user.ID, model.UserPatch{
		ResetToken:       &resetToken,
		ResetTokenExpiry: &expiry,
	})
	if err != nil {
		return "", err
	}

	s.resetSender(ctx, user.Email, resetToken)
	return resetToken, nil
}

func (s *SessionService) ConfirmPasswordReset(ctx context.Context, resetToken string, newPassword string) error {
	claims, err := s.codec.Verify(resetToken)
	if err != nil {
		return err
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return err
	}

	// Single use: the stored token must match exactly and is cleared below.
	if user.ResetToken == "" || user.ResetToken != resetToken {
		return model.ErrInvalidToken
	}

	if user.ResetTokenExpiry == nil || !s.now().UTC().Before(*user.ResetTokenExpiry) {
		return model.ErrTokenExpired
	}

	hash, err := s.creds.Hash(newPassword)
	if err != nil {
		return err
	}

	_, err = s.users.Update(ctx, user.ID, model.UserPatch{
		PasswordHash:    &hash,
		ClearResetToken: true,
	})
	return err
}

// UpdateProfile patches name and phone. Password and role are never touched
// through this path.
func (s *SessionService) UpdateProfile(ctx context.Context, userID string, name *string, phone *string) (model.AuthUser, error) {
	user, err := s.users.Update(ctx, userID, model.UserPatch{Name: name, Phone: phone})
	if err != nil {
		return model.AuthUser{}, err
	}
	return user.Sanitized(), nil
}

// GetUser resolves a user id to its sanitized projection.
func (s *SessionService) GetUser(ctx context.Context, userID string) (model.AuthUser, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return model.AuthUser{}, err
	}
	return user.Sanitized(), nil
}
