package model

import "time"

// Role values a user can hold. The storefront has exactly three.
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
	RoleSupplier = "supplier"
)

func ValidRole(role string) bool {
	return role == RoleCustomer || role == RoleAdmin || role == RoleSupplier
}

type User struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	Name             string     `json:"name,omitempty"`
	Phone            string     `json:"phone,omitempty"`
	PasswordHash     string     `json:"-"`
	Role             string     `json:"role"`
	IsActive         bool       `json:"is_active"`
	CreatedAt        time.Time  `json:"created_at"`
	LastLoginAt      *time.Time `json:"last_login_at,omitempty"`
	ResetToken       string     `json:"-"`
	ResetTokenExpiry *time.Time `json:"-"`
}

// Sanitized returns the caller-facing projection of the user. The password
// hash and reset-token fields never leave the repository boundary.
func (u User) Sanitized() AuthUser {
	return AuthUser{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Phone:       u.Phone,
		Role:        u.Role,
		IsActive:    u.IsActive,
		CreatedAt:   u.CreatedAt,
		LastLoginAt: u.LastLoginAt,
	}
}

type AuthUser struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name,omitempty"`
	Phone       string     `json:"phone,omitempty"`
	Role        string     `json:"role"`
	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// UserPatch is a partial update applied through the repository's Update
// operation. Nil fields are left untouched. ClearResetToken nulls both
// reset fields regardless of the pointer values.
type UserPatch struct {
	Name             *string
	Phone            *string
	PasswordHash     *string
	LastLoginAt      *time.Time
	ResetToken       *string
	ResetTokenExpiry *time.Time
	ClearResetToken  bool
	IsActive         *bool
}
