// Package repository holds the user store the session service depends on.
// The contract is deliberately narrow: find by email, find by id, create,
// partial update. Nothing in this subsystem deletes users.
package repository

import (
	"context"

	"storefront-session/internal/model"
)

type UserStore interface {
	FindByEmail(ctx context.Context, email string) (model.User, error)
	FindByID(ctx context.Context, id string) (model.User, error)
	Create(ctx context.Context, u model.User) error
	Update(ctx context.Context, id string, patch model.UserPatch) (model.User, error)
}
