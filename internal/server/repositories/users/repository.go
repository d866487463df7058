// Package users stores enrolled users and their encrypted descriptors.
//
// Every implementation enforces username uniqueness atomically: Create
// returns common.ErrorUsernameTaken when the name exists, even when two
// registrations race.
package users

import (
	"context"

	"github.com/dmitrijs2005/faceauth/internal/server/models"
)

type Repository interface {
	// Create inserts a new user. CreatedAt is filled in by the store.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	// GetUserByLogin returns common.ErrorNotFound when the user is absent.
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
	// List returns every user in the store's scan order.
	List(ctx context.Context) ([]*models.User, error)
}
