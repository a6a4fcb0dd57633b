package auth

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"filedrive.dev/api/internal/database"
)

// UserStore is the slice of the user collection the auth service needs.
// Lookups return (nil, nil) when no user matches.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*database.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*database.User, error)
}
