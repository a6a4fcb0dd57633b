// Package users handles registration. New accounts trigger a best-effort
// welcome job on the user queue.
package users

import (
	"context"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"filedrive.dev/api/internal/apperr"
	"filedrive.dev/api/internal/crypto"
	"filedrive.dev/api/internal/database"
	"filedrive.dev/api/internal/queue"
)

// Store is the slice of the user collection registration needs.
type Store interface {
	GetByEmail(ctx context.Context, email string) (*database.User, error)
	Insert(ctx context.Context, user *database.User) (primitive.ObjectID, error)
}

type Service struct {
	store    Store
	producer queue.Producer
	logger   *logrus.Logger

	// MinPasswordScore rejects weak passwords when > 0.
	MinPasswordScore int
}

func NewService(store Store, producer queue.Producer, logger *logrus.Logger) *Service {
	return &Service{store: store, producer: producer, logger: logger}
}

// Register creates a user and enqueues the welcome job. The enqueue is
// best-effort: the account is already durable, so a queue failure is logged
// for operators and not reported to the caller.
func (s *Service) Register(ctx context.Context, email, password string) (*database.User, error) {
	if email == "" {
		return nil, apperr.Invalid("Missing email")
	}
	if password == "" {
		return nil, apperr.Invalid("Missing password")
	}
	if s.MinPasswordScore > 0 && crypto.PasswordScore(password) < s.MinPasswordScore {
		return nil, apperr.Invalid("Password too weak")
	}

	existing, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Wrap("user lookup failed", err)
	}
	if existing != nil {
		return nil, apperr.Conflicting("Already exist")
	}

	user := &database.User{
		Email:    email,
		Password: crypto.HashPassword(password),
	}
	id, err := s.store.Insert(ctx, user)
	if err != nil {
		return nil, apperr.Wrap("user insert failed", err)
	}

	job := queue.WelcomeJob{UserID: id.Hex()}
	if err := s.producer.Enqueue(ctx, queue.UserQueue, job); err != nil {
		s.logger.Errorf("Failed to enqueue welcome job for user %s: %s", id.Hex(), err)
	}

	return user, nil
}
