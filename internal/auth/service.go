// Package auth issues and resolves the bearer tokens gating every protected
// call. Sessions live in the external TTL store under the auth_ namespace and
// expire passively; a deleted or expired session is indistinguishable from
// one that never existed.
package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"filedrive.dev/api/internal/apperr"
	"filedrive.dev/api/internal/cache"
	"filedrive.dev/api/internal/crypto"
	"filedrive.dev/api/internal/database"
)

const sessionKeyPrefix = "auth_"

type Service struct {
	users    UserStore
	sessions cache.Store
	ttl      time.Duration
}

func NewService(users UserStore, sessions cache.Store, ttl time.Duration) *Service {
	return &Service{users: users, sessions: sessions, ttl: ttl}
}

// Login checks credentials and issues an opaque token backed by a session
// with a fixed TTL. Every failure mode reports the same Unauthenticated error
// so callers can't probe which part was wrong.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", apperr.Unauthorized()
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", apperr.Wrap("user lookup failed", err)
	}
	if user == nil || user.Password != crypto.HashPassword(password) {
		return "", apperr.Unauthorized()
	}

	token := uuid.NewString()
	if err := s.sessions.Set(ctx, sessionKey(token), user.ID.Hex(), s.ttl); err != nil {
		return "", apperr.Wrap("session store failed", err)
	}
	return token, nil
}

// Logout deletes the live session for token. A second logout with the same
// token fails: once the session is gone it never existed.
func (s *Service) Logout(ctx context.Context, token string) error {
	key := sessionKey(token)
	_, ok, err := s.sessions.Get(ctx, key)
	if err != nil {
		return apperr.Wrap("session lookup failed", err)
	}
	if !ok {
		return apperr.Unauthorized()
	}
	if err := s.sessions.Del(ctx, key); err != nil {
		return apperr.Wrap("session delete failed", err)
	}
	return nil
}

// ResolveToken maps a token to its user id. This is the single choke point
// for every protected operation; it performs no mutation and never refreshes
// the session TTL.
func (s *Service) ResolveToken(ctx context.Context, token string) (primitive.ObjectID, error) {
	if token == "" {
		return primitive.NilObjectID, apperr.Unauthorized()
	}
	val, ok, err := s.sessions.Get(ctx, sessionKey(token))
	if err != nil {
		return primitive.NilObjectID, apperr.Wrap("session lookup failed", err)
	}
	if !ok {
		return primitive.NilObjectID, apperr.Unauthorized()
	}
	id, err := primitive.ObjectIDFromHex(val)
	if err != nil {
		return primitive.NilObjectID, apperr.Unauthorized()
	}
	return id, nil
}

// CurrentUser composes ResolveToken with a user lookup. A session whose user
// has vanished reads as unauthenticated, never as an internal error.
func (s *Service) CurrentUser(ctx context.Context, token string) (*database.User, error) {
	id, err := s.ResolveToken(ctx, token)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Wrap("user lookup failed", err)
	}
	if user == nil {
		return nil, apperr.Unauthorized()
	}
	return user, nil
}

func sessionKey(token string) string {
	return sessionKeyPrefix + token
}
