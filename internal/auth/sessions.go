// Package auth issues and resolves opaque session tokens.
//
// Tokens exist for client plumbing parity only: the portal's login flow
// does not verify credentials (see the village store), so a token proves
// possession of a prior login response, nothing more.
package auth

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/villagelink/village-backend/pkg/kv"
)

const keyPrefix = "village:session:"

// Sessions maps opaque tokens to user ids with a TTL, on any kv backend.
type Sessions struct {
	store kv.Store
	ttl   time.Duration
}

// NewSessions builds a session registry over store with the given lifetime.
func NewSessions(store kv.Store, ttl time.Duration) *Sessions {
	return &Sessions{store: store, ttl: ttl}
}

// Issue mints a fresh token for userID.
func (s *Sessions) Issue(ctx context.Context, userID int64) (string, error) {
	token := uuid.NewString()
	value := []byte(strconv.FormatInt(userID, 10))
	if err := s.store.Set(ctx, keyPrefix+token, value, s.ttl); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return token, nil
}

// Lookup resolves a token to its user id. Unknown or expired tokens return
// kv.ErrNotFound.
func (s *Sessions) Lookup(ctx context.Context, token string) (int64, error) {
	raw, err := s.store.Get(ctx, keyPrefix+token)
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt session value: %w", err)
	}
	return id, nil
}

// Revoke drops a token. Revoking an unknown token is a no-op.
func (s *Sessions) Revoke(ctx context.Context, token string) error {
	_, err := s.store.Del(ctx, keyPrefix+token)
	return err
}
