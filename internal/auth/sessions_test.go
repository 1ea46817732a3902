package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/villagelink/village-backend/pkg/kv"
	memkv "github.com/villagelink/village-backend/pkg/kv/memory"
)

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	store := memkv.New(0)
	defer store.Close()

	sessions := NewSessions(store, time.Hour)

	token, err := sessions.Issue(ctx, 42)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := sessions.Lookup(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)

	require.NoError(t, sessions.Revoke(ctx, token))
	_, err = sessions.Lookup(ctx, token)
	assert.ErrorIs(t, err, kv.ErrNotFound)

	// Revoking again stays quiet.
	assert.NoError(t, sessions.Revoke(ctx, token))
}

func TestSessionExpiry(t *testing.T) {
	ctx := context.Background()
	store := memkv.New(0)
	defer store.Close()

	sessions := NewSessions(store, 10*time.Millisecond)

	token, err := sessions.Issue(ctx, 7)
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	_, err = sessions.Lookup(ctx, token)
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func TestTokensAreUnique(t *testing.T) {
	ctx := context.Background()
	store := memkv.New(0)
	defer store.Close()

	sessions := NewSessions(store, time.Hour)

	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		token, err := sessions.Issue(ctx, int64(i))
		require.NoError(t, err)
		if _, dup := seen[token]; dup {
			t.Fatalf("duplicate token issued: %s", token)
		}
		seen[token] = struct{}{}
	}
}
