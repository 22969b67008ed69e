package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keystroke-lab/backend/internal/models"
)

func TestMemoryDuplicateUsers(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	first := models.User{Email: "a@example.com", Username: "alice", PasswordHash: "x"}
	require.NoError(t, m.CreateUser(ctx, &first))
	assert.NotZero(t, first.ID)

	dupEmail := models.User{Email: "a@example.com", Username: "other", PasswordHash: "x"}
	assert.ErrorIs(t, m.CreateUser(ctx, &dupEmail), ErrEmailTaken)

	dupName := models.User{Email: "b@example.com", Username: "alice", PasswordHash: "x"}
	assert.ErrorIs(t, m.CreateUser(ctx, &dupName), ErrUsernameTaken)
}

func TestMemorySessionListingCapAndOrder(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	owner := models.User{Email: "a@example.com", Username: "alice", PasswordHash: "x"}
	require.NoError(t, m.CreateUser(ctx, &owner))

	for i := 0; i < ListLimit+5; i++ {
		s := models.Session{
			UserID:          owner.ID,
			WPM:             40,
			Accuracy:        95,
			TypingDurations: []float64{100},
			Duration:        15,
			Text:            fmt.Sprintf("prompt %d", i),
		}
		require.NoError(t, m.CreateSession(ctx, &s))
	}

	got, err := m.SessionsByUser(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, got, ListLimit)

	// Newest first: highest ids lead.
	for i := 1; i < len(got); i++ {
		assert.Greater(t, got[i-1].ID, got[i].ID)
	}
}

func TestMemorySessionsScopedToOwner(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	alice := models.User{Email: "a@example.com", Username: "alice", PasswordHash: "x"}
	bob := models.User{Email: "b@example.com", Username: "bob", PasswordHash: "x"}
	require.NoError(t, m.CreateUser(ctx, &alice))
	require.NoError(t, m.CreateUser(ctx, &bob))

	s := models.Session{UserID: alice.ID, Duration: 15, Text: "t", TypingDurations: []float64{1}}
	require.NoError(t, m.CreateSession(ctx, &s))

	got, err := m.SessionsByUser(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = m.SessionByID(ctx, s.ID+100)
	assert.ErrorIs(t, err, ErrNotFound)
}
