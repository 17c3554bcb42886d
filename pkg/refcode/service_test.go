package refcode

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func neverExists(context.Context, string) (bool, error) { return false, nil }

func TestNextShape(t *testing.T) {
	g := New(DefaultConfig("FD"))
	date := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)

	code, err := g.Next(context.Background(), date, neverExists)
	require.NoError(t, err)

	parts := strings.Split(code, "-")
	require.Len(t, parts, 3)
	assert.Equal(t, "FD", parts[0])
	assert.Equal(t, "20260831", parts[1])
	assert.Len(t, parts[2], 6)
	for _, c := range parts[2] {
		assert.Contains(t, alphabet, string(c))
	}
}

func TestNextRetriesOnCollision(t *testing.T) {
	g := New(DefaultConfig("FD"))

	calls := 0
	exists := func(context.Context, string) (bool, error) {
		calls++
		return calls <= 2, nil // first two codes are taken
	}

	code, err := g.Next(context.Background(), time.Now(), exists)
	require.NoError(t, err)
	assert.NotEmpty(t, code)
	assert.Equal(t, 3, calls)
}

func TestNextGivesUpAfterMaxAttempts(t *testing.T) {
	cfg := DefaultConfig("FD")
	cfg.MaxAttempts = 3
	g := New(cfg)

	calls := 0
	alwaysTaken := func(context.Context, string) (bool, error) {
		calls++
		return true, nil
	}

	_, err := g.Next(context.Background(), time.Now(), alwaysTaken)
	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestNextPropagatesStoreError(t *testing.T) {
	g := New(DefaultConfig("FD"))

	boom := errors.New("connection lost")
	_, err := g.Next(context.Background(), time.Now(), func(context.Context, string) (bool, error) {
		return false, boom
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}
