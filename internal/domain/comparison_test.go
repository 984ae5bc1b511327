package domain_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/focal-api/internal/domain"
)

func TestNewComparison(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	a := uuid.New()
	b := uuid.New()

	t.Run("records the winner", func(t *testing.T) {
		t.Parallel()

		c, err := domain.NewComparison(a, b, a, now)
		require.NoError(t, err)

		assert.Equal(t, a, c.TaskAID)
		assert.Equal(t, b, c.TaskBID)
		require.NotNil(t, c.WinnerID)
		assert.Equal(t, a, *c.WinnerID)
		assert.True(t, c.CreatedAt.Equal(now))
	})

	t.Run("rejects identical tasks", func(t *testing.T) {
		t.Parallel()

		_, err := domain.NewComparison(a, a, a, now)
		assert.ErrorIs(t, err, domain.ErrComparisonSameTask)
	})

	t.Run("rejects a winner outside the pair", func(t *testing.T) {
		t.Parallel()

		_, err := domain.NewComparison(a, b, uuid.New(), now)
		assert.ErrorIs(t, err, domain.ErrWinnerNotInPair)
	})
}

func TestNewSkippedComparison(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	a := uuid.New()
	b := uuid.New()

	c, err := domain.NewSkippedComparison(a, b, now)
	require.NoError(t, err)
	assert.Nil(t, c.WinnerID)

	_, err = domain.NewSkippedComparison(a, a, now)
	assert.ErrorIs(t, err, domain.ErrComparisonSameTask)
}
