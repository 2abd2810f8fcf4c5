//go:build unit

package hold_test

import (
	"testing"
	"time"

	"stockroom/internal/domain/hold"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	baseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ttl      = 62 * time.Second
)

func TestNewHold(t *testing.T) {
	h := hold.NewHold(uuid.New(), uuid.New(), baseTime, ttl)

	assert.NotEqual(t, uuid.Nil, h.ID())
	assert.Equal(t, hold.StatusActive, h.Status())
	assert.Equal(t, baseTime.Add(ttl), h.ExpiresAt())
	assert.Equal(t, baseTime, h.CreatedAt())
	assert.True(t, h.IsActive())
}

func TestRefresh(t *testing.T) {
	t.Run("resets the deadline from now", func(t *testing.T) {
		h := hold.NewHold(uuid.New(), uuid.New(), baseTime, ttl)

		later := baseTime.Add(40 * time.Second)
		require.NoError(t, h.Refresh(later, ttl))
		assert.Equal(t, later.Add(ttl), h.ExpiresAt())
	})

	t.Run("rejects a released hold", func(t *testing.T) {
		h := hold.NewHold(uuid.New(), uuid.New(), baseTime, ttl)
		require.NoError(t, h.MarkReleased())

		err := h.Refresh(baseTime, ttl)
		assert.ErrorIs(t, err, hold.ErrNotActive)
	})
}

func TestHoldTransitions(t *testing.T) {
	t.Run("commit", func(t *testing.T) {
		h := hold.NewHold(uuid.New(), uuid.New(), baseTime, ttl)
		require.NoError(t, h.MarkCommitted())
		assert.Equal(t, hold.StatusCommitted, h.Status())
	})

	t.Run("commit twice fails", func(t *testing.T) {
		h := hold.NewHold(uuid.New(), uuid.New(), baseTime, ttl)
		require.NoError(t, h.MarkCommitted())
		assert.ErrorIs(t, h.MarkCommitted(), hold.ErrNotActive)
	})

	t.Run("release after commit fails", func(t *testing.T) {
		h := hold.NewHold(uuid.New(), uuid.New(), baseTime, ttl)
		require.NoError(t, h.MarkCommitted())
		assert.ErrorIs(t, h.MarkReleased(), hold.ErrAlreadyCommitted)
	})

	t.Run("release twice is allowed", func(t *testing.T) {
		h := hold.NewHold(uuid.New(), uuid.New(), baseTime, ttl)
		require.NoError(t, h.MarkReleased())
		assert.NoError(t, h.MarkReleased())
	})
}

func TestExpiry(t *testing.T) {
	h := hold.NewHold(uuid.New(), uuid.New(), baseTime, ttl)

	assert.False(t, h.HasExpired(baseTime.Add(ttl-time.Nanosecond)))
	assert.True(t, h.HasExpired(baseTime.Add(ttl)))
	assert.True(t, h.HasExpired(baseTime.Add(ttl+time.Hour)))
}

func TestTimeRemaining(t *testing.T) {
	h := hold.NewHold(uuid.New(), uuid.New(), baseTime, ttl)

	assert.Equal(t, ttl, h.TimeRemaining(baseTime))
	assert.Equal(t, 2*time.Second, h.TimeRemaining(baseTime.Add(ttl-2*time.Second)))
	assert.Equal(t, time.Duration(0), h.TimeRemaining(baseTime.Add(ttl+time.Minute)))
}
