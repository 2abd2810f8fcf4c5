//go:build unit

package inventory_test

import (
	"testing"

	"stockroom/internal/domain/inventory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUnit(t *testing.T) {
	t.Run("starts available", func(t *testing.T) {
		u, err := inventory.NewUnit(uuid.New(), "key-0001")
		require.NoError(t, err)

		assert.True(t, u.IsAvailable())
		assert.Nil(t, u.HoldID())
		assert.Equal(t, "key-0001", u.Payload())
	})

	t.Run("rejects an empty payload", func(t *testing.T) {
		_, err := inventory.NewUnit(uuid.New(), "")
		assert.ErrorIs(t, err, inventory.ErrEmptyPayload)
	})
}

func TestClaim(t *testing.T) {
	t.Run("binds the unit to a hold", func(t *testing.T) {
		u, err := inventory.NewUnit(uuid.New(), "key-0001")
		require.NoError(t, err)

		holdID := uuid.New()
		require.NoError(t, u.Claim(holdID, 7))

		assert.True(t, u.IsHeld())
		require.NotNil(t, u.HoldID())
		assert.Equal(t, holdID, *u.HoldID())
		require.NotNil(t, u.HeldSeq())
		assert.Equal(t, int64(7), *u.HeldSeq())
	})

	t.Run("a held unit cannot be claimed again", func(t *testing.T) {
		u, err := inventory.NewUnit(uuid.New(), "key-0001")
		require.NoError(t, err)
		require.NoError(t, u.Claim(uuid.New(), 1))

		assert.ErrorIs(t, u.Claim(uuid.New(), 2), inventory.ErrUnitUnavailable)
	})
}

func TestUnitRelease(t *testing.T) {
	t.Run("returns a held unit to the pool", func(t *testing.T) {
		u, err := inventory.NewUnit(uuid.New(), "key-0001")
		require.NoError(t, err)
		require.NoError(t, u.Claim(uuid.New(), 1))

		u.Release()
		assert.True(t, u.IsAvailable())
		assert.Nil(t, u.HoldID())
		assert.Nil(t, u.HeldSeq())
	})

	t.Run("no-op on an available unit", func(t *testing.T) {
		u, err := inventory.NewUnit(uuid.New(), "key-0001")
		require.NoError(t, err)

		u.Release()
		assert.True(t, u.IsAvailable())
	})

	t.Run("no-op on a sold unit", func(t *testing.T) {
		u, err := inventory.NewUnit(uuid.New(), "key-0001")
		require.NoError(t, err)
		require.NoError(t, u.Claim(uuid.New(), 1))
		require.NoError(t, u.MarkSold())

		u.Release()
		assert.True(t, u.IsSold())
	})
}

func TestMarkSold(t *testing.T) {
	t.Run("held to sold keeps the hold reference", func(t *testing.T) {
		u, err := inventory.NewUnit(uuid.New(), "key-0001")
		require.NoError(t, err)
		holdID := uuid.New()
		require.NoError(t, u.Claim(holdID, 1))

		require.NoError(t, u.MarkSold())
		assert.True(t, u.IsSold())
		require.NotNil(t, u.HoldID())
		assert.Equal(t, holdID, *u.HoldID())
	})

	t.Run("available units cannot be sold", func(t *testing.T) {
		u, err := inventory.NewUnit(uuid.New(), "key-0001")
		require.NoError(t, err)
		assert.ErrorIs(t, u.MarkSold(), inventory.ErrUnitNotHeld)
	})

	t.Run("sold is terminal", func(t *testing.T) {
		u, err := inventory.NewUnit(uuid.New(), "key-0001")
		require.NoError(t, err)
		require.NoError(t, u.Claim(uuid.New(), 1))
		require.NoError(t, u.MarkSold())

		assert.ErrorIs(t, u.MarkSold(), inventory.ErrUnitSold)
	})
}
