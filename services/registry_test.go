package services

import (
	"context"
	"testing"
	"time"

	"github.com/VarnikaKalani/anagram/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidRoomCode(t *testing.T) {
	assert.True(t, ValidRoomCode("123456"))
	assert.True(t, ValidRoomCode("000000"))
	assert.False(t, ValidRoomCode("12345"))
	assert.False(t, ValidRoomCode("1234567"))
	assert.False(t, ValidRoomCode("12345a"))
	assert.False(t, ValidRoomCode(""))
}

func TestNewCodeFormatAndReservation(t *testing.T) {
	store := NewMemoryRoomStore()
	reg := NewRegistry(store, zerolog.Nop())
	ctx := context.Background()

	code, err := reg.NewCode(ctx)
	require.NoError(t, err)
	assert.True(t, ValidRoomCode(code))

	// The code is reserved: reserving it again collides.
	assert.ErrorIs(t, store.Reserve(ctx, code), ErrCodeTaken)
}

// collidingStore forces the first n reservations to collide.
type collidingStore struct {
	RoomStore
	remaining int
}

func (c *collidingStore) Reserve(ctx context.Context, code string) error {
	if c.remaining > 0 {
		c.remaining--
		return ErrCodeTaken
	}
	return c.RoomStore.Reserve(ctx, code)
}

func TestNewCodeRetriesOnCollision(t *testing.T) {
	store := &collidingStore{RoomStore: NewMemoryRoomStore(), remaining: 3}
	reg := NewRegistry(store, zerolog.Nop())

	code, err := reg.NewCode(context.Background())
	require.NoError(t, err)
	assert.True(t, ValidRoomCode(code))
}

func TestNewCodeGivesUpAfterBudget(t *testing.T) {
	store := &collidingStore{RoomStore: NewMemoryRoomStore(), remaining: codeGenAttempts + 1}
	reg := NewRegistry(store, zerolog.Nop())

	_, err := reg.NewCode(context.Background())
	assert.Error(t, err)
}

func TestRegistryPutGetDelete(t *testing.T) {
	store := NewMemoryRoomStore()
	reg := NewRegistry(store, zerolog.Nop())
	ctx := context.Background()

	room := &models.Room{Code: "111222", Status: models.StatusWaiting, LastActiveAt: time.Now()}
	reg.Put(room)

	got, err := reg.Get(ctx, "111222")
	require.NoError(t, err)
	assert.Same(t, room, got)

	reg.Delete(ctx, "111222")
	_, err = reg.Get(ctx, "111222")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestRegistryRehydratesFromStore(t *testing.T) {
	store := NewMemoryRoomStore()
	ctx := context.Background()

	snap := &models.Room{Code: "333444", Status: models.StatusWaiting, LastActiveAt: time.Now()}
	require.NoError(t, store.Save(ctx, snap))

	// A fresh registry has no live entry and must fall back to the store.
	reg := NewRegistry(store, zerolog.Nop())
	got, err := reg.Get(ctx, "333444")
	require.NoError(t, err)
	assert.Equal(t, "333444", got.Code)

	// Subsequent lookups hit the live map and return the same instance.
	again, err := reg.Get(ctx, "333444")
	require.NoError(t, err)
	assert.Same(t, got, again)
}

func TestSweepCollectsAbandonedRooms(t *testing.T) {
	store := NewMemoryRoomStore()
	reg := NewRegistry(store, zerolog.Nop())
	ctx := context.Background()

	stale := &models.Room{
		Code:         "555666",
		Status:       models.StatusWaiting,
		Players:      []*models.Player{{ID: "p1", Connected: false}},
		LastActiveAt: time.Now().Add(-time.Hour),
	}
	active := &models.Room{
		Code:         "777888",
		Status:       models.StatusWaiting,
		Players:      []*models.Player{{ID: "p2", Connected: true}},
		LastActiveAt: time.Now(),
	}
	reg.Put(stale)
	reg.Put(active)

	removed := reg.Sweep(ctx, 30*time.Minute)
	assert.Equal(t, 1, removed)

	_, err := reg.Get(ctx, "555666")
	assert.ErrorIs(t, err, ErrRoomNotFound)
	_, err = reg.Get(ctx, "777888")
	assert.NoError(t, err)
}
