package services

import (
	"context"
	"errors"
	"sync"

	"github.com/VarnikaKalani/anagram/models"
)

var (
	// ErrRoomNotFound is returned by GetByCode for unknown codes.
	ErrRoomNotFound = errors.New("room not found")
	// ErrCodeTaken is returned by Reserve on a code collision, so the
	// registry can retry generation.
	ErrCodeTaken = errors.New("room code already taken")
)

// RoomStore is the persistence collaborator for rooms. The engine stays
// authoritative in memory; Save is write-through and must be called with
// the room's mutex held so the snapshot is consistent. Implementations may
// be backed by memory (below) or Redis.
type RoomStore interface {
	// Reserve claims a room code. Fails with ErrCodeTaken on collision.
	Reserve(ctx context.Context, code string) error

	// Save persists the room snapshot (last write wins per room).
	Save(ctx context.Context, room *models.Room) error

	// GetByCode retrieves a room snapshot, ErrRoomNotFound if missing.
	GetByCode(ctx context.Context, code string) (*models.Room, error)

	// DeleteByCode removes the room snapshot. Unknown codes are a no-op.
	DeleteByCode(ctx context.Context, code string) error
}

// memoryStore is a map-based RoomStore for tests and single-process runs.
type memoryStore struct {
	mu    sync.RWMutex
	rooms map[string]*models.Room
}

// NewMemoryRoomStore constructs an in-memory RoomStore.
func NewMemoryRoomStore() RoomStore {
	return &memoryStore{rooms: make(map[string]*models.Room)}
}

func (m *memoryStore) Reserve(ctx context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.rooms[code]; exists {
		return ErrCodeTaken
	}
	m.rooms[code] = nil
	return nil
}

func (m *memoryStore) Save(ctx context.Context, room *models.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms[room.Code] = room
	return nil
}

func (m *memoryStore) GetByCode(ctx context.Context, code string) (*models.Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if room, ok := m.rooms[code]; ok && room != nil {
		return room, nil
	}
	return nil, ErrRoomNotFound
}

func (m *memoryStore) DeleteByCode(ctx context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rooms, code)
	return nil
}
