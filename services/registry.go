package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"sync"
	"time"

	"github.com/VarnikaKalani/anagram/models"
	"github.com/rs/zerolog"
)

const codeGenAttempts = 5

var roomCodePattern = regexp.MustCompile(`^[0-9]{6}$`)

// ValidRoomCode reports whether code looks like a room code at all.
func ValidRoomCode(code string) bool {
	return roomCodePattern.MatchString(code)
}

// Registry is the keyed collection of live rooms. It owns code generation
// and garbage collection of abandoned rooms; its lock only guards the
// code-to-room map, never per-room mutation.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*models.Room

	store RoomStore
	log   zerolog.Logger
}

func NewRegistry(store RoomStore, log zerolog.Logger) *Registry {
	return &Registry{
		rooms: make(map[string]*models.Room),
		store: store,
		log:   log.With().Str("component", "registry").Logger(),
	}
}

// NewCode generates a unique 6-digit code, retrying on collisions a
// bounded number of times before giving up.
func (r *Registry) NewCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < codeGenAttempts; attempt++ {
		code, err := randomCode()
		if err != nil {
			return "", err
		}
		switch err := r.store.Reserve(ctx, code); err {
		case nil:
			return code, nil
		case ErrCodeTaken:
			r.log.Debug().Str("code", code).Msg("room code collision, retrying")
			continue
		default:
			return "", err
		}
	}
	return "", fmt.Errorf("could not reserve a room code after %d attempts", codeGenAttempts)
}

// Put registers a live room.
func (r *Registry) Put(room *models.Room) {
	r.mu.Lock()
	r.rooms[room.Code] = room
	r.mu.Unlock()
}

// Get returns the live room for code. On a miss it falls back to the
// store, rehydrating a snapshot (e.g. after a restart) into the live map.
func (r *Registry) Get(ctx context.Context, code string) (*models.Room, error) {
	r.mu.RLock()
	room, ok := r.rooms[code]
	r.mu.RUnlock()
	if ok {
		return room, nil
	}

	snap, err := r.store.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// Lost a race with another rehydration; keep the first one.
	if room, ok := r.rooms[code]; ok {
		return room, nil
	}
	r.rooms[code] = snap
	r.log.Info().Str("code", code).Msg("rehydrated room from store")
	return snap, nil
}

// Delete removes the room from the live map and the store.
func (r *Registry) Delete(ctx context.Context, code string) {
	r.mu.Lock()
	delete(r.rooms, code)
	r.mu.Unlock()
	if err := r.store.DeleteByCode(ctx, code); err != nil {
		r.log.Warn().Err(err).Str("code", code).Msg("failed to delete room snapshot")
	}
}

// Sweep garbage-collects rooms whose players have all been disconnected
// for longer than retention. Returns the number of rooms removed.
func (r *Registry) Sweep(ctx context.Context, retention time.Duration) int {
	r.mu.RLock()
	candidates := make([]*models.Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		candidates = append(candidates, room)
	}
	r.mu.RUnlock()

	now := time.Now()
	removed := 0
	for _, room := range candidates {
		room.Mu.Lock()
		abandoned := room.ConnectedCount() == 0 && now.Sub(room.LastActiveAt) > retention
		if abandoned && room.RoundCancel != nil {
			room.RoundCancel()
		}
		code := room.Code
		room.Mu.Unlock()

		if abandoned {
			r.Delete(ctx, code)
			removed++
			r.log.Info().Str("code", code).Msg("garbage-collected abandoned room")
		}
	}
	return removed
}

// StartGC runs Sweep on the given interval until ctx is cancelled.
func (r *Registry) StartGC(ctx context.Context, interval, retention time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.Sweep(ctx, retention)
			case <-ctx.Done():
				return
			}
		}
	}()
}

func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("generate room code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
