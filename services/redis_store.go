package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/VarnikaKalani/anagram/models"
	"github.com/redis/go-redis/v9"
)

const roomKeyPrefix = "room:"

// redisStore keeps room snapshots in Redis under room:<code> with a
// retention TTL, refreshed on every save. SETNX on the code key makes
// collisions fail distinguishably so the registry can retry.
type redisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisRoomStore constructs a Redis-backed RoomStore. The TTL bounds
// how long an abandoned room's snapshot survives.
func NewRedisRoomStore(rdb *redis.Client, ttl time.Duration) RoomStore {
	return &redisStore{rdb: rdb, ttl: ttl}
}

func (s *redisStore) Reserve(ctx context.Context, code string) error {
	ok, err := s.rdb.SetNX(ctx, roomKeyPrefix+code, "{}", s.ttl).Result()
	if err != nil {
		return fmt.Errorf("reserve room code: %w", err)
	}
	if !ok {
		return ErrCodeTaken
	}
	return nil
}

func (s *redisStore) Save(ctx context.Context, room *models.Room) error {
	data, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("marshal room %s: %w", room.Code, err)
	}
	if err := s.rdb.Set(ctx, roomKeyPrefix+room.Code, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("store room %s: %w", room.Code, err)
	}
	return nil
}

func (s *redisStore) GetByCode(ctx context.Context, code string) (*models.Room, error) {
	data, err := s.rdb.Get(ctx, roomKeyPrefix+code).Result()
	if err == redis.Nil {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load room %s: %w", code, err)
	}
	var room models.Room
	if err := json.Unmarshal([]byte(data), &room); err != nil {
		return nil, fmt.Errorf("unmarshal room %s: %w", code, err)
	}
	if room.Code == "" {
		// Reserved but never saved; treat as missing.
		return nil, ErrRoomNotFound
	}
	return &room, nil
}

func (s *redisStore) DeleteByCode(ctx context.Context, code string) error {
	return s.rdb.Del(ctx, roomKeyPrefix+code).Err()
}
