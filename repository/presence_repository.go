package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const presenceKeyPrefix = "presence:"

// onlinePresenceDuration is slightly over three heartbeat periods, so one
// lost beat does not flap a user offline.
const onlinePresenceDuration = 100 * time.Second

type presence struct {
	db *redis.Client
}

func (r *presence) SetOnline(ctx context.Context, userID string) error {
	return r.db.Set(ctx, r.key(userID), "1", onlinePresenceDuration).Err()
}

func (r *presence) Refresh(ctx context.Context, userID string) error {
	return r.db.Expire(ctx, r.key(userID), onlinePresenceDuration).Err()
}

func (r *presence) SetOffline(ctx context.Context, userID string) error {
	return r.db.Del(ctx, r.key(userID)).Err()
}

func (r *presence) IsOnline(ctx context.Context, userID string) (bool, error) {
	err := r.db.Get(ctx, r.key(userID)).Err()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}

		return false, err
	}

	return true, nil
}

func (r *presence) OnlineUserIDs(ctx context.Context) ([]string, error) {
	var (
		ids    []string
		cursor uint64
	)

	for {
		keys, next, err := r.db.Scan(ctx, cursor, presenceKeyPrefix+"*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("scan presence keys: %w", err)
		}

		for _, key := range keys {
			ids = append(ids, strings.TrimPrefix(key, presenceKeyPrefix))
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	return ids, nil
}

func (r *presence) key(userID string) string {
	return presenceKeyPrefix + userID
}

func NewPresence(client *redis.Client) *presence {
	return &presence{
		db: client,
	}
}
