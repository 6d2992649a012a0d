package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"raffle-system/internal/status"

	"github.com/redis/go-redis/v9"
)

// SelectionService tracks numbers a session has picked but not yet
// submitted. Selections live in Redis with a short TTL so abandoned
// browser sessions release their numbers on their own.
type SelectionService struct {
	Redis *redis.Client
	ttl   time.Duration
}

func NewSelectionService(redisClient *redis.Client, ttl time.Duration) *SelectionService {
	return &SelectionService{Redis: redisClient, ttl: ttl}
}

func selectionKey(number int) string {
	return fmt.Sprintf("selection:%d", number)
}

// Select holds numbers for a session. Numbers already held by another
// session come back as a ConflictError; numbers already held by the same
// session just get their TTL refreshed.
func (s *SelectionService) Select(ctx context.Context, sessionID string, numbers []int) error {
	var conflicting []int

	for _, number := range numbers {
		key := selectionKey(number)

		ok, err := s.Redis.SetNX(ctx, key, sessionID, s.ttl).Result()
		if err != nil {
			return fmt.Errorf("select number %d: %w", number, err)
		}
		if ok {
			continue
		}

		holder, err := s.Redis.Get(ctx, key).Result()
		if err != nil && err != redis.Nil {
			return fmt.Errorf("select number %d: %w", number, err)
		}
		if holder == sessionID {
			s.Redis.Expire(ctx, key, s.ttl)
			continue
		}
		conflicting = append(conflicting, number)
	}

	if len(conflicting) > 0 {
		return status.NewConflictError("select", conflicting)
	}
	return nil
}

// Release drops the session's hold on the given numbers. Holds owned by
// other sessions are left alone.
func (s *SelectionService) Release(ctx context.Context, sessionID string, numbers []int) error {
	for _, number := range numbers {
		key := selectionKey(number)
		holder, err := s.Redis.Get(ctx, key).Result()
		if err == redis.Nil {
			continue
		} else if err != nil {
			return fmt.Errorf("release number %d: %w", number, err)
		}
		if holder == sessionID {
			s.Redis.Del(ctx, key)
		}
	}
	return nil
}

// Selections returns the currently held numbers mapped to their sessions.
func (s *SelectionService) Selections(ctx context.Context) (map[int]string, error) {
	keys, err := s.Redis.Keys(ctx, "selection:*").Result()
	if err != nil {
		return nil, fmt.Errorf("list selections: %w", err)
	}

	selections := make(map[int]string, len(keys))
	for _, key := range keys {
		number, err := strconv.Atoi(strings.TrimPrefix(key, "selection:"))
		if err != nil {
			continue
		}
		sessionID, err := s.Redis.Get(ctx, key).Result()
		if err == redis.Nil {
			continue
		} else if err != nil {
			return nil, fmt.Errorf("read selection %s: %w", key, err)
		}
		selections[number] = sessionID
	}
	return selections, nil
}
