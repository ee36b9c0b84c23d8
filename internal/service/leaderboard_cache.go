package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"mentor-pulse/internal/domain"
)

// LeaderboardCache mantiene el ranking de puntos para lecturas baratas.
// La fuente de verdad sigue siendo el ledger en la base.
type LeaderboardCache interface {
	Increment(ctx context.Context, userID string, delta int) error
	Top(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
}

type memoryLeaderboardCache struct {
	mu     sync.Mutex
	totals map[string]int
}

func NewMemoryLeaderboardCache() LeaderboardCache {
	return &memoryLeaderboardCache{
		totals: make(map[string]int),
	}
}

func (c *memoryLeaderboardCache) Increment(_ context.Context, userID string, delta int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.totals[userID] += delta
	return nil
}

func (c *memoryLeaderboardCache) Top(_ context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries := make([]domain.LeaderboardEntry, 0, len(c.totals))
	for userID, points := range c.totals {
		entries = append(entries, domain.LeaderboardEntry{UserID: userID, Points: points})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Points != entries[j].Points {
			return entries[i].Points > entries[j].Points
		}
		return entries[i].UserID < entries[j].UserID
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

type redisLeaderboardCache struct {
	client *redis.Client
	key    string
}

func NewRedisLeaderboardCache(client *redis.Client) LeaderboardCache {
	if client == nil {
		return nil
	}
	return &redisLeaderboardCache{
		client: client,
		key:    "points:leaderboard",
	}
}

func (c *redisLeaderboardCache) Increment(ctx context.Context, userID string, delta int) error {
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	return c.client.ZIncrBy(ctx, c.key, float64(delta), userID).Err()
}

func (c *redisLeaderboardCache) Top(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()

	results, err := c.client.ZRevRangeWithScores(ctx, c.key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]domain.LeaderboardEntry, 0, len(results))
	for i, z := range results {
		userID, _ := z.Member.(string)
		entries = append(entries, domain.LeaderboardEntry{
			UserID: userID,
			Points: int(z.Score),
			Rank:   i + 1,
		})
	}
	return entries, nil
}
