package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// CooldownGuard reserva de forma atómica la ventana de cooldown de un par
// (tutor, student). Es la garantía a nivel storage de que dos despachos
// concurrentes no notifican dos veces al mismo tutor.
type CooldownGuard interface {
	// Acquire devuelve true si la ventana estaba libre y quedó reservada.
	Acquire(ctx context.Context, tutorID, studentID string, window time.Duration) (bool, error)
}

func cooldownKey(tutorID, studentID string) string {
	return strings.TrimSpace(tutorID) + ":" + strings.TrimSpace(studentID)
}

type memoryCooldownGuard struct {
	mu    sync.Mutex
	items map[string]time.Time
}

func NewMemoryCooldownGuard() CooldownGuard {
	return &memoryCooldownGuard{
		items: make(map[string]time.Time),
	}
}

func (g *memoryCooldownGuard) Acquire(_ context.Context, tutorID, studentID string, window time.Duration) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	key := cooldownKey(tutorID, studentID)
	now := time.Now().UTC()
	if until, ok := g.items[key]; ok && now.Before(until) {
		return false, nil
	}
	g.items[key] = now.Add(window)
	return true, nil
}

type redisCooldownGuard struct {
	client *redis.Client
	prefix string
}

func NewRedisCooldownGuard(client *redis.Client) CooldownGuard {
	if client == nil {
		return nil
	}
	return &redisCooldownGuard{
		client: client,
		prefix: "alerts:cooldown:",
	}
}

func (g *redisCooldownGuard) Acquire(ctx context.Context, tutorID, studentID string, window time.Duration) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	// SET NX EX: reserva y expiración en una sola operación atómica.
	return g.client.SetNX(ctx, g.prefix+cooldownKey(tutorID, studentID), "1", window).Result()
}
