package mentorship

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrCooldownActive is returned while a user's resubmission cooldown
// has not yet elapsed.
var ErrCooldownActive = errors.New("cooldown active")

// CooldownGate limits how often a user may resubmit. Acquire succeeds
// at most once per window per (kind, user); within the window it
// returns ErrCooldownActive and the remaining wait.
type CooldownGate interface {
	Acquire(ctx context.Context, kind string, userID uuid.UUID) (time.Duration, error)
}

// RedisCooldown is a CooldownGate persisted in Redis, so cooldowns
// survive restarts and are shared across instances.
type RedisCooldown struct {
	client *redis.Client
	window time.Duration
}

// NewRedisCooldown creates a cooldown gate with the given window.
func NewRedisCooldown(client *redis.Client, window time.Duration) *RedisCooldown {
	return &RedisCooldown{client: client, window: window}
}

func cooldownKey(kind string, userID uuid.UUID) string {
	return fmt.Sprintf("cooldown:%s:%s", kind, userID)
}

// KindCooldown routes Acquire to a per-kind gate, so mentorship and
// feedback can carry different windows.
type KindCooldown struct {
	gates map[string]CooldownGate
}

// NewKindCooldown creates a kind-dispatching cooldown gate.
func NewKindCooldown(gates map[string]CooldownGate) *KindCooldown {
	return &KindCooldown{gates: gates}
}

// Acquire delegates to the gate registered for kind. Unknown kinds pass.
func (g *KindCooldown) Acquire(ctx context.Context, kind string, userID uuid.UUID) (time.Duration, error) {
	gate, ok := g.gates[kind]
	if !ok {
		return 0, nil
	}
	return gate.Acquire(ctx, kind, userID)
}

// Acquire claims the cooldown slot via SET NX with TTL. The set and the
// expiry are one atomic command, so two concurrent submissions cannot
// both pass.
func (g *RedisCooldown) Acquire(ctx context.Context, kind string, userID uuid.UUID) (time.Duration, error) {
	key := cooldownKey(kind, userID)
	ok, err := g.client.SetNX(ctx, key, time.Now().Unix(), g.window).Result()
	if err != nil {
		return 0, err
	}
	if ok {
		return 0, nil
	}
	remaining, err := g.client.TTL(ctx, key).Result()
	if err != nil || remaining < 0 {
		remaining = g.window
	}
	return remaining, ErrCooldownActive
}
