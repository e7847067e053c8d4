// Package throttle counts failed logins per client and enforces per-key cooldowns.
package throttle

import (
	"context"
	"time"
)

const (
	LoginMaxFailures = 5
	LoginWindow      = 10 * time.Minute
	EmailCooldown    = 60 * time.Second
)

type Limiter interface {
	// LoginBlocked reports whether the client has exhausted its failed-login budget.
	LoginBlocked(ctx context.Context, client string) (bool, error)
	RegisterLoginFailure(ctx context.Context, client string) error
	ResetLogin(ctx context.Context, client string) error
	// AcquireCooldown returns false while an earlier cooldown for key is still running.
	AcquireCooldown(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

func loginKey(client string) string {
	return "login_failures:" + client
}

func cooldownKey(key string) string {
	return "cooldown:" + key
}
