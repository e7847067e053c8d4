package throttle

import (
	"context"
	"sync"
	"time"
)

const sweepInterval = time.Minute

type entry struct {
	count     int
	expiresAt time.Time
}

// MemoryLimiter is the single-process Limiter used when no Redis is configured.
type MemoryLimiter struct {
	mu          sync.Mutex
	entries     map[string]entry
	maxFailures int
	window      time.Duration
	now         func() time.Time
	lastSweep   time.Time
}

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{
		entries:     make(map[string]entry),
		maxFailures: LoginMaxFailures,
		window:      LoginWindow,
		now:         time.Now,
	}
}

// WithClock replaces the limiter's time source.
func (l *MemoryLimiter) WithClock(now func() time.Time) *MemoryLimiter {
	l.now = now
	return l
}

func (l *MemoryLimiter) live(key string) (entry, bool) {
	e, ok := l.entries[key]
	if !ok {
		return entry{}, false
	}
	if !l.now().Before(e.expiresAt) {
		delete(l.entries, key)
		return entry{}, false
	}
	return e, true
}

// sweepLocked drops expired entries at most once per sweepInterval. Callers hold mu.
func (l *MemoryLimiter) sweepLocked() {
	now := l.now()
	if now.Sub(l.lastSweep) < sweepInterval {
		return
	}
	l.lastSweep = now

	for key, e := range l.entries {
		if !now.Before(e.expiresAt) {
			delete(l.entries, key)
		}
	}
}

func (l *MemoryLimiter) LoginBlocked(_ context.Context, client string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.live(loginKey(client))
	return ok && e.count >= l.maxFailures, nil
}

func (l *MemoryLimiter) RegisterLoginFailure(_ context.Context, client string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := loginKey(client)
	e, ok := l.live(key)
	if !ok {
		l.sweepLocked()
		e = entry{expiresAt: l.now().Add(l.window)}
	}
	e.count++
	l.entries[key] = e
	return nil
}

func (l *MemoryLimiter) ResetLogin(_ context.Context, client string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.entries, loginKey(client))
	return nil
}

func (l *MemoryLimiter) AcquireCooldown(_ context.Context, key string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	key = cooldownKey(key)
	if _, ok := l.live(key); ok {
		return false, nil
	}
	l.sweepLocked()
	l.entries[key] = entry{count: 1, expiresAt: l.now().Add(ttl)}
	return true, nil
}
