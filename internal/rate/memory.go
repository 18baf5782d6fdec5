package rate

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter: fixed window en proceso, mismo contrato que RedisLimiter.
// Fallback cuando no hay Redis configurado.
type MemoryLimiter struct {
	mu     sync.Mutex
	hits   map[string]*windowCount
	Max    int64
	Window time.Duration
}

type windowCount struct {
	start time.Time
	n     int64
}

func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		hits:   make(map[string]*windowCount),
		Max:    int64(max),
		Window: window,
	}
}

func (l *MemoryLimiter) Allow(ctx context.Context, key string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	now := time.Now().UTC()
	winStart := now.Truncate(l.Window)

	l.mu.Lock()
	defer l.mu.Unlock()

	wc, ok := l.hits[key]
	if !ok || wc.start != winStart {
		wc = &windowCount{start: winStart}
		l.hits[key] = wc
	}
	wc.n++

	allowed := wc.n <= l.Max
	remaining := l.Max - wc.n
	if remaining < 0 {
		remaining = 0
	}
	res := Result{
		Allowed:     allowed,
		Remaining:   remaining,
		CurrentHits: wc.n,
		WindowTTL:   winStart.Add(l.Window).Sub(now),
	}
	if !allowed {
		res.RetryAfter = res.WindowTTL
	}
	return res, nil
}

// Cleanup descarta ventanas vencidas. Llamar periódicamente si el proceso
// es de vida larga con muchas keys distintas.
func (l *MemoryLimiter) Cleanup() {
	now := time.Now().UTC()
	l.mu.Lock()
	defer l.mu.Unlock()
	for k, wc := range l.hits {
		if now.Sub(wc.start) > l.Window {
			delete(l.hits, k)
		}
	}
}
