package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/tecnicojoeltienda/tecnicojoel-tienda-sub000/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ── Rate limit store ──────────────────────────────────────────────────────────

type rateEntry struct {
	count     int
	windowEnd time.Time
}

// RateLimitStore counts requests per key in fixed windows. It is created by
// the caller and swept by Start; nothing runs until Start is called.
type RateLimitStore struct {
	limit  int
	window time.Duration

	mu      sync.Mutex
	entries map[string]*rateEntry
	now     func() time.Time
}

func NewRateLimitStore(limit int, window time.Duration) *RateLimitStore {
	return &RateLimitStore{
		limit:   limit,
		window:  window,
		entries: make(map[string]*rateEntry),
		now:     time.Now,
	}
}

// Allow records one request for key and reports whether it fits the window,
// plus when the current window ends.
func (s *RateLimitStore) Allow(key string) (bool, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	e, ok := s.entries[key]
	if !ok || now.After(e.windowEnd) {
		e = &rateEntry{windowEnd: now.Add(s.window)}
		s.entries[key] = e
	}
	e.count++
	return e.count <= s.limit, e.windowEnd
}

// Len is the number of tracked keys.
func (s *RateLimitStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep drops expired windows and returns how many were removed.
func (s *RateLimitStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	purged := 0
	for k, e := range s.entries {
		if now.After(e.windowEnd) {
			delete(s.entries, k)
			purged++
		}
	}
	return purged
}

// Start sweeps expired entries every interval until ctx is cancelled.
func (s *RateLimitStore) Start(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := s.Sweep(); n > 0 {
					log.Debug().Int("purged", n).Int("remaining", s.Len()).Msg("rate limiter: entradas vencidas eliminadas")
				}
			}
		}
	}()
}

// ── Middleware ────────────────────────────────────────────────────────────────

// RateLimiter limits requests per client IP using store.
func RateLimiter(store *RateLimitStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, windowEnd := store.Allow(c.ClientIP())
		if !ok {
			retry := int(time.Until(windowEnd).Seconds()) + 1
			c.Header("Retry-After", strconv.Itoa(retry))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("Demasiadas solicitudes. Intente nuevamente en un momento."))
			return
		}
		c.Next()
	}
}
