package httpapi

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type RateLimitConfig struct {
	// PerMinute is the sustained check-in rate per kiosk; 0 disables limiting.
	PerMinute int
	Burst     int

	// IdleTTL drops limiters for kiosks idle this long.  Defaults to 10m.
	IdleTTL time.Duration
}

type kioskEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// kioskLimiter rate limits check-ins per kiosk ID.
type kioskLimiter struct {
	cfg    RateLimitConfig
	limit  rate.Limit
	logger *slog.Logger

	mu      sync.Mutex
	entries map[string]*kioskEntry

	stopCh   chan struct{}
	stopOnce sync.Once
}

func newKioskLimiter(cfg RateLimitConfig, logger *slog.Logger) *kioskLimiter {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 10 * time.Minute
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	l := &kioskLimiter{
		cfg:     cfg,
		limit:   rate.Limit(float64(cfg.PerMinute) / 60.0),
		logger:  logger,
		entries: make(map[string]*kioskEntry),
		stopCh:  make(chan struct{}),
	}
	if cfg.PerMinute > 0 {
		go l.cleanupLoop()
	}
	return l
}

func (l *kioskLimiter) enabled() bool { return l.cfg.PerMinute > 0 }

// Stop ends the cleanup goroutine.  Safe to call more than once.
func (l *kioskLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stopCh) })
}

// allow charges one check-in to kioskID.  When the budget is spent it
// writes a 429 and returns false.  Callers skip it for tokens the debouncer
// will drop.
func (l *kioskLimiter) allow(w http.ResponseWriter, kioskID string) bool {
	if !l.enabled() || l.get(kioskID).Allow() {
		return true
	}
	retry := int(math.Ceil(1 / float64(l.limit)))
	w.Header().Set("Retry-After", strconv.Itoa(retry))
	writeError(w, http.StatusTooManyRequests, "rate_limited", "too many check-ins from this kiosk")
	l.logger.Warn("rate limit exceeded", "kiosk_id", kioskID)
	return false
}

func (l *kioskLimiter) get(kioskID string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[kioskID]
	if !ok {
		e = &kioskEntry{limiter: rate.NewLimiter(l.limit, l.cfg.Burst)}
		l.entries[kioskID] = e
	}
	e.lastAccess = time.Now()
	return e.limiter
}

func (l *kioskLimiter) cleanupLoop() {
	ticker := time.NewTicker(l.cfg.IdleTTL)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopCh:
			return
		case <-ticker.C:
			l.cleanup(time.Now())
		}
	}
}

func (l *kioskLimiter) cleanup(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for id, e := range l.entries {
		if now.Sub(e.lastAccess) > l.cfg.IdleTTL {
			delete(l.entries, id)
		}
	}
}
