package httpapi

import (
	"sync"
	"time"
)

// Limiter is the swappable rate-limiting policy.
type Limiter interface {
	Allow(key string) bool
}

// SlidingWindow allows at most limit calls per window per key.
type SlidingWindow struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	now    func() time.Time
	calls  map[string][]time.Time
}

func NewSlidingWindow(limit int, window time.Duration) *SlidingWindow {
	return &SlidingWindow{
		limit:  limit,
		window: window,
		now:    time.Now,
		calls:  make(map[string][]time.Time),
	}
}

func (s *SlidingWindow) Allow(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	cutoff := now.Add(-s.window)

	kept := s.calls[key][:0]
	for _, t := range s.calls[key] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	if len(kept) >= s.limit {
		s.calls[key] = kept
		return false
	}
	s.calls[key] = append(kept, now)
	return true
}

// Unlimited ignores every key. Used when rate limiting is disabled.
type Unlimited struct{}

func (Unlimited) Allow(string) bool { return true }
