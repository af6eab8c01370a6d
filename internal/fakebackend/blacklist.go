// ABOUTME: Expiring key set backing the refresh token blacklist
// ABOUTME: Thread-safe set using sync.Map with periodic cleanup

package fakebackend

import (
	"log/slog"
	"sync"
	"time"
)

type expiringSet struct {
	store sync.Map
	stop  chan struct{}
	once  sync.Once
}

func newExpiringSet() *expiringSet {
	s := &expiringSet{stop: make(chan struct{})}
	go s.startCleanup(time.Minute)
	return s
}

// Add keeps key in the set for ttl.
func (s *expiringSet) Add(key string, ttl time.Duration) {
	s.store.Store(key, time.Now().Add(ttl))
	slog.Debug("Blacklist add", "key", key, "ttl", ttl)
}

// Has reports whether key is in the set and not yet expired.
func (s *expiringSet) Has(key string) bool {
	val, ok := s.store.Load(key)
	if !ok {
		return false
	}
	if time.Now().After(val.(time.Time)) {
		s.store.Delete(key)
		return false
	}
	return true
}

// Close stops the cleanup goroutine.
func (s *expiringSet) Close() {
	s.once.Do(func() { close(s.stop) })
}

func (s *expiringSet) startCleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case now := <-ticker.C:
			s.store.Range(func(key, val any) bool {
				if now.After(val.(time.Time)) {
					s.store.Delete(key)
				}
				return true
			})
		}
	}
}
