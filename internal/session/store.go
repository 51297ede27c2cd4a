package session

import (
	"context"
	"sync"
	"time"

	"github.com/suPer8Hu/diy-assistant/internal/common"
)

// Store maps opaque session tokens to user ids.
type Store interface {
	New(ctx context.Context, userID uint64) (string, error)
	Lookup(ctx context.Context, token string) (uint64, bool, error)
	Delete(ctx context.Context, token string) error
}

type memEntry struct {
	userID    uint64
	expiresAt time.Time
}

const sweepEvery = time.Minute

// MemoryStore keeps sessions in process memory. Sessions do not survive restarts.
// Expired entries are dropped on lookup and by a sweep that New runs at most
// once per sweepEvery.
type MemoryStore struct {
	mu        sync.Mutex
	ttl       time.Duration
	sessions  map[string]memEntry
	now       func() time.Time
	lastSweep time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, sessions: make(map[string]memEntry), now: time.Now}
}

func (s *MemoryStore) New(ctx context.Context, userID uint64) (string, error) {
	token, err := common.NewULID()
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if now.Sub(s.lastSweep) >= sweepEvery {
		s.sweepLocked(now)
	}
	s.sessions[token] = memEntry{userID: userID, expiresAt: now.Add(s.ttl)}
	return token, nil
}

func (s *MemoryStore) sweepLocked(now time.Time) {
	for token, e := range s.sessions {
		if now.After(e.expiresAt) {
			delete(s.sessions, token)
		}
	}
	s.lastSweep = now
}

func (s *MemoryStore) Lookup(ctx context.Context, token string) (uint64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[token]
	if !ok {
		return 0, false, nil
	}
	if s.now().After(e.expiresAt) {
		delete(s.sessions, token)
		return 0, false, nil
	}
	return e.userID, true, nil
}

func (s *MemoryStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
	return nil
}
