package compose

import (
	"context"
	"sync"
	"time"

	"mywall/utils"
)

// Draft is one in-progress post owned by a user.
type Draft struct {
	ID        string
	UserID    string
	Collector *Collector
	CreatedAt time.Time
}

// Store holds open drafts in memory. Discarding or expiring a draft releases
// its preview handles.
type Store struct {
	mu       sync.Mutex
	drafts   map[string]*Draft
	previews Previewer
	ttl      time.Duration
}

func NewStore(previews Previewer, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Store{
		drafts:   make(map[string]*Draft),
		previews: previews,
		ttl:      ttl,
	}
}

func (s *Store) Create(userID string) *Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := &Draft{
		ID:        "d" + utils.GenerateRandomString(12),
		UserID:    userID,
		Collector: NewCollector(s.previews),
		CreatedAt: time.Now(),
	}
	s.drafts[d.ID] = d
	return d
}

// Get returns the draft only when it belongs to the given user.
func (s *Store) Get(id, userID string) (*Draft, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drafts[id]
	if !ok || d.UserID != userID {
		return nil, false
	}
	return d, true
}

// Discard releases the draft's previews and forgets it.
func (s *Store) Discard(id, userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drafts[id]
	if !ok || d.UserID != userID {
		return false
	}
	d.Collector.Clear()
	delete(s.drafts, id)
	return true
}

// Forget removes a submitted draft, releasing what previews remain.
func (s *Store) Forget(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.drafts[id]; ok {
		d.Collector.Clear()
		delete(s.drafts, id)
	}
}

// StartSweeper expires abandoned drafts until ctx is cancelled.
func (s *Store) StartSweeper(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep()
			}
		}
	}()
}

func (s *Store) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := time.Now().Add(-s.ttl)
	for id, d := range s.drafts {
		if d.CreatedAt.Before(cutoff) {
			d.Collector.Clear()
			delete(s.drafts, id)
		}
	}
}
