// Package playqueue keeps each user's saved play queue in memory.
package playqueue

import (
	"sync"
	"time"
)

// Queue is a saved play queue. IDs are opaque song IDs in play order.
type Queue struct {
	IDs       []string
	Current   string
	Position  int64 // milliseconds into Current
	Changed   time.Time
	ChangedBy string
}

// Store maps user names to their last saved queue.
type Store struct {
	mu     sync.Mutex
	queues map[string]Queue
	now    func() time.Time
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{queues: make(map[string]Queue), now: time.Now}
}

// Save replaces the queue for user and stamps it with the current time and the saving client.
func (s *Store) Save(user string, ids []string, current string, position int64, client string) Queue {
	q := Queue{
		IDs:       append([]string(nil), ids...),
		Current:   current,
		Position:  position,
		Changed:   s.now().UTC(),
		ChangedBy: client,
	}

	s.mu.Lock()
	s.queues[user] = q
	s.mu.Unlock()
	return q
}

// Get returns the queue saved for user.
func (s *Store) Get(user string) (Queue, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.queues[user]
	if !ok {
		return Queue{}, false
	}
	q.IDs = append([]string(nil), q.IDs...)
	return q, true
}

// Clear removes the queue saved for user.
func (s *Store) Clear(user string) {
	s.mu.Lock()
	delete(s.queues, user)
	s.mu.Unlock()
}
