package quantummeadow

import (
	"sync"
	"time"
)

// SessionPool keeps one Controller per browser session in memory. Sessions
// are dropped after an idle period or, oldest first, when the pool is full.
// Nothing survives a process restart.
type SessionPool struct {
	mu          sync.RWMutex
	sessions    map[string]*pooledSession
	queue       []string // FIFO of session IDs in creation order
	fetcher     Fetcher
	maxSessions int
	now         func() time.Time
}

type pooledSession struct {
	controller *Controller
	lastSeen   time.Time
}

// NewSessionPool creates a pool whose controllers fetch from fetcher.
// maxSessions <= 0 means unlimited.
func NewSessionPool(fetcher Fetcher, maxSessions int) *SessionPool {
	return &SessionPool{
		sessions:    make(map[string]*pooledSession),
		queue:       make([]string, 0),
		fetcher:     fetcher,
		maxSessions: maxSessions,
		now:         time.Now,
	}
}

// Get returns the controller for id, creating a fresh session on first use
func (sp *SessionPool) Get(id string) *Controller {
	sp.mu.Lock()
	defer sp.mu.Unlock()

	if s, ok := sp.sessions[id]; ok {
		s.lastSeen = sp.now()
		return s.controller
	}

	for sp.maxSessions > 0 && len(sp.queue) >= sp.maxSessions {
		oldest := sp.queue[0]
		sp.queue = sp.queue[1:]
		delete(sp.sessions, oldest)
		VerboseLog("Evicted session %s: pool full", oldest)
	}

	s := &pooledSession{
		controller: NewController(sp.fetcher),
		lastSeen:   sp.now(),
	}
	sp.sessions[id] = s
	sp.queue = append(sp.queue, id)
	return s.controller
}

// Sweep drops sessions not seen for longer than idle and returns how many
func (sp *SessionPool) Sweep(idle time.Duration) int {
	sp.mu.Lock()
	defer sp.mu.Unlock()

	cutoff := sp.now().Add(-idle)
	removed := 0
	kept := sp.queue[:0]
	for _, id := range sp.queue {
		if sp.sessions[id].lastSeen.Before(cutoff) {
			delete(sp.sessions, id)
			removed++
			continue
		}
		kept = append(kept, id)
	}
	sp.queue = kept
	return removed
}

// Size returns the number of sessions in the pool
func (sp *SessionPool) Size() int {
	sp.mu.RLock()
	defer sp.mu.RUnlock()
	return len(sp.queue)
}
