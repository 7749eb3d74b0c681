package server

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/at-ishikawa/literacy/internal/session"
)

const DefaultSessionIdleTimeout = 30 * time.Minute

type hostedSession struct {
	id         uuid.UUID
	userID     string
	controller *session.Controller
	createdAt  time.Time
	// guarded by sessionRegistry.mu
	lastAccess time.Time
}

// sessionRegistry keeps the sessions started through the API in memory.
// A session without requests for idleTimeout is closed and forgotten.
type sessionRegistry struct {
	idleTimeout time.Duration

	mu       sync.Mutex
	sessions map[uuid.UUID]*hostedSession
}

func newSessionRegistry(idleTimeout time.Duration) *sessionRegistry {
	if idleTimeout <= 0 {
		idleTimeout = DefaultSessionIdleTimeout
	}
	return &sessionRegistry{
		idleTimeout: idleTimeout,
		sessions:    make(map[uuid.UUID]*hostedSession),
	}
}

func (r *sessionRegistry) add(userID string, controller *session.Controller, now time.Time) *hostedSession {
	hosted := &hostedSession{
		id:         uuid.New(),
		userID:     userID,
		controller: controller,
		createdAt:  now,
		lastAccess: now,
	}
	r.mu.Lock()
	expired := r.evictLocked(now)
	r.sessions[hosted.id] = hosted
	r.mu.Unlock()

	closeAll(expired)
	return hosted
}

// get returns the session and marks it used at now.
func (r *sessionRegistry) get(id uuid.UUID, now time.Time) (*hostedSession, bool) {
	r.mu.Lock()
	expired := r.evictLocked(now)
	hosted, ok := r.sessions[id]
	if ok {
		hosted.lastAccess = now
	}
	r.mu.Unlock()

	closeAll(expired)
	return hosted, ok
}

func (r *sessionRegistry) remove(id uuid.UUID) bool {
	r.mu.Lock()
	hosted, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if ok {
		hosted.controller.Close()
	}
	return ok
}

func (r *sessionRegistry) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *sessionRegistry) evictLocked(now time.Time) []*hostedSession {
	var expired []*hostedSession
	for id, hosted := range r.sessions {
		if now.Sub(hosted.lastAccess) >= r.idleTimeout {
			expired = append(expired, hosted)
			delete(r.sessions, id)
		}
	}
	return expired
}

func closeAll(sessions []*hostedSession) {
	for _, hosted := range sessions {
		hosted.controller.Close()
	}
}
