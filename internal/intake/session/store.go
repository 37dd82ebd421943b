package session

import (
	"sync"
	"time"
)

// Store holds all user sessions in memory with lazy expiry.
//
// Different users never block each other, but the get→mutate→update cycle
// for one user must be atomic: a channel can deliver two messages for the
// same user in close succession, and a lost update would desynchronize the
// conversation. Do serializes handling per user key.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	locks    map[string]*sync.Mutex
	timeout  time.Duration

	// now is swappable for expiry tests.
	now func() time.Time
}

// NewStore creates a store whose sessions expire after the given idle
// timeout.
func NewStore(timeout time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		locks:    make(map[string]*sync.Mutex),
		timeout:  timeout,
		now:      time.Now,
	}
}

// Get returns the user's session, creating one on first access. An expired
// session is reset in place before being returned, preserving its identity.
func (st *Store) Get(userID string) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, ok := st.sessions[userID]
	if !ok {
		s = New(userID, st.now())
		st.sessions[userID] = s
		return s
	}

	if st.expired(s) {
		s.Reset(st.now())
	}
	return s
}

// Update refreshes the session's last-activity time and stores it under its
// user key. Must be called after every mutation; expiry depends on it.
func (st *Store) Update(s *Session) {
	st.mu.Lock()
	defer st.mu.Unlock()

	s.UpdatedAt = st.now()
	st.sessions[s.UserID] = s
}

// Delete removes the user's session entirely. The user's key lock stays in
// the locks map: a handler may still hold it inside Do, and replacing it
// would let a second handler run concurrently for the same user.
func (st *Store) Delete(userID string) {
	st.mu.Lock()
	defer st.mu.Unlock()

	delete(st.sessions, userID)
}

// CleanupExpired evicts every expired session and returns how many were
// removed. Correctness does not depend on it running; it only bounds memory.
func (st *Store) CleanupExpired() int {
	st.mu.Lock()
	defer st.mu.Unlock()

	// Key locks are kept alive for the same reason as in Delete.
	removed := 0
	for userID, s := range st.sessions {
		if st.expired(s) {
			delete(st.sessions, userID)
			removed++
		}
	}
	return removed
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

func (st *Store) expired(s *Session) bool {
	return st.now().Sub(s.UpdatedAt) > st.timeout
}

// Do runs fn while holding the user's key lock, making the whole
// get→mutate→update cycle atomic for that user. Operations for different
// users proceed in parallel.
func (st *Store) Do(userID string, fn func(*Session) error) error {
	lock := st.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	return fn(st.Get(userID))
}

func (st *Store) userLock(userID string) *sync.Mutex {
	st.mu.Lock()
	defer st.mu.Unlock()

	lock, ok := st.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		st.locks[userID] = lock
	}
	return lock
}
