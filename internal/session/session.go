// Package session implements the gateway's session registry: the
// thread-safe, process-local mapping from session id to session record that
// outlives any single connection and is consulted on resume.
package session

import (
	"crypto/rand"
	"sync"
)

const idAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

const idLength = 32

// Shard identifies a client's shard placement as sent on Identify/Resume.
// Passed through opaquely; never interpreted by the registry.
type Shard struct {
	Index int
	Total int
}

// Session is the server-side record created from a successful Identify. It
// is never mutated after creation and is dropped only on explicit Destroy.
type Session struct {
	Shard    *Shard
	Compress bool
	Intents  uint64
}

// Registry is the shared, thread-safe session store. The zero value is not
// usable; construct with New.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]Session
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{sessions: make(map[string]Session)}
}

// Create inserts a new session built from the given record and returns its
// freshly generated 32-character alphanumeric id. The id is generated before
// the registry lock is taken.
func (r *Registry) Create(s Session) string {
	id := newID()

	r.mu.Lock()
	r.sessions[id] = s
	r.mu.Unlock()

	return id
}

// Exists reports whether a session with the given id is currently
// registered. The answer is a point-in-time snapshot and may be stale by the
// time the caller observes it.
func (r *Registry) Exists(id string) bool {
	r.mu.Lock()
	_, ok := r.sessions[id]
	r.mu.Unlock()
	return ok
}

// Get returns a copy of the session record for id, if any. The copy holds no
// reference to the registry's internal lock.
func (r *Registry) Get(id string) (Session, bool) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	r.mu.Unlock()
	return s, ok
}

// Destroy removes the session with the given id. Removing an unknown or
// already-removed id is a no-op, so Destroy is idempotent.
func (r *Registry) Destroy(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

// newID draws a 32-character id uniformly from idAlphabet using a
// cryptographic random source. Collisions on the resulting keyspace are an
// acceptable loss, per the registry's contract.
func newID() string {
	// Bytes at or above the largest multiple of len(idAlphabet) are discarded
	// so that every character of idAlphabet is equally likely.
	const limit = 256 - 256%len(idAlphabet)

	id := make([]byte, 0, idLength)
	buf := make([]byte, idLength)
	for len(id) < idLength {
		if _, err := rand.Read(buf); err != nil {
			panic("session: failed to read random bytes: " + err.Error())
		}
		for _, b := range buf {
			if int(b) < limit && len(id) < idLength {
				id = append(id, idAlphabet[int(b)%len(idAlphabet)])
			}
		}
	}
	return string(id)
}
