package monstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/open-control-systems/netwatch/components/core"
	"github.com/open-control-systems/netwatch/components/monitor/moncore"
	"github.com/open-control-systems/netwatch/components/status"
	"github.com/open-control-systems/netwatch/components/system/syscore"
)

// RegistryParams represents various options for Registry.
type RegistryParams struct {
	// DedupCapacity - maximum number of remembered log signatures per session.
	DedupCapacity int

	// MinInterval - shortest accepted polling period, 0 means any positive period.
	MinInterval time.Duration
}

// Registry owns the monitoring sessions.
//
// Remarks:
//   - At most one active session exists per key.
//   - A stopping session may be replaced by a new one for the same key,
//     it's released with Remove() once its last tick completes.
type Registry struct {
	ctx    context.Context
	clock  syscore.MonotonicClock
	params RegistryParams

	mu       sync.Mutex
	lastID   uint64
	sessions map[moncore.Key]*moncore.Session
}

// NewRegistry is an initialization of Registry.
//
// Parameters:
//   - ctx - parent context for all sessions.
//   - clock to stamp the session creation time.
//   - params - various registry options.
func NewRegistry(
	ctx context.Context,
	clock syscore.MonotonicClock,
	params RegistryParams,
) *Registry {
	return &Registry{
		ctx:      ctx,
		clock:    clock,
		params:   params,
		sessions: make(map[moncore.Key]*moncore.Session),
	}
}

// Start creates a new active session.
//
// Remarks:
//   - ErrAlreadyActive is returned if an active session exists for the key.
func (r *Registry) Start(
	key moncore.Key,
	target string,
	opts moncore.Options,
) (*moncore.Session, error) {
	if key.SubscriberID == "" {
		return nil, fmt.Errorf("monstore: empty subscriber: %w", status.StatusInvalidArg)
	}

	if opts.Interval <= 0 {
		return nil, fmt.Errorf("monstore: invalid interval: interval=%v: %w",
			opts.Interval, status.StatusInvalidArg)
	}

	if opts.Interval < r.params.MinInterval {
		return nil, fmt.Errorf("monstore: interval too short: interval=%v min=%v: %w",
			opts.Interval, r.params.MinInterval, status.StatusInvalidArg)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if session, ok := r.sessions[key]; ok && session.Status() == moncore.StatusActive {
		return nil, ErrAlreadyActive
	}

	r.lastID++

	session := moncore.NewSession(r.ctx, moncore.SessionParams{
		ID:            r.lastID,
		Key:           key,
		Target:        target,
		Options:       opts,
		CreatedAt:     r.clock.Now(),
		DedupCapacity: r.params.DedupCapacity,
	})

	r.sessions[key] = session

	core.LogInf.Printf("session-registry: session started: key=%s target=%s interval=%v\n",
		key, target, opts.Interval)

	return session, nil
}

// Stop asks the active session to stop.
//
// Remarks:
//   - ErrNotActive is returned if there is no active session for the key.
func (r *Registry) Stop(key moncore.Key, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[key]
	if !ok || !session.Stop(reason) {
		return ErrNotActive
	}

	core.LogInf.Printf("session-registry: session stopping: key=%s reason=%s\n", key, reason)

	return nil
}

// Status returns the session snapshot.
//
// Remarks:
//   - false is returned if no session is registered for the key.
func (r *Registry) Status(key moncore.Key) (moncore.Snapshot, bool) {
	r.mu.Lock()
	session, ok := r.sessions[key]
	r.mu.Unlock()

	if !ok {
		return moncore.Snapshot{}, false
	}

	return session.Snapshot(), true
}

// IsActive returns true if an active session is registered for the key.
func (r *Registry) IsActive(key moncore.Key) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[key]

	return ok && session.Status() == moncore.StatusActive
}

// Remove releases the registry entry if it still refers to the session.
func (r *Registry) Remove(session *moncore.Session) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sessions[session.Key()] != session {
		return false
	}

	delete(r.sessions, session.Key())

	core.LogInf.Printf("session-registry: session removed: key=%s\n", session.Key())

	return true
}

// Keys returns keys of all registered sessions.
func (r *Registry) Keys() []moncore.Key {
	r.mu.Lock()
	defer r.mu.Unlock()

	var keys []moncore.Key

	for key := range r.sessions {
		keys = append(keys, key)
	}

	return keys
}

// StopAll asks all active sessions to stop.
func (r *Registry) StopAll(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, session := range r.sessions {
		if session.Stop(reason) {
			core.LogInf.Printf("session-registry: session stopping: key=%s reason=%s\n",
				key, reason)
		}
	}
}
