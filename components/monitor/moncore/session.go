package moncore

import (
	"context"
	"sync"
	"time"

	"github.com/open-control-systems/netwatch/components/device/devcore"
)

// Snapshot is a read-only view of the monitoring session.
type Snapshot struct {
	SubscriberID    string            `json:"subscriber_id"`
	Kind            Kind              `json:"kind"`
	Target          string            `json:"target,omitempty"`
	Interval        time.Duration     `json:"-"`
	IntervalMs      int64             `json:"interval_ms"`
	Status          Status            `json:"status"`
	Active          bool              `json:"active"`
	CreatedAt       time.Time         `json:"created_at"`
	LastPollTime    time.Time         `json:"last_poll_time"`
	PollCount       uint64            `json:"poll_count"`
	DeliveredCount  uint64            `json:"delivered_count"`
	KnownSignatures int               `json:"known_signatures"`
	LastCounters    *devcore.Counters `json:"last_counters,omitempty"`
	LastSample      *ThroughputSample `json:"last_sample,omitempty"`
	StopReason      string            `json:"stop_reason,omitempty"`
}

// SessionParams contains the monitoring session attributes.
type SessionParams struct {
	// ID - unique session identifier, a newer session has a greater ID.
	ID uint64

	Key     Key
	Target  string
	Options Options

	// CreatedAt is used as a lower bound of the first log query.
	CreatedAt time.Time

	// DedupCapacity - see NewDeduplicator().
	DedupCapacity int
}

// Session is the live state of one subscriber's ongoing monitoring request.
//
// Remarks:
//   - Thread-safe.
type Session struct {
	params SessionParams
	ctx    context.Context
	cancel context.CancelFunc
	seen   *Deduplicator

	mu             sync.Mutex
	status         Status
	stopReason     string
	lastPollTime   time.Time
	lastCounters   *devcore.Counters
	countersTime   time.Time
	lastSample     *ThroughputSample
	pollCount      uint64
	deliveredCount uint64
	failureCount   int
}

// NewSession creates an active session.
//
// Parameters:
//   - ctx - parent context, the session context is cancelled on Stop().
//   - params - session attributes.
func NewSession(ctx context.Context, params SessionParams) *Session {
	ctx, cancel := context.WithCancel(ctx)

	return &Session{
		params:       params,
		ctx:          ctx,
		cancel:       cancel,
		seen:         NewDeduplicator(params.DedupCapacity),
		status:       StatusActive,
		lastPollTime: params.CreatedAt,
	}
}

// ID returns the session identifier.
func (s *Session) ID() uint64 {
	return s.params.ID
}

// Key returns the session key.
func (s *Session) Key() Key {
	return s.params.Key
}

// Target returns the monitored resource name, empty for log monitoring.
func (s *Session) Target() string {
	return s.params.Target
}

// Options returns the session options.
func (s *Session) Options() Options {
	return s.params.Options
}

// Context returns the context cancelled when the session is asked to stop.
func (s *Session) Context() context.Context {
	return s.ctx
}

// Deduplicator returns the set of already processed log record signatures.
func (s *Session) Deduplicator() *Deduplicator {
	return s.seen
}

// Status returns the current session state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.status
}

// Stop moves an active session to the stopping state and cancels its context.
//
// Remarks:
//   - Returns false if the session isn't active.
func (s *Session) Stop(reason string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusActive {
		return false
	}

	s.status = StatusStopping
	s.stopReason = reason
	s.cancel()

	return true
}

// MarkStopped moves the session to the final state.
//
// Remarks:
//   - Returns false if the session was already stopped.
func (s *Session) MarkStopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == StatusStopped {
		return false
	}

	s.status = StatusStopped
	s.cancel()

	return true
}

// StopReason returns the reason passed to Stop().
func (s *Session) StopReason() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.stopReason
}

// LastPollTime returns the time of the last successful poll or the creation time.
func (s *Session) LastPollTime() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lastPollTime
}

// RecordPoll registers a successful poll.
//
// Remarks:
//   - lastPollTime never goes backwards.
//   - The consecutive failure counter is reset.
func (s *Session) RecordPoll(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if now.After(s.lastPollTime) {
		s.lastPollTime = now
	}

	s.pollCount++
	s.failureCount = 0
}

// RecordFailure registers a failed poll and returns the number of consecutive failures.
func (s *Session) RecordFailure() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failureCount++

	return s.failureCount
}

// RecordDelivery increments the number of delivered notifications.
func (s *Session) RecordDelivery() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.deliveredCount++
}

// LastCounters returns the last observed counters and the time they were taken.
func (s *Session) LastCounters() (devcore.Counters, time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lastCounters == nil {
		return devcore.Counters{}, time.Time{}, false
	}

	return *s.lastCounters, s.countersTime, true
}

// SetLastCounters stores the counters observed at the given time.
func (s *Session) SetLastCounters(counters devcore.Counters, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastCounters = &counters
	s.countersTime = at
}

// SetLastSample stores the most recent throughput sample.
func (s *Session) SetLastSample(sample ThroughputSample) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastSample = &sample
}

// Snapshot returns a consistent read-only view of the session.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := Snapshot{
		SubscriberID:    s.params.Key.SubscriberID,
		Kind:            s.params.Key.Kind,
		Target:          s.params.Target,
		Interval:        s.params.Options.Interval,
		IntervalMs:      s.params.Options.Interval.Milliseconds(),
		Status:          s.status,
		Active:          s.status == StatusActive,
		CreatedAt:       s.params.CreatedAt,
		LastPollTime:    s.lastPollTime,
		PollCount:       s.pollCount,
		DeliveredCount:  s.deliveredCount,
		KnownSignatures: s.seen.Len(),
		StopReason:      s.stopReason,
	}

	if s.lastCounters != nil {
		counters := *s.lastCounters
		snapshot.LastCounters = &counters
	}

	if s.lastSample != nil {
		sample := *s.lastSample
		snapshot.LastSample = &sample
	}

	return snapshot
}
