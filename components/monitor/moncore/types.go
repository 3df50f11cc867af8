package moncore

import (
	"fmt"
	"strings"
	"time"

	"github.com/open-control-systems/netwatch/components/status"
)

// Kind is a kind of the monitoring session.
type Kind string

const (
	// KindLogActivity watches the device log for user activity.
	KindLogActivity Kind = "log"

	// KindThroughput watches the interface byte counters.
	KindThroughput Kind = "throughput"
)

// ParseKind converts a textual kind representation to Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "log", "activity", "hotspot":
		return KindLogActivity, nil
	case "throughput", "traffic", "interface":
		return KindThroughput, nil
	default:
		return "", fmt.Errorf("unknown monitoring kind: kind=%s: %w", s, status.StatusInvalidArg)
	}
}

// Status is a monitoring session state.
//
// Remarks:
//   - Transitions are monotonic: Active -> Stopping -> Stopped.
type Status int

const (
	// StatusActive - the session is polled periodically.
	StatusActive Status = iota

	// StatusStopping - the session was asked to stop, a tick may still be in flight.
	StatusStopping

	// StatusStopped - the session is finished and released.
	StatusStopped
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusStopping:
		return "stopping"
	case StatusStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	switch string(text) {
	case "active":
		*s = StatusActive
	case "stopping":
		*s = StatusStopping
	case "stopped":
		*s = StatusStopped
	default:
		return fmt.Errorf("unknown session status: status=%s: %w", text, status.StatusInvalidArg)
	}

	return nil
}

// Key identifies a monitoring session.
type Key struct {
	SubscriberID string
	Kind         Kind
}

func (k Key) String() string {
	return k.SubscriberID + "/" + string(k.Kind)
}

// Options contains the monitoring session configuration.
type Options struct {
	// Interval - polling period, should be positive.
	Interval time.Duration

	// IncludeFailed - deliver failed login attempts in addition to login and logout.
	IncludeFailed bool
}

// ThroughputSample is a throughput computed from two counter snapshots.
type ThroughputSample struct {
	IntervalSeconds float64   `json:"interval_seconds"`
	DownloadMbps    float64   `json:"download_mbps"`
	UploadMbps      float64   `json:"upload_mbps"`
	MeasuredAt      time.Time `json:"measured_at"`
}
