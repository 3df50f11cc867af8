package devcore

import (
	"context"
	"time"
)

// LogRecord is a single line from the device log.
type LogRecord struct {
	// ID is a device-assigned record identifier, may be empty.
	ID string `json:"id,omitempty"`

	// Time is a record timestamp as reported by the device.
	Time string `json:"time"`

	// Message is a record text.
	Message string `json:"message"`

	// Topics is a comma-separated list of record topics, may be empty.
	Topics string `json:"topics,omitempty"`
}

// Counters is a snapshot of the interface byte counters.
type Counters struct {
	// Name is an interface name.
	Name string `json:"name"`

	// Type is an interface type, e.g. ether, wlan, bridge.
	Type string `json:"type,omitempty"`

	// Running is true if the interface link is up.
	Running bool `json:"running"`

	// ReceivedBytes is a total number of bytes received by the interface.
	ReceivedBytes uint64 `json:"received_bytes"`

	// TransmittedBytes is a total number of bytes transmitted by the interface.
	TransmittedBytes uint64 `json:"transmitted_bytes"`
}

// LogFilter restricts the set of log records returned by the device.
type LogFilter struct {
	// Since - records older than this time are excluded, zero value disables the filter.
	Since time.Time

	// Limit - maximum number of the most recent records, zero means no limit.
	Limit int
}

// QueryService provides read-only access to the device state.
//
// Remarks:
//   - Implementation should be thread-safe.
//   - Errors should wrap ErrUnreachable, ErrAuthFailed, ErrTimeout or ErrNotFound
//     where applicable.
type QueryService interface {
	// QueryLogs returns log records in chronological order.
	QueryLogs(ctx context.Context, filter LogFilter) ([]LogRecord, error)

	// QueryCounters returns the current byte counters of the target interface.
	//
	// Remarks:
	//  - ErrNotFound is returned if the interface doesn't exist.
	QueryCounters(ctx context.Context, target string) (Counters, error)

	// QueryInterfaces returns counters of all device interfaces.
	QueryInterfaces(ctx context.Context) ([]Counters, error)
}
