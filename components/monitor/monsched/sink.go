package monsched

import (
	"context"
	"errors"

	"github.com/open-control-systems/netwatch/components/monitor/moncore"
)

// ErrDeliveryFailed is returned when the notification can't be delivered to the subscriber.
var ErrDeliveryFailed = errors.New("notification delivery failed")

// Message is a notification payload.
type Message struct {
	// Kind of the session the message belongs to.
	Kind moncore.Kind

	// SessionID of the session the message belongs to.
	SessionID uint64

	// Text is a human-readable message body.
	Text string

	// Stop - attach a control to stop the session of this Kind.
	Stop bool

	// Replace - update the previous message of this session instead of sending a new one.
	Replace bool
}

// Sink delivers notifications to subscribers.
//
// Remarks:
//   - Implementation should be thread-safe.
//   - Errors should wrap ErrDeliveryFailed.
type Sink interface {
	// Send delivers the message to the subscriber.
	Send(ctx context.Context, subscriberID string, msg Message) error
}
