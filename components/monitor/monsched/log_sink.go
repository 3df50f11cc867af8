package monsched

import (
	"context"
	"strings"

	"github.com/open-control-systems/netwatch/components/core"
)

// LogSink writes notifications to the application log.
//
// Remarks:
//   - Used when no messenger is configured, e.g. when the sessions are
//     controlled over HTTP API only and the data is exported to influxDB.
type LogSink struct{}

// Send logs the message.
func (LogSink) Send(_ context.Context, subscriberID string, msg Message) error {
	core.LogInf.Printf("notification: subscriber=%s kind=%s text=%q\n",
		subscriberID, msg.Kind, strings.TrimSpace(msg.Text))

	return nil
}
