package moncore

import (
	"regexp"
	"strings"

	"github.com/open-control-systems/netwatch/components/device/devcore"
)

// EventType is a type of the user activity.
type EventType string

const (
	EventLogin   EventType = "login"
	EventLogout  EventType = "logout"
	EventFailed  EventType = "failed"
	EventUnknown EventType = "unknown"
)

// ActivityRecord is a user activity parsed from the device log record.
type ActivityRecord struct {
	Timestamp       string    `json:"timestamp"`
	Username        string    `json:"username,omitempty"`
	EventType       EventType `json:"event_type"`
	SourceAddress   string    `json:"source_address,omitempty"`
	HardwareAddress string    `json:"hardware_address,omitempty"`
	RawMessage      string    `json:"raw_message"`
}

var (
	usernameRe = regexp.MustCompile(`(?i)user[=:\s]+([^\s,]+)`)
	ipv4Re     = regexp.MustCompile(`\b(?:(?:25[0-5]|2[0-4]\d|1?\d?\d)\.){3}(?:25[0-5]|2[0-4]\d|1?\d?\d)\b`)
	macRe      = regexp.MustCompile(`\b(?:[0-9a-fA-F]{2}:){5}[0-9a-fA-F]{2}\b`)
)

// Order matters, the first matched rule wins.
var eventRules = []struct {
	event    EventType
	keywords []string
}{
	{event: EventLogin, keywords: []string{"login", "logged in"}},
	{event: EventLogout, keywords: []string{"logout", "logged out"}},
	{event: EventFailed, keywords: []string{"failed"}},
}

// Classify parses the raw log record into the user activity.
//
// Remarks:
//   - Sub-fields that can't be extracted are left empty.
func Classify(record devcore.LogRecord) ActivityRecord {
	activity := ActivityRecord{
		Timestamp:  record.Time,
		EventType:  classifyEvent(record.Message),
		RawMessage: record.Message,
	}

	if m := usernameRe.FindStringSubmatch(record.Message); m != nil {
		activity.Username = m[1]
	}

	activity.SourceAddress = ipv4Re.FindString(record.Message)
	activity.HardwareAddress = macRe.FindString(record.Message)

	return activity
}

// IsDeliverable returns true if the activity should be sent to the subscriber.
//
// Remarks:
//   - Activities without username are never delivered, the device reports
//     some of them as "unknown".
func IsDeliverable(activity ActivityRecord, opts Options) bool {
	if activity.Username == "" || strings.EqualFold(activity.Username, "unknown") {
		return false
	}

	switch activity.EventType {
	case EventLogin, EventLogout:
		return true
	case EventFailed:
		return opts.IncludeFailed
	default:
		return false
	}
}

func classifyEvent(message string) EventType {
	message = strings.ToLower(message)

	for _, rule := range eventRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(message, keyword) {
				return rule.event
			}
		}
	}

	return EventUnknown
}
