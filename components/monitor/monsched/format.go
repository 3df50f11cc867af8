package monsched

import (
	"fmt"
	"strings"
	"time"

	"github.com/open-control-systems/netwatch/components/monitor/moncore"
)

var (
	activityIcons = map[moncore.EventType]string{
		moncore.EventLogin:  "🔓",
		moncore.EventLogout: "🔒",
		moncore.EventFailed: "❌",
	}

	activityActions = map[moncore.EventType]string{
		moncore.EventLogin:  "logged in",
		moncore.EventLogout: "logged out",
		moncore.EventFailed: "login failed",
	}
)

// FormatActivity renders the user activity notification.
func FormatActivity(activity moncore.ActivityRecord) string {
	icon, ok := activityIcons[activity.EventType]
	if !ok {
		icon = "📝"
	}

	action, ok := activityActions[activity.EventType]
	if !ok {
		action = "activity"
	}

	var b strings.Builder

	fmt.Fprintf(&b, "%s User %s\n\n", icon, strings.ToUpper(action))
	fmt.Fprintf(&b, "👤 Username: %s\n", activity.Username)
	fmt.Fprintf(&b, "⏰ Time: %s\n", activity.Timestamp)

	if activity.SourceAddress != "" {
		fmt.Fprintf(&b, "📍 IP: %s\n", activity.SourceAddress)
	}

	if activity.HardwareAddress != "" {
		fmt.Fprintf(&b, "🔗 MAC: %s\n", activity.HardwareAddress)
	}

	fmt.Fprintf(&b, "\n📝 Detail: %s", activity.RawMessage)

	return b.String()
}

// FormatThroughput renders the interface throughput notification.
func FormatThroughput(target string, sample moncore.ThroughputSample) string {
	return fmt.Sprintf("🚀 Real-time speed: [%s]\n"+
		"-------------------------------------\n"+
		"⬇️ Download (RX): %.2f Mbps\n"+
		"⬆️ Upload (TX):   %.2f Mbps\n"+
		"-------------------------------------\n"+
		"Last update: %s",
		target, sample.DownloadMbps, sample.UploadMbps,
		sample.MeasuredAt.Format(time.TimeOnly))
}

// FormatStarted renders the start confirmation.
func FormatStarted(snapshot moncore.Snapshot) string {
	switch snapshot.Kind {
	case moncore.KindThroughput:
		return fmt.Sprintf("⏳ Collecting data for %s, update every %v...",
			snapshot.Target, snapshot.Interval)

	default:
		return fmt.Sprintf("🔍 Hotspot monitoring started\n\n"+
			"Notifications are sent every %v for:\n"+
			"🔓 User login\n"+
			"🔒 User logout\n"+
			"❌ Failed login\n\n"+
			"Use the button below to stop monitoring.", snapshot.Interval)
	}
}

// FormatStopped renders the final notification of the session.
func FormatStopped(snapshot moncore.Snapshot) string {
	var b strings.Builder

	switch snapshot.Kind {
	case moncore.KindThroughput:
		fmt.Fprintf(&b, "⏹️ Throughput monitoring stopped: [%s]", snapshot.Target)
	default:
		b.WriteString("⏹️ Hotspot monitoring stopped")
	}

	if snapshot.StopReason != "" {
		fmt.Fprintf(&b, "\nReason: %s", snapshot.StopReason)
	}

	return b.String()
}

// FormatStatus renders the session status.
func FormatStatus(snapshot moncore.Snapshot) string {
	var b strings.Builder

	fmt.Fprintf(&b, "📊 Monitoring status: %s\n\n", snapshot.Status)
	fmt.Fprintf(&b, "Kind: %s\n", snapshot.Kind)

	if snapshot.Target != "" {
		fmt.Fprintf(&b, "Target: %s\n", snapshot.Target)
	}

	fmt.Fprintf(&b, "Interval: %v\n", snapshot.Interval)
	fmt.Fprintf(&b, "Polls: %d\n", snapshot.PollCount)
	fmt.Fprintf(&b, "Delivered: %d\n", snapshot.DeliveredCount)

	if snapshot.Kind == moncore.KindLogActivity {
		fmt.Fprintf(&b, "Known logs: %d\n", snapshot.KnownSignatures)
	}

	fmt.Fprintf(&b, "Last check: %s", snapshot.LastPollTime.Format(time.DateTime))

	return b.String()
}
