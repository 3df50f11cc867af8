package moncore

import (
	"math"
	"time"

	"github.com/open-control-systems/netwatch/components/device/devcore"
)

// Rate returns the throughput in megabits per second.
//
// Remarks:
//   - Counter reset (curr < prev) and non-positive elapsed time yield 0.
func Rate(prev, curr uint64, elapsedSeconds float64) float64 {
	if elapsedSeconds <= 0 || math.IsNaN(elapsedSeconds) || math.IsInf(elapsedSeconds, 0) {
		return 0
	}

	if curr < prev {
		return 0
	}

	return float64(curr-prev) / elapsedSeconds * 8 / 1_000_000
}

// NewThroughputSample computes the throughput between two counter snapshots.
//
// Parameters:
//   - prev - older snapshot.
//   - curr - newer snapshot of the same interface.
//   - elapsed - time passed between snapshots.
//   - measuredAt - time of the newer snapshot.
func NewThroughputSample(
	prev, curr devcore.Counters,
	elapsed time.Duration,
	measuredAt time.Time,
) ThroughputSample {
	seconds := elapsed.Seconds()

	return ThroughputSample{
		IntervalSeconds: seconds,
		DownloadMbps:    Rate(prev.ReceivedBytes, curr.ReceivedBytes, seconds),
		UploadMbps:      Rate(prev.TransmittedBytes, curr.TransmittedBytes, seconds),
		MeasuredAt:      measuredAt,
	}
}
