package moncore

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/open-control-systems/netwatch/components/device/devcore"
)

func TestRate(t *testing.T) {
	tests := []struct {
		prev    uint64
		curr    uint64
		elapsed float64
		want    float64
	}{
		{prev: 1_000_000, curr: 3_000_000, elapsed: 2, want: 8},
		{prev: 0, curr: 0, elapsed: 3, want: 0},
		{prev: 0, curr: 375_000, elapsed: 3, want: 1},
		{prev: 3_000_000, curr: 1_000_000, elapsed: 2, want: 0},
		{prev: 1_000_000, curr: 3_000_000, elapsed: 0, want: 0},
		{prev: 1_000_000, curr: 3_000_000, elapsed: -1, want: 0},
		{prev: 1_000_000, curr: 3_000_000, elapsed: math.NaN(), want: 0},
		{prev: 1_000_000, curr: 3_000_000, elapsed: math.Inf(1), want: 0},
	}

	for _, test := range tests {
		require.InDelta(t, test.want, Rate(test.prev, test.curr, test.elapsed), 1e-9)
	}
}

func TestRateLinear(t *testing.T) {
	base := Rate(0, 1000, 2)
	require.True(t, base > 0)

	for factor := uint64(1); factor <= 10; factor++ {
		require.InDelta(t, base*float64(factor), Rate(100, 100+1000*factor, 2), 1e-9)
	}
}

func TestNewThroughputSample(t *testing.T) {
	measuredAt := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	sample := NewThroughputSample(
		devcore.Counters{Name: "ether1", ReceivedBytes: 1_000_000, TransmittedBytes: 500},
		devcore.Counters{Name: "ether1", ReceivedBytes: 3_000_000, TransmittedBytes: 250_500},
		time.Second*2,
		measuredAt,
	)

	require.InDelta(t, 2.0, sample.IntervalSeconds, 1e-9)
	require.InDelta(t, 8.0, sample.DownloadMbps, 1e-9)
	require.InDelta(t, 1.0, sample.UploadMbps, 1e-9)
	require.Equal(t, measuredAt, sample.MeasuredAt)
}

func TestNewThroughputSampleCounterReset(t *testing.T) {
	sample := NewThroughputSample(
		devcore.Counters{ReceivedBytes: 3_000_000, TransmittedBytes: 3_000_000},
		devcore.Counters{ReceivedBytes: 10, TransmittedBytes: 10},
		time.Second*3,
		time.Now(),
	)

	require.Equal(t, float64(0), sample.DownloadMbps)
	require.Equal(t, float64(0), sample.UploadMbps)
}
