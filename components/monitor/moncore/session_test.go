package moncore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/open-control-systems/netwatch/components/device/devcore"
)

func newTestSession() *Session {
	return NewSession(context.Background(), SessionParams{
		Key:       Key{SubscriberID: "42", Kind: KindThroughput},
		Target:    "ether1",
		Options:   Options{Interval: time.Second * 3},
		CreatedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	})
}

func TestSessionStatusTransitions(t *testing.T) {
	session := newTestSession()
	require.Equal(t, StatusActive, session.Status())
	require.Nil(t, session.Context().Err())

	require.True(t, session.Stop("user request"))
	require.Equal(t, StatusStopping, session.Status())
	require.NotNil(t, session.Context().Err())

	require.False(t, session.Stop("again"))
	require.Equal(t, "user request", session.StopReason())

	require.True(t, session.MarkStopped())
	require.Equal(t, StatusStopped, session.Status())

	require.False(t, session.MarkStopped())
	require.False(t, session.Stop("again"))
	require.Equal(t, StatusStopped, session.Status())
}

func TestSessionLastPollTimeNonDecreasing(t *testing.T) {
	session := newTestSession()

	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	require.Equal(t, created, session.LastPollTime())

	session.RecordPoll(created.Add(time.Second * 3))
	require.Equal(t, created.Add(time.Second*3), session.LastPollTime())

	session.RecordPoll(created.Add(time.Second))
	require.Equal(t, created.Add(time.Second*3), session.LastPollTime())

	snapshot := session.Snapshot()
	require.Equal(t, uint64(2), snapshot.PollCount)
}

func TestSessionFailureCounter(t *testing.T) {
	session := newTestSession()

	require.Equal(t, 1, session.RecordFailure())
	require.Equal(t, 2, session.RecordFailure())

	session.RecordPoll(time.Now())

	require.Equal(t, 1, session.RecordFailure())
}

func TestSessionCounters(t *testing.T) {
	session := newTestSession()

	_, _, ok := session.LastCounters()
	require.False(t, ok)

	at := time.Date(2024, 5, 1, 10, 0, 3, 0, time.UTC)
	counters := devcore.Counters{Name: "ether1", ReceivedBytes: 10, TransmittedBytes: 20}

	session.SetLastCounters(counters, at)

	got, gotAt, ok := session.LastCounters()
	require.True(t, ok)
	require.Equal(t, counters, got)
	require.Equal(t, at, gotAt)

	snapshot := session.Snapshot()
	require.Equal(t, &counters, snapshot.LastCounters)

	// Snapshot doesn't alias the session state.
	snapshot.LastCounters.ReceivedBytes = 100

	got, _, _ = session.LastCounters()
	require.Equal(t, uint64(10), got.ReceivedBytes)
}

func TestSessionSnapshot(t *testing.T) {
	session := newTestSession()

	session.Deduplicator().Remember("sig-1")
	session.RecordDelivery()
	session.RecordDelivery()

	snapshot := session.Snapshot()
	require.Equal(t, "42", snapshot.SubscriberID)
	require.Equal(t, KindThroughput, snapshot.Kind)
	require.Equal(t, "ether1", snapshot.Target)
	require.Equal(t, int64(3000), snapshot.IntervalMs)
	require.True(t, snapshot.Active)
	require.Equal(t, uint64(2), snapshot.DeliveredCount)
	require.Equal(t, 1, snapshot.KnownSignatures)
	require.Nil(t, snapshot.LastSample)
}

func TestParseKind(t *testing.T) {
	kind, err := ParseKind("log")
	require.Nil(t, err)
	require.Equal(t, KindLogActivity, kind)

	kind, err = ParseKind(" Traffic ")
	require.Nil(t, err)
	require.Equal(t, KindThroughput, kind)

	_, err = ParseKind("foo")
	require.NotNil(t, err)
}
