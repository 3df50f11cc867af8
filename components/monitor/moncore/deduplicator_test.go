package moncore

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/open-control-systems/netwatch/components/device/devcore"
)

func TestSignatureOf(t *testing.T) {
	a := devcore.LogRecord{Time: "10:00:01", Message: "user=alice logged in"}
	b := devcore.LogRecord{Time: "10:00:02", Message: "user=alice logged in"}

	require.Equal(t, SignatureOf(a), SignatureOf(a))
	require.NotEqual(t, SignatureOf(a), SignatureOf(b))

	// Topics and ID don't affect identity.
	c := a
	c.ID = "*5"
	c.Topics = "hotspot"
	require.Equal(t, SignatureOf(a), SignatureOf(c))

	// Field boundaries are part of the signature.
	require.NotEqual(t,
		SignatureOf(devcore.LogRecord{Time: "1", Message: "0 x"}),
		SignatureOf(devcore.LogRecord{Time: "10", Message: " x"}),
	)
}

func TestDeduplicatorSeenRemember(t *testing.T) {
	dedup := NewDeduplicator(10)

	sig := SignatureOf(devcore.LogRecord{Time: "10:00:01", Message: "user=alice logged in"})

	require.False(t, dedup.Seen(sig))
	dedup.Remember(sig)
	require.True(t, dedup.Seen(sig))
	require.Equal(t, 1, dedup.Len())

	dedup.Remember(sig)
	require.Equal(t, 1, dedup.Len())
}

func TestDeduplicatorEviction(t *testing.T) {
	dedup := NewDeduplicator(3)

	for i := 0; i < 3; i++ {
		dedup.Remember(fmt.Sprintf("sig-%d", i))
	}

	// Refresh sig-0, so sig-1 becomes the least recently used.
	require.True(t, dedup.Seen("sig-0"))

	dedup.Remember("sig-3")

	require.Equal(t, 3, dedup.Len())
	require.True(t, dedup.Seen("sig-0"))
	require.False(t, dedup.Seen("sig-1"))
	require.True(t, dedup.Seen("sig-2"))
	require.True(t, dedup.Seen("sig-3"))
}

func TestDeduplicatorDefaultCapacity(t *testing.T) {
	dedup := NewDeduplicator(0)

	for i := 0; i < DefaultDedupCapacity+10; i++ {
		dedup.Remember(fmt.Sprintf("sig-%d", i))
	}

	require.Equal(t, DefaultDedupCapacity, dedup.Len())
}
