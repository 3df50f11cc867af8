package tgcore

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/open-control-systems/netwatch/components/monitor/moncore"
	"github.com/open-control-systems/netwatch/components/status"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		text string
		want Command
	}{
		{"/monitor", StartLogCommand{}},
		{"/monitor@netwatch_bot", StartLogCommand{}},
		{"/traffic ether1", StartThroughputCommand{Target: "ether1"}},
		{"/traffic ether1 5s", StartThroughputCommand{Target: "ether1", Interval: time.Second * 5}},
		{"/stop", StopCommand{}},
		{"/stop traffic", StopCommand{Kind: moncore.KindThroughput}},
		{"/stop log", StopCommand{Kind: moncore.KindLogActivity}},
		{"/status", StatusCommand{}},
		{"/status log", StatusCommand{Kind: moncore.KindLogActivity}},
		{"/interfaces", InterfacesCommand{}},
		{"/help", HelpCommand{}},
		{"/start", HelpCommand{}},
	}

	for _, test := range tests {
		cmd, err := ParseCommand(test.text)
		require.NoError(t, err, test.text)
		require.Equal(t, test.want, cmd, test.text)
	}
}

func TestParseCommandInvalid(t *testing.T) {
	for _, text := range []string{"", "hello", "/unknown"} {
		_, err := ParseCommand(text)
		require.True(t, errors.Is(err, status.StatusNotSupported), text)
	}

	for _, text := range []string{"/traffic", "/traffic ether1 soon", "/traffic ether1 -1s", "/stop all"} {
		_, err := ParseCommand(text)
		require.True(t, errors.Is(err, status.StatusInvalidArg), text)
	}
}

func TestParseCallback(t *testing.T) {
	cmd, err := ParseCallback("stop:throughput")
	require.NoError(t, err)
	require.Equal(t, StopCommand{Kind: moncore.KindThroughput}, cmd)

	cmd, err = ParseCallback("traffic:ether2")
	require.NoError(t, err)
	require.Equal(t, StartThroughputCommand{Target: "ether2"}, cmd)

	_, err = ParseCallback("traffic:")
	require.True(t, errors.Is(err, status.StatusInvalidArg))

	_, err = ParseCallback("stop:foo")
	require.True(t, errors.Is(err, status.StatusInvalidArg))

	_, err = ParseCallback("reboot")
	require.True(t, errors.Is(err, status.StatusNotSupported))
}
