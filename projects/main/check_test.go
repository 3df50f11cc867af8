package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/open-control-systems/netwatch/components/device/devcore"
)

type testCheckService struct {
	records []devcore.LogRecord
	filter  devcore.LogFilter
}

func (s *testCheckService) QueryLogs(
	_ context.Context,
	filter devcore.LogFilter,
) ([]devcore.LogRecord, error) {
	s.filter = filter

	return s.records, nil
}

func (*testCheckService) QueryCounters(_ context.Context, _ string) (devcore.Counters, error) {
	return devcore.Counters{}, devcore.ErrNotFound
}

func (*testCheckService) QueryInterfaces(_ context.Context) ([]devcore.Counters, error) {
	return nil, nil
}

func TestCheckLogs(t *testing.T) {
	service := &testCheckService{
		records: []devcore.LogRecord{
			{Time: "10:00:01", Message: "hotspot user=alice logged in 10.0.0.5"},
			{Time: "10:00:02", Message: "hotspot login failed, user=bob"},
			{Time: "10:00:03", Message: "hotspot status changed"},
		},
	}

	config := &Config{}
	config.Device.LogLimit = 10
	config.Monitor.IncludeFailed = true

	var buf bytes.Buffer
	require.NoError(t, checkLogs(context.Background(), &buf, service, config))
	require.Equal(t, 10, service.filter.Limit)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	require.Contains(t, lines[0], "login")
	require.Contains(t, lines[0], "send")
	require.Contains(t, lines[0], "user=alice")
	require.Contains(t, lines[2], "skip")
}

func TestCheckLogsEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, checkLogs(context.Background(), &buf, &testCheckService{}, &Config{}))
	require.Equal(t, "no relevant log records\n", buf.String())
}

func TestVersionCmd(t *testing.T) {
	cmd := newRootCmd()

	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	require.True(t, strings.HasPrefix(buf.String(), "netwatch dev"))
}
