package monhttp

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/open-control-systems/netwatch/components/device/devcore"
	"github.com/open-control-systems/netwatch/components/monitor/moncore"
	"github.com/open-control-systems/netwatch/components/monitor/monstore"
)

type testHandlerMonitor struct {
	mu       sync.Mutex
	sessions map[moncore.Key]moncore.Snapshot
	opts     moncore.Options
	interval time.Duration
	startErr error
}

func newTestHandlerMonitor() *testHandlerMonitor {
	return &testHandlerMonitor{
		sessions: make(map[moncore.Key]moncore.Snapshot),
	}
}

func (m *testHandlerMonitor) StartLogMonitoring(
	subscriberID string,
	opts moncore.Options,
) (moncore.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.opts = opts

	return m.start(moncore.Key{SubscriberID: subscriberID, Kind: moncore.KindLogActivity}, "")
}

func (m *testHandlerMonitor) StartThroughputMonitoring(
	subscriberID string,
	target string,
	interval time.Duration,
) (moncore.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.interval = interval

	return m.start(moncore.Key{SubscriberID: subscriberID, Kind: moncore.KindThroughput}, target)
}

func (m *testHandlerMonitor) StopMonitoring(subscriberID string, kind moncore.Kind) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := moncore.Key{SubscriberID: subscriberID, Kind: kind}

	if _, ok := m.sessions[key]; !ok {
		return monstore.ErrNotActive
	}

	delete(m.sessions, key)

	return nil
}

func (m *testHandlerMonitor) GetStatus(
	subscriberID string,
	kind moncore.Kind,
) (moncore.Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot, ok := m.sessions[moncore.Key{SubscriberID: subscriberID, Kind: kind}]

	return snapshot, ok
}

func (m *testHandlerMonitor) start(key moncore.Key, target string) (moncore.Snapshot, error) {
	if m.startErr != nil {
		return moncore.Snapshot{}, m.startErr
	}

	if _, ok := m.sessions[key]; ok {
		return moncore.Snapshot{}, monstore.ErrAlreadyActive
	}

	snapshot := moncore.Snapshot{
		SubscriberID: key.SubscriberID,
		Kind:         key.Kind,
		Target:       target,
		Status:       moncore.StatusActive,
		Active:       true,
	}

	m.sessions[key] = snapshot

	return snapshot, nil
}

func newTestHandlerServer(monitor Monitor) *httptest.Server {
	mux := http.NewServeMux()
	NewHandler(monitor, true).Register(mux)

	return httptest.NewServer(mux)
}

func testHandlerGet(t *testing.T, url string) (int, []byte) {
	resp, err := http.Get(url)
	require.Nil(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.Nil(t, err)

	return resp.StatusCode, body
}

func TestHandlerStartLog(t *testing.T) {
	monitor := newTestHandlerMonitor()

	server := newTestHandlerServer(monitor)
	defer server.Close()

	code, body := testHandlerGet(t, server.URL+"/api/v1/monitor/log/start?subscriber=42&interval=5s")
	require.Equal(t, http.StatusOK, code)

	var snapshot map[string]any
	require.Nil(t, json.Unmarshal(body, &snapshot))
	require.Equal(t, "42", snapshot["subscriber_id"])
	require.Equal(t, "log", snapshot["kind"])
	require.Equal(t, "active", snapshot["status"])

	require.Equal(t, time.Second*5, monitor.opts.Interval)
	require.True(t, monitor.opts.IncludeFailed)

	code, _ = testHandlerGet(t, server.URL+"/api/v1/monitor/log/start?subscriber=42")
	require.Equal(t, http.StatusConflict, code)

	code, _ = testHandlerGet(t, server.URL+"/api/v1/monitor/log/start?subscriber=43&failed=false")
	require.Equal(t, http.StatusOK, code)
	require.False(t, monitor.opts.IncludeFailed)
}

func TestHandlerStartLogInvalidParams(t *testing.T) {
	server := newTestHandlerServer(newTestHandlerMonitor())
	defer server.Close()

	for _, query := range []string{
		"",
		"?subscriber=42&interval=abc",
		"?subscriber=42&interval=-1s",
		"?subscriber=42&failed=maybe",
	} {
		code, _ := testHandlerGet(t, server.URL+"/api/v1/monitor/log/start"+query)
		require.Equal(t, http.StatusBadRequest, code, query)
	}
}

func TestHandlerStartThroughput(t *testing.T) {
	monitor := newTestHandlerMonitor()

	server := newTestHandlerServer(monitor)
	defer server.Close()

	code, _ := testHandlerGet(t, server.URL+"/api/v1/monitor/throughput/start?subscriber=42")
	require.Equal(t, http.StatusBadRequest, code)

	code, body := testHandlerGet(t,
		server.URL+"/api/v1/monitor/throughput/start?subscriber=42&target=ether1&interval=2s")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, time.Second*2, monitor.interval)

	var snapshot moncore.Snapshot
	require.Nil(t, json.Unmarshal(body, &snapshot))
	require.Equal(t, "ether1", snapshot.Target)
}

func TestHandlerStartThroughputNotFound(t *testing.T) {
	monitor := newTestHandlerMonitor()
	monitor.startErr = fmt.Errorf("interface=ether9: %w", devcore.ErrNotFound)

	server := newTestHandlerServer(monitor)
	defer server.Close()

	code, _ := testHandlerGet(t,
		server.URL+"/api/v1/monitor/throughput/start?subscriber=42&target=ether9")
	require.Equal(t, http.StatusNotFound, code)
}

func TestHandlerStartDeviceUnreachable(t *testing.T) {
	monitor := newTestHandlerMonitor()
	monitor.startErr = devcore.ErrUnreachable

	server := newTestHandlerServer(monitor)
	defer server.Close()

	code, _ := testHandlerGet(t,
		server.URL+"/api/v1/monitor/throughput/start?subscriber=42&target=ether1")
	require.Equal(t, http.StatusBadGateway, code)
}

func TestHandlerStopStatus(t *testing.T) {
	server := newTestHandlerServer(newTestHandlerMonitor())
	defer server.Close()

	code, _ := testHandlerGet(t, server.URL+"/api/v1/monitor/stop?subscriber=42&kind=log")
	require.Equal(t, http.StatusNotFound, code)

	code, _ = testHandlerGet(t, server.URL+"/api/v1/monitor/status?subscriber=42&kind=log")
	require.Equal(t, http.StatusNotFound, code)

	code, _ = testHandlerGet(t, server.URL+"/api/v1/monitor/log/start?subscriber=42")
	require.Equal(t, http.StatusOK, code)

	code, body := testHandlerGet(t, server.URL+"/api/v1/monitor/status?subscriber=42&kind=log")
	require.Equal(t, http.StatusOK, code)

	var snapshot moncore.Snapshot
	require.Nil(t, json.Unmarshal(body, &snapshot))
	require.True(t, snapshot.Active)

	code, body = testHandlerGet(t, server.URL+"/api/v1/monitor/stop?subscriber=42&kind=log")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "OK", string(body))

	code, _ = testHandlerGet(t, server.URL+"/api/v1/monitor/stop?subscriber=42&kind=log")
	require.Equal(t, http.StatusNotFound, code)
}

func TestHandlerInvalidKind(t *testing.T) {
	server := newTestHandlerServer(newTestHandlerMonitor())
	defer server.Close()

	for _, path := range []string{
		"/api/v1/monitor/stop?subscriber=42",
		"/api/v1/monitor/stop?subscriber=42&kind=foo",
		"/api/v1/monitor/status?kind=log",
	} {
		code, _ := testHandlerGet(t, server.URL+path)
		require.Equal(t, http.StatusBadRequest, code, path)
	}
}

func TestHandlerUnsupportedMethod(t *testing.T) {
	server := newTestHandlerServer(newTestHandlerMonitor())
	defer server.Close()

	resp, err := http.Post(server.URL+"/api/v1/monitor/stop?subscriber=42&kind=log",
		"text/plain", nil)
	require.Nil(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
