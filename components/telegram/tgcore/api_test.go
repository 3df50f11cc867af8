package tgcore

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/open-control-systems/netwatch/components/http/htcore"
)

const testToken = "123:abc"

type testAPICall struct {
	method string
	params map[string]any
}

type testAPI struct {
	t      *testing.T
	server *httptest.Server

	mu        sync.Mutex
	calls     []testAPICall
	updates   []Update
	nextID    int64
	failWith  map[string]string
	getCalled int
}

func newTestAPI(t *testing.T) *testAPI {
	api := &testAPI{
		t:        t,
		nextID:   100,
		failWith: make(map[string]string),
	}

	api.server = httptest.NewServer(http.HandlerFunc(api.handle))
	t.Cleanup(api.server.Close)

	return api
}

func (a *testAPI) client() *Client {
	return NewClient(htcore.NewDefaultClient(), ClientParams{
		APIURL:  a.server.URL,
		Token:   testToken,
		Timeout: time.Second * 5,
	})
}

func (a *testAPI) handle(w http.ResponseWriter, r *http.Request) {
	prefix := "/bot" + testToken + "/"
	if !strings.HasPrefix(r.URL.Path, prefix) {
		http.NotFound(w, r)
		return
	}

	method := strings.TrimPrefix(r.URL.Path, prefix)

	body, err := io.ReadAll(r.Body)
	require.NoError(a.t, err)

	params := make(map[string]any)
	require.NoError(a.t, json.Unmarshal(body, &params))

	a.mu.Lock()
	defer a.mu.Unlock()

	a.calls = append(a.calls, testAPICall{method: method, params: params})

	if desc, ok := a.failWith[method]; ok {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, `{"ok":false,"error_code":400,"description":%q}`, desc)
		return
	}

	var result any

	switch method {
	case "sendMessage":
		a.nextID++
		result = Message{MessageID: a.nextID}

	case "getUpdates":
		a.getCalled++
		result = a.updates
		a.updates = nil
		if result == nil {
			result = []Update{}
		}

	default:
		result = true
	}

	buf, err := json.Marshal(map[string]any{"ok": true, "result": result})
	require.NoError(a.t, err)

	_, _ = w.Write(buf)
}

func (a *testAPI) pushUpdates(updates ...Update) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.updates = append(a.updates, updates...)
}

func (a *testAPI) fail(method string, description string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.failWith[method] = description
}

func (a *testAPI) callsOf(method string) []testAPICall {
	a.mu.Lock()
	defer a.mu.Unlock()

	var calls []testAPICall

	for _, call := range a.calls {
		if call.method == method {
			calls = append(calls, call)
		}
	}

	return calls
}
