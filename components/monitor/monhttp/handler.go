package monhttp

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/open-control-systems/netwatch/components/device/devcore"
	"github.com/open-control-systems/netwatch/components/http/htcore"
	"github.com/open-control-systems/netwatch/components/monitor/moncore"
	"github.com/open-control-systems/netwatch/components/monitor/monstore"
	"github.com/open-control-systems/netwatch/components/status"
)

// Monitor is a set of the monitoring operations exposed over HTTP.
type Monitor interface {
	// StartLogMonitoring starts watching the device log for the subscriber.
	StartLogMonitoring(subscriberID string, opts moncore.Options) (moncore.Snapshot, error)

	// StartThroughputMonitoring starts watching the interface throughput for the subscriber.
	StartThroughputMonitoring(
		subscriberID string,
		target string,
		interval time.Duration,
	) (moncore.Snapshot, error)

	// StopMonitoring asks the session to stop.
	StopMonitoring(subscriberID string, kind moncore.Kind) error

	// GetStatus returns the session snapshot.
	GetStatus(subscriberID string, kind moncore.Kind) (moncore.Snapshot, bool)
}

// Handler allows to control the monitoring sessions over HTTP API.
type Handler struct {
	monitor       Monitor
	includeFailed bool
}

// NewHandler is an initialization of Handler.
//
// Parameters:
//   - monitor to start and stop the sessions.
//   - includeFailed - default value of the `failed` query parameter.
func NewHandler(monitor Monitor, includeFailed bool) *Handler {
	return &Handler{
		monitor:       monitor,
		includeFailed: includeFailed,
	}
}

// Register registers the HTTP endpoints.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/v1/monitor/log/start", h.HandleStartLog)
	mux.HandleFunc("/api/v1/monitor/throughput/start", h.HandleStartThroughput)
	mux.HandleFunc("/api/v1/monitor/stop", h.HandleStop)
	mux.HandleFunc("/api/v1/monitor/status", h.HandleStatus)
}

// HandleStartLog starts the log monitoring over HTTP API.
func (h *Handler) HandleStartLog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "error: unsupported method", http.StatusMethodNotAllowed)

		return
	}

	subscriber := r.URL.Query().Get("subscriber")
	if subscriber == "" {
		http.Error(w, "error: missed `subscriber` query parameter", http.StatusBadRequest)

		return
	}

	interval, err := parseInterval(r.URL.Query().Get("interval"))
	if err != nil {
		http.Error(w, fmt.Sprintf("error: invalid `interval` query parameter: %v", err),
			http.StatusBadRequest)

		return
	}

	includeFailed := h.includeFailed

	if str := r.URL.Query().Get("failed"); str != "" {
		includeFailed, err = strconv.ParseBool(str)
		if err != nil {
			http.Error(w, fmt.Sprintf("error: invalid `failed` query parameter: %v", err),
				http.StatusBadRequest)

			return
		}
	}

	snapshot, err := h.monitor.StartLogMonitoring(subscriber, moncore.Options{
		Interval:      interval,
		IncludeFailed: includeFailed,
	})
	if err != nil {
		writeError(w, fmt.Sprintf("failed to start log monitoring: subscriber=%s", subscriber), err)

		return
	}

	htcore.WriteJSON(w, snapshot)
}

// HandleStartThroughput starts the throughput monitoring over HTTP API.
func (h *Handler) HandleStartThroughput(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "error: unsupported method", http.StatusMethodNotAllowed)

		return
	}

	subscriber := r.URL.Query().Get("subscriber")
	if subscriber == "" {
		http.Error(w, "error: missed `subscriber` query parameter", http.StatusBadRequest)

		return
	}

	target := r.URL.Query().Get("target")
	if target == "" {
		http.Error(w, "error: missed `target` query parameter", http.StatusBadRequest)

		return
	}

	interval, err := parseInterval(r.URL.Query().Get("interval"))
	if err != nil {
		http.Error(w, fmt.Sprintf("error: invalid `interval` query parameter: %v", err),
			http.StatusBadRequest)

		return
	}

	snapshot, err := h.monitor.StartThroughputMonitoring(subscriber, target, interval)
	if err != nil {
		writeError(w, fmt.Sprintf("failed to start throughput monitoring: subscriber=%s target=%s",
			subscriber, target), err)

		return
	}

	htcore.WriteJSON(w, snapshot)
}

// HandleStop stops the monitoring session over HTTP API.
func (h *Handler) HandleStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "error: unsupported method", http.StatusMethodNotAllowed)

		return
	}

	subscriber, kind, ok := parseKey(w, r)
	if !ok {
		return
	}

	if err := h.monitor.StopMonitoring(subscriber, kind); err != nil {
		writeError(w, fmt.Sprintf("failed to stop monitoring: subscriber=%s kind=%s",
			subscriber, kind), err)

		return
	}

	htcore.WriteText(w, "OK")
}

// HandleStatus returns the monitoring session status over HTTP API.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "error: unsupported method", http.StatusMethodNotAllowed)

		return
	}

	subscriber, kind, ok := parseKey(w, r)
	if !ok {
		return
	}

	snapshot, ok := h.monitor.GetStatus(subscriber, kind)
	if !ok {
		http.Error(w, fmt.Sprintf("error: no monitoring session: subscriber=%s kind=%s",
			subscriber, kind), http.StatusNotFound)

		return
	}

	htcore.WriteJSON(w, snapshot)
}

func parseKey(w http.ResponseWriter, r *http.Request) (string, moncore.Kind, bool) {
	subscriber := r.URL.Query().Get("subscriber")
	if subscriber == "" {
		http.Error(w, "error: missed `subscriber` query parameter", http.StatusBadRequest)

		return "", "", false
	}

	str := r.URL.Query().Get("kind")
	if str == "" {
		http.Error(w, "error: missed `kind` query parameter", http.StatusBadRequest)

		return "", "", false
	}

	kind, err := moncore.ParseKind(str)
	if err != nil {
		http.Error(w, fmt.Sprintf("error: invalid `kind` query parameter: %v", err),
			http.StatusBadRequest)

		return "", "", false
	}

	return subscriber, kind, true
}

func parseInterval(str string) (time.Duration, error) {
	if str == "" {
		return 0, nil
	}

	interval, err := time.ParseDuration(str)
	if err != nil {
		return 0, err
	}

	if interval <= 0 {
		return 0, fmt.Errorf("interval should be positive: %w", status.StatusInvalidArg)
	}

	return interval, nil
}

func writeError(w http.ResponseWriter, msg string, err error) {
	code := http.StatusInternalServerError

	switch {
	case errors.Is(err, monstore.ErrAlreadyActive):
		code = http.StatusConflict
	case errors.Is(err, monstore.ErrNotActive), errors.Is(err, devcore.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, status.StatusInvalidArg):
		code = http.StatusBadRequest
	case errors.Is(err, devcore.ErrUnreachable),
		errors.Is(err, devcore.ErrTimeout),
		errors.Is(err, devcore.ErrAuthFailed):
		code = http.StatusBadGateway
	}

	http.Error(w, fmt.Sprintf("error: %s: %v", msg, err), code)
}
