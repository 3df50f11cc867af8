package htcore

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/open-control-systems/netwatch/components/core"
)

// ServerParams contains server parameters.
type ServerParams struct {
	Host string
	Port int

	// ShutdownTimeout - how long to wait for active requests on Close().
	ShutdownTimeout time.Duration
}

// Server is a wrapper for http.Server.
type Server struct {
	server          http.Server
	ln              net.Listener
	doneCh          chan struct{}
	url             string
	shutdownTimeout time.Duration
}

// NewServer creates a new server.
//
// Notes:
//   - The server is not started.
//   - If host is empty, "0.0.0.0" is used.
//   - If port is zero, a random free port is chosen.
func NewServer(handler http.Handler, params ServerParams) (*Server, error) {
	if params.Host == "" {
		params.Host = "0.0.0.0"
	}

	if params.ShutdownTimeout <= 0 {
		params.ShutdownTimeout = time.Second * 5
	}

	ln, err := net.Listen("tcp", net.JoinHostPort(params.Host, strconv.Itoa(params.Port)))
	if err != nil {
		return nil, err
	}

	return &Server{
		server: http.Server{
			Handler:           handler,
			ReadHeaderTimeout: time.Second * 10,
		},
		ln:              ln,
		doneCh:          make(chan struct{}),
		url:             "http://" + ln.Addr().String(),
		shutdownTimeout: params.ShutdownTimeout,
	}, nil
}

// Start runs the server.
func (s *Server) Start() {
	core.LogInf.Printf("http-server: starting: url=%s\n", s.url)

	go s.run()
}

// Close gracefully stops the server and waits until it finishes.
func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	err := s.server.Shutdown(ctx)

	_ = s.ln.Close()

	<-s.doneCh

	return err
}

// URL returns base URL of form http://ipaddr:port with no trailing slash.
func (s *Server) URL() string {
	return s.url
}

func (s *Server) run() {
	defer close(s.doneCh)

	if err := s.server.Serve(s.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		core.LogErr.Printf("http-server: failed to serve connection: %v\n", err)
	}
}
