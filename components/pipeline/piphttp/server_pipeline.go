package piphttp

import (
	"net/http"

	"github.com/open-control-systems/netwatch/components/core"
	"github.com/open-control-systems/netwatch/components/http/htcore"
	"github.com/open-control-systems/netwatch/components/monitor/monhttp"
)

// ServerPipelineParams represents various options for the HTTP API.
type ServerPipelineParams struct {
	Server htcore.ServerParams

	// IncludeFailed - deliver failed login attempts if not set in the request.
	IncludeFailed bool
}

// ServerPipeline contains various building blocks for HTTP API.
type ServerPipeline struct {
	server *htcore.Server
	mux    *http.ServeMux
}

// NewServerPipeline initializes all components associated with the HTTP server.
//
// Parameters:
//   - closer - to register handlers for the underlying resource deallocation.
//   - monitor to control the monitoring sessions.
//   - params - various HTTP API configuration parameters.
func NewServerPipeline(
	closer *core.FanoutCloser,
	monitor monhttp.Monitor,
	params ServerPipelineParams,
) (*ServerPipeline, error) {
	mux := http.NewServeMux()

	server, err := htcore.NewServer(mux, params.Server)
	if err != nil {
		return nil, err
	}
	closer.Add("http-server", server)

	monhttp.NewHandler(monitor, params.IncludeFailed).Register(mux)

	mux.HandleFunc("/api/v1/health", func(w http.ResponseWriter, _ *http.Request) {
		htcore.WriteText(w, "OK")
	})

	return &ServerPipeline{
		server: server,
		mux:    mux,
	}, nil
}

// GetServeMux returns the component to register additional HTTP endpoints.
func (p *ServerPipeline) GetServeMux() *http.ServeMux {
	return p.mux
}

// URL returns the server base URL.
func (p *ServerPipeline) URL() string {
	return p.server.URL()
}

// Start starts serving HTTP requests.
func (p *ServerPipeline) Start() {
	p.server.Start()
}
