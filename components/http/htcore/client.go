package htcore

import (
	"io"
	"net/http"

	"github.com/open-control-systems/netwatch/components/system/sysnet"
)

// HTTPClient is a standard HTTP client wrapper to simplify response reading.
type HTTPClient struct {
	http.Client
}

// NewDefaultClient returns general purpose HTTP client.
func NewDefaultClient() *HTTPClient {
	return &HTTPClient{}
}

// NewResolveClient returns HTTP client with custom resolving rules.
func NewResolveClient(resolver sysnet.Resolver) *HTTPClient {
	return &HTTPClient{
		Client: http.Client{
			Transport: NewResolveRoundTripper(resolver, http.DefaultTransport),
		},
	}
}

// Do sends a request, receives a response, and fully reads the response body.
func (c *HTTPClient) Do(req *http.Request) (*http.Response, []byte, error) {
	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, err
	}

	return resp, body, nil
}
