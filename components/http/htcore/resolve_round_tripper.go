package htcore

import (
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/open-control-systems/netwatch/components/system/sysnet"
)

// ResolveRoundTripper resolves the request host before performing HTTP transaction.
type ResolveRoundTripper struct {
	rs sysnet.Resolver
	rt http.RoundTripper
}

// NewResolveRoundTripper is an initialization of ResolveRoundTripper.
//
// Parameters:
//   - rs to resolve HTTP addresses.
//   - rt to perform an actual HTTP transaction.
func NewResolveRoundTripper(rs sysnet.Resolver, rt http.RoundTripper) *ResolveRoundTripper {
	return &ResolveRoundTripper{
		rs: rs,
		rt: rt,
	}
}

// RoundTrip resolves HTTP address and performs HTTP transaction.
func (r *ResolveRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	hostname := req.URL.Hostname()

	addr, err := r.rs.Resolve(req.Context(), hostname)
	if err != nil {
		return nil, fmt.Errorf(
			"resolve-round-tripper: failed to resolve HTTP address: hostname=%s err=%w",
			hostname, err)
	}

	host := addr.String()
	if ipAddr, ok := addr.(*net.IPAddr); ok {
		host = ipAddr.IP.String()
	}

	if port := req.URL.Port(); port != "" {
		host = net.JoinHostPort(host, port)
	} else if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}

	req = req.Clone(req.Context())
	req.URL.Host = host

	return r.rt.RoundTrip(req)
}
