package pipmon

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/open-control-systems/netwatch/components/core"
	"github.com/open-control-systems/netwatch/components/device/devrest"
	"github.com/open-control-systems/netwatch/components/http/htcore"
	"github.com/open-control-systems/netwatch/components/status"
	"github.com/open-control-systems/netwatch/components/system/syscore"
	"github.com/open-control-systems/netwatch/components/system/sysmdns"
	"github.com/open-control-systems/netwatch/components/system/sysnet"
	"github.com/open-control-systems/netwatch/components/system/syssched"
)

// MDNSParams represents various options for the mDNS device lookup.
type MDNSParams struct {
	// Enabled - resolve .local device hosts with mDNS.
	Enabled bool

	// Service - mDNS service the device announces, "_http._tcp" is used if empty.
	Service string

	// BrowseInterval - how often to browse the local network.
	BrowseInterval time.Duration

	// BrowseTimeout - how long a single browsing lasts.
	BrowseTimeout time.Duration
}

// NewQueryService returns the component to query the device over RouterOS REST API.
//
// Parameters:
//   - ctx - parent context for the mDNS browsing.
//   - closer - to register all resources that should be closed.
//   - clock to interpret the device log timestamps.
//   - device - device connection options.
//   - mdns - mDNS lookup options.
func NewQueryService(
	ctx context.Context,
	closer *core.FanoutCloser,
	clock syscore.MonotonicClock,
	device devrest.QueryServiceParams,
	mdns MDNSParams,
) (*devrest.QueryService, error) {
	if device.BaseURL == "" {
		return nil, fmt.Errorf("monitor-pipeline: missed device URL: %w", status.StatusInvalidArg)
	}

	client, err := newDeviceClient(ctx, closer, device.BaseURL, mdns)
	if err != nil {
		return nil, fmt.Errorf("monitor-pipeline: %w", err)
	}

	return devrest.NewQueryService(client, clock, device), nil
}

// newDeviceClient returns HTTP client to reach the device.
//
// Remarks:
//   - .local hosts are resolved with the zeroconf browser if mDNS is enabled.
func newDeviceClient(
	ctx context.Context,
	closer *core.FanoutCloser,
	baseURL string,
	params MDNSParams,
) (*htcore.HTTPClient, error) {
	host, err := deviceHost(baseURL)
	if err != nil {
		return nil, err
	}

	if !params.Enabled || !isMDNSHost(host) {
		return htcore.NewDefaultClient(), nil
	}

	if params.Service == "" {
		params.Service = "_http._tcp"
	}
	if params.BrowseInterval <= 0 {
		params.BrowseInterval = time.Second * 30
	}
	if params.BrowseTimeout <= 0 {
		params.BrowseTimeout = time.Second * 5
	}

	store := sysnet.NewResolveStore()
	store.Add(host)

	browser, err := sysmdns.NewZeroconfBrowser(ctx, store, sysmdns.ZeroconfBrowserParams{
		Service: params.Service,
		Domain:  "local",
		Timeout: params.BrowseTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS browser: %w", err)
	}

	runner := syssched.NewAsyncTaskRunner(ctx, browser, browser, syssched.AsyncTaskRunnerParams{
		UpdateInterval: params.BrowseInterval,
		RunOnStart:     true,
	})
	if err := runner.Start(); err != nil {
		return nil, err
	}
	closer.Add("mdns-zeroconf-browser", core.FuncCloser(runner.Stop))

	core.LogInf.Printf("monitor-pipeline: resolve device with mDNS: host=%s service=%s\n",
		host, params.Service)

	return htcore.NewResolveClient(store), nil
}

func deviceHost(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid device URL: %w", err)
	}

	if u.Hostname() == "" {
		return "", fmt.Errorf("invalid device URL: missed host: url=%s", baseURL)
	}

	return u.Hostname(), nil
}

func isMDNSHost(host string) bool {
	return strings.HasSuffix(strings.ToLower(host), ".local")
}
