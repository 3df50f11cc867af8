package sysnet

import (
	"context"
	"net"
	"sync"

	"github.com/open-control-systems/netwatch/components/core"
	"github.com/open-control-systems/netwatch/components/status"
)

// ResolveStore caches addresses of the known hosts discovered on the local network.
type ResolveStore struct {
	mu            sync.Mutex
	changedCh     chan struct{}
	knownHosts    map[string]struct{}
	resolvedAddrs map[string]net.Addr
}

// NewResolveStore is an initialization of ResolveStore.
func NewResolveStore() *ResolveStore {
	return &ResolveStore{
		changedCh:     make(chan struct{}),
		knownHosts:    make(map[string]struct{}),
		resolvedAddrs: make(map[string]net.Addr),
	}
}

// HandleResolve caches known resolved addresses.
//
// Remarks:
//   - Unknown hosts are filtered out.
func (s *ResolveStore) HandleResolve(host string, addr net.Addr) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.knownHosts[host]; !ok {
		return
	}

	ra, ok := s.resolvedAddrs[host]
	if ok && ra.String() == addr.String() {
		return
	}

	if ok {
		core.LogInf.Printf("resolve-store: addr changed: host=%s cur=%s new=%s\n",
			host, ra, addr)
	} else {
		core.LogInf.Printf("resolve-store: addr resolved: host=%s addr=%s\n", host, addr)
	}

	s.resolvedAddrs[host] = addr

	// Wake up all waiters.
	close(s.changedCh)
	s.changedCh = make(chan struct{})
}

// Resolve returns the cached address of the host, waiting for it if the host is
// known but not resolved yet.
//
// Remarks:
//   - status.StatusNoData is returned for unknown hosts.
//   - status.StatusTimeout is returned if ctx is done before the host is resolved.
func (s *ResolveStore) Resolve(ctx context.Context, host string) (net.Addr, error) {
	for {
		s.mu.Lock()
		_, known := s.knownHosts[host]
		addr, resolved := s.resolvedAddrs[host]
		changedCh := s.changedCh
		s.mu.Unlock()

		if !known {
			return nil, status.StatusNoData
		}

		if resolved {
			return addr, nil
		}

		select {
		case <-changedCh:
		case <-ctx.Done():
			return nil, status.StatusTimeout
		}
	}
}

// Add adds host to the list of known hosts.
func (s *ResolveStore) Add(host string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.knownHosts[host] = struct{}{}
}

// Remove removes host from the list of known hosts.
func (s *ResolveStore) Remove(host string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.knownHosts, host)
	delete(s.resolvedAddrs, host)
}
