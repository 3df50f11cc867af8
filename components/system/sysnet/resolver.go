package sysnet

import (
	"context"
	"net"
)

// Resolver resolves hostnames to network addresses.
type Resolver interface {
	// Resolve hostname.
	Resolve(ctx context.Context, hostname string) (net.Addr, error)
}

// ResolveHandler to handle the result of network address resolving.
type ResolveHandler interface {
	// HandleResolve handles the resolving result of hostname to addr.
	HandleResolve(hostname string, addr net.Addr)
}
