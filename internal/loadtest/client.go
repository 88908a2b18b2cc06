package loadtest

import (
	"net"
	"net/http"
	"time"
)

const (
	// HTTP client configuration timeouts
	TCPDialTimeout       = 5 * time.Second
	TCPKeepAliveInterval = 30 * time.Second
	TLSHandshakeTimeout  = 5 * time.Second
	IdleConnTimeout      = 90 * time.Second
	DNSCacheTTL          = 300 * time.Second
)

// buildHTTPClient creates the one shared HTTP client for a run. The
// connection pool is bounded to the worker count so workers never queue
// inside the transport in steady state: C workers, C connections.
func buildHTTPClient(opts *Options) *http.Client {
	transport := &http.Transport{
		MaxIdleConns:        opts.Concurrency,
		MaxIdleConnsPerHost: opts.Concurrency,
		MaxConnsPerHost:     opts.Concurrency,
		IdleConnTimeout:     IdleConnTimeout,
		DisableKeepAlives:   opts.NoKeepAlive,
		ForceAttemptHTTP2:   true,

		DialContext: (&net.Dialer{
			Timeout:   TCPDialTimeout,
			KeepAlive: TCPKeepAliveInterval,
		}).DialContext,

		TLSHandshakeTimeout: TLSHandshakeTimeout,
	}

	return &http.Client{
		Timeout:   opts.GetTimeout(),
		Transport: transport,
	}
}
