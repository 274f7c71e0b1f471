package http

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"

	"github.com/quic-go/quic-go"
	"github.com/quic-go/quic-go/http3"
	"golang.org/x/net/http2"
)

// TransportConfig configures the pooled transport shared by all outbound clients.
type TransportConfig struct {
	EnableHTTP2 bool
	EnableHTTP3 bool // experimental; falls back per request

	DialTimeout           time.Duration
	MaxIdleConns          int
	MaxIdleConnsPerHost   int
	MaxConnsPerHost       int // 0 is unlimited
	IdleConnTimeout       time.Duration
	TLSHandshakeTimeout   time.Duration
	ResponseHeaderTimeout time.Duration
}

// DefaultTransportConfig returns default transport configuration
func DefaultTransportConfig() TransportConfig {
	return TransportConfig{
		EnableHTTP2:           true,
		DialTimeout:           30 * time.Second,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   32,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 15 * time.Second,
	}
}

// NewTransport creates an HTTP transport with configured protocol support
func NewTransport(config TransportConfig) http.RoundTripper {
	dialTimeout := config.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = 30 * time.Second
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   dialTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          config.MaxIdleConns,
		MaxIdleConnsPerHost:   config.MaxIdleConnsPerHost,
		IdleConnTimeout:       config.IdleConnTimeout,
		TLSHandshakeTimeout:   config.TLSHandshakeTimeout,
		ResponseHeaderTimeout: config.ResponseHeaderTimeout,
		MaxConnsPerHost:       config.MaxConnsPerHost,
	}

	if config.EnableHTTP2 {
		// ALPN negotiation; on error the transport stays HTTP/1.1.
		_ = http2.ConfigureTransport(transport)
	}

	if config.EnableHTTP3 {
		return newHTTP3Transport(transport)
	}

	return transport
}

// http3Transport wraps HTTP/1.1 and HTTP/3 transports with automatic fallback
type http3Transport struct {
	http1Transport http.RoundTripper
	http3Transport *http3.Transport
}

// newHTTP3Transport creates a transport with HTTP/3 and HTTP/1.1 fallback
func newHTTP3Transport(http1Transport http.RoundTripper) *http3Transport {
	return &http3Transport{
		http1Transport: http1Transport,
		http3Transport: &http3.Transport{
			TLSClientConfig: &tls.Config{MinVersion: tls.VersionTLS12},
			QUICConfig:      &quic.Config{Allow0RTT: true},
		},
	}
}

// RoundTrip implements http.RoundTripper with HTTP/3 fallback
func (t *http3Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.URL.Scheme == "https" {
		if resp, err := t.http3Transport.RoundTrip(req); err == nil {
			return resp, nil
		}
	}
	return t.http1Transport.RoundTrip(req)
}

// Close closes the HTTP/3 transport
func (t *http3Transport) Close() error {
	return t.http3Transport.Close()
}
