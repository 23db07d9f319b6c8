package transport

import (
	"context"
	"crypto/tls"
	"net"

	"gitlab.com/fcv-2025.net/faktory-client/internal/core/ports/primary"
	"gitlab.com/fcv-2025.net/faktory-client/internal/domain"
	"gitlab.com/fcv-2025.net/faktory-client/internal/static/errs"
)

var _ primary.StreamConnector = (*TLSConnector)(nil)

// TLSConnector layers a TLS client handshake over a plain TCP stream
type TLSConnector struct {
	tcp    *TCPConnector
	config *tls.Config
}

// NewTLSConnector creates a TLS connector. A nil config uses system roots.
func NewTLSConnector(config *tls.Config, timeouts Timeouts) *TLSConnector {
	if config == nil {
		config = &tls.Config{}
	}
	if config.MinVersion == 0 {
		config.MinVersion = tls.VersionTLS12
	}
	return &TLSConnector{
		tcp:    NewTCPConnector(timeouts),
		config: config,
	}
}

// Connect dials addr and completes the TLS handshake before returning.
func (c *TLSConnector) Connect(ctx context.Context, addr domain.Address) (net.Conn, error) {
	raw, err := c.tcp.dial(ctx, addr)
	if err != nil {
		return nil, err
	}

	cfg := c.config.Clone()
	if cfg.ServerName == "" {
		cfg.ServerName = addr.Host
	}
	conn := tls.Client(raw, cfg)

	hsCtx := ctx
	if d := c.tcp.Timeouts.Dial; d > 0 {
		var cancel context.CancelFunc
		hsCtx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}
	if err := conn.HandshakeContext(hsCtx); err != nil {
		_ = raw.Close()
		return nil, errs.Connection("tls handshake with "+addr.HostPort(), err)
	}
	return withDeadlines(conn, c.tcp.Timeouts), nil
}
