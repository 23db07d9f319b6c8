package transport

import (
	"context"
	"net"
	"time"

	"gitlab.com/fcv-2025.net/faktory-client/internal/core/ports/primary"
	"gitlab.com/fcv-2025.net/faktory-client/internal/domain"
	"gitlab.com/fcv-2025.net/faktory-client/internal/static/errs"
	"gitlab.com/fcv-2025.net/faktory-client/internal/tcp/defs"
)

var _ primary.StreamConnector = (*TCPConnector)(nil)

// Timeouts bounds transport I/O. Zero disables the corresponding limit.
type Timeouts struct {
	Dial  time.Duration
	Read  time.Duration
	Write time.Duration
}

// DefaultTimeouts only bounds dialing; reads stay unbounded because FETCH may
// legitimately block server-side.
func DefaultTimeouts() Timeouts {
	return Timeouts{Dial: defs.DefaultDialTimeout}
}

// TCPConnector opens plain TCP streams
type TCPConnector struct {
	Timeouts Timeouts
}

// NewTCPConnector creates a plain TCP connector
func NewTCPConnector(timeouts Timeouts) *TCPConnector {
	return &TCPConnector{Timeouts: timeouts}
}

// Connect dials addr and applies the configured read/write deadlines.
func (c *TCPConnector) Connect(ctx context.Context, addr domain.Address) (net.Conn, error) {
	conn, err := c.dial(ctx, addr)
	if err != nil {
		return nil, err
	}
	return withDeadlines(conn, c.Timeouts), nil
}

func (c *TCPConnector) dial(ctx context.Context, addr domain.Address) (net.Conn, error) {
	dialer := &net.Dialer{Timeout: c.Timeouts.Dial}
	conn, err := dialer.DialContext(ctx, "tcp", addr.HostPort())
	if err != nil {
		return nil, errs.Connection("dial "+addr.HostPort(), err)
	}
	return conn, nil
}
