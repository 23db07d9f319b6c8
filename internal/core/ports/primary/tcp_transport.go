package primary

import (
	"context"
	"net"

	"gitlab.com/fcv-2025.net/faktory-client/internal/domain"
)

// StreamConnector opens a duplex byte stream to a server address. The session
// is agnostic to which implementation (plain or TLS) it is handed.
type StreamConnector interface {
	Connect(ctx context.Context, addr domain.Address) (net.Conn, error)
}

// StreamConnectorFunc adapts a function to StreamConnector.
type StreamConnectorFunc func(ctx context.Context, addr domain.Address) (net.Conn, error)

func (f StreamConnectorFunc) Connect(ctx context.Context, addr domain.Address) (net.Conn, error) {
	return f(ctx, addr)
}
