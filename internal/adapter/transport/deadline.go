package transport

import (
	"net"
	"time"
)

// deadlineConn refreshes the read or write deadline before every I/O call, so
// a timeout bounds one stalled operation rather than the whole session.
type deadlineConn struct {
	net.Conn
	read  time.Duration
	write time.Duration
}

func withDeadlines(conn net.Conn, t Timeouts) net.Conn {
	if t.Read <= 0 && t.Write <= 0 {
		return conn
	}
	return &deadlineConn{Conn: conn, read: t.Read, write: t.Write}
}

func (c *deadlineConn) Read(p []byte) (int, error) {
	if c.read > 0 {
		if err := c.Conn.SetReadDeadline(time.Now().Add(c.read)); err != nil {
			return 0, err
		}
	}
	return c.Conn.Read(p)
}

func (c *deadlineConn) Write(p []byte) (int, error) {
	if c.write > 0 {
		if err := c.Conn.SetWriteDeadline(time.Now().Add(c.write)); err != nil {
			return 0, err
		}
	}
	return c.Conn.Write(p)
}
