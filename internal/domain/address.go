package domain

import (
	"fmt"
	"net"
	"net/url"
	"strconv"

	"gitlab.com/fcv-2025.net/faktory-client/internal/static/errs"
)

const (
	DefaultScheme = "tcp"
	DefaultPort   = 7419
)

// Address is a parsed server target of the form tcp://[:password@]host[:port].
type Address struct {
	Host     string
	Port     int
	Password string
	Raw      string
}

// ParseAddress validates a target URL. Failures wrap errs.ErrInvalidInput.
func ParseAddress(raw string) (Address, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Address{}, fmt.Errorf("%w: parse target %q: %w", errs.ErrInvalidInput, raw, err)
	}
	if u.Scheme != DefaultScheme {
		return Address{}, fmt.Errorf("%w: unknown scheme '%s'", errs.ErrInvalidInput, u.Scheme)
	}
	host := u.Hostname()
	if host == "" {
		return Address{}, fmt.Errorf("%w: no hostname given", errs.ErrInvalidInput)
	}

	port := DefaultPort
	if p := u.Port(); p != "" {
		port, err = strconv.Atoi(p)
		if err != nil || port < 1 || port > 65535 {
			return Address{}, fmt.Errorf("%w: invalid port %q", errs.ErrInvalidInput, p)
		}
	}

	addr := Address{Host: host, Port: port, Raw: raw}
	if u.User != nil {
		// only the password part counts; a bare user name is not a credential
		addr.Password, _ = u.User.Password()
	}
	return addr, nil
}

// HostPort returns the dialable host:port pair.
func (a Address) HostPort() string {
	return net.JoinHostPort(a.Host, strconv.Itoa(a.Port))
}

// HasPassword reports whether a credential was embedded in the target.
func (a Address) HasPassword() bool {
	return a.Password != ""
}
