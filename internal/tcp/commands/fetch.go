package commands

import (
	"fmt"
	"strings"

	"gitlab.com/fcv-2025.net/faktory-client/internal/static/errs"
	"gitlab.com/fcv-2025.net/faktory-client/internal/tcp/defs"
)

var _ Command = Fetch{}

// Fetch asks for one job from the named queues, checked in order.
// The server expects the names space separated rather than as JSON.
type Fetch struct {
	Queues []string
}

func (Fetch) Verb() string { return defs.VerbFetch }

func (c Fetch) Encode() ([]byte, error) {
	for _, q := range c.Queues {
		if q == "" || strings.ContainsAny(q, " \r\n") {
			return nil, fmt.Errorf("%w: invalid queue name %q", errs.ErrInvalidInput, q)
		}
	}
	if len(c.Queues) == 0 {
		return nil, nil
	}
	return []byte(strings.Join(c.Queues, " ")), nil
}

func (Fetch) command() {}
