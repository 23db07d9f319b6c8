// Package commands holds the closed set of commands a client may issue.
// Each command knows its verb and serializes its own argument.
package commands

import (
	"encoding/json"
	"fmt"

	"gitlab.com/fcv-2025.net/faktory-client/internal/static/errs"
)

// Command is one request line. The unexported marker keeps the set closed to
// the variants defined in this package.
type Command interface {
	Verb() string
	// Encode returns the argument that follows the verb, nil for none.
	Encode() ([]byte, error)
	command()
}

func encodeJSON(verb string, v interface{}) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: encode %s argument: %w", errs.ErrData, verb, err)
	}
	return b, nil
}
