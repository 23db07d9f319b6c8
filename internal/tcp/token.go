package tcp

import (
	"encoding/json"
	"fmt"

	"gitlab.com/fcv-2025.net/faktory-client/internal/static/errs"
	"gitlab.com/fcv-2025.net/faktory-client/internal/tcp/defs"
	"gitlab.com/fcv-2025.net/faktory-client/internal/tcp/wire"
)

// ResponseToken is the obligation to read exactly one response. The session
// refuses new commands until it is resolved.
type ResponseToken struct {
	session  *Session
	verb     string
	consumed bool
}

// Verb returns the verb of the command awaiting this response.
func (t *ResponseToken) Verb() string {
	return t.verb
}

// AwaitOK requires a "+OK" acknowledgement.
func (t *ResponseToken) AwaitOK() error {
	resp, err := t.read()
	if err != nil {
		return err
	}
	if err := resp.Err(); err != nil {
		return err
	}
	if resp.Kind != wire.KindSimple || resp.Text != defs.ReplyOK {
		return fmt.Errorf("%w: %s: expected OK, got %s", errs.ErrProtocol, t.verb, describe(resp))
	}
	return nil
}

// ReadJSON decodes a document response into v. found is false for an empty
// document. A simple string reply is decoded from its text.
func (t *ResponseToken) ReadJSON(v interface{}) (found bool, err error) {
	resp, err := t.read()
	if err != nil {
		return false, err
	}
	if err := resp.Err(); err != nil {
		return false, err
	}

	var payload []byte
	switch resp.Kind {
	case wire.KindBulk:
		if resp.Empty() {
			return false, nil
		}
		payload = resp.Payload
	default:
		payload = []byte(resp.Text)
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return false, errs.Data("decode "+t.verb+" response", err)
	}
	return true, nil
}

// Raw returns the undecoded response.
func (t *ResponseToken) Raw() (wire.Response, error) {
	return t.read()
}

func (t *ResponseToken) read() (wire.Response, error) {
	if t.consumed {
		return wire.Response{}, errs.ErrTokenConsumed
	}
	t.consumed = true

	s := t.session
	if s.pending != t || s.reader == nil {
		return wire.Response{}, errs.ErrNotConnected
	}
	s.pending = nil

	resp, err := wire.ReadResponse(s.reader)
	if err != nil {
		return wire.Response{}, s.failConnection(err)
	}
	return resp, nil
}

func describe(resp wire.Response) string {
	switch resp.Kind {
	case wire.KindBulk:
		return fmt.Sprintf("document of %d bytes", len(resp.Payload))
	default:
		return fmt.Sprintf("%q", resp.Text)
	}
}
