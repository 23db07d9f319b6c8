package wire

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/fcv-2025.net/faktory-client/internal/static/errs"
)

func reader(s string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(s))
}

func TestWriteCommand(t *testing.T) {
	tests := []struct {
		name string
		verb string
		arg  []byte
		want string
	}{
		{name: "bare verb", verb: "INFO", want: "INFO\r\n"},
		{name: "json argument", verb: "ACK", arg: []byte(`{"jid":"123"}`), want: "ACK {\"jid\":\"123\"}\r\n"},
		{name: "queue list", verb: "FETCH", arg: []byte("critical default"), want: "FETCH critical default\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			w := bufio.NewWriter(&buf)
			require.NoError(t, WriteCommand(w, tt.verb, tt.arg))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestReadResponse(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		kind      Kind
		text      string
		payload   string
		empty     bool
		wantErrIs error
	}{
		{name: "ok", input: "+OK\r\n", kind: KindSimple, text: "OK"},
		{name: "bare newline", input: "+OK\n", kind: KindSimple, text: "OK"},
		{name: "error line", input: "-ERR Unknown command\r\n", kind: KindError, text: "ERR Unknown command"},
		{name: "bulk", input: "$7\r\n{\"a\":1}\r\n", kind: KindBulk, payload: `{"a":1}`},
		{name: "null bulk", input: "$-1\r\n", kind: KindBulk, empty: true},
		{name: "zero bulk", input: "$0\r\n\r\n", kind: KindBulk, empty: true},
		{name: "unknown marker", input: "*1\r\n", wantErrIs: errs.ErrFraming},
		{name: "bad length", input: "$x\r\n", wantErrIs: errs.ErrFraming},
		{name: "oversized bulk", input: "$20000000\r\n{}\r\n", wantErrIs: errs.ErrFraming},
		{name: "short bulk", input: "$10\r\n{}\r\n", wantErrIs: errs.ErrConnection},
		{name: "long bulk", input: "$1\r\n{}\r\n", wantErrIs: errs.ErrFraming},
		{name: "empty line", input: "\r\n", wantErrIs: errs.ErrFraming},
		{name: "eof", input: "", wantErrIs: errs.ErrConnection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := ReadResponse(reader(tt.input))
			if tt.wantErrIs != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErrIs), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.kind, resp.Kind)
			assert.Equal(t, tt.text, resp.Text)
			assert.Equal(t, tt.empty, resp.Empty())
			if tt.payload != "" {
				assert.Equal(t, tt.payload, string(resp.Payload))
			}
		})
	}
}

func TestResponseErr(t *testing.T) {
	resp, err := ReadResponse(reader("-ERR Invalid password\r\n"))
	require.NoError(t, err)

	var serr *errs.ServerError
	require.True(t, errors.As(resp.Err(), &serr))
	assert.Equal(t, "ERR", serr.Code)
	assert.Equal(t, "Invalid password", serr.Message)
	assert.ErrorIs(t, resp.Err(), errs.ErrProtocol)

	ok, err := ReadResponse(reader("+OK\r\n"))
	require.NoError(t, err)
	assert.NoError(t, ok.Err())
}

func TestReadLine_TooLong(t *testing.T) {
	_, err := ReadLine(reader("+" + strings.Repeat("x", 70*1024) + "\r\n"))
	assert.ErrorIs(t, err, errs.ErrFraming)
	assert.ErrorIs(t, err, errs.ErrProtocol)
}
