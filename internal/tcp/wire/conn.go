// Package wire implements the line framing of the work-server protocol:
// "VERB[ arg]\r\n" commands and "+", "-" and "$" prefixed responses.
package wire

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gitlab.com/fcv-2025.net/faktory-client/internal/static/errs"
	"gitlab.com/fcv-2025.net/faktory-client/internal/tcp/defs"
)

// Kind is the shape of a response as announced by its leading marker.
type Kind int

const (
	KindSimple Kind = iota
	KindError
	KindBulk
)

// Response is one decoded server response.
type Response struct {
	Kind Kind
	// Text holds the line after the marker for simple and error responses.
	Text string
	// Payload holds bulk content; nil for a null or empty bulk.
	Payload []byte
}

// Empty reports a bulk response without content ("$-1" or "$0").
func (r Response) Empty() bool {
	return r.Kind == KindBulk && len(r.Payload) == 0
}

// Err converts an error response into a *errs.ServerError, nil otherwise.
func (r Response) Err() error {
	if r.Kind != KindError {
		return nil
	}
	return ParseServerError(r.Text)
}

// WriteCommand writes one command line and flushes it.
func WriteCommand(w *bufio.Writer, verb string, arg []byte) error {
	if _, err := w.WriteString(verb); err != nil {
		return errs.Connection("write command", err)
	}
	if len(arg) > 0 {
		if err := w.WriteByte(' '); err != nil {
			return errs.Connection("write command", err)
		}
		if _, err := w.Write(arg); err != nil {
			return errs.Connection("write command", err)
		}
	}
	if _, err := w.WriteString(defs.LineTerminator); err != nil {
		return errs.Connection("write command", err)
	}
	if err := w.Flush(); err != nil {
		return errs.Connection("flush command", err)
	}
	return nil
}

// ReadResponse reads exactly one response from r. A response that cannot be
// delimited fails with errs.ErrFraming and leaves r at an unknown position.
func ReadResponse(r *bufio.Reader) (Response, error) {
	line, err := ReadLine(r)
	if err != nil {
		return Response{}, err
	}
	if line == "" {
		return Response{}, fmt.Errorf("%w: empty response line", errs.ErrFraming)
	}

	switch line[0] {
	case defs.MarkerSimple:
		return Response{Kind: KindSimple, Text: line[1:]}, nil
	case defs.MarkerError:
		return Response{Kind: KindError, Text: line[1:]}, nil
	case defs.MarkerBulk:
		payload, err := readBulk(r, line[1:])
		if err != nil {
			return Response{}, err
		}
		return Response{Kind: KindBulk, Payload: payload}, nil
	default:
		return Response{}, fmt.Errorf("%w: unexpected response marker %q", errs.ErrFraming, line[0])
	}
}

// ReadLine reads one line without its terminator. Bare "\n" endings are accepted.
func ReadLine(r *bufio.Reader) (string, error) {
	var buf []byte
	for {
		chunk, err := r.ReadSlice('\n')
		buf = append(buf, chunk...)
		if len(buf) > defs.MaxLineLength {
			return "", fmt.Errorf("%w: line exceeds %d bytes", errs.ErrFraming, defs.MaxLineLength)
		}
		if err == nil {
			break
		}
		if err == bufio.ErrBufferFull {
			continue
		}
		return "", errs.Connection("read line", err)
	}
	buf = bytes.TrimSuffix(buf, []byte("\n"))
	buf = bytes.TrimSuffix(buf, []byte("\r"))
	return string(buf), nil
}

func readBulk(r *bufio.Reader, header string) ([]byte, error) {
	n, err := strconv.Atoi(header)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid bulk length %q", errs.ErrFraming, header)
	}
	if n < 0 {
		return nil, nil
	}
	if n > defs.MaxBulkLength {
		return nil, fmt.Errorf("%w: bulk length %d exceeds limit", errs.ErrFraming, n)
	}

	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, errs.Connection("read bulk payload", err)
	}
	trailer, err := ReadLine(r)
	if err != nil {
		return nil, err
	}
	if trailer != "" {
		return nil, fmt.Errorf("%w: bulk payload longer than announced", errs.ErrFraming)
	}
	if n == 0 {
		return nil, nil
	}
	return payload, nil
}

// ParseServerError splits "ERR message" into code and message.
func ParseServerError(text string) *errs.ServerError {
	code, msg, _ := strings.Cut(text, " ")
	return &errs.ServerError{Code: code, Message: msg}
}
