package tcp

import (
	"bufio"
	"encoding/json"
	"fmt"
	"strings"

	"gitlab.com/fcv-2025.net/faktory-client/internal/domain"
	"gitlab.com/fcv-2025.net/faktory-client/internal/static/errs"
	"gitlab.com/fcv-2025.net/faktory-client/internal/tcp/commands"
	"gitlab.com/fcv-2025.net/faktory-client/internal/tcp/defs"
	"gitlab.com/fcv-2025.net/faktory-client/internal/tcp/wire"
)

func (s *Session) handshake(r *bufio.Reader, w *bufio.Writer, addr domain.Address) error {
	hi, err := readGreeting(r)
	if err != nil {
		return err
	}
	s.logger.Debug("Received greeting", "version", hi.Version, "iterations", hi.Iterations)

	s.opts.Resolve()

	hello := defs.Hello{
		Hostname: s.opts.Hostname,
		WorkerID: s.opts.WorkerID,
		Pid:      s.opts.Pid,
		Labels:   s.opts.Labels,
		Version:  defs.ProtocolVersion,
	}
	if hi.Salt != "" {
		if !addr.HasPassword() {
			return errs.ErrAuthRequired
		}
		hello.PasswordHash = HashPassword(addr.Password, hi.Salt, hi.Iterations)
	}

	cmd := commands.Hello{Data: hello}
	arg, err := cmd.Encode()
	if err != nil {
		return err
	}
	if err := wire.WriteCommand(w, cmd.Verb(), arg); err != nil {
		return err
	}

	resp, err := wire.ReadResponse(r)
	if err != nil {
		return err
	}
	if serverErr := resp.Err(); serverErr != nil {
		if strings.Contains(strings.ToLower(serverErr.Error()), "password") {
			return fmt.Errorf("%w: %w", errs.ErrInvalidPassword, serverErr)
		}
		return serverErr
	}
	if resp.Kind != wire.KindSimple || resp.Text != defs.ReplyOK {
		return fmt.Errorf("%w: HELLO: expected OK, got %s", errs.ErrProtocol, describe(resp))
	}
	return nil
}

func readGreeting(r *bufio.Reader) (defs.Hi, error) {
	var hi defs.Hi

	resp, err := wire.ReadResponse(r)
	if err != nil {
		return hi, err
	}
	if resp.Kind != wire.KindSimple {
		return hi, fmt.Errorf("%w: expected greeting, got %s", errs.ErrProtocol, describe(resp))
	}
	prefix, body, _ := strings.Cut(resp.Text, " ")
	if prefix != defs.GreetingPrefix {
		return hi, fmt.Errorf("%w: expected greeting, got %q", errs.ErrProtocol, resp.Text)
	}
	if err := json.Unmarshal([]byte(body), &hi); err != nil {
		return hi, fmt.Errorf("%w: malformed greeting: %w", errs.ErrProtocol, err)
	}
	if hi.Version != defs.ProtocolVersion {
		return hi, fmt.Errorf("%w: unsupported protocol version %d", errs.ErrProtocol, hi.Version)
	}
	return hi, nil
}
