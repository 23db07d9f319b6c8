// Package tcp implements a client session against a work server: handshake,
// request/response round trips and the heartbeat state machine.
package tcp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"

	"gitlab.com/fcv-2025.net/faktory-client/internal/adapter/logging"
	"gitlab.com/fcv-2025.net/faktory-client/internal/adapter/transport"
	"gitlab.com/fcv-2025.net/faktory-client/internal/config"
	"gitlab.com/fcv-2025.net/faktory-client/internal/core/ports/primary"
	"gitlab.com/fcv-2025.net/faktory-client/internal/domain"
	"gitlab.com/fcv-2025.net/faktory-client/internal/static/errs"
	"gitlab.com/fcv-2025.net/faktory-client/internal/tcp/commands"
	"gitlab.com/fcv-2025.net/faktory-client/internal/tcp/defs"
	"gitlab.com/fcv-2025.net/faktory-client/internal/tcp/wire"
)

var (
	_ primary.WorkSession = (*Session)(nil)
	_ primary.Redialer    = (*Session)(nil)
)

// Session owns one stream to the server. It is not safe for concurrent use;
// callers sharing a session must serialize access themselves.
type Session struct {
	connector primary.StreamConnector
	logger    primary.Logger
	opts      domain.ConnectionOptions

	conn    net.Conn
	reader  *bufio.Reader
	writer  *bufio.Writer
	target  domain.Address
	state   domain.SessionState
	pending *ResponseToken
}

// SessionOption configures a Session
type SessionOption func(*Session)

// WithConnector sets how streams are opened. Defaults to plain TCP.
func WithConnector(connector primary.StreamConnector) SessionOption {
	return func(s *Session) {
		s.connector = connector
	}
}

// WithLogger sets the session logger
func WithLogger(logger primary.Logger) SessionOption {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithOptions sets the identity advertised in HELLO. Unset fields are filled
// on the first successful greeting.
func WithOptions(opts domain.ConnectionOptions) SessionOption {
	return func(s *Session) {
		s.opts = opts
	}
}

// NewSession creates an unconnected session
func NewSession(options ...SessionOption) *Session {
	s := &Session{
		connector: transport.NewTCPConnector(transport.DefaultTimeouts()),
		logger:    logging.NewNopLogger(),
		opts:      domain.DefaultConnectionOptions(),
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// Dial is a convenience for NewSession followed by Connect.
func Dial(ctx context.Context, target string, options ...SessionOption) (*Session, error) {
	s := NewSession(options...)
	if err := s.Connect(ctx, target); err != nil {
		return nil, err
	}
	return s, nil
}

// NewSessionFactory returns a factory that dials target, advertising the
// identity it is given on top of options.
func NewSessionFactory(target string, options ...SessionOption) primary.SessionFactory {
	return func(ctx context.Context, opts domain.ConnectionOptions) (primary.WorkSession, error) {
		sessionOpts := append(append([]SessionOption(nil), options...), WithOptions(opts))
		s, err := Dial(ctx, target, sessionOpts...)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

// Connect opens a stream to target and completes the handshake. ctx only
// bounds dialing.
func (s *Session) Connect(ctx context.Context, target string) error {
	if s.state == domain.StateTerminated {
		return errs.ErrTerminated
	}
	if s.conn != nil {
		return fmt.Errorf("%w: session already connected", errs.ErrInvalidInput)
	}
	return s.open(ctx, target)
}

// ConnectEnv connects to the target named by the environment.
func (s *Session) ConnectEnv(ctx context.Context, lookup config.LookupFunc) error {
	return s.Connect(ctx, config.ResolveTarget("", lookup))
}

// Reconnect drops the current stream without END and connects again with the
// same resolved identity. The heartbeat state carries over: a quiet session
// stays quiet and a terminated one cannot reconnect.
func (s *Session) Reconnect(ctx context.Context, target string) error {
	if s.state == domain.StateTerminated {
		return errs.ErrTerminated
	}
	s.drop()
	s.logger.Info("Reconnecting", "target", target, "wid", s.opts.WorkerID)
	return s.open(ctx, target)
}

// Redial reconnects to the target of the last successful connect.
func (s *Session) Redial(ctx context.Context) error {
	if s.target.Raw == "" {
		return errs.ErrNotConnected
	}
	return s.Reconnect(ctx, s.target.Raw)
}

// ReconnectEnv reconnects to the target named by the environment.
func (s *Session) ReconnectEnv(ctx context.Context, lookup config.LookupFunc) error {
	return s.Reconnect(ctx, config.ResolveTarget("", lookup))
}

func (s *Session) open(ctx context.Context, target string) error {
	addr, err := domain.ParseAddress(target)
	if err != nil {
		return err
	}

	conn, err := s.connector.Connect(ctx, addr)
	if err != nil {
		s.logger.Error("Failed to connect", "address", addr.HostPort(), "error", err)
		return err
	}

	reader := bufio.NewReader(conn)
	writer := bufio.NewWriter(conn)
	if err := s.handshake(reader, writer, addr); err != nil {
		_ = conn.Close()
		s.logger.Error("Handshake failed", "address", addr.HostPort(), "error", err)
		return err
	}

	s.conn = conn
	s.reader = reader
	s.writer = writer
	s.target = addr
	s.pending = nil
	s.logger.Info("Connected", "address", addr.HostPort(), "wid", s.opts.WorkerID, "state", s.state.String())
	return nil
}

// Issue writes cmd and returns the token that must be resolved before the
// next command.
func (s *Session) Issue(cmd commands.Command) (*ResponseToken, error) {
	if s.state == domain.StateTerminated {
		return nil, errs.ErrTerminated
	}
	if s.conn == nil {
		return nil, errs.ErrNotConnected
	}
	if s.pending != nil {
		return nil, errs.ErrResponsePending
	}
	if cmd.Verb() == defs.VerbHello {
		return nil, fmt.Errorf("%w: HELLO is only sent during the handshake", errs.ErrInvalidInput)
	}

	arg, err := cmd.Encode()
	if err != nil {
		return nil, err
	}
	if err := wire.WriteCommand(s.writer, cmd.Verb(), arg); err != nil {
		return nil, s.failConnection(err)
	}

	s.pending = &ResponseToken{session: s, verb: cmd.Verb()}
	return s.pending, nil
}

// Push enqueues a job on the server.
func (s *Session) Push(job *domain.Job) error {
	token, err := s.Issue(commands.Push{Job: job})
	if err != nil {
		return err
	}
	return token.AwaitOK()
}

// Fetch returns the next job from the first non-empty queue, or nil when none
// is available.
func (s *Session) Fetch(queues ...string) (*domain.Job, error) {
	if s.state == domain.StateQuiet {
		return nil, errs.ErrQuiet
	}
	token, err := s.Issue(commands.Fetch{Queues: queues})
	if err != nil {
		return nil, err
	}

	var job domain.Job
	found, err := token.ReadJSON(&job)
	if err != nil || !found {
		return nil, err
	}
	return &job, nil
}

// Ack reports successful processing.
func (s *Session) Ack(jid string) error {
	token, err := s.Issue(commands.Ack{JobID: jid})
	if err != nil {
		return err
	}
	return token.AwaitOK()
}

// Fail reports a failed job so the server can schedule a retry.
func (s *Session) Fail(jid string, errType string, message string, backtrace []string) error {
	token, err := s.Issue(commands.Fail{JobID: jid, ErrType: errType, Message: message, Backtrace: backtrace})
	if err != nil {
		return err
	}
	return token.AwaitOK()
}

// FailWithError reports a failed job using the Go type of err as errtype.
func (s *Session) FailWithError(jid string, err error) error {
	if err == nil {
		return fmt.Errorf("%w: fail without an error", errs.ErrInvalidInput)
	}
	return s.Fail(jid, errorType(err), err.Error(), nil)
}

// Info returns the server status document.
func (s *Session) Info() (map[string]interface{}, error) {
	token, err := s.Issue(commands.Info{})
	if err != nil {
		return nil, err
	}

	var info map[string]interface{}
	found, err := token.ReadJSON(&info)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: empty info response", errs.ErrData)
	}
	return info, nil
}

// End sends the termination notice and reports a failed write.
func (s *Session) End() error {
	if s.conn == nil {
		return errs.ErrNotConnected
	}
	return wire.WriteCommand(s.writer, commands.End{}.Verb(), nil)
}

// Close sends END when possible and releases the stream. Errors are ignored
// and calling it again does nothing.
func (s *Session) Close() error {
	if s.conn == nil {
		return nil
	}
	_ = s.End()
	s.drop()
	s.logger.Debug("Session closed", "wid", s.opts.WorkerID)
	return nil
}

func (s *Session) drop() {
	if s.conn != nil {
		_ = s.conn.Close()
	}
	s.conn = nil
	s.reader = nil
	s.writer = nil
	s.pending = nil
}

// State returns where the session sits in the heartbeat state machine.
func (s *Session) State() domain.SessionState {
	return s.state
}

// Options returns the identity advertised to the server.
func (s *Session) Options() domain.ConnectionOptions {
	return s.opts
}

// Connected reports whether a stream is open.
func (s *Session) Connected() bool {
	return s.conn != nil
}

// failConnection drops a stream whose framing can no longer be trusted.
// Server error lines and undecodable documents leave the stream in sync.
func (s *Session) failConnection(err error) error {
	if errors.Is(err, errs.ErrConnection) || errors.Is(err, errs.ErrFraming) {
		s.logger.Warn("Dropping connection", "wid", s.opts.WorkerID, "error", err)
		s.drop()
	}
	return err
}

func errorType(err error) string {
	var serverErr *errs.ServerError
	if errors.As(err, &serverErr) {
		return serverErr.Code
	}
	return fmt.Sprintf("%T", err)
}
