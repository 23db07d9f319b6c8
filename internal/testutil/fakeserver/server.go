// Package fakeserver is a loopback work server speaking enough of the
// protocol for client tests: greeting with optional password challenge,
// in-memory queues, scripted heartbeat replies and a log of received commands.
package fakeserver

import (
	"bufio"
	"crypto/sha256"
	"crypto/tls"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net"
	"strings"
	"sync"
	"testing"

	"gitlab.com/fcv-2025.net/faktory-client/internal/domain"
	"gitlab.com/fcv-2025.net/faktory-client/internal/tcp/defs"
	"gitlab.com/fcv-2025.net/faktory-client/internal/tcp/wire"
)

// Option configures a Server
type Option func(*Server)

// WithPassword makes the greeting carry a salt and requires a matching pwdhash.
func WithPassword(password, salt string, iterations int) Option {
	return func(s *Server) {
		s.password = password
		s.salt = salt
		s.iterations = iterations
	}
}

// WithGreeting replaces the greeting line (without terminator).
func WithGreeting(line string) Option {
	return func(s *Server) {
		s.greeting = line
	}
}

// WithHelloReply replaces the "+OK" sent after a valid HELLO.
func WithHelloReply(line string) Option {
	return func(s *Server) {
		s.helloReply = line
	}
}

// WithTLS serves TLS using cfg.
func WithTLS(cfg *tls.Config) Option {
	return func(s *Server) {
		s.tlsConfig = cfg
	}
}

type Server struct {
	ln         net.Listener
	tlsConfig  *tls.Config
	password   string
	salt       string
	iterations int
	greeting   string
	helloReply string

	mu          sync.Mutex
	queues      map[string][][]byte
	hellos      []defs.Hello
	commands    []string
	acks        []string
	fails       []defs.FailData
	beatReplies []string
	conns       map[net.Conn]struct{}
	wg          sync.WaitGroup
	closed      bool
}

// Start listens on a loopback port and stops the server on test cleanup.
func Start(t testing.TB, opts ...Option) *Server {
	t.Helper()

	s := &Server{
		helloReply: "+OK",
		queues:     make(map[string][][]byte),
		conns:      make(map[net.Conn]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	if s.tlsConfig != nil {
		ln = tls.NewListener(ln, s.tlsConfig)
	}
	s.ln = ln

	s.wg.Add(1)
	go s.acceptConnections()
	t.Cleanup(s.Close)
	return s
}

// URL is the target for this server, including the password when one is set.
func (s *Server) URL() string {
	if s.password != "" {
		return fmt.Sprintf("tcp://:%s@%s", s.password, s.ln.Addr().String())
	}
	return s.URLWithoutPassword()
}

// URLWithoutPassword is the target with no credential.
func (s *Server) URLWithoutPassword() string {
	return "tcp://" + s.ln.Addr().String()
}

// SetBeatReplies scripts the raw response lines for the following BEATs.
// Once exhausted, BEAT is answered with "+OK".
func (s *Server) SetBeatReplies(lines ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.beatReplies = append([]string(nil), lines...)
}

// Enqueue preloads a job.
func (s *Server) Enqueue(job *domain.Job) {
	b, err := json.Marshal(job)
	if err != nil {
		panic(err)
	}
	queue := job.Queue
	if queue == "" {
		queue = domain.DefaultQueue
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queues[queue] = append(s.queues[queue], b)
}

// QueueSize returns the number of jobs waiting in queue.
func (s *Server) QueueSize(queue string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queues[queue])
}

func (s *Server) Hellos() []defs.Hello {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]defs.Hello(nil), s.hellos...)
}

// Commands lists the verbs received after handshakes, in arrival order.
func (s *Server) Commands() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.commands...)
}

// CountCommand returns how many times verb was received.
func (s *Server) CountCommand(verb string) int {
	n := 0
	for _, c := range s.Commands() {
		if c == verb {
			n++
		}
	}
	return n
}

func (s *Server) Acks() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.acks...)
}

func (s *Server) Fails() []defs.FailData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]defs.FailData(nil), s.fails...)
}

// DropConnections closes every open server-side connection.
func (s *Server) DropConnections() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.conns {
		_ = conn.Close()
	}
}

// Close stops accepting, drops open connections and waits for handlers.
func (s *Server) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	_ = s.ln.Close()
	for conn := range s.conns {
		_ = conn.Close()
	}
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *Server) acceptConnections() {
	defer s.wg.Done()
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			_ = conn.Close()
			return
		}
		s.conns[conn] = struct{}{}
		s.wg.Add(1)
		s.mu.Unlock()
		go s.handleConnection(conn)
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		_ = conn.Close()
	}()

	r := bufio.NewReader(conn)
	w := bufio.NewWriter(conn)

	if !s.handshake(r, w) {
		return
	}
	for {
		line, err := wire.ReadLine(r)
		if err != nil {
			return
		}
		verb, arg, _ := strings.Cut(line, " ")
		s.mu.Lock()
		s.commands = append(s.commands, verb)
		s.mu.Unlock()

		if verb == defs.VerbEnd {
			return
		}
		if err := send(w, s.dispatch(verb, arg)); err != nil {
			return
		}
	}
}

func (s *Server) handshake(r *bufio.Reader, w *bufio.Writer) bool {
	greeting := s.greeting
	if greeting == "" {
		hi, _ := json.Marshal(defs.Hi{Version: defs.ProtocolVersion, Salt: s.salt, Iterations: s.iterations})
		greeting = "+HI " + string(hi)
	}
	if err := send(w, greeting); err != nil {
		return false
	}

	line, err := wire.ReadLine(r)
	if err != nil {
		return false
	}
	verb, arg, _ := strings.Cut(line, " ")
	if verb != defs.VerbHello {
		_ = send(w, "-ERR expected HELLO")
		return false
	}
	var hello defs.Hello
	if err := json.Unmarshal([]byte(arg), &hello); err != nil {
		_ = send(w, "-ERR invalid HELLO")
		return false
	}
	if s.salt != "" && hello.PasswordHash != expectedHash(s.password, s.salt, s.iterations) {
		_ = send(w, "-ERR Invalid password")
		return false
	}

	s.mu.Lock()
	s.hellos = append(s.hellos, hello)
	s.mu.Unlock()
	return send(w, s.helloReply) == nil && strings.HasPrefix(s.helloReply, "+")
}

func (s *Server) dispatch(verb, arg string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch verb {
	case defs.VerbPush:
		var job domain.Job
		if err := json.Unmarshal([]byte(arg), &job); err != nil {
			return "-ERR invalid job"
		}
		queue := job.Queue
		if queue == "" {
			queue = domain.DefaultQueue
		}
		s.queues[queue] = append(s.queues[queue], []byte(arg))
		return "+OK"
	case defs.VerbFetch:
		for _, queue := range strings.Fields(arg) {
			if jobs := s.queues[queue]; len(jobs) > 0 {
				s.queues[queue] = jobs[1:]
				return Bulk(string(jobs[0]))
			}
		}
		return "$-1"
	case defs.VerbAck:
		var data defs.AckData
		if err := json.Unmarshal([]byte(arg), &data); err != nil {
			return "-ERR invalid ACK"
		}
		s.acks = append(s.acks, data.JobID)
		return "+OK"
	case defs.VerbFail:
		var data defs.FailData
		if err := json.Unmarshal([]byte(arg), &data); err != nil {
			return "-ERR invalid FAIL"
		}
		s.fails = append(s.fails, data)
		return "+OK"
	case defs.VerbHeartbeat:
		if len(s.beatReplies) == 0 {
			return "+OK"
		}
		reply := s.beatReplies[0]
		s.beatReplies = s.beatReplies[1:]
		return reply
	case defs.VerbInfo:
		total := 0
		for _, jobs := range s.queues {
			total += len(jobs)
		}
		info, _ := json.Marshal(map[string]interface{}{
			"server_utc_time": "00:00:00 UTC",
			"faktory": map[string]interface{}{
				"total_enqueued": total,
				"total_queues":   len(s.queues),
			},
		})
		return Bulk(string(info))
	default:
		return "-ERR Unknown command " + verb
	}
}

// Bulk formats payload as a length-prefixed document response.
func Bulk(payload string) string {
	return fmt.Sprintf("$%d\r\n%s", len(payload), payload)
}

func send(w *bufio.Writer, line string) error {
	if _, err := w.WriteString(line + defs.LineTerminator); err != nil {
		return err
	}
	return w.Flush()
}

func expectedHash(password, salt string, iterations int) string {
	sum := sha256.Sum256([]byte(password + salt))
	for i := 1; i < iterations; i++ {
		sum = sha256.Sum256(sum[:])
	}
	return hex.EncodeToString(sum[:])
}
