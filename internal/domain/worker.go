package domain

import (
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultLabel     = "golang"
	FallbackHostname = "local"
)

// ConnectionOptions is the worker identity advertised in HELLO. Zero fields
// are filled by Resolve and then stay fixed for the lifetime of the worker.
type ConnectionOptions struct {
	Hostname string
	Pid      int
	WorkerID string
	Labels   []string
}

// DefaultConnectionOptions returns options with the default label set and
// everything else left for Resolve.
func DefaultConnectionOptions() ConnectionOptions {
	return ConnectionOptions{Labels: []string{DefaultLabel}}
}

// Resolve fills unset fields. Already-set fields are never touched, so calling
// it again is a no-op.
func (o *ConnectionOptions) Resolve() {
	if o.Hostname == "" {
		o.Hostname = localHostname()
	}
	if o.Pid == 0 {
		o.Pid = os.Getpid()
	}
	if o.WorkerID == "" {
		o.WorkerID = NewWorkerID()
	}
	if o.Labels == nil {
		o.Labels = []string{DefaultLabel}
	}
}

// Resolved reports whether Resolve has nothing left to fill.
func (o ConnectionOptions) Resolved() bool {
	return o.Hostname != "" && o.Pid != 0 && o.WorkerID != "" && o.Labels != nil
}

// NewWorkerID returns an opaque 32-character random token.
func NewWorkerID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func localHostname() string {
	name, err := os.Hostname()
	if err != nil || name == "" {
		return FallbackHostname
	}
	return name
}

// HeartbeatStatus is the control signal carried by a heartbeat reply.
type HeartbeatStatus int

const (
	HeartbeatOK HeartbeatStatus = iota
	HeartbeatQuiet
	HeartbeatTerminate
)

func (s HeartbeatStatus) String() string {
	switch s {
	case HeartbeatOK:
		return "ok"
	case HeartbeatQuiet:
		return "quiet"
	case HeartbeatTerminate:
		return "terminate"
	default:
		return "unknown"
	}
}

// SessionState tracks where a session sits in the heartbeat state machine.
type SessionState int

const (
	StateConnected SessionState = iota
	StateQuiet
	StateTerminated
)

func (s SessionState) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StateQuiet:
		return "quiet"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// WorkerInfo represents information about a running worker process
type WorkerInfo struct {
	ID            string    `json:"wid"`
	Hostname      string    `json:"hostname"`
	Pid           int       `json:"pid"`
	Labels        []string  `json:"labels"`
	Queues        []string  `json:"queues,omitempty"`
	State         string    `json:"state"`
	StartedAt     time.Time `json:"started_at"`
	LastHeartbeat time.Time `json:"last_heartbeat"`
}

// NewWorkerInfo builds a registry record from resolved options.
func NewWorkerInfo(opts ConnectionOptions, queues []string) *WorkerInfo {
	now := time.Now()
	return &WorkerInfo{
		ID:            opts.WorkerID,
		Hostname:      opts.Hostname,
		Pid:           opts.Pid,
		Labels:        opts.Labels,
		Queues:        queues,
		State:         StateConnected.String(),
		StartedAt:     now,
		LastHeartbeat: now,
	}
}
