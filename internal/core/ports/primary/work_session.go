package primary

import (
	"context"

	"gitlab.com/fcv-2025.net/faktory-client/internal/domain"
)

// WorkSession is the slice of a protocol session the producer and worker
// runner depend on. *tcp.Session implements it.
type WorkSession interface {
	Push(job *domain.Job) error
	Fetch(queues ...string) (*domain.Job, error)
	Ack(jid string) error
	Fail(jid string, errType string, message string, backtrace []string) error
	Heartbeat() (domain.HeartbeatStatus, error)
	Info() (map[string]interface{}, error)
	Options() domain.ConnectionOptions
	Close() error
}

// Redialer is a session that can reopen its stream to the last target with
// the same identity. *tcp.Session implements it.
type Redialer interface {
	Connected() bool
	Redial(ctx context.Context) error
}

// SessionFactory opens a connected session advertising the given identity.
type SessionFactory func(ctx context.Context, opts domain.ConnectionOptions) (WorkSession, error)
