package commands

import (
	"fmt"

	"gitlab.com/fcv-2025.net/faktory-client/internal/static/errs"
	"gitlab.com/fcv-2025.net/faktory-client/internal/tcp/defs"
)

var (
	_ Command = Ack{}
	_ Command = Fail{}
)

// Ack reports successful execution of a job.
type Ack struct {
	JobID string
}

func (Ack) Verb() string { return defs.VerbAck }

func (c Ack) Encode() ([]byte, error) {
	if c.JobID == "" {
		return nil, fmt.Errorf("%w: ack without jid", errs.ErrInvalidInput)
	}
	return encodeJSON(defs.VerbAck, defs.AckData{JobID: c.JobID})
}

func (Ack) command() {}

// Fail reports a failed execution so the server can schedule a retry.
type Fail struct {
	JobID     string
	ErrType   string
	Message   string
	Backtrace []string
}

func (Fail) Verb() string { return defs.VerbFail }

func (c Fail) Encode() ([]byte, error) {
	if c.JobID == "" {
		return nil, fmt.Errorf("%w: fail without jid", errs.ErrInvalidInput)
	}
	return encodeJSON(defs.VerbFail, defs.FailData{
		JobID:     c.JobID,
		ErrType:   c.ErrType,
		Message:   c.Message,
		Backtrace: c.Backtrace,
	})
}

func (Fail) command() {}
