package commands

import (
	"fmt"

	"gitlab.com/fcv-2025.net/faktory-client/internal/domain"
	"gitlab.com/fcv-2025.net/faktory-client/internal/static/errs"
	"gitlab.com/fcv-2025.net/faktory-client/internal/tcp/defs"
)

var _ Command = Push{}

// Push submits a job.
type Push struct {
	Job *domain.Job
}

func (Push) Verb() string { return defs.VerbPush }

func (c Push) Encode() ([]byte, error) {
	if c.Job == nil {
		return nil, fmt.Errorf("%w: push without a job", errs.ErrInvalidInput)
	}
	if c.Job.ID == "" || c.Job.Type == "" {
		return nil, fmt.Errorf("%w: job requires jid and jobtype", errs.ErrInvalidInput)
	}
	return encodeJSON(defs.VerbPush, c.Job)
}

func (Push) command() {}
