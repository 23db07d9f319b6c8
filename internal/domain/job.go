package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	DefaultQueue = "default"
	DefaultRetry = 25
)

// Job is the unit of work exchanged with the server. The protocol layer only
// (de)serializes it; args and custom are opaque to the client.
type Job struct {
	ID         string                 `json:"jid"`
	Type       string                 `json:"jobtype"`
	Args       []interface{}          `json:"args"`
	Queue      string                 `json:"queue,omitempty"`
	Priority   int                    `json:"priority,omitempty"`
	Retry      *int                   `json:"retry,omitempty"`
	ReserveFor int                    `json:"reserve_for,omitempty"`
	At         string                 `json:"at,omitempty"`
	CreatedAt  string                 `json:"created_at,omitempty"`
	EnqueuedAt string                 `json:"enqueued_at,omitempty"`
	Backtrace  int                    `json:"backtrace,omitempty"`
	Failure    *Failure               `json:"failure,omitempty"`
	Custom     map[string]interface{} `json:"custom,omitempty"`
}

// Failure is the retry metadata the server attaches to a job that failed before.
type Failure struct {
	RetryCount   int      `json:"retry_count"`
	FailedAt     string   `json:"failed_at"`
	NextAt       string   `json:"next_at,omitempty"`
	ErrorMessage string   `json:"message,omitempty"`
	ErrorType    string   `json:"errtype,omitempty"`
	Backtrace    []string `json:"backtrace,omitempty"`
}

// NewJob creates a new job for the default queue
func NewJob(jobType string, args ...interface{}) *Job {
	if args == nil {
		args = []interface{}{}
	}
	retry := DefaultRetry
	return &Job{
		ID:        uuid.NewString(),
		Type:      jobType,
		Args:      args,
		Queue:     DefaultQueue,
		Retry:     &retry,
		CreatedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}
}

// SetCustom stores an extension value, allocating the map on first use.
func (j *Job) SetCustom(key string, value interface{}) *Job {
	if j.Custom == nil {
		j.Custom = make(map[string]interface{})
	}
	j.Custom[key] = value
	return j
}

// RetryCount returns how many times the job already failed.
func (j *Job) RetryCount() int {
	if j.Failure == nil {
		return 0
	}
	return j.Failure.RetryCount
}
