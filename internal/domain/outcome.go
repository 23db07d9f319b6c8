package domain

import "time"

type OutcomeStatus string

const (
	OutcomeAcked  OutcomeStatus = "acked"
	OutcomeFailed OutcomeStatus = "failed"
)

// JobOutcome records how a fetched job was finished by this worker
type JobOutcome struct {
	JobID      string        `db:"job_id" json:"jid"`
	JobType    string        `db:"job_type" json:"jobtype"`
	Queue      string        `db:"queue" json:"queue"`
	WorkerID   string        `db:"worker_id" json:"wid"`
	Status     OutcomeStatus `db:"status" json:"status"`
	ErrType    string        `db:"err_type" json:"errtype,omitempty"`
	Message    string        `db:"message" json:"message,omitempty"`
	FinishedAt time.Time     `db:"finished_at" json:"finished_at"`
}

// OutcomeFilter narrows an outcome listing. Zero fields match everything.
type OutcomeFilter struct {
	Status  OutcomeStatus
	JobType string
	Limit   int
}

type JobOutcomeTable struct {
	JobID      string
	JobType    string
	Queue      string
	WorkerID   string
	Status     string
	ErrType    string
	Message    string
	FinishedAt string
}

func GetJobOutcomeTable() JobOutcomeTable {
	return JobOutcomeTable{
		JobID:      "job_id",
		JobType:    "job_type",
		Queue:      "queue",
		WorkerID:   "worker_id",
		Status:     "status",
		ErrType:    "err_type",
		Message:    "message",
		FinishedAt: "finished_at",
	}
}

func (JobOutcomeTable) TableName() string {
	return "job_outcomes"
}

func (t JobOutcomeTable) Columns() []string {
	return []string{t.JobID, t.JobType, t.Queue, t.WorkerID, t.Status, t.ErrType, t.Message, t.FinishedAt}
}
