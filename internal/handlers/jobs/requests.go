package jobs

// CreateJobRequest is the body of POST /api/jobs
type CreateJobRequest struct {
	Type  string        `json:"jobtype"`
	Queue string        `json:"queue"`
	Args  []interface{} `json:"args"`
}

type CreateJobResponse struct {
	JobID string `json:"jid"`
}
