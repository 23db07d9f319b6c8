package defs

// Protocol data structures
type (
	// AckData is the ACK argument
	AckData struct {
		JobID string `json:"jid"`
	}

	// FailData is the FAIL argument
	FailData struct {
		JobID     string   `json:"jid"`
		ErrType   string   `json:"errtype"`
		Message   string   `json:"message"`
		Backtrace []string `json:"backtrace,omitempty"`
	}

	// BeatData is the BEAT argument
	BeatData struct {
		WorkerID string `json:"wid"`
	}

	// BeatStateData is the document form of a heartbeat reply sent by newer servers
	BeatStateData struct {
		State string `json:"state"`
	}
)
