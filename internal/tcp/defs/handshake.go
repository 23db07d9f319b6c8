package defs

// Protocol data structures
type (
	// Hi is the greeting the server sends first on every connection
	Hi struct {
		Version    int    `json:"v"`
		Salt       string `json:"s,omitempty"`
		Iterations int    `json:"i,omitempty"`
	}

	// Hello is the client's handshake reply carrying its identity
	Hello struct {
		Hostname     string   `json:"hostname"`
		WorkerID     string   `json:"wid"`
		Pid          int      `json:"pid"`
		Labels       []string `json:"labels"`
		Version      int      `json:"v"`
		PasswordHash string   `json:"pwdhash,omitempty"`
	}
)
