package commands

import (
	"fmt"

	"gitlab.com/fcv-2025.net/faktory-client/internal/static/errs"
	"gitlab.com/fcv-2025.net/faktory-client/internal/tcp/defs"
)

var (
	_ Command = Heartbeat{}
	_ Command = Info{}
	_ Command = End{}
	_ Command = Hello{}
)

// Heartbeat announces liveness for a worker id.
type Heartbeat struct {
	WorkerID string
}

func (Heartbeat) Verb() string { return defs.VerbHeartbeat }

func (c Heartbeat) Encode() ([]byte, error) {
	if c.WorkerID == "" {
		return nil, fmt.Errorf("%w: heartbeat without worker id", errs.ErrInvalidInput)
	}
	return encodeJSON(defs.VerbHeartbeat, defs.BeatData{WorkerID: c.WorkerID})
}

func (Heartbeat) command() {}

// Info requests the server status document.
type Info struct{}

func (Info) Verb() string            { return defs.VerbInfo }
func (Info) Encode() ([]byte, error) { return nil, nil }
func (Info) command()                {}

// End tells the server the connection is going away.
type End struct{}

func (End) Verb() string            { return defs.VerbEnd }
func (End) Encode() ([]byte, error) { return nil, nil }
func (End) command()                {}

// Hello is the handshake reply. Only the session sends it.
type Hello struct {
	Data defs.Hello
}

func (Hello) Verb() string { return defs.VerbHello }

func (c Hello) Encode() ([]byte, error) {
	return encodeJSON(defs.VerbHello, c.Data)
}

func (Hello) command() {}
