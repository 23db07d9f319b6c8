package commands

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/fcv-2025.net/faktory-client/internal/domain"
	"gitlab.com/fcv-2025.net/faktory-client/internal/static/errs"
	"gitlab.com/fcv-2025.net/faktory-client/internal/tcp/defs"
)

func TestCommands_Encode(t *testing.T) {
	tests := []struct {
		name string
		cmd  Command
		verb string
		want string
	}{
		{name: "fetch", cmd: Fetch{Queues: []string{"critical", "default"}}, verb: "FETCH", want: "critical default"},
		{name: "fetch no queues", cmd: Fetch{}, verb: "FETCH", want: ""},
		{name: "ack", cmd: Ack{JobID: "j1"}, verb: "ACK", want: `{"jid":"j1"}`},
		{name: "fail", cmd: Fail{JobID: "j1", ErrType: "RuntimeError", Message: "boom"}, verb: "FAIL",
			want: `{"jid":"j1","errtype":"RuntimeError","message":"boom"}`},
		{name: "beat", cmd: Heartbeat{WorkerID: "w1"}, verb: "BEAT", want: `{"wid":"w1"}`},
		{name: "info", cmd: Info{}, verb: "INFO", want: ""},
		{name: "end", cmd: End{}, verb: "END", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			arg, err := tt.cmd.Encode()
			require.NoError(t, err)
			assert.Equal(t, tt.verb, tt.cmd.Verb())
			assert.Equal(t, tt.want, string(arg))
		})
	}
}

func TestCommands_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		cmd  Command
	}{
		{name: "push nil job", cmd: Push{}},
		{name: "push without jobtype", cmd: Push{Job: &domain.Job{ID: "x"}}},
		{name: "fetch blank queue", cmd: Fetch{Queues: []string{""}}},
		{name: "fetch queue with space", cmd: Fetch{Queues: []string{"a b"}}},
		{name: "ack without jid", cmd: Ack{}},
		{name: "fail without jid", cmd: Fail{}},
		{name: "beat without wid", cmd: Heartbeat{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.cmd.Encode()
			assert.ErrorIs(t, err, errs.ErrInvalidInput)
		})
	}
}

func TestPush_EncodesJob(t *testing.T) {
	job := domain.NewJob("SendEmail", "a@example.com", 3)
	arg, err := Push{Job: job}.Encode()
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(arg, &decoded))
	assert.Equal(t, job.ID, decoded["jid"])
	assert.Equal(t, "SendEmail", decoded["jobtype"])
	assert.Equal(t, "default", decoded["queue"])
	assert.Equal(t, []interface{}{"a@example.com", float64(3)}, decoded["args"])
}

func TestHello_Encode(t *testing.T) {
	arg, err := Hello{Data: defs.Hello{
		Hostname: "host",
		WorkerID: "wid",
		Pid:      42,
		Labels:   []string{"golang"},
		Version:  defs.ProtocolVersion,
	}}.Encode()
	require.NoError(t, err)
	assert.JSONEq(t, `{"hostname":"host","wid":"wid","pid":42,"labels":["golang"],"v":2}`, string(arg))
}
