package tcp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/fcv-2025.net/faktory-client/internal/config"
	"gitlab.com/fcv-2025.net/faktory-client/internal/domain"
	"gitlab.com/fcv-2025.net/faktory-client/internal/static/errs"
	"gitlab.com/fcv-2025.net/faktory-client/internal/testutil/fakeserver"
)

func TestParseHeartbeat(t *testing.T) {
	tests := []struct {
		text    string
		want    domain.HeartbeatStatus
		wantErr bool
	}{
		{text: "OK", want: domain.HeartbeatOK},
		{text: "quiet", want: domain.HeartbeatQuiet},
		{text: "terminate", want: domain.HeartbeatTerminate},
		{text: "", wantErr: true},
		{text: "PAUSE", wantErr: true},
		{text: "ok", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := ParseHeartbeat(tt.text)
			if tt.wantErr {
				assert.ErrorIs(t, err, errs.ErrProtocol)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHeartbeatReplies(t *testing.T) {
	tests := []struct {
		name      string
		reply     string
		want      domain.HeartbeatStatus
		wantState domain.SessionState
		wantErr   error
	}{
		{"simple ok", "+OK", domain.HeartbeatOK, domain.StateConnected, nil},
		{"simple quiet", "+quiet", domain.HeartbeatQuiet, domain.StateQuiet, nil},
		{"simple terminate", "+terminate", domain.HeartbeatTerminate, domain.StateTerminated, nil},
		{"bulk text", fakeserver.Bulk("quiet"), domain.HeartbeatQuiet, domain.StateQuiet, nil},
		{"bulk document", fakeserver.Bulk(`{"state":"terminate"}`), domain.HeartbeatTerminate, domain.StateTerminated, nil},
		{"unknown text", "+PAUSE", domain.HeartbeatOK, domain.StateConnected, errs.ErrProtocol},
		{"empty document", "$-1", domain.HeartbeatOK, domain.StateConnected, errs.ErrProtocol},
		{"unknown state", fakeserver.Bulk(`{"state":"sleepy"}`), domain.HeartbeatOK, domain.StateConnected, errs.ErrProtocol},
		{"broken document", fakeserver.Bulk(`{"state":`), domain.HeartbeatOK, domain.StateConnected, errs.ErrData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := fakeserver.Start(t)
			srv.SetBeatReplies(tt.reply)
			s := connect(t, srv)

			got, err := s.Heartbeat()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			assert.Equal(t, tt.wantState, s.State())
		})
	}
}

func TestHeartbeatStateMachine(t *testing.T) {
	srv := fakeserver.Start(t)
	srv.SetBeatReplies("+OK", "+quiet", "+OK", fakeserver.Bulk(`{"state":"terminate"}`))
	srv.Enqueue(domain.NewJob("Waiting"))
	s := connect(t, srv)
	wid := s.Options().WorkerID

	status, err := s.Heartbeat()
	require.NoError(t, err)
	assert.Equal(t, domain.HeartbeatOK, status)
	assert.Equal(t, domain.StateConnected, s.State())

	status, err = s.Heartbeat()
	require.NoError(t, err)
	assert.Equal(t, domain.HeartbeatQuiet, status)
	assert.Equal(t, domain.StateQuiet, s.State())

	// quiet stops fetching but acknowledgements still flow
	_, err = s.Fetch(domain.DefaultQueue)
	assert.ErrorIs(t, err, errs.ErrQuiet)
	assert.ErrorIs(t, err, errs.ErrProtocol)
	require.NoError(t, s.Ack("in-flight"))

	// quiet is sticky
	status, err = s.Heartbeat()
	require.NoError(t, err)
	assert.Equal(t, domain.HeartbeatQuiet, status)
	assert.Equal(t, domain.StateQuiet, s.State())

	status, err = s.Heartbeat()
	require.NoError(t, err)
	assert.Equal(t, domain.HeartbeatTerminate, status)
	assert.Equal(t, domain.StateTerminated, s.State())

	// terminated is absorbing
	_, err = s.Heartbeat()
	assert.ErrorIs(t, err, errs.ErrTerminated)
	_, err = s.Fetch(domain.DefaultQueue)
	assert.ErrorIs(t, err, errs.ErrTerminated)
	assert.ErrorIs(t, s.Push(domain.NewJob("Late")), errs.ErrTerminated)
	assert.ErrorIs(t, s.Ack("jid"), errs.ErrTerminated)
	assert.Equal(t, 1, srv.QueueSize(domain.DefaultQueue))

	assert.Equal(t, 4, srv.CountCommand("BEAT"))
	assert.Equal(t, wid, s.Options().WorkerID)
}

func TestReconnectKeepsHeartbeatState(t *testing.T) {
	srv := fakeserver.Start(t)
	srv.SetBeatReplies("+quiet", "+OK", "+terminate")
	srv.Enqueue(domain.NewJob("Waiting"))
	s := connect(t, srv)

	_, err := s.Heartbeat()
	require.NoError(t, err)
	require.Equal(t, domain.StateQuiet, s.State())

	// a new stream does not lift quiet
	require.NoError(t, s.Reconnect(context.Background(), srv.URL()))
	assert.Equal(t, domain.StateQuiet, s.State())
	_, err = s.Fetch(domain.DefaultQueue)
	assert.ErrorIs(t, err, errs.ErrQuiet)

	status, err := s.Heartbeat()
	require.NoError(t, err)
	assert.Equal(t, domain.HeartbeatQuiet, status)

	status, err = s.Heartbeat()
	require.NoError(t, err)
	require.Equal(t, domain.HeartbeatTerminate, status)

	// terminated sessions cannot come back
	assert.ErrorIs(t, s.Reconnect(context.Background(), srv.URL()), errs.ErrTerminated)
	assert.ErrorIs(t, s.ReconnectEnv(context.Background(), config.MapLookup(map[string]string{"FAKTORY_URL": srv.URL()})), errs.ErrTerminated)
	assert.Equal(t, domain.StateTerminated, s.State())
	_, err = s.Fetch(domain.DefaultQueue)
	assert.ErrorIs(t, err, errs.ErrTerminated)

	require.NoError(t, s.Close())
	assert.ErrorIs(t, s.Connect(context.Background(), srv.URL()), errs.ErrTerminated)
	assert.Equal(t, 1, srv.QueueSize(domain.DefaultQueue))
	assert.Len(t, srv.Hellos(), 2)
}
