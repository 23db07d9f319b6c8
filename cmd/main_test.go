package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/fcv-2025.net/faktory-client/internal/adapter/transport"
	"gitlab.com/fcv-2025.net/faktory-client/internal/config"
)

func TestParsePushArgs(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		wantType  string
		wantArgs  []interface{}
		wantQueue string
		wantErr   bool
	}{
		{name: "type only", args: []string{"Report"}, wantType: "Report"},
		{name: "with args", args: []string{"Add", "[1, 2]"}, wantType: "Add", wantArgs: []interface{}{float64(1), float64(2)}},
		{name: "with queue", args: []string{"Add", "[]", "math"}, wantType: "Add", wantArgs: []interface{}{}, wantQueue: "math"},
		{name: "empty args skip", args: []string{"Add", "", "math"}, wantType: "Add", wantQueue: "math"},
		{name: "missing type", args: nil, wantErr: true},
		{name: "args not an array", args: []string{"Add", `{"a":1}`}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jobType, jobArgs, queue, err := parsePushArgs(tt.args)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, jobType)
			assert.Equal(t, tt.wantArgs, jobArgs)
			assert.Equal(t, tt.wantQueue, queue)
		})
	}
}

func TestNewConnector(t *testing.T) {
	cfg := config.NewFaktoryConfig(config.MapLookup(map[string]string{"FAKTORY_READ_TIMEOUT_SEC": "3"}))

	plain, ok := newConnector(cfg).(*transport.TCPConnector)
	require.True(t, ok)
	assert.Equal(t, 3*time.Second, plain.Timeouts.Read)
	assert.Equal(t, 10*time.Second, plain.Timeouts.Dial)

	cfg.TLS = true
	_, ok = newConnector(cfg).(*transport.TLSConnector)
	assert.True(t, ok)
}

func TestIdentityUsesConfiguredLabels(t *testing.T) {
	cfg := config.NewFaktoryConfig(config.MapLookup(map[string]string{"FAKTORY_LABELS": "a,b"}))
	opts := identity(cfg)
	assert.Equal(t, []string{"a", "b"}, opts.Labels)
	assert.Empty(t, opts.WorkerID)
}
