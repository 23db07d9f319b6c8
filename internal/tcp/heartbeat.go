package tcp

import (
	"encoding/json"
	"fmt"
	"strings"

	"gitlab.com/fcv-2025.net/faktory-client/internal/domain"
	"gitlab.com/fcv-2025.net/faktory-client/internal/static/errs"
	"gitlab.com/fcv-2025.net/faktory-client/internal/tcp/commands"
	"gitlab.com/fcv-2025.net/faktory-client/internal/tcp/defs"
	"gitlab.com/fcv-2025.net/faktory-client/internal/tcp/wire"
)

// Heartbeat announces liveness and applies the server's control signal.
// A quiet session stays quiet; a terminated one rejects every later command.
func (s *Session) Heartbeat() (domain.HeartbeatStatus, error) {
	token, err := s.Issue(commands.Heartbeat{WorkerID: s.opts.WorkerID})
	if err != nil {
		return domain.HeartbeatOK, err
	}
	resp, err := token.Raw()
	if err != nil {
		return domain.HeartbeatOK, err
	}
	if err := resp.Err(); err != nil {
		return domain.HeartbeatOK, err
	}

	status, err := decodeHeartbeat(resp)
	if err != nil {
		return domain.HeartbeatOK, err
	}
	return s.transition(status), nil
}

func (s *Session) transition(status domain.HeartbeatStatus) domain.HeartbeatStatus {
	prev := s.state
	switch status {
	case domain.HeartbeatTerminate:
		s.state = domain.StateTerminated
	case domain.HeartbeatQuiet:
		s.state = domain.StateQuiet
	case domain.HeartbeatOK:
		if s.state == domain.StateQuiet {
			status = domain.HeartbeatQuiet
		}
	}
	if prev != s.state {
		s.logger.Info("Worker state changed", "wid", s.opts.WorkerID, "from", prev.String(), "to", s.state.String())
	}
	return status
}

func decodeHeartbeat(resp wire.Response) (domain.HeartbeatStatus, error) {
	text := resp.Text
	if resp.Kind == wire.KindBulk {
		text = strings.TrimSpace(string(resp.Payload))
		if strings.HasPrefix(text, "{") {
			var data defs.BeatStateData
			if err := json.Unmarshal([]byte(text), &data); err != nil {
				return domain.HeartbeatOK, errs.Data("decode BEAT response", err)
			}
			text = data.State
		}
	}
	return ParseHeartbeat(text)
}

// ParseHeartbeat maps a heartbeat reply text to a status.
func ParseHeartbeat(text string) (domain.HeartbeatStatus, error) {
	switch text {
	case defs.BeatOK:
		return domain.HeartbeatOK, nil
	case defs.BeatQuiet:
		return domain.HeartbeatQuiet, nil
	case defs.BeatTerminate:
		return domain.HeartbeatTerminate, nil
	default:
		return domain.HeartbeatOK, fmt.Errorf("%w: unexpected heartbeat reply %q", errs.ErrProtocol, text)
	}
}
