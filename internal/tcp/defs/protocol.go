package defs

import "time"

// Protocol constants
const (
	ProtocolVersion = 2

	// Command verbs
	VerbHello     = "HELLO"
	VerbPush      = "PUSH"
	VerbFetch     = "FETCH"
	VerbAck       = "ACK"
	VerbFail      = "FAIL"
	VerbHeartbeat = "BEAT"
	VerbInfo      = "INFO"
	VerbEnd       = "END"

	// Response markers
	MarkerSimple = '+'
	MarkerError  = '-'
	MarkerBulk   = '$'

	GreetingPrefix = "HI"
	ReplyOK        = "OK"
	LineTerminator = "\r\n"

	// Heartbeat replies
	BeatOK        = "OK"
	BeatQuiet     = "quiet"
	BeatTerminate = "terminate"

	// Configuration constants
	MaxLineLength      = 64 * 1024
	MaxBulkLength      = 16 * 1024 * 1024
	DefaultDialTimeout = 10 * time.Second
)
