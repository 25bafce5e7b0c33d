package gateway

import "github.com/gelbpunkt/mockgw/internal/config"

// Envelope is the wire format shared by every message exchanged with a
// client. T and S are always present on the wire, null unless Op is
// dispatch (0).
type Envelope struct {
	Op Opcode  `json:"op"`
	T  *string `json:"t"`
	S  *uint64 `json:"s"`
	D  any     `json:"d"`
}

// HelloPayload is sent once, immediately after a connection is accepted.
type HelloPayload struct {
	HeartbeatInterval int `json:"heartbeat_interval"`
}

// heartbeatIntervalMS is the fixed interval advertised in HelloPayload.
const heartbeatIntervalMS = 41250

// readyVersion is the gateway version advertised in ReadyPayload.
const readyVersion = 6

// ReadyPayload is the dispatch data sent once Identify succeeds.
type ReadyPayload struct {
	V                int                       `json:"v"`
	User             config.CurrentUser        `json:"user"`
	Guilds           []any                     `json:"guilds"`
	SessionID        string                    `json:"session_id"`
	Shard            *[2]int                   `json:"shard"`
	Application      config.PartialApplication `json:"application"`
	ResumeGatewayURL string                    `json:"resume_gateway_url"`
}

// ResumedPayload is the (empty) dispatch data sent once Resume succeeds.
type ResumedPayload struct{}

// IdentifyPayload is the client-sent data accompanying OpIdentify.
type IdentifyPayload struct {
	Token    string  `json:"token"`
	Intents  uint64  `json:"intents"`
	Shard    *[2]int `json:"shard,omitempty"`
	Compress bool    `json:"compress,omitempty"`
}

// ResumePayload is the client-sent data accompanying OpResume.
type ResumePayload struct {
	Token     string `json:"token"`
	SessionID string `json:"session_id"`
	Seq       uint64 `json:"seq"`
}

func helloEnvelope() Envelope {
	return Envelope{Op: OpHello, D: HelloPayload{HeartbeatInterval: heartbeatIntervalMS}}
}

// heartbeatAckEnvelope builds the op-11 reply sent both for a genuine client
// heartbeat ack and for a script-driven "heartbeat" action: the upstream
// protocol this mock reproduces sends HeartbeatAck in both cases, so this
// mock does too rather than "fixing" it into two distinct opcodes.
func heartbeatAckEnvelope() Envelope {
	return Envelope{Op: OpHeartbeatAck}
}

func invalidSessionEnvelope(resumable bool) Envelope {
	return Envelope{Op: OpInvalidSession, D: resumable}
}
