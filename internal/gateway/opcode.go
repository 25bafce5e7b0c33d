package gateway

// Opcode is the gateway envelope's "op" field. Values match a production
// gateway's numbering so that unmodified client libraries can be pointed at
// this mock.
type Opcode int

const (
	OpDispatch            Opcode = 0
	OpHeartbeat           Opcode = 1
	OpIdentify            Opcode = 2
	OpPresenceUpdate      Opcode = 3
	OpVoiceStateUpdate    Opcode = 4
	OpVoiceServerPing     Opcode = 5
	OpResume              Opcode = 6
	OpReconnect           Opcode = 7
	OpRequestGuildMembers Opcode = 8
	OpInvalidSession      Opcode = 9
	OpHello               Opcode = 10
	OpHeartbeatAck        Opcode = 11
)

// CloseCode is a library-defined WebSocket close code used to report
// gateway-specific failures, distinct from the standard 1000-series codes.
type CloseCode int

const (
	CloseNormal               CloseCode = 1000
	CloseDecodeError          CloseCode = 4002
	CloseAuthenticationFailed CloseCode = 4004
	CloseDisallowedIntents    CloseCode = 4014
)

const (
	decodeErrorReason       = "Error while decoding payload."
	disallowedIntentsReason = "Disallowed intent(s)."
	authFailedReason        = "Authentication failed."
)
