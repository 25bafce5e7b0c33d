package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/gelbpunkt/mockgw/internal/config"
	"github.com/gelbpunkt/mockgw/internal/script"
	"github.com/gelbpunkt/mockgw/internal/session"
)

const botTokenPrefix = "Bot "

// inboundEnvelope is the shape used to decode a client-sent message; its
// payload is decoded further once the opcode is known.
type inboundEnvelope struct {
	Op Opcode          `json:"op"`
	D  json.RawMessage `json:"d"`
}

// ConnectionState holds everything a connection's handlers need to respond
// to client messages and to drive its post-ready script. It is shared
// between the read loop and the goroutine running the connection's script.
type ConnectionState struct {
	writer   *WriteHandle
	sessions *session.Registry
	cfg      *config.Config
	script   []script.Action
	logger   *slog.Logger

	mu        sync.Mutex
	sessionID string
}

func newConnectionState(writer *WriteHandle, sessions *session.Registry, cfg *config.Config, sc []script.Action, logger *slog.Logger) *ConnectionState {
	return &ConnectionState{
		writer:   writer,
		sessions: sessions,
		cfg:      cfg,
		script:   sc,
		logger:   logger,
	}
}

// setSessionID records id as this connection's session id, once. Subsequent
// calls are no-ops, mirroring the set-once semantics of the id a session is
// first assigned or resumed under.
func (s *ConnectionState) setSessionID(id string) {
	s.mu.Lock()
	if s.sessionID == "" {
		s.sessionID = id
	}
	s.mu.Unlock()
}

// invalidateSession destroys any registered session for this connection,
// notifies the client, and closes the connection normally.
func (s *ConnectionState) invalidateSession(resumable bool) {
	s.mu.Lock()
	id := s.sessionID
	s.mu.Unlock()

	if id != "" {
		s.sessions.Destroy(id)
	}

	// InvalidSession is never a dispatch event and never consumes a sequence number.
	_ = s.writer.Send(invalidSessionEnvelope(resumable))
	_ = s.writer.Close(CloseNormal, "")
}

// setReady launches the connection's scripted action sequence once it
// reaches the Ready (or Resumed) state.
func (s *ConnectionState) setReady() {
	go runScript(s)
}

func runScript(s *ConnectionState) {
	for _, action := range s.script {
		s.logger.Info("running scripted action", slog.String("action", action.String()))

		switch action.Kind {
		case script.KindSleep:
			time.Sleep(action.Sleep)
		case script.KindInvalidateSession:
			s.invalidateSession(action.Resumable)
		case script.KindDispatch:
			if err := s.writer.SendDispatch(action.EventType, action.Data); err != nil {
				s.logger.Error("failed to send scripted dispatch", slog.Any("error", err))
			}
		case script.KindHeartbeat:
			if err := s.writer.Send(heartbeatAckEnvelope()); err != nil {
				s.logger.Error("failed to send scripted heartbeat", slog.Any("error", err))
			}
		default:
			s.logger.Warn("skipping scripted action: not implemented", slog.String("action", action.Kind.String()))
		}
	}
}

// process applies one decoded client message to the connection's state.
func (s *ConnectionState) process(env inboundEnvelope) {
	switch env.Op {
	case OpIdentify:
		s.processIdentify(env.D)
	case OpResume:
		s.processResume(env.D)
	case OpHeartbeat:
		if !s.cfg.Scenarios.UnansweredHeartbeats {
			_ = s.writer.Send(heartbeatAckEnvelope())
		}
	default:
		s.logger.Debug("ignoring client event", slog.Int("op", int(env.Op)))
	}
}

func (s *ConnectionState) processIdentify(raw json.RawMessage) {
	var payload IdentifyPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		s.invalidateSession(false)
		return
	}

	permitted := s.cfg.Bot.PermittedIntents()
	if !permitted.Contains(config.Intents(payload.Intents)) {
		_ = s.writer.Close(CloseDisallowedIntents, disallowedIntentsReason)
		return
	}

	if !tokenMatches(payload.Token, s.cfg.Bot.Token) {
		_ = s.writer.Close(CloseAuthenticationFailed, authFailedReason)
		return
	}

	var shard *session.Shard
	if payload.Shard != nil {
		shard = &session.Shard{Index: payload.Shard[0], Total: payload.Shard[1]}
	}

	sessionID := s.sessions.Create(session.Session{
		Shard:    shard,
		Compress: payload.Compress,
		Intents:  payload.Intents,
	})
	s.setSessionID(sessionID)

	_ = s.writer.SendDispatch("READY", ReadyPayload{
		V:                readyVersion,
		User:             s.cfg.Bot.CurrentUser(),
		Guilds:           []any{},
		SessionID:        sessionID,
		Shard:            payload.Shard,
		Application:      s.cfg.Bot.PartialApplication(),
		ResumeGatewayURL: s.cfg.ExternallyAccessibleURL,
	})

	s.setReady()
	s.logger.Info("client identified", slog.String("session_id", sessionID))
}

func (s *ConnectionState) processResume(raw json.RawMessage) {
	var payload ResumePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		s.invalidateSession(false)
		return
	}

	if !tokenMatches(payload.Token, s.cfg.Bot.Token) {
		_ = s.writer.Close(CloseAuthenticationFailed, authFailedReason)
		return
	}

	// Note: the sequence number the client last saw is never validated; a
	// known session id is resumable regardless of where it claims to be.
	if s.sessions.Exists(payload.SessionID) && !s.cfg.Scenarios.ExpiredSessions {
		s.setSessionID(payload.SessionID)
		_ = s.writer.SendDispatch("RESUMED", ResumedPayload{})
		s.setReady()
		s.logger.Info("client resumed", slog.String("session_id", payload.SessionID))
		return
	}

	s.invalidateSession(false)
}

func tokenMatches(header, want string) bool {
	token, ok := strings.CutPrefix(header, botTokenPrefix)
	return ok && token == want
}

// Connection owns the read side of an accepted WebSocket and drives it
// until the client disconnects or a protocol error closes it.
type Connection struct {
	conn  *websocket.Conn
	state *ConnectionState
}

func newConnection(conn *websocket.Conn, sessions *session.Registry, cfg *config.Config, sc []script.Action, logger *slog.Logger) *Connection {
	writer := newWriteHandle(conn, logger)
	return &Connection{
		conn:  conn,
		state: newConnectionState(writer, sessions, cfg, sc, logger),
	}
}

// handle sends Hello and then reads client messages until the connection
// ends.
func (c *Connection) handle(ctx context.Context) {
	// Once the read side ends, ask the writer goroutine to close and return;
	// any in-flight script goroutine may still enqueue sends afterwards, but
	// those land on a connection already being torn down and are dropped
	// once the writer observes the closed connection.
	defer c.state.writer.Close(CloseNormal, "")

	if err := c.state.writer.Send(helloEnvelope()); err != nil {
		return
	}

	for {
		msgType, data, err := c.conn.Read(ctx)
		if err != nil {
			return
		}
		if msgType != websocket.MessageText && msgType != websocket.MessageBinary {
			continue
		}

		if c.state.logger.Enabled(ctx, slog.LevelDebug) {
			c.state.logger.Debug("got frame", slog.String("payload", string(data)))
		}

		var env inboundEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			c.state.logger.Error("failed to decode client event", slog.Any("error", err))
			_ = c.state.writer.Close(CloseDecodeError, decodeErrorReason)
			return
		}

		c.state.logger.Debug("got event", slog.Int("op", int(env.Op)))
		c.state.process(env)
	}
}
