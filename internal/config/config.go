// Package config loads the mock gateway's process-wide configuration from a
// single JSON file and derives the bot identity views and permitted intents
// consumed by the connection state machine. Configuration is loaded once and
// is never reloaded at runtime; a missing or malformed file is fatal.
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config is the top-level, immutable configuration for a gateway process.
type Config struct {
	LogLevel                string    `json:"log_level"`
	Port                    int       `json:"port"`
	ExternallyAccessibleURL string    `json:"externally_accessible_url"`
	Scenarios               Scenarios `json:"scenarios"`
	Bot                     Bot       `json:"bot"`
	MockData                MockData  `json:"mock_data"`
}

// Scenarios toggles the fault-injection behaviors the state machine applies.
type Scenarios struct {
	// UnansweredHeartbeats, when true, makes the server silently drop every
	// client heartbeat instead of replying with HeartbeatAck.
	UnansweredHeartbeats bool `json:"unanswered_heartbeats"`
	// ExpiredSessions, when true, makes every Resume fail as if the claimed
	// session id were unknown, regardless of whether it is registered.
	ExpiredSessions bool `json:"expired_sessions"`
}

// Bot is the mock bot identity advertised by this gateway instance.
type Bot struct {
	Token            string  `json:"token"`
	ApplicationID    string  `json:"application_id"`
	ApplicationFlags uint64  `json:"application_flags"`
	UserID           string  `json:"user_id"`
	UserFlags        *uint64 `json:"user_flags,omitempty"`
	PublicFlags      *uint64 `json:"public_flags,omitempty"`
	Avatar           *string `json:"avatar,omitempty"`
	Discriminator    int     `json:"discriminator"`
	Name             string  `json:"name"`
}

// MockData holds the advisory-only entity counts advertised by configuration.
// Nothing in the gateway materializes entities beyond what the READY payload
// needs, so these counts are never consulted by the state machine itself.
type MockData struct {
	Guilds      uint32 `json:"guilds"`
	Users       uint32 `json:"users"`
	Channels    uint32 `json:"channels"`
	VoiceStates uint32 `json:"voice_states"`
}

// CurrentUser is the bot's "current user" view, as sent in the READY
// payload's "user" field. Fields bots never have are always absent/zero.
type CurrentUser struct {
	ID            string  `json:"id"`
	Username      string  `json:"username"`
	Discriminator int     `json:"discriminator"`
	Avatar        *string `json:"avatar"`
	Bot           bool    `json:"bot"`
	MFAEnabled    bool    `json:"mfa_enabled"`
	Verified      bool    `json:"verified"`
	Flags         *uint64 `json:"flags,omitempty"`
	PublicFlags   *uint64 `json:"public_flags,omitempty"`
}

// CurrentUser projects the Bot record into its current-user view.
func (b Bot) CurrentUser() CurrentUser {
	return CurrentUser{
		ID:            b.UserID,
		Username:      b.Name,
		Discriminator: b.Discriminator,
		Avatar:        b.Avatar,
		Bot:           true,
		MFAEnabled:    true,
		Verified:      true,
		Flags:         b.UserFlags,
		PublicFlags:   b.PublicFlags,
	}
}

// PartialApplication is the bot's partial-application view, as sent in the
// READY payload's "application" field.
type PartialApplication struct {
	ID    string `json:"id"`
	Flags uint64 `json:"flags"`
}

// PartialApplication projects the Bot record into its partial-application view.
func (b Bot) PartialApplication() PartialApplication {
	return PartialApplication{ID: b.ApplicationID, Flags: b.ApplicationFlags}
}

// PermittedIntents derives the set of intents this bot may request, computed
// once from ApplicationFlags. Starting from all defined intents, privileged
// intents are removed unless their corresponding application flag bit(s) are
// set.
func (b Bot) PermittedIntents() Intents {
	intents := IntentsAll

	if b.ApplicationFlags&(FlagGatewayPresence|FlagGatewayPresenceLimited) == 0 {
		intents &^= IntentGuildPresences
	}
	if b.ApplicationFlags&(FlagGatewayGuildMembers|FlagGatewayGuildMembersLimited) == 0 {
		intents &^= IntentGuildMembers
	}
	if b.ApplicationFlags&(FlagGatewayMessageContent|FlagGatewayMessageContentLimited) == 0 {
		intents &^= IntentMessageContent
	}

	return intents
}

// Load reads, parses, and validates the configuration at path. A missing
// file or malformed JSON is reported as an error; callers that treat config
// loading as fatal should report err on stderr and exit nonzero without
// having opened any socket.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %q: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %q: %w", path, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Port == 0 {
		return fmt.Errorf("config: port is required")
	}
	if cfg.Bot.Token == "" {
		return fmt.Errorf("config: bot.token is required")
	}
	if cfg.Bot.ApplicationID == "" {
		return fmt.Errorf("config: bot.application_id is required")
	}
	if cfg.Bot.UserID == "" {
		return fmt.Errorf("config: bot.user_id is required")
	}
	return nil
}
