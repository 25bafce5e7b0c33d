package config

// Intents is a named bit-set selecting categories of server-initiated events
// a client wishes to receive. Bit positions mirror the public gateway's
// intent numbering so that real client libraries can be exercised against
// this mock unmodified.
type Intents uint64

// Gateway intent bits, in the order a production gateway defines them.
const (
	IntentGuilds                      Intents = 1 << 0
	IntentGuildMembers                Intents = 1 << 1
	IntentGuildModeration             Intents = 1 << 2
	IntentGuildEmojisAndStickers      Intents = 1 << 3
	IntentGuildIntegrations           Intents = 1 << 4
	IntentGuildWebhooks               Intents = 1 << 5
	IntentGuildInvites                Intents = 1 << 6
	IntentGuildVoiceStates            Intents = 1 << 7
	IntentGuildPresences              Intents = 1 << 8
	IntentGuildMessages               Intents = 1 << 9
	IntentGuildMessageReactions       Intents = 1 << 10
	IntentGuildMessageTyping          Intents = 1 << 11
	IntentDirectMessages              Intents = 1 << 12
	IntentDirectMessageReactions      Intents = 1 << 13
	IntentDirectMessageTyping         Intents = 1 << 14
	IntentMessageContent              Intents = 1 << 15
	IntentGuildScheduledEvents        Intents = 1 << 16
	IntentAutoModerationConfiguration Intents = 1 << 20
	IntentAutoModerationExecution     Intents = 1 << 21
	IntentGuildMessagePolls           Intents = 1 << 24
	IntentDirectMessagePolls          Intents = 1 << 25
)

// IntentsAll is the union of every intent bit this gateway knows about. It
// is the starting point for PermittedIntents before privileged intents are
// stripped out.
const IntentsAll = IntentGuilds | IntentGuildMembers | IntentGuildModeration |
	IntentGuildEmojisAndStickers | IntentGuildIntegrations | IntentGuildWebhooks |
	IntentGuildInvites | IntentGuildVoiceStates | IntentGuildPresences |
	IntentGuildMessages | IntentGuildMessageReactions | IntentGuildMessageTyping |
	IntentDirectMessages | IntentDirectMessageReactions | IntentDirectMessageTyping |
	IntentMessageContent | IntentGuildScheduledEvents |
	IntentAutoModerationConfiguration | IntentAutoModerationExecution |
	IntentGuildMessagePolls | IntentDirectMessagePolls

// Application flag bits relevant to gating privileged intents. Values mirror
// a production application's OAuth2 flags field.
const (
	FlagGatewayPresence              uint64 = 1 << 12
	FlagGatewayPresenceLimited       uint64 = 1 << 13
	FlagGatewayGuildMembers          uint64 = 1 << 14
	FlagGatewayGuildMembersLimited   uint64 = 1 << 15
	FlagGatewayMessageContent        uint64 = 1 << 18
	FlagGatewayMessageContentLimited uint64 = 1 << 19
)

// Contains reports whether want is a subset of the receiver's bits.
func (i Intents) Contains(want Intents) bool {
	return i&want == want
}
