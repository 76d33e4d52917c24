package ticket

import "time"

// User identifies a chat-platform user.
type User struct {
	ID  string
	Tag string
}

// Channel identifies a guild text channel.
type Channel struct {
	ID      string
	GuildID string
	Name    string
}

// Role identifies a guild role.
type Role struct {
	ID   string
	Name string
}

// Message is one fetched channel message, used for transcripts.
type Message struct {
	Timestamp time.Time
	AuthorTag string
	Content   string
}

// Embed is the platform-neutral form of a rendered message template.
type Embed struct {
	Title       string
	Description string
	Footer      string
	Color       int
	Timestamp   time.Time
	Fields      []EmbedField
}

// EmbedField is one name/value pair on an Embed.
type EmbedField struct {
	Name   string
	Value  string
	Inline bool
}

// Gateway is the capability surface the lifecycle controller consumes from
// the chat platform. The discordgo implementation lives in the handlers
// package; tests substitute fakes.
type Gateway interface {
	// CategoryByName returns the ID of the category channel with the exact
	// name, or "" when none exists.
	CategoryByName(guildID, name string) (string, error)
	CreateCategory(guildID, name string) (string, error)

	// TextChannelByName returns the text channel with the given name under
	// parentID, or nil when none exists.
	TextChannelByName(guildID, parentID, name string) (*Channel, error)

	// CreateTicketChannel creates a text channel under parentID with view
	// denied for the guild's default role and view/send/read-history allowed
	// for ownerID.
	CreateTicketChannel(guildID, parentID, name, ownerID string) (*Channel, error)

	// RoleByName returns the guild role with the exact name, or nil.
	RoleByName(guildID, name string) (*Role, error)

	// GrantTicketAccess allows view/send/read-history on the channel for a
	// member (asRole false) or a role (asRole true).
	GrantTicketAccess(channelID, targetID string, asRole bool) error

	SendMessage(channelID, content string) error
	SendEmbed(channelID string, embed Embed) error

	// RecentMessages returns up to limit of the most recent messages,
	// newest first.
	RecentMessages(channelID string, limit int) ([]Message, error)

	DeleteChannel(channelID, reason string) error

	// User fetches a user by ID.
	User(userID string) (*User, error)

	// Self-permission checks for the acting bot account on a channel.
	SelfCanReadHistory(channelID string) (bool, error)
	SelfCanManageChannel(channelID string) (bool, error)
}
