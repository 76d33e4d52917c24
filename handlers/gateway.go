package handlers

import (
	"time"

	"github.com/bwmarrin/discordgo"

	"aetherticket/ticket"
)

const ticketAccessPerms = discordgo.PermissionViewChannel |
	discordgo.PermissionSendMessages |
	discordgo.PermissionReadMessageHistory

// sessionGateway implements ticket.Gateway over a discordgo session.
type sessionGateway struct {
	s *discordgo.Session
}

// NewGateway wraps a discordgo session in the capability surface the
// lifecycle controller consumes.
func NewGateway(s *discordgo.Session) ticket.Gateway {
	return &sessionGateway{s: s}
}

func (g *sessionGateway) CategoryByName(guildID, name string) (string, error) {
	channels, err := g.s.GuildChannels(guildID)
	if err != nil {
		return "", err
	}
	for _, ch := range channels {
		if ch.Type == discordgo.ChannelTypeGuildCategory && ch.Name == name {
			return ch.ID, nil
		}
	}
	return "", nil
}

func (g *sessionGateway) CreateCategory(guildID, name string) (string, error) {
	ch, err := g.s.GuildChannelCreate(guildID, name, discordgo.ChannelTypeGuildCategory)
	if err != nil {
		return "", err
	}
	return ch.ID, nil
}

func (g *sessionGateway) TextChannelByName(guildID, parentID, name string) (*ticket.Channel, error) {
	channels, err := g.s.GuildChannels(guildID)
	if err != nil {
		return nil, err
	}
	for _, ch := range channels {
		if ch.Type == discordgo.ChannelTypeGuildText && ch.Name == name && ch.ParentID == parentID {
			return &ticket.Channel{ID: ch.ID, GuildID: ch.GuildID, Name: ch.Name}, nil
		}
	}
	return nil, nil
}

func (g *sessionGateway) CreateTicketChannel(guildID, parentID, name, ownerID string) (*ticket.Channel, error) {
	ch, err := g.s.GuildChannelCreateComplex(guildID, discordgo.GuildChannelCreateData{
		Name:     name,
		Type:     discordgo.ChannelTypeGuildText,
		ParentID: parentID,
		PermissionOverwrites: []*discordgo.PermissionOverwrite{
			{ID: guildID, Type: discordgo.PermissionOverwriteTypeRole, Deny: discordgo.PermissionViewChannel},
			{ID: ownerID, Type: discordgo.PermissionOverwriteTypeMember, Allow: ticketAccessPerms},
		},
	})
	if err != nil {
		return nil, err
	}
	return &ticket.Channel{ID: ch.ID, GuildID: ch.GuildID, Name: ch.Name}, nil
}

func (g *sessionGateway) RoleByName(guildID, name string) (*ticket.Role, error) {
	roles, err := g.s.GuildRoles(guildID)
	if err != nil {
		return nil, err
	}
	for _, role := range roles {
		if role.Name == name {
			return &ticket.Role{ID: role.ID, Name: role.Name}, nil
		}
	}
	return nil, nil
}

func (g *sessionGateway) GrantTicketAccess(channelID, targetID string, asRole bool) error {
	targetType := discordgo.PermissionOverwriteTypeMember
	if asRole {
		targetType = discordgo.PermissionOverwriteTypeRole
	}
	return g.s.ChannelPermissionSet(channelID, targetID, targetType, ticketAccessPerms, 0)
}

func (g *sessionGateway) SendMessage(channelID, content string) error {
	_, err := g.s.ChannelMessageSend(channelID, content)
	return err
}

func (g *sessionGateway) SendEmbed(channelID string, embed ticket.Embed) error {
	_, err := g.s.ChannelMessageSendEmbed(channelID, toMessageEmbed(embed))
	return err
}

func (g *sessionGateway) RecentMessages(channelID string, limit int) ([]ticket.Message, error) {
	msgs, err := g.s.ChannelMessages(channelID, limit, "", "", "")
	if err != nil {
		return nil, err
	}
	out := make([]ticket.Message, 0, len(msgs))
	for _, m := range msgs {
		if m.Author == nil {
			continue
		}
		out = append(out, ticket.Message{
			Timestamp: m.Timestamp,
			AuthorTag: m.Author.String(),
			Content:   m.Content,
		})
	}
	return out, nil
}

func (g *sessionGateway) DeleteChannel(channelID, reason string) error {
	_, err := g.s.ChannelDelete(channelID, discordgo.WithAuditLogReason(reason))
	return err
}

func (g *sessionGateway) User(userID string) (*ticket.User, error) {
	u, err := g.s.User(userID)
	if err != nil {
		return nil, err
	}
	return &ticket.User{ID: u.ID, Tag: u.String()}, nil
}

func (g *sessionGateway) SelfCanReadHistory(channelID string) (bool, error) {
	return g.selfHasPermission(channelID, discordgo.PermissionReadMessageHistory)
}

func (g *sessionGateway) SelfCanManageChannel(channelID string) (bool, error) {
	return g.selfHasPermission(channelID, discordgo.PermissionManageChannels)
}

func (g *sessionGateway) selfHasPermission(channelID string, perm int64) (bool, error) {
	if g.s.State == nil || g.s.State.User == nil {
		return false, nil
	}
	perms, err := g.s.UserChannelPermissions(g.s.State.User.ID, channelID)
	if err != nil {
		return false, err
	}
	return perms&perm != 0, nil
}

func toMessageEmbed(e ticket.Embed) *discordgo.MessageEmbed {
	me := &discordgo.MessageEmbed{
		Title:       e.Title,
		Description: e.Description,
		Color:       e.Color,
	}
	if e.Footer != "" {
		me.Footer = &discordgo.MessageEmbedFooter{Text: e.Footer}
	}
	if !e.Timestamp.IsZero() {
		me.Timestamp = e.Timestamp.Format(time.RFC3339)
	}
	for _, f := range e.Fields {
		me.Fields = append(me.Fields, &discordgo.MessageEmbedField{
			Name:   f.Name,
			Value:  f.Value,
			Inline: f.Inline,
		})
	}
	return me
}
