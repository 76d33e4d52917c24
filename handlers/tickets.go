package handlers

import (
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"aetherticket/config"
	"aetherticket/lang"
	"aetherticket/ticket"
)

func ticketCommand() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "ticket",
		Description: "Ticket management commands",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name: "create", Description: "Create a new support ticket",
				Type: discordgo.ApplicationCommandOptionSubCommand,
			},
			{
				Name: "close", Description: "Close the current ticket",
				Type: discordgo.ApplicationCommandOptionSubCommand,
			},
			{
				Name: "add", Description: "Add a user to the current ticket",
				Type: discordgo.ApplicationCommandOptionSubCommand,
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "The user to add to the ticket", Required: true},
				},
			},
			{
				Name: "info", Description: "Get information about the current ticket",
				Type: discordgo.ApplicationCommandOptionSubCommand,
			},
		},
	}
}

func (h *Handler) executeTicket(s *discordgo.Session, i *discordgo.InteractionCreate, cfg config.Config) error {
	if i.GuildID == "" || i.Member == nil || i.Member.User == nil {
		h.respond(s, i, lang.T("server_only"), true)
		return nil
	}

	data := i.ApplicationCommandData()
	if len(data.Options) == 0 {
		return fmt.Errorf("ticket command invoked without a subcommand")
	}
	sub := data.Options[0]

	switch sub.Name {
	case "create":
		return h.handleCreate(s, i, cfg)
	case "close":
		return h.handleClose(s, i, cfg)
	case "add":
		return h.handleAdd(s, i, cfg, sub.Options)
	case "info":
		return h.handleInfo(s, i, cfg)
	default:
		return fmt.Errorf("unknown ticket subcommand %q", sub.Name)
	}
}

func (h *Handler) handleCreate(s *discordgo.Session, i *discordgo.InteractionCreate, cfg config.Config) error {
	user := i.Member.User
	res, err := h.ctrl.Create(i.GuildID, ticket.User{ID: user.ID, Tag: user.String()}, cfg)

	var open *ticket.AlreadyOpenError
	if errors.As(err, &open) {
		h.respond(s, i, lang.T("already_open", "channel", open.ChannelID), true)
		return nil
	}
	if err != nil {
		return err
	}

	h.respond(s, i, lang.T("ticket_created", "channel", res.ChannelID), true)
	return nil
}

func (h *Handler) handleClose(s *discordgo.Session, i *discordgo.InteractionCreate, cfg config.Config) error {
	ch, ok := h.textChannel(s, i)
	if !ok {
		h.respond(s, i, lang.T("text_channel_only"), true)
		return nil
	}

	embed, err := h.ctrl.CloseChannel(*ch, cfg)
	if handled := h.respondLifecycleAbort(s, i, err); handled {
		return nil
	}
	if err != nil {
		return err
	}

	h.respondEmbed(s, i, *embed)
	return nil
}

func (h *Handler) handleAdd(s *discordgo.Session, i *discordgo.InteractionCreate, cfg config.Config, opts []*discordgo.ApplicationCommandInteractionDataOption) error {
	ch, ok := h.textChannel(s, i)
	if !ok {
		h.respond(s, i, lang.T("text_channel_only"), true)
		return nil
	}

	userOpt, ok := subOptMap(opts)["user"]
	if !ok {
		return fmt.Errorf("add subcommand missing required user option")
	}
	target := userOpt.UserValue(s)
	if target == nil {
		return fmt.Errorf("add subcommand could not resolve target user")
	}

	embed, err := h.ctrl.AddUser(*ch, ticket.User{ID: target.ID, Tag: target.String()}, cfg)
	if handled := h.respondLifecycleAbort(s, i, err); handled {
		return nil
	}
	if err != nil {
		return err
	}

	h.respondEmbed(s, i, *embed)
	return nil
}

func (h *Handler) handleInfo(s *discordgo.Session, i *discordgo.InteractionCreate, cfg config.Config) error {
	ch, ok := h.textChannel(s, i)
	if !ok {
		h.respond(s, i, lang.T("text_channel_only"), true)
		return nil
	}

	embed, err := h.ctrl.Info(*ch, cfg)
	if handled := h.respondLifecycleAbort(s, i, err); handled {
		return nil
	}
	if err != nil {
		return err
	}

	h.respondEmbed(s, i, *embed)
	return nil
}

// respondLifecycleAbort handles the user-visible abort outcomes shared by
// close/add/info. Returns true when the error was reported to the user.
func (h *Handler) respondLifecycleAbort(s *discordgo.Session, i *discordgo.InteractionCreate, err error) bool {
	switch {
	case errors.Is(err, ticket.ErrNotATicket):
		h.respond(s, i, lang.T("not_a_ticket"), true)
		return true
	case errors.Is(err, ticket.ErrAlreadyClosed):
		h.respond(s, i, lang.T("already_closed"), true)
		return true
	}
	return false
}

// textChannel resolves the invoking channel and rejects anything that is not
// a guild text channel. Checked before any repository lookup.
func (h *Handler) textChannel(s *discordgo.Session, i *discordgo.InteractionCreate) (*ticket.Channel, bool) {
	ch, err := s.State.Channel(i.ChannelID)
	if err != nil {
		ch, err = s.Channel(i.ChannelID)
		if err != nil {
			return nil, false
		}
	}
	if ch.Type != discordgo.ChannelTypeGuildText {
		return nil, false
	}
	return &ticket.Channel{ID: ch.ID, GuildID: ch.GuildID, Name: ch.Name}, true
}
