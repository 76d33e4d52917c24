package handlers

import (
	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"aetherticket/config"
	"aetherticket/lang"
	"aetherticket/ticket"
)

// command pairs a declarative schema with its execute entry point. The
// registry is a closed set populated at startup; no runtime discovery.
type command struct {
	definition *discordgo.ApplicationCommand
	execute    func(s *discordgo.Session, i *discordgo.InteractionCreate, cfg config.Config) error
}

// Handler dispatches slash commands to the ticket lifecycle controller.
type Handler struct {
	ctrl       *ticket.Controller
	configPath string
	log        *zap.Logger
	registry   map[string]command
}

func New(ctrl *ticket.Controller, configPath string, log *zap.Logger) *Handler {
	h := &Handler{
		ctrl:       ctrl,
		configPath: configPath,
		log:        log,
	}
	h.registry = map[string]command{
		"ticket": {definition: ticketCommand(), execute: h.executeTicket},
	}
	return h
}

// Commands returns the schemas to register with the platform.
func (h *Handler) Commands() []*discordgo.ApplicationCommand {
	cmds := make([]*discordgo.ApplicationCommand, 0, len(h.registry))
	for _, cmd := range h.registry {
		cmds = append(cmds, cmd.definition)
	}
	return cmds
}

// Register installs the interaction dispatcher on the session. The branding
// config is reloaded before every execution so panel edits take effect
// without a restart; any error escaping execute becomes one generic
// user-visible failure reply.
func (h *Handler) Register(s *discordgo.Session) {
	s.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if i.Type != discordgo.InteractionApplicationCommand {
			return
		}

		name := i.ApplicationCommandData().Name
		cmd, ok := h.registry[name]
		if !ok {
			h.log.Warn("unknown command", zap.String("command", name))
			return
		}

		cfg, err := config.Load(h.configPath)
		if err != nil {
			h.log.Warn("branding config reload failed, using defaults", zap.Error(err))
		}

		if err := cmd.execute(s, i, cfg); err != nil {
			h.log.Error("command failed",
				zap.String("command", name),
				zap.String("subcommand", subcommandName(i)),
				zap.Error(err))
			h.respondError(s, i)
		}
	})
}

func subcommandName(i *discordgo.InteractionCreate) string {
	data := i.ApplicationCommandData()
	if len(data.Options) > 0 && data.Options[0].Type == discordgo.ApplicationCommandOptionSubCommand {
		return data.Options[0].Name
	}
	return ""
}

func (h *Handler) respond(s *discordgo.Session, i *discordgo.InteractionCreate, content string, ephemeral bool) {
	flags := discordgo.MessageFlags(0)
	if ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   flags,
		},
	})
	if err != nil {
		h.log.Warn("failed to respond to interaction", zap.Error(err))
	}
}

func (h *Handler) respondEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed ticket.Embed) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{toMessageEmbed(embed)},
		},
	})
	if err != nil {
		h.log.Warn("failed to respond to interaction", zap.Error(err))
	}
}

// respondError delivers the generic failure message, falling back to a
// followup when the interaction was already acknowledged.
func (h *Handler) respondError(s *discordgo.Session, i *discordgo.InteractionCreate) {
	content := lang.T("generic_error")
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		_, _ = s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		})
	}
}

func subOptMap(opts []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(opts))
	for _, opt := range opts {
		m[opt.Name] = opt
	}
	return m
}
