package bot

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"os"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"aetherticket/config"
)

// Bot wraps the discordgo session and command registration.
type Bot struct {
	Session *discordgo.Session

	guildID string
	log     *zap.Logger
	ready   chan struct{}
}

func New(settings *config.Settings, log *zap.Logger) (*Bot, error) {
	s, err := discordgo.New("Bot " + settings.Token)
	if err != nil {
		return nil, err
	}
	s.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages
	return &Bot{
		Session: s,
		guildID: settings.GuildID,
		log:     log,
		ready:   make(chan struct{}),
	}, nil
}

func (b *Bot) Start() error {
	b.Session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		b.log.Info("logged in", zap.String("user", r.User.String()))
		select {
		case <-b.ready:
		default:
			close(b.ready)
		}
	})
	return b.Session.Open()
}

func (b *Bot) Stop() {
	_ = b.Session.Close()
}

// RegisterCommands bulk-overwrites the application commands once the session
// is ready. With a guild ID the registration is guild-scoped (instant);
// without one it is global and can take up to an hour to propagate.
func (b *Bot) RegisterCommands(cmds []*discordgo.ApplicationCommand) []*discordgo.ApplicationCommand {
	<-b.ready

	appID := b.Session.State.User.ID
	registered, err := b.Session.ApplicationCommandBulkOverwrite(appID, b.guildID, cmds)
	if err != nil {
		b.log.Error("failed to register commands", zap.Error(err))
		return nil
	}

	b.log.Info("registered slash commands",
		zap.Int("count", len(registered)),
		zap.String("guild_id", b.guildID))
	return registered
}

// CleanupCommands removes every registered command.
func (b *Bot) CleanupCommands() {
	<-b.ready
	appID := b.Session.State.User.ID
	if _, err := b.Session.ApplicationCommandBulkOverwrite(appID, b.guildID, nil); err != nil {
		b.log.Error("failed to clean up commands", zap.Error(err))
		return
	}
	b.log.Info("cleaned up slash commands")
}

// SyncIdentity applies the branding config's bot name and avatar to the
// account. Failures are logged, never fatal: branding is cosmetic.
func (b *Bot) SyncIdentity(cfg config.Config) {
	<-b.ready

	self := b.Session.State.User
	username := cfg.BotName
	if username == self.Username {
		username = ""
	}

	avatar := ""
	if path := cfg.AvatarPath(); path != "" {
		uri, err := avatarDataURI(path)
		if err != nil {
			if !os.IsNotExist(err) {
				b.log.Warn("failed to read avatar file", zap.String("path", path), zap.Error(err))
			}
		} else {
			avatar = uri
		}
	}

	if username == "" && avatar == "" {
		return
	}
	if _, err := b.Session.UserUpdate(username, avatar); err != nil {
		b.log.Warn("failed to update bot identity", zap.Error(err))
		return
	}
	b.log.Info("bot identity updated", zap.String("name", cfg.BotName))
}

// avatarDataURI encodes an image file as the data URI the user-update
// endpoint expects.
func avatarDataURI(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	mime := http.DetectContentType(data)
	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(data)), nil
}
