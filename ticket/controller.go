package ticket

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"aetherticket/config"
	"aetherticket/events"
	"aetherticket/lang"
	"aetherticket/storage"
)

const (
	transcriptLimit = 100
	deleteDelay     = 5 * time.Second
	deleteReason    = "Ticket closed"
)

// Channels created by the bot are named ticket-<userID>; the captured digits
// are what reconciliation recovers a lost owner from.
var ticketChannelPattern = regexp.MustCompile(`^ticket-(\d+)$`)

// Controller implements the ticket lifecycle: create, close, add-participant
// and info, reconciling repository state against the live channel-naming
// convention and driving side effects through the Gateway.
//
// There is no mutual exclusion between concurrent operations on the same
// channel; the repository's unique constraint arbitrates create races and
// everything else is deliberately best-effort.
type Controller struct {
	gw    Gateway
	store storage.TicketStore
	pub   events.Publisher
	log   *zap.Logger

	delay    time.Duration
	schedule func(time.Duration, func())
}

func NewController(gw Gateway, store storage.TicketStore, pub events.Publisher, log *zap.Logger) *Controller {
	return &Controller{
		gw:       gw,
		store:    store,
		pub:      pub,
		log:      log,
		delay:    deleteDelay,
		schedule: func(d time.Duration, f func()) { time.AfterFunc(d, f) },
	}
}

// CreateResult reports the channel a successful create produced.
type CreateResult struct {
	ChannelID string
}

// Create opens a new ticket channel for the requesting user.
func (c *Controller) Create(guildID string, requester User, cfg config.Config) (*CreateResult, error) {
	categoryID, err := c.gw.CategoryByName(guildID, cfg.TicketCategory)
	if err != nil {
		return nil, &GatewayError{Op: "find category", Err: err}
	}
	if categoryID == "" {
		categoryID, err = c.gw.CreateCategory(guildID, cfg.TicketCategory)
		if err != nil {
			return nil, &GatewayError{Op: "create category", Err: err}
		}
		c.log.Info("created ticket category", zap.String("name", cfg.TicketCategory))
	}

	name := "ticket-" + requester.ID
	existing, err := c.gw.TextChannelByName(guildID, categoryID, name)
	if err != nil {
		return nil, &GatewayError{Op: "find channel", Err: err}
	}
	if existing != nil {
		if live := c.isLiveDuplicate(existing); live {
			return nil, &AlreadyOpenError{ChannelID: existing.ID}
		}
	}

	channel, err := c.gw.CreateTicketChannel(guildID, categoryID, name, requester.ID)
	if err != nil {
		return nil, &GatewayError{Op: "create channel", Err: err}
	}

	// The support role is optional: a misconfigured role name must not fail
	// ticket creation.
	role, err := c.gw.RoleByName(guildID, cfg.SupportRole)
	if err != nil {
		c.log.Warn("support role lookup failed", zap.String("role", cfg.SupportRole), zap.Error(err))
	} else if role != nil {
		if err := c.gw.GrantTicketAccess(channel.ID, role.ID, true); err != nil {
			c.log.Warn("failed to grant support role access",
				zap.String("channel_id", channel.ID),
				zap.String("role", cfg.SupportRole),
				zap.Error(err))
		}
	}

	if err := c.gw.SendEmbed(channel.ID, welcomeEmbed(cfg, requester.ID)); err != nil {
		return nil, &GatewayError{Op: "send welcome", Err: err}
	}
	if err := c.gw.SendMessage(channel.ID, "<@"+requester.ID+">"); err != nil {
		return nil, &GatewayError{Op: "send mention", Err: err}
	}

	// Best-effort persistence: an orphaned channel is preferable to deleting
	// a channel the user can already see. Reconciliation heals the record on
	// the first close/add/info call.
	if err := c.store.Create(channel.ID, requester.ID); err != nil {
		c.log.Error("failed to persist ticket record",
			zap.String("channel_id", channel.ID),
			zap.String("user_id", requester.ID),
			zap.Error(err))
	}

	c.pub.Publish(events.Event{Type: events.TicketCreated, ChannelID: channel.ID, UserID: requester.ID})
	c.log.Info("ticket created", zap.String("channel_id", channel.ID), zap.String("user_id", requester.ID))
	return &CreateResult{ChannelID: channel.ID}, nil
}

// isLiveDuplicate decides whether an existing ticket-named channel should
// block creation. Name alone would block a user forever once a closed channel
// lingers, so the repository's open-state is consulted; if that lookup fails
// the name-based evidence wins (degraded, logged) so a broken store cannot
// let duplicates through.
func (c *Controller) isLiveDuplicate(existing *Channel) bool {
	rec, err := c.store.Get(existing.ID)
	if err != nil {
		c.log.Warn("duplicate check degraded to name-based evidence",
			zap.String("channel_id", existing.ID),
			zap.Error(err))
		return true
	}
	return rec != nil && rec.Open()
}

// CloseChannel closes the ticket in channel: transcript, closing notice,
// repository update, then deferred channel deletion. The returned embed is
// the closing notice for the interaction reply.
func (c *Controller) CloseChannel(channel Channel, cfg config.Config) (*Embed, error) {
	rec, err := c.resolveTicket(channel)
	if err != nil {
		return nil, err
	}
	if !CanTransition(StateOf(rec), StateClosed) {
		return nil, ErrAlreadyClosed
	}

	transcript := c.buildTranscript(channel.ID)

	embed := closeEmbed(cfg, c.delay)
	if err := c.gw.SendEmbed(channel.ID, embed); err != nil {
		return nil, &GatewayError{Op: "send closing notice", Err: err}
	}

	if err := c.store.Close(channel.ID, &transcript); err != nil {
		c.log.Error("failed to persist ticket close", zap.String("channel_id", channel.ID), zap.Error(err))
	}

	c.pub.Publish(events.Event{Type: events.TicketClosed, ChannelID: channel.ID, UserID: rec.UserID})
	c.log.Info("ticket closed", zap.String("channel_id", channel.ID))

	// Fire-and-forget: a restart inside the delay loses the deletion, which
	// is an accepted gap. Nothing retries any outcome of this step.
	c.schedule(c.delay, func() { c.deleteTicketChannel(channel.ID) })

	return &embed, nil
}

func (c *Controller) deleteTicketChannel(channelID string) {
	ok, err := c.gw.SelfCanManageChannel(channelID)
	if err != nil || !ok {
		c.log.Warn("lacking manage-channel permission, leaving channel in place",
			zap.String("channel_id", channelID),
			zap.Error(err))
		c.postDeleteFallback(channelID)
		return
	}
	if err := c.gw.DeleteChannel(channelID, deleteReason); err != nil {
		c.log.Error("failed to delete ticket channel", zap.String("channel_id", channelID), zap.Error(err))
		c.postDeleteFallback(channelID)
	}
}

func (c *Controller) postDeleteFallback(channelID string) {
	if err := c.gw.SendMessage(channelID, lang.T("delete_denied")); err != nil {
		c.log.Warn("failed to post deletion fallback notice", zap.String("channel_id", channelID), zap.Error(err))
	}
}

// AddUser grants target access to the ticket channel.
func (c *Controller) AddUser(channel Channel, target User, cfg config.Config) (*Embed, error) {
	rec, err := c.resolveTicket(channel)
	if err != nil {
		return nil, err
	}
	if !CanTransition(StateOf(rec), StateOpen) {
		return nil, ErrAlreadyClosed
	}

	if err := c.gw.GrantTicketAccess(channel.ID, target.ID, false); err != nil {
		return nil, &GatewayError{Op: "grant access", Err: err}
	}

	embed := addedEmbed(cfg, target.ID)
	if err := c.gw.SendMessage(channel.ID, lang.T("added_message", "user", target.ID)); err != nil {
		return nil, &GatewayError{Op: "send added notice", Err: err}
	}

	c.pub.Publish(events.Event{Type: events.TicketUserAdded, ChannelID: channel.ID, UserID: target.ID})
	c.log.Info("user added to ticket", zap.String("channel_id", channel.ID), zap.String("user_id", target.ID))
	return &embed, nil
}

// Info renders a read-only summary of the ticket in channel.
func (c *Controller) Info(channel Channel, cfg config.Config) (*Embed, error) {
	rec, err := c.resolveTicket(channel)
	if err != nil {
		return nil, err
	}

	owner, err := c.gw.User(rec.UserID)
	if err != nil {
		return nil, &GatewayError{Op: "fetch user", Err: err}
	}

	embed := infoEmbed(cfg, rec, owner)
	return &embed, nil
}

// resolveTicket looks up the repository record for channel, synthesizing one
// when the channel follows the ticket naming convention but the record is
// missing (a create whose best-effort persistence failed). Returns
// ErrNotATicket when neither path yields a record.
func (c *Controller) resolveTicket(channel Channel) (*storage.TicketRecord, error) {
	rec, err := c.store.Get(channel.ID)
	if err != nil {
		c.log.Warn("ticket lookup failed", zap.String("channel_id", channel.ID), zap.Error(err))
		return nil, ErrNotATicket
	}
	if rec != nil {
		return rec, nil
	}

	m := ticketChannelPattern.FindStringSubmatch(channel.Name)
	if m == nil {
		return nil, ErrNotATicket
	}

	if err := c.store.Create(channel.ID, m[1]); err != nil {
		// A concurrent operation may have reconciled first; the re-fetch
		// below decides.
		var dup *storage.DuplicateChannelError
		if !errors.As(err, &dup) {
			c.log.Warn("ticket reconciliation failed", zap.String("channel_id", channel.ID), zap.Error(err))
		}
	} else {
		c.log.Info("reconciled missing ticket record",
			zap.String("channel_id", channel.ID),
			zap.String("user_id", m[1]))
	}

	rec, err = c.store.Get(channel.ID)
	if err != nil || rec == nil {
		return nil, ErrNotATicket
	}
	return rec, nil
}

// buildTranscript renders up to the most recent 100 messages oldest-first.
// Transcript unavailability never blocks closing: missing read-history
// permission or any fetch failure substitutes a placeholder.
func (c *Controller) buildTranscript(channelID string) string {
	ok, err := c.gw.SelfCanReadHistory(channelID)
	if err != nil || !ok {
		if err != nil {
			c.log.Warn("read-history permission check failed", zap.String("channel_id", channelID), zap.Error(err))
		}
		return lang.T("transcript_unavailable")
	}

	msgs, err := c.gw.RecentMessages(channelID, transcriptLimit)
	if err != nil {
		c.log.Warn("transcript fetch failed", zap.String("channel_id", channelID), zap.Error(err))
		return lang.T("transcript_unavailable")
	}

	// The gateway returns newest first; transcripts read oldest first.
	var sb strings.Builder
	for i := len(msgs) - 1; i >= 0; i-- {
		m := msgs[i]
		fmt.Fprintf(&sb, "[%s] %s: %s\n", m.Timestamp.UTC().Format(time.RFC3339), m.AuthorTag, m.Content)
	}
	return strings.TrimSuffix(sb.String(), "\n")
}
