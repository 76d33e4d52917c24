package ticket

import (
	"fmt"
	"strconv"
	"time"

	"aetherticket/config"
	"aetherticket/lang"
	"aetherticket/storage"
)

func newEmbed(cfg config.Config, title, description string) Embed {
	return Embed{
		Title:       title,
		Description: description,
		Footer:      cfg.FooterText,
		Color:       cfg.ColorValue(),
		Timestamp:   time.Now(),
	}
}

func welcomeEmbed(cfg config.Config, userID string) Embed {
	return newEmbed(cfg, lang.T("welcome_title"), lang.T("welcome_body", "user", userID))
}

func closeEmbed(cfg config.Config, delay time.Duration) Embed {
	secs := strconv.Itoa(int(delay / time.Second))
	return newEmbed(cfg, lang.T("close_title"), lang.T("close_body", "delay", secs))
}

func addedEmbed(cfg config.Config, userID string) Embed {
	return newEmbed(cfg, lang.T("added_title"), lang.T("added_body", "user", userID))
}

func infoEmbed(cfg config.Config, rec *storage.TicketRecord, owner *User) Embed {
	status := "Open"
	if !rec.Open() {
		status = "Closed"
	}

	e := newEmbed(cfg, lang.T("info_title"), "")
	e.Fields = []EmbedField{
		{Name: "Ticket ID", Value: strconv.FormatInt(rec.ID, 10), Inline: true},
		{Name: "Channel ID", Value: rec.ChannelID, Inline: true},
		{Name: "Created By", Value: fmt.Sprintf("%s (%s)", owner.Tag, owner.ID), Inline: false},
		{Name: "Created At", Value: rec.CreatedAt.Local().Format("2006-01-02 15:04:05"), Inline: true},
		{Name: "Status", Value: status, Inline: true},
	}
	if rec.ClosedAt != nil {
		e.Fields = append(e.Fields, EmbedField{
			Name:   "Closed At",
			Value:  rec.ClosedAt.Local().Format("2006-01-02 15:04:05"),
			Inline: true,
		})
	}
	return e
}
