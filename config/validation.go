package config

import (
	"regexp"
	"strings"
)

// DefaultEmbedColor is the accent color used when the configured value is not
// a valid 6-digit hex color.
const DefaultEmbedColor = "#5865F2"

const defaultEmbedColorValue = 0x5865F2

// Field length caps applied by Normalize.
const (
	maxBotNameLen  = 32
	maxFooterLen   = 128
	maxNameLikeLen = 64
)

var (
	controlChars = regexp.MustCompile(`[\x00-\x1F\x7F]`)
	repeatSpace  = regexp.MustCompile(`\s{2,}`)
	nameLikeOnly = regexp.MustCompile(`[^A-Za-z0-9 _-]`)
	hexColor     = regexp.MustCompile(`^#?([0-9a-fA-F]{6})$`)
)

// SanitizeText strips control characters, collapses runs of whitespace and
// truncates to maxLen. When allowSymbols is false everything outside
// [A-Za-z0-9 _-] is removed as well, which is required for values that become
// Discord channel category and role names.
func SanitizeText(value string, maxLen int, allowSymbols bool) string {
	s := controlChars.ReplaceAllString(value, " ")
	s = strings.TrimSpace(s)
	if !allowSymbols {
		s = nameLikeOnly.ReplaceAllString(s, "")
	}
	s = repeatSpace.ReplaceAllString(s, " ")
	if len(s) > maxLen {
		s = s[:maxLen]
	}
	return s
}

// SanitizeHexColor normalizes a 6-digit hex RGB value to uppercase with a
// leading '#'. Anything else falls back to DefaultEmbedColor.
func SanitizeHexColor(value string) string {
	m := hexColor.FindStringSubmatch(strings.TrimSpace(value))
	if m == nil {
		return DefaultEmbedColor
	}
	return "#" + strings.ToUpper(m[1])
}

// Normalize applies the field-level sanitization rules to every branding
// setting. It is called on both load and save so a hand-edited config file and
// panel input go through the same funnel.
func Normalize(cfg Config) Config {
	return Config{
		BotName:        SanitizeText(cfg.BotName, maxBotNameLen, true),
		Avatar:         cfg.Avatar,
		EmbedColor:     SanitizeHexColor(cfg.EmbedColor),
		FooterText:     SanitizeText(cfg.FooterText, maxFooterLen, true),
		TicketCategory: SanitizeText(cfg.TicketCategory, maxNameLikeLen, false),
		SupportRole:    SanitizeText(cfg.SupportRole, maxNameLikeLen, false),
	}
}

// RedactSecret shortens a secret for log output.
func RedactSecret(value string) string {
	if value == "" {
		return "<empty>"
	}
	if len(value) <= 8 {
		return "****"
	}
	return value[:4] + "…" + value[len(value)-4:]
}
