package config

import (
	"strings"
	"testing"
)

func TestSanitizeHexColor(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"with hash", "#ff00aa", "#FF00AA"},
		{"without hash", "ff00aa", "#FF00AA"},
		{"already uppercase", "#5865F2", "#5865F2"},
		{"surrounding whitespace", "  #ff00aa  ", "#FF00AA"},
		{"too short", "#fff", DefaultEmbedColor},
		{"too long", "#ff00aa00", DefaultEmbedColor},
		{"non-hex characters", "#zzzzzz", DefaultEmbedColor},
		{"empty", "", DefaultEmbedColor},
		{"garbage", "not a color", DefaultEmbedColor},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizeHexColor(tc.input); got != tc.want {
				t.Errorf("SanitizeHexColor(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestSanitizeText(t *testing.T) {
	cases := []struct {
		name         string
		input        string
		maxLen       int
		allowSymbols bool
		want         string
	}{
		{"plain", "Support Tickets", 64, false, "Support Tickets"},
		{"control chars become spaces", "a\x00b\x1fc", 64, true, "a b c"},
		{"whitespace collapsed", "a   b\t\tc", 64, true, "a b c"},
		{"trimmed", "  hello  ", 64, true, "hello"},
		{"truncated", strings.Repeat("x", 40), 32, true, strings.Repeat("x", 32)},
		{"symbols kept when allowed", "Powered by AetherPanel!", 128, true, "Powered by AetherPanel!"},
		{"symbols stripped for names", "Sup@port! #Tickets", 64, false, "Support Tickets"},
		{"underscore and dash survive", "tier_1-support", 64, false, "tier_1-support"},
		{"empty", "", 64, false, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := SanitizeText(tc.input, tc.maxLen, tc.allowSymbols)
			if got != tc.want {
				t.Errorf("SanitizeText(%q, %d, %v) = %q, want %q",
					tc.input, tc.maxLen, tc.allowSymbols, got, tc.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	in := Config{
		BotName:        "  My\x00Bot  ",
		Avatar:         "./avatar.png",
		EmbedColor:     "ff00aa",
		FooterText:     "footer   text",
		TicketCategory: "Help & Support",
		SupportRole:    "Staff!",
	}
	got := Normalize(in)

	if got.BotName != "My Bot" {
		t.Errorf("BotName = %q", got.BotName)
	}
	if got.Avatar != "./avatar.png" {
		t.Errorf("Avatar = %q, want untouched path", got.Avatar)
	}
	if got.EmbedColor != "#FF00AA" {
		t.Errorf("EmbedColor = %q", got.EmbedColor)
	}
	if got.FooterText != "footer text" {
		t.Errorf("FooterText = %q", got.FooterText)
	}
	if got.TicketCategory != "Help Support" {
		t.Errorf("TicketCategory = %q", got.TicketCategory)
	}
	if got.SupportRole != "Staff" {
		t.Errorf("SupportRole = %q", got.SupportRole)
	}
}

func TestColorValue(t *testing.T) {
	cases := []struct {
		color string
		want  int
	}{
		{"#FF00AA", 0xFF00AA},
		{"5865f2", 0x5865F2},
		{"bogus", defaultEmbedColorValue},
		{"", defaultEmbedColorValue},
	}
	for _, tc := range cases {
		cfg := Config{EmbedColor: tc.color}
		if got := cfg.ColorValue(); got != tc.want {
			t.Errorf("ColorValue(%q) = %#x, want %#x", tc.color, got, tc.want)
		}
	}
}

func TestRedactSecret(t *testing.T) {
	if got := RedactSecret(""); got != "<empty>" {
		t.Errorf("empty secret = %q", got)
	}
	if got := RedactSecret("short"); got != "****" {
		t.Errorf("short secret = %q", got)
	}
	got := RedactSecret("abcdefghijklmnop")
	if !strings.HasPrefix(got, "abcd") || !strings.HasSuffix(got, "mnop") {
		t.Errorf("long secret = %q", got)
	}
	if strings.Contains(got, "efghijkl") {
		t.Errorf("long secret leaks middle: %q", got)
	}
}
