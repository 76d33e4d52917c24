package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config holds the operator-editable branding settings. It is re-read from
// disk before every command execution so panel edits apply without a restart.
type Config struct {
	BotName        string `json:"botName"`
	Avatar         string `json:"avatar"`
	EmbedColor     string `json:"embedColor"`
	FooterText     string `json:"footerText"`
	TicketCategory string `json:"ticketCategory"`
	SupportRole    string `json:"supportRole"`
}

const configFileMode = 0o600

// Defaults returns the built-in branding config.
func Defaults() Config {
	return Config{
		BotName:        "AetherTicket",
		Avatar:         "./avatar.png",
		EmbedColor:     DefaultEmbedColor,
		FooterText:     "Powered by AetherPanel",
		TicketCategory: "Support Tickets",
		SupportRole:    "Support",
	}
}

// Load reads and sanitizes the branding config at path. The returned Config is
// always usable: when the file is missing it is created from defaults, and any
// read or parse failure yields the defaults alongside the error.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			defaults := Defaults()
			if werr := Save(defaults, path); werr != nil {
				return defaults, fmt.Errorf("write default config: %w", werr)
			}
			return defaults, nil
		}
		return Defaults(), fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Defaults(), fmt.Errorf("parse config: %w", err)
	}
	return Normalize(mergeDefaults(cfg)), nil
}

// Save sanitizes cfg and writes it to path atomically with owner-only
// permissions.
func Save(cfg Config, path string) error {
	cfg = Normalize(mergeDefaults(cfg))

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	tmp := fmt.Sprintf("%s.%d.tmp", path, os.Getpid())
	if err := os.WriteFile(tmp, data, configFileMode); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	_ = os.Chmod(path, configFileMode)
	return nil
}

func mergeDefaults(cfg Config) Config {
	d := Defaults()
	if strings.TrimSpace(cfg.BotName) == "" {
		cfg.BotName = d.BotName
	}
	if strings.TrimSpace(cfg.Avatar) == "" {
		cfg.Avatar = d.Avatar
	}
	if strings.TrimSpace(cfg.EmbedColor) == "" {
		cfg.EmbedColor = d.EmbedColor
	}
	if strings.TrimSpace(cfg.FooterText) == "" {
		cfg.FooterText = d.FooterText
	}
	if strings.TrimSpace(cfg.TicketCategory) == "" {
		cfg.TicketCategory = d.TicketCategory
	}
	if strings.TrimSpace(cfg.SupportRole) == "" {
		cfg.SupportRole = d.SupportRole
	}
	return cfg
}

// ColorValue converts the configured embed color to the integer form embeds
// expect. Invalid values resolve to the default accent color.
func (c Config) ColorValue() int {
	hex := strings.TrimPrefix(SanitizeHexColor(c.EmbedColor), "#")
	v, err := strconv.ParseInt(hex, 16, 32)
	if err != nil {
		return defaultEmbedColorValue
	}
	return int(v)
}

// AvatarPath resolves the configured avatar path relative to the working
// directory.
func (c Config) AvatarPath() string {
	if c.Avatar == "" {
		return ""
	}
	abs, err := filepath.Abs(c.Avatar)
	if err != nil {
		return c.Avatar
	}
	return abs
}
