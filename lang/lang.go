package lang

import (
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Built-in English strings. A YAML file can override any key; unknown keys in
// the file are ignored so operators can carry extra notes in it.
var defaults = map[string]string{
	"server_only":       "This command can only be used in a server!",
	"text_channel_only": "This command can only be used in a ticket channel!",
	"not_a_ticket":      "This is not a ticket channel!",
	"already_closed":    "This ticket is already closed.",
	"already_open":      "You already have an open ticket: <#{channel}>",
	"ticket_created":    "Ticket created: <#{channel}>",
	"generic_error":     "An error occurred while executing this command. Please try again later.",

	"welcome_title": "Support Ticket Created",
	"welcome_body":  "Hello <@{user}>, welcome to your support ticket!\n\nPlease describe your issue and a staff member will assist you shortly.",

	"close_title": "Ticket Closed",
	"close_body":  "This ticket has been closed. The channel will be deleted in {delay} seconds.",

	"added_title":   "User Added to Ticket",
	"added_body":    "<@{user}> has been added to this ticket.",
	"added_message": "<@{user}> has been added to this ticket.",

	"info_title": "Ticket Information",

	"delete_denied": "I do not have permission to delete this channel. Please remove it manually.",

	"transcript_unavailable": "Transcript unavailable.",
}

var (
	mu       sync.RWMutex
	messages = defaults
)

// Load overlays the built-in strings with the YAML file at path. A missing
// file is not an error; a malformed one leaves the defaults active.
func Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var overrides map[string]string
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return err
	}

	merged := make(map[string]string, len(defaults))
	for k, v := range defaults {
		merged[k] = v
	}
	for k, v := range overrides {
		if _, known := defaults[k]; known && v != "" {
			merged[k] = v
		}
	}

	mu.Lock()
	messages = merged
	mu.Unlock()
	return nil
}

// T returns the string for key with {placeholder} pairs substituted, e.g.
// T("already_open", "channel", ch.ID).
func T(key string, pairs ...string) string {
	mu.RLock()
	s, ok := messages[key]
	mu.RUnlock()

	if !ok {
		return "{" + key + "}"
	}

	for j := 0; j+1 < len(pairs); j += 2 {
		s = strings.ReplaceAll(s, "{"+pairs[j]+"}", pairs[j+1])
	}
	return s
}

// Reset restores the built-in strings. Used by tests.
func Reset() {
	mu.Lock()
	messages = defaults
	mu.Unlock()
}
