package handlers

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

func TestCommandsSchema(t *testing.T) {
	h := New(nil, "config.json", zap.NewNop())

	cmds := h.Commands()
	if len(cmds) != 1 {
		t.Fatalf("got %d commands, want 1", len(cmds))
	}

	ticketCmd := cmds[0]
	if ticketCmd.Name != "ticket" {
		t.Fatalf("command name = %q", ticketCmd.Name)
	}

	subs := map[string]*discordgo.ApplicationCommandOption{}
	for _, opt := range ticketCmd.Options {
		if opt.Type != discordgo.ApplicationCommandOptionSubCommand {
			t.Errorf("option %q is not a subcommand", opt.Name)
		}
		subs[opt.Name] = opt
	}
	for _, name := range []string{"create", "close", "add", "info"} {
		if _, ok := subs[name]; !ok {
			t.Errorf("missing subcommand %q", name)
		}
	}

	add := subs["add"]
	if add == nil || len(add.Options) != 1 {
		t.Fatalf("add subcommand options = %+v", add)
	}
	userOpt := add.Options[0]
	if userOpt.Name != "user" || userOpt.Type != discordgo.ApplicationCommandOptionUser || !userOpt.Required {
		t.Errorf("add user option = %+v", userOpt)
	}
}

func TestSubOptMap(t *testing.T) {
	opts := []*discordgo.ApplicationCommandInteractionDataOption{
		{Name: "user"},
		{Name: "reason"},
	}
	m := subOptMap(opts)
	if len(m) != 2 {
		t.Fatalf("map size = %d", len(m))
	}
	if m["user"] != opts[0] || m["reason"] != opts[1] {
		t.Errorf("map = %v", m)
	}
	if _, ok := m["absent"]; ok {
		t.Error("unexpected entry for absent option")
	}
}

func TestSubcommandName(t *testing.T) {
	i := &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			Type: discordgo.InteractionApplicationCommand,
			Data: discordgo.ApplicationCommandInteractionData{
				Name: "ticket",
				Options: []*discordgo.ApplicationCommandInteractionDataOption{
					{Name: "close", Type: discordgo.ApplicationCommandOptionSubCommand},
				},
			},
		},
	}
	if got := subcommandName(i); got != "close" {
		t.Errorf("subcommandName = %q", got)
	}

	bare := &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			Type: discordgo.InteractionApplicationCommand,
			Data: discordgo.ApplicationCommandInteractionData{Name: "ticket"},
		},
	}
	if got := subcommandName(bare); got != "" {
		t.Errorf("subcommandName without options = %q", got)
	}
}
