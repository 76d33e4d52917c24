package lang

import (
	"os"
	"path/filepath"
	"testing"
)

func TestTDefaults(t *testing.T) {
	Reset()

	if got := T("not_a_ticket"); got != "This is not a ticket channel!" {
		t.Errorf("T(not_a_ticket) = %q", got)
	}
	if got := T("no_such_key"); got != "{no_such_key}" {
		t.Errorf("unknown key = %q", got)
	}
}

func TestTSubstitution(t *testing.T) {
	Reset()

	got := T("already_open", "channel", "123456")
	want := "You already have an open ticket: <#123456>"
	if got != want {
		t.Errorf("T(already_open) = %q, want %q", got, want)
	}

	got = T("close_body", "delay", "5")
	if got != "This ticket has been closed. The channel will be deleted in 5 seconds." {
		t.Errorf("T(close_body) = %q", got)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Cleanup(Reset)

	path := filepath.Join(t.TempDir(), "lang.yml")
	data := "not_a_ticket: \"Kein Ticket-Kanal!\"\nunknown_key: ignored\nalready_closed: \"\"\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got := T("not_a_ticket"); got != "Kein Ticket-Kanal!" {
		t.Errorf("override not applied: %q", got)
	}
	// Unknown keys are dropped, empty overrides keep the default.
	if got := T("unknown_key"); got != "{unknown_key}" {
		t.Errorf("unknown key leaked into table: %q", got)
	}
	if got := T("already_closed"); got != "This ticket is already closed." {
		t.Errorf("empty override replaced default: %q", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Cleanup(Reset)

	if err := Load(filepath.Join(t.TempDir(), "absent.yml")); err != nil {
		t.Errorf("missing file should not error: %v", err)
	}
	if got := T("generic_error"); got == "" {
		t.Error("defaults lost after loading missing file")
	}
}

func TestLoadMalformedFile(t *testing.T) {
	t.Cleanup(Reset)

	path := filepath.Join(t.TempDir(), "lang.yml")
	if err := os.WriteFile(path, []byte(":\n  - not valid"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := Load(path); err == nil {
		t.Error("expected error for malformed YAML")
	}
	if got := T("not_a_ticket"); got != "This is not a ticket channel!" {
		t.Errorf("defaults lost after failed load: %q", got)
	}
}
