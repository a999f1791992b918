package profile

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParse_FillsDefaults(t *testing.T) {
	p, err := Parse([]byte(`mention: "@ada"`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if p.Mention != "@ada" {
		t.Errorf("expected mention @ada, got %q", p.Mention)
	}
	if p.Persona == "" {
		t.Error("expected default persona to be filled in")
	}
	if len(p.EndCommands) == 0 {
		t.Error("expected default end commands to be filled in")
	}
	if p.Replies.Fallback == "" {
		t.Error("expected default fallback reply to be filled in")
	}
}

func TestParse_FullDocument(t *testing.T) {
	doc := []byte(`
persona: "You are a terse assistant."
mention: "@bot"
end_commands: [quit, leave]
replies:
  goodbye: "bye then"
  already_idle: "was not listening"
  ask_for_input: "yes?"
  fallback: "try later"
  empty: "nothing to say"
`)
	p, err := Parse(doc)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if p.Persona != "You are a terse assistant." {
		t.Errorf("unexpected persona %q", p.Persona)
	}
	if len(p.EndCommands) != 2 || p.EndCommands[0] != "quit" {
		t.Errorf("unexpected end commands %v", p.EndCommands)
	}
	if p.Replies.Goodbye != "bye then" || p.Replies.Empty != "nothing to say" {
		t.Errorf("unexpected replies %+v", p.Replies)
	}
}

func TestParse_RejectsMalformedYAML(t *testing.T) {
	if _, err := Parse([]byte("mention: [unclosed")); err == nil {
		t.Fatal("expected parse error, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Profile)
		wantErr bool
	}{
		{"default is valid", func(p *Profile) {}, false},
		{"whitespace in mention", func(p *Profile) { p.Mention = "@g pt" }, true},
		{"empty mention", func(p *Profile) { p.Mention = " " }, true},
		{"no end commands", func(p *Profile) { p.EndCommands = nil }, true},
		{"blank end command", func(p *Profile) { p.EndCommands = []string{"stop", "  "} }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Default()
			tt.mutate(p)
			err := Validate(p)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestManager_DefaultsWithoutPath(t *testing.T) {
	m, err := NewManager("", Overrides{})
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	if got := m.Get().Mention; got != "@gpt" {
		t.Errorf("expected default mention @gpt, got %q", got)
	}
}

func TestManager_OverridesWinOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	if err := os.WriteFile(path, []byte(`mention: "@file"`), 0o600); err != nil {
		t.Fatal(err)
	}

	m, err := NewManager(path, Overrides{Mention: "@env", EndCommands: []string{"done"}})
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	p := m.Get()
	if p.Mention != "@env" {
		t.Errorf("expected override mention @env, got %q", p.Mention)
	}
	if len(p.EndCommands) != 1 || p.EndCommands[0] != "done" {
		t.Errorf("expected override end commands, got %v", p.EndCommands)
	}
}

func TestManager_MissingFileIsAnError(t *testing.T) {
	if _, err := NewManager(filepath.Join(t.TempDir(), "nope.yaml"), Overrides{}); err == nil {
		t.Fatal("expected error for missing profile file, got nil")
	}
}

func TestManager_ReloadSwapsProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	if err := os.WriteFile(path, []byte(`mention: "@one"`), 0o600); err != nil {
		t.Fatal(err)
	}

	m, err := NewManager(path, Overrides{})
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	if got := m.Get().Mention; got != "@one" {
		t.Fatalf("expected @one, got %q", got)
	}

	// Rewrite the file and trigger the reload path directly; the fsnotify
	// plumbing is exercised separately and debounce timing is not something
	// a unit test should sleep on.
	if err := os.WriteFile(path, []byte(`mention: "@two"`), 0o600); err != nil {
		t.Fatal(err)
	}
	m.reload()
	if got := m.Get().Mention; got != "@two" {
		t.Errorf("expected @two after reload, got %q", got)
	}
}

func TestManager_BadReloadKeepsCurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	if err := os.WriteFile(path, []byte(`mention: "@good"`), 0o600); err != nil {
		t.Fatal(err)
	}

	m, err := NewManager(path, Overrides{})
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	if err := os.WriteFile(path, []byte("mention: [broken"), 0o600); err != nil {
		t.Fatal(err)
	}
	m.reload()
	if got := m.Get().Mention; got != "@good" {
		t.Errorf("expected previous profile to survive bad reload, got %q", got)
	}
}
