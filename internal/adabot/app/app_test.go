package app

import (
	"testing"

	"github.com/tyhsieh/adabot/internal/adabot/line"
	"github.com/tyhsieh/adabot/internal/adabot/llm"
)

func TestNew_RequiresCredentials(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"missing line token", Config{Model: llm.Config{APIKey: "sk-test"}}},
		{"missing model key", Config{Line: line.ClientConfig{AccessToken: "tok"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(&tt.cfg); err == nil {
				t.Error("expected an error, got nil")
			}
		})
	}
}

func TestNew_DefaultsAddr(t *testing.T) {
	cfg := &Config{
		Line:  line.ClientConfig{AccessToken: "tok"},
		Model: llm.Config{APIKey: "sk-test"},
	}
	a, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if cfg.HTTPAddr != ":3000" {
		t.Errorf("expected default addr :3000, got %q", cfg.HTTPAddr)
	}
	if a.profiles.Get().Mention == "" {
		t.Error("expected a default profile with a mention marker")
	}
}
