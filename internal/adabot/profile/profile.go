// Package profile defines the bot profile document: the persona prompt, the
// mention marker, the end-command set, and every canned reply the bot sends
// without consulting the model.
//
// A profile is loaded from a YAML file when one is configured and falls back
// to built-in defaults otherwise. The file can be edited while the bot runs;
// see Manager for hot reload.
package profile

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Replies holds the fixed texts the bot sends for each non-model outcome.
type Replies struct {
	// Goodbye acknowledges an end command while a session is active.
	Goodbye string `yaml:"goodbye"`
	// AlreadyIdle answers an end command when no session is active.
	AlreadyIdle string `yaml:"already_idle"`
	// AskForInput answers a mention that carried no content.
	AskForInput string `yaml:"ask_for_input"`
	// Fallback is the apology sent when the model call fails. The same text
	// covers transport and API failures so nothing internal leaks to users.
	Fallback string `yaml:"fallback"`
	// Empty is relayed when the model succeeds but returns no text.
	Empty string `yaml:"empty"`
}

// Profile is the full bot profile document.
type Profile struct {
	// Persona is the system instruction placed first in every model prompt.
	Persona string `yaml:"persona"`
	// Mention is the marker that addresses the bot, matched
	// case-insensitively anywhere in a message.
	Mention string `yaml:"mention"`
	// EndCommands is the closed set of exit phrases.
	EndCommands []string `yaml:"end_commands"`
	// Replies are the canned reply texts.
	Replies Replies `yaml:"replies"`
}

// Default returns the built-in profile: the original Ada persona with a
// zh-TW voice and the "@gpt" marker.
func Default() *Profile {
	return &Profile{
		Persona:     "你的名字是Ada。你熱心回答問題，但嘴有點賤、愛吐槽別人。請保持毒舌又不失禮貌的語氣。",
		Mention:     "@gpt",
		EndCommands: []string{"end", "stop", "bye", "結束", "掰掰"},
		Replies: Replies{
			Goodbye:     "好啦，不吵你了。有事再喊我。",
			AlreadyIdle: "我本來就沒在聽，你跟空氣說話呢？",
			AskForInput: "喊我就要說事情啊，你想問什麼？",
			Fallback:    "伺服器剛剛打了個盹，等下再試。",
			Empty:       "你喊我幹嘛？沒事別打擾我。",
		},
	}
}

// Parse decodes a profile YAML document, fills unset fields from Default,
// and validates the result. It is the canonical entry point for loading
// profiles.
func Parse(data []byte) (*Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("profile parse: %w", err)
	}
	p.applyDefaults()
	if err := Validate(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// applyDefaults fills every unset field from the built-in profile.
func (p *Profile) applyDefaults() {
	def := Default()
	if strings.TrimSpace(p.Persona) == "" {
		p.Persona = def.Persona
	}
	if strings.TrimSpace(p.Mention) == "" {
		p.Mention = def.Mention
	}
	if len(p.EndCommands) == 0 {
		p.EndCommands = def.EndCommands
	}
	if strings.TrimSpace(p.Replies.Goodbye) == "" {
		p.Replies.Goodbye = def.Replies.Goodbye
	}
	if strings.TrimSpace(p.Replies.AlreadyIdle) == "" {
		p.Replies.AlreadyIdle = def.Replies.AlreadyIdle
	}
	if strings.TrimSpace(p.Replies.AskForInput) == "" {
		p.Replies.AskForInput = def.Replies.AskForInput
	}
	if strings.TrimSpace(p.Replies.Fallback) == "" {
		p.Replies.Fallback = def.Replies.Fallback
	}
	if strings.TrimSpace(p.Replies.Empty) == "" {
		p.Replies.Empty = def.Replies.Empty
	}
}

// Validate checks a Profile for structural correctness.
// It returns the first validation error encountered, or nil when valid.
func Validate(p *Profile) error {
	if p == nil {
		return fmt.Errorf("profile must not be nil")
	}
	if strings.TrimSpace(p.Mention) == "" {
		return fmt.Errorf("mention must not be empty")
	}
	if strings.ContainsAny(p.Mention, " \t\n") {
		return fmt.Errorf("mention must not contain whitespace, got %q", p.Mention)
	}
	if len(p.EndCommands) == 0 {
		return fmt.Errorf("end_commands must not be empty")
	}
	for i, c := range p.EndCommands {
		if strings.TrimSpace(c) == "" {
			return fmt.Errorf("end_commands[%d]: phrase must not be empty", i)
		}
	}
	return nil
}
