// Package trigger classifies raw message text: does it address the bot, is
// it an end command, and what remains once the mention marker is removed.
//
// Everything here is pure and stateless; a Detector only carries the marker
// and the end-command set it was configured with. Matching is
// case-insensitive over the mention marker, and end commands match exact
// phrases only (after trimming and case folding), never substrings —
// "please stop now" is an ordinary sentence, not an exit.
package trigger

import "strings"

// Detector classifies message text against a mention marker and a closed set
// of end-command phrases.
type Detector struct {
	marker      string   // lowercase mention marker, e.g. "@gpt"
	endCommands []string // lowercase exit phrases
}

// New creates a Detector. The marker and end commands are folded to lower
// case once here so per-message classification allocates as little as
// possible.
func New(marker string, endCommands []string) *Detector {
	d := &Detector{marker: strings.ToLower(marker)}
	for _, c := range endCommands {
		if t := strings.ToLower(strings.TrimSpace(c)); t != "" {
			d.endCommands = append(d.endCommands, t)
		}
	}
	return d
}

// ContainsMention reports whether the mention marker appears anywhere in
// text, case-insensitively. Empty text never matches.
func (d *Detector) ContainsMention(text string) bool {
	if text == "" || d.marker == "" {
		return false
	}
	return strings.Contains(strings.ToLower(text), d.marker)
}

// StripMention removes every occurrence of the mention marker from text
// (case-insensitively) and trims surrounding whitespace. Returns "" when
// nothing remains. Applying StripMention to its own output is a no-op.
func (d *Detector) StripMention(text string) string {
	if d.marker == "" {
		return strings.TrimSpace(text)
	}
	// Removing an occurrence can splice the surrounding fragments into a
	// fresh marker ("@g@gptpt" collapses to "@gpt"), so rescan from the
	// start after every removal instead of sweeping left to right once.
	for {
		i := strings.Index(strings.ToLower(text), d.marker)
		if i < 0 {
			return strings.TrimSpace(text)
		}
		text = text[:i] + text[i+len(d.marker):]
	}
}

// IsEndCommand reports whether text, after trimming and case folding, equals
// one of the configured exit phrases exactly.
func (d *Detector) IsEndCommand(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" {
		return false
	}
	for _, c := range d.endCommands {
		if t == c {
			return true
		}
	}
	return false
}
