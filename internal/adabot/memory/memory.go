// Package memory implements the per-chat short-term conversation memory.
//
// Each chat owns one bounded buffer of prior turns. The buffer survives
// session endings (memory outlives a single awake window) but individual
// entries expire after a TTL. Expiry is lazy: entries are pruned on the next
// access to that chat's buffer, never by a background sweep, so idle chats
// cost nothing.
package memory

import (
	"sync"
	"time"

	"github.com/tyhsieh/adabot/internal/adabot/clock"
)

// Role identifies who produced a remembered turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Entry is one remembered message. Immutable once appended.
type Entry struct {
	Role      Role
	Content   string
	Timestamp time.Time
}

// Turn is what readers see: an entry stripped of its timestamp, ready to be
// placed into a model prompt.
type Turn struct {
	Role    Role
	Content string
}

// Config holds the memory window parameters.
type Config struct {
	// Turns is the number of remembered turn pairs per chat. Each pair is
	// one user entry plus one assistant entry, so the buffer holds at most
	// 2×Turns entries. Default: 3.
	Turns int

	// TTL is the maximum age of an entry before it is excluded from reads.
	// Default: 15 minutes.
	TTL time.Duration
}

// DefaultConfig returns a Config with the documented defaults.
func DefaultConfig() Config {
	return Config{
		Turns: 3,
		TTL:   15 * time.Minute,
	}
}

// Store keeps one bounded, TTL-pruned entry buffer per chat.
// It is safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	config  Config
	clk     clock.Clock
	buffers map[string][]Entry // key: chat ID
}

// NewStore creates a Store with the given configuration and clock.
func NewStore(cfg Config, clk clock.Clock) *Store {
	if cfg.Turns <= 0 {
		cfg.Turns = DefaultConfig().Turns
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultConfig().TTL
	}
	return &Store{
		config:  cfg,
		clk:     clk,
		buffers: make(map[string][]Entry),
	}
}

// Append records an entry for the chat at the current clock time. When the
// buffer grows past 2×Turns entries, the oldest entries are dropped first.
func (s *Store) Append(chatID string, role Role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	buf := append(s.buffers[chatID], Entry{
		Role:      role,
		Content:   content,
		Timestamp: s.clk.Now(),
	})

	if max := 2 * s.config.Turns; len(buf) > max {
		buf = buf[len(buf)-max:]
	}
	s.buffers[chatID] = buf
}

// ReadActive prunes entries older than the TTL, then returns the surviving
// entries for the chat in insertion order. This is the only read path;
// expired entries are never visible to callers.
func (s *Store) ReadActive(chatID string) []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	buf := s.buffers[chatID]
	if len(buf) == 0 {
		return nil
	}

	cutoff := s.clk.Now().Add(-s.config.TTL)

	// Entries are in timestamp order, so the survivors are a suffix. An
	// entry aged exactly TTL has not exceeded it and is kept.
	firstAlive := len(buf)
	for i, e := range buf {
		if !e.Timestamp.Before(cutoff) {
			firstAlive = i
			break
		}
	}

	if firstAlive == len(buf) {
		delete(s.buffers, chatID)
		return nil
	}
	if firstAlive > 0 {
		buf = buf[firstAlive:]
		s.buffers[chatID] = buf
	}

	turns := make([]Turn, len(buf))
	for i, e := range buf {
		turns[i] = Turn{Role: e.Role, Content: e.Content}
	}
	return turns
}

// Len reports the current buffer length for a chat, without pruning.
// Intended for tests and status reporting.
func (s *Store) Len(chatID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buffers[chatID])
}
