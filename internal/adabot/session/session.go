// Package session implements the per-chat awake-window state machine.
//
// A chat is ACTIVE when it holds a record whose expiry lies in the future
// and whose turn budget is positive; everything else — no record, expiry
// passed, budget exhausted — is INACTIVE. Records are never swept in the
// background: a lapsed record simply evaluates as inactive until the
// orchestrator explicitly ends it (lazy expiry). The two-step "consume the
// turn, end on the next activity check" ordering is deliberate, so the turn
// that exhausts the budget is still answered.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tyhsieh/adabot/internal/adabot/clock"
)

// Config holds the awake-window parameters.
type Config struct {
	// TTL is how long a session stays awake past the last refresh.
	// Default: 10 minutes.
	TTL time.Duration

	// Turns is the budget of unaddressed messages answered automatically
	// before the bot goes back to sleep. Default: 10.
	Turns int
}

// DefaultConfig returns a Config with the documented defaults.
func DefaultConfig() Config {
	return Config{
		TTL:   10 * time.Minute,
		Turns: 10,
	}
}

// record is the per-chat session state. turnsLeft stays within
// [0, Config.Turns] at all times.
type record struct {
	id        string // UUID, for log correlation only
	expireAt  time.Time
	turnsLeft int
}

// Manager owns all session records, keyed by chat ID.
// It is safe for concurrent use.
type Manager struct {
	mu      sync.Mutex
	config  Config
	clk     clock.Clock
	records map[string]*record
}

// NewManager creates a Manager with the given configuration and clock.
func NewManager(cfg Config, clk clock.Clock) *Manager {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultConfig().TTL
	}
	if cfg.Turns <= 0 {
		cfg.Turns = DefaultConfig().Turns
	}
	return &Manager{
		config:  cfg,
		clk:     clk,
		records: make(map[string]*record),
	}
}

// IsActive reports whether the chat currently has an awake session: a record
// with a future expiry and a positive turn budget. A lapsed or exhausted
// record makes the chat inactive without being deleted.
func (m *Manager) IsActive(chatID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.records[chatID]
	if !ok {
		return false
	}
	return r.turnsLeft > 0 && m.clk.Now().Before(r.expireAt)
}

// StartOrRefresh transitions the chat to ACTIVE. A missing record is created
// with a full turn budget; an exhausted one gets its budget restored — a
// fresh mention always buys a whole new allowance. In every case the expiry
// is pushed to now + TTL.
//
// Returns the session ID for log correlation.
func (m *Manager) StartOrRefresh(chatID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.records[chatID]
	if !ok {
		r = &record{
			id:        uuid.New().String(),
			turnsLeft: m.config.Turns,
		}
		m.records[chatID] = r
	}
	if r.turnsLeft <= 0 {
		r.turnsLeft = m.config.Turns
	}
	r.expireAt = m.clk.Now().Add(m.config.TTL)
	return r.id
}

// ConsumeTurn spends one turn from the chat's budget, flooring at zero.
// Calling it for a chat with no record is a no-op. The record is kept even
// at zero: the next IsActive check reports inactive and the orchestrator
// ends it then.
func (m *Manager) ConsumeTurn(chatID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.records[chatID]
	if !ok {
		return
	}
	if r.turnsLeft > 0 {
		r.turnsLeft--
	}
}

// RefreshExpiry extends the chat's expiry to now + TTL without touching the
// turn budget. No-op when the chat has no record.
func (m *Manager) RefreshExpiry(chatID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if r, ok := m.records[chatID]; ok {
		r.expireAt = m.clk.Now().Add(m.config.TTL)
	}
}

// End deletes the chat's record unconditionally. Idempotent.
func (m *Manager) End(chatID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, chatID)
}

// TurnsLeft reports the remaining turn budget, or 0 when no record exists.
// Intended for tests and status reporting.
func (m *Manager) TurnsLeft(chatID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	if r, ok := m.records[chatID]; ok {
		return r.turnsLeft
	}
	return 0
}
