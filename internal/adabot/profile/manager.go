package profile

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Overrides are applied on top of every loaded profile, so that environment
// configuration keeps winning across hot reloads. Zero-valued fields are
// left alone.
type Overrides struct {
	Persona     string
	Mention     string
	EndCommands []string
}

// Manager serves the current profile and optionally hot-reloads it when the
// backing file changes. Reads go through an atomic pointer, so Get is safe
// and cheap from any goroutine.
type Manager struct {
	current   atomic.Pointer[Profile]
	path      string
	overrides Overrides
	watcher   *fsnotify.Watcher
}

// NewManager loads the initial profile. When path is empty the built-in
// defaults are used and Watch becomes a no-op.
func NewManager(path string, overrides Overrides) (*Manager, error) {
	m := &Manager{path: path, overrides: overrides}

	p, err := m.load()
	if err != nil {
		return nil, err
	}
	m.current.Store(p)
	return m, nil
}

// Get returns the current profile. The returned value must be treated as
// read-only; a reload swaps in a fresh pointer rather than mutating it.
func (m *Manager) Get() *Profile {
	return m.current.Load()
}

// load reads and parses the profile, then applies the overrides.
func (m *Manager) load() (*Profile, error) {
	var p *Profile
	if m.path == "" {
		p = Default()
	} else {
		data, err := os.ReadFile(m.path)
		if err != nil {
			return nil, fmt.Errorf("profile: read %s: %w", m.path, err)
		}
		p, err = Parse(data)
		if err != nil {
			return nil, fmt.Errorf("profile: %s: %w", m.path, err)
		}
	}

	if m.overrides.Persona != "" {
		p.Persona = m.overrides.Persona
	}
	if m.overrides.Mention != "" {
		p.Mention = m.overrides.Mention
	}
	if len(m.overrides.EndCommands) > 0 {
		p.EndCommands = m.overrides.EndCommands
	}
	if err := Validate(p); err != nil {
		return nil, fmt.Errorf("profile: after overrides: %w", err)
	}
	return p, nil
}

// Watch starts watching the profile file for changes and reloads it with a
// short debounce. No-op when the manager was created without a path.
func (m *Manager) Watch(ctx context.Context) error {
	if m.path == "" {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("profile: create watcher: %w", err)
	}
	if err := watcher.Add(m.path); err != nil {
		watcher.Close()
		return fmt.Errorf("profile: watch %s: %w", m.path, err)
	}
	m.watcher = watcher

	go m.watchLoop(ctx)
	return nil
}

func (m *Manager) watchLoop(ctx context.Context) {
	// Editors often fire several events per save; coalesce them.
	const debounce = 500 * time.Millisecond
	var timer *time.Timer

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			m.watcher.Close()
			return

		case event, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(debounce, m.reload)
			}

		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("profile watcher error", "err", err)
		}
	}
}

// reload re-reads the profile file; on any error the current profile stays
// in place.
func (m *Manager) reload() {
	p, err := m.load()
	if err != nil {
		slog.Error("profile reload failed, keeping current profile", "err", err)
		return
	}
	m.current.Store(p)
	slog.Info("profile reloaded", "path", m.path, "mention", p.Mention)
}
