// Package artifact owns the on-disk lifecycle of generated cards.
package artifact

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/youruser/pnlcard/internal/util"
)

// ErrWrite wraps any failure to persist an artifact.
var ErrWrite = errors.New("artifact write failed")

const (
	namePrefix    = "pnl-card-"
	pendingPrefix = ".pending-"
)

// Manager creates artifacts in one directory and deletes each of them once
// its TTL has passed. Expiry is enforced by Sweep, which a ReaperJob runs on
// a schedule; deletion failures are logged and never returned.
type Manager struct {
	dir string
	ttl time.Duration
	now func() time.Time
	log zerolog.Logger

	mu       sync.Mutex
	expiries map[string]time.Time
}

func NewManager(dir string, ttl time.Duration, log zerolog.Logger) (*Manager, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve artifact directory: %w", err)
	}
	if err := util.EnsureDir(abs); err != nil {
		return nil, fmt.Errorf("failed to create artifact directory: %w", err)
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	m := &Manager{
		dir:      abs,
		ttl:      ttl,
		now:      time.Now,
		log:      log.With().Str("component", "artifacts").Logger(),
		expiries: map[string]time.Time{},
	}
	if err := m.adopt(m.now()); err != nil {
		return nil, fmt.Errorf("failed to scan artifact directory: %w", err)
	}
	return m, nil
}

// adopt takes over artifacts left by a previous process. Cards older than the
// TTL and interrupted temp files are deleted; younger cards are tracked with an
// expiry of modification time plus TTL.
func (m *Manager) adopt(now time.Time) error {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return err
	}
	adopted, removed := 0, 0
	for _, e := range entries {
		name := e.Name()
		if !e.Type().IsRegular() {
			continue
		}
		path := filepath.Join(m.dir, name)
		switch {
		case strings.HasPrefix(name, pendingPrefix):
			m.remove(path)
			removed++
		case strings.HasPrefix(name, namePrefix):
			info, err := e.Info()
			if err != nil {
				continue
			}
			expires := info.ModTime().Add(m.ttl)
			if !expires.After(now) {
				m.remove(path)
				removed++
				continue
			}
			m.expiries[path] = expires
			adopted++
		}
	}
	if adopted+removed > 0 {
		m.log.Info().Int("adopted", adopted).Int("removed", removed).Msg("Recovered leftover artifacts")
	}
	return nil
}

// Dir is the absolute directory artifacts are written to.
func (m *Manager) Dir() string { return m.dir }

// Create writes data under a unique name and registers its expiry. The file
// only appears under its final name once fully written.
func (m *Manager) Create(data []byte, ext string) (string, error) {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	created := m.now()
	path := filepath.Join(m.dir, fmt.Sprintf("%s%d-%s%s", namePrefix, created.UnixMilli(), uuid.NewString()[:8], ext))

	tmp, err := os.CreateTemp(m.dir, pendingPrefix+"*")
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrWrite, err)
	}
	_, werr := tmp.Write(data)
	cerr := tmp.Close()
	if err := errors.Join(werr, cerr); err != nil {
		_ = util.RemoveIfExists(tmp.Name())
		return "", fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = util.RemoveIfExists(tmp.Name())
		return "", fmt.Errorf("%w: %w", ErrWrite, err)
	}

	m.mu.Lock()
	m.expiries[path] = created.Add(m.ttl)
	m.mu.Unlock()

	m.log.Debug().Str("path", path).Time("expires_at", created.Add(m.ttl)).Msg("Artifact created")
	return path, nil
}

// Lookup maps an artifact base name back to its tracked path.
func (m *Manager) Lookup(name string) (string, bool) {
	if name != filepath.Base(name) || !strings.HasPrefix(name, namePrefix) {
		return "", false
	}
	path := filepath.Join(m.dir, name)
	m.mu.Lock()
	_, ok := m.expiries[path]
	m.mu.Unlock()
	return path, ok
}

// Release deletes an artifact early, once a caller has consumed it.
func (m *Manager) Release(path string) {
	m.mu.Lock()
	delete(m.expiries, path)
	m.mu.Unlock()
	m.remove(path)
}

// Sweep deletes every artifact whose expiry is at or before now and returns
// how many were removed from tracking.
func (m *Manager) Sweep(now time.Time) int {
	var expired []string
	m.mu.Lock()
	for path, at := range m.expiries {
		if !at.After(now) {
			expired = append(expired, path)
			delete(m.expiries, path)
		}
	}
	m.mu.Unlock()

	for _, path := range expired {
		m.remove(path)
	}
	return len(expired)
}

// Pending is the number of artifacts awaiting expiry.
func (m *Manager) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.expiries)
}

// Close deletes every tracked artifact.
func (m *Manager) Close() {
	m.mu.Lock()
	paths := make([]string, 0, len(m.expiries))
	for path := range m.expiries {
		paths = append(paths, path)
	}
	m.expiries = map[string]time.Time{}
	m.mu.Unlock()

	for _, path := range paths {
		m.remove(path)
	}
}

func (m *Manager) remove(path string) {
	if err := util.RemoveIfExists(path); err != nil {
		m.log.Warn().Err(err).Str("path", path).Msg("Failed to delete artifact")
	}
}
