package sessioncache

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// TTL is the maximum age of a cache entry. Older entries are never reused.
const TTL = 24 * time.Hour

// Entry is one cached session handle.
type Entry struct {
	SessionID string    `json:"sessionId"`
	LastUsed  time.Time `json:"lastUsed"`
}

// Store is a file-backed session cache. The zero value is not usable; use
// New or Open.
type Store struct {
	path string
	now  func() time.Time
}

// New creates a Store persisting to path.
func New(path string) *Store {
	return &Store{path: path, now: time.Now}
}

// Open creates a Store at the default per-user location.
func Open() (*Store, error) {
	dir, err := defaultDir()
	if err != nil {
		return nil, err
	}
	return New(filepath.Join(dir, "sessions.json")), nil
}

// Key derives the context key for a review target from the repository root
// and the reviewed ref.
func Key(repoRoot, ref string) string {
	h := sha256.Sum256([]byte(repoRoot + "\x00" + ref))
	return fmt.Sprintf("%x", h[:12])
}

// Get returns the cached session ID for key. An entry that is missing or at
// least TTL old is reported as absent; expired entries are not deleted here,
// only by Compact.
func (s *Store) Get(key string) (string, bool) {
	entries := s.load()
	e, ok := entries[key]
	if !ok {
		return "", false
	}
	if s.now().Sub(e.LastUsed) >= TTL {
		return "", false
	}
	return e.SessionID, true
}

// Put upserts an entry with the current timestamp and rewrites the whole
// store atomically.
func (s *Store) Put(key, sessionID string) error {
	entries := s.load()
	entries[key] = Entry{SessionID: sessionID, LastUsed: s.now()}
	return s.save(entries)
}

// Compact rewrites the store keeping only entries younger than TTL. Called
// at the start of each pipeline run so stale entries cannot be served.
func (s *Store) Compact() error {
	entries := s.load()
	kept := make(map[string]Entry, len(entries))
	for k, e := range entries {
		if s.now().Sub(e.LastUsed) < TTL {
			kept[k] = e
		}
	}
	if len(kept) == len(entries) {
		return nil
	}
	return s.save(kept)
}

// Clear removes every entry.
func (s *Store) Clear() error {
	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Len returns the number of stored entries, expired ones included.
func (s *Store) Len() int {
	return len(s.load())
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// load reads the whole map. A missing or unreadable file is an empty cache.
func (s *Store) load() map[string]Entry {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return map[string]Entry{}
	}
	var entries map[string]Entry
	if err := json.Unmarshal(data, &entries); err != nil || entries == nil {
		return map[string]Entry{}
	}
	return entries
}

// save writes the whole map via temp file + rename. Last writer wins.
func (s *Store) save(entries map[string]Entry) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling session cache: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".sessions-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing session cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

func defaultDir() (string, error) {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "diffcritic"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Caches", "diffcritic"), nil
	case "windows":
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			return filepath.Join(localAppData, "diffcritic", "cache"), nil
		}
		return filepath.Join(home, "AppData", "Local", "diffcritic", "cache"), nil
	default:
		return filepath.Join(home, ".cache", "diffcritic"), nil
	}
}
