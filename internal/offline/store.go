// internal/offline/store.go
package offline

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Store is a named, durable key-value store mapping request identity
// (method + URL) to a stored response. Entries live as JSON files under
// dir/name; writes go through a temp file + rename so readers never see a
// partial entry.
type Store struct {
	root string
	mu   sync.Mutex // serializes writes; reads need no lock (rename is atomic)
}

// OpenStore opens (or creates) the store named name under dir.
func OpenStore(dir, name string) (*Store, error) {
	if name == "" {
		return nil, fmt.Errorf("offline: store name is empty")
	}
	root := filepath.Join(dir, name)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("offline: create store %q: %w", name, err)
	}
	return &Store{root: root}, nil
}

// keyFor derives the file key for a request identity.
func keyFor(method, url string) string {
	sum := sha256.Sum256([]byte(method + " " + url))
	return hex.EncodeToString(sum[:])
}

func (s *Store) path(key string) string {
	return filepath.Join(s.root, key+".json")
}

// Match looks up the stored response for method+url. The second return is
// false when no entry exists; an error means the store itself misbehaved
// (unreadable file, corrupt entry).
func (s *Store) Match(method, url string) (*Entry, bool, error) {
	data, err := os.ReadFile(s.path(keyFor(method, url)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("offline: read entry: %w", err)
	}
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, false, fmt.Errorf("offline: decode entry: %w", err)
	}
	return &e, true, nil
}

// put stores an entry for method+url, atomically.
func (s *Store) put(method, url string, e *Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("offline: encode entry: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.root, ".tmp-*")
	if err != nil {
		return fmt.Errorf("offline: temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("offline: write entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("offline: close entry: %w", err)
	}
	if err := os.Rename(tmpName, s.path(keyFor(method, url))); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("offline: commit entry: %w", err)
	}
	return nil
}
