// Package staging persists raw provider payloads to dated directories, one
// per run date, so consolidation can re-read exactly what ingestion fetched.
package staging

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const dateLayout = "2006-01-02"

// Store reads and writes raw payloads under <root>/<YYYY-MM-DD>/<name>.
type Store struct {
	root string
}

// NewStore creates a staging store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{root: dir}
}

// Write persists one raw payload for the given run date, creating the dated
// directory if needed. Re-writing the same name for the same date overwrites.
func (s *Store) Write(date time.Time, name string, payload []byte) error {
	dir := filepath.Join(s.root, date.Format(dateLayout))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create staging directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), payload, 0o644); err != nil {
		return fmt.Errorf("stage %s: %w", name, err)
	}
	return nil
}

// Read returns the raw payload staged for the given run date.
func (s *Store) Read(date time.Time, name string) ([]byte, error) {
	path := filepath.Join(s.root, date.Format(dateLayout), name)
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read staged payload %s: %w", path, err)
	}
	return payload, nil
}
