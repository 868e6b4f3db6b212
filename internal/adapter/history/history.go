// Package history persists the recently opened file list. The store
// degrades to in-memory operation when the backing file is unusable, so
// history problems never block opening data.
package history

import (
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Store keeps an ordered list of previously opened paths, most recent
// first, backed by a plain text file with one path per line.
type Store struct {
	path    string
	entries []string
}

// Load reads the history file. A missing file yields an empty store;
// any other read failure is logged and the store starts empty.
func Load(path string) *Store {
	s := &Store{path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.WithError(err).WithField("path", path).Warn("could not read history file")
		}
		return s
	}
	for _, line := range strings.Split(string(data), "\n") {
		// Only blank lines are dropped; any other content is kept as a
		// literal path, surrounding whitespace included.
		if strings.TrimSpace(line) == "" {
			continue
		}
		s.entries = append(s.entries, line)
	}
	return s
}

// Entries returns the history, most recent first.
func (s *Store) Entries() []string {
	out := make([]string, len(s.entries))
	copy(out, s.entries)
	return out
}

// Add records a path as the most recent entry, deduplicating any earlier
// occurrence, and rewrites the backing file. Persistence failures are
// logged and the in-memory list stays current.
func (s *Store) Add(path string) {
	kept := make([]string, 0, len(s.entries)+1)
	kept = append(kept, path)
	for _, e := range s.entries {
		if e != path {
			kept = append(kept, e)
		}
	}
	s.entries = kept

	if err := s.save(); err != nil {
		log.WithError(err).WithField("path", s.path).Warn("could not write history file")
	}
}

func (s *Store) save() error {
	if s.path == "" {
		return nil
	}
	var b strings.Builder
	for _, e := range s.entries {
		fmt.Fprintln(&b, e)
	}
	return os.WriteFile(s.path, []byte(b.String()), 0o644)
}
