// Package ledger tracks which source files have been added to the
// knowledge base, so re-uploading a file never ingests it twice.
package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileName is the ledger's on-disk name inside the knowledge base directory.
const FileName = "added_files.json"

// Ledger is the durable record of ingested file names. The persisted form
// is a JSON array of strings in ingestion order.
//
// The mutex serializes read-modify-write cycles within this process;
// writers in other processes sharing the same knowledge base directory
// are not guarded against.
type Ledger struct {
	mu   sync.Mutex
	path string
}

// New returns a Ledger persisted at <dir>/added_files.json. The directory
// is created if absent.
func New(dir string) (*Ledger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating knowledge base directory: %w", err)
	}
	return &Ledger{path: filepath.Join(dir, FileName)}, nil
}

// Path returns the location of the ledger's persisted form.
func (l *Ledger) Path() string { return l.path }

// Load reads the persisted file-name list. A missing file yields an empty
// list; an unreadable or malformed file propagates the error.
func (l *Ledger) Load() ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load()
}

func (l *Ledger) load() ([]string, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("reading ledger %s: %w", l.path, err)
	}

	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("parsing ledger %s: %w", l.path, err)
	}
	return names, nil
}

// Save overwrites the persisted form with the given list. The write goes
// through a temp file and rename so a reader never observes a partial file.
func (l *Ledger) Save(names []string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.save(names)
}

func (l *Ledger) save(names []string) error {
	if names == nil {
		names = []string{}
	}
	data, err := json.Marshal(names)
	if err != nil {
		return fmt.Errorf("marshalling ledger: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(l.path), FileName+".*")
	if err != nil {
		return fmt.Errorf("staging ledger write: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("writing ledger: %w", err)
	}
	if err := os.Rename(tmpName, l.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing ledger: %w", err)
	}
	return nil
}

// Contains reports whether the given file name is already recorded.
func (l *Ledger) Contains(name string) (bool, error) {
	names, err := l.Load()
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// Add appends the file name if it is not already present and persists the
// updated list. It returns false when the name was already recorded.
func (l *Ledger) Add(name string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	names, err := l.load()
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return false, nil
		}
	}
	if err := l.save(append(names, name)); err != nil {
		return false, err
	}
	return true, nil
}
