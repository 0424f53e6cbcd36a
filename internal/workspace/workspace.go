// Package workspace persists named sampling configurations.
package workspace

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/KaramelBytes/stratify-cli/internal/sampling"
	"github.com/KaramelBytes/stratify-cli/internal/utils"
)

const storeFileName = "configs.json"

var (
	ErrConfigNotFound = errors.New("saved configuration not found")
	ErrNameTaken      = errors.New("a configuration with that name already exists")
	ErrEmptyName      = errors.New("configuration name cannot be empty")
)

// Store is the set of saved configurations of one workspace directory,
// kept in a single JSON file.
type Store struct {
	Entries map[string]*Entry `json:"configs"`

	dir string
}

// Open loads the store in dir. A missing file is an empty store.
func Open(dir string) (*Store, error) {
	s := &Store{Entries: map[string]*Entry{}, dir: dir}
	b, err := os.ReadFile(s.Path())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read workspace: %w", err)
	}
	if err := json.Unmarshal(b, s); err != nil {
		return nil, fmt.Errorf("parse workspace %s: %w", s.Path(), err)
	}
	if s.Entries == nil {
		s.Entries = map[string]*Entry{}
	}
	return s, nil
}

// Path returns the backing file location.
func (s *Store) Path() string { return filepath.Join(s.dir, storeFileName) }

// Save writes the store atomically.
func (s *Store) Save() error {
	if s.dir == "" {
		return errors.New("workspace directory not set")
	}
	if err := utils.EnsureDir(s.dir); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	data, err := utils.PrettyJSON(s)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(s.Path(), data)
}

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}
	return name, nil
}

// Put stores cfg under name, replacing any existing entry of that name.
func (s *Store) Put(name, source string, cfg sampling.Config) (*Entry, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	e, ok := s.Entries[name]
	if !ok {
		e = &Entry{Name: name, CreatedAt: now}
		s.Entries[name] = e
	}
	e.Config = cfg
	e.Source = source
	e.UpdatedAt = now
	return e, nil
}

// Get returns the entry saved under name.
func (s *Store) Get(name string) (*Entry, error) {
	e, ok := s.Entries[strings.TrimSpace(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrConfigNotFound, name)
	}
	return e, nil
}

// Rename moves an entry to a new name. It refuses to overwrite another entry.
func (s *Store) Rename(from, to string) error {
	e, err := s.Get(from)
	if err != nil {
		return err
	}
	to, err = cleanName(to)
	if err != nil {
		return err
	}
	if to == e.Name {
		return nil
	}
	if _, taken := s.Entries[to]; taken {
		return fmt.Errorf("%w: %q", ErrNameTaken, to)
	}
	delete(s.Entries, e.Name)
	e.Name = to
	e.UpdatedAt = time.Now()
	s.Entries[to] = e
	return nil
}

// Delete removes the entry saved under name.
func (s *Store) Delete(name string) error {
	e, err := s.Get(name)
	if err != nil {
		return err
	}
	delete(s.Entries, e.Name)
	return nil
}

// Names lists saved names alphabetically.
func (s *Store) Names() []string {
	out := make([]string, 0, len(s.Entries))
	for n := range s.Entries {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
