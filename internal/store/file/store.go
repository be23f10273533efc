// Package file stores deformer states as JSON files in a directory.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"mapped-wrap/internal/deform"
	"mapped-wrap/internal/store"
)

// DefaultDir is used when New is given an empty path.
var DefaultDir = filepath.Join(".mapwrap", "deformers")

// Store implements store.Store on the local filesystem, one <name>.json per deformer.
type Store struct {
	BasePath string
}

// New creates a Store rooted at basePath.
func New(basePath string) *Store {
	if basePath == "" {
		basePath = DefaultDir
	}
	return &Store{BasePath: basePath}
}

func (s *Store) path(name string) string {
	return filepath.Join(s.BasePath, name+".json")
}

func checkName(name string) error {
	// Dot names are reserved for in-flight temp files.
	if name == "" || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("file store: invalid deformer name %q", name)
	}
	return nil
}

// Save writes the state atomically: temp file, fsync, rename.
func (s *Store) Save(ctx context.Context, st *deform.State) error {
	if err := checkName(st.Name); err != nil {
		return err
	}
	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("file store: ensure directory: %w", err)
	}

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("file store: marshal %s: %w", st.Name, err)
	}

	tmp, err := os.CreateTemp(s.BasePath, ".tmp-"+st.Name+"-*.json")
	if err != nil {
		return fmt.Errorf("file store: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("file store: write %s: %w", st.Name, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("file store: fsync %s: %w", st.Name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("file store: close %s: %w", st.Name, err)
	}

	// Windows refuses to rename over an existing file.
	dest := s.path(st.Name)
	if _, err := os.Stat(dest); err == nil {
		if err := os.Remove(dest); err != nil {
			return fmt.Errorf("file store: replace %s: %w", st.Name, err)
		}
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return fmt.Errorf("file store: rename %s: %w", st.Name, err)
	}
	return nil
}

// Load reads one state.
func (s *Store) Load(ctx context.Context, name string) (*deform.State, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("file store: %s: %w", name, store.ErrNotFound)
		}
		return nil, fmt.Errorf("file store: read %s: %w", name, err)
	}

	var st deform.State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("file store: parse %s: %w", name, err)
	}
	return &st, nil
}

// List returns stored deformer names, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("file store: list: %w", err)
	}

	names := []string{}
	for _, e := range entries {
		n := e.Name()
		if e.IsDir() || filepath.Ext(n) != ".json" || strings.HasPrefix(n, ".") {
			continue
		}
		names = append(names, strings.TrimSuffix(n, ".json"))
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes one state.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	if err := os.Remove(s.path(name)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("file store: %s: %w", name, store.ErrNotFound)
		}
		return fmt.Errorf("file store: delete %s: %w", name, err)
	}
	return nil
}
