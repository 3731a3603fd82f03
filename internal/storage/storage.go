package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Storage is a root-scoped file store for avatar images. Names are
// confined to the root; anything resolving outside it is rejected.
type Storage struct {
	root string
}

func New(root string) (*Storage, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve storage root: %w", err)
	}

	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}

	return &Storage{root: abs}, nil
}

func (s *Storage) Root() string {
	return s.root
}

func (s *Storage) resolve(name string) (string, error) {
	cleaned := filepath.Clean(strings.TrimSpace(name))
	if cleaned == "" || cleaned == "." || strings.Contains(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("invalid file name %q", name)
	}

	resolved := filepath.Join(s.root, cleaned)
	if !strings.HasPrefix(resolved, s.root+string(filepath.Separator)) {
		return "", fmt.Errorf("file name %q escapes storage root", name)
	}

	return resolved, nil
}

func (s *Storage) WriteFile(name string, data []byte) error {
	resolved, err := s.resolve(name)
	if err != nil {
		return err
	}

	if err := os.WriteFile(resolved, data, 0o644); err != nil {
		return fmt.Errorf("write %q: %w", name, err)
	}

	return nil
}

func (s *Storage) Open(name string) (*os.File, error) {
	resolved, err := s.resolve(name)
	if err != nil {
		return nil, err
	}

	return os.Open(resolved)
}

func (s *Storage) Remove(name string) error {
	resolved, err := s.resolve(name)
	if err != nil {
		return err
	}

	if err := os.Remove(resolved); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %q: %w", name, err)
	}

	return nil
}
