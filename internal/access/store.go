package access

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Verify FileStore satisfies GrantStore at compile time.
var _ GrantStore = (*FileStore)(nil)

// FileStore persists grants as JSON files under a base directory.
type FileStore struct {
	baseDir string
}

// NewFileStore creates a FileStore that saves grants under baseDir.
func NewFileStore(baseDir string) *FileStore {
	return &FileStore{baseDir: baseDir}
}

// Save writes the grant to a JSON file named by its permission. The file is
// written under a temporary name and renamed into place, so readers see
// either the previous grant or the new one.
func (s *FileStore) Save(g Grant) error {
	p, err := s.path(g.Permission)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.baseDir, 0o755); err != nil {
		return fmt.Errorf("access: creating directory: %w", err)
	}

	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return fmt.Errorf("access: marshaling: %w", err)
	}

	if err := writeFileAtomic(p, data); err != nil {
		return fmt.Errorf("access: writing %s: %w", p, err)
	}
	return nil
}

func writeFileAtomic(path string, data []byte) (err error) {
	f, err := os.CreateTemp(filepath.Dir(path), ".grant-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmp)
		}
	}()

	if err := f.Chmod(0o600); err != nil {
		_ = f.Close()
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Load reads the grant for permission.
// Returns (grant, true, nil) if found, (zero, false, nil) if not found.
func (s *FileStore) Load(permission string) (Grant, bool, error) {
	p, err := s.path(permission)
	if err != nil {
		return Grant{}, false, err
	}

	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Grant{}, false, nil
		}
		return Grant{}, false, fmt.Errorf("access: reading %s: %w", p, err)
	}

	var g Grant
	if err := json.Unmarshal(data, &g); err != nil {
		return Grant{}, false, fmt.Errorf("access: parsing %s: %w", p, err)
	}
	return g, true, nil
}

// Remove deletes the grant file for permission. Missing files are ignored.
func (s *FileStore) Remove(permission string) error {
	p, err := s.path(permission)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("access: removing %s: %w", p, err)
	}
	return nil
}

// path returns the filesystem path for a grant file.
// It rejects names that are empty, dot-segments, or contain path separators.
func (s *FileStore) path(permission string) (string, error) {
	if permission == "" || permission == "." || permission == ".." || permission != filepath.Base(permission) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPermission, permission)
	}
	return filepath.Join(s.baseDir, permission+".json"), nil
}
