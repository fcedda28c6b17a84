package smartbot

import (
	"fmt"
	"os"
	"path/filepath"
)

// Storage keys for the two artifacts the engine persists between sessions.
const (
	DefaultParamsKey  = "system_params.json"
	DefaultHistoryKey = "conversation_history.json"
)

type fileStore struct {
	dir       string
	overrides map[string]string
}

// NewFileStore creates a BlobStore that maps each key to a file of the same
// name under dir. The directory is created on first write.
func NewFileStore(dir string) BlobStore {
	return &fileStore{dir: dir}
}

// NewFileStoreWithOverrides creates a file-backed BlobStore where selected
// keys resolve to explicit file paths instead of dir/key. Keys without an
// override behave exactly as in NewFileStore.
func NewFileStoreWithOverrides(dir string, overrides map[string]string) BlobStore {
	copied := make(map[string]string, len(overrides))
	for key, path := range overrides {
		if path != "" {
			copied[key] = path
		}
	}

	return &fileStore{dir: dir, overrides: copied}
}

func (fs *fileStore) path(key string) string {
	if override, ok := fs.overrides[key]; ok {
		return override
	}
	return filepath.Join(fs.dir, key)
}

// Read returns the stored bytes for key, or ErrKeyNotFound if nothing has
// been written yet
func (fs *fileStore) Read(key string) ([]byte, error) {
	data, err := os.ReadFile(fs.path(key)) //nolint:gosec
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
		}
		return nil, fmt.Errorf("read %s: %w", key, err)
	}

	return data, nil
}

// Write stores data under key, creating parent directories as needed
func (fs *fileStore) Write(key string, data []byte) error {
	path := fs.path(key)
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec
		return fmt.Errorf("write %s: %w", key, err)
	}

	return nil
}
