package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// StorageExhaustedError signals the local store has no room for the write.
type StorageExhaustedError struct {
	Capacity int64
	Used     int64
	Need     int64
}

func (e *StorageExhaustedError) Error() string {
	return fmt.Sprintf("local storage exhausted: %d of %d bytes used, %d needed", e.Used, e.Capacity, e.Need)
}

// DiskStore implements LocalStore on a flat directory, one file per local
// id, bounded by Capacity bytes.
type DiskStore struct {
	Dir      string
	Capacity int64

	mu sync.Mutex
}

// NewDiskStore creates the backing directory if needed.
func NewDiskStore(dir string, capacity int64) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("DiskStore: failed to create %s: %w", dir, err)
	}
	return &DiskStore{Dir: dir, Capacity: capacity}, nil
}

func (s *DiskStore) used() (int64, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return 0, fmt.Errorf("DiskStore: failed to read %s: %w", s.Dir, err)
	}
	var total int64
	for _, e := range entries {
		info, err := e.Info()
		if err != nil {
			continue
		}
		total += info.Size()
	}
	return total, nil
}

// Write stores the bytes under a fresh local id.
func (s *DiskStore) Write(data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	used, err := s.used()
	if err != nil {
		return "", err
	}
	if used+int64(len(data)) > s.Capacity {
		return "", &StorageExhaustedError{Capacity: s.Capacity, Used: used, Need: int64(len(data))}
	}

	id := uuid.NewString()
	if err := os.WriteFile(filepath.Join(s.Dir, id), data, 0o644); err != nil {
		return "", fmt.Errorf("DiskStore: failed to write %s: %w", id, err)
	}
	return id, nil
}

// Read returns the bytes stored under the local id.
func (s *DiskStore) Read(localID string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir, filepath.Base(localID)))
	if err != nil {
		return nil, fmt.Errorf("DiskStore: failed to read %s: %w", localID, err)
	}
	return data, nil
}

// Delete removes the local copy. Missing files are not an error; delete is
// used for best-effort cleanup after promotion.
func (s *DiskStore) Delete(localID string) error {
	err := os.Remove(filepath.Join(s.Dir, filepath.Base(localID)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("DiskStore: failed to delete %s: %w", localID, err)
	}
	return nil
}
