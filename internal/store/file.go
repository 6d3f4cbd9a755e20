package store

import (
	"fmt"
	"os"
)

// FileStore backs the byte store with a small file, the Pi's stand-in for
// EEPROM. Reads of a missing or short file return zeros, which the selector
// treats as an invalid marker.
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore at the given path. The file is created on
// first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// ReadByte returns the byte at addr, or 0 if the file is missing or shorter
// than addr+1.
func (s *FileStore) ReadByte(addr int) (byte, error) {
	if addr < 0 {
		return 0, fmt.Errorf("store: negative address %d", addr)
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("store: read %s: %w", s.path, err)
	}
	if addr >= len(data) {
		return 0, nil
	}
	return data[addr], nil
}

// WriteByte writes the byte at addr, extending the file with zeros if needed.
// The whole (tiny) file is rewritten atomically via a rename.
func (s *FileStore) WriteByte(addr int, b byte) error {
	if addr < 0 {
		return fmt.Errorf("store: negative address %d", addr)
	}
	data, err := os.ReadFile(s.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("store: read %s: %w", s.path, err)
	}
	if addr >= len(data) {
		grown := make([]byte, addr+1)
		copy(grown, data)
		data = grown
	}
	data[addr] = b

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("store: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("store: rename %s: %w", tmp, err)
	}
	return nil
}
