package store

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileStoreMissingFileReadsZero(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "preset.dat"))
	b, err := s.ReadByte(AddrMarker)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if b != 0 {
		t.Errorf("missing file should read 0, got %#x", b)
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preset.dat")
	s := NewFileStore(path)

	if err := s.WriteByte(AddrMarker, Marker); err != nil {
		t.Fatalf("write marker: %v", err)
	}
	if err := s.WriteByte(AddrIndex, 2); err != nil {
		t.Fatalf("write index: %v", err)
	}

	// A fresh store on the same path sees the persisted bytes.
	s2 := NewFileStore(path)
	m, err := s2.ReadByte(AddrMarker)
	if err != nil {
		t.Fatalf("read marker: %v", err)
	}
	if m != Marker {
		t.Errorf("marker: got %#x, want %#x", m, Marker)
	}
	idx, err := s2.ReadByte(AddrIndex)
	if err != nil {
		t.Fatalf("read index: %v", err)
	}
	if idx != 2 {
		t.Errorf("index: got %d, want 2", idx)
	}
}

func TestFileStoreShortFileReadsZero(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preset.dat")
	if err := os.WriteFile(path, []byte{Marker}, 0o644); err != nil {
		t.Fatal(err)
	}
	s := NewFileStore(path)
	b, err := s.ReadByte(AddrIndex)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if b != 0 {
		t.Errorf("short file should read 0 past its end, got %#x", b)
	}
}

func TestFileStoreNegativeAddress(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "preset.dat"))
	if _, err := s.ReadByte(-1); err == nil {
		t.Error("expected error for negative read address")
	}
	if err := s.WriteByte(-1, 0); err == nil {
		t.Error("expected error for negative write address")
	}
}
