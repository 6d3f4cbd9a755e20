package store

// FakeStore is an in-memory byte store with error injection.
type FakeStore struct {
	// Bytes maps address to value. Missing addresses read as 0.
	Bytes map[int]byte

	// ReadError, if set, will be returned by ReadByte.
	ReadError error

	// WriteError, if set, will be returned by WriteByte.
	WriteError error

	// Writes counts WriteByte calls.
	Writes int
}

// NewFakeStore creates an empty FakeStore.
func NewFakeStore() *FakeStore {
	return &FakeStore{Bytes: make(map[int]byte)}
}

// ReadByte returns the byte at addr (0 if unwritten).
func (f *FakeStore) ReadByte(addr int) (byte, error) {
	if f.ReadError != nil {
		return 0, f.ReadError
	}
	return f.Bytes[addr], nil
}

// WriteByte records the byte at addr.
func (f *FakeStore) WriteByte(addr int, b byte) error {
	if f.WriteError != nil {
		return f.WriteError
	}
	f.Bytes[addr] = b
	f.Writes++
	return nil
}
