package sensor

// FakeReader is a test double that returns scripted measurements.
type FakeReader struct {
	// Temperature and Humidity are returned by Read.
	Temperature float64
	Humidity    float64

	// ReadError, if set, will be returned by Read()
	ReadError error

	// Reads counts Read calls.
	Reads int

	// Closed tracks if Close was called
	Closed bool
}

// NewFakeReader creates a FakeReader returning the given values.
func NewFakeReader(temperature, humidity float64) *FakeReader {
	return &FakeReader{Temperature: temperature, Humidity: humidity}
}

// Read returns the configured values or error.
func (f *FakeReader) Read() (float64, float64, error) {
	f.Reads++
	if f.ReadError != nil {
		return 0, 0, f.ReadError
	}
	return f.Temperature, f.Humidity, nil
}

// Close marks the reader as closed.
func (f *FakeReader) Close() error {
	f.Closed = true
	return nil
}
