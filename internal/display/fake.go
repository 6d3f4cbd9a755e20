package display

// FakeDevice records display calls for test assertions.
type FakeDevice struct {
	// Lines holds the text printed per row since the last Clear.
	Lines [2]string

	// Color is the last backlight color set.
	Color Color

	// Clears counts Clear calls.
	Clears int

	// Closed tracks if Close was called.
	Closed bool

	col, row int
}

// NewFakeDevice creates an empty FakeDevice.
func NewFakeDevice() *FakeDevice {
	return &FakeDevice{}
}

// Clear wipes both lines.
func (f *FakeDevice) Clear() {
	f.Lines = [2]string{}
	f.col, f.row = 0, 0
	f.Clears++
}

// SetCursor moves the fake cursor.
func (f *FakeDevice) SetCursor(col, row int) {
	f.col, f.row = col, row
}

// Print appends text to the current row. Column handling is simplified:
// the presenter always prints whole lines from column 0.
func (f *FakeDevice) Print(text string) {
	if f.row >= 0 && f.row < 2 {
		f.Lines[f.row] += text
	}
}

// SetRGB records the backlight color.
func (f *FakeDevice) SetRGB(r, g, b uint8) {
	f.Color = Color{r, g, b}
}

// Close marks the device as closed.
func (f *FakeDevice) Close() error {
	f.Closed = true
	return nil
}
