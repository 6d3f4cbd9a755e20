package display

import (
	"fmt"
	"log"
	"time"

	"periph.io/x/conn/v3/i2c"
)

// Grove LCD RGB Backlight addresses: an AiP31068 (HD44780-class) text
// controller plus a PCA9633 backlight driver on the same bus.
const (
	GroveLCDAddr = 0x3E
	GroveRGBAddr = 0x62
)

// HD44780 command set (the subset the presenter needs).
const (
	lcdCmdClear       = 0x01
	lcdCmdEntryMode   = 0x06 // increment, no shift
	lcdCmdDisplayOn   = 0x0C // display on, cursor off, blink off
	lcdCmdFunctionSet = 0x28 // 2 lines, 5x8 font

	lcdCtrlCmd  = 0x80
	lcdCtrlData = 0x40

	// clearSettle is the fixed settle delay the controller needs after a
	// clear command.
	clearSettle = 2 * time.Millisecond
)

// PCA9633 registers.
const (
	rgbRegMode1  = 0x00
	rgbRegMode2  = 0x01
	rgbRegBlue   = 0x02
	rgbRegGreen  = 0x03
	rgbRegRed    = 0x04
	rgbRegLedout = 0x08
)

// GroveLCD drives the Grove 16x2 RGB-backlight LCD over I2C. Write failures
// are logged and dropped: the next refresh repaints the whole frame anyway.
type GroveLCD struct {
	lcd i2c.Dev
	rgb i2c.Dev
}

// NewGroveLCD initializes the panel on the given bus: function set, display
// on, entry mode, backlight driver enabled with all channels on PWM.
func NewGroveLCD(bus i2c.Bus, lcdAddr, rgbAddr uint16) (*GroveLCD, error) {
	if lcdAddr == 0 {
		lcdAddr = GroveLCDAddr
	}
	if rgbAddr == 0 {
		rgbAddr = GroveRGBAddr
	}
	d := &GroveLCD{
		lcd: i2c.Dev{Bus: bus, Addr: lcdAddr},
		rgb: i2c.Dev{Bus: bus, Addr: rgbAddr},
	}

	for _, cmd := range []byte{lcdCmdFunctionSet, lcdCmdDisplayOn, lcdCmdClear, lcdCmdEntryMode} {
		if err := d.command(cmd); err != nil {
			return nil, fmt.Errorf("lcd init: %w", err)
		}
		if cmd == lcdCmdClear {
			time.Sleep(clearSettle)
		}
	}

	for _, init := range [][2]byte{{rgbRegMode1, 0x00}, {rgbRegMode2, 0x00}, {rgbRegLedout, 0xAA}} {
		if err := d.rgb.Tx([]byte{init[0], init[1]}, nil); err != nil {
			return nil, fmt.Errorf("backlight init: %w", err)
		}
	}
	return d, nil
}

func (d *GroveLCD) command(cmd byte) error {
	return d.lcd.Tx([]byte{lcdCtrlCmd, cmd}, nil)
}

// Clear wipes the panel and waits the fixed settle delay.
func (d *GroveLCD) Clear() {
	if err := d.command(lcdCmdClear); err != nil {
		log.Printf("display: clear: %v", err)
		return
	}
	time.Sleep(clearSettle)
}

// SetCursor moves the write position to (col, row).
func (d *GroveLCD) SetCursor(col, row int) {
	addr := byte(col) | 0x80
	if row == 1 {
		addr = byte(col) | 0xC0
	}
	if err := d.command(addr); err != nil {
		log.Printf("display: set cursor: %v", err)
	}
}

// Print writes text at the cursor, truncated to the panel width.
func (d *GroveLCD) Print(text string) {
	if len(text) > Columns {
		text = text[:Columns]
	}
	for i := 0; i < len(text); i++ {
		if err := d.lcd.Tx([]byte{lcdCtrlData, text[i]}, nil); err != nil {
			log.Printf("display: print: %v", err)
			return
		}
	}
}

// SetRGB sets the backlight color.
func (d *GroveLCD) SetRGB(r, g, b uint8) {
	for _, ch := range [][2]byte{{rgbRegRed, r}, {rgbRegGreen, g}, {rgbRegBlue, b}} {
		if err := d.rgb.Tx([]byte{ch[0], ch[1]}, nil); err != nil {
			log.Printf("display: backlight: %v", err)
			return
		}
	}
}

// Close blanks the panel and backlight. The shared bus is closed by the
// caller.
func (d *GroveLCD) Close() error {
	d.Clear()
	d.SetRGB(0, 0, 0)
	return nil
}
