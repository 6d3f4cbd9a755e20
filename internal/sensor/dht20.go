package sensor

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/i2c"
)

// DHT20 I2C protocol constants (AHT20-compatible).
const (
	DHT20Addr = 0x38

	cmdStatus     = 0x71
	cmdInitialize = 0xBE
	cmdTrigger    = 0xAC

	statusBusy       = 0x80
	statusCalibrated = 0x08

	// conversionTime is the fixed, bounded wait between triggering a
	// measurement and collecting it. The datasheet specifies <80ms.
	conversionTime = 80 * time.Millisecond
)

// DHT20 reads a Grove DHT20 temperature/humidity sensor over I2C.
// The bus is shared with the display and owned by the caller; Close here is a
// no-op.
type DHT20 struct {
	dev i2c.Dev
}

// NewDHT20 creates a reader on the given bus and initializes the sensor if
// its calibrated bit is clear.
func NewDHT20(bus i2c.Bus, addr uint16) (*DHT20, error) {
	if addr == 0 {
		addr = DHT20Addr
	}
	d := &DHT20{dev: i2c.Dev{Bus: bus, Addr: addr}}

	status := []byte{0}
	if err := d.dev.Tx([]byte{cmdStatus}, status); err != nil {
		return nil, fmt.Errorf("dht20 status: %w", err)
	}
	if status[0]&statusCalibrated == 0 {
		if err := d.dev.Tx([]byte{cmdInitialize, 0x08, 0x00}, nil); err != nil {
			return nil, fmt.Errorf("dht20 init: %w", err)
		}
		time.Sleep(10 * time.Millisecond)
	}
	return d, nil
}

// Read triggers one measurement and collects it after the fixed conversion
// time. The wait is bounded and small relative to the sample interval, so the
// control loop is delayed but never starved.
func (d *DHT20) Read() (float64, float64, error) {
	if err := d.dev.Tx([]byte{cmdTrigger, 0x33, 0x00}, nil); err != nil {
		return 0, 0, fmt.Errorf("dht20 trigger: %w", err)
	}
	time.Sleep(conversionTime)

	buf := make([]byte, 7)
	if err := d.dev.Tx(nil, buf); err != nil {
		return 0, 0, fmt.Errorf("dht20 read: %w", err)
	}
	if buf[0]&statusBusy != 0 {
		return 0, 0, fmt.Errorf("dht20: measurement not ready")
	}
	if crc8(buf[:6]) != buf[6] {
		return 0, 0, fmt.Errorf("dht20: crc mismatch")
	}

	rawHum := uint32(buf[1])<<12 | uint32(buf[2])<<4 | uint32(buf[3])>>4
	rawTemp := uint32(buf[3]&0x0F)<<16 | uint32(buf[4])<<8 | uint32(buf[5])

	hum := float64(rawHum) * 100.0 / (1 << 20)
	temp := float64(rawTemp)*200.0/(1<<20) - 50.0
	return temp, hum, nil
}

// Close is a no-op; the shared I2C bus is closed by the caller.
func (d *DHT20) Close() error {
	return nil
}

// crc8 is the DHT20's CRC (poly 0x31, init 0xFF) over the status and data
// bytes.
func crc8(data []byte) byte {
	crc := byte(0xFF)
	for _, b := range data {
		crc ^= b
		for i := 0; i < 8; i++ {
			if crc&0x80 != 0 {
				crc = crc<<1 ^ 0x31
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
