// Package ht16k33 drives one or more Holtek HT16K33 LED controllers
// sharing a two-wire bus. LED state lives in a local buffer; nothing
// reaches the chips until an explicit Show.
package ht16k33

import (
	"fmt"
	"log"
)

// commands we support
// OSC on/off 0/1
const i2c_OSC_CMD = 0x20
const i2c_OSC_ON = 0x21
const i2c_OSC_OFF = 0x20

// display on/off and 2 "blink" bits in position 2+1
const i2cDISPLAY_CMD = 0x80
const i2cDISPLAY_ON = 0x81
const i2cDISPLAY_OFF = 0x80

// display RAM starts at address 0
const i2cRAM_CMD = 0x00

// key scan RAM, 6 bytes from 0x40
const i2cKEYS_CMD = 0x40

// ROW/INT pin function
const i2cROWINT_CMD = 0xA0

// 0x0 -> 0xF brightness levels
const i2cBRIGHTNESS_CMD = 0xE0
const i2cBRIGHTNESS_MAX = 0xEF
const i2cBRIGHTNESS_MIN = 0xE0

// export blink positions
const BLINK_OFF = 0
const BLINK_2HZ = 1
const BLINK_1HZ = 2
const BLINK_HALFHZ = 3

// ROW/INT modes: drive rows, or drive the INT line on a key press
const ROWINT_ROW = 0
const ROWINT_INT_LOW = 1
const ROWINT_INT_HIGH = 3

// chips answer on 0x70 + the 3 solder-selected address bits
const MAX_DEVICES = 8
const BASE_ADDRESS = 0x70

// every device owns 8 RAM words, one per column
const MAX_ROWS = 16
const NUM_COLUMNS = 8

const DEFAULT_BRIGHTNESS = 8

// key scan RAM is 3 words of 13 key bits
const KEY_WORDS = 3
const KEY_COLUMNS = 13

// Bus is the two-wire transport under the driver. i2c.I2C implements
// it for /dev/i2c-N and for simulated mode; tests use a recorder.
type Bus interface {
	BeginTransmission(addr uint8)
	Write(b uint8)
	EndTransmission() error
	RequestFrom(addr uint8, n int) ([]uint8, error)
}

// Matrix drives devs chips as one LED surface. The buffer stays nil
// until Begin, and every buffer operation is a no-op until then.
type Matrix struct {
	i2cDev Bus
	devs   int
	addrs  [MAX_DEVICES]uint8
	rows   [MAX_DEVICES]int
	buffer []uint16

	startupBrightness uint8
	blink             [MAX_DEVICES]uint8
	on                [MAX_DEVICES]bool
	dump              bool
}

// NewMatrix sets up a driver for devs chips with default addressing
// (0x70+index) and 8 active rows each. devs is clamped to [1,8].
func NewMatrix(i2cDev Bus, devs int) *Matrix {
	if devs < 1 {
		devs = 1
	}
	if devs > MAX_DEVICES {
		devs = MAX_DEVICES
	}

	this := &Matrix{
		i2cDev:            i2cDev,
		devs:              devs,
		startupBrightness: DEFAULT_BRIGHTNESS,
	}
	for i := 0; i < MAX_DEVICES; i++ {
		this.addrs[i] = BASE_ADDRESS + uint8(i)
		this.rows[i] = 8
		this.blink[i] = BLINK_OFF
	}
	return this
}

// SetAddress records a bus address for one device. It reports failure
// for a bad device index or an address off the 0x70..0x77 page.
// Call it before Begin.
func (this *Matrix) SetAddress(dev int, addr uint8) bool {
	if dev < 0 || dev >= this.devs {
		return false
	}
	if addr < BASE_ADDRESS || addr > BASE_ADDRESS+MAX_DEVICES-1 {
		return false
	}
	this.addrs[dev] = addr
	return true
}

// SetDriverRows picks the chip package variant: 8, 12 or 16 driven
// rows. Anything else is ignored. Call it before Begin.
func (this *Matrix) SetDriverRows(dev int, rows int) {
	if dev < 0 || dev >= this.devs {
		return
	}
	if rows != 8 && rows != 12 && rows != 16 {
		return
	}
	this.rows[dev] = rows
}

// SetStartupBrightness overrides the dimming level Begin programs.
func (this *Matrix) SetStartupBrightness(level uint8) {
	this.startupBrightness = level
}

// DebugDump makes every Show log an ASCII picture of the device.
func (this *Matrix) DebugDump(on bool) {
	this.dump = on
}

// Begin allocates the zeroed LED buffer and walks the devices in
// index order: oscillator on, display on with blink off, startup
// brightness, then a cleared RAM push. Calling it again re-runs the
// whole sequence on a fresh buffer.
func (this *Matrix) Begin() error {
	this.buffer = make([]uint16, NUM_COLUMNS*this.devs)

	for dev := 0; dev < this.devs; dev++ {
		this.i2cDev.BeginTransmission(this.addrs[dev])
		this.i2cDev.Write(i2c_OSC_ON)
		if err := this.i2cDev.EndTransmission(); err != nil {
			return err
		}

		this.blink[dev] = BLINK_OFF
		this.on[dev] = true
		if err := this.writeSetup(dev); err != nil {
			return err
		}

		if err := this.SetBrightness(dev, this.startupBrightness); err != nil {
			return err
		}

		this.Clear(dev)
		if err := this.Show(dev); err != nil {
			return err
		}
	}
	return nil
}

// SetLed flips one LED in the buffer. Out-of-range indices (including
// rows past the device's active row count) do nothing.
func (this *Matrix) SetLed(dev int, row int, col int, on bool) {
	if this.buffer == nil || dev < 0 || dev >= this.devs {
		return
	}
	if row < 0 || row >= this.rows[dev] || col < 0 || col >= NUM_COLUMNS {
		return
	}
	if on {
		this.buffer[wordIndex(dev, col)] |= 1 << uint(row)
	} else {
		this.buffer[wordIndex(dev, col)] &^= 1 << uint(row)
	}
}

// GetLed reads one LED back from the buffer; false for anything out
// of range or before Begin.
func (this *Matrix) GetLed(dev int, row int, col int) bool {
	if this.buffer == nil || dev < 0 || dev >= this.devs {
		return false
	}
	if row < 0 || row >= this.rows[dev] || col < 0 || col >= NUM_COLUMNS {
		return false
	}
	return this.buffer[wordIndex(dev, col)]&(1<<uint(row)) != 0
}

// SetColumn replaces one column word in the buffer. Bits past the
// device's active row count are masked off. Out-of-range indices do
// nothing.
func (this *Matrix) SetColumn(dev int, col int, word uint16) {
	if this.buffer == nil || dev < 0 || dev >= this.devs {
		return
	}
	if col < 0 || col >= NUM_COLUMNS {
		return
	}
	mask := uint16((1 << uint(this.rows[dev])) - 1)
	this.buffer[wordIndex(dev, col)] = word & mask
}

// Column reads one column word back; zero for anything out of range
// or before Begin.
func (this *Matrix) Column(dev int, col int) uint16 {
	if this.buffer == nil || dev < 0 || dev >= this.devs {
		return 0
	}
	if col < 0 || col >= NUM_COLUMNS {
		return 0
	}
	return this.buffer[wordIndex(dev, col)]
}

// Clear zeroes one device's words in the buffer. The chip keeps
// showing the old state until Show.
func (this *Matrix) Clear(dev int) {
	if this.buffer == nil || dev < 0 || dev >= this.devs {
		return
	}
	for col := 0; col < NUM_COLUMNS; col++ {
		this.buffer[wordIndex(dev, col)] = 0
	}
}

// ClearAll zeroes the whole buffer.
func (this *Matrix) ClearAll() {
	for dev := 0; dev < this.devs; dev++ {
		this.Clear(dev)
	}
}

// SetBrightness programs one device's dimming level. The chip takes
// 16 steps, so the level wraps through the low nibble.
func (this *Matrix) SetBrightness(dev int, level uint8) error {
	if dev < 0 || dev >= this.devs {
		return nil
	}
	this.i2cDev.BeginTransmission(this.addrs[dev])
	this.i2cDev.Write(i2cBRIGHTNESS_CMD | (level & 0x0F))
	return this.i2cDev.EndTransmission()
}

// SetBrightnessAll programs every device to the same level.
func (this *Matrix) SetBrightnessAll(level uint8) error {
	for dev := 0; dev < this.devs; dev++ {
		if err := this.SetBrightness(dev, level); err != nil {
			return err
		}
	}
	return nil
}

// Show pushes one device's buffer words to its RAM in a single
// transaction: the RAM address, then each word low byte first.
func (this *Matrix) Show(dev int) error {
	if this.buffer == nil || dev < 0 || dev >= this.devs {
		return nil
	}
	if this.dump {
		this.dumpDevice(dev)
	}

	this.i2cDev.BeginTransmission(this.addrs[dev])
	this.i2cDev.Write(i2cRAM_CMD)
	for col := 0; col < NUM_COLUMNS; col++ {
		word := this.buffer[wordIndex(dev, col)]
		this.i2cDev.Write(uint8(word & 0xFF))
		this.i2cDev.Write(uint8(word >> 8))
	}
	return this.i2cDev.EndTransmission()
}

// ShowAll pushes every device, one transaction each.
func (this *Matrix) ShowAll() error {
	for dev := 0; dev < this.devs; dev++ {
		if err := this.Show(dev); err != nil {
			return err
		}
	}
	return nil
}

// DisplayOn drives the display out of or into standby. Blink state is
// preserved across off/on.
func (this *Matrix) DisplayOn(dev int, on bool) error {
	if dev < 0 || dev >= this.devs {
		return nil
	}
	this.on[dev] = on
	return this.writeSetup(dev)
}

// SetBlinkRate picks one of the chip blink dividers: BLINK_OFF,
// BLINK_2HZ, BLINK_1HZ or BLINK_HALFHZ.
func (this *Matrix) SetBlinkRate(dev int, rate uint8) error {
	if dev < 0 || dev >= this.devs {
		return nil
	}
	if rate > BLINK_HALFHZ {
		return fmt.Errorf("Bad blink rate: %d", rate)
	}
	this.blink[dev] = rate
	return this.writeSetup(dev)
}

// SetRowInt sets the ROW/INT pin function: row driver, or interrupt
// output with the given polarity.
func (this *Matrix) SetRowInt(dev int, mode uint8) error {
	if dev < 0 || dev >= this.devs {
		return nil
	}
	if mode != ROWINT_ROW && mode != ROWINT_INT_LOW && mode != ROWINT_INT_HIGH {
		return fmt.Errorf("Bad ROW/INT mode: %d", mode)
	}
	this.i2cDev.BeginTransmission(this.addrs[dev])
	this.i2cDev.Write(i2cROWINT_CMD | mode)
	return this.i2cDev.EndTransmission()
}

// ReadKeys fetches the 6-byte key scan RAM and returns it as 3 words,
// one per scan row, 13 key bits each.
func (this *Matrix) ReadKeys(dev int) ([]uint16, error) {
	if dev < 0 || dev >= this.devs {
		return nil, fmt.Errorf("Bad device: %d", dev)
	}

	this.i2cDev.BeginTransmission(this.addrs[dev])
	this.i2cDev.Write(i2cKEYS_CMD)
	if err := this.i2cDev.EndTransmission(); err != nil {
		return nil, err
	}

	raw, err := this.i2cDev.RequestFrom(this.addrs[dev], 2*KEY_WORDS)
	if err != nil {
		return nil, err
	}
	if len(raw) < 2*KEY_WORDS {
		return nil, fmt.Errorf("Short key read: %d bytes", len(raw))
	}

	words := make([]uint16, KEY_WORDS)
	for i := 0; i < KEY_WORDS; i++ {
		words[i] = uint16(raw[2*i]) | uint16(raw[2*i+1])<<8
	}
	return words, nil
}

func (this *Matrix) Devices() int {
	return this.devs
}

// MaxRows is the device's active row count; 0 for a bad index.
func (this *Matrix) MaxRows(dev int) int {
	if dev < 0 || dev >= this.devs {
		return 0
	}
	return this.rows[dev]
}

func (this *Matrix) MaxColumns() int {
	return NUM_COLUMNS
}

// MaxLeds is the device's LED capacity, rows times columns.
func (this *Matrix) MaxLeds(dev int) int {
	if dev < 0 || dev >= this.devs {
		return 0
	}
	return this.rows[dev] * NUM_COLUMNS
}

// Address is the device's configured bus address; 0 for a bad index.
func (this *Matrix) Address(dev int) uint8 {
	if dev < 0 || dev >= this.devs {
		return 0
	}
	return this.addrs[dev]
}

// writeSetup sends the display setup command from the stored on/blink
// state. Blink rate is bits 2 and 1 of the display command.
func (this *Matrix) writeSetup(dev int) error {
	var val uint8 = i2cDISPLAY_ON | (this.blink[dev] << 1)
	if !this.on[dev] {
		val = i2cDISPLAY_OFF
	}
	this.i2cDev.BeginTransmission(this.addrs[dev])
	this.i2cDev.Write(val)
	return this.i2cDev.EndTransmission()
}

func (this *Matrix) dumpDevice(dev int) {
	line := fmt.Sprintf("\ndevice %d @ 0x%02x\n", dev, this.addrs[dev])
	for row := 0; row < this.rows[dev]; row++ {
		for col := 0; col < NUM_COLUMNS; col++ {
			if this.buffer[wordIndex(dev, col)]&(1<<uint(row)) != 0 {
				line += " *"
			} else {
				line += " ."
			}
		}
		line += "\n"
	}
	log.Println(line)
}

func wordIndex(dev int, col int) int {
	return dev*NUM_COLUMNS + col
}
