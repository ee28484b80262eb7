package ht16k33

import (
	"errors"
	"testing"

	"gotest.tools/assert"
)

// recordBus captures transactions instead of touching hardware.
type recordBus struct {
	txaddr uint8
	tx     []uint8

	addrs  []uint8
	writes [][]uint8

	keyData  []uint8
	reqAddrs []uint8

	failAt int // fail this transaction index (0-based), -1 never
}

func newRecordBus() *recordBus {
	return &recordBus{failAt: -1}
}

func (rb *recordBus) BeginTransmission(addr uint8) {
	rb.txaddr = addr
	rb.tx = nil
}

func (rb *recordBus) Write(b uint8) {
	rb.tx = append(rb.tx, b)
}

func (rb *recordBus) EndTransmission() error {
	if rb.failAt >= 0 && len(rb.writes) == rb.failAt {
		return errors.New("bus write failed")
	}
	rb.addrs = append(rb.addrs, rb.txaddr)
	rb.writes = append(rb.writes, rb.tx)
	return nil
}

func (rb *recordBus) RequestFrom(addr uint8, n int) ([]uint8, error) {
	rb.reqAddrs = append(rb.reqAddrs, addr)
	buf := make([]uint8, n)
	copy(buf, rb.keyData)
	return buf, nil
}

func (rb *recordBus) lastWrite() []uint8 {
	if len(rb.writes) == 0 {
		return nil
	}
	return rb.writes[len(rb.writes)-1]
}

func (rb *recordBus) reset() {
	rb.addrs = nil
	rb.writes = nil
	rb.reqAddrs = nil
}

func setup(t *testing.T, devs int) (*Matrix, *recordBus) {
	rb := newRecordBus()
	m := NewMatrix(rb, devs)
	assert.NilError(t, m.Begin())
	rb.reset()
	return m, rb
}

func TestNewMatrixClampsDevices(t *testing.T) {
	rb := newRecordBus()

	m := NewMatrix(rb, 0)
	assert.Equal(t, m.Devices(), 1)

	m = NewMatrix(rb, 12)
	assert.Equal(t, m.Devices(), 8)

	m = NewMatrix(rb, 3)
	assert.Equal(t, m.Devices(), 3)
	for i := 0; i < 3; i++ {
		assert.Equal(t, m.Address(i), uint8(0x70+i))
		assert.Equal(t, m.MaxRows(i), 8)
	}
	assert.Equal(t, m.MaxColumns(), 8)
}

func TestSetGetLedRoundtrip(t *testing.T) {
	m, _ := setup(t, 1)

	m.SetLed(0, 3, 3, true)
	assert.Equal(t, m.GetLed(0, 3, 3), true)
	assert.Equal(t, m.GetLed(0, 3, 4), false)
	assert.Equal(t, m.GetLed(0, 4, 3), false)

	m.SetLed(0, 3, 3, false)
	assert.Equal(t, m.GetLed(0, 3, 3), false)
}

func TestSetLedIgnoresOutOfRange(t *testing.T) {
	m, rb := setup(t, 1)

	m.SetLed(1, 0, 0, true)  // no such device
	m.SetLed(-1, 0, 0, true)
	m.SetLed(0, 8, 0, true) // row past the 8 active rows
	m.SetLed(0, -1, 0, true)
	m.SetLed(0, 0, 8, true) // column past the 8 columns
	m.SetLed(0, 0, -1, true)

	assert.NilError(t, m.Show(0))
	expected := make([]uint8, 17)
	assert.DeepEqual(t, rb.lastWrite(), expected)
}

func TestRowBoundsFollowDriverRows(t *testing.T) {
	rb := newRecordBus()
	m := NewMatrix(rb, 1)
	m.SetDriverRows(0, 16)
	assert.NilError(t, m.Begin())

	m.SetLed(0, 12, 0, true)
	assert.Equal(t, m.GetLed(0, 12, 0), true)
}

func TestColumnMasksInactiveRows(t *testing.T) {
	rb := newRecordBus()
	m := NewMatrix(rb, 2)
	m.SetDriverRows(1, 16)
	assert.NilError(t, m.Begin())

	m.SetColumn(0, 2, 0xFFFF)
	assert.Equal(t, m.Column(0, 2), uint16(0x00FF))

	m.SetColumn(1, 2, 0xFFFF)
	assert.Equal(t, m.Column(1, 2), uint16(0xFFFF))

	// out of range goes nowhere
	m.SetColumn(0, 8, 0xFFFF)
	m.SetColumn(2, 0, 0xFFFF)
	assert.Equal(t, m.Column(0, 8), uint16(0))
	assert.Equal(t, m.Column(2, 0), uint16(0))
}

func TestInertBeforeBegin(t *testing.T) {
	rb := newRecordBus()
	m := NewMatrix(rb, 2)

	// nothing allocated yet, nothing should move
	m.SetLed(0, 1, 1, true)
	assert.Equal(t, m.GetLed(0, 1, 1), false)
	m.Clear(0)
	m.ClearAll()
	assert.NilError(t, m.Show(0))
	assert.NilError(t, m.ShowAll())
	assert.Equal(t, len(rb.writes), 0)
}

func TestClearLeavesOtherDevicesAlone(t *testing.T) {
	m, _ := setup(t, 2)

	m.SetLed(0, 2, 5, true)
	m.SetLed(1, 2, 5, true)

	m.Clear(1)
	assert.Equal(t, m.GetLed(0, 2, 5), true)
	assert.Equal(t, m.GetLed(1, 2, 5), false)

	m.SetLed(1, 2, 5, true)
	m.ClearAll()
	assert.Equal(t, m.GetLed(0, 2, 5), false)
	assert.Equal(t, m.GetLed(1, 2, 5), false)
}

func TestSetAddress(t *testing.T) {
	rb := newRecordBus()
	m := NewMatrix(rb, 2)

	assert.Equal(t, m.SetAddress(0, 0x72), true)
	assert.Equal(t, m.Address(0), uint8(0x72))

	assert.Equal(t, m.SetAddress(2, 0x70), false)
	assert.Equal(t, m.SetAddress(-1, 0x70), false)
	assert.Equal(t, m.SetAddress(0, 0x6F), false)
	assert.Equal(t, m.SetAddress(0, 0x78), false)
	// failures leave the last good address in place
	assert.Equal(t, m.Address(0), uint8(0x72))

	assert.NilError(t, m.Begin())
	assert.Equal(t, rb.addrs[0], uint8(0x72))
}

func TestSetDriverRows(t *testing.T) {
	rb := newRecordBus()
	m := NewMatrix(rb, 1)

	m.SetDriverRows(0, 12)
	assert.Equal(t, m.MaxRows(0), 12)
	assert.Equal(t, m.MaxLeds(0), 96)

	m.SetDriverRows(0, 16)
	assert.Equal(t, m.MaxRows(0), 16)
	assert.Equal(t, m.MaxLeds(0), 128)

	// bad row counts and bad devices change nothing
	m.SetDriverRows(0, 9)
	m.SetDriverRows(0, 0)
	m.SetDriverRows(0, 17)
	m.SetDriverRows(1, 8)
	assert.Equal(t, m.MaxRows(0), 16)
	assert.Equal(t, m.MaxRows(1), 0)
}

func TestBrightnessWrapsThroughNibble(t *testing.T) {
	m, rb := setup(t, 1)

	assert.NilError(t, m.SetBrightness(0, 3))
	assert.DeepEqual(t, rb.lastWrite(), []uint8{0xE3})

	assert.NilError(t, m.SetBrightness(0, 20))
	assert.DeepEqual(t, rb.lastWrite(), []uint8{0xE4})

	assert.NilError(t, m.SetBrightness(0, 255))
	assert.DeepEqual(t, rb.lastWrite(), []uint8{0xEF})

	// bad device is quietly skipped
	assert.NilError(t, m.SetBrightness(5, 1))
	assert.Equal(t, len(rb.writes), 3)
}

func TestBrightnessAllHitsEveryDevice(t *testing.T) {
	m, rb := setup(t, 2)

	assert.NilError(t, m.SetBrightnessAll(7))
	assert.Equal(t, len(rb.writes), 2)
	assert.Equal(t, rb.addrs[0], uint8(0x70))
	assert.Equal(t, rb.addrs[1], uint8(0x71))
	assert.DeepEqual(t, rb.writes[0], []uint8{0xE7})
	assert.DeepEqual(t, rb.writes[1], []uint8{0xE7})
}

func TestBeginSequence(t *testing.T) {
	rb := newRecordBus()
	m := NewMatrix(rb, 1)
	assert.NilError(t, m.Begin())

	// oscillator, display setup, dimming, RAM push
	assert.Equal(t, len(rb.writes), 4)
	assert.DeepEqual(t, rb.writes[0], []uint8{0x21})
	assert.DeepEqual(t, rb.writes[1], []uint8{0x81})
	assert.DeepEqual(t, rb.writes[2], []uint8{0xE8})
	assert.DeepEqual(t, rb.writes[3], make([]uint8, 17))
	for _, addr := range rb.addrs {
		assert.Equal(t, addr, uint8(0x70))
	}
}

func TestBeginWalksDevicesInOrder(t *testing.T) {
	rb := newRecordBus()
	m := NewMatrix(rb, 2)
	m.SetStartupBrightness(2)
	assert.NilError(t, m.Begin())

	assert.Equal(t, len(rb.writes), 8)
	for i := 0; i < 4; i++ {
		assert.Equal(t, rb.addrs[i], uint8(0x70))
	}
	for i := 4; i < 8; i++ {
		assert.Equal(t, rb.addrs[i], uint8(0x71))
	}
	assert.DeepEqual(t, rb.writes[2], []uint8{0xE2})
	assert.DeepEqual(t, rb.writes[6], []uint8{0xE2})
}

func TestBeginAgainStartsClean(t *testing.T) {
	m, rb := setup(t, 1)

	m.SetLed(0, 3, 3, true)
	assert.NilError(t, m.Begin())

	assert.Equal(t, m.GetLed(0, 3, 3), false)
	assert.Equal(t, len(rb.writes), 4)
	assert.DeepEqual(t, rb.lastWrite(), make([]uint8, 17))
}

func TestShowBytes(t *testing.T) {
	m, rb := setup(t, 1)

	m.SetLed(0, 3, 3, true)
	assert.NilError(t, m.Show(0))

	expected := make([]uint8, 17)
	expected[0] = 0x00 // RAM address
	expected[1+3*2] = 0x08
	assert.Equal(t, len(rb.writes), 1)
	assert.Equal(t, rb.addrs[0], uint8(0x70))
	assert.DeepEqual(t, rb.lastWrite(), expected)
}

func TestTwoDeviceWordLayout(t *testing.T) {
	rb := newRecordBus()
	m := NewMatrix(rb, 2)
	m.SetDriverRows(1, 16)
	assert.NilError(t, m.Begin())
	rb.reset()

	m.SetLed(0, 3, 3, true)
	m.SetLed(1, 11, 0, true)

	assert.NilError(t, m.ShowAll())
	assert.Equal(t, len(rb.writes), 2)

	dev0 := make([]uint8, 17)
	dev0[1+3*2] = 0x08 // word 3 = 8
	assert.DeepEqual(t, rb.writes[0], dev0)

	dev1 := make([]uint8, 17)
	dev1[1+0*2+1] = 0x08 // word 8 = 2048, high byte
	assert.DeepEqual(t, rb.writes[1], dev1)
	assert.Equal(t, rb.addrs[1], uint8(0x71))
}

func TestDisplayOnOffKeepsBlink(t *testing.T) {
	m, rb := setup(t, 1)

	assert.NilError(t, m.SetBlinkRate(0, BLINK_1HZ))
	assert.DeepEqual(t, rb.lastWrite(), []uint8{0x85})

	assert.NilError(t, m.DisplayOn(0, false))
	assert.DeepEqual(t, rb.lastWrite(), []uint8{0x80})

	assert.NilError(t, m.DisplayOn(0, true))
	assert.DeepEqual(t, rb.lastWrite(), []uint8{0x85})
}

func TestBlinkRateValidation(t *testing.T) {
	m, rb := setup(t, 1)

	assert.NilError(t, m.SetBlinkRate(0, BLINK_2HZ))
	assert.DeepEqual(t, rb.lastWrite(), []uint8{0x83})

	err := m.SetBlinkRate(0, 4)
	assert.Error(t, err, "Bad blink rate: 4")
	assert.Equal(t, len(rb.writes), 1)

	// bad device is quietly skipped
	assert.NilError(t, m.SetBlinkRate(3, BLINK_2HZ))
	assert.Equal(t, len(rb.writes), 1)
}

func TestRowIntModes(t *testing.T) {
	m, rb := setup(t, 1)

	assert.NilError(t, m.SetRowInt(0, ROWINT_INT_LOW))
	assert.DeepEqual(t, rb.lastWrite(), []uint8{0xA1})

	assert.NilError(t, m.SetRowInt(0, ROWINT_INT_HIGH))
	assert.DeepEqual(t, rb.lastWrite(), []uint8{0xA3})

	assert.NilError(t, m.SetRowInt(0, ROWINT_ROW))
	assert.DeepEqual(t, rb.lastWrite(), []uint8{0xA0})

	err := m.SetRowInt(0, 2)
	assert.Error(t, err, "Bad ROW/INT mode: 2")
	assert.Equal(t, len(rb.writes), 3)
}

func TestReadKeys(t *testing.T) {
	m, rb := setup(t, 1)
	rb.keyData = []uint8{0x01, 0x00, 0x00, 0x08, 0xFF, 0x1F}

	words, err := m.ReadKeys(0)
	assert.NilError(t, err)
	assert.DeepEqual(t, words, []uint16{0x0001, 0x0800, 0x1FFF})

	// the scan starts with a pointer write to the key RAM
	assert.DeepEqual(t, rb.lastWrite(), []uint8{0x40})
	assert.Equal(t, len(rb.reqAddrs), 1)
	assert.Equal(t, rb.reqAddrs[0], uint8(0x70))

	_, err = m.ReadKeys(1)
	assert.Error(t, err, "Bad device: 1")
}

func TestBusErrorSurfaces(t *testing.T) {
	rb := newRecordBus()
	rb.failAt = 0
	m := NewMatrix(rb, 1)

	err := m.Begin()
	assert.Error(t, err, "bus write failed")
}

func TestSingleDeviceFacade(t *testing.T) {
	rb := newRecordBus()
	d := NewDevice(rb)
	assert.NilError(t, d.Begin())

	// single backpacks start at full brightness
	assert.DeepEqual(t, rb.writes[2], []uint8{0xEF})
	rb.reset()

	d.SetLed(3, 3, true)
	assert.Equal(t, d.GetLed(3, 3), true)
	assert.NilError(t, d.Show())

	expected := make([]uint8, 17)
	expected[1+3*2] = 0x08
	assert.DeepEqual(t, rb.lastWrite(), expected)

	assert.Equal(t, d.SetAddress(0x75), true)
	assert.Equal(t, d.Matrix().Address(0), uint8(0x75))
	assert.Equal(t, d.MaxRows(), 8)
	assert.Equal(t, d.MaxColumns(), 8)
	assert.Equal(t, d.MaxLeds(), 64)
}
