package ht16k33

// single backpacks came first; their callers never pass a device index
const singleStartupBrightness = 15

// Device is the single-chip view: a one-device Matrix with the index
// pinned to 0. Everything shares the Matrix logic.
type Device struct {
	m *Matrix
}

// NewDevice sets up a driver for a single chip at the default address.
func NewDevice(i2cDev Bus) *Device {
	m := NewMatrix(i2cDev, 1)
	m.SetStartupBrightness(singleStartupBrightness)
	return &Device{m: m}
}

// Matrix exposes the underlying driver for callers that outgrow the
// single-device view.
func (this *Device) Matrix() *Matrix {
	return this.m
}

func (this *Device) SetAddress(addr uint8) bool {
	return this.m.SetAddress(0, addr)
}

func (this *Device) SetDriverRows(rows int) {
	this.m.SetDriverRows(0, rows)
}

func (this *Device) SetStartupBrightness(level uint8) {
	this.m.SetStartupBrightness(level)
}

func (this *Device) DebugDump(on bool) {
	this.m.DebugDump(on)
}

func (this *Device) Begin() error {
	return this.m.Begin()
}

func (this *Device) SetLed(row int, col int, on bool) {
	this.m.SetLed(0, row, col, on)
}

func (this *Device) GetLed(row int, col int) bool {
	return this.m.GetLed(0, row, col)
}

func (this *Device) SetColumn(col int, word uint16) {
	this.m.SetColumn(0, col, word)
}

func (this *Device) Column(col int) uint16 {
	return this.m.Column(0, col)
}

func (this *Device) Clear() {
	this.m.Clear(0)
}

func (this *Device) SetBrightness(level uint8) error {
	return this.m.SetBrightness(0, level)
}

func (this *Device) Show() error {
	return this.m.Show(0)
}

func (this *Device) DisplayOn(on bool) error {
	return this.m.DisplayOn(0, on)
}

func (this *Device) SetBlinkRate(rate uint8) error {
	return this.m.SetBlinkRate(0, rate)
}

func (this *Device) SetRowInt(mode uint8) error {
	return this.m.SetRowInt(0, mode)
}

func (this *Device) ReadKeys() ([]uint16, error) {
	return this.m.ReadKeys(0)
}

func (this *Device) MaxRows() int {
	return this.m.MaxRows(0)
}

func (this *Device) MaxColumns() int {
	return this.m.MaxColumns()
}

func (this *Device) MaxLeds() int {
	return this.m.MaxLeds(0)
}
