package i2c

import (
	"testing"

	"gotest.tools/assert"
)

func setup(t *testing.T) *I2C {
	bus, err := Open(1, true) // set to false when on a PI
	assert.NilError(t, err)
	return bus
}

func TestSimTransaction(t *testing.T) {
	bus := setup(t)
	defer bus.Close()

	bus.BeginTransmission(0x70)
	bus.Write(0x00)
	bus.Write(0x08)
	bus.Write(0x00)
	err := bus.EndTransmission()
	assert.NilError(t, err)

	audit := bus.Audit()
	assert.Equal(t, len(audit), 1)
	assert.Equal(t, audit[0], "Write @ 0x70 : 00 08 00")
}

func TestSimTransactionsAreSeparate(t *testing.T) {
	bus := setup(t)
	defer bus.Close()

	bus.BeginTransmission(0x70)
	bus.Write(0x21)
	assert.NilError(t, bus.EndTransmission())

	bus.BeginTransmission(0x71)
	bus.Write(0x81)
	assert.NilError(t, bus.EndTransmission())

	audit := bus.Audit()
	assert.Equal(t, len(audit), 2)
	assert.Equal(t, audit[0], "Write @ 0x70 : 21")
	assert.Equal(t, audit[1], "Write @ 0x71 : 81")
}

func TestEndWithoutBegin(t *testing.T) {
	bus := setup(t)
	defer bus.Close()

	err := bus.EndTransmission()
	assert.Error(t, err, "EndTransmission without BeginTransmission")
}

func TestWriteOutsideTransactionIsDropped(t *testing.T) {
	bus := setup(t)
	defer bus.Close()

	bus.Write(0xFF)

	bus.BeginTransmission(0x70)
	bus.Write(0x21)
	assert.NilError(t, bus.EndTransmission())

	audit := bus.Audit()
	assert.Equal(t, audit[len(audit)-1], "Write @ 0x70 : 21")
}

func TestSimRequestFrom(t *testing.T) {
	bus := setup(t)
	defer bus.Close()

	buf, err := bus.RequestFrom(0x70, 6)
	assert.NilError(t, err)
	assert.Equal(t, len(buf), 6)
	for i := 0; i < len(buf); i++ {
		assert.Equal(t, buf[i], uint8(0))
	}
}
