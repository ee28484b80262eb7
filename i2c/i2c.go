package i2c

import (
	"errors"
	"fmt"
	"log"
	"os"
	"syscall"
)

// I2C is one bus line (/dev/i2c-N) shared by up to 8 chips.
// Transactions carry their own chip address, so a single handle
// serves every device on the line.
type I2C struct {
	fd     *os.File
	bus    int
	fd_sim bool

	// transaction state between BeginTransmission and EndTransmission
	txaddr uint8
	txbuf  []uint8
	intx   bool

	// sim mode keeps the write log around for tests
	audit []string
}

const (
	I2C_SLAVE = 0x0703
)

func logWrite(addr uint8, buf []uint8) string {
	msg := fmt.Sprintf("Write @ 0x%02x :", addr)
	for i := 0; i < len(buf); i++ {
		msg += fmt.Sprintf(" %02x", buf[i])
	}
	log.Println(msg)
	return msg
}

func logMsg(msg string) error {
	log.Println(msg)
	return nil
}

// open a connection to an i2c bus line
func Open(bus int, simulated bool) (*I2C, error) {
	if !simulated {
		f, err := os.OpenFile(fmt.Sprintf("/dev/i2c-%d", bus), os.O_RDWR, 0600)
		if err != nil {
			return nil, err
		}
		this := &I2C{fd: f, bus: bus, fd_sim: false}
		return this, nil
	}
	this := &I2C{fd: nil, bus: bus, fd_sim: true}
	return this, nil
}

func (this *I2C) Close() error {
	if this.fd_sim {
		return logMsg(fmt.Sprintf("Close: i2c-%d", this.bus))
	}
	return this.fd.Close()
}

// BeginTransmission starts queueing bytes for the chip at addr.
// Nothing hits the wire until EndTransmission.
func (this *I2C) BeginTransmission(addr uint8) {
	this.txaddr = addr
	this.txbuf = this.txbuf[:0]
	this.intx = true
}

// Write queues one byte on the open transaction.
func (this *I2C) Write(b uint8) {
	if !this.intx {
		return
	}
	this.txbuf = append(this.txbuf, b)
}

// EndTransmission selects the line and sends the queued bytes as a
// single write (one START/STOP on the wire).
func (this *I2C) EndTransmission() error {
	if !this.intx {
		return errors.New("EndTransmission without BeginTransmission")
	}
	this.intx = false

	if this.fd_sim {
		this.audit = append(this.audit, logWrite(this.txaddr, this.txbuf))
		return nil
	}

	// not MT safe for i2c
	if err := select_line(this, this.txaddr); err != nil {
		return err
	}
	_, err := this.fd.Write(this.txbuf)
	return err
}

// RequestFrom reads n bytes from the chip at addr.
func (this *I2C) RequestFrom(addr uint8, n int) ([]uint8, error) {
	buf := make([]uint8, n)
	if this.fd_sim {
		logMsg(fmt.Sprintf("Read  @ 0x%02x : %d bytes", addr, n))
		return buf, nil
	}

	if err := select_line(this, addr); err != nil {
		return nil, err
	}
	if _, err := this.fd.Read(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// Audit returns the simulated write log, oldest first.
func (this *I2C) Audit() []string {
	return this.audit
}

func select_line(this *I2C, addr uint8) error {
	if this.fd_sim {
		return logMsg(fmt.Sprintf("ioctl: I2C_SLAVE @ 0x%02x", addr))
	}
	return ioctl(this.fd.Fd(), I2C_SLAVE, uintptr(addr))
}

func ioctl(fd, cmd, arg uintptr) error {
	_, _, err := syscall.Syscall6(syscall.SYS_IOCTL, fd, cmd, arg, 0, 0, 0)
	if err != 0 {
		return err
	}
	return nil
}
