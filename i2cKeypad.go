package main

import (
	"github.com/stianeikeland/go-rpio"

	"dscheirer.com/ledpanel/ht16k33"
)

// i2cKeypad reads switches wired into the HT16K33 key scanner.  An
// optional GPIO pin on the chips' INT line lets us skip the bus read
// when nothing is pending.
type i2cKeypad struct {
	keys    map[keyID]key
	devs    int
	intPin  rpio.Pin
	haveInt bool
}

func (this *i2cKeypad) getKeys() *map[keyID]key {
	return &this.keys
}

func (this *i2cKeypad) initKeypad(settings configSettings) error {
	this.keys = make(map[keyID]key)

	pin := settings.GetInt(sIntPin)
	if pin <= 0 {
		// no INT wiring, poll every scan
		return nil
	}

	if err := rpio.Open(); err != nil {
		return err
	}

	this.intPin = rpio.Pin(pin)
	this.intPin.Input()
	// INT is driven active low
	this.intPin.PullUp()
	this.haveInt = true

	return nil
}

func (this *i2cKeypad) setupKeys(rt runtimeConfig) error {
	devs := rt.settings.GetInt(sKeyDevs)
	if devs < 1 {
		devs = 1
	}
	if devs > rt.panel.Devices() {
		devs = rt.panel.Devices()
	}
	this.devs = devs

	if !this.haveInt {
		return nil
	}

	// scanned chips share the INT line
	for d := 0; d < this.devs; d++ {
		if err := rt.panel.SetRowInt(d, ht16k33.ROWINT_INT_LOW); err != nil {
			return err
		}
	}
	return nil
}

func (this *i2cKeypad) anyPressed() bool {
	for _, k := range this.keys {
		if k.state.pressed {
			return true
		}
	}
	return false
}

func (this *i2cKeypad) readKeys(rt runtimeConfig) (map[keyID]bool, error) {
	// a new press raises INT; releases do not, so keep scanning
	// while anything is still held down
	if this.haveInt && !this.anyPressed() && this.intPin.Read() == rpio.High {
		return map[keyID]bool{}, nil
	}

	states := make(map[keyID]bool)
	for d := 0; d < this.devs; d++ {
		words, err := rt.panel.ReadKeys(d)
		if err != nil {
			return nil, err
		}
		for r, word := range words {
			for c := 0; c < ht16k33.KEY_COLUMNS; c++ {
				states[keyID{dev: d, row: r, col: c}] = word&(1<<uint(c)) != 0
			}
		}
	}

	return states, nil
}

func (this *i2cKeypad) closeKeypad() {
	if this.haveInt {
		rpio.Close()
		this.haveInt = false
	}
}
