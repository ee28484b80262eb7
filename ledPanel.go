package main

import (
	"sync"

	"dscheirer.com/ledpanel/ht16k33"
	"dscheirer.com/ledpanel/i2c"
)

// ledPanel drives the real chips. The panel worker writes and the API
// handlers read, so everything goes through the mutex.
type ledPanel struct {
	matrix *ht16k33.Matrix
	bus    *i2c.I2C
	mutex  sync.Mutex
}

func (lp *ledPanel) OpenPanel(settings configSettings) error {
	lp.mutex.Lock()
	defer lp.mutex.Unlock()

	bus, err := i2c.Open(settings.GetInt(sI2CBus), settings.GetBool(sSim))
	if err != nil {
		return err
	}
	lp.bus = bus

	panels := settings.GetPanels()
	matrix := ht16k33.NewMatrix(bus, len(panels))
	for i, p := range panels {
		if p.address != 0 {
			matrix.SetAddress(i, p.address)
		}
		matrix.SetDriverRows(i, p.rows)
	}
	matrix.SetStartupBrightness(settings.GetByte(sBright))

	if err := matrix.Begin(); err != nil {
		lp.bus.Close()
		lp.bus = nil
		return err
	}

	if blink := settings.GetByte(sBlink); blink != ht16k33.BLINK_OFF {
		for d := 0; d < matrix.Devices(); d++ {
			if err := matrix.SetBlinkRate(d, blink); err != nil {
				lp.bus.Close()
				lp.bus = nil
				return err
			}
		}
	}

	lp.matrix = matrix
	return nil
}

func (lp *ledPanel) ClosePanel() {
	lp.mutex.Lock()
	defer lp.mutex.Unlock()

	if lp.bus != nil {
		lp.bus.Close()
		lp.bus = nil
	}
	lp.matrix = nil
}

func (lp *ledPanel) DebugDump(on bool) {
	lp.mutex.Lock()
	defer lp.mutex.Unlock()
	if lp.matrix == nil {
		return
	}
	lp.matrix.DebugDump(on)
}

func (lp *ledPanel) SetLed(dev int, row int, col int, on bool) {
	lp.mutex.Lock()
	defer lp.mutex.Unlock()
	if lp.matrix == nil {
		return
	}
	lp.matrix.SetLed(dev, row, col, on)
}

func (lp *ledPanel) GetLed(dev int, row int, col int) bool {
	lp.mutex.Lock()
	defer lp.mutex.Unlock()
	if lp.matrix == nil {
		return false
	}
	return lp.matrix.GetLed(dev, row, col)
}

func (lp *ledPanel) SetGrid(dev int, words []uint16) {
	lp.mutex.Lock()
	defer lp.mutex.Unlock()
	if lp.matrix == nil {
		return
	}
	for col, word := range words {
		lp.matrix.SetColumn(dev, col, word)
	}
}

func (lp *ledPanel) Grid(dev int) []uint16 {
	lp.mutex.Lock()
	defer lp.mutex.Unlock()
	if lp.matrix == nil {
		return nil
	}
	words := make([]uint16, lp.matrix.MaxColumns())
	for col := range words {
		words[col] = lp.matrix.Column(dev, col)
	}
	return words
}

func (lp *ledPanel) Clear(dev int) {
	lp.mutex.Lock()
	defer lp.mutex.Unlock()
	if lp.matrix == nil {
		return
	}
	lp.matrix.Clear(dev)
}

func (lp *ledPanel) ClearAll() {
	lp.mutex.Lock()
	defer lp.mutex.Unlock()
	if lp.matrix == nil {
		return
	}
	lp.matrix.ClearAll()
}

func (lp *ledPanel) SetBrightness(dev int, b uint8) error {
	lp.mutex.Lock()
	defer lp.mutex.Unlock()
	if lp.matrix == nil {
		return nil
	}
	return lp.matrix.SetBrightness(dev, b)
}

func (lp *ledPanel) DisplayOn(dev int, on bool) error {
	lp.mutex.Lock()
	defer lp.mutex.Unlock()
	if lp.matrix == nil {
		return nil
	}
	return lp.matrix.DisplayOn(dev, on)
}

func (lp *ledPanel) SetBlinkRate(dev int, r uint8) error {
	lp.mutex.Lock()
	defer lp.mutex.Unlock()
	if lp.matrix == nil {
		return nil
	}
	return lp.matrix.SetBlinkRate(dev, r)
}

func (lp *ledPanel) SetRowInt(dev int, mode uint8) error {
	lp.mutex.Lock()
	defer lp.mutex.Unlock()
	if lp.matrix == nil {
		return nil
	}
	return lp.matrix.SetRowInt(dev, mode)
}

func (lp *ledPanel) Show(dev int) error {
	lp.mutex.Lock()
	defer lp.mutex.Unlock()
	if lp.matrix == nil {
		return nil
	}
	return lp.matrix.Show(dev)
}

func (lp *ledPanel) ShowAll() error {
	lp.mutex.Lock()
	defer lp.mutex.Unlock()
	if lp.matrix == nil {
		return nil
	}
	return lp.matrix.ShowAll()
}

func (lp *ledPanel) ReadKeys(dev int) ([]uint16, error) {
	lp.mutex.Lock()
	defer lp.mutex.Unlock()
	if lp.matrix == nil {
		return nil, nil
	}
	return lp.matrix.ReadKeys(dev)
}

func (lp *ledPanel) Devices() int {
	lp.mutex.Lock()
	defer lp.mutex.Unlock()
	if lp.matrix == nil {
		return 0
	}
	return lp.matrix.Devices()
}

func (lp *ledPanel) Rows(dev int) int {
	lp.mutex.Lock()
	defer lp.mutex.Unlock()
	if lp.matrix == nil {
		return 0
	}
	return lp.matrix.MaxRows(dev)
}
