package main

import (
	"fmt"
	"sync"

	"dscheirer.com/ledpanel/ht16k33"
)

// logPanel mirrors the panel state in memory and keeps an audit of
// operations; it backs no_display runs and the worker tests.
type logPanel struct {
	devices    int
	rows       []int
	grids      [][]uint16
	brightness []uint8
	on         []bool
	blink      []uint8
	rowInt     []uint8
	keys       [][]uint16
	debugDump  bool
	showCount  int
	audit      []string
	disableLog bool
	logger     flogger
	mutex      sync.Mutex
}

func (ll *logPanel) log(format string, v ...interface{}) {
	entry := fmt.Sprintf(format, v...)
	if !ll.disableLog {
		ll.logger.Println(entry)
	}
	ll.audit = append(ll.audit, entry)
}

func (ll *logPanel) OpenPanel(settings configSettings) error {
	ll.mutex.Lock()
	defer ll.mutex.Unlock()

	panels := settings.GetPanels()
	ll.devices = len(panels)
	ll.rows = make([]int, ll.devices)
	ll.grids = make([][]uint16, ll.devices)
	ll.brightness = make([]uint8, ll.devices)
	ll.on = make([]bool, ll.devices)
	ll.blink = make([]uint8, ll.devices)
	ll.rowInt = make([]uint8, ll.devices)
	ll.keys = make([][]uint16, ll.devices)

	for i, p := range panels {
		ll.rows[i] = p.rows
		ll.grids[i] = make([]uint16, ht16k33.NUM_COLUMNS)
		ll.brightness[i] = settings.GetByte(sBright) & 0x0F
		ll.on[i] = true
		ll.blink[i] = settings.GetByte(sBlink)
		ll.keys[i] = make([]uint16, ht16k33.KEY_WORDS)
	}

	ll.debugDump = settings.GetBool(sDebug)
	ll.showCount = 0
	ll.audit = []string{}
	if ll.logger == nil {
		ll.logger = &ThreadLogger{name: "Panel"}
	}
	return nil
}

func (ll *logPanel) ClosePanel() {
	ll.mutex.Lock()
	defer ll.mutex.Unlock()
	ll.log("ClosePanel")
}

func (ll *logPanel) DebugDump(on bool) {
	ll.mutex.Lock()
	defer ll.mutex.Unlock()
	ll.debugDump = on
}

func (ll *logPanel) badLed(dev int, row int, col int) bool {
	if dev < 0 || dev >= ll.devices {
		return true
	}
	return row < 0 || row >= ll.rows[dev] || col < 0 || col >= ht16k33.NUM_COLUMNS
}

func (ll *logPanel) SetLed(dev int, row int, col int, on bool) {
	ll.mutex.Lock()
	defer ll.mutex.Unlock()
	if ll.badLed(dev, row, col) {
		return
	}
	if on {
		ll.grids[dev][col] |= 1 << uint(row)
	} else {
		ll.grids[dev][col] &^= 1 << uint(row)
	}
	ll.log("Set LED %d/%d/%d to %v", dev, row, col, on)
}

func (ll *logPanel) GetLed(dev int, row int, col int) bool {
	ll.mutex.Lock()
	defer ll.mutex.Unlock()
	if ll.badLed(dev, row, col) {
		return false
	}
	return ll.grids[dev][col]&(1<<uint(row)) != 0
}

func (ll *logPanel) SetGrid(dev int, words []uint16) {
	ll.mutex.Lock()
	defer ll.mutex.Unlock()
	if dev < 0 || dev >= ll.devices {
		return
	}
	mask := uint16((1 << uint(ll.rows[dev])) - 1)
	for col, word := range words {
		if col >= ht16k33.NUM_COLUMNS {
			break
		}
		ll.grids[dev][col] = word & mask
	}
	ll.log("Grid %d", dev)
}

func (ll *logPanel) Grid(dev int) []uint16 {
	ll.mutex.Lock()
	defer ll.mutex.Unlock()
	if dev < 0 || dev >= ll.devices {
		return nil
	}
	words := make([]uint16, len(ll.grids[dev]))
	copy(words, ll.grids[dev])
	return words
}

func (ll *logPanel) Clear(dev int) {
	ll.mutex.Lock()
	defer ll.mutex.Unlock()
	if dev < 0 || dev >= ll.devices {
		return
	}
	for col := range ll.grids[dev] {
		ll.grids[dev][col] = 0
	}
	ll.log("Clear %d", dev)
}

func (ll *logPanel) ClearAll() {
	ll.mutex.Lock()
	defer ll.mutex.Unlock()
	for dev := range ll.grids {
		for col := range ll.grids[dev] {
			ll.grids[dev][col] = 0
		}
	}
	ll.log("ClearAll")
}

func (ll *logPanel) SetBrightness(dev int, b uint8) error {
	ll.mutex.Lock()
	defer ll.mutex.Unlock()
	if dev < 0 || dev >= ll.devices {
		return nil
	}
	// mirror the chip's 16 step wrap
	ll.brightness[dev] = b & 0x0F
	ll.log("Brightness %d to %d", dev, ll.brightness[dev])
	return nil
}

func (ll *logPanel) DisplayOn(dev int, on bool) error {
	ll.mutex.Lock()
	defer ll.mutex.Unlock()
	if dev < 0 || dev >= ll.devices {
		return nil
	}
	ll.on[dev] = on
	ll.log("DisplayOn %d to %v", dev, on)
	return nil
}

func (ll *logPanel) SetBlinkRate(dev int, r uint8) error {
	ll.mutex.Lock()
	defer ll.mutex.Unlock()
	if dev < 0 || dev >= ll.devices {
		return nil
	}
	if r > ht16k33.BLINK_HALFHZ {
		return fmt.Errorf("Bad blink rate: %d", r)
	}
	ll.blink[dev] = r
	ll.log("Blink %d to %d", dev, r)
	return nil
}

func (ll *logPanel) SetRowInt(dev int, mode uint8) error {
	ll.mutex.Lock()
	defer ll.mutex.Unlock()
	if dev < 0 || dev >= ll.devices {
		return nil
	}
	if mode != ht16k33.ROWINT_ROW && mode != ht16k33.ROWINT_INT_LOW && mode != ht16k33.ROWINT_INT_HIGH {
		return fmt.Errorf("Bad ROW/INT mode: %d", mode)
	}
	ll.rowInt[dev] = mode
	ll.log("RowInt %d to %d", dev, mode)
	return nil
}

func (ll *logPanel) Show(dev int) error {
	ll.mutex.Lock()
	defer ll.mutex.Unlock()
	if dev < 0 || dev >= ll.devices {
		return nil
	}
	ll.showCount++
	ll.log("Show %d", dev)
	return nil
}

func (ll *logPanel) ShowAll() error {
	ll.mutex.Lock()
	defer ll.mutex.Unlock()
	ll.showCount++
	ll.log("ShowAll")
	return nil
}

func (ll *logPanel) ReadKeys(dev int) ([]uint16, error) {
	ll.mutex.Lock()
	defer ll.mutex.Unlock()
	if dev < 0 || dev >= ll.devices {
		return nil, fmt.Errorf("Bad device: %d", dev)
	}
	words := make([]uint16, len(ll.keys[dev]))
	copy(words, ll.keys[dev])
	return words, nil
}

func (ll *logPanel) Devices() int {
	ll.mutex.Lock()
	defer ll.mutex.Unlock()
	return ll.devices
}

func (ll *logPanel) Rows(dev int) int {
	ll.mutex.Lock()
	defer ll.mutex.Unlock()
	if dev < 0 || dev >= ll.devices {
		return 0
	}
	return ll.rows[dev]
}

// test helpers

func (ll *logPanel) setKeys(dev int, words []uint16) {
	ll.mutex.Lock()
	defer ll.mutex.Unlock()
	if dev < 0 || dev >= ll.devices {
		return
	}
	copy(ll.keys[dev], words)
}

func (ll *logPanel) auditLog() []string {
	ll.mutex.Lock()
	defer ll.mutex.Unlock()
	out := make([]string, len(ll.audit))
	copy(out, ll.audit)
	return out
}

func (ll *logPanel) shows() int {
	ll.mutex.Lock()
	defer ll.mutex.Unlock()
	return ll.showCount
}

func (ll *logPanel) reset() {
	ll.mutex.Lock()
	defer ll.mutex.Unlock()
	ll.audit = []string{}
	ll.showCount = 0
}
