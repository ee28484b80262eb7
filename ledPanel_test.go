package main

import (
	"testing"

	"gotest.tools/assert"
)

func simPanelSettings() configSettings {
	s := defaultSettings()
	s.settings[sSim] = true
	s.settings[sPanels] = []panelMap{
		{address: 0x70, rows: 8},
		{address: 0x71, rows: 16},
	}
	return s
}

func TestLedPanelAgainstSimBus(t *testing.T) {
	lp := &ledPanel{}

	err := lp.OpenPanel(simPanelSettings())
	assert.NilError(t, err)
	defer lp.ClosePanel()

	assert.Equal(t, lp.Devices(), 2)
	assert.Equal(t, lp.Rows(0), 8)
	assert.Equal(t, lp.Rows(1), 16)

	lp.SetLed(0, 3, 3, true)
	lp.SetLed(1, 11, 0, true)
	assert.NilError(t, lp.ShowAll())

	assert.Equal(t, lp.GetLed(0, 3, 3), true)
	assert.Equal(t, lp.Grid(0)[3], uint16(8))
	assert.Equal(t, lp.Grid(1)[0], uint16(2048))

	audit := lp.bus.Audit()

	// startup writes
	assert.Assert(t, auditContains(audit, "Write @ 0x70 : 21"))
	assert.Assert(t, auditContains(audit, "Write @ 0x70 : 81"))
	assert.Assert(t, auditContains(audit, "Write @ 0x70 : e8"))
	assert.Assert(t, auditContains(audit, "Write @ 0x71 : 21"))

	// the two flushes, one RAM transaction per device
	assert.Assert(t, auditContains(audit,
		"Write @ 0x70 : 00 00 00 00 00 00 00 08 00 00 00 00 00 00 00 00 00"))
	assert.Assert(t, auditContains(audit,
		"Write @ 0x71 : 00 00 08 00 00 00 00 00 00 00 00 00 00 00 00 00 00"))
}

func TestLedPanelControls(t *testing.T) {
	lp := &ledPanel{}

	assert.NilError(t, lp.OpenPanel(simPanelSettings()))
	defer lp.ClosePanel()

	assert.NilError(t, lp.SetBrightness(0, 20))
	assert.NilError(t, lp.DisplayOn(1, false))
	assert.NilError(t, lp.SetBlinkRate(0, 2))

	words, err := lp.ReadKeys(1)
	assert.NilError(t, err)
	assert.Equal(t, len(words), 3)

	audit := lp.bus.Audit()
	// 20 wraps to dimming step 4
	assert.Assert(t, auditContains(audit, "Write @ 0x70 : e4"))
	// display off drops the blink bits too
	assert.Assert(t, auditContains(audit, "Write @ 0x71 : 80"))
	// 1Hz blink on an enabled display
	assert.Assert(t, auditContains(audit, "Write @ 0x70 : 85"))
	// key scan RAM fetch
	assert.Assert(t, auditContains(audit, "Write @ 0x71 : 40"))
}

func TestLedPanelClosedIsInert(t *testing.T) {
	lp := &ledPanel{}

	// never opened
	lp.SetLed(0, 0, 0, true)
	assert.Equal(t, lp.GetLed(0, 0, 0), false)
	assert.Equal(t, lp.Devices(), 0)
	assert.NilError(t, lp.ShowAll())
	assert.Assert(t, lp.Grid(0) == nil)
}
