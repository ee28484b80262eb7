package main

import (
	"testing"
	"time"

	"gotest.tools/assert"
)

func TestPanelLedBatchFlush(t *testing.T) {
	rt, clock, comms := testRuntime()
	panel := rt.panel.(*logPanel)

	go runPanel(rt)
	clock.BlockUntil(1)

	comms.panel <- setLedEffect(0, 3, 3, true)
	comms.panel <- setLedEffect(1, 11, 0, true)
	comms.panel <- setLedEffect(0, 0, 7, true)
	comms.panel <- setLedEffect(0, 0, 7, false)

	clock.Advance(dPanelSleep)
	clock.BlockUntil(1)

	assert.Equal(t, panel.GetLed(0, 3, 3), true)
	assert.Equal(t, panel.GetLed(1, 11, 0), true)
	assert.Equal(t, panel.GetLed(0, 0, 7), false)
	// one flush covers the whole batch
	assert.Equal(t, panel.shows(), 1)

	assert.Equal(t, panel.Grid(0)[3], uint16(0x08))
	assert.Equal(t, panel.Grid(1)[0], uint16(0x800))

	testQuit(rt)
}

func TestPanelToggleEffect(t *testing.T) {
	rt, clock, comms := testRuntime()
	panel := rt.panel.(*logPanel)

	go runPanel(rt)
	clock.BlockUntil(1)

	comms.panel <- toggleLedEffect(1, 2, 2)
	clock.Advance(dPanelSleep)
	clock.BlockUntil(1)

	assert.Equal(t, panel.GetLed(1, 2, 2), true)
	assert.Equal(t, panel.shows(), 1)

	comms.panel <- toggleLedEffect(1, 2, 2)
	clock.Advance(dPanelSleep)
	clock.BlockUntil(1)

	assert.Equal(t, panel.GetLed(1, 2, 2), false)
	assert.Equal(t, panel.shows(), 2)

	testQuit(rt)
}

func TestPanelGridAndClear(t *testing.T) {
	rt, clock, comms := testRuntime()
	panel := rt.panel.(*logPanel)

	go runPanel(rt)
	clock.BlockUntil(1)

	comms.panel <- setGridEffect(0, []uint16{0xFFFF, 0, 0, 0, 0, 0, 0, 0x10})
	comms.panel <- setGridEffect(1, []uint16{0xFFFF})
	clock.Advance(dPanelSleep)
	clock.BlockUntil(1)

	// device 0 drives 8 rows, device 1 drives 16
	assert.Equal(t, panel.Grid(0)[0], uint16(0x00FF))
	assert.Equal(t, panel.Grid(0)[7], uint16(0x0010))
	assert.Equal(t, panel.Grid(1)[0], uint16(0xFFFF))

	comms.panel <- clearEffect(allDevices)
	clock.Advance(dPanelSleep)
	clock.BlockUntil(1)

	assert.Equal(t, panel.Grid(0)[0], uint16(0))
	assert.Equal(t, panel.Grid(1)[0], uint16(0))
	assert.Equal(t, panel.shows(), 2)

	testQuit(rt)
}

func TestPanelControlEffects(t *testing.T) {
	rt, clock, comms := testRuntime()
	panel := rt.panel.(*logPanel)

	go runPanel(rt)
	clock.BlockUntil(1)

	comms.panel <- brightnessEffect(allDevices, 20)
	comms.panel <- blinkEffect(1, 2)
	comms.panel <- powerEffect(0, false)
	comms.panel <- dumpEffect(true)
	clock.Advance(dPanelSleep)
	clock.BlockUntil(1)

	// none of these touch the LED buffer
	assert.Equal(t, panel.shows(), 0)
	assert.Equal(t, panel.debugDump, true)

	audit := panel.auditLog()
	assert.Assert(t, auditContains(audit, "Brightness 0 to 4"))
	assert.Assert(t, auditContains(audit, "Brightness 1 to 4"))
	assert.Assert(t, auditContains(audit, "Blink 1 to 2"))
	assert.Assert(t, auditContains(audit, "DisplayOn 0 to false"))

	testQuit(rt)
}

func TestPanelBadPayloadIgnored(t *testing.T) {
	rt, clock, comms := testRuntime()
	panel := rt.panel.(*logPanel)

	go runPanel(rt)
	clock.BlockUntil(1)

	comms.panel <- panelEffect{id: ePanelLed, val: "nope"}
	comms.panel <- panelEffect{id: 99}
	clock.Advance(dPanelSleep)
	clock.BlockUntil(1)

	assert.Equal(t, panel.shows(), 0)

	testQuit(rt)
}

func TestPanelQuitTurnsPanelsOff(t *testing.T) {
	rt, clock, comms := testRuntime()
	panel := rt.panel.(*logPanel)

	go runPanel(rt)
	clock.BlockUntil(1)

	close(comms.quit)
	clock.Advance(dPanelSleep)

	// wait for the worker to finish its shutdown writes
	for i := 0; i < 100; i++ {
		if auditContains(panel.auditLog(), "ClosePanel") {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	audit := panel.auditLog()
	assert.Assert(t, auditContains(audit, "DisplayOn 0 to false"))
	assert.Assert(t, auditContains(audit, "DisplayOn 1 to false"))
	assert.Assert(t, auditContains(audit, "ClosePanel"))
}
