package main

import (
	"fmt"
)

// panel worker messages
type panelEffect struct {
	id  int
	val interface{}
}

const (
	ePanelLed = iota
	ePanelToggle
	ePanelGrid
	ePanelClear
	ePanelBrightness
	ePanelBlink
	ePanelPower
	ePanelDump
)

// dev == allDevices targets every chip on the bus
const allDevices = -1

type ledUpdate struct {
	dev int
	row int
	col int
	on  bool
}

type toggleUpdate struct {
	dev int
	row int
	col int
}

type gridUpdate struct {
	dev   int
	words []uint16
}

type brightnessUpdate struct {
	dev   int
	level uint8
}

type blinkUpdate struct {
	dev  int
	rate uint8
}

type powerUpdate struct {
	dev int
	on  bool
}

func init() {
	// runPanel wg
	wg.Add(1)
}

// channel messaging functions
func setLedEffect(dev int, row int, col int, on bool) panelEffect {
	return panelEffect{id: ePanelLed, val: ledUpdate{dev: dev, row: row, col: col, on: on}}
}

func toggleLedEffect(dev int, row int, col int) panelEffect {
	return panelEffect{id: ePanelToggle, val: toggleUpdate{dev: dev, row: row, col: col}}
}

func setGridEffect(dev int, words []uint16) panelEffect {
	return panelEffect{id: ePanelGrid, val: gridUpdate{dev: dev, words: words}}
}

func clearEffect(dev int) panelEffect {
	return panelEffect{id: ePanelClear, val: dev}
}

func brightnessEffect(dev int, level uint8) panelEffect {
	return panelEffect{id: ePanelBrightness, val: brightnessUpdate{dev: dev, level: level}}
}

func blinkEffect(dev int, rate uint8) panelEffect {
	return panelEffect{id: ePanelBlink, val: blinkUpdate{dev: dev, rate: rate}}
}

func powerEffect(dev int, on bool) panelEffect {
	return panelEffect{id: ePanelPower, val: powerUpdate{dev: dev, on: on}}
}

func dumpEffect(on bool) panelEffect {
	return panelEffect{id: ePanelDump, val: on}
}

func toLedUpdate(val interface{}) (*ledUpdate, error) {
	switch v := val.(type) {
	case ledUpdate:
		return &v, nil
	default:
		return nil, fmt.Errorf("Bad type: %T", v)
	}
}

func toToggleUpdate(val interface{}) (*toggleUpdate, error) {
	switch v := val.(type) {
	case toggleUpdate:
		return &v, nil
	default:
		return nil, fmt.Errorf("Bad type: %T", v)
	}
}

func toGridUpdate(val interface{}) (*gridUpdate, error) {
	switch v := val.(type) {
	case gridUpdate:
		return &v, nil
	default:
		return nil, fmt.Errorf("Bad type: %T", v)
	}
}

func toBrightnessUpdate(val interface{}) (*brightnessUpdate, error) {
	switch v := val.(type) {
	case brightnessUpdate:
		return &v, nil
	default:
		return nil, fmt.Errorf("Bad type: %T", v)
	}
}

func toBlinkUpdate(val interface{}) (*blinkUpdate, error) {
	switch v := val.(type) {
	case blinkUpdate:
		return &v, nil
	default:
		return nil, fmt.Errorf("Bad type: %T", v)
	}
}

func toPowerUpdate(val interface{}) (*powerUpdate, error) {
	switch v := val.(type) {
	case powerUpdate:
		return &v, nil
	default:
		return nil, fmt.Errorf("Bad type: %T", v)
	}
}

func toBool(val interface{}) (bool, error) {
	switch v := val.(type) {
	case bool:
		return v, nil
	default:
		return false, fmt.Errorf("Bad type: %T", v)
	}
}

func toInt(val interface{}) (int, error) {
	switch v := val.(type) {
	case int:
		return v, nil
	default:
		return -1, fmt.Errorf("Bad type: %T", v)
	}
}

// eachDevice expands allDevices for the per-device panel calls
func eachDevice(rt runtimeConfig, dev int, fn func(d int) error) {
	if dev != allDevices {
		if err := fn(dev); err != nil {
			rt.logger.Printf("panel error: %s", err.Error())
		}
		return
	}
	for d := 0; d < rt.panel.Devices(); d++ {
		if err := fn(d); err != nil {
			rt.logger.Printf("panel error: %s", err.Error())
		}
	}
}

// applyPanelEffect mutates the panel; it reports whether the LED
// buffer changed and needs a flush.
func applyPanelEffect(rt runtimeConfig, msg panelEffect) bool {
	switch msg.id {
	case ePanelLed:
		v, err := toLedUpdate(msg.val)
		if err != nil {
			rt.logger.Println(err.Error())
			return false
		}
		rt.panel.SetLed(v.dev, v.row, v.col, v.on)
		return true
	case ePanelToggle:
		v, err := toToggleUpdate(msg.val)
		if err != nil {
			rt.logger.Println(err.Error())
			return false
		}
		rt.panel.SetLed(v.dev, v.row, v.col, !rt.panel.GetLed(v.dev, v.row, v.col))
		return true
	case ePanelGrid:
		v, err := toGridUpdate(msg.val)
		if err != nil {
			rt.logger.Println(err.Error())
			return false
		}
		rt.panel.SetGrid(v.dev, v.words)
		return true
	case ePanelClear:
		dev, err := toInt(msg.val)
		if err != nil {
			rt.logger.Println(err.Error())
			return false
		}
		if dev == allDevices {
			rt.panel.ClearAll()
		} else {
			rt.panel.Clear(dev)
		}
		return true
	case ePanelBrightness:
		v, err := toBrightnessUpdate(msg.val)
		if err != nil {
			rt.logger.Println(err.Error())
			return false
		}
		eachDevice(rt, v.dev, func(d int) error { return rt.panel.SetBrightness(d, v.level) })
	case ePanelBlink:
		v, err := toBlinkUpdate(msg.val)
		if err != nil {
			rt.logger.Println(err.Error())
			return false
		}
		eachDevice(rt, v.dev, func(d int) error { return rt.panel.SetBlinkRate(d, v.rate) })
	case ePanelPower:
		v, err := toPowerUpdate(msg.val)
		if err != nil {
			rt.logger.Println(err.Error())
			return false
		}
		eachDevice(rt, v.dev, func(d int) error { return rt.panel.DisplayOn(d, v.on) })
	case ePanelDump:
		v, err := toBool(msg.val)
		if err != nil {
			rt.logger.Println(err.Error())
			return false
		}
		rt.panel.DebugDump(v)
	default:
		rt.logger.Printf("Unhandled %d", msg.id)
	}
	return false
}

func startPanel(rt runtimeConfig) {
	rt.logger = &ThreadLogger{name: "Panel"}
	go func() {
		defer wg.Done()
		runPanel(rt)
	}()
}

func runPanel(rt runtimeConfig) {
	defer func() {
		rt.logger.Println("exiting runPanel")
	}()

	settings := rt.settings
	comms := rt.comms

	if err := rt.panel.OpenPanel(settings); err != nil {
		rt.logger.Printf("Error: %s", err.Error())
		return
	}
	defer rt.panel.ClosePanel()

	// turn on LED dump?
	rt.panel.DebugDump(settings.GetBool(sDebug))

	for true {
		changed := false

		// drain whatever queued up since the last tick
		keepReading := true
		for keepReading {
			select {
			case <-comms.quit:
				rt.logger.Println("quit from runPanel")
				for d := 0; d < rt.panel.Devices(); d++ {
					rt.panel.DisplayOn(d, false)
				}
				return
			case msg := <-comms.panel:
				if applyPanelEffect(rt, msg) {
					changed = true
				}
			default:
				keepReading = false
			}
		}

		if changed {
			if err := rt.panel.ShowAll(); err != nil {
				rt.logger.Printf("Error: %s", err.Error())
			}
		}

		rt.clock.Sleep(dPanelSleep)
	}
}
