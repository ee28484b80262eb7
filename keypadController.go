package main

import (
	"time"
)

// keyID names one switch on the key matrix
type keyID struct {
	dev int
	row int
	col int
}

type pressState struct {
	pressed bool      // is it pressed?
	start   time.Time // when did this cycle start?
	count   int       // how many successive scans was it down?
	changed bool      // did the state just change?
}

type key struct {
	id    keyID
	state pressState
}

type keyEvent struct {
	id       keyID
	pressed  bool
	duration time.Duration
}

func init() {
	// runWatchKeys wg
	wg.Add(1)
}

func checkKeys(rt runtimeConfig) error {
	comms := rt.comms

	states, err := rt.keypad.readKeys(rt)
	if err != nil {
		return err
	}

	now := rt.clock.Now()
	toggle := rt.settings.GetBool(sKeyToggle)
	keys := rt.keypad.getKeys()

	for id, down := range states {
		k, ok := (*keys)[id]
		if !ok {
			k = key{id: id}
		}
		k.state.changed = false

		if down {
			if !k.state.pressed {
				k.state.pressed = true
				k.state.start = now
				k.state.count = 0
				k.state.changed = true
			} else {
				k.state.count++
			}
		} else if k.state.pressed {
			k.state.pressed = false
			k.state.changed = true
		}

		(*keys)[id] = k

		if !k.state.changed {
			continue
		}

		evt := keyEvent{id: id, pressed: k.state.pressed}
		if !k.state.pressed {
			evt.duration = now.Sub(k.state.start)
		}
		comms.keys <- evt

		// map presses straight onto the LEDs?
		if toggle && k.state.pressed {
			comms.panel <- toggleLedEffect(id.dev, id.row, id.col)
		}
	}

	return nil
}

func startWatchKeys(rt runtimeConfig) {
	rt.logger = &ThreadLogger{name: "Keys"}
	go func() {
		defer wg.Done()
		runWatchKeys(rt)
	}()
}

func runWatchKeys(rt runtimeConfig) {
	defer func() {
		rt.logger.Println("exiting runWatchKeys")
	}()

	settings := rt.settings
	comms := rt.comms

	if !settings.GetBool(sKeyscan) {
		rt.logger.Println("Key scanning is disabled")
		return
	}

	if err := rt.keypad.initKeypad(settings); err != nil {
		rt.logger.Printf("Error: %s", err.Error())
		return
	}
	defer rt.keypad.closeKeypad()

	if err := rt.keypad.setupKeys(rt); err != nil {
		rt.logger.Printf("Error: %s", err.Error())
		return
	}

	for true {
		select {
		case <-comms.quit:
			rt.logger.Println("quit from runWatchKeys")
			return
		default:
		}

		if err := checkKeys(rt); err != nil {
			rt.logger.Printf("Error: %s", err.Error())
			// no keypad means no way to run the panel interactively
			close(comms.quit)
			return
		}

		rt.clock.Sleep(dKeySleep)
	}
}
