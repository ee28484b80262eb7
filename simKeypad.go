package main

import (
	"errors"

	// keyboard for sim mode
	"github.com/nsf/termbox-go"
)

type simKeypad struct {
	keys map[keyID]key
}

func (sk *simKeypad) getKeys() *map[keyID]key {
	return &sk.keys
}

func (sk *simKeypad) initKeypad(settings configSettings) error {
	err := termbox.Init()
	if err != nil {
		return err
	}

	termbox.SetInputMode(termbox.InputEsc | termbox.InputMouse)
	termbox.Flush()

	// close it later
	return nil
}

func (sk *simKeypad) setupKeys(rt runtimeConfig) error {
	sk.keys = make(map[keyID]key)
	return nil
}

// '1' through '9' and '0' stand in for the first ten switches on
// device 0
func keyForChar(ch rune) (keyID, bool) {
	switch {
	case ch >= '1' && ch <= '9':
		return keyID{dev: 0, row: 0, col: int(ch - '1')}, true
	case ch == '0':
		return keyID{dev: 0, row: 0, col: 9}, true
	}
	return keyID{}, false
}

func (sk *simKeypad) pollKeyboard(rt runtimeConfig) (termbox.Event, error) {
	var ev termbox.Event

	// poll with quick timeout
	// no key means "no change"
	go func() {
		rt.clock.Sleep(dKeySleep)
		termbox.Interrupt()
	}()

	waitForInterrupt := true
	for waitForInterrupt {
		evTemp := termbox.PollEvent()
		switch evTemp.Type {
		case termbox.EventKey:
			// add an exit key
			if evTemp.Key == termbox.KeyCtrlC {
				return ev, errors.New("Exit termbox loop")
			}
			ev = evTemp
		// wait for the interrupt to fire
		default:
			waitForInterrupt = false
			// no keys
		}
	}

	termbox.Flush()

	return ev, nil
}

func (sk *simKeypad) readKeys(rt runtimeConfig) (map[keyID]bool, error) {
	ev, err := sk.pollKeyboard(rt)
	if err != nil {
		return nil, err
	}

	// char is toggle (down to up or up to down)
	// no char is "do not change"
	states := make(map[keyID]bool)
	for id, k := range sk.keys {
		states[id] = k.state.pressed
	}

	if id, ok := keyForChar(ev.Ch); ok {
		states[id] = !states[id]
	}

	return states, nil
}

func (sk *simKeypad) closeKeypad() {
	termbox.Close()
}
