package main

// noKeypad stands in when key scanning is off; tests poke states
// directly through set/clear.
type noKeypad struct {
	keys   map[keyID]key
	states map[keyID]bool
	err    error
}

func (nk *noKeypad) getKeys() *map[keyID]key {
	return &nk.keys
}

func (nk *noKeypad) readKeys(rt runtimeConfig) (map[keyID]bool, error) {
	if nk.err != nil {
		return nil, nk.err
	}
	return nk.states, nil
}

func (nk *noKeypad) setupKeys(rt runtimeConfig) error {
	return nil
}

func (nk *noKeypad) initKeypad(settings configSettings) error {
	nk.keys = make(map[keyID]key)
	nk.states = make(map[keyID]bool)
	return nil
}

func (nk *noKeypad) closeKeypad() {
}

func (nk *noKeypad) set(ids ...keyID) {
	for _, id := range ids {
		nk.states[id] = true
	}
}

func (nk *noKeypad) clear(ids ...keyID) {
	for _, id := range ids {
		nk.states[id] = false
	}
}

func (nk *noKeypad) fail(err error) {
	nk.err = err
}
