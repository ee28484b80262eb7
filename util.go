// utility functions
package main

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// worker cadences; tests advance the fake clock by these
const (
	dPanelSleep  = 50 * time.Millisecond
	dKeySleep    = 20 * time.Millisecond
	dConfigSleep = 100 * time.Millisecond
)

type commChannels struct {
	quit      chan struct{}
	panel     chan panelEffect
	keys      chan keyEvent
	configSvc chan configSvcMsg
}

type runtimeConfig struct {
	settings      configSettings
	comms         commChannels
	clock         clockwork.Clock
	panel         panel
	keypad        keypad
	configService configService
	logger        flogger
}

func initCommChannels() commChannels {
	quit := make(chan struct{}, 1)
	panelChannel := make(chan panelEffect, 10)
	keyChannel := make(chan keyEvent, 10)
	configChannel := make(chan configSvcMsg, 1)

	return commChannels{
		quit:      quit,
		panel:     panelChannel,
		keys:      keyChannel,
		configSvc: configChannel}
}

func initRuntime(settings configSettings) runtimeConfig {
	rt := runtimeConfig{
		settings: settings,
		comms:    initCommChannels(),
		clock:    clockwork.NewRealClock(),
		logger:   &ThreadLogger{name: "Main"},
	}

	if settings.GetBool(sNoDisplay) {
		rt.panel = &logPanel{}
	} else {
		rt.panel = &ledPanel{}
	}

	if !settings.GetBool(sKeyscan) {
		rt.keypad = &noKeypad{}
	} else if settings.GetBool(sSim) {
		rt.keypad = &simKeypad{}
	} else {
		rt.keypad = &i2cKeypad{}
	}

	rt.configService = &httpConfigService{}
	return rt
}

func initTestRuntime(settings configSettings) runtimeConfig {
	rt := runtimeConfig{
		settings: settings,
		comms:    initCommChannels(),
		clock:    clockwork.NewFakeClock(),
		logger:   &ThreadLogger{name: "Test"},
	}

	rt.panel = &logPanel{disableLog: true}
	rt.keypad = &noKeypad{}
	rt.configService = &testConfigService{}
	return rt
}
