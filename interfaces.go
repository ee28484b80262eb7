package main

type panel interface {
	OpenPanel(settings configSettings) error
	ClosePanel()
	DebugDump(on bool)
	SetLed(dev int, row int, col int, on bool)
	GetLed(dev int, row int, col int) bool
	SetGrid(dev int, words []uint16)
	Grid(dev int) []uint16
	Clear(dev int)
	ClearAll()
	SetBrightness(dev int, b uint8) error
	DisplayOn(dev int, on bool) error
	SetBlinkRate(dev int, r uint8) error
	SetRowInt(dev int, mode uint8) error
	Show(dev int) error
	ShowAll() error
	ReadKeys(dev int) ([]uint16, error)
	Devices() int
	Rows(dev int) int
}

type keypad interface {
	initKeypad(settings configSettings) error
	setupKeys(rt runtimeConfig) error
	readKeys(rt runtimeConfig) (map[keyID]bool, error)
	getKeys() *map[keyID]key
	closeKeypad()
}

type configService interface {
	launch(handler *apiHandler, addr string)
	stop()
}
