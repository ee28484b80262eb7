package main

import (
	"sync"
)

type testConfigService struct {
	handler *apiHandler
	addr    string
	mutex   sync.Mutex
	stopped bool
}

func (t *testConfigService) launch(handler *apiHandler, addr string) {
	t.handler = handler
	t.addr = addr
}

func (t *testConfigService) stop() {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.stopped = true
}

func (t *testConfigService) isStopped() bool {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return t.stopped
}
