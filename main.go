package main

import (
	"flag"
	"log"
	"sync"
)

var wg sync.WaitGroup

// ledpanel -config={config file}

func main() {
	// define our flags first
	configFile := flag.String("config", "/etc/default/ledpanel/ledpanel.conf", "config file path")

	// parse the flags
	flag.Parse()

	// read config information
	settings := initSettings(*configFile)

	logger, err := setupLogging(settings, false)
	if err != nil {
		log.Fatal(err.Error())
	}
	if logger != nil {
		defer logger.Close()
	}

	// dump them (debugging)
	settings.Dump()

	rt := initRuntime(settings)

	// start the workers: panel writer, key scanner, config service
	startPanel(rt)
	startWatchKeys(rt)
	startConfigService(rt)

	wg.Wait()
	log.Println("ledpanel exiting")
}
