package main

import (
	"fmt"
	"io/ioutil"
	"log"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/buger/jsonparser"
)

// settings keys
const (
	sLogFile   = "log_file"
	sConsole   = "console_log"
	sI2CBus    = "i2c_bus"
	sSim       = "i2c_simulated"
	sNoDisplay = "no_display"
	sDevices   = "devices"
	sPanels    = "panels"
	sBright    = "brightness"
	sBlink     = "blink"
	sDebug     = "debug_dump"
	sListen    = "listen"
	sAPIUser   = "api_user"
	sAPISecret = "api_secret"
	sKeyscan   = "keyscan"
	sKeyDevs   = "key_devices"
	sKeyToggle = "key_toggle"
	sIntPin    = "int_pin"
)

// one entry in the "panels" config array
type panelMap struct {
	address uint8
	rows    int
}

// keep settings generic, type-convert on the fly
type configSettings struct {
	settings map[string]interface{}
}

func defaultSettings() configSettings {
	s := make(map[string]interface{})

	// setting the type here makes the conversion "automatic" later
	s[sLogFile] = "/var/log/ledpanel.log"
	s[sConsole] = false
	s[sI2CBus] = 1
	s[sNoDisplay] = false
	s[sDevices] = 1
	s[sPanels] = []panelMap{}
	s[sBright] = byte(8)
	s[sBlink] = byte(0)
	s[sDebug] = false
	s[sListen] = ":8080"
	s[sAPIUser] = "ledpanel"
	s[sAPISecret] = ""
	s[sKeyscan] = false
	s[sKeyDevs] = 1
	s[sKeyToggle] = false
	s[sIntPin] = 0

	// real chips only answer on the pi
	sim := true
	if runtime.GOARCH == "arm" {
		sim = false
	}
	s[sSim] = sim

	return configSettings{settings: s}
}

func parseAddress(value []byte) (uint8, error) {
	addr, err := jsonparser.GetInt(value, "address")
	if err != nil {
		// allow "0x70" style strings
		str, err2 := jsonparser.GetString(value, "address")
		if err2 != nil {
			return 0, err2
		}
		addr, err = strconv.ParseInt(str, 0, 64)
		if err != nil {
			return 0, err
		}
	}
	return uint8(addr), nil
}

func (s *configSettings) parsePanels(data []byte, key string) error {
	panels := []panelMap{}
	var parseErr error

	_, err := jsonparser.ArrayEach(data, func(value []byte, dataType jsonparser.ValueType, offset int, e error) {
		pm := panelMap{address: 0, rows: 8}
		addr, err2 := parseAddress(value)
		if err2 != nil {
			parseErr = err2
			return
		}
		pm.address = addr
		if rows, err2 := jsonparser.GetInt(value, "rows"); err2 == nil {
			pm.rows = int(rows)
		}
		panels = append(panels, pm)
	}, key)

	if err != nil {
		return err
	}
	if parseErr != nil {
		return parseErr
	}

	s.settings[key] = panels
	return nil
}

func (s *configSettings) settingsFromJSON(data []byte) error {
	tmp := defaultSettings()
	for k, initVal := range tmp.settings {
		// ignore missing fields
		_, tp, _, err := jsonparser.Get(data, k)
		if err != nil || tp == jsonparser.NotExist {
			continue
		}

		switch initVal.(type) {
		case []panelMap:
			err = s.parsePanels(data, k)
		case uint8:
			var valSigned int64
			valSigned, err = jsonparser.GetInt(data, k)
			if err != nil {
				// try strconv so "0x70" works
				valString, err2 := jsonparser.GetString(data, k)
				if err2 == nil {
					valSigned, err = strconv.ParseInt(valString, 0, 64)
				}
			}
			if err == nil {
				s.settings[k] = byte(valSigned)
			}
		case int:
			var val int64
			val, err = jsonparser.GetInt(data, k)
			if err == nil {
				s.settings[k] = int(val)
			}
		case bool:
			var bVal bool
			bVal, err = jsonparser.GetBoolean(data, k)
			if err != nil {
				// try true and false strings
				str, _ := jsonparser.GetString(data, k)
				switch strings.ToLower(str) {
				case "true":
					bVal = true
				case "false":
					bVal = false
				default:
					return err
				}
				err = nil
			}
			s.settings[k] = bVal
		case time.Duration:
			var dur string
			dur, err = jsonparser.GetString(data, k)
			if err == nil {
				var dur2 time.Duration
				dur2, err = time.ParseDuration(dur)
				if err == nil {
					s.settings[k] = dur2
				}
			}
		case string:
			s.settings[k], err = jsonparser.GetString(data, k)
		default:
			err = fmt.Errorf("Bad type: %T", initVal)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func initSettings(cfgFile string) configSettings {
	log.Println("initSettings")

	// defaults
	s := defaultSettings()

	// try to open the config file
	data, err := ioutil.ReadFile(cfgFile)
	if err != nil {
		log.Fatalf("Could not load conf file '%s', terminating", cfgFile)
	}

	log.Printf("Reading configuration from '%s'", cfgFile)

	// json parse it
	if err := s.settingsFromJSON(data); err != nil {
		log.Fatal(err.Error())
	}

	return s
}

func (s *configSettings) GetString(key string) string {
	switch v := s.settings[key].(type) {
	case string:
		return v
	default:
		return ""
	}
}

func (s *configSettings) GetBool(key string) bool {
	switch v := s.settings[key].(type) {
	case bool:
		return v
	default:
		return false
	}
}

func (s *configSettings) GetDuration(key string) time.Duration {
	switch v := s.settings[key].(type) {
	case time.Duration:
		return v
	default:
		return -1
	}
}

func (s *configSettings) GetByte(key string) byte {
	switch v := s.settings[key].(type) {
	case byte:
		return v
	case int: // cast to byte
		return byte(v)
	default:
		return 0
	}
}

func (s *configSettings) GetInt(key string) int {
	switch v := s.settings[key].(type) {
	case int:
		return v
	default:
		return 0
	}
}

// GetPanels returns the configured panel list; without a "panels"
// array it builds one from the device count with default addressing.
func (s *configSettings) GetPanels() []panelMap {
	panels, ok := s.settings[sPanels].([]panelMap)
	if ok && len(panels) > 0 {
		return panels
	}

	devs := s.GetInt(sDevices)
	if devs < 1 {
		devs = 1
	}
	if devs > 8 {
		devs = 8
	}
	panels = make([]panelMap, devs)
	for i := range panels {
		panels[i] = panelMap{address: 0x70 + uint8(i), rows: 8}
	}
	return panels
}

func (s *configSettings) Dump() {
	for k, v := range s.settings {
		log.Printf("%s : %T: %v\n", k, v, v)
	}
}
