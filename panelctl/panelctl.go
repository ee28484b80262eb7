package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"net/http"
	"os"
	"strconv"
)

// panelctl drives the ledpanel daemon's JSON api from the shell

var (
	addr   = flag.String("addr", "http://localhost:8080", "daemon address")
	user   = flag.String("user", "ledpanel", "api user")
	secret = flag.String("secret", "", "api secret")
)

func call(method string, path string, body interface{}) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			log.Fatal(err.Error())
		}
	}

	req, err := http.NewRequest(method, *addr+path, &buf)
	if err != nil {
		log.Fatal(err.Error())
	}
	if *secret != "" {
		req.SetBasicAuth(*user, *secret)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatal(err.Error())
	}
	defer resp.Body.Close()

	out, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		log.Fatal(err.Error())
	}
	fmt.Printf("%s\n", out)

	if resp.StatusCode != 200 {
		os.Exit(1)
	}
}

func argInt(s string) int {
	v, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		log.Fatalf("%s is not a number", s)
	}
	return int(v)
}

func argBool(s string) bool {
	switch s {
	case "on", "true", "1":
		return true
	case "off", "false", "0":
		return false
	}
	log.Fatalf("%s is not on or off", s)
	return false
}

func usage() {
	fmt.Println(`usage: panelctl [flags] command [args]

commands:
  status
  led <dev> <row> <col> on|off
  toggle <dev> <row> <col>
  grid <dev> <w0> ... <w7>
  clear [dev]
  brightness <dev> <level>
  blink <dev> <rate>
  power <dev> on|off
  keys
  stop

device -1 targets every panel`)
	os.Exit(2)
}

func main() {
	flag.Parse()
	args := flag.Args()
	if len(args) < 1 {
		usage()
	}

	switch args[0] {
	case "status":
		call("GET", "/api/status", nil)
	case "led":
		if len(args) != 5 {
			usage()
		}
		call("POST", "/api/led", map[string]interface{}{
			"device": argInt(args[1]),
			"row":    argInt(args[2]),
			"col":    argInt(args[3]),
			"on":     argBool(args[4])})
	case "toggle":
		if len(args) != 4 {
			usage()
		}
		call("POST", "/api/led", map[string]interface{}{
			"device": argInt(args[1]),
			"row":    argInt(args[2]),
			"col":    argInt(args[3]),
			"toggle": true})
	case "grid":
		if len(args) < 3 {
			usage()
		}
		words := make([]uint16, 0, len(args)-2)
		for _, a := range args[2:] {
			words = append(words, uint16(argInt(a)))
		}
		call("POST", fmt.Sprintf("/api/grid/%d", argInt(args[1])),
			map[string]interface{}{"grid": words})
	case "clear":
		dev := -1
		if len(args) > 1 {
			dev = argInt(args[1])
		}
		call("POST", "/api/clear", map[string]interface{}{"device": dev})
	case "brightness":
		if len(args) != 3 {
			usage()
		}
		call("POST", "/api/brightness", map[string]interface{}{
			"device": argInt(args[1]),
			"level":  argInt(args[2])})
	case "blink":
		if len(args) != 3 {
			usage()
		}
		call("POST", "/api/blink", map[string]interface{}{
			"device": argInt(args[1]),
			"rate":   argInt(args[2])})
	case "power":
		if len(args) != 3 {
			usage()
		}
		call("POST", "/api/power", map[string]interface{}{
			"device": argInt(args[1]),
			"on":     argBool(args[2])})
	case "keys":
		call("GET", "/api/keys", nil)
	case "stop":
		call("POST", "/api/stop", nil)
	default:
		usage()
	}
}
