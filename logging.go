package main

import (
	"io"
	"log"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// flogger is what the workers log through
type flogger interface {
	Print(v ...interface{})
	Printf(format string, v ...interface{})
	Println(v ...interface{})
}

// ThreadLogger prefixes everything with the worker name so the
// interleaved output stays readable.
type ThreadLogger struct {
	name string
}

func (t *ThreadLogger) Print(v ...interface{}) {
	log.Print(append([]interface{}{"[" + t.name + "] "}, v...)...)
}

func (t *ThreadLogger) Printf(format string, v ...interface{}) {
	log.Printf("["+t.name+"] "+format, v...)
}

func (t *ThreadLogger) Println(v ...interface{}) {
	log.Println(append([]interface{}{"[" + t.name + "]"}, v...)...)
}

// setupLogging points the std logger at a rotated file. An empty
// log_file keeps plain stderr (handy for tests and sim runs).
// Close the returned closer on the way out.
func setupLogging(settings configSettings, console bool) (io.Closer, error) {
	logFile := settings.GetString(sLogFile)
	if logFile == "" {
		return nil, nil
	}

	logger := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     28, // days
	}

	if console || settings.GetBool(sConsole) {
		log.SetOutput(io.MultiWriter(os.Stdout, logger))
	} else {
		log.SetOutput(logger)
	}
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	return logger, nil
}
