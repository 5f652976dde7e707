package logger

import (
	"io"
	"log"
	"os"
)

var DebugMode bool

// Init configures the standard logger. Unless DEBUG=true, all output is
// discarded so background logging cannot corrupt the TUI.
func Init() {
	if os.Getenv("DEBUG") == "true" {
		DebugMode = true
		log.SetOutput(os.Stderr)
	} else {
		log.SetOutput(io.Discard)
	}
}

// SetOutput redirects the standard logger (e.g. to a file in web mode).
func SetOutput(w io.Writer) {
	log.SetOutput(w)
}

func Debug(format string, v ...interface{}) {
	if DebugMode {
		log.Printf("[DEBUG] "+format, v...)
	}
}

func Info(format string, v ...interface{}) {
	log.Printf("[INFO] "+format, v...)
}
