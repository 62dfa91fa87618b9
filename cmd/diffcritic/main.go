package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/dshills/diffcritic/internal/cli"
)

func main() {
	log := newLogger()
	os.Exit(cli.Run(log))
}

// newLogger builds the process logger. Diagnostics go to stderr so stdout
// stays clean for command output; report artifacts are written to files.
func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	for _, arg := range os.Args[1:] {
		switch arg {
		case "--quiet", "-q":
			level = zerolog.WarnLevel
		case "--verbose", "-v":
			level = zerolog.DebugLevel
		}
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}
