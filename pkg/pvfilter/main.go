package pvfilter

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// Exit codes returned by Main.
const (
	ExitOK          = 0
	ExitError       = 1
	ExitConfigError = 3
)

// Main writes the plugin document of def to stdout and returns the process
// exit code. It accepts the results of NewFilter directly:
//
//	os.Exit(pvfilter.Main(pvfilter.NewFilter("MyFilter", opts...)))
//
// A configuration error is printed to stderr and nothing is written.
func Main(def *Definition, err error) int {
	return run(os.Stdout, os.Stderr, def, err)
}

func run(stdout, stderr io.Writer, def *Definition, err error) int {
	if err == nil && def == nil {
		err = errors.New("no filter definition")
	}

	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)

		var cfgErr *ConfigError
		if errors.As(err, &cfgErr) {
			return ExitConfigError
		}

		return ExitError
	}

	if _, err := stdout.Write(def.XML()); err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: writing to stdout: %v\n", err)
		return ExitError
	}

	return ExitOK
}
