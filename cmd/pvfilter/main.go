// pvfilter generates ParaView plugin XML from Python programmable filter
// definitions.
package main

import (
	"os"

	"github.com/hupe1980/pvfilter/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
