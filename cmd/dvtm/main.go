// Command dvtm is a tiling terminal multiplexer: it owns the
// controlling terminal, hosts PTY-backed children arranged under a
// selectable layout, and multiplexes stdin, FIFOs, signals and child
// PTYs through a single blocking readiness wait.
package main

import (
	"os"

	"dvtm-go/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
