// Command cilgen links compiled CIL translation units into a single
// target assembly.
package main

import (
	"os"

	"github.com/mna/mainer"

	"github.com/mna/cilgen/internal/linkcmd"
)

var (
	// placeholder values, replaced on build
	version   = "{v}" // must be N.N[.N]
	buildDate = "{d}" // must be YYYY-mm-DD
)

func main() {
	c := linkcmd.Cmd{BuildVersion: version, BuildDate: buildDate}
	os.Exit(int(c.Main(os.Args, mainer.CurrentStdio())))
}
