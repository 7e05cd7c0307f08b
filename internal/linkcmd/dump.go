package linkcmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/mna/cilgen/cil"
)

// Dump implements the `dump` subcommand: it prints the textual listing of
// a single .bc object file or .rlib archive to stdout.
func (c *Cmd) Dump(ctx context.Context, stdio mainer.Stdio, args []string) error {
	unit, err := loadUnit(args[0], c.ArchiveGlob, c.ObjectGlob)
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}
	fmt.Fprint(stdio.Stdout, cil.Dump(unit))
	return nil
}
