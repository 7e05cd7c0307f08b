// Package linkcmd implements cilgen's command-line interface: the link
// command that joins compiled translation units (.bc files and .rlib
// archives) into one assembly, and the dump command that prints a
// translation unit back out as text.
package linkcmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/mna/mainer"

	"github.com/mna/cilgen/internal/config"
)

const binName = "cilgen"

var (
	shortUsage = fmt.Sprintf(`
usage: %s [<option>...] <command> [<path>...]
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [<option>...] <command> <path>... -o <output>
       %[1]s -h|--help
       %[1]s -v|--version

Links compiled CIL translation units into a single target assembly.

The <command> can be one of:
       link                      Join the given .bc object files and
                                 .rlib archives into one assembly,
                                 autopatching unresolved external call
                                 sites and injecting the mandatory
                                 runtime statics, then write the result
                                 to -o.
       dump                      Print the textual listing of a single
                                 .bc object file or .rlib archive.

Valid flag options are:
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.
       -o --output <path>        Output path for the <link> command.
       --aot_mode <mode>         One of no|none|no_aot|no-aot (default),
                                 mono|mono_aot|mono-aot, or
                                 mono_full|mono-full|mono_full_aot|
                                 mono-full-aot: runs the AOT compiler on
                                 the linked output in that mode.
       --archive_glob <glob>     Glob an input path's base name must
                                 match to be read as an .rlib archive
                                 rather than a plain .bc object
                                 (default *.rlib).
       --object_glob <glob>     Glob a non-archive input path's base
                                 name must match (default *.bc); a path
                                 matching neither glob is rejected.
       --abort_on_error          Fail the link instead of autopatching
                                 unresolved external call sites.
       --pointer_width <bytes>   Overrides the linked assembly's target
                                 pointer width (default 8).

Every option from --aot_mode down can also be set via a CILGEN_*
environment variable or a cilgen.yaml file in the working directory; an
explicit flag always wins.

More information on the %[1]s project:
       https://github.com/mna/cilgen
`, binName)
)

// Cmd is cilgen's top-level command, dispatched to Link or Dump by its
// first positional argument. Its flag tags follow the teacher's
// mna/mainer convention.
type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool `flag:"h,help"`
	Version bool `flag:"v,version"`

	Output  string `flag:"o,output"`
	AOTMode string `flag:"aot_mode"`

	ArchiveGlob  string `flag:"archive_glob"`
	ObjectGlob   string `flag:"object_glob"`
	AbortOnError bool   `flag:"abort_on_error"`
	PointerWidth int    `flag:"pointer_width"`

	args  []string
	cmdFn func(context.Context, mainer.Stdio, []string) error
}

func (c *Cmd) SetArgs(args []string) { c.args = args }

func (c *Cmd) SetFlags(flags map[string]bool) {}

// Validate resolves the subcommand and checks its required arguments,
// mirroring the teacher's Validate contract.
func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}
	if len(c.args) == 0 {
		return errors.New("no command specified")
	}

	cmdName := c.args[0]
	commands := buildCmds(c)
	c.cmdFn = commands[cmdName]
	if c.cmdFn == nil {
		return fmt.Errorf("unknown command: %s", cmdName)
	}

	switch cmdName {
	case "link":
		if len(c.args[1:]) == 0 {
			return errors.New("link: at least one .bc or .rlib file must be provided")
		}
		if c.Output == "" {
			return errors.New("link: -o/--output is required")
		}
	case "dump":
		if len(c.args[1:]) != 1 {
			return errors.New("dump: exactly one file must be provided")
		}
	}
	return nil
}

// Main is cilgen's entry point, called by cmd/cilgen.
func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{
		EnvVars:   false,
		EnvPrefix: binName + "_",
	}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.InvalidArgs
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success
	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	c.applyConfigDefaults(stdio)

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)
	if err := c.cmdFn(ctx, stdio, c.args[1:]); err != nil {
		return mainer.Failure
	}
	return mainer.Success
}

// applyConfigDefaults fills in flags the caller left unset from the
// environment and, if present, a cilgen.yaml file in the working
// directory. Flags explicitly passed on the command line always win:
// this only ever replaces a zero value.
func (c *Cmd) applyConfigDefaults(stdio mainer.Stdio) {
	env, err := config.LoadEnv()
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "warning: %s\n", err)
		return
	}
	file, err := config.LoadFile(configFileName)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "warning: %s\n", err)
		return
	}
	merged := config.Merge(env, file)

	if c.AOTMode == "" {
		c.AOTMode = merged.AOTMode
	}
	if c.ArchiveGlob == "" {
		c.ArchiveGlob = merged.ArchiveGlob
	}
	if c.ObjectGlob == "" {
		c.ObjectGlob = merged.ObjectGlob
	}
	if c.PointerWidth == 0 {
		c.PointerWidth = merged.PointerWidth
	}
	c.AbortOnError = c.AbortOnError || merged.AbortOnError
}

const configFileName = "cilgen.yaml"

// buildCmds reflects over v's methods to find the ones matching the
// (context.Context, mainer.Stdio, []string) error shape, keyed by their
// lowercased method name. Grounded on
// internal/maincmd/maincmd.go::buildCmds in the teacher repo.
func buildCmds(v interface{}) map[string]func(context.Context, mainer.Stdio, []string) error {
	cmds := make(map[string]func(context.Context, mainer.Stdio, []string) error)

	vv := reflect.ValueOf(v)
	vt := vv.Type()
	for i := 0; i < vt.NumMethod(); i++ {
		m := vt.Method(i)
		mt := m.Type

		if mt.NumIn() != 4 || mt.NumOut() != 1 {
			continue
		}
		if rt := mt.Out(0); rt.Kind() != reflect.Interface || rt.Name() != "error" {
			continue
		}
		if p0 := mt.In(0); p0.Kind() != reflect.Ptr || p0.Elem().Name() != "Cmd" {
			continue
		}
		if p1 := mt.In(1); p1.Kind() != reflect.Interface || p1.Name() != "Context" {
			continue
		}
		if p2 := mt.In(2); p2.Kind() != reflect.Struct || p2.Name() != "Stdio" {
			continue
		}
		if p3 := mt.In(3); p3.Kind() != reflect.Slice || p3.Elem().Name() != "string" {
			continue
		}
		cmds[strings.ToLower(m.Name)] = vv.Method(i).Interface().(func(context.Context, mainer.Stdio, []string) error)
	}
	return cmds
}
