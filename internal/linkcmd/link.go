package linkcmd

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/mna/mainer"

	"github.com/mna/cilgen/cil"
)

// defaultArchiveGlob matches internal/config.Env's own CILGEN_ARCHIVE_GLOB
// default, used when neither a flag nor the config layers set one (e.g.
// Link called directly, as the unit tests do).
const defaultArchiveGlob = "*.rlib"

// execCommand is overridden in tests so AOT compilation can be exercised
// without actually spawning mono. Grounded on the injectable-collaborator
// idiom the teacher uses for I/O boundaries (internal/filetest), applied
// here to process execution instead of file reading (SPEC_FULL.md §5).
var execCommand = exec.Command

// aotMode names one of the three post-link AOT compilation modes.
// Grounded on original_source/src/bin/linker.rs::AOTCompileMode.
type aotMode int

const (
	aotNone aotMode = iota
	aotMono
	aotMonoFull
)

func parseAOTMode(s string) (aotMode, error) {
	switch strings.ToLower(s) {
	case "", "no", "none", "no_aot", "no-aot":
		return aotNone, nil
	case "mono", "mono_aot", "mono-aot":
		return aotMono, nil
	case "mono_full", "mono-full", "mono_full_aot", "mono-full-aot":
		return aotMonoFull, nil
	default:
		return aotNone, fmt.Errorf("unknown AOT mode: %q", s)
	}
}

// runAOT invokes the mono AOT compiler against path according to mode. A
// aotNone mode is a no-op.
func runAOT(mode aotMode, path string) error {
	var arg string
	switch mode {
	case aotNone:
		return nil
	case aotMono:
		arg = "--aot"
	case aotMonoFull:
		arg = "--aot=full"
	}
	cmd := execCommand("mono", arg, "-O=all", path)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("running mono AOT compiler: %w (output: %s)", err, out)
	}
	return nil
}

// isArchive reports whether path matches archiveGlob (CILGEN_ARCHIVE_GLOB
// / cilgen.yaml's archive_glob, defaultArchiveGlob if unset), the
// classification loadUnit uses to decide between cil.ReadArchive and
// cil.Decode.
func isArchive(path, archiveGlob string) bool {
	if archiveGlob == "" {
		archiveGlob = defaultArchiveGlob
	}
	matched, err := filepath.Match(archiveGlob, filepath.Base(path))
	if err != nil {
		// An unparseable glob falls back to the old substring heuristic
		// rather than failing the whole link over a bad config value.
		return strings.Contains(path, ".rlib")
	}
	return matched
}

// loadUnit reads one .bc object file or .rlib archive from path into an
// Assembly, classifying path by archiveGlob. A path matching neither
// archiveGlob nor objectGlob (when objectGlob is set) is rejected rather
// than guessed at, since a consumer that sets both globs explicitly has
// opted into a closed set of recognized input kinds.
func loadUnit(path, archiveGlob, objectGlob string) (*cil.Assembly, error) {
	if isArchive(path, archiveGlob) {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", path, err)
		}
		defer f.Close()
		return cil.ReadArchive(f)
	}
	if objectGlob != "" {
		matched, err := filepath.Match(objectGlob, filepath.Base(path))
		if err == nil && !matched {
			return nil, fmt.Errorf("%s: does not match object_glob %q or archive_glob %q", path, objectGlob, archiveGlob)
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return cil.Decode(data)
}

// Link implements the `link` subcommand: it joins every named .bc/.rlib
// input into one assembly, either autopatches unresolved external calls or
// aborts on them depending on AbortOnError, overrides the target pointer
// width if PointerWidth was set, injects the mandatory statics, writes the
// result to c.Output, and finally runs the requested AOT compilation pass.
// Grounded on original_source/src/bin/linker.rs::main's link pipeline.
func (c *Cmd) Link(ctx context.Context, stdio mainer.Stdio, args []string) error {
	mode, err := parseAOTMode(c.AOTMode)
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	var final *cil.Assembly
	for _, path := range args {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		unit, err := loadUnit(path, c.ArchiveGlob, c.ObjectGlob)
		if err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			return err
		}
		if final == nil {
			final = unit
			continue
		}
		final, err = cil.Join(final, unit)
		if err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			return err
		}
	}
	if final == nil {
		final = cil.NewAssembly("")
	}

	if c.PointerWidth != 0 {
		final.SetPointerWidth(c.PointerWidth)
	}

	if c.AbortOnError {
		if unresolved := cil.UnresolvedExternals(final); len(unresolved) > 0 {
			names := make([]string, len(unresolved))
			for i, site := range unresolved {
				names[i] = site.Name
			}
			err := fmt.Errorf("link: unresolved external call site(s) with abort_on_error set: %s", strings.Join(names, ", "))
			fmt.Fprintln(stdio.Stderr, err)
			return err
		}
	} else {
		cil.Autopatch(final)
	}
	cil.AddMandatoryStatics(final)

	data, err := final.Encode()
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}
	if err := os.WriteFile(c.Output, data, 0o644); err != nil {
		err = fmt.Errorf("writing %s: %w", c.Output, err)
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	if err := runAOT(mode, c.Output); err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}
	return nil
}
