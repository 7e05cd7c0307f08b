package cil_test

import (
	"flag"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mna/cilgen/cil"
	"github.com/mna/cilgen/internal/filetest"
)

var testUpdateDumpTests = flag.Bool("test.update-dump-tests", false, "If set, replace expected dump test results with actual results.")

// scenarios maps a fixture file's base name (testdata/dump/in/<name>) to the
// assembly it builds. The fixture file's content is not parsed - as with
// lang/parser's own filetest-driven tests, it is the presence and name of
// the file under testdata/dump/in that selects and names the subtest and
// its golden file, not its content.
var scenarios = map[string]func() *cil.Assembly{
	"counter.scn": buildCounterAssembly,
}

func buildCounterAssembly() *cil.Assembly {
	asm := cil.NewAssembly("counter")
	asm.AddStatic(cil.StaticDef{Name: "total", Type: cil.I32})
	asm.AddType(cil.TypeDef{
		Name:      "Counter",
		Fields:    []cil.FieldDef{{Name: "n", Type: cil.I32, Access: cil.Public}},
		Access:    cil.Public,
		ValueType: true,
	})

	m := cil.NewMethod(cil.Public, true, cil.NewFnSig(nil, cil.Void), "Main", []cil.LocalDef{{Name: "tmp", Type: cil.I32}})
	m.Attributes = []cil.Attribute{cil.EntryPoint}
	m.Ops = []cil.Op{cil.LdcI32(1), cil.STLoc(0), cil.LDLoc(0), cil.Ret}
	asm.AddMethod(m)

	return asm
}

func TestDumpGolden(t *testing.T) {
	srcDir, resultDir := filepath.Join("testdata", "dump", "in"), filepath.Join("testdata", "dump", "out")

	for _, fi := range filetest.SourceFiles(t, srcDir, ".scn") {
		t.Run(fi.Name(), func(t *testing.T) {
			build, ok := scenarios[fi.Name()]
			require.True(t, ok, "no scenario builder registered for fixture %q", fi.Name())

			out := cil.Dump(build())
			filetest.DiffOutput(t, fi, out, resultDir, testUpdateDumpTests)
		})
	}
}
