package parser_test

import (
	"bytes"
	"flag"
	"path/filepath"
	"testing"

	"github.com/mna/mainer"

	"github.com/jcnc-org/Snow-sub005/internal/filetest"
	"github.com/jcnc-org/Snow-sub005/internal/maincmd"
)

var testUpdateParserTests = flag.Bool("test.update-parser-tests", false, "If set, replace expected parser golden results with actual results.")

// TestParseGolden runs the parser over every fixture in testdata/in and
// diffs its stdout/stderr against the matching testdata/out fixture: the
// AST dump for inputs that parse cleanly, the accumulated diagnostics for
// inputs that don't.
func TestParseGolden(t *testing.T) {
	srcDir, resultDir := filepath.Join("testdata", "in"), filepath.Join("testdata", "out")

	for _, fi := range filetest.SourceFiles(t, srcDir, ".snow") {
		t.Run(fi.Name(), func(t *testing.T) {
			var buf, ebuf bytes.Buffer
			stdio := mainer.Stdio{Stdout: &buf, Stderr: &ebuf}

			_ = maincmd.ParseFiles(stdio, filepath.Join(srcDir, fi.Name()))
			filetest.DiffOutput(t, fi, buf.String(), resultDir, testUpdateParserTests)
			filetest.DiffErrors(t, fi, ebuf.String(), resultDir, testUpdateParserTests)
		})
	}
}
