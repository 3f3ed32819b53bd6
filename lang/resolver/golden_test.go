package resolver_test

import (
	"bytes"
	"flag"
	"path/filepath"
	"testing"

	"github.com/mna/mainer"

	"github.com/jcnc-org/Snow-sub005/internal/filetest"
	"github.com/jcnc-org/Snow-sub005/internal/maincmd"
)

var testUpdateResolverTests = flag.Bool("test.update-resolver-tests", false, "If set, replace expected resolver golden results with actual results.")

// TestCheckGolden runs the full scan/parse/resolve pipeline over every
// fixture in testdata/in and diffs its stdout/stderr against the matching
// testdata/out fixture: "module ...: ok" lines for programs that pass
// analysis, accumulated semantic diagnostics for ones that don't.
func TestCheckGolden(t *testing.T) {
	srcDir, resultDir := filepath.Join("testdata", "in"), filepath.Join("testdata", "out")

	for _, fi := range filetest.SourceFiles(t, srcDir, ".snow") {
		t.Run(fi.Name(), func(t *testing.T) {
			var buf, ebuf bytes.Buffer
			stdio := mainer.Stdio{Stdout: &buf, Stderr: &ebuf}

			_ = maincmd.CheckFiles(stdio, filepath.Join(srcDir, fi.Name()))
			filetest.DiffOutput(t, fi, buf.String(), resultDir, testUpdateResolverTests)
			filetest.DiffErrors(t, fi, ebuf.String(), resultDir, testUpdateResolverTests)
		})
	}
}
