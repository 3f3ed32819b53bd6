package scanner_test

import (
	"bytes"
	"flag"
	"path/filepath"
	"testing"

	"github.com/mna/mainer"

	"github.com/jcnc-org/Snow-sub005/internal/filetest"
	"github.com/jcnc-org/Snow-sub005/internal/maincmd"
)

var testUpdateScannerTests = flag.Bool("test.update-scanner-tests", false, "If set, replace expected scanner golden results with actual results.")

// TestScanGolden runs the tokenizer over every fixture in testdata/in and
// diffs its stdout/stderr against the matching testdata/out fixture,
// rather than asserting token-by-token as the unit tests in scanner_test.go
// already in this package do.
func TestScanGolden(t *testing.T) {
	srcDir, resultDir := filepath.Join("testdata", "in"), filepath.Join("testdata", "out")

	for _, fi := range filetest.SourceFiles(t, srcDir, ".snow") {
		t.Run(fi.Name(), func(t *testing.T) {
			var buf, ebuf bytes.Buffer
			stdio := mainer.Stdio{Stdout: &buf, Stderr: &ebuf}

			_ = maincmd.TokenizeFiles(stdio, filepath.Join(srcDir, fi.Name()))
			filetest.DiffOutput(t, fi, buf.String(), resultDir, testUpdateScannerTests)
			filetest.DiffErrors(t, fi, ebuf.String(), resultDir, testUpdateScannerTests)
		})
	}
}
