package scanner_test

import (
	"bytes"
	"flag"
	"path/filepath"
	"testing"

	"github.com/mna/mainer"

	"github.com/mna/multiverse/internal/filetest"
	"github.com/mna/multiverse/internal/maincmd"
)

var testUpdateScannerTests = flag.Bool("test.update-scanner-tests", false, "If set, replace expected scanner test results with actual results.")

func TestScanFiles(t *testing.T) {
	srcDir, resultDir := filepath.Join("testdata", "in"), filepath.Join("testdata", "out")

	for _, fi := range filetest.SourceFiles(t, srcDir, ".mv") {
		t.Run(fi.Name(), func(t *testing.T) {
			var buf, ebuf bytes.Buffer
			stdio := mainer.Stdio{Stdout: &buf, Stderr: &ebuf}

			// error is ignored, we just want it printed to ebuf
			_ = maincmd.TokenizeFiles(stdio, filepath.Join(srcDir, fi.Name()))
			filetest.DiffOutput(t, fi, buf.String(), resultDir, testUpdateScannerTests)
			filetest.DiffErrors(t, fi, ebuf.String(), resultDir, testUpdateScannerTests)
		})
	}
}
