package maincmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/google/uuid"
	"github.com/mna/mainer"
	"github.com/spf13/pflag"
	"github.com/tailscale/hujson"

	"github.com/mna/multiverse/lang/machine"
	"github.com/mna/multiverse/lang/parser"
	"github.com/mna/multiverse/lang/reindex"
)

// Run parses, re-indexes and executes every named file to completion,
// printing each universe's rendered output (spec.md §5, §6). A run is
// tagged with a fresh UUID so repeated runs of the same program can be told
// apart in whatever aggregates this output (e.g. piped to a log).
func (c *Cmd) Run(ctx context.Context, stdio mainer.Stdio, args []string) error {
	fs := pflag.NewFlagSet("run", pflag.ContinueOnError)
	dbgName := fs.String("dbg-name", "dbg", "name of the debug-print variable")
	outName := fs.String("out-name", "out", "name of the output variable")
	maxUniverses := fs.Int("max-universes", 0, "cap on the total number of universes a run may spawn (0 = unlimited)")
	varCountPath := fs.String("var-count", "", "HuJSON file overriding the inferred var_count map")
	if err := fs.Parse(args); err != nil {
		return printError(stdio, err)
	}

	// The run identifier only tags diagnostics, never the rendered output
	// itself, so a run's stdout stays deterministic and diffable against a
	// golden file even though every invocation gets a fresh UUID.
	runID := uuid.New()
	fmt.Fprintf(stdio.Stderr, "run %s\n", runID)

	cfg := &machine.Config{
		DebugName:    *dbgName,
		OutputName:   *outName,
		Stdout:       stdio.Stdout,
		MaxUniverses: *maxUniverses,
	}

	return RunFiles(stdio, cfg, *varCountPath, fs.Args()...)
}

// RunFiles parses, re-indexes (replacing the inferred var-count map with the
// override file's, if varCountPath is set) and executes every named file,
// printing each universe's rendered output to stdio. It
// is the shared entry point behind Run and internal/filetest-driven golden
// tests.
func RunFiles(stdio mainer.Stdio, cfg *machine.Config, varCountPath string, files ...string) error {
	var firstErr error
	for _, fname := range files {
		if err := runFile(stdio, cfg, fname, varCountPath); err != nil {
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func runFile(stdio mainer.Stdio, cfg *machine.Config, fname, varCountPath string) error {
	src, err := os.ReadFile(fname)
	if err != nil {
		return printError(stdio, err)
	}

	prog, err := parser.ParseProgram(fname, src)
	if err != nil {
		return printError(stdio, err)
	}

	reindexed, err := reindex.Reindex(prog)
	if err != nil {
		return printError(stdio, err)
	}

	varCount := reindexed.VarCount
	if varCountPath != "" {
		varCount, err = loadVarCountOverride(varCountPath)
		if err != nil {
			return printError(stdio, err)
		}
	}

	sup := machine.NewSupervisor(cfg)
	results := sup.Run(reindexed.Statements, varCount)

	snapshot := results.Snapshot()
	labels := make([]string, 0, len(snapshot))
	for label := range snapshot {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	var runErr error
	for _, label := range labels {
		outcome := snapshot[label]
		if outcome.Err != nil {
			fmt.Fprintf(stdio.Stderr, "%s: %s: %s\n", fname, label, outcome.Err)
			runErr = outcome.Err
			continue
		}
		for _, line := range outcome.Outputs {
			fmt.Fprintf(stdio.Stdout, "%s: %s: %s\n", fname, label, line)
		}
	}
	return runErr
}

// loadVarCountOverride reads a HuJSON (JSON-with-comments) file mapping
// variable names to their declared total event count, the same shape
// lang/reindex.Program.VarCount produces. It replaces only the var-count
// map: the statements are still re-indexed from the source.
func loadVarCountOverride(path string) (map[string]int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	std, err := hujson.Standardize(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	var out map[string]int
	if err := json.Unmarshal(std, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}
