package maincmd

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/mna/mainer"

	"github.com/mna/multiverse/lang/parser"
	"github.com/mna/multiverse/lang/reindex"
)

func (c *Cmd) Reindex(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return ReindexFiles(stdio, args...)
}

// ReindexFiles parses then re-indexes every named file, printing the
// resolved statement list followed by the inferred var-count map.
func ReindexFiles(stdio mainer.Stdio, files ...string) error {
	var firstErr error
	for _, fname := range files {
		prog, err := parseAndReindex(fname)
		if err != nil {
			printError(stdio, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		for _, s := range prog.Statements {
			fmt.Fprintf(stdio.Stdout, "%s %s = %s\n", s.Kind, s.Left, s.Right)
		}
		names := make([]string, 0, len(prog.VarCount))
		for name := range prog.VarCount {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(stdio.Stdout, "var_count[%s] = %d\n", name, prog.VarCount[name])
		}
	}
	return firstErr
}

func parseAndReindex(fname string) (*reindex.Program, error) {
	src, err := os.ReadFile(fname)
	if err != nil {
		return nil, err
	}
	prog, err := parser.ParseProgram(fname, src)
	if err != nil {
		return nil, err
	}
	return reindex.Reindex(prog)
}
