package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/mna/multiverse/lang/scanner"
	"github.com/mna/multiverse/lang/token"
)

func (c *Cmd) Tokenize(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return TokenizeFiles(stdio, args...)
}

// TokenizeFiles scans every named file and prints its tokens, one per line,
// as "<file>:<line>:<col>: <token> [<literal>]".
func TokenizeFiles(stdio mainer.Stdio, files ...string) error {
	var firstErr error
	for _, fname := range files {
		src, err := os.ReadFile(fname)
		if err != nil {
			printError(stdio, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		var s scanner.Scanner
		var errs scanner.ErrorList
		fs := token.NewFileSet()
		file := fs.AddFile(fname)
		s.Init(file, src, errs.Add)

		for {
			var val scanner.Value
			tok := s.Scan(&val)
			pos := file.Position(val.Pos)
			fmt.Fprintf(stdio.Stdout, "%s:%d:%d: %s", pos.Filename, pos.Line, pos.Column, tok)
			if lit := literalOf(tok, val); lit != "" {
				fmt.Fprintf(stdio.Stdout, " %s", lit)
			}
			fmt.Fprintln(stdio.Stdout)
			if tok == token.EOF || tok == token.ILLEGAL {
				break
			}
		}

		if err := errs.Err(); err != nil {
			printError(stdio, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// literalOf returns the extra payload to print after a token's name: the
// identifier text (with its offset suffix, if any), the integer value, or
// the quoted atom text. Punctuation and keywords carry no payload beyond
// their own name.
func literalOf(tok token.Token, val scanner.Value) string {
	switch tok {
	case token.IDENT:
		if val.HasOffset {
			return fmt.Sprintf("%s:%+d", val.Ident, val.Offset)
		}
		return val.Ident
	case token.INT:
		return fmt.Sprintf("%d", val.Int)
	case token.ATOM:
		return fmt.Sprintf("%q", val.Atom)
	default:
		return ""
	}
}
