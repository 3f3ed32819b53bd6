package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/jcnc-org/Snow-sub005/lang/token"
)

func (c *Cmd) Tokenize(_ context.Context, stdio mainer.Stdio, args []string) error {
	return TokenizeFiles(stdio, args...)
}

// TokenizeFiles runs the lexer alone over files and prints its token
// stream, one token per line, for diagnostic inspection of C1 in
// isolation from the rest of the pipeline.
func TokenizeFiles(stdio mainer.Stdio, files ...string) error {
	var failed error
	for _, f := range files {
		toks, errs, err := scanFile(f)
		if err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			failed = err
			continue
		}
		for _, tok := range toks {
			pos := token.ResolvePos(f, tok.Pos)
			fmt.Fprintf(stdio.Stdout, "%s: %s", pos, tok.Kind)
			if tok.Lexeme != "" {
				fmt.Fprintf(stdio.Stdout, " %q", tok.Lexeme)
			}
			fmt.Fprintln(stdio.Stdout)
		}
		if len(errs) > 0 {
			fmt.Fprintln(stdio.Stderr, errs.Error())
			failed = errs.Err()
		}
	}
	return failed
}
