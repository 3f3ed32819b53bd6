package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/jcnc-org/Snow-sub005/lang/ast"
)

func (c *Cmd) Parse(_ context.Context, stdio mainer.Stdio, args []string) error {
	return ParseFiles(stdio, args...)
}

// ParseFiles runs the lexer and parser over files and prints the
// resulting top-level AST nodes, for diagnostic inspection of C1/C2
// without running the semantic analyzer.
func ParseFiles(stdio mainer.Stdio, files ...string) error {
	tops, err := parseSources(files)
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}
	for _, top := range tops {
		ast.Print(stdio.Stdout, top)
	}
	return nil
}
