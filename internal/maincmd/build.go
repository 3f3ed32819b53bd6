package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/jcnc-org/Snow-sub005/lang/compiler"
)

func (c *Cmd) Build(_ context.Context, stdio mainer.Stdio, args []string) error {
	return BuildFiles(stdio, args...)
}

// BuildFiles runs files through the full C1-C6 pipeline and prints a
// disassembly of the resulting bytecode, without executing it.
func BuildFiles(stdio mainer.Stdio, files ...string) error {
	compiled, err := compileFiles(files)
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}
	fmt.Fprint(stdio.Stdout, compiler.Disassemble(compiled))
	return nil
}
