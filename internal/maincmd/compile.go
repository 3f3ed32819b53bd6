package maincmd

import (
	"errors"
	"fmt"

	"github.com/jcnc-org/Snow-sub005/lang/compiler"
	"github.com/jcnc-org/Snow-sub005/lang/ir"
	"github.com/jcnc-org/Snow-sub005/lang/resolver"
)

// compileFiles runs files through every stage up to and including the
// backend (C1-C6), returning the compiled bytecode program.
func compileFiles(files []string) (*compiler.Program, error) {
	tops, err := parseSources(files)
	if err != nil {
		return nil, err
	}

	info := resolver.ResolveModules(tops)
	if len(info.Errors) > 0 {
		errs := make([]error, len(info.Errors))
		for i, e := range info.Errors {
			errs[i] = e
		}
		return nil, errors.Join(errs...)
	}

	prog, err := ir.Build(tops, info)
	if err != nil {
		return nil, fmt.Errorf("lowering to IR: %w", err)
	}

	compiled, err := compiler.Compile(prog)
	if err != nil {
		return nil, fmt.Errorf("compiling: %w", err)
	}
	return compiled, nil
}
