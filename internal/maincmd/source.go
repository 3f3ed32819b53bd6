package maincmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/jcnc-org/Snow-sub005/lang/ast"
	"github.com/jcnc-org/Snow-sub005/lang/parser"
	"github.com/jcnc-org/Snow-sub005/lang/scanner"
	"github.com/jcnc-org/Snow-sub005/lang/token"
)

// scanFile reads and tokenizes filename, returning its tokens and any
// accumulated lexical errors.
func scanFile(filename string) ([]token.Token, token.ErrorList, error) {
	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, nil, err
	}
	toks, errs := scanner.ScanAll(filename, src)
	return toks, errs, nil
}

// parseSources tokenizes and parses every file in order, concatenating
// their top-level nodes into a single list so the resolver sees
// cross-file references (module-qualified imports) together.
func parseSources(files []string) ([]ast.TopLevel, error) {
	var tops []ast.TopLevel
	var errs []error

	for _, filename := range files {
		toks, lexErrs, err := scanFile(filename)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", filename, err))
			continue
		}
		if len(lexErrs) > 0 {
			errs = append(errs, lexErrs.Err())
			continue
		}
		fileTops, parseErrs := parser.ParseFile(filename, toks)
		if len(parseErrs) > 0 {
			for _, pe := range parseErrs {
				errs = append(errs, pe)
			}
			continue
		}
		tops = append(tops, fileTops...)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return tops, nil
}
