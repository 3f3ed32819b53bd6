package scanner

import "github.com/jcnc-org/Snow-sub005/lang/token"

// validateDeclareStatements runs a sequential pass over the full token list
// to enforce declare-statement well-formedness: after `declare` (optionally
// followed by `const`) exactly one identifier is required; a second
// identifier as the very next token is reported as a redundant-identifier
// error. This runs after scanning so it can look across tokens without the
// scanner needing lookahead.
func validateDeclareStatements(toks []token.Token, errs *token.ErrorList) {
	for i := 0; i < len(toks); i++ {
		if toks[i].Kind != token.DECLARE {
			continue
		}
		j := i + 1
		if j < len(toks) && toks[j].Kind == token.CONST {
			j++
		}
		if j >= len(toks) || toks[j].Kind != token.IDENT {
			pos := toks[i].Pos
			line, col := pos.LineCol()
			errs.Add(token.Position{Line: line, Column: col}, "declare: expected identifier")
			continue
		}
		j++
		// Exactly one identifier follows `declare [const]`; a second
		// identifier appearing immediately (before ':' or '=') is a
		// malformed declaration such as `declare x y`.
		if j < len(toks) && toks[j].Kind == token.IDENT {
			line, col := toks[j].Pos.LineCol()
			errs.Add(token.Position{Line: line, Column: col}, "declare: redundant identifier")
		}
	}
}
