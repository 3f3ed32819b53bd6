package resolver

import (
	"github.com/jcnc-org/Snow-sub005/lang/ast"
	"github.com/jcnc-org/Snow-sub005/lang/token"
	"github.com/jcnc-org/Snow-sub005/lang/types"
)

// analyzeExpr dispatches on n's concrete expression kind, records its
// resolved type in info.Types, and returns that type so callers can chain
// compatibility checks without a second lookup.
func (r *Resolver) analyzeExpr(e ast.Expr) types.Type {
	var t types.Type
	switch n := e.(type) {
	case *ast.Identifier:
		t = r.analyzeIdentifier(n)
	case *ast.NumberLiteral:
		t = r.analyzeNumberLiteral(n)
	case *ast.StringLiteral:
		t = types.BuiltinType{Kind: types.String}
	case *ast.BoolLiteral:
		t = types.BuiltinType{Kind: types.Boolean}
	case *ast.ArrayLiteral:
		t = r.analyzeArrayLiteral(n)
	case *ast.Unary:
		t = r.analyzeUnary(n)
	case *ast.Binary:
		t = r.analyzeBinary(n)
	case *ast.Call:
		t = r.analyzeCall(n)
	case *ast.Index:
		t = r.analyzeIndex(n)
	case *ast.Member:
		t = r.analyzeMember(n)
	case *ast.New:
		t = r.analyzeNew(n)
	default:
		t = types.BuiltinType{Kind: types.Any}
	}
	r.info.Types[e] = t
	return t
}

func (r *Resolver) analyzeIdentifier(n *ast.Identifier) types.Type {
	if sym, ok := r.scope.Lookup(n.Name); ok {
		r.info.Symbols[n] = sym
		return sym.Type
	}
	if r.mod != nil {
		if g, ok := r.mod.Globals.Get(n.Name); ok {
			return g
		}
		if ft, ok := r.mod.Functions.Get(n.Name); ok {
			return ft
		}
	}
	r.info.errorf(n, "undeclared identifier %s", n.Name)
	return types.BuiltinType{Kind: types.Any}
}

// analyzeNumberLiteral assigns a provisional type from the literal's suffix
// (b/s/l/f); unsuffixed literals default to int unless they are decimal
// (not 0x-prefixed) and contain a decimal point or an e/E exponent, in which
// case they default to double. The exact numeric value and range check
// happen later, when lang/ir parses Raw.
func (r *Resolver) analyzeNumberLiteral(n *ast.NumberLiteral) types.Type {
	switch n.Suffix {
	case 'b', 'B':
		return types.BuiltinType{Kind: types.Byte}
	case 's', 'S':
		return types.BuiltinType{Kind: types.Short}
	case 'l', 'L':
		return types.BuiltinType{Kind: types.Long}
	case 'f', 'F':
		return types.BuiltinType{Kind: types.Float}
	case 'd', 'D':
		return types.BuiltinType{Kind: types.Double}
	}
	if len(n.Raw) > 1 && n.Raw[0] == '0' && (n.Raw[1] == 'x' || n.Raw[1] == 'X') {
		return types.BuiltinType{Kind: types.Int}
	}
	for _, c := range n.Raw {
		if c == '.' || c == 'e' || c == 'E' {
			return types.BuiltinType{Kind: types.Double}
		}
	}
	return types.BuiltinType{Kind: types.Int}
}

// analyzeArrayLiteral implements the Open Question decision recorded in
// DESIGN.md: array element type is inferred from the first element, and
// every later element must be compatible with it; mismatched elements are
// reported once at the literal, not per element.
func (r *Resolver) analyzeArrayLiteral(n *ast.ArrayLiteral) types.Type {
	if len(n.Elems) == 0 {
		return types.ArrayType{Elem: types.BuiltinType{Kind: types.Any}}
	}
	elemType := r.analyzeExpr(n.Elems[0])
	reported := false
	for _, e := range n.Elems[1:] {
		t := r.analyzeExpr(e)
		if elemType.IsCompatible(t) || reported {
			continue
		}
		r.info.errorf(n, "array literal has mismatched element types %s and %s", elemType, t)
		reported = true
	}
	return types.ArrayType{Elem: elemType}
}

func (r *Resolver) analyzeUnary(n *ast.Unary) types.Type {
	t := r.analyzeExpr(n.Operand)
	bt, ok := t.(types.BuiltinType)
	if !ok {
		r.info.errorf(n, "invalid operand type %s for unary operator", t)
		return types.BuiltinType{Kind: types.Any}
	}
	switch {
	case bt.Kind == types.Boolean:
		return bt
	case bt.IsNumeric():
		return bt
	default:
		r.info.errorf(n, "invalid operand type %s for unary operator", t)
		return types.BuiltinType{Kind: types.Any}
	}
}

// analyzeBinary resolves comparison operators to boolean, logical operators
// to boolean (requiring boolean operands), and arithmetic operators to the
// widened numeric type of both operands.
func (r *Resolver) analyzeBinary(n *ast.Binary) types.Type {
	lt := r.analyzeExpr(n.LHS)
	rt := r.analyzeExpr(n.RHS)

	if isComparisonOp(n.Op) {
		if !lt.IsCompatible(rt) && !rt.IsCompatible(lt) {
			r.info.errorf(n, "cannot compare %s with %s", lt, rt)
		}
		return types.BuiltinType{Kind: types.Boolean}
	}
	if isLogicalOp(n.Op) {
		r.requireBoolean(n, lt)
		r.requireBoolean(n, rt)
		return types.BuiltinType{Kind: types.Boolean}
	}

	lbt, lok := lt.(types.BuiltinType)
	rbt, rok := rt.(types.BuiltinType)
	if !lok || !rok || (!lbt.IsNumeric() && lbt.Kind != types.String) {
		r.info.errorf(n, "invalid operand types %s and %s for %s", lt, rt, n.Op)
		return types.BuiltinType{Kind: types.Any}
	}
	if lbt.Kind == types.String || rbt.Kind == types.String {
		return types.BuiltinType{Kind: types.String}
	}
	if lbt.IsCompatible(rbt) {
		return lbt
	}
	return rbt
}

func isComparisonOp(k token.Kind) bool {
	switch k {
	case token.EQ, token.NEQ, token.GT, token.GE, token.LT, token.LE:
		return true
	default:
		return false
	}
}

func isLogicalOp(k token.Kind) bool {
	return k == token.AND || k == token.OR
}

func (r *Resolver) analyzeCall(n *ast.Call) types.Type {
	var ft types.FuncType
	found := false

	switch callee := n.Callee.(type) {
	case *ast.Identifier:
		if r.mod != nil {
			if f, ok := r.mod.Functions.Get(callee.Name); ok {
				ft, found = f, true
			}
		}
		if !found {
			if f, ok := builtins.Get(callee.Name); ok {
				ft, found = f, true
			}
		}
	case *ast.Member:
		// module.function(...) or object.method(...)
		if ident, ok := callee.Object.(*ast.Identifier); ok {
			if mi, ok := r.info.Modules[ident.Name]; ok {
				if f, ok := mi.Functions.Get(callee.Name); ok {
					ft, found = f, true
					break
				}
			}
		}
		objType := r.analyzeExpr(callee.Object)
		if st, ok := objType.(*types.StructType); ok {
			if mf, ok := st.Method(callee.Name); ok {
				ft, found = mf, true
			}
		}
	}

	if !found {
		r.info.errorf(n, "call to unresolved function")
		for _, a := range n.Args {
			r.analyzeExpr(a)
		}
		return types.BuiltinType{Kind: types.Any}
	}

	if len(n.Args) != len(ft.Params) {
		r.info.errorf(n, "call expects %d arguments, got %d", len(ft.Params), len(n.Args))
	}
	for i, a := range n.Args {
		at := r.analyzeExpr(a)
		if i < len(ft.Params) && !ft.Params[i].IsCompatible(at) {
			r.info.errorf(n, "argument %d: cannot pass %s as %s", i+1, at, ft.Params[i])
		}
	}
	return ft.Return
}

func (r *Resolver) analyzeIndex(n *ast.Index) types.Type {
	arrType := r.analyzeExpr(n.Array)
	idxType := r.analyzeExpr(n.Idx)
	if !idxType.IsNumeric() {
		r.info.errorf(n, "array index must be numeric, got %s", idxType)
	}
	at, ok := arrType.(types.ArrayType)
	if !ok {
		r.info.errorf(n, "cannot index into non-array type %s", arrType)
		return types.BuiltinType{Kind: types.Any}
	}
	return at.Elem
}

func (r *Resolver) analyzeMember(n *ast.Member) types.Type {
	objType := r.analyzeExpr(n.Object)
	if ft := r.fieldType(objType, n.Name); ft != nil {
		return ft
	}
	r.info.errorf(n, "unknown field or method %s on %s", n.Name, objType)
	return types.BuiltinType{Kind: types.Any}
}

func (r *Resolver) analyzeNew(n *ast.New) types.Type {
	var st *types.StructType
	if r.mod != nil {
		if s, ok := r.mod.Structs.Get(n.TypeName); ok {
			st = s
		}
	}
	for _, a := range n.Args {
		r.analyzeExpr(a)
	}
	if st == nil {
		r.info.errorf(n, "unknown struct type %s", n.TypeName)
		return types.BuiltinType{Kind: types.Any}
	}
	return st
}
