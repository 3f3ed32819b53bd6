package resolver

import (
	"github.com/jcnc-org/Snow-sub005/lang/ast"
	"github.com/jcnc-org/Snow-sub005/lang/types"
)

// analyzeStmt dispatches to the rule for n's concrete statement kind.
func (r *Resolver) analyzeStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.Declaration:
		r.analyzeDeclaration(n)
	case *ast.Assignment:
		r.analyzeAssignment(n)
	case *ast.IndexAssignment:
		r.analyzeIndexAssignment(n)
	case *ast.If:
		r.analyzeIf(n)
	case *ast.Loop:
		r.analyzeLoop(n)
	case *ast.Return:
		r.analyzeReturn(n)
	case *ast.Break:
		if r.loopDepth == 0 {
			r.info.errorf(n, "break outside of a loop")
		}
	case *ast.Continue:
		if r.loopDepth == 0 {
			r.info.errorf(n, "continue outside of a loop")
		}
	case *ast.ExpressionStmt:
		r.analyzeExpr(n.Expr)
	}
}

// analyzeDeclaration implements the Declaration rule: if an initializer is
// present, its type must be assignable to the declared type.
// A bare numeric literal may initialize any numeric declared type, even a
// narrower one (see literalNarrows); its value is not range-checked here.
func (r *Resolver) analyzeDeclaration(n *ast.Declaration) {
	var declared types.Type
	if n.Type != nil {
		declared = r.resolveTypeRef(r.mod, n.Type)
	}

	var initType types.Type
	if n.Init != nil {
		initType = r.analyzeExpr(n.Init)
		if declared == nil {
			declared = initType
		} else if !declared.IsCompatible(initType) {
			if !r.literalNarrows(declared, n.Init) {
				r.info.errorf(n, "cannot assign %s to declared type %s", initType, declared)
			}
		}
	}
	if declared == nil {
		declared = types.BuiltinType{Kind: types.Any}
	}

	if !r.scope.Declare(&types.Symbol{Name: n.Name, Type: declared, Kind: types.VariableSymbol, Const: n.Const}) {
		r.info.errorf(n, "%s is already declared in this scope", n.Name)
	}
	r.info.Types[n] = declared
}

// literalNarrows allows `declare x:byte = 10` style narrowing when init is
// a bare NumberLiteral and declared is a numeric builtin; the literal's
// runtime range is checked in lang/ir where its value is actually parsed,
// so here it is accepted as long as both sides are numeric.
func (r *Resolver) literalNarrows(declared types.Type, init ast.Expr) bool {
	lit, ok := init.(*ast.NumberLiteral)
	if !ok {
		return false
	}
	_ = lit
	bt, ok := declared.(types.BuiltinType)
	return ok && bt.IsNumeric()
}

// analyzeAssignment implements the Assignment rule: the lvalue must resolve
// to a mutable symbol; the rvalue type must be compatible.
func (r *Resolver) analyzeAssignment(n *ast.Assignment) {
	valType := r.analyzeExpr(n.Value)

	switch target := n.Target.(type) {
	case *ast.Identifier:
		sym, ok := r.scope.Lookup(target.Name)
		if !ok {
			r.info.errorf(n, "assignment to undeclared name %s", target.Name)
			return
		}
		if sym.Const {
			r.info.errorf(n, "cannot assign to const %s", target.Name)
			return
		}
		if !sym.Type.IsCompatible(valType) {
			r.info.errorf(n, "cannot assign %s to %s of type %s", valType, target.Name, sym.Type)
		}
		r.info.Symbols[n] = sym
	case *ast.Member:
		objType := r.analyzeExpr(target.Object)
		fieldType := r.fieldType(objType, target.Name)
		if fieldType == nil {
			r.info.errorf(n, "unknown field %s", target.Name)
			return
		}
		if !fieldType.IsCompatible(valType) {
			r.info.errorf(n, "cannot assign %s to field %s of type %s", valType, target.Name, fieldType)
		}
	default:
		r.info.errorf(n, "invalid assignment target")
	}
}

// analyzeIndexAssignment implements the Index rule for the lvalue side:
// the indexed value must be an Array(T); the index expression must be
// numeric; the assigned value must be compatible with T.
func (r *Resolver) analyzeIndexAssignment(n *ast.IndexAssignment) {
	arrType := r.analyzeExpr(n.Array)
	idxType := r.analyzeExpr(n.Idx)
	valType := r.analyzeExpr(n.Value)

	at, ok := arrType.(types.ArrayType)
	if !ok {
		r.info.errorf(n, "cannot index into non-array type %s", arrType)
		return
	}
	if !idxType.IsNumeric() {
		r.info.errorf(n, "array index must be numeric, got %s", idxType)
	}
	if !at.Elem.IsCompatible(valType) {
		r.info.errorf(n, "cannot assign %s into array of %s", valType, at.Elem)
	}
}

// analyzeIf implements the If rule: condition must be boolean-typed.
func (r *Resolver) analyzeIf(n *ast.If) {
	condType := r.analyzeExpr(n.Cond)
	r.requireBoolean(n, condType)

	r.scope.Push()
	r.analyzeStmts(n.Then)
	r.scope.Pop()

	if n.Else != nil {
		r.scope.Push()
		r.analyzeStmts(n.Else)
		r.scope.Pop()
	}
}

// analyzeLoop implements the Loop rule: condition must be boolean-typed or
// a numeric comparison result (both collapse to BuiltinType{Boolean} once
// a Binary comparison is analyzed, so the same requireBoolean check applies
// here as for If).
func (r *Resolver) analyzeLoop(n *ast.Loop) {
	r.scope.Push()
	if n.Init != nil {
		r.analyzeStmt(n.Init)
	}
	if n.Cond != nil {
		condType := r.analyzeExpr(n.Cond)
		r.requireBoolean(n, condType)
	}
	r.loopDepth++
	r.analyzeStmts(n.Body)
	r.loopDepth--
	if n.Step != nil {
		r.analyzeStmt(n.Step)
	}
	r.scope.Pop()
}

// analyzeReturn implements the Return rule: void functions must not return
// a value; non-void functions must, and the value's type must be
// compatible with the declared return type.
func (r *Resolver) analyzeReturn(n *ast.Return) {
	if n.Value == nil {
		if !r.voidFn {
			r.info.errorf(n, "missing return value in non-void function")
		}
		return
	}
	if r.voidFn {
		r.info.errorf(n, "void function must not return a value")
		return
	}
	valType := r.analyzeExpr(n.Value)
	if !r.retType.IsCompatible(valType) {
		r.info.errorf(n, "cannot return %s from function declared to return %s", valType, r.retType)
	}
}

func (r *Resolver) requireBoolean(n ast.Node, t types.Type) {
	if bt, ok := t.(types.BuiltinType); !ok || (bt.Kind != types.Boolean && bt.Kind != types.Any) {
		r.info.errorf(n, "condition must be boolean, got %s", t)
	}
}

// fieldType looks up name in a struct type's own fields and ancestor chain,
// falling back to its method table so a bare `object.method` reference
// (not immediately called) still resolves to the method's FuncType.
func (r *Resolver) fieldType(t types.Type, name string) types.Type {
	st, ok := t.(*types.StructType)
	if !ok {
		return nil
	}
	for s := st; s != nil; s = s.Parent {
		if ft, ok := s.Fields[name]; ok {
			return ft
		}
	}
	if mf, ok := st.Method(name); ok {
		return mf
	}
	return nil
}
