package ir

import (
	"fmt"

	"github.com/jcnc-org/Snow-sub005/lang/ast"
	"github.com/jcnc-org/Snow-sub005/lang/resolver"
	"github.com/jcnc-org/Snow-sub005/lang/token"
	"github.com/jcnc-org/Snow-sub005/lang/types"
)

// builder threads the state needed to lower a resolved AST into a Program:
// the resolver's per-node type annotations, the function currently being
// emitted into, a stack of name->register scopes, the label targets for
// the innermost enclosing loop (for break/continue), and lookup tables for
// the other top-level declarations a call/new expression might reference.
type builder struct {
	info *resolver.Info

	fn     *Function
	scopes []map[string]Reg

	breakLabels    []Label
	continueLabels []Label

	looseFuncs  map[string]bool
	moduleFuncs map[string]map[string]bool
	structs     map[string]*ast.Struct

	curModule string
	curStruct *ast.Struct
}

// Build lowers tops (the same AST passed to resolver.ResolveModules, so
// node identity lines up with info's annotations) into a Program.
func Build(tops []ast.TopLevel, info *resolver.Info) (*Program, error) {
	b := &builder{
		info:        info,
		looseFuncs:  make(map[string]bool),
		moduleFuncs: make(map[string]map[string]bool),
		structs:     make(map[string]*ast.Struct),
	}

	for _, top := range tops {
		switch n := top.(type) {
		case *ast.Function:
			b.looseFuncs[n.Name] = true
		case *ast.Struct:
			b.structs[n.Name] = n
		case *ast.Module:
			names := make(map[string]bool)
			for _, f := range n.Functions {
				names[f.Name] = true
			}
			b.moduleFuncs[n.Name] = names
			for _, s := range n.Structs {
				b.structs[s.Name] = s
			}
		}
	}

	prog := &Program{}
	for name, st := range b.structs {
		prog.Structs = append(prog.Structs, b.lowerStructLayout(name, st))
	}

	for _, top := range tops {
		switch n := top.(type) {
		case *ast.Function:
			b.curModule = ""
			b.curStruct = nil
			fn := b.lowerFunction(n.Name, n.Params, n.ReturnType, n.Body)
			prog.Functions = append(prog.Functions, fn)
			if n.Name == "main" || n.Name == "_start" {
				prog.Entry = fn.Name
			}
		case *ast.Struct:
			b.curModule = ""
			b.curStruct = n
			for _, m := range n.Methods {
				prog.Functions = append(prog.Functions, b.lowerMethod(n, m))
			}
			if n.Init != nil {
				prog.Functions = append(prog.Functions, b.lowerMethod(n, n.Init))
			}
		case *ast.Module:
			b.curModule = n.Name
			b.curStruct = nil
			for _, g := range n.Globals {
				prog.Globals = append(prog.Globals, b.lowerGlobal(g))
			}
			for _, s := range n.Structs {
				b.curStruct = s
				for _, m := range s.Methods {
					prog.Functions = append(prog.Functions, b.lowerMethod(s, m))
				}
				if s.Init != nil {
					prog.Functions = append(prog.Functions, b.lowerMethod(s, s.Init))
				}
				b.curStruct = nil
			}
			for _, f := range n.Functions {
				fn := b.lowerFunction(n.Name+"."+f.Name, f.Params, f.ReturnType, f.Body)
				prog.Functions = append(prog.Functions, fn)
				if f.Name == "main" {
					prog.Entry = fn.Name
				}
			}
		}
	}
	return prog, nil
}

func (b *builder) lowerStructLayout(name string, st *ast.Struct) *StructLayout {
	sl := &StructLayout{Name: name, Parent: st.Parent}
	for _, f := range st.Fields {
		sl.FieldNames = append(sl.FieldNames, f.Name)
		sl.FieldTypes = append(sl.FieldTypes, b.resolveType(f.Type))
	}
	return sl
}

func (b *builder) lowerGlobal(g *ast.Global) *Global {
	gl := &Global{Name: g.Name, Typ: b.resolveType(g.Type)}
	if lit, ok := g.Init.(*ast.NumberLiteral); ok {
		if c, err := parseNumberLiteral(lit.Raw, lit.Suffix); err == nil {
			gl.Init = &c
		}
	} else if lit, ok := g.Init.(*ast.StringLiteral); ok {
		c := Constant{Kind: ConstString, Str: lit.Value, Typ: types.BuiltinType{Kind: types.String}}
		gl.Init = &c
	} else if lit, ok := g.Init.(*ast.BoolLiteral); ok {
		c := Constant{Kind: ConstBool, Bool: lit.Value, Typ: types.BuiltinType{Kind: types.Boolean}}
		gl.Init = &c
	}
	return gl
}

func (b *builder) resolveType(tr *ast.TypeRef) types.Type {
	if tr == nil {
		return types.BuiltinType{Kind: types.Any}
	}
	if tr.IsArray {
		return types.ArrayType{Elem: b.resolveType(tr.Elem)}
	}
	if bt, err := types.FromKeyword(tr.Name); err == nil {
		return bt
	}
	return &types.StructType{Name: tr.Name}
}

func (b *builder) lowerMethod(owner *ast.Struct, m *ast.Function) *Function {
	fn := b.lowerFunction(owner.Name+"."+m.Name, m.Params, m.ReturnType, m.Body)
	fn.IsMethod = true
	return fn
}

func (b *builder) lowerFunction(name string, params []ast.Param, retType *ast.TypeRef, body []ast.Stmt) *Function {
	fn := NewFunction(name)
	b.fn = fn
	b.scopes = []map[string]Reg{{}}

	if b.curStruct != nil {
		selfReg := fn.AllocReg()
		b.declare("self", selfReg)
	}
	for _, p := range params {
		r := fn.AllocReg()
		fn.Params = append(fn.Params, Param{Name: p.Name, Typ: b.resolveType(p.Type), Reg: r})
		b.declare(p.Name, r)
	}
	if retType != nil {
		fn.ReturnType = b.resolveType(retType)
	}

	b.lowerStmts(body)
	return fn
}

func (b *builder) pushScope() { b.scopes = append(b.scopes, map[string]Reg{}) }
func (b *builder) popScope()  { b.scopes = b.scopes[:len(b.scopes)-1] }

func (b *builder) declare(name string, r Reg) {
	b.scopes[len(b.scopes)-1][name] = r
	b.fn.Locals = append(b.fn.Locals, r)
}

func (b *builder) lookup(name string) (Reg, bool) {
	for i := len(b.scopes) - 1; i >= 0; i-- {
		if r, ok := b.scopes[i][name]; ok {
			return r, true
		}
	}
	return 0, false
}

func (b *builder) lowerStmts(stmts []ast.Stmt) {
	for _, s := range stmts {
		b.lowerStmt(s)
	}
}

func (b *builder) lowerStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.Declaration:
		r := b.fn.AllocReg()
		if n.Init != nil {
			b.lowerExprInto(n.Init, r)
		} else {
			b.fn.Emit(Instruction{Op: OpLoadConst, Dst: r, Src1: ConstOperand(Constant{Kind: ConstInt})})
		}
		b.declare(n.Name, r)
	case *ast.Assignment:
		b.lowerAssignment(n)
	case *ast.IndexAssignment:
		arr := b.lowerExpr(n.Array)
		idx := b.lowerExpr(n.Idx)
		val := b.lowerExpr(n.Value)
		b.fn.Emit(Instruction{Op: OpStoreIndex, Src1: arr, Src2: idx, Src3: val})
	case *ast.If:
		b.lowerIf(n)
	case *ast.Loop:
		b.lowerLoop(n)
	case *ast.Return:
		if n.Value == nil {
			b.fn.Emit(Instruction{Op: OpReturn})
			return
		}
		v := b.lowerExpr(n.Value)
		b.fn.Emit(Instruction{Op: OpReturn, Src1: v, HasValue: true})
	case *ast.Break:
		if len(b.breakLabels) > 0 {
			b.fn.Emit(Instruction{Op: OpJump, L: b.breakLabels[len(b.breakLabels)-1]})
		}
	case *ast.Continue:
		if len(b.continueLabels) > 0 {
			b.fn.Emit(Instruction{Op: OpJump, L: b.continueLabels[len(b.continueLabels)-1]})
		}
	case *ast.ExpressionStmt:
		b.lowerExpr(n.Expr)
	}
}

func (b *builder) lowerAssignment(n *ast.Assignment) {
	switch target := n.Target.(type) {
	case *ast.Identifier:
		if r, ok := b.lookup(target.Name); ok {
			b.lowerExprInto(n.Value, r)
			return
		}
		val := b.lowerExpr(n.Value)
		b.fn.Emit(Instruction{Op: OpStoreGlobal, Name: target.Name, Src1: val})
	case *ast.Member:
		obj := b.lowerExpr(target.Object)
		val := b.lowerExpr(n.Value)
		b.fn.Emit(Instruction{Op: OpStoreField, Src1: obj, Name: target.Name, Src2: val})
	}
}

// lowerIf emits: evaluate cond; cmpjump-if-false to elseLabel; then-block;
// jump to endLabel; elseLabel:; else-block; endLabel:.
func (b *builder) lowerIf(n *ast.If) {
	cond := b.lowerExpr(n.Cond)
	elseLabel := b.fn.NewLabel()
	endLabel := b.fn.NewLabel()

	b.fn.Emit(Instruction{Op: OpCmpJump, Src1: cond, L: elseLabel})
	b.pushScope()
	b.lowerStmts(n.Then)
	b.popScope()
	b.fn.Emit(Instruction{Op: OpJump, L: endLabel})
	b.fn.Emit(Instruction{Op: OpLabel, L: elseLabel})
	if n.Else != nil {
		b.pushScope()
		b.lowerStmts(n.Else)
		b.popScope()
	}
	b.fn.Emit(Instruction{Op: OpLabel, L: endLabel})
}

// lowerLoop emits the C-style for-loop shape: init; condLabel:; evaluate
// cond (if any); cmpjump-if-false to endLabel; body; stepLabel:; step;
// jump to condLabel; endLabel:. continue jumps to stepLabel so the step
// clause always runs before the next condition check.
func (b *builder) lowerLoop(n *ast.Loop) {
	b.pushScope()
	if n.Init != nil {
		b.lowerStmt(n.Init)
	}
	condLabel := b.fn.NewLabel()
	stepLabel := b.fn.NewLabel()
	endLabel := b.fn.NewLabel()

	b.fn.Emit(Instruction{Op: OpLabel, L: condLabel})
	if n.Cond != nil {
		cond := b.lowerExpr(n.Cond)
		b.fn.Emit(Instruction{Op: OpCmpJump, Src1: cond, L: endLabel})
	}

	b.breakLabels = append(b.breakLabels, endLabel)
	b.continueLabels = append(b.continueLabels, stepLabel)
	b.lowerStmts(n.Body)
	b.continueLabels = b.continueLabels[:len(b.continueLabels)-1]
	b.breakLabels = b.breakLabels[:len(b.breakLabels)-1]

	b.fn.Emit(Instruction{Op: OpLabel, L: stepLabel})
	if n.Step != nil {
		b.lowerStmt(n.Step)
	}
	b.fn.Emit(Instruction{Op: OpJump, L: condLabel})
	b.fn.Emit(Instruction{Op: OpLabel, L: endLabel})
	b.popScope()
}

// lowerExpr lowers e into a fresh register and returns an operand
// referencing it (or, for literals, a constant operand with no register
// cost).
func (b *builder) lowerExpr(e ast.Expr) Operand {
	switch n := e.(type) {
	case *ast.NumberLiteral:
		c, err := parseNumberLiteral(n.Raw, n.Suffix)
		if err != nil {
			c = Constant{Kind: ConstString, Str: n.Raw, Typ: types.BuiltinType{Kind: types.String}}
		}
		return ConstOperand(c)
	case *ast.StringLiteral:
		return ConstOperand(Constant{Kind: ConstString, Str: n.Value, Typ: types.BuiltinType{Kind: types.String}})
	case *ast.BoolLiteral:
		return ConstOperand(Constant{Kind: ConstBool, Bool: n.Value, Typ: types.BuiltinType{Kind: types.Boolean}})
	}

	r := b.fn.AllocReg()
	b.lowerExprInto(e, r)
	return RegOperand(r)
}

// lowerExprInto lowers e and emits whatever instruction computes it
// directly into dst, avoiding a redundant Move for the common case of a
// declaration or assignment initializer.
func (b *builder) lowerExprInto(e ast.Expr, dst Reg) {
	switch n := e.(type) {
	case *ast.Identifier:
		if r, ok := b.lookup(n.Name); ok {
			b.fn.Emit(Instruction{Op: OpMove, Dst: dst, Src1: RegOperand(r)})
			return
		}
		b.fn.Emit(Instruction{Op: OpLoadGlobal, Dst: dst, Name: n.Name})
	case *ast.NumberLiteral, *ast.StringLiteral, *ast.BoolLiteral:
		op := b.lowerExpr(n)
		b.fn.Emit(Instruction{Op: OpLoadConst, Dst: dst, Src1: op})
	case *ast.ArrayLiteral:
		args := make([]Operand, len(n.Elems))
		for i, el := range n.Elems {
			args[i] = b.lowerExpr(el)
		}
		b.fn.Emit(Instruction{Op: OpNewArray, Dst: dst, Args: args, Typ: b.typeOf(n)})
	case *ast.Unary:
		b.lowerUnaryInto(n, dst)
	case *ast.Binary:
		b.lowerBinaryInto(n, dst)
	case *ast.Call:
		b.lowerCallInto(n, dst)
	case *ast.Index:
		arr := b.lowerExpr(n.Array)
		idx := b.lowerExpr(n.Idx)
		b.fn.Emit(Instruction{Op: OpLoadIndex, Dst: dst, Src1: arr, Src2: idx})
	case *ast.Member:
		obj := b.lowerExpr(n.Object)
		b.fn.Emit(Instruction{Op: OpLoadField, Dst: dst, Src1: obj, Name: n.Name})
	case *ast.New:
		args := make([]Operand, len(n.Args))
		for i, a := range n.Args {
			args[i] = b.lowerExpr(a)
		}
		b.fn.Emit(Instruction{Op: OpNewStruct, Dst: dst, Name: n.TypeName, Args: args})
	default:
		panic(fmt.Sprintf("ir: unhandled expression %T", e))
	}
}

func (b *builder) typeOf(e ast.Expr) types.Type {
	if t, ok := b.info.Types[e]; ok {
		return t
	}
	return types.BuiltinType{Kind: types.Any}
}

func (b *builder) lowerUnaryInto(n *ast.Unary, dst Reg) {
	src := b.lowerExpr(n.Operand)
	switch n.Op {
	case token.MINUS:
		b.fn.Emit(Instruction{Op: OpUnary, Dst: dst, Arith: Neg, Src1: src, Typ: b.typeOf(n)})
	case token.NOT:
		// `!x` lowers to `x == false`.
		b.fn.Emit(Instruction{Op: OpCompare, Dst: dst, Cmp: Eq, Src1: src,
			Src2: ConstOperand(Constant{Kind: ConstBool, Bool: false, Typ: types.BuiltinType{Kind: types.Boolean}}),
			Typ:  types.BuiltinType{Kind: types.Boolean}})
	}
}

func (b *builder) lowerBinaryInto(n *ast.Binary, dst Reg) {
	if n.Op == token.AND || n.Op == token.OR {
		b.lowerShortCircuitInto(n, dst)
		return
	}

	lhs := b.lowerExpr(n.LHS)
	rhs := b.lowerExpr(n.RHS)
	operandType := b.typeOf(n.LHS)

	switch n.Op {
	case token.EQ:
		b.fn.Emit(Instruction{Op: OpCompare, Dst: dst, Cmp: Eq, Src1: lhs, Src2: rhs, Typ: operandType})
	case token.NEQ:
		b.fn.Emit(Instruction{Op: OpCompare, Dst: dst, Cmp: Neq, Src1: lhs, Src2: rhs, Typ: operandType})
	case token.GT:
		b.fn.Emit(Instruction{Op: OpCompare, Dst: dst, Cmp: Gt, Src1: lhs, Src2: rhs, Typ: operandType})
	case token.GE:
		b.fn.Emit(Instruction{Op: OpCompare, Dst: dst, Cmp: Ge, Src1: lhs, Src2: rhs, Typ: operandType})
	case token.LT:
		b.fn.Emit(Instruction{Op: OpCompare, Dst: dst, Cmp: Lt, Src1: lhs, Src2: rhs, Typ: operandType})
	case token.LE:
		b.fn.Emit(Instruction{Op: OpCompare, Dst: dst, Cmp: Le, Src1: lhs, Src2: rhs, Typ: operandType})
	case token.PLUS:
		arith := Add
		if bt, ok := operandType.(types.BuiltinType); ok && bt.Kind == types.String {
			arith = Concat
		} else if rt := b.typeOf(n.RHS); rt != nil {
			if bt, ok := rt.(types.BuiltinType); ok && bt.Kind == types.String {
				arith = Concat
			}
		}
		b.fn.Emit(Instruction{Op: OpBinary, Dst: dst, Arith: arith, Src1: lhs, Src2: rhs, Typ: b.typeOf(n)})
	case token.MINUS:
		b.fn.Emit(Instruction{Op: OpBinary, Dst: dst, Arith: Sub, Src1: lhs, Src2: rhs, Typ: b.typeOf(n)})
	case token.STAR:
		b.fn.Emit(Instruction{Op: OpBinary, Dst: dst, Arith: Mul, Src1: lhs, Src2: rhs, Typ: b.typeOf(n)})
	case token.SLASH:
		b.fn.Emit(Instruction{Op: OpBinary, Dst: dst, Arith: Div, Src1: lhs, Src2: rhs, Typ: b.typeOf(n)})
	case token.PERCENT:
		b.fn.Emit(Instruction{Op: OpBinary, Dst: dst, Arith: Mod, Src1: lhs, Src2: rhs, Typ: b.typeOf(n)})
	}
}

// lowerShortCircuitInto lowers `&&`/`||` into branches so the right-hand
// side is only evaluated when its value can affect the result.
func (b *builder) lowerShortCircuitInto(n *ast.Binary, dst Reg) {
	lhs := b.lowerExpr(n.LHS)
	b.fn.Emit(Instruction{Op: OpMove, Dst: dst, Src1: lhs})

	skip := b.fn.NewLabel()
	if n.Op == token.AND {
		// if lhs is false, short-circuit to false without evaluating rhs.
		b.fn.Emit(Instruction{Op: OpCmpJump, Src1: RegOperand(dst), L: skip})
	} else {
		// OR: if lhs is true, short-circuit to true.
		notLhs := b.fn.AllocReg()
		b.fn.Emit(Instruction{Op: OpCompare, Dst: notLhs, Cmp: Eq, Src1: RegOperand(dst),
			Src2: ConstOperand(Constant{Kind: ConstBool, Bool: false, Typ: types.BuiltinType{Kind: types.Boolean}})})
		b.fn.Emit(Instruction{Op: OpCmpJump, Src1: RegOperand(notLhs), L: skip})
	}
	rhs := b.lowerExpr(n.RHS)
	b.fn.Emit(Instruction{Op: OpMove, Dst: dst, Src1: rhs})
	b.fn.Emit(Instruction{Op: OpLabel, L: skip})
}

func (b *builder) lowerCallInto(n *ast.Call, dst Reg) {
	args := make([]Operand, len(n.Args))
	for i, a := range n.Args {
		args[i] = b.lowerExpr(a)
	}

	switch callee := n.Callee.(type) {
	case *ast.Identifier:
		if b.curStruct != nil {
			if m := b.findMethod(b.curStruct, callee.Name); m != nil {
				selfReg, _ := b.lookup("self")
				b.fn.Emit(Instruction{Op: OpCallMethod, Dst: dst, Src1: RegOperand(selfReg), Name: callee.Name, Args: args})
				return
			}
		}
		if b.curModule != "" && b.moduleFuncs[b.curModule][callee.Name] {
			b.fn.Emit(Instruction{Op: OpCall, Dst: dst, Name: b.curModule + "." + callee.Name, Args: args})
			return
		}
		b.fn.Emit(Instruction{Op: OpCall, Dst: dst, Name: callee.Name, Args: args})
	case *ast.Member:
		if ident, ok := callee.Object.(*ast.Identifier); ok {
			if fns, ok := b.moduleFuncs[ident.Name]; ok && fns[callee.Name] {
				b.fn.Emit(Instruction{Op: OpCall, Dst: dst, Name: ident.Name + "." + callee.Name, Args: args})
				return
			}
		}
		obj := b.lowerExpr(callee.Object)
		b.fn.Emit(Instruction{Op: OpCallMethod, Dst: dst, Src1: obj, Name: callee.Name, Args: args})
	}
}

// findMethod walks st's own methods, then its extends chain, resolving
// parent names through b.structs.
func (b *builder) findMethod(st *ast.Struct, name string) *ast.Function {
	for cur := st; cur != nil; {
		for _, m := range cur.Methods {
			if m.Name == name {
				return m
			}
		}
		if cur.Parent == "" {
			return nil
		}
		cur = b.structs[cur.Parent]
	}
	return nil
}
