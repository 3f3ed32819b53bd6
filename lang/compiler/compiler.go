package compiler

import (
	"fmt"

	"github.com/dolthub/swiss"

	"github.com/jcnc-org/Snow-sub005/lang/ir"
	"github.com/jcnc-org/Snow-sub005/lang/regalloc"
	"github.com/jcnc-org/Snow-sub005/lang/types"
)

// Compile lowers an ir.Program into bytecode. Register allocation happens
// here, one function at a time, via lang/regalloc; the backend never sees
// a virtual register, only the slot regalloc assigned it.
//
// Snow's IR is already a flat, label-addressed instruction stream rather
// than a CFG of basic blocks, so there is no block layout pass here: label
// resolution is a single backpatch over each function's own generated code.
//
// Local loads and stores always use the width-generic R_LOAD/R_STORE
// opcodes rather than the catalog's B_/S_/I_/L_/F_/D_ load/store families:
// the VM's operand stack holds boxed Values that already carry their own
// type tag, so a width-specific local slot opcode would buy nothing. The
// width families are exercised instead where they matter for runtime
// behavior: constant encoding and arithmetic (overflow and rounding are
// width-sensitive; slot storage is not).
func Compile(prog *ir.Program) (*Program, error) {
	allocs := regalloc.Program(prog.Functions)

	out := &Program{Entry: prog.Entry}
	for _, g := range prog.Globals {
		out.Globals = append(out.Globals, &Global{Name: g.Name, Typ: g.Typ, Init: g.Init})
	}
	for _, s := range prog.Structs {
		out.Structs = append(out.Structs, &Struct{
			Name: s.Name, FieldNames: s.FieldNames, FieldTypes: s.FieldTypes, Parent: s.Parent,
		})
	}

	for _, fn := range prog.Functions {
		cf, err := compileFunc(fn, allocs[fn.Name])
		if err != nil {
			return nil, fmt.Errorf("compiling %s: %w", fn.Name, err)
		}
		out.Funcs = append(out.Funcs, cf)
	}
	return out, nil
}

// funcGen threads the state for lowering one ir.Function's instruction
// list into bytecode: the slot assignment, the code buffer under
// construction, and the backpatch bookkeeping for labels.
type funcGen struct {
	alloc *regalloc.Allocation
	code  []Instr

	labelAddr *swiss.Map[ir.Label, int]
	patches   []patch
}

type patch struct {
	at    int // index into code needing its Addr field resolved
	label ir.Label
}

func compileFunc(fn *ir.Function, alloc *regalloc.Allocation) (*Func, error) {
	g := &funcGen{alloc: alloc, labelAddr: swiss.NewMap[ir.Label, int](8)}

	for _, in := range fn.Instrs {
		if err := g.emit(in); err != nil {
			return nil, err
		}
	}
	for _, p := range g.patches {
		addr, ok := g.labelAddr.Get(p.label)
		if !ok {
			return nil, fmt.Errorf("unresolved label %s", p.label)
		}
		g.code[p.at].Addr = addr
	}

	return &Func{
		Name:       fn.Name,
		NumParams:  len(fn.Params),
		NumSlots:   alloc.NumSlots,
		IsMethod:   fn.IsMethod,
		ReturnType: fn.ReturnType,
		Code:       g.code,
	}, nil
}

func (g *funcGen) append(in Instr) int {
	g.code = append(g.code, in)
	return len(g.code) - 1
}

func (g *funcGen) slot(r ir.Reg) int { return g.alloc.Slot(r) }

// pushOperand emits whatever instruction puts o's value on top of the
// operand stack.
func (g *funcGen) pushOperand(o ir.Operand) {
	switch o.Kind {
	case ir.OperandReg:
		g.append(Instr{Op: R_LOAD, Slot: g.slot(o.Reg)})
	case ir.OperandConst:
		g.append(Instr{Op: constOpcode(o.Const.Typ), Const: o.Const})
	case ir.OperandGlobal:
		g.append(Instr{Op: G_LOAD, Name: o.Global})
	}
}

func (g *funcGen) storeReg(r ir.Reg) {
	g.append(Instr{Op: R_STORE, Slot: g.slot(r)})
}

// emit translates one ir.Instruction into one or more Instr, appended to
// g.code. Labels consume no bytecode of their own; they record the address
// the next emitted instruction will occupy, so a jump that targets a label
// placed at the very end of a function resolves to len(g.code).
func (g *funcGen) emit(in ir.Instruction) error {
	switch in.Op {
	case ir.OpLabel:
		g.labelAddr.Put(in.L, len(g.code))

	case ir.OpLoadConst:
		g.pushOperand(in.Src1)
		g.storeReg(in.Dst)

	case ir.OpMove:
		g.pushOperand(in.Src1)
		g.storeReg(in.Dst)

	case ir.OpLoadGlobal:
		g.append(Instr{Op: G_LOAD, Name: in.Name})
		g.storeReg(in.Dst)

	case ir.OpStoreGlobal:
		g.pushOperand(in.Src1)
		g.append(Instr{Op: G_STORE, Name: in.Name})

	case ir.OpBinary:
		g.pushOperand(in.Src1)
		g.pushOperand(in.Src2)
		g.append(Instr{Op: arithOpcode(in.Typ, in.Arith)})
		g.storeReg(in.Dst)

	case ir.OpUnary:
		g.pushOperand(in.Src1)
		g.append(Instr{Op: arithOpcode(in.Typ, in.Arith)})
		g.storeReg(in.Dst)

	case ir.OpCompare:
		g.pushOperand(in.Src1)
		g.pushOperand(in.Src2)
		g.append(Instr{Op: cmpOpcode(in.Cmp)})
		g.storeReg(in.Dst)

	case ir.OpJump:
		at := g.append(Instr{Op: JMP})
		g.patches = append(g.patches, patch{at: at, label: in.L})

	case ir.OpCmpJump:
		g.pushOperand(in.Src1)
		at := g.append(Instr{Op: CJMP})
		g.patches = append(g.patches, patch{at: at, label: in.L})

	case ir.OpCall:
		for _, a := range in.Args {
			g.pushOperand(a)
		}
		g.append(Instr{Op: CALL, Name: in.Name, N: len(in.Args)})
		g.storeReg(in.Dst)

	case ir.OpCallMethod:
		g.pushOperand(in.Src1)
		for _, a := range in.Args {
			g.pushOperand(a)
		}
		g.append(Instr{Op: CALLM, Name: in.Name, N: len(in.Args)})
		g.storeReg(in.Dst)

	case ir.OpReturn:
		if in.HasValue {
			g.pushOperand(in.Src1)
			g.append(Instr{Op: RETURN, N: 1})
		} else {
			g.append(Instr{Op: RETURN, N: 0})
		}

	case ir.OpNewArray:
		for _, a := range in.Args {
			g.pushOperand(a)
		}
		g.append(Instr{Op: NEW_ARRAY, N: len(in.Args)})
		g.storeReg(in.Dst)

	case ir.OpNewStruct:
		for _, a := range in.Args {
			g.pushOperand(a)
		}
		g.append(Instr{Op: NEW_STRUCT, Name: in.Name, N: len(in.Args)})
		g.storeReg(in.Dst)

	case ir.OpLoadIndex:
		g.pushOperand(in.Src1)
		g.pushOperand(in.Src2)
		g.append(Instr{Op: LOAD_INDEX})
		g.storeReg(in.Dst)

	case ir.OpStoreIndex:
		g.pushOperand(in.Src1)
		g.pushOperand(in.Src2)
		g.pushOperand(in.Src3)
		g.append(Instr{Op: STORE_INDEX})

	case ir.OpLoadField:
		g.pushOperand(in.Src1)
		g.append(Instr{Op: LOAD_FIELD, Name: in.Name})
		g.storeReg(in.Dst)

	case ir.OpStoreField:
		g.pushOperand(in.Src1)
		g.pushOperand(in.Src2)
		g.append(Instr{Op: STORE_FIELD, Name: in.Name})

	default:
		return fmt.Errorf("compiler: unhandled ir op %s", in.Op)
	}
	return nil
}

// widthIndex maps a numeric builtin to its position in the B/S/I/L/F/D
// opcode families (widening rank: byte < short < int < long < float <
// double), returning ok=false for non-numeric or unresolved types so
// callers can fall back to a default family.
func widthIndex(t types.Type) (int, bool) {
	bt, ok := t.(types.BuiltinType)
	if !ok {
		return 0, false
	}
	switch bt.Kind {
	case types.Byte:
		return 0, true
	case types.Short:
		return 1, true
	case types.Int:
		return 2, true
	case types.Long:
		return 3, true
	case types.Float:
		return 4, true
	case types.Double:
		return 5, true
	default:
		return 0, false
	}
}

// arithOpcode picks the width-specific opcode for an ArithOp, falling back
// to the int family when t is unresolved (types.Any, e.g. dead code the
// lowering pass still generated a register for).
func arithOpcode(t types.Type, op ir.ArithOp) Opcode {
	if op == ir.Concat {
		return STR_CONCAT
	}
	idx, ok := widthIndex(t)
	if !ok {
		idx = 2 // int
	}
	return B_ADD + Opcode(idx*6) + Opcode(op)
}

// constOpcode picks the opcode that pushes a constant of type t.
func constOpcode(t types.Type) Opcode {
	bt, ok := t.(types.BuiltinType)
	if !ok {
		return I_CONST
	}
	if bt.Kind == types.String {
		return STR_CONST
	}
	if bt.Kind == types.Boolean {
		return BOOL_CONST
	}
	idx, ok := widthIndex(t)
	if !ok {
		return I_CONST
	}
	return B_CONST + Opcode(idx)
}

func cmpOpcode(op ir.CmpOp) Opcode {
	switch op {
	case ir.Eq:
		return CMP_EQ
	case ir.Neq:
		return CMP_NE
	case ir.Lt:
		return CMP_LT
	case ir.Le:
		return CMP_LE
	case ir.Gt:
		return CMP_GT
	case ir.Ge:
		return CMP_GE
	default:
		return CMP_EQ
	}
}
