package regalloc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jcnc-org/Snow-sub005/lang/ir"
	"github.com/jcnc-org/Snow-sub005/lang/types"
)

func TestAllocateReusesSlotAfterLastUse(t *testing.T) {
	fn := ir.NewFunction("f")
	a := fn.AllocReg() // r0: live across the whole function
	b := fn.AllocReg() // r1: dies early
	c := fn.AllocReg() // r2: should reuse r1's slot

	fn.Emit(ir.Instruction{Op: ir.OpLoadConst, Dst: a, Src1: ir.ConstOperand(ir.Constant{Kind: ir.ConstInt, Int: 1})})
	fn.Emit(ir.Instruction{Op: ir.OpLoadConst, Dst: b, Src1: ir.ConstOperand(ir.Constant{Kind: ir.ConstInt, Int: 2})})
	fn.Emit(ir.Instruction{Op: ir.OpBinary, Dst: c, Arith: ir.Add, Src1: ir.RegOperand(a), Src2: ir.RegOperand(b)})
	fn.Emit(ir.Instruction{Op: ir.OpReturn, Src1: ir.RegOperand(a), HasValue: true})

	alloc := Allocate(fn)
	require.Equal(t, 2, alloc.NumSlots)
	require.NotEqual(t, alloc.Slot(a), alloc.Slot(c))
}

func TestAllocateParamsLiveFromStart(t *testing.T) {
	fn := ir.NewFunction("g")
	p := fn.AllocReg()
	fn.Params = append(fn.Params, ir.Param{Name: "x", Typ: types.BuiltinType{Kind: types.Int}, Reg: p})
	fn.Emit(ir.Instruction{Op: ir.OpReturn, Src1: ir.RegOperand(p), HasValue: true})

	alloc := Allocate(fn)
	require.GreaterOrEqual(t, alloc.Slot(p), 0)
}
