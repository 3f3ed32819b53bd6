// Package regalloc maps each IR function's unbounded virtual registers onto
// a dense set of stack-frame slots using linear-scan allocation. Snow's
// lang/ir addresses globals by name through a separate global table rather
// than through virtual registers at all, so there is structurally no
// local/global slot collision to guard against: the allocator below only
// ever sees a function's own locals and parameters.
package regalloc

import (
	"sort"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/jcnc-org/Snow-sub005/lang/ir"
)

// Allocation is the result of allocating one Function: a dense slot index
// per virtual register, plus the total slot count the frame must reserve.
type Allocation struct {
	Slots    map[ir.Reg]int
	NumSlots int
}

// liveRange is the inclusive instruction-index span during which a virtual
// register holds a live value: from the instruction that defines it to the
// last instruction that reads it.
type liveRange struct {
	reg   ir.Reg
	start int
	end   int
}

// Allocate computes a slot assignment for every virtual register fn uses,
// via the classic linear-scan algorithm: sort live ranges by start point,
// walk them in order keeping a pool of free slots, and assign/reclaim
// slots as ranges open and close.
func Allocate(fn *ir.Function) *Allocation {
	ranges := computeLiveRanges(fn)
	sort.SliceStable(ranges, func(i, j int) bool { return ranges[i].start < ranges[j].start })

	alloc := &Allocation{Slots: make(map[ir.Reg]int, len(ranges))}
	var active []liveRange
	var freeSlots []int

	for _, lr := range ranges {
		// Expire active ranges that end before lr starts, returning their
		// slots to the free pool.
		still := active[:0]
		for _, a := range active {
			if a.end < lr.start {
				freeSlots = append(freeSlots, alloc.Slots[a.reg])
			} else {
				still = append(still, a)
			}
		}
		active = still

		var slot int
		if len(freeSlots) > 0 {
			sort.Ints(freeSlots)
			slot = freeSlots[0]
			freeSlots = freeSlots[1:]
		} else {
			slot = alloc.NumSlots
			alloc.NumSlots++
		}
		alloc.Slots[lr.reg] = slot
		active = append(active, lr)
	}
	return alloc
}

// computeLiveRanges walks fn's instructions once, recording the first
// (defining) and last (referencing) instruction index touching each
// register. Parameters and self are live from instruction 0 since the
// caller populates them before the body executes.
func computeLiveRanges(fn *ir.Function) []liveRange {
	first := make(map[ir.Reg]int)
	last := make(map[ir.Reg]int)
	var order []ir.Reg

	touch := func(r ir.Reg, idx int) {
		if _, seen := first[r]; !seen {
			first[r] = idx
			order = append(order, r)
		}
		if idx > last[r] {
			last[r] = idx
		}
	}

	if fn.IsMethod {
		touch(ir.Reg(0), 0) // self
	}
	for _, p := range fn.Params {
		touch(p.Reg, 0)
	}

	for idx, in := range fn.Instrs {
		touchOperand(in.Src1, idx, touch)
		touchOperand(in.Src2, idx, touch)
		touchOperand(in.Src3, idx, touch)
		for _, a := range in.Args {
			touchOperand(a, idx, touch)
		}
		if instructionDefines(in.Op) {
			touch(in.Dst, idx)
		}
	}

	ranges := make([]liveRange, 0, len(order))
	for _, r := range order {
		ranges = append(ranges, liveRange{reg: r, start: first[r], end: last[r]})
	}
	return ranges
}

func touchOperand(o ir.Operand, idx int, touch func(ir.Reg, int)) {
	if o.Kind == ir.OperandReg {
		touch(o.Reg, idx)
	}
}

// instructionDefines reports whether in.Op writes to in.Dst. Control-flow
// and store-family instructions carry no destination register.
func instructionDefines(op ir.Op) bool {
	switch op {
	case ir.OpLabel, ir.OpJump, ir.OpCmpJump, ir.OpReturn, ir.OpStoreGlobal,
		ir.OpStoreIndex, ir.OpStoreField:
		return false
	default:
		return true
	}
}

// Slot looks up r's assigned slot, returning -1 if r was never touched
// (dead code the lowering pass still allocated a register for).
func (a *Allocation) Slot(r ir.Reg) int {
	if s, ok := a.Slots[r]; ok {
		return s
	}
	return -1
}

// Program allocates every function in fns and returns the per-function
// results keyed by name. fns is sorted by name first (a copy, fns itself is
// left untouched) so allocation order — and therefore any diagnostic output
// — is stable across runs regardless of the order functions were appended
// during IR building.
func Program(fns []*ir.Function) map[string]*Allocation {
	ordered := slices.Clone(fns)
	slices.SortFunc(ordered, func(a, b *ir.Function) int { return strings.Compare(a.Name, b.Name) })

	out := make(map[string]*Allocation, len(ordered))
	for _, fn := range ordered {
		out[fn.Name] = Allocate(fn)
	}
	return out
}
