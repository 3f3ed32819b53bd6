package machine

import "github.com/jcnc-org/Snow-sub005/lang/compiler"

// Frame records one call to a compiled function: its code, the operand
// stack it pushes to and pops from, its local slot array, and its program
// counter.
type Frame struct {
	fn     *compiler.Func
	locals []Value
	stack  []Value
	sp     int
	pc     int
}

func newFrame(fn *compiler.Func) *Frame {
	return &Frame{
		fn:     fn,
		locals: make([]Value, fn.NumSlots),
	}
}

func (fr *Frame) push(v Value) {
	if fr.sp < len(fr.stack) {
		fr.stack[fr.sp] = v
	} else {
		fr.stack = append(fr.stack, v)
	}
	fr.sp++
}

func (fr *Frame) pop() Value {
	fr.sp--
	return fr.stack[fr.sp]
}
