package machine

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/jcnc-org/Snow-sub005/lang/compiler"
)

// Thread holds the state of one running program: its I/O streams, step and
// recursion limits, the live call stack, and the registered syscall
// handles that must be released at shutdown.
type Thread struct {
	Name string

	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader

	// MaxSteps bounds the number of opcodes executed before the thread is
	// cancelled. A value <= 0 means no limit.
	MaxSteps int

	// MaxCallStackDepth bounds the depth of nested function/method calls. A
	// value <= 0 means no limit.
	MaxCallStackDepth int

	// Sandbox disables filesystem and network syscalls, leaving timers,
	// stdio and in-process synchronization available.
	Sandbox bool

	ctx       context.Context
	ctxCancel func()
	callStack []*Frame
	cancelled atomic.Bool

	steps, maxSteps uint64

	stdout io.Writer
	stderr io.Writer
	stdin  io.Reader

	handles handleTable
}

func (th *Thread) init(ctx context.Context) {
	if th.MaxSteps <= 0 {
		th.maxSteps--
	} else {
		th.maxSteps = uint64(th.MaxSteps)
	}
	th.stdout = th.Stdout
	if th.stdout == nil {
		th.stdout = os.Stdout
	}
	th.stderr = th.Stderr
	if th.stderr == nil {
		th.stderr = os.Stderr
	}
	th.stdin = th.Stdin
	if th.stdin == nil {
		th.stdin = os.Stdin
	}
	ctx, cancel := context.WithCancel(ctx)
	th.ctx = ctx
	th.ctxCancel = cancel
	th.handles = newHandleTable()
	go func() {
		<-th.ctx.Done()
		th.cancelled.Store(true)
	}()
}

// RunProgram loads prog's globals, runs its Entry function to completion,
// and releases every syscall handle the run registered, in reverse
// allocation order, before returning.
func RunProgram(ctx context.Context, th *Thread, prog *compiler.Program) (Value, error) {
	th.init(ctx)
	defer th.ctxCancel()
	defer th.handles.closeAll()

	m := newMachine(th, prog)
	if err := m.initGlobals(); err != nil {
		return Value{}, err
	}

	entry := prog.Func(prog.Entry)
	if entry == nil {
		return Value{}, fmt.Errorf("machine: no entry function %q in program", prog.Entry)
	}
	return m.call(entry, nil)
}
