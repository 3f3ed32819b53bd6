package machine

import (
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/dolthub/swiss"
)

// syscallFunc is a registered syscall handler: it receives its arguments
// already popped off the operand stack in source (left-to-right) order and
// returns the single value the VM pushes back.
type syscallFunc func(th *Thread, args []Value) (Value, error)

// syscalls is the VM's fixed syscall table, keyed by name: Snow's compiler
// lowers builtin calls as ordinary named CALLs, so the name the source
// wrote is already the
// dispatch key by the time it reaches the VM. Every CALL that misses the
// compiled-function table consults this one, making it as hot a lookup
// path as the resolver's module registry, hence the same swiss.Map the
// rest of the toolchain reaches for on hot name lookups.
var syscalls = newSyscallTable()

func newSyscallTable() *swiss.Map[string, syscallFunc] {
	t := swiss.NewMap[string, syscallFunc](32)
	t.Put("print", sysPrint)
	t.Put("println", sysPrintln)
	t.Put("stderr_write", sysStderrWrite)
	t.Put("time_now_ms", sysTimeNowMs)
	t.Put("tick_ms", sysTickMs)

	t.Put("fs_open", sysFsOpen)
	t.Put("fs_read", sysFsRead)
	t.Put("fs_write", sysFsWrite)
	t.Put("fs_close", sysFsClose)

	t.Put("mutex_new", sysMutexNew)
	t.Put("mutex_lock", sysMutexLock)
	t.Put("mutex_unlock", sysMutexUnlock)

	t.Put("cond_new", sysCondNew)
	t.Put("cond_wait", sysCondWait)
	t.Put("cond_signal", sysCondSignal)

	t.Put("epoll_wait", sysEpollWait)

	t.Put("socket_listen", sysSocketListen)
	t.Put("socket_accept", sysSocketAccept)
	t.Put("socket_read", sysSocketRead)
	t.Put("socket_write", sysSocketWrite)
	t.Put("socket_close", sysSocketClose)
	return t
}

// sandboxedSyscalls names the syscalls a Thread with Sandbox set refuses:
// everything that touches the filesystem or the network. Timers, stdio and
// in-process synchronization stay available since they cannot reach
// outside the process.
var sandboxedSyscalls = map[string]bool{
	"fs_open":       true,
	"fs_read":       true,
	"fs_write":      true,
	"fs_close":      true,
	"socket_listen": true,
	"socket_accept": true,
	"socket_read":   true,
	"socket_write":  true,
	"socket_close":  true,
}

func sysPrint(th *Thread, args []Value) (Value, error) {
	for _, a := range args {
		fmt.Fprint(th.stdout, a.String())
	}
	return Void(), nil
}

func sysPrintln(th *Thread, args []Value) (Value, error) {
	for _, a := range args {
		fmt.Fprint(th.stdout, a.String())
	}
	fmt.Fprintln(th.stdout)
	return Void(), nil
}

func sysStderrWrite(th *Thread, args []Value) (Value, error) {
	if len(args) != 1 {
		return Value{}, fmt.Errorf("stderr_write: expected 1 argument, got %d", len(args))
	}
	fmt.Fprint(th.stderr, args[0].String())
	return Void(), nil
}

func sysTimeNowMs(_ *Thread, _ []Value) (Value, error) {
	return Long(time.Now().UnixMilli()), nil
}

// sysTickMs blocks for the given duration. Blocking syscalls are the only
// places the interpreter suspends; this one is interruptible via the
// thread's context.
func sysTickMs(th *Thread, args []Value) (Value, error) {
	if len(args) != 1 {
		return Value{}, fmt.Errorf("tick_ms: expected 1 argument, got %d", len(args))
	}
	d := time.Duration(args[0].I) * time.Millisecond
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return Void(), nil
	case <-th.ctx.Done():
		return Value{}, fmt.Errorf("tick_ms: interrupted: %w", th.ctx.Err())
	}
}

// fileHandle wraps *os.File to satisfy Handle.
type fileHandle struct{ f *os.File }

func (h fileHandle) Close() error { return h.f.Close() }

func sysFsOpen(th *Thread, args []Value) (Value, error) {
	if len(args) != 2 {
		return Value{}, fmt.Errorf("fs_open: expected 2 arguments, got %d", len(args))
	}
	path, mode := args[0].S, args[1].S
	var flag int
	switch mode {
	case "r":
		flag = os.O_RDONLY
	case "w":
		flag = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	case "a":
		flag = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	default:
		return Value{}, fmt.Errorf("fs_open: unsupported mode %q", mode)
	}
	f, err := os.OpenFile(path, flag, 0o644)
	if err != nil {
		return Value{}, err
	}
	id := th.handles.alloc(fileHandle{f})
	return Long(id), nil
}

func sysFsRead(th *Thread, args []Value) (Value, error) {
	if len(args) != 2 {
		return Value{}, fmt.Errorf("fs_read: expected 2 arguments, got %d", len(args))
	}
	h, err := th.handles.get(args[0].I)
	if err != nil {
		return Value{}, err
	}
	fh, ok := h.(fileHandle)
	if !ok {
		return Value{}, fmt.Errorf("fs_read: handle %d is not a file", args[0].I)
	}
	buf := make([]byte, args[1].I)
	n, err := fh.f.Read(buf)
	if err != nil && n == 0 {
		return Str(""), nil
	}
	return Str(string(buf[:n])), nil
}

func sysFsWrite(th *Thread, args []Value) (Value, error) {
	if len(args) != 2 {
		return Value{}, fmt.Errorf("fs_write: expected 2 arguments, got %d", len(args))
	}
	h, err := th.handles.get(args[0].I)
	if err != nil {
		return Value{}, err
	}
	fh, ok := h.(fileHandle)
	if !ok {
		return Value{}, fmt.Errorf("fs_write: handle %d is not a file", args[0].I)
	}
	n, err := fh.f.WriteString(args[1].S)
	if err != nil {
		return Value{}, err
	}
	return Long(int64(n)), nil
}

func sysFsClose(th *Thread, args []Value) (Value, error) {
	if len(args) != 1 {
		return Value{}, fmt.Errorf("fs_close: expected 1 argument, got %d", len(args))
	}
	if err := th.handles.release(args[0].I); err != nil {
		return Value{}, err
	}
	return Void(), nil
}

// mutexHandle wraps *sync.Mutex to satisfy Handle; unlocking at shutdown
// is not meaningful, so Close is a no-op.
type mutexHandle struct{ mu *sync.Mutex }

func (mutexHandle) Close() error { return nil }

func sysMutexNew(th *Thread, _ []Value) (Value, error) {
	id := th.handles.alloc(mutexHandle{mu: &sync.Mutex{}})
	return Long(id), nil
}

func sysMutexLock(th *Thread, args []Value) (Value, error) {
	if len(args) != 1 {
		return Value{}, fmt.Errorf("mutex_lock: expected 1 argument, got %d", len(args))
	}
	mh, err := mutexOf(th, args[0].I)
	if err != nil {
		return Value{}, err
	}
	mh.mu.Lock()
	return Void(), nil
}

func sysMutexUnlock(th *Thread, args []Value) (Value, error) {
	if len(args) != 1 {
		return Value{}, fmt.Errorf("mutex_unlock: expected 1 argument, got %d", len(args))
	}
	mh, err := mutexOf(th, args[0].I)
	if err != nil {
		return Value{}, err
	}
	mh.mu.Unlock()
	return Void(), nil
}

func mutexOf(th *Thread, id int64) (mutexHandle, error) {
	h, err := th.handles.get(id)
	if err != nil {
		return mutexHandle{}, err
	}
	mh, ok := h.(mutexHandle)
	if !ok {
		return mutexHandle{}, fmt.Errorf("machine: handle %d is not a mutex", id)
	}
	return mh, nil
}

// condHandle wraps *sync.Cond to satisfy Handle.
type condHandle struct{ cond *sync.Cond }

func (condHandle) Close() error { return nil }

func sysCondNew(th *Thread, args []Value) (Value, error) {
	if len(args) != 1 {
		return Value{}, fmt.Errorf("cond_new: expected 1 argument (mutex handle), got %d", len(args))
	}
	mh, err := mutexOf(th, args[0].I)
	if err != nil {
		return Value{}, err
	}
	id := th.handles.alloc(condHandle{cond: sync.NewCond(mh.mu)})
	return Long(id), nil
}

func sysCondWait(th *Thread, args []Value) (Value, error) {
	if len(args) != 1 {
		return Value{}, fmt.Errorf("cond_wait: expected 1 argument, got %d", len(args))
	}
	h, err := th.handles.get(args[0].I)
	if err != nil {
		return Value{}, err
	}
	ch, ok := h.(condHandle)
	if !ok {
		return Value{}, fmt.Errorf("cond_wait: handle %d is not a condition variable", args[0].I)
	}
	ch.cond.Wait()
	return Void(), nil
}

func sysCondSignal(th *Thread, args []Value) (Value, error) {
	if len(args) != 1 {
		return Value{}, fmt.Errorf("cond_signal: expected 1 argument, got %d", len(args))
	}
	h, err := th.handles.get(args[0].I)
	if err != nil {
		return Value{}, err
	}
	ch, ok := h.(condHandle)
	if !ok {
		return Value{}, fmt.Errorf("cond_signal: handle %d is not a condition variable", args[0].I)
	}
	ch.cond.Signal()
	return Void(), nil
}

// sysEpollWait is a deliberately minimal selector: it has no registered
// readiness sources to multiplex over (Snow programs reach host I/O only
// through the blocking fs/socket syscalls above), so it just waits out
// its timeout and reports zero ready handles, the same outcome a real
// epoll_wait has on an empty interest list.
func sysEpollWait(th *Thread, args []Value) (Value, error) {
	if len(args) != 1 {
		return Value{}, fmt.Errorf("epoll_wait: expected 1 argument, got %d", len(args))
	}
	d := time.Duration(args[0].I) * time.Millisecond
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return Int(0), nil
	case <-th.ctx.Done():
		return Value{}, fmt.Errorf("epoll_wait: interrupted: %w", th.ctx.Err())
	}
}

type listenerHandle struct{ l net.Listener }

func (h listenerHandle) Close() error { return h.l.Close() }

type connHandle struct{ c net.Conn }

func (h connHandle) Close() error { return h.c.Close() }

func sysSocketListen(th *Thread, args []Value) (Value, error) {
	if len(args) != 1 {
		return Value{}, fmt.Errorf("socket_listen: expected 1 argument, got %d", len(args))
	}
	l, err := net.Listen("tcp", args[0].S)
	if err != nil {
		return Value{}, err
	}
	id := th.handles.alloc(listenerHandle{l})
	return Long(id), nil
}

func sysSocketAccept(th *Thread, args []Value) (Value, error) {
	if len(args) != 1 {
		return Value{}, fmt.Errorf("socket_accept: expected 1 argument, got %d", len(args))
	}
	h, err := th.handles.get(args[0].I)
	if err != nil {
		return Value{}, err
	}
	lh, ok := h.(listenerHandle)
	if !ok {
		return Value{}, fmt.Errorf("socket_accept: handle %d is not a listener", args[0].I)
	}
	conn, err := lh.l.Accept()
	if err != nil {
		return Value{}, err
	}
	id := th.handles.alloc(connHandle{conn})
	return Long(id), nil
}

func sysSocketRead(th *Thread, args []Value) (Value, error) {
	if len(args) != 2 {
		return Value{}, fmt.Errorf("socket_read: expected 2 arguments, got %d", len(args))
	}
	h, err := th.handles.get(args[0].I)
	if err != nil {
		return Value{}, err
	}
	ch, ok := h.(connHandle)
	if !ok {
		return Value{}, fmt.Errorf("socket_read: handle %d is not a connection", args[0].I)
	}
	buf := make([]byte, args[1].I)
	n, err := ch.c.Read(buf)
	if err != nil && n == 0 {
		return Str(""), nil
	}
	return Str(string(buf[:n])), nil
}

func sysSocketWrite(th *Thread, args []Value) (Value, error) {
	if len(args) != 2 {
		return Value{}, fmt.Errorf("socket_write: expected 2 arguments, got %d", len(args))
	}
	h, err := th.handles.get(args[0].I)
	if err != nil {
		return Value{}, err
	}
	ch, ok := h.(connHandle)
	if !ok {
		return Value{}, fmt.Errorf("socket_write: handle %d is not a connection", args[0].I)
	}
	n, err := ch.c.Write([]byte(args[1].S))
	if err != nil {
		return Value{}, err
	}
	return Long(int64(n)), nil
}

func sysSocketClose(th *Thread, args []Value) (Value, error) {
	if len(args) != 1 {
		return Value{}, fmt.Errorf("socket_close: expected 1 argument, got %d", len(args))
	}
	if err := th.handles.release(args[0].I); err != nil {
		return Value{}, err
	}
	return Void(), nil
}
