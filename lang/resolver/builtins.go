package resolver

import (
	"github.com/dolthub/swiss"

	"github.com/jcnc-org/Snow-sub005/lang/types"
)

// builtins lists the syscall-backed functions every module sees without an
// import: lang/machine's fixed syscall table (syscall.go) dispatches these
// by the same name once the compiler lowers a call to one into an ordinary
// named CALL. Keeping this table in sync with syscall.go is this package's
// half of that contract; analyzeCall falls back to it only when no
// user-declared function with the name exists, so a module can still shadow
// a builtin by declaring its own function of the same name.
var builtins = newBuiltinTable()

func ft(ret types.Type, params ...types.Type) types.FuncType {
	return types.FuncType{Params: params, Return: ret}
}

func newBuiltinTable() *swiss.Map[string, types.FuncType] {
	voidT := types.BuiltinType{Kind: types.Void}
	anyT := types.BuiltinType{Kind: types.Any}
	longT := types.BuiltinType{Kind: types.Long}
	intT := types.BuiltinType{Kind: types.Int}
	strT := types.BuiltinType{Kind: types.String}

	t := swiss.NewMap[string, types.FuncType](32)
	t.Put("print", ft(voidT, anyT))
	t.Put("println", ft(voidT, anyT))
	t.Put("stderr_write", ft(voidT, strT))
	t.Put("time_now_ms", ft(longT))
	t.Put("tick_ms", ft(voidT, longT))

	t.Put("fs_open", ft(longT, strT, strT))
	t.Put("fs_read", ft(strT, longT, longT))
	t.Put("fs_write", ft(longT, longT, strT))
	t.Put("fs_close", ft(voidT, longT))

	t.Put("mutex_new", ft(longT))
	t.Put("mutex_lock", ft(voidT, longT))
	t.Put("mutex_unlock", ft(voidT, longT))

	t.Put("cond_new", ft(longT, longT))
	t.Put("cond_wait", ft(voidT, longT))
	t.Put("cond_signal", ft(voidT, longT))

	t.Put("epoll_wait", ft(intT, longT))

	t.Put("socket_listen", ft(longT, strT))
	t.Put("socket_accept", ft(longT, longT))
	t.Put("socket_read", ft(strT, longT, longT))
	t.Put("socket_write", ft(longT, longT, strT))
	t.Put("socket_close", ft(voidT, longT))
	return t
}
