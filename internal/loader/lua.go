package loader

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/plugfy/plugfy/pkg/extension"
	lua "github.com/yuin/gopher-lua"
)

// LuaGlobal is the global table a Lua module declares its extensions in.
const LuaGlobal = "extensions"

// LuaOpener runs Lua scripts in a dedicated state with only the base, table,
// string and math libraries. A script registers extensions by assigning a
// global array:
//
//	extensions = {
//	  {
//	    name = "greeter",
//	    contracts = { "plugfy.extension/v1" }, -- optional, this is the default
//	    options = { { name = "hello", description = "Say hello" } },
//	    init = function(ctx) end,               -- optional
//	    execute = function(option, params, emit, ctx)
//	      emit("progress", "hello " .. params.name)
//	    end,
//	  },
//	}
//
// Execution fails when execute raises a Lua error.
type LuaOpener struct{}

// Open executes the script at path and collects its registrations. The Lua
// state stays alive until the module is closed.
func (LuaOpener) Open(path string) (*Module, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(L)

	if err := protect(func() error { return L.DoFile(path) }); err != nil {
		L.Close()
		return nil, fmt.Errorf("running script: %w", err)
	}

	tbl, ok := L.GetGlobal(LuaGlobal).(*lua.LTable)
	if !ok {
		L.Close()
		return nil, fmt.Errorf("script does not define a global %q table", LuaGlobal)
	}

	mod := &luaModule{L: L, path: path}
	var regs []extension.Registration
	for i := 1; i <= tbl.Len(); i++ {
		entry, ok := tbl.RawGetInt(i).(*lua.LTable)
		if !ok {
			L.Close()
			return nil, fmt.Errorf("%s[%d] is not a table", LuaGlobal, i)
		}
		regs = append(regs, mod.registration(entry, i))
	}
	return NewModule(path, regs, mod.close), nil
}

// openSafeLibraries leaves out io, os, debug and package.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// luaModule owns one Lua state. gopher-lua states are not goroutine-safe,
// so every call into the state holds mu.
type luaModule struct {
	mu     sync.Mutex
	L      *lua.LState
	path   string
	closed bool
}

func (m *luaModule) close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		m.L.Close()
	}
	return nil
}

func (m *luaModule) registration(entry *lua.LTable, index int) extension.Registration {
	name := lua.LVAsString(entry.RawGetString("name"))
	if name == "" {
		name = fmt.Sprintf("%s#%d", filepath.Base(m.path), index)
	}

	contracts := []extension.Contract{extension.ContractExtension}
	if ct, ok := entry.RawGetString("contracts").(*lua.LTable); ok {
		contracts = nil
		for i := 1; i <= ct.Len(); i++ {
			contracts = append(contracts, extension.Contract(lua.LVAsString(ct.RawGetInt(i))))
		}
	}

	return extension.Registration{
		Name:      name,
		Contracts: contracts,
		New: func(ctx extension.Context) (extension.Extension, error) {
			return m.newExtension(entry, ctx)
		},
	}
}

func (m *luaModule) newExtension(entry *lua.LTable, ectx extension.Context) (extension.Extension, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, errors.New("lua state is closed")
	}

	execute, ok := entry.RawGetString("execute").(*lua.LFunction)
	if !ok {
		return nil, errors.New("execute is not a function")
	}

	ctxTable := contextTable(m.L, ectx)

	if initFn, ok := entry.RawGetString("init").(*lua.LFunction); ok {
		err := protect(func() error {
			return m.L.CallByParam(lua.P{Fn: initFn, NRet: 0, Protect: true}, ctxTable)
		})
		if err != nil {
			return nil, fmt.Errorf("init: %w", err)
		}
	}

	options, err := m.readOptions(entry.RawGetString("options"))
	if err != nil {
		return nil, err
	}

	return &luaExtension{mod: m, execute: execute, options: options, ctx: ctxTable}, nil
}

// readOptions accepts either a table of options or a function returning one.
func (m *luaModule) readOptions(lv lua.LValue) ([]extension.ExecutionOption, error) {
	if fn, ok := lv.(*lua.LFunction); ok {
		err := protect(func() error {
			return m.L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true})
		})
		if err != nil {
			return nil, fmt.Errorf("options: %w", err)
		}
		lv = m.L.Get(-1)
		m.L.Pop(1)
	}

	tbl, ok := lv.(*lua.LTable)
	if !ok {
		if lv == lua.LNil {
			return nil, nil
		}
		return nil, fmt.Errorf("options must be a table, got %s", lv.Type())
	}

	var options []extension.ExecutionOption
	for i := 1; i <= tbl.Len(); i++ {
		switch opt := tbl.RawGetInt(i).(type) {
		case lua.LString:
			options = append(options, extension.ExecutionOption{Name: string(opt)})
		case *lua.LTable:
			options = append(options, extension.ExecutionOption{
				Name:        lua.LVAsString(opt.RawGetString("name")),
				Description: lua.LVAsString(opt.RawGetString("description")),
			})
		default:
			return nil, fmt.Errorf("options[%d] must be a string or table", i)
		}
	}
	return options, nil
}

func contextTable(L *lua.LState, ectx extension.Context) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("run_id", lua.LString(ectx.RunID))
	t.RawSetString("extensions_path", lua.LString(ectx.ExtensionsPath))
	t.RawSetString("extension_name", lua.LString(ectx.ExtensionName))
	t.RawSetString("version", lua.LString(ectx.Version))
	t.RawSetString("dir", lua.LString(ectx.Dir))
	t.RawSetString("settings", toLuaValue(L, ectx.Settings))
	return t
}

// luaExtension adapts a Lua registration to extension.Extension.
type luaExtension struct {
	mod     *luaModule
	execute *lua.LFunction
	options []extension.ExecutionOption
	ctx     *lua.LTable
}

func (e *luaExtension) ExecutionOptions() []extension.ExecutionOption {
	return e.options
}

func (e *luaExtension) Execute(ctx context.Context, option extension.ExecutionOption, parameters any, emit extension.EventSink) error {
	e.mod.mu.Lock()
	defer e.mod.mu.Unlock()
	if e.mod.closed {
		return errors.New("lua state is closed")
	}

	L := e.mod.L
	L.SetContext(ctx)
	defer L.RemoveContext()

	opt := L.NewTable()
	opt.RawSetString("name", lua.LString(option.Name))
	opt.RawSetString("description", lua.LString(option.Description))

	emitFn := L.NewFunction(func(L *lua.LState) int {
		if emit != nil {
			emit(eventFromLua(L))
		}
		return 0
	})

	return protect(func() error {
		return L.CallByParam(lua.P{Fn: e.execute, NRet: 0, Protect: true},
			opt, toLuaValue(L, parameters), emitFn, e.ctx)
	})
}

// eventFromLua reads emit's arguments: either emit(type, message, data) or
// emit({ type = ..., message = ..., data = ... }).
func eventFromLua(L *lua.LState) extension.Event {
	if t, ok := L.Get(1).(*lua.LTable); ok && L.GetTop() == 1 {
		ev := extension.Event{
			Type:    lua.LVAsString(t.RawGetString("type")),
			Message: lua.LVAsString(t.RawGetString("message")),
		}
		ev.Data, _ = toGoValue(t.RawGetString("data")).(map[string]any)
		return ev
	}
	ev := extension.Event{
		Type:    L.OptString(1, ""),
		Message: L.OptString(2, ""),
	}
	ev.Data, _ = toGoValue(L.Get(3)).(map[string]any)
	return ev
}

func protect(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}
