// Package script runs the optional Lua hook that filters guide stops.
//
// A script defines a global function:
//
//	function filter_stops(line, stops)
//	  -- line.number, line.text, line.indent, line.tab_size
//	  -- stops is an array of columns in ascending order
//	  return stops
//	end
//
// The returned columns replace the stops of the line. Columns that were not
// computed for the line are ignored, so a script can hide guides but never
// invent them. Scripts may call guide.stops(text, tab_size) to compute stops
// for arbitrary text.
//
// Scripts run in a sandbox with the base, table, string and math libraries
// only; file loading functions are removed.
package script

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/indentguide/internal/guide"
)

// HookName is the global function a script must define.
const HookName = "filter_stops"

// DefaultTimeout bounds loading the script and each hook call.
const DefaultTimeout = 50 * time.Millisecond

var (
	// ErrStateClosed is returned when calling a closed filter.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrNoHook is returned when a script does not define HookName.
	ErrNoHook = errors.New("script does not define " + HookName)
)

// Option configures a Filter.
type Option func(*Filter)

// WithTimeout bounds loading the script and each hook call.
func WithTimeout(d time.Duration) Option {
	return func(f *Filter) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// Filter is a loaded script. It is safe for use from one goroutine at a
// time; calls are serialised.
type Filter struct {
	mu      sync.Mutex
	L       *lua.LState
	hook    *lua.LFunction
	name    string
	timeout time.Duration
	closed  bool
}

// Load reads and runs the script at path.
func Load(path string, opts ...Option) (*Filter, error) {
	return load(path, opts, func(L *lua.LState) error { return L.DoFile(path) })
}

// LoadString runs code as a script called name.
func LoadString(name, code string, opts ...Option) (*Filter, error) {
	return load(name, opts, func(L *lua.LState) error { return L.DoString(code) })
}

func load(name string, opts []Option, run func(*lua.LState) error) (*Filter, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	if err := openSafeLibraries(L); err != nil {
		L.Close()
		return nil, err
	}
	installSandbox(L)
	registerGuideModule(L)

	f := &Filter{L: L, name: name, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(f)
	}

	ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
	L.SetContext(ctx)
	err := withRecovery(func() error { return run(L) })
	L.RemoveContext()
	cancel()
	if err != nil {
		L.Close()
		return nil, fmt.Errorf("loading script %s: %w", name, err)
	}

	fn, ok := L.GetGlobal(HookName).(*lua.LFunction)
	if !ok {
		L.Close()
		return nil, fmt.Errorf("%s: %w", name, ErrNoHook)
	}
	f.hook = fn
	return f, nil
}

// Name returns the script path or name.
func (f *Filter) Name() string {
	return f.name
}

// Filter passes the stops of line to the hook and returns the stops it kept.
func (f *Filter) Filter(line guide.Line, tabSize int, stops []guide.Stop) ([]guide.Stop, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil, ErrStateClosed
	}
	if len(stops) == 0 {
		return stops, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
	defer cancel()
	f.L.SetContext(ctx)
	defer f.L.RemoveContext()

	lineTable := f.L.NewTable()
	lineTable.RawSetString("number", lua.LNumber(line.Number))
	lineTable.RawSetString("text", lua.LString(line.Text))
	lineTable.RawSetString("indent", lua.LNumber(line.IndentWidth()))
	lineTable.RawSetString("tab_size", lua.LNumber(tabSize))

	var result lua.LValue
	err := withRecovery(func() error {
		if err := f.L.CallByParam(lua.P{Fn: f.hook, NRet: 1, Protect: true}, lineTable, columnsTable(f.L, stops)); err != nil {
			return err
		}
		result = f.L.Get(-1)
		f.L.Pop(1)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s line %d: %w", HookName, line.Number, err)
	}

	kept, ok := result.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("%s line %d: returned %s, want table", HookName, line.Number, result.Type())
	}
	return intersect(stops, kept), nil
}

// Close releases the Lua state.
func (f *Filter) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return
	}
	f.closed = true
	f.L.Close()
}

// Dispose implements host.Disposable.
func (f *Filter) Dispose() {
	f.Close()
}

func columnsTable(L *lua.LState, stops []guide.Stop) *lua.LTable {
	t := L.CreateTable(len(stops), 0)
	for _, s := range stops {
		t.Append(lua.LNumber(s.Column))
	}
	return t
}

// intersect keeps the stops whose column appears in kept, in stop order.
func intersect(stops []guide.Stop, kept *lua.LTable) []guide.Stop {
	want := make(map[int]bool, kept.Len())
	kept.ForEach(func(_, v lua.LValue) {
		if n, ok := v.(lua.LNumber); ok {
			want[int(n)] = true
		}
	})

	out := make([]guide.Stop, 0, len(stops))
	for _, s := range stops {
		if want[s.Column] {
			out = append(out, s)
		}
	}
	return out
}

// openSafeLibraries opens the libraries that cannot touch the host.
func openSafeLibraries(L *lua.LState) error {
	libs := []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	}
	for _, lib := range libs {
		if err := L.CallByParam(lua.P{Fn: L.NewFunction(lib.fn), NRet: 0, Protect: true}, lua.LString(lib.name)); err != nil {
			return fmt.Errorf("opening lua library %s: %w", lib.name, err)
		}
	}
	return nil
}

// installSandbox removes functions that load code from disk or strings.
func installSandbox(L *lua.LState) {
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "module"} {
		L.SetGlobal(name, lua.LNil)
	}
}

func registerGuideModule(L *lua.LState) {
	mod := L.NewTable()
	L.SetField(mod, "stops", L.NewFunction(func(L *lua.LState) int {
		text := L.CheckString(1)
		tabSize := L.OptInt(2, 4)
		stops := guide.Stops(guide.NewLine(0, text), tabSize)
		L.Push(columnsTable(L, stops))
		return 1
	}))
	L.SetGlobal("guide", mod)
}

func withRecovery(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}
