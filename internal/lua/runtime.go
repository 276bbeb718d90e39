package lua

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/riahtu/pmtrain/internal/models"
)

// Runtime evaluates Lua pipeline scripts in a sandboxed environment. A
// script defines pipeline() returning {name=..., components={...}}.
type Runtime struct {
	kinds []string
	logs  []string

	// failReason is set when fail() is called
	failReason string
	failed     bool
}

// NewRuntime creates a runtime that exposes kinds to scripts through kinds().
func NewRuntime(kinds []string) *Runtime {
	return &Runtime{
		kinds: kinds,
		logs:  make([]string, 0),
	}
}

// Load runs the script at scriptPath and returns the document it builds.
func (r *Runtime) Load(scriptPath string) (*models.Document, error) {
	script, err := os.ReadFile(scriptPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	base := filepath.Base(scriptPath)
	doc, err := r.Eval(strings.TrimSuffix(base, filepath.Ext(base)), string(script))
	if err != nil {
		return nil, err
	}
	doc.Source = scriptPath
	return doc, nil
}

// Eval runs script source. name is used in errors and as the document
// name when the script does not set one.
func (r *Runtime) Eval(name, source string) (*models.Document, error) {
	L := lua.NewState(lua.Options{
		SkipOpenLibs: true, // Don't load any libraries by default
	})
	defer L.Close()

	r.openSafeLibs(L)
	r.registerAPI(L, name)

	if err := L.DoString(source); err != nil {
		return nil, fmt.Errorf("failed to load script %s: %w", name, err)
	}

	fn := L.GetGlobal("pipeline")
	if fn.Type() != lua.LTFunction {
		return nil, fmt.Errorf("script %s must define a 'pipeline' function", name)
	}

	L.Push(fn)
	if err := L.PCall(0, 1, nil); err != nil {
		if r.failed {
			return nil, fmt.Errorf("script %s failed: %s", name, r.failReason)
		}
		return nil, fmt.Errorf("pipeline() failed in %s: %w", name, err)
	}
	ret := L.Get(-1)
	L.Pop(1)

	tbl, ok := ret.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("pipeline() in %s must return a table, got %s", name, ret.Type())
	}
	return toDocument(tbl, name)
}

// openSafeLibs loads only the safe standard libraries
func (r *Runtime) openSafeLibs(L *lua.LState) {
	lua.OpenBase(L)

	// Remove dangerous base functions
	L.SetGlobal("loadfile", lua.LNil)
	L.SetGlobal("dofile", lua.LNil)
	L.SetGlobal("load", lua.LNil)
	L.SetGlobal("loadstring", lua.LNil)
	L.SetGlobal("print", lua.LNil) // Use log() instead

	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	// Scripts must produce the same pipeline every time
	math := L.GetGlobal("math")
	if tbl, ok := math.(*lua.LTable); ok {
		L.SetField(tbl, "random", lua.LNil)
		L.SetField(tbl, "randomseed", lua.LNil)
	}
}

func (r *Runtime) registerAPI(L *lua.LState, name string) {
	L.SetGlobal("log", L.NewFunction(r.luaLog))
	L.SetGlobal("kinds", L.NewFunction(r.luaKinds))
	L.SetGlobal("fail", L.NewFunction(r.luaFail))
	L.SetGlobal("script", lua.LString(name))
}

// luaLog implements the log(message) API
func (r *Runtime) luaLog(L *lua.LState) int {
	message := L.CheckString(1)
	r.logs = append(r.logs, message)
	return 0
}

// luaKinds implements kinds(), returning the registered identifiers
func (r *Runtime) luaKinds(L *lua.LState) int {
	tbl := L.NewTable()
	for _, k := range r.kinds {
		tbl.Append(lua.LString(k))
	}
	L.Push(tbl)
	return 1
}

// luaFail implements fail(reason?), aborting the script
func (r *Runtime) luaFail(L *lua.LState) int {
	r.failReason = L.OptString(1, "pipeline script failed")
	r.failed = true
	L.RaiseError("fail: %s", r.failReason)
	return 0
}

// GetLogs returns the logs collected during evaluation
func (r *Runtime) GetLogs() []string {
	return r.logs
}

func toDocument(tbl *lua.LTable, name string) (*models.Document, error) {
	doc := &models.Document{Name: name}
	if v, ok := tbl.RawGetString("name").(lua.LString); ok {
		doc.Name = string(v)
	}
	if v, ok := tbl.RawGetString("description").(lua.LString); ok {
		doc.Description = string(v)
	}

	raw := tbl.RawGetString("components")
	components, ok := raw.(*lua.LTable)
	if !ok {
		if raw == lua.LNil {
			return doc, nil
		}
		return nil, fmt.Errorf("%s: components must be a table, got %s", name, raw.Type())
	}

	for i := 1; i <= components.MaxN(); i++ {
		item, ok := components.RawGetInt(i).(*lua.LTable)
		if !ok {
			return nil, fmt.Errorf("%s: components[%d] must be a table", name, i-1)
		}
		node := models.Node{}
		item.ForEach(func(k, v lua.LValue) {
			if key, ok := k.(lua.LString); ok {
				node[string(key)] = toGo(v)
			}
		})
		doc.Components = append(doc.Components, node)
	}
	return doc, nil
}

// toGo converts a Lua value to the shapes produced by the JSON and YAML
// decoders. Sequences become []any, other tables map[string]any.
func toGo(v lua.LValue) any {
	switch val := v.(type) {
	case lua.LBool:
		return bool(val)
	case lua.LNumber:
		return float64(val)
	case lua.LString:
		return string(val)
	case *lua.LTable:
		if n := val.MaxN(); n > 0 {
			arr := make([]any, 0, n)
			for i := 1; i <= n; i++ {
				arr = append(arr, toGo(val.RawGetInt(i)))
			}
			return arr
		}
		m := make(map[string]any)
		val.ForEach(func(k, item lua.LValue) {
			m[k.String()] = toGo(item)
		})
		return m
	default:
		return nil
	}
}

// IsLuaSpec checks if a file is a Lua pipeline script
func IsLuaSpec(path string) bool {
	return filepath.Ext(path) == ".lua"
}
