package bind

import (
	"fmt"

	"github.com/riahtu/pmtrain/internal/mlctx"
)

// Values holds the params extracted for one node, already converted to the
// declared types. Reading a name the descriptor does not declare, or with
// the wrong accessor, is a programming error and panics.
type Values struct {
	kind string
	m    map[string]any
}

func (v Values) Get(name string) (any, bool) {
	x, ok := v.m[name]
	return x, ok
}

func (v Values) Len() int {
	return len(v.m)
}

func (v Values) String(name string) string { return get[string](v, name) }

func (v Values) Column(name string) mlctx.Column { return get[mlctx.Column](v, name) }

func (v Values) Int32(name string) int32 { return get[int32](v, name) }

func (v Values) Float32(name string) float32 { return get[float32](v, name) }

func (v Values) Float64(name string) float64 { return get[float64](v, name) }

func (v Values) Bool(name string) bool { return get[bool](v, name) }

func (v Values) Loss(name string) mlctx.LossFunction {
	return mlctx.LossFunction(get[string](v, name))
}

func get[T any](v Values, name string) T {
	x, ok := v.m[name]
	if !ok {
		panic(fmt.Sprintf("bind: %s reads undeclared param %q", v.kind, name))
	}
	t, ok := x.(T)
	if !ok {
		var zero T
		panic(fmt.Sprintf("bind: %s param %q is %T, read as %T", v.kind, name, x, zero))
	}
	return t
}
