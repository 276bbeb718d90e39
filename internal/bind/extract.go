// Package bind reads typed trainer parameters out of untyped configuration
// nodes.
//
// Absence policy: a key that is missing, null, or (for string and column
// params) the empty string is absent. Absent optional params take their
// declared default; absent required params are a FieldMissing error.
// Values are never coerced across shapes: "5" is not a number and 1 is not
// a bool.
package bind

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/riahtu/pmtrain/internal/mlctx"
	"github.com/riahtu/pmtrain/internal/models"
)

// Extract reads one declared param from node. path locates the node and is
// only used in errors.
func Extract(node models.Node, path string, p models.Param) (any, error) {
	raw, ok := node.Lookup(p.Name)
	if !ok || raw == nil || (isText(p.Type) && raw == "") {
		if p.Optional {
			return defaultFor(p), nil
		}
		return nil, Missing(path, p.Name, string(p.Type))
	}

	switch p.Type {
	case models.TypeString:
		if s, ok := raw.(string); ok {
			return s, nil
		}
	case models.TypeColumn:
		if s, ok := raw.(string); ok {
			return mlctx.ColumnName(s), nil
		}
	case models.TypeBool:
		if b, ok := raw.(bool); ok {
			return b, nil
		}
	case models.TypeInt32:
		if n, ok := toInt32(raw); ok {
			return n, nil
		}
	case models.TypeFloat32:
		if f, ok := toFloat64(raw); ok && finite(f) && math.Abs(f) <= math.MaxFloat32 {
			return float32(f), nil
		}
	case models.TypeFloat64:
		if f, ok := toFloat64(raw); ok && finite(f) {
			return f, nil
		}
	default:
		return nil, fmt.Errorf("bind: param %q has unknown type %q", p.Name, p.Type)
	}
	return nil, Mismatch(path, p.Name, string(p.Type), describe(raw))
}

// ExtractAll reads every param of d in declaration order. All field errors
// are reported, joined in that order.
func ExtractAll(node models.Node, path string, d models.Descriptor) (Values, error) {
	values := Values{kind: d.Kind, m: make(map[string]any, len(d.Params))}
	var errs []error
	for _, p := range d.Params {
		v, err := Extract(node, path, p)
		if err != nil {
			var be *Error
			if errors.As(err, &be) && be.Kind == FieldMissing {
				be.Identifier = d.Kind
			}
			errs = append(errs, err)
			continue
		}
		values.m[p.Name] = v
	}
	switch len(errs) {
	case 0:
		return values, nil
	case 1:
		return Values{}, errs[0]
	default:
		return Values{}, errors.Join(errs...)
	}
}

func isText(t models.ParamType) bool {
	return t == models.TypeString || t == models.TypeColumn
}

func finite(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}

func defaultFor(p models.Param) any {
	if p.Default != nil {
		return p.Default
	}
	switch p.Type {
	case models.TypeColumn:
		return mlctx.NoColumn
	case models.TypeInt32:
		return int32(0)
	case models.TypeFloat32:
		return float32(0)
	case models.TypeFloat64:
		return float64(0)
	case models.TypeBool:
		return false
	default:
		return ""
	}
}

func toFloat64(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}

func toInt32(raw any) (int32, bool) {
	if n, ok := raw.(json.Number); ok {
		if i, err := strconv.ParseInt(string(n), 10, 32); err == nil {
			return int32(i), true
		}
	}
	f, ok := toFloat64(raw)
	if !ok || f != math.Trunc(f) || f < math.MinInt32 || f > math.MaxInt32 {
		return 0, false
	}
	return int32(f), true
}

// describe names the shape of a raw value for mismatch errors.
func describe(raw any) string {
	switch v := raw.(type) {
	case string:
		return fmt.Sprintf("string %q", v)
	case bool:
		return fmt.Sprintf("bool %t", v)
	case models.Node, map[string]any:
		return "object"
	case []any:
		return "array"
	}
	if f, ok := toFloat64(raw); ok {
		return "number " + strconv.FormatFloat(f, 'g', -1, 64)
	}
	return fmt.Sprintf("%T", raw)
}
