package models

import "github.com/riahtu/pmtrain/internal/mlctx"

type ParamType string

const (
	TypeString  ParamType = "string"
	TypeInt32   ParamType = "int32"
	TypeFloat32 ParamType = "float32"
	TypeFloat64 ParamType = "float64"
	TypeBool    ParamType = "bool"
	// TypeColumn is a string on the wire bound to an mlctx.Column.
	TypeColumn ParamType = "column"
)

type Param struct {
	Name     string
	Type     ParamType
	Optional bool
	// Default is used when an optional param is absent.
	Default any
}

// Descriptor is the static contract of one trainer.
type Descriptor struct {
	Kind    string
	Aliases []string
	Family  mlctx.Family
	Params  []Param
	// Losses lists the loss functions the trainer accepts; empty when it
	// has no loss selector.
	Losses []mlctx.LossFunction
}

func (d Descriptor) Param(name string) (Param, bool) {
	for _, p := range d.Params {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

// Required returns the names of the params that must be present, in order.
func (d Descriptor) Required() []string {
	var names []string
	for _, p := range d.Params {
		if !p.Optional {
			names = append(names, p.Name)
		}
	}
	return names
}

func (d Descriptor) Optional() []string {
	var names []string
	for _, p := range d.Params {
		if p.Optional {
			names = append(names, p.Name)
		}
	}
	return names
}
