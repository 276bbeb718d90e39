package models

// Document is a declarative pipeline description: components are composed
// in the order they appear.
type Document struct {
	Name        string `json:"name" yaml:"name" validate:"required"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Components  []Node `json:"components" yaml:"components" validate:"dive,required,has_kind"`
	// Source is the file the document was read from, if any.
	Source string `json:"-" yaml:"-"`
}
