package mlctx

import (
	"encoding/json"
	"fmt"
)

// Family is a task family exposing its own trainer factories.
type Family string

const (
	AnomalyDetection         Family = "AnomalyDetection"
	BinaryClassification     Family = "BinaryClassification"
	MulticlassClassification Family = "MulticlassClassification"
	Clustering               Family = "Clustering"
	Ranking                  Family = "Ranking"
	Regression               Family = "Regression"
)

// Families lists every task family in catalog order.
var Families = []Family{
	AnomalyDetection,
	BinaryClassification,
	MulticlassClassification,
	Clustering,
	Ranking,
	Regression,
}

func (f Family) Valid() bool {
	for _, known := range Families {
		if f == known {
			return true
		}
	}
	return false
}

// Column references a dataset column. The zero value is NoColumn, which
// never compares equal to a named column, including one named "".
type Column struct {
	name string
	set  bool
}

// NoColumn tells a trainer the optional column does not exist.
var NoColumn = Column{}

func ColumnName(name string) Column {
	return Column{name: name, set: true}
}

// Name returns the column name and whether one was given.
func (c Column) Name() (string, bool) {
	return c.name, c.set
}

func (c Column) IsSet() bool {
	return c.set
}

func (c Column) String() string {
	if !c.set {
		return "<none>"
	}
	return c.name
}

func (c Column) MarshalJSON() ([]byte, error) {
	if !c.set {
		return []byte("null"), nil
	}
	return json.Marshal(c.name)
}

// LossFunction selects the loss a trainer optimizes.
//
// Only LossDefault is supported: the trainer keeps the library's built-in
// loss. Selecting any other loss is rejected rather than silently replaced.
type LossFunction string

const LossDefault LossFunction = "Default"

// Arg is one named argument passed to a trainer factory.
type Arg struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// StageInfo describes a stage independently of its concrete type.
type StageInfo struct {
	Family    Family `json:"family,omitempty"`
	Algorithm string `json:"algorithm"`
	Args      []Arg  `json:"args,omitempty"`
}

// Arg looks up an argument by name.
func (s StageInfo) Arg(name string) (any, bool) {
	for _, a := range s.Args {
		if a.Name == name {
			return a.Value, true
		}
	}
	return nil, false
}

func (s StageInfo) String() string {
	if s.Family == "" {
		return s.Algorithm
	}
	return fmt.Sprintf("%s.%s", s.Family, s.Algorithm)
}

// Estimator is a composable pipeline stage.
type Estimator interface {
	Describe() StageInfo
}

// Chain is an ordered sequence of estimators. Append never modifies the
// receiver, so a chain can be shared while others extend it.
type Chain struct {
	stages []Estimator
}

// Append returns a new chain ending with next. A nil receiver is an empty chain.
func (c *Chain) Append(next Estimator) *Chain {
	var n int
	if c != nil {
		n = len(c.stages)
	}
	stages := make([]Estimator, n, n+1)
	if c != nil {
		copy(stages, c.stages)
	}
	return &Chain{stages: append(stages, next)}
}

func (c *Chain) Len() int {
	if c == nil {
		return 0
	}
	return len(c.stages)
}

// Stages returns a copy of the chained estimators in order.
func (c *Chain) Stages() []Estimator {
	if c == nil {
		return nil
	}
	out := make([]Estimator, len(c.stages))
	copy(out, c.stages)
	return out
}

func (c *Chain) Describe() StageInfo {
	return StageInfo{
		Algorithm: "Chain",
		Args:      []Arg{{Name: "stages", Value: c.Len()}},
	}
}
