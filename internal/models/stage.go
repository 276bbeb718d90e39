package models

import "github.com/riahtu/pmtrain/internal/mlctx"

// StageRecord is the persisted form of one assembled stage.
type StageRecord struct {
	ID         int64
	SessionID  int64
	StageIndex int
	Kind       string
	Family     mlctx.Family
	Algorithm  string
	Args       []mlctx.Arg
}
