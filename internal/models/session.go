package models

import "time"

type SessionStatus string

const (
	SessionStatusPending   SessionStatus = "pending"
	SessionStatusAssembled SessionStatus = "assembled"
	SessionStatusFailed    SessionStatus = "failed"
	SessionStatusExported  SessionStatus = "exported"
)

// Session records one attempt to assemble a document into a pipeline.
type Session struct {
	ID            int64
	UUID          string
	CreatedAt     time.Time
	CompletedAt   *time.Time
	DocumentName  string
	SourcePath    string
	Status        SessionStatus
	StageCount    int
	Error         string
	WorkspacePath string
}
