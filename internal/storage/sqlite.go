package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/riahtu/pmtrain/internal/mlctx"
	"github.com/riahtu/pmtrain/internal/models"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a session does not exist.
var ErrNotFound = errors.New("session not found")

type Storage struct {
	db *sql.DB
}

func New(dbPath string) (*Storage, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	s := &Storage{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		uuid TEXT NOT NULL UNIQUE,
		created_at TIMESTAMP NOT NULL,
		completed_at TIMESTAMP,
		document_name TEXT NOT NULL,
		source_path TEXT,
		status TEXT NOT NULL DEFAULT 'pending',
		stage_count INTEGER NOT NULL DEFAULT 0,
		error TEXT,
		workspace_path TEXT
	);

	CREATE TABLE IF NOT EXISTS stages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id INTEGER NOT NULL REFERENCES sessions(id),
		stage_index INTEGER NOT NULL,
		kind TEXT NOT NULL,
		family TEXT NOT NULL,
		algorithm TEXT NOT NULL,
		args TEXT,
		UNIQUE(session_id, stage_index)
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_status ON sessions(status);
	CREATE INDEX IF NOT EXISTS idx_stages_session ON stages(session_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

const sessionColumns = `id, uuid, created_at, completed_at, document_name, source_path, status, stage_count, error, workspace_path`

func (s *Storage) CreateSession(session *models.Session) (int64, error) {
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}
	result, err := s.db.Exec(
		`INSERT INTO sessions (uuid, created_at, document_name, source_path, status, stage_count, error, workspace_path)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		session.UUID, session.CreatedAt, session.DocumentName, session.SourcePath, session.Status,
		session.StageCount, session.Error, session.WorkspacePath,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (*models.Session, error) {
	var session models.Session
	var completedAt sql.NullTime
	var sourcePath, errText, workspacePath sql.NullString

	err := row.Scan(
		&session.ID, &session.UUID, &session.CreatedAt, &completedAt, &session.DocumentName,
		&sourcePath, &session.Status, &session.StageCount, &errText, &workspacePath,
	)
	if err != nil {
		return nil, err
	}

	if completedAt.Valid {
		session.CompletedAt = &completedAt.Time
	}
	session.SourcePath = sourcePath.String
	session.Error = errText.String
	session.WorkspacePath = workspacePath.String

	return &session, nil
}

func (s *Storage) GetSession(id int64) (*models.Session, error) {
	row := s.db.QueryRow(`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	session, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return session, err
}

func (s *Storage) UpdateSession(session *models.Session) error {
	_, err := s.db.Exec(
		`UPDATE sessions SET completed_at = ?, status = ?, stage_count = ?, error = ?, workspace_path = ? WHERE id = ?`,
		session.CompletedAt, session.Status, session.StageCount, session.Error, session.WorkspacePath, session.ID,
	)
	return err
}

func (s *Storage) ListSessions(limit int) ([]*models.Session, error) {
	rows, err := s.db.Query(
		`SELECT `+sessionColumns+` FROM sessions ORDER BY created_at DESC, id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*models.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}

	return sessions, rows.Err()
}

// CreateStages records every stage of a session in one transaction.
func (s *Storage) CreateStages(sessionID int64, stages []*models.StageRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stage := range stages {
		args, err := json.Marshal(stage.Args)
		if err != nil {
			return fmt.Errorf("failed to encode stage %d args: %w", stage.StageIndex, err)
		}
		result, err := tx.Exec(
			`INSERT INTO stages (session_id, stage_index, kind, family, algorithm, args) VALUES (?, ?, ?, ?, ?, ?)`,
			sessionID, stage.StageIndex, stage.Kind, stage.Family, stage.Algorithm, string(args),
		)
		if err != nil {
			return err
		}
		stage.ID, _ = result.LastInsertId()
		stage.SessionID = sessionID
	}

	return tx.Commit()
}

func (s *Storage) GetStagesForSession(sessionID int64) ([]*models.StageRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, session_id, stage_index, kind, family, algorithm, args
		 FROM stages WHERE session_id = ? ORDER BY stage_index`, sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stages []*models.StageRecord
	for rows.Next() {
		var stage models.StageRecord
		var family string
		var args sql.NullString

		err := rows.Scan(&stage.ID, &stage.SessionID, &stage.StageIndex, &stage.Kind, &family, &stage.Algorithm, &args)
		if err != nil {
			return nil, err
		}
		stage.Family = mlctx.Family(family)
		if args.Valid {
			if err := json.Unmarshal([]byte(args.String), &stage.Args); err != nil {
				return nil, fmt.Errorf("failed to decode stage %d args: %w", stage.StageIndex, err)
			}
		}

		stages = append(stages, &stage)
	}

	return stages, rows.Err()
}

func (s *Storage) DeleteSession(id int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM stages WHERE session_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return err
	}

	return tx.Commit()
}

// Helper to format time for display
func FormatTimeAgo(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return t.Format("Jan 2")
	}
}
