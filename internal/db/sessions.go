package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// sessionCols is the column list for session queries. Keep in
// sync with scanSessionRow.
const sessionCols = `id, project, machine, agent,
	first_message, started_at, ended_at,
	message_count, file_size, file_hash`

const (
	// DefaultSessionLimit is the default number of sessions returned.
	DefaultSessionLimit = 200
	// MaxSessionLimit is the maximum number of sessions returned.
	MaxSessionLimit = 500
)

// Session represents a row in the sessions table.
type Session struct {
	ID           string  `json:"id"`
	Project      string  `json:"project"`
	Machine      string  `json:"machine"`
	Agent        string  `json:"agent"`
	FirstMessage *string `json:"first_message"`
	StartedAt    *string `json:"started_at"`
	EndedAt      *string `json:"ended_at"`
	MessageCount int     `json:"message_count"`
	FileSize     *int64  `json:"file_size,omitempty"`
	FileHash     *string `json:"file_hash,omitempty"`
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows,
// allowing a single scan helper for both.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSessionRow(rs rowScanner) (Session, error) {
	var s Session
	err := rs.Scan(
		&s.ID, &s.Project, &s.Machine, &s.Agent,
		&s.FirstMessage, &s.StartedAt, &s.EndedAt,
		&s.MessageCount, &s.FileSize, &s.FileHash,
	)
	return s, err
}

// UpsertSession inserts or updates a session.
func (db *DB) UpsertSession(s Session) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	_, err := db.writer.Exec(`
		INSERT INTO sessions (
			id, project, machine, agent, first_message,
			started_at, ended_at, message_count,
			file_size, file_hash
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			project = excluded.project,
			machine = excluded.machine,
			agent = excluded.agent,
			first_message = excluded.first_message,
			started_at = excluded.started_at,
			ended_at = excluded.ended_at,
			message_count = excluded.message_count,
			file_size = excluded.file_size,
			file_hash = excluded.file_hash`,
		s.ID, s.Project, s.Machine, s.Agent, s.FirstMessage,
		s.StartedAt, s.EndedAt, s.MessageCount,
		s.FileSize, s.FileHash)
	if err != nil {
		return fmt.Errorf("upserting session %s: %w", s.ID, err)
	}
	return nil
}

// GetSession returns a single session by ID, or nil if absent.
func (db *DB) GetSession(
	ctx context.Context, id string,
) (*Session, error) {
	row := db.reader.QueryRowContext(
		ctx,
		"SELECT "+sessionCols+" FROM sessions WHERE id = ?",
		id,
	)

	s, err := scanSessionRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting session %s: %w", id, err)
	}
	return &s, nil
}

// GetSessions returns sessions ordered by start time descending,
// excluding sessions with no stored messages. An empty project
// returns all projects.
func (db *DB) GetSessions(
	ctx context.Context, project string, limit int,
) ([]Session, error) {
	if limit <= 0 || limit > MaxSessionLimit {
		limit = DefaultSessionLimit
	}

	where := "message_count > 0"
	args := []any{}
	if project != "" {
		where += " AND project = ?"
		args = append(args, project)
	}

	query := "SELECT " + sessionCols +
		" FROM sessions WHERE " + where + `
		ORDER BY started_at DESC
		LIMIT ?`
	args = append(args, limit)

	rows, err := db.reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		s, err := scanSessionRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// GetSessionFileInfo returns the last-synced file_size and
// file_hash for a session. ok is false when the session has
// never been synced.
func (db *DB) GetSessionFileInfo(
	id string,
) (size int64, hash string, ok bool) {
	var s sql.NullInt64
	var h sql.NullString
	err := db.reader.QueryRow(
		"SELECT file_size, file_hash FROM sessions WHERE id = ?",
		id,
	).Scan(&s, &h)
	if err != nil {
		return 0, "", false
	}
	return s.Int64, h.String, true
}

// ProjectInfo holds a project name and its session count.
type ProjectInfo struct {
	Name         string `json:"name"`
	SessionCount int    `json:"session_count"`
}

// GetProjects returns distinct project names with session counts.
func (db *DB) GetProjects(
	ctx context.Context,
) ([]ProjectInfo, error) {
	rows, err := db.reader.QueryContext(ctx, `
		SELECT project, COUNT(*) as session_count
		FROM sessions
		WHERE message_count > 0
		GROUP BY project
		ORDER BY project`)
	if err != nil {
		return nil, fmt.Errorf("querying projects: %w", err)
	}
	defer rows.Close()

	var projects []ProjectInfo
	for rows.Next() {
		var p ProjectInfo
		if err := rows.Scan(&p.Name, &p.SessionCount); err != nil {
			return nil, fmt.Errorf("scanning project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}
