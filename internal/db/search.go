package db

import (
	"context"
	"fmt"
	"strings"
)

const (
	DefaultSearchLimit = 50
	MaxSearchLimit     = 500
	snippetTokenLength = 32
)

// SearchResult holds a message match with session context.
type SearchResult struct {
	SessionID string  `json:"session_id"`
	MsgID     string  `json:"msg_id"`
	Project   string  `json:"project"`
	Role      string  `json:"role"`
	Timestamp string  `json:"timestamp"`
	Snippet   string  `json:"snippet"`
	Rank      float64 `json:"rank"`
}

// Search performs FTS5 full-text search across messages, ranked
// by relevance. An empty project searches all projects.
func (db *DB) Search(
	ctx context.Context, query, project string, limit int,
) ([]SearchResult, error) {
	if limit <= 0 || limit > MaxSearchLimit {
		limit = DefaultSearchLimit
	}

	whereClauses := []string{"messages_fts MATCH ?"}
	args := []any{query}

	if project != "" {
		whereClauses = append(whereClauses, "s.project = ?")
		args = append(args, project)
	}

	sqlQuery := fmt.Sprintf(`
		SELECT m.session_id, m.msg_id, s.project, m.role,
			m.timestamp,
			snippet(messages_fts, 0, '<mark>', '</mark>',
				'...', %d) as snippet,
			rank
		FROM messages_fts
		JOIN messages m ON messages_fts.rowid = m.id
		JOIN sessions s ON m.session_id = s.id
		WHERE %s
		ORDER BY rank
		LIMIT ?`,
		snippetTokenLength,
		strings.Join(whereClauses, " AND "),
	)
	args = append(args, limit)

	rows, err := db.reader.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("searching: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(
			&r.SessionID, &r.MsgID, &r.Project, &r.Role,
			&r.Timestamp, &r.Snippet, &r.Rank,
		); err != nil {
			return nil, fmt.Errorf("scanning result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
