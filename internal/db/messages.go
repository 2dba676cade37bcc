package db

import (
	"context"
	"database/sql"
	"fmt"
)

const messageCols = `id, msg_id, session_id, role, content, timestamp`

// Message represents a row in the messages table. Insertion
// order preserves file order; rowid ASC is message order.
type Message struct {
	ID        int64  `json:"id"`
	MsgID     string `json:"msg_id"`
	SessionID string `json:"session_id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// insertMessagesTx batch-inserts messages within an existing
// transaction. The caller must hold db.mu.
func insertMessagesTx(tx *sql.Tx, msgs []Message) error {
	stmt, err := tx.Prepare(`
		INSERT INTO messages (msg_id, session_id, role, content, timestamp)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, m := range msgs {
		if _, err := stmt.Exec(
			m.MsgID, m.SessionID, m.Role, m.Content, m.Timestamp,
		); err != nil {
			return fmt.Errorf("inserting message %d: %w", i, err)
		}
	}
	return nil
}

// InsertMessages batch-inserts messages in a single transaction.
func (db *DB) InsertMessages(msgs []Message) error {
	if len(msgs) == 0 {
		return nil
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	tx, err := db.writer.Begin()
	if err != nil {
		return fmt.Errorf("beginning tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := insertMessagesTx(tx, msgs); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteSessionMessages removes all messages for a session.
func (db *DB) DeleteSessionMessages(sessionID string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	_, err := db.writer.Exec(
		"DELETE FROM messages WHERE session_id = ?", sessionID,
	)
	return err
}

// ReplaceSessionMessages deletes existing messages and inserts
// the new set in one transaction, so the stored set always
// reflects exactly one parse of the source file.
func (db *DB) ReplaceSessionMessages(
	sessionID string, msgs []Message,
) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	tx, err := db.writer.Begin()
	if err != nil {
		return fmt.Errorf("beginning tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(
		"DELETE FROM messages WHERE session_id = ?", sessionID,
	); err != nil {
		return fmt.Errorf("deleting old messages: %w", err)
	}

	if len(msgs) > 0 {
		if err := insertMessagesTx(tx, msgs); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetMessages returns all messages for a session in file order.
func (db *DB) GetMessages(
	ctx context.Context, sessionID string,
) ([]Message, error) {
	rows, err := db.reader.QueryContext(ctx, `
		SELECT `+messageCols+`
		FROM messages
		WHERE session_id = ?
		ORDER BY id ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	var msgs []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(
			&m.ID, &m.MsgID, &m.SessionID,
			&m.Role, &m.Content, &m.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// MessageCount returns the number of messages for a session.
func (db *DB) MessageCount(sessionID string) (int, error) {
	var count int
	err := db.reader.QueryRow(
		"SELECT COUNT(*) FROM messages WHERE session_id = ?",
		sessionID,
	).Scan(&count)
	return count, err
}
