// Package sync ingests agent session logs into the store. It
// decides per file whether a reparse is needed (size then content
// fingerprint), runs the matching dialect parser, and replaces the
// stored session wholesale so the store always reflects exactly one
// parse of each source file.
package sync

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/wesm/sessionsync/internal/db"
	"github.com/wesm/sessionsync/internal/parser"
	"github.com/wesm/sessionsync/internal/timeutil"
)

// SyncResult describes the outcome of syncing one session file.
type SyncResult struct {
	SessionID string
	Project   string
	Skipped   bool
	Messages  int
}

// SyncStats aggregates a full sync pass across all dialects.
type SyncStats struct {
	TotalSessions int
	Synced        int
	Skipped       int
}

// Engine drives session ingestion for both agents against one
// store. It is synchronous; callers wanting background syncs run
// it off their interactive path.
type Engine struct {
	db        *db.DB
	claudeDir string
	codexDir  string
	machine   string
}

// NewEngine creates a sync engine rooted at the given source
// directories.
func NewEngine(
	database *db.DB, claudeDir, codexDir, machine string,
) *Engine {
	return &Engine{
		db:        database,
		claudeDir: claudeDir,
		codexDir:  codexDir,
		machine:   machine,
	}
}

// needsReparse decides whether a source file must be parsed again.
// Size is compared first as a cheap short-circuit; the hash is
// computed only when sizes match, so hash is "" whenever the
// decision was reached without it.
func (e *Engine) needsReparse(
	path, sessionID string, force bool,
) (reparse bool, size int64, hash string, err error) {
	size, err = fileSize(path)
	if err != nil {
		return false, 0, "", err
	}
	if force {
		return true, size, "", nil
	}

	storedSize, storedHash, ok := e.db.GetSessionFileInfo(sessionID)
	if !ok {
		return true, size, "", nil
	}
	if size != storedSize {
		return true, size, "", nil
	}

	hash, err = ComputeFileHash(path)
	if err != nil {
		return false, 0, "", err
	}
	return hash != storedHash, size, hash, nil
}

// SyncClaudeFile syncs one Claude Code session file. Returns nil
// when the file yields no session (sub-agent transcript, or nothing
// parseable).
func (e *Engine) SyncClaudeFile(
	file DiscoveredFile, force bool,
) (*SyncResult, error) {
	sessionID := strings.TrimSuffix(
		filepath.Base(file.Path), ".jsonl",
	)
	if strings.HasPrefix(sessionID, parser.SubagentPrefix) {
		return nil, nil
	}

	reparse, size, hash, err := e.needsReparse(
		file.Path, sessionID, force,
	)
	if err != nil {
		return nil, err
	}
	if !reparse {
		return &SyncResult{
			SessionID: sessionID,
			Project:   file.Project,
			Skipped:   true,
		}, nil
	}

	sess, msgs, err := parser.ParseClaudeSession(
		file.Path, file.Project, e.machine, true,
	)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, nil
	}

	if err := e.writeSession(sess, msgs, size, hash); err != nil {
		return nil, err
	}
	return &SyncResult{
		SessionID: sess.ID,
		Project:   sess.Project,
		Messages:  len(msgs),
	}, nil
}

// SyncCodexFile syncs one Codex rollout file. The true session ID
// lives inside the file's metadata record, so the parse runs before
// the change decision. Returns nil when the file yields no session
// (non-interactive run with includeExec off, or nothing parseable).
func (e *Engine) SyncCodexFile(
	path string, force, includeExec bool,
) (*SyncResult, error) {
	sess, msgs, err := parser.ParseCodexSession(
		path, e.machine, includeExec,
	)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, nil
	}

	reparse, size, hash, err := e.needsReparse(
		path, sess.ID, force,
	)
	if err != nil {
		return nil, err
	}
	if !reparse {
		return &SyncResult{
			SessionID: sess.ID,
			Project:   sess.Project,
			Skipped:   true,
		}, nil
	}

	if err := e.writeSession(sess, msgs, size, hash); err != nil {
		return nil, err
	}
	return &SyncResult{
		SessionID: sess.ID,
		Project:   sess.Project,
		Messages:  len(msgs),
	}, nil
}

// SyncAll syncs every discovered session file for both agents.
// Failures are isolated per file: a broken file is logged and the
// walk continues, so the returned counts reflect everything that
// did succeed.
func (e *Engine) SyncAll(force bool) SyncStats {
	var stats SyncStats

	for _, f := range DiscoverClaudeProjects(e.claudeDir) {
		stats.TotalSessions++
		res, err := e.SyncClaudeFile(f, force)
		if err != nil {
			log.Printf("sync %s: %v", f.Path, err)
			continue
		}
		stats.tally(res)
	}

	for _, f := range DiscoverCodexSessions(e.codexDir) {
		stats.TotalSessions++
		res, err := e.SyncCodexFile(f.Path, force, false)
		if err != nil {
			log.Printf("sync %s: %v", f.Path, err)
			continue
		}
		stats.tally(res)
	}

	return stats
}

func (s *SyncStats) tally(res *SyncResult) {
	if res == nil {
		return
	}
	if res.Skipped {
		s.Skipped++
	} else {
		s.Synced++
	}
}

// FindSourceFile maps a session ID back to its source path, with
// the dialect picked from the ID's namespace prefix. Returns ""
// when the ID is invalid or no file matches.
func (e *Engine) FindSourceFile(sessionID string) string {
	d := parser.DialectForID(sessionID)
	if d.Agent == parser.AgentCodex {
		bare := strings.TrimPrefix(sessionID, d.IDPrefix)
		return FindCodexSourceFile(e.codexDir, bare)
	}
	return FindClaudeSourceFile(e.claudeDir, sessionID)
}

// IsStale reports whether a session's source file has changed
// since it was last synced. It performs no writes.
func (e *Engine) IsStale(sessionID string) bool {
	path := e.FindSourceFile(sessionID)
	if path == "" {
		return false
	}
	reparse, _, _, err := e.needsReparse(path, sessionID, false)
	if err != nil {
		return false
	}
	return reparse
}

// SyncSession force-resyncs a single session by ID and returns the
// updated row, or nil when the ID cannot be resolved to a source
// file or the file yields no session. Non-interactive Codex runs
// are included here: an explicit resync of a known ID means the
// caller wants that session regardless of its originator.
func (e *Engine) SyncSession(
	ctx context.Context, sessionID string,
) (*db.Session, error) {
	path := e.FindSourceFile(sessionID)
	if path == "" {
		return nil, nil
	}

	var res *SyncResult
	var err error
	if parser.DialectForID(sessionID).Agent == parser.AgentCodex {
		res, err = e.SyncCodexFile(path, true, true)
	} else {
		project := parser.GetProjectName(
			filepath.Base(filepath.Dir(path)),
		)
		res, err = e.SyncClaudeFile(DiscoveredFile{
			Path:    path,
			Project: project,
			Agent:   parser.AgentClaude,
		}, true)
	}
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, nil
	}
	return e.db.GetSession(ctx, res.SessionID)
}

// writeSession stamps the freshly observed size/hash onto the
// session row, upserts it, and replaces the stored message set in
// one transaction. hash may be "" when the change decision was
// reached without computing it.
func (e *Engine) writeSession(
	sess *parser.ParsedSession,
	msgs []parser.ParsedMessage,
	size int64, hash string,
) error {
	if hash == "" {
		var err error
		hash, err = ComputeFileHash(sess.File.Path)
		if err != nil {
			return err
		}
	}

	if err := e.db.UpsertSession(
		toDBSession(sess, size, hash),
	); err != nil {
		return fmt.Errorf("upserting %s: %w", sess.ID, err)
	}
	if err := e.db.ReplaceSessionMessages(
		sess.ID, toDBMessages(msgs),
	); err != nil {
		return fmt.Errorf("replacing messages %s: %w", sess.ID, err)
	}
	return nil
}

func toDBSession(
	s *parser.ParsedSession, size int64, hash string,
) db.Session {
	return db.Session{
		ID:           s.ID,
		Project:      s.Project,
		Machine:      s.Machine,
		Agent:        string(s.Agent),
		FirstMessage: strPtr(s.FirstMessage),
		StartedAt:    timeutil.Ptr(s.StartedAt),
		EndedAt:      timeutil.Ptr(s.EndedAt),
		MessageCount: s.MessageCount,
		FileSize:     int64Ptr(size),
		FileHash:     strPtr(hash),
	}
}

func toDBMessages(msgs []parser.ParsedMessage) []db.Message {
	out := make([]db.Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, db.Message{
			MsgID:     m.MsgID,
			SessionID: m.SessionID,
			Role:      string(m.Role),
			Content:   m.Content,
			Timestamp: m.Timestamp,
		})
	}
	return out
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func int64Ptr(v int64) *int64 { return &v }
