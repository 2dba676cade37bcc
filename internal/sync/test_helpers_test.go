package sync_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	_ "github.com/mattn/go-sqlite3"

	"github.com/wesm/sessionsync/internal/db"
	"github.com/wesm/sessionsync/internal/sync"
)

// Timestamp constants for test data.
const (
	tsZero   = "2024-01-01T00:00:00Z"
	tsZeroS1 = "2024-01-01T00:00:01Z"
	tsZeroS2 = "2024-01-01T00:00:02Z"
)

const testUUID = "019b9da7-1f41-7af2-80d9-6e293902fea8"

// testEnv wires a temp store and temp source roots to one engine.
type testEnv struct {
	db        *db.DB
	engine    *sync.Engine
	claudeDir string
	codexDir  string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()

	database, err := db.Open(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("db.Open: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	env := &testEnv{
		db:        database,
		claudeDir: filepath.Join(dir, "claude"),
		codexDir:  filepath.Join(dir, "codex"),
	}
	env.engine = sync.NewEngine(
		database, env.claudeDir, env.codexDir, "testhost",
	)
	return env
}

// writeClaudeSession writes a session file under a project
// directory and returns its path.
func (e *testEnv) writeClaudeSession(
	t *testing.T, projectDir, sessionID, content string,
) string {
	t.Helper()
	dir := filepath.Join(e.claudeDir, projectDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, sessionID+".jsonl")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// writeCodexSession writes a rollout file under a year/month/day
// directory and returns its path.
func (e *testEnv) writeCodexSession(
	t *testing.T, day, filename, content string,
) string {
	t.Helper()
	dir := filepath.Join(e.codexDir, day)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runSyncAndAssert(
	t *testing.T, engine *sync.Engine, force bool,
	want sync.SyncStats,
) {
	t.Helper()
	stats := engine.SyncAll(force)
	if diff := cmp.Diff(want, stats); diff != "" {
		t.Fatalf("SyncAll() mismatch (-want +got):\n%s", diff)
	}
}

func assertSessionState(
	t *testing.T, database *db.DB, sessionID string,
	check func(*db.Session),
) {
	t.Helper()
	sess, err := database.GetSession(
		context.Background(), sessionID,
	)
	if err != nil {
		t.Fatalf("GetSession(%q): %v", sessionID, err)
	}
	if sess == nil {
		t.Fatalf("session %q not found", sessionID)
	}
	if check != nil {
		check(sess)
	}
}

func assertSessionMessageCount(
	t *testing.T, database *db.DB, sessionID string, want int,
) {
	t.Helper()
	assertSessionState(t, database, sessionID,
		func(sess *db.Session) {
			if sess.MessageCount != want {
				t.Errorf(
					"session %q message_count = %d, want %d",
					sessionID, sess.MessageCount, want,
				)
			}
		})

	stored, err := database.MessageCount(sessionID)
	if err != nil {
		t.Fatalf("MessageCount(%q): %v", sessionID, err)
	}
	if stored != want {
		t.Errorf(
			"session %q stored messages = %d, want %d",
			sessionID, stored, want,
		)
	}
}

func fetchMessages(
	t *testing.T, database *db.DB, sessionID string,
) []db.Message {
	t.Helper()
	msgs, err := database.GetMessages(
		context.Background(), sessionID,
	)
	if err != nil {
		t.Fatalf("GetMessages(%q): %v", sessionID, err)
	}
	return msgs
}
