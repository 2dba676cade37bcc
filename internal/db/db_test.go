package db

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
)

const (
	defaultMachine = "local"
	defaultAgent   = "claude"

	tsZero   = "2024-01-01T00:00:00Z"
	tsZeroS1 = "2024-01-01T00:00:01Z"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	d, err := Open(path)
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }

// insertSession creates and upserts a session with sensible
// defaults. Override any field via the opts functions.
func insertSession(
	t *testing.T, d *DB, id, project string,
	opts ...func(*Session),
) {
	t.Helper()
	s := Session{
		ID:           id,
		Project:      project,
		Machine:      defaultMachine,
		Agent:        defaultAgent,
		MessageCount: 1,
	}
	for _, opt := range opts {
		opt(&s)
	}
	if err := d.UpsertSession(s); err != nil {
		t.Fatalf("insertSession %s: %v", id, err)
	}
}

func insertMessage(
	t *testing.T, d *DB, sessionID, msgID, role, content string,
) {
	t.Helper()
	err := d.InsertMessages([]Message{{
		MsgID:     msgID,
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		Timestamp: tsZero,
	}})
	if err != nil {
		t.Fatalf("insertMessage %s: %v", msgID, err)
	}
}

func TestOpenCreatesSchema(t *testing.T) {
	d := testDB(t)
	if !d.HasFTS() {
		t.Error("expected FTS to be available")
	}

	// Reopening the same file must be a no-op.
	path := filepath.Join(t.TempDir(), "reopen.db")
	d2, err := Open(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	d2.Close()
	d3, err := Open(path)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	d3.Close()
}

func TestUpsertSession(t *testing.T) {
	d := testDB(t)
	ctx := context.Background()

	insertSession(t, d, "s1", "proj", func(s *Session) {
		s.FirstMessage = Ptr("hello")
		s.StartedAt = Ptr(tsZero)
		s.FileSize = Ptr(int64(100))
		s.FileHash = Ptr("abc")
	})

	got, err := d.GetSession(ctx, "s1")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got == nil {
		t.Fatal("session not found")
	}
	if *got.FirstMessage != "hello" || *got.FileSize != 100 {
		t.Errorf("unexpected session: %+v", got)
	}

	// Second upsert with the same ID replaces the metadata.
	insertSession(t, d, "s1", "proj2", func(s *Session) {
		s.MessageCount = 7
		s.FileHash = Ptr("def")
	})
	got, err = d.GetSession(ctx, "s1")
	if err != nil {
		t.Fatalf("GetSession after update: %v", err)
	}
	if got.Project != "proj2" || got.MessageCount != 7 ||
		*got.FileHash != "def" {
		t.Errorf("update not applied: %+v", got)
	}
}

func TestGetSessionMissing(t *testing.T) {
	d := testDB(t)
	got, err := d.GetSession(context.Background(), "nope")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}

func TestGetSessions(t *testing.T) {
	d := testDB(t)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		day := fmt.Sprintf("2024-06-0%dT10:00:00Z", i)
		id := fmt.Sprintf("s%d", i)
		insertSession(t, d, id, "proj", func(s *Session) {
			s.StartedAt = Ptr(day)
		})
	}
	insertSession(t, d, "other", "elsewhere", func(s *Session) {
		s.StartedAt = Ptr(tsZero)
	})
	insertSession(t, d, "empty", "proj", func(s *Session) {
		s.MessageCount = 0
	})

	t.Run("ordered descending, zero-message excluded", func(t *testing.T) {
		got, err := d.GetSessions(ctx, "", 0)
		if err != nil {
			t.Fatalf("GetSessions: %v", err)
		}
		if len(got) != 4 {
			t.Fatalf("got %d sessions, want 4", len(got))
		}
		if got[0].ID != "s3" || got[1].ID != "s2" {
			t.Errorf("wrong order: %s, %s", got[0].ID, got[1].ID)
		}
	})

	t.Run("project filter", func(t *testing.T) {
		got, err := d.GetSessions(ctx, "elsewhere", 0)
		if err != nil {
			t.Fatalf("GetSessions: %v", err)
		}
		if len(got) != 1 || got[0].ID != "other" {
			t.Errorf("unexpected result: %+v", got)
		}
	})

	t.Run("limit", func(t *testing.T) {
		got, err := d.GetSessions(ctx, "", 2)
		if err != nil {
			t.Fatalf("GetSessions: %v", err)
		}
		if len(got) != 2 {
			t.Errorf("got %d sessions, want 2", len(got))
		}
	})
}

func TestGetSessionFileInfo(t *testing.T) {
	d := testDB(t)

	if _, _, ok := d.GetSessionFileInfo("absent"); ok {
		t.Error("expected ok=false for unknown session")
	}

	insertSession(t, d, "s1", "proj", func(s *Session) {
		s.FileSize = Ptr(int64(42))
		s.FileHash = Ptr("deadbeef")
	})
	size, hash, ok := d.GetSessionFileInfo("s1")
	if !ok {
		t.Fatal("expected ok=true")
	}
	if size != 42 || hash != "deadbeef" {
		t.Errorf("got (%d, %q)", size, hash)
	}
}

func TestMessages(t *testing.T) {
	d := testDB(t)
	ctx := context.Background()
	insertSession(t, d, "s1", "proj")

	err := d.InsertMessages([]Message{
		{MsgID: "m1", SessionID: "s1", Role: "user", Content: "first", Timestamp: tsZero},
		{MsgID: "m2", SessionID: "s1", Role: "assistant", Content: "second", Timestamp: tsZeroS1},
	})
	if err != nil {
		t.Fatalf("InsertMessages: %v", err)
	}

	msgs, err := d.GetMessages(ctx, "s1")
	if err != nil {
		t.Fatalf("GetMessages: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if msgs[0].Content != "first" || msgs[1].Content != "second" {
		t.Errorf("wrong order: %q, %q", msgs[0].Content, msgs[1].Content)
	}

	count, err := d.MessageCount("s1")
	if err != nil {
		t.Fatalf("MessageCount: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}

	if err := d.DeleteSessionMessages("s1"); err != nil {
		t.Fatalf("DeleteSessionMessages: %v", err)
	}
	count, _ = d.MessageCount("s1")
	if count != 0 {
		t.Errorf("count after delete = %d, want 0", count)
	}
}

func TestReplaceSessionMessages(t *testing.T) {
	d := testDB(t)
	ctx := context.Background()
	insertSession(t, d, "s1", "proj")
	insertMessage(t, d, "s1", "m1", "user", "old content")

	err := d.ReplaceSessionMessages("s1", []Message{
		{MsgID: "m2", SessionID: "s1", Role: "user", Content: "new content", Timestamp: tsZero},
	})
	if err != nil {
		t.Fatalf("ReplaceSessionMessages: %v", err)
	}

	msgs, err := d.GetMessages(ctx, "s1")
	if err != nil {
		t.Fatalf("GetMessages: %v", err)
	}
	if len(msgs) != 1 || msgs[0].MsgID != "m2" {
		t.Fatalf("unexpected messages: %+v", msgs)
	}

	// Empty replacement clears the set.
	if err := d.ReplaceSessionMessages("s1", nil); err != nil {
		t.Fatalf("ReplaceSessionMessages empty: %v", err)
	}
	count, _ := d.MessageCount("s1")
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}
}

func TestSearch(t *testing.T) {
	d := testDB(t)
	ctx := context.Background()
	insertSession(t, d, "s1", "alpha")
	insertSession(t, d, "s2", "beta")
	insertMessage(t, d, "s1", "m1", "user", "fix the login timeout bug")
	insertMessage(t, d, "s2", "m2", "user", "unrelated chatter")

	t.Run("matches and highlights", func(t *testing.T) {
		results, err := d.Search(ctx, "timeout", "", 0)
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if len(results) != 1 {
			t.Fatalf("got %d results, want 1", len(results))
		}
		r := results[0]
		if r.SessionID != "s1" || r.MsgID != "m1" || r.Project != "alpha" {
			t.Errorf("unexpected result: %+v", r)
		}
		if !strings.Contains(r.Snippet, "<mark>timeout</mark>") {
			t.Errorf("snippet missing highlight: %q", r.Snippet)
		}
	})

	t.Run("project filter", func(t *testing.T) {
		results, err := d.Search(ctx, "timeout", "beta", 0)
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if len(results) != 0 {
			t.Errorf("got %d results, want 0", len(results))
		}
	})

	t.Run("replaced messages drop out of the index", func(t *testing.T) {
		if err := d.ReplaceSessionMessages("s1", nil); err != nil {
			t.Fatalf("ReplaceSessionMessages: %v", err)
		}
		results, err := d.Search(ctx, "timeout", "", 0)
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if len(results) != 0 {
			t.Errorf("got %d results after delete, want 0", len(results))
		}
	})
}

func TestGetProjects(t *testing.T) {
	d := testDB(t)
	ctx := context.Background()
	insertSession(t, d, "s1", "alpha")
	insertSession(t, d, "s2", "alpha")
	insertSession(t, d, "s3", "beta")
	insertSession(t, d, "hidden", "gamma", func(s *Session) {
		s.MessageCount = 0
	})

	projects, err := d.GetProjects(ctx)
	if err != nil {
		t.Fatalf("GetProjects: %v", err)
	}
	if len(projects) != 2 {
		t.Fatalf("got %d projects, want 2", len(projects))
	}
	if projects[0].Name != "alpha" || projects[0].SessionCount != 2 {
		t.Errorf("unexpected first project: %+v", projects[0])
	}
	if projects[1].Name != "beta" || projects[1].SessionCount != 1 {
		t.Errorf("unexpected second project: %+v", projects[1])
	}
}
