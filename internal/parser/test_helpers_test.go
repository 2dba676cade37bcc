package parser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Timestamp constants for test data.
const (
	tsZero   = "2024-01-01T00:00:00Z"
	tsZeroS1 = "2024-01-01T00:00:01Z"
	tsZeroS2 = "2024-01-01T00:00:02Z"
	tsLate   = "2024-01-01T10:01:00Z"
)

func createTestFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func generateLargeString(size int) string {
	return strings.Repeat("x", size)
}

func assertSessionMeta(
	t *testing.T, s *ParsedSession,
	wantID, wantProject string, wantAgent AgentType,
) {
	t.Helper()
	if s == nil {
		t.Fatal("session is nil")
	}
	if s.ID != wantID {
		t.Errorf("session ID = %q, want %q", s.ID, wantID)
	}
	if s.Project != wantProject {
		t.Errorf("project = %q, want %q", s.Project, wantProject)
	}
	if s.Agent != wantAgent {
		t.Errorf("agent = %q, want %q", s.Agent, wantAgent)
	}
}

func assertMessageCount(t *testing.T, count, want int) {
	t.Helper()
	if count != want {
		t.Fatalf("message count = %d, want %d", count, want)
	}
}
