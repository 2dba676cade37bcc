package sync

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// isValidSessionID reports whether an externally supplied session ID
// is safe to use in filesystem lookups. Only alphanumerics, dashes,
// and underscores are allowed; anything else (path separators, dots,
// shell metacharacters) is rejected.
func isValidSessionID(id string) bool {
	if id == "" {
		return false
	}
	for _, c := range id {
		if !isAlphanumOrDashUnderscore(c) {
			return false
		}
	}
	return true
}

func isAlphanumOrDashUnderscore(c rune) bool {
	return (c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') ||
		c == '-' || c == '_'
}

// FindClaudeSourceFile finds the original JSONL file for a Claude
// session ID by searching all project directories. Invalid IDs and
// candidates that resolve outside their project directory (symlink
// escapes) return "".
func FindClaudeSourceFile(projectsDir, sessionID string) string {
	if !isValidSessionID(sessionID) {
		return ""
	}

	entries, err := os.ReadDir(projectsDir)
	if err != nil {
		return ""
	}

	target := sessionID + ".jsonl"
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		projDir := filepath.Join(projectsDir, entry.Name())
		candidate := filepath.Join(projDir, target)
		if _, err := os.Stat(candidate); err != nil {
			continue
		}
		if !containedIn(candidate, projDir) {
			continue
		}
		return candidate
	}
	return ""
}

// containedIn reports whether path, after resolving symlinks, still
// lives under dir.
func containedIn(path, dir string) bool {
	resolvedDir, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return false
	}
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return false
	}
	return strings.HasPrefix(
		resolved, resolvedDir+string(filepath.Separator),
	)
}

// FindCodexSourceFile finds a Codex session file by UUID. The
// sessionID must be the bare UUID, without the "codex:" prefix.
// Searches the year/month/day directory structure for files named
// rollout-{timestamp}-{uuid}.jsonl.
func FindCodexSourceFile(sessionsDir, sessionID string) string {
	if !isValidSessionID(sessionID) {
		return ""
	}

	var result string
	walkCodexDayDirs(sessionsDir, func(dayPath string) bool {
		if result != "" {
			return false
		}
		entries, err := os.ReadDir(dayPath)
		if err != nil {
			return true
		}
		for _, f := range entries {
			if f.IsDir() {
				continue
			}
			name := f.Name()
			if !strings.HasPrefix(name, "rollout-") ||
				!strings.HasSuffix(name, ".jsonl") {
				continue
			}
			if extractUUIDFromRollout(name) == sessionID {
				result = filepath.Join(dayPath, name)
				return false
			}
		}
		return true
	})
	return result
}

// extractUUIDFromRollout reconstructs the session UUID from a Codex
// filename like rollout-{timestamp}-{uuid}.jsonl. The timestamp holds
// a variable number of dash-delimited fields (date, time, optional
// milliseconds or timezone offset), so the UUID is recovered as the
// last five dash-separated segments of the stem. Returns "" when the
// result is not a well-formed UUID.
func extractUUIDFromRollout(filename string) string {
	stem := strings.TrimSuffix(filename, ".jsonl")
	parts := strings.Split(stem, "-")
	if len(parts) < 6 {
		return ""
	}
	candidate := strings.Join(parts[len(parts)-5:], "-")
	if _, err := uuid.Parse(candidate); err != nil {
		return ""
	}
	return candidate
}
