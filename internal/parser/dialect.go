package parser

import "strings"

// Dialect binds an agent kind to its filesystem and identifier
// conventions.
type Dialect struct {
	Agent       AgentType
	DisplayName string
	EnvVar      string   // overrides the default root directory
	DefaultDir  []string // relative to the user home directory
	IDPrefix    string   // session ID namespace prefix, if any
}

var Dialects = []Dialect{
	{
		Agent:       AgentClaude,
		DisplayName: "Claude Code",
		EnvVar:      "CLAUDE_PROJECTS_DIR",
		DefaultDir:  []string{".claude", "projects"},
	},
	{
		Agent:       AgentCodex,
		DisplayName: "Codex",
		EnvVar:      "CODEX_SESSIONS_DIR",
		DefaultDir:  []string{".codex", "sessions"},
		IDPrefix:    CodexIDPrefix,
	},
}

// DialectForID picks the dialect a session identifier belongs to
// from its namespace prefix. Unprefixed IDs belong to Claude.
func DialectForID(sessionID string) Dialect {
	for _, d := range Dialects {
		if d.IDPrefix != "" &&
			strings.HasPrefix(sessionID, d.IDPrefix) {
			return d
		}
	}
	return Dialects[0]
}
