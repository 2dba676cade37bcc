// Package parser turns raw agent session logs (one JSON object
// per line) into canonical session metadata plus an ordered
// message list. It knows nothing about storage or sync.
package parser

import (
	"fmt"
	"strings"
	"time"
)

// AgentType identifies which CLI produced a session log.
type AgentType string

const (
	AgentClaude AgentType = "claude"
	AgentCodex  AgentType = "codex"
)

// RoleType is the speaker of a message.
type RoleType string

const (
	RoleUser      RoleType = "user"
	RoleAssistant RoleType = "assistant"
)

// CodexIDPrefix namespaces Codex session IDs so they cannot
// collide with Claude Code session IDs.
const CodexIDPrefix = "codex:"

// SubagentPrefix marks Claude Code session files spawned by the
// Task tool. They are internal sub-sessions, not top-level
// conversations, and are never ingested.
const SubagentPrefix = "agent-"

// FileInfo records the identity of the source file a session was
// parsed from. Size and Hash are filled in by the sync layer.
type FileInfo struct {
	Path string
	Size int64
	Hash string
}

// ParsedSession is the canonical metadata extracted from one
// session log file.
type ParsedSession struct {
	ID           string
	Project      string
	Machine      string
	Agent        AgentType
	FirstMessage string
	StartedAt    time.Time
	EndedAt      time.Time
	MessageCount int
	File         FileInfo
}

// ParsedMessage is one user or assistant message in file order.
// Timestamp carries the raw dialect-native timestamp string,
// kept opaque.
type ParsedMessage struct {
	MsgID     string
	SessionID string
	Role      RoleType
	Content   string
	Timestamp string
}

// makeMsgID derives a message identifier from the raw timestamp
// string; records with no timestamp use their zero-based position
// in the session instead. IDs are not guaranteed unique: two
// records sharing a timestamp share an ID.
func makeMsgID(ts string, ordinal int) string {
	if ts == "" {
		return fmt.Sprintf("msg-%d", ordinal)
	}
	r := strings.NewReplacer(":", "-", ".", "-")
	return "msg-" + r.Replace(ts)
}
