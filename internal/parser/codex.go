package parser

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// Codex JSONL entry types.
const (
	codexTypeSessionMeta  = "session_meta"
	codexTypeResponseItem = "response_item"
	codexOriginatorExec   = "codex_exec"
)

// codexSessionBuilder accumulates state while scanning a Codex
// rollout file line by line.
type codexSessionBuilder struct {
	messages    []ParsedMessage
	firstMsg    string
	startedAt   time.Time
	endedAt     time.Time
	sessionID   string
	project     string
	includeExec bool
}

func newCodexSessionBuilder(
	includeExec bool,
) *codexSessionBuilder {
	return &codexSessionBuilder{
		project:     "unknown",
		includeExec: includeExec,
	}
}

// processLine handles a single non-empty, valid JSON line.
// Returns skip=true when the whole session should be discarded
// (non-interactive codex_exec run).
func (b *codexSessionBuilder) processLine(
	line string,
) (skip bool) {
	tsStr := gjson.Get(line, "timestamp").Str
	if ts := parseTimestamp(tsStr); !ts.IsZero() {
		if b.startedAt.IsZero() {
			b.startedAt = ts
		}
		b.endedAt = ts
	}

	payload := gjson.Get(line, "payload")

	switch gjson.Get(line, "type").Str {
	case codexTypeSessionMeta:
		return b.handleSessionMeta(payload)
	case codexTypeResponseItem:
		b.handleResponseItem(payload, tsStr)
	}
	return false
}

func (b *codexSessionBuilder) handleSessionMeta(
	payload gjson.Result,
) (skip bool) {
	b.sessionID = payload.Get("id").Str
	b.project = extractCodexProject(payload.Get("cwd").Str)

	if !b.includeExec &&
		payload.Get("originator").Str == codexOriginatorExec {
		return true
	}
	return false
}

func (b *codexSessionBuilder) handleResponseItem(
	payload gjson.Result, tsStr string,
) {
	role := payload.Get("role").Str
	if role != "user" && role != "assistant" {
		return
	}

	content := extractCodexContent(payload)
	if strings.TrimSpace(content) == "" {
		return
	}

	if role == "user" && isCodexSystemMessage(content) {
		return
	}

	if role == "user" && b.firstMsg == "" {
		b.firstMsg = previewText(content)
	}

	b.messages = append(b.messages, ParsedMessage{
		MsgID:     makeMsgID(tsStr, len(b.messages)),
		Role:      RoleType(role),
		Content:   content,
		Timestamp: tsStr,
	})
}

// extractCodexContent joins the text-bearing blocks of a Codex
// response item's content array.
func extractCodexContent(payload gjson.Result) string {
	var texts []string
	payload.Get("content").ForEach(
		func(_, block gjson.Result) bool {
			switch block.Get("type").Str {
			case "input_text", "output_text", "text":
				if t := block.Get("text").Str; t != "" {
					texts = append(texts, t)
				}
			}
			return true
		},
	)
	return strings.Join(texts, "\n")
}

// extractCodexProject derives a project name from the session's
// working directory.
func extractCodexProject(cwd string) string {
	if cwd == "" {
		return "unknown"
	}
	base := filepath.Base(cwd)
	if base == "" || base == "/" || base == "." {
		return "unknown"
	}
	return base
}

// isCodexSystemMessage reports whether a user message is
// framework-injected scaffolding rather than user intent.
func isCodexSystemMessage(content string) bool {
	return strings.HasPrefix(content, "# AGENTS.md") ||
		strings.HasPrefix(content, "<environment_context>") ||
		strings.HasPrefix(content, "<INSTRUCTIONS>")
}

// ParseCodexSession parses a Codex JSONL rollout file. Session
// IDs are namespaced with CodexIDPrefix to keep them out of the
// Claude ID space. Returns a nil session when the file records a
// non-interactive run and includeExec is false.
func ParseCodexSession(
	path, machine string, includeExec bool,
) (*ParsedSession, []ParsedMessage, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, fmt.Errorf("stat %s: %w", path, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(
		make([]byte, 0, initialScanBufSize), maxScanTokenSize,
	)

	b := newCodexSessionBuilder(includeExec)

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if !gjson.Valid(line) {
			continue
		}
		if b.processLine(line) {
			return nil, nil, nil
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, nil,
			fmt.Errorf("scanning codex %s: %w", path, err)
	}

	sessionID := b.sessionID
	if sessionID == "" {
		sessionID = strings.TrimSuffix(
			filepath.Base(path), ".jsonl",
		)
	}
	sessionID = CodexIDPrefix + sessionID

	for i := range b.messages {
		b.messages[i].SessionID = sessionID
	}

	sess := &ParsedSession{
		ID:           sessionID,
		Project:      b.project,
		Machine:      machine,
		Agent:        AgentCodex,
		FirstMessage: b.firstMsg,
		StartedAt:    b.startedAt,
		EndedAt:      b.endedAt,
		MessageCount: len(b.messages),
		File: FileInfo{
			Path: path,
			Size: info.Size(),
		},
	}

	return sess, b.messages, nil
}
