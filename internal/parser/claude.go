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

const (
	initialScanBufSize = 64 * 1024        // 64KB
	maxScanTokenSize   = 20 * 1024 * 1024 // 20MB
)

// ParseClaudeSession parses a Claude Code JSONL session file.
// Files named with the sub-agent prefix yield a nil session
// regardless of content. Lines that are blank or fail to parse
// as JSON are skipped. Tool invocations are rendered into
// message text when renderTools is set.
func ParseClaudeSession(
	path, project, machine string, renderTools bool,
) (*ParsedSession, []ParsedMessage, error) {
	sessionID := strings.TrimSuffix(filepath.Base(path), ".jsonl")
	if strings.HasPrefix(sessionID, SubagentPrefix) {
		return nil, nil, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, fmt.Errorf("stat %s: %w", path, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var (
		messages  []ParsedMessage
		firstMsg  string
		startedAt time.Time
		endedAt   time.Time
	)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(
		make([]byte, 0, initialScanBufSize), maxScanTokenSize,
	)

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if !gjson.Valid(line) {
			continue
		}

		tsStr := gjson.Get(line, "timestamp").Str
		if tsStr == "" {
			tsStr = gjson.Get(line, "snapshot.timestamp").Str
		}
		if ts := parseTimestamp(tsStr); !ts.IsZero() {
			if startedAt.IsZero() {
				startedAt = ts
			}
			endedAt = ts
		}

		entryType := gjson.Get(line, "type").Str
		if entryType != "user" && entryType != "assistant" {
			continue
		}

		content := ExtractTextContent(
			gjson.Get(line, "message.content"), renderTools,
		)
		if strings.TrimSpace(content) == "" {
			continue
		}

		if entryType == "user" && firstMsg == "" {
			firstMsg = previewText(content)
		}

		messages = append(messages, ParsedMessage{
			MsgID:     makeMsgID(tsStr, len(messages)),
			SessionID: sessionID,
			Role:      RoleType(entryType),
			Content:   content,
			Timestamp: tsStr,
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("scanning %s: %w", path, err)
	}

	sess := &ParsedSession{
		ID:           sessionID,
		Project:      project,
		Machine:      machine,
		Agent:        AgentClaude,
		FirstMessage: firstMsg,
		StartedAt:    startedAt,
		EndedAt:      endedAt,
		MessageCount: len(messages),
		File: FileInfo{
			Path: path,
			Size: info.Size(),
		},
	}

	return sess, messages, nil
}
