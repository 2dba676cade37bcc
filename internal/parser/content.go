package parser

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// previewMaxRunes caps the first-message preview. The trailing
// ellipsis can push the stored string to 303 characters.
const previewMaxRunes = 300

// todoIcons maps a checklist item status to its display glyph.
var todoIcons = map[string]string{
	"completed":   "✓",
	"in_progress": "→",
	"pending":     "○",
}

// ExtractTextContent flattens a Claude message content value,
// either a plain string or an array of typed blocks, into
// displayable text. Blocks are joined with newlines. Tool
// invocations are rendered as short readable tags when
// includeTools is set, so tool activity stays searchable as
// ordinary text instead of being dropped.
func ExtractTextContent(
	content gjson.Result, includeTools bool,
) string {
	if content.Type == gjson.String {
		return content.Str
	}
	if !content.IsArray() {
		return ""
	}

	var texts []string
	content.ForEach(func(_, block gjson.Result) bool {
		switch block.Get("type").Str {
		case "text":
			texts = append(texts, block.Get("text").Str)
		case "thinking":
			if t := block.Get("thinking").Str; t != "" {
				texts = append(texts, "[Thinking]\n"+t)
			}
		case "tool_use":
			if includeTools {
				texts = append(texts, formatToolUse(block))
			}
		}
		return true
	})
	return strings.Join(texts, "\n")
}

// formatToolUse renders a tool_use block as a one-or-two-line
// synopsis keyed on the tool name.
func formatToolUse(block gjson.Result) string {
	name := block.Get("name").Str
	if name == "" {
		name = "unknown"
	}
	input := block.Get("input")

	switch name {
	case "AskUserQuestion":
		lines := []string{fmt.Sprintf("[Question: %s]", name)}
		input.Get("questions").ForEach(
			func(_, q gjson.Result) bool {
				lines = append(lines, "  "+q.Get("question").Str)
				q.Get("options").ForEach(
					func(_, opt gjson.Result) bool {
						lines = append(lines, fmt.Sprintf(
							"    - %s: %s",
							opt.Get("label").Str,
							opt.Get("description").Str,
						))
						return true
					},
				)
				return true
			},
		)
		return strings.Join(lines, "\n")

	case "TodoWrite":
		lines := []string{"[Todo List]"}
		input.Get("todos").ForEach(
			func(_, todo gjson.Result) bool {
				icon, ok := todoIcons[todo.Get("status").Str]
				if !ok {
					icon = todoIcons["pending"]
				}
				lines = append(lines, fmt.Sprintf(
					"  %s %s", icon, todo.Get("content").Str,
				))
				return true
			},
		)
		return strings.Join(lines, "\n")

	case "EnterPlanMode":
		return "[Entering Plan Mode]"

	case "ExitPlanMode":
		return "[Exiting Plan Mode]"

	case "Read":
		return fmt.Sprintf(
			"[Read: %s]", orUnknown(input.Get("file_path").Str),
		)

	case "Glob":
		path := input.Get("path").Str
		if path == "" {
			path = "."
		}
		return fmt.Sprintf(
			"[Glob: %s in %s]", input.Get("pattern").Str, path,
		)

	case "Grep":
		return fmt.Sprintf(
			"[Grep: %s]", input.Get("pattern").Str,
		)

	case "Edit":
		return fmt.Sprintf(
			"[Edit: %s]", orUnknown(input.Get("file_path").Str),
		)

	case "Write":
		return fmt.Sprintf(
			"[Write: %s]", orUnknown(input.Get("file_path").Str),
		)

	case "Bash":
		cmd := input.Get("command").Str
		if desc := input.Get("description").Str; desc != "" {
			return fmt.Sprintf("[Bash: %s]\n$ %s", desc, cmd)
		}
		return "[Bash]\n$ " + cmd

	case "Task":
		return fmt.Sprintf(
			"[Task: %s (%s)]",
			input.Get("description").Str,
			input.Get("subagent_type").Str,
		)
	}

	return fmt.Sprintf("[Tool: %s]", name)
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

// previewText condenses message text into a first-message
// preview: newlines collapsed to single spaces, capped at
// previewMaxRunes runes, with a trailing ellipsis when
// truncation occurred.
func previewText(s string) string {
	flat := strings.TrimSpace(strings.ReplaceAll(s, "\n", " "))
	runes := []rune(flat)
	if len(runes) <= previewMaxRunes {
		return flat
	}
	return string(runes[:previewMaxRunes]) + "..."
}
