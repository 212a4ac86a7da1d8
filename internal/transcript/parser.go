// Package transcript reads JSONL conversation transcripts into corpus
// messages for import.
package transcript

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/lazypower/pulse/internal/corpus"
)

// minTextLength drops acknowledgements like "ok" and "yes".
const minTextLength = 5

// Entry represents a single line in a JSONL transcript.
type Entry struct {
	Type      string          `json:"type"` // "user", "assistant", "system"
	SessionID string          `json:"sessionId"`
	CWD       string          `json:"cwd"`
	Timestamp string          `json:"timestamp"`
	Message   json.RawMessage `json:"message"`
}

// Message is the parsed message content.
type Message struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"` // string or []ContentItem
}

// ContentItem represents a single content block (text, tool_use, tool_result).
type ContentItem struct {
	Type string `json:"type"` // "text", "tool_use", "tool_result"
	Text string `json:"text,omitempty"`
}

// ParsedEntry holds a fully parsed transcript entry.
type ParsedEntry struct {
	Type      string // "user", "assistant"
	Role      string
	SessionID string
	Project   string
	Timestamp time.Time // zero when the line carried none
	Text      string    // extracted plain text
}

var systemReminderRe = regexp.MustCompile(`<system-reminder>[\s\S]*?</system-reminder>`)

// ParseFile reads a JSONL transcript file and returns parsed entries.
func ParseFile(path string) ([]ParsedEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open transcript: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads JSONL transcript lines from r. Malformed lines are skipped.
func Parse(r io.Reader) ([]ParsedEntry, error) {
	var entries []ParsedEntry
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024) // 1MB line buffer

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		entry, err := parseLine(line)
		if err != nil {
			continue // skip malformed lines
		}
		if entry != nil {
			entries = append(entries, *entry)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan transcript: %w", err)
	}
	return entries, nil
}

// ParseLines parses transcript content from a string.
func ParseLines(content string) ([]ParsedEntry, error) {
	return Parse(strings.NewReader(content))
}

func parseLine(line []byte) (*ParsedEntry, error) {
	var entry Entry
	if err := json.Unmarshal(line, &entry); err != nil {
		return nil, err
	}

	if entry.Type != "user" && entry.Type != "assistant" {
		return nil, nil
	}
	if entry.Message == nil {
		return nil, nil
	}

	var msg Message
	if err := json.Unmarshal(entry.Message, &msg); err != nil {
		return nil, err
	}

	text := extractText(msg.Content)
	text = systemReminderRe.ReplaceAllString(text, "")
	text = strings.TrimSpace(text)

	if len(text) < minTextLength {
		return nil, nil
	}
	if strings.HasPrefix(text, "{") {
		return nil, nil
	}

	parsed := &ParsedEntry{
		Type:      entry.Type,
		Role:      msg.Role,
		SessionID: entry.SessionID,
		Project:   entry.CWD,
		Text:      text,
	}
	if entry.Timestamp != "" {
		ts, err := time.Parse(time.RFC3339Nano, entry.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("parse timestamp %q: %w", entry.Timestamp, err)
		}
		parsed.Timestamp = ts
	}
	return parsed, nil
}

// extractText handles the polymorphic content field.
// It may be a plain string or an array of ContentItem.
func extractText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var items []ContentItem
	if err := json.Unmarshal(raw, &items); err == nil {
		var texts []string
		for _, item := range items {
			if item.Type == "text" && item.Text != "" {
				texts = append(texts, item.Text)
			}
		}
		return strings.Join(texts, "\n")
	}

	return ""
}

// CountUserMessages returns the number of user messages in the entries.
func CountUserMessages(entries []ParsedEntry) int {
	count := 0
	for _, e := range entries {
		if e.Type == "user" {
			count++
		}
	}
	return count
}

// Messages converts parsed entries into corpus messages. Entries without a
// session id take fallbackSession; entries without a timestamp take the
// previous entry's, or fallbackTime for a leading run.
func Messages(entries []ParsedEntry, fallbackSession string, fallbackTime time.Time) []corpus.Message {
	out := make([]corpus.Message, 0, len(entries))
	last := fallbackTime
	for _, e := range entries {
		sid := e.SessionID
		if sid == "" {
			sid = fallbackSession
		}
		ts := e.Timestamp
		if ts.IsZero() {
			ts = last
		}
		last = ts
		out = append(out, corpus.Message{
			SessionID: sid,
			Sender:    corpus.Sender(e.Type),
			Content:   e.Text,
			Timestamp: ts,
		})
	}
	return out
}

// Session identifies one conversation in a transcript.
type Session struct {
	ID      string
	Project string
}

// Sessions returns each distinct session in entries with the first project
// seen for it, in order of first appearance.
func Sessions(entries []ParsedEntry, fallbackSession, fallbackProject string) []Session {
	index := map[string]int{}
	var out []Session
	for _, e := range entries {
		id := e.SessionID
		if id == "" {
			id = fallbackSession
		}
		i, ok := index[id]
		if !ok {
			index[id] = len(out)
			out = append(out, Session{ID: id, Project: fallbackProject})
			i = len(out) - 1
		}
		if e.Project != "" && out[i].Project == fallbackProject {
			out[i].Project = e.Project
		}
	}
	return out
}
