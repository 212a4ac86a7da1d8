package hooks

import (
	"strings"

	"github.com/lazypower/pulse/internal/corpus"
	"github.com/lazypower/pulse/internal/transcript"
)

func handleStop(client *Client, input *HookInput) error {
	if reply := lastAssistantReply(input); reply != "" {
		if err := postMessage(client, input.SessionID, corpus.SenderAssistant, reply); err != nil {
			return err
		}
	}
	_, err := client.Post("/api/sessions/"+input.SessionID+"/complete", nil)
	return err
}

// lastAssistantReply prefers the reply carried in the hook input and falls
// back to the last assistant entry of the transcript.
func lastAssistantReply(input *HookInput) string {
	if s := strings.TrimSpace(input.LastAssistantMessage); s != "" {
		return s
	}
	if input.TranscriptPath == "" {
		return ""
	}
	entries, err := transcript.ParseFile(input.TranscriptPath)
	if err != nil {
		return ""
	}
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Type == "assistant" {
			return entries[i].Text
		}
	}
	return ""
}
