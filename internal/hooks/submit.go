package hooks

import (
	"strings"

	"github.com/lazypower/pulse/internal/corpus"
)

func handleSubmit(client *Client, input *HookInput) error {
	// Initialize/resume session on first user prompt
	if err := client.PostJSON("/api/sessions/init", map[string]string{
		"session_id": input.SessionID,
		"project":    input.CWD,
	}); err != nil {
		return err
	}

	if strings.TrimSpace(input.Prompt) == "" {
		return nil
	}
	return postMessage(client, input.SessionID, corpus.SenderUser, input.Prompt)
}

func postMessage(client *Client, sessionID string, sender corpus.Sender, content string) error {
	return client.PostJSON("/api/sessions/"+sessionID+"/messages", map[string]string{
		"sender":  string(sender),
		"content": content,
	})
}
