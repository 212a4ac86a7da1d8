package hooks

import (
	"encoding/json"
	"io"
	"net/url"
)

func handleStart(client *Client, input *HookInput, stdout io.Writer) error {
	params := url.Values{}
	if input.SessionID != "" {
		params.Set("session_id", input.SessionID)
	}

	data, err := client.Get("/api/context?" + params.Encode())
	if err != nil {
		// Degrade gracefully; return empty context
		return WriteSessionStartOutput(stdout, "")
	}

	var resp struct {
		Context string `json:"context"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return WriteSessionStartOutput(stdout, "")
	}
	return WriteSessionStartOutput(stdout, resp.Context)
}
