package hooks

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Handle reads HookInput from stdin, dispatches on event and writes any
// output to stdout. Failures are reported on stderr with exit code 0.
func Handle(event string, stdin io.Reader) {
	if err := Run(NewClient(), event, stdin, os.Stdout); err != nil {
		ExitError(err)
	}
}

// Run is Handle with an explicit client and output.
func Run(client *Client, event string, stdin io.Reader, stdout io.Writer) error {
	var input HookInput
	if err := json.NewDecoder(stdin).Decode(&input); err != nil {
		// Stdin may be empty for some events; degrade gracefully
		if event == "start" {
			return WriteSessionStartOutput(stdout, "")
		}
		return fmt.Errorf("decode stdin: %w", err)
	}

	// Check server health; degrade gracefully if down
	if !client.Healthy() {
		if event == "start" {
			return WriteSessionStartOutput(stdout, "")
		}
		return nil // silent exit for other events
	}

	switch event {
	case "start":
		return handleStart(client, &input, stdout)
	case "submit":
		return handleSubmit(client, &input)
	case "stop":
		return handleStop(client, &input)
	case "end":
		return handleEnd(client, &input)
	default:
		return fmt.Errorf("unknown hook event: %s", event)
	}
}
