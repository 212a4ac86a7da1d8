package hooks

func handleEnd(client *Client, input *HookInput) error {
	_, err := client.Post("/api/sessions/"+input.SessionID+"/end", nil)
	return err
}
