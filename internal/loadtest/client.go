package loadtest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// invokeClient calls the service's /invoke endpoints.
type invokeClient struct {
	baseURL string
	client  *http.Client
}

func newInvokeClient(baseURL string, timeout time.Duration) *invokeClient {
	return &invokeClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// invoke posts args to /invoke/{command} and decodes a 200 response into out.
// Any other status is returned as an error carrying the service's message.
func (c *invokeClient) invoke(ctx context.Context, command string, args, out any) error {
	body, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("marshal %s args: %w", command, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/invoke/"+command, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", command, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", command, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", command, err)
	}
	if resp.StatusCode != http.StatusOK {
		var msg string
		if json.Unmarshal(data, &msg) != nil {
			msg = string(data)
		}
		return fmt.Errorf("%s: status %d: %s", command, resp.StatusCode, msg)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", command, err)
	}
	return nil
}

func (c *invokeClient) healthy(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", http.NoBody)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}
