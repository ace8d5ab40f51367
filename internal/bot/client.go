// Package bot is the relay process: a hand-rolled Telegram Bot API client, a
// client for the platform's relay boundary, an update dispatcher and the
// scheduler that drives both.
package bot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client is a minimal Telegram Bot API client.
type Client struct {
	token  string
	httpc  *http.Client
	apiURL string
}

func NewClient(token string) *Client {
	return &Client{
		token:  token,
		apiURL: "https://api.telegram.org/bot" + token,
		// Long polls block up to the getUpdates timeout; leave headroom.
		httpc: &http.Client{Timeout: 30 * time.Second},
	}
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description"`
}

func (c *Client) call(method string, payload any, result any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequest("POST", c.apiURL+"/"+method, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var decoded apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return fmt.Errorf("telegram %s: %w", method, err)
	}
	if !decoded.OK {
		return fmt.Errorf("telegram %s: %s", method, decoded.Description)
	}
	if result != nil {
		return json.Unmarshal(decoded.Result, result)
	}
	return nil
}

// SendMessage sends an HTML-formatted message to a chat.
func (c *Client) SendMessage(chatID int64, text string) error {
	return c.call("sendMessage", map[string]any{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "HTML",
	}, nil)
}

// GetUpdates long-polls for updates with update_id >= offset. timeout is the
// server-side long-poll timeout in seconds.
func (c *Client) GetUpdates(offset int64, timeout int) ([]Update, error) {
	var updates []Update
	err := c.call("getUpdates", map[string]any{
		"offset":  offset,
		"timeout": timeout,
	}, &updates)
	return updates, err
}
