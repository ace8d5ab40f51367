package bot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// RelayClient talks to the platform's relay boundary. Every request carries
// the shared secret as a secret-key query parameter.
type RelayClient struct {
	base  string
	key   string
	httpc *http.Client
}

func NewRelayClient(base, key string) *RelayClient {
	return &RelayClient{
		base:  strings.TrimRight(base, "/"),
		key:   key,
		httpc: &http.Client{Timeout: 10 * time.Second},
	}
}

// Status is the link-status answer for one chat id.
type Status struct {
	Success   bool  `json:"success"`
	Connected bool  `json:"connected"`
	UserID    *uint `json:"user_id"`
}

// Result is the generic success/message shape shared by the POST endpoints.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// PendingNotification mirrors the notification half of a feed entry.
type PendingNotification struct {
	ID     uint    `json:"id"`
	Text   string  `json:"text"`
	Link   *string `json:"link"`
	UserID uint    `json:"user-id"`
}

// PendingAccount mirrors the linked-account half of a feed entry.
type PendingAccount struct {
	ID         uint   `json:"id"`
	TelegramID int64  `json:"telegram-id"`
	Username   string `json:"username"`
	UserID     uint   `json:"user-id"`
}

// PendingEntry is one deliverable notification joined with its destination.
type PendingEntry struct {
	Notification PendingNotification `json:"notification"`
	Account      PendingAccount      `json:"account"`
}

func (c *RelayClient) get(endpoint string, out any) error {
	u := c.base + "/" + strings.TrimLeft(endpoint, "/") + "?secret-key=" + url.QueryEscape(c.key)
	resp, err := c.httpc.Get(u)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decodeRelay(resp, endpoint, out)
}

func (c *RelayClient) post(endpoint string, body any, out any) error {
	u := c.base + "/" + strings.TrimLeft(endpoint, "/") + "?secret-key=" + url.QueryEscape(c.key)
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	resp, err := c.httpc.Post(u, "application/json", bytes.NewReader(b))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decodeRelay(resp, endpoint, out)
}

func decodeRelay(resp *http.Response, endpoint string, out any) error {
	// 403 means a key mismatch between the two processes; everything else,
	// including domain conflicts, arrives as a JSON body.
	if resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("relay %s: forbidden (secret key mismatch)", endpoint)
	}
	if resp.StatusCode >= 500 {
		return fmt.Errorf("relay %s: %s", endpoint, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// AccountStatus reports whether chatID is linked to a platform account.
func (c *RelayClient) AccountStatus(chatID int64) (Status, error) {
	var s Status
	err := c.get(fmt.Sprintf("/telegram-account/%d", chatID), &s)
	return s, err
}

// Connect attempts to link chatID to the account owning email.
func (c *RelayClient) Connect(chatID int64, email, code, username string) (Result, error) {
	var res Result
	err := c.post(fmt.Sprintf("/telegram-account/%d", chatID), map[string]string{
		"user-email":        email,
		"verification-code": code,
		"account-username":  username,
	}, &res)
	return res, err
}

// PendingNotifications fetches the deliverable part of the queue.
func (c *RelayClient) PendingNotifications() ([]PendingEntry, error) {
	var resp struct {
		Success       bool           `json:"success"`
		Notifications []PendingEntry `json:"notifications"`
	}
	if err := c.get("/pending-notifications", &resp); err != nil {
		return nil, err
	}
	return resp.Notifications, nil
}

// MarkDelivered acknowledges one delivered notification.
func (c *RelayClient) MarkDelivered(id uint) (Result, error) {
	var res Result
	err := c.post(fmt.Sprintf("/pending-notifications/%d/delivered", id), map[string]string{}, &res)
	return res, err
}
