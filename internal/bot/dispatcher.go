package bot

import (
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	replyGreeting     = "Welcome to the Electro Guidebook notification bot!"
	replyConnected    = "Your account is connected for notifications."
	replyNotConnected = "Your account is not connected for notifications. Send your email and the code from the site to connect."
	replyAlreadySet   = "Your account is already connected. Expect notifications."
	replyLinked       = "Account connected! Expect notifications."
	replyBadCreds     = "The email or code is wrong. Check them and try again."
	replyUserTaken    = "Notifications are already set up for another Telegram account. Disconnect it on the site and try again."
	replyChatTaken    = "This Telegram account is already connected to another user. Disconnect it first and try again."
	replyUnknown      = "Something went wrong... Check your data and try again."
	replyFormat       = "Send the email and the code from your profile page as two lines:\n\n<email>\n<code>\n\nfor example:\nmail@example.com\n12345678"
)

// Dispatcher routes one inbound update to a command reply or the
// account-linking flow.
type Dispatcher struct {
	c     *Client
	relay *RelayClient
}

func NewDispatcher(c *Client, relay *RelayClient) *Dispatcher {
	return &Dispatcher{c: c, relay: relay}
}

// Handle processes a single update. A non-nil error means the update was not
// fully processed and should count as unprocessed for the cursor.
func (d *Dispatcher) Handle(u *Update) error {
	if u.Message == nil || u.Message.Chat == nil {
		return nil
	}
	m := u.Message
	chat := m.Chat.ID

	text := strings.TrimSpace(m.Text)
	switch {
	case strings.HasPrefix(text, "/start"),
		strings.HasPrefix(text, "/help"),
		strings.HasPrefix(text, "/info"):
		return d.handleHelp(chat)
	case strings.HasPrefix(text, "/commands"):
		return d.c.SendMessage(chat, strings.Join([]string{"/start", "/help", "/info", "/commands"}, "\n"))
	default:
		return d.handleLinking(m)
	}
}

func (d *Dispatcher) handleHelp(chat int64) error {
	status, err := d.relay.AccountStatus(chat)
	if err != nil {
		return err
	}
	line := replyNotConnected
	if status.Success && status.Connected {
		line = replyConnected
	}
	return d.c.SendMessage(chat, replyGreeting+"\n\n"+line)
}

// handleLinking treats any non-command message as a two-line email\ncode
// linking attempt.
func (d *Dispatcher) handleLinking(m *Message) error {
	chat := m.Chat.ID

	status, err := d.relay.AccountStatus(chat)
	if err != nil {
		return err
	}
	if status.Success && status.Connected {
		return d.c.SendMessage(chat, replyAlreadySet)
	}

	email, code, ok := parseLinking(m.Text)
	if !ok {
		return d.c.SendMessage(chat, replyFormat)
	}

	res, err := d.relay.Connect(chat, email, code, m.Chat.Username)
	if err != nil {
		return err
	}
	reply := linkingReply(res)
	if !res.Success {
		log.Info().Int64("chat", chat).Str("message", res.Message).Msg("linking attempt rejected")
	}
	return d.c.SendMessage(chat, reply)
}

// parseLinking splits a message into the email and verification-code lines.
// Anything that is not exactly two lines is rejected.
func parseLinking(text string) (email, code string, ok bool) {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) != 2 {
		return "", "", false
	}
	return lines[0], lines[1], true
}

// linkingReply maps a relay connect result to the user-facing reply.
func linkingReply(res Result) string {
	if res.Success {
		return replyLinked
	}
	switch res.Message {
	case "no-user-with-email", "wrong-verification-code":
		return replyBadCreds
	case "user-already-connected":
		return replyUserTaken
	case "telegram-already-connected":
		return replyChatTaken
	default:
		return replyUnknown
	}
}
