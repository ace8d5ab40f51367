package bot

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/eguide/guidebook/internal/api"
	"github.com/eguide/guidebook/internal/db"
	"github.com/eguide/guidebook/internal/models"
	"github.com/eguide/guidebook/internal/store"
)

func TestParseLinking(t *testing.T) {
	cases := []struct {
		in          string
		email, code string
		ok          bool
	}{
		{"mail@example.com\nABCD1234", "mail@example.com", "ABCD1234", true},
		{"  mail@example.com\nABCD1234  \n", "mail@example.com", "ABCD1234  ", true},
		{"mail@example.com", "", "", false},
		{"a\nb\nc", "", "", false},
		{"", "", "", false},
		{"/weird but single line", "", "", false},
	}
	for _, c := range cases {
		email, code, ok := parseLinking(c.in)
		if ok != c.ok || email != c.email || code != c.code {
			t.Errorf("parseLinking(%q) = (%q, %q, %v), want (%q, %q, %v)",
				c.in, email, code, ok, c.email, c.code, c.ok)
		}
	}
}

func TestLinkingReply(t *testing.T) {
	cases := []struct {
		res  Result
		want string
	}{
		{Result{Success: true}, replyLinked},
		{Result{Message: "no-user-with-email"}, replyBadCreds},
		{Result{Message: "wrong-verification-code"}, replyBadCreds},
		{Result{Message: "user-already-connected"}, replyUserTaken},
		{Result{Message: "telegram-already-connected"}, replyChatTaken},
		{Result{Message: "something-else"}, replyUnknown},
	}
	for _, c := range cases {
		if got := linkingReply(c.res); got != c.want {
			t.Errorf("linkingReply(%+v) = %q, want %q", c.res, got, c.want)
		}
	}
}

// fakeTelegram records sendMessage payloads and serves queued updates so
// tests can drive the poller without the real Bot API.
type fakeTelegram struct {
	mu      sync.Mutex
	sends   []sentMessage
	updates []Update
}

type sentMessage struct {
	ChatID int64  `json:"chat_id"`
	Text   string `json:"text"`
}

func (f *fakeTelegram) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/bottest-token/sendMessage", func(w http.ResponseWriter, r *http.Request) {
		var msg sentMessage
		_ = json.NewDecoder(r.Body).Decode(&msg)
		f.mu.Lock()
		f.sends = append(f.sends, msg)
		f.mu.Unlock()
		_, _ = w.Write([]byte(`{"ok":true,"result":{}}`))
	})
	mux.HandleFunc("/bottest-token/getUpdates", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Offset int64 `json:"offset"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.mu.Lock()
		batch := make([]Update, 0, len(f.updates))
		for _, u := range f.updates {
			if u.UpdateID >= req.Offset {
				batch = append(batch, u)
			}
		}
		f.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "result": batch})
	})
	return mux
}

func (f *fakeTelegram) queueUpdates(updates ...Update) {
	f.mu.Lock()
	f.updates = append(f.updates, updates...)
	f.mu.Unlock()
}

func (f *fakeTelegram) sent() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage(nil), f.sends...)
}

// testEnv wires a fake Telegram server and a real relay API over httptest.
type testEnv struct {
	tg       *fakeTelegram
	client   *Client
	relay    *RelayClient
	dispatch *Dispatcher
	users    *store.UserStore
	links    *store.LinkStore
	notes    *store.NotificationStore
}

const testAPIKey = "bot-test-key"

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	conn, err := db.Open(filepath.Join(t.TempDir(), "bot_test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	users := store.NewUserStore(conn)
	links := store.NewLinkStore(conn)
	notes := store.NewNotificationStore(conn)

	router := chi.NewRouter()
	api.New(testAPIKey, users, links, notes).Register(router)
	apiSrv := httptest.NewServer(router)
	t.Cleanup(apiSrv.Close)

	tg := &fakeTelegram{}
	tgSrv := httptest.NewServer(tg.handler())
	t.Cleanup(tgSrv.Close)

	client := &Client{
		token:  "test-token",
		apiURL: tgSrv.URL + "/bottest-token",
		httpc:  &http.Client{Timeout: 5 * time.Second},
	}
	relay := NewRelayClient(apiSrv.URL, testAPIKey)

	return &testEnv{
		tg:       tg,
		client:   client,
		relay:    relay,
		dispatch: NewDispatcher(client, relay),
		users:    users,
		links:    links,
		notes:    notes,
	}
}

func (e *testEnv) message(chat int64, username, text string) *Update {
	return &Update{
		UpdateID: 1,
		Message: &Message{
			From: &User{ID: chat, Username: username},
			Chat: &Chat{ID: chat, Username: username},
			Text: text,
		},
	}
}

func (e *testEnv) registerUser(t *testing.T, login, email string) *models.User {
	t.Helper()
	u, err := e.users.Register(login, email, "secret123")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return u
}

func TestDispatcher_HelpReportsStatus(t *testing.T) {
	e := newTestEnv(t)
	u := e.registerUser(t, "ivan", "ivan@example.com")

	if err := e.dispatch.Handle(e.message(111, "ivan", "/start")); err != nil {
		t.Fatalf("handle /start: %v", err)
	}
	if _, err := e.links.Create(u, 111, "ivan"); err != nil {
		t.Fatalf("link: %v", err)
	}
	if err := e.dispatch.Handle(e.message(111, "ivan", "/help")); err != nil {
		t.Fatalf("handle /help: %v", err)
	}

	sends := e.tg.sent()
	if len(sends) != 2 {
		t.Fatalf("want 2 replies, got %d", len(sends))
	}
	if sends[0].Text != replyGreeting+"\n\n"+replyNotConnected {
		t.Errorf("unlinked greeting: got %q", sends[0].Text)
	}
	if sends[1].Text != replyGreeting+"\n\n"+replyConnected {
		t.Errorf("linked greeting: got %q", sends[1].Text)
	}
}

func TestDispatcher_LinkingFlow(t *testing.T) {
	e := newTestEnv(t)
	u := e.registerUser(t, "ivan", "ivan@example.com")

	// Malformed payload gets the format help, not an error.
	if err := e.dispatch.Handle(e.message(111, "ivan", "just one line")); err != nil {
		t.Fatalf("handle malformed: %v", err)
	}
	// Wrong code.
	if err := e.dispatch.Handle(e.message(111, "ivan", "ivan@example.com\n00000000")); err != nil {
		t.Fatalf("handle wrong code: %v", err)
	}
	// Correct payload links the account.
	if err := e.dispatch.Handle(e.message(111, "ivan", "ivan@example.com\n"+u.VerificationCode())); err != nil {
		t.Fatalf("handle link: %v", err)
	}
	// Once linked, further plain messages short-circuit.
	if err := e.dispatch.Handle(e.message(111, "ivan", "hello again")); err != nil {
		t.Fatalf("handle after link: %v", err)
	}

	want := []string{replyFormat, replyBadCreds, replyLinked, replyAlreadySet}
	sends := e.tg.sent()
	if len(sends) != len(want) {
		t.Fatalf("want %d replies, got %d: %+v", len(want), len(sends), sends)
	}
	for i, w := range want {
		if sends[i].Text != w {
			t.Errorf("reply %d: want %q, got %q", i, w, sends[i].Text)
		}
	}

	acct, err := e.links.FindByTelegramID(111)
	if err != nil {
		t.Fatalf("find link: %v", err)
	}
	if acct == nil || acct.UserID != u.ID || acct.Username != "ivan" {
		t.Errorf("link not created correctly: %+v", acct)
	}
}

func TestDispatcher_ConflictReplies(t *testing.T) {
	e := newTestEnv(t)
	ivan := e.registerUser(t, "ivan", "ivan@example.com")
	peter := e.registerUser(t, "peter", "peter@example.com")

	if _, err := e.links.Create(ivan, 111, "ivan"); err != nil {
		t.Fatalf("link ivan: %v", err)
	}

	// Ivan tries to link a second chat.
	if err := e.dispatch.Handle(e.message(222, "ivan2", "ivan@example.com\n"+ivan.VerificationCode())); err != nil {
		t.Fatalf("handle: %v", err)
	}
	// Peter tries to claim Ivan's chat id — short-circuited as already
	// connected because chat 111 is linked.
	if err := e.dispatch.Handle(e.message(111, "ivan", "peter@example.com\n"+peter.VerificationCode())); err != nil {
		t.Fatalf("handle: %v", err)
	}

	sends := e.tg.sent()
	if len(sends) != 2 {
		t.Fatalf("want 2 replies, got %d", len(sends))
	}
	if sends[0].Text != replyUserTaken {
		t.Errorf("second chat for ivan: want %q, got %q", replyUserTaken, sends[0].Text)
	}
	if sends[1].Text != replyAlreadySet {
		t.Errorf("linked chat: want %q, got %q", replyAlreadySet, sends[1].Text)
	}
}
