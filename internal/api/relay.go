// Package api implements the relay boundary between the web platform and the
// Telegram bot process: link-status lookup, link creation, the pending
// notification feed and delivery acknowledgment. Every request must carry the
// shared secret; the boundary is meant for two operator-controlled processes
// on a trusted transport, not for the public internet, which is why a static
// key rather than per-request signing is acceptable here.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/eguide/guidebook/internal/store"
)

// Relay serves the secret-keyed HTTP boundary.
type Relay struct {
	key           string
	users         *store.UserStore
	links         *store.LinkStore
	notifications *store.NotificationStore
}

func New(key string, users *store.UserStore, links *store.LinkStore, notifications *store.NotificationStore) *Relay {
	return &Relay{key: key, users: users, links: links, notifications: notifications}
}

// Register mounts the relay endpoints on r behind the secret-key check.
func (a *Relay) Register(r chi.Router) {
	r.Group(func(gr chi.Router) {
		gr.Use(a.requireSecret)
		gr.Get("/telegram-account/{id}", a.accountStatus)
		gr.Post("/telegram-account/{id}", a.connectAccount)
		gr.Get("/pending-notifications", a.pendingNotifications)
		gr.Post("/pending-notifications/{id}/delivered", a.markDelivered)
	})
}

// requireSecret rejects any request whose secret-key (query string or form
// body) does not match the configured key, before endpoint logic runs.
func (a *Relay) requireSecret(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.FormValue("secret-key") != a.key {
			writeJSON(w, http.StatusForbidden, failure{Message: "missing-secret-key"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

type failure struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type statusResponse struct {
	Success   bool  `json:"success"`
	Connected bool  `json:"connected"`
	UserID    *uint `json:"user_id"`
}

type connectRequest struct {
	Email    string `json:"user-email"`
	Code     string `json:"verification-code"`
	Username string `json:"account-username"`
}

type notificationJSON struct {
	ID     uint    `json:"id"`
	Text   string  `json:"text"`
	Link   *string `json:"link"`
	UserID uint    `json:"user-id"`
}

type accountJSON struct {
	ID         uint   `json:"id"`
	TelegramID int64  `json:"telegram-id"`
	Username   string `json:"username"`
	UserID     uint   `json:"user-id"`
}

type pendingEntry struct {
	Notification notificationJSON `json:"notification"`
	Account      accountJSON      `json:"account"`
}

type pendingResponse struct {
	Success       bool           `json:"success"`
	Notifications []pendingEntry `json:"notifications"`
}

// GET /telegram-account/{id} — absence of a link is a normal, successful
// answer, never an error.
func (a *Relay) accountStatus(w http.ResponseWriter, r *http.Request) {
	telegramID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	acct, err := a.links.FindByTelegramID(telegramID)
	if err != nil {
		a.internalError(w, err)
		return
	}
	resp := statusResponse{Success: true}
	if acct != nil {
		resp.Connected = true
		resp.UserID = &acct.UserID
	}
	writeJSON(w, http.StatusOK, resp)
}

// POST /telegram-account/{id} — validates email and verification code, then
// creates the link, mapping store conflicts to their wire messages.
func (a *Relay) connectAccount(w http.ResponseWriter, r *http.Request) {
	telegramID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	var req connectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, failure{Message: "bad-request"})
		return
	}

	user, err := a.users.FindByEmail(req.Email)
	if err != nil {
		a.internalError(w, err)
		return
	}
	if user == nil {
		writeJSON(w, http.StatusOK, failure{Message: "no-user-with-email"})
		return
	}
	if !user.VerificationCodeValid(req.Code) {
		writeJSON(w, http.StatusOK, failure{Message: "wrong-verification-code"})
		return
	}

	_, err = a.links.Create(user, telegramID, req.Username)
	switch {
	case errors.Is(err, store.ErrUserAlreadyLinked):
		writeJSON(w, http.StatusOK, failure{Message: "user-already-connected"})
	case errors.Is(err, store.ErrTelegramTaken):
		writeJSON(w, http.StatusOK, failure{Message: "telegram-already-connected"})
	case err != nil:
		a.internalError(w, err)
	default:
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}

// GET /pending-notifications — joins each pending notification with its
// owner's link; entries whose owner is unlinked are silently omitted and stay
// pending until a link appears.
func (a *Relay) pendingNotifications(w http.ResponseWriter, r *http.Request) {
	pending, err := a.notifications.Pending()
	if err != nil {
		a.internalError(w, err)
		return
	}
	entries := make([]pendingEntry, 0, len(pending))
	for _, n := range pending {
		acct, err := a.links.FindByUser(n.UserID)
		if err != nil {
			a.internalError(w, err)
			return
		}
		if acct == nil {
			continue
		}
		entries = append(entries, pendingEntry{
			Notification: notificationJSON{ID: n.ID, Text: n.Text, Link: n.Link, UserID: n.UserID},
			Account:      accountJSON{ID: acct.ID, TelegramID: acct.TelegramUserID, Username: acct.Username, UserID: acct.UserID},
		})
	}
	writeJSON(w, http.StatusOK, pendingResponse{Success: true, Notifications: entries})
}

// POST /pending-notifications/{id}/delivered — idempotent; an unknown id is a
// soft failure so a stale retry from the bot never breaks its loop.
func (a *Relay) markDelivered(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	n, err := a.notifications.FindByID(uint(id))
	if err != nil {
		a.internalError(w, err)
		return
	}
	if n == nil {
		writeJSON(w, http.StatusOK, failure{Message: "no-notification-with-id"})
		return
	}
	if err := a.notifications.MarkDelivered(n); err != nil {
		a.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (a *Relay) internalError(w http.ResponseWriter, err error) {
	log.Error().Err(err).Msg("relay api: storage failure")
	writeJSON(w, http.StatusInternalServerError, failure{Message: "internal-error"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
