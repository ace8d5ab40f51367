// Package handlers serves the platform's own pages: registration, login, the
// profile with the verification code and Telegram link controls.
package handlers

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/eguide/guidebook/internal/models"
	"github.com/eguide/guidebook/internal/store"
)

type pageData struct {
	Title    string
	Errors   []string
	Login    string
	Email    string
	User     *models.User
	Telegram *models.TelegramAccount
	Code     string
}

func render(w http.ResponseWriter, name string, data pageData) {
	if err := tmpl.ExecuteTemplate(w, name, data); err != nil {
		log.Error().Err(err).Str("template", name).Msg("render failed")
	}
}

// RequireUser redirects to /login unless the session cookie names a real
// user. Handlers re-resolve the user themselves; the lookup is cheap.
func RequireUser(users *store.UserStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u := sessionUser(r, users)
			if u == nil {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func sessionUser(r *http.Request, users *store.UserStore) *models.User {
	id, ok := readSessionCookie(r)
	if !ok {
		return nil
	}
	u, err := users.FindByID(id)
	if err != nil {
		log.Error().Err(err).Msg("session user lookup failed")
		return nil
	}
	return u
}

func RegisterForm() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render(w, "register", pageData{Title: "Registration"})
	}
}

func RegisterSubmit(users *store.UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		login := r.FormValue("login")
		email := r.FormValue("email")
		password := r.FormValue("password")
		if login == "" || email == "" || password == "" {
			render(w, "register", pageData{Title: "Registration", Login: login, Email: email,
				Errors: []string{"All fields are required."}})
			return
		}
		u, err := users.Register(login, email, password)
		if errors.Is(err, store.ErrAlreadyRegistered) {
			render(w, "register", pageData{Title: "Registration", Login: login, Email: email,
				Errors: []string{"A user with this login or email is already registered."}})
			return
		}
		if err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		log.Debug().Str("login", login).Msg("user registered")
		setSessionCookie(w, u.ID)
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

func LoginForm() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render(w, "login", pageData{Title: "Log in"})
	}
}

func LoginSubmit(users *store.UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := r.FormValue("email")
		u, err := users.Authenticate(email, r.FormValue("password"))
		if err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		if u == nil {
			render(w, "login", pageData{Title: "Log in", Email: email,
				Errors: []string{"Wrong email or password!"}})
			return
		}
		log.Debug().Str("login", u.Login).Msg("user logged in")
		setSessionCookie(w, u.ID)
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

func Logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clearSessionCookie(w)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	}
}

// Profile shows the verification code for linking plus the current Telegram
// connection, if any.
func Profile(users *store.UserStore, links *store.LinkStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u := sessionUser(r, users)
		if u == nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		acct, err := links.FindByUser(u.ID)
		if err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		render(w, "profile", pageData{
			Title:    "My page",
			User:     u,
			Telegram: acct,
			Code:     u.VerificationCode(),
		})
	}
}

// DisconnectTelegram unlinks the current user's Telegram account. Idempotent:
// visiting it with no link just redirects back.
func DisconnectTelegram(users *store.UserStore, links *store.LinkStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u := sessionUser(r, users)
		if u == nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		acct, err := links.FindByUser(u.ID)
		if err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		if acct != nil {
			if err := links.Remove(u.ID, acct); err != nil {
				http.Error(w, "db error", http.StatusInternalServerError)
				return
			}
			log.Debug().Str("login", u.Login).Int64("telegram", acct.TelegramUserID).Msg("telegram disconnected")
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

func Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
