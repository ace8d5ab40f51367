package handlers

import (
	"net/http"
	"strconv"
	"time"
)

const sessionCookie = "guidebook_uid"

func setSessionCookie(w http.ResponseWriter, userID uint) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    strconv.FormatUint(uint64(userID), 10),
		Path:     "/",
		HttpOnly: true,
		MaxAge:   30 * 24 * 3600,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:    sessionCookie,
		Value:   "",
		Path:    "/",
		Expires: time.Unix(0, 0),
		MaxAge:  -1,
	})
}

func readSessionCookie(r *http.Request) (uint, bool) {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return 0, false
	}
	id, err := strconv.ParseUint(c.Value, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
