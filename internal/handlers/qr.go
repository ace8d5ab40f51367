package handlers

import (
	"net/http"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/eguide/guidebook/internal/store"
)

// LinkingQR renders the two-line linking payload (email, then verification
// code) as a PNG, so it can be scanned instead of typed into the chat.
func LinkingQR(users *store.UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u := sessionUser(r, users)
		if u == nil {
			http.NotFound(w, r)
			return
		}

		payload := u.Email + "\n" + u.VerificationCode()
		png, err := qrcode.Encode(payload, qrcode.Medium, 256)
		if err != nil {
			http.Error(w, "failed to generate qr", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(png)
	}
}
