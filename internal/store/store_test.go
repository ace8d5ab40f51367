package store_test

import (
	"path/filepath"
	"testing"

	"github.com/eguide/guidebook/internal/db"
	"github.com/eguide/guidebook/internal/models"
	"github.com/eguide/guidebook/internal/store"
)

func openStores(t *testing.T) (*store.UserStore, *store.LinkStore, *store.NotificationStore) {
	t.Helper()
	conn, err := db.Open(filepath.Join(t.TempDir(), "store_test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	return store.NewUserStore(conn), store.NewLinkStore(conn), store.NewNotificationStore(conn)
}

func registerUser(t *testing.T, users *store.UserStore, login, email string) *models.User {
	t.Helper()
	u, err := users.Register(login, email, "secret123")
	if err != nil {
		t.Fatalf("register %s: %v", login, err)
	}
	return u
}
