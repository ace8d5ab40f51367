package store

import (
	"errors"

	"gorm.io/gorm"

	"github.com/eguide/guidebook/internal/models"
)

// NotificationStore persists the outbound notification queue.
type NotificationStore struct {
	db *gorm.DB
}

func NewNotificationStore(db *gorm.DB) *NotificationStore {
	return &NotificationStore{db: db}
}

// Enqueue appends a new pending notification for userID. Text is stored as
// given and link is an opaque site-relative URL; neither is validated here.
// Identical payloads are deliberately not deduplicated.
func (s *NotificationStore) Enqueue(userID uint, text string, link *string) (*models.Notification, error) {
	n := &models.Notification{
		Text:   text,
		Link:   link,
		UserID: userID,
	}
	if err := s.db.Create(n).Error; err != nil {
		return nil, err
	}
	return n, nil
}

// Pending returns every undelivered notification, oldest first. Notifications
// whose user has no Telegram link are included; skipping those is the
// delivery side's concern, not the store's.
func (s *NotificationStore) Pending() ([]models.Notification, error) {
	var out []models.Notification
	err := s.db.Where("NOT delivered").Order("id").Find(&out).Error
	return out, err
}

// FindByID returns the notification with the given id, or nil if none exists.
func (s *NotificationStore) FindByID(id uint) (*models.Notification, error) {
	var n models.Notification
	err := s.db.First(&n, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// MarkDelivered flips the one-way delivered flag. Marking an already
// delivered notification again is a harmless no-op.
func (s *NotificationStore) MarkDelivered(n *models.Notification) error {
	return s.db.Model(&models.Notification{}).
		Where("id = ?", n.ID).
		Update("delivered", true).Error
}
