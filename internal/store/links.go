package store

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/eguide/guidebook/internal/models"
)

// LinkStore persists the 1:1 correspondence between guidebook users and
// Telegram accounts.
type LinkStore struct {
	db *gorm.DB
}

func NewLinkStore(db *gorm.DB) *LinkStore {
	return &LinkStore{db: db}
}

// Create links telegramID to user. It fails with ErrUserAlreadyLinked if the
// user already has a link and with ErrTelegramTaken if the Telegram account
// belongs to a different user. The pre-check gives the common case a clear
// answer; the unique indexes settle any race between concurrent attempts.
func (s *LinkStore) Create(user *models.User, telegramID int64, username string) (*models.TelegramAccount, error) {
	existing, err := s.FindByUser(user.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUserAlreadyLinked
	}

	acct := &models.TelegramAccount{
		TelegramUserID: telegramID,
		Username:       username,
		UserID:         user.ID,
	}
	if err := s.db.Create(acct).Error; err != nil {
		msg := strings.ToLower(err.Error())
		switch {
		case strings.Contains(msg, "telegram_user_id"):
			return nil, ErrTelegramTaken
		case strings.Contains(msg, "user_id"):
			return nil, ErrUserAlreadyLinked
		}
		return nil, err
	}
	return acct, nil
}

// Remove deletes the link, scoped by the owning user so a caller can never
// unlink somebody else's account. Removing an absent link is a no-op.
func (s *LinkStore) Remove(userID uint, acct *models.TelegramAccount) error {
	return s.db.
		Where("id = ? AND user_id = ?", acct.ID, userID).
		Delete(&models.TelegramAccount{}).Error
}

// FindByUser returns the link owned by userID, or nil if the user has none.
func (s *LinkStore) FindByUser(userID uint) (*models.TelegramAccount, error) {
	var acct models.TelegramAccount
	err := s.db.Where("user_id = ?", userID).First(&acct).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &acct, nil
}

// FindByTelegramID returns the link for a Telegram account, or nil if that
// account is not linked to anyone.
func (s *LinkStore) FindByTelegramID(telegramID int64) (*models.TelegramAccount, error) {
	var acct models.TelegramAccount
	err := s.db.Where("telegram_user_id = ?", telegramID).First(&acct).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &acct, nil
}
