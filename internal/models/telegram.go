package models

import "time"

// TelegramAccount links one Telegram account to one guidebook user. Both
// directions are exclusive: the unique indexes on TelegramUserID and UserID
// are the authoritative guard against two concurrent link attempts claiming
// the same side.
type TelegramAccount struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	TelegramUserID int64  `gorm:"uniqueIndex;not null"`
	Username       string

	UserID uint `gorm:"uniqueIndex;not null"`
	User   User
}
