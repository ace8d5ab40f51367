package models

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// User is a registered guidebook account. The relay only ever reads ID, Email
// and the verification code derived from Email.
type User struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Login        string `gorm:"uniqueIndex;not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string
}

// VerificationCode derives the short code shown on the profile page from an
// email address: the first 8 uppercase hex digits of sha256(email). The email
// is hashed as-is (no case folding), so the code changes with the email's
// exact spelling. This is a low-stakes proof of access for linking a chat
// account, not a cryptographic secret: it never expires and rotates only when
// the email changes.
func VerificationCode(email string) string {
	sum := sha256.Sum256([]byte(email))
	return strings.ToUpper(hex.EncodeToString(sum[:])[:8])
}

// VerificationCode returns the linking code for this user's current email.
func (u *User) VerificationCode() string {
	return VerificationCode(u.Email)
}

// VerificationCodeValid reports whether code matches the user's current email.
func (u *User) VerificationCodeValid(code string) bool {
	return code == u.VerificationCode()
}

// Notification is one outbound message queued for a user. Rows are immutable
// except for the one-way Delivered transition and are never deleted; the
// delivered ones double as an audit trail.
type Notification struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Text string  `gorm:"not null"`
	Link *string // site-relative URL, resolved against BASE_URL at send time

	UserID uint `gorm:"index;not null"`
	User   User

	Delivered bool `gorm:"not null;default:false;index"`
}
