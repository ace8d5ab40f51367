// Package store implements the persistence layer for users, telegram links
// and the notification queue. Domain conflicts are reported as the sentinel
// errors below; the HTTP layer maps each one to its wire message.
package store

import "errors"

var (
	// ErrAlreadyRegistered is returned when a registration reuses a login or
	// email that another user already holds.
	ErrAlreadyRegistered = errors.New("login or email already registered")

	// ErrUserAlreadyLinked is returned when a user who already has a linked
	// Telegram account tries to link another one. Relinking requires an
	// explicit unlink first; an existing link is never overwritten.
	ErrUserAlreadyLinked = errors.New("user already has a linked telegram account")

	// ErrTelegramTaken is returned when the Telegram account is already
	// linked to a different user.
	ErrTelegramTaken = errors.New("telegram account already linked to another user")
)
