package domain

import "time"

// Profile is an operator account.
type Profile struct {
	ID           string
	Email        string
	FullName     *string
	AvatarURL    *string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
