package domain

import "time"

// User is the single account this system serves. There is no
// multi-user isolation model; the row exists to hold credentials and
// UI preferences.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Email        *string   `json:"email"`
	FullName     *string   `json:"full_name"`
	Language     string    `json:"language"`
	Theme        string    `json:"theme"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
