// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is an account identity. PasswordHash and AnswerHash are encoded
// argon2id values (salt:hash); the plaintext secrets are never persisted.
type User struct {
	ID               string
	Name             string
	Username         string
	Email            string
	PasswordHash     string
	SecurityQuestion string
	AnswerHash       string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
