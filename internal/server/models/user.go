// Package models defines server-side data models persisted in the database.
package models

// User is the identity anchor for authorization. Deactivation is soft:
// IsActive is flipped, the row is never deleted.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	IsAdmin      bool
	IsActive     bool
	CreatedAt    string
}
