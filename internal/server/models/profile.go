package models

// Profile is a one-to-one extension of User with display and contact
// fields. It is upserted: created on first save, updated thereafter.
type Profile struct {
	UserID       int64
	Name         string
	Birthday     string
	BloodType    string
	Team         string
	TeamRole     string
	Phone        string
	Email        string
	ContactName  string
	ContactPhone string
	UpdatedAt    string
}
