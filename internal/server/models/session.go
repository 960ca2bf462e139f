package models

import "time"

// Session is a server-side login session resolved from an opaque cookie
// token. Expired sessions are deleted on sight.
type Session struct {
	Token     string
	UserID    int64
	CreatedAt string
	Expires   time.Time
}
