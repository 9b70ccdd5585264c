package domain

import "time"

// Session is the client-held tuple carried in transport cookies.
// ExpiresAt is only a hint; Claims.ExpiresAt is authoritative.
type Session struct {
	Subject    string
	Token      string
	Permission Permission
	ExpiresAt  time.Time
}

// Claims is the decoded payload of a signed session token.
type Claims struct {
	Subject    string
	Permission Permission
	ExpiresAt  time.Time
}

// ExpiredAt reports whether the claims are no longer valid at t.
func (c Claims) ExpiredAt(t time.Time) bool {
	return t.After(c.ExpiresAt)
}
