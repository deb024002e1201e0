package model

// ResetChallenge is one in-flight password-reset attempt. It lives in the
// caller's server-side session, never in the database: a browser session
// holds at most one challenge and a new issuance overwrites the old one.
type ResetChallenge struct {
	Email    string `json:"email"`
	Code     string `json:"code"`
	IssuedAt int64  `json:"issued_at"`
	// Verified flips once the submitted code matched; only a verified
	// challenge authorizes the actual password update.
	Verified bool `json:"verified"`
}
