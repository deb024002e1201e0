package model

type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	// SecurityStamp changes whenever the credentials change; tokens and
	// sessions minted under an old stamp are rejected.
	SecurityStamp string `json:"-"`
	Ctime         int64  `json:"ctime"`
	Mtime         int64  `json:"mtime"`
}
