package model

type ChatMessage struct {
	ID            string `json:"id"`
	UserID        string `json:"user_id"`
	CharacterName string `json:"character_name"`
	Content       string `json:"content"`
	IsFromBot     bool   `json:"is_from_bot"`
	Ctime         int64  `json:"ctime"`
}
