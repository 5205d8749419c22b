// Package entities определяет доменные сущности сервиса заметок.
package entities

import "time"

// Note представляет заметку, закрепленную за пользователем.
type Note struct {
	ID        string    `json:"_id"`
	UserID    string    `json:"user"`
	Title     string    `json:"title"`
	Text      string    `json:"text"`
	Completed *bool     `json:"completed,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewNote создает заметку без признака выполнения.
func NewNote(userID, title, text string) *Note {
	now := time.Now().UTC()
	return &Note{
		UserID:    userID,
		Title:     title,
		Text:      text,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NoteWithUsername - заметка с именем владельца для выдачи списка.
type NoteWithUsername struct {
	*Note
	Username string `json:"username"`
}
