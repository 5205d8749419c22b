// Package dto содержит тела HTTP-запросов и ответов.
package dto

// CreateNoteRequest содержит данные для создания заметки.
type CreateNoteRequest struct {
	User  string `json:"user"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

// UpdateNoteRequest содержит данные для обновления заметки.
// Completed - указатель, чтобы отличить отсутствующее поле от false.
type UpdateNoteRequest struct {
	ID        string `json:"id"`
	User      string `json:"user"`
	Title     string `json:"title"`
	Text      string `json:"text"`
	Completed *bool  `json:"completed"`
}

// DeleteRequest содержит идентификатор удаляемой сущности.
type DeleteRequest struct {
	ID string `json:"id"`
}

// CreateUserRequest содержит данные для создания пользователя.
type CreateUserRequest struct {
	Username string   `json:"username"`
	Password string   `json:"password"`
	Roles    []string `json:"roles"`
}

// UpdateUserRequest содержит данные для обновления пользователя.
type UpdateUserRequest struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
	Active   *bool    `json:"active"`
	Password string   `json:"password"`
}

// MessageResponse - тело ответа с сообщением.
type MessageResponse struct {
	Message string `json:"message"`
}
