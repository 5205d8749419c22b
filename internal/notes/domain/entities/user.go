package entities

import "time"

// User представляет пользователя системы.
// PasswordHash никогда не сериализуется в ответы.
type User struct {
	ID           string    `json:"_id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Roles        []string  `json:"roles"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

// NewUser создает активного пользователя с уже захэшированным паролем.
func NewUser(username, passwordHash string, roles []string) *User {
	now := time.Now().UTC()
	return &User{
		Username:     username,
		PasswordHash: passwordHash,
		Roles:        append([]string(nil), roles...),
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
