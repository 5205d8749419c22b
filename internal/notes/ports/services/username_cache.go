package services

import "context"

// UsernameCache кэширует соответствие id пользователя и его имени.
type UsernameCache interface {
	// GetMany возвращает найденные имена; отсутствующие id в результат не попадают.
	GetMany(ctx context.Context, ids []string) (map[string]string, error)

	// SetMany добавляет только отсутствующие ключи и не перезаписывает уже закэшированные имена.
	SetMany(ctx context.Context, usernames map[string]string) error

	// Set безусловно записывает актуальное имя пользователя.
	Set(ctx context.Context, id, username string) error

	Invalidate(ctx context.Context, id string) error
}
