// Package services содержит реализации вспомогательных сервисов.
package services

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"technotes/internal/notes/domain/entities"
	svc "technotes/internal/notes/ports/services"
)

const (
	errMsgFailedToGenerateHash = "failed to generate password hash"
	errMsgErrorComparingHash   = "error comparing password with hash"
	errMsgPasswordRequired     = "password is required"
	errMsgPasswordTooLong      = "password exceeds 72 bytes"
)

// MinCost - минимально допустимая стоимость хэширования.
const MinCost = bcrypt.DefaultCost

// ServiceBcrypt реализует интерфейс PasswordService.
type ServiceBcrypt struct {
	cost int
}

// NewBcrypt создает сервис bcrypt. Стоимость ниже MinCost поднимается до MinCost.
func NewBcrypt(cost int) svc.PasswordService {
	if cost < MinCost {
		cost = MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &ServiceBcrypt{cost: cost}
}

// Hash хэширует пароль с помощью bcrypt.
func (s *ServiceBcrypt) Hash(_ context.Context, password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("%s: %w", errMsgPasswordRequired, entities.ErrValidation)
	}

	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", fmt.Errorf("%s: %w", errMsgPasswordTooLong, entities.ErrValidation)
		}
		return "", fmt.Errorf("%s: %w", errMsgFailedToGenerateHash, err)
	}

	return string(hashedBytes), nil
}

// Verify проверяет соответствие пароля хэшу.
func (s *ServiceBcrypt) Verify(_ context.Context, password, hash string) (bool, error) {
	if password == "" || hash == "" {
		return false, fmt.Errorf("%s: %w", errMsgPasswordRequired, entities.ErrValidation)
	}

	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, fmt.Errorf("%s: %w", errMsgErrorComparingHash, err)
	}

	return true, nil
}
