package xp

import (
	"context"

	"github.com/momentum-hub/momentum-tracker/internal/domain/shared"
)

// Repository определяет порт хранилища состояний XP.
type Repository interface {
	// Get возвращает состояние XP пользователя.
	// Возвращает shared.ErrRecordNotFound, если строки нет; вызывающая
	// сторона трактует это как нулевое состояние (NewState).
	Get(ctx context.Context, userID shared.UserID) (State, error)

	// Save сохраняет состояние XP (upsert по пользователю).
	Save(ctx context.Context, state State) error

	// ListAll возвращает состояния всех пользователей.
	// Нужно пересборке лидерборда.
	ListAll(ctx context.Context) ([]State, error)
}
