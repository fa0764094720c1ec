package streak

import (
	"context"

	"github.com/momentum-hub/momentum-tracker/internal/domain/shared"
)

// Repository определяет порт хранилища состояний серии.
type Repository interface {
	// Get возвращает состояние серии пользователя.
	// Возвращает shared.ErrStreakNotFound, если строки нет; вызывающая
	// сторона трактует это как свежее нулевое состояние (NewState).
	Get(ctx context.Context, userID shared.UserID) (State, error)

	// Save сохраняет состояние серии (upsert по пользователю).
	Save(ctx context.Context, state State) error

	// ListAll возвращает состояния всех пользователей.
	// Нужно недельному пополнению заморозок и закрытию дня.
	ListAll(ctx context.Context) ([]State, error)
}
