package goal

import (
	"context"

	"github.com/momentum-hub/momentum-tracker/internal/domain/shared"
)

// Repository определяет порт хранилища целей и категорий.
// Реализация живёт в infrastructure/persistence; домен знает только контракт.
type Repository interface {
	// GetByID возвращает цель с задачами по идентификатору.
	// Возвращает shared.ErrGoalNotFound, если цели нет.
	GetByID(ctx context.Context, id string) (*Goal, error)

	// ListByUser возвращает все цели пользователя с задачами.
	// Пустой результат - не ошибка.
	ListByUser(ctx context.Context, userID shared.UserID) ([]*Goal, error)

	// Save сохраняет цель вместе с задачами (upsert).
	Save(ctx context.Context, g *Goal) error

	// ListCategories возвращает все категории.
	ListCategories(ctx context.Context) ([]*Category, error)

	// ListUserIDs возвращает идентификаторы всех пользователей,
	// у которых есть хотя бы одна цель. Нужно фоновым задачам.
	ListUserIDs(ctx context.Context) ([]shared.UserID, error)
}
