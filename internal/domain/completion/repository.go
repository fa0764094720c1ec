package completion

import (
	"context"

	"github.com/momentum-hub/momentum-tracker/internal/domain/shared"
	"github.com/momentum-hub/momentum-tracker/pkg/timeutil"
)

// Repository определяет порт хранилища ежедневных записей выполнения.
type Repository interface {
	// GetByDay возвращает запись пользователя за конкретный день.
	// Возвращает shared.ErrRecordNotFound, если записи нет.
	GetByDay(ctx context.Context, userID shared.UserID, day timeutil.DayIndex) (*DailyCompletionRecord, error)

	// ListByUser возвращает записи пользователя за диапазон дней
	// [from, to] включительно, отсортированные по дню по возрастанию.
	ListByUser(ctx context.Context, userID shared.UserID, from, to timeutil.DayIndex) ([]*DailyCompletionRecord, error)

	// ListAllByUser возвращает все записи пользователя, отсортированные
	// по дню по возрастанию. Вход для пересчёта XP.
	ListAllByUser(ctx context.Context, userID shared.UserID) ([]*DailyCompletionRecord, error)

	// Save сохраняет запись (upsert по паре пользователь+день).
	Save(ctx context.Context, record *DailyCompletionRecord) error
}
