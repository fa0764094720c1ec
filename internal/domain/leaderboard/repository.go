package leaderboard

import (
	"context"
)

// SnapshotRepository определяет порт хранилища снапшотов лидерборда.
type SnapshotRepository interface {
	// SaveSnapshot сохраняет снапшот.
	SaveSnapshot(ctx context.Context, snapshot *Snapshot) error

	// GetLatestSnapshot возвращает последний сохранённый снапшот.
	// Возвращает shared.ErrSnapshotNotFound, если снапшотов ещё нет.
	GetLatestSnapshot(ctx context.Context) (*Snapshot, error)

	// DeleteOlderThan удаляет снапшоты старше keep последних.
	// Возвращает количество удалённых.
	DeleteOlderThan(ctx context.Context, keep int) (int, error)
}

// Cache определяет порт быстрого кэша лидерборда (Redis sorted set).
// Кэш - ускоритель чтения, не источник истины; промах деградирует
// в пересчёт из основного хранилища.
type Cache interface {
	// SetRanking записывает отранжированный список в кэш.
	SetRanking(ctx context.Context, ranking *Ranking) error

	// GetTop возвращает топ-N записей из кэша.
	// n <= 0 возвращает весь кэшированный рейтинг.
	GetTop(ctx context.Context, n int) ([]*Entry, error)

	// GetUserRank возвращает ранг пользователя из кэша.
	// Возвращает 0, если пользователя в кэше нет.
	GetUserRank(ctx context.Context, userID string) (Rank, error)

	// Invalidate сбрасывает кэш.
	Invalidate(ctx context.Context) error
}
