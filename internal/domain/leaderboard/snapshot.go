package leaderboard

import (
	"fmt"
	"time"

	"github.com/momentum-hub/momentum-tracker/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// SNAPSHOT
// Срез лидерборда в определённый момент времени. Нужен для вычисления
// RankChange между перестроениями и для быстрого чтения.
// ══════════════════════════════════════════════════════════════════════════════

// Snapshot представляет состояние лидерборда в определённый момент времени.
type Snapshot struct {
	// ID - уникальный идентификатор снапшота.
	ID string

	// SnapshotAt - время создания снапшота.
	SnapshotAt time.Time

	// TotalUsers - количество участников.
	TotalUsers int

	// AverageScore - средняя оценка дисциплины.
	AverageScore shared.Score

	// Entries - записи лидерборда, отсортированные по рангу.
	Entries []*Entry

	// byID - индекс для быстрого поиска по ID.
	byID map[shared.UserID]*Entry
}

// NewSnapshot создаёт снапшот из отранжированного Ranking.
func NewSnapshot(id string, ranking *Ranking) *Snapshot {
	if ranking == nil {
		return NewEmptySnapshot(id)
	}

	entries := ranking.All()
	byID := make(map[shared.UserID]*Entry, len(entries))
	for _, entry := range entries {
		byID[entry.UserID] = entry
	}

	return &Snapshot{
		ID:           id,
		SnapshotAt:   time.Now().UTC(),
		TotalUsers:   len(entries),
		AverageScore: ranking.AverageScore(),
		Entries:      entries,
		byID:         byID,
	}
}

// NewEmptySnapshot создаёт пустой снапшот.
func NewEmptySnapshot(id string) *Snapshot {
	return &Snapshot{
		ID:         id,
		SnapshotAt: time.Now().UTC(),
		Entries:    make([]*Entry, 0),
		byID:       make(map[shared.UserID]*Entry),
	}
}

// GetByID возвращает запись по ID пользователя.
func (s *Snapshot) GetByID(userID shared.UserID) *Entry {
	if s.byID == nil {
		return nil
	}
	return s.byID[userID]
}

// GetRank возвращает ранг пользователя. 0, если пользователь не найден.
func (s *Snapshot) GetRank(userID shared.UserID) Rank {
	entry := s.GetByID(userID)
	if entry == nil {
		return 0
	}
	return entry.Rank
}

// Top возвращает топ-N записей.
func (s *Snapshot) Top(n int) []*Entry {
	if n <= 0 {
		return nil
	}
	if n > len(s.Entries) {
		n = len(s.Entries)
	}
	result := make([]*Entry, n)
	copy(result, s.Entries[:n])
	return result
}

// Page возвращает страницу лидерборда. page начинается с 1.
func (s *Snapshot) Page(page, pageSize int) []*Entry {
	if page < 1 || pageSize <= 0 {
		return nil
	}

	from := (page - 1) * pageSize
	to := from + pageSize
	if from >= len(s.Entries) {
		return nil
	}
	if to > len(s.Entries) {
		to = len(s.Entries)
	}

	result := make([]*Entry, to-from)
	copy(result, s.Entries[from:to])
	return result
}

// IsEmpty возвращает true, если снапшот пуст.
func (s *Snapshot) IsEmpty() bool {
	return len(s.Entries) == 0
}

// Count возвращает количество записей.
func (s *Snapshot) Count() int {
	return len(s.Entries)
}

// Contains проверяет, есть ли пользователь в снапшоте.
func (s *Snapshot) Contains(userID shared.UserID) bool {
	return s.GetByID(userID) != nil
}

// RebuildIndex перестраивает внутренний индекс byID.
// Используется после десериализации из БД.
func (s *Snapshot) RebuildIndex() {
	s.byID = make(map[shared.UserID]*Entry, len(s.Entries))
	for _, entry := range s.Entries {
		s.byID[entry.UserID] = entry
	}
}

// String возвращает строковое представление для логирования.
func (s *Snapshot) String() string {
	return fmt.Sprintf(
		"Snapshot{ID: %s, Users: %d, AvgScore: %s, At: %s}",
		s.ID, s.TotalUsers, s.AverageScore, s.SnapshotAt.Format(time.RFC3339),
	)
}

// ══════════════════════════════════════════════════════════════════════════════
// SNAPSHOT DIFF
// ══════════════════════════════════════════════════════════════════════════════

// Diff представляет различия между двумя снапшотами.
type Diff struct {
	// RankChanges - изменения рангов (userID -> RankChange).
	RankChanges map[shared.UserID]RankChange

	// NewEntries - участники, которых не было в старом снапшоте.
	NewEntries []*Entry

	// RemovedEntries - участники, пропавшие из нового снапшота.
	RemovedEntries []*Entry
}

// CalculateDiff вычисляет разницу между двумя снапшотами и проставляет
// RankChange в записях нового. oldSnapshot может быть nil (первый снапшот).
// Подъём с 10-го места на 5-е даёт +5.
func CalculateDiff(oldSnapshot, newSnapshot *Snapshot) *Diff {
	diff := &Diff{
		RankChanges:    make(map[shared.UserID]RankChange),
		NewEntries:     make([]*Entry, 0),
		RemovedEntries: make([]*Entry, 0),
	}

	if newSnapshot == nil {
		return diff
	}

	if oldSnapshot == nil || oldSnapshot.IsEmpty() {
		for _, entry := range newSnapshot.Entries {
			entry.RankChange = 0
			diff.NewEntries = append(diff.NewEntries, entry)
		}
		return diff
	}

	for _, newEntry := range newSnapshot.Entries {
		oldEntry := oldSnapshot.GetByID(newEntry.UserID)
		if oldEntry == nil {
			newEntry.RankChange = 0
			diff.NewEntries = append(diff.NewEntries, newEntry)
			continue
		}

		change := RankChange(int(oldEntry.Rank) - int(newEntry.Rank))
		newEntry.RankChange = change
		diff.RankChanges[newEntry.UserID] = change
	}

	for _, oldEntry := range oldSnapshot.Entries {
		if !newSnapshot.Contains(oldEntry.UserID) {
			diff.RemovedEntries = append(diff.RemovedEntries, oldEntry)
		}
	}

	return diff
}

// GetRankChange возвращает изменение ранга пользователя.
func (d *Diff) GetRankChange(userID shared.UserID) RankChange {
	return d.RankChanges[userID]
}

// HasChanges возвращает true, если есть какие-либо изменения.
func (d *Diff) HasChanges() bool {
	return len(d.RankChanges) > 0 || len(d.NewEntries) > 0 || len(d.RemovedEntries) > 0
}

// SignificantChanges возвращает пользователей с изменением ранга >= threshold.
func (d *Diff) SignificantChanges(threshold int) []shared.UserID {
	result := make([]shared.UserID, 0)
	for userID, change := range d.RankChanges {
		if change.IsSignificant(threshold) {
			result = append(result, userID)
		}
	}
	return result
}
