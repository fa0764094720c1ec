package leaderboard

import (
	"sort"

	"github.com/momentum-hub/momentum-tracker/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// RANKING
// ══════════════════════════════════════════════════════════════════════════════

// Ranking представляет полный отсортированный список пользователей.
type Ranking struct {
	entries []*Entry
	byID    map[shared.UserID]*Entry
}

// NewRanking создаёт пустой Ranking.
func NewRanking() *Ranking {
	return &Ranking{
		entries: make([]*Entry, 0),
		byID:    make(map[shared.UserID]*Entry),
	}
}

// Add добавляет запись в рейтинг (без автоматической сортировки).
func (r *Ranking) Add(entry *Entry) error {
	if entry == nil {
		return shared.ErrNilEntry
	}
	if _, exists := r.byID[entry.UserID]; exists {
		return shared.ErrDuplicateUser
	}

	r.entries = append(r.entries, entry)
	r.byID[entry.UserID] = entry
	return nil
}

// Rank сортирует записи по Score по убыванию и присваивает ранги.
// Сортировка стабильная: при равном Score записи сохраняют исходный
// порядок, дополнительных ключей (серия, имя) нет. Ранги строго
// возрастают - равный Score НЕ даёт общий ранг, каждая строка получает
// 1 + индекс. Это намеренный отход от соревновательного ранжирования.
func (r *Ranking) Rank() {
	sort.SliceStable(r.entries, func(i, j int) bool {
		return r.entries[i].Score > r.entries[j].Score
	})
	for i, entry := range r.entries {
		entry.Rank = Rank(i + 1)
	}
}

// EnsureUser гарантирует присутствие запрашивающего пользователя в рейтинге.
// Если его нет в выборке (например, ещё ни одного выполнения), в конец
// добавляется синтетическая запись с его живыми значениями, после чего
// ранжирование выполняется заново. Вызывающая сторона всегда представлена.
func (r *Ranking) EnsureUser(self *Entry) error {
	if self == nil {
		return shared.ErrNilEntry
	}
	if _, exists := r.byID[self.UserID]; exists {
		return nil
	}

	self.IsSelf = true
	if err := r.Add(self); err != nil {
		return err
	}
	r.Rank()
	return nil
}

// GetByID возвращает запись по ID пользователя.
func (r *Ranking) GetByID(userID shared.UserID) *Entry {
	return r.byID[userID]
}

// Top возвращает топ-N записей.
func (r *Ranking) Top(n int) []*Entry {
	if n <= 0 {
		return nil
	}
	if n > len(r.entries) {
		n = len(r.entries)
	}
	result := make([]*Entry, n)
	copy(result, r.entries[:n])
	return result
}

// Neighbors возвращает соседей пользователя по рангу (±rangeSize),
// включая его самого в центре.
func (r *Ranking) Neighbors(userID shared.UserID, rangeSize int) []*Entry {
	if r.GetByID(userID) == nil {
		return nil
	}

	var idx int
	for i, e := range r.entries {
		if e.UserID == userID {
			idx = i
			break
		}
	}

	from := idx - rangeSize
	to := idx + rangeSize + 1
	if from < 0 {
		from = 0
	}
	if to > len(r.entries) {
		to = len(r.entries)
	}

	result := make([]*Entry, to-from)
	copy(result, r.entries[from:to])
	return result
}

// Count возвращает общее количество записей.
func (r *Ranking) Count() int {
	return len(r.entries)
}

// All возвращает все записи в порядке рангов.
func (r *Ranking) All() []*Entry {
	result := make([]*Entry, len(r.entries))
	copy(result, r.entries)
	return result
}

// AverageScore возвращает среднюю оценку дисциплины по всем участникам.
func (r *Ranking) AverageScore() shared.Score {
	if len(r.entries) == 0 {
		return 0
	}

	var total float64
	for _, entry := range r.entries {
		total += float64(entry.Score)
	}
	return shared.Score(total / float64(len(r.entries)))
}
