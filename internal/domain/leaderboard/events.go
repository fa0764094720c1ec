package leaderboard

import (
	"github.com/momentum-hub/momentum-tracker/internal/domain/shared"
)

// RankChangedEvent - позиция пользователя заметно изменилась.
type RankChangedEvent struct {
	shared.BaseEvent
	NewRank    Rank
	RankChange RankChange
	Direction  RankDirection
}

// NewRankChangedEvent создаёт событие изменения позиции.
func NewRankChangedEvent(entry *Entry) RankChangedEvent {
	return RankChangedEvent{
		BaseEvent:  shared.NewBaseEvent(shared.EventRankChanged, entry.UserID.String()),
		NewRank:    entry.Rank,
		RankChange: entry.RankChange,
		Direction:  entry.Direction(),
	}
}

// Payload реализует shared.Event.
func (e RankChangedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"new_rank":    int(e.NewRank),
		"rank_change": int(e.RankChange),
		"direction":   string(e.Direction),
	}
}

// RebuiltEvent - лидерборд пересобран.
type RebuiltEvent struct {
	shared.BaseEvent
	SnapshotID string
	TotalUsers int
}

// NewRebuiltEvent создаёт событие пересборки лидерборда.
func NewRebuiltEvent(snapshot *Snapshot) RebuiltEvent {
	return RebuiltEvent{
		BaseEvent:  shared.NewBaseEvent(shared.EventLeaderboardRebuilt, snapshot.ID),
		SnapshotID: snapshot.ID,
		TotalUsers: snapshot.TotalUsers,
	}
}

// Payload реализует shared.Event.
func (e RebuiltEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"snapshot_id": e.SnapshotID,
		"total_users": e.TotalUsers,
	}
}
