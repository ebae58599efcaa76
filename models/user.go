package models

import "time"

type User struct {
	ID       string `gorm:"primaryKey;type:text" json:"id"` // SQLite uses text for UUID
	Username string `json:"username" gorm:"uniqueIndex;not null"`
	Email    string `json:"email" gorm:"uniqueIndex"`
	Password string `json:"-"` // bcrypt hash

	TotalSpots int64 `gorm:"index" json:"total_spots"`
	TotalSteps int64 `json:"total_steps"`

	CreatedAt time.Time `json:"created_at"`
}

// RankingEntry is the read-only projection of a user shown on the
// leaderboard and in username search results.
type RankingEntry struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	TotalSpots int64  `json:"total_spots"`
	TotalSteps int64  `json:"total_steps"`
	GlobalRank int64  `json:"global_rank,omitempty"` // computed on demand, never stored
}
