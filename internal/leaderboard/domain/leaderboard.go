package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

var ErrEntryNotFound = errors.New("leaderboard entry not found")

// Entry is one scored activity row for a verified user.
type Entry struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	UserID    int64        `gorm:"index" json:"user_id"`
	Username  string       `json:"username"`
	Score     int64        `json:"score"`
	CreatedAt time.Time    `json:"created_at"`
}

func (Entry) TableName() string {
	return "leaderboard_entries"
}

// Standing is a user's aggregated rank.
type Standing struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Total    int64  `json:"total"`
}

type RecordRequest struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Score    int64  `json:"score"`
}

// Service is the leaderboard CRUD collaborator. Plain relational
// reads and writes; nothing here feeds back into the verification
// pipeline.
type Service interface {
	Record(ctx context.Context, req RecordRequest) (*Entry, error)
	Top(ctx context.Context, limit int) ([]Standing, error)
	DeleteByUser(ctx context.Context, userID int64) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
