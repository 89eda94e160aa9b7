package leaderboard

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sableworks/guildgate/internal/clock"
	"github.com/sableworks/guildgate/internal/leaderboard/domain"
	"gorm.io/gorm"
)

const (
	defaultTopLimit = 10
	maxTopLimit     = 100
)

type service struct {
	db    *gorm.DB
	genID *snowflake.Node
	clock clock.Clock
}

func NewService(db *gorm.DB, genID *snowflake.Node, clk clock.Clock) domain.Service {
	return &service{db: db, genID: genID, clock: clk}
}

func (s *service) Record(ctx context.Context, req domain.RecordRequest) (*domain.Entry, error) {
	if req.UserID == 0 {
		return nil, errors.New("user_id is required")
	}
	entry := domain.Entry{
		ID:        s.genID.Generate(),
		UserID:    req.UserID,
		Username:  strings.TrimSpace(req.Username),
		Score:     req.Score,
		CreatedAt: s.clock.Now(),
	}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *service) Top(ctx context.Context, limit int) ([]domain.Standing, error) {
	if limit <= 0 {
		limit = defaultTopLimit
	}
	if limit > maxTopLimit {
		limit = maxTopLimit
	}

	var standings []domain.Standing
	err := s.db.WithContext(ctx).
		Model(&domain.Entry{}).
		Select("user_id, MAX(username) AS username, SUM(score) AS total").
		Group("user_id").
		Order("total DESC").
		Limit(limit).
		Scan(&standings).Error
	if err != nil {
		return nil, err
	}
	return standings, nil
}

func (s *service) DeleteByUser(ctx context.Context, userID int64) error {
	result := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&domain.Entry{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrEntryNotFound
	}
	return nil
}

// DeleteOlderThan prunes rows past the retention window. Driven by the
// cleanup scheduler, never by request handlers.
func (s *service) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&domain.Entry{})
	return result.RowsAffected, result.Error
}
