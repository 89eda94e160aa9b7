package settings

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/sableworks/guildgate/internal/clock"
	"github.com/sableworks/guildgate/internal/settings/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrSettingNotFound = errors.New("setting not found")

type service struct {
	db    *gorm.DB
	clock clock.Clock
}

func NewService(db *gorm.DB, clk clock.Clock) domain.Service {
	return &service{db: db, clock: clk}
}

func (s *service) Get(ctx context.Context, key string) (string, error) {
	var setting domain.Setting
	err := s.db.WithContext(ctx).First(&setting, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrSettingNotFound
	}
	if err != nil {
		return "", err
	}
	return setting.Value, nil
}

func (s *service) GetInt(ctx context.Context, key string, def int) int {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return def
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return def
	}
	return value
}

func (s *service) Set(ctx context.Context, key, value string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("setting key is required")
	}
	setting := domain.Setting{
		Key:       key,
		Value:     value,
		UpdatedAt: s.clock.Now(),
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&setting).Error
}

func (s *service) All(ctx context.Context) ([]domain.Setting, error) {
	var all []domain.Setting
	if err := s.db.WithContext(ctx).Order("key").Find(&all).Error; err != nil {
		return nil, err
	}
	return all, nil
}
