package domain

import (
	"context"
	"time"
)

// Known setting keys.
const (
	KeyWelcomeMessage = "welcome_message"
	KeyRoleLabel      = "role_label"
	KeyRetentionDays  = "retention_days"
)

// Setting is one admin-managed key/value pair.
type Setting struct {
	Key       string    `gorm:"primaryKey" json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Setting) TableName() string {
	return "settings"
}

// Service manages operator-tunable settings.
type Service interface {
	Get(ctx context.Context, key string) (string, error)
	GetInt(ctx context.Context, key string, def int) int
	Set(ctx context.Context, key, value string) error
	All(ctx context.Context) ([]Setting, error)
}
