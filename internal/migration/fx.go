package migration

import (
	"github.com/sableworks/guildgate/internal/config"
	leaderboarddomain "github.com/sableworks/guildgate/internal/leaderboard/domain"
	settingsdomain "github.com/sableworks/guildgate/internal/settings/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType != "postgres" {
			return conn.AutoMigrate(
				&leaderboarddomain.Entry{},
				&settingsdomain.Setting{},
			)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
