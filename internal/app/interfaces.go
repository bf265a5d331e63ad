package app

import (
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/NataPeralta/Store/config"
)

// DBProvider provides database access
type DBProvider interface {
	DB() *gorm.DB
}

// ConfigProvider provides application configuration
type ConfigProvider interface {
	Config() *config.AppConfig
}

// SettingsProvider provides key-value settings access
type SettingsProvider interface {
	GetSettingValue(key, def string) string
	UpsertSetting(key, value string) error
}

// SchedulerProvider provides task scheduling capability
type SchedulerProvider interface {
	Scheduler() *cron.Cron
}
