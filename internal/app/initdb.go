package app

import (
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/NataPeralta/Store/internal/domain"
	"github.com/NataPeralta/Store/pkg/common"
)

func (a *Application) checkSuper() {
	const superUsername = "admin"
	const defaultPassword = "store"

	hashed, err := bcrypt.GenerateFromPassword([]byte(defaultPassword), bcrypt.DefaultCost)
	if err != nil {
		zap.L().Error("failed to hash default admin password", zap.Error(err))
		return
	}

	var operator domain.Operator
	err = a.gormDB.Where("username = ?", superUsername).First(&operator).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := a.gormDB.Create(&domain.Operator{
			ID:        common.UUIDint64(),
			Username:  superUsername,
			Password:  string(hashed),
			Realname:  "administrator",
			Level:     "super",
			Status:    common.ENABLED,
			LastLogin: time.Now(),
		}).Error; err != nil {
			zap.L().Error("failed to create default super admin", zap.Error(err))
		} else {
			zap.L().Info("initialized default super admin account", zap.String("username", superUsername))
		}
		return
	case err != nil:
		zap.L().Error("failed to query super admin", zap.Error(err))
		return
	}

	resetPassword := strings.TrimSpace(operator.Password) == ""
	resetLevel := !strings.EqualFold(operator.Level, "super")
	resetStatus := !strings.EqualFold(operator.Status, common.ENABLED)

	if !resetPassword && !resetLevel && !resetStatus {
		return
	}

	updates := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if resetPassword {
		updates["password"] = string(hashed)
	}
	if resetLevel {
		updates["level"] = "super"
	}
	if resetStatus {
		updates["status"] = common.ENABLED
	}

	if err := a.gormDB.Model(&domain.Operator{}).Where("id = ?", operator.ID).Updates(updates).Error; err != nil {
		zap.L().Error("failed to repair super admin account", zap.Error(err))
		return
	}

	zap.L().Warn("repaired default super admin account",
		zap.String("username", superUsername),
		zap.Bool("passwordReset", resetPassword),
		zap.Bool("levelReset", resetLevel),
		zap.Bool("statusEnabled", resetStatus))
}

// checkSettings initializes missing settings rows with their defaults.
func (a *Application) checkSettings() {
	defaults := []domain.Setting{
		{Key: "exchange_rate", Value: "1335", Remark: "USD to ARS conversion applied to storefront prices"},
		{Key: "site_name", Value: "Store", Remark: "Public site name"},
		{Key: "site_description", Value: "Tu tienda online", Remark: "Public site description"},
		{Key: "fx_auto_refresh", Value: "0", Remark: "Refresh exchange_rate hourly from the FX API when set to 1"},
	}

	for _, s := range defaults {
		var count int64
		a.gormDB.Model(&domain.Setting{}).Where("key = ?", s.Key).Count(&count)
		if count == 0 {
			if err := a.gormDB.Create(&s).Error; err != nil {
				zap.L().Error("failed to create default setting", zap.String("key", s.Key), zap.Error(err))
			} else {
				zap.L().Info("initialized setting", zap.String("key", s.Key), zap.String("default", s.Value))
			}
		}
	}
}
