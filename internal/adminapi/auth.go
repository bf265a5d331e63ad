package adminapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/NataPeralta/Store/internal/domain"
	"github.com/NataPeralta/Store/internal/webserver"
	"github.com/NataPeralta/Store/pkg/common"
)

type loginPayload struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type operatorPayload struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=6"`
	Realname string `json:"realname"`
	Level    string `json:"level"`
}

type passwordPayload struct {
	Password string `json:"password" validate:"required,min=6"`
}

func registerAuthRoutes() {
	// login sits inside the admin group but is skipped by the JWT gate
	webserver.ApiPOST("/login", login)
	webserver.ApiGET("/operators", listOperators)
	webserver.ApiPOST("/operators", createOperator)
	webserver.ApiPUT("/operators/:id/password", updateOperatorPassword)
}

func login(c echo.Context) error {
	var payload loginPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse login parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	var opr domain.Operator
	err := GetDB(c).Where("username = ?", strings.TrimSpace(payload.Username)).First(&opr).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query operator", err.Error())
	}
	if opr.Status != common.ENABLED {
		return fail(c, http.StatusUnauthorized, "OPERATOR_DISABLED", "Operator account is disabled", nil)
	}
	if bcrypt.CompareHashAndPassword([]byte(opr.Password), []byte(payload.Password)) != nil {
		return fail(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password", nil)
	}

	token, err := webserver.IssueToken(appCtx.Config().Web.Secret, opr.Username, opr.Level, opr.ID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "TOKEN_ERROR", "Failed to issue token", err.Error())
	}

	GetDB(c).Model(&domain.Operator{}).Where("id = ?", opr.ID).Update("last_login", time.Now())
	zap.L().Info("operator logged in", zap.String("username", opr.Username))

	return ok(c, map[string]interface{}{
		"token": token,
		"user": map[string]interface{}{
			"id":       opr.ID,
			"username": opr.Username,
			"level":    opr.Level,
		},
	})
}

func listOperators(c echo.Context) error {
	var oprs []domain.Operator
	if err := GetDB(c).Order("created_at DESC").Find(&oprs).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query operators", err.Error())
	}
	return ok(c, oprs)
}

func createOperator(c echo.Context) error {
	var payload operatorPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse operator parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	username := strings.TrimSpace(payload.Username)
	var exists int64
	GetDB(c).Model(&domain.Operator{}).Where("username = ?", username).Count(&exists)
	if exists > 0 {
		return fail(c, http.StatusBadRequest, "OPERATOR_EXISTS", "Username already exists", nil)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "HASH_ERROR", "Failed to hash password", nil)
	}
	level := payload.Level
	if level == "" {
		level = "opr"
	}

	opr := domain.Operator{
		ID:       common.UUIDint64(),
		Username: username,
		Password: string(hashed),
		Realname: payload.Realname,
		Level:    level,
		Status:   common.ENABLED,
	}
	if err := GetDB(c).Create(&opr).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create operator", err.Error())
	}
	return ok(c, opr)
}

func updateOperatorPassword(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid operator ID", nil)
	}
	var payload passwordPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "HASH_ERROR", "Failed to hash password", nil)
	}
	res := GetDB(c).Model(&domain.Operator{}).Where("id = ?", id).
		Updates(map[string]interface{}{"password": string(hashed), "updated_at": time.Now()})
	if res.Error != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update password", res.Error.Error())
	}
	if res.RowsAffected == 0 {
		return fail(c, http.StatusNotFound, "OPERATOR_NOT_FOUND", "Operator not found", nil)
	}
	return ok(c, map[string]interface{}{"id": id})
}
