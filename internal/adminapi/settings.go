package adminapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/NataPeralta/Store/internal/domain"
	"github.com/NataPeralta/Store/internal/webserver"
)

type settingPayload struct {
	Key   string `json:"key" validate:"required,min=1,max=128"`
	Value string `json:"value"`
}

type exchangeRatePayload struct {
	Rate float64 `json:"rate" validate:"required,gt=0"`
}

func registerSettingsRoutes() {
	webserver.ApiGET("/settings", listSettings)
	webserver.ApiPOST("/settings", upsertSetting)
	webserver.ApiDELETE("/settings/:key", deleteSetting)
	webserver.ApiGET("/settings/exchange-rate", getExchangeRate)
	webserver.ApiPUT("/settings/exchange-rate", updateExchangeRate)
}

func listSettings(c echo.Context) error {
	var rows []domain.Setting
	if err := GetDB(c).Order("key ASC").Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query settings", err.Error())
	}
	return ok(c, rows)
}

func upsertSetting(c echo.Context) error {
	var payload settingPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse setting", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}
	if err := appCtx.UpsertSetting(strings.TrimSpace(payload.Key), payload.Value); err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to save setting", err.Error())
	}
	return ok(c, map[string]interface{}{"key": payload.Key, "value": payload.Value})
}

func deleteSetting(c echo.Context) error {
	key := strings.TrimSpace(c.Param("key"))
	if key == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Setting key is required", nil)
	}
	res := GetDB(c).Where("key = ?", key).Delete(&domain.Setting{})
	if res.Error != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete setting", res.Error.Error())
	}
	if res.RowsAffected == 0 {
		return fail(c, http.StatusNotFound, "SETTING_NOT_FOUND", "Setting not found", nil)
	}
	return ok(c, map[string]interface{}{"key": key})
}

func getExchangeRate(c echo.Context) error {
	raw := appCtx.GetSettingValue("exchange_rate", "1335")
	rate, err := strconv.ParseFloat(raw, 64)
	if err != nil || rate <= 0 {
		rate = 1335
	}
	return ok(c, map[string]interface{}{"rate": rate})
}

func updateExchangeRate(c echo.Context) error {
	var payload exchangeRatePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse rate", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}
	value := strconv.FormatFloat(payload.Rate, 'f', -1, 64)
	if err := appCtx.UpsertSetting("exchange_rate", value); err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to save rate", err.Error())
	}
	return ok(c, map[string]interface{}{"rate": payload.Rate})
}
