package shopapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/NataPeralta/Store/internal/domain"
	"github.com/NataPeralta/Store/internal/webserver"
)

type registerPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,min=1,max=200"`
	Lastname string `json:"lastname"`
}

// registerCustomer upserts a customer by email. The first call stamps
// first_connection; every call refreshes last_connection.
func registerCustomer(c echo.Context) error {
	var payload registerPayload
	if err := c.Bind(&payload); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Unable to parse registration"})
	}
	if err := c.Validate(&payload); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Name and a valid email are required"})
	}

	email := strings.ToLower(strings.TrimSpace(payload.Email))
	now := time.Now()

	db := webserver.GetDB(c)
	var cust domain.Customer
	err := db.Where("email = ?", email).First(&cust).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		cust = domain.Customer{
			Email:           email,
			Name:            strings.TrimSpace(payload.Name),
			Lastname:        strings.TrimSpace(payload.Lastname),
			FirstConnection: &now,
			LastConnection:  &now,
		}
		if err := db.Create(&cust).Error; err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to register customer"})
		}
		zap.L().Info("customer registered", zap.String("email", email))
	case err != nil:
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to register customer"})
	default:
		cust.Name = strings.TrimSpace(payload.Name)
		if l := strings.TrimSpace(payload.Lastname); l != "" {
			cust.Lastname = l
		}
		if cust.FirstConnection == nil {
			cust.FirstConnection = &now
		}
		cust.LastConnection = &now
		if err := db.Save(&cust).Error; err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to register customer"})
		}
	}

	return c.JSON(http.StatusOK, cust)
}
