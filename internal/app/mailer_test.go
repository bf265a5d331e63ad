package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/NataPeralta/Store/config"
	"github.com/NataPeralta/Store/internal/domain"
)

func TestOrderConfirmationBody(t *testing.T) {
	ord := &domain.Order{
		ID:           42,
		CustomerName: "Ana",
		Total:        3500,
		Items: []domain.OrderItem{
			{Quantity: 2, Price: 1000, Product: &domain.Product{Name: "Remera lisa"}},
			{Quantity: 1, Price: 1500},
		},
	}
	body := orderConfirmationBody(ord)
	assert.Contains(t, body, "Ana")
	assert.Contains(t, body, "pedido #42")
	assert.Contains(t, body, "2 x Remera lisa")
	assert.Contains(t, body, "Total: $3500.00")
}

func TestSendOrderConfirmationDisabledIsNoop(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrator().AutoMigrate(domain.Tables...))

	cfg := *config.DefaultAppConfig
	cfg.Smtp.Enabled = false
	a := NewApplication(&cfg)
	a.OverrideDB(db)

	// Must return without dialing anything, even for a missing order.
	a.sendOrderConfirmation(999)
}
