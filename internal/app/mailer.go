package app

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/NataPeralta/Store/internal/domain"
)

// sendOrderConfirmation emails the customer after checkout. It is a no-op
// unless SMTP is enabled in the config, and it never fails the order: send
// errors only get logged.
func (a *Application) sendOrderConfirmation(orderID int64) {
	cfg := a.appConfig.Smtp
	if !cfg.Enabled {
		return
	}

	var ord domain.Order
	if err := a.gormDB.Preload("Items.Product").First(&ord, orderID).Error; err != nil {
		zap.L().Error("order confirmation: load order", zap.Int64("order_id", orderID), zap.Error(err))
		return
	}
	if ord.CustomerEmail == "" {
		return
	}

	m := gomail.NewMessage()
	m.SetHeader("From", cfg.From)
	m.SetHeader("To", ord.CustomerEmail)
	m.SetHeader("Subject", fmt.Sprintf("Confirmación de pedido #%d", ord.ID))
	m.SetBody("text/plain", orderConfirmationBody(&ord))

	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Passwd)
	if err := d.DialAndSend(m); err != nil {
		zap.L().Error("order confirmation: send", zap.Int64("order_id", orderID), zap.Error(err))
		return
	}
	zap.L().Info("order confirmation sent",
		zap.Int64("order_id", orderID), zap.String("to", ord.CustomerEmail))
}

func orderConfirmationBody(ord *domain.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hola %s,\n\nRecibimos tu pedido #%d.\n\n", ord.CustomerName, ord.ID)
	for _, item := range ord.Items {
		name := "Producto"
		if item.Product != nil {
			name = item.Product.Name
		}
		fmt.Fprintf(&b, "  %d x %s - $%.2f\n", item.Quantity, name, item.Price)
	}
	fmt.Fprintf(&b, "\nTotal: $%.2f\n\nGracias por tu compra.\n", ord.Total)
	return b.String()
}
