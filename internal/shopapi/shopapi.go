// Package shopapi exposes the unauthenticated storefront REST surface:
// catalog reads, customer registration and checkout.
package shopapi

import (
	"strconv"

	"gorm.io/gorm"

	"github.com/NataPeralta/Store/internal/app"
	"github.com/NataPeralta/Store/internal/domain"
	"github.com/NataPeralta/Store/internal/order"
	"github.com/NataPeralta/Store/internal/webserver"
)

var (
	appCtx   *app.Application
	orderSvc *order.Service
)

// Init wires the storefront handlers and registers the public routes.
func Init(application *app.Application) {
	appCtx = application
	orderSvc = order.NewService(application.DB(), application.Bus())

	webserver.PubGET("/products", listProducts)
	webserver.PubGET("/products/:id", getProduct)
	webserver.PubGET("/categories", listCategories)
	webserver.PubGET("/categories/:id/products", listCategoryProducts)
	webserver.PubGET("/settings/exchange-rate", getExchangeRate)
	webserver.PubPOST("/customers/register", registerCustomer)
	webserver.PubPOST("/orders", createOrder)
}

func currentRate() float64 {
	raw := appCtx.GetSettingValue("exchange_rate", "1335")
	rate, err := strconv.ParseFloat(raw, 64)
	if err != nil || rate <= 0 {
		return 1335
	}
	return rate
}

// storeProduct is the storefront product shape: prices come converted
// through the exchange rate and only the gallery paths of linked images
// are exposed.
type storeProduct struct {
	domain.Product
	PriceARS         float64  `json:"price_ars"`
	OriginalPriceARS *float64 `json:"original_price_ars"`
}

func toStoreProduct(p domain.Product, rate float64) storeProduct {
	v := storeProduct{Product: p, PriceARS: p.Price * rate}
	if p.OriginalPrice != nil {
		ars := *p.OriginalPrice * rate
		v.OriginalPriceARS = &ars
	}
	return v
}

func activeProductQuery(db *gorm.DB) *gorm.DB {
	return db.Model(&domain.Product{}).
		Where("active = ?", true).
		Preload("Categories").
		Preload("Images", func(d *gorm.DB) *gorm.DB { return d.Order("is_primary DESC, id ASC") }).
		Preload("Images.Gallery")
}
