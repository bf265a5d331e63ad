package adminapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/labstack/echo/v4"
	"github.com/montanaflynn/stats"

	"github.com/NataPeralta/Store/internal/domain"
	"github.com/NataPeralta/Store/internal/webserver"
	"github.com/NataPeralta/Store/pkg/metrics"
)

func registerStatsRoutes() {
	webserver.ApiGET("/stats", getGeneralStats)
	webserver.ApiGET("/stats/sales", getSalesStats)
	webserver.ApiGET("/stats/top-products", getTopProducts)
	webserver.ApiGET("/stats/system", getSystemMetrics)
}

func getGeneralStats(c echo.Context) error {
	orderStats, err := orderSvc.OrderStats(c.Request().Context())
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to compute stats", err.Error())
	}

	db := GetDB(c)
	var products, activeProducts, categories, customers, images int64
	for _, q := range []struct {
		dst   *int64
		model interface{}
		cond  string
	}{
		{&products, &domain.Product{}, ""},
		{&activeProducts, &domain.Product{}, "active = true"},
		{&categories, &domain.Category{}, ""},
		{&customers, &domain.Customer{}, ""},
		{&images, &domain.GalleryImage{}, ""},
	} {
		m := db.Model(q.model)
		if q.cond != "" {
			m = m.Where(q.cond)
		}
		if err := m.Count(q.dst).Error; err != nil {
			return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to compute stats", err.Error())
		}
	}

	return ok(c, map[string]interface{}{
		"orders":          orderStats,
		"totalProducts":   products,
		"activeProducts":  activeProducts,
		"totalCategories": categories,
		"totalCustomers":  customers,
		"galleryImages":   images,
	})
}

// parseDateRange reads from/to query params in any common date format and
// falls back to the last 30 days.
func parseDateRange(c echo.Context) (time.Time, time.Time) {
	to := time.Now()
	from := to.AddDate(0, 0, -30)
	if v := strings.TrimSpace(c.QueryParam("from")); v != "" {
		if t, err := dateparse.ParseAny(v); err == nil {
			from = t
		}
	}
	if v := strings.TrimSpace(c.QueryParam("to")); v != "" {
		if t, err := dateparse.ParseAny(v); err == nil {
			to = t.Add(24*time.Hour - time.Nanosecond)
		}
	}
	return from, to
}

func getSalesStats(c echo.Context) error {
	from, to := parseDateRange(c)

	var orders []domain.Order
	if err := GetDB(c).
		Where("created_at BETWEEN ? AND ? AND status <> ?", from, to, domain.OrderStatusCancelled).
		Order("created_at ASC").
		Find(&orders).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query sales", err.Error())
	}

	daily := make(map[string]float64)
	totals := make([]float64, 0, len(orders))
	for _, ord := range orders {
		day := ord.CreatedAt.Format("2006-01-02")
		daily[day] += ord.Total
		totals = append(totals, ord.Total)
	}

	var mean, median, max float64
	if len(totals) > 0 {
		mean, _ = stats.Mean(totals)
		median, _ = stats.Median(totals)
		max, _ = stats.Max(totals)
	}
	sum, _ := stats.Sum(totals)

	return ok(c, map[string]interface{}{
		"from":        from.Format("2006-01-02"),
		"to":          to.Format("2006-01-02"),
		"orderCount":  len(orders),
		"revenue":     sum,
		"meanOrder":   mean,
		"medianOrder": median,
		"maxOrder":    max,
		"daily":       daily,
	})
}

// getSystemMetrics returns the last hour of recorded process and order
// gauges from the embedded metric store.
func getSystemMetrics(c echo.Context) error {
	end := time.Now().Unix()
	start := end - 3600
	names := []string{
		"system_cpuuse", "system_memuse",
		"store_cpuuse", "store_memuse",
		"store_orders_created", "store_orders_cancelled",
	}
	out := map[string]interface{}{}
	for _, name := range names {
		points, err := metrics.Select(name, start, end)
		if err != nil {
			continue
		}
		out[name] = points
	}
	return ok(c, out)
}

type topProductRow struct {
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	Sold      int64   `json:"sold"`
	Revenue   float64 `json:"revenue"`
}

func getTopProducts(c echo.Context) error {
	from, to := parseDateRange(c)

	var rows []topProductRow
	err := GetDB(c).Table("shop_order_item").
		Select("shop_order_item.product_id, shop_product.name, "+
			"SUM(shop_order_item.quantity) AS sold, "+
			"SUM(shop_order_item.quantity * shop_order_item.price) AS revenue").
		Joins("JOIN shop_order ON shop_order.id = shop_order_item.order_id").
		Joins("JOIN shop_product ON shop_product.id = shop_order_item.product_id").
		Where("shop_order.created_at BETWEEN ? AND ? AND shop_order.status <> ?",
			from, to, domain.OrderStatusCancelled).
		Group("shop_order_item.product_id, shop_product.name").
		Order("sold DESC").
		Limit(10).
		Scan(&rows).Error
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query top products", err.Error())
	}
	return ok(c, rows)
}
