package adminapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/NataPeralta/Store/internal/domain"
	"github.com/NataPeralta/Store/internal/webserver"
)

// customerView carries the order aggregates the admin list shows next to
// each customer. They are computed per request, never stored.
type customerView struct {
	domain.Customer
	OrderCount int64   `json:"order_count"`
	TotalSpent float64 `json:"total_spent"`
}

func registerCustomerRoutes() {
	webserver.ApiGET("/customers", listCustomers)
	webserver.ApiGET("/customers/:id", getCustomer)
	webserver.ApiDELETE("/customers/:id", deleteCustomer)
}

func customerAggregates(db *gorm.DB, email string) (int64, float64, error) {
	var count int64
	if err := db.Model(&domain.Order{}).Where("customer_email = ?", email).Count(&count).Error; err != nil {
		return 0, 0, err
	}
	var spent *float64
	err := db.Model(&domain.Order{}).
		Where("customer_email = ? AND status <> ?", email, domain.OrderStatusCancelled).
		Select("SUM(total)").Scan(&spent).Error
	if err != nil {
		return 0, 0, err
	}
	total := 0.0
	if spent != nil {
		total = *spent
	}
	return count, total, nil
}

func listCustomers(c echo.Context) error {
	page, pageSize := parsePagination(c)

	db := GetDB(c).Model(&domain.Customer{})
	if q := strings.TrimSpace(c.QueryParam("q")); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		db = db.Where("LOWER(email) LIKE ? OR LOWER(name) LIKE ? OR LOWER(lastname) LIKE ?", like, like, like)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query customers", err.Error())
	}
	var rows []domain.Customer
	if err := db.Order("last_connection DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query customers", err.Error())
	}

	views := make([]customerView, 0, len(rows))
	for _, cust := range rows {
		count, spent, err := customerAggregates(GetDB(c), cust.Email)
		if err != nil {
			return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query customers", err.Error())
		}
		views = append(views, customerView{Customer: cust, OrderCount: count, TotalSpent: spent})
	}
	return paged(c, views, total, page, pageSize)
}

func getCustomer(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid customer ID", nil)
	}
	var cust domain.Customer
	err = GetDB(c).Where("id = ?", id).First(&cust).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "CUSTOMER_NOT_FOUND", "Customer not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query customer", err.Error())
	}

	count, spent, err := customerAggregates(GetDB(c), cust.Email)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query customer", err.Error())
	}
	var orders []domain.Order
	if err := GetDB(c).Preload("Items").Preload("Items.Product").
		Where("customer_email = ?", cust.Email).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query customer orders", err.Error())
	}

	return ok(c, map[string]interface{}{
		"customer":    customerView{Customer: cust, OrderCount: count, TotalSpent: spent},
		"orders":      orders,
		"order_count": count,
		"total_spent": spent,
	})
}

// deleteCustomer removes the customer record only; their orders keep the
// denormalized name and email and remain queryable.
func deleteCustomer(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid customer ID", nil)
	}
	var cust domain.Customer
	if err := GetDB(c).Where("id = ?", id).First(&cust).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "CUSTOMER_NOT_FOUND", "Customer not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query customer", err.Error())
	}
	if err := GetDB(c).Where("id = ?", id).Delete(&domain.Customer{}).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete customer", err.Error())
	}
	return ok(c, map[string]interface{}{"id": id})
}
