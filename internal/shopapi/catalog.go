package shopapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/NataPeralta/Store/internal/domain"
	"github.com/NataPeralta/Store/internal/webserver"
)

func listProducts(c echo.Context) error {
	db := activeProductQuery(webserver.GetDB(c))
	if q := strings.TrimSpace(c.QueryParam("q")); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		db = db.Where("LOWER(name) LIKE ? OR LOWER(brand) LIKE ?", like, like)
	}

	var rows []domain.Product
	if err := db.Order("created_at DESC").Find(&rows).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load products"})
	}

	rate := currentRate()
	out := make([]storeProduct, 0, len(rows))
	for _, p := range rows {
		out = append(out, toStoreProduct(p, rate))
	}
	return c.JSON(http.StatusOK, out)
}

func getProduct(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid product ID"})
	}
	var p domain.Product
	err = activeProductQuery(webserver.GetDB(c)).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Product not found"})
	} else if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load product"})
	}
	return c.JSON(http.StatusOK, toStoreProduct(p, currentRate()))
}

func listCategories(c echo.Context) error {
	var rows []domain.Category
	if err := webserver.GetDB(c).
		Where("active = ?", true).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load categories"})
	}
	return c.JSON(http.StatusOK, rows)
}

func listCategoryProducts(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid category ID"})
	}
	var cat domain.Category
	err = webserver.GetDB(c).Where("id = ? AND active = ?", id, true).First(&cat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Category not found"})
	} else if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load category"})
	}

	var rows []domain.Product
	err = activeProductQuery(webserver.GetDB(c)).
		Where("id IN (?)", webserver.GetDB(c).Table("shop_product_category").
			Select("product_id").Where("category_id = ?", id)).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load products"})
	}

	rate := currentRate()
	out := make([]storeProduct, 0, len(rows))
	for _, p := range rows {
		out = append(out, toStoreProduct(p, rate))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"category": cat, "products": out})
}

func getExchangeRate(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]float64{"rate": currentRate()})
}
