package adminapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/NataPeralta/Store/internal/domain"
	"github.com/NataPeralta/Store/internal/webserver"
)

type productPayload struct {
	Name          string   `json:"name" validate:"required,min=1,max=200"`
	Description   string   `json:"description"`
	Brand         string   `json:"brand"`
	Size          string   `json:"size"`
	Stock         *int     `json:"stock"`
	Price         *float64 `json:"price"`
	OriginalPrice *float64 `json:"original_price"`
	Margin        *float64 `json:"margin"`
	Active        *bool    `json:"active"`
	CategoryIDs   []int64  `json:"category_ids"`
	ImageIDs      []int64  `json:"image_ids"`
	PrimaryImage  *int64   `json:"primary_image"`
}

// productView decorates a product with prices converted through the
// exchange-rate setting.
type productView struct {
	domain.Product
	PriceARS         *float64 `json:"price_ars"`
	OriginalPriceARS *float64 `json:"original_price_ars"`
}

func registerProductRoutes() {
	webserver.ApiGET("/products", listAdminProducts)
	webserver.ApiGET("/products/:id", getAdminProduct)
	webserver.ApiPOST("/products", createProduct)
	webserver.ApiPUT("/products/:id", updateProduct)
	webserver.ApiDELETE("/products/:id", deleteProduct)
}

func exchangeRate(c echo.Context) float64 {
	var s domain.Setting
	if err := GetDB(c).Where("key = ?", "exchange_rate").First(&s).Error; err == nil {
		if rate, perr := strconv.ParseFloat(s.Value, 64); perr == nil && rate > 0 {
			return rate
		}
	}
	return 1335
}

func toProductView(p domain.Product, rate float64) productView {
	v := productView{Product: p}
	if p.Price > 0 {
		ars := p.Price * rate
		v.PriceARS = &ars
	}
	if p.OriginalPrice != nil {
		ars := *p.OriginalPrice * rate
		v.OriginalPriceARS = &ars
	}
	return v
}

func listAdminProducts(c echo.Context) error {
	page, pageSize := parsePagination(c)

	// Sorting: whitelist allowed sort columns to avoid SQL injection
	sortField := strings.TrimSpace(c.QueryParam("sort"))
	sortOrder := strings.ToUpper(strings.TrimSpace(c.QueryParam("order")))
	if sortOrder != "ASC" && sortOrder != "DESC" {
		sortOrder = "DESC"
	}
	allowed := map[string]string{
		"id":         "id",
		"name":       "name",
		"price":      "price",
		"stock":      "stock",
		"created_at": "created_at",
		"updated_at": "updated_at",
	}
	sortCol, okCol := allowed[sortField]
	if !okCol {
		sortCol = "created_at"
	}

	db := GetDB(c).Model(&domain.Product{})
	if q := strings.TrimSpace(c.QueryParam("q")); q != "" {
		if db.Dialector.Name() == "postgres" {
			db = db.Where("name ILIKE ? OR brand ILIKE ?", "%"+q+"%", "%"+q+"%")
		} else {
			db = db.Where("LOWER(name) LIKE ? OR LOWER(brand) LIKE ?",
				"%"+strings.ToLower(q)+"%", "%"+strings.ToLower(q)+"%")
		}
	}
	if cid, err := strconv.ParseInt(c.QueryParam("category"), 10, 64); err == nil && cid > 0 {
		db = db.Where("id IN (?)", GetDB(c).Table("shop_product_category").
			Select("product_id").Where("category_id = ?", cid))
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}

	var rows []domain.Product
	if err := db.Preload("Categories").
		Preload("Images", func(d *gorm.DB) *gorm.DB { return d.Order("is_primary DESC, id ASC") }).
		Preload("Images.Gallery").
		Order(sortCol + " " + sortOrder).
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}

	rate := exchangeRate(c)
	views := make([]productView, 0, len(rows))
	for _, p := range rows {
		views = append(views, toProductView(p, rate))
	}
	return paged(c, views, total, page, pageSize)
}

func getAdminProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	var p domain.Product
	err = GetDB(c).Preload("Categories").
		Preload("Images", func(d *gorm.DB) *gorm.DB { return d.Order("is_primary DESC, id ASC") }).
		Preload("Images.Gallery").
		Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query product", err.Error())
	}
	return ok(c, toProductView(p, exchangeRate(c)))
}

func createProduct(c echo.Context) error {
	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}
	if payload.Price == nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Price is required", nil)
	}

	p := domain.Product{
		Name:          strings.TrimSpace(payload.Name),
		Description:   payload.Description,
		Brand:         strings.TrimSpace(payload.Brand),
		Size:          payload.Size,
		Price:         *payload.Price,
		OriginalPrice: payload.OriginalPrice,
		Margin:        payload.Margin,
		Active:        true,
	}
	if payload.Stock != nil {
		if *payload.Stock < 0 {
			return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Stock must be >= 0", nil)
		}
		p.Stock = *payload.Stock
	}
	if payload.Active != nil {
		p.Active = *payload.Active
	}

	err := GetDB(c).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&p).Error; err != nil {
			return err
		}
		if err := replaceProductCategories(tx, p.ID, payload.CategoryIDs); err != nil {
			return err
		}
		return replaceProductImages(tx, p.ID, payload.ImageIDs, payload.PrimaryImage)
	})
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create product", err.Error())
	}
	return created(c, map[string]interface{}{"productId": p.ID}, "Product created")
}

func updateProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	var p domain.Product
	if err := GetDB(c).Where("id = ?", id).First(&p).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query product", err.Error())
	}

	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", err.Error())
	}
	if name := strings.TrimSpace(payload.Name); name != "" {
		p.Name = name
	}
	if payload.Description != "" {
		p.Description = payload.Description
	}
	if payload.Brand != "" {
		p.Brand = strings.TrimSpace(payload.Brand)
	}
	if payload.Size != "" {
		p.Size = payload.Size
	}
	if payload.Price != nil {
		p.Price = *payload.Price
	}
	if payload.OriginalPrice != nil {
		p.OriginalPrice = payload.OriginalPrice
	}
	if payload.Margin != nil {
		p.Margin = payload.Margin
	}
	if payload.Stock != nil {
		if *payload.Stock < 0 {
			return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Stock must be >= 0", nil)
		}
		p.Stock = *payload.Stock
	}
	if payload.Active != nil {
		p.Active = *payload.Active
	}
	p.UpdatedAt = time.Now()

	err = GetDB(c).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Categories", "Images").Save(&p).Error; err != nil {
			return err
		}
		if payload.CategoryIDs != nil {
			if err := replaceProductCategories(tx, p.ID, payload.CategoryIDs); err != nil {
				return err
			}
		}
		if payload.ImageIDs != nil {
			if err := replaceProductImages(tx, p.ID, payload.ImageIDs, payload.PrimaryImage); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update product", err.Error())
	}
	return ok(c, map[string]interface{}{"productId": p.ID})
}

func deleteProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}

	var p domain.Product
	if err := GetDB(c).Where("id = ?", id).First(&p).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query product", err.Error())
	}

	// Order items, image links and category links referencing the product
	// go first, then the product itself, all in one transaction.
	err = GetDB(c).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&domain.OrderItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&domain.ProductImage{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM shop_product_category WHERE product_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&domain.Product{}).Error
	})
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete product", err.Error())
	}
	return ok(c, map[string]interface{}{"id": id})
}

func replaceProductCategories(tx *gorm.DB, productID int64, categoryIDs []int64) error {
	if err := tx.Exec("DELETE FROM shop_product_category WHERE product_id = ?", productID).Error; err != nil {
		return err
	}
	for _, cid := range categoryIDs {
		var exists int64
		if err := tx.Model(&domain.Category{}).Where("id = ?", cid).Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			continue
		}
		if err := tx.Exec("INSERT INTO shop_product_category (product_id, category_id) VALUES (?, ?)",
			productID, cid).Error; err != nil {
			return err
		}
	}
	return nil
}

func replaceProductImages(tx *gorm.DB, productID int64, imageIDs []int64, primary *int64) error {
	if err := tx.Where("product_id = ?", productID).Delete(&domain.ProductImage{}).Error; err != nil {
		return err
	}
	for i, gid := range imageIDs {
		var exists int64
		if err := tx.Model(&domain.GalleryImage{}).Where("id = ?", gid).Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			continue
		}
		isPrimary := i == 0
		if primary != nil {
			isPrimary = gid == *primary
		}
		if err := tx.Create(&domain.ProductImage{
			ProductID: productID,
			GalleryID: gid,
			IsPrimary: isPrimary,
		}).Error; err != nil {
			return err
		}
	}
	return nil
}
