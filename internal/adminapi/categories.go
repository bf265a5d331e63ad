package adminapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/NataPeralta/Store/internal/domain"
	"github.com/NataPeralta/Store/internal/webserver"
)

type categoryPayload struct {
	Name   string `json:"name" validate:"required,min=1,max=200"`
	Active *bool  `json:"active"`
}

// categoryView adds the product count the admin list displays.
type categoryView struct {
	domain.Category
	ProductCount int64 `json:"product_count"`
}

func registerCategoryRoutes() {
	webserver.ApiGET("/categories", listAdminCategories)
	webserver.ApiGET("/categories/:id", getAdminCategory)
	webserver.ApiPOST("/categories", createCategory)
	webserver.ApiPUT("/categories/:id", updateCategory)
	webserver.ApiDELETE("/categories/:id", deleteCategory)
}

func categoryProductCount(db *gorm.DB, id int64) (int64, error) {
	var count int64
	err := db.Table("shop_product_category").Where("category_id = ?", id).Count(&count).Error
	return count, err
}

func listAdminCategories(c echo.Context) error {
	var rows []domain.Category
	if err := GetDB(c).Order("name ASC").Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query categories", err.Error())
	}
	views := make([]categoryView, 0, len(rows))
	for _, cat := range rows {
		count, err := categoryProductCount(GetDB(c), cat.ID)
		if err != nil {
			return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query categories", err.Error())
		}
		views = append(views, categoryView{Category: cat, ProductCount: count})
	}
	return ok(c, views)
}

func getAdminCategory(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid category ID", nil)
	}
	var cat domain.Category
	err = GetDB(c).Where("id = ?", id).First(&cat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "CATEGORY_NOT_FOUND", "Category not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query category", err.Error())
	}
	count, err := categoryProductCount(GetDB(c), cat.ID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query category", err.Error())
	}
	return ok(c, categoryView{Category: cat, ProductCount: count})
}

func createCategory(c echo.Context) error {
	var payload categoryPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse category", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	name := strings.TrimSpace(payload.Name)
	var count int64
	GetDB(c).Model(&domain.Category{}).Where("LOWER(name) = ?", strings.ToLower(name)).Count(&count)
	if count > 0 {
		return fail(c, http.StatusBadRequest, "CATEGORY_EXISTS", "A category with this name already exists", nil)
	}

	cat := domain.Category{Name: name, Active: true}
	if payload.Active != nil {
		cat.Active = *payload.Active
	}
	if err := GetDB(c).Create(&cat).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create category", err.Error())
	}
	return created(c, map[string]interface{}{"categoryId": cat.ID}, "Category created")
}

func updateCategory(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid category ID", nil)
	}
	var cat domain.Category
	if err := GetDB(c).Where("id = ?", id).First(&cat).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "CATEGORY_NOT_FOUND", "Category not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query category", err.Error())
	}

	var payload categoryPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse category", err.Error())
	}
	if name := strings.TrimSpace(payload.Name); name != "" && !strings.EqualFold(name, cat.Name) {
		var count int64
		GetDB(c).Model(&domain.Category{}).
			Where("LOWER(name) = ? AND id <> ?", strings.ToLower(name), id).Count(&count)
		if count > 0 {
			return fail(c, http.StatusBadRequest, "CATEGORY_EXISTS", "A category with this name already exists", nil)
		}
		cat.Name = name
	}
	if payload.Active != nil {
		cat.Active = *payload.Active
	}
	cat.UpdatedAt = time.Now()
	if err := GetDB(c).Save(&cat).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update category", err.Error())
	}
	return ok(c, map[string]interface{}{"categoryId": cat.ID})
}

// deleteCategory refuses to remove a category that is still active or still
// has products linked to it.
func deleteCategory(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid category ID", nil)
	}
	var cat domain.Category
	if err := GetDB(c).Where("id = ?", id).First(&cat).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "CATEGORY_NOT_FOUND", "Category not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query category", err.Error())
	}

	if cat.Active {
		return fail(c, http.StatusBadRequest, "CATEGORY_ACTIVE",
			"Cannot delete an active category, deactivate it first", nil)
	}
	count, err := categoryProductCount(GetDB(c), id)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query category", err.Error())
	}
	if count > 0 {
		return fail(c, http.StatusBadRequest, "CATEGORY_IN_USE",
			"Cannot delete a category that still has products", nil)
	}

	if err := GetDB(c).Where("id = ?", id).Delete(&domain.Category{}).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete category", err.Error())
	}
	return ok(c, map[string]interface{}{"id": id})
}
