package adminapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/NataPeralta/Store/internal/domain"
	"github.com/NataPeralta/Store/internal/webserver"
)

type testValidator struct {
	validate *validator.Validate
}

func (v *testValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.Migrator().AutoMigrate(domain.Tables...))
	return db
}

func newTestContext(t *testing.T, db *gorm.DB, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = &testValidator{validate: validator.New()}
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(webserver.ContextDBKey, db)
	return c, rec
}

func decodeResult(t *testing.T, rec *httptest.ResponseRecorder) RestResult {
	t.Helper()
	var res RestResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	return res
}

func TestDeleteCategoryRefusesActive(t *testing.T) {
	db := newTestDB(t)
	cat := domain.Category{Name: "Verano", Active: true}
	require.NoError(t, db.Create(&cat).Error)

	c, rec := newTestContext(t, db, http.MethodDelete, "/api/admin/categories/1", "")
	c.SetParamNames("id")
	c.SetParamValues(strconv.FormatInt(cat.ID, 10))
	require.NoError(t, deleteCategory(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "CATEGORY_ACTIVE", decodeResult(t, rec).Code)

	var count int64
	require.NoError(t, db.Model(&domain.Category{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestDeleteCategoryRefusesWhenInUse(t *testing.T) {
	db := newTestDB(t)
	cat := domain.Category{Name: "Verano", Active: false}
	require.NoError(t, db.Create(&cat).Error)
	p := domain.Product{Name: "Remera", Price: 10, Active: true}
	require.NoError(t, db.Create(&p).Error)
	require.NoError(t, db.Exec(
		"INSERT INTO shop_product_category (product_id, category_id) VALUES (?, ?)",
		p.ID, cat.ID).Error)

	c, rec := newTestContext(t, db, http.MethodDelete, "/api/admin/categories/1", "")
	c.SetParamNames("id")
	c.SetParamValues(strconv.FormatInt(cat.ID, 10))
	require.NoError(t, deleteCategory(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "CATEGORY_IN_USE", decodeResult(t, rec).Code)
}

func TestDeleteCategoryInactiveUnused(t *testing.T) {
	db := newTestDB(t)
	cat := domain.Category{Name: "Liquidación", Active: false}
	require.NoError(t, db.Create(&cat).Error)

	c, rec := newTestContext(t, db, http.MethodDelete, "/api/admin/categories/1", "")
	c.SetParamNames("id")
	c.SetParamValues(strconv.FormatInt(cat.ID, 10))
	require.NoError(t, deleteCategory(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	var count int64
	require.NoError(t, db.Model(&domain.Category{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestCreateCategoryRejectsDuplicateName(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&domain.Category{Name: "Verano", Active: true}).Error)

	c, rec := newTestContext(t, db, http.MethodPost, "/api/admin/categories",
		`{"name":"verano"}`)
	require.NoError(t, createCategory(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "CATEGORY_EXISTS", decodeResult(t, rec).Code)
}

func TestCreateAndGetCategory(t *testing.T) {
	db := newTestDB(t)

	c, rec := newTestContext(t, db, http.MethodPost, "/api/admin/categories",
		`{"name":"Invierno"}`)
	require.NoError(t, createCategory(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var cat domain.Category
	require.NoError(t, db.Where("name = ?", "Invierno").First(&cat).Error)
	assert.True(t, cat.Active)

	c, rec = newTestContext(t, db, http.MethodGet, "/api/admin/categories/1", "")
	c.SetParamNames("id")
	c.SetParamValues(strconv.FormatInt(cat.ID, 10))
	require.NoError(t, getAdminCategory(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}
