package shopapi

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
	"github.com/NataPeralta/Store/internal/order"
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
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(webserver.ContextDBKey, db)
	return c, rec
}

func TestCheckoutCreatesOrder(t *testing.T) {
	db := newTestDB(t)
	orderSvc = order.NewService(db, nil)

	p := domain.Product{Name: "Remera", Price: 20, Stock: 5, Active: true}
	require.NoError(t, db.Create(&p).Error)

	body := `{"name":"Ana","lastname":"García","email":"Ana@Example.com","total":40,` +
		`"items":[{"productId":` + itoa(p.ID) + `,"quantity":2,"price":20}]}`
	c, rec := newTestContext(t, db, http.MethodPost, "/api/orders", body)
	require.NoError(t, createOrder(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	var res map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "Order created", res["message"])
	assert.NotZero(t, res["orderId"])

	var ord domain.Order
	require.NoError(t, db.Preload("Items").First(&ord).Error)
	assert.Equal(t, "ana@example.com", ord.CustomerEmail)
	require.Len(t, ord.Items, 1)

	var reloaded domain.Product
	require.NoError(t, db.First(&reloaded, p.ID).Error)
	assert.Equal(t, 3, reloaded.Stock)
}

func TestCheckoutRejectsUnavailableItems(t *testing.T) {
	db := newTestDB(t)
	orderSvc = order.NewService(db, nil)

	low := domain.Product{Name: "Hoodie", Price: 50, Stock: 1, Active: true}
	inactive := domain.Product{Name: "Retired", Price: 10, Stock: 9, Active: false}
	require.NoError(t, db.Create(&low).Error)
	require.NoError(t, db.Create(&inactive).Error)

	body := `{"name":"Ana","email":"ana@example.com",` +
		`"items":[{"productId":` + itoa(low.ID) + `,"quantity":3,"price":50},` +
		`{"productId":` + itoa(inactive.ID) + `,"quantity":1,"price":10}]}`
	c, rec := newTestContext(t, db, http.MethodPost, "/api/orders", body)
	require.NoError(t, createOrder(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var res struct {
		Error string              `json:"error"`
		Items []order.ItemProblem `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Len(t, res.Items, 2)
	assert.Contains(t, res.Error, "Hoodie")

	var count int64
	require.NoError(t, db.Model(&domain.Order{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestCheckoutRequiresItems(t *testing.T) {
	db := newTestDB(t)
	orderSvc = order.NewService(db, nil)

	c, rec := newTestContext(t, db, http.MethodPost, "/api/orders",
		`{"name":"Ana","email":"ana@example.com","items":[]}`)
	require.NoError(t, createOrder(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterCustomerIsIdempotentByEmail(t *testing.T) {
	db := newTestDB(t)

	c, rec := newTestContext(t, db, http.MethodPost, "/api/customers/register",
		`{"email":"Ana@Example.com","name":"Ana"}`)
	require.NoError(t, registerCustomer(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var first domain.Customer
	require.NoError(t, db.Where("email = ?", "ana@example.com").First(&first).Error)
	require.NotNil(t, first.FirstConnection)
	require.NotNil(t, first.LastConnection)

	c, rec = newTestContext(t, db, http.MethodPost, "/api/customers/register",
		`{"email":"ana@example.com","name":"Ana María","lastname":"García"}`)
	require.NoError(t, registerCustomer(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var count int64
	require.NoError(t, db.Model(&domain.Customer{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	var second domain.Customer
	require.NoError(t, db.Where("email = ?", "ana@example.com").First(&second).Error)
	assert.Equal(t, "Ana María", second.Name)
	assert.Equal(t, "García", second.Lastname)
	require.NotNil(t, second.FirstConnection)
	assert.Equal(t, first.FirstConnection.Unix(), second.FirstConnection.Unix())
	assert.False(t, second.LastConnection.Before(*first.LastConnection))
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
