package order

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/NataPeralta/Store/internal/domain"
)

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

func seedProduct(t *testing.T, db *gorm.DB, name string, stock int, price float64, active bool) domain.Product {
	t.Helper()
	p := domain.Product{Name: name, Stock: stock, Price: price, Active: active}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func productStock(t *testing.T, db *gorm.DB, id int64) int {
	t.Helper()
	var p domain.Product
	require.NoError(t, db.Where("id = ?", id).First(&p).Error)
	return p.Stock
}

func TestCreateOrderDecrementsStockAtomically(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)
	shirt := seedProduct(t, db, "Shirt", 10, 20, true)
	pants := seedProduct(t, db, "Pants", 4, 35, true)

	ord, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		CustomerName:  "Ana",
		CustomerEmail: "ana@example.com",
		Total:         90,
		Items: []LineItem{
			{ProductID: shirt.ID, Quantity: 2, Price: 20},
			{ProductID: pants.ID, Quantity: 1, Price: 35},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, ord.Status)
	require.Len(t, ord.Items, 2)

	assert.Equal(t, 8, productStock(t, db, shirt.ID))
	assert.Equal(t, 3, productStock(t, db, pants.ID))
}

func TestCreateOrderRejectsWholeCartWithAllProblems(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)
	shirt := seedProduct(t, db, "Shirt", 10, 20, true)
	hoodie := seedProduct(t, db, "Hoodie", 1, 50, true)
	retired := seedProduct(t, db, "Retired", 5, 10, false)

	_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		CustomerEmail: "ana@example.com",
		Items: []LineItem{
			{ProductID: shirt.ID, Quantity: 2, Price: 20},
			{ProductID: hoodie.ID, Quantity: 3, Price: 50},
			{ProductID: retired.ID, Quantity: 1, Price: 10},
			{ProductID: 99999, Quantity: 1, Price: 1},
		},
	})
	require.Error(t, err)
	verr := AsValidationError(err)
	require.NotNil(t, verr)
	require.Len(t, verr.Problems, 3)

	reasons := map[int64]string{}
	for _, p := range verr.Problems {
		reasons[p.ProductID] = p.Reason
	}
	assert.Equal(t, ReasonInsufficientStock, reasons[hoodie.ID])
	assert.Equal(t, ReasonInactive, reasons[retired.ID])
	assert.Equal(t, ReasonNotExists, reasons[99999])

	// Nothing persisted, no stock touched.
	var orders int64
	require.NoError(t, db.Model(&domain.Order{}).Count(&orders).Error)
	assert.EqualValues(t, 0, orders)
	assert.Equal(t, 10, productStock(t, db, shirt.ID))
	assert.Equal(t, 1, productStock(t, db, hoodie.ID))
}

func TestCreateOrderLastUnit(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)
	p := seedProduct(t, db, "Last one", 1, 99, true)

	_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		CustomerEmail: "a@example.com",
		Items:         []LineItem{{ProductID: p.ID, Quantity: 1, Price: 99}},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, productStock(t, db, p.ID))

	_, err = svc.CreateOrder(context.Background(), CreateOrderInput{
		CustomerEmail: "b@example.com",
		Items:         []LineItem{{ProductID: p.ID, Quantity: 1, Price: 99}},
	})
	require.Error(t, err)
	verr := AsValidationError(err)
	require.NotNil(t, verr)
	assert.Equal(t, 0, productStock(t, db, p.ID))
}

func TestCreateOrderEmptyCart(t *testing.T) {
	svc := NewService(newTestDB(t), nil)
	_, err := svc.CreateOrder(context.Background(), CreateOrderInput{CustomerEmail: "a@example.com"})
	assert.ErrorIs(t, err, ErrEmptyOrder)
}

func TestCancelRestoresStockOnce(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)
	p := seedProduct(t, db, "Shirt", 5, 20, true)

	ord, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		CustomerEmail: "a@example.com",
		Items:         []LineItem{{ProductID: p.ID, Quantity: 3, Price: 20}},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, productStock(t, db, p.ID))

	_, err = svc.UpdateStatus(context.Background(), ord.ID, domain.OrderStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, 5, productStock(t, db, p.ID))

	// Cancelling an already cancelled order must not restore again.
	_, err = svc.UpdateStatus(context.Background(), ord.ID, domain.OrderStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, 5, productStock(t, db, p.ID))
}

func TestUncancelRedecrementsOrFails(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)
	p := seedProduct(t, db, "Shirt", 3, 20, true)

	ord, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		CustomerEmail: "a@example.com",
		Items:         []LineItem{{ProductID: p.ID, Quantity: 3, Price: 20}},
	})
	require.NoError(t, err)
	_, err = svc.UpdateStatus(context.Background(), ord.ID, domain.OrderStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, 3, productStock(t, db, p.ID))

	// Someone else consumes the stock while the order sits cancelled.
	require.NoError(t, db.Model(&domain.Product{}).Where("id = ?", p.ID).
		Update("stock", 1).Error)

	_, err = svc.UpdateStatus(context.Background(), ord.ID, domain.OrderStatusPending)
	require.Error(t, err)
	require.NotNil(t, AsValidationError(err))

	// Status stayed cancelled and stock untouched.
	var reloaded domain.Order
	require.NoError(t, db.Where("id = ?", ord.ID).First(&reloaded).Error)
	assert.Equal(t, domain.OrderStatusCancelled, reloaded.Status)
	assert.Equal(t, 1, productStock(t, db, p.ID))

	// With stock back, re-activation succeeds and decrements.
	require.NoError(t, db.Model(&domain.Product{}).Where("id = ?", p.ID).
		Update("stock", 5).Error)
	_, err = svc.UpdateStatus(context.Background(), ord.ID, domain.OrderStatusProcessing)
	require.NoError(t, err)
	assert.Equal(t, 2, productStock(t, db, p.ID))
}

func TestUpdateStatusValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)

	_, err := svc.UpdateStatus(context.Background(), 1, "teleported")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = svc.UpdateStatus(context.Background(), 12345, domain.OrderStatusShipped)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestDeleteOrderRestoresStock(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)
	p := seedProduct(t, db, "Shirt", 5, 20, true)

	ord, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		CustomerEmail: "a@example.com",
		Items:         []LineItem{{ProductID: p.ID, Quantity: 2, Price: 20}},
	})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteOrder(context.Background(), ord.ID))
	assert.Equal(t, 5, productStock(t, db, p.ID))

	var items int64
	require.NoError(t, db.Model(&domain.OrderItem{}).Count(&items).Error)
	assert.EqualValues(t, 0, items)

	assert.ErrorIs(t, svc.DeleteOrder(context.Background(), ord.ID), ErrOrderNotFound)
}

func TestDeleteCancelledOrderRestoresAgain(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)
	p := seedProduct(t, db, "Shirt", 5, 20, true)

	ord, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		CustomerEmail: "a@example.com",
		Items:         []LineItem{{ProductID: p.ID, Quantity: 2, Price: 20}},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, productStock(t, db, p.ID))

	// Cancelling restores once, deleting restores once more.
	_, err = svc.UpdateStatus(context.Background(), ord.ID, domain.OrderStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, 5, productStock(t, db, p.ID))

	require.NoError(t, svc.DeleteOrder(context.Background(), ord.ID))
	assert.Equal(t, 7, productStock(t, db, p.ID))
}

func TestOrderStats(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)
	p := seedProduct(t, db, "Shirt", 100, 20, true)

	for i := 0; i < 3; i++ {
		_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
			CustomerEmail: "a@example.com",
			Total:         40,
			Items:         []LineItem{{ProductID: p.ID, Quantity: 2, Price: 20}},
		})
		require.NoError(t, err)
	}
	var first domain.Order
	require.NoError(t, db.Order("id ASC").First(&first).Error)
	_, err := svc.UpdateStatus(context.Background(), first.ID, domain.OrderStatusDelivered)
	require.NoError(t, err)

	st, err := svc.OrderStats(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 3, st.TotalOrders)
	assert.EqualValues(t, 2, st.PendingOrders)
	assert.EqualValues(t, 1, st.DeliveredOrders)
	assert.Equal(t, 40.0, st.TotalRevenue)
}
