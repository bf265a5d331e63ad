// Package order implements the checkout and order-lifecycle flows. Every
// multi-step mutation (create, status transition with restock, deletion with
// restock) runs inside a single database transaction so stock and order rows
// can never diverge.
package order

import (
	"context"
	"errors"
	"time"

	"github.com/asaskevich/EventBus"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/NataPeralta/Store/internal/domain"
)

// Event names published on the bus.
const (
	EventOrderCreated   = "order:created"
	EventOrderCancelled = "order:cancelled"
)

// LineItem is one client-submitted cart entry. Price is the unit price the
// client saw; it is captured on the order item as-is.
type LineItem struct {
	ProductID int64   `json:"productId"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

// CreateOrderInput is the checkout request.
type CreateOrderInput struct {
	CustomerName     string
	CustomerLastname string
	CustomerEmail    string
	Total            float64
	Items            []LineItem
}

// Service coordinates order persistence and the stock side effects.
type Service struct {
	db  *gorm.DB
	bus EventBus.Bus
}

// NewService creates an order service. bus may be nil when no subscribers
// are wired (tests).
func NewService(db *gorm.DB, bus EventBus.Bus) *Service {
	return &Service{db: db, bus: bus}
}

// CreateOrder converts a submitted cart into a persisted order. Every line
// item is re-validated against the current persisted state under row locks;
// if any item fails, the whole request is rejected with an aggregated
// *ValidationError and nothing is persisted. On success the order, its items
// and the per-product stock decrements commit atomically.
func (s *Service) CreateOrder(ctx context.Context, in CreateOrderInput) (*domain.Order, error) {
	if len(in.Items) == 0 {
		return nil, ErrEmptyOrder
	}

	ord := &domain.Order{
		CustomerName:     in.CustomerName,
		CustomerLastname: in.CustomerLastname,
		CustomerEmail:    in.CustomerEmail,
		Total:            in.Total,
		Status:           domain.OrderStatusPending,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var problems []ItemProblem
		for _, item := range in.Items {
			var p domain.Product
			err := lockForUpdate(tx).
				Where("id = ?", item.ProductID).First(&p).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				problems = append(problems, ItemProblem{ProductID: item.ProductID, Reason: ReasonNotExists})
				continue
			case err != nil:
				return err
			}
			if !p.Active {
				problems = append(problems, ItemProblem{
					ProductID: p.ID, ProductName: p.Name, Reason: ReasonInactive,
				})
				continue
			}
			if p.Stock < item.Quantity {
				problems = append(problems, ItemProblem{
					ProductID: p.ID, ProductName: p.Name, Reason: ReasonInsufficientStock,
					Available: p.Stock, Requested: item.Quantity,
				})
			}
		}
		if len(problems) > 0 {
			return &ValidationError{Problems: problems}
		}

		for _, item := range in.Items {
			ord.Items = append(ord.Items, domain.OrderItem{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				Price:     item.Price,
			})
		}
		if err := tx.Create(ord).Error; err != nil {
			return err
		}

		// Decrements are applied in submission order. The stock >= qty guard
		// is the oversell backstop should the driver not honor row locks.
		for _, item := range in.Items {
			if err := decrementStock(tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("order created",
		zap.Int64("order_id", ord.ID),
		zap.String("customer", ord.CustomerEmail),
		zap.Float64("total", ord.Total),
		zap.Int("items", len(ord.Items)))
	if s.bus != nil {
		s.bus.Publish(EventOrderCreated, ord.ID, ord.Total)
	}
	return ord, nil
}

// UpdateStatus transitions an order between statuses. Entering cancelled
// restores the stock consumed by the order's items; leaving cancelled
// re-decrements it. Both sides run in the same transaction as the status
// write, so a failed restock leaves the status untouched.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status string) (*domain.Order, error) {
	if !domain.ValidOrderStatus(status) {
		return nil, ErrInvalidStatus
	}

	var ord domain.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items").Where("id = ?", id).First(&ord).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		previous := ord.Status

		if status == domain.OrderStatusCancelled && previous != domain.OrderStatusCancelled {
			for _, item := range ord.Items {
				if err := restoreStock(tx, item.ProductID, item.Quantity); err != nil {
					return err
				}
			}
		}
		if previous == domain.OrderStatusCancelled && status != domain.OrderStatusCancelled {
			for _, item := range ord.Items {
				if err := decrementStock(tx, item.ProductID, item.Quantity); err != nil {
					return err
				}
			}
		}

		ord.Status = status
		ord.UpdatedAt = time.Now()
		return tx.Model(&domain.Order{}).Where("id = ?", id).
			Updates(map[string]interface{}{"status": status, "updated_at": ord.UpdatedAt}).Error
	})
	if err != nil {
		return nil, err
	}

	if status == domain.OrderStatusCancelled {
		zap.L().Info("order cancelled, stock restored", zap.Int64("order_id", id))
		if s.bus != nil {
			s.bus.Publish(EventOrderCancelled, id, ord.Total)
		}
	}
	return &ord, nil
}

// DeleteOrder restores stock for all the order's items regardless of the
// order's status, then removes the order and its items, all in one
// transaction.
func (s *Service) DeleteOrder(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ord domain.Order
		if err := tx.Preload("Items").Where("id = ?", id).First(&ord).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		for _, item := range ord.Items {
			if err := restoreStock(tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		if err := tx.Where("order_id = ?", id).Delete(&domain.OrderItem{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&domain.Order{}).Error
	})
}

// GetOrder returns one order with its items and product previews.
func (s *Service) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	var ord domain.Order
	err := s.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Product").
		Preload("Items.Product.Images").
		Preload("Items.Product.Images.Gallery").
		Where("id = ?", id).First(&ord).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ord, nil
}

// ListOrders returns a page of orders, newest first, with item preloads.
func (s *Service) ListOrders(ctx context.Context, page, pageSize int) ([]domain.Order, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&domain.Order{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var orders []domain.Order
	err := s.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Product").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&orders).Error
	return orders, total, err
}

// Stats summarises order counts per status and delivered revenue.
type Stats struct {
	TotalOrders      int64   `json:"totalOrders"`
	PendingOrders    int64   `json:"pendingOrders"`
	ProcessingOrders int64   `json:"processingOrders"`
	ShippedOrders    int64   `json:"shippedOrders"`
	DeliveredOrders  int64   `json:"deliveredOrders"`
	CancelledOrders  int64   `json:"cancelledOrders"`
	TotalRevenue     float64 `json:"totalRevenue"`
}

// OrderStats aggregates order counts and delivered revenue.
func (s *Service) OrderStats(ctx context.Context) (*Stats, error) {
	db := s.db.WithContext(ctx)
	var st Stats
	if err := db.Model(&domain.Order{}).Count(&st.TotalOrders).Error; err != nil {
		return nil, err
	}
	byStatus := map[string]*int64{
		domain.OrderStatusPending:    &st.PendingOrders,
		domain.OrderStatusProcessing: &st.ProcessingOrders,
		domain.OrderStatusShipped:    &st.ShippedOrders,
		domain.OrderStatusDelivered:  &st.DeliveredOrders,
		domain.OrderStatusCancelled:  &st.CancelledOrders,
	}
	for status, dst := range byStatus {
		if err := db.Model(&domain.Order{}).Where("status = ?", status).Count(dst).Error; err != nil {
			return nil, err
		}
	}
	var revenue *float64
	if err := db.Model(&domain.Order{}).
		Where("status = ?", domain.OrderStatusDelivered).
		Select("SUM(total)").Scan(&revenue).Error; err != nil {
		return nil, err
	}
	if revenue != nil {
		st.TotalRevenue = *revenue
	}
	return &st, nil
}

// lockForUpdate adds a row lock on drivers that support it. SQLite has no
// FOR UPDATE; its single-writer transactions give the same guarantee.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// decrementStock subtracts qty from the product's stock, guarded so the
// counter can never go negative. Zero rows affected means another writer
// consumed the stock first.
func decrementStock(tx *gorm.DB, productID int64, qty int) error {
	res := tx.Model(&domain.Product{}).
		Where("id = ? AND stock >= ?", productID, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var p domain.Product
		problem := ItemProblem{ProductID: productID, Reason: ReasonInsufficientStock, Requested: qty}
		if err := tx.Where("id = ?", productID).First(&p).Error; err == nil {
			problem.ProductName = p.Name
			problem.Available = p.Stock
		}
		return &ValidationError{Problems: []ItemProblem{problem}}
	}
	return nil
}

func restoreStock(tx *gorm.DB, productID int64, qty int) error {
	return tx.Model(&domain.Product{}).
		Where("id = ?", productID).
		UpdateColumn("stock", gorm.Expr("stock + ?", qty)).Error
}
