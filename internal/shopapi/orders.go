package shopapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/NataPeralta/Store/internal/order"
)

type checkoutPayload struct {
	Name     string           `json:"name" validate:"required,min=1,max=200"`
	Lastname string           `json:"lastname"`
	Email    string           `json:"email" validate:"required,email"`
	Total    float64          `json:"total"`
	Items    []order.LineItem `json:"items" validate:"required,min=1,dive"`
}

// createOrder is the checkout endpoint. Stock is re-validated server side;
// a rejected cart comes back as one 400 naming every failing item.
func createOrder(c echo.Context) error {
	var payload checkoutPayload
	if err := c.Bind(&payload); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Unable to parse order"})
	}
	if err := c.Validate(&payload); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Name, email and at least one item are required"})
	}
	for _, item := range payload.Items {
		if item.ProductID <= 0 || item.Quantity <= 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Every item needs a product and a positive quantity"})
		}
	}

	ord, err := orderSvc.CreateOrder(c.Request().Context(), order.CreateOrderInput{
		CustomerName:     strings.TrimSpace(payload.Name),
		CustomerLastname: strings.TrimSpace(payload.Lastname),
		CustomerEmail:    strings.ToLower(strings.TrimSpace(payload.Email)),
		Total:            payload.Total,
		Items:            payload.Items,
	})
	if err != nil {
		if errors.Is(err, order.ErrEmptyOrder) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Order has no items"})
		}
		if verr := order.AsValidationError(err); verr != nil {
			return c.JSON(http.StatusBadRequest, map[string]interface{}{
				"error": verr.Error(),
				"items": verr.Problems,
			})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create order"})
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"orderId": ord.ID,
		"message": "Order created",
	})
}
