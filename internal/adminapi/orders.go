package adminapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/NataPeralta/Store/internal/order"
	"github.com/NataPeralta/Store/internal/webserver"
)

type orderStatusPayload struct {
	Status string `json:"status" validate:"required"`
}

func registerOrderRoutes() {
	webserver.ApiGET("/orders", listAdminOrders)
	webserver.ApiGET("/orders/:id", getAdminOrder)
	webserver.ApiPUT("/orders/:id/status", updateOrderStatus)
	webserver.ApiDELETE("/orders/:id", deleteAdminOrder)
}

func listAdminOrders(c echo.Context) error {
	page, pageSize := parsePagination(c)
	orders, total, err := orderSvc.ListOrders(c.Request().Context(), page, pageSize)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query orders", err.Error())
	}
	return paged(c, orders, total, page, pageSize)
}

func getAdminOrder(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}
	ord, err := orderSvc.GetOrder(c.Request().Context(), id)
	if errors.Is(err, order.ErrOrderNotFound) {
		return fail(c, http.StatusNotFound, "ORDER_NOT_FOUND", "Order not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query order", err.Error())
	}
	return ok(c, ord)
}

func updateOrderStatus(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}
	var payload orderStatusPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse status", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	ord, err := orderSvc.UpdateStatus(c.Request().Context(), id, payload.Status)
	switch {
	case errors.Is(err, order.ErrInvalidStatus):
		return fail(c, http.StatusBadRequest, "INVALID_STATUS", "Unknown order status", payload.Status)
	case errors.Is(err, order.ErrOrderNotFound):
		return fail(c, http.StatusNotFound, "ORDER_NOT_FOUND", "Order not found", nil)
	case err != nil:
		// Re-activating a cancelled order can fail when the stock it needs
		// has been sold in the meantime.
		if verr := order.AsValidationError(err); verr != nil {
			return fail(c, http.StatusBadRequest, "STOCK_VALIDATION_FAILED", verr.Error(), verr.Problems)
		}
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update order", err.Error())
	}
	return ok(c, ord)
}

func deleteAdminOrder(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}
	err = orderSvc.DeleteOrder(c.Request().Context(), id)
	if errors.Is(err, order.ErrOrderNotFound) {
		return fail(c, http.StatusNotFound, "ORDER_NOT_FOUND", "Order not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete order", err.Error())
	}
	return ok(c, map[string]interface{}{"id": id})
}
