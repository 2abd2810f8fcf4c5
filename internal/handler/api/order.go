package api

import (
	"net/http"

	resdto "stockroom/internal/handler/dto/response"
	"stockroom/internal/pkg/errs"
	"stockroom/internal/usecase/commands"
	"stockroom/internal/usecase/queries"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	orders       commands.OrderCommands
	orderQueries queries.OrderQueries
}

func NewOrderHandler(orders commands.OrderCommands, orderQueries queries.OrderQueries) *OrderHandler {
	return &OrderHandler{
		orders:       orders,
		orderQueries: orderQueries,
	}
}

// Confirm is called by the payment collaborator, possibly more than once for
// the same order. A repeat on a settled order answers 200 with applied=false.
func (h *OrderHandler) Confirm(c *gin.Context) {
	orderID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.orders.ConfirmPayment(c.Request.Context(), orderID)
	if err != nil {
		h.respondFinalizeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromFinalizeResult(result))
}

func (h *OrderHandler) Cancel(c *gin.Context) {
	orderID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.orders.CancelOrder(c.Request.Context(), orderID)
	if err != nil {
		h.respondFinalizeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromFinalizeResult(result))
}

func (h *OrderHandler) Fulfilled(c *gin.Context) {
	orderID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.orders.MarkFulfilled(c.Request.Context(), orderID); err != nil {
		switch {
		case errors.Is(err, errs.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Order not found",
			})
		case errors.Is(err, errs.ErrOrderStateConflict):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Order is not paid",
			})
		default:
			respondInternal(c, err)
		}
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	orderID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	view, err := h.orderQueries.GetOrderStatus(c.Request.Context(), orderID)
	if err != nil {
		h.respondFinalizeError(c, err)
		return
	}

	response, err := resdto.FromOrderView(view)
	if err != nil {
		respondInternal(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *OrderHandler) GetSoldUnits(c *gin.Context) {
	orderID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	views, err := h.orderQueries.GetSoldUnitsForOrder(c.Request.Context(), orderID)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Order not found",
			})
		case errors.Is(err, errs.ErrOrderNotDeliverable):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Order is not paid yet",
			})
		default:
			respondInternal(c, err)
		}
		return
	}

	response, err := resdto.FromSoldUnitViews(views)
	if err != nil {
		respondInternal(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *OrderHandler) respondFinalizeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errs.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Order not found",
		})
	default:
		respondInternal(c, err)
	}
}
