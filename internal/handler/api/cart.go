package api

import (
	"net/http"

	reqdto "stockroom/internal/handler/dto/request"
	resdto "stockroom/internal/handler/dto/response"
	"stockroom/internal/handler/middleware"
	"stockroom/internal/pkg/errs"
	"stockroom/internal/usecase/commands"
	"stockroom/internal/usecase/queries"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CartHandler struct {
	reservations commands.ReservationCommands
	orders       commands.OrderCommands
	cartQueries  queries.CartQueries
}

func NewCartHandler(
	reservations commands.ReservationCommands,
	orders commands.OrderCommands,
	cartQueries queries.CartQueries,
) *CartHandler {
	return &CartHandler{
		reservations: reservations,
		orders:       orders,
		cartQueries:  cartQueries,
	}
}

func (h *CartHandler) Reserve(c *gin.Context) {
	cartID, ok := parseUUIDParam(c, "cartId")
	if !ok {
		return
	}

	var req reqdto.ReserveLineRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	ownerID, _ := middleware.GetOwnerID(c)

	result, err := h.reservations.Reserve(c.Request.Context(), cartID, req.ProductID, req.Quantity, ownerID)
	if err != nil {
		h.respondReserveError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resdto.FromReserveResult(result))
}

func (h *CartHandler) ChangeQuantity(c *gin.Context) {
	cartID, ok := parseUUIDParam(c, "cartId")
	if !ok {
		return
	}
	productID, ok := parseUUIDParam(c, "productId")
	if !ok {
		return
	}

	var req reqdto.ChangeQuantityRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	ownerID, _ := middleware.GetOwnerID(c)

	result, err := h.reservations.ChangeQuantity(c.Request.Context(), cartID, productID, *req.Quantity, ownerID)
	if err != nil {
		h.respondReserveError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromReserveResult(result))
}

func (h *CartHandler) Extend(c *gin.Context) {
	cartID, ok := parseUUIDParam(c, "cartId")
	if !ok {
		return
	}
	productID, ok := parseUUIDParam(c, "productId")
	if !ok {
		return
	}

	expiresAt, err := h.reservations.Extend(c.Request.Context(), cartID, productID)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrProductNotHeld):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "No active hold for this product",
			})
		case errors.Is(err, errs.ErrLineInPendingOrder):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Line is locked by a pending order",
			})
		default:
			respondInternal(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, resdto.ExtendResponse{ExpiresAt: expiresAt})
}

func (h *CartHandler) ReleaseLine(c *gin.Context) {
	cartID, ok := parseUUIDParam(c, "cartId")
	if !ok {
		return
	}
	productID, ok := parseUUIDParam(c, "productId")
	if !ok {
		return
	}

	if err := h.reservations.Release(c.Request.Context(), cartID, productID); err != nil {
		if errors.Is(err, errs.ErrLineInPendingOrder) {
			c.JSON(http.StatusConflict, gin.H{
				"error": "Line is locked by a pending order",
			})
			return
		}
		respondInternal(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *CartHandler) ClearCart(c *gin.Context) {
	cartID, ok := parseUUIDParam(c, "cartId")
	if !ok {
		return
	}

	if err := h.reservations.ClearCart(c.Request.Context(), cartID); err != nil {
		respondInternal(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *CartHandler) GetCart(c *gin.Context) {
	cartID, ok := parseUUIDParam(c, "cartId")
	if !ok {
		return
	}

	lines, err := h.cartQueries.Lines(c.Request.Context(), cartID)
	if err != nil {
		respondInternal(c, err)
		return
	}

	response := make([]*resdto.CartLineResponse, len(lines))
	for i, line := range lines {
		response[i] = resdto.FromCartLineView(line)
	}

	c.JSON(http.StatusOK, response)
}

func (h *CartHandler) Checkout(c *gin.Context) {
	cartID, ok := parseUUIDParam(c, "cartId")
	if !ok {
		return
	}

	ownerID, _ := middleware.GetOwnerID(c)

	result, err := h.orders.Checkout(c.Request.Context(), cartID, ownerID)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrCartEmpty):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": "Cart has no active holds",
			})
		case errors.Is(err, errs.ErrCartForbidden):
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Cart belongs to another owner",
			})
		case errors.Is(err, errs.ErrCartNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Cart not found",
			})
		case errors.Is(err, errs.ErrLineInPendingOrder):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Cart already has a pending order",
			})
		default:
			respondInternal(c, err)
		}
		return
	}

	c.JSON(http.StatusCreated, resdto.FromCheckoutResult(result))
}

func (h *CartHandler) respondReserveError(c *gin.Context, err error) {
	var insufficient *commands.InsufficientInventoryError
	switch {
	case errors.As(err, &insufficient):
		c.JSON(http.StatusConflict, gin.H{
			"error":     "Insufficient inventory",
			"available": insufficient.Available,
		})
	case errors.Is(err, errs.ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Quantity must be positive",
		})
	case errors.Is(err, errs.ErrProductNotHeld):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "No active hold for this product",
		})
	case errors.Is(err, errs.ErrLineInPendingOrder):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Line is locked by a pending order",
		})
	default:
		respondInternal(c, err)
	}
}

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid " + name + " format",
		})
		return uuid.Nil, false
	}
	return id, true
}
