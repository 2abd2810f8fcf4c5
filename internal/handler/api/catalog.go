package api

import (
	"net/http"

	reqdto "stockroom/internal/handler/dto/request"
	resdto "stockroom/internal/handler/dto/response"
	"stockroom/internal/usecase/commands"
	"stockroom/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	inventory        commands.InventoryCommands
	inventoryQueries queries.InventoryQueries
}

func NewCatalogHandler(inventory commands.InventoryCommands, inventoryQueries queries.InventoryQueries) *CatalogHandler {
	return &CatalogHandler{
		inventory:        inventory,
		inventoryQueries: inventoryQueries,
	}
}

// GetAvailable serves the stock badge. The count may be a couple of seconds
// stale; reserve is the only authority on whether units are actually there.
func (h *CatalogHandler) GetAvailable(c *gin.Context) {
	productID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	available, err := h.inventoryQueries.AvailableCount(c.Request.Context(), productID)
	if err != nil {
		respondInternal(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.AvailableCountResponse{
		ProductID: productID,
		Available: available,
	})
}

func (h *CatalogHandler) ImportUnits(c *gin.Context) {
	productID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req reqdto.ImportUnitsRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	result, err := h.inventory.ImportUnits(c.Request.Context(), productID, req.Payloads)
	if err != nil {
		respondInternal(c, err)
		return
	}

	c.JSON(http.StatusCreated, resdto.FromImportResult(result))
}
