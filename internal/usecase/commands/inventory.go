package commands

import (
	"context"

	"stockroom/internal/pkg/errs"
	"stockroom/internal/usecase/shared"

	"github.com/google/uuid"
)

type ImportResult struct {
	UnitIDs []uuid.UUID
}

type InventoryCommands interface {
	// ImportUnits registers new sellable units for a product. Each payload is
	// the opaque per-unit content handed over at fulfilment (a key, a code).
	ImportUnits(ctx context.Context, productID uuid.UUID, payloads []string) (*ImportResult, error)
}

type inventoryCommandsImpl struct {
	uow   shared.UnitOfWork
	stock StockInvalidator
}

func NewInventoryCommands(uow shared.UnitOfWork, stock StockInvalidator) InventoryCommands {
	return &inventoryCommandsImpl{uow: uow, stock: stock}
}

func (c *inventoryCommandsImpl) ImportUnits(ctx context.Context, productID uuid.UUID, payloads []string) (*ImportResult, error) {
	if len(payloads) == 0 {
		return nil, errs.ErrInvalidQuantity
	}

	var ids []uuid.UUID
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		ids, err = tx.Units().InsertBatch(ctx, productID, payloads)
		return err
	})
	if err != nil {
		return nil, err
	}

	if c.stock != nil {
		c.stock.Invalidate(ctx, productID)
	}
	return &ImportResult{UnitIDs: ids}, nil
}
