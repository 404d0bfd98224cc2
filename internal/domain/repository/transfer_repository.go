package repository

import (
	"context"

	"github.com/finchpos/ledger-api/internal/domain/entity"
	"github.com/finchpos/ledger-api/pkg/pagination"
	"github.com/google/uuid"
)

// TransferRepository defines the interface for inventory transfer data
// operations
type TransferRepository interface {
	Create(ctx context.Context, transfer *entity.InventoryTransfer) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.InventoryTransfer, error)
	Update(ctx context.Context, transfer *entity.InventoryTransfer) error
	List(ctx context.Context, params *TransferFilterParams) ([]entity.InventoryTransfer, int64, error)
}

// TransferFilterParams contains filtering parameters for transfer queries
type TransferFilterParams struct {
	Pagination   *pagination.PaginationParams
	FromBranchID *uuid.UUID
	ToBranchID   *uuid.UUID
	ProductID    *uuid.UUID
	Status       *int
}
