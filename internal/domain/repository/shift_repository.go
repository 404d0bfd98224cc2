package repository

import (
	"context"
	"time"

	"github.com/finchpos/ledger-api/internal/domain/entity"
	"github.com/finchpos/ledger-api/pkg/pagination"
	"github.com/google/uuid"
)

// ShiftRepository defines the interface for shift data operations
type ShiftRepository interface {
	Create(ctx context.Context, shift *entity.Shift) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Shift, error)
	// GetOpen returns the single open shift for (branch, user), or nil
	GetOpen(ctx context.Context, branchID, userID uuid.UUID) (*entity.Shift, error)
	Update(ctx context.Context, shift *entity.Shift) error
	List(ctx context.Context, params *ShiftFilterParams) ([]entity.Shift, int64, error)
	// ListStale returns open shifts opened at or before the cutoff
	ListStale(ctx context.Context, openedBefore time.Time) ([]entity.Shift, error)
}

// ShiftFilterParams contains filtering parameters for shift queries
type ShiftFilterParams struct {
	Pagination *pagination.PaginationParams
	BranchID   *uuid.UUID
	UserID     *uuid.UUID
	Status     *int
	StartDate  *time.Time
	EndDate    *time.Time
}
