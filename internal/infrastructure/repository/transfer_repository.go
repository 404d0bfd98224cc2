package repository

import (
	"context"
	"errors"

	"github.com/finchpos/ledger-api/internal/domain/entity"
	domainRepo "github.com/finchpos/ledger-api/internal/domain/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type transferRepository struct {
	db *gorm.DB
}

// NewTransferRepository creates a new transfer repository
func NewTransferRepository(db *gorm.DB) domainRepo.TransferRepository {
	return &transferRepository{db: db}
}

func (r *transferRepository) Create(ctx context.Context, transfer *entity.InventoryTransfer) error {
	return conn(ctx, r.db).WithContext(ctx).Create(transfer).Error
}

func (r *transferRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.InventoryTransfer, error) {
	var transfer entity.InventoryTransfer
	err := conn(ctx, r.db).WithContext(ctx).
		Scopes(TenantScope(ctx)).
		First(&transfer, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &transfer, nil
}

func (r *transferRepository) Update(ctx context.Context, transfer *entity.InventoryTransfer) error {
	return conn(ctx, r.db).WithContext(ctx).Save(transfer).Error
}

func (r *transferRepository) List(ctx context.Context, params *domainRepo.TransferFilterParams) ([]entity.InventoryTransfer, int64, error) {
	var transfers []entity.InventoryTransfer
	var total int64

	query := conn(ctx, r.db).WithContext(ctx).
		Model(&entity.InventoryTransfer{}).
		Scopes(TenantScope(ctx))

	if params.FromBranchID != nil {
		query = query.Where("from_branch_id = ?", *params.FromBranchID)
	}
	if params.ToBranchID != nil {
		query = query.Where("to_branch_id = ?", *params.ToBranchID)
	}
	if params.ProductID != nil {
		query = query.Where("product_id = ?", *params.ProductID)
	}
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Order("created_at DESC").
		Find(&transfers).Error

	return transfers, total, err
}
