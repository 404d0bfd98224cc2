package service

import (
	"context"
	"time"

	"github.com/finchpos/ledger-api/internal/domain/entity"
	"github.com/finchpos/ledger-api/internal/domain/enum"
	"github.com/finchpos/ledger-api/internal/domain/repository"
	infraRepo "github.com/finchpos/ledger-api/internal/infrastructure/repository"
	"github.com/finchpos/ledger-api/pkg/apperror"
	"github.com/finchpos/ledger-api/pkg/pagination"
	"github.com/finchpos/ledger-api/pkg/utils"
	"github.com/google/uuid"
)

// TransferService runs the inter-branch transfer workflow. Stock leaves the
// source branch at approval and enters the destination at receipt, so
// in-transit quantity is simply absent from both ledgers.
type TransferService struct {
	transferRepo repository.TransferRepository
	branchRepo   repository.BranchRepository
	productRepo  repository.ProductRepository
	userRepo     repository.UserRepository
	stockLedger  *StockLedgerService
	tx           repository.TxManager
	audit        *AuditService
}

// NewTransferService creates a new transfer service
func NewTransferService(
	transferRepo repository.TransferRepository,
	branchRepo repository.BranchRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	stockLedger *StockLedgerService,
	tx repository.TxManager,
	audit *AuditService,
) *TransferService {
	return &TransferService{
		transferRepo: transferRepo,
		branchRepo:   branchRepo,
		productRepo:  productRepo,
		userRepo:     userRepo,
		stockLedger:  stockLedger,
		tx:           tx,
		audit:        audit,
	}
}

// CreateTransferInput represents a transfer request
type CreateTransferInput struct {
	FromBranchID uuid.UUID
	ToBranchID   uuid.UUID
	ProductID    uuid.UUID
	Quantity     int
	Reason       string
	ActorUserID  uuid.UUID
}

// CreateTransfer opens a pending transfer. The availability check here is
// advisory only; the binding check happens at approval, when stock actually
// moves.
func (s *TransferService) CreateTransfer(ctx context.Context, input *CreateTransferInput) (*entity.InventoryTransfer, error) {
	tenantID, ok := infraRepo.GetTenantID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Tenant context required")
	}
	if input.Quantity <= 0 {
		return nil, apperror.NewBadRequestError("Transfer quantity must be positive")
	}
	if input.FromBranchID == input.ToBranchID {
		return nil, apperror.NewBadRequestError("Source and destination branches must differ")
	}

	for _, branchID := range []uuid.UUID{input.FromBranchID, input.ToBranchID} {
		branch, err := s.branchRepo.GetByID(ctx, branchID)
		if err != nil {
			return nil, err
		}
		if branch == nil {
			return nil, apperror.NewNotFoundError("Branch")
		}
	}
	product, err := s.productRepo.GetByID(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}

	available, err := s.stockLedger.CurrentBalance(ctx, input.FromBranchID, input.ProductID)
	if err != nil {
		return nil, err
	}
	if available < input.Quantity {
		return nil, &apperror.InsufficientStockError{
			ProductID: input.ProductID,
			Requested: input.Quantity,
			Available: available,
		}
	}

	transfer := &entity.InventoryTransfer{
		TenantID:       tenantID,
		TransferNumber: utils.GenerateReferenceNo("TRF"),
		FromBranchID:   input.FromBranchID,
		ToBranchID:     input.ToBranchID,
		ProductID:      input.ProductID,
		Quantity:       input.Quantity,
		Status:         enum.TransferStatusPending,
		Reason:         input.Reason,
		CreatedByID:    input.ActorUserID,
	}
	if err := s.transferRepo.Create(ctx, transfer); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, "transfer.create", "transfer", transfer.ID, nil, transfer, input.ActorUserID)
	return transfer, nil
}

// ApproveTransfer moves a pending transfer to Approved and deducts the
// quantity from the source branch. The deduction and the status change
// commit or roll back together.
func (s *TransferService) ApproveTransfer(ctx context.Context, transferID, approverUserID uuid.UUID) (*entity.InventoryTransfer, error) {
	approver, err := s.userRepo.GetByID(ctx, approverUserID)
	if err != nil {
		return nil, err
	}
	if approver == nil || !approver.IsAdmin() {
		return nil, apperror.ErrForbidden
	}

	var transfer *entity.InventoryTransfer
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		transfer, err = s.getTransferInState(ctx, transferID, "approve", enum.TransferStatusPending)
		if err != nil {
			return err
		}

		_, err = s.stockLedger.RecordMovement(ctx, &RecordStockMovementInput{
			BranchID:      transfer.FromBranchID,
			ProductID:     transfer.ProductID,
			Type:          enum.MovementTransferOut,
			Quantity:      transfer.Quantity,
			ReferenceType: enum.ReferenceTransfer,
			ReferenceID:   &transfer.ID,
			ActorUserID:   approverUserID,
		})
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		transfer.Status = enum.TransferStatusApproved
		transfer.ApprovedByID = &approverUserID
		transfer.ApprovedAt = &now
		return s.transferRepo.Update(ctx, transfer)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, "transfer.approve", "transfer", transfer.ID, nil, transfer, approverUserID)
	return transfer, nil
}

// ReceiveTransfer completes an approved transfer, crediting the quantity to
// the destination branch
func (s *TransferService) ReceiveTransfer(ctx context.Context, transferID, receiverUserID uuid.UUID) (*entity.InventoryTransfer, error) {
	var transfer *entity.InventoryTransfer
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		transfer, err = s.getTransferInState(ctx, transferID, "receive", enum.TransferStatusApproved)
		if err != nil {
			return err
		}

		_, err = s.stockLedger.RecordMovement(ctx, &RecordStockMovementInput{
			BranchID:      transfer.ToBranchID,
			ProductID:     transfer.ProductID,
			Type:          enum.MovementTransferIn,
			Quantity:      transfer.Quantity,
			ReferenceType: enum.ReferenceTransfer,
			ReferenceID:   &transfer.ID,
			ActorUserID:   receiverUserID,
		})
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		transfer.Status = enum.TransferStatusCompleted
		transfer.ReceivedByID = &receiverUserID
		transfer.ReceivedAt = &now
		return s.transferRepo.Update(ctx, transfer)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, "transfer.receive", "transfer", transfer.ID, nil, transfer, receiverUserID)
	return transfer, nil
}

// CancelTransfer cancels a pending or approved transfer. Cancelling after
// approval writes a compensating entry returning the quantity to the source
// branch, so the ledger shows the round trip rather than erasing it.
func (s *TransferService) CancelTransfer(ctx context.Context, transferID uuid.UUID, reason string, actorUserID uuid.UUID) (*entity.InventoryTransfer, error) {
	if reason == "" {
		return nil, apperror.NewBadRequestError("Cancellation reason is required")
	}

	var transfer *entity.InventoryTransfer
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		transfer, err = s.getTransferInState(ctx, transferID, "cancel",
			enum.TransferStatusPending, enum.TransferStatusApproved)
		if err != nil {
			return err
		}

		if transfer.Status == enum.TransferStatusApproved {
			_, err = s.stockLedger.RecordMovement(ctx, &RecordStockMovementInput{
				BranchID:      transfer.FromBranchID,
				ProductID:     transfer.ProductID,
				Type:          enum.MovementTransferIn,
				Quantity:      transfer.Quantity,
				ReferenceType: enum.ReferenceTransfer,
				ReferenceID:   &transfer.ID,
				Reason:        "transfer cancelled: " + reason,
				ActorUserID:   actorUserID,
			})
			if err != nil {
				return err
			}
		}

		now := time.Now().UTC()
		transfer.Status = enum.TransferStatusCancelled
		transfer.CancelledByID = &actorUserID
		transfer.CancelledAt = &now
		transfer.CancellationReason = reason
		return s.transferRepo.Update(ctx, transfer)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, "transfer.cancel", "transfer", transfer.ID, nil, transfer, actorUserID)
	return transfer, nil
}

// GetTransfer retrieves a transfer by ID
func (s *TransferService) GetTransfer(ctx context.Context, id uuid.UUID) (*entity.InventoryTransfer, error) {
	transfer, err := s.transferRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if transfer == nil {
		return nil, apperror.NewNotFoundError("Transfer")
	}
	return transfer, nil
}

// ListTransfers lists transfers with filtering
func (s *TransferService) ListTransfers(ctx context.Context, params *repository.TransferFilterParams) (*pagination.PaginatedResult[entity.InventoryTransfer], error) {
	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	transfers, total, err := s.transferRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(transfers, pag), nil
}

func (s *TransferService) getTransferInState(ctx context.Context, id uuid.UUID, operation string, allowed ...enum.TransferStatus) (*entity.InventoryTransfer, error) {
	transfer, err := s.transferRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if transfer == nil {
		return nil, apperror.NewNotFoundError("Transfer")
	}
	for _, status := range allowed {
		if transfer.Status == status {
			return transfer, nil
		}
	}
	return nil, &apperror.InvalidTransferStateError{
		TransferID: transfer.ID,
		Status:     transfer.Status.String(),
		Operation:  operation,
	}
}

