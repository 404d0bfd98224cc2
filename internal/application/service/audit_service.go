package service

import (
	"context"
	"encoding/json"
	"log"

	"github.com/finchpos/ledger-api/internal/domain/entity"
	"github.com/finchpos/ledger-api/internal/domain/repository"
	infraRepo "github.com/finchpos/ledger-api/internal/infrastructure/repository"
	"github.com/google/uuid"
)

// AuditService records workflow state changes after they commit. Failures
// are logged and swallowed: an audit write must never undo a ledger write.
type AuditService struct {
	auditRepo repository.AuditLogRepository
}

// NewAuditService creates a new audit service
func NewAuditService(auditRepo repository.AuditLogRepository) *AuditService {
	return &AuditService{auditRepo: auditRepo}
}

// Record writes one audit entry on the base connection. oldValues and
// newValues are marshalled as JSON snapshots; either may be nil.
func (s *AuditService) Record(ctx context.Context, action, entityType string, entityID uuid.UUID, oldValues, newValues any, actorUserID uuid.UUID) {
	if s == nil || s.auditRepo == nil {
		return
	}
	tenantID, ok := infraRepo.GetTenantID(ctx)
	if !ok {
		return
	}

	entry := &entity.AuditLog{
		TenantID:    tenantID,
		Action:      action,
		EntityType:  entityType,
		EntityID:    entityID,
		ActorUserID: actorUserID,
	}
	if oldValues != nil {
		if b, err := json.Marshal(oldValues); err == nil {
			entry.OldValues = b
		}
	}
	if newValues != nil {
		if b, err := json.Marshal(newValues); err == nil {
			entry.NewValues = b
		}
	}

	if err := s.auditRepo.Create(ctx, entry); err != nil {
		log.Printf("audit write failed for %s %s: %v", action, entityID, err)
	}
}
