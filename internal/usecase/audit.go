package usecase

import (
	"context"
	"time"

	"github.com/mymoolah/walletcore/internal/domain"
)

type auditRecord struct {
	action       domain.AuditAction
	resourceType string
	resourceID   string
	before       any
	after        any
	status       domain.AuditStatus
	errMessage   string
}

// writeAudit records an audit log inside tx. A nil repository disables auditing.
func writeAudit(ctx context.Context, tx Transaction, repo AuditRepository, idGen IDGenerator, r auditRecord) error {
	if repo == nil {
		return nil
	}

	status := r.status
	if status == "" {
		status = domain.AuditStatusSuccess
	}

	log := &domain.AuditLog{
		ID:           idGen.Generate(),
		UserID:       domain.ActorFromContext(ctx),
		Action:       string(r.action),
		ResourceType: r.resourceType,
		ResourceID:   r.resourceID,
		RequestID:    domain.RequestIDFromContext(ctx),
		BeforeState:  domain.MarshalState(r.before),
		AfterState:   domain.MarshalState(r.after),
		Status:       string(status),
		ErrorMessage: r.errMessage,
		CreatedAt:    time.Now().UTC(),
	}
	return repo.CreateTx(ctx, tx, log)
}
