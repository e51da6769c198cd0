package ports

import (
	"context"

	"github.com/storefront/shop-api/internal/core/domain"
)

// AuditRepository persists authentication audit events.
type AuditRepository interface {
	InsertEvent(ctx context.Context, event *domain.AuthEvent) error
}

// AuditService processes a single audit event.
type AuditService interface {
	Process(ctx context.Context, event domain.AuthEvent) error
}

// AuditRecorder accepts events without blocking the request path.
type AuditRecorder interface {
	Record(event domain.AuthEvent)
}
