/*
audit.go - Append-only audit trail

PURPOSE:
  Every mutating action (adjustment, employee creation, login) appends one
  immutable event: actor, action name, target, free-form detail payload.
  Entries are written once and never read back by the domain.

DURABILITY NOTE:
  The audit append runs after the primary effect with no compensating
  action. A failure here propagates to the caller, but the primary write
  stays applied - there is no rollback binding the two. Wrap both in a
  single store transaction if hard audit durability ever becomes a
  requirement.
*/
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AuditRecorder appends immutable audit events.
type AuditRecorder struct {
	store Store
	now   func() time.Time
}

// NewAuditRecorder creates a recorder over the given store.
func NewAuditRecorder(store Store) *AuditRecorder {
	return &AuditRecorder{store: store, now: time.Now}
}

// Record appends a single audit event.
func (a *AuditRecorder) Record(ctx context.Context, actorID, action, targetType, targetID string, details map[string]any) error {
	entry := AuditLog{
		ID:         uuid.NewString(),
		UserID:     actorID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Details:    details,
		Timestamp:  a.now().UTC(),
	}
	if err := a.store.AppendAudit(ctx, entry); err != nil {
		return fmt.Errorf("append audit: %w", err)
	}
	return nil
}
