package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"lendtrack-backend/internal/domain"
	"lendtrack-backend/internal/repository"
)

type auditRepository struct {
	db querier
}

func NewAuditRepository(db *sql.DB) repository.AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Create(ctx context.Context, entry *domain.AuditEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	payload, err := entry.MarshalPayload()
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}
	query := `INSERT INTO audit_log (id, action, entity_type, entity_id, actor_id, actor_role, changes, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err = r.db.ExecContext(ctx, query, entry.ID, entry.Action, entry.EntityType, entry.EntityID, entry.ActorID, entry.ActorRole, payload, time.Now())
	return err
}
