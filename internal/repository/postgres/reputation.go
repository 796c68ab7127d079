package postgres

import (
	"context"
	"database/sql"

	"lendtrack-backend/internal/domain"
	"lendtrack-backend/internal/repository"
)

type reputationRepository struct {
	db querier
}

func NewReputationRepository(db *sql.DB) repository.ReputationRepository {
	return &reputationRepository{db: db}
}

func (r *reputationRepository) Append(ctx context.Context, entry *domain.ReputationEntry) error {
	query := `INSERT INTO reputation_history (user_id, change, reason, previous_score, new_score, created_on)
	          VALUES ($1, $2, $3, $4, $5, NOW()) RETURNING id, created_on`
	return r.db.QueryRowContext(ctx, query, entry.UserID, entry.Change, entry.Reason, entry.PreviousScore, entry.NewScore).Scan(&entry.ID, &entry.CreatedOn)
}

func (r *reputationRepository) ListByUser(ctx context.Context, userID int32, page, pageSize int32) ([]domain.ReputationEntry, int32, error) {
	offset := (page - 1) * pageSize

	var count int32
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM reputation_history WHERE user_id = $1`, userID).Scan(&count); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, user_id, change, reason, previous_score, new_score, created_on
	          FROM reputation_history WHERE user_id = $1 ORDER BY created_on DESC, id DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, userID, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var entries []domain.ReputationEntry
	for rows.Next() {
		var e domain.ReputationEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Change, &e.Reason, &e.PreviousScore, &e.NewScore, &e.CreatedOn); err != nil {
			return nil, 0, err
		}
		entries = append(entries, e)
	}
	return entries, count, rows.Err()
}

func (r *reputationRepository) GetSummary(ctx context.Context, userID int32) (*domain.ReputationSummary, error) {
	summary := &domain.ReputationSummary{
		UserID:   userID,
		ByReason: make(map[string]int32),
	}

	err := r.db.QueryRowContext(ctx, `SELECT trust_score FROM users WHERE id = $1`, userID).Scan(&summary.CurrentScore)
	if err == sql.ErrNoRows {
		return nil, &domain.NotFoundError{Entity: domain.EntityTypeUser, ID: userID}
	}
	if err != nil {
		return nil, err
	}

	query := `SELECT reason, count(*), SUM(change) FROM reputation_history WHERE user_id = $1 GROUP BY reason`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var reason string
		var count, total int32
		if err := rows.Scan(&reason, &count, &total); err != nil {
			return nil, err
		}
		summary.EntryCount += count
		summary.ByReason[reason] = total
		if total < 0 {
			summary.TotalPenalty += -total
		} else {
			summary.TotalCredit += total
		}
	}
	return summary, rows.Err()
}
