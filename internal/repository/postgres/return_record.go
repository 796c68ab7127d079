package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"lendtrack-backend/internal/domain"
	"lendtrack-backend/internal/repository"
)

const returnColumns = `id, reservation_id, user_id, status, condition_at_loan, condition_on_return, return_date, penalty_applied, penalty_amount, COALESCE(penalty_reason, ''), COALESCE(damage_report, ''), COALESCE(rejection_reason, ''), COALESCE(staff_notes, ''), auto_initiated, processed_by, created_on, updated_on`

type returnRepository struct {
	db querier
}

func NewReturnRepository(db *sql.DB) repository.ReturnRepository {
	return &returnRepository{db: db}
}

func scanReturn(scan func(dest ...interface{}) error) (*domain.ReturnRecord, error) {
	ret := &domain.ReturnRecord{}
	var createdOn, updatedOn time.Time
	err := scan(&ret.ID, &ret.ReservationID, &ret.UserID, &ret.Status, &ret.ConditionAtLoan, &ret.ConditionOnReturn, &ret.ReturnDate, &ret.PenaltyApplied, &ret.PenaltyAmount, &ret.PenaltyReason, &ret.DamageReport, &ret.RejectionReason, &ret.StaffNotes, &ret.AutoInitiated, &ret.ProcessedBy, &createdOn, &updatedOn)
	if err != nil {
		return nil, err
	}
	ret.CreatedOn = createdOn.Format("2006-01-02")
	ret.UpdatedOn = updatedOn.Format("2006-01-02")
	return ret, nil
}

func (r *returnRepository) Create(ctx context.Context, ret *domain.ReturnRecord) error {
	query := `INSERT INTO returns (reservation_id, user_id, status, condition_at_loan, condition_on_return, return_date, penalty_applied, penalty_amount, penalty_reason, damage_report, auto_initiated, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13) RETURNING id`
	now := time.Now()
	return r.db.QueryRowContext(ctx, query, ret.ReservationID, ret.UserID, ret.Status, ret.ConditionAtLoan, ret.ConditionOnReturn, ret.ReturnDate, ret.PenaltyApplied, ret.PenaltyAmount, ret.PenaltyReason, ret.DamageReport, ret.AutoInitiated, now, now).Scan(&ret.ID)
}

func (r *returnRepository) GetByID(ctx context.Context, id int32) (*domain.ReturnRecord, error) {
	query := `SELECT ` + returnColumns + ` FROM returns WHERE id = $1`
	ret, err := scanReturn(r.db.QueryRowContext(ctx, query, id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Entity: domain.EntityTypeReturn, ID: id}
	}
	if err != nil {
		return nil, err
	}
	return ret, nil
}

func (r *returnRepository) GetByReservationID(ctx context.Context, reservationID int32) (*domain.ReturnRecord, error) {
	query := `SELECT ` + returnColumns + ` FROM returns WHERE reservation_id = $1`
	ret, err := scanReturn(r.db.QueryRowContext(ctx, query, reservationID).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Entity: domain.EntityTypeReturn, ID: reservationID}
	}
	if err != nil {
		return nil, err
	}
	return ret, nil
}

func (r *returnRepository) Update(ctx context.Context, ret *domain.ReturnRecord) error {
	query := `UPDATE returns SET status=$1, condition_on_return=$2, penalty_applied=$3, penalty_amount=$4, penalty_reason=$5, damage_report=$6, rejection_reason=$7, staff_notes=$8, processed_by=$9, updated_on=$10 WHERE id=$11`
	res, err := r.db.ExecContext(ctx, query, ret.Status, ret.ConditionOnReturn, ret.PenaltyApplied, ret.PenaltyAmount, ret.PenaltyReason, ret.DamageReport, ret.RejectionReason, ret.StaffNotes, ret.ProcessedBy, time.Now(), ret.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return &domain.NotFoundError{Entity: domain.EntityTypeReturn, ID: ret.ID}
	}
	return nil
}
