package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"lendtrack-backend/internal/domain"
	"lendtrack-backend/internal/repository"
)

const reservationColumns = `id, item_id, user_id, status, start_date, end_date, actual_start_date, actual_end_date, pickup_confirmed, COALESCE(cancel_reason, ''), created_on, updated_on`

type reservationRepository struct {
	db querier
}

func NewReservationRepository(db *sql.DB) repository.ReservationRepository {
	return &reservationRepository{db: db}
}

func scanReservation(scan func(dest ...interface{}) error) (*domain.Reservation, error) {
	rsv := &domain.Reservation{}
	var createdOn, updatedOn time.Time
	err := scan(&rsv.ID, &rsv.ItemID, &rsv.UserID, &rsv.Status, &rsv.StartDate, &rsv.EndDate, &rsv.ActualStartDate, &rsv.ActualEndDate, &rsv.PickupConfirmed, &rsv.CancelReason, &createdOn, &updatedOn)
	if err != nil {
		return nil, err
	}
	rsv.CreatedOn = createdOn.Format("2006-01-02")
	rsv.UpdatedOn = updatedOn.Format("2006-01-02")
	return rsv, nil
}

func (r *reservationRepository) Create(ctx context.Context, rsv *domain.Reservation) error {
	query := `INSERT INTO reservations (item_id, user_id, status, start_date, end_date, pickup_confirmed, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	now := time.Now()
	return r.db.QueryRowContext(ctx, query, rsv.ItemID, rsv.UserID, rsv.Status, rsv.StartDate, rsv.EndDate, rsv.PickupConfirmed, now, now).Scan(&rsv.ID)
}

func (r *reservationRepository) GetByID(ctx context.Context, id int32) (*domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`
	rsv, err := scanReservation(r.db.QueryRowContext(ctx, query, id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Entity: domain.EntityTypeReservation, ID: id}
	}
	if err != nil {
		return nil, err
	}
	return rsv, nil
}

func (r *reservationRepository) Update(ctx context.Context, rsv *domain.Reservation) error {
	query := `UPDATE reservations SET status=$1, start_date=$2, end_date=$3, actual_start_date=$4, actual_end_date=$5, pickup_confirmed=$6, cancel_reason=$7, updated_on=$8 WHERE id=$9`
	res, err := r.db.ExecContext(ctx, query, rsv.Status, rsv.StartDate, rsv.EndDate, rsv.ActualStartDate, rsv.ActualEndDate, rsv.PickupConfirmed, rsv.CancelReason, time.Now(), rsv.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return &domain.NotFoundError{Entity: domain.EntityTypeReservation, ID: rsv.ID}
	}
	return nil
}

func (r *reservationRepository) Delete(ctx context.Context, id int32) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reservations WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return &domain.NotFoundError{Entity: domain.EntityTypeReservation, ID: id}
	}
	return nil
}

func (r *reservationRepository) ListByUser(ctx context.Context, userID int32, status string, page, pageSize int32) ([]domain.Reservation, int32, error) {
	offset := (page - 1) * pageSize
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE user_id = $1`

	args := []interface{}{userID}
	argIdx := 2
	if status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, status)
		argIdx++
	}

	var count int32
	countQuery := "SELECT count(*) FROM (" + query + ") as sub"
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(" ORDER BY created_on DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	reservations, err := collectReservations(rows)
	if err != nil {
		return nil, 0, err
	}
	return reservations, count, nil
}

func (r *reservationRepository) ListByItem(ctx context.Context, itemID int32, statuses []domain.ReservationStatus) ([]domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE item_id = $1`
	args := []interface{}{itemID}
	if len(statuses) > 0 {
		query += ` AND status = ANY($2)`
		args = append(args, pq.Array(statusStrings(statuses)))
	}
	query += ` ORDER BY start_date`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReservations(rows)
}

func (r *reservationRepository) ListOverlapping(ctx context.Context, itemID int32, start, end time.Time, statuses []domain.ReservationStatus, excludeID int32) ([]domain.Reservation, error) {
	// Closed-interval overlap: existing.start <= new.end AND existing.end >= new.start.
	query := `SELECT ` + reservationColumns + ` FROM reservations
	          WHERE item_id = $1 AND status = ANY($2) AND start_date <= $3 AND end_date >= $4 AND id <> $5
	          ORDER BY start_date`
	rows, err := r.db.QueryContext(ctx, query, itemID, pq.Array(statusStrings(statuses)), end, start, excludeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReservations(rows)
}

func (r *reservationRepository) ListOverdue(ctx context.Context, cutoff time.Time) ([]domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations r
	          WHERE r.status = 'ACTIVE' AND r.end_date < $1
	            AND NOT EXISTS (SELECT 1 FROM returns rt WHERE rt.reservation_id = r.id)
	          ORDER BY r.end_date`
	rows, err := r.db.QueryContext(ctx, query, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReservations(rows)
}

func (r *reservationRepository) CountActiveByItem(ctx context.Context, itemID int32) (int32, error) {
	var count int32
	err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM reservations WHERE item_id = $1 AND status = 'ACTIVE'`, itemID).Scan(&count)
	return count, err
}

func collectReservations(rows *sql.Rows) ([]domain.Reservation, error) {
	var reservations []domain.Reservation
	for rows.Next() {
		rsv, err := scanReservation(rows.Scan)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, *rsv)
	}
	return reservations, rows.Err()
}

func statusStrings(statuses []domain.ReservationStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
