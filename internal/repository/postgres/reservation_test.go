package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"lendtrack-backend/internal/domain"
)

func reservationRows(rsv *domain.Reservation) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "item_id", "user_id", "status", "start_date", "end_date",
		"actual_start_date", "actual_end_date", "pickup_confirmed", "cancel_reason",
		"created_on", "updated_on",
	}).AddRow(rsv.ID, rsv.ItemID, rsv.UserID, rsv.Status, rsv.StartDate, rsv.EndDate,
		rsv.ActualStartDate, rsv.ActualEndDate, rsv.PickupConfirmed, rsv.CancelReason, now, now)
}

func TestReservationRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewReservationRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		rsv := &domain.Reservation{
			ItemID:    1,
			UserID:    2,
			Status:    domain.ReservationStatusPending,
			StartDate: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2025, 7, 4, 0, 0, 0, 0, time.UTC),
		}

		mock.ExpectQuery("INSERT INTO reservations").
			WithArgs(rsv.ItemID, rsv.UserID, rsv.Status, rsv.StartDate, rsv.EndDate, rsv.PickupConfirmed, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(10))

		err := repo.Create(ctx, rsv)
		assert.NoError(t, err)
		assert.Equal(t, int32(10), rsv.ID)
	})
}

func TestReservationRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewReservationRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		rsv := &domain.Reservation{
			ID:        10,
			ItemID:    1,
			UserID:    2,
			Status:    domain.ReservationStatusApproved,
			StartDate: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2025, 7, 4, 0, 0, 0, 0, time.UTC),
		}

		mock.ExpectQuery("SELECT (.+) FROM reservations WHERE id").
			WithArgs(int32(10)).
			WillReturnRows(reservationRows(rsv))

		got, err := repo.GetByID(ctx, 10)
		assert.NoError(t, err)
		assert.Equal(t, domain.ReservationStatusApproved, got.Status)
		assert.Nil(t, got.ActualStartDate)
	})

	t.Run("Not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM reservations WHERE id").
			WithArgs(int32(99)).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByID(ctx, 99)
		assert.True(t, domain.IsNotFound(err))
	})
}

func TestReservationRepository_ListOverlapping(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewReservationRepository(db)
	ctx := context.Background()

	start := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 7, 4, 0, 0, 0, 0, time.UTC)
	statuses := []domain.ReservationStatus{domain.ReservationStatusApproved, domain.ReservationStatusActive}

	t.Run("Finds touching range", func(t *testing.T) {
		existing := &domain.Reservation{ID: 7, ItemID: 1, UserID: 3, Status: domain.ReservationStatusApproved, StartDate: end, EndDate: end.Add(48 * time.Hour)}

		mock.ExpectQuery("SELECT (.+) FROM reservations\\s+WHERE item_id = \\$1 AND status = ANY\\(\\$2\\) AND start_date <= \\$3 AND end_date >= \\$4 AND id <> \\$5").
			WithArgs(int32(1), sqlmock.AnyArg(), end, start, int32(0)).
			WillReturnRows(reservationRows(existing))

		got, err := repo.ListOverlapping(ctx, 1, start, end, statuses, 0)
		assert.NoError(t, err)
		assert.Len(t, got, 1)
		assert.Equal(t, int32(7), got[0].ID)
	})
}

func TestReservationRepository_ListOverdue(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewReservationRepository(db)
	ctx := context.Background()

	t.Run("Excludes reservations with a return", func(t *testing.T) {
		cutoff := time.Date(2025, 7, 20, 0, 0, 0, 0, time.UTC)
		overdue := &domain.Reservation{ID: 10, ItemID: 1, UserID: 2, Status: domain.ReservationStatusActive, EndDate: cutoff.Add(-5 * 24 * time.Hour)}

		mock.ExpectQuery("SELECT (.+) FROM reservations r\\s+WHERE r.status = 'ACTIVE' AND r.end_date < \\$1\\s+AND NOT EXISTS").
			WithArgs(cutoff).
			WillReturnRows(reservationRows(overdue))

		got, err := repo.ListOverdue(ctx, cutoff)
		assert.NoError(t, err)
		assert.Len(t, got, 1)
	})
}

func TestReservationRepository_CountActiveByItem(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewReservationRepository(db)
	ctx := context.Background()

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM reservations WHERE item_id = \\$1 AND status = 'ACTIVE'").
		WithArgs(int32(1)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	count, err := repo.CountActiveByItem(ctx, 1)
	assert.NoError(t, err)
	assert.Equal(t, int32(2), count)
}

func TestReservationRepository_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewReservationRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		rsv := &domain.Reservation{ID: 10, Status: domain.ReservationStatusCancelled, CancelReason: "changed plans"}

		mock.ExpectExec("UPDATE reservations SET").
			WithArgs(rsv.Status, rsv.StartDate, rsv.EndDate, rsv.ActualStartDate, rsv.ActualEndDate, rsv.PickupConfirmed, rsv.CancelReason, sqlmock.AnyArg(), rsv.ID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Update(ctx, rsv))
	})

	t.Run("Missing row maps to not found", func(t *testing.T) {
		rsv := &domain.Reservation{ID: 99}

		mock.ExpectExec("UPDATE reservations SET").
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.True(t, domain.IsNotFound(repo.Update(ctx, rsv)))
	})
}
