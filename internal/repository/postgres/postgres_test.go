package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"lendtrack-backend/internal/repository"
)

func TestStore_WithinTx(t *testing.T) {
	ctx := context.Background()

	t.Run("Commits on success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("error opening mock database: %v", err)
		}
		defer db.Close()

		store := NewStore(db)

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE users SET trust_score").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err = store.WithinTx(ctx, func(repos repository.Repositories) error {
			return repos.Users().UpdateTrustScore(ctx, 2, 80)
		})
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Rolls back on error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("error opening mock database: %v", err)
		}
		defer db.Close()

		store := NewStore(db)

		mock.ExpectBegin()
		mock.ExpectRollback()

		boom := errors.New("penalty rejected")
		err = store.WithinTx(ctx, func(repos repository.Repositories) error {
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Serializable isolation requested", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("error opening mock database: %v", err)
		}
		defer db.Close()

		store := NewStore(db)

		mock.ExpectBegin()
		mock.ExpectCommit()

		err = store.WithinSerializableTx(ctx, func(repos repository.Repositories) error {
			return nil
		})
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
