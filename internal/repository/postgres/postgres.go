package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"lendtrack-backend/internal/repository"

	_ "github.com/lib/pq"
)

// querier is satisfied by both *sql.DB and *sql.Tx so every repository can run
// either against the base connection or inside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type repos struct {
	items       repository.ItemRepository
	reservations repository.ReservationRepository
	returns     repository.ReturnRepository
	users       repository.UserRepository
	reputation  repository.ReputationRepository
	audit       repository.AuditRepository
}

func newRepos(q querier) *repos {
	return &repos{
		items:        &itemRepository{db: q},
		reservations: &reservationRepository{db: q},
		returns:      &returnRepository{db: q},
		users:        &userRepository{db: q},
		reputation:   &reputationRepository{db: q},
		audit:        &auditRepository{db: q},
	}
}

func (r *repos) Items() repository.ItemRepository               { return r.items }
func (r *repos) Reservations() repository.ReservationRepository { return r.reservations }
func (r *repos) Returns() repository.ReturnRepository           { return r.returns }
func (r *repos) Users() repository.UserRepository               { return r.users }
func (r *repos) Reputation() repository.ReputationRepository    { return r.reputation }
func (r *repos) Audit() repository.AuditRepository              { return r.audit }

type Store struct {
	db *sql.DB
	*repos
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db, repos: newRepos(db)}
}

func (s *Store) WithinTx(ctx context.Context, fn func(repository.Repositories) error) error {
	return s.withinTx(ctx, nil, fn)
}

func (s *Store) WithinSerializableTx(ctx context.Context, fn func(repository.Repositories) error) error {
	return s.withinTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable}, fn)
}

func (s *Store) withinTx(ctx context.Context, opts *sql.TxOptions, fn func(repository.Repositories) error) error {
	tx, err := s.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(newRepos(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
