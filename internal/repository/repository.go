package repository

import (
	"context"
	"time"

	"lendtrack-backend/internal/domain"
)

type ItemRepository interface {
	Create(ctx context.Context, item *domain.Item) error
	GetByID(ctx context.Context, id int32) (*domain.Item, error)
	Update(ctx context.Context, item *domain.Item) error
	List(ctx context.Context, status string, page, pageSize int32) ([]domain.Item, int32, error)
}

type ReservationRepository interface {
	Create(ctx context.Context, rsv *domain.Reservation) error
	GetByID(ctx context.Context, id int32) (*domain.Reservation, error)
	Update(ctx context.Context, rsv *domain.Reservation) error
	Delete(ctx context.Context, id int32) error
	ListByUser(ctx context.Context, userID int32, status string, page, pageSize int32) ([]domain.Reservation, int32, error)
	// ListByItem returns reservations on an item filtered to the given statuses;
	// an empty status list means all statuses.
	ListByItem(ctx context.Context, itemID int32, statuses []domain.ReservationStatus) ([]domain.Reservation, error)
	// ListOverlapping returns reservations on the item whose closed date range
	// intersects [start, end], limited to the given statuses and excluding one id.
	ListOverlapping(ctx context.Context, itemID int32, start, end time.Time, statuses []domain.ReservationStatus, excludeID int32) ([]domain.Reservation, error)
	// ListOverdue returns ACTIVE reservations past due before cutoff with no
	// associated return record.
	ListOverdue(ctx context.Context, cutoff time.Time) ([]domain.Reservation, error)
	CountActiveByItem(ctx context.Context, itemID int32) (int32, error)
}

type ReturnRepository interface {
	Create(ctx context.Context, ret *domain.ReturnRecord) error
	GetByID(ctx context.Context, id int32) (*domain.ReturnRecord, error)
	GetByReservationID(ctx context.Context, reservationID int32) (*domain.ReturnRecord, error)
	Update(ctx context.Context, ret *domain.ReturnRecord) error
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int32) (*domain.User, error)
	// UpdateTrustScore rewrites the cached score. Only the reputation ledger
	// may call this, inside the transaction that appends the matching entry.
	UpdateTrustScore(ctx context.Context, userID, newScore int32) error
}

type ReputationRepository interface {
	Append(ctx context.Context, entry *domain.ReputationEntry) error
	ListByUser(ctx context.Context, userID int32, page, pageSize int32) ([]domain.ReputationEntry, int32, error)
	GetSummary(ctx context.Context, userID int32) (*domain.ReputationSummary, error)
}

type AuditRepository interface {
	Create(ctx context.Context, entry *domain.AuditEntry) error
}

// Repositories is the full set of repositories, either bound to the base
// connection or to one transaction inside WithinTx.
type Repositories interface {
	Items() ItemRepository
	Reservations() ReservationRepository
	Returns() ReturnRepository
	Users() UserRepository
	Reputation() ReputationRepository
	Audit() AuditRepository
}

// Store is the unit-of-work boundary. Every multi-entity mutation in the core
// runs through WithinTx so the full side-effect set commits or rolls back as
// one atomic operation.
type Store interface {
	Repositories
	WithinTx(ctx context.Context, fn func(Repositories) error) error
	// WithinSerializableTx is WithinTx at serializable isolation, used where a
	// read-then-write conflict check must not race a concurrent commit.
	WithinSerializableTx(ctx context.Context, fn func(Repositories) error) error
}
