package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"lendtrack-backend/internal/domain"
	"lendtrack-backend/internal/repository"
)

// MockItemRepo
type MockItemRepo struct {
	mock.Mock
}

func (m *MockItemRepo) Create(ctx context.Context, item *domain.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}
func (m *MockItemRepo) GetByID(ctx context.Context, id int32) (*domain.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Item), args.Error(1)
}
func (m *MockItemRepo) Update(ctx context.Context, item *domain.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}
func (m *MockItemRepo) List(ctx context.Context, status string, page, pageSize int32) ([]domain.Item, int32, error) {
	args := m.Called(ctx, status, page, pageSize)
	return args.Get(0).([]domain.Item), args.Get(1).(int32), args.Error(2)
}

// MockReservationRepo
type MockReservationRepo struct {
	mock.Mock
}

func (m *MockReservationRepo) Create(ctx context.Context, rsv *domain.Reservation) error {
	args := m.Called(ctx, rsv)
	return args.Error(0)
}
func (m *MockReservationRepo) GetByID(ctx context.Context, id int32) (*domain.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}
func (m *MockReservationRepo) Update(ctx context.Context, rsv *domain.Reservation) error {
	args := m.Called(ctx, rsv)
	return args.Error(0)
}
func (m *MockReservationRepo) Delete(ctx context.Context, id int32) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockReservationRepo) ListByUser(ctx context.Context, userID int32, status string, page, pageSize int32) ([]domain.Reservation, int32, error) {
	args := m.Called(ctx, userID, status, page, pageSize)
	return args.Get(0).([]domain.Reservation), args.Get(1).(int32), args.Error(2)
}
func (m *MockReservationRepo) ListByItem(ctx context.Context, itemID int32, statuses []domain.ReservationStatus) ([]domain.Reservation, error) {
	args := m.Called(ctx, itemID, statuses)
	return args.Get(0).([]domain.Reservation), args.Error(1)
}
func (m *MockReservationRepo) ListOverlapping(ctx context.Context, itemID int32, start, end time.Time, statuses []domain.ReservationStatus, excludeID int32) ([]domain.Reservation, error) {
	args := m.Called(ctx, itemID, start, end, statuses, excludeID)
	return args.Get(0).([]domain.Reservation), args.Error(1)
}
func (m *MockReservationRepo) ListOverdue(ctx context.Context, cutoff time.Time) ([]domain.Reservation, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).([]domain.Reservation), args.Error(1)
}
func (m *MockReservationRepo) CountActiveByItem(ctx context.Context, itemID int32) (int32, error) {
	args := m.Called(ctx, itemID)
	return args.Get(0).(int32), args.Error(1)
}

// MockReturnRepo
type MockReturnRepo struct {
	mock.Mock
}

func (m *MockReturnRepo) Create(ctx context.Context, ret *domain.ReturnRecord) error {
	args := m.Called(ctx, ret)
	return args.Error(0)
}
func (m *MockReturnRepo) GetByID(ctx context.Context, id int32) (*domain.ReturnRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReturnRecord), args.Error(1)
}
func (m *MockReturnRepo) GetByReservationID(ctx context.Context, reservationID int32) (*domain.ReturnRecord, error) {
	args := m.Called(ctx, reservationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReturnRecord), args.Error(1)
}
func (m *MockReturnRepo) Update(ctx context.Context, ret *domain.ReturnRecord) error {
	args := m.Called(ctx, ret)
	return args.Error(0)
}

// MockUserRepo
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *MockUserRepo) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) UpdateTrustScore(ctx context.Context, userID, newScore int32) error {
	args := m.Called(ctx, userID, newScore)
	return args.Error(0)
}

// MockReputationRepo
type MockReputationRepo struct {
	mock.Mock
}

func (m *MockReputationRepo) Append(ctx context.Context, entry *domain.ReputationEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}
func (m *MockReputationRepo) ListByUser(ctx context.Context, userID int32, page, pageSize int32) ([]domain.ReputationEntry, int32, error) {
	args := m.Called(ctx, userID, page, pageSize)
	return args.Get(0).([]domain.ReputationEntry), args.Get(1).(int32), args.Error(2)
}
func (m *MockReputationRepo) GetSummary(ctx context.Context, userID int32) (*domain.ReputationSummary, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReputationSummary), args.Error(1)
}

// MockAuditRepo
type MockAuditRepo struct {
	mock.Mock
}

func (m *MockAuditRepo) Create(ctx context.Context, entry *domain.AuditEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// mockStore bundles the mock repositories behind the Store interface.
// WithinTx and WithinSerializableTx just run the callback against the same
// mocks, so tests observe the full side-effect set of one operation.
type mockStore struct {
	items        *MockItemRepo
	reservations *MockReservationRepo
	returns      *MockReturnRepo
	users        *MockUserRepo
	reputation   *MockReputationRepo
	audit        *MockAuditRepo
}

func newMockStore() *mockStore {
	return &mockStore{
		items:        new(MockItemRepo),
		reservations: new(MockReservationRepo),
		returns:      new(MockReturnRepo),
		users:        new(MockUserRepo),
		reputation:   new(MockReputationRepo),
		audit:        new(MockAuditRepo),
	}
}

func (s *mockStore) Items() repository.ItemRepository               { return s.items }
func (s *mockStore) Reservations() repository.ReservationRepository { return s.reservations }
func (s *mockStore) Returns() repository.ReturnRepository           { return s.returns }
func (s *mockStore) Users() repository.UserRepository               { return s.users }
func (s *mockStore) Reputation() repository.ReputationRepository    { return s.reputation }
func (s *mockStore) Audit() repository.AuditRepository              { return s.audit }

func (s *mockStore) WithinTx(ctx context.Context, fn func(repository.Repositories) error) error {
	return fn(s)
}

func (s *mockStore) WithinSerializableTx(ctx context.Context, fn func(repository.Repositories) error) error {
	return fn(s)
}

// allowAudit accepts any number of audit writes; tests asserting on audit
// content set explicit expectations instead.
func (s *mockStore) allowAudit() {
	s.audit.On("Create", mock.Anything, mock.AnythingOfType("*domain.AuditEntry")).Return(nil)
}

// expectPenalty wires the user read, ledger append and score write for one
// trust-score penalty of the given magnitude.
func (s *mockStore) expectPenalty(ctx context.Context, userID, currentScore, penalty int32) {
	s.users.On("GetByID", ctx, userID).Return(&domain.User{ID: userID, TrustScore: currentScore}, nil)
	s.reputation.On("Append", ctx, mock.MatchedBy(func(e *domain.ReputationEntry) bool {
		return e.UserID == userID && e.Change == -penalty && e.NewScore == currentScore-penalty
	})).Return(nil)
	s.users.On("UpdateTrustScore", ctx, userID, currentScore-penalty).Return(nil)
}
