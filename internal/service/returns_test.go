package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"lendtrack-backend/internal/domain"
)

func newReturnFixture(store *mockStore) *returnService {
	reputation := NewReputationService(store)
	items := NewItemService(store)
	return NewReturnService(store, items, reputation).(*returnService)
}

func TestReturnService_InitiateReturn(t *testing.T) {
	ctx := context.Background()
	borrower := domain.Actor{UserID: 2, Role: domain.RoleBorrower}
	returnedAt := time.Date(2025, 7, 4, 15, 0, 0, 0, time.UTC)

	activeReservation := func() *domain.Reservation {
		return &domain.Reservation{ID: 10, ItemID: 1, UserID: 2, Status: domain.ReservationStatusActive}
	}

	t.Run("Success snapshots the loan condition", func(t *testing.T) {
		store := newMockStore()
		store.allowAudit()
		svc := newReturnFixture(store)
		svc.now = func() time.Time { return returnedAt }

		store.reservations.On("GetByID", ctx, int32(10)).Return(activeReservation(), nil)
		store.returns.On("GetByReservationID", ctx, int32(10)).Return(nil, &domain.NotFoundError{Entity: "return", ID: 10})
		store.items.On("GetByID", ctx, int32(1)).Return(&domain.Item{ID: 1, Status: domain.ItemStatusBorrowed, Condition: domain.ItemConditionExcellent}, nil)
		store.returns.On("Create", ctx, mock.MatchedBy(func(r *domain.ReturnRecord) bool {
			return r.Status == domain.ReturnStatusPending &&
				r.ConditionAtLoan == domain.ItemConditionExcellent &&
				r.ConditionOnReturn == domain.ItemConditionGood
		})).Return(nil)

		ret, err := svc.InitiateReturn(ctx, borrower, 10, domain.ItemConditionGood, "")
		assert.NoError(t, err)
		assert.Equal(t, returnedAt, ret.ReturnDate)
	})

	t.Run("Only active loans can be returned", func(t *testing.T) {
		store := newMockStore()
		svc := newReturnFixture(store)

		rsv := activeReservation()
		rsv.Status = domain.ReservationStatusApproved
		store.reservations.On("GetByID", ctx, int32(10)).Return(rsv, nil)

		_, err := svc.InitiateReturn(ctx, borrower, 10, domain.ItemConditionGood, "")
		assert.True(t, domain.IsConflict(err))
	})

	t.Run("One return per reservation", func(t *testing.T) {
		store := newMockStore()
		svc := newReturnFixture(store)

		store.reservations.On("GetByID", ctx, int32(10)).Return(activeReservation(), nil)
		store.returns.On("GetByReservationID", ctx, int32(10)).Return(&domain.ReturnRecord{ID: 20, ReservationID: 10}, nil)

		_, err := svc.InitiateReturn(ctx, borrower, 10, domain.ItemConditionGood, "")
		assert.True(t, domain.IsConflict(err))
	})

	t.Run("Stranger denied", func(t *testing.T) {
		store := newMockStore()
		svc := newReturnFixture(store)

		store.reservations.On("GetByID", ctx, int32(10)).Return(activeReservation(), nil)

		_, err := svc.InitiateReturn(ctx, domain.Actor{UserID: 4, Role: domain.RoleBorrower}, 10, domain.ItemConditionGood, "")
		assert.True(t, domain.IsPermission(err))
	})

	t.Run("Unknown condition rejected", func(t *testing.T) {
		store := newMockStore()
		svc := newReturnFixture(store)

		_, err := svc.InitiateReturn(ctx, borrower, 10, domain.ItemCondition("BROKEN"), "")
		assert.True(t, domain.IsValidation(err))
	})
}

func TestReturnService_ConfirmReturn(t *testing.T) {
	ctx := context.Background()
	staff := domain.Actor{UserID: 9, Role: domain.RoleStaff}
	returnedAt := time.Date(2025, 7, 4, 15, 0, 0, 0, time.UTC)

	pendingReturn := func(atLoan, onReturn domain.ItemCondition) *domain.ReturnRecord {
		return &domain.ReturnRecord{
			ID:                20,
			ReservationID:     10,
			UserID:            2,
			Status:            domain.ReturnStatusPending,
			ConditionAtLoan:   atLoan,
			ConditionOnReturn: onReturn,
			ReturnDate:        returnedAt,
		}
	}
	activeReservation := func() *domain.Reservation {
		return &domain.Reservation{ID: 10, ItemID: 1, UserID: 2, Status: domain.ReservationStatusActive}
	}

	t.Run("Clean return completes everything with no penalty", func(t *testing.T) {
		store := newMockStore()
		store.allowAudit()
		svc := newReturnFixture(store)

		store.returns.On("GetByID", ctx, int32(20)).Return(pendingReturn(domain.ItemConditionGood, domain.ItemConditionGood), nil)
		store.reservations.On("GetByID", ctx, int32(10)).Return(activeReservation(), nil)
		store.returns.On("Update", ctx, mock.MatchedBy(func(r *domain.ReturnRecord) bool {
			return r.Status == domain.ReturnStatusApproved && r.PenaltyAmount == 0 && !r.PenaltyApplied
		})).Return(nil)
		store.reservations.On("Update", ctx, mock.MatchedBy(func(r *domain.Reservation) bool {
			return r.Status == domain.ReservationStatusCompleted && r.ActualEndDate != nil && r.ActualEndDate.Equal(returnedAt)
		})).Return(nil)
		store.items.On("GetByID", ctx, int32(1)).Return(&domain.Item{ID: 1, Status: domain.ItemStatusBorrowed, Condition: domain.ItemConditionGood}, nil)
		store.items.On("Update", ctx, mock.AnythingOfType("*domain.Item")).Return(nil)

		conf, err := svc.ConfirmReturn(ctx, staff, 20, true, nil, "")
		assert.NoError(t, err)
		assert.True(t, conf.Actions.ReservationCompleted)
		assert.True(t, conf.Actions.ItemStatusUpdated)
		assert.False(t, conf.Actions.PenaltyApplied)
		store.reputation.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	})

	t.Run("Condition degradation is charged per grade", func(t *testing.T) {
		store := newMockStore()
		store.allowAudit()
		svc := newReturnFixture(store)

		store.returns.On("GetByID", ctx, int32(20)).Return(pendingReturn(domain.ItemConditionExcellent, domain.ItemConditionPoor), nil)
		store.reservations.On("GetByID", ctx, int32(10)).Return(activeReservation(), nil)
		store.returns.On("Update", ctx, mock.MatchedBy(func(r *domain.ReturnRecord) bool {
			return r.Status == domain.ReturnStatusApproved && r.PenaltyAmount == 15 && r.PenaltyApplied
		})).Return(nil)
		store.reservations.On("Update", ctx, mock.AnythingOfType("*domain.Reservation")).Return(nil)
		store.items.On("GetByID", ctx, int32(1)).Return(&domain.Item{ID: 1, Status: domain.ItemStatusBorrowed, Condition: domain.ItemConditionExcellent}, nil)
		store.items.On("Update", ctx, mock.AnythingOfType("*domain.Item")).Return(nil)
		store.expectPenalty(ctx, 2, 100, 15)

		conf, err := svc.ConfirmReturn(ctx, staff, 20, true, nil, "")
		assert.NoError(t, err)
		assert.True(t, conf.Actions.PenaltyApplied)
		assert.True(t, conf.Actions.TrustScoreUpdated)
		assert.Equal(t, int32(15), conf.Return.PenaltyAmount)
	})

	t.Run("Second confirmation fails", func(t *testing.T) {
		store := newMockStore()
		svc := newReturnFixture(store)

		done := pendingReturn(domain.ItemConditionGood, domain.ItemConditionGood)
		done.Status = domain.ReturnStatusApproved
		store.returns.On("GetByID", ctx, int32(20)).Return(done, nil)

		_, err := svc.ConfirmReturn(ctx, staff, 20, true, nil, "")
		assert.True(t, domain.IsConflict(err))
	})

	t.Run("Damage forces the damaged outcome and maintenance", func(t *testing.T) {
		store := newMockStore()
		store.allowAudit()
		svc := newReturnFixture(store)

		store.returns.On("GetByID", ctx, int32(20)).Return(pendingReturn(domain.ItemConditionGood, domain.ItemConditionGood), nil)
		store.reservations.On("GetByID", ctx, int32(10)).Return(activeReservation(), nil)
		store.returns.On("Update", ctx, mock.MatchedBy(func(r *domain.ReturnRecord) bool {
			return r.Status == domain.ReturnStatusDamaged && r.ConditionOnReturn == domain.ItemConditionDamaged
		})).Return(nil)
		store.reservations.On("Update", ctx, mock.AnythingOfType("*domain.Reservation")).Return(nil)
		store.items.On("GetByID", ctx, int32(1)).Return(&domain.Item{ID: 1, Status: domain.ItemStatusBorrowed, Condition: domain.ItemConditionGood}, nil)
		store.reservations.On("CountActiveByItem", ctx, int32(1)).Return(int32(0), nil)
		store.reservations.On("ListByItem", ctx, int32(1), mock.Anything).Return([]domain.Reservation{}, nil)
		store.items.On("Update", ctx, mock.AnythingOfType("*domain.Item")).Return(nil)
		store.expectPenalty(ctx, 2, 100, 15)

		assessment := &domain.StaffAssessment{ConditionOnReturn: domain.ItemConditionDamaged, DamageReport: "cracked casing"}
		conf, err := svc.ConfirmReturn(ctx, staff, 20, true, assessment, "")
		assert.NoError(t, err)
		assert.Equal(t, domain.ReturnStatusDamaged, conf.Return.Status)
		assert.Equal(t, "cracked casing", conf.Return.DamageReport)
	})

	t.Run("Pre-charged overdue penalty is not charged again", func(t *testing.T) {
		store := newMockStore()
		store.allowAudit()
		svc := newReturnFixture(store)

		ret := pendingReturn(domain.ItemConditionGood, domain.ItemConditionGood)
		ret.PenaltyApplied = true
		ret.PenaltyAmount = 20
		ret.PenaltyReason = "overdue item penalty"
		ret.AutoInitiated = true
		store.returns.On("GetByID", ctx, int32(20)).Return(ret, nil)
		store.reservations.On("GetByID", ctx, int32(10)).Return(activeReservation(), nil)
		store.returns.On("Update", ctx, mock.MatchedBy(func(r *domain.ReturnRecord) bool {
			return r.PenaltyAmount == 20 && r.PenaltyReason == "overdue item penalty"
		})).Return(nil)
		store.reservations.On("Update", ctx, mock.AnythingOfType("*domain.Reservation")).Return(nil)
		store.items.On("GetByID", ctx, int32(1)).Return(&domain.Item{ID: 1, Status: domain.ItemStatusBorrowed, Condition: domain.ItemConditionGood}, nil)
		store.items.On("Update", ctx, mock.AnythingOfType("*domain.Item")).Return(nil)

		conf, err := svc.ConfirmReturn(ctx, staff, 20, true, nil, "")
		assert.NoError(t, err)
		assert.False(t, conf.Actions.PenaltyApplied)
		store.reputation.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	})

	t.Run("Staff override replaces the computed penalty", func(t *testing.T) {
		store := newMockStore()
		store.allowAudit()
		svc := newReturnFixture(store)

		store.returns.On("GetByID", ctx, int32(20)).Return(pendingReturn(domain.ItemConditionExcellent, domain.ItemConditionPoor), nil)
		store.reservations.On("GetByID", ctx, int32(10)).Return(activeReservation(), nil)
		store.returns.On("Update", ctx, mock.MatchedBy(func(r *domain.ReturnRecord) bool {
			return r.PenaltyAmount == 8 && r.PenaltyReason == "staff penalty adjustment"
		})).Return(nil)
		store.reservations.On("Update", ctx, mock.AnythingOfType("*domain.Reservation")).Return(nil)
		store.items.On("GetByID", ctx, int32(1)).Return(&domain.Item{ID: 1, Status: domain.ItemStatusBorrowed, Condition: domain.ItemConditionExcellent}, nil)
		store.items.On("Update", ctx, mock.AnythingOfType("*domain.Item")).Return(nil)
		store.expectPenalty(ctx, 2, 100, 8)

		override := int32(8)
		conf, err := svc.ConfirmReturn(ctx, staff, 20, true, &domain.StaffAssessment{PenaltyOverride: &override}, "")
		assert.NoError(t, err)
		assert.Equal(t, int32(8), conf.Return.PenaltyAmount)
	})

	t.Run("Rejection records the reason and leaves the loan open", func(t *testing.T) {
		store := newMockStore()
		store.allowAudit()
		svc := newReturnFixture(store)

		store.returns.On("GetByID", ctx, int32(20)).Return(pendingReturn(domain.ItemConditionGood, domain.ItemConditionGood), nil)
		store.reservations.On("GetByID", ctx, int32(10)).Return(activeReservation(), nil)
		store.returns.On("Update", ctx, mock.MatchedBy(func(r *domain.ReturnRecord) bool {
			return r.Status == domain.ReturnStatusRejected && r.RejectionReason == "item not actually returned"
		})).Return(nil)

		conf, err := svc.ConfirmReturn(ctx, staff, 20, false, nil, "item not actually returned")
		assert.NoError(t, err)
		assert.False(t, conf.Actions.ReservationCompleted)
		store.reservations.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("Borrower cannot confirm", func(t *testing.T) {
		store := newMockStore()
		svc := newReturnFixture(store)

		_, err := svc.ConfirmReturn(ctx, domain.Actor{UserID: 2, Role: domain.RoleBorrower}, 20, true, nil, "")
		assert.True(t, domain.IsPermission(err))
	})
}

func TestReturnService_Metrics(t *testing.T) {
	ctx := context.Background()
	store := newMockStore()
	svc := newReturnFixture(store)

	pickedUp := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	due := time.Date(2025, 7, 4, 0, 0, 0, 0, time.UTC)
	returned := due.Add(2 * 24 * time.Hour)

	store.returns.On("GetByID", ctx, int32(20)).Return(&domain.ReturnRecord{
		ID:                20,
		ReservationID:     10,
		ConditionAtLoan:   domain.ItemConditionExcellent,
		ConditionOnReturn: domain.ItemConditionFair,
		ReturnDate:        returned,
	}, nil)
	store.reservations.On("GetByID", ctx, int32(10)).Return(&domain.Reservation{
		ID:              10,
		StartDate:       pickedUp.Truncate(24 * time.Hour),
		EndDate:         due,
		ActualStartDate: &pickedUp,
	}, nil)

	m, err := svc.Metrics(ctx, 20)
	assert.NoError(t, err)
	assert.True(t, m.IsOverdue)
	assert.Equal(t, int32(2), m.DaysOverdue)
	assert.Equal(t, int32(5), m.BorrowDurationDays)
	assert.True(t, m.ConditionDegraded)
}
