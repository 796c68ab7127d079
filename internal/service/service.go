package service

import (
	"context"
	"time"

	"lendtrack-backend/internal/domain"
	"lendtrack-backend/internal/repository"
	"lendtrack-backend/internal/utils"
)

type ItemService interface {
	CreateItem(ctx context.Context, actor domain.Actor, item *domain.Item) error
	GetItem(ctx context.Context, id int32) (*domain.Item, error)
	ListItems(ctx context.Context, status string, page, pageSize int32) ([]domain.Item, int32, error)
	// ApplyTransition validates and applies an item status transition,
	// cascading cancellations to dependent reservations. force is the admin
	// override bypassing the reservation guards.
	ApplyTransition(ctx context.Context, itemID int32, newStatus domain.ItemStatus, actor domain.Actor, reason string, force bool) (*domain.Item, error)
	// ApplyTransitionWithin is ApplyTransition running inside the caller's
	// transaction, for services that change item status as a side effect.
	ApplyTransitionWithin(ctx context.Context, repos repository.Repositories, itemID int32, newStatus domain.ItemStatus, actor domain.Actor, reason string, force bool) (*domain.Item, error)
}

type ReservationService interface {
	Request(ctx context.Context, actor domain.Actor, itemID int32, startDate, endDate time.Time) (*domain.Reservation, error)
	Approve(ctx context.Context, actor domain.Actor, reservationID int32) (*domain.Reservation, error)
	Reject(ctx context.Context, actor domain.Actor, reservationID int32, reason string) (*domain.Reservation, error)
	// Cancel also returns the trust penalty applied to the owning borrower,
	// zero for staff cancellations.
	Cancel(ctx context.Context, actor domain.Actor, reservationID int32, reason string) (*domain.Reservation, int32, error)
	ConfirmPickup(ctx context.Context, actor domain.Actor, reservationID int32) (*domain.Reservation, error)
	UpdateDates(ctx context.Context, actor domain.Actor, reservationID int32, startDate, endDate time.Time) (*domain.Reservation, error)
	// Delete hard-deletes a terminal reservation. Admin only; exposed for the
	// bulk coordinator.
	Delete(ctx context.Context, actor domain.Actor, reservationID int32) error
	Get(ctx context.Context, actor domain.Actor, reservationID int32) (*domain.Reservation, error)
	ListByUser(ctx context.Context, actor domain.Actor, userID int32, status string, page, pageSize int32) ([]domain.Reservation, int32, error)
}

// ReturnActions summarizes the side effects of one return confirmation.
type ReturnActions struct {
	ReservationCompleted bool `json:"reservation_completed"`
	ItemStatusUpdated    bool `json:"item_status_updated"`
	TrustScoreUpdated    bool `json:"trust_score_updated"`
	PenaltyApplied       bool `json:"penalty_applied"`
}

type ReturnConfirmation struct {
	Return  *domain.ReturnRecord `json:"return"`
	Actions ReturnActions        `json:"actions"`
}

type ReturnService interface {
	// InitiateReturn files the PENDING return record for an active reservation.
	InitiateReturn(ctx context.Context, actor domain.Actor, reservationID int32, condition domain.ItemCondition, damageReport string) (*domain.ReturnRecord, error)
	// ConfirmReturn finalizes a pending return exactly once, applying the
	// assessment, penalties and all entity updates atomically.
	ConfirmReturn(ctx context.Context, actor domain.Actor, returnID int32, approved bool, assessment *domain.StaffAssessment, rejectionReason string) (*ReturnConfirmation, error)
	Metrics(ctx context.Context, returnID int32) (*domain.ReturnMetrics, error)
}

type OverdueScanParams struct {
	ThresholdDays       int32   `json:"days_overdue"`
	AutoInitiateReturns bool    `json:"auto_initiate_returns"`
	PenaltyMultiplier   float64 `json:"penalty_multiplier"`
}

type OverdueReservationResult struct {
	ReservationID    int32                   `json:"reservation_id"`
	ItemID           int32                   `json:"item_id"`
	UserID           int32                   `json:"user_id"`
	DaysOverdue      int32                   `json:"days_overdue"`
	Severity         utils.Severity          `json:"severity"`
	BasePenalty      int32                   `json:"base_penalty"`
	FinalPenalty     int32                   `json:"final_penalty"`
	AutoReturnID     *int32                  `json:"auto_return_id,omitempty"`
	NotificationType domain.NotificationType `json:"notification_type"`
	Error            string                  `json:"error,omitempty"`
}

type OverdueScanResult struct {
	Processed          []OverdueReservationResult   `json:"processed"`
	TotalPenalties     int32                        `json:"total_penalties"`
	AutoReturnsCreated int32                        `json:"auto_returns_created"`
	AverageDaysOverdue float64                      `json:"average_days_overdue"`
	Notifications      []domain.NotificationRequest `json:"notifications"`
}

type OverdueService interface {
	Scan(ctx context.Context, actor domain.Actor, params OverdueScanParams) (*OverdueScanResult, error)
}

// Notifier is the external notification collaborator. The core only requests;
// delivery is someone else's concern.
type Notifier interface {
	RequestNotifications(ctx context.Context, req domain.NotificationRequest) error
}

type BulkReservationAction string

const (
	BulkReservationApprove BulkReservationAction = "approve"
	BulkReservationReject  BulkReservationAction = "reject"
	BulkReservationCancel  BulkReservationAction = "cancel"
	BulkReservationDelete  BulkReservationAction = "delete"
)

type BulkReturnAction string

const (
	BulkReturnApprove BulkReturnAction = "approve"
	BulkReturnReject  BulkReturnAction = "reject"
)

type BulkOutcome struct {
	ID             int32  `json:"id"`
	Success        bool   `json:"success"`
	Error          string `json:"error,omitempty"`
	PenaltyApplied int32  `json:"penalty_applied,omitempty"`
}

// BulkResult is the first-class partial-failure shape: per-id outcomes with
// independent successes, never an all-or-nothing batch.
type BulkResult struct {
	Attempted      int32         `json:"attempted"`
	Succeeded      int32         `json:"succeeded"`
	Failed         int32         `json:"failed"`
	Outcomes       []BulkOutcome `json:"outcomes"`
	TotalPenalties int32         `json:"total_penalties"`
}

type BulkService interface {
	ApplyToReservations(ctx context.Context, actor domain.Actor, action BulkReservationAction, ids []int32, reason string) (*BulkResult, error)
	ApplyToReturns(ctx context.Context, actor domain.Actor, action BulkReturnAction, ids []int32, rejectionReason string) (*BulkResult, error)
}

type ReputationService interface {
	// Apply records a signed trust-score delta inside the caller's transaction,
	// appending the ledger entry and refreshing the cached score together.
	Apply(ctx context.Context, repos repository.Repositories, userID, delta int32, reason string) (*domain.ReputationEntry, error)
	History(ctx context.Context, userID int32, page, pageSize int32) ([]domain.ReputationEntry, int32, error)
	Summary(ctx context.Context, userID int32) (*domain.ReputationSummary, error)
}
