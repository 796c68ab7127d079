package domain

import "time"

type ReturnStatus string

const (
	ReturnStatusPending  ReturnStatus = "PENDING"
	ReturnStatusApproved ReturnStatus = "APPROVED"
	ReturnStatusRejected ReturnStatus = "REJECTED"
	ReturnStatusDamaged  ReturnStatus = "DAMAGED"
)

// ReturnRecord is the one-to-one record of a reservation being given back.
// Status starts PENDING and is terminal once finalized by staff.
type ReturnRecord struct {
	ID                int32         `json:"id"`
	ReservationID     int32         `json:"reservation_id"`
	UserID            int32         `json:"user_id"`
	Status            ReturnStatus  `json:"status"`
	// ConditionAtLoan snapshots the item condition when the loan started.
	// Degradation is always judged against this, not the live item condition.
	ConditionAtLoan   ItemCondition `json:"condition_at_loan"`
	ConditionOnReturn ItemCondition `json:"condition_on_return"`
	ReturnDate        time.Time     `json:"return_date"`
	PenaltyApplied    bool          `json:"penalty_applied"`
	PenaltyAmount     int32         `json:"penalty_amount"`
	PenaltyReason     string        `json:"penalty_reason"`
	DamageReport      string        `json:"damage_report"`
	RejectionReason   string        `json:"rejection_reason"`
	StaffNotes        string        `json:"staff_notes"`
	AutoInitiated     bool          `json:"auto_initiated"`
	ProcessedBy       *int32        `json:"processed_by,omitempty"`
	CreatedOn         string        `json:"created_on"`
	UpdatedOn         string        `json:"updated_on"`
}

// StaffAssessment is the optional payload staff attach when confirming a return.
type StaffAssessment struct {
	ConditionOnReturn ItemCondition `json:"condition_on_return,omitempty"`
	DamageReport      string        `json:"damage_report,omitempty"`
	PenaltyOverride   *int32        `json:"penalty_override,omitempty"`
	Notes             string        `json:"notes,omitempty"`
}

// ReturnMetrics is the derived, read-only view of a finished or in-flight return.
type ReturnMetrics struct {
	ReturnID          int32 `json:"return_id"`
	IsOverdue         bool  `json:"is_overdue"`
	DaysOverdue       int32 `json:"days_overdue"`
	BorrowDurationDays int32 `json:"borrow_duration_days"`
	ConditionDegraded bool  `json:"condition_degraded"`
}
