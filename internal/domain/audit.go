package domain

import (
	"encoding/json"
	"time"
)

type AuditAction string

const (
	AuditActionItemStatusChange    AuditAction = "ITEM_STATUS_CHANGE"
	AuditActionReservationRequest  AuditAction = "RESERVATION_REQUEST"
	AuditActionReservationApprove  AuditAction = "RESERVATION_APPROVE"
	AuditActionReservationReject   AuditAction = "RESERVATION_REJECT"
	AuditActionReservationCancel   AuditAction = "RESERVATION_CANCEL"
	AuditActionReservationPickup   AuditAction = "RESERVATION_PICKUP"
	AuditActionReservationDelete   AuditAction = "RESERVATION_DELETE"
	AuditActionReturnInitiate      AuditAction = "RETURN_INITIATE"
	AuditActionReturnConfirm       AuditAction = "RETURN_CONFIRM"
	AuditActionOverduePenalty      AuditAction = "OVERDUE_PENALTY"
)

type EntityType string

const (
	EntityTypeItem        EntityType = "ITEM"
	EntityTypeReservation EntityType = "RESERVATION"
	EntityTypeReturn      EntityType = "RETURN"
	EntityTypeUser        EntityType = "USER"
)

// AuditPayload is the typed "changes" body of an audit entry. Each action kind
// carries its own payload variant rather than an untyped key/value blob.
type AuditPayload interface {
	PayloadKind() string
}

type StatusChangePayload struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Reason string `json:"reason,omitempty"`
	Forced bool   `json:"forced,omitempty"`
}

func (StatusChangePayload) PayloadKind() string { return "status_change" }

type CancellationPayload struct {
	From         string `json:"from"`
	Reason       string `json:"reason,omitempty"`
	PenaltyApplied int32 `json:"penalty_applied,omitempty"`
	ByOwner      bool   `json:"by_owner"`
}

func (CancellationPayload) PayloadKind() string { return "cancellation" }

type ReturnAssessmentPayload struct {
	Approved          bool          `json:"approved"`
	FinalStatus       ReturnStatus  `json:"final_status"`
	ConditionAtLoan   ItemCondition `json:"condition_at_loan"`
	ConditionOnReturn ItemCondition `json:"condition_on_return"`
	PenaltyAmount     int32         `json:"penalty_amount"`
	PenaltyReason     string        `json:"penalty_reason,omitempty"`
	DamageReport      string        `json:"damage_report,omitempty"`
	RejectionReason   string        `json:"rejection_reason,omitempty"`
	StaffNotes        string        `json:"staff_notes,omitempty"`
}

func (ReturnAssessmentPayload) PayloadKind() string { return "return_assessment" }

type OverduePenaltyPayload struct {
	DaysOverdue   int32   `json:"days_overdue"`
	Severity      string  `json:"severity"`
	BasePenalty   int32   `json:"base_penalty"`
	Multiplier    float64 `json:"multiplier"`
	FinalPenalty  int32   `json:"final_penalty"`
	AutoReturnID  *int32  `json:"auto_return_id,omitempty"`
}

func (OverduePenaltyPayload) PayloadKind() string { return "overdue_penalty" }

// AuditEntry records one mutation alongside its state transition. Entries are
// append-only and written in the same transaction as the mutation they record.
type AuditEntry struct {
	ID         string       `json:"id"`
	Action     AuditAction  `json:"action"`
	EntityType EntityType   `json:"entity_type"`
	EntityID   int32        `json:"entity_id"`
	ActorID    int32        `json:"actor_id"`
	ActorRole  Role         `json:"actor_role"`
	Payload    AuditPayload `json:"-"`
	CreatedOn  time.Time    `json:"created_on"`
}

type taggedPayload struct {
	Kind string          `json:"kind"`
	Body json.RawMessage `json:"body"`
}

// MarshalPayload serializes the typed payload as tagged JSON for storage.
func (e *AuditEntry) MarshalPayload() ([]byte, error) {
	if e.Payload == nil {
		return []byte(`{}`), nil
	}
	body, err := json.Marshal(e.Payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(taggedPayload{Kind: e.Payload.PayloadKind(), Body: body})
}
