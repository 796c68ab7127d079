package domain

import "time"

type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "PENDING"
	ReservationStatusApproved  ReservationStatus = "APPROVED"
	ReservationStatusActive    ReservationStatus = "ACTIVE"
	ReservationStatusRejected  ReservationStatus = "REJECTED"
	ReservationStatusCancelled ReservationStatus = "CANCELLED"
	ReservationStatusCompleted ReservationStatus = "COMPLETED"
)

// TerminalReservationStatus reports whether s allows no further transitions.
func TerminalReservationStatus(s ReservationStatus) bool {
	switch s {
	case ReservationStatusCancelled, ReservationStatusRejected, ReservationStatusCompleted:
		return true
	}
	return false
}

// BlockingReservationStatus reports whether a reservation in status s blocks
// retirement of its item and counts for overlap conflicts together with ACTIVE.
func BlockingReservationStatus(s ReservationStatus) bool {
	switch s {
	case ReservationStatusPending, ReservationStatusApproved, ReservationStatusActive:
		return true
	}
	return false
}

type Reservation struct {
	ID              int32             `json:"id"`
	ItemID          int32             `json:"item_id"`
	UserID          int32             `json:"user_id"`
	Status          ReservationStatus `json:"status"`
	StartDate       time.Time         `json:"start_date"`
	EndDate         time.Time         `json:"end_date"`
	ActualStartDate *time.Time        `json:"actual_start_date,omitempty"`
	ActualEndDate   *time.Time        `json:"actual_end_date,omitempty"`
	PickupConfirmed bool              `json:"pickup_confirmed"`
	CancelReason    string            `json:"cancel_reason"`
	CreatedOn       string            `json:"created_on"`
	UpdatedOn       string            `json:"updated_on"`
}

// Overlaps applies the closed-interval overlap test against another date range.
// Ranges that merely touch at an endpoint count as overlapping.
func (r *Reservation) Overlaps(start, end time.Time) bool {
	return !r.StartDate.After(end) && !r.EndDate.Before(start)
}
