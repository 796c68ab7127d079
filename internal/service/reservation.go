package service

import (
	"context"
	"fmt"
	"time"

	"lendtrack-backend/internal/domain"
	"lendtrack-backend/internal/repository"
	"lendtrack-backend/internal/utils"
)

// ownerModificationFloorHours is the cutoff after which the owning borrower may
// no longer modify a reservation. Cancellation has no such floor.
const ownerModificationFloorHours = 2

var conflictStatuses = []domain.ReservationStatus{
	domain.ReservationStatusApproved, domain.ReservationStatusActive,
}

type reservationService struct {
	store      repository.Store
	items      ItemService
	reputation ReputationService
	now        func() time.Time
}

func NewReservationService(store repository.Store, items ItemService, reputation ReputationService) ReservationService {
	return &reservationService{store: store, items: items, reputation: reputation, now: time.Now}
}

func (s *reservationService) Request(ctx context.Context, actor domain.Actor, itemID int32, startDate, endDate time.Time) (*domain.Reservation, error) {
	if endDate.Before(startDate) {
		return nil, &domain.ValidationError{Field: "end_date", Message: "end date must not be before start date"}
	}

	rsv := &domain.Reservation{
		ItemID:    itemID,
		UserID:    actor.UserID,
		Status:    domain.ReservationStatusPending,
		StartDate: startDate,
		EndDate:   endDate,
	}

	err := s.store.WithinTx(ctx, func(repos repository.Repositories) error {
		item, err := repos.Items().GetByID(ctx, itemID)
		if err != nil {
			return err
		}
		if item.Status == domain.ItemStatusRetired || item.Status == domain.ItemStatusMaintenance {
			return &domain.ConflictError{Message: fmt.Sprintf("item %d is not lendable while %s", itemID, item.Status)}
		}

		conflicts, err := repos.Reservations().ListOverlapping(ctx, itemID, startDate, endDate, conflictStatuses, 0)
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			return &domain.ConflictError{
				Message:                 "requested dates overlap an existing reservation",
				ConflictingReservations: conflicts,
			}
		}

		if err := repos.Reservations().Create(ctx, rsv); err != nil {
			return err
		}
		return repos.Audit().Create(ctx, &domain.AuditEntry{
			Action:     domain.AuditActionReservationRequest,
			EntityType: domain.EntityTypeReservation,
			EntityID:   rsv.ID,
			ActorID:    actor.UserID,
			ActorRole:  actor.Role,
			Payload:    domain.StatusChangePayload{From: "", To: string(domain.ReservationStatusPending)},
		})
	})
	if err != nil {
		return nil, err
	}
	return rsv, nil
}

func (s *reservationService) Approve(ctx context.Context, actor domain.Actor, reservationID int32) (*domain.Reservation, error) {
	if !domain.Can(actor.Role, domain.CapabilityApproveReservation) {
		return nil, &domain.PermissionError{Actor: actor, Message: "cannot approve reservations"}
	}

	var rsv *domain.Reservation
	// Serializable so the overlap re-check and the status write cannot race a
	// concurrent approval of an overlapping reservation.
	err := s.store.WithinSerializableTx(ctx, func(repos repository.Repositories) error {
		var err error
		rsv, err = repos.Reservations().GetByID(ctx, reservationID)
		if err != nil {
			return err
		}
		if rsv.Status != domain.ReservationStatusPending {
			return &domain.ConflictError{Message: fmt.Sprintf("reservation %d is %s, not PENDING", rsv.ID, rsv.Status)}
		}

		conflicts, err := repos.Reservations().ListOverlapping(ctx, rsv.ItemID, rsv.StartDate, rsv.EndDate, conflictStatuses, rsv.ID)
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			return &domain.ConflictError{
				Message:                 "reservation dates now overlap an approved reservation",
				ConflictingReservations: conflicts,
			}
		}

		rsv.Status = domain.ReservationStatusApproved
		if err := repos.Reservations().Update(ctx, rsv); err != nil {
			return err
		}

		item, err := repos.Items().GetByID(ctx, rsv.ItemID)
		if err != nil {
			return err
		}
		if item.Status == domain.ItemStatusAvailable {
			if _, err := s.items.ApplyTransitionWithin(ctx, repos, item.ID, domain.ItemStatusReserved, actor, fmt.Sprintf("reservation %d approved", rsv.ID), false); err != nil {
				return err
			}
		}

		return repos.Audit().Create(ctx, &domain.AuditEntry{
			Action:     domain.AuditActionReservationApprove,
			EntityType: domain.EntityTypeReservation,
			EntityID:   rsv.ID,
			ActorID:    actor.UserID,
			ActorRole:  actor.Role,
			Payload:    domain.StatusChangePayload{From: string(domain.ReservationStatusPending), To: string(domain.ReservationStatusApproved)},
		})
	})
	if err != nil {
		return nil, err
	}
	return rsv, nil
}

func (s *reservationService) ConfirmPickup(ctx context.Context, actor domain.Actor, reservationID int32) (*domain.Reservation, error) {
	var rsv *domain.Reservation
	err := s.store.WithinTx(ctx, func(repos repository.Repositories) error {
		var err error
		rsv, err = repos.Reservations().GetByID(ctx, reservationID)
		if err != nil {
			return err
		}
		if rsv.UserID != actor.UserID && !domain.IsStaffRole(actor.Role) {
			return &domain.PermissionError{Actor: actor, Message: "only the borrower or staff may confirm pickup"}
		}
		if rsv.Status != domain.ReservationStatusApproved {
			return &domain.ConflictError{Message: fmt.Sprintf("reservation %d is %s, not APPROVED", rsv.ID, rsv.Status)}
		}

		now := s.now()
		rsv.Status = domain.ReservationStatusActive
		rsv.ActualStartDate = &now
		rsv.PickupConfirmed = true
		if err := repos.Reservations().Update(ctx, rsv); err != nil {
			return err
		}

		if _, err := s.items.ApplyTransitionWithin(ctx, repos, rsv.ItemID, domain.ItemStatusBorrowed, actor, fmt.Sprintf("pickup confirmed for reservation %d", rsv.ID), false); err != nil {
			return err
		}

		return repos.Audit().Create(ctx, &domain.AuditEntry{
			Action:     domain.AuditActionReservationPickup,
			EntityType: domain.EntityTypeReservation,
			EntityID:   rsv.ID,
			ActorID:    actor.UserID,
			ActorRole:  actor.Role,
			Payload:    domain.StatusChangePayload{From: string(domain.ReservationStatusApproved), To: string(domain.ReservationStatusActive)},
		})
	})
	if err != nil {
		return nil, err
	}
	return rsv, nil
}

func (s *reservationService) Reject(ctx context.Context, actor domain.Actor, reservationID int32, reason string) (*domain.Reservation, error) {
	if !domain.Can(actor.Role, domain.CapabilityApproveReservation) {
		return nil, &domain.PermissionError{Actor: actor, Message: "cannot reject reservations"}
	}

	var rsv *domain.Reservation
	err := s.store.WithinTx(ctx, func(repos repository.Repositories) error {
		var err error
		rsv, err = repos.Reservations().GetByID(ctx, reservationID)
		if err != nil {
			return err
		}
		if rsv.Status != domain.ReservationStatusPending && rsv.Status != domain.ReservationStatusApproved {
			return &domain.ConflictError{Message: fmt.Sprintf("reservation %d is %s and cannot be rejected", rsv.ID, rsv.Status)}
		}

		fromStatus := rsv.Status
		rsv.Status = domain.ReservationStatusRejected
		rsv.CancelReason = reason
		if err := repos.Reservations().Update(ctx, rsv); err != nil {
			return err
		}

		if err := s.releaseItemHold(ctx, repos, rsv, fromStatus, actor); err != nil {
			return err
		}

		return repos.Audit().Create(ctx, &domain.AuditEntry{
			Action:     domain.AuditActionReservationReject,
			EntityType: domain.EntityTypeReservation,
			EntityID:   rsv.ID,
			ActorID:    actor.UserID,
			ActorRole:  actor.Role,
			Payload:    domain.StatusChangePayload{From: string(fromStatus), To: string(domain.ReservationStatusRejected), Reason: reason},
		})
	})
	if err != nil {
		return nil, err
	}
	return rsv, nil
}

func (s *reservationService) Cancel(ctx context.Context, actor domain.Actor, reservationID int32, reason string) (*domain.Reservation, int32, error) {
	var rsv *domain.Reservation
	var penalty int32

	err := s.store.WithinTx(ctx, func(repos repository.Repositories) error {
		var err error
		rsv, err = repos.Reservations().GetByID(ctx, reservationID)
		if err != nil {
			return err
		}

		byOwner := rsv.UserID == actor.UserID && !domain.IsStaffRole(actor.Role)
		if !byOwner && !domain.IsStaffRole(actor.Role) {
			return &domain.PermissionError{Actor: actor, Message: "cannot cancel another user's reservation"}
		}
		if rsv.Status != domain.ReservationStatusPending && rsv.Status != domain.ReservationStatusApproved {
			return &domain.ConflictError{Message: fmt.Sprintf("reservation %d is %s and cannot be cancelled", rsv.ID, rsv.Status)}
		}

		fromStatus := rsv.Status
		rsv.Status = domain.ReservationStatusCancelled
		rsv.CancelReason = reason
		if err := repos.Reservations().Update(ctx, rsv); err != nil {
			return err
		}

		// Time-windowed penalty applies only to the owning borrower.
		if byOwner {
			penalty = utils.CancellationPenalty(s.now(), rsv.StartDate)
			if penalty > 0 {
				if _, err := s.reputation.Apply(ctx, repos, rsv.UserID, -penalty, "late cancellation penalty"); err != nil {
					return err
				}
			}
		}

		if err := s.releaseItemHold(ctx, repos, rsv, fromStatus, actor); err != nil {
			return err
		}

		return repos.Audit().Create(ctx, &domain.AuditEntry{
			Action:     domain.AuditActionReservationCancel,
			EntityType: domain.EntityTypeReservation,
			EntityID:   rsv.ID,
			ActorID:    actor.UserID,
			ActorRole:  actor.Role,
			Payload: domain.CancellationPayload{
				From:           string(fromStatus),
				Reason:         reason,
				PenaltyApplied: penalty,
				ByOwner:        byOwner,
			},
		})
	})
	if err != nil {
		return nil, 0, err
	}
	return rsv, penalty, nil
}

func (s *reservationService) UpdateDates(ctx context.Context, actor domain.Actor, reservationID int32, startDate, endDate time.Time) (*domain.Reservation, error) {
	if endDate.Before(startDate) {
		return nil, &domain.ValidationError{Field: "end_date", Message: "end date must not be before start date"}
	}

	var rsv *domain.Reservation
	err := s.store.WithinSerializableTx(ctx, func(repos repository.Repositories) error {
		var err error
		rsv, err = repos.Reservations().GetByID(ctx, reservationID)
		if err != nil {
			return err
		}

		if !domain.IsStaffRole(actor.Role) {
			if rsv.UserID != actor.UserID {
				return &domain.PermissionError{Actor: actor, Message: "cannot modify another user's reservation"}
			}
			if utils.HoursUntilStart(s.now(), rsv.StartDate) <= ownerModificationFloorHours {
				return &domain.PermissionError{Actor: actor, Message: "too close to the start date to modify this reservation"}
			}
		}
		if rsv.Status != domain.ReservationStatusPending {
			return &domain.ConflictError{Message: fmt.Sprintf("reservation %d is %s and its dates can no longer change", rsv.ID, rsv.Status)}
		}

		conflicts, err := repos.Reservations().ListOverlapping(ctx, rsv.ItemID, startDate, endDate, conflictStatuses, rsv.ID)
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			return &domain.ConflictError{
				Message:                 "new dates overlap an existing reservation",
				ConflictingReservations: conflicts,
			}
		}

		rsv.StartDate = startDate
		rsv.EndDate = endDate
		if err := repos.Reservations().Update(ctx, rsv); err != nil {
			return err
		}

		return repos.Audit().Create(ctx, &domain.AuditEntry{
			Action:     domain.AuditActionReservationRequest,
			EntityType: domain.EntityTypeReservation,
			EntityID:   rsv.ID,
			ActorID:    actor.UserID,
			ActorRole:  actor.Role,
			Payload:    domain.StatusChangePayload{From: string(rsv.Status), To: string(rsv.Status), Reason: "dates changed"},
		})
	})
	if err != nil {
		return nil, err
	}
	return rsv, nil
}

func (s *reservationService) Delete(ctx context.Context, actor domain.Actor, reservationID int32) error {
	if !domain.Can(actor.Role, domain.CapabilityDeleteReservations) {
		return &domain.PermissionError{Actor: actor, Message: "cannot delete reservations"}
	}

	return s.store.WithinTx(ctx, func(repos repository.Repositories) error {
		rsv, err := repos.Reservations().GetByID(ctx, reservationID)
		if err != nil {
			return err
		}
		if !domain.TerminalReservationStatus(rsv.Status) {
			return &domain.ConflictError{Message: fmt.Sprintf("reservation %d is %s; only terminal reservations may be deleted", rsv.ID, rsv.Status)}
		}
		if err := repos.Reservations().Delete(ctx, reservationID); err != nil {
			return err
		}
		return repos.Audit().Create(ctx, &domain.AuditEntry{
			Action:     domain.AuditActionReservationDelete,
			EntityType: domain.EntityTypeReservation,
			EntityID:   rsv.ID,
			ActorID:    actor.UserID,
			ActorRole:  actor.Role,
			Payload:    domain.StatusChangePayload{From: string(rsv.Status), To: "DELETED"},
		})
	})
}

func (s *reservationService) Get(ctx context.Context, actor domain.Actor, reservationID int32) (*domain.Reservation, error) {
	rsv, err := s.store.Reservations().GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if rsv.UserID != actor.UserID && !domain.IsStaffRole(actor.Role) {
		return nil, &domain.PermissionError{Actor: actor, Message: "cannot view another user's reservation"}
	}
	return rsv, nil
}

func (s *reservationService) ListByUser(ctx context.Context, actor domain.Actor, userID int32, status string, page, pageSize int32) ([]domain.Reservation, int32, error) {
	if userID != actor.UserID && !domain.IsStaffRole(actor.Role) {
		return nil, 0, &domain.PermissionError{Actor: actor, Message: "cannot list another user's reservations"}
	}
	return s.store.Reservations().ListByUser(ctx, userID, status, page, pageSize)
}

// releaseItemHold frees a RESERVED item when the reservation that held it
// leaves the APPROVED state and nothing else holds the item.
func (s *reservationService) releaseItemHold(ctx context.Context, repos repository.Repositories, rsv *domain.Reservation, fromStatus domain.ReservationStatus, actor domain.Actor) error {
	if fromStatus != domain.ReservationStatusApproved {
		return nil
	}
	item, err := repos.Items().GetByID(ctx, rsv.ItemID)
	if err != nil {
		return err
	}
	if item.Status != domain.ItemStatusReserved {
		return nil
	}
	holders, err := repos.Reservations().ListByItem(ctx, item.ID, conflictStatuses)
	if err != nil {
		return err
	}
	if len(holders) > 0 {
		return nil
	}
	_, err = s.items.ApplyTransitionWithin(ctx, repos, item.ID, domain.ItemStatusAvailable, actor, fmt.Sprintf("reservation %d released its hold", rsv.ID), false)
	return err
}
