package service

import (
	"context"
	"fmt"

	"lendtrack-backend/internal/domain"
	"lendtrack-backend/internal/repository"
)

type itemService struct {
	store repository.Store
}

func NewItemService(store repository.Store) ItemService {
	return &itemService{store: store}
}

func (s *itemService) CreateItem(ctx context.Context, actor domain.Actor, item *domain.Item) error {
	if !domain.Can(actor.Role, domain.CapabilityManageItems) {
		return &domain.PermissionError{Actor: actor, Message: "cannot create items"}
	}
	if item.Name == "" {
		return &domain.ValidationError{Field: "name", Message: "item name is required"}
	}
	if item.Status == "" {
		item.Status = domain.ItemStatusAvailable
	}
	if !domain.ValidItemStatus(item.Status) {
		return &domain.ValidationError{Field: "status", Message: fmt.Sprintf("unknown item status %q", item.Status)}
	}
	if !domain.ValidItemCondition(item.Condition) {
		return &domain.ValidationError{Field: "condition", Message: fmt.Sprintf("unknown item condition %q", item.Condition)}
	}
	item.CreatedBy = actor.UserID
	return s.store.Items().Create(ctx, item)
}

func (s *itemService) GetItem(ctx context.Context, id int32) (*domain.Item, error) {
	return s.store.Items().GetByID(ctx, id)
}

func (s *itemService) ListItems(ctx context.Context, status string, page, pageSize int32) ([]domain.Item, int32, error) {
	return s.store.Items().List(ctx, status, page, pageSize)
}

func (s *itemService) ApplyTransition(ctx context.Context, itemID int32, newStatus domain.ItemStatus, actor domain.Actor, reason string, force bool) (*domain.Item, error) {
	if !domain.Can(actor.Role, domain.CapabilityManageItems) {
		return nil, &domain.PermissionError{Actor: actor, Message: "cannot change item status"}
	}
	if force && !domain.Can(actor.Role, domain.CapabilityForceTransition) {
		return nil, &domain.PermissionError{Actor: actor, Message: "cannot force item transitions"}
	}

	var item *domain.Item
	err := s.store.WithinTx(ctx, func(repos repository.Repositories) error {
		var err error
		item, err = s.ApplyTransitionWithin(ctx, repos, itemID, newStatus, actor, reason, force)
		return err
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// ApplyTransitionWithin enforces the transition table and guards but not actor
// permissions: callers inside the service layer have already authorized their
// own operation and the item change is a side effect of it.
func (s *itemService) ApplyTransitionWithin(ctx context.Context, repos repository.Repositories, itemID int32, newStatus domain.ItemStatus, actor domain.Actor, reason string, force bool) (*domain.Item, error) {
	if !domain.ValidItemStatus(newStatus) {
		return nil, &domain.ValidationError{Field: "status", Message: fmt.Sprintf("unknown item status %q", newStatus)}
	}

	item, err := repos.Items().GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.Status == newStatus {
		return nil, &domain.ConflictError{Message: fmt.Sprintf("item %d is already %s", itemID, newStatus)}
	}

	// The transition table binds even under force; force only bypasses the
	// reservation guards below.
	if !domain.CanTransitionItem(item.Status, newStatus) {
		return nil, &domain.ConflictError{Message: fmt.Sprintf("cannot transition item from %s to %s", item.Status, newStatus)}
	}

	if !force {
		if err := s.checkGuards(ctx, repos, item, newStatus); err != nil {
			return nil, err
		}
	}

	if newStatus == domain.ItemStatusRetired || newStatus == domain.ItemStatusMaintenance {
		if err := s.cascadeCancellations(ctx, repos, item, newStatus, actor); err != nil {
			return nil, err
		}
	}

	fromStatus := item.Status
	item.Status = newStatus
	if err := repos.Items().Update(ctx, item); err != nil {
		return nil, err
	}

	audit := &domain.AuditEntry{
		Action:     domain.AuditActionItemStatusChange,
		EntityType: domain.EntityTypeItem,
		EntityID:   item.ID,
		ActorID:    actor.UserID,
		ActorRole:  actor.Role,
		Payload: domain.StatusChangePayload{
			From:   string(fromStatus),
			To:     string(newStatus),
			Reason: reason,
			Forced: force,
		},
	}
	if err := repos.Audit().Create(ctx, audit); err != nil {
		return nil, fmt.Errorf("write audit entry: %w", err)
	}
	return item, nil
}

func (s *itemService) checkGuards(ctx context.Context, repos repository.Repositories, item *domain.Item, newStatus domain.ItemStatus) error {
	switch newStatus {
	case domain.ItemStatusRetired:
		blocking, err := repos.Reservations().ListByItem(ctx, item.ID, []domain.ReservationStatus{
			domain.ReservationStatusPending, domain.ReservationStatusApproved, domain.ReservationStatusActive,
		})
		if err != nil {
			return err
		}
		if len(blocking) > 0 {
			return &domain.ConflictError{
				Message:                 "cannot retire item with active reservations",
				ConflictingReservations: blocking,
			}
		}
	case domain.ItemStatusMaintenance:
		if item.Status == domain.ItemStatusBorrowed {
			active, err := repos.Reservations().CountActiveByItem(ctx, item.ID)
			if err != nil {
				return err
			}
			if active > 0 {
				return &domain.ConflictError{Message: "cannot move borrowed item to maintenance before it is returned"}
			}
		}
	case domain.ItemStatusBorrowed:
		active, err := repos.Reservations().CountActiveByItem(ctx, item.ID)
		if err != nil {
			return err
		}
		if active == 0 {
			return &domain.ConflictError{Message: "cannot mark item borrowed without an active reservation"}
		}
	}
	return nil
}

// cascadeCancellations cancels PENDING and APPROVED reservations when the item
// leaves circulation. ACTIVE reservations are left untouched: the borrower
// still holds the item.
func (s *itemService) cascadeCancellations(ctx context.Context, repos repository.Repositories, item *domain.Item, newStatus domain.ItemStatus, actor domain.Actor) error {
	dependents, err := repos.Reservations().ListByItem(ctx, item.ID, []domain.ReservationStatus{
		domain.ReservationStatusPending, domain.ReservationStatusApproved,
	})
	if err != nil {
		return err
	}

	for i := range dependents {
		rsv := &dependents[i]
		fromStatus := rsv.Status

		var reason string
		if fromStatus == domain.ReservationStatusPending {
			reason = fmt.Sprintf("item moved to %s", newStatus)
		} else {
			reason = fmt.Sprintf("item became unavailable due to %s", newStatus)
		}

		rsv.Status = domain.ReservationStatusCancelled
		rsv.CancelReason = reason
		if err := repos.Reservations().Update(ctx, rsv); err != nil {
			return err
		}

		audit := &domain.AuditEntry{
			Action:     domain.AuditActionReservationCancel,
			EntityType: domain.EntityTypeReservation,
			EntityID:   rsv.ID,
			ActorID:    actor.UserID,
			ActorRole:  actor.Role,
			Payload: domain.CancellationPayload{
				From:    string(fromStatus),
				Reason:  reason,
				ByOwner: false,
			},
		}
		if err := repos.Audit().Create(ctx, audit); err != nil {
			return fmt.Errorf("write audit entry: %w", err)
		}
	}
	return nil
}
