package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"lendtrack-backend/internal/domain"
)

// bulkConcurrency bounds the scatter/gather fan-out of one bulk call.
const bulkConcurrency = 8

type bulkService struct {
	reservations ReservationService
	returns      ReturnService
}

func NewBulkService(reservations ReservationService, returns ReturnService) BulkService {
	return &bulkService{reservations: reservations, returns: returns}
}

func (s *bulkService) ApplyToReservations(ctx context.Context, actor domain.Actor, action BulkReservationAction, ids []int32, reason string) (*BulkResult, error) {
	if !domain.Can(actor.Role, domain.CapabilityBulkOperations) {
		return nil, &domain.PermissionError{Actor: actor, Message: "cannot run bulk operations"}
	}
	switch action {
	case BulkReservationApprove, BulkReservationReject, BulkReservationCancel:
	case BulkReservationDelete:
		if !domain.Can(actor.Role, domain.CapabilityDeleteReservations) {
			return nil, &domain.PermissionError{Actor: actor, Message: "cannot bulk-delete reservations"}
		}
	default:
		return nil, &domain.ValidationError{Field: "action", Message: fmt.Sprintf("unknown reservation action %q", action)}
	}
	if len(ids) == 0 {
		return nil, &domain.ValidationError{Field: "reservation_ids", Message: "at least one id is required"}
	}

	return s.scatter(ctx, ids, func(ctx context.Context, id int32) (int32, error) {
		switch action {
		case BulkReservationApprove:
			_, err := s.reservations.Approve(ctx, actor, id)
			return 0, err
		case BulkReservationReject:
			_, err := s.reservations.Reject(ctx, actor, id, reason)
			return 0, err
		case BulkReservationCancel:
			_, penalty, err := s.reservations.Cancel(ctx, actor, id, reason)
			return penalty, err
		default:
			return 0, s.reservations.Delete(ctx, actor, id)
		}
	}), nil
}

func (s *bulkService) ApplyToReturns(ctx context.Context, actor domain.Actor, action BulkReturnAction, ids []int32, rejectionReason string) (*BulkResult, error) {
	if !domain.Can(actor.Role, domain.CapabilityBulkOperations) {
		return nil, &domain.PermissionError{Actor: actor, Message: "cannot run bulk operations"}
	}
	if action != BulkReturnApprove && action != BulkReturnReject {
		return nil, &domain.ValidationError{Field: "action", Message: fmt.Sprintf("unknown return action %q", action)}
	}
	if len(ids) == 0 {
		return nil, &domain.ValidationError{Field: "return_ids", Message: "at least one id is required"}
	}

	approved := action == BulkReturnApprove
	return s.scatter(ctx, ids, func(ctx context.Context, id int32) (int32, error) {
		conf, err := s.returns.ConfirmReturn(ctx, actor, id, approved, nil, rejectionReason)
		if err != nil {
			return 0, err
		}
		if conf.Actions.PenaltyApplied {
			return conf.Return.PenaltyAmount, nil
		}
		return 0, nil
	}), nil
}

// scatter runs one operation per id concurrently, each atomic on its own.
// Failures are captured per id and never abort or roll back any other id.
func (s *bulkService) scatter(ctx context.Context, ids []int32, op func(ctx context.Context, id int32) (int32, error)) *BulkResult {
	outcomes := make([]BulkOutcome, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bulkConcurrency)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			penalty, err := op(gctx, id)
			if err != nil {
				outcomes[i] = BulkOutcome{ID: id, Error: err.Error()}
			} else {
				outcomes[i] = BulkOutcome{ID: id, Success: true, PenaltyApplied: penalty}
			}
			// Never propagate: one id's failure must not cancel the rest.
			return nil
		})
	}
	_ = g.Wait()

	result := &BulkResult{Attempted: int32(len(ids)), Outcomes: outcomes}
	for _, o := range outcomes {
		if o.Success {
			result.Succeeded++
			result.TotalPenalties += o.PenaltyApplied
		} else {
			result.Failed++
		}
	}
	return result
}
