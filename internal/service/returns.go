package service

import (
	"context"
	"fmt"
	"time"

	"lendtrack-backend/internal/domain"
	"lendtrack-backend/internal/repository"
	"lendtrack-backend/internal/utils"
)

type returnService struct {
	store      repository.Store
	items      ItemService
	reputation ReputationService
	now        func() time.Time
}

func NewReturnService(store repository.Store, items ItemService, reputation ReputationService) ReturnService {
	return &returnService{store: store, items: items, reputation: reputation, now: time.Now}
}

func (s *returnService) InitiateReturn(ctx context.Context, actor domain.Actor, reservationID int32, condition domain.ItemCondition, damageReport string) (*domain.ReturnRecord, error) {
	if !domain.ValidItemCondition(condition) {
		return nil, &domain.ValidationError{Field: "condition_on_return", Message: fmt.Sprintf("unknown item condition %q", condition)}
	}

	var ret *domain.ReturnRecord
	err := s.store.WithinTx(ctx, func(repos repository.Repositories) error {
		rsv, err := repos.Reservations().GetByID(ctx, reservationID)
		if err != nil {
			return err
		}
		if rsv.UserID != actor.UserID && !domain.IsStaffRole(actor.Role) {
			return &domain.PermissionError{Actor: actor, Message: "only the borrower or staff may report a return"}
		}
		if rsv.Status != domain.ReservationStatusActive {
			return &domain.ConflictError{Message: fmt.Sprintf("reservation %d is %s; only active loans can be returned", rsv.ID, rsv.Status)}
		}

		if existing, err := repos.Returns().GetByReservationID(ctx, reservationID); err == nil {
			return &domain.ConflictError{Message: fmt.Sprintf("reservation %d already has return %d", reservationID, existing.ID)}
		} else if !domain.IsNotFound(err) {
			return err
		}

		item, err := repos.Items().GetByID(ctx, rsv.ItemID)
		if err != nil {
			return err
		}

		ret = &domain.ReturnRecord{
			ReservationID:     rsv.ID,
			UserID:            rsv.UserID,
			Status:            domain.ReturnStatusPending,
			ConditionAtLoan:   item.Condition,
			ConditionOnReturn: condition,
			ReturnDate:        s.now(),
			DamageReport:      damageReport,
		}
		if err := repos.Returns().Create(ctx, ret); err != nil {
			return err
		}

		return repos.Audit().Create(ctx, &domain.AuditEntry{
			Action:     domain.AuditActionReturnInitiate,
			EntityType: domain.EntityTypeReturn,
			EntityID:   ret.ID,
			ActorID:    actor.UserID,
			ActorRole:  actor.Role,
			Payload:    domain.StatusChangePayload{From: "", To: string(domain.ReturnStatusPending)},
		})
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}

func (s *returnService) ConfirmReturn(ctx context.Context, actor domain.Actor, returnID int32, approved bool, assessment *domain.StaffAssessment, rejectionReason string) (*ReturnConfirmation, error) {
	if !domain.Can(actor.Role, domain.CapabilityConfirmReturn) {
		return nil, &domain.PermissionError{Actor: actor, Message: "cannot confirm returns"}
	}
	if assessment != nil && assessment.ConditionOnReturn != "" && !domain.ValidItemCondition(assessment.ConditionOnReturn) {
		return nil, &domain.ValidationError{Field: "condition_on_return", Message: fmt.Sprintf("unknown item condition %q", assessment.ConditionOnReturn)}
	}

	result := &ReturnConfirmation{}
	err := s.store.WithinTx(ctx, func(repos repository.Repositories) error {
		ret, err := repos.Returns().GetByID(ctx, returnID)
		if err != nil {
			return err
		}
		// Idempotency guard: a retried confirmation must fail, not re-apply.
		if ret.Status != domain.ReturnStatusPending {
			return &domain.ConflictError{Message: fmt.Sprintf("return %d already processed (%s)", ret.ID, ret.Status)}
		}

		rsv, err := repos.Reservations().GetByID(ctx, ret.ReservationID)
		if err != nil {
			return err
		}

		assessed := ret.ConditionOnReturn
		damageReport := ret.DamageReport
		if assessment != nil {
			if assessment.ConditionOnReturn != "" {
				assessed = assessment.ConditionOnReturn
			}
			if assessment.DamageReport != "" {
				damageReport = assessment.DamageReport
			}
			ret.StaffNotes = assessment.Notes
		}

		// Penalty: the larger of any pre-existing penalty on the record and
		// the condition-degradation penalty; a staff override replaces both.
		// Only the confirmation-time share is charged here — a penalty already
		// charged by the overdue scan stays charged and is not re-applied.
		conditionPenalty := utils.ConditionPenalty(ret.ConditionAtLoan, assessed)
		recordPenalty := ret.PenaltyAmount
		if conditionPenalty > recordPenalty {
			recordPenalty = conditionPenalty
		}
		chargeNow := conditionPenalty
		penaltyReason := "condition degradation penalty"
		if assessment != nil && assessment.PenaltyOverride != nil {
			recordPenalty = *assessment.PenaltyOverride
			chargeNow = *assessment.PenaltyOverride
			penaltyReason = "staff penalty adjustment"
		}

		finalStatus := domain.ReturnStatusRejected
		if approved {
			finalStatus = domain.ReturnStatusApproved
		}
		// Damage forces the DAMAGED outcome regardless of the approved flag.
		if assessed == domain.ItemConditionDamaged || damageReport != "" {
			finalStatus = domain.ReturnStatusDamaged
		}

		ret.Status = finalStatus
		ret.ConditionOnReturn = assessed
		ret.DamageReport = damageReport
		ret.PenaltyAmount = recordPenalty
		if recordPenalty > 0 {
			ret.PenaltyApplied = true
			if ret.PenaltyReason == "" || chargeNow > 0 {
				ret.PenaltyReason = penaltyReason
			}
		}
		if !approved {
			ret.RejectionReason = rejectionReason
		}
		ret.ProcessedBy = &actor.UserID
		if err := repos.Returns().Update(ctx, ret); err != nil {
			return err
		}

		if approved {
			endDate := ret.ReturnDate
			rsv.Status = domain.ReservationStatusCompleted
			rsv.ActualEndDate = &endDate
			if err := repos.Reservations().Update(ctx, rsv); err != nil {
				return err
			}
			result.Actions.ReservationCompleted = true

			itemTarget := domain.ItemStatusAvailable
			if finalStatus == domain.ReturnStatusDamaged {
				itemTarget = domain.ItemStatusMaintenance
			}
			item, err := s.items.ApplyTransitionWithin(ctx, repos, rsv.ItemID, itemTarget, actor, fmt.Sprintf("return %d confirmed", ret.ID), false)
			if err != nil {
				return err
			}
			item.Condition = assessed
			if err := repos.Items().Update(ctx, item); err != nil {
				return err
			}
			result.Actions.ItemStatusUpdated = true
		}

		if chargeNow > 0 {
			if _, err := s.reputation.Apply(ctx, repos, ret.UserID, -chargeNow, penaltyReason); err != nil {
				return err
			}
			result.Actions.TrustScoreUpdated = true
			result.Actions.PenaltyApplied = true
		}

		audit := &domain.AuditEntry{
			Action:     domain.AuditActionReturnConfirm,
			EntityType: domain.EntityTypeReturn,
			EntityID:   ret.ID,
			ActorID:    actor.UserID,
			ActorRole:  actor.Role,
			Payload: domain.ReturnAssessmentPayload{
				Approved:          approved,
				FinalStatus:       finalStatus,
				ConditionAtLoan:   ret.ConditionAtLoan,
				ConditionOnReturn: assessed,
				PenaltyAmount:     recordPenalty,
				PenaltyReason:     ret.PenaltyReason,
				DamageReport:      damageReport,
				RejectionReason:   ret.RejectionReason,
				StaffNotes:        ret.StaffNotes,
			},
		}
		if err := repos.Audit().Create(ctx, audit); err != nil {
			return fmt.Errorf("write audit entry: %w", err)
		}

		result.Return = ret
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Metrics is the read-only derived view: it never mutates anything.
func (s *returnService) Metrics(ctx context.Context, returnID int32) (*domain.ReturnMetrics, error) {
	ret, err := s.store.Returns().GetByID(ctx, returnID)
	if err != nil {
		return nil, err
	}
	rsv, err := s.store.Reservations().GetByID(ctx, ret.ReservationID)
	if err != nil {
		return nil, err
	}

	pickedUp := rsv.StartDate
	if rsv.ActualStartDate != nil {
		pickedUp = *rsv.ActualStartDate
	}

	return &domain.ReturnMetrics{
		ReturnID:           ret.ID,
		IsOverdue:          ret.ReturnDate.After(rsv.EndDate),
		DaysOverdue:        utils.DaysOverdue(rsv.EndDate, ret.ReturnDate),
		BorrowDurationDays: utils.BorrowDurationDays(pickedUp, ret.ReturnDate),
		ConditionDegraded:  utils.ConditionScore(ret.ConditionOnReturn) < utils.ConditionScore(ret.ConditionAtLoan),
	}, nil
}
