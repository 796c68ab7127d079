package service

import (
	"context"
	"fmt"
	"time"

	"lendtrack-backend/internal/domain"
	"lendtrack-backend/internal/logger"
	"lendtrack-backend/internal/repository"
	"lendtrack-backend/internal/utils"
)

type overdueService struct {
	store      repository.Store
	reputation ReputationService
	notifier   Notifier
	now        func() time.Time
}

func NewOverdueService(store repository.Store, reputation ReputationService, notifier Notifier) OverdueService {
	return &overdueService{store: store, reputation: reputation, notifier: notifier, now: time.Now}
}

func (s *overdueService) Scan(ctx context.Context, actor domain.Actor, params OverdueScanParams) (*OverdueScanResult, error) {
	if !domain.Can(actor.Role, domain.CapabilityRunOverdueScan) {
		return nil, &domain.PermissionError{Actor: actor, Message: "cannot run overdue scans"}
	}
	if params.ThresholdDays < 0 {
		return nil, &domain.ValidationError{Field: "days_overdue", Message: "threshold must not be negative"}
	}

	now := s.now()
	multiplier := utils.ClampMultiplier(params.PenaltyMultiplier)
	cutoff := now.Add(-time.Duration(params.ThresholdDays) * 24 * time.Hour)

	overdue, err := s.store.Reservations().ListOverdue(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list overdue reservations: %w", err)
	}

	result := &OverdueScanResult{}
	byType := map[domain.NotificationType][]int32{}
	var totalDays int64

	for i := range overdue {
		rsv := overdue[i]
		r := s.processOne(ctx, actor, &rsv, now, multiplier, params.AutoInitiateReturns)
		result.Processed = append(result.Processed, r)
		if r.Error != "" {
			continue
		}
		result.TotalPenalties += r.FinalPenalty
		if r.AutoReturnID != nil {
			result.AutoReturnsCreated++
		}
		totalDays += int64(r.DaysOverdue)
		byType[r.NotificationType] = append(byType[r.NotificationType], r.ReservationID)
	}

	if n := len(result.Processed); n > 0 {
		result.AverageDaysOverdue = float64(totalDays) / float64(n)
	}

	for _, t := range []domain.NotificationType{domain.NotificationTypeReminder, domain.NotificationTypeWarning, domain.NotificationTypeFinalNotice} {
		ids := byType[t]
		if len(ids) == 0 {
			continue
		}
		req := domain.NotificationRequest{ReservationIDs: ids, Type: t}
		result.Notifications = append(result.Notifications, req)
		if s.notifier != nil {
			if err := s.notifier.RequestNotifications(ctx, req); err != nil {
				logger.Error("Notification request failed", "type", t, "error", err)
			}
		}
	}

	return result, nil
}

// processOne applies the penalty (and optional auto-return) for one overdue
// reservation atomically. Failures are isolated per reservation so a broken
// record never aborts the whole scan.
func (s *overdueService) processOne(ctx context.Context, actor domain.Actor, rsv *domain.Reservation, now time.Time, multiplier float64, autoInitiate bool) OverdueReservationResult {
	days := utils.DaysOverdue(rsv.EndDate, now)
	severity := utils.ClassifySeverity(days)

	r := OverdueReservationResult{
		ReservationID:    rsv.ID,
		ItemID:           rsv.ItemID,
		UserID:           rsv.UserID,
		DaysOverdue:      days,
		Severity:         severity,
		BasePenalty:      utils.OverdueBasePenalty(days),
		FinalPenalty:     utils.OverduePenalty(days, multiplier),
		NotificationType: utils.NotificationTypeFor(severity),
	}

	err := s.store.WithinTx(ctx, func(repos repository.Repositories) error {
		// Charged immediately, independent of any penalty later applied when
		// the return is confirmed.
		if r.FinalPenalty > 0 {
			if _, err := s.reputation.Apply(ctx, repos, rsv.UserID, -r.FinalPenalty, "overdue item penalty"); err != nil {
				return err
			}
		}

		if autoInitiate {
			item, err := repos.Items().GetByID(ctx, rsv.ItemID)
			if err != nil {
				return err
			}
			// Assume the loan-time condition; staff correct it at confirmation.
			ret := &domain.ReturnRecord{
				ReservationID:     rsv.ID,
				UserID:            rsv.UserID,
				Status:            domain.ReturnStatusPending,
				ConditionAtLoan:   item.Condition,
				ConditionOnReturn: item.Condition,
				ReturnDate:        now,
				PenaltyApplied:    true,
				PenaltyAmount:     r.FinalPenalty,
				PenaltyReason:     "overdue item penalty",
				AutoInitiated:     true,
			}
			if err := repos.Returns().Create(ctx, ret); err != nil {
				return err
			}
			r.AutoReturnID = &ret.ID
		}

		return repos.Audit().Create(ctx, &domain.AuditEntry{
			Action:     domain.AuditActionOverduePenalty,
			EntityType: domain.EntityTypeReservation,
			EntityID:   rsv.ID,
			ActorID:    actor.UserID,
			ActorRole:  actor.Role,
			Payload: domain.OverduePenaltyPayload{
				DaysOverdue:  days,
				Severity:     string(severity),
				BasePenalty:  r.BasePenalty,
				Multiplier:   multiplier,
				FinalPenalty: r.FinalPenalty,
				AutoReturnID: r.AutoReturnID,
			},
		})
	})
	if err != nil {
		logger.Error("Overdue processing failed", "reservation_id", rsv.ID, "error", err)
		r.Error = err.Error()
		r.AutoReturnID = nil
	}
	return r
}
