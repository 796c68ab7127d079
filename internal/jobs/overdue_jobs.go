package jobs

import (
	"context"

	"lendtrack-backend/internal/domain"
	"lendtrack-backend/internal/logger"
	"lendtrack-backend/internal/service"
)

// ScanOverdueReservations runs the overdue scan with the configured policy
// defaults, acting as the system user.
func (jr *JobRunner) ScanOverdueReservations() {
	jr.runWithRecovery("ScanOverdueReservations", func() {
		ctx := context.Background()
		cfg := jr.config.Overdue

		actor := domain.Actor{UserID: cfg.SystemActorID, Role: domain.RoleAdmin}
		result, err := jr.services.Overdue.Scan(ctx, actor, service.OverdueScanParams{
			ThresholdDays:       cfg.ThresholdDays,
			AutoInitiateReturns: cfg.AutoInitiateReturns,
			PenaltyMultiplier:   cfg.PenaltyMultiplier,
		})
		if err != nil {
			logger.Error("Overdue scan failed", "error", err)
			return
		}

		logger.Info("Overdue scan finished",
			"processed", len(result.Processed),
			"total_penalties", result.TotalPenalties,
			"auto_returns_created", result.AutoReturnsCreated,
			"average_days_overdue", result.AverageDaysOverdue)

		for _, r := range result.Processed {
			if r.Error != "" {
				logger.Warn("Overdue reservation skipped", "reservation_id", r.ReservationID, "error", r.Error)
				continue
			}
			logger.Debug("Overdue reservation penalized",
				"reservation_id", r.ReservationID,
				"user_id", r.UserID,
				"days_overdue", r.DaysOverdue,
				"severity", r.Severity,
				"penalty", r.FinalPenalty)
		}
	})
}
