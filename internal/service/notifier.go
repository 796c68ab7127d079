package service

import (
	"context"

	"lendtrack-backend/internal/domain"
	"lendtrack-backend/internal/logger"
)

// logNotifier records notification requests without delivering anything.
// Delivery channels plug in behind the Notifier interface.
type logNotifier struct{}

func NewLogNotifier() Notifier {
	return &logNotifier{}
}

func (n *logNotifier) RequestNotifications(ctx context.Context, req domain.NotificationRequest) error {
	logger.Info("Notification requested",
		"type", req.Type,
		"reservations", len(req.ReservationIDs))
	return nil
}
