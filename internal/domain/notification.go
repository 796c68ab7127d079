package domain

type NotificationType string

const (
	NotificationTypeReminder    NotificationType = "REMINDER"
	NotificationTypeWarning     NotificationType = "WARNING"
	NotificationTypeFinalNotice NotificationType = "FINAL_NOTICE"
)

// NotificationRequest is handed to the external notification collaborator.
// The core decides what to notify about, never how delivery happens.
type NotificationRequest struct {
	ReservationIDs []int32          `json:"reservation_ids"`
	Type           NotificationType `json:"notification_type"`
}
