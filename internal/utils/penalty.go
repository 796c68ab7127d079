package utils

import (
	"math"
	"time"

	"lendtrack-backend/internal/domain"
)

// Policy constants for the penalty and severity formulas. Severity thresholds
// drive notification urgency, not penalty magnitude.
const (
	CancellationGraceHours   = 24
	LateCancellationPenalty  = 5
	PostStartCancellationPenalty = 10

	OverduePenaltyPerDay = 2
	OverduePenaltyCap    = 30

	MinPenaltyMultiplier     = 0.5
	MaxPenaltyMultiplier     = 3.0
	DefaultPenaltyMultiplier = 1.0

	SeverityHighDays     = 7
	SeverityCriticalDays = 14

	ConditionPenaltyPerGrade = 5
)

type Severity string

const (
	SeverityModerate Severity = "MODERATE"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

var conditionScores = map[domain.ItemCondition]int32{
	domain.ItemConditionExcellent: 5,
	domain.ItemConditionGood:      4,
	domain.ItemConditionFair:      3,
	domain.ItemConditionPoor:      2,
	domain.ItemConditionDamaged:   1,
}

// ConditionScore ranks a condition from 5 (EXCELLENT) down to 1 (DAMAGED).
// Unknown conditions rank 0.
func ConditionScore(c domain.ItemCondition) int32 {
	return conditionScores[c]
}

// ConditionPenalty computes the trust penalty for condition degradation between
// loan time and return time. Zero when the condition did not degrade.
func ConditionPenalty(atLoan, assessed domain.ItemCondition) int32 {
	diff := ConditionScore(atLoan) - ConditionScore(assessed)
	if diff <= 0 {
		return 0
	}
	return diff * ConditionPenaltyPerGrade
}

// ClampMultiplier bounds an operator-supplied penalty multiplier to the policy
// range. A zero value selects the default.
func ClampMultiplier(m float64) float64 {
	if m == 0 {
		return DefaultPenaltyMultiplier
	}
	if m < MinPenaltyMultiplier {
		return MinPenaltyMultiplier
	}
	if m > MaxPenaltyMultiplier {
		return MaxPenaltyMultiplier
	}
	return m
}

// OverdueBasePenalty is min(daysOverdue * 2, 30), never negative.
func OverdueBasePenalty(daysOverdue int32) int32 {
	if daysOverdue <= 0 {
		return 0
	}
	p := daysOverdue * OverduePenaltyPerDay
	if p > OverduePenaltyCap {
		return OverduePenaltyCap
	}
	return p
}

// OverduePenalty applies the bounded multiplier to the base penalty, rounding
// to the nearest point.
func OverduePenalty(daysOverdue int32, multiplier float64) int32 {
	return int32(math.Round(float64(OverdueBasePenalty(daysOverdue)) * ClampMultiplier(multiplier)))
}

// ClassifySeverity buckets days overdue into MODERATE, HIGH or CRITICAL.
func ClassifySeverity(daysOverdue int32) Severity {
	switch {
	case daysOverdue >= SeverityCriticalDays:
		return SeverityCritical
	case daysOverdue >= SeverityHighDays:
		return SeverityHigh
	default:
		return SeverityModerate
	}
}

// NotificationTypeFor maps overdue severity to notification urgency.
func NotificationTypeFor(s Severity) domain.NotificationType {
	switch s {
	case SeverityCritical:
		return domain.NotificationTypeFinalNotice
	case SeverityHigh:
		return domain.NotificationTypeWarning
	default:
		return domain.NotificationTypeReminder
	}
}

// CancellationPenalty returns the trust penalty magnitude for a borrower
// cancelling at the given moment relative to the reservation start.
// Zero with at least a full grace window remaining, 5 inside the window,
// 10 once the start has passed.
func CancellationPenalty(now, startDate time.Time) int32 {
	hours := startDate.Sub(now).Hours()
	switch {
	case hours >= CancellationGraceHours:
		return 0
	case hours > 0:
		return LateCancellationPenalty
	default:
		return PostStartCancellationPenalty
	}
}

// DaysOverdue counts whole-or-partial days elapsed past due, zero when at is
// not past due.
func DaysOverdue(dueDate, at time.Time) int32 {
	if !at.After(dueDate) {
		return 0
	}
	return int32(math.Ceil(at.Sub(dueDate).Hours() / 24))
}

// BorrowDurationDays is ceil((returned - pickedUp) / 1 day), minimum 1 for any
// positive duration.
func BorrowDurationDays(pickedUp, returned time.Time) int32 {
	if !returned.After(pickedUp) {
		return 0
	}
	return int32(math.Ceil(returned.Sub(pickedUp).Hours() / 24))
}

// HoursUntilStart is the signed distance from now to the reservation start,
// negative once the start has passed. Used by the owner-modification predicate.
func HoursUntilStart(now, startDate time.Time) float64 {
	return startDate.Sub(now).Hours()
}
