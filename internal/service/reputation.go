package service

import (
	"context"
	"fmt"

	"lendtrack-backend/internal/domain"
	"lendtrack-backend/internal/repository"
)

type reputationService struct {
	store repository.Store
}

func NewReputationService(store repository.Store) ReputationService {
	return &reputationService{store: store}
}

// Apply mutates the trust score only as "delta + ledger entry" so the cached
// score and the append-only history stay consistent under concurrent penalty
// sources. It must run inside the transaction of the triggering domain event.
func (s *reputationService) Apply(ctx context.Context, repos repository.Repositories, userID, delta int32, reason string) (*domain.ReputationEntry, error) {
	user, err := repos.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	entry := &domain.ReputationEntry{
		UserID:        userID,
		Change:        delta,
		Reason:        reason,
		PreviousScore: user.TrustScore,
		NewScore:      user.TrustScore + delta,
	}
	if err := repos.Reputation().Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("append reputation entry: %w", err)
	}
	if err := repos.Users().UpdateTrustScore(ctx, userID, entry.NewScore); err != nil {
		return nil, fmt.Errorf("update trust score: %w", err)
	}
	return entry, nil
}

func (s *reputationService) History(ctx context.Context, userID int32, page, pageSize int32) ([]domain.ReputationEntry, int32, error) {
	return s.store.Reputation().ListByUser(ctx, userID, page, pageSize)
}

func (s *reputationService) Summary(ctx context.Context, userID int32) (*domain.ReputationSummary, error) {
	return s.store.Reputation().GetSummary(ctx, userID)
}
