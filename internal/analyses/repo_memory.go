package analyses

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo stores analyses in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu     sync.RWMutex
	byUser map[string][]Analysis
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byUser: make(map[string][]Analysis)}
}

// Create stores the analysis.
func (r *MemoryRepo) Create(ctx context.Context, analysis Analysis) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byUser[analysis.UserID] = append(r.byUser[analysis.UserID], analysis)
	return nil
}

// GetLatestByUser returns the newest analysis for a user.
func (r *MemoryRepo) GetLatestByUser(ctx context.Context, userID string) (Analysis, error) {
	if err := ctx.Err(); err != nil {
		return Analysis{}, err
	}
	all, err := r.ListByUser(ctx, userID, 1, 0)
	if err != nil {
		return Analysis{}, err
	}
	if len(all) == 0 {
		return Analysis{}, ErrNotFound
	}
	return all[0], nil
}

// ListByUser returns analyses for a user, newest first, with limit/offset.
// A limit of zero or less means no limit.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}

	r.mu.RLock()
	userAnalyses := r.byUser[userID]
	r.mu.RUnlock()

	if len(userAnalyses) == 0 || offset >= len(userAnalyses) {
		return []Analysis{}, nil
	}

	out := make([]Analysis, len(userAnalyses))
	copy(out, userAnalyses)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AnalyzedAt.After(out[j].AnalyzedAt)
	})

	end := len(out)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return out[offset:end], nil
}

// DeleteByUser removes all analyses for a user and reports how many were
// deleted.
func (r *MemoryRepo) DeleteByUser(ctx context.Context, userID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	deleted := len(r.byUser[userID])
	delete(r.byUser, userID)
	return deleted, nil
}

// ClaimGuest reassigns all analyses from a guest identity to a logged-in
// user and reports how many moved.
func (r *MemoryRepo) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	moved := r.byUser[guestUserID]
	if len(moved) == 0 {
		return 0, nil
	}
	for i := range moved {
		moved[i].UserID = authedUserID
	}
	r.byUser[authedUserID] = append(r.byUser[authedUserID], moved...)
	delete(r.byUser, guestUserID)
	return len(moved), nil
}

var _ Repo = (*MemoryRepo)(nil)
