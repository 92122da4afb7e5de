package analyses

import "context"

// Repo defines persistence operations for analyses. Records are create-only;
// no update operation exists.
type Repo interface {
	Create(ctx context.Context, analysis Analysis) error
	GetLatestByUser(ctx context.Context, userID string) (Analysis, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Analysis, error)
	DeleteByUser(ctx context.Context, userID string) (int, error)
}
