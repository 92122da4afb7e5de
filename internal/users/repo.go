package users

import "context"

var ErrNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "user not found" }

type Repo interface {
	Upsert(ctx context.Context, user User) error
	GetByID(ctx context.Context, userID string) (User, error)

	// SyncResume overwrites the user's resume URL and, when skills is
	// non-nil, replaces the skill list wholesale. A nil skills slice leaves
	// the stored skills untouched. Creates the profile row if absent.
	SyncResume(ctx context.Context, userID, resumeURL string, skills []string) error
}
