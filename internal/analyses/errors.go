package analyses

import "errors"

var (
	ErrNotFound = errors.New("not found")

	// ErrPersistenceFailed indicates the analysis record write failed. The
	// caller may retry, but each retry creates a fresh record since no
	// deduplication exists.
	ErrPersistenceFailed = errors.New("persistence failed")

	// ErrProfileSyncFailed indicates the analysis record was persisted but
	// the follow-up profile update failed. The persisted record stands; the
	// caller receives it alongside this error as a partial-success warning.
	ErrProfileSyncFailed = errors.New("profile sync failed")
)
