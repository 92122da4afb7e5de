package account

import (
	"context"
	"errors"
	"strings"

	"placement-backend/internal/analyses"
	"placement-backend/internal/shared/storage/object"
	"placement-backend/internal/shared/telemetry"
	"placement-backend/internal/users"
)

// Service wipes a user's analysis history: stored resume files, analysis
// records, and the profile's resume fields.
type Service struct {
	AnalysisRepo analyses.Repo
	UsersRepo    users.Repo
	Store        object.ObjectStore
}

type WipeResult struct {
	DeletedAnalyses int `json:"deletedAnalyses"`
	DeletedFiles    int `json:"deletedFiles"`
}

func NewService(analysisRepo analyses.Repo, usersRepo users.Repo, store object.ObjectStore) *Service {
	return &Service{AnalysisRepo: analysisRepo, UsersRepo: usersRepo, Store: store}
}

// WipeHistory removes everything the analysis pipeline accumulated for a
// user. Stored files are deleted best-effort before the records; a file that
// fails to delete is logged and skipped rather than blocking the wipe.
func (s *Service) WipeHistory(ctx context.Context, userID string) (WipeResult, error) {
	if strings.TrimSpace(userID) == "" {
		return WipeResult{}, errors.New("userID is required")
	}

	const pageSize = 100
	var deletedFiles int
	for offset := 0; ; offset += pageSize {
		page, err := s.AnalysisRepo.ListByUser(ctx, userID, pageSize, offset)
		if err != nil {
			return WipeResult{}, err
		}
		for _, analysis := range page {
			if analysis.StorageKey == "" {
				continue
			}
			if err := s.Store.Delete(ctx, analysis.StorageKey); err != nil {
				telemetry.Error("account.file_delete_failed", map[string]any{
					"user_id":     userID,
					"storage_key": analysis.StorageKey,
					"err":         err.Error(),
				})
				continue
			}
			deletedFiles++
		}
		if len(page) < pageSize {
			break
		}
	}

	deleted, err := s.AnalysisRepo.DeleteByUser(ctx, userID)
	if err != nil {
		return WipeResult{}, err
	}

	if err := s.UsersRepo.SyncResume(ctx, userID, "", []string{}); err != nil {
		telemetry.Error("account.profile_reset_failed", map[string]any{
			"user_id": userID,
			"err":     err.Error(),
		})
	}

	return WipeResult{DeletedAnalyses: deleted, DeletedFiles: deletedFiles}, nil
}

type ClaimResult struct {
	MigratedAnalyses int `json:"migratedAnalyses"`
}

type guestAnalysisClaimer interface {
	ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error)
}

// ClaimGuest moves analyses created under a guest identity to a logged-in
// account. Calling it again for the same guest is a no-op.
func (s *Service) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (ClaimResult, error) {
	if strings.TrimSpace(guestUserID) == "" || strings.TrimSpace(authedUserID) == "" {
		return ClaimResult{}, errors.New("guestUserID and authedUserID are required")
	}
	claimer, ok := s.AnalysisRepo.(guestAnalysisClaimer)
	if !ok {
		return ClaimResult{}, errors.New("analyses repo does not support claim")
	}
	moved, err := claimer.ClaimGuest(ctx, guestUserID, authedUserID)
	if err != nil {
		return ClaimResult{}, err
	}
	return ClaimResult{MigratedAnalyses: moved}, nil
}
