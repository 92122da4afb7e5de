package analyses

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"placement-backend/internal/ats"
	"placement-backend/internal/extract"
	"placement-backend/internal/shared/metrics"
	"placement-backend/internal/shared/storage/object"
	"placement-backend/internal/shared/telemetry"
	"placement-backend/internal/usage"
	"placement-backend/internal/users"
)

const missingKeywordCap = 10

// Service runs the ATS analysis pipeline: store the upload, extract text,
// match keywords, detect sections, score, generate suggestions, persist the
// result, and sync the owner's profile.
type Service struct {
	Repo           Repo
	Users          *users.Service
	Usage          *usage.Service
	Store          object.ObjectStore
	ExtractTimeout time.Duration
	FileBaseURL    string
}

// Analyze runs one full pipeline pass for an uploaded resume. The stored
// file is deleted again on any failure before the record is persisted, so a
// failed call leaves no orphaned storage.
//
// When the record is persisted but the profile sync fails, Analyze returns
// the persisted record together with an error matching ErrProfileSyncFailed;
// callers should treat that as partial success.
func (s *Service) Analyze(ctx context.Context, userID, fileName, mimeType string, r io.Reader) (Analysis, error) {
	if strings.TrimSpace(userID) == "" {
		return Analysis{}, errors.New("userID is required")
	}
	if strings.TrimSpace(fileName) == "" {
		return Analysis{}, errors.New("fileName is required")
	}

	// Reject unsupported types before anything is written to storage.
	if extract.NormalizeType(mimeType, fileName) == "" {
		return Analysis{}, fmt.Errorf("%w: %s", extract.ErrUnsupportedFileType, mimeType)
	}

	if s.Usage != nil {
		ok, _, err := s.Usage.CanConsume(ctx, userID, 1)
		if err != nil {
			return Analysis{}, err
		}
		if !ok {
			return Analysis{}, usage.ErrLimitReached
		}
	}

	metrics.IncAnalysisStarted()
	started := time.Now()

	storageKey, sizeBytes, _, err := s.Store.Save(ctx, userID, fileName, r)
	if err != nil {
		metrics.IncAnalysisFailed()
		return Analysis{}, fmt.Errorf("store upload: %w", err)
	}

	text, err := s.extractWithTimeout(ctx, storageKey, mimeType, fileName)
	if err != nil {
		s.cleanupFile(ctx, storageKey)
		metrics.IncAnalysisFailed()
		return Analysis{}, err
	}

	found := ats.MatchKeywords(text)
	sections := ats.DetectSections(text)
	score := ats.Score(text, sections, len(found))

	analysis := Analysis{
		ID:            uuid.NewString(),
		UserID:        userID,
		ResumeURL:     s.fileURL(storageKey),
		FileName:      fileName,
		StorageKey:    storageKey,
		ATSScore:      score,
		ExtractedText: truncateText(text),
		Keywords: Keywords{
			Found:       found,
			Missing:     ats.MissingKeywords(found, missingKeywordCap),
			Suggestions: ats.KeywordSuggestions,
		},
		Sections: sections,
		Formatting: Formatting{
			Score:       ats.FormattingScore(text),
			Issues:      ats.FormattingIssues(text),
			Suggestions: ats.FormattingSuggestions(text),
		},
		OverallSuggestions: ats.Suggestions(sections, len(found), score),
		AnalyzedAt:         time.Now().UTC(),
	}

	if err := s.Repo.Create(ctx, analysis); err != nil {
		s.cleanupFile(ctx, storageKey)
		metrics.IncAnalysisFailed()
		return Analysis{}, fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
	}

	if s.Usage != nil {
		if _, err := s.Usage.Consume(ctx, userID, 1); err != nil {
			telemetry.Error("analysis.usage_consume_failed", map[string]any{
				"user_id":     userID,
				"analysis_id": analysis.ID,
				"err":         err.Error(),
			})
		}
	}

	metrics.IncAnalysisCompleted()
	metrics.ObserveAnalysisDurationMs(float64(time.Since(started).Microseconds()) / 1000.0)
	telemetry.Info("analysis.completed", map[string]any{
		"user_id":     userID,
		"analysis_id": analysis.ID,
		"ats_score":   score,
		"keywords":    len(found),
		"size_bytes":  sizeBytes,
		"duration_ms": float64(time.Since(started).Microseconds()) / 1000.0,
	})

	// Profile sync is best-effort secondary: the persisted record stands
	// even when the sync fails.
	if s.Users != nil {
		if err := s.Users.SyncResume(ctx, userID, analysis.ResumeURL, found); err != nil {
			telemetry.Error("analysis.profile_sync_failed", map[string]any{
				"user_id":     userID,
				"analysis_id": analysis.ID,
				"err":         err.Error(),
			})
			return analysis, fmt.Errorf("%w: %v", ErrProfileSyncFailed, err)
		}
	}

	return analysis, nil
}

// Latest returns the newest analysis for a user.
func (s *Service) Latest(ctx context.Context, userID string) (Analysis, error) {
	if strings.TrimSpace(userID) == "" {
		return Analysis{}, errors.New("userID is required")
	}
	return s.Repo.GetLatestByUser(ctx, userID)
}

// List returns a user's analysis history, newest first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Analysis, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, errors.New("userID is required")
	}
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

func (s *Service) extractWithTimeout(ctx context.Context, storageKey, mimeType, fileName string) (string, error) {
	timeout := s.ExtractTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	extractCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return extract.Text(extractCtx, s.Store, storageKey, mimeType, fileName)
}

// cleanupFile removes a just-stored upload after a pipeline failure. It runs
// detached from the request's cancellation so an aborted request still gets
// cleaned up.
func (s *Service) cleanupFile(ctx context.Context, storageKey string) {
	if err := s.Store.Delete(context.WithoutCancel(ctx), storageKey); err != nil {
		telemetry.Error("analysis.cleanup_failed", map[string]any{
			"storage_key": storageKey,
			"err":         err.Error(),
		})
	}
}

func (s *Service) fileURL(storageKey string) string {
	base := strings.TrimRight(s.FileBaseURL, "/")
	if base == "" {
		base = "/files"
	}
	return base + "/" + strings.TrimLeft(storageKey, "/")
}
