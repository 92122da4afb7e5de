package analyses

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"placement-backend/internal/ats"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const analysisColumns = `id, user_id, resume_url, file_name, storage_key, ats_score, extracted_text, keywords, sections, formatting, overall_suggestions, analyzed_at`

// Create inserts a new analysis record.
func (r *PGRepo) Create(ctx context.Context, analysis Analysis) error {
	const query = `
INSERT INTO resume_analyses (
	id, user_id, resume_url, file_name, storage_key, ats_score, extracted_text,
	keywords, sections, formatting, overall_suggestions, analyzed_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	keywordsRaw, err := json.Marshal(analysis.Keywords)
	if err != nil {
		return fmt.Errorf("encode keywords: %w", err)
	}
	sectionsRaw, err := json.Marshal(analysis.Sections)
	if err != nil {
		return fmt.Errorf("encode sections: %w", err)
	}
	formattingRaw, err := json.Marshal(analysis.Formatting)
	if err != nil {
		return fmt.Errorf("encode formatting: %w", err)
	}
	suggestionsRaw, err := json.Marshal(analysis.OverallSuggestions)
	if err != nil {
		return fmt.Errorf("encode suggestions: %w", err)
	}

	_, err = r.DB.ExecContext(ctx, query,
		analysis.ID,
		analysis.UserID,
		analysis.ResumeURL,
		analysis.FileName,
		analysis.StorageKey,
		analysis.ATSScore,
		analysis.ExtractedText,
		keywordsRaw,
		sectionsRaw,
		formattingRaw,
		suggestionsRaw,
		analysis.AnalyzedAt,
	)
	return err
}

// GetLatestByUser returns the newest analysis for a user.
func (r *PGRepo) GetLatestByUser(ctx context.Context, userID string) (Analysis, error) {
	query := `
SELECT ` + analysisColumns + `
FROM resume_analyses
WHERE user_id = $1
ORDER BY analyzed_at DESC
LIMIT 1`
	row := r.DB.QueryRowContext(ctx, query, userID)
	analysis, err := scanAnalysis(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Analysis{}, ErrNotFound
		}
		return Analysis{}, err
	}
	return analysis, nil
}

// ListByUser lists analyses newest-first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Analysis, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	query := `
SELECT ` + analysisColumns + `
FROM resume_analyses
WHERE user_id = $1
ORDER BY analyzed_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Analysis
	for rows.Next() {
		analysis, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, analysis)
	}
	return out, rows.Err()
}

// DeleteByUser removes all analyses for a user.
func (r *PGRepo) DeleteByUser(ctx context.Context, userID string) (int, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM resume_analyses WHERE user_id = $1`, userID)
	if err != nil {
		return 0, err
	}
	deleted, _ := res.RowsAffected()
	return int(deleted), nil
}

// ClaimGuest reassigns all analyses from a guest identity to a logged-in
// user and reports how many moved.
func (r *PGRepo) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error) {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE resume_analyses SET user_id = $1 WHERE user_id = $2`,
		authedUserID, guestUserID)
	if err != nil {
		return 0, err
	}
	moved, _ := res.RowsAffected()
	return int(moved), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row rowScanner) (Analysis, error) {
	var analysis Analysis
	var keywordsRaw, sectionsRaw, formattingRaw, suggestionsRaw []byte
	if err := row.Scan(
		&analysis.ID,
		&analysis.UserID,
		&analysis.ResumeURL,
		&analysis.FileName,
		&analysis.StorageKey,
		&analysis.ATSScore,
		&analysis.ExtractedText,
		&keywordsRaw,
		&sectionsRaw,
		&formattingRaw,
		&suggestionsRaw,
		&analysis.AnalyzedAt,
	); err != nil {
		return Analysis{}, err
	}
	if err := decodeJSONB(keywordsRaw, &analysis.Keywords); err != nil {
		return Analysis{}, fmt.Errorf("decode keywords: %w", err)
	}
	var sections ats.SectionFlags
	if err := decodeJSONB(sectionsRaw, &sections); err != nil {
		return Analysis{}, fmt.Errorf("decode sections: %w", err)
	}
	analysis.Sections = sections
	if err := decodeJSONB(formattingRaw, &analysis.Formatting); err != nil {
		return Analysis{}, fmt.Errorf("decode formatting: %w", err)
	}
	if err := decodeJSONB(suggestionsRaw, &analysis.OverallSuggestions); err != nil {
		return Analysis{}, fmt.Errorf("decode suggestions: %w", err)
	}
	return analysis, nil
}

func decodeJSONB(raw []byte, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

var _ Repo = (*PGRepo)(nil)
