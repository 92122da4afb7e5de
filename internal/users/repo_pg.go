package users

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Upsert(ctx context.Context, user User) error {
	const query = `
INSERT INTO users (id, email, full_name, given_name, family_name, picture_url, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, now(), now())
ON CONFLICT (id) DO UPDATE SET
  email = EXCLUDED.email,
  full_name = EXCLUDED.full_name,
  given_name = EXCLUDED.given_name,
  family_name = EXCLUDED.family_name,
  picture_url = EXCLUDED.picture_url,
  updated_at = now()`
	_, err := r.DB.ExecContext(ctx, query,
		user.ID,
		nullableString(user.Email),
		nullableString(user.FullName),
		nullableString(user.GivenName),
		nullableString(user.FamilyName),
		nullableString(user.PictureURL),
	)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, userID string) (User, error) {
	const query = `
SELECT id, email, full_name, given_name, family_name, picture_url, resume_url, skills, created_at, updated_at
FROM users
WHERE id = $1
LIMIT 1`
	var user User
	var email sql.NullString
	var fullName sql.NullString
	var givenName sql.NullString
	var familyName sql.NullString
	var pictureURL sql.NullString
	var resumeURL sql.NullString
	var skillsRaw []byte
	var updatedAt sql.NullTime
	err := r.DB.QueryRowContext(ctx, query, userID).Scan(
		&user.ID,
		&email,
		&fullName,
		&givenName,
		&familyName,
		&pictureURL,
		&resumeURL,
		&skillsRaw,
		&user.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	if email.Valid {
		user.Email = email.String
	}
	if fullName.Valid {
		user.FullName = fullName.String
	}
	if givenName.Valid {
		user.GivenName = givenName.String
	}
	if familyName.Valid {
		user.FamilyName = familyName.String
	}
	if pictureURL.Valid {
		user.PictureURL = pictureURL.String
	}
	if resumeURL.Valid {
		user.ResumeURL = resumeURL.String
	}
	if len(skillsRaw) > 0 {
		if err := json.Unmarshal(skillsRaw, &user.Skills); err != nil {
			return User{}, fmt.Errorf("decode skills: %w", err)
		}
	}
	if updatedAt.Valid {
		user.UpdatedAt = updatedAt.Time
	} else {
		user.UpdatedAt = time.Now().UTC()
	}
	return user, nil
}

func (r *PGRepo) SyncResume(ctx context.Context, userID, resumeURL string, skills []string) error {
	var skillsPayload any
	if skills != nil {
		raw, err := json.Marshal(skills)
		if err != nil {
			return fmt.Errorf("encode skills: %w", err)
		}
		skillsPayload = raw
	}

	// COALESCE keeps the prior skills when no replacement list is given.
	const query = `
INSERT INTO users (id, resume_url, skills, created_at, updated_at)
VALUES ($1, $2, COALESCE($3, '[]'::jsonb), now(), now())
ON CONFLICT (id) DO UPDATE SET
  resume_url = EXCLUDED.resume_url,
  skills = COALESCE(EXCLUDED.skills, users.skills),
  updated_at = now()`
	_, err := r.DB.ExecContext(ctx, query, userID, resumeURL, skillsPayload)
	return err
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

var _ Repo = (*PGRepo)(nil)
