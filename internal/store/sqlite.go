package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/contriblens/contriblens/internal/errors"
)

// SQLiteStore persists the corpus on the pure-Go sqlite driver. Slice
// fields and embeddings are stored as JSON columns; corpus order is the
// insertion rowid.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS opportunities (
	rowid_order INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT UNIQUE NOT NULL,
	repo_id TEXT NOT NULL,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	category TEXT NOT NULL DEFAULT '',
	difficulty INTEGER NOT NULL DEFAULT 1,
	required_skills TEXT NOT NULL DEFAULT '[]',
	technologies TEXT NOT NULL DEFAULT '[]',
	estimated_hours REAL NOT NULL DEFAULT 0,
	good_first_issue INTEGER NOT NULL DEFAULT 0,
	mentorship_available INTEGER NOT NULL DEFAULT 0,
	help_wanted INTEGER NOT NULL DEFAULT 0,
	priority TEXT NOT NULL DEFAULT '',
	application_count INTEGER NOT NULL DEFAULT 0,
	view_count INTEGER NOT NULL DEFAULT 0,
	embedding TEXT,
	created_at TIMESTAMP NOT NULL,
	started_at TIMESTAMP,
	completed_at TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_opportunities_repo ON opportunities(repo_id);

CREATE TABLE IF NOT EXISTS repositories (
	id TEXT PRIMARY KEY,
	full_name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	activity REAL NOT NULL DEFAULT 0,
	community REAL NOT NULL DEFAULT 0,
	documentation REAL NOT NULL DEFAULT 0,
	contributor_friendliness REAL NOT NULL DEFAULT 0,
	updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS profiles (
	id TEXT PRIMARY KEY,
	skill_level INTEGER NOT NULL DEFAULT 1,
	preferred_languages TEXT NOT NULL DEFAULT '[]',
	interests TEXT NOT NULL DEFAULT '[]',
	availability_hours REAL NOT NULL DEFAULT 0,
	experience_months INTEGER NOT NULL DEFAULT 0
);
`

// NewSQLiteStore opens or creates the database at path and applies the
// schema. An empty path opens an in-memory database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	dsn := path
	if path == "" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// The pure-Go driver serializes writes; one connection avoids
	// SQLITE_BUSY on concurrent ingest.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLiteStore{db: db, path: path}, nil
}

// PutOpportunities upserts a batch in one transaction, preserving corpus
// order for new rows.
func (s *SQLiteStore) PutOpportunities(ctx context.Context, opportunities []*Opportunity) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO opportunities (
			id, repo_id, title, description, category, difficulty,
			required_skills, technologies, estimated_hours,
			good_first_issue, mentorship_available, help_wanted, priority,
			application_count, view_count, embedding,
			created_at, started_at, completed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			repo_id = excluded.repo_id,
			title = excluded.title,
			description = excluded.description,
			category = excluded.category,
			difficulty = excluded.difficulty,
			required_skills = excluded.required_skills,
			technologies = excluded.technologies,
			estimated_hours = excluded.estimated_hours,
			good_first_issue = excluded.good_first_issue,
			mentorship_available = excluded.mentorship_available,
			help_wanted = excluded.help_wanted,
			priority = excluded.priority,
			application_count = excluded.application_count,
			view_count = excluded.view_count,
			embedding = excluded.embedding,
			created_at = excluded.created_at,
			started_at = excluded.started_at,
			completed_at = excluded.completed_at
	`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, opp := range opportunities {
		skills, err := json.Marshal(opp.RequiredSkills)
		if err != nil {
			return fmt.Errorf("encode required skills for %s: %w", opp.ID, err)
		}
		techs, err := json.Marshal(opp.Technologies)
		if err != nil {
			return fmt.Errorf("encode technologies for %s: %w", opp.ID, err)
		}
		var embedding any
		if len(opp.Embedding) > 0 {
			encoded, err := json.Marshal(opp.Embedding)
			if err != nil {
				return fmt.Errorf("encode embedding for %s: %w", opp.ID, err)
			}
			embedding = string(encoded)
		}

		if _, err := stmt.ExecContext(ctx,
			opp.ID, opp.RepoID, opp.Title, opp.Description, opp.Category,
			int(opp.Difficulty), string(skills), string(techs), opp.EstimatedHours,
			opp.GoodFirstIssue, opp.MentorshipAvailable, opp.HelpWanted, opp.Priority,
			opp.ApplicationCount, opp.ViewCount, embedding,
			opp.CreatedAt, nullableTime(opp.StartedAt), nullableTime(opp.CompletedAt),
		); err != nil {
			return fmt.Errorf("upsert opportunity %s: %w", opp.ID, err)
		}
	}
	return tx.Commit()
}

// PutRepositories upserts repositories in one transaction.
func (s *SQLiteStore) PutRepositories(ctx context.Context, repositories []*Repository) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, repo := range repositories {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO repositories (
				id, full_name, description,
				activity, community, documentation, contributor_friendliness,
				updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				full_name = excluded.full_name,
				description = excluded.description,
				activity = excluded.activity,
				community = excluded.community,
				documentation = excluded.documentation,
				contributor_friendliness = excluded.contributor_friendliness,
				updated_at = excluded.updated_at
		`, repo.ID, repo.FullName, repo.Description,
			repo.Quality.Activity, repo.Quality.Community,
			repo.Quality.Documentation, repo.Quality.ContributorFriendliness,
			repo.UpdatedAt,
		); err != nil {
			return fmt.Errorf("upsert repository %s: %w", repo.ID, err)
		}
	}
	return tx.Commit()
}

// PutProfiles upserts user profiles in one transaction.
func (s *SQLiteStore) PutProfiles(ctx context.Context, profiles []*UserProfile) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, profile := range profiles {
		languages, err := json.Marshal(profile.PreferredLanguages)
		if err != nil {
			return fmt.Errorf("encode languages for %s: %w", profile.ID, err)
		}
		interests, err := json.Marshal(profile.Interests)
		if err != nil {
			return fmt.Errorf("encode interests for %s: %w", profile.ID, err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO profiles (
				id, skill_level, preferred_languages, interests,
				availability_hours, experience_months
			) VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				skill_level = excluded.skill_level,
				preferred_languages = excluded.preferred_languages,
				interests = excluded.interests,
				availability_hours = excluded.availability_hours,
				experience_months = excluded.experience_months
		`, profile.ID, int(profile.SkillLevel), string(languages), string(interests),
			profile.AvailabilityHours, profile.ExperienceMonths,
		); err != nil {
			return fmt.Errorf("upsert profile %s: %w", profile.ID, err)
		}
	}
	return tx.Commit()
}

const opportunityColumns = `
	id, repo_id, title, description, category, difficulty,
	required_skills, technologies, estimated_hours,
	good_first_issue, mentorship_available, help_wanted, priority,
	application_count, view_count, embedding,
	created_at, started_at, completed_at
`

// FetchCandidates returns all opportunities in corpus (insertion) order.
// The hint is ignored here; pre-filtering is IndexedStore's job.
func (s *SQLiteStore) FetchCandidates(ctx context.Context, _ QueryHint) ([]*Opportunity, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+opportunityColumns+` FROM opportunities ORDER BY rowid_order`)
	if err != nil {
		return nil, fmt.Errorf("query opportunities: %w", err)
	}
	defer rows.Close()
	return scanOpportunities(rows)
}

// FetchByID returns one opportunity or a not-found error.
func (s *SQLiteStore) FetchByID(ctx context.Context, id string) (*Opportunity, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+opportunityColumns+` FROM opportunities WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("query opportunity: %w", err)
	}
	defer rows.Close()

	opportunities, err := scanOpportunities(rows)
	if err != nil {
		return nil, err
	}
	if len(opportunities) == 0 {
		return nil, errors.NotFoundError("opportunity", id)
	}
	return opportunities[0], nil
}

// FetchRepository returns one repository or a not-found error.
func (s *SQLiteStore) FetchRepository(ctx context.Context, id string) (*Repository, error) {
	repo := &Repository{ID: id}
	err := s.db.QueryRowContext(ctx, `
		SELECT full_name, description,
			activity, community, documentation, contributor_friendliness,
			updated_at
		FROM repositories WHERE id = ?
	`, id).Scan(
		&repo.FullName, &repo.Description,
		&repo.Quality.Activity, &repo.Quality.Community,
		&repo.Quality.Documentation, &repo.Quality.ContributorFriendliness,
		&repo.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NotFoundError("repository", id)
	}
	if err != nil {
		return nil, fmt.Errorf("query repository: %w", err)
	}
	return repo, nil
}

// FetchRepositoryOpportunities returns the repository's opportunities in
// corpus order.
func (s *SQLiteStore) FetchRepositoryOpportunities(ctx context.Context, repoID string) ([]*Opportunity, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+opportunityColumns+` FROM opportunities WHERE repo_id = ? ORDER BY rowid_order`,
		repoID)
	if err != nil {
		return nil, fmt.Errorf("query repository opportunities: %w", err)
	}
	defer rows.Close()
	return scanOpportunities(rows)
}

// FetchProfile returns one user profile or a not-found error.
func (s *SQLiteStore) FetchProfile(ctx context.Context, id string) (*UserProfile, error) {
	profile := &UserProfile{ID: id}
	var skillLevel int
	var languages, interests string
	err := s.db.QueryRowContext(ctx, `
		SELECT skill_level, preferred_languages, interests,
			availability_hours, experience_months
		FROM profiles WHERE id = ?
	`, id).Scan(&skillLevel, &languages, &interests,
		&profile.AvailabilityHours, &profile.ExperienceMonths)
	if err == sql.ErrNoRows {
		return nil, errors.NotFoundError("profile", id)
	}
	if err != nil {
		return nil, fmt.Errorf("query profile: %w", err)
	}

	profile.SkillLevel = Tier(skillLevel)
	if err := json.Unmarshal([]byte(languages), &profile.PreferredLanguages); err != nil {
		return nil, fmt.Errorf("decode languages for %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(interests), &profile.Interests); err != nil {
		return nil, fmt.Errorf("decode interests for %s: %w", id, err)
	}
	return profile, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func scanOpportunities(rows *sql.Rows) ([]*Opportunity, error) {
	var out []*Opportunity
	for rows.Next() {
		opp := &Opportunity{}
		var difficulty int
		var skills, techs string
		var embedding sql.NullString
		var startedAt, completedAt sql.NullTime

		if err := rows.Scan(
			&opp.ID, &opp.RepoID, &opp.Title, &opp.Description, &opp.Category,
			&difficulty, &skills, &techs, &opp.EstimatedHours,
			&opp.GoodFirstIssue, &opp.MentorshipAvailable, &opp.HelpWanted, &opp.Priority,
			&opp.ApplicationCount, &opp.ViewCount, &embedding,
			&opp.CreatedAt, &startedAt, &completedAt,
		); err != nil {
			return nil, fmt.Errorf("scan opportunity: %w", err)
		}

		opp.Difficulty = Tier(difficulty)
		if err := json.Unmarshal([]byte(skills), &opp.RequiredSkills); err != nil {
			return nil, fmt.Errorf("decode required skills for %s: %w", opp.ID, err)
		}
		if err := json.Unmarshal([]byte(techs), &opp.Technologies); err != nil {
			return nil, fmt.Errorf("decode technologies for %s: %w", opp.ID, err)
		}
		if embedding.Valid && embedding.String != "" {
			if err := json.Unmarshal([]byte(embedding.String), &opp.Embedding); err != nil {
				return nil, fmt.Errorf("decode embedding for %s: %w", opp.ID, err)
			}
		}
		if startedAt.Valid {
			t := startedAt.Time
			opp.StartedAt = &t
		}
		if completedAt.Valid {
			t := completedAt.Time
			opp.CompletedAt = &t
		}
		out = append(out, opp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate opportunities: %w", err)
	}
	return out, nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
