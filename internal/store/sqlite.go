// Package store persists canonical postings and the target employer
// directory in a SQLite database.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/sponsorboard/jobsync/internal/model"
)

// SQLiteStore holds postings and target companies in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures
// the schema exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	schema := []string{
		`CREATE TABLE IF NOT EXISTS postings (
			id                    TEXT PRIMARY KEY,
			source                TEXT NOT NULL,
			external_id           TEXT NOT NULL,
			title                 TEXT NOT NULL,
			organization_name     TEXT NOT NULL,
			location_text         TEXT NOT NULL DEFAULT '',
			derived_region        TEXT NOT NULL DEFAULT '',
			description           TEXT NOT NULL DEFAULT '',
			apply_url             TEXT NOT NULL DEFAULT '',
			employment_type       TEXT NOT NULL DEFAULT '',
			posted_at             DATETIME NOT NULL,
			compensation_estimate REAL NOT NULL DEFAULT 0,
			requirements          TEXT NOT NULL DEFAULT '[]',
			ingested_at           DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_postings_source ON postings (source)`,
		`CREATE TABLE IF NOT EXISTS companies (
			name     TEXT PRIMARY KEY,
			added_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating schema: %w", err)
		}
	}

	return &SQLiteStore{db: db}, nil
}

// UpsertPosting writes a posting keyed by its composite id. Returns true
// when the posting was new, false when an existing row was overwritten.
func (s *SQLiteStore) UpsertPosting(p model.Posting) (bool, error) {
	requirements, err := json.Marshal(p.Requirements)
	if err != nil {
		return false, fmt.Errorf("encoding requirements for %s: %w", p.ID, err)
	}

	var exists int
	err = s.db.QueryRow("SELECT 1 FROM postings WHERE id = ?", p.ID).Scan(&exists)
	if err != nil && err != sql.ErrNoRows {
		return false, fmt.Errorf("checking posting %s: %w", p.ID, err)
	}
	inserted := err == sql.ErrNoRows

	if inserted {
		_, err = s.db.Exec(`INSERT INTO postings (
			id, source, external_id, title, organization_name, location_text,
			derived_region, description, apply_url, employment_type, posted_at,
			compensation_estimate, requirements, ingested_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, string(p.Source), p.ExternalID, p.Title, p.OrganizationName,
			p.LocationText, p.DerivedRegion, p.Description, p.ApplyURL,
			p.EmploymentType, p.PostedAt.UTC(), p.CompensationEstimate,
			string(requirements), p.IngestedAt.UTC())
	} else {
		_, err = s.db.Exec(`UPDATE postings SET
			source = ?, external_id = ?, title = ?, organization_name = ?,
			location_text = ?, derived_region = ?, description = ?,
			apply_url = ?, employment_type = ?, posted_at = ?,
			compensation_estimate = ?, requirements = ?, ingested_at = ?
		WHERE id = ?`,
			string(p.Source), p.ExternalID, p.Title, p.OrganizationName,
			p.LocationText, p.DerivedRegion, p.Description, p.ApplyURL,
			p.EmploymentType, p.PostedAt.UTC(), p.CompensationEstimate,
			string(requirements), p.IngestedAt.UTC(), p.ID)
	}
	if err != nil {
		return false, fmt.Errorf("upserting posting %s: %w", p.ID, err)
	}
	return inserted, nil
}

// CountBySource returns how many postings the given source currently has.
func (s *SQLiteStore) CountBySource(source model.Source) (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM postings WHERE source = ?", string(source)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting %s postings: %w", source, err)
	}
	return count, nil
}

// MostRecentIngestedAt returns the newest ingestion timestamp across all
// postings. The bool is false when the store is empty.
func (s *SQLiteStore) MostRecentIngestedAt() (time.Time, bool, error) {
	var raw sql.NullString
	err := s.db.QueryRow("SELECT MAX(ingested_at) FROM postings").Scan(&raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("reading last ingestion time: %w", err)
	}
	if !raw.Valid || raw.String == "" {
		return time.Time{}, false, nil
	}
	t, err := parseStoredTime(raw.String)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parsing last ingestion time: %w", err)
	}
	return t, true, nil
}

// ListPostings returns up to limit postings, newest ingested first. A
// non-positive limit means no cap.
func (s *SQLiteStore) ListPostings(limit int) ([]model.Posting, error) {
	query := `SELECT id, source, external_id, title, organization_name,
		location_text, derived_region, description, apply_url, employment_type,
		posted_at, compensation_estimate, requirements, ingested_at
	FROM postings ORDER BY ingested_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing postings: %w", err)
	}
	defer rows.Close()

	var postings []model.Posting
	for rows.Next() {
		var p model.Posting
		var source, requirements, postedAt, ingestedAt string
		err := rows.Scan(&p.ID, &source, &p.ExternalID, &p.Title,
			&p.OrganizationName, &p.LocationText, &p.DerivedRegion,
			&p.Description, &p.ApplyURL, &p.EmploymentType, &postedAt,
			&p.CompensationEstimate, &requirements, &ingestedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning posting: %w", err)
		}
		p.Source = model.Source(source)
		if err := json.Unmarshal([]byte(requirements), &p.Requirements); err != nil {
			return nil, fmt.Errorf("decoding requirements for %s: %w", p.ID, err)
		}
		if p.PostedAt, err = parseStoredTime(postedAt); err != nil {
			return nil, fmt.Errorf("parsing posted_at for %s: %w", p.ID, err)
		}
		if p.IngestedAt, err = parseStoredTime(ingestedAt); err != nil {
			return nil, fmt.Errorf("parsing ingested_at for %s: %w", p.ID, err)
		}
		postings = append(postings, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing postings: %w", err)
	}
	return postings, nil
}

// CompanyNames returns all target employer names, alphabetically.
func (s *SQLiteStore) CompanyNames() ([]string, error) {
	rows, err := s.db.Query("SELECT name FROM companies ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("listing companies: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning company name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing companies: %w", err)
	}
	return names, nil
}

// AddCompany registers a target employer. Adding an existing name is a
// no-op.
func (s *SQLiteStore) AddCompany(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("adding company: empty name")
	}
	if _, err := s.db.Exec("INSERT OR IGNORE INTO companies (name) VALUES (?)", name); err != nil {
		return fmt.Errorf("adding company %s: %w", name, err)
	}
	return nil
}

// RemoveCompany drops a target employer. Removing an unknown name is a
// no-op.
func (s *SQLiteStore) RemoveCompany(name string) error {
	if _, err := s.db.Exec("DELETE FROM companies WHERE name = ?", strings.TrimSpace(name)); err != nil {
		return fmt.Errorf("removing company %s: %w", name, err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// parseStoredTime handles the timestamp formats the sqlite driver may hand
// back when a DATETIME column is scanned as text.
func parseStoredTime(value string) (time.Time, error) {
	for _, layout := range []string{
		time.RFC3339Nano,
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02 15:04:05",
	} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}
