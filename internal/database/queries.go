package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/vijay-prabhu/jobscout/internal/job"
)

// UpsertJob inserts a job keyed by identity hash or, if it already exists,
// records the sighting. Existing title, company and link are never changed;
// an empty location or description is filled in. It reports whether the job
// row was created.
func (db *DB) UpsertJob(ctx context.Context, j job.Job, prov job.Provenance) (bool, error) {
	created := false

	err := db.Transaction(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO jobs (
				identity_hash, title, company, location, link, raw_description,
				source, received_at, first_seen_at, last_seen_at, seen_count
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1)
		`,
			j.IdentityHash, j.Title, j.Company, j.Location, j.Link, nullIfEmpty(j.RawDescription),
			j.Source, j.ReceivedAt, j.FirstSeenAt, j.LastSeenAt,
		)
		if err != nil {
			return fmt.Errorf("insert job: %w", err)
		}

		rows, _ := result.RowsAffected()
		created = rows == 1

		if !created {
			if _, err := tx.ExecContext(ctx, `
				UPDATE jobs SET
					last_seen_at = ?,
					seen_count = seen_count + 1,
					location = CASE WHEN location = '' THEN ? ELSE location END,
					raw_description = CASE
						WHEN raw_description IS NULL OR raw_description = '' THEN ?
						ELSE raw_description END
				WHERE identity_hash = ?
			`, j.LastSeenAt, j.Location, nullIfEmpty(j.RawDescription), j.IdentityHash); err != nil {
				return fmt.Errorf("update job: %w", err)
			}
		}

		if prov.Source != "" || prov.ExtractionMethod != "" {
			if _, err := tx.ExecContext(ctx, `
				INSERT OR IGNORE INTO job_provenance (identity_hash, source, extraction_method, seen_at)
				VALUES (?, ?, ?, ?)
			`, j.IdentityHash, prov.Source, string(prov.ExtractionMethod), prov.SeenAt); err != nil {
				return fmt.Errorf("insert provenance: %w", err)
			}
		}

		return nil
	})

	return created, err
}

// GetJob retrieves a job and its provenance by identity hash
func (db *DB) GetJob(ctx context.Context, hash string) (*job.Job, error) {
	j := &job.Job{}
	var desc sql.NullString

	err := db.QueryRowContext(ctx, `
		SELECT identity_hash, title, company, location, link, raw_description,
		       source, received_at, first_seen_at, last_seen_at
		FROM jobs WHERE identity_hash = ?
	`, hash).Scan(
		&j.IdentityHash, &j.Title, &j.Company, &j.Location, &j.Link, &desc,
		&j.Source, &j.ReceivedAt, &j.FirstSeenAt, &j.LastSeenAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	j.RawDescription = desc.String

	prov, err := db.ListProvenance(ctx, hash)
	if err != nil {
		return nil, err
	}
	j.Provenance = prov

	return j, nil
}

// FindJobsByPrefix returns jobs whose identity hash starts with prefix
func (db *DB) FindJobsByPrefix(ctx context.Context, prefix string) ([]job.Job, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT identity_hash, title, company, location, link, raw_description,
		       source, received_at, first_seen_at, last_seen_at
		FROM jobs WHERE identity_hash LIKE ? || '%'
		ORDER BY first_seen_at DESC
		LIMIT 10
	`, prefix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanJobs(rows)
}

// ListProvenance returns every sighting recorded for a job
func (db *DB) ListProvenance(ctx context.Context, hash string) ([]job.Provenance, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT source, extraction_method, seen_at
		FROM job_provenance WHERE identity_hash = ?
		ORDER BY seen_at ASC
	`, hash)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var prov []job.Provenance
	for rows.Next() {
		var p job.Provenance
		var method string
		if err := rows.Scan(&p.Source, &method, &p.SeenAt); err != nil {
			return nil, err
		}
		p.ExtractionMethod = job.ExtractionMethod(method)
		prov = append(prov, p)
	}

	return prov, rows.Err()
}

// ListJobs retrieves jobs with optional filters
func (db *DB) ListJobs(ctx context.Context, opts JobListOptions) ([]job.Job, error) {
	query := `
		SELECT identity_hash, title, company, location, link, raw_description,
		       source, received_at, first_seen_at, last_seen_at
		FROM jobs WHERE 1=1
	`
	args := []interface{}{}

	if opts.Company != nil {
		query += " AND LOWER(company) LIKE LOWER(?)"
		args = append(args, "%"+*opts.Company+"%")
	}
	if opts.Since != nil {
		query += " AND first_seen_at >= ?"
		args = append(args, *opts.Since)
	}

	query += " ORDER BY first_seen_at DESC, identity_hash"

	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", opts.Limit)
		if opts.Offset > 0 {
			query += fmt.Sprintf(" OFFSET %d", opts.Offset)
		}
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanJobs(rows)
}

// CountJobs returns the number of stored jobs
func (db *DB) CountJobs(ctx context.Context) (int, error) {
	var n int
	err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM jobs").Scan(&n)
	return n, err
}

func scanJobs(rows *sql.Rows) ([]job.Job, error) {
	var jobs []job.Job
	for rows.Next() {
		var j job.Job
		var desc sql.NullString
		if err := rows.Scan(
			&j.IdentityHash, &j.Title, &j.Company, &j.Location, &j.Link, &desc,
			&j.Source, &j.ReceivedAt, &j.FirstSeenAt, &j.LastSeenAt,
		); err != nil {
			return nil, err
		}
		j.RawDescription = desc.String
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// MessageProcessed reports whether a source message was already handled
func (db *DB) MessageProcessed(ctx context.Context, messageID string) (bool, error) {
	var n int
	err := db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM source_messages WHERE message_id = ?
	`, messageID).Scan(&n)
	return n > 0, err
}

// MarkMessageProcessed records a handled source message
func (db *DB) MarkMessageProcessed(ctx context.Context, m SourceMessage) error {
	if m.ProcessedAt.IsZero() {
		m.ProcessedAt = time.Now()
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO source_messages (message_id, producer, jobs_found, processed_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(message_id) DO UPDATE SET
			producer = excluded.producer,
			jobs_found = excluded.jobs_found,
			processed_at = excluded.processed_at
	`, m.MessageID, m.Producer, m.JobsFound, m.ProcessedAt)
	return err
}

// GetSyncState retrieves the current sync state
func (db *DB) GetSyncState(ctx context.Context) (*SyncState, error) {
	state := &SyncState{}
	var lastSyncAt sql.NullTime

	err := db.QueryRowContext(ctx, `
		SELECT id, last_sync_at, messages_processed, jobs_ingested
		FROM sync_state WHERE id = 1
	`).Scan(&state.ID, &lastSyncAt, &state.MessagesProcessed, &state.JobsIngested)
	if err != nil {
		return nil, err
	}

	if lastSyncAt.Valid {
		state.LastSyncAt = &lastSyncAt.Time
	}
	return state, nil
}

// UpdateSyncState updates the sync state
func (db *DB) UpdateSyncState(ctx context.Context, state *SyncState) error {
	_, err := db.ExecContext(ctx, `
		UPDATE sync_state SET
			last_sync_at = ?, messages_processed = ?, jobs_ingested = ?
		WHERE id = 1
	`, state.LastSyncAt, state.MessagesProcessed, state.JobsIngested)
	return err
}

func nullIfEmpty(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
