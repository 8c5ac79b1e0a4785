package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// UpsertScore writes the score for a (job, profile) pair, overwriting any
// previous row for the same pair. A recorded review decision survives
// recomputation: approved rows stay out of the review queue and rejected
// rows stay filtered. s is updated with the stored filter_reason,
// manual_review and review_decision.
func (db *DB) UpsertScore(ctx context.Context, s *Score) error {
	if s.ComputedAt.IsZero() {
		s.ComputedAt = time.Now()
	}

	breakdown, err := encodeBreakdown(s.Breakdown)
	if err != nil {
		return fmt.Errorf("encode breakdown: %w", err)
	}

	var reason, decision sql.NullString
	err = db.QueryRowContext(ctx, `
		INSERT INTO scores (
			id, job_identity_hash, profile_id, total_score, grade, breakdown, rationale,
			filter_reason, filter_stage, manual_review, company_class, seniority, computed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(job_identity_hash, profile_id) DO UPDATE SET
			total_score = excluded.total_score,
			grade = excluded.grade,
			breakdown = excluded.breakdown,
			rationale = excluded.rationale,
			filter_reason = CASE
				WHEN scores.review_decision = 'rejected' AND excluded.filter_reason IS NULL
				THEN 'manual_review_rejected'
				ELSE excluded.filter_reason END,
			filter_stage = excluded.filter_stage,
			manual_review = CASE
				WHEN scores.review_decision IS NOT NULL THEN 0
				ELSE excluded.manual_review END,
			company_class = excluded.company_class,
			seniority = excluded.seniority,
			computed_at = excluded.computed_at
		RETURNING id, filter_reason, manual_review, review_decision
	`,
		uuid.New().String(), s.JobIdentityHash, s.ProfileID, NullInt(s.TotalScore), NullString(s.Grade),
		breakdown, NullString(s.Rationale), NullString(s.FilterReason), NullString(s.FilterStage),
		s.ManualReview, NullString(s.CompanyClass), NullString(s.Seniority), s.ComputedAt,
	).Scan(&s.ID, &reason, &s.ManualReview, &decision)
	if err != nil {
		return err
	}

	s.FilterReason = StringPtr(reason)
	s.ReviewDecision = StringPtr(decision)
	return nil
}

const scoreColumns = `
	s.id, s.job_identity_hash, s.profile_id, s.total_score, s.grade, s.breakdown, s.rationale,
	s.filter_reason, s.filter_stage, s.manual_review, s.review_decision, s.company_class,
	s.seniority, s.computed_at`

const scoredJobColumns = `
	j.identity_hash, j.title, j.company, j.location, j.link, j.raw_description,
	j.source, j.received_at, j.first_seen_at, j.last_seen_at,` + scoreColumns

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanScore(row rowScanner, prefix ...interface{}) (*Score, error) {
	s := &Score{}
	var total sql.NullInt64
	var grade, breakdown, rationale, reason, stage, decision, class, level sql.NullString

	dest := append(prefix,
		&s.ID, &s.JobIdentityHash, &s.ProfileID, &total, &grade, &breakdown, &rationale,
		&reason, &stage, &s.ManualReview, &decision, &class, &level, &s.ComputedAt,
	)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	b, err := decodeBreakdown(breakdown)
	if err != nil {
		return nil, fmt.Errorf("decode breakdown: %w", err)
	}

	s.TotalScore = IntPtr(total)
	s.Grade = StringPtr(grade)
	s.Breakdown = b
	s.Rationale = StringPtr(rationale)
	s.FilterReason = StringPtr(reason)
	s.FilterStage = StringPtr(stage)
	s.ReviewDecision = StringPtr(decision)
	s.CompanyClass = StringPtr(class)
	s.Seniority = StringPtr(level)
	return s, nil
}

// GetScore retrieves the score for a (job, profile) pair
func (db *DB) GetScore(ctx context.Context, hash, profileID string) (*Score, error) {
	row := db.QueryRowContext(ctx, `
		SELECT`+scoreColumns+`
		FROM scores s WHERE s.job_identity_hash = ? AND s.profile_id = ?
	`, hash, profileID)

	s, err := scanScore(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return s, err
}

// ScoresForJob retrieves every profile's score for a job
func (db *DB) ScoresForJob(ctx context.Context, hash string) ([]Score, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT`+scoreColumns+`
		FROM scores s WHERE s.job_identity_hash = ?
		ORDER BY s.profile_id
	`, hash)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scores []Score
	for rows.Next() {
		s, err := scanScore(rows)
		if err != nil {
			return nil, err
		}
		scores = append(scores, *s)
	}
	return scores, rows.Err()
}

// CountScores returns the number of score rows for a job
func (db *DB) CountScores(ctx context.Context, hash string) (int, error) {
	var n int
	err := db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM scores WHERE job_identity_hash = ?
	`, hash).Scan(&n)
	return n, err
}

// DigestCandidates returns unfiltered, reviewed-or-unambiguous scores for a
// profile that meet the score and grade thresholds, best first
func (db *DB) DigestCandidates(ctx context.Context, opts DigestOptions) ([]ScoredJob, error) {
	query := `
		SELECT` + scoredJobColumns + `
		FROM scores s
		INNER JOIN jobs j ON j.identity_hash = s.job_identity_hash
		WHERE s.profile_id = ?
		  AND s.filter_reason IS NULL
		  AND s.manual_review = 0
		  AND s.total_score >= ?
	`
	args := []interface{}{opts.ProfileID, opts.MinScore}

	if len(opts.Grades) > 0 {
		query += " AND s.grade IN (" + placeholders(len(opts.Grades)) + ")"
		for _, g := range opts.Grades {
			args = append(args, g)
		}
	}
	if opts.Since != nil {
		query += " AND j.first_seen_at >= ?"
		args = append(args, *opts.Since)
	}

	query += " ORDER BY s.total_score DESC, j.first_seen_at DESC, j.identity_hash"

	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", opts.Limit)
	}

	return db.queryScoredJobs(ctx, query, args...)
}

// ManualReviewQueue returns jobs flagged for manual review that have no
// decision yet. An empty profileID covers every profile.
func (db *DB) ManualReviewQueue(ctx context.Context, profileID string) ([]ScoredJob, error) {
	query := `
		SELECT` + scoredJobColumns + `
		FROM scores s
		INNER JOIN jobs j ON j.identity_hash = s.job_identity_hash
		WHERE s.manual_review = 1
		  AND s.filter_reason IS NULL
		  AND s.review_decision IS NULL
	`
	args := []interface{}{}
	if profileID != "" {
		query += " AND s.profile_id = ?"
		args = append(args, profileID)
	}
	query += " ORDER BY s.profile_id, j.first_seen_at DESC"

	return db.queryScoredJobs(ctx, query, args...)
}

// ListScores retrieves scores joined with their jobs
func (db *DB) ListScores(ctx context.Context, opts ScoreListOptions) ([]ScoredJob, error) {
	query := `
		SELECT` + scoredJobColumns + `
		FROM scores s
		INNER JOIN jobs j ON j.identity_hash = s.job_identity_hash
		WHERE 1=1
	`
	args := []interface{}{}

	if opts.ProfileID != "" {
		query += " AND s.profile_id = ?"
		args = append(args, opts.ProfileID)
	}
	if opts.FilterReason != nil {
		query += " AND s.filter_reason = ?"
		args = append(args, *opts.FilterReason)
	} else if opts.FilteredOnly {
		query += " AND s.filter_reason IS NOT NULL"
	}

	query += " ORDER BY s.computed_at DESC, j.identity_hash"

	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", opts.Limit)
	}

	return db.queryScoredJobs(ctx, query, args...)
}

func (db *DB) queryScoredJobs(ctx context.Context, query string, args ...interface{}) ([]ScoredJob, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []ScoredJob
	for rows.Next() {
		var sj ScoredJob
		var desc sql.NullString
		j := &sj.Job

		s, err := scanScore(rows,
			&j.IdentityHash, &j.Title, &j.Company, &j.Location, &j.Link, &desc,
			&j.Source, &j.ReceivedAt, &j.FirstSeenAt, &j.LastSeenAt,
		)
		if err != nil {
			return nil, err
		}
		j.RawDescription = desc.String
		sj.Score = *s
		results = append(results, sj)
	}

	return results, rows.Err()
}

// ResolveReview records a manual review decision. Approval releases the job
// to the digest; rejection filters it.
func (db *DB) ResolveReview(ctx context.Context, hash, profileID string, approve bool) error {
	var result sql.Result
	var err error

	if approve {
		result, err = db.ExecContext(ctx, `
			UPDATE scores SET manual_review = 0, review_decision = ?
			WHERE job_identity_hash = ? AND profile_id = ?
		`, ReviewApproved, hash, profileID)
	} else {
		result, err = db.ExecContext(ctx, `
			UPDATE scores SET
				manual_review = 0,
				review_decision = ?,
				filter_reason = 'manual_review_rejected'
			WHERE job_identity_hash = ? AND profile_id = ?
		`, ReviewRejected, hash, profileID)
	}
	if err != nil {
		return err
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("score not found: %s/%s", hash, profileID)
	}
	return nil
}

// PruneScores deletes scores for profiles not in keep
func (db *DB) PruneScores(ctx context.Context, keep []string) (int64, error) {
	query := "DELETE FROM scores"
	args := []interface{}{}
	if len(keep) > 0 {
		query += " WHERE profile_id NOT IN (" + placeholders(len(keep)) + ")"
		for _, id := range keep {
			args = append(args, id)
		}
	}

	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// GetStats retrieves aggregate statistics
func (db *DB) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{
		ByReason: make(map[string]int),
		BySource: make(map[string]int),
	}

	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM jobs").Scan(&stats.TotalJobs); err != nil {
		return nil, err
	}
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM scores").Scan(&stats.TotalScores); err != nil {
		return nil, err
	}

	// Per-profile dispositions
	rows, err := db.QueryContext(ctx, `
		SELECT
			profile_id,
			COUNT(*) as scored,
			SUM(CASE WHEN filter_reason IS NULL AND manual_review = 0 THEN 1 ELSE 0 END) as passed,
			SUM(CASE WHEN filter_reason IS NOT NULL THEN 1 ELSE 0 END) as filtered,
			SUM(CASE WHEN filter_reason IS NULL AND manual_review = 1 THEN 1 ELSE 0 END) as review
		FROM scores
		GROUP BY profile_id
		ORDER BY profile_id
	`)
	if err != nil {
		return nil, err
	}
	index := make(map[string]int)
	for rows.Next() {
		ps := ProfileStats{ByGrade: make(map[string]int)}
		if err := rows.Scan(&ps.ProfileID, &ps.Scored, &ps.Passed, &ps.Filtered, &ps.Review); err != nil {
			rows.Close()
			return nil, err
		}
		index[ps.ProfileID] = len(stats.Profiles)
		stats.Profiles = append(stats.Profiles, ps)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Grade distribution of unfiltered scores
	if err := db.countInto(ctx, `
		SELECT profile_id, grade, COUNT(*) FROM scores
		WHERE filter_reason IS NULL AND grade IS NOT NULL
		GROUP BY profile_id, grade
	`, func(profileID, key string, n int) {
		if i, ok := index[profileID]; ok {
			stats.Profiles[i].ByGrade[key] = n
		}
	}); err != nil {
		return nil, err
	}

	if err := db.countInto(ctx, `
		SELECT '', filter_reason, COUNT(*) FROM scores
		WHERE filter_reason IS NOT NULL
		GROUP BY filter_reason
	`, func(_, key string, n int) { stats.ByReason[key] = n }); err != nil {
		return nil, err
	}

	if err := db.countInto(ctx, `
		SELECT '', source, COUNT(DISTINCT identity_hash) FROM job_provenance
		GROUP BY source
	`, func(_, key string, n int) { stats.BySource[key] = n }); err != nil {
		return nil, err
	}

	return stats, nil
}

func (db *DB) countInto(ctx context.Context, query string, fn func(group, key string, n int)) error {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var group, key string
		var n int
		if err := rows.Scan(&group, &key, &n); err != nil {
			return err
		}
		fn(group, key, n)
	}
	return rows.Err()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
