package database

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/vijay-prabhu/jobscout/internal/job"
)

// Review decisions recorded by the manual review surface
const (
	ReviewApproved = "approved"
	ReviewRejected = "rejected"
)

// Score is one persisted (job, profile) score row
type Score struct {
	ID              string         `json:"id"`
	JobIdentityHash string         `json:"job_identity_hash"`
	ProfileID       string         `json:"profile_id"`
	TotalScore      *int           `json:"total_score"`
	Grade           *string        `json:"grade"`
	Breakdown       map[string]int `json:"breakdown"`
	Rationale       *string        `json:"rationale,omitempty"`
	FilterReason    *string        `json:"filter_reason"`
	FilterStage     *string        `json:"filter_stage,omitempty"`
	ManualReview    bool           `json:"manual_review"`
	ReviewDecision  *string        `json:"review_decision,omitempty"`
	CompanyClass    *string        `json:"company_class,omitempty"`
	Seniority       *string        `json:"seniority,omitempty"`
	ComputedAt      time.Time      `json:"computed_at"`
}

// Filtered reports whether either filter stage blocked the job
func (s *Score) Filtered() bool {
	return s.FilterReason != nil
}

// ScoredJob joins a job with one of its scores
type ScoredJob struct {
	Job   job.Job `json:"job"`
	Score Score   `json:"score"`
}

// SourceMessage records a processed source message
type SourceMessage struct {
	MessageID   string    `json:"message_id"`
	Producer    string    `json:"producer"`
	JobsFound   int       `json:"jobs_found"`
	ProcessedAt time.Time `json:"processed_at"`
}

// SyncState tracks the sync progress
type SyncState struct {
	ID                int        `json:"id"`
	LastSyncAt        *time.Time `json:"last_sync_at,omitempty"`
	MessagesProcessed int        `json:"messages_processed"`
	JobsIngested      int        `json:"jobs_ingested"`
}

// ProfileStats aggregates the scores of one profile
type ProfileStats struct {
	ProfileID string         `json:"profile_id"`
	Scored    int            `json:"scored"`
	Passed    int            `json:"passed"`
	Filtered  int            `json:"filtered"`
	Review    int            `json:"manual_review"`
	ByGrade   map[string]int `json:"by_grade"`
}

// Stats represents aggregate statistics
type Stats struct {
	TotalJobs   int            `json:"total_jobs"`
	TotalScores int            `json:"total_scores"`
	Profiles    []ProfileStats `json:"profiles"`
	ByReason    map[string]int `json:"by_reason"`
	BySource    map[string]int `json:"by_source"`
}

// JobListOptions contains options for listing jobs
type JobListOptions struct {
	Company *string
	Since   *time.Time
	Limit   int
	Offset  int
}

// DigestOptions selects digest-eligible scores for a profile
type DigestOptions struct {
	ProfileID string
	MinScore  int
	Grades    []string
	Since     *time.Time
	Limit     int
}

// ScoreListOptions contains options for listing scores
type ScoreListOptions struct {
	ProfileID    string
	FilterReason *string
	FilteredOnly bool
	Limit        int
}

// NullString is a helper to convert *string to sql.NullString
func NullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// NullInt is a helper to convert *int to sql.NullInt64
func NullInt(i *int) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*i), Valid: true}
}

// StringPtr converts sql.NullString to *string
func StringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

// IntPtr converts sql.NullInt64 to *int
func IntPtr(ni sql.NullInt64) *int {
	if !ni.Valid {
		return nil
	}
	v := int(ni.Int64)
	return &v
}

// encodeBreakdown stores the breakdown as JSON, NULL when empty
func encodeBreakdown(b map[string]int) (sql.NullString, error) {
	if len(b) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(b)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func decodeBreakdown(ns sql.NullString) (map[string]int, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	var b map[string]int
	if err := json.Unmarshal([]byte(ns.String), &b); err != nil {
		return nil, err
	}
	return b, nil
}
