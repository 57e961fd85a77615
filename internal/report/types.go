// Package report serialises matcher runs to JSON.
package report

import "github.com/updaun/postkit/internal/matcher"

// Report is the top-level output of a status or repair run.
type Report struct {
	Version     int             `json:"version"`
	GeneratedAt string          `json:"generated_at"`
	RunID       string          `json:"run_id,omitempty"`
	Workspace   string          `json:"workspace"`
	Status      *matcher.Status `json:"status"`
	Repair      *Repair         `json:"repair,omitempty"`
	Stats       Stats           `json:"stats"`
}

// Repair is the repair section of a report. Status holds the post-repair
// classification; the pre-repair one lives here.
type Repair struct {
	DryRun         bool              `json:"dry_run,omitempty"`
	Fixed          []matcher.Fix     `json:"fixed"`
	Failed         []matcher.Failure `json:"failed,omitempty"`
	NeedsThumbnail []string          `json:"needs_thumbnail"`
	Before         *matcher.Status   `json:"before"`
}

// Stats aggregates bucket counts.
type Stats struct {
	Posts          int `json:"posts"`
	Thumbnails     int `json:"thumbnails"`
	Matched        int `json:"matched"`
	IncorrectPath  int `json:"incorrect_path"`
	Unmatched      int `json:"unmatched"`
	Orphaned       int `json:"orphaned"`
	Fixed          int `json:"fixed,omitempty"`
	Failed         int `json:"failed,omitempty"`
	NeedsThumbnail int `json:"needs_thumbnail,omitempty"`
}

// SupportedVersion is the current schema version.
const SupportedVersion = 1
