package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/updaun/postkit/internal/matcher"
)

// New creates a report for a status run.
func New(workspace string, st *matcher.Status) *Report {
	r := &Report{
		Version:     SupportedVersion,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Workspace:   workspace,
		Status:      st,
	}
	r.ComputeStats()
	return r
}

// FromRepair creates a report for a repair run.
func FromRepair(workspace string, res *matcher.RepairResult) *Report {
	r := New(workspace, res.After)
	r.Repair = &Repair{
		DryRun:         res.DryRun,
		Fixed:          res.Fixed,
		Failed:         res.Failed,
		NeedsThumbnail: res.NeedsThumbnail,
		Before:         res.Before,
	}
	r.ComputeStats()
	return r
}

// ComputeStats recalculates aggregate counts from the status and repair
// sections.
func (r *Report) ComputeStats() {
	var s Stats
	if st := r.Status; st != nil {
		s.Posts = st.Posts
		s.Thumbnails = st.Thumbnails
		s.Matched = len(st.Matched)
		s.IncorrectPath = len(st.IncorrectPath)
		s.Unmatched = len(st.Unmatched)
		s.Orphaned = len(st.Orphaned)
	}
	if rp := r.Repair; rp != nil {
		s.Fixed = len(rp.Fixed)
		s.Failed = len(rp.Failed)
		s.NeedsThumbnail = len(rp.NeedsThumbnail)
	}
	r.Stats = s
}

// Encode writes the report as indented JSON to w.
func Encode(w io.Writer, r *Report) error {
	r.ComputeStats()

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// WriteJSON serializes the report to a JSON file.
func WriteJSON(r *Report, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := Encode(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Read loads a report written by WriteJSON. Unknown fields are ignored.
func Read(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode report %s: %w", path, err)
	}
	return &r, nil
}
