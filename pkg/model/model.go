// Package model defines the issue snapshot consumed by the scheduling engine.
//
// Issues arrive from the surrounding tracker (JSONL export or SQLite database)
// and are immutable for the duration of one graph build. The two relation
// lists DependencyIDs and BlocksIDs are the two directions of the same fact:
// "A blocks B" and "B depends on A" both mean A must finish before B starts.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Status is the lifecycle state of an issue in the tracker.
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusBlocked    Status = "blocked"
	StatusDeferred   Status = "deferred"
	StatusClosed     Status = "closed"
)

// IsClosed reports whether the issue is in a terminal state.
func (s Status) IsClosed() bool {
	return s == StatusClosed
}

// IssueType categorizes an issue.
type IssueType string

const (
	TypeBug     IssueType = "bug"
	TypeFeature IssueType = "feature"
	TypeTask    IssueType = "task"
	TypeEpic    IssueType = "epic"
	TypeChore   IssueType = "chore"
)

// Issue is one row of the tracker snapshot.
//
// EstimatedHours is optional; the engine substitutes a configured default when
// it is nil or non-positive. DependencyIDs lists issues this one is blocked by,
// BlocksIDs lists issues this one blocks. The caller keeps the two directions
// consistent; the engine deduplicates the derived edges either way.
type Issue struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	Status         Status     `json:"status"`
	Priority       int        `json:"priority,omitempty"`
	IssueType      IssueType  `json:"issue_type,omitempty"`
	Assignee       string     `json:"assignee,omitempty"`
	Labels         []string   `json:"labels,omitempty"`
	EstimatedHours *float64   `json:"estimated_hours,omitempty"`
	DependencyIDs  []string   `json:"dependency_ids,omitempty"`
	BlocksIDs      []string   `json:"blocks_ids,omitempty"`
	CreatedAt      time.Time  `json:"created_at,omitempty"`
	UpdatedAt      time.Time  `json:"updated_at,omitempty"`
	ClosedAt       *time.Time `json:"closed_at,omitempty"`
}

// Validate checks the minimal structural requirements for an issue.
// The engine is best-effort visualization, so only identity is enforced;
// dangling dependency ids and missing estimates are normalized downstream.
func (i *Issue) Validate() error {
	if strings.TrimSpace(i.ID) == "" {
		return fmt.Errorf("issue has empty id")
	}
	if strings.TrimSpace(i.Title) == "" {
		return fmt.Errorf("issue %s has empty title", i.ID)
	}
	return nil
}

// HasEstimate reports whether the issue carries a usable duration estimate.
func (i *Issue) HasEstimate() bool {
	return i.EstimatedHours != nil && *i.EstimatedHours > 0
}

// DurationHours returns the issue's estimate, or fallback when absent.
func (i *Issue) DurationHours(fallback float64) float64 {
	if i.HasEstimate() {
		return *i.EstimatedHours
	}
	return fallback
}

// NormalizeStatus canonicalizes a status read from an external source.
// Trackers disagree on separators ("In-Progress", "in progress"), so hyphens
// and spaces fold to underscores after lower-casing.
func NormalizeStatus(s Status) Status {
	trimmed := strings.TrimSpace(string(s))
	if trimmed == "" {
		return s
	}
	norm := strings.ToLower(trimmed)
	norm = strings.ReplaceAll(norm, "-", "_")
	norm = strings.ReplaceAll(norm, " ", "_")
	return Status(norm)
}
