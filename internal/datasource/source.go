// Package datasource discovers and selects issue snapshot sources. A repo can
// carry both a SQLite database and JSONL exports; the freshest valid source
// wins, with SQLite preferred at equal freshness because it reflects tracker
// writes the exports lag behind.
package datasource

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dvermeulen86/pertview/pkg/debug"
	"github.com/dvermeulen86/pertview/pkg/loader"
)

// SourceType identifies the kind of data source.
type SourceType string

const (
	// SourceTypeSQLite is a tracker SQLite database (issues.db).
	SourceTypeSQLite SourceType = "sqlite"
	// SourceTypeJSONL is a JSONL snapshot export.
	SourceTypeJSONL SourceType = "jsonl"
)

// Priority values for source types (higher = more authoritative).
const (
	PrioritySQLite = 100
	PriorityJSONL  = 50
)

// SQLiteDBName is the tracker database filename looked for during discovery.
const SQLiteDBName = "issues.db"

// DataSource is one candidate source of issue data.
type DataSource struct {
	Type SourceType `json:"type"`
	Path string     `json:"path"`
	// Priority breaks ties when ModTime is equal (higher wins).
	Priority int       `json:"priority"`
	ModTime  time.Time `json:"mod_time"`
	Size     int64     `json:"size"`
	// Valid is set during validation.
	Valid           bool   `json:"valid"`
	ValidationError string `json:"validation_error,omitempty"`
	IssueCount      int    `json:"issue_count"`
}

// String returns a human-readable description of the source.
func (s DataSource) String() string {
	status := "valid"
	if !s.Valid {
		status = fmt.Sprintf("invalid: %s", s.ValidationError)
	}
	return fmt.Sprintf("%s (%s, priority=%d, mod=%s, issues=%d, %s)",
		s.Path, s.Type, s.Priority, s.ModTime.Format(time.RFC3339), s.IssueCount, status)
}

// DiscoveryOptions configures source discovery.
type DiscoveryOptions struct {
	// IssuesDir is the .issues directory (auto-detected from RepoPath if empty).
	IssuesDir string
	// RepoPath is the repository root (cwd if empty).
	RepoPath string
	// Validate probes each discovered source and drops invalid ones.
	Validate bool
	// IncludeInvalid keeps sources that failed validation in the result.
	IncludeInvalid bool
}

// DiscoverSources finds all candidate sources under the issues directory,
// optionally validating them concurrently, and returns them sorted freshest
// first.
func DiscoverSources(opts DiscoveryOptions) ([]DataSource, error) {
	dir := opts.IssuesDir
	if dir == "" {
		var err error
		dir, err = loader.GetIssuesDir(opts.RepoPath)
		if err != nil {
			return nil, err
		}
	}
	debug.Log("discovering sources in %s", dir)

	var sources []DataSource
	sources = append(sources, discoverSQLite(dir)...)
	jsonl, err := discoverJSONL(dir)
	if err != nil {
		debug.Log("jsonl discovery: %v", err)
	}
	sources = append(sources, jsonl...)

	if opts.Validate {
		var g errgroup.Group
		for i := range sources {
			i := i
			g.Go(func() error {
				ValidateSource(&sources[i])
				return nil
			})
		}
		g.Wait()

		if !opts.IncludeInvalid {
			valid := sources[:0]
			for _, s := range sources {
				if s.Valid {
					valid = append(valid, s)
				}
			}
			sources = valid
		}
	}

	sort.Slice(sources, func(i, j int) bool {
		if sources[i].ModTime.Equal(sources[j].ModTime) {
			return sources[i].Priority > sources[j].Priority
		}
		return sources[i].ModTime.After(sources[j].ModTime)
	})

	debug.Log("discovered %d sources", len(sources))
	return sources, nil
}

func discoverSQLite(dir string) []DataSource {
	dbPath := filepath.Join(dir, SQLiteDBName)
	info, err := os.Stat(dbPath)
	if err != nil {
		return nil
	}
	return []DataSource{{
		Type:     SourceTypeSQLite,
		Path:     dbPath,
		Priority: PrioritySQLite,
		ModTime:  info.ModTime(),
		Size:     info.Size(),
	}}
}

func discoverJSONL(dir string) ([]DataSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read issues directory: %w", err)
	}

	var sources []DataSource
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".jsonl") {
			continue
		}
		if strings.Contains(name, ".backup") || strings.Contains(name, ".orig") ||
			strings.Contains(name, ".merge") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		sources = append(sources, DataSource{
			Type:     SourceTypeJSONL,
			Path:     filepath.Join(dir, name),
			Priority: PriorityJSONL,
			ModTime:  info.ModTime(),
			Size:     info.Size(),
		})
	}
	return sources, nil
}

// ValidateSource probes a source and records the outcome on it. A valid
// source is readable and yields at least zero issues without a hard error.
func ValidateSource(s *DataSource) error {
	switch s.Type {
	case SourceTypeSQLite:
		reader, err := NewSQLiteReader(*s)
		if err != nil {
			s.Valid = false
			s.ValidationError = err.Error()
			return err
		}
		defer reader.Close()
		count, err := reader.CountIssues()
		if err != nil {
			s.Valid = false
			s.ValidationError = err.Error()
			return err
		}
		s.Valid = true
		s.IssueCount = count
		// The db file's mtime can lag the row clock (WAL checkpoints);
		// take the newest updated_at when it is ahead.
		if ts, err := reader.GetLastModified(); err == nil && ts.After(s.ModTime) {
			s.ModTime = ts
		}
		return nil

	case SourceTypeJSONL:
		issues, err := loader.LoadIssuesFromFileWithOptions(s.Path, loader.ParseOptions{
			WarningHandler: func(string) {},
		})
		if err != nil {
			s.Valid = false
			s.ValidationError = err.Error()
			return err
		}
		s.Valid = true
		s.IssueCount = len(issues)
		return nil

	default:
		s.Valid = false
		s.ValidationError = fmt.Sprintf("unknown source type: %s", s.Type)
		return fmt.Errorf("unknown source type: %s", s.Type)
	}
}

// SelectBestSource picks the freshest valid source. Sources must already be
// sorted by DiscoverSources.
func SelectBestSource(sources []DataSource) (DataSource, error) {
	for _, s := range sources {
		if s.Valid {
			return s, nil
		}
	}
	return DataSource{}, fmt.Errorf("no valid sources among %d candidates", len(sources))
}
