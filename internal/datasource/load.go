package datasource

import (
	"fmt"

	"github.com/dvermeulen86/pertview/pkg/loader"
	"github.com/dvermeulen86/pertview/pkg/model"
)

// LoadIssues performs multi-source detection and loading. It discovers all
// available sources (SQLite, JSONL), validates them, selects the freshest
// valid one, and loads issues from it. Falls back to plain JSONL loading when
// detection finds nothing usable.
func LoadIssues(repoPath string) ([]model.Issue, error) {
	issuesDir, err := loader.GetIssuesDir(repoPath)
	if err != nil {
		return nil, err
	}

	issues, smartErr := loadSmart(issuesDir, repoPath)
	if smartErr == nil {
		return issues, nil
	}
	return loader.LoadIssues(repoPath)
}

// LoadIssuesFromDir performs source detection within a known issues directory.
func LoadIssuesFromDir(issuesDir string) ([]model.Issue, error) {
	issues, smartErr := loadSmart(issuesDir, "")
	if smartErr == nil {
		return issues, nil
	}

	jsonlPath, err := loader.FindJSONLPath(issuesDir)
	if err != nil {
		return nil, err
	}
	return loader.LoadIssuesFromFile(jsonlPath)
}

func loadSmart(issuesDir, repoPath string) ([]model.Issue, error) {
	sources, err := DiscoverSources(DiscoveryOptions{
		IssuesDir: issuesDir,
		RepoPath:  repoPath,
		Validate:  true,
	})
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("no valid sources discovered")
	}

	best, err := SelectBestSource(sources)
	if err != nil {
		return nil, err
	}
	return LoadFromSource(best)
}

// LoadFromSource loads issues from a specific source, dispatching on type.
func LoadFromSource(source DataSource) ([]model.Issue, error) {
	switch source.Type {
	case SourceTypeSQLite:
		reader, err := NewSQLiteReader(source)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite source %s: %w", source.Path, err)
		}
		defer reader.Close()
		return reader.LoadIssues()

	case SourceTypeJSONL:
		return loader.LoadIssuesFromFile(source.Path)

	default:
		return nil, fmt.Errorf("unknown source type: %s", source.Type)
	}
}
