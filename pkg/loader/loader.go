// Package loader reads issue snapshots from JSONL exports of the tracker.
package loader

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"

	"github.com/dvermeulen86/pertview/pkg/model"
)

// IssuesDirEnvVar names the environment variable for a custom issues directory.
const IssuesDirEnvVar = "PERTVIEW_ISSUES_DIR"

// PreferredJSONLNames defines the priority order for locating snapshot files.
var PreferredJSONLNames = []string{"issues.jsonl", "snapshot.jsonl"}

// DefaultMaxBufferSize is the default maximum line size (10MB).
const DefaultMaxBufferSize = 1024 * 1024 * 10

// GetIssuesDir returns the issues directory, respecting PERTVIEW_ISSUES_DIR.
// Otherwise falls back to .issues in repoPath (or cwd when empty).
func GetIssuesDir(repoPath string) (string, error) {
	if envDir := os.Getenv(IssuesDirEnvVar); envDir != "" {
		return envDir, nil
	}
	if repoPath == "" {
		var err error
		repoPath, err = os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get current working directory: %w", err)
		}
	}
	return filepath.Join(repoPath, ".issues"), nil
}

// FindJSONLPath locates the snapshot JSONL file in the given directory,
// skipping backups and merge artifacts.
func FindJSONLPath(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read issues directory: %w", err)
	}

	var candidates []string
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
		candidates = append(candidates, name)
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("no issues JSONL file found in %s", dir)
	}

	for _, preferred := range PreferredJSONLNames {
		for _, name := range candidates {
			if name == preferred {
				path := filepath.Join(dir, name)
				if info, err := os.Stat(path); err == nil && info.Size() > 0 {
					return path, nil
				}
			}
		}
	}
	for _, name := range candidates {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && info.Size() > 0 {
			return path, nil
		}
	}
	return filepath.Join(dir, candidates[0]), nil
}

// ParseOptions configures the behavior of ParseIssues.
type ParseOptions struct {
	// WarningHandler is called with warning messages (e.g., malformed JSON).
	// If nil, warnings are printed to os.Stderr.
	WarningHandler func(string)

	// BufferSize sets the maximum line size (in bytes) to read at once.
	// Lines longer than this are skipped with a warning.
	// If 0, uses DefaultMaxBufferSize.
	BufferSize int

	// IssueFilter optionally filters parsed issues. Return true to include.
	IssueFilter func(*model.Issue) bool
}

// LoadIssues reads issues from the issues directory for repoPath.
func LoadIssues(repoPath string) ([]model.Issue, error) {
	dir, err := GetIssuesDir(repoPath)
	if err != nil {
		return nil, err
	}
	path, err := FindJSONLPath(dir)
	if err != nil {
		return nil, err
	}
	return LoadIssuesFromFile(path)
}

// LoadIssuesFromFile reads issues directly from a specific JSONL file path.
func LoadIssuesFromFile(path string) ([]model.Issue, error) {
	return LoadIssuesFromFileWithOptions(path, ParseOptions{})
}

// LoadIssuesFromFileWithOptions reads issues from a file with custom options.
func LoadIssuesFromFileWithOptions(path string, opts ParseOptions) ([]model.Issue, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("no issues found at %s", path)
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open issues file: %w", err)
	}
	defer file.Close()

	return ParseIssuesWithOptions(file, opts)
}

// ParseIssues parses JSONL content from a reader into issues.
// Handles UTF-8 BOM stripping, oversized lines, and validation.
func ParseIssues(r io.Reader) ([]model.Issue, error) {
	return ParseIssuesWithOptions(r, ParseOptions{})
}

// ParseIssuesWithOptions parses JSONL content with custom options.
// Malformed and invalid lines are skipped with a warning; the engine wants a
// best-effort snapshot, not strict validation.
func ParseIssuesWithOptions(r io.Reader, opts ParseOptions) ([]model.Issue, error) {
	maxCapacity := opts.BufferSize
	if maxCapacity <= 0 {
		maxCapacity = DefaultMaxBufferSize
	}
	reader := bufio.NewReaderSize(r, maxCapacity)

	warn := opts.WarningHandler
	if warn == nil {
		warn = func(msg string) {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", msg)
		}
	}

	var issues []model.Issue
	lineNum := 0
	for {
		lineNum++
		line, isPrefix, err := reader.ReadLine()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("error reading issues stream at line %d: %w", lineNum, err)
		}

		if isPrefix {
			// Line too long. Discard the rest of the line.
			warn(fmt.Sprintf("skipping line %d: line too long (exceeds %d bytes)", lineNum, maxCapacity))
			for isPrefix {
				_, isPrefix, err = reader.ReadLine()
				if err != nil && err != io.EOF {
					return nil, fmt.Errorf("error skipping long line at line %d: %w", lineNum, err)
				}
				if err == io.EOF {
					break
				}
			}
			continue
		}

		if len(line) == 0 {
			continue
		}
		if lineNum == 1 {
			line = stripBOM(line)
		}

		var issue model.Issue
		if err := json.Unmarshal(line, &issue); err != nil {
			warn(fmt.Sprintf("skipping malformed JSON on line %d: %v", lineNum, err))
			continue
		}
		issue.Status = model.NormalizeStatus(issue.Status)
		if err := issue.Validate(); err != nil {
			warn(fmt.Sprintf("skipping invalid issue on line %d: %v", lineNum, err))
			continue
		}
		if opts.IssueFilter != nil && !opts.IssueFilter(&issue) {
			continue
		}
		issues = append(issues, issue)
	}

	return issues, nil
}

// stripBOM removes the UTF-8 Byte Order Mark if present.
func stripBOM(b []byte) []byte {
	if bytes.HasPrefix(b, []byte{0xEF, 0xBB, 0xBF}) {
		return b[3:]
	}
	return b
}
