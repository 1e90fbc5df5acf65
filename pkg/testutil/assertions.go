package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/dvermeulen86/pertview/pkg/model"
)

// AssertIssueCount verifies the expected number of issues.
func AssertIssueCount(t *testing.T, issues []model.Issue, expected int) {
	t.Helper()
	if len(issues) != expected {
		t.Errorf("expected %d issues, got %d", expected, len(issues))
	}
}

// AssertNoDuplicateIDs verifies all issue IDs are unique.
func AssertNoDuplicateIDs(t *testing.T, issues []model.Issue) {
	t.Helper()
	seen := make(map[string]bool)
	for _, issue := range issues {
		if seen[issue.ID] {
			t.Errorf("duplicate issue ID: %s", issue.ID)
		}
		seen[issue.ID] = true
	}
}

// AssertAllValid verifies all issues pass validation.
func AssertAllValid(t *testing.T, issues []model.Issue) {
	t.Helper()
	for i, issue := range issues {
		if err := issue.Validate(); err != nil {
			t.Errorf("issue %d (%s) invalid: %v", i, issue.ID, err)
		}
	}
}

// AssertNoCycles verifies that the issue dependency graph has no cycles.
// This is a simple DFS-based check suitable for small test graphs.
func AssertNoCycles(t *testing.T, issues []model.Issue) {
	t.Helper()
	if hasAnyCycle(issues) {
		t.Error("cycle detected in issue graph")
	}
}

// AssertHasCycle verifies that the issue graph contains at least one cycle.
func AssertHasCycle(t *testing.T, issues []model.Issue) {
	t.Helper()
	if !hasAnyCycle(issues) {
		t.Error("expected cycle but none found")
	}
}

func hasAnyCycle(issues []model.Issue) bool {
	adj := make(map[string][]string)
	for _, issue := range issues {
		for _, dep := range issue.DependencyIDs {
			adj[dep] = append(adj[dep], issue.ID)
		}
		adj[issue.ID] = append(adj[issue.ID], issue.BlocksIDs...)
	}

	visited := make(map[string]bool)
	inPath := make(map[string]bool)

	var walk func(id string) bool
	walk = func(id string) bool {
		if inPath[id] {
			return true
		}
		if visited[id] {
			return false
		}
		visited[id] = true
		inPath[id] = true
		for _, next := range adj[id] {
			if walk(next) {
				return true
			}
		}
		inPath[id] = false
		return false
	}

	for _, issue := range issues {
		if walk(issue.ID) {
			return true
		}
	}
	return false
}

// ToJSONL serializes issues to JSONL, one issue per line.
func ToJSONL(issues []model.Issue) string {
	var sb strings.Builder
	for _, issue := range issues {
		data, err := json.Marshal(issue)
		if err != nil {
			continue
		}
		sb.Write(data)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// WriteIssuesFile writes issues as JSONL to the given path.
func WriteIssuesFile(t *testing.T, path string, issues []model.Issue) {
	t.Helper()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(ToJSONL(issues)), 0644); err != nil {
		t.Fatalf("failed to write issues file: %v", err)
	}
}

// FindIssue returns the issue with the given ID, or nil if not found.
func FindIssue(issues []model.Issue, id string) *model.Issue {
	for i := range issues {
		if issues[i].ID == id {
			return &issues[i]
		}
	}
	return nil
}

// GetIDs returns a slice of all issue IDs.
func GetIDs(issues []model.Issue) []string {
	ids := make([]string, len(issues))
	for i, issue := range issues {
		ids[i] = issue.ID
	}
	return ids
}

// Hours returns a pointer to h, for building fixtures inline.
func Hours(h float64) *float64 {
	return &h
}

// Golden file helpers

// GoldenFile handles golden file comparisons.
type GoldenFile struct {
	t      *testing.T
	dir    string
	name   string
	update bool
}

// NewGoldenFile creates a golden file helper.
// If GENERATE_GOLDEN env var is set, golden files will be updated.
func NewGoldenFile(t *testing.T, dir, name string) *GoldenFile {
	t.Helper()
	return &GoldenFile{
		t:      t,
		dir:    dir,
		name:   name,
		update: os.Getenv("GENERATE_GOLDEN") != "",
	}
}

// Path returns the full path to the golden file.
func (g *GoldenFile) Path() string {
	return filepath.Join(g.dir, g.name)
}

// Assert compares actual content against the golden file.
// If GENERATE_GOLDEN is set, updates the golden file instead.
func (g *GoldenFile) Assert(actual string) {
	g.t.Helper()

	path := g.Path()

	if g.update {
		if err := os.MkdirAll(g.dir, 0755); err != nil {
			g.t.Fatalf("failed to create golden dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(actual), 0644); err != nil {
			g.t.Fatalf("failed to write golden file: %v", err)
		}
		g.t.Logf("updated golden file: %s", path)
		return
	}

	expected, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			g.t.Fatalf("golden file does not exist: %s\nRun with GENERATE_GOLDEN=1 to create it", path)
		}
		g.t.Fatalf("failed to read golden file: %v", err)
	}

	if string(expected) != actual {
		expectedLines := strings.Split(string(expected), "\n")
		actualLines := strings.Split(actual, "\n")
		for i := 0; i < len(expectedLines) || i < len(actualLines); i++ {
			var expLine, actLine string
			if i < len(expectedLines) {
				expLine = expectedLines[i]
			}
			if i < len(actualLines) {
				actLine = actualLines[i]
			}
			if expLine != actLine {
				g.t.Errorf("golden file mismatch at line %d:\nexpected: %s\nactual:   %s", i+1, expLine, actLine)
				return
			}
		}
		g.t.Errorf("golden file mismatch (length differs)")
	}
}
