package datasource

import (
	"database/sql"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	"github.com/dvermeulen86/pertview/pkg/model"
)

// SQLiteReader provides read access to a tracker SQLite database.
type SQLiteReader struct {
	db   *sql.DB
	path string
}

// NewSQLiteReader opens a SQLite database for reading.
func NewSQLiteReader(source DataSource) (*SQLiteReader, error) {
	if source.Type != SourceTypeSQLite {
		return nil, fmt.Errorf("source is not SQLite: %s", source.Type)
	}

	dsn := fmt.Sprintf("file:%s?mode=ro&_busy_timeout=5000", source.Path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA cache_size = -64000",
		"PRAGMA temp_store = MEMORY",
	} {
		db.Exec(pragma)
	}

	return &SQLiteReader{db: db, path: source.Path}, nil
}

// Close closes the database connection.
func (r *SQLiteReader) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// LoadIssues reads all issues from the database.
func (r *SQLiteReader) LoadIssues() ([]model.Issue, error) {
	return r.LoadIssuesFiltered(nil)
}

// LoadIssuesFiltered reads issues matching the filter function.
func (r *SQLiteReader) LoadIssuesFiltered(filter func(*model.Issue) bool) ([]model.Issue, error) {
	query := `
		SELECT
			id, title, description, status, priority, issue_type,
			assignee, estimated_hours, labels,
			created_at, updated_at, closed_at
		FROM issues
		WHERE (tombstone IS NULL OR tombstone = 0)
		ORDER BY id ASC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return r.loadIssuesSimple(filter)
	}
	defer rows.Close()

	var issues []model.Issue
	for rows.Next() {
		var issue model.Issue
		var description, assignee, labelsJSON sql.NullString
		var issueType, status string
		var priority sql.NullInt64
		var estimatedHours sql.NullFloat64
		var createdAt, updatedAt, closedAt sql.NullTime

		err := rows.Scan(
			&issue.ID, &issue.Title, &description, &status, &priority, &issueType,
			&assignee, &estimatedHours, &labelsJSON,
			&createdAt, &updatedAt, &closedAt,
		)
		if err != nil {
			continue
		}

		issue.Status = model.NormalizeStatus(model.Status(status))
		issue.IssueType = model.IssueType(issueType)
		if description.Valid {
			issue.Description = description.String
		}
		if assignee.Valid {
			issue.Assignee = assignee.String
		}
		if priority.Valid {
			issue.Priority = int(priority.Int64)
		}
		if estimatedHours.Valid {
			v := estimatedHours.Float64
			issue.EstimatedHours = &v
		}
		if labelsJSON.Valid {
			issue.Labels = parseJSONStringArray(labelsJSON.String)
		}
		if createdAt.Valid {
			issue.CreatedAt = createdAt.Time
		}
		if updatedAt.Valid {
			issue.UpdatedAt = updatedAt.Time
		}
		if closedAt.Valid {
			t := closedAt.Time
			issue.ClosedAt = &t
		}

		issue.DependencyIDs = r.loadDependencies(issue.ID)

		if err := issue.Validate(); err != nil {
			continue
		}
		if filter != nil && !filter(&issue) {
			continue
		}
		issues = append(issues, issue)
	}

	return issues, rows.Err()
}

// loadIssuesSimple uses a minimal column set for older schema versions.
func (r *SQLiteReader) loadIssuesSimple(filter func(*model.Issue) bool) ([]model.Issue, error) {
	rows, err := r.db.Query(`SELECT id, title, status FROM issues ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var issues []model.Issue
	for rows.Next() {
		var issue model.Issue
		var status string
		if err := rows.Scan(&issue.ID, &issue.Title, &status); err != nil {
			continue
		}
		issue.Status = model.NormalizeStatus(model.Status(status))
		issue.DependencyIDs = r.loadDependencies(issue.ID)
		if err := issue.Validate(); err != nil {
			continue
		}
		if filter != nil && !filter(&issue) {
			continue
		}
		issues = append(issues, issue)
	}
	return issues, rows.Err()
}

// loadDependencies returns the blocking issue ids for one issue. The
// dependencies table stores one row per (issue, blocker) pair.
func (r *SQLiteReader) loadDependencies(issueID string) []string {
	rows, err := r.db.Query(
		`SELECT depends_on FROM dependencies WHERE issue_id = ? ORDER BY depends_on ASC`,
		issueID,
	)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var deps []string
	for rows.Next() {
		var dep string
		if err := rows.Scan(&dep); err != nil {
			continue
		}
		deps = append(deps, dep)
	}
	return deps
}

// CountIssues returns the total number of live issues.
func (r *SQLiteReader) CountIssues() (int, error) {
	var count int
	err := r.db.QueryRow(
		`SELECT COUNT(*) FROM issues WHERE (tombstone IS NULL OR tombstone = 0)`,
	).Scan(&count)
	if err != nil {
		// Older schemas have no tombstone column.
		err = r.db.QueryRow(`SELECT COUNT(*) FROM issues`).Scan(&count)
	}
	if err != nil {
		return 0, fmt.Errorf("count failed: %w", err)
	}
	return count, nil
}

// GetLastModified returns the most recent update timestamp in the database.
// The bare column is selected (not MAX) so the driver keeps the TIMESTAMP
// decltype and converts to time.Time.
func (r *SQLiteReader) GetLastModified() (time.Time, error) {
	var ts sql.NullTime
	err := r.db.QueryRow(
		`SELECT updated_at FROM issues WHERE updated_at IS NOT NULL
		 ORDER BY updated_at DESC LIMIT 1`,
	).Scan(&ts)
	if err != nil || !ts.Valid {
		return time.Time{}, fmt.Errorf("no update timestamps available")
	}
	return ts.Time, nil
}

func parseJSONStringArray(s string) []string {
	if s == "" || s == "[]" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil
	}
	return out
}
