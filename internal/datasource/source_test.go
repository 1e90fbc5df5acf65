package datasource

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

func writeJSONL(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func createTestDB(t *testing.T, dir string, issues ...[3]string) string {
	t.Helper()
	path := filepath.Join(dir, SQLiteDBName)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	schema := `
		CREATE TABLE issues (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT,
			status TEXT,
			priority INTEGER,
			issue_type TEXT,
			assignee TEXT,
			estimated_hours REAL,
			labels TEXT,
			created_at TIMESTAMP,
			updated_at TIMESTAMP,
			closed_at TIMESTAMP,
			tombstone INTEGER DEFAULT 0
		);
		CREATE TABLE dependencies (
			issue_id TEXT NOT NULL,
			depends_on TEXT NOT NULL
		);
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatal(err)
	}
	for _, row := range issues {
		_, err := db.Exec(
			`INSERT INTO issues (id, title, status) VALUES (?, ?, ?)`,
			row[0], row[1], row[2],
		)
		if err != nil {
			t.Fatal(err)
		}
	}
	return path
}

func TestDiscoverSources_FindsJSONLAndSQLite(t *testing.T) {
	dir := t.TempDir()
	writeJSONL(t, dir, "issues.jsonl", `{"id":"a-1","title":"T","status":"open"}`)
	createTestDB(t, dir, [3]string{"a-1", "T", "open"})

	sources, err := DiscoverSources(DiscoveryOptions{IssuesDir: dir})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(sources) != 2 {
		t.Fatalf("Expected 2 sources, got %d", len(sources))
	}
}

func TestDiscoverSources_SkipsBackupArtifacts(t *testing.T) {
	dir := t.TempDir()
	writeJSONL(t, dir, "issues.jsonl.backup.jsonl", `{"id":"a-1","title":"T","status":"open"}`)
	writeJSONL(t, dir, "issues.merge-left.jsonl", `{"id":"a-2","title":"T","status":"open"}`)
	writeJSONL(t, dir, "issues.jsonl", `{"id":"a-3","title":"T","status":"open"}`)

	sources, err := DiscoverSources(DiscoveryOptions{IssuesDir: dir})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(sources) != 1 {
		t.Fatalf("Expected 1 source, got %d: %v", len(sources), sources)
	}
	if filepath.Base(sources[0].Path) != "issues.jsonl" {
		t.Errorf("Expected issues.jsonl, got %s", sources[0].Path)
	}
}

func TestDiscoverSources_ValidationCountsIssues(t *testing.T) {
	dir := t.TempDir()
	writeJSONL(t, dir, "issues.jsonl",
		`{"id":"a-1","title":"First","status":"open"}
{"id":"a-2","title":"Second","status":"open"}
`)

	sources, err := DiscoverSources(DiscoveryOptions{IssuesDir: dir, Validate: true})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(sources) != 1 {
		t.Fatalf("Expected 1 valid source, got %d", len(sources))
	}
	if !sources[0].Valid {
		t.Error("Expected source to be valid")
	}
	if sources[0].IssueCount != 2 {
		t.Errorf("Expected 2 issues counted, got %d", sources[0].IssueCount)
	}
}

func TestSelectBestSource_PrefersSQLiteAtEqualFreshness(t *testing.T) {
	now := time.Now()
	sources := []DataSource{
		{Type: SourceTypeSQLite, Path: "issues.db", Priority: PrioritySQLite, ModTime: now, Valid: true},
		{Type: SourceTypeJSONL, Path: "issues.jsonl", Priority: PriorityJSONL, ModTime: now, Valid: true},
	}
	// DiscoverSources sorts; emulate that ordering here.
	best, err := SelectBestSource(sources)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if best.Type != SourceTypeSQLite {
		t.Errorf("Expected SQLite source, got %s", best.Type)
	}
}

func TestSelectBestSource_NoValidSources(t *testing.T) {
	sources := []DataSource{
		{Type: SourceTypeJSONL, Path: "issues.jsonl", Valid: false},
	}
	if _, err := SelectBestSource(sources); err == nil {
		t.Fatal("Expected error when no source is valid")
	}
}

func TestSQLiteReader_LoadIssues(t *testing.T) {
	dir := t.TempDir()
	path := createTestDB(t, dir)

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	est := 6.5
	_, err = db.Exec(
		`INSERT INTO issues (id, title, status, priority, estimated_hours, labels)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		"a-1", "Root task", "Open", 1, est, `["backend","urgent"]`,
	)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(
		`INSERT INTO issues (id, title, status) VALUES (?, ?, ?)`,
		"a-2", "Blocked task", "open",
	); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(
		`INSERT INTO dependencies (issue_id, depends_on) VALUES (?, ?)`,
		"a-2", "a-1",
	); err != nil {
		t.Fatal(err)
	}
	db.Close()

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	reader, err := NewSQLiteReader(DataSource{
		Type: SourceTypeSQLite, Path: path, ModTime: info.ModTime(),
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	defer reader.Close()

	issues, err := reader.LoadIssues()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(issues) != 2 {
		t.Fatalf("Expected 2 issues, got %d", len(issues))
	}
	if issues[0].ID != "a-1" {
		t.Fatalf("Expected a-1 first, got %s", issues[0].ID)
	}
	if issues[0].Status != "open" {
		t.Errorf("Expected normalized open status, got %q", issues[0].Status)
	}
	if !issues[0].HasEstimate() || *issues[0].EstimatedHours != 6.5 {
		t.Errorf("Expected 6.5h estimate, got %+v", issues[0].EstimatedHours)
	}
	if len(issues[0].Labels) != 2 {
		t.Errorf("Expected 2 labels, got %v", issues[0].Labels)
	}
	if len(issues[1].DependencyIDs) != 1 || issues[1].DependencyIDs[0] != "a-1" {
		t.Errorf("Expected a-2 to depend on a-1, got %v", issues[1].DependencyIDs)
	}
}

func TestSQLiteReader_SkipsTombstones(t *testing.T) {
	dir := t.TempDir()
	path := createTestDB(t, dir, [3]string{"a-1", "Live", "open"})

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(
		`INSERT INTO issues (id, title, status, tombstone) VALUES (?, ?, ?, 1)`,
		"a-dead", "Deleted", "closed",
	); err != nil {
		t.Fatal(err)
	}
	db.Close()

	reader, err := NewSQLiteReader(DataSource{Type: SourceTypeSQLite, Path: path})
	if err != nil {
		t.Fatal(err)
	}
	defer reader.Close()

	issues, err := reader.LoadIssues()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(issues) != 1 || issues[0].ID != "a-1" {
		t.Errorf("Expected only the live issue, got %v", issues)
	}

	count, err := reader.CountIssues()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected count 1, got %d", count)
	}
}

func TestLoadIssuesFromDir_FallsBackToJSONL(t *testing.T) {
	dir := t.TempDir()
	writeJSONL(t, dir, "issues.jsonl",
		`{"id":"a-1","title":"Only source","status":"open"}`)

	issues, err := LoadIssuesFromDir(dir)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(issues) != 1 || issues[0].ID != "a-1" {
		t.Errorf("Expected a-1 from JSONL, got %v", issues)
	}
}

func TestLoadFromSource_UnknownType(t *testing.T) {
	if _, err := LoadFromSource(DataSource{Type: "carrier_pigeon"}); err == nil {
		t.Fatal("Expected error for unknown source type")
	}
}

func TestValidateSource_SQLiteModTimeFromRowClock(t *testing.T) {
	dir := t.TempDir()
	dbPath := createTestDB(t, dir, [3]string{"a-1", "T", "open"})

	rowClock := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`UPDATE issues SET updated_at = ?`, rowClock); err != nil {
		t.Fatal(err)
	}
	db.Close()

	sources := discoverSQLite(dir)
	if len(sources) == 0 {
		t.Fatal("Expected sqlite source to be discovered")
	}
	src := sources[0]
	fileMod := src.ModTime

	if err := ValidateSource(&src); err != nil {
		t.Fatalf("ValidateSource failed: %v", err)
	}
	if !src.ModTime.After(fileMod) {
		t.Errorf("ModTime should advance to the row clock, got %s (file mtime %s)",
			src.ModTime, fileMod)
	}
	if got := src.ModTime.UTC().Truncate(time.Second); !got.Equal(rowClock) {
		t.Errorf("ModTime = %s, want row clock %s", got, rowClock)
	}
}

func TestValidateSource_SQLiteKeepsFileMtimeWithoutRowClock(t *testing.T) {
	dir := t.TempDir()
	createTestDB(t, dir, [3]string{"a-1", "T", "open"}) // updated_at stays NULL

	sources := discoverSQLite(dir)
	if len(sources) == 0 {
		t.Fatal("Expected sqlite source to be discovered")
	}
	src := sources[0]
	fileMod := src.ModTime

	if err := ValidateSource(&src); err != nil {
		t.Fatalf("ValidateSource failed: %v", err)
	}
	if !src.ModTime.Equal(fileMod) {
		t.Errorf("ModTime = %s, want file mtime %s", src.ModTime, fileMod)
	}
}
