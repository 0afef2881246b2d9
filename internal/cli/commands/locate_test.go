package commands

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mehmetkoksal-w/rails-autocomplete/internal/index"
)

func generateWithIndex(t *testing.T) (root, dbPath string) {
	t.Helper()
	root = t.TempDir()
	writeSource(t, root, "lib/widget.rb", "class Widget\n  MAX_SPEED = 10\n  def spin(speed)\n  end\n  private\n  def secret\n  end\nend\n")
	dbPath = filepath.Join(root, ".railscomplete", "index.db")
	err := ExecuteGenerate(GenerateOptions{
		Root:         root,
		SettingsJSON: `{"source_paths": ["lib"]}`,
		Output:       filepath.Join(root, "out.json"),
		IndexDB:      dbPath,
		Out:          &bytes.Buffer{},
	})
	if err != nil {
		t.Fatalf("ExecuteGenerate: %v", err)
	}
	return root, dbPath
}

func TestExecuteLocate(t *testing.T) {
	_, dbPath := generateWithIndex(t)

	tests := []struct {
		query string
		want  string
	}{
		{"Widget", "lib/widget.rb:1\tclass Widget\n"},
		{"MAX_SPEED", "lib/widget.rb:2\tconstant Widget::MAX_SPEED\n"},
		{"spin", "lib/widget.rb:3\tmethod spin\n"},
		{"secret", "lib/widget.rb:6\tmethod secret (private)\n"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		if err := ExecuteLocate(LocateOptions{IndexDB: dbPath, Query: tt.query, Out: &buf}); err != nil {
			t.Fatalf("ExecuteLocate(%q): %v", tt.query, err)
		}
		if buf.String() != tt.want {
			t.Errorf("ExecuteLocate(%q) = %q, want %q", tt.query, buf.String(), tt.want)
		}
	}
}

func TestExecuteLocateNotFound(t *testing.T) {
	_, dbPath := generateWithIndex(t)
	err := ExecuteLocate(LocateOptions{IndexDB: dbPath, Query: "missing", Out: &bytes.Buffer{}})
	if err == nil || !strings.Contains(err.Error(), "no definition found") {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestExecuteLocateRequiresIndex(t *testing.T) {
	if err := ExecuteLocate(LocateOptions{Query: "Widget"}); err == nil {
		t.Fatal("expected error without --index-db")
	}
	missing := filepath.Join(t.TempDir(), "none.db")
	if err := ExecuteLocate(LocateOptions{IndexDB: missing, Query: "Widget"}); err == nil {
		t.Fatal("expected error for missing index file")
	}
}

func TestRunLocateRequiresQuery(t *testing.T) {
	if err := RunLocate([]string{"--index-db", "x.db"}); err == nil {
		t.Fatal("expected usage error")
	}
}

func TestExecuteRuns(t *testing.T) {
	_, dbPath := generateWithIndex(t)

	var buf bytes.Buffer
	if err := ExecuteRuns(RunsOptions{IndexDB: dbPath, Out: &buf}); err != nil {
		t.Fatalf("ExecuteRuns: %v", err)
	}
	if !strings.Contains(buf.String(), "1 classes, 1 constants, 2 methods") {
		t.Fatalf("unexpected runs output %q", buf.String())
	}
}

func TestExecuteRunsEmptyIndex(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "index.db")
	db, err := index.Open(dbPath)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	db.Close()

	if err := ExecuteRuns(RunsOptions{IndexDB: dbPath, Out: &bytes.Buffer{}}); !errors.Is(err, index.ErrNoIndex) {
		t.Fatalf("expected ErrNoIndex, got %v", err)
	}
}

func TestRunRunsNegativeLimit(t *testing.T) {
	if err := RunRuns([]string{"--limit", "-1"}); err == nil {
		t.Fatal("expected error for negative limit")
	}
}
