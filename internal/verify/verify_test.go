package verify

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mehmetkoksal-w/rails-autocomplete/internal/config"
	"github.com/mehmetkoksal-w/rails-autocomplete/internal/generate"
)

func setup(t *testing.T) (root string, s config.Settings, out string) {
	t.Helper()
	root = t.TempDir()
	src := filepath.Join(root, "lib", "widget.rb")
	if err := os.MkdirAll(filepath.Dir(src), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(src, []byte("class Widget\n  def spin(speed)\n  end\nend\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := config.Parse([]byte(`{"source_paths": ["lib"]}`))
	if err != nil {
		t.Fatalf("parse settings: %v", err)
	}
	out = filepath.Join(root, "out.json")
	if _, err := generate.Run(context.Background(), generate.Options{Root: root, Settings: s, Output: out}); err != nil {
		t.Fatalf("generate: %v", err)
	}
	// Keep the sources strictly older than the completions file.
	past := time.Now().Add(-time.Hour)
	for _, p := range []string{src, filepath.Dir(src)} {
		if err := os.Chtimes(p, past, past); err != nil {
			t.Fatal(err)
		}
	}
	return root, s, out
}

func TestRunFresh(t *testing.T) {
	root, s, out := setup(t)
	for _, mode := range []Mode{ModeFast, ModeStrict} {
		stale, err := Run(context.Background(), Options{Root: root, Settings: s, Output: out, Mode: mode})
		if err != nil {
			t.Fatalf("%s: %v", mode, err)
		}
		if len(stale) != 0 {
			t.Fatalf("%s: expected fresh, got %v", mode, stale)
		}
	}
}

func TestRunMissingOutput(t *testing.T) {
	root, s, _ := setup(t)
	stale, err := Run(context.Background(), Options{Root: root, Settings: s, Output: filepath.Join(root, "none.json")})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(stale) != 1 || !strings.HasPrefix(stale[0], "missing completions file") {
		t.Fatalf("unexpected result %v", stale)
	}
}

func TestRunInvalidOutput(t *testing.T) {
	root, s, out := setup(t)
	if err := os.WriteFile(out, []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	stale, err := Run(context.Background(), Options{Root: root, Settings: s, Output: out})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(stale) != 1 || !strings.HasPrefix(stale[0], "invalid completions file") {
		t.Fatalf("unexpected result %v", stale)
	}
}

func TestRunFastDetectsNewerSource(t *testing.T) {
	root, s, out := setup(t)
	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(filepath.Join(root, "lib", "widget.rb"), future, future); err != nil {
		t.Fatal(err)
	}
	stale, err := Run(context.Background(), Options{Root: root, Settings: s, Output: out, Mode: ModeFast})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(stale) != 1 || stale[0] != "changed file lib/widget.rb" {
		t.Fatalf("unexpected result %v", stale)
	}
}

func TestRunStrictDetectsChangedCompletions(t *testing.T) {
	root, s, out := setup(t)
	src := filepath.Join(root, "lib", "widget.rb")
	if err := os.WriteFile(src, []byte("class Widget\n  def turn(angle)\n  end\nend\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(src, past, past); err != nil {
		t.Fatal(err)
	}

	if stale, err := Run(context.Background(), Options{Root: root, Settings: s, Output: out, Mode: ModeFast}); err != nil || len(stale) != 0 {
		t.Fatalf("fast mode should trust timestamps, got %v (err %v)", stale, err)
	}

	stale, err := Run(context.Background(), Options{Root: root, Settings: s, Output: out, Mode: ModeStrict})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := []string{"new completion turn\tWidget", "removed completion spin\tWidget"}
	if len(stale) != len(want) || stale[0] != want[0] || stale[1] != want[1] {
		t.Fatalf("stale = %q, want %q", stale, want)
	}
}

func TestRunFastDetectsDeletedSource(t *testing.T) {
	root, s, out := setup(t)
	gear := filepath.Join(root, "lib", "gear.rb")
	if err := os.WriteFile(gear, []byte("class Gear\nend\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := generate.Run(context.Background(), generate.Options{Root: root, Settings: s, Output: out}); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if err := os.Remove(gear); err != nil {
		t.Fatal(err)
	}
	src := filepath.Join(root, "lib", "widget.rb")
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(src, past, past); err != nil {
		t.Fatal(err)
	}
	// The deletion left lib newer than the completions file.
	older := time.Now().Add(-30 * time.Minute)
	if err := os.Chtimes(out, older, older); err != nil {
		t.Fatal(err)
	}

	stale, err := Run(context.Background(), Options{Root: root, Settings: s, Output: out, Mode: ModeFast})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(stale) != 1 || stale[0] != "changed directory lib" {
		t.Fatalf("unexpected result %v", stale)
	}
}

func TestRunFastDetectsScopeChange(t *testing.T) {
	root, _, out := setup(t)
	s, err := config.Parse([]byte(`{"source_paths": ["lib"], "scope": "source.ruby"}`))
	if err != nil {
		t.Fatalf("parse settings: %v", err)
	}
	stale, err := Run(context.Background(), Options{Root: root, Settings: s, Output: out, Mode: ModeFast})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := "scope changed from " + config.DefaultScope + " to source.ruby"
	if len(stale) != 1 || stale[0] != want {
		t.Fatalf("stale = %q, want %q", stale, want)
	}
}
