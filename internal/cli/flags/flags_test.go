package flags

import (
	"flag"
	"io"
	"testing"
)

func TestBoolFlag(t *testing.T) {
	tests := []struct {
		in      string
		want    bool
		wantErr bool
	}{
		{"", true, false},
		{"true", true, false},
		{"TRUE", true, false},
		{"1", true, false},
		{"yes", true, false},
		{"false", false, false},
		{"0", false, false},
		{"no", false, false},
		{"maybe", false, true},
	}
	for _, tt := range tests {
		var f BoolFlag
		err := f.Set(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("Set(%q): expected error", tt.in)
			}
			if f.WasSet {
				t.Errorf("Set(%q): WasSet should stay false on error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("Set(%q): unexpected error %v", tt.in, err)
			continue
		}
		if f.Value != tt.want || !f.WasSet {
			t.Errorf("Set(%q) = value %v set %v, want %v set true", tt.in, f.Value, f.WasSet, tt.want)
		}
	}

	f := BoolFlag{Value: true}
	if f.String() != "true" {
		t.Fatalf("String() = %q", f.String())
	}
	if !f.IsBoolFlag() {
		t.Fatal("expected IsBoolFlag() to return true")
	}
}

func TestBoolFlagApply(t *testing.T) {
	dst := true
	var unset BoolFlag
	unset.Apply(&dst)
	if !dst {
		t.Fatal("unset flag must not change destination")
	}

	set := BoolFlag{}
	if err := set.Set("false"); err != nil {
		t.Fatal(err)
	}
	set.Apply(&dst)
	if dst {
		t.Fatal("set flag should override destination")
	}
}

func TestBoolFlagInFlagSet(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	var f BoolFlag
	fs.Var(&f, "exclude-private", "")
	if err := fs.Parse([]string{"--exclude-private"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !f.Value || !f.WasSet {
		t.Fatalf("got value=%v set=%v", f.Value, f.WasSet)
	}
}

func TestCommonFlagShorthands(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	root := AddRootFlag(fs)
	verbose := AddVerboseFlag(fs)
	limit := AddLimitFlag(fs, 10)
	settings := AddSettingsFileFlag(fs)
	debug := AddDebugFlag(fs)

	if err := fs.Parse([]string{"-r", "app", "-v", "-l", "3", "-s", "s.jsonc", "--debug", "out.json"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if *root != "app" || !*verbose || *limit != 3 || *settings != "s.jsonc" || !*debug {
		t.Fatalf("root=%q verbose=%v limit=%d settings=%q debug=%v", *root, *verbose, *limit, *settings, *debug)
	}
	if fs.Arg(0) != "out.json" {
		t.Fatalf("positional = %q", fs.Arg(0))
	}
}

func TestIndexDBFlagDefaultFromEnv(t *testing.T) {
	t.Setenv(IndexDBEnv, "/tmp/defs.db")
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	db := AddIndexDBFlag(fs)
	if err := fs.Parse(nil); err != nil {
		t.Fatal(err)
	}
	if *db != "/tmp/defs.db" {
		t.Fatalf("index-db = %q", *db)
	}
}
