// Package verify reports whether a completions file still reflects the Ruby
// sources it was generated from.
//
// Fast mode trusts modification times: a collected file or one of its parent
// directories below the root newer than the completions file marks it stale,
// which also catches files added, renamed or deleted next to surviving
// sources. Only strict mode notices settings that change the collected set
// or a deleted source directory.
package verify

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mehmetkoksal-w/rails-autocomplete/internal/collect"
	"github.com/mehmetkoksal-w/rails-autocomplete/internal/completion"
	"github.com/mehmetkoksal-w/rails-autocomplete/internal/config"
	"github.com/mehmetkoksal-w/rails-autocomplete/internal/output"
)

// Mode defines staleness verification mode.
type Mode string

const (
	// ModeFast compares source modification times with the completions file.
	ModeFast Mode = "fast"
	// ModeStrict rescans every source and compares the resulting completions.
	ModeStrict Mode = "strict"
)

// Options controls verification.
type Options struct {
	Root     string
	Settings config.Settings
	Output   string
	Mode     Mode
}

// Run returns one line per reason the completions file is stale. An empty
// result means the file is up to date.
func Run(ctx context.Context, opts Options) ([]string, error) {
	root := opts.Root
	if root == "" {
		root = "."
	}

	info, err := os.Stat(opts.Output)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{fmt.Sprintf("missing completions file %s", opts.Output)}, nil
	}
	if err != nil {
		return nil, err
	}
	existing, err := output.Read(opts.Output)
	if err != nil {
		return []string{fmt.Sprintf("invalid completions file %s: %v", opts.Output, err)}, nil
	}

	files, err := collect.Files(root, opts.Settings)
	if err != nil {
		return nil, err
	}

	var stale []string
	if opts.Mode == ModeStrict {
		stale, err = detectChangedCompletions(ctx, opts.Settings, files, existing)
	} else {
		stale, err = detectNewerSources(ctx, root, files, opts.Output, info)
		if scope := scopeOf(opts.Settings); err == nil && existing.Scope != scope {
			stale = append(stale, fmt.Sprintf("scope changed from %s to %s", existing.Scope, scope))
		}
	}
	if err != nil {
		return nil, err
	}
	sort.Strings(stale)
	return stale, nil
}

func detectNewerSources(ctx context.Context, root string, files []collect.SourceFile, outPath string, out fs.FileInfo) ([]string, error) {
	var stale []string
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		st, err := os.Stat(f.OSPath)
		if err != nil {
			stale = append(stale, fmt.Sprintf("error reading %s: %v", f.Path, err))
			continue
		}
		if st.ModTime().After(out.ModTime()) {
			stale = append(stale, fmt.Sprintf("changed file %s", f.Path))
		}
	}

	// The output's own directory changes whenever the file is replaced.
	skip := filepath.Dir(absPath(outPath))
	for _, dir := range sourceDirs(root, files) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if absPath(dir.os) == skip {
			continue
		}
		st, err := os.Stat(dir.os)
		if err != nil {
			stale = append(stale, fmt.Sprintf("error reading %s: %v", dir.rel, err))
			continue
		}
		if st.ModTime().After(out.ModTime()) {
			stale = append(stale, fmt.Sprintf("changed directory %s", dir.rel))
		}
	}
	return stale, nil
}

type sourceDir struct {
	os  string
	rel string
}

// sourceDirs returns the distinct directories holding files, walking up to
// but excluding root. Files outside root contribute only their own directory.
func sourceDirs(root string, files []collect.SourceFile) []sourceDir {
	seen := make(map[string]struct{})
	var dirs []sourceDir
	for _, f := range files {
		d := filepath.Dir(f.OSPath)
		for {
			if _, ok := seen[d]; ok {
				break
			}
			rel, err := filepath.Rel(root, d)
			inside := err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
			if inside && rel == "." {
				break
			}
			seen[d] = struct{}{}
			if !inside {
				dirs = append(dirs, sourceDir{os: d, rel: filepath.ToSlash(d)})
				break
			}
			dirs = append(dirs, sourceDir{os: d, rel: filepath.ToSlash(rel)})
			d = filepath.Dir(d)
		}
	}
	return dirs
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}

func scopeOf(s config.Settings) string {
	if s.Scope == "" {
		return config.DefaultScope
	}
	return s.Scope
}

func detectChangedCompletions(ctx context.Context, s config.Settings, files []collect.SourceFile, existing output.Document) ([]string, error) {
	scanner := completion.NewScanner(s)
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := scanner.ScanFile(f); err != nil {
			return nil, err
		}
	}
	res := scanner.Results()
	fresh := output.Build(scopeOf(s),
		completion.Completions(res.Classes),
		completion.Completions(res.Constants),
		completion.Completions(res.Methods),
	)

	var stale []string
	if existing.Scope != fresh.Scope {
		stale = append(stale, fmt.Sprintf("scope changed from %s to %s", existing.Scope, fresh.Scope))
	}
	have := make(map[output.Completion]struct{}, len(existing.Completions))
	for _, c := range existing.Completions {
		have[c] = struct{}{}
	}
	want := make(map[output.Completion]struct{}, len(fresh.Completions))
	for _, c := range fresh.Completions {
		want[c] = struct{}{}
		if _, ok := have[c]; !ok {
			stale = append(stale, fmt.Sprintf("new completion %s", c.Trigger))
		}
	}
	for _, c := range existing.Completions {
		if _, ok := want[c]; !ok {
			stale = append(stale, fmt.Sprintf("removed completion %s", c.Trigger))
		}
	}
	return stale, nil
}
