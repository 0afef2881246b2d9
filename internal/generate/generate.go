// Package generate runs the whole pipeline: collect source files, scan them
// for definitions, write the completions file and optionally record the run.
package generate

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/mehmetkoksal-w/rails-autocomplete/internal/collect"
	"github.com/mehmetkoksal-w/rails-autocomplete/internal/completion"
	"github.com/mehmetkoksal-w/rails-autocomplete/internal/config"
	"github.com/mehmetkoksal-w/rails-autocomplete/internal/index"
	"github.com/mehmetkoksal-w/rails-autocomplete/internal/logger"
	"github.com/mehmetkoksal-w/rails-autocomplete/internal/output"
)

// Options configures one run.
type Options struct {
	// Root is the directory source paths are resolved against. Defaults to ".".
	Root     string
	Settings config.Settings
	// Output is the completions file to (over)write.
	Output string
	// IndexDB, when set, records the run in a sqlite definitions index.
	IndexDB string
}

// Summary reports what a run wrote.
type Summary struct {
	RunID       string
	Output      string
	Files       int
	Classes     int
	Constants   int
	Methods     int
	StartedAt   time.Time
	CompletedAt time.Time
	// IndexErr is set when the completions file was written but recording
	// the run in the index failed.
	IndexErr error
}

// Run scans every collected file and writes the completions file. Nothing is
// written unless every file was scanned. An index failure after the write is
// reported in Summary.IndexErr, not as an error.
func Run(ctx context.Context, opts Options) (Summary, error) {
	if opts.Output == "" {
		return Summary{}, errors.New("output path is required")
	}
	root := opts.Root
	if root == "" {
		root = "."
	}
	scope := opts.Settings.Scope
	if scope == "" {
		scope = config.DefaultScope
	}

	summary := Summary{Output: opts.Output, StartedAt: time.Now()}

	files, err := collect.Files(root, opts.Settings)
	if err != nil {
		return Summary{}, err
	}
	summary.Files = len(files)
	logger.Info("collected %d files under %s", len(files), root)

	scanner := completion.NewScanner(opts.Settings)
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return Summary{}, err
		}
		if err := scanner.ScanFile(f); err != nil {
			return Summary{}, err
		}
	}
	res := scanner.Results()
	summary.Classes = len(res.Classes)
	summary.Constants = len(res.Constants)
	summary.Methods = len(res.Methods)

	doc := output.Build(scope,
		completion.Completions(res.Classes),
		completion.Completions(res.Constants),
		completion.Completions(res.Methods),
	)
	if err := output.Write(opts.Output, doc); err != nil {
		return Summary{}, err
	}
	summary.CompletedAt = time.Now()

	if opts.IndexDB != "" {
		id, err := record(ctx, opts, root, summary, res)
		if err != nil {
			summary.IndexErr = fmt.Errorf("record index %s: %w", opts.IndexDB, err)
			logger.Error("%v", summary.IndexErr)
		} else {
			summary.RunID = id
		}
	}
	return summary, nil
}

func record(ctx context.Context, opts Options, root string, summary Summary, res completion.Results) (string, error) {
	db, err := index.Open(opts.IndexDB)
	if err != nil {
		return "", err
	}
	defer db.Close()

	absRoot, err := filepath.Abs(root)
	if err != nil {
		absRoot = root
	}
	run := index.Run{
		ID:          index.NewRunID(),
		Root:        absRoot,
		Output:      opts.Output,
		Classes:     summary.Classes,
		Constants:   summary.Constants,
		Methods:     summary.Methods,
		StartedAt:   summary.StartedAt,
		CompletedAt: summary.CompletedAt,
	}

	var entries []index.Entry
	for _, group := range [][]completion.Definition{res.Classes, res.Constants, res.Methods} {
		for _, d := range group {
			entries = append(entries, Entry(d))
		}
	}
	if err := index.Record(ctx, db, run, entries); err != nil {
		return "", err
	}
	logger.Info("recorded run %s with %d definitions in %s", run.ID, len(entries), opts.IndexDB)
	return run.ID, nil
}

// Entry converts a definition into its index row.
func Entry(d completion.Definition) index.Entry {
	e := index.Entry{
		Kind:    string(d.Kind),
		Name:    d.Name,
		Trigger: d.Trigger,
		File:    d.File.Path,
		Line:    d.Line,
		Private: d.Private,
	}
	if d.HasSnippet {
		e.Snippet = d.Snippet
	}
	return e
}
