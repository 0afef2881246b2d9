package commands

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mehmetkoksal-w/rails-autocomplete/internal/cli/flags"
	"github.com/mehmetkoksal-w/rails-autocomplete/internal/index"
)

func init() {
	Register(&Command{
		Name:        "locate",
		Description: "Show where a completion trigger is defined",
		Run:         RunLocate,
	})
}

// LocateOptions contains the configuration for the locate command.
type LocateOptions struct {
	IndexDB string
	Query   string
	Out     io.Writer
}

// RunLocate executes the locate command with parsed arguments.
func RunLocate(args []string) error {
	fs := flag.NewFlagSet("locate", flag.ContinueOnError)
	indexDB := flags.AddIndexDBFlag(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	query := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if query == "" {
		return errors.New("usage: railscomplete locate --index-db <path> <trigger>")
	}
	return ExecuteLocate(LocateOptions{IndexDB: *indexDB, Query: query})
}

// ExecuteLocate prints file:line for every definition matching the query.
func ExecuteLocate(opts LocateOptions) error {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	db, err := openIndex(opts.IndexDB)
	if err != nil {
		return err
	}
	defer db.Close()

	hits, err := index.Locate(context.Background(), db, opts.Query)
	if err != nil {
		return err
	}
	if len(hits) == 0 {
		return fmt.Errorf("no definition found for %q", opts.Query)
	}
	for _, h := range hits {
		visibility := ""
		if h.Private {
			visibility = " (private)"
		}
		fmt.Fprintf(out, "%s:%d\t%s %s%s\n", h.File, h.Line, h.Kind, h.Trigger, visibility)
	}
	return nil
}

// openIndex opens an existing index without creating one.
func openIndex(path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("--index-db is required (or set %s)", flags.IndexDBEnv)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("index missing; run 'railscomplete generate --index-db %s' first: %w", path, err)
	}
	return index.Open(path)
}
