package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mehmetkoksal-w/rails-autocomplete/internal/cli/flags"
	"github.com/mehmetkoksal-w/rails-autocomplete/internal/index"
)

func init() {
	Register(&Command{
		Name:        "runs",
		Description: "List recorded generate runs, newest first",
		Run:         RunRuns,
	})
}

// RunsOptions contains the configuration for the runs command.
type RunsOptions struct {
	IndexDB string
	Limit   int
	Out     io.Writer
}

// RunRuns executes the runs command with parsed arguments.
func RunRuns(args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	indexDB := flags.AddIndexDBFlag(fs)
	limit := flags.AddLimitFlag(fs, 10)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *limit < 0 {
		return fmt.Errorf("limit must be non-negative, got %d", *limit)
	}
	return ExecuteRuns(RunsOptions{IndexDB: *indexDB, Limit: *limit})
}

// ExecuteRuns prints the recorded runs.
func ExecuteRuns(opts RunsOptions) error {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	db, err := openIndex(opts.IndexDB)
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := index.Runs(context.Background(), db, opts.Limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		return index.ErrNoIndex
	}
	for _, r := range runs {
		fmt.Fprintf(out, "%s  %s  %d classes, %d constants, %d methods -> %s\n",
			r.ID, r.CompletedAt.Local().Format(time.RFC3339), r.Classes, r.Constants, r.Methods, r.Output)
	}
	return nil
}
