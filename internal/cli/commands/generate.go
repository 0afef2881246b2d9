package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mehmetkoksal-w/rails-autocomplete/internal/cli/flags"
	"github.com/mehmetkoksal-w/rails-autocomplete/internal/config"
	"github.com/mehmetkoksal-w/rails-autocomplete/internal/generate"
	"github.com/mehmetkoksal-w/rails-autocomplete/internal/logger"
)

func init() {
	Register(&Command{
		Name:        "generate",
		Aliases:     []string{"gen"},
		Description: "Scan Ruby sources and write the completions file",
		Run:         RunGenerate,
	})
}

// GenerateOptions contains the configuration for the generate command.
type GenerateOptions struct {
	Root string
	// SettingsJSON is the settings document passed on the command line.
	SettingsJSON string
	// SettingsFile is read instead of SettingsJSON when set.
	SettingsFile string
	Output       string
	IndexDB      string
	Verbose      bool
	Debug        bool

	ExcludePrivate   flags.BoolFlag
	RespectGitignore flags.BoolFlag

	// Out receives the summary lines. Defaults to os.Stdout.
	Out io.Writer
}

// RunGenerate executes the generate command with parsed arguments.
//
//	generate [flags] <settings-json> <output> [project-root]
//	generate [flags] --settings-file <path> <output> [project-root]
func RunGenerate(args []string) error {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	root := flags.AddRootFlag(fs)
	settingsFile := flags.AddSettingsFileFlag(fs)
	indexDB := flags.AddIndexDBFlag(fs)
	verbose := flags.AddVerboseFlag(fs)
	debug := flags.AddDebugFlag(fs)
	opts := GenerateOptions{}
	fs.Var(&opts.ExcludePrivate, "exclude-private", "skip definitions after private/protected (overrides settings)")
	fs.Var(&opts.RespectGitignore, "respect-gitignore", "skip files ignored by .gitignore (overrides settings)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	rest := fs.Args()
	if *settingsFile == "" {
		if len(rest) < 2 {
			return errors.New("usage: railscomplete generate <settings-json> <output> [project-root]")
		}
		opts.SettingsJSON, rest = rest[0], rest[1:]
	}
	if len(rest) < 1 || len(rest) > 2 {
		return errors.New("usage: railscomplete generate --settings-file <path> <output> [project-root]")
	}
	opts.Output = rest[0]
	opts.Root = *root
	if len(rest) == 2 {
		opts.Root = rest[1]
	}
	opts.SettingsFile = *settingsFile
	opts.IndexDB = *indexDB
	opts.Verbose = *verbose
	opts.Debug = *debug

	return ExecuteGenerate(opts)
}

// ExecuteGenerate performs the run and prints its summary.
// This is separated for easier testing.
func ExecuteGenerate(opts GenerateOptions) error {
	switch {
	case opts.Debug:
		logger.SetLevel(logger.LevelDebug)
	case opts.Verbose:
		logger.SetLevel(logger.LevelInfo)
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	settings, err := loadSettings(opts)
	if err != nil {
		return err
	}
	opts.ExcludePrivate.Apply(&settings.ExcludePrivate)
	opts.RespectGitignore.Apply(&settings.RespectGitignore)

	summary, err := generate.Run(context.Background(), generate.Options{
		Root:     opts.Root,
		Settings: settings,
		Output:   opts.Output,
		IndexDB:  opts.IndexDB,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "> Saved Rails autocomplete file to %s\n", summary.Output)
	fmt.Fprintf(out, "  %d class names.\n", summary.Classes)
	fmt.Fprintf(out, "  %d constants.\n", summary.Constants)
	fmt.Fprintf(out, "  %d methods.\n", summary.Methods)
	if summary.RunID != "" {
		fmt.Fprintf(out, "  recorded run %s in %s\n", summary.RunID, opts.IndexDB)
	}
	if summary.IndexErr != nil {
		fmt.Fprintf(out, "  index not updated: %v\n", summary.IndexErr)
	}
	logger.Info("completed in %s", summary.CompletedAt.Sub(summary.StartedAt))
	return nil
}

func loadSettings(opts GenerateOptions) (config.Settings, error) {
	if opts.SettingsFile != "" {
		return config.LoadFile(opts.SettingsFile)
	}
	return config.Parse([]byte(opts.SettingsJSON))
}
