package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mehmetkoksal-w/rails-autocomplete/internal/cli/flags"
	"github.com/mehmetkoksal-w/rails-autocomplete/internal/verify"
)

// ErrStale is returned by check when the completions file is out of date.
var ErrStale = errors.New("completions file is stale")

func init() {
	Register(&Command{
		Name:        "check",
		Description: "Report whether the completions file is out of date",
		Run:         RunCheck,
	})
}

// CheckOptions contains the configuration for the check command.
type CheckOptions struct {
	Root         string
	SettingsJSON string
	SettingsFile string
	Output       string
	Strict       bool
	Out          io.Writer
}

// RunCheck executes the check command with parsed arguments.
func RunCheck(args []string) error {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	root := flags.AddRootFlag(fs)
	settingsFile := flags.AddSettingsFileFlag(fs)
	var strictFlag flags.BoolFlag
	fs.Var(&strictFlag, "strict", "rescan every source instead of comparing timestamps")
	if err := fs.Parse(args); err != nil {
		return err
	}

	opts := CheckOptions{Root: *root, SettingsFile: *settingsFile, Strict: strictFlag.Value}
	rest := fs.Args()
	if opts.SettingsFile == "" {
		if len(rest) != 2 {
			return errors.New("usage: railscomplete check [--strict] <settings-json> <output>")
		}
		opts.SettingsJSON, rest = rest[0], rest[1:]
	}
	if len(rest) != 1 {
		return errors.New("usage: railscomplete check [--strict] --settings-file <path> <output>")
	}
	opts.Output = rest[0]
	return ExecuteCheck(opts)
}

// ExecuteCheck verifies the completions file and fails when it is stale.
func ExecuteCheck(opts CheckOptions) error {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	settings, err := loadSettings(GenerateOptions{SettingsJSON: opts.SettingsJSON, SettingsFile: opts.SettingsFile})
	if err != nil {
		return err
	}
	mode := verify.ModeFast
	if opts.Strict {
		mode = verify.ModeStrict
	}

	stale, err := verify.Run(context.Background(), verify.Options{
		Root:     opts.Root,
		Settings: settings,
		Output:   opts.Output,
		Mode:     mode,
	})
	if err != nil {
		return err
	}

	if len(stale) > 0 {
		fmt.Fprintln(out, "stale completions detected:")
		preview := stale
		if len(preview) > 20 {
			preview = preview[:20]
		}
		for _, s := range preview {
			fmt.Fprintf(out, "- %s\n", s)
		}
		if len(stale) > len(preview) {
			fmt.Fprintf(out, "... and %d more\n", len(stale)-len(preview))
		}
		return fmt.Errorf("%w; run 'railscomplete generate'", ErrStale)
	}

	fmt.Fprintf(out, "check ok; %s is up to date (%s)\n", opts.Output, mode)
	return nil
}
