// Package cli dispatches command lines to the registered commands and reports
// failures the way the editor integration expects.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strings"

	"github.com/mehmetkoksal-w/rails-autocomplete/internal/cli/commands"
	"github.com/mehmetkoksal-w/rails-autocomplete/internal/logger"
)

// ErrorMarker prefixes every failure line. Editor plugins search the output for it.
const ErrorMarker = "ERROR:"

var stdout io.Writer = os.Stdout

// Main runs args and returns the process exit code. Errors and panics are
// printed to stdout after ErrorMarker, followed by the wrapped error chain or
// the goroutine stack. Failures still exit 0, since the editor integration
// reads ErrorMarker from a clean exit; only commands.ErrStale exits 1.
func Main(args []string) (code int) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(stdout, "%s %v\n%s", ErrorMarker, r, debug.Stack())
			code = 0
		}
	}()

	err := Run(args)
	if err == nil {
		return 0
	}
	logger.Error("%v", err)
	fmt.Fprintf(stdout, "%s %v\n", ErrorMarker, err)
	printChain(stdout, err)
	if errors.Is(err, commands.ErrStale) {
		return 1
	}
	return 0
}

// printChain writes one line per wrapped error below err.
func printChain(w io.Writer, err error) {
	for cause := errors.Unwrap(err); cause != nil; cause = errors.Unwrap(cause) {
		fmt.Fprintf(w, "\tfrom: %v\n", cause)
	}
}

// Run executes the command named by args[0]. A command line that starts with
// a settings document or a flag is treated as `generate`.
func Run(args []string) error {
	if len(args) == 0 {
		return commands.ShowUsage()
	}
	if cmd, ok := commands.Get(args[0]); ok {
		return cmd.Run(args[1:])
	}
	if isGenerateInvocation(args[0]) {
		return commands.RunGenerate(args)
	}
	return fmt.Errorf("unknown command: %s\nRun 'railscomplete help' for usage", args[0])
}

func isGenerateInvocation(first string) bool {
	first = strings.TrimSpace(first)
	return strings.HasPrefix(first, "{") || strings.HasPrefix(first, "-")
}
