package cli

import (
	"flag"
	"fmt"
	"runtime/debug"

	"github.com/mehmetkoksal-w/rails-autocomplete/internal/cli/commands"
)

var (
	buildVersion = "0.1.0"
	buildCommit  = "unknown"
	buildDate    = "unknown"
)

func init() {
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			switch setting.Key {
			case "vcs.revision":
				if buildCommit == "unknown" || buildCommit == "" {
					buildCommit = setting.Value
				}
			case "vcs.time":
				if buildDate == "unknown" || buildDate == "" {
					buildDate = setting.Value
				}
			}
		}
	}

	commands.Register(&commands.Command{
		Name:        "version",
		Aliases:     []string{"--version"},
		Description: "Show version information",
		Run:         cmdVersion,
	})
}

// SetBuildInfo sets the build information from ldflags.
func SetBuildInfo(version, commit, date string) {
	if version != "" && version != "dev" {
		buildVersion = version
	}
	if commit != "" && commit != "unknown" {
		buildCommit = commit
	}
	if date != "" && date != "unknown" {
		buildDate = date
	}
}

// GetVersion returns the current build version.
func GetVersion() string {
	return buildVersion
}

func cmdVersion(args []string) error {
	fs := flag.NewFlagSet("version", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "railscomplete %s (commit %s, built %s)\n", buildVersion, buildCommit, buildDate)
	return nil
}
