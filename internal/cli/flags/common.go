package flags

import (
	"flag"
	"os"
)

// IndexDBEnv names the environment variable that supplies a default for --index-db.
const IndexDBEnv = "RAILSCOMPLETE_INDEX_DB"

// AddRootFlag adds --root and -r flags for the project root source paths are resolved against.
func AddRootFlag(fs *flag.FlagSet) *string {
	root := fs.String("root", ".", "project root")
	fs.StringVar(root, "r", ".", "project root (shorthand)")
	return root
}

// AddVerboseFlag adds --verbose and -v flags for verbose output.
func AddVerboseFlag(fs *flag.FlagSet) *bool {
	verbose := fs.Bool("verbose", false, "log collected files and per-file counts")
	fs.BoolVar(verbose, "v", false, "log collected files and per-file counts (shorthand)")
	return verbose
}

// AddDebugFlag adds --debug for logging every match.
func AddDebugFlag(fs *flag.FlagSet) *bool {
	return fs.Bool("debug", false, "log every definition with file and line")
}

// AddLimitFlag adds --limit and -l flags for result limits.
func AddLimitFlag(fs *flag.FlagSet, defaultValue int) *int {
	limit := fs.Int("limit", defaultValue, "maximum results (0 = all)")
	fs.IntVar(limit, "l", defaultValue, "maximum results (shorthand)")
	return limit
}

// AddIndexDBFlag adds --index-db. The default comes from RAILSCOMPLETE_INDEX_DB.
func AddIndexDBFlag(fs *flag.FlagSet) *string {
	return fs.String("index-db", os.Getenv(IndexDBEnv), "sqlite definitions index")
}

// AddSettingsFileFlag adds --settings-file and -s flags for a JSON or JSONC settings file.
func AddSettingsFileFlag(fs *flag.FlagSet) *string {
	path := fs.String("settings-file", "", "read settings from a JSON/JSONC file instead of the first argument")
	fs.StringVar(path, "s", "", "settings file (shorthand)")
	return path
}
