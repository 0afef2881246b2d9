package commands

import (
	"fmt"
	"strings"
)

func init() {
	Register(&Command{
		Name:        "help",
		Aliases:     []string{"-h", "--help"},
		Description: "Show help for a command or topic",
		Run:         RunHelp,
	})
}

// RunHelp executes the help command with parsed arguments.
func RunHelp(args []string) error {
	if len(args) == 0 {
		return ShowUsage()
	}
	topic := strings.ToLower(strings.TrimSpace(args[0]))
	return ShowHelpTopic(topic)
}

// ShowUsage displays the main usage message.
func ShowUsage() error {
	fmt.Print(`railscomplete - editor completions for Rails projects

USAGE
  railscomplete <settings-json> <output> [project-root]
  railscomplete <command> [flags] [args]

COMMANDS
`)
	for _, cmd := range List() {
		fmt.Printf("  %-9s %s\n", cmd.Name, cmd.Description)
	}
	fmt.Print(`
EXAMPLES
  railscomplete '{"source_paths":["app","lib"],"exclude_paths":[]}' rails.sublime-completions
  railscomplete generate -s .railscomplete.jsonc --index-db .railscomplete/index.db out.json
  railscomplete locate --index-db .railscomplete/index.db "Widget::MAX_SPEED"

Run 'railscomplete help <command>' for detailed help on a command.
Run 'railscomplete help settings' for the settings document.
`)
	return nil
}

// ShowHelpTopic displays help for a specific command or topic.
func ShowHelpTopic(topic string) error {
	if cmd, ok := Get(topic); ok {
		topic = cmd.Name
	}
	text, ok := helpTopics[topic]
	if !ok {
		return fmt.Errorf("unknown help topic: %s\nRun 'railscomplete help' for usage", topic)
	}
	fmt.Print(text)
	return nil
}

var helpTopics = map[string]string{
	"generate": `railscomplete generate - scan Ruby sources and write the completions file

USAGE
  railscomplete generate [flags] <settings-json> <output> [project-root]
  railscomplete generate [flags] --settings-file <path> <output> [project-root]

FLAGS
  --root, -r           project root source paths are resolved against (default ".")
  --settings-file, -s  JSON/JSONC settings file instead of the first argument
  --index-db           also record definitions in a sqlite index
  --exclude-private    skip definitions after private/protected
  --respect-gitignore  skip files ignored by the root .gitignore
  --verbose, -v        log collected files and per-file counts
  --debug              log every definition with file and line

The output file is replaced only after every source file was scanned. A failure
to record --index-db is reported under the summary and does not fail the run.
`,
	"check": `railscomplete check - report whether the completions file is out of date

USAGE
  railscomplete check [flags] <settings-json> <output>
  railscomplete check [flags] --settings-file <path> <output>

FLAGS
  --root, -r           project root (default ".")
  --settings-file, -s  JSON/JSONC settings file instead of the first argument
  --strict             rescan every source instead of comparing timestamps

Exits non-zero and lists the reasons when the file is stale or invalid.
Without --strict only timestamps and the scope are compared: a changed source
or source directory is detected, but settings that change which files are
collected, or a deleted source directory, are not.
`,
	"locate": `railscomplete locate - show where a completion trigger is defined

USAGE
  railscomplete locate --index-db <path> <trigger|name>

Matches the full trigger (e.g. "Widget::MAX_SPEED") or the bare name.
`,
	"runs": `railscomplete runs - list recorded generate runs

USAGE
  railscomplete runs --index-db <path> [--limit N]
`,
	"help": `railscomplete help - show help for a command or topic

USAGE
  railscomplete help [command|settings]
`,
	"version": `railscomplete version - show version information
`,
	"settings": `SETTINGS DOCUMENT

  {
    "source_paths": ["app", "lib/tasks/setup.rb"],   // required
    "exclude_paths": ["vendor"],
    "exclude_class_names": ["ClassMethods", "InstanceMethods"],
    "exclude_class_regex": "",
    "exclude_method_names": ["<=>"],
    "exclude_method_regex": "^_",
    "exclude_private": false,
    "respect_gitignore": false,
    "scope": "source.ruby.rails"
  }

Paths that name a Ruby file are used as globs; other paths are searched
recursively for *.rb. Regexes use RE2 syntax. Unknown keys are ignored.
`,
}
