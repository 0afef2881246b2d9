package completion

import (
	"path"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mehmetkoksal-w/rails-autocomplete/internal/output"
)

var (
	leadingWord  = regexp.MustCompile(`^[a-z\d]*`)
	wordBoundary = regexp.MustCompile(`(?:_|/)[a-z\d]*`)
)

// ModelName converts a snake_case file path into the CamelCase name of the
// model it usually defines: "user_account.rb" -> "UserAccount",
// "admin/widgets.rb" -> "Admin/Widgets".
func ModelName(file string) string {
	name := strings.ReplaceAll(file, "\\", "/")
	name = strings.TrimSuffix(name, path.Ext(name))
	name = leadingWord.ReplaceAllStringFunc(name, capitalize)
	return wordBoundary.ReplaceAllStringFunc(name, func(m string) string {
		if m[0] == '/' {
			return "/" + capitalize(m[1:])
		}
		return capitalize(m[1:])
	})
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

// fileModelName derives the model name from the base name of file only, so
// "models/user.rb" and "user.rb" both give "User".
func fileModelName(file string) string {
	return ModelName(path.Base(strings.ReplaceAll(file, "\\", "/")))
}

// ModelName returns the model name of the file the definition came from.
func (d Definition) ModelName() string {
	return fileModelName(d.File.Rel)
}

// Completion renders d as an entry of the completions file. Definitions with
// a snippet carry the model name after a tab as a display hint.
func (d Definition) Completion() output.Completion {
	if !d.HasSnippet {
		return output.Completion{Trigger: d.Trigger}
	}
	return output.Completion{
		Trigger:    d.Trigger + "\t" + d.ModelName(),
		Contents:   d.Snippet,
		HasSnippet: true,
	}
}

// Completions renders defs in order.
func Completions(defs []Definition) []output.Completion {
	out := make([]output.Completion, 0, len(defs))
	for _, d := range defs {
		out = append(out, d.Completion())
	}
	return out
}
