// Package config loads the settings document that drives a completions run.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"slices"
	"strings"

	"github.com/mehmetkoksal-w/rails-autocomplete/internal/jsonc"
	"github.com/mehmetkoksal-w/rails-autocomplete/schemas"
)

// DefaultScope is the editor scope written to every completions file.
const DefaultScope = "source.ruby.rails"

// ErrInvalidSettings marks settings that fail schema validation or regex compilation.
var ErrInvalidSettings = errors.New("invalid settings")

// Settings is the immutable configuration for one run.
type Settings struct {
	SourcePaths        []string `json:"source_paths"`
	ExcludePaths       []string `json:"exclude_paths"`
	ExcludeClassNames  []string `json:"exclude_class_names"`
	ExcludeClassRegex  string   `json:"exclude_class_regex"`
	ExcludeMethodNames []string `json:"exclude_method_names"`
	ExcludeMethodRegex string   `json:"exclude_method_regex"`

	// ExcludePrivate drops definitions found after a bare `private` or
	// `protected` line. Off by default.
	ExcludePrivate   bool   `json:"exclude_private"`
	RespectGitignore bool   `json:"respect_gitignore"`
	Scope            string `json:"scope"`

	classRegex  *regexp.Regexp
	methodRegex *regexp.Regexp
}

// Defaults returns the settings used for keys absent from a document.
func Defaults() Settings {
	return Settings{
		SourcePaths:        []string{},
		ExcludePaths:       []string{},
		ExcludeClassNames:  []string{"ClassMethods", "InstanceMethods"},
		ExcludeMethodNames: []string{"<=>"},
		Scope:              DefaultScope,
	}
}

// Parse validates a JSON (or JSONC) settings document and decodes it over Defaults.
func Parse(data []byte) (Settings, error) {
	clean := jsonc.Clean(data)
	if err := schemas.Validate(schemas.Settings, clean); err != nil {
		return Settings{}, fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	s := Defaults()
	if err := jsonc.Decode(clean, &s); err != nil {
		return Settings{}, fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	return s.compile()
}

// LoadFile reads and parses a settings file.
func LoadFile(path string) (Settings, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("read %s: %w", path, err)
	}
	s, err := Parse(b)
	if err != nil {
		return Settings{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func (s Settings) compile() (Settings, error) {
	s.SourcePaths = normalizePaths(s.SourcePaths)
	s.ExcludePaths = normalizePaths(s.ExcludePaths)
	if strings.TrimSpace(s.Scope) == "" {
		s.Scope = DefaultScope
	}

	var err error
	if s.classRegex, err = compileOptional(s.ExcludeClassRegex); err != nil {
		return Settings{}, fmt.Errorf("%w: exclude_class_regex: %v", ErrInvalidSettings, err)
	}
	if s.methodRegex, err = compileOptional(s.ExcludeMethodRegex); err != nil {
		return Settings{}, fmt.Errorf("%w: exclude_method_regex: %v", ErrInvalidSettings, err)
	}
	return s, nil
}

func compileOptional(expr string) (*regexp.Regexp, error) {
	if expr == "" {
		return nil, nil
	}
	return regexp.Compile(expr)
}

// ExcludesClass reports whether a class or module name is filtered out.
func (s Settings) ExcludesClass(name string) bool {
	if slices.Contains(s.ExcludeClassNames, name) {
		return true
	}
	return s.classRegex != nil && s.classRegex.MatchString(name)
}

// ExcludesMethod reports whether a method name is filtered out.
func (s Settings) ExcludesMethod(name string) bool {
	if slices.Contains(s.ExcludeMethodNames, name) {
		return true
	}
	return s.methodRegex != nil && s.methodRegex.MatchString(name)
}

// normalizePaths trims entries, drops blanks and duplicates, and keeps order.
func normalizePaths(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		norm := normalizePath(p)
		if norm == "" {
			continue
		}
		if _, ok := seen[norm]; ok {
			continue
		}
		seen[norm] = struct{}{}
		out = append(out, norm)
	}
	return out
}

func normalizePath(p string) string {
	trimmed := strings.TrimSpace(p)
	if trimmed == "" {
		return ""
	}
	trimmed = strings.ReplaceAll(trimmed, "\\", "/")
	for strings.Contains(trimmed, "//") {
		trimmed = strings.ReplaceAll(trimmed, "//", "/")
	}
	return trimmed
}
