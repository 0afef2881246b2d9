// Package completion finds class, module, constant and method definitions in
// Ruby source lines and turns them into editor completions.
//
// Matching is heuristic: each line is tested against a handful of regular
// expressions. Nothing here builds a syntax tree.
package completion

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/mehmetkoksal-w/rails-autocomplete/internal/collect"
	"github.com/mehmetkoksal-w/rails-autocomplete/internal/config"
)

// Kind is the category a definition is collected under.
type Kind string

const (
	KindClass    Kind = "class"
	KindConstant Kind = "constant"
	KindMethod   Kind = "method"
)

// Kinds lists the categories in output order.
var Kinds = []Kind{KindClass, KindConstant, KindMethod}

// ScanContext is the per-line state threaded through the matchers. Matchers
// return an updated copy instead of mutating shared state.
type ScanContext struct {
	File collect.SourceFile
	Line int
	// Private is set by a bare `private` or `protected` line and cleared by `public`.
	Private bool
	// ModuleScope is set once the first class or module of the file has matched.
	ModuleScope bool
}

// Visibility returns ctx updated for a line that may be a bare visibility keyword.
func (ctx ScanContext) Visibility(line string) ScanContext {
	switch strings.TrimSpace(line) {
	case "private", "protected":
		ctx.Private = true
	case "public":
		ctx.Private = false
	}
	return ctx
}

// Definition is one matched name.
type Definition struct {
	Kind       Kind
	Name       string
	Trigger    string
	Snippet    string
	HasSnippet bool
	File       collect.SourceFile
	Line       int
	Private    bool
}

// Matcher extracts at most one definition from a line.
type Matcher interface {
	Kind() Kind
	Match(line string, ctx ScanContext) (Definition, ScanContext, bool)
}

var (
	commentPattern  = regexp.MustCompile(`^\s*#`)
	classPattern    = regexp.MustCompile(`(^|\s)(class|module)\s(.+?)($|\s|<)`)
	constantPattern = regexp.MustCompile(`([A-Z_]+)(\s*)=([^=]|$)`)
	methodPattern   = regexp.MustCompile(`(^|\s)def\s(.+?)($|;)`)
	methodArgs      = regexp.MustCompile(`^(.+?)(\((.+?)\)|$)`)
)

// IsComment reports whether the first non-blank character of line is '#'.
func IsComment(line string) bool {
	return commentPattern.MatchString(line)
}

// ClassMatcher matches `class Name` and `module Name` lines.
type ClassMatcher struct {
	Settings config.Settings
}

func (m ClassMatcher) Kind() Kind { return KindClass }

func (m ClassMatcher) Match(line string, ctx ScanContext) (Definition, ScanContext, bool) {
	if IsComment(line) {
		return Definition{}, ctx, false
	}
	match := classPattern.FindStringSubmatch(line)
	if match == nil {
		return Definition{}, ctx, false
	}
	name := strings.TrimSpace(match[3])
	// "<" comes from `class << self`.
	if name == "" || name == "<" || m.Settings.ExcludesClass(name) {
		return Definition{}, ctx, false
	}

	def := newDefinition(KindClass, name, ctx)
	// Only the first class or module per file is treated as the namespace;
	// the end of a scope cannot be found without parsing.
	if ctx.ModuleScope {
		def.Snippet = name
		def.HasSnippet = true
	}
	ctx.ModuleScope = true
	return def, ctx, true
}

// ConstantMatcher matches `NAME = value` assignments, skipping `==` comparisons.
type ConstantMatcher struct{}

func (ConstantMatcher) Kind() Kind { return KindConstant }

func (ConstantMatcher) Match(line string, ctx ScanContext) (Definition, ScanContext, bool) {
	if IsComment(line) {
		return Definition{}, ctx, false
	}
	match := constantPattern.FindStringSubmatch(line)
	if match == nil {
		return Definition{}, ctx, false
	}
	name := strings.TrimSpace(match[1])
	def := newDefinition(KindConstant, name, ctx)
	def.Trigger = fileModelName(ctx.File.Rel) + "::" + name
	return def, ctx, true
}

// MethodMatcher matches `def name` and `def name(args)` lines, including
// `def self.name` and single-line bodies ending in ';'.
type MethodMatcher struct {
	Settings config.Settings
}

func (m MethodMatcher) Kind() Kind { return KindMethod }

func (m MethodMatcher) Match(line string, ctx ScanContext) (Definition, ScanContext, bool) {
	if IsComment(line) {
		return Definition{}, ctx, false
	}
	match := methodPattern.FindStringSubmatch(line)
	if match == nil {
		return Definition{}, ctx, false
	}
	methodLine := strings.TrimSpace(strings.ReplaceAll(match[2], "self.", ""))
	name, args, hasArgs := SplitMethod(methodLine)
	if name == "" || m.Settings.ExcludesMethod(name) {
		return Definition{}, ctx, false
	}

	def := newDefinition(KindMethod, name, ctx)
	if hasArgs {
		def.Snippet = SnippetWithArgs(name, args)
		def.HasSnippet = true
	}
	return def, ctx, true
}

// SplitMethod separates a method name from its parenthesized argument list.
// `create(a, b = 1)` yields ("create", "a, b = 1", true); `initialize`
// yields ("initialize", "", false).
func SplitMethod(methodLine string) (name, args string, hasArgs bool) {
	match := methodArgs.FindStringSubmatchIndex(methodLine)
	if match == nil {
		return "", "", false
	}
	name = methodLine[match[2]:match[3]]
	if match[6] >= 0 {
		return name, methodLine[match[6]:match[7]], true
	}
	return name, "", false
}

// SnippetWithArgs renders name with one numbered placeholder per argument,
// e.g. `spin(${1:speed}, ${2:dir = :left})`.
func SnippetWithArgs(name, args string) string {
	parts := strings.Split(args, ",")
	for len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('(')
	for i, arg := range parts {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("${")
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteByte(':')
		b.WriteString(strings.TrimSpace(arg))
		b.WriteByte('}')
	}
	b.WriteByte(')')
	return b.String()
}

func newDefinition(kind Kind, name string, ctx ScanContext) Definition {
	return Definition{
		Kind:    kind,
		Name:    name,
		Trigger: name,
		File:    ctx.File,
		Line:    ctx.Line,
		Private: ctx.Private,
	}
}
