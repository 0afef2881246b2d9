package completion

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/mehmetkoksal-w/rails-autocomplete/internal/collect"
	"github.com/mehmetkoksal-w/rails-autocomplete/internal/config"
	"github.com/mehmetkoksal-w/rails-autocomplete/internal/logger"
)

// Collection keeps the first definition seen for each trigger.
type Collection struct {
	seen map[string]struct{}
	defs []Definition
}

// NewCollection returns an empty collection.
func NewCollection() *Collection {
	return &Collection{seen: make(map[string]struct{})}
}

// Add stores d unless its trigger is already present. It reports whether d was stored.
func (c *Collection) Add(d Definition) bool {
	if _, ok := c.seen[d.Trigger]; ok {
		return false
	}
	c.seen[d.Trigger] = struct{}{}
	c.defs = append(c.defs, d)
	return true
}

// Len returns the number of unique triggers.
func (c *Collection) Len() int { return len(c.defs) }

// Sorted returns the definitions ordered by trigger, byte-wise. Insertion
// order breaks ties.
func (c *Collection) Sorted() []Definition {
	out := make([]Definition, len(c.defs))
	copy(out, c.defs)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Trigger < out[j].Trigger })
	return out
}

// Results holds the sorted definitions of every category.
type Results struct {
	Classes   []Definition
	Constants []Definition
	Methods   []Definition
}

// Scanner feeds every line of every file to the class, constant and method
// matchers and collects unique triggers per category.
type Scanner struct {
	settings    config.Settings
	matchers    []Matcher
	collections map[Kind]*Collection
}

// NewScanner returns a Scanner configured by s.
func NewScanner(s config.Settings) *Scanner {
	sc := &Scanner{
		settings: s,
		matchers: []Matcher{
			ClassMatcher{Settings: s},
			ConstantMatcher{},
			MethodMatcher{Settings: s},
		},
		collections: make(map[Kind]*Collection, len(Kinds)),
	}
	for _, k := range Kinds {
		sc.collections[k] = NewCollection()
	}
	return sc
}

// ScanFile scans the file at f.OSPath.
func (s *Scanner) ScanFile(f collect.SourceFile) error {
	fh, err := os.Open(f.OSPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", f.Path, err)
	}
	defer fh.Close()
	if err := s.ScanReader(f, fh); err != nil {
		return fmt.Errorf("scan %s: %w", f.Path, err)
	}
	return nil
}

// ScanReader scans r as the contents of f. Scan state starts fresh for every file.
func (s *Scanner) ScanReader(f collect.SourceFile, r io.Reader) error {
	ctx := ScanContext{File: f}
	counts := make(map[Kind]int, len(Kinds))
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			ctx.Line++
			ctx = s.scanLine(strings.TrimSuffix(line, "\n"), ctx, counts)
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
	}
	logger.Info("%s: %d classes, %d constants, %d methods",
		f.Path, counts[KindClass], counts[KindConstant], counts[KindMethod])
	return nil
}

func (s *Scanner) scanLine(line string, ctx ScanContext, counts map[Kind]int) ScanContext {
	ctx = ctx.Visibility(line)
	for _, m := range s.matchers {
		def, next, ok := m.Match(line, ctx)
		ctx = next
		if !ok {
			continue
		}
		if def.Private && s.settings.ExcludePrivate {
			logger.Debug("%s:%d: skip private %s %s", def.File.Path, def.Line, def.Kind, def.Trigger)
			continue
		}
		if s.collections[def.Kind].Add(def) {
			counts[def.Kind]++
			logger.Debug("%s:%d: %s %s", def.File.Path, def.Line, def.Kind, def.Trigger)
		}
	}
	return ctx
}

// Results returns the collected definitions, each category sorted by trigger.
func (s *Scanner) Results() Results {
	return Results{
		Classes:   s.collections[KindClass].Sorted(),
		Constants: s.collections[KindConstant].Sorted(),
		Methods:   s.collections[KindMethod].Sorted(),
	}
}
