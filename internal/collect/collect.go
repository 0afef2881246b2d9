// Package collect expands the configured source and exclude paths into the
// list of Ruby files to scan.
package collect

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"

	"github.com/mehmetkoksal-w/rails-autocomplete/internal/config"
	"github.com/mehmetkoksal-w/rails-autocomplete/internal/logger"
)

// SourceExt is the extension of scanned source files.
const SourceExt = ".rb"

// directoryGlob is appended to source paths that do not name a file.
const directoryGlob = "**/*" + SourceExt

var fileRefPattern = regexp.MustCompile(`[a-zA-Z]\.rb`)

// SourceFile is one file selected for scanning.
type SourceFile struct {
	// Path is slash-separated and relative to the run root unless the
	// configured path was absolute.
	Path string
	// Rel is the path relative to the directory part of the pattern that
	// matched it, e.g. "admin/widgets.rb" for "app/models/**/*.rb".
	Rel string
	// OSPath is the path to open, as returned by the glob.
	OSPath string
}

// Files returns every file matched by s.SourcePaths minus every file matched
// by s.ExcludePaths. Order follows the glob expansion of each source path.
func Files(root string, s config.Settings) ([]SourceFile, error) {
	var files []SourceFile
	seen := make(map[string]struct{})
	for _, p := range s.SourcePaths {
		found, err := expand(root, p)
		if err != nil {
			return nil, err
		}
		logger.Debug("source path %s matched %d files", p, len(found))
		for _, f := range found {
			if _, ok := seen[f.Path]; ok {
				continue
			}
			seen[f.Path] = struct{}{}
			files = append(files, f)
		}
	}

	excluded := make(map[string]struct{})
	for _, p := range s.ExcludePaths {
		found, err := expand(root, p)
		if err != nil {
			return nil, err
		}
		logger.Debug("exclude path %s matched %d files", p, len(found))
		for _, f := range found {
			excluded[f.Path] = struct{}{}
		}
	}

	var gi *ignore.GitIgnore
	if s.RespectGitignore {
		var err error
		if gi, err = loadGitignore(root); err != nil {
			return nil, err
		}
	}

	out := files[:0]
	for _, f := range files {
		if _, ok := excluded[f.Path]; ok {
			continue
		}
		if gi != nil && insideRoot(f.Path) && gi.MatchesPath(f.Path) {
			logger.Debug("gitignored %s", f.Path)
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

// Pattern turns a configured path into a glob pattern. Paths that already look
// like a Ruby file reference are used as-is; anything else is treated as a
// directory to search recursively.
func Pattern(p string) string {
	p = filepath.ToSlash(p)
	if fileRefPattern.MatchString(p) {
		return p
	}
	return strings.TrimSuffix(p, "/") + "/" + directoryGlob
}

func expand(root, configured string) ([]SourceFile, error) {
	pattern := Pattern(configured)
	absolute := filepath.IsAbs(filepath.FromSlash(pattern))

	base, _ := doublestar.SplitPattern(pattern)
	full := pattern
	fullBase := base
	if !absolute {
		full = path.Join(filepath.ToSlash(root), pattern)
		fullBase = path.Join(filepath.ToSlash(root), base)
	}

	matches, err := doublestar.FilepathGlob(filepath.FromSlash(full), doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("expand %s: %w", configured, err)
	}

	files := make([]SourceFile, 0, len(matches))
	for _, m := range matches {
		rel, err := filepath.Rel(filepath.FromSlash(fullBase), m)
		if err != nil {
			rel = filepath.Base(m)
		}
		display := m
		if !absolute {
			if r, err := filepath.Rel(root, m); err == nil {
				display = r
			}
		}
		files = append(files, SourceFile{
			Path:   filepath.ToSlash(display),
			Rel:    filepath.ToSlash(rel),
			OSPath: m,
		})
	}
	return files, nil
}

func loadGitignore(root string) (*ignore.GitIgnore, error) {
	p := filepath.Join(root, ".gitignore")
	if _, err := os.Stat(p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	gi, err := ignore.CompileIgnoreFile(p)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", p, err)
	}
	return gi, nil
}

func insideRoot(p string) bool {
	return !path.IsAbs(p) && p != ".." && !strings.HasPrefix(p, "../")
}
