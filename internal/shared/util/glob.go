package util

import (
	"fmt"
	"path"

	"github.com/gobwas/glob"
)

// PathMatcher decides which directories and files are excluded from a scan.
// Patterns without a separator match the base name; others match the path
// relative to the scan root, with '/' as separator.
type PathMatcher struct {
	dirs  []compiledPattern
	files []compiledPattern
}

type compiledPattern struct {
	g        glob.Glob
	wantPath bool
}

func NewPathMatcher(excludeDirs, excludeFiles []string) (*PathMatcher, error) {
	m := &PathMatcher{}
	for _, p := range excludeDirs {
		c, err := compilePattern(p)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude dir pattern %q: %w", p, err)
		}
		m.dirs = append(m.dirs, c)
	}
	for _, p := range excludeFiles {
		c, err := compilePattern(p)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude file pattern %q: %w", p, err)
		}
		m.files = append(m.files, c)
	}
	return m, nil
}

func compilePattern(p string) (compiledPattern, error) {
	p = NormalizePatternPath(p)
	if ContainsPathSeparator(p) {
		g, err := glob.Compile(p, '/')
		return compiledPattern{g: g, wantPath: true}, err
	}
	g, err := glob.Compile(p)
	return compiledPattern{g: g}, err
}

// ExcludeDir reports whether the directory at rel (relative to the scan
// root) should be skipped.
func (m *PathMatcher) ExcludeDir(rel string) bool {
	return m != nil && matchAny(m.dirs, rel)
}

// ExcludeFile reports whether the file at rel should be skipped.
func (m *PathMatcher) ExcludeFile(rel string) bool {
	return m != nil && matchAny(m.files, rel)
}

func matchAny(patterns []compiledPattern, rel string) bool {
	rel = NormalizePatternPath(rel)
	if rel == "" {
		return false
	}
	base := path.Base(rel)
	for _, p := range patterns {
		target := base
		if p.wantPath {
			target = rel
		}
		if p.g.Match(target) {
			return true
		}
	}
	return false
}
