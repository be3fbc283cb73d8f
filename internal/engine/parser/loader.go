package parser

import (
	"sort"
	"strings"
	"sync"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
)

const LanguageJava = "java"

// LanguageSpec describes which paths are routed to the Java front end.
type LanguageSpec struct {
	Name             string
	Extensions       []string
	TestFileSuffixes []string
}

func DefaultJavaSpec() LanguageSpec {
	return LanguageSpec{
		Name:             LanguageJava,
		Extensions:       []string{".java"},
		TestFileSuffixes: []string{"Test.java", "Tests.java", "IT.java"},
	}
}

var (
	javaOnce sync.Once
	javaLang *sitter.Language
)

// JavaLanguage returns the tree-sitter Java grammar, loaded once per process.
func JavaLanguage() *sitter.Language {
	javaOnce.Do(func() {
		javaLang = sitter.NewLanguage(tree_sitter_java.Language())
	})
	return javaLang
}

func normalizeExtensions(exts []string) []string {
	set := make(map[string]bool, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		set[ext] = true
	}
	out := make([]string, 0, len(set))
	for ext := range set {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}
