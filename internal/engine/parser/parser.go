package parser

import (
	"bytes"
	"path/filepath"
	"strings"
	"time"

	"javaindex/internal/core/errors"
)

// Parser turns Java source into syntax trees for the resolver.
type Parser struct {
	pool           *ParserPool
	extensions     map[string]bool
	testFileSuffix []string
}

func NewParser(spec LanguageSpec) *Parser {
	p := &Parser{
		pool:       NewParserPool(JavaLanguage()),
		extensions: make(map[string]bool),
	}
	exts := spec.Extensions
	if len(exts) == 0 {
		exts = DefaultJavaSpec().Extensions
	}
	for _, ext := range normalizeExtensions(exts) {
		p.extensions[ext] = true
	}
	for _, suffix := range spec.TestFileSuffixes {
		suffix = strings.ToLower(strings.TrimSpace(suffix))
		if suffix != "" {
			p.testFileSuffix = append(p.testFileSuffix, suffix)
		}
	}
	return p
}

func (p *Parser) ParseFile(path string, content []byte) (*File, error) {
	if !p.IsSupportedPath(path) {
		return nil, errors.AddContext(errors.New(errors.CodeNotSupported, "unsupported language"), errors.CtxPath, path)
	}

	sp := p.pool.Get()
	defer p.pool.Put(sp)

	tree := sp.Parse(content, nil)
	if tree == nil {
		return nil, errors.AddContext(errors.New(errors.CodeParseError, "parse failed"), errors.CtxPath, path)
	}
	defer tree.Close()

	c := newConverter(content)
	root := c.convertRoot(tree.RootNode())

	return &File{
		Path:       path,
		Language:   LanguageJava,
		Root:       root,
		ErrorCount: c.errors,
		Lines:      bytes.Count(content, []byte("\n")) + 1,
		ParsedAt:   time.Now(),
	}, nil
}

func (p *Parser) IsSupportedPath(path string) bool {
	return p.extensions[strings.ToLower(filepath.Ext(path))]
}

func (p *Parser) IsTestFile(path string) bool {
	base := strings.ToLower(filepath.Base(path))
	for _, suffix := range p.testFileSuffix {
		if strings.HasSuffix(base, suffix) {
			return true
		}
	}
	return false
}

func (p *Parser) SupportedExtensions() []string {
	out := make([]string, 0, len(p.extensions))
	for ext := range p.extensions {
		out = append(out, ext)
	}
	return normalizeExtensions(out)
}

func (p *Parser) TestFileSuffixes() []string {
	return append([]string(nil), p.testFileSuffix...)
}

// Leased reports parsers currently in use, for health reporting.
func (p *Parser) Leased() int {
	return p.pool.Leased()
}
