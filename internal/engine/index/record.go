// # internal/engine/index/record.go
package index

import (
	"math"
	"slices"
	"strings"

	"javaindex/internal/engine/resolver"
	"javaindex/internal/engine/syntax"
	"javaindex/internal/shared/util"
)

// TypeUsage records where one type is used inside a file and which of its
// methods were invoked on variables of that type.
type TypeUsage struct {
	TypeName   string   `json:"type_name" yaml:"type_name" msgpack:"type_name"`
	Lines      []int    `json:"lines" yaml:"lines" msgpack:"lines"`
	Properties []string `json:"properties,omitempty" yaml:"properties,omitempty" msgpack:"properties,omitempty"`
}

// FileRecord is the unit written to the store for one compilation unit.
type FileRecord struct {
	RepoID  string      `json:"repo_id" yaml:"repo_id"`
	File    string      `json:"file" yaml:"file"`
	Package string      `json:"package" yaml:"package"`
	Test    bool        `json:"test,omitempty" yaml:"test,omitempty"`
	Types   []TypeUsage `json:"types" yaml:"types"`
	Score   int         `json:"score" yaml:"score"`
}

type Options struct {
	// Ignore lists fully qualified names never recorded, on top of the
	// primitive types.
	Ignore []string
	Test   bool
}

var primitives = map[string]bool{
	"boolean": true,
	"byte":    true,
	"char":    true,
	"short":   true,
	"int":     true,
	"long":    true,
	"float":   true,
	"double":  true,
	"void":    true,
}

// Build folds a resolution result into a per-file record of type usages.
func Build(repoID, path string, res *resolver.Result, opts Options) FileRecord {
	rec := FileRecord{RepoID: repoID, File: path, Test: opts.Test}
	if res == nil {
		return rec
	}
	rec.Package = res.Package()

	ignore := make(map[string]bool, len(opts.Ignore))
	for _, name := range opts.Ignore {
		ignore[name] = true
	}
	acc := make(map[string]*usage)
	add := func(name string) *usage {
		if name == "" || primitives[name] || ignore[name] || strings.HasPrefix(name, "?") {
			return nil
		}
		u, ok := acc[name]
		if !ok {
			u = &usage{lines: make(map[int]bool), props: make(map[string]bool)}
			acc[name] = u
		}
		return u
	}

	for _, b := range res.Bindings() {
		// Enum constants carry a constant name, not a type.
		if b.TypeNode == nil {
			continue
		}
		u := add(RawName(b.DeclaredType))
		if u == nil {
			continue
		}
		if b.Declaration != nil {
			u.lines[b.Declaration.Start.Line] = true
		}
		for _, ref := range b.References {
			u.lines[ref.Start.Line] = true
			if method := invokedOn(ref); method != "" {
				u.props[method] = true
			}
		}
	}

	for node, name := range res.TypeNames() {
		if node.Kind == syntax.KindPrimitiveType || node.Kind == syntax.KindWildcardType {
			continue
		}
		if u := add(name); u != nil {
			u.lines[node.Start.Line] = true
		}
	}

	total := 0
	rec.Types = make([]TypeUsage, 0, len(acc))
	for name, u := range acc {
		tu := TypeUsage{TypeName: name, Lines: sortedLines(u.lines)}
		if len(u.props) > 0 {
			tu.Properties = util.SortedStringKeys(u.props)
		}
		total += len(tu.Lines)
		rec.Types = append(rec.Types, tu)
	}
	slices.SortFunc(rec.Types, func(a, b TypeUsage) int { return strings.Compare(a.TypeName, b.TypeName) })
	rec.Score = Score(len(rec.Types), total)
	return rec
}

// Score ranks a file for a type lookup: files that use many types across
// many lines come first.
func Score(distinctTypes, totalLines int) int {
	if distinctTypes == 0 {
		return 0
	}
	return int(math.Round(float64(distinctTypes) * math.Log2(1+float64(totalLines))))
}

// RawName drops type arguments from an expanded parameterized name.
func RawName(name string) string {
	if i := strings.IndexByte(name, '<'); i >= 0 {
		return name[:i]
	}
	return name
}

type usage struct {
	lines map[int]bool
	props map[string]bool
}

// invokedOn returns the method name when ref is the receiver of a call.
func invokedOn(ref *syntax.Node) string {
	parent := ref.Parent
	if parent == nil || parent.Kind != syntax.KindMethodInvocation {
		return ""
	}
	if parent.Child(syntax.FieldObject) != ref {
		return ""
	}
	if name := parent.Child(syntax.FieldName); name != nil {
		return name.Text
	}
	return parent.Text
}

func sortedLines(m map[int]bool) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
