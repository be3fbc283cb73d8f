package app

import (
	"cmp"
	"os"
	"slices"

	"javaindex/internal/core/ports"
	"javaindex/internal/engine/index"
)

type BindingReport struct {
	ID           uint32 `json:"id" yaml:"id"`
	Name         string `json:"name" yaml:"name"`
	DeclaredType string `json:"declared_type" yaml:"declared_type"`
	Line         int    `json:"line" yaml:"line"`
	References   []int  `json:"references" yaml:"references"`
}

type TypeNameReport struct {
	Line   int    `json:"line" yaml:"line"`
	Column int    `json:"column" yaml:"column"`
	Kind   string `json:"kind" yaml:"kind"`
	Name   string `json:"name" yaml:"name"`
}

// FileReport is the resolution of one file as shown by the resolve command.
type FileReport struct {
	Path         string            `json:"path" yaml:"path"`
	Package      string            `json:"package" yaml:"package"`
	Imports      map[string]string `json:"imports" yaml:"imports"`
	Bindings     []BindingReport   `json:"bindings" yaml:"bindings"`
	TypeNames    []TypeNameReport  `json:"type_names" yaml:"type_names"`
	Record       index.FileRecord  `json:"record" yaml:"record"`
	SyntaxErrors int               `json:"syntax_errors,omitempty" yaml:"syntax_errors,omitempty"`
}

// ResolveFile parses and resolves path without touching the store.
func ResolveFile(codeParser ports.CodeParser, path string, ignore []string) (*FileReport, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	file, res, err := Analyze(codeParser, path, content)
	if err != nil {
		return nil, err
	}

	report := &FileReport{
		Path:         path,
		Package:      res.Package(),
		Imports:      res.Imports(),
		SyntaxErrors: file.ErrorCount,
		Record: index.Build("", path, res, index.Options{
			Ignore: ignore,
			Test:   codeParser.IsTestFile(path),
		}),
	}

	for _, b := range res.Bindings() {
		br := BindingReport{
			ID:           uint32(b.ID),
			Name:         b.Name,
			DeclaredType: b.DeclaredType,
			References:   make([]int, 0, len(b.References)),
		}
		if b.Declaration != nil {
			br.Line = b.Declaration.Start.Line
		}
		for _, ref := range b.References {
			br.References = append(br.References, ref.Start.Line)
		}
		report.Bindings = append(report.Bindings, br)
	}

	for node, name := range res.TypeNames() {
		report.TypeNames = append(report.TypeNames, TypeNameReport{
			Line:   node.Start.Line,
			Column: node.Start.Column,
			Kind:   node.Kind.String(),
			Name:   name,
		})
	}
	slices.SortFunc(report.TypeNames, func(a, b TypeNameReport) int {
		return cmp.Or(cmp.Compare(a.Line, b.Line), cmp.Compare(a.Column, b.Column), cmp.Compare(a.Name, b.Name))
	})
	return report, nil
}
