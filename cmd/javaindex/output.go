package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"javaindex/internal/core/app"
	"javaindex/internal/core/ports"
	"javaindex/internal/engine/store"
	"javaindex/internal/shared/util"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"
)

var (
	headingColor = color.New(color.FgCyan, color.Bold)
	typeColor    = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
)

func writeStructured(w io.Writer, format string, v any) (bool, error) {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return true, enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return true, err
		}
		return true, enc.Close()
	case "text", "":
		return false, nil
	default:
		return true, fmt.Errorf("unknown format: %s", format)
	}
}

func writeReport(w io.Writer, report *app.FileReport, format string) error {
	if done, err := writeStructured(w, format, report); done {
		return err
	}

	pkg := report.Package
	if pkg == "" {
		pkg = "(default package)"
	}
	headingColor.Fprintf(w, "%s\n", report.Path)
	fmt.Fprintf(w, "package %s\n", pkg)
	if report.SyntaxErrors > 0 {
		warnColor.Fprintf(w, "%d syntax errors recovered\n", report.SyntaxErrors)
	}

	if len(report.Imports) > 0 {
		headingColor.Fprintln(w, "\nimports")
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, short := range util.SortedStringKeys(report.Imports) {
			fmt.Fprintf(tw, "  %s\t%s\n", short, report.Imports[short])
		}
		tw.Flush()
	}

	headingColor.Fprintln(w, "\nbindings")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  ID\tNAME\tLINE\tREFS\tTYPE")
	for _, b := range report.Bindings {
		fmt.Fprintf(tw, "  %d\t%s\t%d\t%s\t%s\n", b.ID, b.Name, b.Line, joinInts(b.References), b.DeclaredType)
	}
	tw.Flush()

	headingColor.Fprintln(w, "\ntype names")
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, tn := range report.TypeNames {
		fmt.Fprintf(tw, "  %d:%d\t%s\t%s\n", tn.Line, tn.Column, tn.Kind, tn.Name)
	}
	tw.Flush()

	headingColor.Fprintf(w, "\ntypes (score %d)\n", report.Record.Score)
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, tu := range report.Record.Types {
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", tu.TypeName, joinInts(tu.Lines), strings.Join(tu.Properties, ","))
	}
	return tw.Flush()
}

func writeUsages(w io.Writer, typeName string, usages []store.Usage, format string) error {
	if done, err := writeStructured(w, format, usages); done {
		return err
	}
	if len(usages) == 0 {
		warnColor.Fprintf(w, "no files use %s\n", typeName)
		return nil
	}

	typeColor.Fprintf(w, "%s", typeName)
	fmt.Fprintf(w, " used in %d files\n", len(usages))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SCORE\tREPO\tFILE\tLINES\tMETHODS")
	for _, u := range usages {
		file := u.File
		if u.Test {
			file += " (test)"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", u.Score, u.RepoID, file, joinInts(u.Lines), strings.Join(u.Properties, ","))
	}
	return tw.Flush()
}

func writeSummary(w io.Writer, summary ports.RunSummary) {
	headingColor.Fprintf(w, "run %s\n", summary.RunID)
	fmt.Fprintf(w, "indexed %d, unchanged %d, skipped %d, removed %d", summary.Indexed, summary.Unchanged, summary.Skipped, summary.Removed)
	if summary.Failed > 0 {
		warnColor.Fprintf(w, ", failed %d", summary.Failed)
	}
	fmt.Fprintln(w)
}

func writeStats(w io.Writer, stats store.Stats, format string) error {
	if done, err := writeStructured(w, format, stats); done {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "runs\t%d\n", stats.Runs)
	fmt.Fprintf(tw, "files\t%d\n", stats.Files)
	fmt.Fprintf(tw, "types\t%d\n", stats.Types)
	fmt.Fprintf(tw, "usages\t%d\n", stats.Usages)
	if run := stats.LastRun; run != nil {
		fmt.Fprintf(tw, "last run\t%s\n", run.ID)
		fmt.Fprintf(tw, "  started\t%s\n", run.StartedAt.Format("2006-01-02 15:04:05"))
		fmt.Fprintf(tw, "  indexed\t%d\n", run.Indexed)
		fmt.Fprintf(tw, "  skipped\t%d\n", run.Skipped)
		fmt.Fprintf(tw, "  failed\t%d\n", run.Failed)
	}
	return tw.Flush()
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}
