package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
)

// stdout is where results are written. Tests swap it for a buffer.
var stdout io.Writer = os.Stdout

// formatFunctionsText formats CLIFunction results as aligned columns.
func formatFunctionsText(w io.Writer, fns []CLIFunction) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "LINE\tNAME\tDOCUMENTED\tKEY")
	for _, f := range fns {
		fmt.Fprintf(tw, "%d\t%s\t%t\t%s\n", f.Line, displayName(f.Name), f.Documented, shortKey(f.Key))
	}
	tw.Flush()
}

// formatCheckText formats a CLICheck as a single line.
func formatCheckText(w io.Writer, c CLICheck) {
	if c.Valid {
		fmt.Fprintf(w, "%s: ok\n", c.File)
		return
	}
	fmt.Fprintf(w, "%s: %s\n", c.File, c.Message)
}

// formatDocumentText prints the diff, or a one-line note when nothing changed.
func formatDocumentText(w io.Writer, d CLIDocument) {
	if d.Diff != "" {
		fmt.Fprint(w, d.Diff)
		return
	}
	fmt.Fprintf(w, "%s: %d functions, %d updated\n", d.File, d.Functions, d.Updated)
}

// formatSyncText formats a CLISyncReport as a file table with a summary.
// Diffs are printed after the table for dry runs.
func formatSyncText(w io.Writer, r CLISyncReport) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STATUS\tPATH\tFUNCTIONS\tDOCUMENTED\tUPDATED\tCACHED")
	for _, f := range r.Files {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\n",
			f.Status, f.Path, f.Functions, f.Documented, f.Updated, f.Cached)
	}
	tw.Flush()

	for _, f := range r.Files {
		if f.Error != "" {
			fmt.Fprintf(w, "\n%s: %s\n", f.Path, f.Error)
		}
	}
	if r.DryRun {
		for _, f := range r.Files {
			if f.Diff != "" {
				fmt.Fprintln(w)
				fmt.Fprint(w, f.Diff)
			}
		}
	}

	fmt.Fprintf(w, "\nUpdated %d files (%d comments), skipped %d, failed %d\n",
		r.Updated, r.Comments, r.Skipped, r.Failed)
}

// formatCoverageText formats a CLICoverageReport as a table with a total row.
func formatCoverageText(w io.Writer, r CLICoverageReport) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PATH\tFUNCTIONS\tDOCUMENTED\tCOVERAGE")
	for _, f := range r.Files {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%.1f%%\n", f.Path, f.Functions, f.Documented, f.Percent)
	}
	fmt.Fprintf(tw, "TOTAL\t%d\t%d\t%.1f%%\n", r.Functions, r.Documented, r.Percent)
	tw.Flush()
}

// formatRunsText formats CLIRun results as aligned columns.
func formatRunsText(w io.Writer, runs []CLIRun) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tGENERATOR\tDRY RUN\tFILES\tUPDATED\tSKIPPED\tFAILED")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%d\t%d\t%d\t%d\n",
			shortKey(r.ID), r.StartedAt, r.Generator, r.DryRun, r.Files, r.Updated, r.Skipped, r.Failed)
	}
	tw.Flush()
}

// formatLanguagesText formats CLILanguage results as aligned columns.
func formatLanguagesText(w io.Writer, langs []CLILanguage) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "LANGUAGE\tCOMMENT\tEXTENSIONS")
	for _, l := range langs {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", l.Name, l.Comment, strings.Join(l.Extensions, " "))
	}
	tw.Flush()
}

func displayName(name string) string {
	if name == "" {
		return "-"
	}
	return name
}

func shortKey(k string) string {
	if len(k) > 12 {
		return k[:12]
	}
	return k
}

// outputResult writes result as indented JSON or, with --format text,
// through the matching text formatter.
func outputResult(result CLIResult) error {
	if flagFormat == "text" {
		return outputResultText(result)
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// outputError writes an error in the selected format and returns it so RunE
// can propagate it to Cobra. In JSON mode the error is written to stdout as a
// CLIResult envelope. In text mode it goes to stderr.
func outputError(command string, err error) error {
	errorHandled = true
	if flagFormat == "text" {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return err
	}
	result := CLIResult{
		Command: command,
		Error:   err.Error(),
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(result)
	return err
}

// outputResultText dispatches to the appropriate text formatter based on the
// result type.
func outputResultText(result CLIResult) error {
	w := stdout

	switch v := result.Results.(type) {
	case []CLIFunction:
		formatFunctionsText(w, v)
	case CLICheck:
		formatCheckText(w, v)
	case CLIDocument:
		formatDocumentText(w, v)
	case CLISyncReport:
		formatSyncText(w, v)
	case CLICoverageReport:
		formatCoverageText(w, v)
	case []CLIRun:
		formatRunsText(w, v)
	case []CLILanguage:
		formatLanguagesText(w, v)
	case nil:
	default:
		return fmt.Errorf("unsupported result type for text format: %T", v)
	}
	return nil
}

// validFormats lists accepted values for --format.
var validFormats = []string{"json", "text"}

// validateFormat checks that the --format flag value is recognized.
func validateFormat(format string) error {
	for _, f := range validFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("invalid format %q: must be %s", format, strings.Join(validFormats, " or "))
}
