package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jward/docsync"
)

var flagMinCoverage float64

var coverageCmd = &cobra.Command{
	Use:   "coverage [path]",
	Short: "Report how many functions carry a doc comment",
	Long:  "Lists supported files under the path with their documented and undocumented functions. Exits non-zero when total coverage is below --min.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCoverage,
}

func init() {
	coverageCmd.Flags().Float64Var(&flagMinCoverage, "min", 0, "fail when total coverage percent is below this value")
	coverageCmd.Flags().StringVar(&flagLanguages, "languages", "", "comma-separated language filter (e.g. go,typescript)")
	coverageCmd.Flags().StringVar(&flagInclude, "include", "", "comma-separated glob patterns of files to include")
	coverageCmd.Flags().StringVar(&flagExclude, "exclude", "", "comma-separated glob patterns of files to skip")
}

func runCoverage(cmd *cobra.Command, args []string) error {
	targetDir, err := resolveTargetDir(args)
	if err != nil {
		return outputError("coverage", err)
	}

	// The engine is only used for file discovery, which honors the same
	// filters as sync.
	engine, _, err := openEngine(targetDir)
	if err != nil {
		return outputError("coverage", err)
	}
	defer engine.Close()

	paths, err := engine.ListFiles(targetDir)
	if err != nil {
		return outputError("coverage", err)
	}
	files, err := docsync.CoverageFiles(cmd.Context(), paths)
	if err != nil {
		return outputError("coverage", err)
	}

	report := toCLICoverageReport(targetDir, files)
	if err := outputResult(CLIResult{Command: "coverage", Results: report}); err != nil {
		return err
	}
	if report.Percent < flagMinCoverage {
		errorHandled = true
		return fmt.Errorf("coverage %.1f%% is below minimum %.1f%%", report.Percent, flagMinCoverage)
	}
	return nil
}

func toCLICoverageReport(root string, files []docsync.FileCoverage) CLICoverageReport {
	report := CLICoverageReport{Files: make([]CLICoverage, 0, len(files))}
	for _, f := range files {
		c := CLICoverage{
			Path:       relTo(root, f.Path),
			Language:   f.Language,
			Functions:  f.Functions,
			Documented: f.Documented,
			Percent:    f.Percent(),
		}
		for _, u := range f.Undocumented {
			c.Undocumented = append(c.Undocumented, fmt.Sprintf("%s:%d", displayName(u.Name), u.Line))
		}
		report.Files = append(report.Files, c)
		report.Functions += f.Functions
		report.Documented += f.Documented
	}
	report.Percent = 100
	if report.Functions > 0 {
		report.Percent = 100 * float64(report.Documented) / float64(report.Functions)
	}
	return report
}
