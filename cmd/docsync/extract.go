package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jward/docsync"
	"github.com/jward/docsync/internal/grammar"
)

var (
	flagLanguage string
	flagBodies   bool
)

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "List the functions in a file and their doc comments",
	Args:  cobra.ExactArgs(1),
	RunE:  runExtract,
}

var checkCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Report whether a file parses without syntax errors",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List supported languages",
	Args:  cobra.NoArgs,
	RunE:  runLanguages,
}

func init() {
	for _, c := range []*cobra.Command{extractCmd, checkCmd} {
		c.Flags().StringVar(&flagLanguage, "language", "", "language override (default: detected from the file extension)")
	}
	extractCmd.Flags().BoolVar(&flagBodies, "bodies", false, "include comment and function text")
}

// readSource reads path and resolves its language from --language or the
// file extension.
func readSource(path string) (string, grammar.Language, error) {
	var (
		lang grammar.Language
		ok   bool
	)
	if flagLanguage != "" {
		lang, ok = grammar.ParseLanguage(flagLanguage)
	} else {
		lang, ok = grammar.LanguageForFile(path)
	}
	if !ok {
		return "", grammar.Unknown, fmt.Errorf("%w: %s", docsync.ErrUnsupportedLanguage, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", grammar.Unknown, fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), lang, nil
}

func runExtract(cmd *cobra.Command, args []string) error {
	content, lang, err := readSource(args[0])
	if err != nil {
		return outputError("extract", err)
	}

	fns := docsync.ExtractLanguage(context.Background(), content, lang, filepath.Ext(args[0]))
	results := make([]CLIFunction, 0, len(fns))
	for _, f := range fns {
		cf := CLIFunction{
			Name:       f.Name,
			Line:       f.Line,
			Start:      f.Start,
			Key:        f.Key,
			Documented: f.HasComment(),
		}
		if flagBodies {
			cf.Comment = f.Comment
			cf.Func = f.Func
		}
		results = append(results, cf)
	}
	total := len(results)
	return outputResult(CLIResult{Command: "extract", Results: results, TotalCount: &total})
}

func runCheck(cmd *cobra.Command, args []string) error {
	content, lang, err := readSource(args[0])
	if err != nil {
		return outputError("check", err)
	}

	res := CLICheck{File: args[0], Language: lang.String(), Valid: true}
	err = docsync.CheckSyntaxLanguage(context.Background(), content, lang, filepath.Ext(args[0]))
	switch {
	case err == nil:
	case errors.Is(err, docsync.ErrSyntaxInvalid):
		res.Valid = false
		res.Message = err.Error()
	default:
		return outputError("check", err)
	}

	if err := outputResult(CLIResult{Command: "check", Results: res}); err != nil {
		return err
	}
	if !res.Valid {
		errorHandled = true
		return docsync.ErrSyntaxInvalid
	}
	return nil
}

func runLanguages(cmd *cobra.Command, args []string) error {
	var results []CLILanguage
	for _, l := range grammar.Languages() {
		style, _ := grammar.CommentStyleFor(l)
		comment := style.Line
		if comment == "" {
			comment = style.Open
		}
		results = append(results, CLILanguage{
			Name:       l.String(),
			Extensions: grammar.Extensions(l),
			Comment:    comment,
		})
	}
	return outputResult(CLIResult{Command: "languages", Results: results})
}
