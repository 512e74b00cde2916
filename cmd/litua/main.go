// Command litua is the CLI surface of §6: read an input file, run it
// through the transform pipeline, and write the result.
//
// Grounded on the teacher's cli/main.go: compute an exit code instead of
// calling os.Exit deep in a RunE (which would skip deferred cleanup),
// and only call os.Exit once, at the very end of main, after every
// write has completed.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/litua-lang/litua/diag"
	"github.com/litua-lang/litua/discovery"
	"github.com/litua-lang/litua/hook"
	"github.com/litua-lang/litua/lexer"
	"github.com/litua-lang/litua/node"
	"github.com/litua-lang/litua/parser"
	"github.com/litua-lang/litua/pipeline"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var (
		outputPath string
		dumpLexed  bool
		dumpParsed bool
	)

	exitCode := 0

	rootCmd := &cobra.Command{
		Use:           "litua <input>",
		Short:         "Transform a litua document",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := process(args[0], outputPath, dumpLexed, dumpParsed, cmd.OutOrStdout())
			exitCode = code
			return err
		},
	}
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "override output path")
	rootCmd.Flags().BoolVar(&dumpLexed, "dump-lexed", false, "print the token stream instead of processing")
	rootCmd.Flags().BoolVar(&dumpParsed, "dump-parsed", false, "print the parsed tree instead of processing")
	rootCmd.SetArgs(args)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if exitCode == 0 {
			exitCode = 1
		}
	}
	return exitCode
}

func process(inputPath, outputPath string, dumpLexed, dumpParsed bool, out io.Writer) (int, error) {
	src, err := os.ReadFile(inputPath)
	if err != nil {
		return 1, fmt.Errorf("reading %s: %w", inputPath, err)
	}

	if dumpLexed {
		tokens, err := lexer.New(src).Tokenize()
		if err != nil {
			return 1, err
		}
		for _, t := range tokens {
			fmt.Fprintln(out, t.String())
		}
		return 0, nil
	}

	if dumpParsed {
		tokens, err := lexer.New(src).Tokenize()
		if err != nil {
			return 1, err
		}
		tree, err := parser.Parse(tokens)
		if err != nil {
			return 1, err
		}
		fmt.Fprintln(out, node.IdentityString(tree))
		return 0, nil
	}

	hookFiles, err := discovery.HookFiles(inputPath, nil)
	if err != nil {
		return 1, fmt.Errorf("discovering hook scripts: %w", err)
	}
	// Loading and executing hookFiles to register hooks is the
	// embedded scripting runtime's job, out of this package's scope
	// (§1 "Out of scope / external collaborators"); an empty registry
	// still exercises the full default-serialization path.
	_ = hookFiles

	registry := hook.New()
	p := pipeline.New(registry, pipeline.Config{})
	result, err := p.Run(string(src))
	if err != nil {
		reportTeardown(result)
		return 1, toDiagnosticError(err)
	}
	reportTeardown(result)

	dest := outputPath
	if dest == "" {
		dest = defaultOutputPath(inputPath)
	}
	if err := os.WriteFile(dest, []byte(result.Output), 0o644); err != nil {
		return 1, fmt.Errorf("writing %s: %w", dest, err)
	}
	return 0, nil
}

func reportTeardown(result *pipeline.Result) {
	if result == nil {
		return
	}
	for _, err := range result.TeardownErrs {
		fmt.Fprintln(os.Stderr, toDiagnosticError(err))
	}
}

func toDiagnosticError(err error) error {
	if d, ok := err.(*diag.Diagnostic); ok {
		return fmt.Errorf("%s", d.Error())
	}
	return err
}

func defaultOutputPath(inputPath string) string {
	base := filepath.Base(inputPath)
	ext := filepath.Ext(base)
	trimmed := strings.TrimSuffix(base, ext)
	return filepath.Join(filepath.Dir(inputPath), trimmed+".out")
}
