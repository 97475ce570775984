package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/raymyers/ralph-sema/pkg/cabs"
	"github.com/raymyers/ralph-sema/pkg/lexer"
	"github.com/raymyers/ralph-sema/pkg/parser"
	"github.com/raymyers/ralph-sema/pkg/preproc"
	"github.com/raymyers/ralph-sema/pkg/sema"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

// Debug flags
var (
	dParse  bool
	dScopes bool
)

var (
	configPath   string
	maxDepth     int
	preprocess   bool
	preprocessor string
	includePaths []string
	defineFlags  []string
	undefFlags   []string
)

var (
	// ErrParseFailed indicates the input did not parse
	ErrParseFailed = errors.New("parsing failed")
	// ErrAnalysisFailed indicates the program was rejected by semantic analysis
	ErrAnalysisFailed = errors.New("semantic analysis failed")
)

func main() {
	os.Exit(run())
}

func run() int {
	rootCmd := newRootCmd(os.Stdout, os.Stderr)
	rootCmd.SetArgs(normalizeFlags(os.Args[1:]))
	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return 0
}

// debugFlagNames lists the debug flags that also accept single-dash style
var debugFlagNames = []string{"dparse", "dscopes"}

// normalizeFlags converts single-dash debug flags like -dparse to --dparse
func normalizeFlags(args []string) []string {
	result := make([]string, len(args))
	for i, arg := range args {
		result[i] = arg
		for _, flagName := range debugFlagNames {
			if arg == "-"+flagName {
				result[i] = "--" + flagName
				break
			}
		}
	}
	return result
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ralph-sema [file]",
		Short: "ralph-sema checks C sources for scoping and type errors",
		Long: `ralph-sema parses a C translation unit and runs semantic analysis on it:
scoping, identifier resolution and structural type checking. It reports
the first error found and exits non-zero.`,
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath != "" {
				cfg, err := LoadConfig(configPath)
				if err != nil {
					fmt.Fprintf(errOut, "ralph-sema: %v\n", err)
					return err
				}
				cfg.Apply(cmd)
			}

			if len(args) == 0 {
				cmd.Help()
				return nil
			}
			return checkFile(args[0], out, errOut)
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	rootCmd.Flags().BoolVarP(&dParse, "dparse", "", false, "Dump the parsed program before analysis")
	rootCmd.Flags().BoolVarP(&dScopes, "dscopes", "", false, "Trace scopes and declarations to stderr")
	rootCmd.Flags().IntVar(&maxDepth, "max-depth", sema.DefaultMaxDepth, "Maximum nesting of statements and expressions")
	rootCmd.Flags().StringVar(&configPath, "config", "", "Load option defaults from a YAML file")

	rootCmd.Flags().BoolVarP(&preprocess, "preprocess", "E", false, "Run the system C preprocessor first")
	rootCmd.Flags().StringVar(&preprocessor, "cpp", "", "Preprocessor command (default: cc, gcc or clang from PATH)")
	rootCmd.Flags().StringArrayVarP(&includePaths, "include", "I", nil, "Add directory to include search path")
	rootCmd.Flags().StringArrayVarP(&defineFlags, "define", "D", nil, "Define macro (NAME or NAME=VALUE)")
	rootCmd.Flags().StringArrayVarP(&undefFlags, "undefine", "U", nil, "Undefine macro")

	return rootCmd
}

// buildPreprocessorOptions creates preproc.Options from CLI flags
func buildPreprocessorOptions() *preproc.Options {
	opts := &preproc.Options{
		Command:      preprocessor,
		IncludePaths: includePaths,
		Defines:      make(map[string]string),
		Undefines:    undefFlags,
	}
	for _, d := range defineFlags {
		name, value := preproc.ParseDefine(d)
		opts.Defines[name] = value
	}
	return opts
}

// readSource reads a C file, preprocessing it when -E was given.
// Files with .i or .p extensions are assumed already preprocessed.
func readSource(filename string, errOut io.Writer) (string, error) {
	if preprocess && preproc.NeedsPreprocessing(filename) {
		content, err := preproc.Preprocess(filename, buildPreprocessorOptions())
		if err != nil {
			fmt.Fprintf(errOut, "ralph-sema: preprocessing error: %v\n", err)
			return "", err
		}
		return content, nil
	}

	content, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(errOut, "ralph-sema: error reading %s: %v\n", filename, err)
		return "", err
	}
	return string(content), nil
}

// parseFile reads and parses a C file, returning the AST
func parseFile(filename string, errOut io.Writer) (*cabs.Program, error) {
	content, err := readSource(filename, errOut)
	if err != nil {
		return nil, err
	}

	p := parser.New(lexer.New(content))
	p.SetMaxDepth(maxDepth)
	program := p.ParseProgram()

	if len(p.Errors()) > 0 {
		for _, e := range p.Errors() {
			fmt.Fprintf(errOut, "%s: %s\n", filename, e)
		}
		return nil, fmt.Errorf("%w with %d errors", ErrParseFailed, len(p.Errors()))
	}
	return program, nil
}

// checkFile parses and analyzes one file, reporting the outcome
func checkFile(filename string, out, errOut io.Writer) error {
	program, err := parseFile(filename, errOut)
	if err != nil {
		return err
	}

	if dParse {
		cabs.NewPrinter(out).PrintProgram(program)
	}

	opts := sema.Options{MaxDepth: maxDepth}
	if dScopes {
		opts.Trace = errOut
	}
	if err := sema.Analyze(program, opts); err != nil {
		var se *sema.Error
		if errors.As(err, &se) {
			pos := se.Pos()
			fmt.Fprintf(errOut, "%s:%d:%d: error: %s\n", filename, pos.Line, pos.Column, se.Message())
		} else {
			fmt.Fprintf(errOut, "ralph-sema: %s: %v\n", filename, err)
		}
		return fmt.Errorf("%w: %w", ErrAnalysisFailed, err)
	}

	fmt.Fprintf(out, "ralph-sema: %s: ok\n", filename)
	return nil
}
