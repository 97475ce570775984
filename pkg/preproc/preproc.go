// Package preproc runs C sources through the system preprocessor (cc -E)
// before they reach the lexer. Line markers in the output are skipped by the lexer.
package preproc

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNoPreprocessor is returned when no C preprocessor can be found
var ErrNoPreprocessor = errors.New("no C preprocessor found (tried: cc, gcc, clang)")

// Options configures the preprocessing step
type Options struct {
	Command      string            // preprocessor executable; searched on PATH when empty
	IncludePaths []string          // -I directories
	Defines      map[string]string // -D macros (name -> value, empty string for simple define)
	Undefines    []string          // -U macros
}

// ParseDefine splits a -D argument of the form NAME or NAME=VALUE
func ParseDefine(arg string) (name, value string) {
	if idx := strings.Index(arg, "="); idx >= 0 {
		return arg[:idx], arg[idx+1:]
	}
	return arg, ""
}

// Preprocess runs the preprocessor on filename and returns its output
func Preprocess(filename string, opts *Options) (string, error) {
	if opts == nil {
		opts = &Options{}
	}
	command := opts.Command
	if command == "" {
		command = findPreprocessor()
		if command == "" {
			return "", ErrNoPreprocessor
		}
	}

	cmd := exec.Command(command, commandArgs(filename, opts)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// relative #include "..." resolves against the file's directory
	cmd.Dir = filepath.Dir(filename)

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("preprocessing failed: %w\n%s", err, stderr.String())
	}
	return stdout.String(), nil
}

// commandArgs builds the preprocessor argument list. Defines are sorted so
// the command line is reproducible.
func commandArgs(filename string, opts *Options) []string {
	args := []string{"-E"}
	for _, path := range opts.IncludePaths {
		args = append(args, "-I"+path)
	}

	names := make([]string, 0, len(opts.Defines))
	for name := range opts.Defines {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if value := opts.Defines[name]; value != "" {
			args = append(args, "-D"+name+"="+value)
		} else {
			args = append(args, "-D"+name)
		}
	}

	for _, name := range opts.Undefines {
		args = append(args, "-U"+name)
	}
	// the command runs in the file's directory
	return append(args, filepath.Base(filename))
}

// PreprocessString preprocesses C source held in memory by way of a temporary file
func PreprocessString(source, filename string, opts *Options) (string, error) {
	dir, err := os.MkdirTemp("", "ralph-sema-")
	if err != nil {
		return "", fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	baseName := filepath.Base(filename)
	if baseName == "" || baseName == "." || baseName == string(filepath.Separator) {
		baseName = "source.c"
	}
	tmpFile := filepath.Join(dir, baseName)
	if err := os.WriteFile(tmpFile, []byte(source), 0644); err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	return Preprocess(tmpFile, opts)
}

// NeedsPreprocessing returns true if the file might need preprocessing.
// Files ending in .i or .p are considered already preprocessed.
func NeedsPreprocessing(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return ext != ".i" && ext != ".p"
}

func findPreprocessor() string {
	for _, cmd := range []string{"cc", "gcc", "clang"} {
		if path, err := exec.LookPath(cmd); err == nil {
			return path
		}
	}
	return ""
}
