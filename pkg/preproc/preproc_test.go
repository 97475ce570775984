package preproc

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNeedsPreprocessing(t *testing.T) {
	tests := []struct {
		filename string
		want     bool
	}{
		{"test.c", true},
		{"dir/test.h", true},
		{"test.i", false},
		{"TEST.I", false},
		{"test.p", false},
		{"noext", true},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			if got := NeedsPreprocessing(tt.filename); got != tt.want {
				t.Errorf("NeedsPreprocessing(%q) = %v, want %v", tt.filename, got, tt.want)
			}
		})
	}
}

func TestParseDefine(t *testing.T) {
	tests := []struct {
		arg, name, value string
	}{
		{"DEBUG", "DEBUG", ""},
		{"N=10", "N", "10"},
		{"EMPTY=", "EMPTY", ""},
		{"EXPR=a=b", "EXPR", "a=b"},
	}
	for _, tt := range tests {
		name, value := ParseDefine(tt.arg)
		if name != tt.name || value != tt.value {
			t.Errorf("ParseDefine(%q) = (%q, %q), want (%q, %q)", tt.arg, name, value, tt.name, tt.value)
		}
	}
}

func TestCommandArgs(t *testing.T) {
	opts := &Options{
		IncludePaths: []string{"inc", "/usr/local/include"},
		Defines:      map[string]string{"N": "10", "DEBUG": ""},
		Undefines:    []string{"NDEBUG"},
	}
	got := strings.Join(commandArgs("src/main.c", opts), " ")
	want := "-E -Iinc -I/usr/local/include -DDEBUG -DN=10 -UNDEBUG main.c"
	if got != want {
		t.Errorf("commandArgs() = %q, want %q", got, want)
	}
}

func TestMissingCommand(t *testing.T) {
	_, err := Preprocess("test.c", &Options{Command: filepath.Join(t.TempDir(), "no-such-cc")})
	if err == nil {
		t.Fatal("expected an error for a missing preprocessor")
	}
	if !strings.Contains(err.Error(), "preprocessing failed") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestPreprocessExpandsMacros(t *testing.T) {
	if findPreprocessor() == "" {
		t.Skip("no C preprocessor on PATH")
	}
	dir := t.TempDir()
	header := filepath.Join(dir, "limits.h")
	if err := os.WriteFile(header, []byte("#define LIMIT 42\n"), 0644); err != nil {
		t.Fatal(err)
	}
	src := filepath.Join(dir, "main.c")
	code := "#include \"limits.h\"\nint f(void) { return LIMIT + SCALE; }\n"
	if err := os.WriteFile(src, []byte(code), 0644); err != nil {
		t.Fatal(err)
	}

	out, err := Preprocess(src, &Options{Defines: map[string]string{"SCALE": "2"}})
	if err != nil {
		if errors.Is(err, ErrNoPreprocessor) {
			t.Skip(err)
		}
		t.Fatalf("Preprocess() error: %v", err)
	}
	if !strings.Contains(out, "return 42 + 2;") {
		t.Errorf("expected expanded macros in output, got:\n%s", out)
	}
}

func TestPreprocessString(t *testing.T) {
	if findPreprocessor() == "" {
		t.Skip("no C preprocessor on PATH")
	}
	out, err := PreprocessString("#define ZERO 0\nint z = ZERO;\n", "z.c", nil)
	if err != nil {
		t.Fatalf("PreprocessString() error: %v", err)
	}
	if !strings.Contains(out, "int z = 0;") {
		t.Errorf("expected expanded macro, got:\n%s", out)
	}
}
