package parser

import (
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/raymyers/ralph-sema/pkg/cabs"
	"github.com/raymyers/ralph-sema/pkg/lexer"
	"gopkg.in/yaml.v3"
)

// TestSpec represents a test case from parse.yaml
type TestSpec struct {
	Name  string  `yaml:"name"`
	Input string  `yaml:"input"`
	AST   ASTSpec `yaml:"ast"`
}

// ASTSpec represents the expected AST structure
type ASTSpec struct {
	Kind  string    `yaml:"kind"`
	Name  string    `yaml:"name,omitempty"`
	Body  *ASTSpec  `yaml:"body,omitempty"`
	Items []ASTSpec `yaml:"items,omitempty"`
	Expr  *ASTSpec  `yaml:"expr,omitempty"`
	Left  *ASTSpec  `yaml:"left,omitempty"`
	Right *ASTSpec  `yaml:"right,omitempty"`
	Cond  *ASTSpec  `yaml:"cond,omitempty"`
	Then  *ASTSpec  `yaml:"then,omitempty"`
	Else  *ASTSpec  `yaml:"else,omitempty"`
	Op    string    `yaml:"op,omitempty"`
	Value *int64    `yaml:"value,omitempty"`
}

// TestFile represents the parse.yaml file structure
type TestFile struct {
	Tests []TestSpec `yaml:"tests"`
}

func TestParseYAML(t *testing.T) {
	data, err := os.ReadFile("../../testdata/parse.yaml")
	if err != nil {
		t.Fatalf("failed to read parse.yaml: %v", err)
	}

	var testFile TestFile
	if err := yaml.Unmarshal(data, &testFile); err != nil {
		t.Fatalf("failed to parse parse.yaml: %v", err)
	}

	for _, tc := range testFile.Tests {
		t.Run(tc.Name, func(t *testing.T) {
			l := lexer.New(tc.Input)
			p := New(l)
			prog := p.ParseProgram()

			if len(p.Errors()) > 0 {
				t.Fatalf("parser errors: %v", p.Errors())
			}

			if len(prog.Definitions) == 0 {
				t.Fatal("ParseProgram returned no definitions")
			}

			verifyAST(t, prog.Definitions[len(prog.Definitions)-1], tc.AST)
		})
	}
}

func verifyAST(t *testing.T, node cabs.Node, spec ASTSpec) {
	t.Helper()

	switch spec.Kind {
	case "FunDef":
		funDef, ok := node.(cabs.FunDef)
		if !ok {
			t.Fatalf("expected FunDef, got %T", node)
		}
		if spec.Name != "" && funDef.Name() != spec.Name {
			t.Errorf("FunDef.Name: expected %q, got %q", spec.Name, funDef.Name())
		}
		if spec.Body != nil {
			verifyAST(t, *funDef.Body, *spec.Body)
		}

	case "Block":
		block, ok := node.(cabs.Block)
		if !ok {
			t.Fatalf("expected Block, got %T", node)
		}
		if len(spec.Items) != len(block.Items) {
			t.Fatalf("Block.Items: expected %d items, got %d", len(spec.Items), len(block.Items))
		}
		for i, itemSpec := range spec.Items {
			verifyAST(t, block.Items[i], itemSpec)
		}

	case "Declaration":
		decl, ok := node.(cabs.Declaration)
		if !ok {
			t.Fatalf("expected Declaration, got %T", node)
		}
		if spec.Name != "" && (len(decl.Inits) == 0 || decl.Inits[0].Decl.Name() != spec.Name) {
			t.Errorf("Declaration: expected first declarator %q", spec.Name)
		}

	case "ExprStmt":
		stmt, ok := node.(cabs.ExprStmt)
		if !ok {
			t.Fatalf("expected ExprStmt, got %T", node)
		}
		if spec.Expr != nil {
			verifyAST(t, stmt.Expr, *spec.Expr)
		}

	case "Return":
		ret, ok := node.(cabs.Return)
		if !ok {
			t.Fatalf("expected Return, got %T", node)
		}
		if spec.Expr != nil {
			if ret.Expr == nil {
				t.Fatal("Return.Expr: expected expression, got nil")
			}
			verifyAST(t, ret.Expr, *spec.Expr)
		}

	case "If":
		stmt, ok := node.(cabs.If)
		if !ok {
			t.Fatalf("expected If, got %T", node)
		}
		if spec.Cond != nil {
			verifyAST(t, stmt.Cond, *spec.Cond)
		}
		if spec.Then != nil {
			verifyAST(t, stmt.Then, *spec.Then)
		}
		if spec.Else != nil {
			if stmt.Else == nil {
				t.Fatal("If.Else: expected statement, got nil")
			}
			verifyAST(t, stmt.Else, *spec.Else)
		}

	case "While":
		stmt, ok := node.(cabs.While)
		if !ok {
			t.Fatalf("expected While, got %T", node)
		}
		if spec.Cond != nil {
			verifyAST(t, stmt.Cond, *spec.Cond)
		}
		if spec.Body != nil {
			verifyAST(t, stmt.Body, *spec.Body)
		}

	case "Labeled":
		stmt, ok := node.(cabs.Labeled)
		if !ok {
			t.Fatalf("expected Labeled, got %T", node)
		}
		if spec.Name != "" && stmt.Label != spec.Name {
			t.Errorf("Labeled.Label: expected %q, got %q", spec.Name, stmt.Label)
		}
		if spec.Body != nil {
			verifyAST(t, stmt.Stmt, *spec.Body)
		}

	case "Goto":
		stmt, ok := node.(cabs.Goto)
		if !ok {
			t.Fatalf("expected Goto, got %T", node)
		}
		if spec.Name != "" && stmt.Label != spec.Name {
			t.Errorf("Goto.Label: expected %q, got %q", spec.Name, stmt.Label)
		}

	case "Constant":
		constant, ok := node.(cabs.Constant)
		if !ok {
			t.Fatalf("expected Constant, got %T", node)
		}
		if spec.Value != nil && constant.Value != *spec.Value {
			t.Errorf("Constant.Value: expected %d, got %d", *spec.Value, constant.Value)
		}

	case "Variable":
		variable, ok := node.(cabs.Variable)
		if !ok {
			t.Fatalf("expected Variable, got %T", node)
		}
		if spec.Name != "" && variable.Name != spec.Name {
			t.Errorf("Variable.Name: expected %q, got %q", spec.Name, variable.Name)
		}

	case "EnumConst":
		ec, ok := node.(cabs.EnumConst)
		if !ok {
			t.Fatalf("expected EnumConst, got %T", node)
		}
		if spec.Name != "" && ec.Name != spec.Name {
			t.Errorf("EnumConst.Name: expected %q, got %q", spec.Name, ec.Name)
		}

	case "Binary":
		binary, ok := node.(cabs.Binary)
		if !ok {
			t.Fatalf("expected Binary, got %T", node)
		}
		if spec.Op != "" && binary.Op.String() != spec.Op {
			t.Errorf("Binary.Op: expected %q, got %q", spec.Op, binary.Op.String())
		}
		if spec.Left != nil {
			verifyAST(t, binary.Left, *spec.Left)
		}
		if spec.Right != nil {
			verifyAST(t, binary.Right, *spec.Right)
		}

	case "Assign":
		assign, ok := node.(cabs.Assign)
		if !ok {
			t.Fatalf("expected Assign, got %T", node)
		}
		if spec.Op != "" && assign.Op.String() != spec.Op {
			t.Errorf("Assign.Op: expected %q, got %q", spec.Op, assign.Op.String())
		}
		if spec.Left != nil {
			verifyAST(t, assign.Left, *spec.Left)
		}
		if spec.Right != nil {
			verifyAST(t, assign.Right, *spec.Right)
		}

	case "Unary":
		unary, ok := node.(cabs.Unary)
		if !ok {
			t.Fatalf("expected Unary, got %T", node)
		}
		if spec.Op != "" && unary.Op.String() != spec.Op {
			t.Errorf("Unary.Op: expected %q, got %q", spec.Op, unary.Op.String())
		}
		if spec.Expr != nil {
			verifyAST(t, unary.Expr, *spec.Expr)
		}

	case "Paren":
		paren, ok := node.(cabs.Paren)
		if !ok {
			t.Fatalf("expected Paren, got %T", node)
		}
		if spec.Expr != nil {
			verifyAST(t, paren.Expr, *spec.Expr)
		}

	case "Conditional":
		cond, ok := node.(cabs.Conditional)
		if !ok {
			t.Fatalf("expected Conditional, got %T", node)
		}
		if spec.Cond != nil {
			verifyAST(t, cond.Cond, *spec.Cond)
		}
		if spec.Then != nil {
			verifyAST(t, cond.Then, *spec.Then)
		}
		if spec.Else != nil {
			verifyAST(t, cond.Else, *spec.Else)
		}

	case "Cast":
		cast, ok := node.(cabs.Cast)
		if !ok {
			t.Fatalf("expected Cast, got %T", node)
		}
		if spec.Expr != nil {
			verifyAST(t, cast.Expr, *spec.Expr)
		}

	default:
		t.Fatalf("unknown AST kind: %s", spec.Kind)
	}
}

// parseFunc parses a single function definition and fails the test on errors
func parseFunc(t *testing.T, input string) cabs.FunDef {
	t.Helper()
	l := lexer.New(input)
	p := New(l)
	prog := p.ParseProgram()

	if len(p.Errors()) > 0 {
		t.Fatalf("parser errors: %v", p.Errors())
	}

	funDef, ok := prog.Definitions[len(prog.Definitions)-1].(cabs.FunDef)
	if !ok {
		t.Fatalf("expected FunDef, got %T", prog.Definitions[len(prog.Definitions)-1])
	}
	return funDef
}

// returnExpr parses input and returns the expression of the body's first return
func returnExpr(t *testing.T, input string) cabs.Expr {
	t.Helper()
	funDef := parseFunc(t, input)
	ret, ok := funDef.Body.Items[0].(cabs.Return)
	if !ok {
		t.Fatalf("expected Return, got %T", funDef.Body.Items[0])
	}
	return ret.Expr
}

func TestEmptyFunction(t *testing.T) {
	funDef := parseFunc(t, `int main() {}`)

	if funDef.Name() != "main" {
		t.Errorf("expected name 'main', got %q", funDef.Name())
	}
	if spec, ok := funDef.Specifiers[0].(cabs.TypeSpec); !ok || spec.Kind != cabs.SpecInt {
		t.Errorf("expected return type specifier 'int', got %v", funDef.Specifiers)
	}
	if len(funDef.Body.Items) != 0 {
		t.Errorf("expected empty body, got %d items", len(funDef.Body.Items))
	}
}

func TestFunctionParameters(t *testing.T) {
	funDef := parseFunc(t, `int add(int a, char *b, ...) { return a; }`)

	fn := funDef.Declarator.FuncDeclarator()
	if fn == nil {
		t.Fatal("expected function declarator")
	}
	if len(fn.Params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(fn.Params))
	}
	if !fn.Variadic {
		t.Error("expected variadic function")
	}
	if fn.Params[1].Decl.Name() != "b" || fn.Params[1].Decl.Pointers != 1 {
		t.Errorf("expected char *b, got %d pointers named %q", fn.Params[1].Decl.Pointers, fn.Params[1].Decl.Name())
	}
}

func TestBinaryExpressions(t *testing.T) {
	tests := []struct {
		input    string
		leftVal  int64
		op       cabs.BinaryOp
		rightVal int64
	}{
		{"int f() { return 1 + 2; }", 1, cabs.OpAdd, 2},
		{"int f() { return 5 - 3; }", 5, cabs.OpSub, 3},
		{"int f() { return 2 * 3; }", 2, cabs.OpMul, 3},
		{"int f() { return 6 / 2; }", 6, cabs.OpDiv, 2},
		{"int f() { return 7 % 3; }", 7, cabs.OpMod, 3},
		{"int f() { return 1 < 2; }", 1, cabs.OpLt, 2},
		{"int f() { return 1 >= 2; }", 1, cabs.OpGe, 2},
		{"int f() { return 1 != 2; }", 1, cabs.OpNe, 2},
		{"int f() { return 1 && 2; }", 1, cabs.OpAnd, 2},
		{"int f() { return 1 || 2; }", 1, cabs.OpOr, 2},
		{"int f() { return 1 ^ 2; }", 1, cabs.OpBitXor, 2},
		{"int f() { return 8 >> 2; }", 8, cabs.OpShr, 2},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			expr := returnExpr(t, tt.input)
			binary, ok := expr.(cabs.Binary)
			if !ok {
				t.Fatalf("expected Binary, got %T", expr)
			}

			if binary.Op != tt.op {
				t.Errorf("wrong op: expected %v, got %v", tt.op, binary.Op)
			}

			left := binary.Left.(cabs.Constant)
			if left.Value != tt.leftVal {
				t.Errorf("wrong left value: expected %d, got %d", tt.leftVal, left.Value)
			}

			right := binary.Right.(cabs.Constant)
			if right.Value != tt.rightVal {
				t.Errorf("wrong right value: expected %d, got %d", tt.rightVal, right.Value)
			}
		})
	}
}

func TestOperatorPrecedence(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		// Multiplicative before additive
		{"int f() { return 1 + 2 * 3; }", "(1 + (2 * 3))"},
		{"int f() { return 2 * 3 + 4; }", "((2 * 3) + 4)"},
		// Parentheses override precedence
		{"int f() { return (1 + 2) * 3; }", "((1 + 2) * 3)"},
		// Left associativity
		{"int f() { return 1 - 2 - 3; }", "((1 - 2) - 3)"},
		// Shift binds looser than additive, tighter than relational
		{"int f() { return 1 << 2 + 3 < 4; }", "((1 << (2 + 3)) < 4)"},
		{"int f() { return a || b && c | d ^ e & f == g; }", "(a || (b && (c | (d ^ (e & (f == g))))))"},
		{"int f() { return -a * b; }", "((-a) * b)"},
		{"int f() { return a ? b : c ? d : e; }", "(a ? b : (c ? d : e))"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			actual := exprString(returnExpr(t, tt.input))

			if actual != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, actual)
			}
		})
	}
}

func TestUnaryExpressions(t *testing.T) {
	tests := []struct {
		input string
		op    cabs.UnaryOp
	}{
		{"int f() { return -x; }", cabs.OpNeg},
		{"int f() { return !x; }", cabs.OpNot},
		{"int f() { return ~x; }", cabs.OpBitNot},
		{"int f() { return +x; }", cabs.OpPlus},
		{"int f() { return &x; }", cabs.OpAddrOf},
		{"int f() { return *x; }", cabs.OpDeref},
		{"int f() { return ++x; }", cabs.OpPreInc},
		{"int f() { return --x; }", cabs.OpPreDec},
		{"int f() { return x++; }", cabs.OpPostInc},
		{"int f() { return x--; }", cabs.OpPostDec},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			expr := returnExpr(t, tt.input)
			unary, ok := expr.(cabs.Unary)
			if !ok {
				t.Fatalf("expected Unary, got %T", expr)
			}

			if unary.Op != tt.op {
				t.Errorf("wrong op: expected %v, got %v", tt.op, unary.Op)
			}

			inner := unary.Expr.(cabs.Variable)
			if inner.Name != "x" {
				t.Errorf("expected inner to be variable 'x', got %q", inner.Name)
			}
		})
	}
}

func TestLiterals(t *testing.T) {
	tests := []struct {
		input    string
		expected cabs.Expr
	}{
		{"int f() { return 42; }", cabs.Constant{Value: 42}},
		{"int f() { return 0x10; }", cabs.Constant{Value: 16}},
		{"int f() { return 010; }", cabs.Constant{Value: 8}},
		{"int f() { return 7u; }", cabs.Constant{Value: 7}},
		{"int f() { return 'a'; }", cabs.CharLit{Value: 'a'}},
		{"int f() { return '\\n'; }", cabs.CharLit{Value: '\n'}},
		{"int f() { return '\\x41'; }", cabs.CharLit{Value: 'A'}},
		{"int f() { return '\\0'; }", cabs.CharLit{Value: 0}},
		{"int f() { return 2.5; }", cabs.FloatLit{Value: 2.5}},
		{"int f() { return 1.5f; }", cabs.FloatLit{Value: 1.5}},
		{`int f() { return "hi"; }`, cabs.StringLit{Value: "hi"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			expr := returnExpr(t, tt.input)
			// positions differ, compare kind and payload through the printer
			if fmt.Sprintf("%T", expr) != fmt.Sprintf("%T", tt.expected) {
				t.Fatalf("expected %T, got %T", tt.expected, expr)
			}
			if cabs.ExprString(expr) != cabs.ExprString(tt.expected) {
				t.Errorf("expected %s, got %s", cabs.ExprString(tt.expected), cabs.ExprString(expr))
			}
		})
	}
}

func TestAssignmentOperators(t *testing.T) {
	tests := []struct {
		input string
		op    cabs.BinaryOp
	}{
		{"int f() { return x = 1; }", cabs.OpAssign},
		{"int f() { return x += 1; }", cabs.OpAdd},
		{"int f() { return x -= 1; }", cabs.OpSub},
		{"int f() { return x *= 2; }", cabs.OpMul},
		{"int f() { return x /= 2; }", cabs.OpDiv},
		{"int f() { return x %= 3; }", cabs.OpMod},
		{"int f() { return x &= 1; }", cabs.OpBitAnd},
		{"int f() { return x |= 1; }", cabs.OpBitOr},
		{"int f() { return x ^= 1; }", cabs.OpBitXor},
		{"int f() { return x <<= 1; }", cabs.OpShl},
		{"int f() { return x >>= 1; }", cabs.OpShr},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			expr := returnExpr(t, tt.input)
			assign, ok := expr.(cabs.Assign)
			if !ok {
				t.Fatalf("expected Assign, got %T", expr)
			}

			if assign.Op != tt.op {
				t.Errorf("wrong op: expected %v, got %v", tt.op, assign.Op)
			}

			left := assign.Left.(cabs.Variable)
			if left.Name != "x" {
				t.Errorf("expected left to be variable 'x', got %q", left.Name)
			}
		})
	}
}

func TestFunctionCall(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		funcName string
		argCount int
	}{
		{"no args", "int f() { return foo(); }", "foo", 0},
		{"one arg", "int f() { return bar(1); }", "bar", 1},
		{"two args", "int f() { return baz(1, 2); }", "baz", 2},
		{"nested call", "int f() { return qux(a(1), b[2], 3); }", "qux", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr := returnExpr(t, tt.input)
			call, ok := expr.(cabs.Call)
			if !ok {
				t.Fatalf("expected Call, got %T", expr)
			}

			fn := call.Func.(cabs.Variable)
			if fn.Name != tt.funcName {
				t.Errorf("expected function name %q, got %q", tt.funcName, fn.Name)
			}

			if len(call.Args) != tt.argCount {
				t.Errorf("expected %d args, got %d", tt.argCount, len(call.Args))
			}
		})
	}
}

func TestArraySubscript(t *testing.T) {
	expr := returnExpr(t, "int f() { return arr[5]; }")
	idx, ok := expr.(cabs.Index)
	if !ok {
		t.Fatalf("expected Index, got %T", expr)
	}

	arr := idx.Array.(cabs.Variable)
	if arr.Name != "arr" {
		t.Errorf("expected array name %q, got %q", "arr", arr.Name)
	}

	index := idx.Index.(cabs.Constant)
	if index.Value != 5 {
		t.Errorf("expected index %d, got %d", 5, index.Value)
	}
}

func TestMemberAccess(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		structName string
		memberName string
		arrow      bool
	}{
		{"dot", "int f() { return s.x; }", "s", "x", false},
		{"arrow", "int f() { return p->y; }", "p", "y", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr := returnExpr(t, tt.input)
			member, ok := expr.(cabs.Member)
			if !ok {
				t.Fatalf("expected Member, got %T", expr)
			}

			varExpr := member.Expr.(cabs.Variable)
			if varExpr.Name != tt.structName {
				t.Errorf("expected struct name %q, got %q", tt.structName, varExpr.Name)
			}

			if member.Name != tt.memberName {
				t.Errorf("expected member name %q, got %q", tt.memberName, member.Name)
			}

			if member.Arrow != tt.arrow {
				t.Errorf("expected arrow=%v, got %v", tt.arrow, member.Arrow)
			}
		})
	}
}

func TestCastAndSizeof(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"int f() { return (char)x; }", "(char)x"},
		{"int f() { return (unsigned long *)p; }", "(unsigned long *)p"},
		{"int f() { return sizeof(int); }", "sizeof(int)"},
		{"int f() { return sizeof(struct s *); }", "sizeof(struct s *)"},
		{"int f() { return sizeof x; }", "sizeof x"},
		{"int f() { return sizeof(x); }", "sizeof (x)"},
		{"int f() { return (int (*)(char))g; }", "(int (*)(char))g"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			actual := cabs.ExprString(returnExpr(t, tt.input))
			if actual != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, actual)
			}
		})
	}
}

func TestDeclarators(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"int x;", "int x;"},
		{"int *p, **q;", "int *p, **q;"},
		{"char buf[16];", "char buf[16];"},
		{"int (*fp)(int, char *);", "int (*fp)(int, char *);"},
		{"int *arr[3];", "int *arr[3];"},
		{"int (*parr)[3];", "int (*parr)[3];"},
		{"int m[2][3];", "int m[2][3];"},
		{"static unsigned long long n = 1;", "static unsigned long long n = 1;"},
		{"int v[] = {1, 2, 3};", "int v[] = {1, 2, 3};"},
		{"const int c = 0;", "const int c = 0;"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			l := lexer.New(tt.input)
			p := New(l)
			prog := p.ParseProgram()
			if len(p.Errors()) > 0 {
				t.Fatalf("parser errors: %v", p.Errors())
			}

			var sb strings.Builder
			cabs.NewPrinter(&sb).PrintProgram(prog)
			if actual := strings.TrimSpace(sb.String()); actual != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, actual)
			}
		})
	}
}

func TestStructAndEnumSpecifiers(t *testing.T) {
	input := `struct point { int x, y; struct point *next; };
union u { int i; double d; };
enum color { RED, GREEN = 5, BLUE, };
struct point origin;`

	l := lexer.New(input)
	p := New(l)
	prog := p.ParseProgram()
	if len(p.Errors()) > 0 {
		t.Fatalf("parser errors: %v", p.Errors())
	}
	if len(prog.Definitions) != 4 {
		t.Fatalf("expected 4 definitions, got %d", len(prog.Definitions))
	}

	point := prog.Definitions[0].(cabs.Declaration).Specifiers[0].(cabs.StructSpec)
	if point.Name != "point" || point.Union || len(point.Fields) != 2 {
		t.Errorf("unexpected struct spec %+v", point)
	}
	if len(point.Fields[0].Declarators) != 2 {
		t.Errorf("expected x, y in one field declaration, got %d declarators", len(point.Fields[0].Declarators))
	}

	u := prog.Definitions[1].(cabs.Declaration).Specifiers[0].(cabs.StructSpec)
	if !u.Union {
		t.Error("expected union specifier")
	}

	color := prog.Definitions[2].(cabs.Declaration).Specifiers[0].(cabs.EnumSpec)
	if len(color.Values) != 3 || color.Values[1].Value == nil {
		t.Errorf("unexpected enum spec %+v", color)
	}

	ref := prog.Definitions[3].(cabs.Declaration).Specifiers[0].(cabs.StructSpec)
	if ref.Fields != nil {
		t.Error("struct reference without body should have nil fields")
	}
}

func TestTypedefNames(t *testing.T) {
	// T is a type until the inner block redeclares it as a variable
	input := `typedef int T;
int f() {
	T a;
	T * b;
	{
		int T;
		T * a;
	}
}`
	funDef := parseFunc(t, input)

	if _, ok := funDef.Body.Items[0].(cabs.Declaration); !ok {
		t.Errorf("T a: expected Declaration, got %T", funDef.Body.Items[0])
	}
	if _, ok := funDef.Body.Items[1].(cabs.Declaration); !ok {
		t.Errorf("T * b: expected Declaration, got %T", funDef.Body.Items[1])
	}

	inner := funDef.Body.Items[2].(cabs.Block)
	stmt, ok := inner.Items[1].(cabs.ExprStmt)
	if !ok {
		t.Fatalf("T * a: expected ExprStmt, got %T", inner.Items[1])
	}
	if _, ok := stmt.Expr.(cabs.Binary); !ok {
		t.Errorf("T * a: expected multiplication, got %T", stmt.Expr)
	}
}

func TestStatements(t *testing.T) {
	input := `int f(int n) {
	int i;
	for (i = 0; i < n; i++) continue;
	for (;;) break;
	do n--; while (n);
	switch (n) {
	case 1: return 1;
	default: break;
	}
	;
	return 0;
}`
	funDef := parseFunc(t, input)

	kinds := []string{}
	for _, item := range funDef.Body.Items {
		kinds = append(kinds, fmt.Sprintf("%T", item))
	}
	expected := []string{
		"cabs.Declaration", "cabs.For", "cabs.For", "cabs.DoWhile",
		"cabs.Switch", "cabs.Empty", "cabs.Return",
	}
	if strings.Join(kinds, " ") != strings.Join(expected, " ") {
		t.Fatalf("expected %v, got %v", expected, kinds)
	}

	empty := funDef.Body.Items[2].(cabs.For)
	if empty.Init != nil || empty.Cond != nil || empty.Step != nil {
		t.Error("for (;;) should have no init, cond or step")
	}

	sw := funDef.Body.Items[4].(cabs.Switch)
	body := sw.Body.(cabs.Block)
	if _, ok := body.Items[0].(cabs.Case); !ok {
		t.Errorf("expected Case, got %T", body.Items[0])
	}
	if _, ok := body.Items[1].(cabs.Default); !ok {
		t.Errorf("expected Default, got %T", body.Items[1])
	}
}

func TestPositions(t *testing.T) {
	funDef := parseFunc(t, "int main() {\n  return x;\n}")
	ret := funDef.Body.Items[0].(cabs.Return)
	if ret.Position() != (cabs.Pos{Line: 2, Column: 3}) {
		t.Errorf("return position: got %+v", ret.Position())
	}
	if ret.Expr.Position() != (cabs.Pos{Line: 2, Column: 10}) {
		t.Errorf("variable position: got %+v", ret.Expr.Position())
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"missing semicolon", "int f() { return 1 }", "expected ;"},
		{"missing declarator", "int f() { int = 3; }", "expected identifier in declarator"},
		{"missing expression", "int f() { return +; }", "expected expression"},
		{"unterminated block", "int f() { return 1;", "expected }"},
		{"body on non-function", "int x { }", "unexpected '{'"},
		{"for declaration", "int f() { for (int i = 0; i < 1; i++); }", "for-loop initializers"},
		{"bad specifier start", "return 1;", "expected declaration specifiers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := lexer.New(tt.input)
			p := New(l)
			p.ParseProgram()

			if len(p.Errors()) == 0 {
				t.Fatal("expected a parse error")
			}
			if !strings.Contains(p.Errors()[0], tt.want) {
				t.Errorf("expected error containing %q, got %q", tt.want, p.Errors()[0])
			}
		})
	}
}

func TestNestingLimit(t *testing.T) {
	input := "int f() { return " + strings.Repeat("(", 50) + "1" + strings.Repeat(")", 50) + "; }"

	p := New(lexer.New(input))
	p.SetMaxDepth(20)
	p.ParseProgram()
	if len(p.Errors()) == 0 || !strings.Contains(p.Errors()[0], "nesting deeper than 20") {
		t.Fatalf("expected nesting error, got %v", p.Errors())
	}

	p = New(lexer.New(input))
	p.ParseProgram()
	if len(p.Errors()) > 0 {
		t.Fatalf("default limit should accept 50 levels: %v", p.Errors())
	}
}

// exprString returns a string representation of an expression for testing
func exprString(e cabs.Expr) string {
	switch expr := e.(type) {
	case cabs.Constant:
		return fmt.Sprintf("%d", expr.Value)
	case cabs.Variable:
		return expr.Name
	case cabs.Binary:
		return fmt.Sprintf("(%s %s %s)", exprString(expr.Left), expr.Op.String(), exprString(expr.Right))
	case cabs.Unary:
		return fmt.Sprintf("(%s%s)", expr.Op.String(), exprString(expr.Expr))
	case cabs.Paren:
		return exprString(expr.Expr)
	case cabs.Conditional:
		return fmt.Sprintf("(%s ? %s : %s)", exprString(expr.Cond), exprString(expr.Then), exprString(expr.Else))
	default:
		return "?"
	}
}
