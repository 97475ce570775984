package lexer

import "testing"

type expectedToken struct {
	expectedType    TokenType
	expectedLiteral string
}

func checkTokens(t *testing.T, input string, tests []expectedToken) {
	t.Helper()
	l := New(input)

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q",
				i, tt.expectedType, tok.Type)
		}

		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestNextToken(t *testing.T) {
	checkTokens(t, `int main() { int a = 0; a++; }`, []expectedToken{
		{TokenInt_, "int"},
		{TokenIdent, "main"},
		{TokenLParen, "("},
		{TokenRParen, ")"},
		{TokenLBrace, "{"},
		{TokenInt_, "int"},
		{TokenIdent, "a"},
		{TokenAssign, "="},
		{TokenInt, "0"},
		{TokenSemicolon, ";"},
		{TokenIdent, "a"},
		{TokenIncrement, "++"},
		{TokenSemicolon, ";"},
		{TokenRBrace, "}"},
		{TokenEOF, ""},
	})
}

func TestOperators(t *testing.T) {
	input := `+ - * / % = == != < <= > >= && || ! & | ^ ~ << >> ? : -> . ...`
	checkTokens(t, input, []expectedToken{
		{TokenPlus, "+"},
		{TokenMinus, "-"},
		{TokenStar, "*"},
		{TokenSlash, "/"},
		{TokenPercent, "%"},
		{TokenAssign, "="},
		{TokenEq, "=="},
		{TokenNe, "!="},
		{TokenLt, "<"},
		{TokenLe, "<="},
		{TokenGt, ">"},
		{TokenGe, ">="},
		{TokenAnd, "&&"},
		{TokenOr, "||"},
		{TokenNot, "!"},
		{TokenAmpersand, "&"},
		{TokenPipe, "|"},
		{TokenCaret, "^"},
		{TokenTilde, "~"},
		{TokenShl, "<<"},
		{TokenShr, ">>"},
		{TokenQuestion, "?"},
		{TokenColon, ":"},
		{TokenArrow, "->"},
		{TokenDot, "."},
		{TokenEllipsis, "..."},
		{TokenEOF, ""},
	})
}

func TestAssignmentOperators(t *testing.T) {
	input := `+= -= *= /= %= &= |= ^= <<= >>= ++ --`
	checkTokens(t, input, []expectedToken{
		{TokenPlusAssign, "+="},
		{TokenMinusAssign, "-="},
		{TokenStarAssign, "*="},
		{TokenSlashAssign, "/="},
		{TokenPercentAssign, "%="},
		{TokenAndAssign, "&="},
		{TokenOrAssign, "|="},
		{TokenXorAssign, "^="},
		{TokenShlAssign, "<<="},
		{TokenShrAssign, ">>="},
		{TokenIncrement, "++"},
		{TokenDecrement, "--"},
		{TokenEOF, ""},
	})
}

func TestLiterals(t *testing.T) {
	input := `42 0x1F 10u 3.14 .5 1e10 2.0f 'a' '\n' "hi\"there"`
	checkTokens(t, input, []expectedToken{
		{TokenInt, "42"},
		{TokenInt, "0x1F"},
		{TokenInt, "10u"},
		{TokenFloatLit, "3.14"},
		{TokenFloatLit, ".5"},
		{TokenFloatLit, "1e10"},
		{TokenFloatLit, "2.0f"},
		{TokenCharLit, "a"},
		{TokenCharLit, `\n`},
		{TokenString, `hi\"there`},
		{TokenEOF, ""},
	})
}

func TestComments(t *testing.T) {
	input := `int // comment
main /* block
comment */ ()`
	checkTokens(t, input, []expectedToken{
		{TokenInt_, "int"},
		{TokenIdent, "main"},
		{TokenLParen, "("},
		{TokenRParen, ")"},
		{TokenEOF, ""},
	})
}

func TestLineMarkersSkipped(t *testing.T) {
	input := "# 1 \"test.c\"\nint x;\n# 3 \"test.c\"\n"
	checkTokens(t, input, []expectedToken{
		{TokenInt_, "int"},
		{TokenIdent, "x"},
		{TokenSemicolon, ";"},
		{TokenEOF, ""},
	})
}

func TestPositions(t *testing.T) {
	l := New("int\n  x;")
	tests := []struct {
		line, column int
	}{
		{1, 1},
		{2, 3},
		{2, 4},
	}
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Line != tt.line || tok.Column != tt.column {
			t.Errorf("tests[%d] - position wrong. expected=%d:%d, got=%d:%d",
				i, tt.line, tt.column, tok.Line, tok.Column)
		}
	}
}

func TestIllegalToken(t *testing.T) {
	checkTokens(t, "@", []expectedToken{
		{TokenIllegal, "@"},
		{TokenEOF, ""},
	})
}

func TestLookupIdent(t *testing.T) {
	if LookupIdent("unsigned") != TokenUnsigned {
		t.Error("unsigned should be a keyword")
	}
	if LookupIdent("main") != TokenIdent {
		t.Error("main should be an identifier")
	}
}

func TestTokenClasses(t *testing.T) {
	tests := []struct {
		tok                              TokenType
		storage, qualifier, typ, assigns bool
	}{
		{TokenStatic, true, false, false, false},
		{TokenTypedef, true, false, false, false},
		{TokenConst, false, true, false, false},
		{TokenUnsigned, false, false, true, false},
		{TokenStruct, false, false, true, false},
		{TokenAssign, false, false, false, true},
		{TokenShrAssign, false, false, false, true},
		{TokenEq, false, false, false, false},
		{TokenIdent, false, false, false, false},
	}
	for _, tt := range tests {
		if got := tt.tok.IsStorageClass(); got != tt.storage {
			t.Errorf("%s.IsStorageClass() = %v", tt.tok, got)
		}
		if got := tt.tok.IsTypeQualifier(); got != tt.qualifier {
			t.Errorf("%s.IsTypeQualifier() = %v", tt.tok, got)
		}
		if got := tt.tok.IsTypeKeyword(); got != tt.typ {
			t.Errorf("%s.IsTypeKeyword() = %v", tt.tok, got)
		}
		if got := tt.tok.IsAssignment(); got != tt.assigns {
			t.Errorf("%s.IsAssignment() = %v", tt.tok, got)
		}
	}
}
