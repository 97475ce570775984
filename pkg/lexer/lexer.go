package lexer

import (
	"unicode"
)

// Lexer tokenizes C source code. Token literals are slices of the input
// string, so identifiers and constants share the source buffer.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // next reading position
	ch      byte // current character
	line    int
	column  int
}

// New creates a new Lexer for the given input
func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
	if l.readPos >= len(l.input) {
		l.ch = 0 // EOF
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++
	l.column++
}

func (l *Lexer) peekChar() byte {
	return l.peekAt(0)
}

func (l *Lexer) peekAt(n int) byte {
	if l.readPos+n >= len(l.input) {
		return 0
	}
	return l.input[l.readPos+n]
}

// punctuators lists multi-character operators, longest first within a
// leading character, so the first prefix match wins.
var punctuators = map[byte][]struct {
	text string
	typ  TokenType
}{
	'+': {{"++", TokenIncrement}, {"+=", TokenPlusAssign}, {"+", TokenPlus}},
	'-': {{"->", TokenArrow}, {"--", TokenDecrement}, {"-=", TokenMinusAssign}, {"-", TokenMinus}},
	'*': {{"*=", TokenStarAssign}, {"*", TokenStar}},
	'/': {{"/=", TokenSlashAssign}, {"/", TokenSlash}},
	'%': {{"%=", TokenPercentAssign}, {"%", TokenPercent}},
	'=': {{"==", TokenEq}, {"=", TokenAssign}},
	'!': {{"!=", TokenNe}, {"!", TokenNot}},
	'<': {{"<<=", TokenShlAssign}, {"<<", TokenShl}, {"<=", TokenLe}, {"<", TokenLt}},
	'>': {{">>=", TokenShrAssign}, {">>", TokenShr}, {">=", TokenGe}, {">", TokenGt}},
	'&': {{"&&", TokenAnd}, {"&=", TokenAndAssign}, {"&", TokenAmpersand}},
	'|': {{"||", TokenOr}, {"|=", TokenOrAssign}, {"|", TokenPipe}},
	'^': {{"^=", TokenXorAssign}, {"^", TokenCaret}},
	'~': {{"~", TokenTilde}},
	'?': {{"?", TokenQuestion}},
	':': {{":", TokenColon}},
	'(': {{"(", TokenLParen}},
	')': {{")", TokenRParen}},
	'{': {{"{", TokenLBrace}},
	'}': {{"}", TokenRBrace}},
	'[': {{"[", TokenLBracket}},
	']': {{"]", TokenRBracket}},
	';': {{";", TokenSemicolon}},
	',': {{",", TokenComma}},
	'.': {{"...", TokenEllipsis}, {".", TokenDot}},
}

// NextToken returns the next token from the input
func (l *Lexer) NextToken() Token {
	l.skipTrivia()

	tok := Token{Line: l.line, Column: l.column}

	switch {
	case l.ch == 0:
		tok.Type = TokenEOF
		return tok
	case l.ch == '"':
		tok.Type = TokenString
		tok.Literal = l.readQuoted('"')
		return tok
	case l.ch == '\'':
		tok.Type = TokenCharLit
		tok.Literal = l.readQuoted('\'')
		return tok
	case isLetter(l.ch):
		tok.Literal = l.readIdentifier()
		tok.Type = LookupIdent(tok.Literal)
		return tok
	case isDigit(l.ch), l.ch == '.' && isDigit(l.peekChar()):
		tok.Type, tok.Literal = l.readNumber()
		return tok
	}

	for _, p := range punctuators[l.ch] {
		if l.hasPrefix(p.text) {
			tok.Type = p.typ
			tok.Literal = l.input[l.pos : l.pos+len(p.text)]
			for range p.text {
				l.readChar()
			}
			return tok
		}
	}

	tok.Type = TokenIllegal
	tok.Literal = l.input[l.pos : l.pos+1]
	l.readChar()
	return tok
}

func (l *Lexer) hasPrefix(s string) bool {
	return len(l.input)-l.pos >= len(s) && l.input[l.pos:l.pos+len(s)] == s
}

// skipTrivia skips whitespace, comments and preprocessor line markers
// (# 1 "file.c") left behind by cc -E.
func (l *Lexer) skipTrivia() {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' || l.ch == '\f' || l.ch == '\v':
			l.readChar()
		case l.ch == '/' && l.peekChar() == '/':
			l.skipLine()
		case l.ch == '/' && l.peekChar() == '*':
			l.readChar() // consume /
			l.readChar() // consume *
			for l.ch != 0 && !(l.ch == '*' && l.peekChar() == '/') {
				l.readChar()
			}
			if l.ch != 0 {
				l.readChar() // consume *
				l.readChar() // consume /
			}
		case l.ch == '#' && l.column == 1:
			l.skipLine()
		default:
			return
		}
	}
}

func (l *Lexer) skipLine() {
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
}

func (l *Lexer) readIdentifier() string {
	pos := l.pos
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[pos:l.pos]
}

// readNumber reads an integer or floating constant, including hex
// integers and integer/float suffixes (u, l, f).
func (l *Lexer) readNumber() (TokenType, string) {
	pos := l.pos
	typ := TokenInt
	if l.ch == '0' && (l.peekChar() == 'x' || l.peekChar() == 'X') {
		l.readChar()
		l.readChar()
		for isHexDigit(l.ch) {
			l.readChar()
		}
	} else {
		for isDigit(l.ch) {
			l.readChar()
		}
		if l.ch == '.' {
			typ = TokenFloatLit
			l.readChar()
			for isDigit(l.ch) {
				l.readChar()
			}
		}
		if l.ch == 'e' || l.ch == 'E' {
			next := l.peekChar()
			if isDigit(next) || ((next == '+' || next == '-') && isDigit(l.peekAt(1))) {
				typ = TokenFloatLit
				l.readChar()
				if l.ch == '+' || l.ch == '-' {
					l.readChar()
				}
				for isDigit(l.ch) {
					l.readChar()
				}
			}
		}
	}
	for l.ch == 'u' || l.ch == 'U' || l.ch == 'l' || l.ch == 'L' || (typ == TokenFloatLit && (l.ch == 'f' || l.ch == 'F')) {
		l.readChar()
	}
	return typ, l.input[pos:l.pos]
}

// readQuoted reads a string or character literal and returns its body
// without the quotes; escape sequences are left as written.
func (l *Lexer) readQuoted(quote byte) string {
	l.readChar() // consume opening quote
	pos := l.pos
	for l.ch != quote && l.ch != 0 && l.ch != '\n' {
		if l.ch == '\\' {
			l.readChar() // skip escape char
		}
		l.readChar()
	}
	str := l.input[pos:l.pos]
	if l.ch == quote {
		l.readChar() // consume closing quote
	}
	return str
}

func isLetter(ch byte) bool {
	return unicode.IsLetter(rune(ch)) || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || ('a' <= ch && ch <= 'f') || ('A' <= ch && ch <= 'F')
}
