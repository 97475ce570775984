// Package parser implements a recursive descent parser for C
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/raymyers/ralph-sema/pkg/cabs"
	"github.com/raymyers/ralph-sema/pkg/lexer"
)

// DefaultMaxDepth bounds statement, declarator and expression nesting
const DefaultMaxDepth = 1000

// identKind classifies an ordinary identifier for the parser's own lookups.
// C cannot be parsed without knowing which names are typedefs.
type identKind int

const (
	identVar identKind = iota
	identTypedef
	identEnumConst
)

// Parser parses C source code into a Cabs AST
type Parser struct {
	l         *lexer.Lexer
	curToken  lexer.Token
	peekToken lexer.Token
	errors    []string
	scopes    []map[string]identKind // innermost last
	depth     int
	maxDepth  int
}

// New creates a new Parser for the given lexer
func New(l *lexer.Lexer) *Parser {
	p := &Parser{
		l:        l,
		scopes:   []map[string]identKind{{}},
		maxDepth: DefaultMaxDepth,
	}
	// Read two tokens to initialize curToken and peekToken
	p.nextToken()
	p.nextToken()
	return p
}

// SetMaxDepth changes the nesting limit; n <= 0 restores the default
func (p *Parser) SetMaxDepth(n int) {
	if n <= 0 {
		n = DefaultMaxDepth
	}
	p.maxDepth = n
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

// Errors returns the list of parsing errors
func (p *Parser) Errors() []string {
	return p.errors
}

func (p *Parser) addError(msg string) {
	p.errors = append(p.errors, fmt.Sprintf("line %d, col %d: %s",
		p.curToken.Line, p.curToken.Column, msg))
}

func (p *Parser) failed() bool {
	return len(p.errors) > 0
}

func (p *Parser) curTokenIs(t lexer.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t lexer.TokenType) bool {
	return p.peekToken.Type == t
}

func (p *Parser) expect(t lexer.TokenType) bool {
	if p.curTokenIs(t) {
		p.nextToken()
		return true
	}
	p.addError(fmt.Sprintf("expected %s, got %s", t, p.curToken.Type))
	return false
}

func (p *Parser) pos() cabs.Pos {
	return cabs.Pos{Line: p.curToken.Line, Column: p.curToken.Column}
}

// enter counts one level of nesting; callers must defer p.leave()
func (p *Parser) enter() bool {
	if p.depth >= p.maxDepth {
		if !p.failed() {
			p.addError(fmt.Sprintf("nesting deeper than %d levels", p.maxDepth))
		}
		return false
	}
	p.depth++
	return true
}

func (p *Parser) leave() {
	p.depth--
}

func (p *Parser) pushScope() {
	p.scopes = append(p.scopes, map[string]identKind{})
}

func (p *Parser) popScope() {
	p.scopes = p.scopes[:len(p.scopes)-1]
}

func (p *Parser) declareIdent(name string, kind identKind) {
	if name != "" {
		p.scopes[len(p.scopes)-1][name] = kind
	}
}

func (p *Parser) lookupIdent(name string) (identKind, bool) {
	for i := len(p.scopes) - 1; i >= 0; i-- {
		if kind, ok := p.scopes[i][name]; ok {
			return kind, true
		}
	}
	return identVar, false
}

func (p *Parser) isTypedefName(name string) bool {
	kind, ok := p.lookupIdent(name)
	return ok && kind == identTypedef
}

// isTypeStart reports whether tok can begin a declaration or type name
func (p *Parser) isTypeStart(tok lexer.Token) bool {
	t := tok.Type
	if t.IsTypeKeyword() || t.IsStorageClass() || t.IsTypeQualifier() {
		return true
	}
	return t == lexer.TokenIdent && p.isTypedefName(tok.Literal)
}

// ParseProgram parses a whole translation unit, stopping at the first error
func (p *Parser) ParseProgram() *cabs.Program {
	prog := &cabs.Program{}
	for !p.curTokenIs(lexer.TokenEOF) {
		def := p.ParseDefinition()
		if def == nil || p.failed() {
			break
		}
		prog.Definitions = append(prog.Definitions, def)
	}
	return prog
}

// ParseDefinition parses a top-level declaration or function definition
func (p *Parser) ParseDefinition() cabs.Definition {
	pos := p.pos()
	specs := p.parseDeclSpecifiers(true)
	if p.failed() {
		return nil
	}

	if p.curTokenIs(lexer.TokenSemicolon) {
		p.nextToken()
		return cabs.Declaration{Pos: pos, Specifiers: specs}
	}

	decl := p.parseDeclarator(declNamed)
	if p.failed() {
		return nil
	}

	if p.curTokenIs(lexer.TokenLBrace) {
		fn := decl.FuncDeclarator()
		if fn == nil {
			p.addError(fmt.Sprintf("unexpected '{' after declarator %q", decl.Name()))
			return nil
		}
		return p.parseFunctionBody(pos, specs, decl, fn)
	}

	d := p.parseDeclarationRest(pos, specs, decl)
	if p.failed() {
		return nil
	}
	return d
}

func (p *Parser) parseFunctionBody(pos cabs.Pos, specs []cabs.Specifier, decl *cabs.Declarator, fn *cabs.FuncDecl) cabs.Definition {
	p.declareIdent(decl.Name(), identVar)

	p.pushScope()
	defer p.popScope()
	for _, param := range fn.Params {
		p.declareIdent(param.Decl.Name(), identVar)
	}

	body := p.parseBlock()
	if p.failed() {
		return nil
	}
	return cabs.FunDef{Pos: pos, Specifiers: specs, Declarator: decl, Body: body}
}

// parseDeclarationRest finishes a declaration whose first declarator has
// already been read
func (p *Parser) parseDeclarationRest(pos cabs.Pos, specs []cabs.Specifier, first *cabs.Declarator) cabs.Declaration {
	kind := identVar
	for _, s := range specs {
		if sc, ok := s.(cabs.StorageClass); ok && sc.Kind == cabs.StorageTypedef {
			kind = identTypedef
		}
	}

	d := cabs.Declaration{Pos: pos, Specifiers: specs}
	decl := first
	for {
		p.declareIdent(decl.Name(), kind)
		init := &cabs.InitDeclarator{Pos: decl.Pos, Decl: decl}
		if p.curTokenIs(lexer.TokenAssign) {
			p.nextToken()
			init.Init = p.parseInitializer()
			if p.failed() {
				return d
			}
		}
		d.Inits = append(d.Inits, init)

		if !p.curTokenIs(lexer.TokenComma) {
			break
		}
		p.nextToken()
		decl = p.parseDeclarator(declNamed)
		if p.failed() {
			return d
		}
	}
	p.expect(lexer.TokenSemicolon)
	return d
}

func (p *Parser) parseDeclaration() cabs.BlockItem {
	pos := p.pos()
	specs := p.parseDeclSpecifiers(true)
	if p.failed() {
		return nil
	}
	if p.curTokenIs(lexer.TokenSemicolon) {
		p.nextToken()
		return cabs.Declaration{Pos: pos, Specifiers: specs}
	}
	decl := p.parseDeclarator(declNamed)
	if p.failed() {
		return nil
	}
	d := p.parseDeclarationRest(pos, specs, decl)
	if p.failed() {
		return nil
	}
	return d
}

func (p *Parser) parseInitializer() *cabs.Initializer {
	pos := p.pos()
	if !p.curTokenIs(lexer.TokenLBrace) {
		expr := p.parseAssignment()
		if p.failed() {
			return nil
		}
		return &cabs.Initializer{Pos: pos, Expr: expr}
	}

	if !p.enter() {
		return nil
	}
	defer p.leave()

	p.nextToken() // consume '{'
	init := &cabs.Initializer{Pos: pos, List: []*cabs.Initializer{}}
	for !p.curTokenIs(lexer.TokenRBrace) {
		item := p.parseInitializer()
		if p.failed() {
			return nil
		}
		init.List = append(init.List, item)
		if !p.curTokenIs(lexer.TokenComma) {
			break
		}
		p.nextToken()
	}
	if !p.expect(lexer.TokenRBrace) {
		return nil
	}
	return init
}

// parseDeclSpecifiers reads specifiers until the declarator starts.
// Storage classes are only accepted when allowStorage is set.
func (p *Parser) parseDeclSpecifiers(allowStorage bool) []cabs.Specifier {
	var specs []cabs.Specifier
	sawType := false

	for !p.failed() {
		pos := p.pos()
		t := p.curToken.Type
		switch {
		case t.IsStorageClass():
			if !allowStorage {
				p.addError(fmt.Sprintf("storage class %s not allowed here", t))
				return nil
			}
			specs = append(specs, cabs.StorageClass{Pos: pos, Kind: storageKinds[t]})
			p.nextToken()
		case t.IsTypeQualifier():
			specs = append(specs, cabs.TypeQualifier{Pos: pos, Kind: qualifierKinds[t]})
			p.nextToken()
		case t == lexer.TokenStruct || t == lexer.TokenUnion:
			specs = append(specs, p.parseStructSpec())
			sawType = true
		case t == lexer.TokenEnum:
			specs = append(specs, p.parseEnumSpec())
			sawType = true
		case t.IsTypeKeyword():
			specs = append(specs, cabs.TypeSpec{Pos: pos, Kind: typeSpecKinds[t]})
			p.nextToken()
			sawType = true
		case t == lexer.TokenIdent && !sawType && p.isTypedefName(p.curToken.Literal):
			specs = append(specs, cabs.TypedefName{Pos: pos, Name: p.curToken.Literal})
			p.nextToken()
			sawType = true
		default:
			if len(specs) == 0 {
				p.addError(fmt.Sprintf("expected declaration specifiers, got %s", t))
			}
			return specs
		}
	}
	return nil
}

var storageKinds = map[lexer.TokenType]cabs.StorageClassKind{
	lexer.TokenTypedef:  cabs.StorageTypedef,
	lexer.TokenExtern:   cabs.StorageExtern,
	lexer.TokenStatic:   cabs.StorageStatic,
	lexer.TokenAuto:     cabs.StorageAuto,
	lexer.TokenRegister: cabs.StorageRegister,
}

var qualifierKinds = map[lexer.TokenType]cabs.QualifierKind{
	lexer.TokenConst:    cabs.QualConst,
	lexer.TokenVolatile: cabs.QualVolatile,
	lexer.TokenRestrict: cabs.QualRestrict,
}

var typeSpecKinds = map[lexer.TokenType]cabs.TypeSpecKind{
	lexer.TokenVoid:     cabs.SpecVoid,
	lexer.TokenChar:     cabs.SpecChar,
	lexer.TokenShort:    cabs.SpecShort,
	lexer.TokenInt_:     cabs.SpecInt,
	lexer.TokenLong:     cabs.SpecLong,
	lexer.TokenFloat:    cabs.SpecFloat,
	lexer.TokenDouble:   cabs.SpecDouble,
	lexer.TokenSigned:   cabs.SpecSigned,
	lexer.TokenUnsigned: cabs.SpecUnsigned,
}

func (p *Parser) parseStructSpec() cabs.Specifier {
	spec := cabs.StructSpec{Pos: p.pos(), Union: p.curTokenIs(lexer.TokenUnion)}
	p.nextToken() // consume 'struct' / 'union'

	if p.curTokenIs(lexer.TokenIdent) {
		spec.Name = p.curToken.Literal
		p.nextToken()
	}
	if !p.curTokenIs(lexer.TokenLBrace) {
		if spec.Name == "" {
			p.addError(fmt.Sprintf("expected struct name or '{', got %s", p.curToken.Type))
		}
		return spec
	}

	if !p.enter() {
		return spec
	}
	defer p.leave()

	p.nextToken() // consume '{'
	spec.Fields = []*cabs.FieldDecl{}
	for !p.curTokenIs(lexer.TokenRBrace) && !p.failed() {
		field := &cabs.FieldDecl{Pos: p.pos()}
		field.Specifiers = p.parseDeclSpecifiers(false)
		if p.failed() {
			return spec
		}
		for {
			decl := p.parseDeclarator(declNamed)
			if p.failed() {
				return spec
			}
			field.Declarators = append(field.Declarators, decl)
			if !p.curTokenIs(lexer.TokenComma) {
				break
			}
			p.nextToken()
		}
		if !p.expect(lexer.TokenSemicolon) {
			return spec
		}
		spec.Fields = append(spec.Fields, field)
	}
	p.expect(lexer.TokenRBrace)
	return spec
}

func (p *Parser) parseEnumSpec() cabs.Specifier {
	spec := cabs.EnumSpec{Pos: p.pos()}
	p.nextToken() // consume 'enum'

	if p.curTokenIs(lexer.TokenIdent) {
		spec.Name = p.curToken.Literal
		p.nextToken()
	}
	if !p.curTokenIs(lexer.TokenLBrace) {
		if spec.Name == "" {
			p.addError(fmt.Sprintf("expected enum name or '{', got %s", p.curToken.Type))
		}
		return spec
	}

	p.nextToken() // consume '{'
	spec.Values = []*cabs.Enumerator{}
	for !p.curTokenIs(lexer.TokenRBrace) {
		if !p.curTokenIs(lexer.TokenIdent) {
			p.addError(fmt.Sprintf("expected enumerator name, got %s", p.curToken.Type))
			return spec
		}
		e := &cabs.Enumerator{Pos: p.pos(), Name: p.curToken.Literal}
		p.nextToken()
		if p.curTokenIs(lexer.TokenAssign) {
			p.nextToken()
			e.Value = p.parseConditional()
			if p.failed() {
				return spec
			}
		}
		p.declareIdent(e.Name, identEnumConst)
		spec.Values = append(spec.Values, e)
		if !p.curTokenIs(lexer.TokenComma) {
			break
		}
		p.nextToken()
	}
	p.expect(lexer.TokenRBrace)
	return spec
}

// declMode says whether a declarator must, may or must not carry a name
type declMode int

const (
	declNamed declMode = iota
	declAbstract
	declEither
)

func (p *Parser) parseDeclarator(mode declMode) *cabs.Declarator {
	if !p.enter() {
		return nil
	}
	defer p.leave()

	d := &cabs.Declarator{Pos: p.pos()}
	for p.curTokenIs(lexer.TokenStar) {
		d.Pointers++
		p.nextToken()
		for p.curToken.Type.IsTypeQualifier() {
			p.nextToken()
		}
	}

	var direct cabs.DirectDeclarator
	switch {
	case p.curTokenIs(lexer.TokenIdent) && mode != declAbstract:
		direct = &cabs.IdentDecl{Pos: p.pos(), Name: p.curToken.Literal}
		p.nextToken()
	case p.curTokenIs(lexer.TokenLParen) && p.startsNestedDeclarator(mode):
		pos := p.pos()
		p.nextToken() // consume '('
		inner := p.parseDeclarator(mode)
		if p.failed() {
			return nil
		}
		if !p.expect(lexer.TokenRParen) {
			return nil
		}
		direct = &cabs.ParenDecl{Pos: pos, Inner: inner}
	case mode == declNamed:
		p.addError(fmt.Sprintf("expected identifier in declarator, got %s", p.curToken.Type))
		return nil
	}

	for !p.failed() {
		pos := p.pos()
		switch {
		case p.curTokenIs(lexer.TokenLBracket):
			p.nextToken()
			arr := &cabs.ArrayDecl{Pos: pos, Inner: direct}
			if !p.curTokenIs(lexer.TokenRBracket) {
				arr.Size = p.parseAssignment()
				if p.failed() {
					return nil
				}
			}
			if !p.expect(lexer.TokenRBracket) {
				return nil
			}
			direct = arr
		case p.curTokenIs(lexer.TokenLParen):
			fn := p.parseParams(pos, direct)
			if fn == nil {
				return nil
			}
			direct = fn
		default:
			d.Direct = direct
			return d
		}
	}
	return nil
}

// startsNestedDeclarator decides whether '(' opens a parenthesized
// declarator rather than a parameter list
func (p *Parser) startsNestedDeclarator(mode declMode) bool {
	switch p.peekToken.Type {
	case lexer.TokenStar, lexer.TokenLBracket, lexer.TokenLParen:
		return true
	case lexer.TokenIdent:
		return mode != declAbstract && !p.isTypedefName(p.peekToken.Literal)
	}
	return false
}

func (p *Parser) parseParams(pos cabs.Pos, inner cabs.DirectDeclarator) *cabs.FuncDecl {
	p.nextToken() // consume '('
	fn := &cabs.FuncDecl{Pos: pos, Inner: inner}

	p.pushScope()
	defer p.popScope()

	for !p.curTokenIs(lexer.TokenRParen) {
		if p.curTokenIs(lexer.TokenEllipsis) {
			p.nextToken()
			fn.Variadic = true
			break
		}
		param := &cabs.ParamDecl{Pos: p.pos()}
		param.Specifiers = p.parseDeclSpecifiers(true)
		if p.failed() {
			return nil
		}
		if !p.curTokenIs(lexer.TokenComma) && !p.curTokenIs(lexer.TokenRParen) {
			param.Decl = p.parseDeclarator(declEither)
			if p.failed() {
				return nil
			}
			p.declareIdent(param.Decl.Name(), identVar)
		}
		fn.Params = append(fn.Params, param)
		if !p.curTokenIs(lexer.TokenComma) {
			break
		}
		p.nextToken()
	}
	if !p.expect(lexer.TokenRParen) {
		return nil
	}
	return fn
}

func (p *Parser) parseTypeName() *cabs.TypeName {
	tn := &cabs.TypeName{Pos: p.pos()}
	tn.Specifiers = p.parseDeclSpecifiers(false)
	if p.failed() {
		return nil
	}
	if !p.curTokenIs(lexer.TokenRParen) {
		tn.Decl = p.parseDeclarator(declAbstract)
		if p.failed() {
			return nil
		}
	}
	return tn
}

func (p *Parser) parseBlock() *cabs.Block {
	block := &cabs.Block{Pos: p.pos(), Items: []cabs.BlockItem{}}

	if !p.expect(lexer.TokenLBrace) {
		return nil
	}

	p.pushScope()
	defer p.popScope()

	for !p.curTokenIs(lexer.TokenRBrace) && !p.curTokenIs(lexer.TokenEOF) {
		var item cabs.BlockItem
		if p.isTypeStart(p.curToken) && !p.peekTokenIs(lexer.TokenColon) {
			item = p.parseDeclaration()
		} else {
			item = p.parseStatement()
		}
		if p.failed() {
			return nil
		}
		block.Items = append(block.Items, item)
	}

	if !p.expect(lexer.TokenRBrace) {
		return nil
	}
	return block
}

func (p *Parser) parseStatement() cabs.Stmt {
	if !p.enter() {
		return nil
	}
	defer p.leave()

	pos := p.pos()
	switch p.curToken.Type {
	case lexer.TokenLBrace:
		block := p.parseBlock()
		if block == nil {
			return nil
		}
		return *block
	case lexer.TokenSemicolon:
		p.nextToken()
		return cabs.Empty{Pos: pos}
	case lexer.TokenReturn:
		return p.parseReturnStatement()
	case lexer.TokenIf:
		return p.parseIfStatement()
	case lexer.TokenSwitch:
		p.nextToken()
		cond, body := p.parseCondAndBody()
		if p.failed() {
			return nil
		}
		return cabs.Switch{Pos: pos, Cond: cond, Body: body}
	case lexer.TokenWhile:
		p.nextToken()
		cond, body := p.parseCondAndBody()
		if p.failed() {
			return nil
		}
		return cabs.While{Pos: pos, Cond: cond, Body: body}
	case lexer.TokenDo:
		return p.parseDoWhileStatement()
	case lexer.TokenFor:
		return p.parseForStatement()
	case lexer.TokenGoto:
		p.nextToken()
		if !p.curTokenIs(lexer.TokenIdent) {
			p.addError(fmt.Sprintf("expected label after goto, got %s", p.curToken.Type))
			return nil
		}
		label := p.curToken.Literal
		p.nextToken()
		if !p.expect(lexer.TokenSemicolon) {
			return nil
		}
		return cabs.Goto{Pos: pos, Label: label}
	case lexer.TokenBreak:
		p.nextToken()
		if !p.expect(lexer.TokenSemicolon) {
			return nil
		}
		return cabs.Break{Pos: pos}
	case lexer.TokenContinue:
		p.nextToken()
		if !p.expect(lexer.TokenSemicolon) {
			return nil
		}
		return cabs.Continue{Pos: pos}
	case lexer.TokenCase:
		p.nextToken()
		expr := p.parseConditional()
		if p.failed() || !p.expect(lexer.TokenColon) {
			return nil
		}
		stmt := p.parseStatement()
		if p.failed() {
			return nil
		}
		return cabs.Case{Pos: pos, Expr: expr, Stmt: stmt}
	case lexer.TokenDefault:
		p.nextToken()
		if !p.expect(lexer.TokenColon) {
			return nil
		}
		stmt := p.parseStatement()
		if p.failed() {
			return nil
		}
		return cabs.Default{Pos: pos, Stmt: stmt}
	case lexer.TokenIdent:
		if p.peekTokenIs(lexer.TokenColon) {
			label := p.curToken.Literal
			p.nextToken() // consume label
			p.nextToken() // consume ':'
			stmt := p.parseStatement()
			if p.failed() {
				return nil
			}
			return cabs.Labeled{Pos: pos, Label: label, Stmt: stmt}
		}
	}

	expr := p.parseExpression()
	if p.failed() || !p.expect(lexer.TokenSemicolon) {
		return nil
	}
	return cabs.ExprStmt{Pos: pos, Expr: expr}
}

// parseCondAndBody reads "(expr) stmt" as used by while and switch
func (p *Parser) parseCondAndBody() (cabs.Expr, cabs.Stmt) {
	if !p.expect(lexer.TokenLParen) {
		return nil, nil
	}
	cond := p.parseExpression()
	if p.failed() || !p.expect(lexer.TokenRParen) {
		return nil, nil
	}
	body := p.parseStatement()
	return cond, body
}

func (p *Parser) parseReturnStatement() cabs.Stmt {
	pos := p.pos()
	p.nextToken() // consume 'return'

	var expr cabs.Expr
	if !p.curTokenIs(lexer.TokenSemicolon) {
		expr = p.parseExpression()
		if p.failed() {
			return nil
		}
	}

	if !p.expect(lexer.TokenSemicolon) {
		return nil
	}

	return cabs.Return{Pos: pos, Expr: expr}
}

func (p *Parser) parseIfStatement() cabs.Stmt {
	pos := p.pos()
	p.nextToken() // consume 'if'

	cond, then := p.parseCondAndBody()
	if p.failed() {
		return nil
	}
	stmt := cabs.If{Pos: pos, Cond: cond, Then: then}
	if p.curTokenIs(lexer.TokenElse) {
		p.nextToken()
		stmt.Else = p.parseStatement()
		if p.failed() {
			return nil
		}
	}
	return stmt
}

func (p *Parser) parseDoWhileStatement() cabs.Stmt {
	pos := p.pos()
	p.nextToken() // consume 'do'

	body := p.parseStatement()
	if p.failed() || !p.expect(lexer.TokenWhile) || !p.expect(lexer.TokenLParen) {
		return nil
	}
	cond := p.parseExpression()
	if p.failed() || !p.expect(lexer.TokenRParen) || !p.expect(lexer.TokenSemicolon) {
		return nil
	}
	return cabs.DoWhile{Pos: pos, Body: body, Cond: cond}
}

func (p *Parser) parseForStatement() cabs.Stmt {
	pos := p.pos()
	p.nextToken() // consume 'for'
	if !p.expect(lexer.TokenLParen) {
		return nil
	}

	stmt := cabs.For{Pos: pos}
	if p.isTypeStart(p.curToken) {
		p.addError("declarations are not supported in for-loop initializers")
		return nil
	}
	stmt.Init = p.parseOptionalExpr(lexer.TokenSemicolon)
	if p.failed() {
		return nil
	}
	stmt.Cond = p.parseOptionalExpr(lexer.TokenSemicolon)
	if p.failed() {
		return nil
	}
	stmt.Step = p.parseOptionalExpr(lexer.TokenRParen)
	if p.failed() {
		return nil
	}
	stmt.Body = p.parseStatement()
	if p.failed() {
		return nil
	}
	return stmt
}

// parseOptionalExpr reads an expression unless the terminator comes
// first, then consumes the terminator
func (p *Parser) parseOptionalExpr(end lexer.TokenType) cabs.Expr {
	var expr cabs.Expr
	if !p.curTokenIs(end) {
		expr = p.parseExpression()
		if p.failed() {
			return nil
		}
	}
	p.expect(end)
	return expr
}

// Expressions

func (p *Parser) parseExpression() cabs.Expr {
	return p.parseAssignment()
}

var assignOps = map[lexer.TokenType]cabs.BinaryOp{
	lexer.TokenAssign:        cabs.OpAssign,
	lexer.TokenPlusAssign:    cabs.OpAdd,
	lexer.TokenMinusAssign:   cabs.OpSub,
	lexer.TokenStarAssign:    cabs.OpMul,
	lexer.TokenSlashAssign:   cabs.OpDiv,
	lexer.TokenPercentAssign: cabs.OpMod,
	lexer.TokenAndAssign:     cabs.OpBitAnd,
	lexer.TokenOrAssign:      cabs.OpBitOr,
	lexer.TokenXorAssign:     cabs.OpBitXor,
	lexer.TokenShlAssign:     cabs.OpShl,
	lexer.TokenShrAssign:     cabs.OpShr,
}

func (p *Parser) parseAssignment() cabs.Expr {
	if !p.enter() {
		return nil
	}
	defer p.leave()

	left := p.parseConditional()
	if p.failed() {
		return nil
	}
	if !p.curToken.Type.IsAssignment() {
		return left
	}
	pos := p.pos()
	op := assignOps[p.curToken.Type]
	p.nextToken()
	right := p.parseAssignment()
	if p.failed() {
		return nil
	}
	return cabs.Assign{Pos: pos, Op: op, Left: left, Right: right}
}

func (p *Parser) parseConditional() cabs.Expr {
	cond := p.parseBinary(1)
	if p.failed() || !p.curTokenIs(lexer.TokenQuestion) {
		return cond
	}
	pos := p.pos()
	p.nextToken() // consume '?'
	then := p.parseExpression()
	if p.failed() || !p.expect(lexer.TokenColon) {
		return nil
	}
	els := p.parseConditional()
	if p.failed() {
		return nil
	}
	return cabs.Conditional{Pos: pos, Cond: cond, Then: then, Else: els}
}

// binaryOps maps operator tokens to their operator and precedence
// (higher binds tighter)
var binaryOps = map[lexer.TokenType]struct {
	op   cabs.BinaryOp
	prec int
}{
	lexer.TokenOr:        {cabs.OpOr, 1},
	lexer.TokenAnd:       {cabs.OpAnd, 2},
	lexer.TokenPipe:      {cabs.OpBitOr, 3},
	lexer.TokenCaret:     {cabs.OpBitXor, 4},
	lexer.TokenAmpersand: {cabs.OpBitAnd, 5},
	lexer.TokenEq:        {cabs.OpEq, 6},
	lexer.TokenNe:        {cabs.OpNe, 6},
	lexer.TokenLt:        {cabs.OpLt, 7},
	lexer.TokenLe:        {cabs.OpLe, 7},
	lexer.TokenGt:        {cabs.OpGt, 7},
	lexer.TokenGe:        {cabs.OpGe, 7},
	lexer.TokenShl:       {cabs.OpShl, 8},
	lexer.TokenShr:       {cabs.OpShr, 8},
	lexer.TokenPlus:      {cabs.OpAdd, 9},
	lexer.TokenMinus:     {cabs.OpSub, 9},
	lexer.TokenStar:      {cabs.OpMul, 10},
	lexer.TokenSlash:     {cabs.OpDiv, 10},
	lexer.TokenPercent:   {cabs.OpMod, 10},
}

// parseBinary is precedence climbing over the left-associative binary layers
func (p *Parser) parseBinary(minPrec int) cabs.Expr {
	left := p.parseCast()
	for !p.failed() {
		info, ok := binaryOps[p.curToken.Type]
		if !ok || info.prec < minPrec {
			return left
		}
		pos := p.pos()
		p.nextToken()
		right := p.parseBinary(info.prec + 1)
		if p.failed() {
			return nil
		}
		left = cabs.Binary{Pos: pos, Op: info.op, Left: left, Right: right}
	}
	return nil
}

func (p *Parser) parseCast() cabs.Expr {
	if p.curTokenIs(lexer.TokenLParen) && p.isTypeStart(p.peekToken) {
		if !p.enter() {
			return nil
		}
		defer p.leave()

		pos := p.pos()
		p.nextToken() // consume '('
		tn := p.parseTypeName()
		if p.failed() || !p.expect(lexer.TokenRParen) {
			return nil
		}
		expr := p.parseCast()
		if p.failed() {
			return nil
		}
		return cabs.Cast{Pos: pos, Type: tn, Expr: expr}
	}
	return p.parseUnary()
}

var unaryOps = map[lexer.TokenType]cabs.UnaryOp{
	lexer.TokenMinus:     cabs.OpNeg,
	lexer.TokenNot:       cabs.OpNot,
	lexer.TokenTilde:     cabs.OpBitNot,
	lexer.TokenPlus:      cabs.OpPlus,
	lexer.TokenAmpersand: cabs.OpAddrOf,
	lexer.TokenStar:      cabs.OpDeref,
}

func (p *Parser) parseUnary() cabs.Expr {
	if !p.enter() {
		return nil
	}
	defer p.leave()

	pos := p.pos()
	switch p.curToken.Type {
	case lexer.TokenIncrement, lexer.TokenDecrement:
		op := cabs.OpPreInc
		if p.curTokenIs(lexer.TokenDecrement) {
			op = cabs.OpPreDec
		}
		p.nextToken()
		operand := p.parseUnary()
		if p.failed() {
			return nil
		}
		return cabs.Unary{Pos: pos, Op: op, Expr: operand}
	case lexer.TokenSizeof:
		p.nextToken()
		if p.curTokenIs(lexer.TokenLParen) && p.isTypeStart(p.peekToken) {
			p.nextToken() // consume '('
			tn := p.parseTypeName()
			if p.failed() || !p.expect(lexer.TokenRParen) {
				return nil
			}
			return cabs.SizeofType{Pos: pos, Type: tn}
		}
		operand := p.parseUnary()
		if p.failed() {
			return nil
		}
		return cabs.SizeofExpr{Pos: pos, Expr: operand}
	}

	if op, ok := unaryOps[p.curToken.Type]; ok {
		p.nextToken()
		operand := p.parseCast()
		if p.failed() {
			return nil
		}
		return cabs.Unary{Pos: pos, Op: op, Expr: operand}
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() cabs.Expr {
	expr := p.parsePrimary()
	for !p.failed() {
		pos := p.pos()
		switch p.curToken.Type {
		case lexer.TokenLBracket:
			p.nextToken()
			idx := p.parseExpression()
			if p.failed() || !p.expect(lexer.TokenRBracket) {
				return nil
			}
			expr = cabs.Index{Pos: pos, Array: expr, Index: idx}
		case lexer.TokenLParen:
			p.nextToken()
			call := cabs.Call{Pos: pos, Func: expr}
			for !p.curTokenIs(lexer.TokenRParen) {
				arg := p.parseAssignment()
				if p.failed() {
					return nil
				}
				call.Args = append(call.Args, arg)
				if !p.curTokenIs(lexer.TokenComma) {
					break
				}
				p.nextToken()
			}
			if !p.expect(lexer.TokenRParen) {
				return nil
			}
			expr = call
		case lexer.TokenDot, lexer.TokenArrow:
			arrow := p.curTokenIs(lexer.TokenArrow)
			p.nextToken()
			if !p.curTokenIs(lexer.TokenIdent) {
				p.addError(fmt.Sprintf("expected member name, got %s", p.curToken.Type))
				return nil
			}
			expr = cabs.Member{Pos: pos, Expr: expr, Name: p.curToken.Literal, Arrow: arrow}
			p.nextToken()
		case lexer.TokenIncrement:
			p.nextToken()
			expr = cabs.Unary{Pos: pos, Op: cabs.OpPostInc, Expr: expr}
		case lexer.TokenDecrement:
			p.nextToken()
			expr = cabs.Unary{Pos: pos, Op: cabs.OpPostDec, Expr: expr}
		default:
			return expr
		}
	}
	return nil
}

func (p *Parser) parsePrimary() cabs.Expr {
	pos := p.pos()
	tok := p.curToken
	switch tok.Type {
	case lexer.TokenIdent:
		p.nextToken()
		if kind, ok := p.lookupIdent(tok.Literal); ok && kind == identEnumConst {
			return cabs.EnumConst{Pos: pos, Name: tok.Literal}
		}
		return cabs.Variable{Pos: pos, Name: tok.Literal}
	case lexer.TokenInt:
		p.nextToken()
		value, err := parseIntLiteral(tok.Literal)
		if err != nil {
			p.addError(fmt.Sprintf("invalid integer constant %q", tok.Literal))
			return nil
		}
		return cabs.Constant{Pos: pos, Value: value}
	case lexer.TokenFloatLit:
		p.nextToken()
		value, err := strconv.ParseFloat(strings.TrimRight(tok.Literal, "fFlL"), 64)
		if err != nil {
			p.addError(fmt.Sprintf("invalid floating constant %q", tok.Literal))
			return nil
		}
		return cabs.FloatLit{Pos: pos, Value: value}
	case lexer.TokenCharLit:
		p.nextToken()
		value, ok := decodeChar(tok.Literal)
		if !ok {
			p.addError(fmt.Sprintf("invalid character constant '%s'", tok.Literal))
			return nil
		}
		return cabs.CharLit{Pos: pos, Value: value}
	case lexer.TokenString:
		p.nextToken()
		value := tok.Literal
		// adjacent literals are concatenated
		for p.curTokenIs(lexer.TokenString) {
			value += p.curToken.Literal
			p.nextToken()
		}
		return cabs.StringLit{Pos: pos, Value: value}
	case lexer.TokenLParen:
		p.nextToken()
		expr := p.parseExpression()
		if p.failed() || !p.expect(lexer.TokenRParen) {
			return nil
		}
		return cabs.Paren{Pos: pos, Expr: expr}
	}

	p.addError(fmt.Sprintf("expected expression, got %s", tok.Type))
	return nil
}

// parseIntLiteral accepts decimal, octal and hex constants with u/l suffixes.
// Values that only fit unsigned wrap into int64.
func parseIntLiteral(lit string) (int64, error) {
	digits := strings.TrimRight(lit, "uUlL")
	base := 10
	switch {
	case strings.HasPrefix(digits, "0x") || strings.HasPrefix(digits, "0X"):
		base = 16
		digits = digits[2:]
	case len(digits) > 1 && digits[0] == '0':
		base = 8
		digits = digits[1:]
	}
	v, err := strconv.ParseUint(digits, base, 64)
	if err != nil {
		return 0, err
	}
	return int64(v), nil
}

var simpleEscapes = map[byte]byte{
	'n': '\n', 't': '\t', 'r': '\r', '0': 0, 'a': '\a', 'b': '\b',
	'f': '\f', 'v': '\v', '\\': '\\', '\'': '\'', '"': '"', '?': '?',
}

// decodeChar turns the body of a character constant into its byte value
func decodeChar(body string) (byte, bool) {
	if body == "" {
		return 0, false
	}
	if body[0] != '\\' {
		return body[0], len(body) == 1
	}
	if len(body) < 2 {
		return 0, false
	}
	switch {
	case body[1] == 'x':
		v, err := strconv.ParseUint(body[2:], 16, 8)
		return byte(v), err == nil
	case body[1] >= '0' && body[1] <= '7' && len(body) > 2:
		v, err := strconv.ParseUint(body[1:], 8, 8)
		return byte(v), err == nil
	}
	c, ok := simpleEscapes[body[1]]
	return c, ok && len(body) == 2
}
