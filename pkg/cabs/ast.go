// Package cabs defines the abstract syntax tree for C consumed by the semantic analyzer
package cabs

// Pos is a source position (1-based line and column)
type Pos struct {
	Line   int
	Column int
}

// Position returns the node's position; embedding Pos gives every node this method
func (p Pos) Position() Pos { return p }

// Node is the base interface for all AST nodes
type Node interface {
	Position() Pos
	implCabsNode()
}

// Expr is the interface for all expression nodes
type Expr interface {
	Node
	implCabsExpr()
}

// Stmt is the interface for all statement nodes
type Stmt interface {
	BlockItem
	implCabsStmt()
}

// BlockItem is a declaration or statement inside a compound statement
type BlockItem interface {
	Node
	implBlockItem()
}

// Definition is the interface for top-level definitions
type Definition interface {
	Node
	implDefinition()
}

// Specifier is a declaration specifier or specifier-qualifier
type Specifier interface {
	Node
	implSpecifier()
}

// DirectDeclarator is the part of a declarator after its pointer prefix
type DirectDeclarator interface {
	Node
	implDirectDeclarator()
}

// BinaryOp represents binary operators
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpLt
	OpLe
	OpGt
	OpGe
	OpEq
	OpNe
	OpAnd // &&
	OpOr  // ||
	OpBitAnd
	OpBitOr
	OpBitXor
	OpShl // <<
	OpShr // >>
	OpAssign
)

func (op BinaryOp) String() string {
	names := []string{"+", "-", "*", "/", "%", "<", "<=", ">", ">=", "==", "!=", "&&", "||", "&", "|", "^", "<<", ">>", "="}
	if int(op) < len(names) {
		return names[op]
	}
	return "?"
}

// UnaryOp represents unary and postfix operators
type UnaryOp int

const (
	OpNeg     UnaryOp = iota // -
	OpNot                    // !
	OpBitNot                 // ~
	OpPlus                   // +
	OpAddrOf                 // &
	OpDeref                  // *
	OpPreInc                 // ++x
	OpPreDec                 // --x
	OpPostInc                // x++
	OpPostDec                // x--
)

func (op UnaryOp) String() string {
	names := []string{"-", "!", "~", "+", "&", "*", "++", "--", "++", "--"}
	if int(op) < len(names) {
		return names[op]
	}
	return "?"
}

// IsPostfix reports whether the operator is written after its operand
func (op UnaryOp) IsPostfix() bool {
	return op == OpPostInc || op == OpPostDec
}

// Constant represents an integer constant
type Constant struct {
	Pos
	Value int64
}

// CharLit represents a character constant such as 'a'
type CharLit struct {
	Pos
	Value byte
}

// FloatLit represents a floating constant
type FloatLit struct {
	Pos
	Value float64
}

// StringLit represents a string literal (escapes are kept as written)
type StringLit struct {
	Pos
	Value string
}

// Variable represents an identifier expression
type Variable struct {
	Pos
	Name string
}

// EnumConst represents a reference to an enumeration constant
type EnumConst struct {
	Pos
	Name string
}

// Unary represents a unary or postfix increment/decrement expression
type Unary struct {
	Pos
	Op   UnaryOp
	Expr Expr
}

// Binary represents a binary expression
type Binary struct {
	Pos
	Op    BinaryOp
	Left  Expr
	Right Expr
}

// Assign represents plain (OpAssign) and compound assignment (a += b has Op OpAdd)
type Assign struct {
	Pos
	Op    BinaryOp
	Left  Expr
	Right Expr
}

// Paren represents a parenthesized expression
type Paren struct {
	Pos
	Expr Expr
}

// Conditional represents the ternary operator: cond ? then : else
type Conditional struct {
	Pos
	Cond Expr
	Then Expr
	Else Expr
}

// Cast represents (type) expr
type Cast struct {
	Pos
	Type *TypeName
	Expr Expr
}

// SizeofExpr represents sizeof expr
type SizeofExpr struct {
	Pos
	Expr Expr
}

// SizeofType represents sizeof(type)
type SizeofType struct {
	Pos
	Type *TypeName
}

// Call represents a function call
type Call struct {
	Pos
	Func Expr
	Args []Expr
}

// Index represents array subscript access: arr[idx]
type Index struct {
	Pos
	Array Expr
	Index Expr
}

// Member represents s.name, or p->name when Arrow is set
type Member struct {
	Pos
	Expr  Expr
	Name  string
	Arrow bool
}

// Empty represents the empty statement ;
type Empty struct {
	Pos
}

// ExprStmt represents an expression statement
type ExprStmt struct {
	Pos
	Expr Expr
}

// Block represents a compound statement (block)
type Block struct {
	Pos
	Items []BlockItem
}

// If represents if and if-else; Else is nil without an else branch
type If struct {
	Pos
	Cond Expr
	Then Stmt
	Else Stmt
}

// Switch represents a switch statement
type Switch struct {
	Pos
	Cond Expr
	Body Stmt
}

// While represents a while loop
type While struct {
	Pos
	Cond Expr
	Body Stmt
}

// DoWhile represents a do-while loop
type DoWhile struct {
	Pos
	Body Stmt
	Cond Expr
}

// For represents a for loop; Init, Cond and Step may be nil
type For struct {
	Pos
	Init Expr
	Cond Expr
	Step Expr
	Body Stmt
}

// Labeled represents name: stmt
type Labeled struct {
	Pos
	Label string
	Stmt  Stmt
}

// Case represents case expr: stmt
type Case struct {
	Pos
	Expr Expr
	Stmt Stmt
}

// Default represents default: stmt
type Default struct {
	Pos
	Stmt Stmt
}

// Goto represents goto label
type Goto struct {
	Pos
	Label string
}

// Break represents a break statement
type Break struct {
	Pos
}

// Continue represents a continue statement
type Continue struct {
	Pos
}

// Return represents a return statement
type Return struct {
	Pos
	Expr Expr // nil for bare return
}

// StorageClassKind enumerates storage-class specifiers
type StorageClassKind int

const (
	StorageTypedef StorageClassKind = iota
	StorageExtern
	StorageStatic
	StorageAuto
	StorageRegister
)

func (k StorageClassKind) String() string {
	names := []string{"typedef", "extern", "static", "auto", "register"}
	if int(k) < len(names) {
		return names[k]
	}
	return "?"
}

// QualifierKind enumerates type qualifiers
type QualifierKind int

const (
	QualConst QualifierKind = iota
	QualVolatile
	QualRestrict
)

func (k QualifierKind) String() string {
	names := []string{"const", "volatile", "restrict"}
	if int(k) < len(names) {
		return names[k]
	}
	return "?"
}

// TypeSpecKind enumerates the keyword type specifiers
type TypeSpecKind int

const (
	SpecVoid TypeSpecKind = iota
	SpecChar
	SpecShort
	SpecInt
	SpecLong
	SpecFloat
	SpecDouble
	SpecSigned
	SpecUnsigned
)

func (k TypeSpecKind) String() string {
	names := []string{"void", "char", "short", "int", "long", "float", "double", "signed", "unsigned"}
	if int(k) < len(names) {
		return names[k]
	}
	return "?"
}

// StorageClass is a storage-class specifier
type StorageClass struct {
	Pos
	Kind StorageClassKind
}

// TypeQualifier is const, volatile or restrict
type TypeQualifier struct {
	Pos
	Kind QualifierKind
}

// TypeSpec is a keyword type specifier such as unsigned or long
type TypeSpec struct {
	Pos
	Kind TypeSpecKind
}

// StructSpec is struct/union Name { Fields }; Fields is nil when no body was written
type StructSpec struct {
	Pos
	Union  bool
	Name   string
	Fields []*FieldDecl
}

// FieldDecl is one member declaration inside a struct body
type FieldDecl struct {
	Pos
	Specifiers  []Specifier
	Declarators []*Declarator
}

// EnumSpec is enum Name { Values }; Values is nil when no body was written
type EnumSpec struct {
	Pos
	Name   string
	Values []*Enumerator
}

// Enumerator is one constant of an enum body; Value may be nil
type Enumerator struct {
	Pos
	Name  string
	Value Expr
}

// TypedefName is a specifier naming a previously declared typedef
type TypedefName struct {
	Pos
	Name string
}

// Declarator is a pointer prefix applied to a direct declarator.
// Direct is nil for abstract declarators that are only pointers (int *).
type Declarator struct {
	Pos
	Pointers int
	Direct   DirectDeclarator
}

// IdentDecl names the declared entity
type IdentDecl struct {
	Pos
	Name string
}

// ParenDecl is a parenthesized declarator such as (*fp)
type ParenDecl struct {
	Pos
	Inner *Declarator
}

// ArrayDecl is Inner[Size]; Inner is nil in abstract declarators, Size nil for []
type ArrayDecl struct {
	Pos
	Inner DirectDeclarator
	Size  Expr
}

// FuncDecl is Inner(Params); Inner is nil in abstract declarators
type FuncDecl struct {
	Pos
	Inner    DirectDeclarator
	Params   []*ParamDecl
	Variadic bool
}

// ParamDecl is a parameter declaration; Decl may be nil or abstract
type ParamDecl struct {
	Pos
	Specifiers []Specifier
	Decl       *Declarator
}

// TypeName is a specifier list with an optional abstract declarator, as in casts
type TypeName struct {
	Pos
	Specifiers []Specifier
	Decl       *Declarator
}

// Initializer is either an expression or a brace-enclosed list
type Initializer struct {
	Pos
	Expr Expr
	List []*Initializer
}

// InitDeclarator is a declarator with an optional initializer
type InitDeclarator struct {
	Pos
	Decl *Declarator
	Init *Initializer
}

// Declaration is specifiers followed by zero or more init-declarators
type Declaration struct {
	Pos
	Specifiers []Specifier
	Inits      []*InitDeclarator
}

// FunDef represents a function definition
type FunDef struct {
	Pos
	Specifiers []Specifier
	Declarator *Declarator
	Body       *Block
}

// Program is a translation unit
type Program struct {
	Definitions []Definition
}

// Name returns the identifier a declarator declares, or "" for abstract declarators
func (d *Declarator) Name() string {
	if d == nil {
		return ""
	}
	return directName(d.Direct)
}

func directName(dd DirectDeclarator) string {
	switch d := dd.(type) {
	case *IdentDecl:
		return d.Name
	case *ParenDecl:
		return d.Inner.Name()
	case *ArrayDecl:
		return directName(d.Inner)
	case *FuncDecl:
		return directName(d.Inner)
	}
	return ""
}

// FuncDeclarator returns the parameter list applied directly to the declared
// name, as in f(int a) or (f)(int a), or nil when the name is not a function
func (d *Declarator) FuncDeclarator() *FuncDecl {
	if d == nil {
		return nil
	}
	switch dd := d.Direct.(type) {
	case *FuncDecl:
		if inner, ok := dd.Inner.(*IdentDecl); ok && inner != nil {
			return dd
		}
		if paren, ok := dd.Inner.(*ParenDecl); ok && paren.Inner.Pointers == 0 {
			if _, ok := paren.Inner.Direct.(*IdentDecl); ok {
				return dd
			}
		}
	case *ParenDecl:
		return dd.Inner.FuncDeclarator()
	}
	return nil
}

// Name returns the function's name
func (f FunDef) Name() string {
	return f.Declarator.Name()
}

// Marker methods for interface implementation
func (Constant) implCabsNode()    {}
func (Constant) implCabsExpr()    {}
func (CharLit) implCabsNode()     {}
func (CharLit) implCabsExpr()     {}
func (FloatLit) implCabsNode()    {}
func (FloatLit) implCabsExpr()    {}
func (StringLit) implCabsNode()   {}
func (StringLit) implCabsExpr()   {}
func (Variable) implCabsNode()    {}
func (Variable) implCabsExpr()    {}
func (EnumConst) implCabsNode()   {}
func (EnumConst) implCabsExpr()   {}
func (Unary) implCabsNode()       {}
func (Unary) implCabsExpr()       {}
func (Binary) implCabsNode()      {}
func (Binary) implCabsExpr()      {}
func (Assign) implCabsNode()      {}
func (Assign) implCabsExpr()      {}
func (Paren) implCabsNode()       {}
func (Paren) implCabsExpr()       {}
func (Conditional) implCabsNode() {}
func (Conditional) implCabsExpr() {}
func (Cast) implCabsNode()        {}
func (Cast) implCabsExpr()        {}
func (SizeofExpr) implCabsNode()  {}
func (SizeofExpr) implCabsExpr()  {}
func (SizeofType) implCabsNode()  {}
func (SizeofType) implCabsExpr()  {}
func (Call) implCabsNode()        {}
func (Call) implCabsExpr()        {}
func (Index) implCabsNode()       {}
func (Index) implCabsExpr()       {}
func (Member) implCabsNode()      {}
func (Member) implCabsExpr()      {}

func (Empty) implCabsNode()     {}
func (Empty) implCabsStmt()     {}
func (Empty) implBlockItem()    {}
func (ExprStmt) implCabsNode()  {}
func (ExprStmt) implCabsStmt()  {}
func (ExprStmt) implBlockItem() {}
func (Block) implCabsNode()     {}
func (Block) implCabsStmt()     {}
func (Block) implBlockItem()    {}
func (If) implCabsNode()        {}
func (If) implCabsStmt()        {}
func (If) implBlockItem()       {}
func (Switch) implCabsNode()    {}
func (Switch) implCabsStmt()    {}
func (Switch) implBlockItem()   {}
func (While) implCabsNode()     {}
func (While) implCabsStmt()     {}
func (While) implBlockItem()    {}
func (DoWhile) implCabsNode()   {}
func (DoWhile) implCabsStmt()   {}
func (DoWhile) implBlockItem()  {}
func (For) implCabsNode()       {}
func (For) implCabsStmt()       {}
func (For) implBlockItem()      {}
func (Labeled) implCabsNode()   {}
func (Labeled) implCabsStmt()   {}
func (Labeled) implBlockItem()  {}
func (Case) implCabsNode()      {}
func (Case) implCabsStmt()      {}
func (Case) implBlockItem()     {}
func (Default) implCabsNode()   {}
func (Default) implCabsStmt()   {}
func (Default) implBlockItem()  {}
func (Goto) implCabsNode()      {}
func (Goto) implCabsStmt()      {}
func (Goto) implBlockItem()     {}
func (Break) implCabsNode()     {}
func (Break) implCabsStmt()     {}
func (Break) implBlockItem()    {}
func (Continue) implCabsNode()  {}
func (Continue) implCabsStmt()  {}
func (Continue) implBlockItem() {}
func (Return) implCabsNode()    {}
func (Return) implCabsStmt()    {}
func (Return) implBlockItem()   {}

func (Declaration) implCabsNode()   {}
func (Declaration) implBlockItem()  {}
func (Declaration) implDefinition() {}
func (FunDef) implCabsNode()        {}
func (FunDef) implDefinition()      {}

func (StorageClass) implCabsNode()   {}
func (StorageClass) implSpecifier()  {}
func (TypeQualifier) implCabsNode()  {}
func (TypeQualifier) implSpecifier() {}
func (TypeSpec) implCabsNode()       {}
func (TypeSpec) implSpecifier()      {}
func (StructSpec) implCabsNode()     {}
func (StructSpec) implSpecifier()    {}
func (EnumSpec) implCabsNode()       {}
func (EnumSpec) implSpecifier()      {}
func (TypedefName) implCabsNode()    {}
func (TypedefName) implSpecifier()   {}

func (Declarator) implCabsNode()        {}
func (IdentDecl) implCabsNode()         {}
func (IdentDecl) implDirectDeclarator() {}
func (ParenDecl) implCabsNode()         {}
func (ParenDecl) implDirectDeclarator() {}
func (ArrayDecl) implCabsNode()         {}
func (ArrayDecl) implDirectDeclarator() {}
func (FuncDecl) implCabsNode()          {}
func (FuncDecl) implDirectDeclarator()  {}
func (ParamDecl) implCabsNode()         {}
func (TypeName) implCabsNode()          {}
func (Initializer) implCabsNode()       {}
func (InitDeclarator) implCabsNode()    {}
func (FieldDecl) implCabsNode()         {}
func (Enumerator) implCabsNode()        {}
