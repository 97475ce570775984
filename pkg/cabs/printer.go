// Package cabs provides AST printing functionality
package cabs

import (
	"fmt"
	"io"
	"strings"
)

// Printer outputs the AST in a human-readable format
type Printer struct {
	w      io.Writer
	indent int
}

// NewPrinter creates a new AST printer
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w, indent: 0}
}

// PrintProgram prints a complete program
func (p *Printer) PrintProgram(prog *Program) {
	for _, def := range prog.Definitions {
		p.printDefinition(def)
		fmt.Fprintln(p.w)
	}
}

// ExprString renders an expression on one line, as used in diagnostics
func ExprString(e Expr) string {
	var sb strings.Builder
	(&Printer{w: &sb}).printExpr(e)
	return sb.String()
}

// TypeNameString renders a type name such as "unsigned long *"
func TypeNameString(tn *TypeName) string {
	var sb strings.Builder
	p := &Printer{w: &sb}
	p.printSpecifiers(tn.Specifiers)
	if tn.Decl != nil {
		fmt.Fprint(p.w, " ")
		p.printDeclarator(tn.Decl)
	}
	return sb.String()
}

// SpecifiersString renders a specifier sequence separated by spaces
func SpecifiersString(specs []Specifier) string {
	var sb strings.Builder
	(&Printer{w: &sb}).printSpecifiers(specs)
	return sb.String()
}

func (p *Printer) writeIndent() {
	fmt.Fprint(p.w, strings.Repeat("  ", p.indent))
}

func (p *Printer) printDefinition(def Definition) {
	switch d := def.(type) {
	case FunDef:
		p.printFunDef(d)
	case Declaration:
		p.printDeclaration(d)
	default:
		fmt.Fprintf(p.w, "/* unknown definition %T */\n", def)
	}
}

func (p *Printer) printFunDef(f FunDef) {
	p.printSpecifiers(f.Specifiers)
	fmt.Fprint(p.w, " ")
	p.printDeclarator(f.Declarator)
	fmt.Fprintln(p.w)
	p.printBlock(f.Body)
}

func (p *Printer) printDeclaration(d Declaration) {
	p.printSpecifiers(d.Specifiers)
	for i, init := range d.Inits {
		if i > 0 {
			fmt.Fprint(p.w, ",")
		}
		fmt.Fprint(p.w, " ")
		p.printDeclarator(init.Decl)
		if init.Init != nil {
			fmt.Fprint(p.w, " = ")
			p.printInitializer(init.Init)
		}
	}
	fmt.Fprintln(p.w, ";")
}

func (p *Printer) printInitializer(init *Initializer) {
	if init.List == nil {
		p.printExpr(init.Expr)
		return
	}
	fmt.Fprint(p.w, "{")
	for i, item := range init.List {
		if i > 0 {
			fmt.Fprint(p.w, ", ")
		}
		p.printInitializer(item)
	}
	fmt.Fprint(p.w, "}")
}

// printSpecifiers writes the specifiers separated by spaces
func (p *Printer) printSpecifiers(specs []Specifier) {
	for i, s := range specs {
		if i > 0 {
			fmt.Fprint(p.w, " ")
		}
		switch sp := s.(type) {
		case StorageClass:
			fmt.Fprint(p.w, sp.Kind.String())
		case TypeQualifier:
			fmt.Fprint(p.w, sp.Kind.String())
		case TypeSpec:
			fmt.Fprint(p.w, sp.Kind.String())
		case TypedefName:
			fmt.Fprint(p.w, sp.Name)
		case StructSpec:
			p.printStructSpec(sp)
		case EnumSpec:
			p.printEnumSpec(sp)
		default:
			fmt.Fprintf(p.w, "/* unknown specifier %T */", s)
		}
	}
}

func (p *Printer) printStructSpec(s StructSpec) {
	kw := "struct"
	if s.Union {
		kw = "union"
	}
	fmt.Fprint(p.w, kw)
	if s.Name != "" {
		fmt.Fprintf(p.w, " %s", s.Name)
	}
	if s.Fields == nil {
		return
	}
	fmt.Fprintln(p.w, " {")
	p.indent++
	for _, field := range s.Fields {
		p.writeIndent()
		p.printSpecifiers(field.Specifiers)
		for i, d := range field.Declarators {
			if i > 0 {
				fmt.Fprint(p.w, ",")
			}
			fmt.Fprint(p.w, " ")
			p.printDeclarator(d)
		}
		fmt.Fprintln(p.w, ";")
	}
	p.indent--
	p.writeIndent()
	fmt.Fprint(p.w, "}")
}

func (p *Printer) printEnumSpec(e EnumSpec) {
	fmt.Fprint(p.w, "enum")
	if e.Name != "" {
		fmt.Fprintf(p.w, " %s", e.Name)
	}
	if e.Values == nil {
		return
	}
	fmt.Fprint(p.w, " { ")
	for i, val := range e.Values {
		if i > 0 {
			fmt.Fprint(p.w, ", ")
		}
		fmt.Fprint(p.w, val.Name)
		if val.Value != nil {
			fmt.Fprint(p.w, " = ")
			p.printExpr(val.Value)
		}
	}
	fmt.Fprint(p.w, " }")
}

func (p *Printer) printDeclarator(d *Declarator) {
	if d == nil {
		return
	}
	fmt.Fprint(p.w, strings.Repeat("*", d.Pointers))
	p.printDirect(d.Direct)
}

func (p *Printer) printDirect(dd DirectDeclarator) {
	switch d := dd.(type) {
	case nil:
	case *IdentDecl:
		fmt.Fprint(p.w, d.Name)
	case *ParenDecl:
		fmt.Fprint(p.w, "(")
		p.printDeclarator(d.Inner)
		fmt.Fprint(p.w, ")")
	case *ArrayDecl:
		p.printDirect(d.Inner)
		fmt.Fprint(p.w, "[")
		if d.Size != nil {
			p.printExpr(d.Size)
		}
		fmt.Fprint(p.w, "]")
	case *FuncDecl:
		p.printDirect(d.Inner)
		fmt.Fprint(p.w, "(")
		for i, param := range d.Params {
			if i > 0 {
				fmt.Fprint(p.w, ", ")
			}
			p.printSpecifiers(param.Specifiers)
			if param.Decl != nil {
				fmt.Fprint(p.w, " ")
				p.printDeclarator(param.Decl)
			}
		}
		if d.Variadic {
			if len(d.Params) > 0 {
				fmt.Fprint(p.w, ", ")
			}
			fmt.Fprint(p.w, "...")
		}
		fmt.Fprint(p.w, ")")
	default:
		fmt.Fprintf(p.w, "/* unknown declarator %T */", dd)
	}
}

func (p *Printer) printBlock(b *Block) {
	p.writeIndent()
	fmt.Fprintln(p.w, "{")
	p.indent++
	for _, item := range b.Items {
		p.printBlockItem(item)
	}
	p.indent--
	p.writeIndent()
	fmt.Fprintln(p.w, "}")
}

func (p *Printer) printBlockItem(item BlockItem) {
	if d, ok := item.(Declaration); ok {
		p.writeIndent()
		p.printDeclaration(d)
		return
	}
	p.printStmt(item.(Stmt))
}

// printBody prints a nested statement one level deeper, except blocks
// which keep the enclosing indentation
func (p *Printer) printBody(s Stmt) {
	if b, ok := s.(Block); ok {
		p.printBlock(&b)
		return
	}
	p.indent++
	p.printStmt(s)
	p.indent--
}

func (p *Printer) printStmt(stmt Stmt) {
	p.writeIndent()
	switch s := stmt.(type) {
	case Empty:
		fmt.Fprintln(p.w, ";")
	case ExprStmt:
		p.printExpr(s.Expr)
		fmt.Fprintln(p.w, ";")
	case Return:
		fmt.Fprint(p.w, "return")
		if s.Expr != nil {
			fmt.Fprint(p.w, " ")
			p.printExpr(s.Expr)
		}
		fmt.Fprintln(p.w, ";")
	case If:
		fmt.Fprint(p.w, "if (")
		p.printExpr(s.Cond)
		fmt.Fprintln(p.w, ")")
		p.printBody(s.Then)
		if s.Else != nil {
			p.writeIndent()
			fmt.Fprintln(p.w, "else")
			p.printBody(s.Else)
		}
	case Switch:
		fmt.Fprint(p.w, "switch (")
		p.printExpr(s.Cond)
		fmt.Fprintln(p.w, ")")
		p.printBody(s.Body)
	case While:
		fmt.Fprint(p.w, "while (")
		p.printExpr(s.Cond)
		fmt.Fprintln(p.w, ")")
		p.printBody(s.Body)
	case DoWhile:
		fmt.Fprintln(p.w, "do")
		p.printBody(s.Body)
		p.writeIndent()
		fmt.Fprint(p.w, "while (")
		p.printExpr(s.Cond)
		fmt.Fprintln(p.w, ");")
	case For:
		fmt.Fprint(p.w, "for (")
		if s.Init != nil {
			p.printExpr(s.Init)
		}
		fmt.Fprint(p.w, "; ")
		if s.Cond != nil {
			p.printExpr(s.Cond)
		}
		fmt.Fprint(p.w, "; ")
		if s.Step != nil {
			p.printExpr(s.Step)
		}
		fmt.Fprintln(p.w, ")")
		p.printBody(s.Body)
	case Labeled:
		fmt.Fprintf(p.w, "%s:\n", s.Label)
		p.printBody(s.Stmt)
	case Case:
		fmt.Fprint(p.w, "case ")
		p.printExpr(s.Expr)
		fmt.Fprintln(p.w, ":")
		p.printBody(s.Stmt)
	case Default:
		fmt.Fprintln(p.w, "default:")
		p.printBody(s.Stmt)
	case Goto:
		fmt.Fprintf(p.w, "goto %s;\n", s.Label)
	case Break:
		fmt.Fprintln(p.w, "break;")
	case Continue:
		fmt.Fprintln(p.w, "continue;")
	case Block:
		// Nested block
		p.indent--
		p.printBlock(&s)
		p.indent++
	default:
		fmt.Fprintf(p.w, "/* unknown stmt %T */;\n", stmt)
	}
}

func (p *Printer) printExpr(expr Expr) {
	switch e := expr.(type) {
	case Constant:
		fmt.Fprintf(p.w, "%d", e.Value)
	case CharLit:
		fmt.Fprintf(p.w, "%q", rune(e.Value))
	case FloatLit:
		fmt.Fprintf(p.w, "%g", e.Value)
	case StringLit:
		fmt.Fprintf(p.w, "\"%s\"", e.Value)
	case Variable:
		fmt.Fprint(p.w, e.Name)
	case EnumConst:
		fmt.Fprint(p.w, e.Name)
	case Unary:
		if e.Op.IsPostfix() {
			p.printExpr(e.Expr)
			fmt.Fprint(p.w, e.Op.String())
		} else {
			fmt.Fprint(p.w, e.Op.String())
			p.printExpr(e.Expr)
		}
	case Binary:
		p.printExpr(e.Left)
		fmt.Fprintf(p.w, " %s ", e.Op.String())
		p.printExpr(e.Right)
	case Assign:
		p.printExpr(e.Left)
		if e.Op == OpAssign {
			fmt.Fprint(p.w, " = ")
		} else {
			fmt.Fprintf(p.w, " %s= ", e.Op.String())
		}
		p.printExpr(e.Right)
	case Paren:
		fmt.Fprint(p.w, "(")
		p.printExpr(e.Expr)
		fmt.Fprint(p.w, ")")
	case Conditional:
		p.printExpr(e.Cond)
		fmt.Fprint(p.w, " ? ")
		p.printExpr(e.Then)
		fmt.Fprint(p.w, " : ")
		p.printExpr(e.Else)
	case Cast:
		fmt.Fprintf(p.w, "(%s)", TypeNameString(e.Type))
		p.printExpr(e.Expr)
	case SizeofExpr:
		fmt.Fprint(p.w, "sizeof ")
		p.printExpr(e.Expr)
	case SizeofType:
		fmt.Fprintf(p.w, "sizeof(%s)", TypeNameString(e.Type))
	case Call:
		p.printExpr(e.Func)
		fmt.Fprint(p.w, "(")
		for i, arg := range e.Args {
			if i > 0 {
				fmt.Fprint(p.w, ", ")
			}
			p.printExpr(arg)
		}
		fmt.Fprint(p.w, ")")
	case Index:
		p.printExpr(e.Array)
		fmt.Fprint(p.w, "[")
		p.printExpr(e.Index)
		fmt.Fprint(p.w, "]")
	case Member:
		p.printExpr(e.Expr)
		if e.Arrow {
			fmt.Fprint(p.w, "->")
		} else {
			fmt.Fprint(p.w, ".")
		}
		fmt.Fprint(p.w, e.Name)
	default:
		fmt.Fprintf(p.w, "/* unknown expr %T */", expr)
	}
}
