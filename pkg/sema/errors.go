package sema

import (
	"fmt"

	"github.com/raymyers/ralph-sema/pkg/cabs"
	"github.com/raymyers/ralph-sema/pkg/ctypes"
)

// Kind identifies a class of semantic error. A Kind is itself an error, so
// errors.Is(err, sema.UndefinedLabel) matches any *Error of that kind.
type Kind int

const (
	UndefinedVariable Kind = iota + 1
	UndefinedLabel
	UndefinedTypedef
	VariableRedeclaration
	LabelRedeclaration
	EnumRedeclaration
	TypedefRedeclaration
	TagRedeclaration
	MemberRedeclaration
	TypeMismatch
	UnexpectedType
	InvalidBinaryOperands
	InvalidUnaryOperand
	InvalidPostfixOperand
	InvalidInitializer
	InvalidArraySize
	NotAFunction
	InvalidFnCall
	UndefinedMember
	NotAStruct
	NotAPointerToStruct
	InvalidDereferenceOperand
	InvalidTypeCast
	IllegalJump
	ReturnTypeMismatch
	ReturnOutsideFn
	CaseOutsideSwitch
	DefaultOutsideSwitch
	InvalidSpecifierQualifiers
	InvalidDeclarationSpecifiers
	InvalidFunctionDefinition
	NestingTooDeep
)

var kindNames = map[Kind]string{
	UndefinedVariable:            "UndefinedVariable",
	UndefinedLabel:               "UndefinedLabel",
	UndefinedTypedef:             "UndefinedTypedef",
	VariableRedeclaration:        "VariableRedeclaration",
	LabelRedeclaration:           "LabelRedeclaration",
	EnumRedeclaration:            "EnumRedeclaration",
	TypedefRedeclaration:         "TypedefRedeclaration",
	TagRedeclaration:             "TagRedeclaration",
	MemberRedeclaration:          "MemberRedeclaration",
	TypeMismatch:                 "TypeMismatch",
	UnexpectedType:               "UnexpectedType",
	InvalidBinaryOperands:        "InvalidBinaryOperands",
	InvalidUnaryOperand:          "InvalidUnaryOperand",
	InvalidPostfixOperand:        "InvalidPostfixOperand",
	InvalidInitializer:           "InvalidInitializer",
	InvalidArraySize:             "InvalidArraySize",
	NotAFunction:                 "NotAFunction",
	InvalidFnCall:                "InvalidFnCall",
	UndefinedMember:              "UndefinedMember",
	NotAStruct:                   "NotAStruct",
	NotAPointerToStruct:          "NotAPointerToStruct",
	InvalidDereferenceOperand:    "InvalidDereferenceOperand",
	InvalidTypeCast:              "InvalidTypeCast",
	IllegalJump:                  "IllegalJump",
	ReturnTypeMismatch:           "ReturnTypeMismatch",
	ReturnOutsideFn:              "ReturnOutsideFn",
	CaseOutsideSwitch:            "CaseOutsideSwitch",
	DefaultOutsideSwitch:         "DefaultOutsideSwitch",
	InvalidSpecifierQualifiers:   "InvalidSpecifierQualifiers",
	InvalidDeclarationSpecifiers: "InvalidDeclarationSpecifiers",
	InvalidFunctionDefinition:    "InvalidFunctionDefinition",
	NestingTooDeep:               "NestingTooDeep",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func (k Kind) Error() string { return k.String() }

// KindByName maps a kind's name back to the kind; used by table-driven tests.
func KindByName(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return k, true
		}
	}
	return 0, false
}

// Error is a semantic error pinned to the node that triggered it.
// Only the fields relevant to Kind are set.
type Error struct {
	Kind Kind
	Node cabs.Node

	Name   string // variable, label, member, typedef or tag name
	Struct string // struct type for member errors
	Op     string // operator spelling for operand errors
	Detail string

	Expected ctypes.Type
	Actual   ctypes.Type

	Specifiers []cabs.Specifier
}

// Pos returns the position of the offending node
func (e *Error) Pos() cabs.Pos {
	if e.Node == nil {
		return cabs.Pos{}
	}
	return e.Node.Position()
}

func (e *Error) Error() string {
	pos := e.Pos()
	return fmt.Sprintf("%d:%d: %s", pos.Line, pos.Column, e.Message())
}

// Unwrap exposes the kind to errors.Is
func (e *Error) Unwrap() error { return e.Kind }

// Message renders the error without its position
func (e *Error) Message() string {
	switch e.Kind {
	case UndefinedVariable:
		return fmt.Sprintf("use of undeclared identifier '%s'", e.Name)
	case UndefinedLabel:
		return fmt.Sprintf("use of undeclared label '%s'", e.Name)
	case UndefinedTypedef:
		return fmt.Sprintf("unknown type name '%s'", e.Name)
	case VariableRedeclaration:
		return fmt.Sprintf("redefinition of '%s'", e.Name)
	case LabelRedeclaration:
		return fmt.Sprintf("redefinition of label '%s'", e.Name)
	case EnumRedeclaration:
		return fmt.Sprintf("redefinition of enumerator '%s'", e.Name)
	case TypedefRedeclaration:
		return fmt.Sprintf("redefinition of typedef '%s'", e.Name)
	case TagRedeclaration:
		return fmt.Sprintf("redefinition of '%s'", e.Name)
	case MemberRedeclaration:
		return fmt.Sprintf("duplicate member '%s' in %s", e.Name, e.Struct)
	case TypeMismatch:
		return fmt.Sprintf("type mismatch: '%s' and '%s'", typeName(e.Expected), typeName(e.Actual))
	case UnexpectedType:
		return fmt.Sprintf("expected '%s', found '%s'", typeName(e.Expected), typeName(e.Actual))
	case InvalidBinaryOperands:
		return fmt.Sprintf("invalid operands to binary %s ('%s' and '%s')", e.Op, typeName(e.Expected), typeName(e.Actual))
	case InvalidUnaryOperand:
		return fmt.Sprintf("invalid argument type '%s' to unary %s", typeName(e.Actual), e.Op)
	case InvalidPostfixOperand:
		return fmt.Sprintf("invalid argument type '%s' to postfix %s", typeName(e.Actual), e.Op)
	case InvalidInitializer:
		return fmt.Sprintf("invalid initializer for '%s' of type '%s'", e.Name, typeName(e.Expected))
	case InvalidArraySize:
		return fmt.Sprintf("size of array '%s' is not an integer literal", e.Name)
	case NotAFunction:
		return fmt.Sprintf("called object type '%s' is not a function or function pointer", typeName(e.Actual))
	case InvalidFnCall:
		return fmt.Sprintf("invalid call to function of type '%s': %s", typeName(e.Expected), e.Detail)
	case UndefinedMember:
		return fmt.Sprintf("no member named '%s' in '%s'", e.Name, e.Struct)
	case NotAStruct:
		return fmt.Sprintf("member reference base type '%s' is not a structure or union", typeName(e.Actual))
	case NotAPointerToStruct:
		return fmt.Sprintf("member reference type '%s' is not a pointer to a structure or union", typeName(e.Actual))
	case InvalidDereferenceOperand:
		return fmt.Sprintf("indirection requires pointer operand ('%s' invalid)", typeName(e.Actual))
	case InvalidTypeCast:
		return fmt.Sprintf("invalid cast from '%s' to '%s'", typeName(e.Actual), typeName(e.Expected))
	case IllegalJump:
		if e.Name == "continue" {
			return "'continue' statement not in loop statement"
		}
		return "'break' statement not in loop or switch statement"
	case ReturnTypeMismatch:
		return fmt.Sprintf("returning '%s' from a function with result type '%s'", typeName(e.Actual), typeName(e.Expected))
	case ReturnOutsideFn:
		return "return statement outside of a function"
	case CaseOutsideSwitch:
		return "'case' statement not in switch statement"
	case DefaultOutsideSwitch:
		return "'default' statement not in switch statement"
	case InvalidSpecifierQualifiers:
		return fmt.Sprintf("invalid combination of type specifiers '%s'", cabs.SpecifiersString(e.Specifiers))
	case InvalidDeclarationSpecifiers:
		return fmt.Sprintf("invalid declaration specifiers '%s'", cabs.SpecifiersString(e.Specifiers))
	case InvalidFunctionDefinition:
		if e.Detail != "" {
			return fmt.Sprintf("invalid function definition '%s': %s", e.Name, e.Detail)
		}
		return fmt.Sprintf("invalid function definition '%s'", e.Name)
	case NestingTooDeep:
		return e.Detail
	}
	return e.Kind.String()
}

func typeName(t ctypes.Type) string {
	if t == nil {
		return "<none>"
	}
	return t.String()
}
