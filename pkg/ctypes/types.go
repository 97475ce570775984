// Package ctypes defines the closed set of C types seen by the semantic analyzer
package ctypes

import (
	"strconv"
	"strings"
)

// Type is the interface for all C types
type Type interface {
	implType()
	String() string
}

// IntKind distinguishes the members of the integer family.
// Plain char and signed char are distinct types, as are int and long.
type IntKind int

const (
	IInt IntKind = iota
	IChar
	ISChar
	IUChar
	IShort
	IUShort
	IUInt
	ILong
	IULong
	ILongLong
	IULongLong
)

func (k IntKind) String() string {
	names := []string{
		"int", "char", "signed char", "unsigned char", "short", "unsigned short",
		"unsigned int", "long", "unsigned long", "long long", "unsigned long long",
	}
	if int(k) < len(names) {
		return names[k]
	}
	return "?"
}

// FloatKind represents the size of floating-point types
type FloatKind int

const (
	F32 FloatKind = iota
	F64
	F80
)

func (k FloatKind) String() string {
	switch k {
	case F32:
		return "float"
	case F64:
		return "double"
	case F80:
		return "long double"
	}
	return "?"
}

// Tvoid represents the void type
type Tvoid struct{}

// Tint represents the integer types
type Tint struct {
	Kind IntKind
}

// Tfloat represents float, double and long double
type Tfloat struct {
	Kind FloatKind
}

// Tstring is the type of a string literal
type Tstring struct{}

// Tpointer represents pointer types
type Tpointer struct {
	Elem Type
}

// Tarray represents array types
type Tarray struct {
	Elem Type
	Size int64 // -1 for incomplete array
}

// Tfunction represents function types
type Tfunction struct {
	Params []Type
	Return Type
	VarArg bool
}

// Tstruct represents struct and union types.
// A nil Fields slice marks a forward reference (struct S without a body).
type Tstruct struct {
	Name   string
	Fields []Field
	Union  bool
}

// Ttypedef names another type
type Ttypedef struct {
	Name string
	Type Type
}

// Field represents a struct or union member
type Field struct {
	Name string
	Type Type
}

// Marker methods for Type interface
func (Tvoid) implType()     {}
func (Tint) implType()      {}
func (Tfloat) implType()    {}
func (Tstring) implType()   {}
func (Tpointer) implType()  {}
func (Tarray) implType()    {}
func (Tfunction) implType() {}
func (Tstruct) implType()   {}
func (Ttypedef) implType()  {}

// String methods for types
func (Tvoid) String() string { return "void" }

func (t Tint) String() string { return t.Kind.String() }

func (t Tfloat) String() string { return t.Kind.String() }

func (Tstring) String() string { return "string" }

func (t Tpointer) String() string {
	if t.Elem == nil {
		return "void *"
	}
	return t.Elem.String() + " *"
}

func (t Tarray) String() string {
	if t.Elem == nil {
		return "?[]"
	}
	if t.Size < 0 {
		return t.Elem.String() + "[]"
	}
	return t.Elem.String() + "[" + strconv.FormatInt(t.Size, 10) + "]"
}

func (t Tfunction) String() string {
	var sb strings.Builder
	if t.Return == nil {
		sb.WriteString("void")
	} else {
		sb.WriteString(t.Return.String())
	}
	sb.WriteString(" (")
	for i, p := range t.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.String())
	}
	if t.VarArg {
		if len(t.Params) > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("...")
	}
	sb.WriteString(")")
	return sb.String()
}

func (t Tstruct) String() string {
	kw := "struct"
	if t.Union {
		kw = "union"
	}
	if t.Name == "" {
		return kw + " <anonymous>"
	}
	return kw + " " + t.Name
}

func (t Ttypedef) String() string { return t.Name }

// Common type constructors

// Int returns the plain int type
func Int() Type { return Tint{Kind: IInt} }

// UInt returns unsigned int
func UInt() Type { return Tint{Kind: IUInt} }

// Char returns plain char
func Char() Type { return Tint{Kind: IChar} }

// SChar returns signed char
func SChar() Type { return Tint{Kind: ISChar} }

// UChar returns unsigned char
func UChar() Type { return Tint{Kind: IUChar} }

// Short returns a signed short type
func Short() Type { return Tint{Kind: IShort} }

// UShort returns unsigned short
func UShort() Type { return Tint{Kind: IUShort} }

// Long returns a signed long type
func Long() Type { return Tint{Kind: ILong} }

// ULong returns unsigned long
func ULong() Type { return Tint{Kind: IULong} }

// LongLong returns long long
func LongLong() Type { return Tint{Kind: ILongLong} }

// ULongLong returns unsigned long long
func ULongLong() Type { return Tint{Kind: IULongLong} }

// Float returns a float (32-bit) type
func Float() Type { return Tfloat{Kind: F32} }

// Double returns a double (64-bit) type
func Double() Type { return Tfloat{Kind: F64} }

// LongDouble returns long double
func LongDouble() Type { return Tfloat{Kind: F80} }

// Void returns the void type
func Void() Type { return Tvoid{} }

// String returns the string-literal type
func String() Type { return Tstring{} }

// Pointer returns a pointer to the given type
func Pointer(elem Type) Type {
	return Tpointer{Elem: elem}
}

// Array returns an array type
func Array(elem Type, size int64) Type {
	return Tarray{Elem: elem, Size: size}
}

// Function returns a non-variadic function type
func Function(ret Type, params ...Type) Type {
	return Tfunction{Return: ret, Params: params}
}

// Struct returns a complete struct type with the given members
func Struct(name string, fields ...Field) Type {
	if fields == nil {
		fields = []Field{}
	}
	return Tstruct{Name: name, Fields: fields}
}

// Typedef returns a typedef alias
func Typedef(name string, t Type) Type {
	return Ttypedef{Name: name, Type: t}
}

// Elem unwraps one level of pointer or array
func Elem(t Type) (Type, bool) {
	switch tt := t.(type) {
	case Tpointer:
		return tt.Elem, true
	case Tarray:
		return tt.Elem, true
	}
	return nil, false
}

// Resolve strips typedef wrappers
func Resolve(t Type) Type {
	for {
		td, ok := t.(Ttypedef)
		if !ok {
			return t
		}
		t = td.Type
	}
}

// IsComplete reports whether a struct type carries its member list
func (t Tstruct) IsComplete() bool {
	return t.Fields != nil
}

// Field looks up a member by name
func (t Tstruct) Field(name string) (Field, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Equal checks if two types are structurally equal
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	switch ta := a.(type) {
	case Tvoid:
		_, ok := b.(Tvoid)
		return ok
	case Tint:
		tb, ok := b.(Tint)
		return ok && ta.Kind == tb.Kind
	case Tfloat:
		tb, ok := b.(Tfloat)
		return ok && ta.Kind == tb.Kind
	case Tstring:
		_, ok := b.(Tstring)
		return ok
	case Tpointer:
		tb, ok := b.(Tpointer)
		return ok && Equal(ta.Elem, tb.Elem)
	case Tarray:
		tb, ok := b.(Tarray)
		return ok && ta.Size == tb.Size && Equal(ta.Elem, tb.Elem)
	case Tstruct:
		tb, ok := b.(Tstruct)
		if !ok || ta.Name != tb.Name || ta.Union != tb.Union {
			return false
		}
		// a forward reference matches the completed tag of the same name
		if ta.Name != "" && (!ta.IsComplete() || !tb.IsComplete()) {
			return true
		}
		if len(ta.Fields) != len(tb.Fields) {
			return false
		}
		for i, f := range ta.Fields {
			if f.Name != tb.Fields[i].Name || !Equal(f.Type, tb.Fields[i].Type) {
				return false
			}
		}
		return true
	case Ttypedef:
		tb, ok := b.(Ttypedef)
		return ok && ta.Name == tb.Name && Equal(ta.Type, tb.Type)
	case Tfunction:
		tb, ok := b.(Tfunction)
		if !ok || ta.VarArg != tb.VarArg || len(ta.Params) != len(tb.Params) {
			return false
		}
		if !Equal(ta.Return, tb.Return) {
			return false
		}
		for i, p := range ta.Params {
			if !Equal(p, tb.Params[i]) {
				return false
			}
		}
		return true
	}
	return false
}
