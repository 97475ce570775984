package sema

import (
	"sort"
	"strings"

	"github.com/raymyers/ralph-sema/pkg/cabs"
	"github.com/raymyers/ralph-sema/pkg/ctypes"
)

// Canonical order of type specifiers. Sorting by rank turns every legal
// spelling of a base type into one key of baseTypes.
var specRank = map[cabs.TypeSpecKind]int{
	cabs.SpecVoid:     0,
	cabs.SpecSigned:   1,
	cabs.SpecUnsigned: 2,
	cabs.SpecShort:    3,
	cabs.SpecLong:     4,
	cabs.SpecInt:      5,
	cabs.SpecChar:     6,
	cabs.SpecFloat:    7,
	cabs.SpecDouble:   8,
}

const (
	rankStruct  = 9
	rankEnum    = 10
	rankTypedef = 11
)

func rank(s cabs.Specifier) int {
	switch sp := s.(type) {
	case cabs.TypeSpec:
		return specRank[sp.Kind]
	case cabs.StructSpec:
		return rankStruct
	case cabs.EnumSpec:
		return rankEnum
	}
	return rankTypedef
}

var baseTypes = map[string]ctypes.Type{
	"void": ctypes.Void(),

	"char":          ctypes.Char(),
	"signed char":   ctypes.SChar(),
	"unsigned char": ctypes.UChar(),

	"short":            ctypes.Short(),
	"signed short":     ctypes.Short(),
	"short int":        ctypes.Short(),
	"signed short int": ctypes.Short(),

	"unsigned short":     ctypes.UShort(),
	"unsigned short int": ctypes.UShort(),

	"int":        ctypes.Int(),
	"signed":     ctypes.Int(),
	"signed int": ctypes.Int(),

	"unsigned":     ctypes.UInt(),
	"unsigned int": ctypes.UInt(),

	"long":            ctypes.Long(),
	"signed long":     ctypes.Long(),
	"long int":        ctypes.Long(),
	"signed long int": ctypes.Long(),

	"unsigned long":     ctypes.ULong(),
	"unsigned long int": ctypes.ULong(),

	"long long":            ctypes.LongLong(),
	"signed long long":     ctypes.LongLong(),
	"long long int":        ctypes.LongLong(),
	"signed long long int": ctypes.LongLong(),

	"unsigned long long":     ctypes.ULongLong(),
	"unsigned long long int": ctypes.ULongLong(),

	"float":       ctypes.Float(),
	"double":      ctypes.Double(),
	"long double": ctypes.LongDouble(),
}

// declSpecs is a resolved declaration-specifier list
type declSpecs struct {
	storage *cabs.StorageClass
	typ     ctypes.Type
}

func (ds declSpecs) isTypedef() bool {
	return ds.storage != nil && ds.storage.Kind == cabs.StorageTypedef
}

// declSpecifiers separates the storage class from the type specifiers and
// resolves the base type. Qualifiers do not affect typing.
func (a *Analyzer) declSpecifiers(n cabs.Node, specs []cabs.Specifier) (declSpecs, error) {
	var ds declSpecs
	var typeSpecs []cabs.Specifier
	for _, s := range specs {
		switch sp := s.(type) {
		case cabs.StorageClass:
			if ds.storage != nil {
				return ds, &Error{Kind: InvalidDeclarationSpecifiers, Node: sp, Specifiers: specs}
			}
			ds.storage = &sp
		case cabs.TypeQualifier:
		default:
			typeSpecs = append(typeSpecs, s)
		}
	}
	t, err := a.typeSpecifiers(n, typeSpecs, specs)
	if err != nil {
		return ds, err
	}
	ds.typ = t
	return ds, nil
}

// specifierQualifiers resolves the specifier list of a struct member or type name,
// where storage classes are not allowed
func (a *Analyzer) specifierQualifiers(n cabs.Node, specs []cabs.Specifier) (ctypes.Type, error) {
	var typeSpecs []cabs.Specifier
	for _, s := range specs {
		switch s.(type) {
		case cabs.StorageClass:
			return nil, &Error{Kind: InvalidSpecifierQualifiers, Node: s, Specifiers: specs}
		case cabs.TypeQualifier:
		default:
			typeSpecs = append(typeSpecs, s)
		}
	}
	return a.typeSpecifiers(n, typeSpecs, specs)
}

// typeSpecifiers maps a list of type specifiers to its base type.
// all is the full list as written, reported on failure.
func (a *Analyzer) typeSpecifiers(n cabs.Node, specs, all []cabs.Specifier) (ctypes.Type, error) {
	invalid := &Error{Kind: InvalidSpecifierQualifiers, Node: n, Specifiers: all}
	if len(specs) == 0 {
		return nil, invalid
	}

	sorted := make([]cabs.Specifier, len(specs))
	copy(sorted, specs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return rank(sorted[i]) < rank(sorted[j])
	})

	if len(sorted) == 1 {
		switch sp := sorted[0].(type) {
		case cabs.StructSpec:
			return a.resolveStruct(sp)
		case cabs.EnumSpec:
			return a.resolveEnum(sp)
		case cabs.TypedefName:
			return a.resolveTypedefName(sp)
		}
	}

	words := make([]string, len(sorted))
	for i, s := range sorted {
		ts, ok := s.(cabs.TypeSpec)
		if !ok {
			return nil, invalid
		}
		words[i] = ts.Kind.String()
	}
	t, ok := baseTypes[strings.Join(words, " ")]
	if !ok {
		return nil, invalid
	}
	return t, nil
}

func tagName(spec cabs.StructSpec) string {
	if spec.Union {
		return "union " + spec.Name
	}
	return "struct " + spec.Name
}

func (a *Analyzer) resolveStruct(spec cabs.StructSpec) (ctypes.Type, error) {
	if spec.Fields == nil {
		if spec.Name == "" {
			return nil, &Error{Kind: InvalidSpecifierQualifiers, Node: spec, Specifiers: []cabs.Specifier{spec}}
		}
		if prev, ok := a.scopes.FindTag(spec.Name); ok {
			if st, ok := prev.(ctypes.Tstruct); ok && st.Union == spec.Union {
				return st, nil
			}
			return nil, &Error{Kind: TagRedeclaration, Node: spec, Name: tagName(spec)}
		}
		fwd := ctypes.Tstruct{Name: spec.Name, Union: spec.Union}
		a.scopes.DeclareTag(spec.Name, fwd)
		return fwd, nil
	}

	// declared incomplete first so members can point back at the struct
	if spec.Name != "" && !a.scopes.DeclareTag(spec.Name, ctypes.Tstruct{Name: spec.Name, Union: spec.Union}) {
		return nil, &Error{Kind: TagRedeclaration, Node: spec, Name: tagName(spec)}
	}

	fields := make([]ctypes.Field, 0, len(spec.Fields))
	seen := make(map[string]bool)
	for _, fd := range spec.Fields {
		base, err := a.specifierQualifiers(fd, fd.Specifiers)
		if err != nil {
			return nil, err
		}
		for _, d := range fd.Declarators {
			t, err := a.composeDeclarator(d, base)
			if err != nil {
				return nil, err
			}
			name := d.Name()
			if seen[name] {
				return nil, &Error{Kind: MemberRedeclaration, Node: d, Name: name, Struct: tagName(spec)}
			}
			seen[name] = true
			fields = append(fields, ctypes.Field{Name: name, Type: t})
		}
	}

	st := ctypes.Tstruct{Name: spec.Name, Fields: fields, Union: spec.Union}
	if spec.Name != "" {
		a.scopes.DeclareTag(spec.Name, st)
	}
	return st, nil
}

// completeStruct replaces a forward reference with the visible complete tag
func (a *Analyzer) completeStruct(st ctypes.Tstruct) ctypes.Tstruct {
	if st.IsComplete() || st.Name == "" {
		return st
	}
	if t, ok := a.scopes.FindTag(st.Name); ok {
		if full, ok := t.(ctypes.Tstruct); ok && full.Union == st.Union && full.IsComplete() {
			return full
		}
	}
	return st
}

// enum tags are bound to int in the tag namespace
func (a *Analyzer) resolveEnum(spec cabs.EnumSpec) (ctypes.Type, error) {
	if spec.Values == nil {
		if spec.Name != "" {
			if prev, ok := a.scopes.FindTag(spec.Name); ok && !ctypes.Equal(prev, ctypes.Int()) {
				return nil, &Error{Kind: TagRedeclaration, Node: spec, Name: "enum " + spec.Name}
			}
		}
		return ctypes.Int(), nil
	}

	if spec.Name != "" && !a.scopes.DeclareTag(spec.Name, ctypes.Int()) {
		return nil, &Error{Kind: TagRedeclaration, Node: spec, Name: "enum " + spec.Name}
	}
	for _, e := range spec.Values {
		if e.Value != nil {
			t, err := a.typeOf(e.Value)
			if err != nil {
				return nil, err
			}
			if !ctypes.Equal(t, ctypes.Int()) {
				return nil, &Error{Kind: UnexpectedType, Node: e.Value, Expected: ctypes.Int(), Actual: t}
			}
		}
		if !a.scopes.DeclareEnumConst(e.Name, ctypes.Int()) {
			return nil, &Error{Kind: EnumRedeclaration, Node: e, Name: e.Name}
		}
	}
	return ctypes.Int(), nil
}

// typedef names are transparent: the aliased type is returned
func (a *Analyzer) resolveTypedefName(spec cabs.TypedefName) (ctypes.Type, error) {
	t, ok := a.scopes.FindTypedef(spec.Name)
	if !ok {
		return nil, &Error{Kind: UndefinedTypedef, Node: spec, Name: spec.Name}
	}
	return ctypes.Resolve(t), nil
}
