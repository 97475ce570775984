package sema

import (
	"github.com/raymyers/ralph-sema/pkg/cabs"
	"github.com/raymyers/ralph-sema/pkg/ctypes"
)

// composeDeclarator applies a declarator's pointer, array and function
// shape to base, reading inside-out. A nil declarator leaves base unchanged.
func (a *Analyzer) composeDeclarator(d *cabs.Declarator, base ctypes.Type) (ctypes.Type, error) {
	if d == nil {
		return base, nil
	}
	t := base
	for i := 0; i < d.Pointers; i++ {
		t = ctypes.Pointer(t)
	}
	return a.composeDirect(d.Direct, t, d.Name())
}

func (a *Analyzer) composeDirect(dd cabs.DirectDeclarator, t ctypes.Type, name string) (ctypes.Type, error) {
	switch d := dd.(type) {
	case *cabs.ParenDecl:
		return a.composeDeclarator(d.Inner, t)
	case *cabs.ArrayDecl:
		size, err := arraySize(d, name)
		if err != nil {
			return nil, err
		}
		return a.composeDirect(d.Inner, ctypes.Array(t, size), name)
	case *cabs.FuncDecl:
		params, err := a.paramList(d)
		if err != nil {
			return nil, err
		}
		return a.composeDirect(d.Inner, functionType(t, params, d.Variadic), name)
	}
	return t, nil
}

// arraySize accepts only integer literals; [] yields -1
func arraySize(d *cabs.ArrayDecl, name string) (int64, error) {
	if d.Size == nil {
		return -1, nil
	}
	c, ok := d.Size.(cabs.Constant)
	if !ok || c.Value < 0 {
		return 0, &Error{Kind: InvalidArraySize, Node: d.Size, Name: name}
	}
	return c.Value, nil
}

// typeName resolves the type written in a cast or sizeof
func (a *Analyzer) typeName(tn *cabs.TypeName) (ctypes.Type, error) {
	base, err := a.specifierQualifiers(tn, tn.Specifiers)
	if err != nil {
		return nil, err
	}
	return a.composeDeclarator(tn.Decl, base)
}

type param struct {
	name string
	typ  ctypes.Type
	node *cabs.ParamDecl
}

// paramList resolves a parameter list. A lone unnamed void means no parameters.
func (a *Analyzer) paramList(fn *cabs.FuncDecl) ([]param, error) {
	params := make([]param, 0, len(fn.Params))
	for _, p := range fn.Params {
		ds, err := a.declSpecifiers(p, p.Specifiers)
		if err != nil {
			return nil, err
		}
		if ds.storage != nil && ds.storage.Kind != cabs.StorageRegister {
			return nil, &Error{Kind: InvalidDeclarationSpecifiers, Node: p, Specifiers: p.Specifiers}
		}
		t, err := a.composeDeclarator(p.Decl, ds.typ)
		if err != nil {
			return nil, err
		}
		params = append(params, param{name: p.Decl.Name(), typ: adjustParam(t), node: p})
	}
	if len(params) == 1 && params[0].name == "" && !fn.Variadic && ctypes.Equal(params[0].typ, ctypes.Void()) {
		return nil, nil
	}
	return params, nil
}

// arrays and functions are passed as pointers
func adjustParam(t ctypes.Type) ctypes.Type {
	switch tt := t.(type) {
	case ctypes.Tarray:
		return ctypes.Pointer(tt.Elem)
	case ctypes.Tfunction:
		return ctypes.Pointer(tt)
	}
	return t
}

func functionType(ret ctypes.Type, params []param, variadic bool) ctypes.Tfunction {
	fn := ctypes.Tfunction{Return: ret, VarArg: variadic}
	for _, p := range params {
		fn.Params = append(fn.Params, p.typ)
	}
	return fn
}

// returnType applies the pointers written around a function definition's
// name, as in int *f(void) or int *(f)(void)
func returnType(d *cabs.Declarator, base ctypes.Type) ctypes.Type {
	t := base
	for d != nil {
		for i := 0; i < d.Pointers; i++ {
			t = ctypes.Pointer(t)
		}
		paren, ok := d.Direct.(*cabs.ParenDecl)
		if !ok {
			break
		}
		d = paren.Inner
	}
	return t
}

// completeArray takes an omitted array size from the initializer list
func completeArray(t ctypes.Type, init *cabs.Initializer) ctypes.Type {
	arr, ok := t.(ctypes.Tarray)
	if !ok || arr.Size >= 0 || init == nil || init.List == nil {
		return t
	}
	arr.Size = int64(len(init.List))
	return arr
}

// checkInitializer matches an initializer against the declared type.
// Expressions must equal the type exactly; brace lists follow the shape of
// arrays and structs, and hold exactly one item for scalars.
func (a *Analyzer) checkInitializer(init *cabs.Initializer, t ctypes.Type, name string) error {
	if init.List == nil {
		it, err := a.typeOf(init.Expr)
		if err != nil {
			return err
		}
		if !ctypes.Equal(t, it) {
			return &Error{Kind: TypeMismatch, Node: init.Expr, Name: name, Expected: t, Actual: it}
		}
		return nil
	}

	invalid := &Error{Kind: InvalidInitializer, Node: init, Name: name, Expected: t}
	switch tt := t.(type) {
	case ctypes.Tarray:
		if tt.Size >= 0 && int64(len(init.List)) > tt.Size {
			return invalid
		}
		for _, item := range init.List {
			if err := a.checkInitializer(item, tt.Elem, name); err != nil {
				return err
			}
		}
	case ctypes.Tstruct:
		st := a.completeStruct(tt)
		limit := len(st.Fields)
		if st.Union && limit > 1 {
			limit = 1
		}
		if !st.IsComplete() || len(init.List) > limit {
			return invalid
		}
		for i, item := range init.List {
			if err := a.checkInitializer(item, st.Fields[i].Type, name); err != nil {
				return err
			}
		}
	default:
		if len(init.List) != 1 {
			return invalid
		}
		return a.checkInitializer(init.List[0], t, name)
	}
	return nil
}
