package sema

import (
	"fmt"

	"github.com/raymyers/ralph-sema/pkg/cabs"
	"github.com/raymyers/ralph-sema/pkg/ctypes"
)

// analyzeFunDef declares the function in the enclosing scope and checks its
// body in a Fn scope holding the parameters
func (a *Analyzer) analyzeFunDef(def cabs.FunDef) error {
	name := def.Name()
	for i, s := range def.Specifiers {
		sc, ok := s.(cabs.StorageClass)
		if !ok {
			continue
		}
		if i != 0 || (sc.Kind != cabs.StorageStatic && sc.Kind != cabs.StorageExtern) {
			return &Error{Kind: InvalidDeclarationSpecifiers, Node: sc, Specifiers: def.Specifiers}
		}
	}
	ds, err := a.declSpecifiers(def, def.Specifiers)
	if err != nil {
		return err
	}

	fd := def.Declarator.FuncDeclarator()
	if fd == nil {
		return &Error{Kind: InvalidFunctionDefinition, Node: def, Name: name, Detail: "declarator is not a function"}
	}
	params, err := a.paramList(fd)
	if err != nil {
		return err
	}
	for _, p := range params {
		if p.name == "" {
			return &Error{Kind: InvalidFunctionDefinition, Node: p.node, Name: name, Detail: "parameter name omitted"}
		}
	}
	ret := returnType(def.Declarator, ds.typ)
	fn := functionType(ret, params, fd.Variadic)

	if prev, ok := a.scopes.LookupLocalVar(name); ok {
		if !ctypes.Equal(prev.Type, fn) || a.defined[name] {
			return &Error{Kind: VariableRedeclaration, Node: def, Name: name}
		}
	} else if !a.scopes.DeclareVar(name, fn) {
		return &Error{Kind: VariableRedeclaration, Node: def, Name: name}
	}
	a.defined[name] = true

	return a.scopes.Scoped(FnScope(ret), func() error {
		for _, p := range params {
			if !a.scopes.DeclareVar(p.name, p.typ) {
				return &Error{Kind: VariableRedeclaration, Node: p.node, Name: p.name}
			}
		}
		return a.analyzeItems(def.Body.Items)
	})
}

// analyzeDeclaration checks a declaration at file or block scope and
// registers the names it declares
func (a *Analyzer) analyzeDeclaration(d cabs.Declaration) error {
	ds, err := a.declSpecifiers(d, d.Specifiers)
	if err != nil {
		return err
	}

	for _, id := range d.Inits {
		name := id.Decl.Name()
		t, err := a.composeDeclarator(id.Decl, ds.typ)
		if err != nil {
			return err
		}

		if ds.isTypedef() {
			if id.Init != nil {
				return &Error{Kind: InvalidInitializer, Node: id.Init, Name: name, Expected: t}
			}
			if !a.scopes.DeclareTypedef(name, ctypes.Typedef(name, t)) {
				return &Error{Kind: TypedefRedeclaration, Node: id, Name: name}
			}
			continue
		}

		if id.Init != nil {
			t = completeArray(t, id.Init)
			if err := a.checkInitializer(id.Init, t, name); err != nil {
				return err
			}
		}
		if err := a.declareVar(id, name, t); err != nil {
			return err
		}
	}
	return nil
}

// declareVar registers a declared name. Repeating a declaration with the
// same type is allowed for functions, and for anything at file scope.
func (a *Analyzer) declareVar(n cabs.Node, name string, t ctypes.Type) error {
	if prev, ok := a.scopes.LookupLocalVar(name); ok {
		_, isFn := t.(ctypes.Tfunction)
		if ctypes.Equal(prev.Type, t) && (isFn || a.scopes.Depth() == 1) {
			return nil
		}
		return &Error{Kind: VariableRedeclaration, Node: n, Name: name}
	}
	if !a.scopes.DeclareVar(name, t) {
		return &Error{Kind: VariableRedeclaration, Node: n, Name: name}
	}
	return nil
}

func (a *Analyzer) analyzeItems(items []cabs.BlockItem) error {
	for _, item := range items {
		var err error
		switch it := item.(type) {
		case cabs.Declaration:
			err = a.analyzeDeclaration(it)
		case cabs.Stmt:
			err = a.analyzeStmt(it)
		default:
			err = fmt.Errorf("sema: unexpected block item %T", item)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (a *Analyzer) scoped(kind ScopeKind, s cabs.Stmt) error {
	return a.scopes.Scoped(kind, func() error {
		return a.analyzeStmt(s)
	})
}

// expectInt checks a controlling expression
func (a *Analyzer) expectInt(e cabs.Expr) error {
	t, err := a.typeOf(e)
	if err != nil {
		return err
	}
	if !ctypes.Equal(t, ctypes.Int()) {
		return &Error{Kind: UnexpectedType, Node: e, Expected: ctypes.Int(), Actual: t}
	}
	return nil
}

func (a *Analyzer) analyzeStmt(s cabs.Stmt) error {
	if err := a.enter(s); err != nil {
		return err
	}
	defer a.leave()

	switch st := s.(type) {
	case cabs.Empty:
		return nil

	case cabs.ExprStmt:
		_, err := a.typeOf(st.Expr)
		return err

	case cabs.Block:
		return a.scopes.Scoped(RegularScope(), func() error {
			return a.analyzeItems(st.Items)
		})

	case cabs.If:
		if err := a.expectInt(st.Cond); err != nil {
			return err
		}
		if err := a.scoped(RegularScope(), st.Then); err != nil {
			return err
		}
		if st.Else != nil {
			return a.scoped(RegularScope(), st.Else)
		}
		return nil

	case cabs.Switch:
		disc, err := a.typeOf(st.Cond)
		if err != nil {
			return err
		}
		if !ctypes.Equal(disc, ctypes.Int()) && !ctypes.Equal(disc, ctypes.Char()) {
			return &Error{Kind: UnexpectedType, Node: st.Cond, Expected: ctypes.Int(), Actual: disc}
		}
		return a.scoped(SwitchScope(disc), st.Body)

	case cabs.While:
		if err := a.expectInt(st.Cond); err != nil {
			return err
		}
		return a.scoped(LoopScope(), st.Body)

	case cabs.DoWhile:
		if err := a.scoped(LoopScope(), st.Body); err != nil {
			return err
		}
		return a.expectInt(st.Cond)

	case cabs.For:
		if st.Init != nil {
			if _, err := a.typeOf(st.Init); err != nil {
				return err
			}
		}
		if st.Cond != nil {
			if err := a.expectInt(st.Cond); err != nil {
				return err
			}
		}
		if st.Step != nil {
			if _, err := a.typeOf(st.Step); err != nil {
				return err
			}
		}
		return a.scoped(LoopScope(), st.Body)

	case cabs.Labeled:
		if !a.scopes.DeclareLabel(st.Label) {
			return &Error{Kind: LabelRedeclaration, Node: st, Name: st.Label}
		}
		return a.analyzeStmt(st.Stmt)

	case cabs.Case:
		disc, ok := a.scopes.CurrSwitchScope()
		if !ok {
			return &Error{Kind: CaseOutsideSwitch, Node: st}
		}
		t, err := a.typeOf(st.Expr)
		if err != nil {
			return err
		}
		if !caseMatches(disc, t) {
			return &Error{Kind: UnexpectedType, Node: st.Expr, Expected: disc, Actual: t}
		}
		return a.analyzeStmt(st.Stmt)

	case cabs.Default:
		if !a.scopes.InSwitch() {
			return &Error{Kind: DefaultOutsideSwitch, Node: st}
		}
		return a.analyzeStmt(st.Stmt)

	case cabs.Goto:
		if !a.scopes.ContainsLabel(st.Label) {
			return &Error{Kind: UndefinedLabel, Node: st, Name: st.Label}
		}
		return nil

	case cabs.Continue:
		if !a.scopes.InLoop() {
			return &Error{Kind: IllegalJump, Node: st, Name: "continue"}
		}
		return nil

	case cabs.Break:
		if !a.scopes.InLoop() && !a.scopes.InSwitch() {
			return &Error{Kind: IllegalJump, Node: st, Name: "break"}
		}
		return nil

	case cabs.Return:
		return a.analyzeReturn(st)
	}
	return fmt.Errorf("sema: unexpected statement %T", s)
}

// case labels agree with the switch only as int/int or char/char
func caseMatches(disc, t ctypes.Type) bool {
	if ctypes.Equal(disc, ctypes.Int()) {
		return ctypes.Equal(t, ctypes.Int())
	}
	if ctypes.Equal(disc, ctypes.Char()) {
		return ctypes.Equal(t, ctypes.Char())
	}
	return false
}

func (a *Analyzer) analyzeReturn(st cabs.Return) error {
	ret, ok := a.scopes.CurrFnScope()
	if !ok {
		return &Error{Kind: ReturnOutsideFn, Node: st}
	}
	if st.Expr == nil {
		if ctypes.Equal(ret, ctypes.Void()) {
			return nil
		}
		return &Error{Kind: ReturnTypeMismatch, Node: st, Expected: ret, Actual: ctypes.Void()}
	}
	t, err := a.typeOf(st.Expr)
	if err != nil {
		return err
	}
	// a void function returns no value, not even a void one
	if ctypes.Equal(ret, ctypes.Void()) || !ctypes.Equal(t, ret) {
		return &Error{Kind: ReturnTypeMismatch, Node: st, Expected: ret, Actual: t}
	}
	return nil
}
