package sema

import (
	"fmt"

	"github.com/raymyers/ralph-sema/pkg/cabs"
	"github.com/raymyers/ralph-sema/pkg/ctypes"
)

// Operand types accepted by each class of operator. No conversions are
// applied: both operands of a binary operator must have the same type.
var (
	intOrChar  = []ctypes.Type{ctypes.Int(), ctypes.Char()}
	numeric    = []ctypes.Type{ctypes.Int(), ctypes.Char(), ctypes.Float(), ctypes.Double()}
	onlyInt    = []ctypes.Type{ctypes.Int()}
	arithmetic = []ctypes.Type{ctypes.Int(), ctypes.Float(), ctypes.Double()}
)

// binaryLayer returns the operand types allowed for op and whether the
// result is int rather than the operand type
func binaryLayer(op cabs.BinaryOp) ([]ctypes.Type, bool) {
	switch op {
	case cabs.OpOr, cabs.OpAnd, cabs.OpBitOr, cabs.OpBitXor, cabs.OpBitAnd:
		return intOrChar, true
	case cabs.OpEq, cabs.OpNe:
		return numeric, true
	case cabs.OpLt, cabs.OpGt, cabs.OpLe, cabs.OpGe:
		return numeric, false
	case cabs.OpShl, cabs.OpShr:
		return onlyInt, true
	case cabs.OpAdd, cabs.OpSub, cabs.OpMul, cabs.OpDiv:
		return arithmetic, false
	case cabs.OpMod:
		return onlyInt, true
	}
	return nil, false
}

func oneOf(t ctypes.Type, set []ctypes.Type) bool {
	for _, s := range set {
		if ctypes.Equal(t, s) {
			return true
		}
	}
	return false
}

// TypeOf derives the type of an expression in the analyzer's current scope
func (a *Analyzer) TypeOf(e cabs.Expr) (ctypes.Type, error) {
	return a.typeOf(e)
}

func (a *Analyzer) typeOf(e cabs.Expr) (ctypes.Type, error) {
	if err := a.enter(e); err != nil {
		return nil, err
	}
	defer a.leave()

	switch ex := e.(type) {
	case cabs.Constant:
		return ctypes.Int(), nil
	case cabs.CharLit:
		return ctypes.Char(), nil
	case cabs.FloatLit:
		return ctypes.Float(), nil
	case cabs.StringLit:
		return ctypes.String(), nil

	case cabs.Variable:
		if v, ok := a.scopes.FindVar(ex.Name); ok {
			return v.Type, nil
		}
		if t, ok := a.scopes.FindEnumConst(ex.Name); ok {
			return t, nil
		}
		return nil, &Error{Kind: UndefinedVariable, Node: ex, Name: ex.Name}

	case cabs.EnumConst:
		if t, ok := a.scopes.FindEnumConst(ex.Name); ok {
			return t, nil
		}
		return nil, &Error{Kind: UndefinedVariable, Node: ex, Name: ex.Name}

	case cabs.Paren:
		return a.typeOf(ex.Expr)
	case cabs.Unary:
		return a.unaryType(ex)
	case cabs.Binary:
		return a.binaryType(ex)
	case cabs.Assign:
		return a.assignType(ex)
	case cabs.Conditional:
		return a.conditionalType(ex)
	case cabs.Cast:
		return a.castType(ex)

	case cabs.SizeofExpr:
		if _, err := a.typeOf(ex.Expr); err != nil {
			return nil, err
		}
		return ctypes.Int(), nil
	case cabs.SizeofType:
		if _, err := a.typeName(ex.Type); err != nil {
			return nil, err
		}
		return ctypes.Int(), nil

	case cabs.Call:
		return a.callType(ex)
	case cabs.Index:
		return a.indexType(ex)
	case cabs.Member:
		return a.memberType(ex)
	}
	return nil, fmt.Errorf("sema: unexpected expression %T", e)
}

func (a *Analyzer) binaryType(ex cabs.Binary) (ctypes.Type, error) {
	l, err := a.typeOf(ex.Left)
	if err != nil {
		return nil, err
	}
	r, err := a.typeOf(ex.Right)
	if err != nil {
		return nil, err
	}
	allowed, intResult := binaryLayer(ex.Op)
	if !ctypes.Equal(l, r) || !oneOf(l, allowed) {
		return nil, &Error{Kind: InvalidBinaryOperands, Node: ex, Op: ex.Op.String(), Expected: l, Actual: r}
	}
	if intResult {
		return ctypes.Int(), nil
	}
	return l, nil
}

// plain and compound assignment both require identical sides
func (a *Analyzer) assignType(ex cabs.Assign) (ctypes.Type, error) {
	l, err := a.typeOf(ex.Left)
	if err != nil {
		return nil, err
	}
	r, err := a.typeOf(ex.Right)
	if err != nil {
		return nil, err
	}
	if !ctypes.Equal(l, r) {
		return nil, &Error{Kind: TypeMismatch, Node: ex, Expected: l, Actual: r}
	}
	return l, nil
}

func (a *Analyzer) conditionalType(ex cabs.Conditional) (ctypes.Type, error) {
	if err := a.expectInt(ex.Cond); err != nil {
		return nil, err
	}
	then, err := a.typeOf(ex.Then)
	if err != nil {
		return nil, err
	}
	els, err := a.typeOf(ex.Else)
	if err != nil {
		return nil, err
	}
	if !ctypes.Equal(then, els) {
		return nil, &Error{Kind: TypeMismatch, Node: ex, Expected: then, Actual: els}
	}
	return then, nil
}

func (a *Analyzer) unaryType(ex cabs.Unary) (ctypes.Type, error) {
	t, err := a.typeOf(ex.Expr)
	if err != nil {
		return nil, err
	}

	var ok bool
	switch ex.Op {
	case cabs.OpPreInc, cabs.OpPreDec, cabs.OpPostInc, cabs.OpPostDec:
		_, isPtr := t.(ctypes.Tpointer)
		ok = isPtr || oneOf(t, numeric)
	case cabs.OpAddrOf:
		return ctypes.Pointer(t), nil
	case cabs.OpDeref:
		if p, isPtr := t.(ctypes.Tpointer); isPtr {
			return p.Elem, nil
		}
		return nil, &Error{Kind: InvalidDereferenceOperand, Node: ex, Op: ex.Op.String(), Actual: t}
	case cabs.OpPlus, cabs.OpNeg:
		ok = oneOf(t, numeric)
	case cabs.OpBitNot:
		ok = oneOf(t, intOrChar)
	case cabs.OpNot:
		ok = oneOf(t, onlyInt)
	}
	if ok {
		return t, nil
	}
	if ex.Op.IsPostfix() {
		return nil, &Error{Kind: InvalidPostfixOperand, Node: ex, Op: ex.Op.String(), Actual: t}
	}
	return nil, &Error{Kind: InvalidUnaryOperand, Node: ex, Op: ex.Op.String(), Actual: t}
}

// casts are limited to int<->char, int<->float, int<->double and
// pointer<->pointer
func castAllowed(to, from ctypes.Type) bool {
	_, toPtr := to.(ctypes.Tpointer)
	_, fromPtr := from.(ctypes.Tpointer)
	if toPtr && fromPtr {
		return true
	}
	others := []ctypes.Type{ctypes.Char(), ctypes.Float(), ctypes.Double()}
	if ctypes.Equal(to, ctypes.Int()) {
		return oneOf(from, others)
	}
	if ctypes.Equal(from, ctypes.Int()) {
		return oneOf(to, others)
	}
	return false
}

func (a *Analyzer) castType(ex cabs.Cast) (ctypes.Type, error) {
	to, err := a.typeName(ex.Type)
	if err != nil {
		return nil, err
	}
	from, err := a.typeOf(ex.Expr)
	if err != nil {
		return nil, err
	}
	if !castAllowed(to, from) {
		return nil, &Error{Kind: InvalidTypeCast, Node: ex, Expected: to, Actual: from}
	}
	return to, nil
}

func (a *Analyzer) callType(ex cabs.Call) (ctypes.Type, error) {
	ft, err := a.typeOf(ex.Func)
	if err != nil {
		return nil, err
	}
	fn, ok := ft.(ctypes.Tfunction)
	if !ok {
		if p, isPtr := ft.(ctypes.Tpointer); isPtr {
			fn, ok = p.Elem.(ctypes.Tfunction)
		}
	}
	if !ok {
		return nil, &Error{Kind: NotAFunction, Node: ex, Actual: ft}
	}

	want, have := len(fn.Params), len(ex.Args)
	if have < want || (!fn.VarArg && have > want) {
		detail := fmt.Sprintf("expected %d arguments, have %d", want, have)
		if fn.VarArg {
			detail = fmt.Sprintf("expected at least %d arguments, have %d", want, have)
		}
		return nil, &Error{Kind: InvalidFnCall, Node: ex, Name: cabs.ExprString(ex.Func), Expected: fn, Detail: detail}
	}
	for i, arg := range ex.Args {
		t, err := a.typeOf(arg)
		if err != nil {
			return nil, err
		}
		if i < want && !ctypes.Equal(t, fn.Params[i]) {
			return nil, &Error{
				Kind:     InvalidFnCall,
				Node:     arg,
				Name:     cabs.ExprString(ex.Func),
				Expected: fn,
				Actual:   t,
				Detail:   fmt.Sprintf("argument %d has type '%s', expected '%s'", i+1, typeName(t), typeName(fn.Params[i])),
			}
		}
	}
	return fn.Return, nil
}

func (a *Analyzer) indexType(ex cabs.Index) (ctypes.Type, error) {
	base, err := a.typeOf(ex.Array)
	if err != nil {
		return nil, err
	}
	idx, err := a.typeOf(ex.Index)
	if err != nil {
		return nil, err
	}
	elem, ok := ctypes.Elem(base)
	if !ok {
		return nil, &Error{Kind: InvalidPostfixOperand, Node: ex, Op: "[]", Actual: base}
	}
	if !ctypes.Equal(idx, ctypes.Int()) {
		return nil, &Error{Kind: InvalidPostfixOperand, Node: ex.Index, Op: "[]", Expected: ctypes.Int(), Actual: idx}
	}
	return elem, nil
}

func (a *Analyzer) memberType(ex cabs.Member) (ctypes.Type, error) {
	base, err := a.typeOf(ex.Expr)
	if err != nil {
		return nil, err
	}

	var st ctypes.Tstruct
	if ex.Arrow {
		p, isPtr := base.(ctypes.Tpointer)
		if !isPtr {
			return nil, &Error{Kind: NotAPointerToStruct, Node: ex, Name: ex.Name, Actual: base}
		}
		s, isStruct := p.Elem.(ctypes.Tstruct)
		if !isStruct {
			return nil, &Error{Kind: NotAStruct, Node: ex, Name: ex.Name, Actual: p.Elem}
		}
		st = s
	} else {
		s, isStruct := base.(ctypes.Tstruct)
		if !isStruct {
			return nil, &Error{Kind: NotAStruct, Node: ex, Name: ex.Name, Actual: base}
		}
		st = s
	}

	st = a.completeStruct(st)
	f, ok := st.Field(ex.Name)
	if !ok {
		return nil, &Error{Kind: UndefinedMember, Node: ex, Name: ex.Name, Struct: st.String()}
	}
	return f.Type, nil
}
