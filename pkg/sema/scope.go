package sema

import (
	"fmt"
	"io"
	"strings"

	"github.com/raymyers/ralph-sema/pkg/ctypes"
)

type scopeTag int

const (
	tagRegular scopeTag = iota
	tagLoop
	tagFn
	tagSwitch
)

// ScopeKind tags a scope with the control context it opens.
// Fn scopes carry the declared return type, Switch scopes the discriminant type.
type ScopeKind struct {
	tag scopeTag
	typ ctypes.Type
}

// RegularScope is a plain block scope
func RegularScope() ScopeKind { return ScopeKind{tag: tagRegular} }

// LoopScope is opened by while, do-while and for bodies
func LoopScope() ScopeKind { return ScopeKind{tag: tagLoop} }

// FnScope is opened by a function body
func FnScope(ret ctypes.Type) ScopeKind { return ScopeKind{tag: tagFn, typ: ret} }

// SwitchScope is opened by a switch body
func SwitchScope(disc ctypes.Type) ScopeKind { return ScopeKind{tag: tagSwitch, typ: disc} }

func (k ScopeKind) String() string {
	switch k.tag {
	case tagLoop:
		return "loop"
	case tagFn:
		return "fn(" + typeName(k.typ) + ")"
	case tagSwitch:
		return "switch(" + typeName(k.typ) + ")"
	}
	return "regular"
}

// Var is a declared variable or function
type Var struct {
	Name string
	Type ctypes.Type
}

type scope struct {
	kind     ScopeKind
	vars     map[string]Var
	labels   map[string]bool
	enums    map[string]ctypes.Type
	typedefs map[string]ctypes.Type
	tags     map[string]ctypes.Type
}

func newScope(kind ScopeKind) *scope {
	return &scope{
		kind:     kind,
		vars:     make(map[string]Var),
		labels:   make(map[string]bool),
		enums:    make(map[string]ctypes.Type),
		typedefs: make(map[string]ctypes.Type),
		tags:     make(map[string]ctypes.Type),
	}
}

// ScopeStack is the chain of open scopes for one analysis pass.
// It is never empty: the global scope sits at the bottom.
type ScopeStack struct {
	scopes []*scope
	trace  io.Writer
}

// NewScopeStack returns a stack holding only the global scope
func NewScopeStack() *ScopeStack {
	return &ScopeStack{scopes: []*scope{newScope(RegularScope())}}
}

// SetTrace makes the stack report pushes, pops and declarations to w
func (s *ScopeStack) SetTrace(w io.Writer) {
	s.trace = w
}

func (s *ScopeStack) tracef(format string, args ...interface{}) {
	if s.trace == nil {
		return
	}
	fmt.Fprintf(s.trace, "%s%s\n", strings.Repeat("  ", len(s.scopes)-1), fmt.Sprintf(format, args...))
}

// Depth reports the number of open scopes, including the global one
func (s *ScopeStack) Depth() int {
	return len(s.scopes)
}

func (s *ScopeStack) innermost() *scope {
	return s.scopes[len(s.scopes)-1]
}

// Scoped pushes a scope of the given kind, runs body and pops the scope on
// every exit path. body's error is returned unchanged.
func (s *ScopeStack) Scoped(kind ScopeKind, body func() error) error {
	s.scopes = append(s.scopes, newScope(kind))
	s.tracef("push %s", kind)
	defer func() {
		s.tracef("pop %s", kind)
		s.scopes = s.scopes[:len(s.scopes)-1]
	}()
	return body()
}

// DeclareVar adds a variable to the innermost scope.
// It fails if the name is already a variable or typedef there.
func (s *ScopeStack) DeclareVar(name string, t ctypes.Type) bool {
	sc := s.innermost()
	if _, ok := sc.vars[name]; ok {
		return false
	}
	if _, ok := sc.typedefs[name]; ok {
		return false
	}
	sc.vars[name] = Var{Name: name, Type: t}
	s.tracef("var %s: %s", name, typeName(t))
	return true
}

// FindVar looks a variable up innermost-first
func (s *ScopeStack) FindVar(name string) (Var, bool) {
	for i := len(s.scopes) - 1; i >= 0; i-- {
		if v, ok := s.scopes[i].vars[name]; ok {
			return v, true
		}
	}
	return Var{}, false
}

// LookupLocalVar looks a variable up in the innermost scope only
func (s *ScopeStack) LookupLocalVar(name string) (Var, bool) {
	v, ok := s.innermost().vars[name]
	return v, ok
}

// DeclareLabel adds a label to the innermost scope.
// Labels must be unique across the whole open chain.
func (s *ScopeStack) DeclareLabel(name string) bool {
	if s.ContainsLabel(name) {
		return false
	}
	s.innermost().labels[name] = true
	s.tracef("label %s", name)
	return true
}

// ContainsLabel reports whether any open scope declares the label
func (s *ScopeStack) ContainsLabel(name string) bool {
	for _, sc := range s.scopes {
		if sc.labels[name] {
			return true
		}
	}
	return false
}

// DeclareEnumConst adds an enumeration constant to the innermost scope
func (s *ScopeStack) DeclareEnumConst(name string, t ctypes.Type) bool {
	sc := s.innermost()
	if _, ok := sc.enums[name]; ok {
		return false
	}
	sc.enums[name] = t
	s.tracef("enum %s: %s", name, typeName(t))
	return true
}

// FindEnumConst looks an enumeration constant up outermost-first
func (s *ScopeStack) FindEnumConst(name string) (ctypes.Type, bool) {
	for _, sc := range s.scopes {
		if t, ok := sc.enums[name]; ok {
			return t, true
		}
	}
	return nil, false
}

// DeclareTypedef registers a typedef name in the innermost scope.
// It fails if the name is already a typedef or variable there.
func (s *ScopeStack) DeclareTypedef(name string, t ctypes.Type) bool {
	sc := s.innermost()
	if _, ok := sc.typedefs[name]; ok {
		return false
	}
	if _, ok := sc.vars[name]; ok {
		return false
	}
	sc.typedefs[name] = t
	s.tracef("typedef %s: %s", name, typeName(ctypes.Resolve(t)))
	return true
}

// FindTypedef looks a typedef name up innermost-first
func (s *ScopeStack) FindTypedef(name string) (ctypes.Type, bool) {
	for i := len(s.scopes) - 1; i >= 0; i-- {
		if t, ok := s.scopes[i].typedefs[name]; ok {
			return t, true
		}
	}
	return nil, false
}

// DeclareTag binds a struct, union or enum tag in the innermost scope.
// An incomplete struct of the same kind may be completed; anything else
// already bound there is a redeclaration.
func (s *ScopeStack) DeclareTag(name string, t ctypes.Type) bool {
	sc := s.innermost()
	if prev, ok := sc.tags[name]; ok {
		ps, ok := prev.(ctypes.Tstruct)
		if !ok || ps.IsComplete() {
			return false
		}
		ns, ok := t.(ctypes.Tstruct)
		if !ok || ns.Union != ps.Union {
			return false
		}
	}
	sc.tags[name] = t
	s.tracef("tag %s", typeName(t))
	return true
}

// FindTag looks a tag up innermost-first
func (s *ScopeStack) FindTag(name string) (ctypes.Type, bool) {
	for i := len(s.scopes) - 1; i >= 0; i-- {
		if t, ok := s.scopes[i].tags[name]; ok {
			return t, true
		}
	}
	return nil, false
}

func (s *ScopeStack) nearest(tag scopeTag) (ScopeKind, bool) {
	for i := len(s.scopes) - 1; i >= 0; i-- {
		if s.scopes[i].kind.tag == tag {
			return s.scopes[i].kind, true
		}
	}
	return ScopeKind{}, false
}

// CurrFnScope returns the return type of the enclosing function
func (s *ScopeStack) CurrFnScope() (ctypes.Type, bool) {
	k, ok := s.nearest(tagFn)
	return k.typ, ok
}

// CurrSwitchScope returns the discriminant type of the enclosing switch
func (s *ScopeStack) CurrSwitchScope() (ctypes.Type, bool) {
	k, ok := s.nearest(tagSwitch)
	return k.typ, ok
}

// InLoop reports whether a loop scope is open
func (s *ScopeStack) InLoop() bool {
	_, ok := s.nearest(tagLoop)
	return ok
}

// InSwitch reports whether a switch scope is open
func (s *ScopeStack) InSwitch() bool {
	_, ok := s.nearest(tagSwitch)
	return ok
}
