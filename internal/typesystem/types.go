package typesystem

import (
	"fmt"
	"strings"
)

// Type is the interface for all math types.
type Type interface {
	String() string
	Apply(Subst) Type
	FreeTypeVariables() []TVar
}

// TVar is a generic placeholder (e.g. the Entry of a Stack_Template).
// It is bound to a concrete type when a callee is instantiated.
type TVar struct {
	Name string
}

func (t TVar) String() string { return t.Name }

func (t TVar) Apply(s Subst) Type {
	return ApplyWithCycleCheck(t, s, make(map[string]bool))
}

func (t TVar) FreeTypeVariables() []TVar {
	return []TVar{t}
}

// ApplyWithCycleCheck applies substitution with cycle detection.
// This is the main entry point for substitution application.
func ApplyWithCycleCheck(t Type, s Subst, visited map[string]bool) Type {
	if t == nil {
		return nil
	}

	switch typ := t.(type) {
	case TVar:
		if visited[typ.Name] {
			return typ
		}
		if replacement, ok := s[typ.Name]; ok {
			if tv, ok := replacement.(TVar); ok && tv.Name == typ.Name {
				return typ
			}
			newVisited := copyVisited(visited)
			newVisited[typ.Name] = true
			return ApplyWithCycleCheck(replacement, s, newVisited)
		}
		return typ

	case TCon:
		// Constants never change. Facility instantiation goes through TVar.
		return typ

	case TApp:
		newArgs := make([]Type, len(typ.Args))
		for i, arg := range typ.Args {
			newArgs[i] = ApplyWithCycleCheck(arg, s, visited)
		}
		return TApp{Constructor: typ.Constructor, Args: newArgs}

	case TFunc:
		newParams := make([]Type, len(typ.Params))
		for i, p := range typ.Params {
			newParams[i] = ApplyWithCycleCheck(p, s, visited)
		}
		return TFunc{
			Params:     newParams,
			ReturnType: ApplyWithCycleCheck(typ.ReturnType, s, visited),
		}

	case TTuple:
		newElems := make([]Type, len(typ.Elements))
		for i, e := range typ.Elements {
			newElems[i] = ApplyWithCycleCheck(e, s, visited)
		}
		return TTuple{Elements: newElems}

	case TType:
		return TType{Type: ApplyWithCycleCheck(typ.Type, s, visited)}

	default:
		return t
	}
}

func copyVisited(m map[string]bool) map[string]bool {
	newMap := make(map[string]bool, len(m)+1)
	for k, v := range m {
		newMap[k] = v
	}
	return newMap
}

// TCon is a named math type (e.g. B, Z, N). Super links it to the type it
// is a subset of; nil means it sits directly under Entity.
type TCon struct {
	Name  string
	Super *TCon
}

func (t TCon) String() string { return t.Name }

func (t TCon) Apply(s Subst) Type {
	return ApplyWithCycleCheck(t, s, make(map[string]bool))
}

func (t TCon) FreeTypeVariables() []TVar {
	return []TVar{}
}

// TApp is a type constructor applied to arguments (e.g. Str(Entry)).
type TApp struct {
	Constructor TCon
	Args        []Type
}

func (t TApp) String() string {
	if len(t.Args) == 0 {
		return t.Constructor.String()
	}
	args := make([]string, len(t.Args))
	for i, arg := range t.Args {
		args[i] = arg.String()
	}
	return fmt.Sprintf("%s(%s)", t.Constructor.String(), strings.Join(args, ", "))
}

func (t TApp) Apply(s Subst) Type {
	return ApplyWithCycleCheck(t, s, make(map[string]bool))
}

func (t TApp) FreeTypeVariables() []TVar {
	vars := []TVar{}
	for _, arg := range t.Args {
		vars = append(vars, arg.FreeTypeVariables()...)
	}
	return uniqueTVars(vars)
}

// TTuple is a cartesian product (e.g. Z * B).
type TTuple struct {
	Elements []Type
}

func (t TTuple) String() string {
	args := make([]string, len(t.Elements))
	for i, el := range t.Elements {
		args[i] = el.String()
	}
	return fmt.Sprintf("(%s)", strings.Join(args, " * "))
}

func (t TTuple) Apply(s Subst) Type {
	return ApplyWithCycleCheck(t, s, make(map[string]bool))
}

func (t TTuple) FreeTypeVariables() []TVar {
	vars := []TVar{}
	for _, el := range t.Elements {
		vars = append(vars, el.FreeTypeVariables()...)
	}
	return uniqueTVars(vars)
}

// TFunc is the type of a math function (e.g. Z * Z -> B).
type TFunc struct {
	Params     []Type
	ReturnType Type
}

func (t TFunc) String() string {
	params := make([]string, len(t.Params))
	for i, p := range t.Params {
		params[i] = p.String()
	}
	return fmt.Sprintf("(%s -> %s)", strings.Join(params, " * "), t.ReturnType.String())
}

func (t TFunc) Apply(s Subst) Type {
	return ApplyWithCycleCheck(t, s, make(map[string]bool))
}

func (t TFunc) FreeTypeVariables() []TVar {
	vars := []TVar{}
	for _, p := range t.Params {
		vars = append(vars, p.FreeTypeVariables()...)
	}
	vars = append(vars, t.ReturnType.FreeTypeVariables()...)
	return uniqueTVars(vars)
}

// TType is the type of an expression that itself denotes a type.
type TType struct {
	Type Type
}

func (t TType) String() string { return fmt.Sprintf("Powerset(%s)", t.Type.String()) }

func (t TType) Apply(s Subst) Type {
	return ApplyWithCycleCheck(t, s, make(map[string]bool))
}

func (t TType) FreeTypeVariables() []TVar {
	return t.Type.FreeTypeVariables()
}

// Equal reports whether two types are identical. Super links of TCon are
// not compared; names identify constants.
func Equal(t1, t2 Type) bool {
	if t1 == nil || t2 == nil {
		return t1 == nil && t2 == nil
	}
	switch a := t1.(type) {
	case TVar:
		b, ok := t2.(TVar)
		return ok && a.Name == b.Name
	case TCon:
		b, ok := t2.(TCon)
		return ok && a.Name == b.Name
	case TApp:
		b, ok := t2.(TApp)
		return ok && a.Constructor.Name == b.Constructor.Name && equalList(a.Args, b.Args)
	case TTuple:
		b, ok := t2.(TTuple)
		return ok && equalList(a.Elements, b.Elements)
	case TFunc:
		b, ok := t2.(TFunc)
		return ok && equalList(a.Params, b.Params) && Equal(a.ReturnType, b.ReturnType)
	case TType:
		b, ok := t2.(TType)
		return ok && Equal(a.Type, b.Type)
	}
	return false
}

func equalList(a, b []Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// IsSubtype reports whether every value of sub is a value of super.
// Entity and generic placeholders accept everything.
func IsSubtype(sub, super Type) bool {
	if sub == nil || super == nil {
		return false
	}
	if Equal(sub, super) {
		return true
	}
	switch sp := super.(type) {
	case TVar:
		return true
	case TCon:
		if sp.Name == EntityName {
			return true
		}
	}

	switch s := sub.(type) {
	case TCon:
		for p := s.Super; p != nil; p = p.Super {
			if p.Name == nameOf(super) {
				return true
			}
		}
		return false
	case TApp:
		sp, ok := super.(TApp)
		if !ok || sp.Constructor.Name != s.Constructor.Name || len(sp.Args) != len(s.Args) {
			return false
		}
		for i := range s.Args {
			if !IsSubtype(s.Args[i], sp.Args[i]) {
				return false
			}
		}
		return true
	case TTuple:
		sp, ok := super.(TTuple)
		if !ok || len(sp.Elements) != len(s.Elements) {
			return false
		}
		for i := range s.Elements {
			if !IsSubtype(s.Elements[i], sp.Elements[i]) {
				return false
			}
		}
		return true
	case TFunc:
		sp, ok := super.(TFunc)
		return ok && equalList(s.Params, sp.Params) && IsSubtype(s.ReturnType, sp.ReturnType)
	case TType:
		if c, ok := super.(TCon); ok && c.Name == SSetName {
			return true
		}
		sp, ok := super.(TType)
		return ok && IsSubtype(s.Type, sp.Type)
	}
	return false
}

func nameOf(t Type) string {
	if c, ok := t.(TCon); ok {
		return c.Name
	}
	return ""
}

// Subst is a mapping from generic placeholder names to types.
type Subst map[string]Type

func uniqueTVars(vars []TVar) []TVar {
	unique := []TVar{}
	seen := map[string]bool{}
	for _, v := range vars {
		if !seen[v.Name] {
			seen[v.Name] = true
			unique = append(unique, v)
		}
	}
	return unique
}
