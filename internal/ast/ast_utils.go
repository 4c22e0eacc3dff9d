package ast

import (
	"github.com/funvibe/vcgen/internal/config"
	"github.com/funvibe/vcgen/internal/diagnostics"
	"github.com/funvibe/vcgen/internal/typesystem"
)

// FormConjunct builds (a and b), typed boolean.
func FormConjunct(loc diagnostics.Location, a, b Exp, boolean typesystem.Type) Exp {
	return &FunctionExp{
		ExpBase: ExpBase{Location: loc, Type: boolean},
		Name:    config.AndName,
		Args:    []Exp{a, b},
		Style:   Infix,
	}
}

// FormEquality builds (a = b), typed boolean.
func FormEquality(loc diagnostics.Location, a, b Exp, boolean typesystem.Type) Exp {
	return &FunctionExp{
		ExpBase: ExpBase{Location: loc, Type: boolean},
		Name:    config.EqualsName,
		Args:    []Exp{a, b},
		Style:   Infix,
	}
}

// Negate builds not(e), typed boolean.
func Negate(e Exp, boolean typesystem.Type) Exp {
	return &FunctionExp{
		ExpBase: ExpBase{Location: e.GetLocation(), Type: boolean},
		Name:    config.NotName,
		Args:    []Exp{e},
		Style:   Prefix,
	}
}

// Rewrite rebuilds e top-down. f is offered every node first; when it
// returns true its result replaces the node and the node's children are
// not visited. e is not modified.
func Rewrite(e Exp, f func(Exp) (Exp, bool)) Exp {
	if e == nil {
		return nil
	}
	if r, ok := f(e); ok {
		return r
	}
	switch n := e.(type) {
	case *OldExp:
		c := *n
		c.Exp = Rewrite(n.Exp, f)
		return &c
	case *FunctionExp:
		c := *n
		c.Args = rewriteAll(n.Args, f)
		return &c
	case *CallExp:
		c := *n
		c.Args = rewriteAll(n.Args, f)
		return &c
	case *DotExp:
		c := *n
		c.Segments = rewriteAll(n.Segments, f)
		return &c
	case *LambdaExp:
		c := *n
		c.Body = Rewrite(n.Body, f)
		return &c
	case *QuantExp:
		c := *n
		c.Body = Rewrite(n.Body, f)
		return &c
	case *AlternativeExp:
		c := *n
		c.Alternatives = make([]AltItem, len(n.Alternatives))
		for i, a := range n.Alternatives {
			c.Alternatives[i] = AltItem{Condition: Rewrite(a.Condition, f), Result: Rewrite(a.Result, f)}
		}
		c.Otherwise = Rewrite(n.Otherwise, f)
		return &c
	}
	return e.CloneExp()
}

func rewriteAll(es []Exp, f func(Exp) (Exp, bool)) []Exp {
	out := make([]Exp, len(es))
	for i, e := range es {
		out[i] = Rewrite(e, f)
	}
	return out
}

// Replacement pairs a variable with the expression that takes its place.
// Old selects #Name instead of Name.
type Replacement struct {
	Name string
	Old  bool
	With Exp
}

// ReplaceVars substitutes unqualified variables (and #variables)
// simultaneously. Bound variables of lambdas and quantifiers are not
// touched.
func ReplaceVars(e Exp, repls []Replacement) Exp {
	if len(repls) == 0 {
		return e
	}
	find := func(name string, old bool) (Exp, bool) {
		for _, r := range repls {
			if r.Name == name && r.Old == old {
				return r.With, true
			}
		}
		return nil, false
	}
	var walk func(Exp, map[string]bool) Exp
	walk = func(e Exp, bound map[string]bool) Exp {
		return Rewrite(e, func(n Exp) (Exp, bool) {
			switch v := n.(type) {
			case *VarExp:
				if v.Qualifier != "" || bound[v.Name] {
					return nil, false
				}
				if w, ok := find(v.Name, false); ok {
					return w.CloneExp(), true
				}
			case *OldExp:
				if inner, ok := v.Exp.(*VarExp); ok && inner.Qualifier == "" && !bound[inner.Name] {
					if w, ok := find(inner.Name, true); ok {
						return w.CloneExp(), true
					}
				}
			case *LambdaExp:
				c := *v
				c.Body = walk(v.Body, bindNames(bound, v.Params))
				return &c, true
			case *QuantExp:
				c := *v
				c.Body = walk(v.Body, bindNames(bound, v.Vars))
				return &c, true
			}
			return nil, false
		})
	}
	return walk(e, map[string]bool{})
}

func bindNames(bound map[string]bool, vars []*VarExp) map[string]bool {
	nb := make(map[string]bool, len(bound)+len(vars))
	for k, v := range bound {
		nb[k] = v
	}
	for _, v := range vars {
		nb[v.Name] = true
	}
	return nb
}

// SubstituteTypes applies a generic instantiation to every node's type.
func SubstituteTypes(e Exp, s typesystem.Subst) Exp {
	if len(s) == 0 || e == nil {
		return e
	}
	var apply func(Exp) Exp
	apply = func(e Exp) Exp {
		return Rewrite(e, func(n Exp) (Exp, bool) {
			// Rebuild children first, then fix up this node.
			var c Exp
			switch v := n.(type) {
			case *OldExp:
				cp := *v
				cp.Exp = apply(v.Exp)
				c = &cp
			case *FunctionExp:
				cp := *v
				cp.Args = applyAll(v.Args, apply)
				c = &cp
			case *CallExp:
				cp := *v
				cp.Args = applyAll(v.Args, apply)
				c = &cp
			case *DotExp:
				cp := *v
				cp.Segments = applyAll(v.Segments, apply)
				c = &cp
			case *LambdaExp:
				cp := *v
				cp.Params = make([]*VarExp, len(v.Params))
				for i, p := range v.Params {
					cp.Params[i] = apply(p).(*VarExp)
				}
				cp.Body = apply(v.Body)
				c = &cp
			case *QuantExp:
				cp := *v
				cp.Vars = make([]*VarExp, len(v.Vars))
				for i, p := range v.Vars {
					cp.Vars[i] = apply(p).(*VarExp)
				}
				cp.Body = apply(v.Body)
				c = &cp
			case *AlternativeExp:
				cp := *v
				cp.Alternatives = make([]AltItem, len(v.Alternatives))
				for i, a := range v.Alternatives {
					cp.Alternatives[i] = AltItem{Condition: apply(a.Condition), Result: apply(a.Result)}
				}
				if v.Otherwise != nil {
					cp.Otherwise = apply(v.Otherwise)
				}
				c = &cp
			default:
				c = n.CloneExp()
			}
			b := c.base()
			if b.Type != nil {
				b.Type = b.Type.Apply(s)
			}
			if b.TypeValue != nil {
				b.TypeValue = b.TypeValue.Apply(s)
			}
			return c, true
		})
	}
	return apply(e)
}

func applyAll(es []Exp, f func(Exp) Exp) []Exp {
	out := make([]Exp, len(es))
	for i, e := range es {
		out[i] = f(e)
	}
	return out
}
