package pexp

import "github.com/funvibe/vcgen/internal/typesystem"

// BindTo matches pattern against target top-down, without backtracking.
// Pattern variables (see PSymbol.IsPatternVariable) bind to the target
// subtree they meet; a target must be a subtype of the variable's type,
// and a variable met again must meet a value-equal subtree. Everything
// else must match exactly. On success, Substitute(pattern, m) equals
// target.
func BindTo(pattern, target PExp) (*Map, error) {
	m := NewMap()
	if err := bindInto(pattern, target, m); err != nil {
		return nil, err
	}
	return m, nil
}

func bindInto(p, t PExp, m *Map) error {
	if ps, ok := p.(*PSymbol); ok && ps.IsPatternVariable() {
		if prev, bound := m.Get(ps); bound {
			if !Equal(prev, t) {
				return bindingErr(p, t, "%s is already bound to %s", ps.name, prev)
			}
			return nil
		}
		if !typesystem.IsSubtype(t.MathType(), ps.MathType()) {
			return bindingErr(p, t, "type %s is not a subtype of %s", t.MathType(), ps.MathType())
		}
		m.Put(ps, t)
		return nil
	}

	if !typesystem.Equal(p.MathType(), t.MathType()) {
		return bindingErr(p, t, "type mismatch: %s vs %s", p.MathType(), t.MathType())
	}

	switch pn := p.(type) {
	case *PSymbol:
		tn, ok := t.(*PSymbol)
		if !ok {
			return bindingErr(p, t, "not a symbol")
		}
		if pn.name != tn.name || pn.qualifier != tn.qualifier {
			return bindingErr(p, t, "function name mismatch")
		}
		if len(pn.args) != len(tn.args) {
			return bindingErr(p, t, "arity mismatch: %d vs %d", len(pn.args), len(tn.args))
		}
		for i := range pn.args {
			if err := bindInto(pn.args[i], tn.args[i], m); err != nil {
				return err
			}
		}
		return nil

	case *PLiteral:
		tn, ok := t.(*PLiteral)
		if !ok || tn.value != pn.value || tn.isChar != pn.isChar {
			return bindingErr(p, t, "literal mismatch")
		}
		return nil

	case *PLambda:
		tn, ok := t.(*PLambda)
		if !ok {
			return bindingErr(p, t, "not a lambda")
		}
		if len(pn.params) != len(tn.params) {
			return bindingErr(p, t, "lambda arity mismatch: %d vs %d", len(pn.params), len(tn.params))
		}
		for i := range pn.params {
			if pn.params[i].Name != tn.params[i].Name || !typesystem.Equal(pn.params[i].Type, tn.params[i].Type) {
				return bindingErr(p, t, "lambda parameter %d differs", i+1)
			}
		}
		return bindInto(pn.body, tn.body, m)

	case *PAlternatives:
		tn, ok := t.(*PAlternatives)
		if !ok {
			return bindingErr(p, t, "not an alternatives expression")
		}
		if len(pn.alts) != len(tn.alts) || (pn.otherwise == nil) != (tn.otherwise == nil) {
			return bindingErr(p, t, "alternative count mismatch")
		}
		pc, tc := pn.SubExpressions(), tn.SubExpressions()
		for i := range pc {
			if err := bindInto(pc[i], tc[i], m); err != nil {
				return err
			}
		}
		return nil
	}
	return bindingErr(p, t, "unknown expression kind %T", p)
}
