package pexp

import (
	"github.com/funvibe/vcgen/internal/config"
	"github.com/funvibe/vcgen/internal/typesystem"
)

// Substitute replaces every subtree equal to a key of m with its value.
// Replacement is simultaneous: values are not substituted again. A lambda
// parameter shadows keys of the same name, and is renamed when a value
// that would land in the body mentions it. When nothing matches, e itself
// is returned.
func Substitute(e PExp, m *Map) PExp {
	return substitute(e, m, false)
}

// SubstituteFree is Substitute for program variables: a subtree that
// contains a For all or There exists symbol is never replaced, even when
// it equals a key.
func SubstituteFree(e PExp, m *Map) PExp {
	return substitute(e, m, true)
}

func substitute(e PExp, m *Map, free bool) PExp {
	if m.Len() == 0 {
		return e
	}
	if !free || len(QuantifiedVariables(e)) == 0 {
		if v, ok := m.Get(e); ok {
			return v
		}
	}

	switch n := e.(type) {
	case *PSymbol:
		if args, changed := substituteAll(n.args, m, free); changed {
			return n.withArgs(args)
		}
		return n

	case *PLambda:
		names := make(map[string]bool, len(n.params))
		for _, p := range n.params {
			names[p.Name] = true
		}
		inner := m.without(names)
		body := substitute(n.body, inner, free)
		if body == n.body {
			return n
		}
		params, renamed := renameCaptured(n, inner)
		if renamed != n.body {
			body = substitute(renamed, inner, free)
		}
		nl := NewLambda(n.typ, params, body)
		nl.typeValue = n.typeValue
		return nl

	case *PAlternatives:
		if children, changed := substituteAll(n.SubExpressions(), m, free); changed {
			return n.withChildren(children)
		}
		return n
	}
	return e
}

func substituteAll(es []PExp, m *Map, free bool) ([]PExp, bool) {
	return mapAll(es, func(c PExp) PExp { return substitute(c, m, free) })
}

// renameCaptured gives a fresh name to every parameter of l that a value
// of m mentions, and renames it in the body accordingly.
func renameCaptured(l *PLambda, m *Map) ([]Param, PExp) {
	params := l.params
	body := l.body
	var used map[string]bool
	for i, p := range l.params {
		captured := false
		m.Range(func(_, v PExp) bool {
			captured = ContainsName(v, p.Name)
			return !captured
		})
		if !captured {
			continue
		}
		if used == nil {
			used = usedNames(l, m)
			params = append([]Param(nil), l.params...)
		}
		fresh := p.Name + config.NQVSuffix
		for used[fresh] {
			fresh += config.NQVSuffix
		}
		used[fresh] = true
		params[i].Name = fresh
		body = renameFree(body, p.Name, fresh)
	}
	return params, body
}

func usedNames(l *PLambda, m *Map) map[string]bool {
	used := map[string]bool{}
	for _, p := range l.params {
		used[p.Name] = true
	}
	for _, name := range SymbolNames(l.body) {
		used[name] = true
	}
	m.Range(func(k, v PExp) bool {
		for _, name := range SymbolNames(k) {
			used[name] = true
		}
		for _, name := range SymbolNames(v) {
			used[name] = true
		}
		return true
	})
	return used
}

// renameFree renames the unquantified occurrences of the variable old that
// no inner lambda binds.
func renameFree(e PExp, old, fresh string) PExp {
	switch n := e.(type) {
	case *PSymbol:
		if len(n.args) == 0 {
			if n.name == old && n.qualifier == "" && n.quantification == None {
				return newSymbol(n.typ, n.typeValue, "", fresh, nil, None, n.style)
			}
			return n
		}
		if args, changed := mapAll(n.args, func(c PExp) PExp { return renameFree(c, old, fresh) }); changed {
			return n.withArgs(args)
		}
		return n
	case *PLambda:
		for _, p := range n.params {
			if p.Name == old {
				return n
			}
		}
		body := renameFree(n.body, old, fresh)
		if body == n.body {
			return n
		}
		return rebuildLambda(n, body)
	case *PAlternatives:
		if children, changed := mapAll(n.SubExpressions(), func(c PExp) PExp { return renameFree(c, old, fresh) }); changed {
			return n.withChildren(children)
		}
		return n
	}
	return e
}

func rebuildLambda(l *PLambda, body PExp) *PLambda {
	nl := NewLambda(l.typ, l.params, body)
	nl.typeValue = l.typeValue
	return nl
}

// WithSubExpressionReplaced returns e with its i-th child (in
// SubExpressions order) replaced. An index that names no child panics with
// *IndexOutOfBoundsError.
func WithSubExpressionReplaced(e PExp, i int, c PExp) PExp {
	children := e.SubExpressions()
	if i < 0 || i >= len(children) {
		panic(&IndexOutOfBoundsError{Index: i, Len: len(children), Exp: e.String()})
	}
	switch n := e.(type) {
	case *PSymbol:
		args := append([]PExp(nil), n.args...)
		args[i] = c
		return n.withArgs(args)
	case *PLambda:
		return rebuildLambda(n, c)
	case *PAlternatives:
		children = append([]PExp(nil), children...)
		children[i] = c
		return n.withChildren(children)
	}
	panic(&IndexOutOfBoundsError{Index: i, Len: 0, Exp: e.String()})
}

// WithSiteAltered replaces the node reached by following path (child
// indices from the root) with v and rebuilds its ancestors. Siblings along
// the way are reused.
func WithSiteAltered(e PExp, path []int, v PExp) PExp {
	if len(path) == 0 {
		return v
	}
	children := e.SubExpressions()
	i := path[0]
	if i < 0 || i >= len(children) {
		panic(&IndexOutOfBoundsError{Index: i, Len: len(children), Exp: e.String()})
	}
	return WithSubExpressionReplaced(e, i, WithSiteAltered(children[i], path[1:], v))
}

// WithTypeReplaced returns e with a different math type on its root.
func WithTypeReplaced(e PExp, t typesystem.Type) PExp {
	return rebuild(e, t, e.MathTypeValue())
}

// WithTypeValueReplaced returns e with a different type value on its root.
func WithTypeValueReplaced(e PExp, tv typesystem.Type) PExp {
	return rebuild(e, e.MathType(), tv)
}

func rebuild(e PExp, t, tv typesystem.Type) PExp {
	switch n := e.(type) {
	case *PSymbol:
		return newSymbol(t, tv, n.qualifier, n.name, n.args, n.quantification, n.style)
	case *PLiteral:
		nl := newLiteral(t, n.value, n.isChar)
		nl.typeValue = tv
		return nl
	case *PLambda:
		nl := NewLambda(t, n.params, n.body)
		nl.typeValue = tv
		return nl
	case *PAlternatives:
		na := NewAlternatives(t, n.alts, n.otherwise)
		na.typeValue = tv
		return na
	}
	return e
}

// WithTypesSubstituted applies a generic instantiation to the types of
// every node.
func WithTypesSubstituted(e PExp, s typesystem.Subst) PExp {
	if len(s) == 0 {
		return e
	}
	var tv typesystem.Type
	if e.MathTypeValue() != nil {
		tv = e.MathTypeValue().Apply(s)
	}
	t := e.MathType().Apply(s)

	switch n := e.(type) {
	case *PSymbol:
		args := make([]PExp, len(n.args))
		for i, a := range n.args {
			args[i] = WithTypesSubstituted(a, s)
		}
		return newSymbol(t, tv, n.qualifier, n.name, args, n.quantification, n.style)
	case *PLiteral:
		return rebuild(n, t, tv)
	case *PLambda:
		params := make([]Param, len(n.params))
		for i, p := range n.params {
			params[i] = Param{Name: p.Name, Type: p.Type.Apply(s)}
		}
		nl := NewLambda(t, params, WithTypesSubstituted(n.body, s))
		nl.typeValue = tv
		return nl
	case *PAlternatives:
		children := n.SubExpressions()
		for i, c := range children {
			children[i] = WithTypesSubstituted(c, s)
		}
		return rebuild(n.withChildren(children), t, tv)
	}
	return e
}

// FlipQuantifiers swaps For all and There exists on every quantified
// symbol.
func FlipQuantifiers(e PExp) PExp {
	switch n := e.(type) {
	case *PSymbol:
		args, changed := mapAll(n.args, FlipQuantifiers)
		if n.quantification == None && !changed {
			return n
		}
		if !changed {
			args = n.args
		}
		return newSymbol(n.typ, n.typeValue, n.qualifier, n.name, args, n.quantification.Flipped(), n.style)
	case *PLambda:
		body := FlipQuantifiers(n.body)
		if body == n.body {
			return n
		}
		return rebuildLambda(n, body)
	case *PAlternatives:
		if children, changed := mapAll(n.SubExpressions(), FlipQuantifiers); changed {
			return n.withChildren(children)
		}
		return n
	}
	return e
}

func mapAll(es []PExp, f func(PExp) PExp) ([]PExp, bool) {
	var out []PExp
	for i, c := range es {
		nc := f(c)
		if nc != c && out == nil {
			out = make([]PExp, len(es))
			copy(out, es[:i])
		}
		if out != nil {
			out[i] = nc
		}
	}
	return out, out != nil
}
