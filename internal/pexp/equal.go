package pexp

import (
	"sort"

	"github.com/funvibe/vcgen/internal/config"
	"github.com/funvibe/vcgen/internal/typesystem"
)

// Equal reports whether a and b are the same variant with the same type and
// equal children. Quantification and display style are not compared.
func Equal(a, b PExp) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || a.ValueHash() != b.ValueHash() {
		return false
	}
	if !typesystem.Equal(a.MathType(), b.MathType()) {
		return false
	}
	switch x := a.(type) {
	case *PSymbol:
		y, ok := b.(*PSymbol)
		return ok && x.name == y.name && x.qualifier == y.qualifier && equalAll(x.args, y.args)
	case *PLiteral:
		y, ok := b.(*PLiteral)
		return ok && x.value == y.value && x.isChar == y.isChar
	case *PLambda:
		y, ok := b.(*PLambda)
		if !ok || len(x.params) != len(y.params) {
			return false
		}
		for i := range x.params {
			if x.params[i].Name != y.params[i].Name || !typesystem.Equal(x.params[i].Type, y.params[i].Type) {
				return false
			}
		}
		return Equal(x.body, y.body)
	case *PAlternatives:
		y, ok := b.(*PAlternatives)
		if !ok || len(x.alts) != len(y.alts) || (x.otherwise == nil) != (y.otherwise == nil) {
			return false
		}
		return equalAll(x.SubExpressions(), y.SubExpressions())
	}
	return false
}

func equalAll(a, b []PExp) bool {
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

// IsLiteral reports whether e is a number, a character, true or false.
func IsLiteral(e PExp) bool {
	switch n := e.(type) {
	case *PLiteral:
		return true
	case *PSymbol:
		return len(n.args) == 0 && (n.name == config.TrueName || n.name == config.FalseName)
	}
	return false
}

// IsVariable reports whether e is a symbol without arguments that is not
// a literal.
func IsVariable(e PExp) bool {
	s, ok := e.(*PSymbol)
	return ok && len(s.args) == 0 && !IsLiteral(e)
}

// IsEquality reports whether e is (a = b).
func IsEquality(e PExp) bool {
	s, ok := e.(*PSymbol)
	return ok && s.name == config.EqualsName && len(s.args) == 2
}

// IsObviouslyTrue recognizes true, (a = a) and conjunctions of those.
func IsObviouslyTrue(e PExp) bool {
	s, ok := e.(*PSymbol)
	if !ok {
		return false
	}
	switch {
	case len(s.args) == 0:
		return s.name == config.TrueName
	case IsEquality(s):
		return Equal(s.args[0], s.args[1])
	case s.name == config.AndName && len(s.args) == 2:
		return IsObviouslyTrue(s.args[0]) && IsObviouslyTrue(s.args[1])
	}
	return false
}

// ContainsExistential reports whether any symbol in e is existentially
// quantified.
func ContainsExistential(e PExp) bool {
	if s, ok := e.(*PSymbol); ok && s.quantification == ThereExists {
		return true
	}
	for _, c := range e.SubExpressions() {
		if ContainsExistential(c) {
			return true
		}
	}
	return false
}

// ContainsName reports whether name occurs free in e.
func ContainsName(e PExp, name string) bool {
	_, ok := symbolNames(e).set[name]
	return ok
}

type nameSet struct {
	sorted []string
	set    map[string]struct{}
}

// SymbolNames lists, sorted, the names of the unquantified symbols of e
// that are not bound by a lambda. The slice must not be modified.
func SymbolNames(e PExp) []string {
	return symbolNames(e).sorted
}

func symbolNames(e PExp) nameSet {
	return e.base().symbolNames.get(func() nameSet {
		set := map[string]struct{}{}
		switch n := e.(type) {
		case *PSymbol:
			if n.quantification == None {
				set[n.name] = struct{}{}
			}
			for _, a := range n.args {
				for k := range symbolNames(a).set {
					set[k] = struct{}{}
				}
			}
		case *PLambda:
			bound := map[string]bool{}
			for _, p := range n.params {
				bound[p.Name] = true
			}
			for k := range symbolNames(n.body).set {
				if !bound[k] {
					set[k] = struct{}{}
				}
			}
		case *PAlternatives:
			for _, c := range n.SubExpressions() {
				for k := range symbolNames(c).set {
					set[k] = struct{}{}
				}
			}
		}
		sorted := make([]string, 0, len(set))
		for k := range set {
			sorted = append(sorted, k)
		}
		sort.Strings(sorted)
		return nameSet{sorted: sorted, set: set}
	})
}

// FunctionApplications lists, in pre-order, every symbol of e that has
// arguments. The slice must not be modified.
func FunctionApplications(e PExp) []*PSymbol {
	return e.base().functionApps.get(func() []*PSymbol {
		var out []*PSymbol
		if s, ok := e.(*PSymbol); ok && len(s.args) > 0 {
			out = append(out, s)
		}
		for _, c := range e.SubExpressions() {
			out = append(out, FunctionApplications(c)...)
		}
		return out
	})
}

// QuantifiedVariables lists the distinct quantified symbols of e in the
// order they first occur. The slice must not be modified.
func QuantifiedVariables(e PExp) []*PSymbol {
	return e.base().quantifiedVars.get(func() []*PSymbol {
		var out []*PSymbol
		seen := map[string]bool{}
		add := func(s *PSymbol) {
			if !seen[s.name] {
				seen[s.name] = true
				out = append(out, s)
			}
		}
		if s, ok := e.(*PSymbol); ok && s.quantification != None && len(s.args) == 0 {
			add(s)
		}
		for _, c := range e.SubExpressions() {
			for _, q := range QuantifiedVariables(c) {
				add(q)
			}
		}
		return out
	})
}

// SplitIntoConjuncts flattens nested "and" applications.
func SplitIntoConjuncts(e PExp) []PExp {
	if s, ok := e.(*PSymbol); ok && s.name == config.AndName && len(s.args) == 2 {
		return append(SplitIntoConjuncts(s.args[0]), SplitIntoConjuncts(s.args[1])...)
	}
	return []PExp{e}
}

// TopLevelOperation names the root operation of e.
func TopLevelOperation(e PExp) string {
	switch n := e.(type) {
	case *PSymbol:
		return n.name
	case *PLiteral:
		return Render(n)
	case *PLambda:
		return "lambda"
	case *PAlternatives:
		return "{{"
	}
	return ""
}
