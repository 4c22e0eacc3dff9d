package pexp

import (
	"strings"

	"github.com/funvibe/vcgen/internal/ast"
	"github.com/funvibe/vcgen/internal/config"
	"github.com/funvibe/vcgen/internal/diagnostics"
)

// Build converts a typed expression into a PExp. Every node must carry a
// math type; the first one that does not is reported as V001 and no
// expression is returned.
func Build(e ast.Exp) (PExp, error) {
	return build(e, map[string]Quantification{})
}

func build(e ast.Exp, quantified map[string]Quantification) (PExp, error) {
	if e == nil {
		return nil, diagnostics.NewError(diagnostics.ErrV001, diagnostics.Location{}, "missing expression")
	}
	t := e.MathType()
	if t == nil {
		return nil, diagnostics.Errorf(diagnostics.ErrV001, e.GetLocation(),
			"expression %q has no math type", e.String())
	}
	tv := e.MathTypeValue()

	switch n := e.(type) {
	case *ast.VarExp:
		q := n.Quantification
		if bq, ok := quantified[n.Name]; ok && n.Qualifier == "" {
			q = bq
		}
		return newSymbol(t, tv, n.Qualifier, n.Name, nil, q, ast.Prefix), nil

	case *ast.OldExp:
		v, ok := n.Exp.(*ast.VarExp)
		if !ok {
			return nil, diagnostics.Errorf(diagnostics.ErrV006, n.GetLocation(),
				"old value of %q: only variables have an incoming value", n.Exp.String())
		}
		return newSymbol(t, tv, v.Qualifier, config.OldPrefix+v.Name, nil, None, ast.Prefix), nil

	case *ast.IntegerExp:
		return rebuild(newLiteral(t, n.Value, false), t, tv), nil

	case *ast.CharExp:
		return rebuild(newLiteral(t, int64(n.Value), true), t, tv), nil

	case *ast.FunctionExp:
		args, err := buildAll(n.Args, quantified)
		if err != nil {
			return nil, err
		}
		return newSymbol(t, tv, n.Qualifier, n.Name, args, None, n.Style), nil

	case *ast.CallExp:
		args, err := buildAll(n.Args, quantified)
		if err != nil {
			return nil, err
		}
		return newSymbol(t, tv, n.Qualifier, n.Name, args, None, ast.Prefix), nil

	case *ast.DotExp:
		names := make([]string, len(n.Segments))
		for i, s := range n.Segments {
			v, ok := s.(*ast.VarExp)
			if !ok {
				return nil, diagnostics.Errorf(diagnostics.ErrV006, n.GetLocation(),
					"segment %q of %q is not a name", s.String(), n.String())
			}
			names[i] = v.Name
		}
		return newSymbol(t, tv, "", strings.Join(names, "."), nil, None, ast.Prefix), nil

	case *ast.LambdaExp:
		params := make([]Param, len(n.Params))
		inner := withoutNames(quantified, n.Params)
		for i, p := range n.Params {
			if p.MathType() == nil {
				return nil, diagnostics.Errorf(diagnostics.ErrV001, p.GetLocation(),
					"lambda parameter %q has no math type", p.Name)
			}
			params[i] = Param{Name: p.Name, Type: p.MathType()}
		}
		body, err := build(n.Body, inner)
		if err != nil {
			return nil, err
		}
		return rebuild(NewLambda(t, params, body), t, tv), nil

	case *ast.QuantExp:
		inner := make(map[string]Quantification, len(quantified)+len(n.Vars))
		for k, v := range quantified {
			inner[k] = v
		}
		for _, v := range n.Vars {
			if v.MathType() == nil {
				return nil, diagnostics.Errorf(diagnostics.ErrV001, v.GetLocation(),
					"quantified variable %q has no math type", v.Name)
			}
			inner[v.Name] = n.Quantification
		}
		return build(n.Body, inner)

	case *ast.AlternativeExp:
		alts := make([]Alternative, len(n.Alternatives))
		for i, a := range n.Alternatives {
			c, err := build(a.Condition, quantified)
			if err != nil {
				return nil, err
			}
			r, err := build(a.Result, quantified)
			if err != nil {
				return nil, err
			}
			alts[i] = Alternative{Condition: c, Result: r}
		}
		var otherwise PExp
		if n.Otherwise != nil {
			o, err := build(n.Otherwise, quantified)
			if err != nil {
				return nil, err
			}
			otherwise = o
		}
		return rebuild(NewAlternatives(t, alts, otherwise), t, tv), nil
	}

	return nil, diagnostics.Errorf(diagnostics.ErrV006, e.GetLocation(),
		"unsupported expression %T", e)
}

func buildAll(es []ast.Exp, quantified map[string]Quantification) ([]PExp, error) {
	out := make([]PExp, len(es))
	for i, e := range es {
		p, err := build(e, quantified)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

func withoutNames(m map[string]Quantification, vars []*ast.VarExp) map[string]Quantification {
	out := make(map[string]Quantification, len(m))
	for k, v := range m {
		out[k] = v
	}
	for _, v := range vars {
		delete(out, v.Name)
	}
	return out
}
