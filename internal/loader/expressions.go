package loader

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/vcgen/internal/ast"
	"github.com/funvibe/vcgen/internal/config"
	"github.com/funvibe/vcgen/internal/typesystem"
)

// scope maps the variables visible to an expression to their types.
type scope map[string]typesystem.Type

func (s scope) with(name string, t typesystem.Type) scope {
	c := make(scope, len(s)+1)
	for k, v := range s {
		c[k] = v
	}
	c[name] = t
	return c
}

var (
	booleanOps = map[string]bool{
		config.AndName: true, config.OrName: true, config.ImpliesName: true,
		config.EqualsName: true, config.NotEqName: true, config.LessEqName: true,
		"<": true, ">": true, ">=": true, "is_in": true,
	}
	arithmeticOps = map[string]bool{
		config.PlusName: true, "-": true, "*": true, "/": true, "o": true,
	}
)

const lengthName = "|"

func splitQualifier(s string) (string, string) {
	if i := strings.Index(s, "::"); i > 0 {
		return s[:i], s[i+2:]
	}
	return "", s
}

func (d *decoder) exp(n *yaml.Node, sc scope) (ast.Exp, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		return d.scalar(n, sc)
	case yaml.SequenceNode:
		return d.application(n, sc)
	case yaml.MappingNode:
		return d.form(n, sc)
	case yaml.AliasNode:
		return d.exp(n.Alias, sc)
	}
	return nil, d.errorf(n, "expected an expression")
}

func (d *decoder) scalar(n *yaml.Node, sc scope) (ast.Exp, error) {
	base := ast.ExpBase{Location: d.loc(n)}
	switch n.Tag {
	case "!!int":
		v, err := strconv.ParseInt(n.Value, 0, 64)
		if err != nil {
			return nil, d.errorf(n, "bad integer %q", n.Value)
		}
		base.Type = d.graph.Z
		return &ast.IntegerExp{ExpBase: base, Value: v}, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, d.errorf(n, "bad boolean %q", n.Value)
		}
		base.Type = d.graph.BOOLEAN
		name := config.FalseName
		if b {
			name = config.TrueName
		}
		return &ast.VarExp{ExpBase: base, Name: name}, nil
	case "!!str":
		if strings.HasPrefix(n.Value, config.OldPrefix) {
			v := d.variable(base, strings.TrimPrefix(n.Value, config.OldPrefix), sc)
			return &ast.OldExp{ExpBase: ast.ExpBase{Location: base.Location, Type: v.Type}, Exp: v}, nil
		}
		return d.variable(base, n.Value, sc), nil
	}
	return nil, d.errorf(n, "unsupported value %q", n.Value)
}

func (d *decoder) variable(base ast.ExpBase, ref string, sc scope) *ast.VarExp {
	qualifier, name := splitQualifier(ref)
	if qualifier == "" {
		if t, ok := sc[name]; ok {
			base.Type = t
		} else if t, ok := d.defs[name]; ok {
			if _, fn := t.(typesystem.TFunc); !fn {
				base.Type = t
			}
		}
	}
	return &ast.VarExp{ExpBase: base, Qualifier: qualifier, Name: name}
}

func (d *decoder) exps(nodes []*yaml.Node, sc scope) ([]ast.Exp, error) {
	out := make([]ast.Exp, len(nodes))
	for i, n := range nodes {
		e, err := d.exp(n, sc)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

func (d *decoder) application(n *yaml.Node, sc scope) (ast.Exp, error) {
	if len(n.Content) == 0 {
		return nil, d.errorf(n, "empty application")
	}
	head := n.Content[0]
	if head.Kind != yaml.ScalarNode {
		return nil, d.errorf(head, "operator must be a name")
	}
	args, err := d.exps(n.Content[1:], sc)
	if err != nil {
		return nil, err
	}
	qualifier, name := splitQualifier(head.Value)
	f := &ast.FunctionExp{ExpBase: ast.ExpBase{Location: d.loc(n)}, Qualifier: qualifier, Name: name, Args: args}

	switch {
	case qualifier == "" && name == config.NotName && len(args) == 1:
		f.Type = d.graph.BOOLEAN
	case qualifier == "" && booleanOps[name] && len(args) == 2:
		f.Type, f.Style = d.graph.BOOLEAN, ast.Infix
	case qualifier == "" && arithmeticOps[name] && len(args) == 2:
		f.Type, f.Style = args[0].MathType(), ast.Infix
	case qualifier == "" && name == lengthName && len(args) == 1:
		f.Type, f.Style = d.graph.N, ast.Outfix
	case qualifier == "":
		if fn, ok := d.defs[name].(typesystem.TFunc); ok && len(fn.Params) == len(args) {
			f.Type = fn.ReturnType
		}
	}
	return f, nil
}

func mapping(n *yaml.Node) map[string]*yaml.Node {
	m := make(map[string]*yaml.Node, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		m[n.Content[i].Value] = n.Content[i+1]
	}
	return m
}

// form decodes the map-shaped expressions. A "type" key overrides the
// type of any of them.
func (d *decoder) form(n *yaml.Node, sc scope) (ast.Exp, error) {
	m := mapping(n)
	var (
		e   ast.Exp
		err error
	)
	switch {
	case m["char"] != nil:
		e, err = d.char(m["char"])
	case m["lambda"] != nil:
		e, err = d.lambda(n, m, sc)
	case m["alt"] != nil:
		e, err = d.alternatives(n, m, sc)
	case m["forall"] != nil:
		e, err = d.quantified(n, ast.ForAll, m["forall"], m["body"], sc)
	case m["exists"] != nil:
		e, err = d.quantified(n, ast.ThereExists, m["exists"], m["body"], sc)
	case m["dot"] != nil:
		e, err = d.dot(m["dot"], sc)
	case m["call"] != nil:
		e, err = d.call(n, m, sc)
	case m["exp"] != nil:
		e, err = d.exp(m["exp"], sc)
	default:
		return nil, d.errorf(n, "unknown expression form")
	}
	if err != nil {
		return nil, err
	}
	if tn := m["type"]; tn != nil {
		t, err := d.parseType(tn.Value)
		if err != nil {
			return nil, d.errorf(tn, "%v", err)
		}
		e = ast.WithMathType(e, t)
	}
	return e, nil
}

func (d *decoder) char(n *yaml.Node) (ast.Exp, error) {
	r, size := utf8.DecodeRuneInString(n.Value)
	if n.Kind != yaml.ScalarNode || size == 0 || size != len(n.Value) {
		return nil, d.errorf(n, "char must be a single character")
	}
	return &ast.CharExp{ExpBase: ast.ExpBase{Location: d.loc(n), Type: d.graph.CHAR}, Value: r}, nil
}

// typedVars decodes [[x, T], ...] and returns the scope extended with them.
func (d *decoder) typedVars(n *yaml.Node, sc scope) ([]*ast.VarExp, scope, error) {
	if n.Kind != yaml.SequenceNode {
		return nil, nil, d.errorf(n, "expected a list of [name, type] pairs")
	}
	var vars []*ast.VarExp
	for _, pair := range n.Content {
		if pair.Kind != yaml.SequenceNode || len(pair.Content) != 2 {
			return nil, nil, d.errorf(pair, "expected [name, type]")
		}
		t, err := d.parseType(pair.Content[1].Value)
		if err != nil {
			return nil, nil, d.errorf(pair, "%v", err)
		}
		name := pair.Content[0].Value
		vars = append(vars, &ast.VarExp{ExpBase: ast.ExpBase{Location: d.loc(pair), Type: t}, Name: name})
		sc = sc.with(name, t)
	}
	return vars, sc, nil
}

func (d *decoder) lambda(n *yaml.Node, m map[string]*yaml.Node, sc scope) (ast.Exp, error) {
	params, inner, err := d.typedVars(m["lambda"], sc)
	if err != nil {
		return nil, err
	}
	if m["body"] == nil {
		return nil, d.errorf(n, "lambda has no body")
	}
	body, err := d.exp(m["body"], inner)
	if err != nil {
		return nil, err
	}
	l := &ast.LambdaExp{ExpBase: ast.ExpBase{Location: d.loc(n)}, Params: params, Body: body}
	if body.MathType() == nil {
		return l, nil
	}
	fn := typesystem.TFunc{ReturnType: body.MathType()}
	for _, p := range params {
		if p.Type == nil {
			return l, nil
		}
		fn.Params = append(fn.Params, p.Type)
	}
	l.Type = fn
	return l, nil
}

func (d *decoder) alternatives(n *yaml.Node, m map[string]*yaml.Node, sc scope) (ast.Exp, error) {
	alts := m["alt"]
	if alts.Kind != yaml.SequenceNode || len(alts.Content) == 0 {
		return nil, d.errorf(alts, "alt must list [condition, result] pairs")
	}
	a := &ast.AlternativeExp{ExpBase: ast.ExpBase{Location: d.loc(n)}}
	for _, pair := range alts.Content {
		if pair.Kind != yaml.SequenceNode || len(pair.Content) != 2 {
			return nil, d.errorf(pair, "expected [condition, result]")
		}
		parts, err := d.exps(pair.Content, sc)
		if err != nil {
			return nil, err
		}
		a.Alternatives = append(a.Alternatives, ast.AltItem{Condition: parts[0], Result: parts[1]})
	}
	if o := m["otherwise"]; o != nil {
		e, err := d.exp(o, sc)
		if err != nil {
			return nil, err
		}
		a.Otherwise = e
	}
	a.Type = a.Alternatives[0].Result.MathType()
	return a, nil
}

func (d *decoder) quantified(n *yaml.Node, q ast.Quantification, vars, body *yaml.Node, sc scope) (ast.Exp, error) {
	vs, inner, err := d.typedVars(vars, sc)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, d.errorf(n, "quantifier has no body")
	}
	for _, v := range vs {
		v.Quantification = q
	}
	b, err := d.exp(body, inner)
	if err != nil {
		return nil, err
	}
	return &ast.QuantExp{
		ExpBase:        ast.ExpBase{Location: d.loc(n), Type: d.graph.BOOLEAN},
		Quantification: q,
		Vars:           vs,
		Body:           b,
	}, nil
}

func (d *decoder) dot(n *yaml.Node, sc scope) (ast.Exp, error) {
	if n.Kind != yaml.SequenceNode || len(n.Content) < 2 {
		return nil, d.errorf(n, "dot needs at least two segments")
	}
	e := &ast.DotExp{ExpBase: ast.ExpBase{Location: d.loc(n)}}
	for i, s := range n.Content {
		if s.Kind != yaml.ScalarNode {
			return nil, d.errorf(s, "dot segments must be names")
		}
		v := &ast.VarExp{ExpBase: ast.ExpBase{Location: d.loc(s)}, Name: s.Value}
		if i == 0 {
			v.Type = sc[s.Value]
		}
		e.Segments = append(e.Segments, v)
	}
	return e, nil
}

func (d *decoder) call(n *yaml.Node, m map[string]*yaml.Node, sc scope) (*ast.CallExp, error) {
	c := &ast.CallExp{ExpBase: ast.ExpBase{Location: d.loc(n)}}
	c.Qualifier, c.Name = splitQualifier(m["call"].Value)
	if q := m["qualifier"]; q != nil {
		c.Qualifier = q.Value
	}
	if c.Qualifier == "" {
		c.Type = d.ops[c.Name]
	}
	if args := m["args"]; args != nil {
		if args.Kind != yaml.SequenceNode {
			return nil, d.errorf(args, "args must be a list")
		}
		var err error
		if c.Args, err = d.exps(args.Content, sc); err != nil {
			return nil, err
		}
	}
	return c, nil
}
