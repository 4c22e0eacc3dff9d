package loader

import (
	"gopkg.in/yaml.v3"

	"github.com/funvibe/vcgen/internal/ast"
)

func (d *decoder) statements(nodes []yaml.Node, sc scope) ([]ast.Statement, error) {
	var out []ast.Statement
	for i := range nodes {
		s, err := d.statement(&nodes[i], sc)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (d *decoder) block(n *yaml.Node, sc scope) ([]ast.Statement, error) {
	if n == nil {
		return nil, nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil, d.errorf(n, "expected a list of statements")
	}
	var out []ast.Statement
	for _, c := range n.Content {
		s, err := d.statement(c, sc)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// statement decodes a one-key map such as {assign: [x, e]}. remember and
// forget may also be written as bare words.
func (d *decoder) statement(n *yaml.Node, sc scope) (ast.Statement, error) {
	loc := d.loc(n)
	if n.Kind == yaml.ScalarNode {
		switch n.Value {
		case "remember":
			return &ast.MemoryStmt{Location: loc, Kind: ast.Remember}, nil
		case "forget":
			return &ast.MemoryStmt{Location: loc, Kind: ast.Forget}, nil
		}
		return nil, d.errorf(n, "unknown statement %q", n.Value)
	}
	if n.Kind != yaml.MappingNode || len(n.Content) != 2 {
		return nil, d.errorf(n, "a statement is a map with a single key")
	}
	key, val := n.Content[0].Value, n.Content[1]

	switch key {
	case "confirm", "assume":
		e, err := d.exp(val, sc)
		if err != nil {
			return nil, err
		}
		if key == "confirm" {
			return &ast.ConfirmStmt{Location: loc, Assertion: e}, nil
		}
		return &ast.AssumeStmt{Location: loc, Assertion: e}, nil

	case "remember":
		return &ast.MemoryStmt{Location: loc, Kind: ast.Remember}, nil
	case "forget":
		return &ast.MemoryStmt{Location: loc, Kind: ast.Forget}, nil

	case "change":
		vars, err := d.list(val, sc)
		if err != nil {
			return nil, err
		}
		return &ast.ChangeStmt{Location: loc, Changing: vars}, nil

	case "assign", "swap":
		pair, err := d.list(val, sc)
		if err != nil {
			return nil, err
		}
		if len(pair) != 2 {
			return nil, d.errorf(val, "%s takes two expressions", key)
		}
		if key == "swap" {
			return &ast.SwapStmt{Location: loc, Left: pair[0], Right: pair[1]}, nil
		}
		if c, ok := pair[1].(*ast.CallExp); ok && c.Type == nil {
			c.Type = pair[0].MathType()
		}
		return &ast.FuncAssignStmt{Location: loc, Var: pair[0], Assign: pair[1]}, nil

	case "call":
		if val.Kind != yaml.MappingNode {
			return nil, d.errorf(val, "call takes {name, qualifier, args}")
		}
		m := mapping(val)
		if m["name"] == nil {
			return nil, d.errorf(val, "call has no name")
		}
		m["call"] = m["name"]
		c, err := d.call(val, m, sc)
		if err != nil {
			return nil, err
		}
		return &ast.CallStmt{Location: loc, Call: c}, nil

	case "if":
		return d.ifStmt(val, sc)
	case "while":
		return d.whileStmt(val, sc)
	}
	return nil, d.errorf(n, "unknown statement %q", key)
}

func (d *decoder) list(n *yaml.Node, sc scope) ([]ast.Exp, error) {
	if n.Kind != yaml.SequenceNode {
		return nil, d.errorf(n, "expected a list")
	}
	return d.exps(n.Content, sc)
}

func (d *decoder) condition(n *yaml.Node, sc scope) (*ast.IfConditionItem, error) {
	if n.Kind != yaml.MappingNode {
		return nil, d.errorf(n, "expected {cond, then}")
	}
	m := mapping(n)
	if m["cond"] == nil {
		return nil, d.errorf(n, "missing cond")
	}
	test, err := d.exp(m["cond"], sc)
	if err != nil {
		return nil, err
	}
	stmts, err := d.block(m["then"], sc)
	if err != nil {
		return nil, err
	}
	return &ast.IfConditionItem{Location: d.loc(n), Test: test, Statements: stmts}, nil
}

func (d *decoder) ifStmt(n *yaml.Node, sc scope) (ast.Statement, error) {
	clause, err := d.condition(n, sc)
	if err != nil {
		return nil, err
	}
	s := &ast.IfStmt{Location: d.loc(n), IfClause: clause}
	m := mapping(n)
	if ei := m["elseif"]; ei != nil {
		if ei.Kind != yaml.SequenceNode {
			return nil, d.errorf(ei, "elseif must be a list")
		}
		for _, c := range ei.Content {
			item, err := d.condition(c, sc)
			if err != nil {
				return nil, err
			}
			s.ElseIfs = append(s.ElseIfs, item)
		}
	}
	if s.Else, err = d.block(m["else"], sc); err != nil {
		return nil, err
	}
	return s, nil
}

func (d *decoder) whileStmt(n *yaml.Node, sc scope) (ast.Statement, error) {
	if n.Kind != yaml.MappingNode {
		return nil, d.errorf(n, "expected {cond, changing, maintaining, decreasing, do}")
	}
	m := mapping(n)
	if m["cond"] == nil {
		return nil, d.errorf(n, "missing cond")
	}
	test, err := d.exp(m["cond"], sc)
	if err != nil {
		return nil, err
	}
	v := &ast.LoopVerificationItem{Location: d.loc(n)}
	if c := m["changing"]; c != nil {
		if v.Changing, err = d.list(c, sc); err != nil {
			return nil, err
		}
	}
	if c := m["maintaining"]; c != nil {
		if v.Maintaining, err = d.clause(c, sc); err != nil {
			return nil, err
		}
	}
	if c := m["decreasing"]; c != nil {
		if v.Decreasing, err = d.clause(c, sc); err != nil {
			return nil, err
		}
	}
	body, err := d.block(m["do"], sc)
	if err != nil {
		return nil, err
	}
	return &ast.WhileStmt{Location: d.loc(n), Test: test, Verification: v, Body: body}, nil
}
