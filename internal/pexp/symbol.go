package pexp

import (
	"github.com/funvibe/vcgen/internal/ast"
	"github.com/funvibe/vcgen/internal/config"
	"github.com/funvibe/vcgen/internal/typesystem"
)

// PSymbol is a symbol or a function application.
type PSymbol struct {
	node
	name           string
	qualifier      string
	args           []PExp
	quantification Quantification
	style          ast.DisplayStyle
}

func newSymbol(t, tv typesystem.Type, qualifier, name string, args []PExp, q Quantification, style ast.DisplayStyle) *PSymbol {
	if t == nil {
		panic("pexp: nil math type for symbol " + name)
	}
	var sh, vh uint64
	if q != None && len(args) == 0 {
		sh = mix(kindQuantified, hashType(t))
	} else {
		parts := []uint64{kindSymbol, hashString(qualifier), hashString(name), uint64(len(args))}
		for _, a := range args {
			parts = append(parts, a.StructureHash())
		}
		sh = mix(parts...)
	}
	vparts := []uint64{kindSymbol, hashString(qualifier), hashString(name), hashType(t), uint64(len(args))}
	for _, a := range args {
		vparts = append(vparts, a.ValueHash())
	}
	vh = mix(vparts...)

	s := &PSymbol{
		name:           name,
		qualifier:      qualifier,
		args:           args,
		quantification: q,
		style:          style,
	}
	s.init(t, tv, sh, vh)
	return s
}

// NewSymbol builds a variable or constant.
func NewSymbol(t typesystem.Type, name string, q Quantification) *PSymbol {
	return newSymbol(t, nil, "", name, nil, q, ast.Prefix)
}

// NewFunction builds a prefix function application.
func NewFunction(t typesystem.Type, qualifier, name string, args ...PExp) *PSymbol {
	return newSymbol(t, nil, qualifier, name, append([]PExp(nil), args...), None, ast.Prefix)
}

// NewInfix builds an infix application such as (a + b).
func NewInfix(t typesystem.Type, name string, left, right PExp) *PSymbol {
	return newSymbol(t, nil, "", name, []PExp{left, right}, None, ast.Infix)
}

// NewOutfix builds an outfix application such as |S|.
func NewOutfix(t typesystem.Type, name string, arg PExp) *PSymbol {
	return newSymbol(t, nil, "", name, []PExp{arg}, None, ast.Outfix)
}

// TrueExp is the boolean constant true.
func TrueExp(g *typesystem.TypeGraph) *PSymbol {
	return NewSymbol(g.BOOLEAN, config.TrueName, None)
}

func (s *PSymbol) Name() string                   { return s.name }
func (s *PSymbol) Qualifier() string              { return s.qualifier }
func (s *PSymbol) Quantification() Quantification { return s.quantification }
func (s *PSymbol) Style() ast.DisplayStyle        { return s.style }

// Args returns the arguments. The slice must not be modified.
func (s *PSymbol) Args() []PExp { return s.args }

// IsPatternVariable reports whether s binds in BindTo: a universally
// quantified symbol without arguments.
func (s *PSymbol) IsPatternVariable() bool {
	return s.quantification == ForAll && len(s.args) == 0
}

func (s *PSymbol) SubExpressions() []PExp { return s.args }

// withArgs rebuilds s with new arguments, keeping everything else.
func (s *PSymbol) withArgs(args []PExp) *PSymbol {
	return newSymbol(s.typ, s.typeValue, s.qualifier, s.name, args, s.quantification, s.style)
}

func (s *PSymbol) withQuantification(q Quantification) *PSymbol {
	return newSymbol(s.typ, s.typeValue, s.qualifier, s.name, s.args, q, s.style)
}

func (s *PSymbol) Substitute(m *Map) PExp { return Substitute(s, m) }
func (s *PSymbol) WithSubExpressionReplaced(i int, e PExp) PExp {
	return WithSubExpressionReplaced(s, i, e)
}
func (s *PSymbol) WithSiteAltered(path []int, v PExp) PExp { return WithSiteAltered(s, path, v) }
func (s *PSymbol) BindTo(target PExp) (*Map, error)       { return BindTo(s, target) }
func (s *PSymbol) String() string                         { return Render(s) }
