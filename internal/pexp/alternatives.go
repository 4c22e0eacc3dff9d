package pexp

import "github.com/funvibe/vcgen/internal/typesystem"

// Alternative is one guarded result.
type Alternative struct {
	Condition PExp
	Result    PExp
}

// PAlternatives is {{ r1 if c1; ...; r otherwise }}. Otherwise may be nil.
type PAlternatives struct {
	node
	alts      []Alternative
	otherwise PExp
}

// NewAlternatives builds an alternatives expression.
func NewAlternatives(t typesystem.Type, alts []Alternative, otherwise PExp) *PAlternatives {
	if t == nil {
		panic("pexp: nil math type for alternatives")
	}
	sparts := []uint64{kindAlternatives, uint64(len(alts))}
	vparts := []uint64{kindAlternatives, hashType(t), uint64(len(alts))}
	for _, a := range alts {
		sparts = append(sparts, a.Condition.StructureHash(), a.Result.StructureHash())
		vparts = append(vparts, a.Condition.ValueHash(), a.Result.ValueHash())
	}
	if otherwise != nil {
		sparts = append(sparts, kindOtherwise, otherwise.StructureHash())
		vparts = append(vparts, kindOtherwise, otherwise.ValueHash())
	}
	a := &PAlternatives{alts: append([]Alternative(nil), alts...), otherwise: otherwise}
	a.init(t, nil, mix(sparts...), mix(vparts...))
	return a
}

func (a *PAlternatives) Alternatives() []Alternative { return a.alts }
func (a *PAlternatives) Otherwise() PExp             { return a.otherwise }

// SubExpressions is c1, r1, c2, r2, ... followed by otherwise if present.
func (a *PAlternatives) SubExpressions() []PExp {
	out := make([]PExp, 0, 2*len(a.alts)+1)
	for _, alt := range a.alts {
		out = append(out, alt.Condition, alt.Result)
	}
	if a.otherwise != nil {
		out = append(out, a.otherwise)
	}
	return out
}

// withChildren rebuilds from a list laid out like SubExpressions.
func (a *PAlternatives) withChildren(children []PExp) *PAlternatives {
	alts := make([]Alternative, len(a.alts))
	for i := range alts {
		alts[i] = Alternative{Condition: children[2*i], Result: children[2*i+1]}
	}
	var otherwise PExp
	if a.otherwise != nil {
		otherwise = children[len(children)-1]
	}
	na := NewAlternatives(a.typ, alts, otherwise)
	na.typeValue = a.typeValue
	return na
}

func (a *PAlternatives) Substitute(m *Map) PExp { return Substitute(a, m) }
func (a *PAlternatives) WithSubExpressionReplaced(i int, e PExp) PExp {
	return WithSubExpressionReplaced(a, i, e)
}
func (a *PAlternatives) WithSiteAltered(path []int, v PExp) PExp { return WithSiteAltered(a, path, v) }
func (a *PAlternatives) BindTo(target PExp) (*Map, error)       { return BindTo(a, target) }
func (a *PAlternatives) String() string                         { return Render(a) }
