package pexp

import "github.com/funvibe/vcgen/internal/typesystem"

// Param is a lambda-bound variable.
type Param struct {
	Name string
	Type typesystem.Type
}

// PLambda is lambda(params).(body).
type PLambda struct {
	node
	params []Param
	body   PExp
}

// NewLambda builds a lambda. Its structure hash does not depend on the
// parameter names.
func NewLambda(t typesystem.Type, params []Param, body PExp) *PLambda {
	if t == nil {
		panic("pexp: nil math type for lambda")
	}
	bound := make(map[string]int, len(params))
	sparts := []uint64{kindLambda, uint64(len(params))}
	vparts := []uint64{kindLambda, hashType(t), uint64(len(params))}
	for i, p := range params {
		if p.Type == nil {
			panic("pexp: nil math type for lambda parameter " + p.Name)
		}
		bound[p.Name] = i
		sparts = append(sparts, hashType(p.Type))
		vparts = append(vparts, hashString(p.Name), hashType(p.Type))
	}
	sparts = append(sparts, structureHashBound(body, bound))
	vparts = append(vparts, body.ValueHash())

	l := &PLambda{params: append([]Param(nil), params...), body: body}
	l.init(t, nil, mix(sparts...), mix(vparts...))
	return l
}

// structureHashBound recomputes the structure hash of e with the bound
// names replaced by their positions. Subtrees that do not mention a bound
// name reuse their cached hash.
func structureHashBound(e PExp, bound map[string]int) uint64 {
	if !mentionsAny(e, bound) {
		return e.StructureHash()
	}
	switch n := e.(type) {
	case *PSymbol:
		if i, ok := bound[n.name]; ok && len(n.args) == 0 && n.qualifier == "" {
			return mix(kindBound, uint64(i))
		}
		parts := []uint64{kindSymbol, hashString(n.qualifier), hashString(n.name), uint64(len(n.args))}
		for _, a := range n.args {
			parts = append(parts, structureHashBound(a, bound))
		}
		return mix(parts...)
	case *PLambda:
		inner := make(map[string]int, len(bound)+len(n.params))
		for k, v := range bound {
			inner[k] = v
		}
		parts := []uint64{kindLambda, uint64(len(n.params))}
		for i, p := range n.params {
			inner[p.Name] = len(bound) + i
			parts = append(parts, hashType(p.Type))
		}
		return mix(append(parts, structureHashBound(n.body, inner))...)
	case *PAlternatives:
		parts := []uint64{kindAlternatives, uint64(len(n.alts))}
		for _, a := range n.alts {
			parts = append(parts, structureHashBound(a.Condition, bound), structureHashBound(a.Result, bound))
		}
		if n.otherwise != nil {
			parts = append(parts, kindOtherwise, structureHashBound(n.otherwise, bound))
		}
		return mix(parts...)
	}
	return e.StructureHash()
}

func mentionsAny(e PExp, names map[string]int) bool {
	for n := range names {
		if ContainsName(e, n) {
			return true
		}
	}
	return false
}

func (l *PLambda) Params() []Param { return l.params }
func (l *PLambda) Body() PExp      { return l.body }

func (l *PLambda) SubExpressions() []PExp { return []PExp{l.body} }

func (l *PLambda) Substitute(m *Map) PExp { return Substitute(l, m) }
func (l *PLambda) WithSubExpressionReplaced(i int, e PExp) PExp {
	return WithSubExpressionReplaced(l, i, e)
}
func (l *PLambda) WithSiteAltered(path []int, v PExp) PExp { return WithSiteAltered(l, path, v) }
func (l *PLambda) BindTo(target PExp) (*Map, error)       { return BindTo(l, target) }
func (l *PLambda) String() string                         { return Render(l) }
