package pexp

import "github.com/funvibe/vcgen/internal/typesystem"

// PLiteral is an integer or character literal.
type PLiteral struct {
	node
	value  int64
	isChar bool
}

func newLiteral(t typesystem.Type, v int64, isChar bool) *PLiteral {
	if t == nil {
		panic("pexp: nil math type for literal")
	}
	kind := kindLiteral
	if isChar {
		kind = kindChar
	}
	h := mix(kind, uint64(v))
	l := &PLiteral{value: v, isChar: isChar}
	l.init(t, nil, h, mix(h, hashType(t)))
	return l
}

// NewLiteral builds an integer literal.
func NewLiteral(t typesystem.Type, v int64) *PLiteral { return newLiteral(t, v, false) }

// NewChar builds a character literal.
func NewChar(t typesystem.Type, r rune) *PLiteral { return newLiteral(t, int64(r), true) }

func (l *PLiteral) Value() int64 { return l.value }
func (l *PLiteral) IsChar() bool { return l.isChar }

func (l *PLiteral) SubExpressions() []PExp { return nil }

func (l *PLiteral) Substitute(m *Map) PExp { return Substitute(l, m) }
func (l *PLiteral) WithSubExpressionReplaced(i int, e PExp) PExp {
	return WithSubExpressionReplaced(l, i, e)
}
func (l *PLiteral) WithSiteAltered(path []int, v PExp) PExp { return WithSiteAltered(l, path, v) }
func (l *PLiteral) BindTo(target PExp) (*Map, error)       { return BindTo(l, target) }
func (l *PLiteral) String() string                         { return Render(l) }
