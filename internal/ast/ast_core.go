package ast

import (
	"github.com/funvibe/vcgen/internal/diagnostics"
	"github.com/funvibe/vcgen/internal/typesystem"
)

// Node is the base interface for all AST nodes.
type Node interface {
	GetLocation() diagnostics.Location
	String() string
}

// Exp is a typed math expression. The population pass (the loader here)
// sets MathType on every node; a nil MathType is reported when the
// expression is turned into a PExp.
type Exp interface {
	Node
	MathType() typesystem.Type
	MathTypeValue() typesystem.Type
	Detail() *diagnostics.LocationDetail
	CloneExp() Exp
	base() *ExpBase
}

// Statement is a program or assertive statement. Implementations outside
// this package exist (the generator's VC snapshot), so the interface has
// no unexported methods.
type Statement interface {
	Node
	CloneStatement() Statement
}

// Quantification of a symbol.
type Quantification int

const (
	None Quantification = iota
	ForAll
	ThereExists
)

func (q Quantification) String() string {
	switch q {
	case ForAll:
		return "For all"
	case ThereExists:
		return "There exists"
	}
	return ""
}

// Flipped swaps universal and existential quantification.
func (q Quantification) Flipped() Quantification {
	switch q {
	case ForAll:
		return ThereExists
	case ThereExists:
		return ForAll
	}
	return None
}

// DisplayStyle is purely presentational.
type DisplayStyle int

const (
	Prefix DisplayStyle = iota
	Infix
	Outfix
	Postfix
)

// ExpBase carries what every expression node has.
type ExpBase struct {
	Location  diagnostics.Location
	Type      typesystem.Type
	TypeValue typesystem.Type
	LocDetail *diagnostics.LocationDetail
}

func (b *ExpBase) GetLocation() diagnostics.Location    { return b.Location }
func (b *ExpBase) MathType() typesystem.Type            { return b.Type }
func (b *ExpBase) MathTypeValue() typesystem.Type       { return b.TypeValue }
func (b *ExpBase) Detail() *diagnostics.LocationDetail { return b.LocDetail }
func (b *ExpBase) base() *ExpBase                       { return b }

// WithDetail returns a copy of e carrying the given location detail.
func WithDetail(e Exp, d *diagnostics.LocationDetail) Exp {
	c := e.CloneExp()
	c.base().LocDetail = d
	return c
}

// WithMathType returns a copy of e whose top node has type t.
func WithMathType(e Exp, t typesystem.Type) Exp {
	c := e.CloneExp()
	c.base().Type = t
	return c
}
