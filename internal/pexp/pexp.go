// Package pexp is the immutable logical expression tree used by the VC
// generator and handed to provers.
//
// Nodes are never mutated after construction. Every operation that
// "changes" an expression returns a new node and shares untouched
// subtrees with the original.
package pexp

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"sync/atomic"

	"github.com/funvibe/vcgen/internal/ast"
	"github.com/funvibe/vcgen/internal/typesystem"
)

// PExp is a node of the tree: *PSymbol, *PLiteral, *PLambda or
// *PAlternatives. The set of variants is closed.
type PExp interface {
	MathType() typesystem.Type
	MathTypeValue() typesystem.Type

	// StructureHash ignores the names of bound and quantified variables.
	StructureHash() uint64
	// ValueHash is the full identity hash. Equal expressions share it.
	ValueHash() uint64

	// SubExpressions lists the direct children in a fixed order.
	SubExpressions() []PExp

	Substitute(m *Map) PExp
	WithSubExpressionReplaced(index int, e PExp) PExp
	WithSiteAltered(path []int, v PExp) PExp
	BindTo(target PExp) (*Map, error)

	String() string

	base() *node
}

// Quantification is re-exported so callers need not import ast.
type Quantification = ast.Quantification

const (
	None        = ast.None
	ForAll      = ast.ForAll
	ThereExists = ast.ThereExists
)

// node carries what every variant has.
type node struct {
	typ           typesystem.Type
	typeValue     typesystem.Type
	structureHash uint64
	valueHash     uint64

	symbolNames    onceCell[nameSet]
	functionApps   onceCell[[]*PSymbol]
	quantifiedVars onceCell[[]*PSymbol]
}

func (n *node) init(typ, typeValue typesystem.Type, structureHash, valueHash uint64) {
	if typ == nil {
		panic("pexp: nil math type")
	}
	n.typ, n.typeValue = typ, typeValue
	n.structureHash, n.valueHash = structureHash, valueHash
}

func (n *node) MathType() typesystem.Type      { return n.typ }
func (n *node) MathTypeValue() typesystem.Type { return n.typeValue }
func (n *node) StructureHash() uint64          { return n.structureHash }
func (n *node) ValueHash() uint64              { return n.valueHash }
func (n *node) base() *node                    { return n }

// onceCell is a lock-free compute-once cell. Racing callers may both
// compute; the first store wins and every caller sees that value.
type onceCell[T any] struct {
	p atomic.Pointer[T]
}

func (c *onceCell[T]) get(compute func() T) T {
	if v := c.p.Load(); v != nil {
		return *v
	}
	v := compute()
	c.p.CompareAndSwap(nil, &v)
	return *c.p.Load()
}

// IndexOutOfBoundsError is the panic value of WithSubExpressionReplaced
// and WithSiteAltered when an index does not name a child.
type IndexOutOfBoundsError struct {
	Index int
	Len   int
	Exp   string
}

func (e *IndexOutOfBoundsError) Error() string {
	return fmt.Sprintf("sub-expression index %d out of range [0, %d) in %s", e.Index, e.Len, e.Exp)
}

// BindingError reports why a pattern does not match a target.
type BindingError struct {
	Pattern PExp
	Target  PExp
	Reason  string
}

func (e *BindingError) Error() string {
	return fmt.Sprintf("cannot bind %s to %s: %s", e.Pattern, e.Target, e.Reason)
}

func bindingErr(p, t PExp, format string, args ...any) error {
	return &BindingError{Pattern: p, Target: t, Reason: fmt.Sprintf(format, args...)}
}

// Hash kinds keep the variants apart.
const (
	kindSymbol uint64 = iota + 1
	kindQuantified
	kindBound
	kindLiteral
	kindChar
	kindLambda
	kindAlternatives
	kindOtherwise
)

func hashString(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}

func mix(parts ...uint64) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	for _, p := range parts {
		binary.LittleEndian.PutUint64(buf[:], p)
		h.Write(buf[:])
	}
	return h.Sum64()
}

func hashType(t typesystem.Type) uint64 {
	if t == nil {
		return 0
	}
	return hashString(t.String())
}
