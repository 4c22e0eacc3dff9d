package vcgen

import (
	"github.com/funvibe/vcgen/internal/ast"
	"github.com/funvibe/vcgen/internal/config"
	"github.com/funvibe/vcgen/internal/symbols"
	"github.com/funvibe/vcgen/internal/typesystem"
)

// ModuleScope answers the lookups rules make while processing a module.
// *symbols.Table implements it.
type ModuleScope interface {
	// ResolveOperation finds the operation a call names, together with
	// the generic instantiations of the facility it was reached through.
	ResolveOperation(qualifier, name string) (*symbols.OperationEntry, error)
	// OperationFor returns the contract a procedure is verified against.
	OperationFor(p *ast.ProcedureDec) *ast.OperationDec
}

// VerificationContext is what every rule may consult. Nothing in it is
// modified during generation, so one context is shared by all procedures
// of a module.
type VerificationContext struct {
	Module string
	Graph  *typesystem.TypeGraph
	Scope  ModuleScope
	Flags  *config.Flags
}
