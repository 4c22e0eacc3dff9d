package ast

import (
	"github.com/funvibe/vcgen/internal/diagnostics"
	"github.com/funvibe/vcgen/internal/typesystem"
)

// ParameterMode says what an operation may do to an argument.
type ParameterMode string

const (
	ModeAlters    ParameterMode = "alters"
	ModeUpdates   ParameterMode = "updates"
	ModeClears    ParameterMode = "clears"
	ModeRestores  ParameterMode = "restores"
	ModePreserves ParameterMode = "preserves"
	ModeReplaces  ParameterMode = "replaces"
	ModeEvaluates ParameterMode = "evaluates"
)

// Modifies reports whether the argument's value may differ after the call.
func (m ParameterMode) Modifies() bool {
	switch m {
	case ModeAlters, ModeUpdates, ModeClears, ModeReplaces:
		return true
	}
	return false
}

// Valid reports whether m is a known mode.
func (m ParameterMode) Valid() bool {
	switch m {
	case ModeAlters, ModeUpdates, ModeClears, ModeRestores, ModePreserves, ModeReplaces, ModeEvaluates:
		return true
	}
	return false
}

// ParameterVarDec is a formal parameter.
type ParameterVarDec struct {
	Location diagnostics.Location
	Mode     ParameterMode
	Name     string
	Type     typesystem.Type
}

// VarDec is a procedure local. Init, when present, is the initial value.
type VarDec struct {
	Location diagnostics.Location
	Name     string
	Type     typesystem.Type
	Init     Exp
}

// OperationDec is an operation signature with its contract. ReturnType is
// nil for operations that do not return a value; otherwise the ensures
// clause refers to the result by the operation's name.
type OperationDec struct {
	Location   diagnostics.Location
	Name       string
	Params     []*ParameterVarDec
	ReturnType typesystem.Type
	Requires   *AssertionClause
	Ensures    *AssertionClause
}

// ProcedureDec is an operation implementation.
type ProcedureDec struct {
	Location   diagnostics.Location
	Name       string
	Params     []*ParameterVarDec
	ReturnType typesystem.Type
	Vars       []*VarDec
	Requires   *AssertionClause
	Ensures    *AssertionClause
	Statements []Statement
}

// FacilityDec instantiates a concept with concrete types for its generics.
type FacilityDec struct {
	Location    diagnostics.Location
	Name        string
	ConceptName string
	// Instantiations maps the concept's generic names to actual types.
	Instantiations typesystem.Subst
}

// MathDefinition is a typed math function or constant usable in assertions.
type MathDefinition struct {
	Name string
	Type typesystem.Type
}

// ModuleKind is the kind of a module.
type ModuleKind string

const (
	ConceptModule     ModuleKind = "concept"
	RealizationModule ModuleKind = "realization"
	FacilityModule    ModuleKind = "facility"
	EnhancementModule ModuleKind = "enhancement"
)

// ModuleDec is one typed module.
type ModuleDec struct {
	Location    diagnostics.Location
	Name        string
	Kind        ModuleKind
	Uses        []string
	Generics    []string
	Definitions []*MathDefinition
	Facilities  []*FacilityDec
	Operations  []*OperationDec
	Procedures  []*ProcedureDec
}

// Operation finds an operation declared by the module.
func (m *ModuleDec) Operation(name string) (*OperationDec, bool) {
	for _, op := range m.Operations {
		if op.Name == name {
			return op, true
		}
	}
	return nil, false
}
