package symbols

import (
	"fmt"
	"sort"
	"strings"

	"github.com/funvibe/vcgen/internal/ast"
	"github.com/funvibe/vcgen/internal/typesystem"
)

type SymbolKind int

const (
	OperationSymbol SymbolKind = iota
	FacilitySymbol
	ModuleSymbol
	DefinitionSymbol
)

func (k SymbolKind) String() string {
	switch k {
	case OperationSymbol:
		return "operation"
	case FacilitySymbol:
		return "facility"
	case ModuleSymbol:
		return "module"
	case DefinitionSymbol:
		return "definition"
	}
	return "symbol"
}

type Symbol struct {
	Name         string
	Kind         SymbolKind
	OriginModule string // Module the symbol is declared in
	Type         typesystem.Type
}

// OperationEntry is a resolved operation together with how it was reached.
type OperationEntry struct {
	Operation *ast.OperationDec
	Module    string // Declaring module
	Facility  string // Facility the call went through, if any
	// Instantiations of the declaring module's generics, seeded from the
	// facility. Empty for local and plainly imported operations.
	Instantiations typesystem.Subst
}

// QualifiedName is Facility::Name or Module::Name.
func (e *OperationEntry) QualifiedName() string {
	if e.Facility != "" {
		return e.Facility + "::" + e.Operation.Name
	}
	return e.Module + "::" + e.Operation.Name
}

// UnresolvedError is returned when a call names no operation, or more
// than one.
type UnresolvedError struct {
	Qualifier  string
	Name       string
	Candidates []string
}

func (e *UnresolvedError) Error() string {
	name := e.Name
	if e.Qualifier != "" {
		name = e.Qualifier + "::" + e.Name
	}
	if len(e.Candidates) == 0 {
		return fmt.Sprintf("no operation %s in scope", name)
	}
	c := append([]string(nil), e.Candidates...)
	sort.Strings(c)
	return fmt.Sprintf("ambiguous operation %s: candidates %s", name, strings.Join(c, ", "))
}

// UnknownModuleError is returned for a module that was never loaded.
type UnknownModuleError struct {
	Name string
}

func (e *UnknownModuleError) Error() string {
	return fmt.Sprintf("module %s is not loaded", e.Name)
}

// DuplicateModuleError is returned when two loaded modules share a name.
type DuplicateModuleError struct {
	Name string
}

func (e *DuplicateModuleError) Error() string {
	return fmt.Sprintf("module %s is defined twice", e.Name)
}
