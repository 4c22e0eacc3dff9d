package symbols

import (
	"github.com/funvibe/vcgen/internal/ast"
)

// Environment holds every loaded module. It is built once and read by all
// workers concurrently.
type Environment struct {
	modules map[string]*ast.ModuleDec
	order   []string
}

// NewEnvironment indexes modules by name. Duplicate names are an error.
func NewEnvironment(modules ...*ast.ModuleDec) (*Environment, error) {
	env := &Environment{modules: make(map[string]*ast.ModuleDec, len(modules))}
	for _, m := range modules {
		if _, dup := env.modules[m.Name]; dup {
			return nil, &DuplicateModuleError{Name: m.Name}
		}
		env.modules[m.Name] = m
		env.order = append(env.order, m.Name)
	}
	return env, nil
}

// Module returns a loaded module.
func (env *Environment) Module(name string) (*ast.ModuleDec, bool) {
	m, ok := env.modules[name]
	return m, ok
}

// Modules lists the loaded modules in load order.
func (env *Environment) Modules() []*ast.ModuleDec {
	out := make([]*ast.ModuleDec, len(env.order))
	for i, n := range env.order {
		out[i] = env.modules[n]
	}
	return out
}

// Scope returns the view of the environment from inside a module.
// Every used module and every facility's concept must be loaded.
func (env *Environment) Scope(module string) (*Table, error) {
	m, ok := env.modules[module]
	if !ok {
		return nil, &UnknownModuleError{Name: module}
	}
	t := &Table{env: env, module: m, symbols: map[string]Symbol{}}
	for _, u := range m.Uses {
		if _, ok := env.modules[u]; !ok {
			return nil, &UnknownModuleError{Name: u}
		}
		t.define(Symbol{Name: u, Kind: ModuleSymbol, OriginModule: u})
	}
	for _, f := range m.Facilities {
		if _, ok := env.modules[f.ConceptName]; !ok {
			return nil, &UnknownModuleError{Name: f.ConceptName}
		}
		t.define(Symbol{Name: f.Name, Kind: FacilitySymbol, OriginModule: m.Name})
	}
	for _, d := range m.Definitions {
		t.define(Symbol{Name: d.Name, Kind: DefinitionSymbol, OriginModule: m.Name, Type: d.Type})
	}
	for _, op := range m.Operations {
		t.define(Symbol{Name: op.Name, Kind: OperationSymbol, OriginModule: m.Name})
	}
	return t, nil
}

// Table is the scope of one module.
type Table struct {
	env     *Environment
	module  *ast.ModuleDec
	symbols map[string]Symbol
}

func (t *Table) define(s Symbol) {
	t.symbols[s.Name] = s
}

// Find looks up a name declared directly in the module or naming one of
// its facilities or used modules.
func (t *Table) Find(name string) (Symbol, bool) {
	s, ok := t.symbols[name]
	return s, ok
}

// ModuleName is the name of the module the table looks out of.
func (t *Table) ModuleName() string { return t.module.Name }

// Facility returns a facility declared by the module.
func (t *Table) Facility(name string) (*ast.FacilityDec, bool) {
	for _, f := range t.module.Facilities {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// OperationFor returns the contract of a procedure: its own clauses, or
// those of the operation of the same name it implements.
func (t *Table) OperationFor(p *ast.ProcedureDec) *ast.OperationDec {
	op := &ast.OperationDec{
		Location:   p.Location,
		Name:       p.Name,
		Params:     p.Params,
		ReturnType: p.ReturnType,
		Requires:   p.Requires,
		Ensures:    p.Ensures,
	}
	if op.Requires != nil && op.Ensures != nil {
		return op
	}
	if entry, err := t.ResolveOperation("", p.Name); err == nil {
		if op.Requires == nil {
			op.Requires = entry.Operation.Requires
		}
		if op.Ensures == nil {
			op.Ensures = entry.Operation.Ensures
		}
	}
	return op
}
