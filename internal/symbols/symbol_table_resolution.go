package symbols

import (
	"github.com/funvibe/vcgen/internal/typesystem"
)

// ResolveOperation finds the operation a call names.
//
// A qualifier names a facility of the module or a used module. Without
// one, operations of the module itself win; otherwise exactly one used
// module or facility must provide the name. More than one candidate is
// reported as ambiguous rather than guessed.
func (t *Table) ResolveOperation(qualifier, name string) (*OperationEntry, error) {
	if qualifier != "" {
		return t.resolveQualified(qualifier, name)
	}

	if op, ok := t.module.Operation(name); ok {
		return &OperationEntry{Operation: op, Module: t.module.Name}, nil
	}

	var candidates []*OperationEntry
	for _, u := range t.module.Uses {
		if e, ok := t.fromModule(u, name); ok {
			candidates = append(candidates, e)
		}
	}
	for _, f := range t.module.Facilities {
		if e, ok := t.fromFacility(f.Name, name); ok {
			candidates = append(candidates, e)
		}
	}

	switch len(candidates) {
	case 1:
		return candidates[0], nil
	case 0:
		return nil, &UnresolvedError{Name: name}
	}
	names := make([]string, len(candidates))
	for i, c := range candidates {
		names[i] = c.QualifiedName()
	}
	return nil, &UnresolvedError{Name: name, Candidates: names}
}

func (t *Table) resolveQualified(qualifier, name string) (*OperationEntry, error) {
	sym, ok := t.Find(qualifier)
	if !ok && qualifier != t.module.Name {
		return nil, &UnresolvedError{Qualifier: qualifier, Name: name}
	}
	var (
		e     *OperationEntry
		found bool
	)
	switch {
	case qualifier == t.module.Name:
		e, found = t.fromModule(qualifier, name)
	case sym.Kind == FacilitySymbol:
		e, found = t.fromFacility(qualifier, name)
	case sym.Kind == ModuleSymbol:
		e, found = t.fromModule(qualifier, name)
	}
	if !found {
		return nil, &UnresolvedError{Qualifier: qualifier, Name: name}
	}
	return e, nil
}

func (t *Table) fromModule(module, name string) (*OperationEntry, bool) {
	m, ok := t.env.Module(module)
	if !ok {
		return nil, false
	}
	op, ok := m.Operation(name)
	if !ok {
		return nil, false
	}
	return &OperationEntry{Operation: op, Module: m.Name}, true
}

func (t *Table) fromFacility(facility, name string) (*OperationEntry, bool) {
	f, ok := t.Facility(facility)
	if !ok {
		return nil, false
	}
	e, ok := t.fromModule(f.ConceptName, name)
	if !ok {
		return nil, false
	}
	e.Facility = f.Name
	e.Instantiations = make(typesystem.Subst, len(f.Instantiations))
	for k, v := range f.Instantiations {
		e.Instantiations[k] = v
	}
	return e, true
}
