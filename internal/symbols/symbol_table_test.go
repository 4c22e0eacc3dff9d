package symbols

import (
	"errors"
	"strings"
	"testing"

	"github.com/funvibe/vcgen/internal/ast"
	"github.com/funvibe/vcgen/internal/typesystem"
)

func testEnvironment(t *testing.T) *Environment {
	t.Helper()
	g := typesystem.NewTypeGraph()
	stack := &ast.ModuleDec{
		Name:       "Stack_Template",
		Kind:       ast.ConceptModule,
		Generics:   []string{"Entry"},
		Operations: []*ast.OperationDec{{Name: "Push"}, {Name: "Pop"}},
	}
	queue := &ast.ModuleDec{
		Name:       "Queue_Template",
		Kind:       ast.ConceptModule,
		Generics:   []string{"Entry"},
		Operations: []*ast.OperationDec{{Name: "Enqueue"}, {Name: "Push"}},
	}
	client := &ast.ModuleDec{
		Name: "Client",
		Kind: ast.FacilityModule,
		Facilities: []*ast.FacilityDec{
			{Name: "S_Fac", ConceptName: "Stack_Template", Instantiations: typesystem.Subst{"Entry": g.Z}},
			{Name: "Q_Fac", ConceptName: "Queue_Template", Instantiations: typesystem.Subst{"Entry": g.BOOLEAN}},
		},
		Operations: []*ast.OperationDec{{Name: "Local_Op"}},
	}
	env, err := NewEnvironment(stack, queue, client)
	if err != nil {
		t.Fatalf("NewEnvironment() error = %v", err)
	}
	return env
}

func TestResolveOperation(t *testing.T) {
	env := testEnvironment(t)
	scope, err := env.Scope("Client")
	if err != nil {
		t.Fatalf("Scope() error = %v", err)
	}

	tests := []struct {
		name      string
		qualifier string
		op        string
		wantQual  string
		wantErr   string
	}{
		{"local", "", "Local_Op", "Client::Local_Op", ""},
		{"unique through facility", "", "Pop", "S_Fac::Pop", ""},
		{"qualified", "Q_Fac", "Push", "Q_Fac::Push", ""},
		{"ambiguous", "", "Push", "", "ambiguous operation Push: candidates Q_Fac::Push, S_Fac::Push"},
		{"missing", "", "Dequeue", "", "no operation Dequeue"},
		{"bad qualifier", "TEMP", "Push", "", "no operation TEMP::Push"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, err := scope.ResolveOperation(tt.qualifier, tt.op)
			if tt.wantErr != "" {
				var ue *UnresolvedError
				if !errors.As(err, &ue) {
					t.Fatalf("expected UnresolvedError, got %v", err)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("error = %q, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveOperation() error = %v", err)
			}
			if entry.QualifiedName() != tt.wantQual {
				t.Errorf("resolved %s, want %s", entry.QualifiedName(), tt.wantQual)
			}
		})
	}
}

func TestFacilityInstantiationsAreCopied(t *testing.T) {
	env := testEnvironment(t)
	scope, _ := env.Scope("Client")
	entry, err := scope.ResolveOperation("S_Fac", "Push")
	if err != nil {
		t.Fatal(err)
	}
	entry.Instantiations["Extra"] = typesystem.TCon{Name: "X"}

	again, _ := scope.ResolveOperation("S_Fac", "Push")
	if _, leaked := again.Instantiations["Extra"]; leaked {
		t.Errorf("instantiations are shared between lookups")
	}
	if !typesystem.Equal(again.Instantiations["Entry"], typesystem.TCon{Name: "Z"}) {
		t.Errorf("Entry = %v, want Z", again.Instantiations["Entry"])
	}
}

func TestScopeUnknownModule(t *testing.T) {
	env := testEnvironment(t)
	_, err := env.Scope("Nope")
	var ue *UnknownModuleError
	if !errors.As(err, &ue) {
		t.Errorf("expected UnknownModuleError, got %v", err)
	}

	_, err = NewEnvironment(&ast.ModuleDec{Name: "A"}, &ast.ModuleDec{Name: "A"})
	var de *DuplicateModuleError
	if !errors.As(err, &de) || de.Name != "A" {
		t.Errorf("expected DuplicateModuleError for A, got %v", err)
	}
}

func TestOperationForFallsBackToConcept(t *testing.T) {
	g := typesystem.NewTypeGraph()
	ensures := &ast.AssertionClause{Assertion: &ast.VarExp{ExpBase: ast.ExpBase{Type: g.BOOLEAN}, Name: "true"}}
	concept := &ast.ModuleDec{Name: "C", Operations: []*ast.OperationDec{{Name: "Do", Ensures: ensures}}}
	real := &ast.ModuleDec{Name: "R", Uses: []string{"C"}}
	env, _ := NewEnvironment(concept, real)
	scope, err := env.Scope("R")
	if err != nil {
		t.Fatal(err)
	}

	op := scope.OperationFor(&ast.ProcedureDec{Name: "Do"})
	if op.Ensures != ensures {
		t.Errorf("ensures clause should come from the concept operation")
	}
	if op.Requires != nil {
		t.Errorf("requires should stay empty")
	}
}
