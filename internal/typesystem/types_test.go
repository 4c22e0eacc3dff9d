package typesystem

import (
	"errors"
	"testing"
)

func TestSubtyping(t *testing.T) {
	g := NewTypeGraph()
	entry := TVar{Name: "Entry"}

	tests := []struct {
		name  string
		sub   Type
		super Type
		want  bool
	}{
		{"reflexive", g.Z, g.Z, true},
		{"N in Z", g.N, g.Z, true},
		{"N in R", g.N, g.R, true},
		{"Z not in N", g.Z, g.N, false},
		{"B in Entity", g.BOOLEAN, g.ENTITY, true},
		{"B not in Z", g.BOOLEAN, g.Z, false},
		{"anything in placeholder", g.BOOLEAN, entry, true},
		{"tuple covariant", TTuple{Elements: []Type{g.N, g.BOOLEAN}}, TTuple{Elements: []Type{g.Z, g.BOOLEAN}}, true},
		{"tuple arity", TTuple{Elements: []Type{g.N}}, TTuple{Elements: []Type{g.Z, g.BOOLEAN}}, false},
		{"type value in SSet", TType{Type: g.Z}, g.SSET, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsSubtype(tt.sub, tt.super); got != tt.want {
				t.Errorf("IsSubtype(%s, %s) = %v, want %v", tt.sub, tt.super, got, tt.want)
			}
		})
	}
}

func TestBindGenerics(t *testing.T) {
	g := NewTypeGraph()
	str := TCon{Name: StringName}
	entry := TVar{Name: "Entry"}

	t.Run("records placeholder", func(t *testing.T) {
		bindings := Subst{}
		declared := TApp{Constructor: str, Args: []Type{entry}}
		actual := TApp{Constructor: str, Args: []Type{g.Z}}
		if err := BindGenerics(declared, actual, bindings); err != nil {
			t.Fatalf("BindGenerics() error = %v", err)
		}
		if !Equal(bindings["Entry"], g.Z) {
			t.Errorf("Entry bound to %v, want Z", bindings["Entry"])
		}
		if got := declared.Apply(bindings); !Equal(got, actual) {
			t.Errorf("Apply() = %s, want %s", got, actual)
		}
	})

	t.Run("seeded binding must agree", func(t *testing.T) {
		bindings := Subst{"Entry": g.BOOLEAN}
		err := BindGenerics(entry, g.Z, bindings)
		if !errors.Is(err, ErrGenericMismatch) {
			t.Fatalf("expected ErrGenericMismatch, got %v", err)
		}
	})

	t.Run("non generic mismatch", func(t *testing.T) {
		err := BindGenerics(g.BOOLEAN, g.Z, Subst{})
		if !errors.Is(err, ErrGenericMismatch) {
			t.Fatalf("expected ErrGenericMismatch, got %v", err)
		}
	})

	t.Run("subtype accepted for constant", func(t *testing.T) {
		if err := BindGenerics(g.Z, g.N, Subst{}); err != nil {
			t.Errorf("BindGenerics(Z, N) error = %v", err)
		}
	})

	t.Run("nested mismatch keeps context", func(t *testing.T) {
		err := BindGenerics(TApp{Constructor: str, Args: []Type{g.BOOLEAN}}, TApp{Constructor: str, Args: []Type{g.Z}}, Subst{})
		if !errors.Is(err, ErrGenericMismatch) {
			t.Fatalf("expected ErrGenericMismatch, got %v", err)
		}
	})
}

func TestTypeGraphLookup(t *testing.T) {
	g := NewTypeGraph()
	if _, err := g.Lookup("Z"); err != nil {
		t.Errorf("Lookup(Z) error = %v", err)
	}
	_, err := g.Lookup("Queue")
	var unknown *UnknownTypeError
	if !errors.As(err, &unknown) || unknown.Name != "Queue" {
		t.Errorf("Lookup(Queue) error = %v, want UnknownTypeError", err)
	}

	g2 := g.With(map[string]Type{"Queue": TCon{Name: "Queue"}})
	if _, err := g2.Lookup("Queue"); err != nil {
		t.Errorf("extended graph should know Queue: %v", err)
	}
	if _, err := g.Lookup("Queue"); err == nil {
		t.Errorf("With must not modify the receiver")
	}
}
