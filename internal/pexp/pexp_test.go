package pexp

import (
	"errors"
	"strings"
	"testing"

	"github.com/funvibe/vcgen/internal/ast"
	"github.com/funvibe/vcgen/internal/diagnostics"
	"github.com/funvibe/vcgen/internal/typesystem"
)

var g = typesystem.NewTypeGraph()

func sym(name string) *PSymbol    { return NewSymbol(g.Z, name, None) }
func patVar(name string) *PSymbol { return NewSymbol(g.Z, name, ForAll) }
func lit(v int64) *PLiteral        { return NewLiteral(g.Z, v) }
func f(args ...PExp) *PSymbol      { return NewFunction(g.Z, "", "f", args...) }
func plus(a, b PExp) *PSymbol      { return NewInfix(g.Z, "+", a, b) }

func assertEqual(t *testing.T, got, want PExp) {
	t.Helper()
	if !Equal(got, want) {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestHashEqualityConsistency(t *testing.T) {
	tests := []struct {
		name string
		a, b PExp
	}{
		{"symbols", plus(sym("x"), lit(1)), plus(sym("x"), lit(1))},
		{"quantification ignored", f(NewSymbol(g.Z, "x", ForAll)), f(sym("x"))},
		{"display style ignored", NewFunction(g.Z, "", "+", sym("x"), lit(1)), plus(sym("x"), lit(1))},
		{"alternatives",
			NewAlternatives(g.Z, []Alternative{{Condition: TrueExp(g), Result: lit(1)}}, lit(0)),
			NewAlternatives(g.Z, []Alternative{{Condition: TrueExp(g), Result: lit(1)}}, lit(0))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !Equal(tt.a, tt.b) {
				t.Fatalf("%s and %s should be equal", tt.a, tt.b)
			}
			if tt.a.ValueHash() != tt.b.ValueHash() {
				t.Errorf("equal expressions have different value hashes")
			}
		})
	}
}

func TestEqualityDistinguishes(t *testing.T) {
	tests := []struct {
		name string
		a, b PExp
	}{
		{"names", sym("x"), sym("y")},
		{"types", NewSymbol(g.Z, "x", None), NewSymbol(g.N, "x", None)},
		{"literals", lit(1), lit(2)},
		{"char vs int", NewChar(g.Z, 'a'), lit('a')},
		{"arity", f(sym("x")), f(sym("x"), sym("x"))},
		{"qualifier", NewFunction(g.Z, "A", "f", lit(1)), NewFunction(g.Z, "B", "f", lit(1))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if Equal(tt.a, tt.b) {
				t.Errorf("%s and %s should differ", tt.a, tt.b)
			}
		})
	}
}

func TestStructureHashIgnoresBoundNames(t *testing.T) {
	lx := NewLambda(g.Z, []Param{{Name: "x", Type: g.Z}}, plus(sym("x"), lit(1)))
	ly := NewLambda(g.Z, []Param{{Name: "y", Type: g.Z}}, plus(sym("y"), lit(1)))
	if lx.StructureHash() != ly.StructureHash() {
		t.Errorf("lambdas differing only in parameter names should share structure hash")
	}
	if Equal(lx, ly) {
		t.Errorf("lambdas with different parameter names are not value-equal")
	}

	qx := f(NewSymbol(g.Z, "x", ForAll))
	qy := f(NewSymbol(g.Z, "y", ForAll))
	if qx.StructureHash() != qy.StructureHash() {
		t.Errorf("renamed quantified variables should share structure hash")
	}

	lz := NewLambda(g.Z, []Param{{Name: "x", Type: g.Z}}, plus(sym("z"), lit(1)))
	if lx.StructureHash() == lz.StructureHash() {
		t.Errorf("free variable z must not hash like bound x")
	}
}

func TestSubstituteEmptyMapIsIdentity(t *testing.T) {
	exps := []PExp{
		plus(sym("x"), lit(1)),
		NewLambda(g.Z, []Param{{Name: "x", Type: g.Z}}, sym("x")),
		lit(3),
	}
	for _, e := range exps {
		if got := Substitute(e, NewMap()); got != e {
			t.Errorf("Substitute(%s, {}) returned a new node", e)
		}
		if got := Substitute(e, nil); got != e {
			t.Errorf("Substitute(%s, nil) returned a new node", e)
		}
		if got := Substitute(e, MapOf(sym("unrelated"), lit(0))); got != e {
			t.Errorf("Substitute(%s) with no match returned a new node", e)
		}
	}
}

func TestSubstituteIsSimultaneous(t *testing.T) {
	e := f(sym("x"), sym("y"))
	got := e.Substitute(MapOf(sym("x"), sym("y"), sym("y"), sym("x")))
	assertEqual(t, got, f(sym("y"), sym("x")))
}

func TestSubstituteSharesUntouchedSubtrees(t *testing.T) {
	left := plus(sym("a"), lit(1))
	e := f(left, sym("x"))
	got := e.Substitute(MapOf(sym("x"), lit(7))).(*PSymbol)
	if got.Args()[0] != left {
		t.Errorf("untouched argument was rebuilt")
	}
}

func TestSubstituteRespectsLambdaBinding(t *testing.T) {
	l := NewLambda(g.Z, []Param{{Name: "x", Type: g.Z}}, plus(sym("x"), sym("y")))
	got := l.Substitute(MapOf(sym("x"), lit(1), sym("y"), lit(2)))
	want := NewLambda(g.Z, []Param{{Name: "x", Type: g.Z}}, plus(sym("x"), lit(2)))
	assertEqual(t, got, want)
}

func TestSubstituteRenamesCapturedParameter(t *testing.T) {
	l := NewLambda(g.Z, []Param{{Name: "x", Type: g.Z}}, plus(sym("x"), sym("y")))
	got := Substitute(l, MapOf(sym("y"), sym("x")))
	want := NewLambda(g.Z, []Param{{Name: "x'", Type: g.Z}}, plus(sym("x'"), sym("x")))
	assertEqual(t, got, want)

	// Without a capture the parameter keeps its name.
	got = Substitute(l, MapOf(sym("y"), lit(3)))
	assertEqual(t, got, NewLambda(g.Z, []Param{{Name: "x", Type: g.Z}}, plus(sym("x"), lit(3))))
}

func TestSubstituteFreeLeavesQuantifiedSymbols(t *testing.T) {
	bound := NewSymbol(g.Z, "x", ForAll)
	e := plus(bound, sym("x"))
	m := MapOf(sym("x"), lit(0))

	got := SubstituteFree(e, m).(*PSymbol)
	if got.Args()[0] != bound {
		t.Errorf("quantified x was replaced by %s", got.Args()[0])
	}
	assertEqual(t, got.Args()[1], lit(0))

	assertEqual(t, Substitute(e, m), plus(lit(0), lit(0)))

	app := f(bound)
	if got := SubstituteFree(app, MapOf(f(sym("x")), lit(1))); got != app {
		t.Errorf("SubstituteFree(%s) = %s, want it unchanged", app, got)
	}
}

func TestBindingRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		pattern PExp
		target  PExp
	}{
		{"variable", patVar("x"), plus(sym("a"), lit(1))},
		{"nested", f(patVar("x"), plus(patVar("y"), lit(1))), f(lit(3), plus(sym("b"), lit(1)))},
		{"alternatives",
			NewAlternatives(g.Z, []Alternative{{Condition: TrueExp(g), Result: patVar("r")}}, patVar("o")),
			NewAlternatives(g.Z, []Alternative{{Condition: TrueExp(g), Result: lit(1)}}, lit(0))},
		{"subtype target", patVar("x"), NewSymbol(g.N, "n", None)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := tt.pattern.BindTo(tt.target)
			if err != nil {
				t.Fatalf("BindTo() error = %v", err)
			}
			assertEqual(t, tt.pattern.Substitute(m), tt.target)
		})
	}
}

func TestBindingConflictDetection(t *testing.T) {
	pattern := f(patVar("x"), patVar("x"))

	_, err := pattern.BindTo(f(lit(1), lit(2)))
	var be *BindingError
	if !errors.As(err, &be) {
		t.Fatalf("f(x, x) against f(1, 2): expected BindingError, got %v", err)
	}

	m, err := pattern.BindTo(f(lit(1), lit(1)))
	if err != nil {
		t.Fatalf("f(x, x) against f(1, 1): %v", err)
	}
	if m.Len() != 1 {
		t.Fatalf("expected one binding, got %d", m.Len())
	}
	v, ok := m.Get(patVar("x"))
	if !ok {
		t.Fatalf("x is not bound")
	}
	assertEqual(t, v, lit(1))
}

func TestBindingFailures(t *testing.T) {
	tests := []struct {
		name    string
		pattern PExp
		target  PExp
	}{
		{"function name", f(patVar("x")), NewFunction(g.Z, "", "h", lit(1))},
		{"arity", f(patVar("x")), f(lit(1), lit(2))},
		{"literal", lit(1), lit(2)},
		{"type of variable", NewSymbol(g.N, "x", ForAll), sym("z")},
		{"lambda arity",
			NewLambda(g.Z, []Param{{Name: "x", Type: g.Z}}, sym("x")),
			NewLambda(g.Z, []Param{{Name: "x", Type: g.Z}, {Name: "y", Type: g.Z}}, sym("x"))},
		{"alternatives count",
			NewAlternatives(g.Z, []Alternative{{Condition: TrueExp(g), Result: lit(1)}}, nil),
			NewAlternatives(g.Z, []Alternative{{Condition: TrueExp(g), Result: lit(1)}}, lit(0))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.pattern.BindTo(tt.target)
			var be *BindingError
			if !errors.As(err, &be) {
				t.Errorf("expected BindingError, got %v", err)
			}
		})
	}
}

func TestWithSiteAlteredLocality(t *testing.T) {
	a := plus(sym("a"), lit(1))
	b := f(sym("b"), sym("c"))
	e := f(a, b)

	got := e.WithSiteAltered([]int{1, 0}, lit(9)).(*PSymbol)
	if got.Args()[0] != a {
		t.Errorf("sibling subtree was not reused")
	}
	inner := got.Args()[1].(*PSymbol)
	assertEqual(t, inner.Args()[0], lit(9))
	assertEqual(t, inner.Args()[1], sym("c"))
	assertEqual(t, e, f(plus(sym("a"), lit(1)), f(sym("b"), sym("c"))))

	if root := e.WithSiteAltered(nil, lit(0)); !Equal(root, lit(0)) {
		t.Errorf("empty path should replace the root")
	}
}

func TestWithSubExpressionReplacedOutOfRange(t *testing.T) {
	defer func() {
		r := recover()
		if _, ok := r.(*IndexOutOfBoundsError); !ok {
			t.Errorf("expected IndexOutOfBoundsError panic, got %v", r)
		}
	}()
	f(lit(1)).WithSubExpressionReplaced(1, lit(2))
}

func TestBuildNullMathType(t *testing.T) {
	loc := diagnostics.Location{File: "m.vc.yaml", Line: 4, Column: 9}
	untyped := &ast.FunctionExp{
		ExpBase: ast.ExpBase{Location: loc},
		Name:    "f",
		Args:    []ast.Exp{&ast.IntegerExp{ExpBase: ast.ExpBase{Type: g.Z}, Value: 1}},
	}
	p, err := Build(untyped)
	if p != nil {
		t.Errorf("Build() returned a partial expression %s", p)
	}
	var de *diagnostics.DiagnosticError
	if !errors.As(err, &de) {
		t.Fatalf("expected DiagnosticError, got %v", err)
	}
	if de.Code != diagnostics.ErrV001 || de.Location != loc {
		t.Errorf("got code %s at %s, want V001 at %s", de.Code, de.Location, loc)
	}

	nested := &ast.FunctionExp{
		ExpBase: ast.ExpBase{Type: g.Z},
		Name:    "f",
		Args:    []ast.Exp{&ast.VarExp{Name: "x"}},
	}
	if _, err := Build(nested); diagnostics.CodeOf(err) != diagnostics.ErrV001 {
		t.Errorf("untyped argument: expected V001, got %v", err)
	}
}

func TestBuildQuantifiersAndOldValues(t *testing.T) {
	x := &ast.VarExp{ExpBase: ast.ExpBase{Type: g.Z}, Name: "x"}
	s := &ast.VarExp{ExpBase: ast.ExpBase{Type: g.Z}, Name: "S"}
	body := &ast.FunctionExp{
		ExpBase: ast.ExpBase{Type: g.BOOLEAN},
		Name:    "<=",
		Args:    []ast.Exp{x, &ast.OldExp{ExpBase: ast.ExpBase{Type: g.Z}, Exp: s}},
		Style:   ast.Infix,
	}
	q := &ast.QuantExp{ExpBase: ast.ExpBase{Type: g.BOOLEAN}, Quantification: ast.ForAll, Vars: []*ast.VarExp{x}, Body: body}

	p, err := Build(q)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if p.String() != "(x <= #S)" {
		t.Errorf("Build() = %s", p)
	}
	qv := QuantifiedVariables(p)
	if len(qv) != 1 || qv[0].Name() != "x" || qv[0].Quantification() != ForAll {
		t.Errorf("QuantifiedVariables() = %v", qv)
	}
	if got := SymbolNames(p); len(got) != 2 || got[0] != "#S" || got[1] != "<=" {
		t.Errorf("SymbolNames() = %v", got)
	}

	flipped := FlipQuantifiers(p)
	if !ContainsExistential(flipped) || ContainsExistential(p) {
		t.Errorf("FlipQuantifiers should turn For all into There exists")
	}
}

func TestPredicates(t *testing.T) {
	eq := NewInfix(g.BOOLEAN, "=", sym("x"), sym("x"))
	conj := NewInfix(g.BOOLEAN, "and", eq, TrueExp(g))
	neq := NewInfix(g.BOOLEAN, "=", sym("x"), sym("y"))

	if !IsObviouslyTrue(eq) || !IsObviouslyTrue(conj) || IsObviouslyTrue(neq) {
		t.Errorf("IsObviouslyTrue misclassified")
	}
	if !IsEquality(neq) || IsEquality(conj) {
		t.Errorf("IsEquality misclassified")
	}
	if !IsVariable(sym("x")) || IsVariable(TrueExp(g)) || IsVariable(lit(1)) {
		t.Errorf("IsVariable misclassified")
	}
	if !IsLiteral(lit(1)) || !IsLiteral(TrueExp(g)) || IsLiteral(sym("x")) {
		t.Errorf("IsLiteral misclassified")
	}
	if !ContainsName(conj, "x") || ContainsName(conj, "y") {
		t.Errorf("ContainsName misclassified")
	}

	parts := SplitIntoConjuncts(NewInfix(g.BOOLEAN, "and", conj, neq))
	if len(parts) != 3 {
		t.Errorf("SplitIntoConjuncts() returned %d parts, want 3", len(parts))
	}
	if apps := FunctionApplications(conj); len(apps) != 2 {
		t.Errorf("FunctionApplications() = %d, want 2", len(apps))
	}
}

func TestWithTypesSubstituted(t *testing.T) {
	entry := typesystem.TVar{Name: "Entry"}
	e := NewInfix(g.BOOLEAN, "=", NewSymbol(entry, "E", None), NewSymbol(entry, "F", None))
	got := WithTypesSubstituted(e, typesystem.Subst{"Entry": g.Z})
	want := NewInfix(g.BOOLEAN, "=", sym("E"), sym("F"))
	assertEqual(t, got, want)

	replaced := WithTypeReplaced(sym("x"), g.N)
	if !typesystem.Equal(replaced.MathType(), g.N) {
		t.Errorf("WithTypeReplaced() type = %s", replaced.MathType())
	}
	tv := WithTypeValueReplaced(sym("T"), g.Z)
	if !typesystem.Equal(tv.MathTypeValue(), g.Z) || !Equal(tv, sym("T")) {
		t.Errorf("WithTypeValueReplaced() changed identity or lost the type value")
	}
}

func TestMapOverwrites(t *testing.T) {
	m := NewMap()
	m.Put(sym("x"), lit(1))
	m.Put(plus(sym("x"), lit(0)), lit(2))
	m.Put(sym("x"), lit(3))
	if m.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", m.Len())
	}
	v, _ := m.Get(sym("x"))
	assertEqual(t, v, lit(3))
}

func TestRender(t *testing.T) {
	tests := []struct {
		e    PExp
		want string
	}{
		{plus(sym("x"), lit(1)), "(x + 1)"},
		{f(sym("x"), lit(2)), "f(x, 2)"},
		{NewFunction(g.Z, "Stack_Fac", "Depth", sym("s")), "Stack_Fac::Depth(s)"},
		{NewChar(g.CHAR, 'a'), "'a'"},
		{NewAlternatives(g.Z, []Alternative{{Condition: TrueExp(g), Result: lit(1)}}, lit(0)), "{{ 1 if true; 0 otherwise; }}"},
	}
	for _, tt := range tests {
		if got := tt.e.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}

	if op := TopLevelOperation(plus(sym("x"), lit(1))); op != "+" {
		t.Errorf("TopLevelOperation() = %q", op)
	}
	dump := DebugString(plus(sym("x"), lit(1)))
	if lines := strings.Count(dump, "\n"); lines != 3 || !strings.HasPrefix(dump, "+ : Z") {
		t.Errorf("DebugString() =\n%s", dump)
	}
}
