package vcgen

import (
	"testing"

	"github.com/funvibe/vcgen/internal/ast"
	"github.com/funvibe/vcgen/internal/config"
	"github.com/funvibe/vcgen/internal/diagnostics"
	"github.com/funvibe/vcgen/internal/symbols"
	"github.com/funvibe/vcgen/internal/typesystem"
)

var graph = typesystem.NewTypeGraph()

func typedVar(name string, t typesystem.Type) *ast.VarExp {
	return &ast.VarExp{ExpBase: ast.ExpBase{Type: t}, Name: name}
}

func zv(name string) *ast.VarExp { return typedVar(name, graph.Z) }

func num(v int64) *ast.IntegerExp {
	return &ast.IntegerExp{ExpBase: ast.ExpBase{Type: graph.Z}, Value: v}
}

func op(name string, t typesystem.Type, a, b ast.Exp) *ast.FunctionExp {
	return &ast.FunctionExp{ExpBase: ast.ExpBase{Type: t}, Name: name, Args: []ast.Exp{a, b}, Style: ast.Infix}
}

func rel(name string, a, b ast.Exp) *ast.FunctionExp { return op(name, graph.BOOLEAN, a, b) }
func arith(name string, a, b ast.Exp) *ast.FunctionExp { return op(name, graph.Z, a, b) }

func apply(name string, t typesystem.Type, args ...ast.Exp) *ast.FunctionExp {
	return &ast.FunctionExp{ExpBase: ast.ExpBase{Type: t}, Name: name, Args: args}
}

func clause(e ast.Exp) *ast.AssertionClause {
	return &ast.AssertionClause{Location: diagnostics.Location{File: "test", Line: 1}, Assertion: e}
}

func testFlags() *config.Flags {
	f := config.DefaultFlags()
	f.Workers = 2
	return f
}

// newTestContext builds a context looking out of the last module.
func newTestContext(t *testing.T, flags *config.Flags, modules ...*ast.ModuleDec) *VerificationContext {
	t.Helper()
	env, err := symbols.NewEnvironment(modules...)
	if err != nil {
		t.Fatalf("NewEnvironment() error = %v", err)
	}
	last := modules[len(modules)-1].Name
	scope, err := env.Scope(last)
	if err != nil {
		t.Fatalf("Scope() error = %v", err)
	}
	if flags == nil {
		flags = testFlags()
	}
	return &VerificationContext{Module: last, Graph: graph, Scope: scope, Flags: flags}
}

func vcStrings(vcs []*VerificationCondition) []string {
	out := make([]string, len(vcs))
	for i, vc := range vcs {
		out[i] = vc.String()
	}
	return out
}

func assertVCs(t *testing.T, got []*VerificationCondition, want ...string) {
	t.Helper()
	gs := vcStrings(got)
	if len(gs) != len(want) {
		t.Fatalf("got %d VCs %q, want %d %q", len(gs), gs, len(want), want)
	}
	for i := range want {
		if gs[i] != want[i] {
			t.Errorf("VC %d = %q, want %q", i+1, gs[i], want[i])
		}
	}
}

func assertCode(t *testing.T, err error, want diagnostics.ErrorCode) {
	t.Helper()
	if got := diagnostics.CodeOf(err); got != want {
		t.Fatalf("error code = %q (%v), want %q", got, err, want)
	}
}
