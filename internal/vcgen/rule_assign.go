package vcgen

import (
	"fmt"

	"github.com/funvibe/vcgen/internal/ast"
	"github.com/funvibe/vcgen/internal/config"
	"github.com/funvibe/vcgen/internal/diagnostics"
	"github.com/funvibe/vcgen/internal/pexp"
	"github.com/funvibe/vcgen/internal/typesystem"
)

// resultPattern names the pattern variable matched against the right side
// of a result definition.
const resultPattern = "Result"

// applyFuncAssign handles x := e by substituting e for x in every VC.
func applyFuncAssign(ctx *VerificationContext, block *AssertiveCodeBlock, s *ast.FuncAssignStmt) error {
	target, err := pexp.Build(s.Var)
	if err != nil {
		return err
	}
	if call, ok := s.Assign.(*ast.CallExp); ok {
		return applyFunctionCallAssign(ctx, block, s, target, call)
	}
	value, err := pexp.Build(s.Assign)
	if err != nil {
		return err
	}
	substituteVCs(block, pexp.MapOf(target, value))
	return nil
}

// applyFunctionCallAssign handles x := F(a1, ..., an). When F's ensures
// clause reads F = E, x becomes E with the arguments plugged in. Otherwise
// x becomes a fresh variable that the ensures clause is assumed about.
// Either way F's requires clause is confirmed.
func applyFunctionCallAssign(ctx *VerificationContext, block *AssertiveCodeBlock, s *ast.FuncAssignStmt, target pexp.PExp, call *ast.CallExp) error {
	entry, bindings, err := instantiate(ctx, call)
	if err != nil {
		return err
	}
	op := entry.Operation
	if op.ReturnType == nil {
		return diagnostics.Errorf(diagnostics.ErrV006, call.GetLocation(),
			"%s does not return a value", entry.QualifiedName())
	}
	if op.Ensures == nil {
		return diagnostics.Errorf(diagnostics.ErrV003, call.GetLocation(),
			"%s has no ensures clause describing its result", entry.QualifiedName())
	}

	var repls []ast.Replacement
	for i, p := range op.Params {
		repls = append(repls,
			ast.Replacement{Name: p.Name, With: call.Args[i]},
			ast.Replacement{Name: p.Name, Old: true, With: call.Args[i]})
	}

	var assume *ast.AssumeStmt
	if _, ok := resultDefinition(op); ok {
		value, err := definedResult(op, entry.QualifiedName(), repls, bindings, call)
		if err != nil {
			return err
		}
		substituteVCs(block, pexp.MapOf(target, value))
	} else {
		name, ok := varName(s.Var)
		if !ok {
			name = s.Var.String()
		}
		resultExp, result, err := newQuantifiedValue(block, s.Var, name)
		if err != nil {
			return err
		}
		substituteVCs(block, pexp.MapOf(target, result))
		ensRepls := append([]ast.Replacement{{Name: op.Name, With: resultExp}}, repls...)
		assume = &ast.AssumeStmt{
			Location:  s.Location,
			Assertion: instantiateClause(op.Ensures, ensRepls, bindings, s.Location, config.DetailEnsuresOf+entry.QualifiedName()),
		}
	}

	if op.Requires != nil {
		block.AddStatement(&ast.ConfirmStmt{
			Location:  s.Location,
			Assertion: instantiateClause(op.Requires, repls, bindings, s.Location, config.DetailRequiresOf+entry.QualifiedName()),
		})
	}
	if assume != nil {
		block.AddStatement(assume)
	}
	return nil
}

// definedResult instantiates F = E for one call and binds E against the
// result type of F. An E that is not of that type is V002.
func definedResult(op *ast.OperationDec, name string, repls []ast.Replacement, bindings typesystem.Subst, call *ast.CallExp) (pexp.PExp, error) {
	ensures, err := pexp.Build(ast.SubstituteTypes(ast.ReplaceVars(op.Ensures.Assertion, repls), bindings))
	if err != nil {
		return nil, err
	}
	result := pexp.NewSymbol(op.ReturnType.Apply(bindings), resultPattern, pexp.ForAll)
	m, err := pexp.BindTo(pexp.WithSubExpressionReplaced(ensures, 1, result), ensures)
	if err != nil {
		return nil, diagnostics.Wrap(diagnostics.ErrV002, call.GetLocation(), err,
			fmt.Sprintf("result of %s", name))
	}
	value, _ := m.Get(result)
	return value, nil
}

// resultDefinition recognizes an ensures clause of the form F = E where E
// does not mention F, and returns E.
func resultDefinition(op *ast.OperationDec) (ast.Exp, bool) {
	eq, ok := op.Ensures.Assertion.(*ast.FunctionExp)
	if !ok || eq.Name != config.EqualsName || eq.Qualifier != "" || len(eq.Args) != 2 {
		return nil, false
	}
	lhs, ok := eq.Args[0].(*ast.VarExp)
	if !ok || lhs.Name != op.Name || lhs.Qualifier != "" {
		return nil, false
	}
	if mentions(eq.Args[1], op.Name) {
		return nil, false
	}
	return eq.Args[1], true
}

func mentions(e ast.Exp, name string) bool {
	found := false
	ast.Rewrite(e, func(n ast.Exp) (ast.Exp, bool) {
		if v, ok := n.(*ast.VarExp); ok && v.Name == name && v.Qualifier == "" {
			found = true
		}
		return nil, false
	})
	return found
}

// applySwap handles x :=: y as the simultaneous substitution x to y and
// y to x.
func applySwap(block *AssertiveCodeBlock, s *ast.SwapStmt) error {
	left, err := pexp.Build(s.Left)
	if err != nil {
		return err
	}
	right, err := pexp.Build(s.Right)
	if err != nil {
		return err
	}
	substituteVCs(block, pexp.MapOf(left, right, right, left))
	return nil
}
