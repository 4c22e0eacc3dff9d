package vcgen

import (
	"fmt"

	"github.com/funvibe/vcgen/internal/ast"
	"github.com/funvibe/vcgen/internal/config"
	"github.com/funvibe/vcgen/internal/diagnostics"
	"github.com/funvibe/vcgen/internal/pexp"
	"github.com/funvibe/vcgen/internal/symbols"
	"github.com/funvibe/vcgen/internal/typesystem"
)

// instantiate resolves a call and binds the callee's generics from the
// argument types, starting from the facility's instantiation.
func instantiate(ctx *VerificationContext, call *ast.CallExp) (*symbols.OperationEntry, typesystem.Subst, error) {
	entry, err := ctx.Scope.ResolveOperation(call.Qualifier, call.Name)
	if err != nil {
		return nil, nil, diagnostics.Wrap(diagnostics.ErrV005, call.GetLocation(), err,
			fmt.Sprintf("cannot resolve %s", call))
	}
	op := entry.Operation
	if len(op.Params) != len(call.Args) {
		return nil, nil, diagnostics.Errorf(diagnostics.ErrV002, call.GetLocation(),
			"%s takes %d arguments, %d given", entry.QualifiedName(), len(op.Params), len(call.Args))
	}

	bindings := typesystem.Subst{}
	for k, v := range entry.Instantiations {
		bindings[k] = v
	}
	for i, p := range op.Params {
		arg := call.Args[i]
		if arg.MathType() == nil {
			return nil, nil, diagnostics.Errorf(diagnostics.ErrV001, arg.GetLocation(),
				"argument %q has no math type", arg.String())
		}
		if err := typesystem.BindGenerics(p.Type, arg.MathType(), bindings); err != nil {
			return nil, nil, diagnostics.Wrap(diagnostics.ErrV004, arg.GetLocation(), err,
				fmt.Sprintf("argument %d of %s", i+1, entry.QualifiedName()))
		}
	}
	return entry, bindings, nil
}

// instantiateClause rewrites a callee clause for one call site.
func instantiateClause(clause *ast.AssertionClause, repls []ast.Replacement, bindings typesystem.Subst, callLoc diagnostics.Location, msg string) ast.Exp {
	e := ast.ReplaceVars(clause.Assertion, repls)
	e = ast.SubstituteTypes(e, bindings)
	return ast.WithDetail(e, detail(clause.Location, callLoc, msg))
}

// applyCall handles Op(a1, ..., an). Arguments passed in a mode that may
// change them are renamed in the VCs to fresh variables standing for
// their values after the call. Then, processed in this order, the ensures
// clause is assumed (#p as the incoming argument, p as the outgoing one)
// and the requires clause is confirmed.
func applyCall(ctx *VerificationContext, block *AssertiveCodeBlock, s *ast.CallStmt) error {
	entry, bindings, err := instantiate(ctx, s.Call)
	if err != nil {
		return err
	}
	op := entry.Operation

	m := pexp.NewMap()
	var reqRepls, ensRepls []ast.Replacement
	for i, p := range op.Params {
		arg := s.Call.Args[i]
		reqRepls = append(reqRepls, ast.Replacement{Name: p.Name, With: arg})
		ensRepls = append(ensRepls, ast.Replacement{Name: p.Name, Old: true, With: arg})

		if !p.Mode.Modifies() {
			ensRepls = append(ensRepls, ast.Replacement{Name: p.Name, With: arg})
			continue
		}
		name, ok := varName(arg)
		if !ok {
			return diagnostics.Errorf(diagnostics.ErrV006, arg.GetLocation(),
				"argument %q for %s parameter %s of %s must be a variable", arg.String(), p.Mode, p.Name, entry.QualifiedName())
		}
		before, err := pexp.Build(arg)
		if err != nil {
			return err
		}
		afterExp, after, err := newQuantifiedValue(block, arg, name)
		if err != nil {
			return err
		}
		m.Put(before, after)
		ensRepls = append(ensRepls, ast.Replacement{Name: p.Name, With: afterExp})
	}
	substituteVCs(block, m)

	if op.Requires != nil {
		block.AddStatement(&ast.ConfirmStmt{
			Location:  s.Location,
			Assertion: instantiateClause(op.Requires, reqRepls, bindings, s.Location, config.DetailRequiresOf+entry.QualifiedName()),
		})
	}
	if op.Ensures != nil {
		block.AddStatement(&ast.AssumeStmt{
			Location:  s.Location,
			Assertion: instantiateClause(op.Ensures, ensRepls, bindings, s.Location, config.DetailEnsuresOf+entry.QualifiedName()),
		})
	}
	return nil
}
