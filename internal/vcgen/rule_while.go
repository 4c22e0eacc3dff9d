package vcgen

import (
	"github.com/funvibe/vcgen/internal/ast"
	"github.com/funvibe/vcgen/internal/config"
	"github.com/funvibe/vcgen/internal/diagnostics"
)

// applyWhile replaces the loop by the statements of its inductive
// argument. Appended in order (so processed in reverse):
//
//	Confirm Inv;                          base case
//	Change changing;
//	Assume Inv and P_Val' = D;
//	If Test then
//	    body; Confirm Inv and 1 + D <= P_Val';
//	else
//	    VC_Confirm <the VCs before the loop>;
//	end;
//
// and the VC list is cleared. Without a decreasing clause, when
// termination is not required, the P_Val' parts are left out.
func applyWhile(ctx *VerificationContext, block *AssertiveCodeBlock, s *ast.WhileStmt) error {
	v := s.Verification
	if v == nil || v.Maintaining == nil {
		return diagnostics.NewError(diagnostics.ErrV003, s.Location, "while loop has no maintaining clause")
	}
	if v.Decreasing == nil && ctx.Flags.RequireTermination {
		return diagnostics.NewError(diagnostics.ErrV003, s.Location, "while loop has no decreasing clause")
	}
	inv := v.Maintaining.Assertion
	invLoc := v.Maintaining.Location
	boolean := ctx.Graph.BOOLEAN

	block.AddStatement(&ast.ConfirmStmt{
		Location:  s.Location,
		Assertion: ast.WithDetail(inv, detail(invLoc, s.Location, config.DetailWhileBaseCase)),
	})
	if len(v.Changing) > 0 {
		block.AddStatement(&ast.ChangeStmt{Location: s.Location, Changing: v.Changing})
	}

	assumed := ast.WithDetail(inv, detail(invLoc, s.Location, config.DetailWhileInvariant))
	inductive := ast.WithDetail(inv, detail(invLoc, s.Location, config.DetailWhileInductiveCase))
	if v.Decreasing != nil {
		dec := v.Decreasing.Assertion
		decLoc := v.Decreasing.Location
		pval, _, err := newQuantifiedValue(block, dec, config.PValName)
		if err != nil {
			return err
		}
		snapshot := ast.WithDetail(ast.FormEquality(decLoc, pval, dec, boolean),
			detail(decLoc, s.Location, config.DetailWhileDecreasing))
		assumed = ast.FormConjunct(s.Location, assumed, snapshot, boolean)

		one := &ast.IntegerExp{ExpBase: ast.ExpBase{Location: decLoc, Type: dec.MathType()}, Value: 1}
		sum := &ast.FunctionExp{
			ExpBase: ast.ExpBase{Location: decLoc, Type: dec.MathType()},
			Name:    config.PlusName,
			Args:    []ast.Exp{one, dec.CloneExp()},
			Style:   ast.Infix,
		}
		decreases := &ast.FunctionExp{
			ExpBase: ast.ExpBase{Location: decLoc, Type: boolean, LocDetail: detail(decLoc, s.Location, config.DetailWhileTermination)},
			Name:    config.LessEqName,
			Args:    []ast.Exp{sum, pval.CloneExp()},
			Style:   ast.Infix,
		}
		inductive = ast.FormConjunct(s.Location, inductive, decreases, boolean)
	}
	block.AddStatement(&ast.AssumeStmt{Location: s.Location, Assertion: assumed})

	body := ast.CloneStatements(s.Body)
	body = append(body, &ast.ConfirmStmt{Location: s.Location, Assertion: inductive})
	block.AddStatement(&ast.IfStmt{
		Location: s.Location,
		IfClause: &ast.IfConditionItem{Location: s.Location, Test: s.Test, Statements: body},
		Else:     []ast.Statement{&VCConfirmStmt{Location: s.Location, VCs: append([]*VerificationCondition(nil), block.VCs()...)}},
	})
	block.SetVCs(nil)
	return nil
}
