package vcgen

import (
	"strings"

	"github.com/funvibe/vcgen/internal/ast"
	"github.com/funvibe/vcgen/internal/config"
	"github.com/funvibe/vcgen/internal/diagnostics"
	"github.com/funvibe/vcgen/internal/pexp"
)

// applyRule processes stmt, which has just been removed from the end of
// block. It returns the forks the rule created besides block itself.
func applyRule(ctx *VerificationContext, block *AssertiveCodeBlock, stmt ast.Statement) ([]*AssertiveCodeBlock, string, error) {
	switch s := stmt.(type) {
	case *ast.ConfirmStmt:
		return nil, config.RuleConfirm, applyConfirm(ctx, block, s)
	case *ast.AssumeStmt:
		return nil, config.RuleAssume, applyAssume(ctx, block, s)
	case *ast.ChangeStmt:
		return nil, config.RuleChange, applyChange(block, s)
	case *ast.MemoryStmt:
		if s.Kind == ast.Forget {
			return nil, config.RuleForget, nil
		}
		applyRemember(block)
		return nil, config.RuleRemember, nil
	case *ast.FuncAssignStmt:
		return nil, config.RuleAssignment, applyFuncAssign(ctx, block, s)
	case *ast.SwapStmt:
		return nil, config.RuleSwap, applySwap(block, s)
	case *ast.CallStmt:
		return nil, config.RuleCall, applyCall(ctx, block, s)
	case *ast.IfStmt:
		fork := applyIf(ctx, block, s)
		return []*AssertiveCodeBlock{fork}, config.RuleIf, nil
	case *ast.WhileStmt:
		return nil, config.RuleWhile, applyWhile(ctx, block, s)
	case *VCConfirmStmt:
		block.SetVCs(s.VCs)
		return nil, config.RuleVCConfirm, nil
	}
	return nil, "", diagnostics.Errorf(diagnostics.ErrV006, stmt.GetLocation(),
		"no proof rule for statement %T", stmt)
}

// conjunct is one part of an assertion with the provenance it inherits.
type conjunct struct {
	exp    ast.Exp
	detail *diagnostics.LocationDetail
}

// splitConjuncts flattens "and" at the expression level so that each
// part keeps its own location detail, or the nearest enclosing one.
func splitConjuncts(e ast.Exp, inherited *diagnostics.LocationDetail) []conjunct {
	detail := e.Detail()
	if detail == nil {
		detail = inherited
	}
	if f, ok := e.(*ast.FunctionExp); ok && f.Name == config.AndName && f.Qualifier == "" && len(f.Args) == 2 {
		return append(splitConjuncts(f.Args[0], detail), splitConjuncts(f.Args[1], detail)...)
	}
	return []conjunct{{exp: e, detail: detail}}
}

// freshName returns base followed by as many primes as needed to avoid
// every name in used.
func freshName(base string, used map[string]bool) string {
	name := base + config.NQVSuffix
	for used[name] {
		name += config.NQVSuffix
	}
	used[name] = true
	return name
}

// newQuantifiedValue introduces a fresh free variable named after v and
// returns it both as an expression and as a symbol.
func newQuantifiedValue(block *AssertiveCodeBlock, v ast.Exp, base string) (*ast.VarExp, *pexp.PSymbol, error) {
	if v.MathType() == nil {
		return nil, nil, diagnostics.Errorf(diagnostics.ErrV001, v.GetLocation(),
			"expression %q has no math type", v.String())
	}
	name := freshName(strings.TrimPrefix(base, config.OldPrefix), block.usedNames())
	exp := &ast.VarExp{ExpBase: ast.ExpBase{Location: v.GetLocation(), Type: v.MathType()}, Name: name}
	sym := pexp.NewSymbol(v.MathType(), name, pexp.None)
	block.AddFreeVar(sym)
	return exp, sym, nil
}

// substituteVCs applies m to every VC of block.
func substituteVCs(block *AssertiveCodeBlock, m *pexp.Map) {
	if m.Len() == 0 {
		return
	}
	vcs := make([]*VerificationCondition, len(block.vcs))
	for i, vc := range block.vcs {
		vcs[i] = vc.substitute(m)
	}
	block.vcs = vcs
}

func varName(e ast.Exp) (string, bool) {
	switch v := e.(type) {
	case *ast.VarExp:
		return v.Name, true
	case *ast.DotExp:
		return v.String(), true
	}
	return "", false
}

// detail describes an expression that came from src and now stands at dst.
func detail(src, dst diagnostics.Location, msg string) *diagnostics.LocationDetail {
	return &diagnostics.LocationDetail{Source: src, Destination: dst, Message: msg}
}
