package vcgen

import (
	"strings"

	"github.com/funvibe/vcgen/internal/ast"
	"github.com/funvibe/vcgen/internal/config"
	"github.com/funvibe/vcgen/internal/pexp"
)

// applyConfirm turns every conjunct into a VC of its own.
func applyConfirm(ctx *VerificationContext, block *AssertiveCodeBlock, s *ast.ConfirmStmt) error {
	for _, c := range splitConjuncts(s.Assertion, nil) {
		p, err := pexp.Build(c.exp)
		if err != nil {
			return err
		}
		if pexp.IsObviouslyTrue(p) && !ctx.Flags.KeepTrivialVCs {
			continue
		}
		vc := &VerificationCondition{Location: s.Location, Consequent: p}
		if c.detail != nil {
			vc.Detail = c.detail.Message
			switch {
			case !c.detail.Destination.IsZero():
				vc.Location = c.detail.Destination
			case !c.detail.Source.IsZero():
				vc.Location = c.detail.Source
			}
		}
		block.addVC(vc)
	}
	return nil
}

// applyAssume makes every conjunct an antecedent of every VC. With
// simplify_assumes an equality v = e is substituted instead, provided v
// is a variable that does not occur in e.
func applyAssume(ctx *VerificationContext, block *AssertiveCodeBlock, s *ast.AssumeStmt) error {
	for _, c := range splitConjuncts(s.Assertion, nil) {
		p, err := pexp.Build(c.exp)
		if err != nil {
			return err
		}
		if pexp.IsObviouslyTrue(p) {
			continue
		}
		if ctx.Flags.SimplifyAssumes && substitutable(p) {
			eq := p.(*pexp.PSymbol)
			substituteVCs(block, pexp.MapOf(eq.Args()[0], eq.Args()[1]))
			continue
		}
		vcs := make([]*VerificationCondition, len(block.vcs))
		for i, vc := range block.vcs {
			vcs[i] = vc.withAntecedent(p)
		}
		block.vcs = vcs
	}
	return nil
}

func substitutable(p pexp.PExp) bool {
	if !pexp.IsEquality(p) {
		return false
	}
	args := p.(*pexp.PSymbol).Args()
	v, ok := args[0].(*pexp.PSymbol)
	return ok && pexp.IsVariable(v) && !pexp.ContainsName(args[1], v.Name())
}

// applyChange replaces each changing variable by a fresh one.
func applyChange(block *AssertiveCodeBlock, s *ast.ChangeStmt) error {
	m := pexp.NewMap()
	for _, v := range s.Changing {
		name, ok := varName(v)
		if !ok {
			name = v.String()
		}
		old, err := pexp.Build(v)
		if err != nil {
			return err
		}
		_, nqv, err := newQuantifiedValue(block, v, name)
		if err != nil {
			return err
		}
		m.Put(old, nqv)
	}
	substituteVCs(block, m)
	return nil
}

// applyRemember replaces every #x by x: before this point in the
// procedure the incoming value is the current one.
func applyRemember(block *AssertiveCodeBlock) {
	m := pexp.NewMap()
	for _, vc := range block.vcs {
		for _, a := range vc.Antecedents {
			collectOld(a, m)
		}
		collectOld(vc.Consequent, m)
	}
	substituteVCs(block, m)
}

func collectOld(e pexp.PExp, m *pexp.Map) {
	if s, ok := e.(*pexp.PSymbol); ok && len(s.Args()) == 0 && strings.HasPrefix(s.Name(), config.OldPrefix) {
		cur := pexp.NewFunction(s.MathType(), s.Qualifier(), strings.TrimPrefix(s.Name(), config.OldPrefix))
		m.Put(s, cur)
		return
	}
	for _, c := range e.SubExpressions() {
		collectOld(c, m)
	}
}
