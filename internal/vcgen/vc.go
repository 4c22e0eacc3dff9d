package vcgen

import (
	"strings"

	"github.com/funvibe/vcgen/internal/config"
	"github.com/funvibe/vcgen/internal/diagnostics"
	"github.com/funvibe/vcgen/internal/pexp"
	"github.com/funvibe/vcgen/internal/typesystem"
)

// VerificationCondition is a sequent: the antecedents together imply the
// consequent. A VC is never modified once built; rules derive new ones.
type VerificationCondition struct {
	Location    diagnostics.Location
	Detail      string
	Antecedents []pexp.PExp
	Consequent  pexp.PExp
}

// Expression is the VC as one implication, or just the consequent when
// there is nothing to assume.
func (vc *VerificationCondition) Expression(g *typesystem.TypeGraph) pexp.PExp {
	if len(vc.Antecedents) == 0 {
		return vc.Consequent
	}
	given := vc.Antecedents[0]
	for _, a := range vc.Antecedents[1:] {
		given = pexp.NewInfix(g.BOOLEAN, config.AndName, given, a)
	}
	return pexp.NewInfix(g.BOOLEAN, config.ImpliesName, given, vc.Consequent)
}

func (vc *VerificationCondition) String() string {
	var sb strings.Builder
	for i, a := range vc.Antecedents {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(a.String())
	}
	if len(vc.Antecedents) > 0 {
		sb.WriteString(" ==> ")
	}
	sb.WriteString(vc.Consequent.String())
	return sb.String()
}

// withAntecedent returns a copy with a appended to the antecedents,
// unless an equal antecedent is already present.
func (vc *VerificationCondition) withAntecedent(a pexp.PExp) *VerificationCondition {
	for _, existing := range vc.Antecedents {
		if pexp.Equal(existing, a) {
			return vc
		}
	}
	c := *vc
	c.Antecedents = append(append([]pexp.PExp(nil), vc.Antecedents...), a)
	return &c
}

// substitute applies m to both sides, leaving quantified variables
// alone. vc itself is returned when nothing changes.
func (vc *VerificationCondition) substitute(m *pexp.Map) *VerificationCondition {
	changed := false
	ants := make([]pexp.PExp, len(vc.Antecedents))
	for i, a := range vc.Antecedents {
		ants[i] = pexp.SubstituteFree(a, m)
		changed = changed || ants[i] != a
	}
	cons := pexp.SubstituteFree(vc.Consequent, m)
	if !changed && cons == vc.Consequent {
		return vc
	}
	c := *vc
	c.Antecedents = ants
	c.Consequent = cons
	return &c
}

// symbolNames adds every name the VC mentions to names.
func (vc *VerificationCondition) symbolNames(names map[string]bool) {
	for _, a := range vc.Antecedents {
		for _, n := range pexp.SymbolNames(a) {
			names[n] = true
		}
	}
	for _, n := range pexp.SymbolNames(vc.Consequent) {
		names[n] = true
	}
}
