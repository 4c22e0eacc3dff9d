package vcgen

import (
	"fmt"

	"github.com/funvibe/vcgen/internal/ast"
	"github.com/funvibe/vcgen/internal/diagnostics"
)

// VCConfirmStmt carries a snapshot of VCs. Processing it makes the
// snapshot the block's VC list again; the while rule leaves one on the
// loop-exit path.
type VCConfirmStmt struct {
	Location diagnostics.Location
	VCs      []*VerificationCondition
}

func (s *VCConfirmStmt) GetLocation() diagnostics.Location { return s.Location }

func (s *VCConfirmStmt) String() string {
	return fmt.Sprintf("VC_Confirm (%d VCs);", len(s.VCs))
}

// CloneStatement copies the list; the VCs themselves are immutable.
func (s *VCConfirmStmt) CloneStatement() ast.Statement {
	return &VCConfirmStmt{Location: s.Location, VCs: append([]*VerificationCondition(nil), s.VCs...)}
}
