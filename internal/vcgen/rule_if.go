package vcgen

import (
	"github.com/funvibe/vcgen/internal/ast"
	"github.com/funvibe/vcgen/internal/config"
)

// applyIf forks the path. block continues with the test assumed and the
// then-statements; the returned copy continues with the test negated and
// the else-statements. Else-ifs become a nested If on the else path.
func applyIf(ctx *VerificationContext, block *AssertiveCodeBlock, s *ast.IfStmt) *AssertiveCodeBlock {
	test := s.IfClause.Test
	elseBlock := block.Copy(block.Name + ".else")
	block.Name += ".then"

	block.AddStatement(&ast.AssumeStmt{
		Location:  s.IfClause.Location,
		Assertion: ast.WithDetail(test, detail(test.GetLocation(), s.Location, config.DetailIfCondition)),
	})
	block.AddStatements(ast.CloneStatements(s.IfClause.Statements)...)

	var elseStmts []ast.Statement
	if len(s.ElseIfs) > 0 {
		elseStmts = []ast.Statement{&ast.IfStmt{
			Location: s.ElseIfs[0].Location,
			IfClause: s.ElseIfs[0],
			ElseIfs:  s.ElseIfs[1:],
			Else:     s.Else,
		}}
	} else {
		elseStmts = s.Else
	}
	negated := ast.Negate(test, ctx.Graph.BOOLEAN)
	elseBlock.AddStatement(&ast.AssumeStmt{
		Location:  s.IfClause.Location,
		Assertion: ast.WithDetail(negated, detail(test.GetLocation(), s.Location, config.DetailIfNegatedCondition)),
	})
	elseBlock.AddStatements(ast.CloneStatements(elseStmts)...)
	return elseBlock
}
