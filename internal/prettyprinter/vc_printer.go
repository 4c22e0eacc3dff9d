package prettyprinter

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/funvibe/vcgen/internal/pexp"
	"github.com/funvibe/vcgen/internal/server"
	"github.com/funvibe/vcgen/internal/vcgen"
)

// --- VC Printer (human readable generation results) ---

const (
	ansiReset = "\033[0m"
	ansiBold  = "\033[1m"
	ansiRed   = "\033[31m"
	ansiGreen = "\033[32m"
	ansiCyan  = "\033[36m"
	ansiGray  = "\033[90m"
)

type VCPrinter struct {
	buf       bytes.Buffer
	indent    int
	lineWidth int // max line width (0 = unlimited)
	color     bool

	procedures, failed, vcs int
}

func NewVCPrinter(color bool) *VCPrinter {
	return &VCPrinter{lineWidth: 100, color: color}
}

func (p *VCPrinter) SetLineWidth(width int) {
	p.lineWidth = width
}

func (p *VCPrinter) String() string {
	return p.buf.String()
}

func (p *VCPrinter) writeIndent() {
	for i := 0; i < p.indent; i++ {
		p.buf.WriteString("  ")
	}
}

func (p *VCPrinter) write(s string) {
	p.buf.WriteString(s)
}

func (p *VCPrinter) writeln() {
	p.buf.WriteString("\n")
}

// styled writes s wrapped in an escape sequence when colour is on.
func (p *VCPrinter) styled(code, s string) {
	if !p.color || s == "" {
		p.write(s)
		return
	}
	p.buf.WriteString(code)
	p.write(s)
	p.buf.WriteString(ansiReset)
}

func (p *VCPrinter) line(parts ...func()) {
	p.writeIndent()
	for _, part := range parts {
		part()
	}
	p.writeln()
}

func (p *VCPrinter) text(s string) func() {
	return func() { p.write(s) }
}

func (p *VCPrinter) textf(format string, a ...any) func() {
	return p.text(fmt.Sprintf(format, a...))
}

func (p *VCPrinter) style(code, s string) func() {
	return func() { p.styled(code, s) }
}

func (p *VCPrinter) fits(s string) bool {
	return p.lineWidth == 0 || p.indent*2+len(s) <= p.lineWidth
}

// vcView is one VC in printed form.
type vcView struct {
	location, detail string
	given, goal      []string
}

func (p *VCPrinter) printVC(n int, v vcView) {
	p.line(p.style(ansiCyan, fmt.Sprintf("VC %d", n)), p.textf(": %s", v.detail), p.style(ansiGray, "  "+v.location))
	p.indent++
	if len(v.given) > 0 {
		if joined := strings.Join(v.given, ", "); p.fits("Given: " + joined) {
			p.line(p.text("Given: "), p.text(joined))
		} else {
			p.line(p.text("Given:"))
			p.indent++
			for i, g := range v.given {
				p.line(p.textf("%d. %s", i+1, g))
			}
			p.indent--
		}
	}
	if len(v.goal) == 1 {
		p.line(p.text("Goal: "), p.style(ansiGreen, v.goal[0]))
	} else {
		p.line(p.text("Goal:"))
		p.indent++
		for _, g := range v.goal {
			p.line(p.style(ansiGreen, g))
		}
		p.indent--
	}
	p.indent--
}

// goalOf renders a consequent, splitting a conjunction that does not fit
// on one line into its conjuncts.
func (p *VCPrinter) goalOf(e pexp.PExp) []string {
	s := e.String()
	if p.fits("Goal: " + s) {
		return []string{s}
	}
	var out []string
	for _, c := range pexp.SplitIntoConjuncts(e) {
		out = append(out, c.String())
	}
	return out
}

func (p *VCPrinter) procedureHeader(name, errText string) {
	p.procedures++
	if errText != "" {
		p.failed++
		p.line(p.style(ansiBold, "Procedure "+name), p.text(": "), p.style(ansiRed, errText))
		return
	}
	p.line(p.style(ansiBold, "Procedure "+name))
}

func (p *VCPrinter) blockHeader(name string, freeVars []string) {
	p.line(p.text("Block "), p.style(ansiBold, name))
	if len(freeVars) > 0 {
		p.indent++
		p.line(p.text("Free Variables: "), p.text(strings.Join(freeVars, ", ")))
		p.indent--
	}
}

// PrintModule renders every procedure of a local generation result.
func (p *VCPrinter) PrintModule(r *vcgen.ModuleResult) {
	p.line(p.style(ansiBold, "Module "+r.Module))
	p.indent++
	for _, proc := range r.Procedures {
		errText := ""
		if proc.Err != nil {
			errText = proc.Err.Error()
		}
		p.procedureHeader(proc.Procedure, errText)
		p.indent++
		for _, b := range proc.Blocks {
			var fv []string
			for _, v := range b.FreeVars() {
				fv = append(fv, fmt.Sprintf("%s: %s", v.Name(), v.MathType()))
			}
			p.blockHeader(b.Name, fv)
			p.indent++
			for i, vc := range b.VCs() {
				view := vcView{location: vc.Location.String(), detail: vc.Detail, goal: p.goalOf(vc.Consequent)}
				for _, a := range vc.Antecedents {
					view.given = append(view.given, a.String())
				}
				p.printVC(i+1, view)
				p.vcs++
			}
			p.indent--
		}
		p.indent--
	}
	p.indent--
}

// PrintResponse renders the reply of a remote generator.
func (p *VCPrinter) PrintResponse(r *server.Response) {
	header := "Module " + r.Module
	if r.RunID != "" {
		header += " (run " + r.RunID + ")"
	}
	p.line(p.style(ansiBold, header))
	p.indent++
	for _, proc := range r.Procedures {
		p.procedureHeader(proc.Name, proc.Error)
		p.indent++
		for _, b := range proc.Blocks {
			p.blockHeader(b.Name, b.FreeVars)
			p.indent++
			for i, vc := range b.VCs {
				p.printVC(i+1, vcView{location: vc.Location, detail: vc.Detail, given: vc.Antecedents, goal: []string{vc.Consequent}})
				p.vcs++
			}
			p.indent--
		}
		p.indent--
	}
	p.indent--
}

// PrintSteps renders the rule applications that produced a block.
func (p *VCPrinter) PrintSteps(b *vcgen.AssertiveCodeBlock) {
	p.line(p.text("Steps of "), p.style(ansiBold, b.Name))
	p.indent++
	for i, s := range b.Steps() {
		p.line(p.textf("%d. ", i+1), p.style(ansiCyan, s.Rule), p.style(ansiGray, "  "+s.Statement))
		p.indent++
		for _, l := range strings.Split(strings.TrimRight(s.State, "\n"), "\n") {
			p.line(p.text(l))
		}
		p.indent--
	}
	p.indent--
}

// PrintSummary closes the output with the totals of everything printed.
func (p *VCPrinter) PrintSummary() {
	p.writeIndent()
	p.write(fmt.Sprintf("%d procedures, %d VCs, ", p.procedures, p.vcs))
	if p.failed > 0 {
		p.styled(ansiRed, fmt.Sprintf("%d failed", p.failed))
	} else {
		p.styled(ansiGreen, "0 failed")
	}
	p.writeln()
}
