package prettyprinter

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/funvibe/vcgen/internal/config"
	"github.com/funvibe/vcgen/internal/pipeline"
	"github.com/funvibe/vcgen/internal/server"
	"github.com/funvibe/vcgen/internal/vcgen"
)

func counterResult(t *testing.T) *vcgen.ModuleResult {
	t.Helper()
	src := pipeline.Source{Path: filepath.Join("..", "pipeline", "testdata", "counter.vc.yaml"), Target: true}
	ctx := pipeline.Default(nil, nil).Run(pipeline.NewPipelineContext(context.Background(), src))
	if err := ctx.Err(); err != nil {
		t.Fatalf("generating counter: %v", err)
	}
	return ctx.Results[0]
}

func assertContains(t *testing.T, out string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(out, w) {
			t.Errorf("output does not contain %q:\n%s", w, out)
		}
	}
}

func TestPrintModule(t *testing.T) {
	p := NewVCPrinter(false)
	p.PrintModule(counterResult(t))
	p.PrintSummary()
	out := p.String()

	assertContains(t, out,
		"Module Counter\n",
		"  Procedure Count\n",
		"    Block Count.then\n",
		"      Free Variables: P_Val'",
		"      VC 1: "+config.DetailWhileInductiveCase,
		"Given: (i' < n), (i' <= n), (P_Val' = (n - i')), (i = 0), (n >= 0)\n",
		"        Goal: ((i' + 1) <= n)\n",
		"    Block Count.else\n",
		"        Goal: (i' = n)\n",
		"1 procedures, 5 VCs, 0 failed\n",
	)
	if strings.Contains(out, "\033[") {
		t.Errorf("uncoloured output has escape sequences")
	}
}

func TestPrintModuleNarrow(t *testing.T) {
	p := NewVCPrinter(false)
	p.SetLineWidth(30)
	p.PrintModule(counterResult(t))
	assertContains(t, p.String(),
		"        Given:\n",
		"          1. (i' < n)\n",
		"          5. (n >= 0)\n",
	)
}

func TestPrintColor(t *testing.T) {
	p := NewVCPrinter(true)
	p.PrintModule(&vcgen.ModuleResult{
		Module:     "M",
		Procedures: []*vcgen.ProcedureResult{{Procedure: "P", Err: errors.New("V003: missing clause")}},
	})
	p.PrintSummary()
	assertContains(t, p.String(),
		ansiBold+"Module M"+ansiReset,
		ansiRed+"V003: missing clause"+ansiReset,
		ansiRed+"1 failed"+ansiReset,
	)
}

func TestPrintResponseMatchesModule(t *testing.T) {
	result := counterResult(t)

	local := NewVCPrinter(false)
	local.PrintModule(result)
	remote := NewVCPrinter(false)
	remote.PrintResponse(server.NewResponse(result))

	if local.String() != remote.String() {
		t.Errorf("outputs differ\nlocal:\n%s\nremote:\n%s", local.String(), remote.String())
	}

	resp := server.NewResponse(result)
	resp.RunID = "42"
	p := NewVCPrinter(false)
	p.PrintResponse(resp)
	assertContains(t, p.String(), "Module Counter (run 42)\n")
}

func TestPrintSteps(t *testing.T) {
	result := counterResult(t)
	p := NewVCPrinter(false)
	p.PrintSteps(result.Procedures[0].Blocks[0])
	assertContains(t, p.String(),
		"Steps of Count.then\n",
		"  1. "+config.RuleConfirm,
		"  2. "+config.RuleWhile,
		"  3. "+config.RuleIf,
	)
}

func TestUseColor(t *testing.T) {
	tests := []struct {
		mode    string
		noColor bool
		want    bool
		wantErr bool
	}{
		{mode: ColorAlways, want: true},
		{mode: ColorAlways, noColor: true, want: true},
		{mode: ColorNever, want: false},
		{mode: ColorAuto, want: false},
		{mode: ColorAuto, noColor: true, want: false},
		{mode: "", want: false},
		{mode: "sometimes", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			if tt.noColor {
				t.Setenv("NO_COLOR", "1")
			}
			// A nil file is never a terminal.
			got, err := UseColor(tt.mode, nil)
			if (err != nil) != tt.wantErr {
				t.Fatalf("UseColor() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("UseColor(%q) = %v, want %v", tt.mode, got, tt.want)
			}
		})
	}
}
