package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/funvibe/vcgen/internal/diagnostics"
	"github.com/funvibe/vcgen/internal/store"
)

func sources(target bool, names ...string) []Source {
	var out []Source
	for _, n := range names {
		out = append(out, Source{Path: filepath.Join("testdata", n), Target: target})
	}
	return out
}

func TestDefaultPipeline(t *testing.T) {
	srcs := append(sources(false, "stack_template.vc.yaml"), sources(true, "stack_client.vc.yaml", "counter.vc.yaml")...)
	ctx := Default(nil, nil).Run(NewPipelineContext(context.Background(), srcs...))

	if err := ctx.Err(); err != nil {
		t.Fatalf("Run() errors = %v", err)
	}
	if len(ctx.Modules) != 3 || len(ctx.Targets) != 2 {
		t.Fatalf("loaded %d modules with %d targets, want 3 and 2", len(ctx.Modules), len(ctx.Targets))
	}

	tests := []struct {
		module string
		vcs    int
	}{
		{"Stack_Client", 3},
		{"Counter", 5},
	}
	for i, tt := range tests {
		t.Run(tt.module, func(t *testing.T) {
			r := ctx.Results[i]
			if r.Module != tt.module {
				t.Fatalf("result %d = %s, want %s", i, r.Module, tt.module)
			}
			for _, p := range r.Procedures {
				if p.Err != nil {
					t.Errorf("%s: %v", p.Procedure, p.Err)
				}
			}
			if r.VCCount() != tt.vcs {
				t.Errorf("VCCount() = %d, want %d", r.VCCount(), tt.vcs)
			}
		})
	}
	if ctx.Failed() != 0 {
		t.Errorf("Failed() = %d", ctx.Failed())
	}
}

func TestLoadErrorsDoNotStopOtherModules(t *testing.T) {
	srcs := sources(true, "broken.vc.yaml", "counter.vc.yaml", "missing.vc.yaml")
	ctx := Default(nil, nil).Run(NewPipelineContext(context.Background(), srcs...))

	if len(ctx.Errors) != 2 {
		t.Fatalf("got %d errors (%v), want 2", len(ctx.Errors), ctx.Err())
	}
	for _, err := range ctx.Errors {
		if diagnostics.CodeOf(err) != diagnostics.ErrL001 {
			t.Errorf("error %v is not %s", err, diagnostics.ErrL001)
		}
	}
	if len(ctx.Results) != 1 || ctx.Results[0].Module != "Counter" {
		t.Errorf("results = %v", ctx.Results)
	}
}

func TestMissingConcept(t *testing.T) {
	ctx := Default(nil, nil).Run(NewPipelineContext(context.Background(), sources(true, "stack_client.vc.yaml")...))
	if len(ctx.Errors) != 1 || len(ctx.Results) != 0 {
		t.Fatalf("errors = %v, results = %d", ctx.Err(), len(ctx.Results))
	}
}

func TestStoreStage(t *testing.T) {
	st, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "runs.db"), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	ctx := Default(nil, st).Run(NewPipelineContext(context.Background(), sources(true, "counter.vc.yaml")...))
	if err := ctx.Err(); err != nil {
		t.Fatalf("Run() errors = %v", err)
	}
	if len(ctx.RunIDs) != 1 {
		t.Fatalf("got %d run ids, want 1", len(ctx.RunIDs))
	}
	run, err := st.Run(context.Background(), ctx.RunIDs[0])
	if err != nil {
		t.Fatalf("store.Run() error = %v", err)
	}
	if run.Module != "Counter" || run.VCs != 5 {
		t.Errorf("stored run = %+v", run)
	}
}

func TestCancelledRun(t *testing.T) {
	c, cancel := context.WithCancel(context.Background())
	cancel()
	ctx := Default(nil, nil).Run(NewPipelineContext(c, sources(true, "counter.vc.yaml")...))
	if !errors.Is(ctx.Err(), context.Canceled) {
		t.Fatalf("Run() errors = %v, want context.Canceled", ctx.Err())
	}
	if len(ctx.Modules) != 0 {
		t.Errorf("loaded %d modules after cancel", len(ctx.Modules))
	}
}
