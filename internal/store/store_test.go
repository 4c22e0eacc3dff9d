package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/funvibe/vcgen/internal/loader"
	"github.com/funvibe/vcgen/internal/symbols"
	"github.com/funvibe/vcgen/internal/typesystem"
	"github.com/funvibe/vcgen/internal/vcgen"
)

const counter = `
module: Counter
kind: realization
procedures:
  - name: Count
    params: [{name: n, mode: preserves, type: Z}]
    vars: [{name: i, type: Z, init: 0}]
    requires: [">=", n, 0]
    ensures: ["=", i, n]
    body:
      - while:
          cond: ["<", i, n]
          changing: [i]
          maintaining: ["<=", i, n]
          decreasing: ["-", n, i]
          do:
            - assign: [i, ["+", i, 1]]
  - name: Broken
    body:
      - while:
          cond: true
          do: []
`

func generate(t *testing.T) *vcgen.ModuleResult {
	t.Helper()
	graph := typesystem.NewTypeGraph()
	m, err := loader.Decode([]byte(counter), "counter.vc.yaml", graph)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	env, err := symbols.NewEnvironment(m)
	if err != nil {
		t.Fatal(err)
	}
	scope, err := env.Scope(m.Name)
	if err != nil {
		t.Fatal(err)
	}
	result, err := vcgen.NewGenerator(graph, nil, nil).GenerateModule(context.Background(), m, scope)
	if err != nil {
		t.Fatalf("GenerateModule() error = %v", err)
	}
	return result
}

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "runs.db"), nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveRunRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	result := generate(t)

	id, err := s.SaveRun(ctx, result)
	if err != nil {
		t.Fatalf("SaveRun() error = %v", err)
	}

	run, err := s.Run(ctx, id)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if run.ID != id || run.Module != "Counter" || run.Procedures != 2 || run.Failed != 1 || run.VCs != result.VCCount() {
		t.Errorf("run = %+v", run)
	}

	procs, err := s.Procedures(ctx, id)
	if err != nil {
		t.Fatalf("Procedures() error = %v", err)
	}
	if len(procs) != 2 || procs[0].Name != "Count" || procs[0].Error != "" || procs[1].Error == "" {
		t.Errorf("procedures = %+v", procs)
	}

	vcs, err := s.VCs(ctx, id)
	if err != nil {
		t.Fatalf("VCs() error = %v", err)
	}
	var want []*vcgen.VerificationCondition
	for _, b := range result.Procedures[0].Blocks {
		want = append(want, b.VCs()...)
	}
	if len(vcs) != len(want) {
		t.Fatalf("got %d VCs, want %d", len(vcs), len(want))
	}
	for i, vc := range vcs {
		if vc.Consequent != want[i].Consequent.String() || vc.Detail != want[i].Detail {
			t.Errorf("VC %d = %s (%s), want %s (%s)", i, vc.Consequent, vc.Detail, want[i].Consequent, want[i].Detail)
		}
		if len(vc.Antecedents) != len(want[i].Antecedents) {
			t.Errorf("VC %d has %d antecedents, want %d", i, len(vc.Antecedents), len(want[i].Antecedents))
			continue
		}
		for k, a := range vc.Antecedents {
			if a != want[i].Antecedents[k].String() {
				t.Errorf("VC %d antecedent %d = %s, want %s", i, k, a, want[i].Antecedents[k])
			}
		}
	}
	if vcs[0].Block != "Count.then" {
		t.Errorf("first VC block = %q", vcs[0].Block)
	}
}

func TestRunsNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	result := generate(t)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		s.now = func() time.Time { return base.Add(time.Duration(i) * time.Minute) }
		id, err := s.SaveRun(ctx, result)
		if err != nil {
			t.Fatalf("SaveRun() error = %v", err)
		}
		ids = append(ids, id)
	}

	runs, err := s.Runs(ctx)
	if err != nil {
		t.Fatalf("Runs() error = %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("got %d runs, want 3", len(runs))
	}
	for i, r := range runs {
		if r.ID != ids[2-i] {
			t.Errorf("run %d = %s, want %s", i, r.ID, ids[2-i])
		}
	}
	if !runs[0].Created.Equal(base.Add(2 * time.Minute)) {
		t.Errorf("created = %v", runs[0].Created)
	}
}

func TestRunNotFound(t *testing.T) {
	s := openStore(t)
	if _, err := s.Run(context.Background(), uuid.New()); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("Run() error = %v, want ErrRunNotFound", err)
	}
}

func TestReopenKeepsRuns(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "runs.db")
	s, err := Open(ctx, path, nil)
	if err != nil {
		t.Fatal(err)
	}
	id, err := s.SaveRun(ctx, generate(t))
	if err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = Open(ctx, path, nil)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer s.Close()
	if _, err := s.Run(ctx, id); err != nil {
		t.Errorf("Run() after reopen error = %v", err)
	}
}
