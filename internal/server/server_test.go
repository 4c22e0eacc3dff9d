package server

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/funvibe/vcgen/internal/store"
)

func readModule(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "pipeline", "testdata", name))
	if err != nil {
		t.Fatal(err)
	}
	return data
}

// startServer runs s on an in-memory listener and returns a client for it.
func startServer(t *testing.T, s *Server) *Client {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	go s.Serve(lis)
	t.Cleanup(s.Stop)

	dialer := func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	}
	c, err := Dial("passthrough:///bufnet", grpc.WithContextDialer(dialer))
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func newServer(t *testing.T, opts Options) *Server {
	t.Helper()
	s, err := New(opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s
}

func TestGenerateOverGRPC(t *testing.T) {
	c := startServer(t, newServer(t, Options{}))

	tests := []struct {
		name   string
		req    *Request
		module string
		vcs    int
		blocks []string
	}{
		{
			name:   "counter",
			req:    &Request{File: "counter.vc.yaml", Module: readModule(t, "counter.vc.yaml")},
			module: "Counter",
			vcs:    5,
			blocks: []string{"Count.then", "Count.else"},
		},
		{
			name: "facility client",
			req: &Request{
				File:   "stack_client.vc.yaml",
				Module: readModule(t, "stack_client.vc.yaml"),
				Uses:   [][]byte{readModule(t, "stack_template.vc.yaml")},
			},
			module: "Stack_Client",
			vcs:    3,
			blocks: []string{"Push_Twice"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := c.Generate(context.Background(), tt.req)
			if err != nil {
				t.Fatalf("Generate() error = %v", err)
			}
			if resp.Module != tt.module {
				t.Errorf("Module = %q, want %q", resp.Module, tt.module)
			}
			if resp.VCCount() != tt.vcs {
				t.Errorf("VCCount() = %d, want %d", resp.VCCount(), tt.vcs)
			}
			if resp.Failed() != 0 || resp.RunID != "" {
				t.Errorf("Failed() = %d, RunID = %q", resp.Failed(), resp.RunID)
			}
			if len(resp.Procedures) != 1 {
				t.Fatalf("got %d procedures", len(resp.Procedures))
			}
			var names []string
			for _, b := range resp.Procedures[0].Blocks {
				names = append(names, b.Name)
			}
			if strings.Join(names, ",") != strings.Join(tt.blocks, ",") {
				t.Errorf("blocks = %v, want %v", names, tt.blocks)
			}
		})
	}
}

func TestResponseMatchesLocalCall(t *testing.T) {
	s := newServer(t, Options{})
	c := startServer(t, s)
	req := &Request{File: "counter.vc.yaml", Module: readModule(t, "counter.vc.yaml")}

	local, err := s.Generate(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	remote, err := c.Generate(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}

	lb, rb := local.Procedures[0].Blocks, remote.Procedures[0].Blocks
	if len(lb) != len(rb) {
		t.Fatalf("blocks: local %d, remote %d", len(lb), len(rb))
	}
	for i := range lb {
		if strings.Join(lb[i].FreeVars, ";") != strings.Join(rb[i].FreeVars, ";") {
			t.Errorf("%s free vars: local %v, remote %v", lb[i].Name, lb[i].FreeVars, rb[i].FreeVars)
		}
		for j := range lb[i].VCs {
			l, r := lb[i].VCs[j], rb[i].VCs[j]
			if l.Consequent != r.Consequent || l.Detail != r.Detail || l.Location != r.Location ||
				strings.Join(l.Antecedents, ";") != strings.Join(r.Antecedents, ";") {
				t.Errorf("%s VC %d: local %+v, remote %+v", lb[i].Name, j, l, r)
			}
		}
	}

	exit := remote.Procedures[0].Blocks[1]
	if got := exit.VCs[0].Consequent; got != "(i' = n)" {
		t.Errorf("exit consequent = %q", got)
	}
	if got := exit.VCs[0].Antecedents[0]; got != "not((i' < n))" {
		t.Errorf("exit first antecedent = %q", got)
	}
	if len(exit.FreeVars) != 2 || !strings.HasPrefix(exit.FreeVars[1], "i': ") {
		t.Errorf("exit free vars = %v", exit.FreeVars)
	}
}

func TestGenerateErrors(t *testing.T) {
	c := startServer(t, newServer(t, Options{}))

	tests := []struct {
		name string
		req  *Request
	}{
		{"empty module", &Request{}},
		{"load error", &Request{File: "broken.vc.yaml", Module: readModule(t, "broken.vc.yaml")}},
		{"missing concept", &Request{Module: readModule(t, "stack_client.vc.yaml")}},
		{"not yaml", &Request{Module: []byte("module: [")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Generate(context.Background(), tt.req)
			if got := status.Code(err); got != codes.InvalidArgument {
				t.Errorf("code = %v (%v), want InvalidArgument", got, err)
			}
		})
	}
}

func TestGenerateCancelled(t *testing.T) {
	s := newServer(t, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Generate(ctx, &Request{Module: readModule(t, "counter.vc.yaml")})
	if got := status.Code(err); got != codes.Canceled {
		t.Errorf("code = %v (%v), want Canceled", got, err)
	}
}

func TestGenerateStoresRun(t *testing.T) {
	st, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "runs.db"), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()
	c := startServer(t, newServer(t, Options{Store: st}))

	resp, err := c.Generate(context.Background(), &Request{Module: readModule(t, "counter.vc.yaml")})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	id, err := uuid.Parse(resp.RunID)
	if err != nil {
		t.Fatalf("RunID %q: %v", resp.RunID, err)
	}
	vcs, err := st.VCs(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	if len(vcs) != resp.VCCount() {
		t.Errorf("stored %d VCs, response has %d", len(vcs), resp.VCCount())
	}
}
