package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/status"

	"github.com/funvibe/vcgen/internal/config"
	"github.com/funvibe/vcgen/internal/pipeline"
	"github.com/funvibe/vcgen/internal/prettyprinter"
	"github.com/funvibe/vcgen/internal/server"
	"github.com/funvibe/vcgen/internal/store"
	"github.com/funvibe/vcgen/internal/vcgen"
)

// Version can be set at build time using: -ldflags "-X main.Version=1.2.0"
var Version = "dev"

// Exit codes.
const (
	exitOK     = 0
	exitUsage  = 1
	exitLoad   = 2 // A module or the configuration could not be read
	exitFailed = 3 // At least one procedure could not be processed
)

const usage = `Usage:
  vcgen [flags] <module.vc.yaml|dir>...     generate and print VCs
  vcgen serve [flags]                       run the gRPC service
  vcgen remote --addr ADDR [flags] <module> ask a running service
  vcgen version

Flags:
  --uses FILE        load FILE for its operations without verifying it (repeatable)
  --steps            print the proof rule steps of every block
  --store PATH       record the run in a sqlite database
  --config PATH      use this vcgen.yaml instead of searching for one
  --color MODE       auto, always or never
  --workers N        procedures processed concurrently
  --log-level LEVEL  logrus level (debug, info, warning, ...)
  --listen ADDR      address for serve
  --addr ADDR        address for remote
`

type options struct {
	steps    bool
	store    string
	config   string
	color    string
	workers  int
	logLevel string
	listen   string
	addr     string
	uses     []string
	files    []string
}

var errUsage = errors.New("usage")

// parseArgs reads --flag value, --flag=value and the single dash forms.
// Everything else is a file.
func parseArgs(args []string) (*options, error) {
	opts := &options{}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") || arg == "-" {
			opts.files = append(opts.files, arg)
			continue
		}
		name := strings.TrimLeft(arg, "-")
		value, hasValue := "", false
		if eq := strings.IndexByte(name, '='); eq >= 0 {
			name, value, hasValue = name[:eq], name[eq+1:], true
		}
		if name == "steps" {
			opts.steps = true
			continue
		}
		if !hasValue {
			if i+1 >= len(args) {
				return nil, fmt.Errorf("%w: --%s needs a value", errUsage, name)
			}
			i++
			value = args[i]
		}
		switch name {
		case "uses":
			opts.uses = append(opts.uses, value)
		case "store":
			opts.store = value
		case "config":
			opts.config = value
		case "color":
			opts.color = value
		case "workers":
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 {
				return nil, fmt.Errorf("%w: --workers needs a non-negative number, got %q", errUsage, value)
			}
			opts.workers = n
		case "log-level":
			opts.logLevel = value
		case "listen":
			opts.listen = value
		case "addr":
			opts.addr = value
		default:
			return nil, fmt.Errorf("%w: unknown flag --%s", errUsage, name)
		}
	}
	return opts, nil
}

// loadFlags reads the configuration for dir and applies the command line
// on top of it.
func loadFlags(opts *options, dir string) (*config.Flags, error) {
	path := opts.config
	if path == "" {
		found, err := config.FindConfig(dir)
		if err != nil {
			return nil, err
		}
		path = found
	}
	flags := config.DefaultFlags()
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		flags = loaded
	}

	if opts.workers > 0 {
		flags.Workers = opts.workers
	}
	if opts.store != "" {
		flags.Store = opts.store
	}
	if opts.color != "" {
		flags.Color = opts.color
	}
	if opts.logLevel != "" {
		flags.LogLevel = opts.logLevel
	}
	if opts.listen != "" {
		flags.Listen = opts.listen
	}
	return flags, nil
}

func newLogger(flags *config.Flags, out io.Writer) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(flags.LogLevel)
	if err != nil {
		return nil, err
	}
	log := logrus.New()
	log.SetOutput(out)
	log.SetLevel(level)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return log, nil
}

// expandFiles replaces every directory by the module files directly in it.
func expandFiles(paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			out = append(out, p)
			continue
		}
		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("reading directory: %w", err)
		}
		var found []string
		for _, e := range entries {
			if !e.IsDir() && isModuleFile(e.Name()) {
				found = append(found, filepath.Join(p, e.Name()))
			}
		}
		sort.Strings(found)
		out = append(out, found...)
	}
	return out, nil
}

func isModuleFile(path string) bool {
	for _, ext := range config.ModuleFileExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

func newPrinter(flags *config.Flags, stdout io.Writer) (*prettyprinter.VCPrinter, error) {
	f, _ := stdout.(*os.File)
	color, err := prettyprinter.UseColor(flags.Color, f)
	if err != nil {
		return nil, err
	}
	return prettyprinter.NewVCPrinter(color), nil
}

// setup is the part every command shares: flags, configuration and logger.
func setup(args []string, stderr io.Writer) (*options, *config.Flags, *logrus.Logger, int) {
	opts, err := parseArgs(args)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %s\n\n%s", err, usage)
		return nil, nil, nil, exitUsage
	}
	dir := "."
	if len(opts.files) > 0 {
		dir = filepath.Dir(opts.files[0])
	}
	flags, err := loadFlags(opts, dir)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", err)
		return nil, nil, nil, exitLoad
	}
	log, err := newLogger(flags, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", err)
		return nil, nil, nil, exitLoad
	}
	return opts, flags, log, exitOK
}

func handleGenerate(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, flags, log, code := setup(args, stderr)
	if code != exitOK {
		return code
	}
	if len(opts.files) == 0 {
		fmt.Fprint(stderr, usage)
		return exitUsage
	}
	files, err := expandFiles(opts.files)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", err)
		return exitLoad
	}
	printer, err := newPrinter(flags, stdout)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", err)
		return exitUsage
	}

	var st *store.Store
	if flags.Store != "" {
		st, err = store.Open(ctx, flags.Store, log)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %s\n", err)
			return exitLoad
		}
		defer st.Close()
	}

	var sources []pipeline.Source
	for _, u := range opts.uses {
		sources = append(sources, pipeline.Source{Path: u})
	}
	for _, f := range files {
		sources = append(sources, pipeline.Source{Path: f, Target: true})
	}

	pctx := pipeline.NewPipelineContext(ctx, sources...)
	pctx.Flags = flags
	pctx.Log = log
	gen := vcgen.NewGenerator(pctx.Graph, flags, log)
	pctx = pipeline.Default(gen, st).Run(pctx)

	for i, r := range pctx.Results {
		if len(r.Procedures) == 0 {
			continue
		}
		printer.PrintModule(r)
		if opts.steps {
			printSteps(printer, r)
		}
		if i < len(pctx.RunIDs) {
			log.WithFields(logrus.Fields{"module": r.Module, "run": pctx.RunIDs[i]}).Info("run stored")
		}
	}
	printer.PrintSummary()
	fmt.Fprint(stdout, printer.String())

	if len(pctx.Errors) > 0 {
		for _, err := range pctx.Errors {
			fmt.Fprintf(stderr, "- %s\n", err)
		}
		return exitLoad
	}
	if pctx.Failed() > 0 {
		return exitFailed
	}
	return exitOK
}

func printSteps(printer *prettyprinter.VCPrinter, r *vcgen.ModuleResult) {
	for _, p := range r.Procedures {
		for _, b := range p.Blocks {
			printer.PrintSteps(b)
		}
	}
}

func handleServe(ctx context.Context, args []string, stderr io.Writer) int {
	_, flags, log, code := setup(args, stderr)
	if code != exitOK {
		return code
	}

	var st *store.Store
	if flags.Store != "" {
		var err error
		st, err = store.Open(ctx, flags.Store, log)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %s\n", err)
			return exitLoad
		}
		defer st.Close()
	}

	srv, err := server.New(server.Options{Flags: flags, Log: log, Store: st})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", err)
		return exitLoad
	}
	lis, err := net.Listen("tcp", flags.Listen)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", err)
		return exitLoad
	}

	go func() {
		<-ctx.Done()
		srv.Stop()
	}()
	if err := srv.Serve(lis); err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", err)
		return exitLoad
	}
	return exitOK
}

func handleRemote(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, flags, _, code := setup(args, stderr)
	if code != exitOK {
		return code
	}
	if opts.addr == "" || len(opts.files) != 1 {
		fmt.Fprintf(stderr, "Error: remote needs --addr and one module\n\n%s", usage)
		return exitUsage
	}
	printer, err := newPrinter(flags, stdout)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", err)
		return exitUsage
	}

	req := &server.Request{File: opts.files[0]}
	if req.Module, err = os.ReadFile(opts.files[0]); err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", err)
		return exitLoad
	}
	for _, u := range opts.uses {
		data, err := os.ReadFile(u)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %s\n", err)
			return exitLoad
		}
		req.Uses = append(req.Uses, data)
	}

	client, err := server.Dial(opts.addr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", err)
		return exitLoad
	}
	defer client.Close()

	resp, err := client.Generate(ctx, req)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", status.Convert(err).Message())
		return exitLoad
	}
	printer.PrintResponse(resp)
	printer.PrintSummary()
	fmt.Fprint(stdout, printer.String())
	if resp.Failed() > 0 {
		return exitFailed
	}
	return exitOK
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return exitUsage
	}
	switch args[0] {
	case "help", "-help", "--help", "-h":
		fmt.Fprint(stdout, usage)
		return exitOK
	case "version", "--version":
		fmt.Fprintf(stdout, "vcgen %s\n", Version)
		return exitOK
	case "serve":
		return handleServe(ctx, args[1:], stderr)
	case "remote":
		return handleRemote(ctx, args[1:], stdout, stderr)
	}
	return handleGenerate(ctx, args, stdout, stderr)
}

func main() {
	// Catch panics and show user-friendly error
	defer func() {
		if r := recover(); r != nil {
			if os.Getenv("DEBUG") == "1" {
				panic(r)
			}
			fmt.Fprintf(os.Stderr, "Internal error: %v\n", r)
			fmt.Fprintln(os.Stderr, "This is a bug. Please report it.")
			os.Exit(exitUsage)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
