// Package server exposes VC generation over gRPC.
//
// The service is described by an embedded .proto and served with dynamic
// messages, so no generated code is involved. A request carries the
// module to verify and the modules it depends on; the reply carries the
// printed VCs of every procedure.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/dynamic"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/funvibe/vcgen/internal/config"
	"github.com/funvibe/vcgen/internal/diagnostics"
	"github.com/funvibe/vcgen/internal/pipeline"
	"github.com/funvibe/vcgen/internal/store"
	"github.com/funvibe/vcgen/internal/symbols"
	"github.com/funvibe/vcgen/internal/typesystem"
	"github.com/funvibe/vcgen/internal/vcgen"
)

// Options configures a Server. Zero values get defaults.
type Options struct {
	Flags *config.Flags
	Log   *logrus.Logger
	Store *store.Store // Optional; every run is saved when set
}

// Server answers Generate calls.
type Server struct {
	flags *config.Flags
	log   *logrus.Logger
	graph *typesystem.TypeGraph
	gen   *vcgen.Generator
	store *store.Store

	method *desc.MethodDescriptor
	grpc   *grpc.Server
}

// New builds a server and registers the service on a fresh grpc.Server.
func New(opts Options) (*Server, error) {
	md, err := generateMethod()
	if err != nil {
		return nil, err
	}
	if opts.Flags == nil {
		opts.Flags = config.DefaultFlags()
	}
	if opts.Log == nil {
		opts.Log = logrus.New()
		opts.Log.SetOutput(io.Discard)
	}
	graph := typesystem.NewTypeGraph()
	s := &Server{
		flags:  opts.Flags,
		log:    opts.Log,
		graph:  graph,
		gen:    vcgen.NewGenerator(graph, opts.Flags, opts.Log),
		store:  opts.Store,
		method: md,
	}
	s.grpc = grpc.NewServer(grpc.UnaryInterceptor(s.logCalls))
	s.grpc.RegisterService(&grpc.ServiceDesc{
		ServiceName: serviceName,
		HandlerType: (*interface{})(nil),
		Methods: []grpc.MethodDesc{{
			MethodName: methodName,
			Handler:    handleGenerate,
		}},
		Streams:  []grpc.StreamDesc{},
		Metadata: protoFile,
	}, s)
	return s, nil
}

// Serve accepts connections on lis until Stop is called.
func (s *Server) Serve(lis net.Listener) error {
	s.log.WithField("addr", lis.Addr().String()).Info("serving")
	return s.grpc.Serve(lis)
}

// Stop waits for pending calls and shuts the server down.
func (s *Server) Stop() {
	s.grpc.GracefulStop()
}

func handleGenerate(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	s := srv.(*Server)
	in := dynamic.NewMessage(s.method.GetInputType())
	if err := dec(in); err != nil {
		return nil, err
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return s.generateMessage(ctx, req.(*dynamic.Message))
	}
	if interceptor == nil {
		return handler(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: s, FullMethod: FullMethod}
	return interceptor(ctx, in, info, handler)
}

func (s *Server) generateMessage(ctx context.Context, in *dynamic.Message) (*dynamic.Message, error) {
	resp, err := s.Generate(ctx, requestFromMessage(in))
	if err != nil {
		return nil, err
	}
	out, err := responseToMessage(resp, s.method.GetOutputType())
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encoding response: %v", err)
	}
	return out, nil
}

// Generate verifies req.Module against the modules in req.Uses. Errors
// of single procedures are part of the response; only a request that
// cannot be processed at all fails the call.
func (s *Server) Generate(ctx context.Context, req *Request) (*Response, error) {
	if len(req.Module) == 0 {
		return nil, status.Error(codes.InvalidArgument, "module is empty")
	}
	file := req.File
	if file == "" {
		file = "request" + config.ModuleFileExt
	}

	var sources []pipeline.Source
	for i, u := range req.Uses {
		sources = append(sources, pipeline.Source{Path: fmt.Sprintf("uses[%d]", i), Data: u})
	}
	sources = append(sources, pipeline.Source{Path: file, Data: req.Module, Target: true})

	pctx := pipeline.NewPipelineContext(ctx, sources...)
	pctx.Graph = s.graph
	pctx.Flags = s.flags
	pctx.Log = s.log

	pctx = pipeline.Default(s.gen, s.store).Run(pctx)
	if err := pctx.Err(); err != nil || len(pctx.Results) == 0 {
		return nil, statusOf(err)
	}

	resp := NewResponse(pctx.Results[0])
	if len(pctx.RunIDs) > 0 {
		resp.RunID = pctx.RunIDs[0].String()
	}
	return resp, nil
}

func statusOf(err error) error {
	if err == nil {
		return status.Error(codes.InvalidArgument, "no module to verify")
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return status.FromContextError(err).Err()
	}
	var (
		de  *diagnostics.DiagnosticError
		ume *symbols.UnknownModuleError
		dme *symbols.DuplicateModuleError
	)
	if errors.As(err, &de) || errors.As(err, &ume) || errors.As(err, &dme) {
		return status.Error(codes.InvalidArgument, err.Error())
	}
	return status.Error(codes.Internal, err.Error())
}

func (s *Server) logCalls(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	entry := s.log.WithFields(logrus.Fields{
		"method":   info.FullMethod,
		"code":     status.Code(err).String(),
		"duration": time.Since(start),
	})
	if err != nil {
		entry.WithError(err).Warn("call failed")
	} else {
		entry.Info("call")
	}
	return resp, err
}
