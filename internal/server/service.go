package server

import (
	"fmt"
	"sync"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/protoparse"
)

const (
	protoFile   = "vcgen.proto"
	serviceName = "vcgen.VCGenerator"
	methodName  = "Generate"
)

// FullMethod is the gRPC path of the Generate call.
const FullMethod = "/" + serviceName + "/" + methodName

const protoSource = `
syntax = "proto3";

package vcgen;

message GenerateRequest {
  // Name reported in locations.
  string file = 1;
  // Content of the module to verify.
  bytes module = 2;
  // Content of the modules it uses or instantiates.
  repeated bytes uses = 3;
}

message VC {
  string location = 1;
  string detail = 2;
  repeated string antecedents = 3;
  string consequent = 4;
}

message Block {
  string name = 1;
  repeated string free_vars = 2;
  repeated VC vcs = 3;
}

message Procedure {
  string name = 1;
  string error = 2;
  repeated Block blocks = 3;
}

message GenerateResponse {
  string module = 1;
  repeated Procedure procedures = 2;
  string run_id = 3;
}

service VCGenerator {
  rpc Generate(GenerateRequest) returns (GenerateResponse);
}
`

var (
	serviceOnce sync.Once
	serviceDesc *desc.ServiceDescriptor
	serviceErr  error
)

// loadService parses the service description once per process.
func loadService() (*desc.ServiceDescriptor, error) {
	serviceOnce.Do(func() {
		parser := protoparse.Parser{
			Accessor: protoparse.FileContentsFromMap(map[string]string{protoFile: protoSource}),
		}
		fds, err := parser.ParseFiles(protoFile)
		if err != nil {
			serviceErr = fmt.Errorf("parsing %s: %w", protoFile, err)
			return
		}
		serviceDesc = fds[0].FindService(serviceName)
		if serviceDesc == nil {
			serviceErr = fmt.Errorf("service %s not found in %s", serviceName, protoFile)
		}
	})
	return serviceDesc, serviceErr
}

func generateMethod() (*desc.MethodDescriptor, error) {
	sd, err := loadService()
	if err != nil {
		return nil, err
	}
	md := sd.FindMethodByName(methodName)
	if md == nil {
		return nil, fmt.Errorf("method %s not found", FullMethod)
	}
	return md, nil
}
