package server

import (
	"context"
	"fmt"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/dynamic"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Client calls a remote VCGenerator.
type Client struct {
	conn   *grpc.ClientConn
	owned  bool
	method *desc.MethodDescriptor
}

// Dial connects to target without transport security.
func Dial(target string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", target, err)
	}
	c, err := NewClient(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	c.owned = true
	return c, nil
}

// NewClient uses an existing connection. Close leaves it open.
func NewClient(conn *grpc.ClientConn) (*Client, error) {
	md, err := generateMethod()
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn, method: md}, nil
}

// Generate sends one request and waits for the VCs.
func (c *Client) Generate(ctx context.Context, req *Request) (*Response, error) {
	in, err := requestToMessage(req, c.method.GetInputType())
	if err != nil {
		return nil, err
	}
	out := dynamic.NewMessage(c.method.GetOutputType())
	if err := c.conn.Invoke(ctx, FullMethod, in, out); err != nil {
		return nil, err
	}
	return responseFromMessage(out), nil
}

// Close closes the connection if Dial opened it.
func (c *Client) Close() error {
	if !c.owned {
		return nil
	}
	return c.conn.Close()
}
