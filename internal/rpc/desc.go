package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// CipherServiceDesc describes inop.v1.Cipher for grpc.ServiceRegistrar.
var CipherServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CipherServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Encrypt", Handler: unaryHandler(MethodEncrypt, CipherServer.Encrypt)},
		{MethodName: "Decrypt", Handler: unaryHandler(MethodDecrypt, CipherServer.Decrypt)},
		{MethodName: "ListWheels", Handler: unaryHandler(MethodListWheels, CipherServer.ListWheels)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "inop/v1/cipher.proto",
}

// RegisterCipherServer registers srv on r.
func RegisterCipherServer(r grpc.ServiceRegistrar, srv CipherServer) {
	r.RegisterService(&CipherServiceDesc, srv)
}

type unaryMethod func(CipherServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call unaryMethod) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(CipherServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(CipherServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// Client calls inop.v1.Cipher over a client connection.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps cc.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) Encrypt(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodEncrypt, in, opts...)
}

func (c *Client) Decrypt(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodDecrypt, in, opts...)
}

func (c *Client) ListWheels(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodListWheels, in, opts...)
}

func (c *Client) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
