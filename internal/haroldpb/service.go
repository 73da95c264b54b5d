package haroldpb

import (
	"context"

	"google.golang.org/grpc"
)

// HaroldServer is the service interface a protoc-gen-go-grpc server
// implementation satisfies.
type HaroldServer interface {
	TurnComplete(context.Context, *TurnCompleteRequest) (*TurnCompleteResponse, error)
}

func _Harold_TurnComplete_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(TurnCompleteRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(HaroldServer).TurnComplete(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/harold.v1.Harold/TurnComplete"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(HaroldServer).TurnComplete(ctx, req.(*TurnCompleteRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// ServiceDesc is the hand-authored equivalent of the ServiceDesc
// protoc-gen-go-grpc emits for the Harold service.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: "harold.v1.Harold",
	HandlerType: (*HaroldServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "TurnComplete",
			Handler:    _Harold_TurnComplete_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "harold.proto",
}

// RegisterHaroldServer registers srv with s, as protoc-gen-go-grpc's
// generated RegisterHaroldServer would.
func RegisterHaroldServer(s grpc.ServiceRegistrar, srv HaroldServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// HaroldClient is the client-side stub for calling the gRPC ingress the
// same way the agent-side stop hook does.
type HaroldClient interface {
	TurnComplete(ctx context.Context, in *TurnCompleteRequest, opts ...grpc.CallOption) (*TurnCompleteResponse, error)
}

type haroldClient struct {
	cc grpc.ClientConnInterface
}

// NewHaroldClient wraps conn for calling the Harold service.
func NewHaroldClient(conn grpc.ClientConnInterface) HaroldClient {
	return &haroldClient{cc: conn}
}

func (c *haroldClient) TurnComplete(ctx context.Context, in *TurnCompleteRequest, opts ...grpc.CallOption) (*TurnCompleteResponse, error) {
	out := new(TurnCompleteResponse)
	if err := c.cc.Invoke(ctx, "/harold.v1.Harold/TurnComplete", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
