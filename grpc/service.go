package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// Service geobounds.Bounds. Requests and responses are google.protobuf.Struct
// values so a GeoJSON document travels as-is:
//
//	Extract({document, name?, persist?}) -> {min_longitude, max_longitude, min_latitude, max_latitude}
//	Search({latitude, longitude, radius}) -> {documents: [{id, name, min_longitude, ...}]}
const serviceName = "geobounds.Bounds"

type BoundsServer interface {
	Extract(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Search(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type UnimplementedBoundsServer struct{}

func (UnimplementedBoundsServer) Extract(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Extract not implemented")
}

func (UnimplementedBoundsServer) Search(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Search not implemented")
}

func RegisterBoundsServer(s *grpc.Server, srv BoundsServer) {
	s.RegisterService(&boundsServiceDesc, srv)
}

func extractHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BoundsServer).Extract(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/" + serviceName + "/Extract",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(BoundsServer).Extract(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func searchHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BoundsServer).Search(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/" + serviceName + "/Search",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(BoundsServer).Search(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

var boundsServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*BoundsServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Extract",
			Handler:    extractHandler,
		},
		{
			MethodName: "Search",
			Handler:    searchHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "geobounds.proto",
}

// BoundsClient is the client side of geobounds.Bounds.
type BoundsClient struct {
	cc grpc.ClientConnInterface
}

func NewBoundsClient(cc grpc.ClientConnInterface) *BoundsClient {
	return &BoundsClient{cc}
}

func (c *BoundsClient) Extract(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	err := c.cc.Invoke(ctx, "/"+serviceName+"/Extract", in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *BoundsClient) Search(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	err := c.cc.Invoke(ctx, "/"+serviceName+"/Search", in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}
