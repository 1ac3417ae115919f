package grpc_control

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "astrografia.control.v1.Control"

// ControlServer is the server API for the control service.
type ControlServer interface {
	CacheStats(context.Context, *Empty) (*CacheStatsResponse, error)
	ResetCache(context.Context, *Empty) (*ResetCacheResponse, error)
	ListAdapters(context.Context, *Empty) (*ListAdaptersResponse, error)
	ListSources(context.Context, *Empty) (*ListSourcesResponse, error)
	RemoveSource(context.Context, *RemoveSourceRequest) (*SourceControlResponse, error)
}

func RegisterControlServer(s grpc.ServiceRegistrar, srv ControlServer) {
	s.RegisterService(&controlServiceDesc, srv)
}

// -----------------------------------------------------------------------------

// unary adapts a typed method to the generic grpc handler signature.
func unary[Req any, Resp any](method string, call func(ControlServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(ControlServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + method}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(ControlServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var controlServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ControlServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("CacheStats", ControlServer.CacheStats),
		unary("ResetCache", ControlServer.ResetCache),
		unary("ListAdapters", ControlServer.ListAdapters),
		unary("ListSources", ControlServer.ListSources),
		unary("RemoveSource", ControlServer.RemoveSource),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "astrografia/control/v1/control.json",
}

// -----------------------------------------------------------------------------

// ControlClient calls the control service with the JSON codec.
type ControlClient struct {
	cc grpc.ClientConnInterface
}

func NewControlClient(cc grpc.ClientConnInterface) *ControlClient {
	return &ControlClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, c *ControlClient, method string, in interface{}, opts []grpc.CallOption) (*Resp, error) {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(codecName)}, opts...)
	out := new(Resp)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ControlClient) CacheStats(ctx context.Context, opts ...grpc.CallOption) (*CacheStatsResponse, error) {
	return invoke[CacheStatsResponse](ctx, c, "CacheStats", &Empty{}, opts)
}

func (c *ControlClient) ResetCache(ctx context.Context, opts ...grpc.CallOption) (*ResetCacheResponse, error) {
	return invoke[ResetCacheResponse](ctx, c, "ResetCache", &Empty{}, opts)
}

func (c *ControlClient) ListAdapters(ctx context.Context, opts ...grpc.CallOption) (*ListAdaptersResponse, error) {
	return invoke[ListAdaptersResponse](ctx, c, "ListAdapters", &Empty{}, opts)
}

func (c *ControlClient) ListSources(ctx context.Context, opts ...grpc.CallOption) (*ListSourcesResponse, error) {
	return invoke[ListSourcesResponse](ctx, c, "ListSources", &Empty{}, opts)
}

func (c *ControlClient) RemoveSource(ctx context.Context, name string, opts ...grpc.CallOption) (*SourceControlResponse, error) {
	return invoke[SourceControlResponse](ctx, c, "RemoveSource", &RemoveSourceRequest{Name: name}, opts)
}
