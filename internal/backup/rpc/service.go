// Package rpc declares the backup gRPC service. Messages are
// google.protobuf.Struct values so no generated code is needed; Payload and
// Reply give them a fixed shape.
package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "lifetrack.backup.BackupService"

const (
	MethodCreateTodo           = "CreateTodo"
	MethodGetTodos             = "GetTodos"
	MethodGetTodoByID          = "GetTodoByID"
	MethodUpdateTodo           = "UpdateTodo"
	MethodDeleteTodo           = "DeleteTodo"
	MethodToggleTodoCompletion = "ToggleTodoCompletion"

	MethodCreateIdea         = "CreateIdea"
	MethodGetIdeas           = "GetIdeas"
	MethodGetIdeaByID        = "GetIdeaByID"
	MethodUpdateIdea         = "UpdateIdea"
	MethodDeleteIdea         = "DeleteIdea"
	MethodToggleIdeaFavorite = "ToggleIdeaFavorite"
	MethodSearchIdeas        = "SearchIdeas"
)

// FullMethod returns the gRPC path of method, e.g.
// "/lifetrack.backup.BackupService/CreateTodo".
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// BackupServer is implemented by the backup daemon.
type BackupServer interface {
	CreateTodo(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetTodos(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetTodoByID(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateTodo(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteTodo(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ToggleTodoCompletion(context.Context, *structpb.Struct) (*structpb.Struct, error)

	CreateIdea(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetIdeas(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetIdeaByID(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateIdea(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteIdea(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ToggleIdeaFavorite(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SearchIdeas(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryFunc func(BackupServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func handler(method string, call unaryFunc) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(BackupServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(srv.(BackupServer), ctx, req.(*structpb.Struct))
			})
		},
	}
}

// ServiceDesc describes BackupService for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BackupServer)(nil),
	Methods: []grpc.MethodDesc{
		handler(MethodCreateTodo, BackupServer.CreateTodo),
		handler(MethodGetTodos, BackupServer.GetTodos),
		handler(MethodGetTodoByID, BackupServer.GetTodoByID),
		handler(MethodUpdateTodo, BackupServer.UpdateTodo),
		handler(MethodDeleteTodo, BackupServer.DeleteTodo),
		handler(MethodToggleTodoCompletion, BackupServer.ToggleTodoCompletion),
		handler(MethodCreateIdea, BackupServer.CreateIdea),
		handler(MethodGetIdeas, BackupServer.GetIdeas),
		handler(MethodGetIdeaByID, BackupServer.GetIdeaByID),
		handler(MethodUpdateIdea, BackupServer.UpdateIdea),
		handler(MethodDeleteIdea, BackupServer.DeleteIdea),
		handler(MethodToggleIdeaFavorite, BackupServer.ToggleIdeaFavorite),
		handler(MethodSearchIdeas, BackupServer.SearchIdeas),
	},
	Streams: []grpc.StreamDesc{},
}

// RegisterBackupServer registers srv on s.
func RegisterBackupServer(s grpc.ServiceRegistrar, srv BackupServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// Invoke calls method on cc with a Struct request and reply.
func Invoke(ctx context.Context, cc grpc.ClientConnInterface, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
