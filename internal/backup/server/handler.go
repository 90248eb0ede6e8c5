package server

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/dmitrijs2005/lifetrack/internal/backup/rpc"
	"github.com/dmitrijs2005/lifetrack/internal/common"
	"github.com/dmitrijs2005/lifetrack/internal/models"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// request unpacks the caller and payload of a call.
func (s *GRPCServer) request(ctx context.Context, in *structpb.Struct) (string, rpc.Payload, error) {
	var p rpc.Payload
	userID, ok := userIDFromContext(ctx)
	if !ok {
		return "", p, status.Error(codes.Unauthenticated, "unauthenticated")
	}
	if err := rpc.FromStruct(in, &p); err != nil {
		return "", p, status.Error(codes.InvalidArgument, err.Error())
	}
	return userID, p, nil
}

func decodeBody(p rpc.Payload, v interface{ Validate() error }) error {
	if err := p.DecodeRequest(v); err != nil {
		return status.Error(codes.InvalidArgument, err.Error())
	}
	if err := v.Validate(); err != nil {
		return status.Error(codes.InvalidArgument, err.Error())
	}
	return nil
}

func requireID(p rpc.Payload) error {
	if p.ID == "" {
		return status.Error(codes.InvalidArgument, "id is required")
	}
	return nil
}

func (s *GRPCServer) fail(ctx context.Context, op string, err error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return status.Error(codes.NotFound, op+": not found")
	}
	s.logger.Error(ctx, "backup store error", "op", op, "error", err)
	return status.Error(codes.Internal, op+": "+err.Error())
}

func reply(r rpc.Reply) (*structpb.Struct, error) {
	out, err := rpc.ToStruct(r)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

func itemReply[T any](item *T) (*structpb.Struct, error) {
	if item == nil {
		return reply(rpc.Reply{})
	}
	b, err := json.Marshal(item)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return reply(rpc.Reply{Item: b})
}

func itemsReply[T any](items []T) (*structpb.Struct, error) {
	if items == nil {
		items = []T{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return reply(rpc.Reply{Items: b})
}

// -------- todos --------

func (s *GRPCServer) CreateTodo(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	userID, p, err := s.request(ctx, in)
	if err != nil {
		return nil, err
	}
	var req models.CreateTodoRequest
	if err := decodeBody(p, &req); err != nil {
		return nil, err
	}
	id, err := s.todos.Upsert(ctx, userID, p.ID, req)
	if err != nil {
		return nil, s.fail(ctx, "create todo", err)
	}
	return reply(rpc.Reply{ID: id})
}

func (s *GRPCServer) GetTodos(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	userID, p, err := s.request(ctx, in)
	if err != nil {
		return nil, err
	}
	items, err := s.todos.List(ctx, userID, p.Completed)
	if err != nil {
		return nil, s.fail(ctx, "get todos", err)
	}
	return itemsReply(items)
}

func (s *GRPCServer) GetTodoByID(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	userID, p, err := s.request(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := requireID(p); err != nil {
		return nil, err
	}
	item, err := s.todos.GetByID(ctx, userID, p.ID)
	if errors.Is(err, common.ErrorNotFound) {
		return itemReply[models.Todo](nil)
	}
	if err != nil {
		return nil, s.fail(ctx, "get todo", err)
	}
	return itemReply(item)
}

func (s *GRPCServer) UpdateTodo(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	userID, p, err := s.request(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := requireID(p); err != nil {
		return nil, err
	}
	var req models.UpdateTodoRequest
	if err := decodeBody(p, &req); err != nil {
		return nil, err
	}
	ok, err := s.todos.Update(ctx, userID, p.ID, req)
	if err != nil {
		return nil, s.fail(ctx, "update todo", err)
	}
	return reply(rpc.Reply{OK: ok})
}

func (s *GRPCServer) DeleteTodo(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	userID, p, err := s.request(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := requireID(p); err != nil {
		return nil, err
	}
	ok, err := s.todos.Delete(ctx, userID, p.ID)
	if err != nil {
		return nil, s.fail(ctx, "delete todo", err)
	}
	return reply(rpc.Reply{OK: ok})
}

func (s *GRPCServer) ToggleTodoCompletion(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	userID, p, err := s.request(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := requireID(p); err != nil {
		return nil, err
	}
	v, err := s.todos.ToggleCompletion(ctx, userID, p.ID)
	if err != nil {
		return nil, s.fail(ctx, "toggle todo", err)
	}
	return reply(rpc.Reply{Value: &v})
}

// -------- ideas --------

func (s *GRPCServer) CreateIdea(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	userID, p, err := s.request(ctx, in)
	if err != nil {
		return nil, err
	}
	var req models.CreateIdeaRequest
	if err := decodeBody(p, &req); err != nil {
		return nil, err
	}
	id, err := s.ideas.Upsert(ctx, userID, p.ID, req)
	if err != nil {
		return nil, s.fail(ctx, "create idea", err)
	}
	return reply(rpc.Reply{ID: id})
}

func (s *GRPCServer) GetIdeas(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	userID, p, err := s.request(ctx, in)
	if err != nil {
		return nil, err
	}
	items, err := s.ideas.List(ctx, userID, p.IsFavorite)
	if err != nil {
		return nil, s.fail(ctx, "get ideas", err)
	}
	return itemsReply(items)
}

func (s *GRPCServer) SearchIdeas(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	userID, p, err := s.request(ctx, in)
	if err != nil {
		return nil, err
	}
	items, err := s.ideas.Search(ctx, userID, p.Keyword)
	if err != nil {
		return nil, s.fail(ctx, "search ideas", err)
	}
	return itemsReply(items)
}

func (s *GRPCServer) GetIdeaByID(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	userID, p, err := s.request(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := requireID(p); err != nil {
		return nil, err
	}
	item, err := s.ideas.GetByID(ctx, userID, p.ID)
	if errors.Is(err, common.ErrorNotFound) {
		return itemReply[models.Idea](nil)
	}
	if err != nil {
		return nil, s.fail(ctx, "get idea", err)
	}
	return itemReply(item)
}

func (s *GRPCServer) UpdateIdea(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	userID, p, err := s.request(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := requireID(p); err != nil {
		return nil, err
	}
	var req models.UpdateIdeaRequest
	if err := decodeBody(p, &req); err != nil {
		return nil, err
	}
	ok, err := s.ideas.Update(ctx, userID, p.ID, req)
	if err != nil {
		return nil, s.fail(ctx, "update idea", err)
	}
	return reply(rpc.Reply{OK: ok})
}

func (s *GRPCServer) DeleteIdea(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	userID, p, err := s.request(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := requireID(p); err != nil {
		return nil, err
	}
	ok, err := s.ideas.Delete(ctx, userID, p.ID)
	if err != nil {
		return nil, s.fail(ctx, "delete idea", err)
	}
	return reply(rpc.Reply{OK: ok})
}

func (s *GRPCServer) ToggleIdeaFavorite(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	userID, p, err := s.request(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := requireID(p); err != nil {
		return nil, err
	}
	v, err := s.ideas.ToggleFavorite(ctx, userID, p.ID)
	if err != nil {
		return nil, s.fail(ctx, "toggle idea", err)
	}
	return reply(rpc.Reply{Value: &v})
}
