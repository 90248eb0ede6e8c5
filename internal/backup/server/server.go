// Package server implements the backup gRPC service over the local SQLite
// store.
package server

import (
	"context"
	"errors"
	"net"

	"github.com/dmitrijs2005/lifetrack/internal/backup/rpc"
	"github.com/dmitrijs2005/lifetrack/internal/logging"
	"github.com/dmitrijs2005/lifetrack/internal/models"
	"google.golang.org/grpc"
)

// TodoStore is the todo persistence the service needs.
type TodoStore interface {
	Upsert(ctx context.Context, userID, id string, req models.CreateTodoRequest) (string, error)
	List(ctx context.Context, userID string, completed *bool) ([]models.Todo, error)
	GetByID(ctx context.Context, userID, id string) (*models.Todo, error)
	Update(ctx context.Context, userID, id string, req models.UpdateTodoRequest) (bool, error)
	Delete(ctx context.Context, userID, id string) (bool, error)
	ToggleCompletion(ctx context.Context, userID, id string) (bool, error)
}

// IdeaStore is the idea persistence the service needs.
type IdeaStore interface {
	Upsert(ctx context.Context, userID, id string, req models.CreateIdeaRequest) (string, error)
	List(ctx context.Context, userID string, isFavorite *bool) ([]models.Idea, error)
	Search(ctx context.Context, userID, keyword string) ([]models.Idea, error)
	GetByID(ctx context.Context, userID, id string) (*models.Idea, error)
	Update(ctx context.Context, userID, id string, req models.UpdateIdeaRequest) (bool, error)
	Delete(ctx context.Context, userID, id string) (bool, error)
	ToggleFavorite(ctx context.Context, userID, id string) (bool, error)
}

type GRPCServer struct {
	address   string
	todos     TodoStore
	ideas     IdeaStore
	logger    logging.Logger
	jwtSecret []byte
}

var _ rpc.BackupServer = (*GRPCServer)(nil)

func NewGRPCServer(addr string, l logging.Logger, todos TodoStore, ideas IdeaStore, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:   addr,
		todos:     todos,
		ideas:     ideas,
		logger:    l.With("module", "backup_grpc_server"),
		jwtSecret: []byte(secretKey),
	}
}

// Register creates a grpc.Server with the access token interceptor and
// registers the service on it.
func (s *GRPCServer) Register(opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ChainUnaryInterceptor(s.accessTokenInterceptor))
	srv := grpc.NewServer(opts...)
	rpc.RegisterBackupServer(srv, s)
	return srv
}

// Serve accepts connections on lis until ctx is cancelled, then stops
// gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.Register()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

func (s *GRPCServer) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, lis)
}
