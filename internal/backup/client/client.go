// Package client is the gRPC client of the backup service. Every call
// carries the caller's access token; failures come back as
// *common.RemoteError so callers can log and discard them.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/lifetrack/internal/auth"
	"github.com/dmitrijs2005/lifetrack/internal/backup/rpc"
	"github.com/dmitrijs2005/lifetrack/internal/common"
	"github.com/dmitrijs2005/lifetrack/internal/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// DefaultTimeout bounds a call that arrives without a deadline.
const DefaultTimeout = 5 * time.Second

type options struct {
	timeout  time.Duration
	dialOpts []grpc.DialOption
}

type Option func(*options)

func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithDialOptions appends extra dial options, e.g. a custom dialer.
func WithDialOptions(opts ...grpc.DialOption) Option {
	return func(o *options) { o.dialOpts = append(o.dialOpts, opts...) }
}

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	cc          grpc.ClientConnInterface
	timeout     time.Duration
}

// New creates a client for the service at endpointURL. No connection is
// made until the first call.
func New(endpointURL string, opts ...Option) (*GRPCClient, error) {
	o := options{timeout: DefaultTimeout}
	for _, fn := range opts {
		fn(&o)
	}

	c := &GRPCClient{endpointURL: endpointURL, timeout: o.timeout}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.timeoutInterceptor),
	}, o.dialOpts...)

	conn, err := grpc.NewClient(endpointURL, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("backup client: %w", err)
	}
	c.conn = conn
	c.cc = conn
	return c, nil
}

func (c *GRPCClient) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

func (c *GRPCClient) timeoutInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if _, ok := ctx.Deadline(); !ok && c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AccessTokenHeaderName, token)
	return metadata.NewOutgoingContext(ctx, md)
}

func (c *GRPCClient) call(ctx context.Context, sess *auth.Session, method string, p rpc.Payload) (rpc.Reply, error) {
	var r rpc.Reply
	if err := auth.Require(sess); err != nil {
		return r, err
	}
	in, err := rpc.ToStruct(p)
	if err != nil {
		return r, err
	}
	out, err := rpc.Invoke(withAccessToken(ctx, sess.AccessToken), c.cc, method, in)
	if err != nil {
		return r, mapError(method, err)
	}
	if err := rpc.FromStruct(out, &r); err != nil {
		return r, common.NewRemoteError("backup "+method, err)
	}
	return r, nil
}

func mapError(method string, err error) error {
	if err == nil {
		return nil
	}
	op := "backup " + method
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.NotFound:
		return common.ErrorNotFound
	case codes.Unauthenticated, codes.PermissionDenied:
		return common.NewRemoteError(op, fmt.Errorf("%w: %s", ErrUnauthorized, st.Message()))
	case codes.Unavailable, codes.DeadlineExceeded:
		return common.NewRemoteError(op, fmt.Errorf("%w: %s", ErrUnavailable, st.Message()))
	default:
		return common.NewRemoteError(op, errors.New(st.Message()))
	}
}

func decodeList[T any](op string, r rpc.Reply) ([]T, error) {
	out := []T{}
	if len(r.Items) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(r.Items, &out); err != nil {
		return nil, common.NewRemoteError(op, err)
	}
	return out, nil
}

func decodeItem[T any](op string, r rpc.Reply) (*T, error) {
	if len(r.Item) == 0 || string(r.Item) == "null" {
		return nil, nil
	}
	var v T
	if err := json.Unmarshal(r.Item, &v); err != nil {
		return nil, common.NewRemoteError(op, err)
	}
	return &v, nil
}

func toggled(op string, r rpc.Reply) (bool, error) {
	if r.Value == nil {
		return false, common.NewRemoteError(op, errors.New("reply carries no value"))
	}
	return *r.Value, nil
}

// -------- todos --------

// CreateTodo stores the todo under id, the identifier assigned by the
// primary store.
func (c *GRPCClient) CreateTodo(ctx context.Context, sess *auth.Session, id string, req models.CreateTodoRequest) (string, error) {
	p, err := rpc.Payload{ID: id}.WithRequest(req)
	if err != nil {
		return "", err
	}
	r, err := c.call(ctx, sess, rpc.MethodCreateTodo, p)
	if err != nil {
		return "", err
	}
	return r.ID, nil
}

func (c *GRPCClient) GetTodos(ctx context.Context, sess *auth.Session, completed *bool) ([]models.Todo, error) {
	r, err := c.call(ctx, sess, rpc.MethodGetTodos, rpc.Payload{Completed: completed})
	if err != nil {
		return nil, err
	}
	return decodeList[models.Todo]("backup "+rpc.MethodGetTodos, r)
}

// GetTodoByID returns nil, nil when the backup has no such todo.
func (c *GRPCClient) GetTodoByID(ctx context.Context, sess *auth.Session, id string) (*models.Todo, error) {
	r, err := c.call(ctx, sess, rpc.MethodGetTodoByID, rpc.Payload{ID: id})
	if err != nil {
		return nil, err
	}
	return decodeItem[models.Todo]("backup "+rpc.MethodGetTodoByID, r)
}

func (c *GRPCClient) UpdateTodo(ctx context.Context, sess *auth.Session, id string, req models.UpdateTodoRequest) (bool, error) {
	p, err := rpc.Payload{ID: id}.WithRequest(req)
	if err != nil {
		return false, err
	}
	r, err := c.call(ctx, sess, rpc.MethodUpdateTodo, p)
	if err != nil {
		return false, err
	}
	return r.OK, nil
}

func (c *GRPCClient) DeleteTodo(ctx context.Context, sess *auth.Session, id string) (bool, error) {
	r, err := c.call(ctx, sess, rpc.MethodDeleteTodo, rpc.Payload{ID: id})
	if err != nil {
		return false, err
	}
	return r.OK, nil
}

func (c *GRPCClient) ToggleTodoCompletion(ctx context.Context, sess *auth.Session, id string) (bool, error) {
	r, err := c.call(ctx, sess, rpc.MethodToggleTodoCompletion, rpc.Payload{ID: id})
	if err != nil {
		return false, err
	}
	return toggled("backup "+rpc.MethodToggleTodoCompletion, r)
}

// -------- ideas --------

func (c *GRPCClient) CreateIdea(ctx context.Context, sess *auth.Session, id string, req models.CreateIdeaRequest) (string, error) {
	p, err := rpc.Payload{ID: id}.WithRequest(req)
	if err != nil {
		return "", err
	}
	r, err := c.call(ctx, sess, rpc.MethodCreateIdea, p)
	if err != nil {
		return "", err
	}
	return r.ID, nil
}

func (c *GRPCClient) GetIdeas(ctx context.Context, sess *auth.Session, isFavorite *bool) ([]models.Idea, error) {
	r, err := c.call(ctx, sess, rpc.MethodGetIdeas, rpc.Payload{IsFavorite: isFavorite})
	if err != nil {
		return nil, err
	}
	return decodeList[models.Idea]("backup "+rpc.MethodGetIdeas, r)
}

func (c *GRPCClient) SearchIdeas(ctx context.Context, sess *auth.Session, keyword string) ([]models.Idea, error) {
	r, err := c.call(ctx, sess, rpc.MethodSearchIdeas, rpc.Payload{Keyword: keyword})
	if err != nil {
		return nil, err
	}
	return decodeList[models.Idea]("backup "+rpc.MethodSearchIdeas, r)
}

func (c *GRPCClient) GetIdeaByID(ctx context.Context, sess *auth.Session, id string) (*models.Idea, error) {
	r, err := c.call(ctx, sess, rpc.MethodGetIdeaByID, rpc.Payload{ID: id})
	if err != nil {
		return nil, err
	}
	return decodeItem[models.Idea]("backup "+rpc.MethodGetIdeaByID, r)
}

func (c *GRPCClient) UpdateIdea(ctx context.Context, sess *auth.Session, id string, req models.UpdateIdeaRequest) (bool, error) {
	p, err := rpc.Payload{ID: id}.WithRequest(req)
	if err != nil {
		return false, err
	}
	r, err := c.call(ctx, sess, rpc.MethodUpdateIdea, p)
	if err != nil {
		return false, err
	}
	return r.OK, nil
}

func (c *GRPCClient) DeleteIdea(ctx context.Context, sess *auth.Session, id string) (bool, error) {
	r, err := c.call(ctx, sess, rpc.MethodDeleteIdea, rpc.Payload{ID: id})
	if err != nil {
		return false, err
	}
	return r.OK, nil
}

func (c *GRPCClient) ToggleIdeaFavorite(ctx context.Context, sess *auth.Session, id string) (bool, error) {
	r, err := c.call(ctx, sess, rpc.MethodToggleIdeaFavorite, rpc.Payload{ID: id})
	if err != nil {
		return false, err
	}
	return toggled("backup "+rpc.MethodToggleIdeaFavorite, r)
}
