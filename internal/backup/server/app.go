package server

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/lifetrack/internal/backup/server/config"
	"github.com/dmitrijs2005/lifetrack/internal/backup/store"
	"github.com/dmitrijs2005/lifetrack/internal/logging"
)

// App runs the backup daemon.
type App struct {
	config *config.Config
	logger logging.Logger
	store  *store.Store
}

// openStore is a seam for tests.
var openStore = store.Open

func NewApp(ctx context.Context, c *config.Config, logOut io.Writer) (*App, error) {
	logger, err := logging.New(c.LogFormat, c.LogLevel, logOut)
	if err != nil {
		return nil, err
	}

	st, err := openStore(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	return &App{config: c, logger: logger, store: st}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves until ctx is cancelled or a termination signal arrives.
func (app *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	app.initSignalHandler(cancel)
	app.logger.Info(ctx, "Starting backup service...", "dsn", app.config.DatabaseDSN)

	defer func() {
		if err := app.store.Close(); err != nil {
			app.logger.Error(ctx, "close store", "error", err)
		}
	}()

	s := NewGRPCServer(app.config.ListenAddr, app.logger, app.store.Todos, app.store.Ideas, app.config.SecretKey)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		return err
	}
	return nil
}
