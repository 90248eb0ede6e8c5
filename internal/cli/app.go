package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/lifetrack/internal/auth"
	backupclient "github.com/dmitrijs2005/lifetrack/internal/backup/client"
	"github.com/dmitrijs2005/lifetrack/internal/config"
	"github.com/dmitrijs2005/lifetrack/internal/logging"
	"github.com/dmitrijs2005/lifetrack/internal/objectstore"
	"github.com/dmitrijs2005/lifetrack/internal/primary/repomanager"
	"github.com/dmitrijs2005/lifetrack/internal/primary/services"
	"github.com/dmitrijs2005/lifetrack/internal/state"
)

// AuthProvider is the part of auth.Client the shell uses.
type AuthProvider interface {
	SignUp(ctx context.Context, email, password string) (*auth.Session, error)
	SignIn(ctx context.Context, email, password string) (*auth.Session, error)
	Refresh(ctx context.Context, sess *auth.Session) (*auth.Session, error)
	SignOut(ctx context.Context, sess *auth.Session) error
	ResetPassword(ctx context.Context, email string) error
}

type App struct {
	config       *config.Config
	log          logging.Logger
	authn        AuthProvider
	session      *auth.Session
	todos        *state.TodoContainer
	ideas        *state.IdeaContainer
	achievements *state.AchievementContainer
	notify       state.Notifier
	reader       *bufio.Reader
	out          io.Writer
	now          func() time.Time
	closers      []func() error
}

// Seams for tests.
var (
	openPrimary     = repomanager.Open
	newObjectStore  = objectstore.New
	newBackupClient = backupclient.New
	newRepoManager  = repomanager.NewPostgresRepositoryManager
)

var (
	stdin  io.Reader = os.Stdin
	stdout io.Writer = os.Stdout
)

// NewApp wires the primary store, the optional object store and backup
// service, and the state containers.
func NewApp(ctx context.Context, c *config.Config, logOut io.Writer) (*App, error) {
	log, err := logging.New(c.LogFormat, c.LogLevel, logOut)
	if err != nil {
		return nil, err
	}

	a := &App{
		config: c,
		log:    log.With("module", "cli"),
		authn:  auth.NewClient(c.AuthURL, c.AuthAPIKey),
		notify: NewColorNotifier(stdout),
		reader: bufio.NewReader(stdin),
		out:    stdout,
		now:    time.Now,
	}

	db, err := openPrimary(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, db.Close)

	rm := newRepoManager()
	if c.RunMigrations {
		if err := rm.RunMigrations(ctx, db); err != nil {
			a.Close()
			return nil, err
		}
	}

	var images services.ImageStore
	if osc := c.ObjectStore(); osc.Enabled() {
		st, err := newObjectStore(ctx, osc, log)
		if err != nil {
			a.Close()
			return nil, err
		}
		images = st
	} else {
		log.Warn(ctx, "object store not configured, image attachments are disabled")
	}

	var (
		todoBackup state.TodoBackup
		ideaBackup state.IdeaBackup
		mirror     *state.Mirror
	)
	if c.BackupAddr != "" {
		bc, err := newBackupClient(c.BackupAddr, backupclient.WithTimeout(c.BackupTimeout.Duration))
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("backup client: %w", err)
		}
		mirror = state.NewMirror(log, c.MirrorQueueSize, c.BackupTimeout.Duration*2)
		// The mirror drains before the connection closes.
		a.closers = append(a.closers, bc.Close, func() error {
			mirror.Close()
			return nil
		})
		todoBackup, ideaBackup = bc, bc
	}

	a.wire(db, rm, images, todoBackup, ideaBackup, mirror)
	return a, nil
}

func (a *App) wire(db *sql.DB, rm repomanager.RepositoryManager, images services.ImageStore, tb state.TodoBackup, ib state.IdeaBackup, mirror *state.Mirror) {
	a.todos = state.NewTodoContainer(services.NewTodoService(db, rm, a.log), tb, mirror, a.notify, a.log)
	a.ideas = state.NewIdeaContainer(services.NewIdeaService(db, rm, a.log), ib, mirror, a.notify, a.log)
	a.achievements = state.NewAchievementContainer(services.NewAchievementService(db, rm, images, a.log), a.notify, a.log)
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn(context.Background(), "close", "error", err)
		}
	}
	a.closers = nil
}

func (a *App) isLoggedIn() bool {
	return auth.Require(a.session) == nil
}

// keepAlive trades the refresh token for a new session once the access
// token has expired. A failed refresh ends the session.
func (a *App) keepAlive(ctx context.Context) {
	if a.session == nil || !a.session.Expired(a.now()) {
		return
	}
	sess, err := a.authn.Refresh(ctx, a.session)
	if err != nil {
		a.log.Warn(ctx, "session refresh failed", "error", err)
		a.notify.Warning("session expired, please login again")
		a.session = nil
		a.loadAll(ctx)
		return
	}
	a.log.Debug(ctx, "session refreshed", "expires_at", sess.ExpiresAt)
	a.session = sess
}

func (a *App) status() string {
	if !a.isLoggedIn() {
		return ""
	}
	return "(" + a.session.Email + ")"
}

// Run starts the shell and blocks until the user exits or ctx is done.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	fmt.Fprintln(a.out, "Welcome to Life Track (type 'help' for commands)")
	runREPL(ctx, a, a.status, a.reader)
	return nil
}

// loadAll refreshes every container for the current session.
func (a *App) loadAll(ctx context.Context) {
	_ = a.todos.Load(ctx, a.session, nil)
	_ = a.ideas.Load(ctx, a.session, nil)
	_ = a.achievements.Load(ctx, a.session)
}
