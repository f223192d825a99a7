// Package server wires the portal together: it opens the store, applies
// migrations, bootstraps the administrator and runs the HTTP API until the
// process is signalled.
package server

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/blogportal/internal/logging"
	"github.com/dmitrijs2005/blogportal/internal/server/config"
	"github.com/dmitrijs2005/blogportal/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/blogportal/internal/server/services"
	"github.com/dmitrijs2005/blogportal/internal/server/web"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	identity    *services.IdentityService
	content     *services.ContentService
	engagement  *services.EngagementService
}

// openDB is a seam for tests.
var openDB = repomanager.OpenPostgres

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	db, err := openDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()

	return &App{
		config:      c,
		logger:      logger,
		db:          db,
		repomanager: rm,
		identity:    services.NewIdentityService(db, rm, logger),
		content:     services.NewContentService(db, rm, logger),
		engagement:  services.NewEngagementService(db, rm, logger),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// secretKey returns the configured signing key or a random one that lives
// as long as the process.
func (app *App) secretKey(ctx context.Context) ([]byte, error) {
	if app.config.SecretKey != "" {
		return []byte(app.config.SecretKey), nil
	}
	s, err := randomHex(32)
	if err != nil {
		return nil, err
	}
	app.logger.Warn(ctx, "no secret key configured, sessions will not survive a restart")
	return []byte(s), nil
}

func (app *App) bootstrapAdmin(ctx context.Context) error {
	password := app.config.AdminPassword
	generated := password == ""
	if generated {
		p, err := randomHex(12)
		if err != nil {
			return err
		}
		password = p
	}

	created, err := app.identity.BootstrapAdmin(ctx, app.config.AdminUsername, app.config.AdminEmail, password)
	if err != nil {
		return err
	}
	if !created {
		return nil
	}

	if generated {
		app.logger.Warn(ctx, "admin account created with a generated password, change it",
			"username", app.config.AdminUsername, "email", app.config.AdminEmail, "password", password)
	} else {
		app.logger.Info(ctx, "admin account created", "username", app.config.AdminUsername)
	}
	return nil
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc, secret []byte) {
	s := web.NewHTTPServer(web.Options{
		Address:      app.config.HTTPAddr,
		SecretKey:    secret,
		SessionTTL:   app.config.SessionTTL,
		CORSOrigins:  app.config.CORSOrigins,
		SecureCookie: app.config.SecureCookie,
	}, app.logger, app.identity, app.content, app.engagement, app.db.PingContext)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run prepares the store and serves until ctx is cancelled or a
// termination signal arrives.
func (app *App) Run(ctx context.Context) error {
	defer app.db.Close()

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	if err := app.repomanager.RunMigrations(ctx, app.db); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	if err := app.bootstrapAdmin(ctx); err != nil {
		return fmt.Errorf("admin bootstrap error: %w", err)
	}

	secret, err := app.secretKey(ctx)
	if err != nil {
		return fmt.Errorf("secret key error: %w", err)
	}

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc, secret)
	}()

	wg.Wait()

	app.logger.Info(ctx, "App stopped")
	return nil
}
