// Package server wires the file storage server together: repositories, the
// blob store, services, the HTTP API, gRPC health and the orphan sweeper.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/filestorage/internal/logging"
	"github.com/dmitrijs2005/filestorage/internal/server/blobstore"
	"github.com/dmitrijs2005/filestorage/internal/server/config"
	"github.com/dmitrijs2005/filestorage/internal/server/httpapi"
	"github.com/dmitrijs2005/filestorage/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/filestorage/internal/server/services"

	gs "github.com/dmitrijs2005/filestorage/internal/server/grpc"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	repomanager repomanager.RepositoryManager
	userService *services.UserService
	fileService *services.FileService
	sweeper     *services.Sweeper
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger, err := logging.New(os.Stdout, c.LogFormat, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	return newApp(ctx, c, logger)
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {

	rm, err := repomanager.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if c.MigrateOnStart {
		if err := rm.RunMigrations(ctx); err != nil {
			rm.Close()
			return nil, fmt.Errorf("migration error: %w", err)
		}
	}

	blobs, err := blobstore.NewFromConfig(ctx, c)
	if err != nil {
		rm.Close()
		return nil, fmt.Errorf("blob store init error: %w", err)
	}

	return &App{
		config:      c,
		logger:      logger,
		repomanager: rm,
		userService: services.NewUserService(rm, c, logger),
		fileService: services.NewFileService(rm, blobs, logger),
		sweeper:     services.NewSweeper(rm, blobs, c.SweepGracePeriod, c.SweepInterval, logger),
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

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewServer(app.config, app.userService, app.fileService, app.logger)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.fileService, 0)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is canceled or a termination signal arrives, then
// waits for every component to stop and closes the database.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(3)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.sweeper.Run(ctx)
	}()

	wg.Wait()

	if err := app.repomanager.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
