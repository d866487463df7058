// Package server initializes and runs the faceauth server.
// It opens the configured user store, builds the enrollment and
// authentication services, and serves them over gRPC and HTTP until a
// termination signal arrives.
package server

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/faceauth/internal/cryptox"
	"github.com/dmitrijs2005/faceauth/internal/logging"
	"github.com/dmitrijs2005/faceauth/internal/matcher"
	"github.com/dmitrijs2005/faceauth/internal/server/config"
	"github.com/dmitrijs2005/faceauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/faceauth/internal/server/rest"
	"github.com/dmitrijs2005/faceauth/internal/server/services"

	gs "github.com/dmitrijs2005/faceauth/internal/server/grpc"
)

type App struct {
	config                *config.Config
	logger                logging.Logger
	repomanager           repomanager.RepositoryManager
	enrollmentService     *services.EnrollmentService
	authenticationService *services.AuthenticationService
}

// NewApp validates c and wires the services. A bad encryption key or any
// other configuration error is returned before anything is opened.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	return newApp(ctx, c, os.Stdout)
}

func newApp(ctx context.Context, c *config.Config, logOut io.Writer) (*App, error) {

	logger, err := logging.NewJSONLogger(logOut, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	sealer, err := cryptox.NewSealer(c.EncryptionKey, c.Cipher)
	if err != nil {
		return nil, err
	}

	mt, err := matcher.New(c.MatchThreshold, matcher.TieBreak(c.TieBreak))
	if err != nil {
		return nil, err
	}

	rm, err := repomanager.New(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	logger.Info(ctx, "Storage ready",
		"backend", c.StorageBackend,
		"cipher", sealer.Cipher(),
		"threshold", mt.Threshold(),
		"tie_break", string(mt.Policy()),
		"descriptor_length", c.DescriptorLength,
	)

	es := services.NewEnrollmentService(rm, sealer, c, logger.With("module", "enrollment"))
	as := services.NewAuthenticationService(rm, sealer, mt, c, logger.With("module", "authentication"))

	return &App{
		config:                c,
		logger:                logger,
		repomanager:           rm,
		enrollmentService:     es,
		authenticationService: as,
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

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.enrollmentService, app.authenticationService)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := rest.NewHTTPServer(app.config, app.logger, app.enrollmentService, app.authenticationService)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// waits for both servers to stop and closes the store.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.repomanager.Close(); err != nil {
		app.logger.Error(ctx, "error closing storage", "error", err)
	}

	app.logger.Info(ctx, "App stopped")
}
