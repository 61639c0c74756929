package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nkiryanov/salesoffice/internal/db"
	"github.com/nkiryanov/salesoffice/internal/handlers"
	"github.com/nkiryanov/salesoffice/internal/logger"
	"github.com/nkiryanov/salesoffice/internal/repository/postgres"
	"github.com/nkiryanov/salesoffice/internal/service/auth"
	"github.com/nkiryanov/salesoffice/internal/service/auth/tokenmanager"
	"github.com/nkiryanov/salesoffice/internal/service/employee"
	"github.com/nkiryanov/salesoffice/internal/service/housekeeping"
	"github.com/nkiryanov/salesoffice/internal/service/settings"
)

const shutdownTimeout = 5 * time.Second

type ServerApp struct {
	listenAddr string
	handler    http.Handler
	sweeper    *housekeeping.Sweeper
	pool       *pgxpool.Pool
	logger     logger.Logger
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	logger, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	// Connect to the database and run migrations
	pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}

	storage := postgres.NewStorage(pool)
	hasher := auth.BcryptHasher{Cost: c.BcryptCost}

	tokenManager, err := tokenmanager.New(tokenmanager.Config{
		SecretKey:        c.SecretKey,
		RefreshSecretKey: c.RefreshSecretKey,
		AccessTTL:        c.AccessTokenTTL,
		RefreshTTL:       c.RefreshTokenTTL,
	}, storage.Refresh())
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("error while creating token manager. Err: %w", err)
	}

	authService, err := auth.NewService(auth.Config{Hasher: hasher}, tokenManager, storage.Employee())
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
	}

	router := handlers.NewRouter(
		handlers.RouterConfig{LoginRatePerMinute: c.LoginRatePerMinute},
		authService,
		employee.NewService(hasher, storage.Employee()),
		settings.NewService(storage.Settings()),
		logger,
	)

	return &ServerApp{
		listenAddr: c.ListenAddr,
		handler:    router,
		sweeper:    housekeeping.New(c.HousekeepingInterval, storage.Refresh(), logger.With("component", "housekeeping")),
		pool:       pool,
		logger:     logger,
	}, nil
}

// Run starts http server and background housekeeping
// Both stop gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	defer s.pool.Close()

	httpServer := &http.Server{
		Addr:              s.listenAddr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	sweeperStopped := s.sweeper.Run(srvCtx)

	idleConnsClosed := make(chan struct{})
	go func() {
		defer close(idleConnsClosed)
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); errors.Is(err, context.DeadlineExceeded) {
			s.logger.Error("HTTP server shutdown timeout exceeded, forcing shutdown")
		}
		s.logger.Info("HTTP server stopped")
	}()

	s.logger.Info("Starting server", "address", s.listenAddr)
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed
	<-sweeperStopped

	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
