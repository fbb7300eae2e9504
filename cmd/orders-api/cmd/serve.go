package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/storefront/orders-api/internal/api"
	"github.com/storefront/orders-api/internal/api/handler"
	"github.com/storefront/orders-api/internal/api/middleware"
	"github.com/storefront/orders-api/internal/core/service"
	"github.com/storefront/orders-api/internal/core/token"
	mongodb "github.com/storefront/orders-api/internal/infrastructure/db/mongo"
	redisdb "github.com/storefront/orders-api/internal/infrastructure/db/redis"
	"github.com/storefront/orders-api/internal/infrastructure/queue"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Orders API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// Connect to stores
		client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return fmt.Errorf("failed to connect to mongo: %w", err)
		}
		defer func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = client.Disconnect(disconnectCtx)
		}()
		log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongo")

		rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer rdb.Close()
		log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to redis")

		// Initialize repositories
		userRepo := mongodb.NewUserRepository(db)
		orderRepo := mongodb.NewOrderRepository(db)
		eventRepo := mongodb.NewOrderEventRepository(db)
		if err := mongodb.EnsureIndexes(ctx, userRepo, orderRepo, eventRepo); err != nil {
			return err
		}
		idem := redisdb.NewIdempotencyStore(rdb)

		// Credentials
		tokenCfg := token.Config{
			Secret: []byte(cfg.Auth.JWTSecret),
			Issuer: cfg.Auth.Issuer,
			TTL:    cfg.Auth.TokenTTL,
		}
		verifier, err := token.NewVerifier(tokenCfg)
		if err != nil {
			return fmt.Errorf("configure token verifier: %w", err)
		}
		issuer, err := token.NewIssuer(tokenCfg)
		if err != nil {
			return fmt.Errorf("configure token issuer: %w", err)
		}

		// Audit workers outlive the HTTP server so queued events are drained.
		workerCtx, cancelWorkers := context.WithCancel(context.Background())
		dispatcher := queue.NewDispatcher(cfg.AuditWorkers, service.NewAuditService(eventRepo, log), log)
		dispatcher.Start(workerCtx)

		e := api.NewRouter(api.Dependencies{
			Gate:   middleware.NewGate(verifier, userRepo, log),
			Auth:   service.NewAuthService(userRepo, issuer, log),
			Users:  service.NewUserService(userRepo, orderRepo, log),
			Orders: service.NewOrderService(orderRepo, eventRepo, idem, dispatcher, log),
			Readiness: map[string]handler.Pinger{
				"mongo": handler.MongoPinger(db),
				"redis": handler.RedisPinger(rdb),
			},
			Logger:         log,
			RequestTimeout: cfg.RequestTimeout,
		})

		serverErrors := make(chan error, 1)
		go func() {
			log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server listening")
			if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverErrors <- err
			}
		}()

		select {
		case err := <-serverErrors:
			cancelWorkers()
			dispatcher.Wait()
			return fmt.Errorf("server error: %w", err)
		case <-ctx.Done():
			log.Info().Msg("shutting down gracefully")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("graceful shutdown failed")
		}

		cancelWorkers()
		dispatcher.Wait()
		log.Info().Msg("server stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
