package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/harentsoaR/hospital-api/internal/config"
	"github.com/harentsoaR/hospital-api/internal/events"
	"github.com/harentsoaR/hospital-api/internal/handlers"
	"github.com/harentsoaR/hospital-api/internal/logger"
	"github.com/harentsoaR/hospital-api/internal/models"
	"github.com/harentsoaR/hospital-api/internal/services"
	"github.com/harentsoaR/hospital-api/internal/store"
	"github.com/harentsoaR/hospital-api/internal/store/memstore"
	"github.com/harentsoaR/hospital-api/internal/store/mongostore"
	"github.com/harentsoaR/hospital-api/internal/utils"
)

const serviceName = "hospital-api"

func main() {
	rootCmd := &cobra.Command{
		Use:   "api",
		Short: "Hospital management API",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(indexesCmd())
	rootCmd.AddCommand(createAdminCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return runServer(cfg)
		},
	}
}

func indexesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "indexes",
		Short: "Create the MongoDB indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			db, disconnect, err := connectMongo(ctx, cfg)
			if err != nil {
				return err
			}
			defer disconnect()

			if err := mongostore.New(db).EnsureIndexes(ctx); err != nil {
				return fmt.Errorf("ensure indexes: %w", err)
			}
			fmt.Println("Indexes are up to date.")
			return nil
		},
	}
}

func createAdminCmd() *cobra.Command {
	h := &models.Hospital{}
	var password string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create a hospital administrator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log, err := logger.New(cfg.LogLevel, cfg.LogFormat, serviceName)
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			st, closeStore, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			tokens := utils.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
			auth := services.NewAuthService(st, tokens, nil, nil, services.AuthConfig{
				BcryptCost: cfg.BcryptCost,
				CodeTTL:    cfg.ResetCodeTTL,
			}, log)
			if err := auth.CreateAdmin(ctx, h, password); err != nil {
				return err
			}
			fmt.Printf("Created hospital account %s (%s).\n", h.Username, h.ID.Hex())
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&h.Name, "name", "", "Hospital name")
	f.StringVar(&h.Username, "username", "", "Login username")
	f.StringVar(&h.Email, "email", "", "Login email")
	f.StringVar(&h.Phone, "phone", "", "Contact phone")
	f.StringVar(&h.Owner, "owner", "", "Owner name")
	f.StringVar(&h.Address, "address", "", "Postal address")
	f.StringVar(&password, "password", "", "Login password (at least 6 characters)")
	for _, name := range []string{"name", "username", "email", "password"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func connectMongo(ctx context.Context, cfg *config.Config) (*mongo.Database, func(), error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, nil, fmt.Errorf("connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("ping MongoDB: %w", err)
	}
	disconnect := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = client.Disconnect(ctx)
	}
	return client.Database(cfg.MongoDatabase), disconnect, nil
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, func(), error) {
	if cfg.StoreDriver == config.DriverMemory {
		return memstore.New(), func() {}, nil
	}
	db, disconnect, err := connectMongo(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	st := mongostore.New(db)
	if err := st.EnsureIndexes(ctx); err != nil {
		disconnect()
		return nil, nil, fmt.Errorf("ensure indexes: %w", err)
	}
	return st, disconnect, nil
}

func runServer(cfg *config.Config) error {
	log, err := logger.New(cfg.LogLevel, cfg.LogFormat, serviceName)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	st, closeStore, err := openStore(startCtx, cfg)
	cancel()
	if err != nil {
		return err
	}
	defer closeStore()
	log.Info("store ready", zap.String("driver", cfg.StoreDriver))

	var publisher events.Publisher
	if cfg.RedisAddr != "" {
		sp := events.NewStreamPublisher(events.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB), cfg.ActivityStream)
		defer sp.Close()
		if err := sp.Ping(ctx); err != nil {
			log.Warn("redis unavailable, activity events will not be published", zap.Error(err))
		} else {
			publisher = sp
			log.Info("publishing activity events", zap.String("stream", cfg.ActivityStream))
		}
	}

	notifier := services.NewNotificationService(cfg.NotifyWebhookURL, log)
	recorder := services.NewRecorder(st.Activity(), publisher, loc, log)
	tokens := utils.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)

	h := handlers.NewHandler(
		services.NewAuthService(st, tokens, notifier, recorder, services.AuthConfig{
			BcryptCost: cfg.BcryptCost,
			CodeTTL:    cfg.ResetCodeTTL,
		}, log),
		services.NewPatientService(st, recorder, notifier, services.PatientConfig{
			IDPrefix:   cfg.PatientIDPrefix,
			BcryptCost: cfg.BcryptCost,
			CodeTTL:    cfg.ResetCodeTTL,
		}, log),
		services.NewDoctorService(st, recorder, notifier, cfg.BcryptCost, log),
		services.NewReservationService(st, recorder, notifier, services.ReservationConfig{
			BaseFee:        cfg.BaseFee,
			ConsultantRate: cfg.ConsultantRate,
			LeadTime:       cfg.LeadTime,
			Location:       loc,
		}, log),
		services.NewProductService(st),
	)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handlers.NewRouter(h, handlers.RouterConfig{CORSOrigins: cfg.CORSOrigins, Logger: log}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", zap.Error(err))
	}
	recorder.Wait()
	notifier.Wait()
	return nil
}
