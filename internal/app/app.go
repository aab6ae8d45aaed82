package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	gomongo "go.mongodb.org/mongo-driver/mongo"

	"github.com/99minutos/client-contracts/internal/api"
	"github.com/99minutos/client-contracts/internal/api/handler"
	"github.com/99minutos/client-contracts/internal/core/ports"
	"github.com/99minutos/client-contracts/internal/core/service"
	"github.com/99minutos/client-contracts/internal/infrastructure/config"
	"github.com/99minutos/client-contracts/internal/infrastructure/db/mongo"
	"github.com/99minutos/client-contracts/internal/infrastructure/db/postgres"
	"github.com/99minutos/client-contracts/internal/infrastructure/db/redis"
	"github.com/99minutos/client-contracts/pkg/logger"
)

// App is the dependency injection container for the HTTP service.
type App struct {
	Config *config.Config
	Log    zerolog.Logger

	Postgres    *pgxpool.Pool
	MongoClient *gomongo.Client
	Mongo       *gomongo.Database
	Redis       *goredis.Client

	Audit *mongo.AuditRepository

	// Services
	Auth      *service.AuthService
	Clients   *service.ClientService
	Contracts *service.ContractService
	Lifecycle *service.LifecycleService
}

// New connects to Postgres, MongoDB and Redis and builds every service.
// Connections opened before a failure are closed again.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (_ *App, err error) {
	a := &App{Config: cfg, Log: log}
	defer func() {
		if err != nil {
			a.Close(context.Background())
		}
	}()

	if a.Postgres, err = postgres.Connect(ctx, postgres.Config{URL: cfg.Postgres.URL, MaxConns: cfg.Postgres.MaxConns}); err != nil {
		return nil, err
	}
	if a.MongoClient, a.Mongo, err = mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database}); err != nil {
		return nil, err
	}
	if a.Redis, err = redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB}); err != nil {
		return nil, err
	}

	paging := ports.Paging{DefaultSize: cfg.Pagination.DefaultSize, MaxSize: cfg.Pagination.MaxSize}
	tx := postgres.NewTxManager(a.Postgres)
	idem := redis.NewIdempotencyStore(a.Redis, cfg.Redis.IdempotencyTTL)
	a.Audit = mongo.NewAuditRepository(a.Mongo)

	a.Auth = service.NewAuthService(postgres.NewUserRepository(a.Postgres), cfg.JWTSecret, cfg.JWTTTL)
	a.Clients = service.NewClientService(
		postgres.NewClientRepository(a.Postgres), tx, idem, a.Audit, paging,
		logger.Component("clients"),
	)
	a.Contracts = service.NewContractService(
		postgres.NewContractRepository(a.Postgres), a.Clients, tx, idem, a.Audit, paging,
		logger.Component("contracts"),
	)
	a.Lifecycle = service.NewLifecycleService(
		a.Clients, a.Contracts, tx, a.Audit,
		logger.Component("lifecycle"),
	)

	return a, nil
}

// Migrate brings the Postgres schema up to date and creates the audit indexes.
func (a *App) Migrate(ctx context.Context) error {
	applied, err := postgres.Migrate(ctx, a.Postgres)
	if err != nil {
		return err
	}
	if err := a.Audit.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("audit indexes: %w", err)
	}
	a.Log.Info().Int("applied", applied).Msg("schema up to date")
	return nil
}

// Router returns the HTTP handler tree backed by this container.
func (a *App) Router() *echo.Echo {
	return api.NewRouter(api.Services{
		Auth:      a.Auth,
		Clients:   a.Clients,
		Lifecycle: a.Lifecycle,
		Contracts: a.Contracts,
	}, api.RouterConfig{
		JWTSecret: a.Config.JWTSecret,
		Logger:    a.Log,
		Checks:    a.checks(),
	})
}

func (a *App) checks() map[string]handler.Check {
	return map[string]handler.Check{
		"postgres": func(ctx context.Context) error {
			return a.Postgres.Ping(ctx)
		},
		"mongodb": func(ctx context.Context) error {
			return a.Mongo.RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err()
		},
		"redis": func(ctx context.Context) error {
			return a.Redis.Ping(ctx).Err()
		},
	}
}

// Close releases every open connection.
func (a *App) Close(ctx context.Context) {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Log.Warn().Err(err).Msg("redis close")
		}
	}
	if a.MongoClient != nil {
		if err := a.MongoClient.Disconnect(ctx); err != nil {
			a.Log.Warn().Err(err).Msg("mongo disconnect")
		}
	}
	if a.Postgres != nil {
		a.Postgres.Close()
	}
}
