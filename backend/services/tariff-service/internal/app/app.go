package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	libdb "meterbill/backend/libs/db"
	libmongo "meterbill/backend/libs/mongo"
	libredis "meterbill/backend/libs/redis"
	"meterbill/backend/libs/tariff"
	"meterbill/backend/services/tariff-service/internal/config"
	httpserver "meterbill/backend/services/tariff-service/internal/http"
	"meterbill/backend/services/tariff-service/internal/http/handlers"
	"meterbill/backend/services/tariff-service/internal/http/middleware"
	redisstore "meterbill/backend/services/tariff-service/internal/redis"
	"meterbill/backend/services/tariff-service/internal/repository"
	"meterbill/backend/services/tariff-service/internal/service"
	"meterbill/backend/services/tariff-service/internal/ws"
)

// App wires tariff service dependencies.
type App struct {
	server  *httpserver.Server
	handler http.Handler
	hub     *ws.Hub
	logger  *zap.Logger
	closers []func(context.Context) error
}

// New constructs the application graph. Schedules are validated here, so a
// malformed rate table stops the process before it serves anything.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	table, err := LoadTable(cfg.Tariff.SchedulesFile)
	if err != nil {
		return nil, err
	}
	logger.Info("rate schedules loaded", zap.Any("schedules", ScheduleKinds(table)))

	a := &App{logger: logger}

	calcRepo, err := a.calculationRepository(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	statusRepo, err := a.statusRepository(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.hub = ws.NewHub(logger)
	engine := tariff.NewEngine(table)
	calculator := service.NewCalculatorService(engine, calcRepo, a.hub, cfg.Tariff.HistoryLimit, logger)
	status := service.NewStatusService(statusRepo)

	routes := httpserver.Routes{
		Root:              handlers.NewRootHandler(),
		Health:            handlers.NewHealthHandler(),
		Rates:             handlers.NewRatesHandler(calculator),
		KWToMoney:         handlers.NewKWToMoneyHandler(calculator, logger),
		MoneyToKW:         handlers.NewMoneyToKWHandler(calculator, logger),
		SaveCalculation:   handlers.NewSaveCalculationHandler(calculator, logger),
		ListCalculations:  handlers.NewListCalculationsHandler(calculator, logger),
		ClearCalculations: handlers.NewClearCalculationsHandler(calculator, logger),
		CreateStatus:      handlers.NewCreateStatusHandler(status, logger),
		ListStatus:        handlers.NewListStatusHandler(status, logger),
		Feed:              ws.NewServer(a.hub, cfg.Feed.PingInterval, cfg.Feed.WriteTimeout, originChecker(cfg.HTTP.AllowedOrigins), logger),
	}

	a.handler = httpserver.NewRouter(routes,
		middleware.RequestLogger(logger),
		middleware.CORS(cfg.HTTP.AllowedOrigins),
	)
	a.server = httpserver.NewServer(cfg.HTTPAddress(), a.handler, logger)
	return a, nil
}

// LoadTable reads schedules from path, or returns the built-in table when path is empty.
func LoadTable(path string) (*tariff.Table, error) {
	if strings.TrimSpace(path) == "" {
		return tariff.DefaultTable(), nil
	}
	table, err := tariff.LoadSchedules(path)
	if err != nil {
		return nil, fmt.Errorf("load schedules %s: %w", path, err)
	}
	return table, nil
}

// ScheduleKinds maps every class to its schedule kind.
func ScheduleKinds(table *tariff.Table) map[string]tariff.Kind {
	kinds := make(map[string]tariff.Kind)
	for class, s := range table.List() {
		kinds[class] = s.Kind()
	}
	return kinds
}

// Handler exposes the HTTP handler, mainly for tests.
func (a *App) Handler() http.Handler {
	return a.handler
}

// Run serves HTTP and the live feed until ctx is done.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.hub.Run(ctx)
		return nil
	})
	g.Go(func() error {
		return a.server.Run(ctx)
	})
	return g.Wait()
}

// Close releases resources.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](context.Background()); err != nil {
			a.logger.Warn("failed to close resource", zap.Error(err))
		}
	}
	a.closers = nil
}

func (a *App) calculationRepository(ctx context.Context, cfg *config.Config) (service.CalculationRepository, error) {
	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		pool, err := libdb.NewPostgresPool(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		a.closers = append(a.closers, closePool(pool))
		if err := libdb.Migrate(ctx, pool, repository.CalculationsSchema...); err != nil {
			return nil, err
		}
		a.logger.Info("calculation history stored in postgres")
		return repository.NewPostgresCalculationRepository(pool), nil
	case config.StorageMongo:
		client, db, err := libmongo.Connect(ctx, libmongo.Options{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
			User:     cfg.Mongo.User,
			Password: cfg.Mongo.Password,
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, disconnectMongo(client))
		repo := repository.NewMongoCalculationRepository(db)
		if err := repo.EnsureIndexes(ctx); err != nil {
			return nil, fmt.Errorf("mongo indexes: %w", err)
		}
		a.logger.Info("calculation history stored in mongo", zap.String("database", cfg.Mongo.Database))
		return repo, nil
	default:
		a.logger.Warn("calculation history kept in memory")
		return repository.NewMemoryCalculationRepository(), nil
	}
}

func (a *App) statusRepository(ctx context.Context, cfg *config.Config) (service.StatusRepository, error) {
	if strings.TrimSpace(cfg.Redis.Addr) == "" {
		return repository.NewMemoryStatusRepository(redisstore.MaxStatusChecks), nil
	}
	client, err := libredis.NewRedisClient(ctx, libredis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	a.closers = append(a.closers, closeRedis(client))
	return redisstore.NewStatusStore(client, cfg.Redis.StatusTTL), nil
}

func closePool(pool *pgxpool.Pool) func(context.Context) error {
	return func(context.Context) error {
		pool.Close()
		return nil
	}
}

func disconnectMongo(client *mongo.Client) func(context.Context) error {
	return func(ctx context.Context) error {
		return client.Disconnect(ctx)
	}
}

func closeRedis(client *goredis.Client) func(context.Context) error {
	return func(context.Context) error {
		return client.Close()
	}
}

// originChecker mirrors the CORS allow-list for websocket upgrades.
func originChecker(allowed []string) func(*http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "*" {
			return nil
		}
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}
