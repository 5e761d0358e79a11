package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	appanalytics "github.com/jhoicas/biztracker/internal/application/analytics"
	"github.com/jhoicas/biztracker/internal/application/ports"
	"github.com/jhoicas/biztracker/internal/application/relationship"
	"github.com/jhoicas/biztracker/internal/application/usecase"
	"github.com/jhoicas/biztracker/internal/domain/inventory"
	"github.com/jhoicas/biztracker/internal/domain/repository"
	"github.com/jhoicas/biztracker/internal/infrastructure/memory"
	"github.com/jhoicas/biztracker/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/biztracker/internal/interfaces/http"
	"github.com/jhoicas/biztracker/pkg/config"
	"github.com/jhoicas/biztracker/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

// storage repositorios, runner transaccional y trabajos del driver elegido.
type storage struct {
	repos ports.Repositories
	tx    ports.TxRunner
	jobs  repository.ConversionJobRepository
	close func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.App.StoreDriver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento")
	}
	defer store.close()

	th := inventory.DefaultThresholds()
	th.Quantity = cfg.Stock.QuantityThreshold

	repos := store.repos
	converter := relationship.NewConverter(repos, log)
	jobRunner := relationship.NewJobRunner(converter, repos, store.jobs, log)
	if _, err := jobRunner.RecoverInterrupted(ctx); err != nil {
		log.Fatal().Err(err).Msg("trabajos de conversión")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	prometheus := fiberprometheus.New(cfg.App.Name)
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "BizTracker API",
		}))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		ItemUC:        usecase.NewItemUseCase(repos.Items, store.tx, th),
		PurchaseUC:    usecase.NewPurchaseUseCase(repos.Purchases, repos.Relationships, store.tx, log),
		SaleUC:        usecase.NewSaleUseCase(repos.Sales, repos.Relationships, store.tx, log),
		AssetUC:       usecase.NewAssetUseCase(repos.Assets, store.tx),
		Relationships: relationship.NewStore(repos, log),
		Converter:     converter,
		Jobs:          jobRunner,
		DashboardUC:   appanalytics.NewDashboardUseCase(repos.Items, repos.Purchases, repos.Sales, repos.Assets, repos.Relationships, th),
		JWTSecret:     cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	jobRunner.Stop()
	if id := jobRunner.Running(); id != "" {
		log.Info().Str("job_id", id).Msg("esperando cierre del trabajo de conversión en curso")
		done := make(chan struct{})
		go func() {
			jobRunner.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-shutdownCtx.Done():
			log.Warn().Str("job_id", id).Msg("trabajo de conversión sin cerrar; se marcará fallido al reiniciar")
		}
	}

	log.Info().Msg("aplicación detenida")
}

func openStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*storage, error) {
	if cfg.App.StoreDriver == config.StoreDriverMemory {
		ms := memory.NewStore()
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		return &storage{repos: ms.Repositories(), tx: ms, jobs: ms.Jobs(), close: func() {}}, nil
	}

	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(cfg.DB.ConnectionString(), log); err != nil {
			return nil, err
		}
	}
	pool, err := postgres.NewPool(ctx, cfg.DB, log)
	if err != nil {
		return nil, err
	}
	return &storage{
		repos: postgres.NewRepositories(pool),
		tx:    postgres.NewTxRunner(pool),
		jobs:  postgres.NewConversionJobRepository(pool),
		close: pool.Close,
	}, nil
}
