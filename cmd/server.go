package cmd

import (
	"context"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/getsentry/sentry-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/checkmarble/form-designer/api"
	"github.com/checkmarble/form-designer/infra"
	"github.com/checkmarble/form-designer/repositories"
	"github.com/checkmarble/form-designer/usecases"
	"github.com/checkmarble/form-designer/utils"
)

type closableStore interface {
	repositories.KeyValueStore
	Close() error
}

func RunServer(compiled CompiledConfig) error {
	config := LoadConfig()

	logger := utils.NewLogger(config.Server.LoggingFormat)
	ctx := utils.StoreLoggerInContext(context.Background(), logger)

	if err := config.Validate(); err != nil {
		logger.ErrorContext(ctx, "invalid configuration", "error", err.Error())
		return err
	}

	infra.SetupSentry(config.Server.SentryDsn, config.Server.Env)
	defer sentry.Flush(3 * time.Second)

	telemetryRessources, err := infra.InitTelemetry(config.Telemetry, compiled.Version)
	if err != nil {
		utils.LogAndReportSentryError(ctx, err)
		telemetryRessources = infra.NoopTelemetry()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	utils.RegisterMetrics(registry)

	store, err := openStore(ctx, config.Storage)
	if err != nil {
		utils.LogAndReportSentryError(ctx, err)
		return err
	}
	defer store.Close()

	repositoryOptions := []repositories.Option{}
	if config.Remote.Enabled() {
		repositoryOptions = append(repositoryOptions,
			repositories.WithRemoteFormRepository(repositories.NewHttpRemoteFormRepository(config.Remote)))
	} else {
		logger.WarnContext(ctx, "no remote store configured, forms are only saved locally")
	}
	repos := repositories.NewRepositories(store, repositoryOptions...)

	uc, err := usecases.NewUsecases(ctx, repos,
		usecases.WithAppName(config.Server.AppName),
		usecases.WithDraftDebounce(config.Designer.DraftDebounce),
		usecases.WithMaxOpenSessions(config.Server.MaxOpenSessions),
		usecases.WithProbeInterval(config.Server.SyncProbeInterval),
	)
	if err != nil {
		utils.LogAndReportSentryError(ctx, err)
		return err
	}

	apiConfig := api.Configuration{
		Env:              config.Server.Env,
		AppName:          config.Server.AppName,
		AppVersion:       compiled.Version,
		Port:             config.Server.Port,
		CorsAllowOrigins: config.Server.CorsAllowOrigins,
		RequestTimeout:   config.Server.RequestTimeout,
		MaxBodySize:      int64(config.MaxBodySize),
	}
	router := api.InitRouterMiddlewares(ctx, apiConfig, telemetryRessources)
	server := api.NewServer(router, apiConfig, uc, api.WithMetricsGatherer(registry))

	notify, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(notify)
	group.Go(func() error {
		logger.InfoContext(ctx, "starting server",
			slog.String("port", apiConfig.Port),
			slog.String("version", compiled.Version))
		err := server.ListenAndServe()
		if !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "error while serving the app")
		}
		return nil
	})
	group.Go(func() error {
		return uc.NewConnectivityMonitor().Run(groupCtx)
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logger.InfoContext(ctx, "shutting down")
		shutdownCtx, cancel := context.WithTimeout(ctx, config.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "error while shutting down the server")
		}
		return nil
	})

	err = group.Wait()
	uc.Close()
	if err != nil {
		utils.LogAndReportSentryError(ctx, err)
		return err
	}
	logger.InfoContext(ctx, "server returned")
	return nil
}

func openStore(ctx context.Context, config infra.StorageConfig) (closableStore, error) {
	switch config.Backend {
	case infra.StorageBackendRedis:
		return repositories.NewRedisKeyValueStore(ctx, config.Redis)
	default:
		return repositories.NewBlobKeyValueStore(ctx, config.BucketUrl)
	}
}
