package app

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	healthcheck "github.com/kovlou/storefront/internal/health"
	"github.com/kovlou/storefront/internal/service/checkout"
	"github.com/kovlou/storefront/internal/service/notify"
	"github.com/kovlou/storefront/internal/service/outbox"
	"github.com/kovlou/storefront/internal/service/rest"
	"github.com/kovlou/storefront/internal/version"
)

const shutdownTimeout = 5 * time.Second

// Run собирает сервис витрины и блокируется до отмены ctx или падения API.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	storage, err := initStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := storage.Close(); err != nil {
			logger.WithError(err).Warn("failed to close storage")
		}
	}()

	notifier := notify.NewService(log.WithField("component", "notify"))

	messaging, err := initMessaging(cfg, storage.Orders, notifier, logger)
	if err != nil {
		return err
	}
	defer messaging.Close(logger)

	checkoutSvc := checkout.NewService(
		storage.Products,
		storage.Orders,
		storage.Outbox,
		messaging.DirectNotifier(notifier),
		log.WithField("component", "checkout"),
	)
	defer func() {
		drainCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := checkoutSvc.Shutdown(drainCtx); err != nil {
			logger.WithError(err).Warn("notification drain interrupted")
		}
	}()

	var relayWG sync.WaitGroup
	if messaging.Publisher != nil {
		relayOpts := []outbox.Option{
			outbox.WithLogger(log.WithField("component", "outbox_relay")),
			outbox.WithPollInterval(cfg.OutboxPollInterval),
			outbox.WithBatchSize(cfg.OutboxBatchSize),
			outbox.WithMaxAttempts(cfg.OutboxMaxAttempts),
			outbox.WithRetryBaseDelay(cfg.OutboxRetryBaseStep),
		}
		if messaging.DLQ != nil {
			relayOpts = append(relayOpts, outbox.WithDLQPublisher(messaging.DLQ))
		}
		relay := outbox.NewRelay(storage.Outbox, messaging.Publisher, relayOpts...)
		relayWG.Add(1)
		go func() {
			defer relayWG.Done()
			relay.Run(ctx)
		}()
		messaging.startConsumer(ctx, logger)
	}

	healthHandler := healthcheck.NewHandler(version.GetVersion())
	if storage.Store != nil {
		healthHandler.RegisterChecker("postgres", healthcheck.NewStoreChecker("postgres", storage.Store))
	}
	opsSrv := startOpsServer(ctx, cfg.OpsAddr, logger, healthHandler)

	handler := rest.NewHandler(checkoutSvc, storage.Products, log.StandardLogger())
	apiSrv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: rest.NewRouter(handler),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("API заказов слушает %s", cfg.HTTPAddr)
		errCh <- apiSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем API")
		shutdownHTTP(apiSrv, logger)
		shutdownHTTP(opsSrv, logger)
		relayWG.Wait()
		return ctx.Err()
	case err := <-errCh:
		shutdownHTTP(opsSrv, logger)
		relayWG.Wait()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// startOpsServer запускает служебный HTTP-сервер метрик и health-проб.
func startOpsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/livez, %s/readyz", addr, addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("ops server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("http shutdown with error")
	}
}
