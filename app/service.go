package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/batteryform/config"
	"github.com/kilianp07/batteryform/core/form"
	coremetrics "github.com/kilianp07/batteryform/core/metrics"
	coremon "github.com/kilianp07/batteryform/core/monitoring"
	"github.com/kilianp07/batteryform/core/sink"
	"github.com/kilianp07/batteryform/infra/logger"
	"github.com/kilianp07/batteryform/infra/metrics"
	"github.com/kilianp07/batteryform/infra/monitoring"
	_ "github.com/kilianp07/batteryform/infra/sink"
	"github.com/kilianp07/batteryform/web"
	"github.com/kilianp07/batteryform/web/session"
)

// Service serves the battery form over HTTP.
type Service struct {
	cfg    *config.Config
	sink   sink.Sink
	store  *session.Store
	server *http.Server
	log    logger.Logger
}

// Option customises a Service.
type Option func(*serviceOptions)

type serviceOptions struct {
	registerer prometheus.Registerer
	gatherer   prometheus.Gatherer
}

// WithRegistry registers and serves metrics on reg instead of the default
// Prometheus registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(o *serviceOptions) {
		o.registerer = reg
		o.gatherer = reg
	}
}

// New creates a Service from the configuration.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	var so serviceOptions
	for _, o := range opts {
		o(&so)
	}
	logg := logger.New("service")

	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, err
	}
	coremon.Init(mon)

	var rec interface {
		coremetrics.Recorder
		coremetrics.SessionRecorder
	} = coremetrics.NopRecorder{}
	var metricsHandler http.Handler
	if cfg.Metrics.PrometheusEnabled {
		prom, err := metrics.NewPromRecorderWithRegistry(so.registerer)
		if err != nil {
			return nil, fmt.Errorf("prom recorder: %w", err)
		}
		rec = prom
		metricsHandler = metrics.Handler(so.gatherer)
	}

	out, err := sink.New(cfg.Sinks)
	if err != nil {
		return nil, fmt.Errorf("sinks: %w", err)
	}

	formLog := logger.New("form")
	store := session.NewStore(cfg.Session.IdleTimeout(), func(id string) *form.Controller {
		return form.NewController(out, formLog.With("session", id), form.WithID(id), form.WithRecorder(rec))
	}, session.WithRecorder(rec), session.WithLogger(logger.New("session")))

	srv := web.NewServer(store, web.Options{
		CookieName:   cfg.Session.CookieName,
		SecureCookie: cfg.Session.SecureCookie,
		Gzip:         cfg.HTTP.GzipEnabled(),
		Metrics:      metricsHandler,
		MetricsPath:  cfg.Metrics.Path,
		Logger:       logger.New("http"),
	})

	return &Service{
		cfg:   cfg,
		sink:  out,
		store: store,
		server: &http.Server{
			Addr:              cfg.HTTP.Addr,
			Handler:           srv.Handler(),
			ReadHeaderTimeout: cfg.HTTP.ReadTimeout(),
			ReadTimeout:       cfg.HTTP.ReadTimeout(),
		},
		log: logg,
	}, nil
}

// Handler exposes the HTTP handler, used in tests.
func (s *Service) Handler() http.Handler { return s.server.Handler }

// Run serves HTTP until ctx is cancelled, then shuts the server down.
func (s *Service) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.HTTP.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.HTTP.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Service) Serve(ctx context.Context, ln net.Listener) error {
	go s.store.Run(ctx, s.cfg.Session.SweepInterval())

	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("serving battery form on %s", ln.Addr())
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.HTTP.ShutdownTimeout())
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return <-errCh
}

// Close releases the sinks and flushes the error monitor.
func (s *Service) Close() error {
	coremon.Flush(2 * time.Second)
	return s.sink.Close()
}
