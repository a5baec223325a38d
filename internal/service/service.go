package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/Cleo-Systems/elevate-extract/internal/service/config"
	"github.com/Cleo-Systems/elevate-extract/internal/service/extract/adapters/queue"
	"github.com/Cleo-Systems/elevate-extract/internal/service/extract/adapters/storage"
	"github.com/Cleo-Systems/elevate-extract/internal/service/extract/app"
	"github.com/Cleo-Systems/elevate-extract/internal/service/extract/fhir"
	"github.com/Cleo-Systems/elevate-extract/internal/service/extract/tabular"
	"github.com/Cleo-Systems/elevate-extract/internal/service/runtime"
)

type Service struct {
	log        zerolog.Logger
	worker     *app.Worker
	source     *queue.AMQPSource
	httpServer *http.Server
}

// NewExtractService reads configuration and builds every collaborator once:
// object store, queue source, extractor, writer, pipeline, worker. Anything
// that cannot be constructed is a startup error.
func NewExtractService() (*Service, error) {
	cfg, err := config.NewConfigFromEnv()
	if err != nil {
		return nil, err
	}

	log := newLogger(cfg)

	if err := os.MkdirAll(cfg.WorkDir, 0o755); err != nil {
		return nil, fmt.Errorf("create work dir %q: %w", cfg.WorkDir, err)
	}

	startupCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	store, err := storage.NewMinioStore(startupCtx, storage.MinioOptions{
		Endpoint:  cfg.MinioEndpoint,
		AccessKey: cfg.MinioAccessKey,
		SecretKey: cfg.MinioSecretKey,
		UseSSL:    cfg.MinioSSL,
		Buckets:   []string{cfg.InputBucket, cfg.OutputBucket},
	}, log)
	if err != nil {
		return nil, err
	}

	source, err := queue.DialAMQP(cfg.AMQPURL, cfg.QueueName, log)
	if err != nil {
		return nil, err
	}

	extractor := fhir.NewExtractor(log)
	writer := tabular.NewWriter()
	pipeline := app.NewPipeline(store, extractor, writer, cfg.InputBucket, cfg.OutputBucket, cfg.WorkDir, log)
	worker := app.NewWorker(source, pipeline, cfg.BatchSize, cfg.VisibilityTimeout, cfg.WaitTime, log)

	return &Service{
		log:        log,
		worker:     worker,
		source:     source,
		httpServer: runtime.NewHTTPServer(cfg),
	}, nil
}

// Start runs the worker loop and the operational HTTP server until
// SIGINT/SIGTERM. An item in flight at termination is simply abandoned; the
// broker redelivers it once its visibility lapses.
func (s *Service) Start(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	workerErr := make(chan error, 1)
	go func() {
		workerErr <- s.worker.Run(ctx)
	}()

	select {
	case <-ctx.Done():
	case err := <-workerErr:
		if err != nil && !errors.Is(err, context.Canceled) {
			s.shutdown()
			return err
		}
	}

	s.log.Info().Msg("shutting down")
	s.shutdown()
	s.log.Info().Msg("worker stopped")
	return nil
}

func (s *Service) shutdown() {
	timeoutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(timeoutCtx); err != nil {
		s.log.Error().Err(err).Msg("http shutdown")
	}
	if err := s.source.Close(); err != nil {
		s.log.Error().Err(err).Msg("queue close")
	}
}

func newLogger(cfg config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	return zerolog.New(os.Stdout).Level(level).With().
		Timestamp().
		Str("service", "elevate-extract").
		Logger()
}
