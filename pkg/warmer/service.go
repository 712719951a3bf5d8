package warmer

import (
	"context"
	"fmt"

	"github.com/ethpandaops/aerosense/pkg/observability"
	"github.com/hibiken/asynq"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Service defines the public interface for the warmer service
type Service interface {
	// Start runs the task server and the schedule
	Start(ctx context.Context) error
	// Stop gracefully shuts down the warmer
	Stop() error
}

type service struct {
	config    *Config
	log       logrus.FieldLogger
	redisOpt  *asynq.RedisClientOpt
	queueName string
	warmer    Warmer

	queue  *QueueManager
	server *asynq.Server
	cron   *cron.Cron
}

// NewService creates a new warmer service
func NewService(log logrus.FieldLogger, cfg *Config, redisOpt *asynq.RedisClientOpt, queueName string, warmer Warmer) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &service{
		config:    cfg,
		log:       log.WithField("service", "warmer"),
		redisOpt:  redisOpt,
		queueName: queueName,
		warmer:    warmer,
	}, nil
}

// Start initializes the task server and schedules installation refreshes
func (s *service) Start(_ context.Context) error {
	s.queue = NewQueueManager(s.redisOpt, s.queueName, s.config.TaskTimeout)

	handler := NewTaskHandler(s.log, s.warmer, s.queue)

	srv := asynq.NewServer(s.redisOpt, asynq.Config{
		Concurrency: s.config.Concurrency,
		Queues:      map[string]int{s.queueName: 1},
	})

	mux := asynq.NewServeMux()
	for taskType, handlerFunc := range handler.Routes() {
		mux.HandleFunc(taskType, handlerFunc)
	}

	if err := srv.Start(mux); err != nil {
		return fmt.Errorf("failed to start task server: %w", err)
	}

	s.server = srv

	s.cron = cron.New()
	if _, err := s.cron.AddFunc(s.config.Schedule, s.enqueue); err != nil {
		return fmt.Errorf("failed to schedule warmer: %w", err)
	}

	s.cron.Start()

	// Warm immediately rather than waiting for the first tick.
	s.enqueue()

	s.log.WithFields(logrus.Fields{
		"queue":    s.queueName,
		"schedule": s.config.Schedule,
	}).Info("Warmer service started")

	return nil
}

// Stop gracefully shuts down the warmer
func (s *service) Stop() error {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}

	if s.server != nil {
		s.server.Shutdown()
	}

	if s.queue != nil {
		if err := s.queue.Close(); err != nil {
			return fmt.Errorf("failed to close queue client: %w", err)
		}
	}

	s.log.Info("Warmer service stopped")

	return nil
}

func (s *service) enqueue() {
	pruned, err := s.queue.PruneArchived()
	if err != nil {
		s.log.WithError(err).Warn("Failed to prune archived warmer tasks")
	}

	if pruned > 0 {
		s.log.WithField("pruned", pruned).Warn("Deleted archived warmer tasks")
		observability.RecordArchivedTasksDeleted(s.queueName, pruned)
	}

	if err := s.queue.EnqueueInstallations(); err != nil {
		s.log.WithError(err).Warn("Failed to enqueue installation refresh")
	}
}

// Ensure service implements the interface
var _ Service = (*service)(nil)
