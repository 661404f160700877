package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tuanvle/dacsan-backend/pkg/config"
	"github.com/tuanvle/dacsan-backend/pkg/db/models"
	"github.com/tuanvle/dacsan-backend/pkg/logger"
	"github.com/tuanvle/dacsan-backend/pkg/outbox/registry"
)

type dbClient interface {
	Ping(ctx context.Context) error
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type pubSubClient interface {
	Ping(ctx context.Context) error
}

type outboxRepository interface {
	FetchUnpublishedForPublish(tx *gorm.DB, limit, maxAttempts int) ([]models.OutboxEvent, error)
	MarkPublishedTx(tx *gorm.DB, id uuid.UUID) error
	MarkFailedTx(tx *gorm.DB, id uuid.UUID, cause error) error
	MarkTerminalTx(tx *gorm.DB, id uuid.UUID, cause error, terminalAttempts int) error
}

type registryResolver interface {
	Resolve(event models.OutboxEvent) (*registry.ResolvedEvent, error)
}

type publisherFactory interface {
	Publisher(topic string) publisher
}

type publisher interface {
	Publish(ctx context.Context, data []byte, attributes map[string]string) publishResult
}

type publishResult interface {
	Get(ctx context.Context) (string, error)
}

// Service drains the outbox table into Pub/Sub. Rows are locked and
// published inside a transaction per batch so a crashed publisher never
// loses or double-marks a row it did not finish.
type Service struct {
	db         dbClient
	pubsub     pubSubClient
	repo       outboxRepository
	registry   registryResolver
	publishers publisherFactory
	logg       *logger.Logger

	batchSize    int
	pollInterval time.Duration
	maxAttempts  int
}

// ServiceParams carries the publisher dependencies.
type ServiceParams struct {
	DB         dbClient
	PubSub     pubSubClient
	Repo       outboxRepository
	Registry   registryResolver
	Publishers publisherFactory
	Logger     *logger.Logger
	Outbox     config.OutboxConfig
}

// NewService validates the wiring and builds the publisher loop.
func NewService(params ServiceParams) (*Service, error) {
	if params.DB == nil {
		return nil, errors.New("db client is required")
	}
	if params.PubSub == nil {
		return nil, errors.New("pubsub client is required")
	}
	if params.Repo == nil {
		return nil, errors.New("outbox repository is required")
	}
	if params.Registry == nil {
		return nil, errors.New("event registry is required")
	}
	if params.Publishers == nil {
		return nil, errors.New("publisher factory is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}

	batchSize := params.Outbox.BatchSize
	if batchSize <= 0 {
		batchSize = 50
	}
	pollMS := params.Outbox.PollIntervalMS
	if pollMS <= 0 {
		pollMS = 500
	}
	maxAttempts := params.Outbox.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 10
	}

	return &Service{
		db:           params.DB,
		pubsub:       params.PubSub,
		repo:         params.Repo,
		registry:     params.Registry,
		publishers:   params.Publishers,
		logg:         params.Logger,
		batchSize:    batchSize,
		pollInterval: time.Duration(pollMS) * time.Millisecond,
		maxAttempts:  maxAttempts,
	}, nil
}

// Run polls until the context is cancelled. An empty batch sleeps for the
// poll interval plus jitter; a full batch polls again immediately.
func (s *Service) Run(ctx context.Context) error {
	ctx = s.logg.WithFields(ctx, map[string]any{
		"batch_size":    s.batchSize,
		"poll_interval": s.pollInterval.String(),
		"max_attempts":  s.maxAttempts,
	})
	s.logg.Info(ctx, "outbox publisher started")

	backoff := s.pollInterval

	for {
		select {
		case <-ctx.Done():
			s.logg.Info(ctx, "outbox publisher stopped")
			return ctx.Err()
		default:
		}

		if err := s.ensureReadiness(ctx); err != nil {
			s.logg.Error(ctx, "dependency not ready", err)
			backoff = s.nextBackoff(backoff)
			sleepCtx(ctx, withJitter(backoff))
			continue
		}

		processed, err := s.processBatch(ctx)
		if err != nil {
			s.logg.Error(ctx, "batch failed", err)
			backoff = s.nextBackoff(backoff)
			sleepCtx(ctx, withJitter(backoff))
			continue
		}

		backoff = s.pollInterval
		if processed == s.batchSize {
			continue
		}
		sleepCtx(ctx, withJitter(s.pollInterval))
	}
}

func (s *Service) ensureReadiness(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.db.Ping(pingCtx); err != nil {
		return fmt.Errorf("database ping: %w", err)
	}
	if err := s.pubsub.Ping(pingCtx); err != nil {
		return fmt.Errorf("pubsub ping: %w", err)
	}
	return nil
}

// processBatch locks a batch of unpublished rows and publishes them one by
// one, marking each row published, failed or terminal before commit.
func (s *Service) processBatch(ctx context.Context) (int, error) {
	processed := 0
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := s.repo.FetchUnpublishedForPublish(tx, s.batchSize, s.maxAttempts)
		if err != nil {
			return fmt.Errorf("fetching outbox rows: %w", err)
		}
		processed = len(rows)

		for _, row := range rows {
			if err := s.processRow(ctx, tx, row); err != nil {
				return err
			}
		}
		return nil
	})
	return processed, err
}

func (s *Service) processRow(ctx context.Context, tx *gorm.DB, row models.OutboxEvent) error {
	rowCtx := s.logg.WithFields(ctx, map[string]any{
		"event_id":       row.ID.String(),
		"event_type":     row.EventType,
		"aggregate_type": row.AggregateType,
		"aggregate_id":   row.AggregateID.String(),
		"attempt_count":  row.AttemptCount,
	})

	resolved, err := s.registry.Resolve(row)
	if err != nil {
		var nonRetryable registry.NonRetryableError
		if errors.As(err, &nonRetryable) {
			s.logg.Warn(rowCtx, "unpublishable event parked")
			return s.repo.MarkTerminalTx(tx, row.ID, err, s.maxAttempts)
		}
		s.logg.Error(rowCtx, "resolve failed", err)
		return s.repo.MarkFailedTx(tx, row.ID, err)
	}

	if err := s.publish(ctx, resolved.Descriptor.Topic, row); err != nil {
		s.logg.Error(rowCtx, "publish failed", err)
		if row.AttemptCount+1 >= s.maxAttempts {
			s.logg.Warn(rowCtx, "event reached max attempts")
			return s.repo.MarkTerminalTx(tx, row.ID, err, s.maxAttempts)
		}
		return s.repo.MarkFailedTx(tx, row.ID, err)
	}

	if err := s.repo.MarkPublishedTx(tx, row.ID); err != nil {
		return fmt.Errorf("marking event published: %w", err)
	}
	s.logg.Info(rowCtx, "event published")
	return nil
}

func (s *Service) publish(ctx context.Context, topic string, row models.OutboxEvent) error {
	pub := s.publishers.Publisher(topic)
	if pub == nil {
		return fmt.Errorf("no publisher for topic %q", topic)
	}

	publishCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	result := pub.Publish(publishCtx, row.Payload, map[string]string{
		"event_id":       row.ID.String(),
		"event_type":     string(row.EventType),
		"aggregate_type": string(row.AggregateType),
		"aggregate_id":   row.AggregateID.String(),
		"created_at":     row.CreatedAt.UTC().Format(time.RFC3339Nano),
	})
	if _, err := result.Get(publishCtx); err != nil {
		return fmt.Errorf("publishing to %s: %w", topic, err)
	}
	return nil
}

func (s *Service) nextBackoff(current time.Duration) time.Duration {
	next := current * 2
	if next > 10*time.Second {
		next = 10 * time.Second
	}
	if next < s.pollInterval {
		next = s.pollInterval
	}
	return next
}

func withJitter(d time.Duration) time.Duration {
	return d + time.Duration(rand.Int63n(int64(250*time.Millisecond)))
}

// sleepCtx waits for d or until the context is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// gcpPublisherFactory adapts the shared pubsub client to the factory
// interface so tests can swap in fakes.
type gcpPublisherFactory struct {
	client interface {
		Publisher(name string) *gcppubsub.Publisher
	}
}

func (f gcpPublisherFactory) Publisher(topic string) publisher {
	p := f.client.Publisher(topic)
	if p == nil {
		return nil
	}
	return gcpPublisher{inner: p}
}

type gcpPublisher struct {
	inner *gcppubsub.Publisher
}

func (p gcpPublisher) Publish(ctx context.Context, data []byte, attributes map[string]string) publishResult {
	return p.inner.Publish(ctx, &gcppubsub.Message{
		Data:       data,
		Attributes: attributes,
	})
}
