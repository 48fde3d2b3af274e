package app

import (
	"fmt"
	"net/http"
	"sync"

	outboxRepository "github.com/yury-opolev/safeexchange-sub000/internal/outbox/repository"
	outboxUseCase "github.com/yury-opolev/safeexchange-sub000/internal/outbox/usecase"
)

type outboxComponents struct {
	outboxRepo     outboxUseCase.OutboxEventRepository
	eventProcessor outboxUseCase.EventProcessor
	outboxUseCase  *outboxUseCase.OutboxUseCase

	outboxRepoInit     sync.Once
	eventProcessorInit sync.Once
	outboxUseCaseInit  sync.Once
}

// OutboxRepository returns the outbox event repository based on database driver.
func (c *Container) OutboxRepository() (outboxUseCase.OutboxEventRepository, error) {
	c.outboxRepoInit.Do(func() {
		var err error
		c.outboxRepo, err = c.initOutboxRepository()
		if err != nil {
			c.initErrors["outboxRepo"] = err
		}
	})
	if storedErr, exists := c.initErrors["outboxRepo"]; exists {
		return nil, storedErr
	}
	return c.outboxRepo, nil
}

// EventProcessor returns the webhook delivery processor for outbox events.
func (c *Container) EventProcessor() (outboxUseCase.EventProcessor, error) {
	c.eventProcessorInit.Do(func() {
		var err error
		c.eventProcessor, err = c.initEventProcessor()
		if err != nil {
			c.initErrors["eventProcessor"] = err
		}
	})
	if storedErr, exists := c.initErrors["eventProcessor"]; exists {
		return nil, storedErr
	}
	return c.eventProcessor, nil
}

// OutboxUseCase returns the outbox polling worker.
func (c *Container) OutboxUseCase() (*outboxUseCase.OutboxUseCase, error) {
	c.outboxUseCaseInit.Do(func() {
		var err error
		c.outboxUseCase, err = c.initOutboxUseCase()
		if err != nil {
			c.initErrors["outboxUseCase"] = err
		}
	})
	if storedErr, exists := c.initErrors["outboxUseCase"]; exists {
		return nil, storedErr
	}
	return c.outboxUseCase, nil
}

// initOutboxRepository creates the outbox event repository instance.
func (c *Container) initOutboxRepository() (outboxUseCase.OutboxEventRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for outbox repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return outboxRepository.NewMySQLOutboxEventRepository(db), nil
	case "postgres":
		return outboxRepository.NewPostgreSQLOutboxEventRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initEventProcessor creates the webhook delivery processor.
func (c *Container) initEventProcessor() (outboxUseCase.EventProcessor, error) {
	if c.config.NotificationWebhookURL == "" {
		return nil, fmt.Errorf("notification webhook url is not configured")
	}
	client := &http.Client{Timeout: c.config.NotificationWebhookTimeout}
	return outboxUseCase.NewWebhookEventProcessor(client, c.config.NotificationWebhookURL, c.Logger()), nil
}

// initOutboxUseCase creates the outbox polling worker with its dependencies.
func (c *Container) initOutboxUseCase() (*outboxUseCase.OutboxUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for outbox use case: %w", err)
	}

	outboxRepo, err := c.OutboxRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get outbox repository for outbox use case: %w", err)
	}

	eventProcessor, err := c.EventProcessor()
	if err != nil {
		return nil, fmt.Errorf("failed to get event processor for outbox use case: %w", err)
	}

	return outboxUseCase.NewOutboxUseCase(
		outboxUseCase.Config{
			Interval:   c.config.WorkerInterval,
			BatchSize:  c.config.WorkerBatchSize,
			MaxRetries: c.config.WorkerMaxRetries,
		},
		txManager,
		outboxRepo,
		eventProcessor,
		c.Clock(),
		c.Logger(),
	), nil
}
