package app

import (
	"fmt"
	"sync"

	accessrequestHTTP "github.com/yury-opolev/safeexchange-sub000/internal/accessrequest/http"
	accessrequestRepository "github.com/yury-opolev/safeexchange-sub000/internal/accessrequest/repository"
	accessrequestUseCase "github.com/yury-opolev/safeexchange-sub000/internal/accessrequest/usecase"
	outboxUseCase "github.com/yury-opolev/safeexchange-sub000/internal/outbox/usecase"
)

type accessRequestComponents struct {
	accessRequestRepo    accessrequestUseCase.AccessRequestRepository
	notifier             accessrequestUseCase.Notifier
	accessRequestUseCase accessrequestUseCase.AccessRequestUseCase
	accessRequestHandler *accessrequestHTTP.AccessRequestHandler

	accessRequestRepoInit    sync.Once
	notifierInit             sync.Once
	accessRequestUseCaseInit sync.Once
	accessRequestHandlerInit sync.Once
}

// AccessRequestRepository returns the access request repository based on database driver.
func (c *Container) AccessRequestRepository() (accessrequestUseCase.AccessRequestRepository, error) {
	c.accessRequestRepoInit.Do(func() {
		var err error
		c.accessRequestRepo, err = c.initAccessRequestRepository()
		if err != nil {
			c.initErrors["accessRequestRepo"] = err
		}
	})
	if storedErr, exists := c.initErrors["accessRequestRepo"]; exists {
		return nil, storedErr
	}
	return c.accessRequestRepo, nil
}

// Notifier returns the outbox-backed notifier for new access requests.
func (c *Container) Notifier() (accessrequestUseCase.Notifier, error) {
	c.notifierInit.Do(func() {
		var err error
		c.notifier, err = c.initNotifier()
		if err != nil {
			c.initErrors["notifier"] = err
		}
	})
	if storedErr, exists := c.initErrors["notifier"]; exists {
		return nil, storedErr
	}
	return c.notifier, nil
}

// AccessRequestUseCase returns the access request workflow use case.
func (c *Container) AccessRequestUseCase() (accessrequestUseCase.AccessRequestUseCase, error) {
	c.accessRequestUseCaseInit.Do(func() {
		var err error
		c.accessRequestUseCase, err = c.initAccessRequestUseCase()
		if err != nil {
			c.initErrors["accessRequestUseCase"] = err
		}
	})
	if storedErr, exists := c.initErrors["accessRequestUseCase"]; exists {
		return nil, storedErr
	}
	return c.accessRequestUseCase, nil
}

// AccessRequestHandler returns the HTTP handler for the access request workflow.
func (c *Container) AccessRequestHandler() (*accessrequestHTTP.AccessRequestHandler, error) {
	c.accessRequestHandlerInit.Do(func() {
		var err error
		c.accessRequestHandler, err = c.initAccessRequestHandler()
		if err != nil {
			c.initErrors["accessRequestHandler"] = err
		}
	})
	if storedErr, exists := c.initErrors["accessRequestHandler"]; exists {
		return nil, storedErr
	}
	return c.accessRequestHandler, nil
}

// initAccessRequestRepository creates the access request repository instance.
func (c *Container) initAccessRequestRepository() (accessrequestUseCase.AccessRequestRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for access request repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return accessrequestRepository.NewMySQLAccessRequestRepository(db), nil
	case "postgres":
		return accessrequestRepository.NewPostgreSQLAccessRequestRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initNotifier creates the notifier recording access request events in the outbox.
func (c *Container) initNotifier() (accessrequestUseCase.Notifier, error) {
	outboxRepo, err := c.OutboxRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get outbox repository for notifier: %w", err)
	}
	return outboxUseCase.NewOutboxNotifier(outboxRepo), nil
}

// initAccessRequestUseCase creates the access request workflow with its dependencies.
func (c *Container) initAccessRequestUseCase() (accessrequestUseCase.AccessRequestUseCase, error) {
	requestRepo, err := c.AccessRequestRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get access request repository for access request use case: %w", err)
	}

	authorizer, err := c.AuthorizationUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get authorization use case for access request use case: %w", err)
	}

	purger, err := c.PurgeUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get purge use case for access request use case: %w", err)
	}

	notifier, err := c.Notifier()
	if err != nil {
		return nil, fmt.Errorf("failed to get notifier for access request use case: %w", err)
	}

	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for access request use case: %w", err)
	}

	useCase := accessrequestUseCase.NewAccessRequestUseCase(
		requestRepo,
		authorizer,
		purger,
		notifier,
		txManager,
		c.Clock(),
		c.Logger(),
	)

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for access request use case: %w", err)
	}
	if businessMetrics != nil {
		useCase = accessrequestUseCase.NewAccessRequestUseCaseWithMetrics(useCase, businessMetrics)
	}

	return useCase, nil
}

// initAccessRequestHandler creates the HTTP handler for the access request workflow.
func (c *Container) initAccessRequestHandler() (*accessrequestHTTP.AccessRequestHandler, error) {
	accessRequestUseCase, err := c.AccessRequestUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get access request use case for access request handler: %w", err)
	}
	return accessrequestHTTP.NewAccessRequestHandler(accessRequestUseCase, c.Logger()), nil
}
