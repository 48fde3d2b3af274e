package app

import (
	"fmt"
	"sync"
	"time"

	"github.com/yury-opolev/safeexchange-sub000/internal/identity/directory"
	identityRepository "github.com/yury-opolev/safeexchange-sub000/internal/identity/repository"
	identityService "github.com/yury-opolev/safeexchange-sub000/internal/identity/service"
	identityUseCase "github.com/yury-opolev/safeexchange-sub000/internal/identity/usecase"
)

// defaultDirectoryTimeout bounds a single group directory lookup.
const defaultDirectoryTimeout = 10 * time.Second

type identityComponents struct {
	applicationRepo   identityUseCase.ApplicationRepository
	groupSnapshotRepo identityUseCase.GroupSnapshotRepository
	secretService     identityService.SecretService
	resolverUseCase   identityUseCase.ResolverUseCase
	groupUseCase      identityUseCase.GroupUseCase

	applicationRepoInit   sync.Once
	groupSnapshotRepoInit sync.Once
	secretServiceInit     sync.Once
	resolverUseCaseInit   sync.Once
	groupUseCaseInit      sync.Once
}

// ApplicationRepository returns the application repository based on database driver.
func (c *Container) ApplicationRepository() (identityUseCase.ApplicationRepository, error) {
	c.applicationRepoInit.Do(func() {
		var err error
		c.applicationRepo, err = c.initApplicationRepository()
		if err != nil {
			c.initErrors["applicationRepo"] = err
		}
	})
	if storedErr, exists := c.initErrors["applicationRepo"]; exists {
		return nil, storedErr
	}
	return c.applicationRepo, nil
}

// GroupSnapshotRepository returns the group snapshot repository based on database driver.
func (c *Container) GroupSnapshotRepository() (identityUseCase.GroupSnapshotRepository, error) {
	c.groupSnapshotRepoInit.Do(func() {
		var err error
		c.groupSnapshotRepo, err = c.initGroupSnapshotRepository()
		if err != nil {
			c.initErrors["groupSnapshotRepo"] = err
		}
	})
	if storedErr, exists := c.initErrors["groupSnapshotRepo"]; exists {
		return nil, storedErr
	}
	return c.groupSnapshotRepo, nil
}

// SecretService returns the application secret hashing service.
func (c *Container) SecretService() identityService.SecretService {
	c.secretServiceInit.Do(func() {
		c.secretService = identityService.NewSecretService()
	})
	return c.secretService
}

// ResolverUseCase returns the subject resolver use case.
func (c *Container) ResolverUseCase() (identityUseCase.ResolverUseCase, error) {
	c.resolverUseCaseInit.Do(func() {
		var err error
		c.resolverUseCase, err = c.initResolverUseCase()
		if err != nil {
			c.initErrors["resolverUseCase"] = err
		}
	})
	if storedErr, exists := c.initErrors["resolverUseCase"]; exists {
		return nil, storedErr
	}
	return c.resolverUseCase, nil
}

// GroupUseCase returns the group membership use case.
func (c *Container) GroupUseCase() (identityUseCase.GroupUseCase, error) {
	c.groupUseCaseInit.Do(func() {
		var err error
		c.groupUseCase, err = c.initGroupUseCase()
		if err != nil {
			c.initErrors["groupUseCase"] = err
		}
	})
	if storedErr, exists := c.initErrors["groupUseCase"]; exists {
		return nil, storedErr
	}
	return c.groupUseCase, nil
}

// initApplicationRepository creates the application repository instance.
func (c *Container) initApplicationRepository() (identityUseCase.ApplicationRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for application repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return identityRepository.NewMySQLApplicationRepository(db), nil
	case "postgres":
		return identityRepository.NewPostgreSQLApplicationRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initGroupSnapshotRepository creates the group snapshot repository instance.
func (c *Container) initGroupSnapshotRepository() (identityUseCase.GroupSnapshotRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for group snapshot repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return identityRepository.NewMySQLGroupSnapshotRepository(db), nil
	case "postgres":
		return identityRepository.NewPostgreSQLGroupSnapshotRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initResolverUseCase creates the subject resolver with its dependencies.
func (c *Container) initResolverUseCase() (identityUseCase.ResolverUseCase, error) {
	appRepo, err := c.ApplicationRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get application repository for resolver use case: %w", err)
	}
	return identityUseCase.NewResolverUseCase(appRepo, c.SecretService()), nil
}

// initGroupUseCase creates the group membership use case. When group
// authorization is disabled or no directory is configured the use case runs
// against a directory that reports no memberships.
func (c *Container) initGroupUseCase() (identityUseCase.GroupUseCase, error) {
	snapRepo, err := c.GroupSnapshotRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get group snapshot repository for group use case: %w", err)
	}

	var dir identityUseCase.GroupDirectory = directory.NoopDirectory{}
	if c.config.GroupAuthorizationEnabled && c.config.GroupDirectoryURL != "" {
		dir = directory.NewHTTPDirectory(c.config.GroupDirectoryURL, defaultDirectoryTimeout)
	}

	return identityUseCase.NewGroupUseCase(
		snapRepo,
		dir,
		c.Clock(),
		c.config.GroupCacheRefreshDelay,
		c.Logger(),
	), nil
}
