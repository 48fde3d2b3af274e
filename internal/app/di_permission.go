package app

import (
	"fmt"
	"sync"

	permissionHTTP "github.com/yury-opolev/safeexchange-sub000/internal/permission/http"
	permissionRepository "github.com/yury-opolev/safeexchange-sub000/internal/permission/repository"
	permissionUseCase "github.com/yury-opolev/safeexchange-sub000/internal/permission/usecase"
)

type permissionComponents struct {
	permissionRepo       permissionUseCase.PermissionRepository
	authorizationUseCase permissionUseCase.AuthorizationUseCase
	accessHandler        *permissionHTTP.AccessHandler

	permissionRepoInit       sync.Once
	authorizationUseCaseInit sync.Once
	accessHandlerInit        sync.Once
}

// PermissionRepository returns the permission repository based on database driver.
func (c *Container) PermissionRepository() (permissionUseCase.PermissionRepository, error) {
	c.permissionRepoInit.Do(func() {
		var err error
		c.permissionRepo, err = c.initPermissionRepository()
		if err != nil {
			c.initErrors["permissionRepo"] = err
		}
	})
	if storedErr, exists := c.initErrors["permissionRepo"]; exists {
		return nil, storedErr
	}
	return c.permissionRepo, nil
}

// AuthorizationUseCase returns the authorization engine.
func (c *Container) AuthorizationUseCase() (permissionUseCase.AuthorizationUseCase, error) {
	c.authorizationUseCaseInit.Do(func() {
		var err error
		c.authorizationUseCase, err = c.initAuthorizationUseCase()
		if err != nil {
			c.initErrors["authorizationUseCase"] = err
		}
	})
	if storedErr, exists := c.initErrors["authorizationUseCase"]; exists {
		return nil, storedErr
	}
	return c.authorizationUseCase, nil
}

// AccessHandler returns the HTTP handler for access management operations.
func (c *Container) AccessHandler() (*permissionHTTP.AccessHandler, error) {
	c.accessHandlerInit.Do(func() {
		var err error
		c.accessHandler, err = c.initAccessHandler()
		if err != nil {
			c.initErrors["accessHandler"] = err
		}
	})
	if storedErr, exists := c.initErrors["accessHandler"]; exists {
		return nil, storedErr
	}
	return c.accessHandler, nil
}

// initPermissionRepository creates the permission repository instance.
func (c *Container) initPermissionRepository() (permissionUseCase.PermissionRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for permission repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return permissionRepository.NewMySQLPermissionRepository(db), nil
	case "postgres":
		return permissionRepository.NewPostgreSQLPermissionRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initAuthorizationUseCase creates the authorization engine with its dependencies.
func (c *Container) initAuthorizationUseCase() (permissionUseCase.AuthorizationUseCase, error) {
	permissionRepo, err := c.PermissionRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get permission repository for authorization use case: %w", err)
	}

	groupUseCase, err := c.GroupUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get group use case for authorization use case: %w", err)
	}

	purger, err := c.PurgeUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get purge use case for authorization use case: %w", err)
	}

	useCase := permissionUseCase.NewAuthorizationUseCase(
		permissionRepo,
		groupUseCase,
		purger,
		c.config.GroupAuthorizationEnabled,
	)

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for authorization use case: %w", err)
	}
	if businessMetrics != nil {
		useCase = permissionUseCase.NewAuthorizationUseCaseWithMetrics(useCase, businessMetrics)
	}

	return useCase, nil
}

// initAccessHandler creates the HTTP handler for access management operations.
func (c *Container) initAccessHandler() (*permissionHTTP.AccessHandler, error) {
	authorizationUseCase, err := c.AuthorizationUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get authorization use case for access handler: %w", err)
	}
	return permissionHTTP.NewAccessHandler(authorizationUseCase, c.Logger()), nil
}
