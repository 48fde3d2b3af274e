package app

import (
	"fmt"
	"sync"

	purgeUseCase "github.com/yury-opolev/safeexchange-sub000/internal/purge/usecase"
)

type purgeComponents struct {
	purgeUseCase purgeUseCase.PurgeUseCase

	purgeUseCaseInit sync.Once
}

// PurgeUseCase returns the purge engine.
func (c *Container) PurgeUseCase() (purgeUseCase.PurgeUseCase, error) {
	c.purgeUseCaseInit.Do(func() {
		var err error
		c.purgeUseCase, err = c.initPurgeUseCase()
		if err != nil {
			c.initErrors["purgeUseCase"] = err
		}
	})
	if storedErr, exists := c.initErrors["purgeUseCase"]; exists {
		return nil, storedErr
	}
	return c.purgeUseCase, nil
}

// initPurgeUseCase creates the purge engine with every store it tears down.
func (c *Container) initPurgeUseCase() (purgeUseCase.PurgeUseCase, error) {
	metadataRepo, err := c.MetadataRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata repository for purge use case: %w", err)
	}

	contentRepo, err := c.ContentRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get content repository for purge use case: %w", err)
	}

	chunkStore, err := c.ChunkStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get chunk store for purge use case: %w", err)
	}

	permissionRepo, err := c.PermissionRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get permission repository for purge use case: %w", err)
	}

	accessRequestRepo, err := c.AccessRequestRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get access request repository for purge use case: %w", err)
	}

	valueRepo, err := c.ValueRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get value repository for purge use case: %w", err)
	}

	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for purge use case: %w", err)
	}

	return purgeUseCase.NewPurgeUseCase(
		metadataRepo,
		contentRepo,
		chunkStore,
		permissionRepo,
		accessRequestRepo,
		valueRepo,
		txManager,
		c.Clock(),
		c.config.PurgeSweepBatchSize,
		c.config.PurgeSweepConcurrency,
		c.Logger(),
	), nil
}
