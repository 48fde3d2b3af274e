package app

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"

	"gocloud.dev/secrets"

	"github.com/yury-opolev/safeexchange-sub000/internal/blobstore"
	secretHTTP "github.com/yury-opolev/safeexchange-sub000/internal/secret/http"
	secretRepository "github.com/yury-opolev/safeexchange-sub000/internal/secret/repository"
	secretUseCase "github.com/yury-opolev/safeexchange-sub000/internal/secret/usecase"
	vaultRepository "github.com/yury-opolev/safeexchange-sub000/internal/vault/repository"
	vaultService "github.com/yury-opolev/safeexchange-sub000/internal/vault/service"
	vaultUseCase "github.com/yury-opolev/safeexchange-sub000/internal/vault/usecase"
)

type secretComponents struct {
	metadataRepo    secretUseCase.MetadataRepository
	contentRepo     secretUseCase.ContentRepository
	chunkStore      *blobstore.EncryptedBucket
	valueRepo       vaultUseCase.ValueRepository
	vaultKeeper     *secrets.Keeper
	valueUseCase    vaultUseCase.ValueUseCase
	metadataUseCase secretUseCase.MetadataUseCase
	contentUseCase  secretUseCase.ContentUseCase
	secretHandler   *secretHTTP.SecretHandler

	metadataRepoInit    sync.Once
	contentRepoInit     sync.Once
	chunkStoreInit      sync.Once
	valueRepoInit       sync.Once
	vaultKeeperInit     sync.Once
	valueUseCaseInit    sync.Once
	metadataUseCaseInit sync.Once
	contentUseCaseInit  sync.Once
	secretHandlerInit   sync.Once
}

// MetadataRepository returns the secret object repository based on database driver.
func (c *Container) MetadataRepository() (secretUseCase.MetadataRepository, error) {
	c.metadataRepoInit.Do(func() {
		var err error
		c.metadataRepo, err = c.initMetadataRepository()
		if err != nil {
			c.initErrors["metadataRepo"] = err
		}
	})
	if storedErr, exists := c.initErrors["metadataRepo"]; exists {
		return nil, storedErr
	}
	return c.metadataRepo, nil
}

// ContentRepository returns the content and chunk repository based on database driver.
func (c *Container) ContentRepository() (secretUseCase.ContentRepository, error) {
	c.contentRepoInit.Do(func() {
		var err error
		c.contentRepo, err = c.initContentRepository()
		if err != nil {
			c.initErrors["contentRepo"] = err
		}
	})
	if storedErr, exists := c.initErrors["contentRepo"]; exists {
		return nil, storedErr
	}
	return c.contentRepo, nil
}

// ChunkStore returns the encrypted blob bucket holding chunk payloads.
func (c *Container) ChunkStore() (*blobstore.EncryptedBucket, error) {
	c.chunkStoreInit.Do(func() {
		var err error
		c.chunkStore, err = c.initChunkStore()
		if err != nil {
			c.initErrors["chunkStore"] = err
		}
	})
	if storedErr, exists := c.initErrors["chunkStore"]; exists {
		return nil, storedErr
	}
	return c.chunkStore, nil
}

// ValueRepository returns the legacy vault value repository based on database driver.
func (c *Container) ValueRepository() (vaultUseCase.ValueRepository, error) {
	c.valueRepoInit.Do(func() {
		var err error
		c.valueRepo, err = c.initValueRepository()
		if err != nil {
			c.initErrors["valueRepo"] = err
		}
	})
	if storedErr, exists := c.initErrors["valueRepo"]; exists {
		return nil, storedErr
	}
	return c.valueRepo, nil
}

// VaultKeeper returns the envelope encryption keeper for legacy vault values.
func (c *Container) VaultKeeper() (*secrets.Keeper, error) {
	c.vaultKeeperInit.Do(func() {
		var err error
		c.vaultKeeper, err = vaultService.OpenKeeper(context.Background(), c.config.VaultKeeperURI)
		if err != nil {
			c.initErrors["vaultKeeper"] = err
		}
	})
	if storedErr, exists := c.initErrors["vaultKeeper"]; exists {
		return nil, storedErr
	}
	return c.vaultKeeper, nil
}

// ValueUseCase returns the legacy vault value use case.
func (c *Container) ValueUseCase() (vaultUseCase.ValueUseCase, error) {
	c.valueUseCaseInit.Do(func() {
		var err error
		c.valueUseCase, err = c.initValueUseCase()
		if err != nil {
			c.initErrors["valueUseCase"] = err
		}
	})
	if storedErr, exists := c.initErrors["valueUseCase"]; exists {
		return nil, storedErr
	}
	return c.valueUseCase, nil
}

// MetadataUseCase returns the secret metadata use case.
func (c *Container) MetadataUseCase() (secretUseCase.MetadataUseCase, error) {
	c.metadataUseCaseInit.Do(func() {
		var err error
		c.metadataUseCase, err = c.initMetadataUseCase()
		if err != nil {
			c.initErrors["metadataUseCase"] = err
		}
	})
	if storedErr, exists := c.initErrors["metadataUseCase"]; exists {
		return nil, storedErr
	}
	return c.metadataUseCase, nil
}

// ContentUseCase returns the content and chunk transfer use case.
func (c *Container) ContentUseCase() (secretUseCase.ContentUseCase, error) {
	c.contentUseCaseInit.Do(func() {
		var err error
		c.contentUseCase, err = c.initContentUseCase()
		if err != nil {
			c.initErrors["contentUseCase"] = err
		}
	})
	if storedErr, exists := c.initErrors["contentUseCase"]; exists {
		return nil, storedErr
	}
	return c.contentUseCase, nil
}

// SecretHandler returns the HTTP handler for secret and content operations.
func (c *Container) SecretHandler() (*secretHTTP.SecretHandler, error) {
	c.secretHandlerInit.Do(func() {
		var err error
		c.secretHandler, err = c.initSecretHandler()
		if err != nil {
			c.initErrors["secretHandler"] = err
		}
	})
	if storedErr, exists := c.initErrors["secretHandler"]; exists {
		return nil, storedErr
	}
	return c.secretHandler, nil
}

// initMetadataRepository creates the secret object repository instance.
func (c *Container) initMetadataRepository() (secretUseCase.MetadataRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for metadata repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return secretRepository.NewMySQLMetadataRepository(db), nil
	case "postgres":
		return secretRepository.NewPostgreSQLMetadataRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initContentRepository creates the content and chunk repository instance.
func (c *Container) initContentRepository() (secretUseCase.ContentRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for content repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return secretRepository.NewMySQLContentRepository(db), nil
	case "postgres":
		return secretRepository.NewPostgreSQLContentRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initChunkStore opens the blob bucket and wraps it with chunk payload encryption.
func (c *Container) initChunkStore() (*blobstore.EncryptedBucket, error) {
	key, err := base64.StdEncoding.DecodeString(c.config.ChunkEncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode chunk encryption key: %w", err)
	}
	bucket, err := blobstore.NewEncryptedBucket(context.Background(), c.config.ChunkBucketURL, key)
	if err != nil {
		return nil, fmt.Errorf("failed to open chunk bucket: %w", err)
	}
	return bucket, nil
}

// initValueRepository creates the legacy vault value repository instance.
func (c *Container) initValueRepository() (vaultUseCase.ValueRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for value repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return vaultRepository.NewMySQLValueRepository(db), nil
	case "postgres":
		return vaultRepository.NewPostgreSQLValueRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initValueUseCase creates the legacy vault value use case.
func (c *Container) initValueUseCase() (vaultUseCase.ValueUseCase, error) {
	valueRepo, err := c.ValueRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get value repository for value use case: %w", err)
	}

	keeper, err := c.VaultKeeper()
	if err != nil {
		return nil, fmt.Errorf("failed to get vault keeper for value use case: %w", err)
	}

	return vaultUseCase.NewValueUseCase(valueRepo, keeper, c.Clock(), c.Logger()), nil
}

// initMetadataUseCase creates the secret metadata use case with its dependencies.
func (c *Container) initMetadataUseCase() (secretUseCase.MetadataUseCase, error) {
	metadataRepo, err := c.MetadataRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata repository for metadata use case: %w", err)
	}

	contentRepo, err := c.ContentRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get content repository for metadata use case: %w", err)
	}

	valueStore, err := c.ValueUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get value use case for metadata use case: %w", err)
	}

	authorizer, err := c.AuthorizationUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get authorization use case for metadata use case: %w", err)
	}

	purger, err := c.PurgeUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get purge use case for metadata use case: %w", err)
	}

	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for metadata use case: %w", err)
	}

	useCase := secretUseCase.NewMetadataUseCase(
		metadataRepo,
		contentRepo,
		valueStore,
		authorizer,
		purger,
		txManager,
		c.Clock(),
		c.Logger(),
	)

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for metadata use case: %w", err)
	}
	if businessMetrics != nil {
		useCase = secretUseCase.NewMetadataUseCaseWithMetrics(useCase, businessMetrics)
	}

	return useCase, nil
}

// initContentUseCase creates the content and chunk transfer use case with its dependencies.
func (c *Container) initContentUseCase() (secretUseCase.ContentUseCase, error) {
	metadataRepo, err := c.MetadataRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata repository for content use case: %w", err)
	}

	contentRepo, err := c.ContentRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get content repository for content use case: %w", err)
	}

	chunkStore, err := c.ChunkStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get chunk store for content use case: %w", err)
	}

	authorizer, err := c.AuthorizationUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get authorization use case for content use case: %w", err)
	}

	purger, err := c.PurgeUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get purge use case for content use case: %w", err)
	}

	useCase := secretUseCase.NewContentUseCase(
		metadataRepo,
		contentRepo,
		chunkStore,
		authorizer,
		purger,
		c.Clock(),
		c.config.AccessTicketTimeout,
		c.config.ChunkMaxSizeBytes,
		c.Logger(),
	)

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for content use case: %w", err)
	}
	if businessMetrics != nil {
		useCase = secretUseCase.NewContentUseCaseWithMetrics(useCase, businessMetrics)
	}

	return useCase, nil
}

// initSecretHandler creates the HTTP handler for secret and content operations.
func (c *Container) initSecretHandler() (*secretHTTP.SecretHandler, error) {
	metadataUseCase, err := c.MetadataUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata use case for secret handler: %w", err)
	}

	contentUseCase, err := c.ContentUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get content use case for secret handler: %w", err)
	}

	return secretHTTP.NewSecretHandler(metadataUseCase, contentUseCase, c.config.ChunkMaxSizeBytes, c.Logger()), nil
}
