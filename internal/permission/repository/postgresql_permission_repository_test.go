package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/yury-opolev/safeexchange-sub000/internal/errors"
	identityDomain "github.com/yury-opolev/safeexchange-sub000/internal/identity/domain"
	permissionDomain "github.com/yury-opolev/safeexchange-sub000/internal/permission/domain"
	"github.com/yury-opolev/safeexchange-sub000/internal/testutil"
)

func TestPostgreSQLPermissionRepository_Grant(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLPermissionRepository(db)
	ctx := context.Background()

	testutil.CreateTestSecretObject(t, db, "postgres", "payments-db-password")

	perm := &permissionDomain.SubjectPermissions{
		SecretName:  "payments-db-password",
		SubjectType: identityDomain.SubjectTypeUser,
		SubjectID:   "alice",
		SubjectName: "Alice",
		Mask:        permissionDomain.Read,
	}
	err := repo.Grant(ctx, perm)
	require.NoError(t, err)

	got, err := repo.Get(ctx, "payments-db-password", identityDomain.SubjectTypeUser, "alice")
	require.NoError(t, err)
	assert.Equal(t, permissionDomain.Read, got.Mask)
	assert.Equal(t, "Alice", got.SubjectName)
}

func TestPostgreSQLPermissionRepository_Grant_MergesBits(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLPermissionRepository(db)
	ctx := context.Background()

	testutil.CreateTestSecretObject(t, db, "postgres", "payments-db-password")

	perm := &permissionDomain.SubjectPermissions{
		SecretName:  "payments-db-password",
		SubjectType: identityDomain.SubjectTypeUser,
		SubjectID:   "alice",
		SubjectName: "Alice",
		Mask:        permissionDomain.Read,
	}
	require.NoError(t, repo.Grant(ctx, perm))

	// Granting again ORs new bits into the existing row instead of replacing it.
	perm.Mask = permissionDomain.Write | permissionDomain.GrantAccess
	require.NoError(t, repo.Grant(ctx, perm))

	got, err := repo.Get(ctx, "payments-db-password", identityDomain.SubjectTypeUser, "alice")
	require.NoError(t, err)
	assert.Equal(t, permissionDomain.Read|permissionDomain.Write|permissionDomain.GrantAccess, got.Mask)

	// Still a single row for the subject.
	var count int
	err = db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM subject_permissions WHERE secret_name = $1`,
		"payments-db-password",
	).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestPostgreSQLPermissionRepository_Revoke(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLPermissionRepository(db)
	ctx := context.Background()

	testutil.CreateTestSecretObject(t, db, "postgres", "payments-db-password")

	perm := &permissionDomain.SubjectPermissions{
		SecretName:  "payments-db-password",
		SubjectType: identityDomain.SubjectTypeUser,
		SubjectID:   "alice",
		SubjectName: "Alice",
		Mask:        permissionDomain.Read | permissionDomain.Write,
	}
	require.NoError(t, repo.Grant(ctx, perm))

	err := repo.Revoke(ctx, "payments-db-password", identityDomain.SubjectTypeUser, "alice", permissionDomain.Write)
	require.NoError(t, err)

	got, err := repo.Get(ctx, "payments-db-password", identityDomain.SubjectTypeUser, "alice")
	require.NoError(t, err)
	assert.Equal(t, permissionDomain.Read, got.Mask)
}

func TestPostgreSQLPermissionRepository_Revoke_RemovesEmptyRow(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLPermissionRepository(db)
	ctx := context.Background()

	testutil.CreateTestSecretObject(t, db, "postgres", "payments-db-password")

	perm := &permissionDomain.SubjectPermissions{
		SecretName:  "payments-db-password",
		SubjectType: identityDomain.SubjectTypeGroup,
		SubjectID:   "sre",
		SubjectName: "SRE",
		Mask:        permissionDomain.Read,
	}
	require.NoError(t, repo.Grant(ctx, perm))

	err := repo.Revoke(ctx, "payments-db-password", identityDomain.SubjectTypeGroup, "sre", permissionDomain.Read)
	require.NoError(t, err)

	_, err = repo.Get(ctx, "payments-db-password", identityDomain.SubjectTypeGroup, "sre")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestPostgreSQLPermissionRepository_Revoke_MissingRowIsNoop(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLPermissionRepository(db)
	ctx := context.Background()

	testutil.CreateTestSecretObject(t, db, "postgres", "payments-db-password")

	err := repo.Revoke(ctx, "payments-db-password", identityDomain.SubjectTypeUser, "nobody", permissionDomain.Full)
	assert.NoError(t, err)
}

func TestPostgreSQLPermissionRepository_ListBySecret(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLPermissionRepository(db)
	ctx := context.Background()

	testutil.CreateTestSecretObject(t, db, "postgres", "payments-db-password")
	testutil.CreateTestSecretObject(t, db, "postgres", "other-secret")

	perms := []*permissionDomain.SubjectPermissions{
		{SecretName: "payments-db-password", SubjectType: identityDomain.SubjectTypeUser, SubjectID: "alice", SubjectName: "Alice", Mask: permissionDomain.Full},
		{SecretName: "payments-db-password", SubjectType: identityDomain.SubjectTypeGroup, SubjectID: "sre", SubjectName: "SRE", Mask: permissionDomain.Read},
		{SecretName: "other-secret", SubjectType: identityDomain.SubjectTypeUser, SubjectID: "alice", SubjectName: "Alice", Mask: permissionDomain.Read},
	}
	for _, p := range perms {
		require.NoError(t, repo.Grant(ctx, p))
	}

	got, err := repo.ListBySecret(ctx, "payments-db-password")
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, p := range got {
		assert.Equal(t, "payments-db-password", p.SecretName)
	}
}

func TestPostgreSQLPermissionRepository_ListBySubject(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLPermissionRepository(db)
	ctx := context.Background()

	testutil.CreateTestSecretObject(t, db, "postgres", "payments-db-password")
	testutil.CreateTestSecretObject(t, db, "postgres", "other-secret")

	perms := []*permissionDomain.SubjectPermissions{
		{SecretName: "payments-db-password", SubjectType: identityDomain.SubjectTypeUser, SubjectID: "alice", SubjectName: "Alice", Mask: permissionDomain.Full},
		{SecretName: "other-secret", SubjectType: identityDomain.SubjectTypeUser, SubjectID: "alice", SubjectName: "Alice", Mask: permissionDomain.Read},
		{SecretName: "other-secret", SubjectType: identityDomain.SubjectTypeUser, SubjectID: "bob", SubjectName: "Bob", Mask: permissionDomain.Read},
	}
	for _, p := range perms {
		require.NoError(t, repo.Grant(ctx, p))
	}

	got, err := repo.ListBySubject(ctx, identityDomain.SubjectTypeUser, "alice")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "other-secret", got[0].SecretName)
	assert.Equal(t, "payments-db-password", got[1].SecretName)
}

func TestPostgreSQLPermissionRepository_DeleteBySecret(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLPermissionRepository(db)
	ctx := context.Background()

	testutil.CreateTestSecretObject(t, db, "postgres", "payments-db-password")

	perms := []*permissionDomain.SubjectPermissions{
		{SecretName: "payments-db-password", SubjectType: identityDomain.SubjectTypeUser, SubjectID: "alice", SubjectName: "Alice", Mask: permissionDomain.Full},
		{SecretName: "payments-db-password", SubjectType: identityDomain.SubjectTypeGroup, SubjectID: "sre", SubjectName: "SRE", Mask: permissionDomain.Read},
	}
	for _, p := range perms {
		require.NoError(t, repo.Grant(ctx, p))
	}

	err := repo.DeleteBySecret(ctx, "payments-db-password")
	require.NoError(t, err)

	got, err := repo.ListBySecret(ctx, "payments-db-password")
	require.NoError(t, err)
	assert.Empty(t, got)
}
