package storage_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/gkai/internal/migrations"
	"github.com/magabrotheeeer/gkai/internal/models"
	"github.com/magabrotheeeer/gkai/internal/storage"
)

// setupTestStorage поднимает PostgreSQL в контейнере и накатывает миграции.
func setupTestStorage(t *testing.T) *storage.Storage {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err, "failed to start container")
	t.Cleanup(func() {
		if err := pgContainer.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	st, err := storage.New(ctx, dsn)
	require.NoError(t, err, "failed to create storage")
	t.Cleanup(func() { _ = st.Close() })

	root, err := filepath.Abs("../..")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(st.DB, filepath.Join(root, "migrations")))

	return st
}

// newTestUser возвращает пользователя, готового к сохранению.
func newTestUser(email, username string) models.User {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return models.User{
		UUID:         uuid.NewString(),
		Email:        email,
		Username:     username,
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuuQ7b0Q6q8wqz1yW7q8x1Q0n5lY1Yk2a",
		Role:         models.RoleUser,
		CreatedAt:    now,
		LastLogin:    &now,
	}
}

// createUser сохраняет пользователя со статистикой по умолчанию.
func createUser(t *testing.T, st *storage.Storage, u models.User) string {
	t.Helper()
	id, err := st.CreateUser(context.Background(), u, models.NewUserStats(u.UUID))
	require.NoError(t, err)
	return id
}
