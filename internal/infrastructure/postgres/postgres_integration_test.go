//go:build integration

package postgres_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jhoicas/biztracker/internal/application/ports"
	"github.com/jhoicas/biztracker/internal/domain"
	"github.com/jhoicas/biztracker/internal/domain/entity"
	"github.com/jhoicas/biztracker/internal/infrastructure/postgres"
	"github.com/jhoicas/biztracker/pkg/config"
	"github.com/jhoicas/biztracker/pkg/measurement"
)

// startPostgres levanta un contenedor postgres:16 y devuelve su DSN.
func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "biz",
				"POSTGRES_PASSWORD": "biz",
				"POSTGRES_DB":       "biztracker",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)
	return fmt.Sprintf("postgres://biz:biz@%s:%s/biztracker?sslmode=disable", host, port.Port())
}

func TestPostgres_Relationships(t *testing.T) {
	ctx := context.Background()
	dsn := startPostgres(t)
	require.NoError(t, postgres.Migrate(dsn, zerolog.Nop()))
	require.NoError(t, postgres.Migrate(dsn, zerolog.Nop()), "segunda pasada sin cambios")

	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: dsn}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	repos := postgres.NewRepositories(pool)
	now := time.Now().UTC()
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, repos.Items.Create(ctx, &entity.Item{
			ID: id, Name: id, TrackingType: measurement.KindQuantity, PriceType: entity.PriceTypeEach,
			Quantity: decimal.NewFromInt(1), CreatedAt: now, UpdatedAt: now,
		}))
	}

	m := measurement.Descriptor{Kind: measurement.KindWeight, Value: 2, Unit: "kg"}
	rel := &entity.Relationship{
		ID: "r1", PrimaryID: "a", PrimaryType: entity.EntityItem, SecondaryID: "b", SecondaryType: entity.EntityItem,
		Type: entity.RelDerived, Measurements: &m,
	}
	require.NoError(t, repos.Relationships.Create(ctx, rel))

	dup := *rel
	dup.ID = "r2"
	assert.ErrorIs(t, repos.Relationships.Create(ctx, &dup), domain.ErrDuplicate)

	other := *rel
	other.ID, other.PrimaryID = "r3", "c"
	assert.ErrorIs(t, repos.Relationships.Create(ctx, &other), domain.ErrDerivedSourceExists)

	got, err := repos.Relationships.GetByID(ctx, "r1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.NotNil(t, got.Measurements)
	assert.Equal(t, m, *got.Measurements)

	list, err := repos.Relationships.ListBySecondary(ctx, "b", entity.EntityItem, entity.RelDerived)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	n, err := repos.Relationships.DeleteByEntity(ctx, "a", entity.EntityItem)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	missing, err := repos.Relationships.GetByID(ctx, "r1")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestPostgres_TxRollback(t *testing.T) {
	ctx := context.Background()
	dsn := startPostgres(t)
	require.NoError(t, postgres.Migrate(dsn, zerolog.Nop()))
	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: dsn}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	tx := postgres.NewTxRunner(pool)
	boom := fmt.Errorf("boom")
	err = tx.Run(ctx, func(repos ports.Repositories) error {
		now := time.Now().UTC()
		if err := repos.Purchases.Create(ctx, &entity.Purchase{ID: "p1", Supplier: "x", Date: now, Status: entity.PurchaseStatusReceived, CreatedAt: now, UpdatedAt: now}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	p, err := postgres.NewPurchaseRepository(pool).GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestPostgres_ConversionJob(t *testing.T) {
	ctx := context.Background()
	dsn := startPostgres(t)
	require.NoError(t, postgres.Migrate(dsn, zerolog.Nop()))
	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: dsn}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	jobs := postgres.NewConversionJobRepository(pool)
	now := time.Now().UTC().Truncate(time.Microsecond)
	job := &entity.ConversionJob{ID: "j1", Status: entity.JobStatusRunning, Phase: entity.EntityItem, StartedAt: now, UpdatedAt: now}
	require.NoError(t, jobs.Create(ctx, job))

	job.Progress.Items = entity.CategoryProgress{Total: 2, Processed: 2, Converted: 2}
	job.Status = entity.JobStatusCompleted
	job.CompletedAt = &now
	require.NoError(t, jobs.Save(ctx, job))

	got, err := jobs.GetByID(ctx, "j1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, entity.JobStatusCompleted, got.Status)
	assert.Equal(t, 2, got.Progress.Items.Converted)
	assert.NotNil(t, got.CompletedAt)

	assert.ErrorIs(t, jobs.Save(ctx, &entity.ConversionJob{ID: "nope"}), domain.ErrNotFound)

	orphan := &entity.ConversionJob{ID: "j2", Status: entity.JobStatusRunning, Phase: entity.EntitySale, StartedAt: now, UpdatedAt: now}
	require.NoError(t, jobs.Create(ctx, orphan))
	later := now.Add(time.Minute)
	n, err := jobs.FailRunning(ctx, "interrumpido", later)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err = jobs.GetByID(ctx, "j2")
	require.NoError(t, err)
	assert.Equal(t, entity.JobStatusFailed, got.Status)
	assert.Equal(t, "interrumpido", got.Error)
	require.NotNil(t, got.CompletedAt)
	assert.True(t, got.CompletedAt.Equal(later))

	got, err = jobs.GetByID(ctx, "j1")
	require.NoError(t, err)
	assert.Equal(t, entity.JobStatusCompleted, got.Status)
}
