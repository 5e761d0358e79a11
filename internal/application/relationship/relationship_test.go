package relationship_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/biztracker/internal/application/dto"
	"github.com/jhoicas/biztracker/internal/application/relationship"
	"github.com/jhoicas/biztracker/internal/domain"
	"github.com/jhoicas/biztracker/internal/domain/entity"
	"github.com/jhoicas/biztracker/internal/infrastructure/memory"
	"github.com/jhoicas/biztracker/pkg/measurement"
)

type fixture struct {
	store  *memory.Store
	rels   *relationship.Store
	conv   *relationship.Converter
	runner *relationship.JobRunner
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ms := memory.NewStore()
	repos := ms.Repositories()
	log := zerolog.Nop()
	conv := relationship.NewConverter(repos, log)
	return &fixture{
		store:  ms,
		rels:   relationship.NewStore(repos, log),
		conv:   conv,
		runner: relationship.NewJobRunner(conv, repos, ms.Jobs(), log),
	}
}

func (f *fixture) item(t *testing.T, it entity.Item) {
	t.Helper()
	require.NoError(t, f.store.Items().Create(context.Background(), &it))
}

func TestStore_CreateYConsultas(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.item(t, entity.Item{ID: "prod", Name: "Mesa"})
	f.item(t, entity.Item{ID: "wood", Name: "Madera"})

	m := measurement.Descriptor{Kind: measurement.KindLength, Value: 2, Unit: "m"}
	rel, err := f.rels.LinkProductMaterial(ctx, "prod", "wood", dto.LinkRequest{Measurements: &m})
	require.NoError(t, err)
	assert.Equal(t, entity.RelProductMaterial, rel.Type)
	assert.Equal(t, entity.EntityItem, rel.PrimaryType)

	components, err := f.rels.ByPrimary(ctx, "prod", entity.EntityItem, entity.RelProductMaterial)
	require.NoError(t, err)
	require.Len(t, components, 1)
	assert.Equal(t, "wood", components[0].SecondaryID)

	users, err := f.rels.BySecondary(ctx, "wood", entity.EntityItem, "")
	require.NoError(t, err)
	assert.Len(t, users, 1)

	_, err = f.rels.LinkProductMaterial(ctx, "prod", "wood", dto.LinkRequest{})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = f.rels.ByPrimary(ctx, "prod", entity.EntityItem, "bogus")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStore_CreateValida(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.item(t, entity.Item{ID: "a"})

	_, err := f.rels.Create(ctx, dto.CreateRelationshipRequest{
		PrimaryID: "a", PrimaryType: entity.EntityItem,
		SecondaryID: "missing", SecondaryType: entity.EntityItem,
		RelationshipType: entity.RelProductMaterial,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.rels.Create(ctx, dto.CreateRelationshipRequest{
		PrimaryID: "a", PrimaryType: entity.EntityItem,
		SecondaryID: "a", SecondaryType: entity.EntitySale,
		RelationshipType: entity.RelProductMaterial,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidRelationship)

	_, err = f.rels.Create(ctx, dto.CreateRelationshipRequest{
		PrimaryID: "a", PrimaryType: entity.EntityItem,
		SecondaryID: "b", SecondaryType: entity.EntityItem,
		RelationshipType:   entity.RelProductMaterial,
		SaleItemAttributes: &entity.SaleItemAttributes{},
	})
	assert.ErrorIs(t, err, domain.ErrAttributesMismatch)
}

func TestStore_DerivadoUnSoloOrigen(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	for _, id := range []string{"src1", "src2", "der"} {
		f.item(t, entity.Item{ID: id})
	}
	derived := func(src string) dto.CreateRelationshipRequest {
		return dto.CreateRelationshipRequest{
			PrimaryID: src, PrimaryType: entity.EntityItem,
			SecondaryID: "der", SecondaryType: entity.EntityItem,
			RelationshipType: entity.RelDerived,
		}
	}
	_, err := f.rels.Create(ctx, derived("src1"))
	require.NoError(t, err)

	_, err = f.rels.Create(ctx, derived("src2"))
	assert.ErrorIs(t, err, domain.ErrDerivedSourceExists)

	sources, err := f.rels.BySecondary(ctx, "der", entity.EntityItem, entity.RelDerived)
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, "src1", sources[0].PrimaryID)
}

func TestStore_UpdateYDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.item(t, entity.Item{ID: "i"})
	require.NoError(t, f.store.Sales().Create(ctx, &entity.Sale{ID: "s"}))

	rel, err := f.rels.LinkSaleItem(ctx, "s", "i", dto.LinkRequest{
		SaleItemAttributes: &entity.SaleItemAttributes{UnitPrice: decimal.NewFromInt(5)},
	})
	require.NoError(t, err)

	notes := "revisado"
	updated, err := f.rels.Update(ctx, rel.ID, dto.UpdateRelationshipRequest{
		Notes:              &notes,
		SaleItemAttributes: &entity.SaleItemAttributes{UnitPrice: decimal.NewFromInt(7)},
	})
	require.NoError(t, err)
	assert.Equal(t, "revisado", updated.Notes)
	attrs, ok := updated.SaleItem()
	require.True(t, ok)
	assert.True(t, attrs.UnitPrice.Equal(decimal.NewFromInt(7)))

	_, err = f.rels.Update(ctx, rel.ID, dto.UpdateRelationshipRequest{
		PurchaseItemAttributes: &entity.PurchaseItemAttributes{},
	})
	assert.ErrorIs(t, err, domain.ErrAttributesMismatch)

	_, err = f.rels.Update(ctx, "nope", dto.UpdateRelationshipRequest{Notes: &notes})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, f.rels.Delete(ctx, rel.ID))
	assert.ErrorIs(t, f.rels.Delete(ctx, rel.ID), domain.ErrNotFound)
}

func TestConverter_Idempotente(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.item(t, entity.Item{ID: "wood"})
	f.item(t, entity.Item{ID: "log"})
	f.item(t, entity.Item{
		ID:                "table",
		LegacyComponents:  []entity.LegacyComponent{{ItemID: "wood", Measurements: measurement.Quantity(4)}, {ItemID: "ghost"}},
		LegacyDerivedFrom: &entity.LegacyDerivedFrom{ItemID: "log"},
	})

	res, err := f.conv.ConvertEntity(ctx, entity.EntityItem, "table")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, 2, res.Result.Created)
	assert.Equal(t, 1, res.Result.Errors)
	assert.Len(t, res.Result.Details, 1)

	again, err := f.conv.ConvertEntity(ctx, entity.EntityItem, "table")
	require.NoError(t, err)
	assert.Equal(t, 0, again.Result.Created)
	assert.Equal(t, 2, again.Result.Skipped)

	legacy, err := f.rels.ByPrimary(ctx, "table", entity.EntityItem, entity.RelProductMaterial)
	require.NoError(t, err)
	require.Len(t, legacy, 1)
	assert.True(t, legacy[0].IsLegacy)

	_, err = f.conv.ConvertEntity(ctx, entity.EntitySale, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestConverter_CompraConActivos(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.item(t, entity.Item{ID: "i"})
	require.NoError(t, f.store.Assets().Create(ctx, &entity.Asset{ID: "saw", LegacyPurchaseID: "p"}))
	require.NoError(t, f.store.Purchases().Create(ctx, &entity.Purchase{
		ID: "p",
		LegacyItems: []entity.LegacyPurchaseItem{{
			ItemID: "i", Measurements: measurement.Quantity(2),
			CostPerUnit: decimal.NewFromInt(3), TotalCost: decimal.NewFromInt(6),
		}},
		LegacyAssets: []entity.LegacyPurchaseAsset{{AssetID: "saw"}},
	}))

	res, err := f.conv.ConvertEntity(ctx, entity.EntityPurchase, "p")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 2, res.Result.Created)

	lines, err := f.rels.ByPrimary(ctx, "p", entity.EntityPurchase, entity.RelPurchaseItem)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	attrs, ok := lines[0].PurchaseItem()
	require.True(t, ok)
	assert.True(t, attrs.TotalCost.Equal(decimal.NewFromInt(6)))

	// El activo apunta a la misma compra: la arista ya existe.
	res, err = f.conv.ConvertEntity(ctx, entity.EntityAsset, "saw")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Result.Skipped)
}

func TestJobRunner_ConvierteTodo(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.item(t, entity.Item{ID: "wood"})
	f.item(t, entity.Item{ID: "table", LegacyComponents: []entity.LegacyComponent{{ItemID: "wood"}}})
	f.item(t, entity.Item{ID: "chair", LegacyComponents: []entity.LegacyComponent{{ItemID: "ghost"}}})
	require.NoError(t, f.store.Sales().Create(ctx, &entity.Sale{
		ID:          "s",
		LegacyItems: []entity.LegacySaleItem{{ItemID: "table", UnitPrice: decimal.NewFromInt(50)}},
	}))

	id, err := f.runner.StartConvertAll(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, id)
	f.runner.Wait()

	job, err := f.runner.Status(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, entity.JobStatusCompleted, job.Status)
	assert.Equal(t, entity.CategoryProgress{Total: 2, Processed: 2, Converted: 1, Errors: 1}, job.Progress.Items)
	assert.Equal(t, entity.CategoryProgress{Total: 1, Processed: 1, Converted: 1}, job.Progress.Sales)
	assert.InDelta(t, 100, job.PercentComplete(), 1e-9)
	require.NotNil(t, job.CompletedAt)
	assert.Empty(t, f.runner.Running())

	_, err = f.runner.Status(ctx, "unknown")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// blockingJobs retiene el primer Save hasta que se cierre release.
type blockingJobs struct {
	*memory.ConversionJobRepo
	release chan struct{}
	once    bool
}

func (b *blockingJobs) Save(ctx context.Context, job *entity.ConversionJob) error {
	if !b.once {
		b.once = true
		<-b.release
	}
	return b.ConversionJobRepo.Save(ctx, job)
}

func TestJobRunner_UnoALaVez(t *testing.T) {
	ctx := context.Background()
	ms := memory.NewStore()
	repos := ms.Repositories()
	jobs := &blockingJobs{ConversionJobRepo: ms.Jobs(), release: make(chan struct{})}
	runner := relationship.NewJobRunner(relationship.NewConverter(repos, zerolog.Nop()), repos, jobs, zerolog.Nop())

	first, err := runner.StartConvertAll(ctx)
	require.NoError(t, err)

	_, err = runner.StartConvertAll(ctx)
	assert.ErrorIs(t, err, domain.ErrConflict)

	close(jobs.release)
	runner.Wait()

	second, err := runner.StartConvertAll(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
	runner.Wait()

	done := make(chan struct{})
	go func() { runner.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("el runner no terminó")
	}
}

func TestJobRunner_StopCierraComoFallido(t *testing.T) {
	ctx := context.Background()
	ms := memory.NewStore()
	repos := ms.Repositories()
	require.NoError(t, ms.Items().Create(ctx, &entity.Item{ID: "wood"}))
	require.NoError(t, ms.Items().Create(ctx, &entity.Item{ID: "table", LegacyComponents: []entity.LegacyComponent{{ItemID: "wood"}}}))
	jobs := &blockingJobs{ConversionJobRepo: ms.Jobs(), release: make(chan struct{})}
	runner := relationship.NewJobRunner(relationship.NewConverter(repos, zerolog.Nop()), repos, jobs, zerolog.Nop())

	id, err := runner.StartConvertAll(ctx)
	require.NoError(t, err)

	runner.Stop()
	runner.Stop()
	close(jobs.release)
	runner.Wait()

	job, err := runner.Status(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, entity.JobStatusFailed, job.Status)
	assert.Equal(t, relationship.ErrJobInterrupted.Error(), job.Error)
	assert.Equal(t, 1, job.Progress.Items.Total)
	assert.Zero(t, job.Progress.Items.Processed)
	require.NotNil(t, job.CompletedAt)
	assert.True(t, job.IsTerminal())
	assert.Empty(t, runner.Running())

	_, err = runner.StartConvertAll(ctx)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestJobRunner_RecoverInterrupted(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	started := time.Now().UTC().Add(-time.Hour)
	require.NoError(t, f.store.Jobs().Create(ctx, &entity.ConversionJob{
		ID: "huerfano", Status: entity.JobStatusRunning, Phase: entity.EntityPurchase, StartedAt: started, UpdatedAt: started,
	}))
	require.NoError(t, f.store.Jobs().Create(ctx, &entity.ConversionJob{
		ID: "listo", Status: entity.JobStatusCompleted, Phase: entity.EntityAsset, StartedAt: started, UpdatedAt: started, CompletedAt: &started,
	}))

	n, err := f.runner.RecoverInterrupted(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	orphan, err := f.runner.Status(ctx, "huerfano")
	require.NoError(t, err)
	assert.Equal(t, entity.JobStatusFailed, orphan.Status)
	assert.Equal(t, relationship.ErrJobInterrupted.Error(), orphan.Error)
	require.NotNil(t, orphan.CompletedAt)
	assert.True(t, orphan.CompletedAt.After(started))

	done, err := f.runner.Status(ctx, "listo")
	require.NoError(t, err)
	assert.Equal(t, entity.JobStatusCompleted, done.Status)
	assert.Empty(t, done.Error)

	n, err = f.runner.RecoverInterrupted(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
