package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appanalytics "github.com/jhoicas/biztracker/internal/application/analytics"
	"github.com/jhoicas/biztracker/internal/application/relationship"
	"github.com/jhoicas/biztracker/internal/application/usecase"
	"github.com/jhoicas/biztracker/internal/domain/entity"
	"github.com/jhoicas/biztracker/internal/domain/inventory"
	"github.com/jhoicas/biztracker/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/biztracker/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/biztracker/pkg/jwt"
	"github.com/jhoicas/biztracker/pkg/measurement"
)

type testServer struct {
	app   *fiber.App
	store *memory.Store
	jobs  *relationship.JobRunner
	token string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ms := memory.NewStore()
	repos := ms.Repositories()
	log := zerolog.Nop()
	th := inventory.DefaultThresholds()
	conv := relationship.NewConverter(repos, log)
	jobs := relationship.NewJobRunner(conv, repos, ms.Jobs(), log)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		ItemUC:        usecase.NewItemUseCase(ms.Items(), ms, th),
		PurchaseUC:    usecase.NewPurchaseUseCase(ms.Purchases(), ms.Relationships(), ms, log),
		SaleUC:        usecase.NewSaleUseCase(ms.Sales(), ms.Relationships(), ms, log),
		AssetUC:       usecase.NewAssetUseCase(ms.Assets(), ms),
		Relationships: relationship.NewStore(repos, log),
		Converter:     conv,
		Jobs:          jobs,
		DashboardUC:   appanalytics.NewDashboardUseCase(ms.Items(), ms.Purchases(), ms.Sales(), ms.Assets(), ms.Relationships(), th),
		JWTSecret:     testJWTSecret,
	})
	return &testServer{app: app, store: ms, jobs: jobs, token: tokenForRole(t, pkgjwt.RoleOwner)}
}

// do ejecuta la petición autenticada y decodifica el cuerpo en out (si no es nil).
func (s *testServer) do(t *testing.T, method, path string, body any, out any) int {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Authorization", s.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		if len(raw) > 0 {
			require.NoError(t, json.Unmarshal(raw, out), string(raw))
		}
	}
	return resp.StatusCode
}

type envelope[T any] struct {
	Status  string `json:"status"`
	Results *int   `json:"results"`
	Data    T      `json:"data"`
}

type errorBody struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *testServer) seedItem(t *testing.T, it entity.Item) {
	t.Helper()
	require.NoError(t, s.store.Items().Create(context.Background(), &it))
}

func TestHealth_SinToken(t *testing.T) {
	s := newTestServer(t)
	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = s.app.Test(httptest.NewRequest(http.MethodGet, "/api/items", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRelationships_CRUD(t *testing.T) {
	s := newTestServer(t)
	s.seedItem(t, entity.Item{ID: "prod", Name: "Mesa"})
	s.seedItem(t, entity.Item{ID: "wood", Name: "Madera"})

	var created envelope[entity.Relationship]
	code := s.do(t, http.MethodPost, "/api/relationships/product-material/prod/wood",
		map[string]any{"measurements": map[string]any{"kind": "length", "value": 2, "unit": "m"}}, &created)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "success", created.Status)
	assert.Equal(t, entity.RelProductMaterial, created.Data.Type)
	require.NotEmpty(t, created.Data.ID)

	var dup errorBody
	code = s.do(t, http.MethodPost, "/api/relationships/product-material/prod/wood", nil, &dup)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "DUPLICATE", dup.Code)
	assert.Equal(t, "error", dup.Status)

	var byPrimary envelope[[]entity.Relationship]
	code = s.do(t, http.MethodGet, "/api/relationships/primary/prod/Item?relationshipType=product_material", nil, &byPrimary)
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, byPrimary.Results)
	assert.Equal(t, 1, *byPrimary.Results)
	assert.Equal(t, "wood", byPrimary.Data[0].SecondaryID)

	var bySecondary envelope[[]entity.Relationship]
	code = s.do(t, http.MethodGet, "/api/relationships/secondary/wood/Item", nil, &bySecondary)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, bySecondary.Data, 1)

	var updated envelope[entity.Relationship]
	code = s.do(t, http.MethodPatch, "/api/relationships/"+created.Data.ID, map[string]any{"notes": "tapa"}, &updated)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "tapa", updated.Data.Notes)

	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, "/api/relationships/"+created.Data.ID, nil, nil))

	var missing errorBody
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/relationships/"+created.Data.ID, nil, &missing))
	assert.Equal(t, "NOT_FOUND", missing.Code)
}

func TestRelationships_ErroresDeEntrada(t *testing.T) {
	s := newTestServer(t)

	var e errorBody
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/relationships/primary/x/Widget", nil, &e))
	assert.Equal(t, "UNSUPPORTED_ENTITY", e.Code)

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/api/relationships",
		map[string]any{"primaryId": "a", "primaryType": "Item"}, &e))
	assert.Equal(t, "VALIDATION", e.Code)

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/relationships?limit=9999", nil, &e))
	assert.Equal(t, "INVALID_PARAMS", e.Code)
}

func TestConversion_EntidadYTrabajo(t *testing.T) {
	s := newTestServer(t)
	s.seedItem(t, entity.Item{ID: "wood", Name: "Madera"})
	s.seedItem(t, entity.Item{
		ID:   "prod",
		Name: "Mesa",
		LegacyComponents: []entity.LegacyComponent{
			{ItemID: "wood", Measurements: measurement.Descriptor{Kind: measurement.KindLength, Value: 2, Unit: "m"}},
		},
	})

	var res struct {
		Success bool `json:"success"`
		Result  struct {
			Created int `json:"created"`
			Skipped int `json:"skipped"`
		} `json:"result"`
	}
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/relationships/convert/Item/prod", nil, &res))
	assert.True(t, res.Success)
	assert.Equal(t, 1, res.Result.Created)

	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/relationships/convert/Item/prod", nil, &res))
	assert.Equal(t, 0, res.Result.Created)
	assert.Equal(t, 1, res.Result.Skipped)

	var started struct {
		JobID string `json:"jobId"`
	}
	require.Equal(t, http.StatusAccepted, s.do(t, http.MethodPost, "/api/relationships/convert-all", nil, &started))
	require.NotEmpty(t, started.JobID)
	s.jobs.Wait()

	var status struct {
		Status          string  `json:"status"`
		PercentComplete float64 `json:"percentComplete"`
	}
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/relationships/jobs/"+started.JobID, nil, &status))
	assert.Equal(t, entity.JobStatusCompleted, status.Status)
	assert.InDelta(t, 100, status.PercentComplete, 1e-9)

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/relationships/jobs/nope", nil, nil))
}

func TestConversion_ConvertAllSoloOwner(t *testing.T) {
	s := newTestServer(t)
	s.token = tokenForRole(t, pkgjwt.RoleStaff)

	var e errorBody
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodPost, "/api/relationships/convert-all", nil, &e))
	assert.Equal(t, "FORBIDDEN", e.Code)
}

func TestItems_CompraVentaYDashboard(t *testing.T) {
	s := newTestServer(t)

	var item envelope[struct {
		ID          string `json:"id"`
		StockStatus string `json:"stockStatus"`
	}]
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/items",
		map[string]any{"name": "Tornillo", "price": "15", "cost": "10", "quantity": "0"}, &item))
	assert.Equal(t, "error", item.Data.StockStatus)
	id := item.Data.ID

	var purchase envelope[struct {
		ID string `json:"id"`
	}]
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/purchases", map[string]any{
		"supplier": "Ferretería",
		"items": []map[string]any{
			{"itemId": id, "measurements": map[string]any{"kind": "quantity", "value": 10}, "costPerUnit": "10"},
		},
	}, &purchase))

	var lines envelope[[]entity.Relationship]
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/relationships/primary/"+purchase.Data.ID+"/Purchase", nil, &lines))
	require.Len(t, lines.Data, 1)
	assert.Equal(t, entity.RelPurchaseItem, lines.Data[0].Type)

	var e errorBody
	assert.Equal(t, http.StatusConflict, s.do(t, http.MethodPost, "/api/sales", map[string]any{
		"items": []map[string]any{{"itemId": id, "measurements": map[string]any{"kind": "quantity", "value": 50}}},
	}, &e))
	assert.Equal(t, "INSUFFICIENT_STOCK", e.Code)

	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/sales", map[string]any{
		"items": []map[string]any{{"itemId": id, "measurements": map[string]any{"kind": "quantity", "value": 4}}},
	}, nil))

	var low envelope[[]map[string]any]
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/items?lowStock=true", nil, &low))
	assert.Empty(t, low.Data, "quedan 6 unidades, por encima del umbral de 5")

	var summary envelope[struct {
		ItemCount    int    `json:"itemCount"`
		SaleCount    int    `json:"saleCount"`
		SalesRevenue string `json:"salesRevenue"`
		SalesProfit  string `json:"salesProfit"`
	}]
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/dashboard/summary?lowStockThreshold=10", nil, &summary))
	assert.Equal(t, 1, summary.Data.ItemCount)
	assert.Equal(t, 1, summary.Data.SaleCount)
	assert.Equal(t, "60", summary.Data.SalesRevenue)
	assert.Equal(t, "20", summary.Data.SalesProfit)

	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, "/api/items/"+id, nil, nil))
	var after envelope[[]entity.Relationship]
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/relationships", nil, &after))
	assert.Empty(t, after.Data)
}
