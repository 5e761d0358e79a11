package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/biztracker/internal/application/dto"
	"github.com/jhoicas/biztracker/internal/client"
	"github.com/jhoicas/biztracker/internal/domain/entity"
	"github.com/jhoicas/biztracker/pkg/config"
	"github.com/jhoicas/biztracker/pkg/measurement"
)

const relJSON = `{"id":"r1","primaryId":"p1","primaryType":"Item","secondaryId":"m1","secondaryType":"Item","relationshipType":"product_material","measurements":{"kind":"weight","value":2,"unit":"kg"},"isLegacy":false}`

func newClient(t *testing.T, h http.Handler) *client.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return client.New(config.ClientConfig{BaseURL: srv.URL + "/api/", Token: "tok"}, zerolog.Nop())
}

func TestGetByPrimary_VariantesDeSobre(t *testing.T) {
	cases := map[string]string{
		"sobre con lista":  `{"status":"success","results":1,"data":[` + relJSON + `]}`,
		"sobre con objeto": `{"status":"success","data":` + relJSON + `}`,
		"arreglo desnudo":  `[` + relJSON + `]`,
		"objeto desnudo":   relJSON,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/relationships/primary/p1/Item", r.URL.Path)
				assert.Equal(t, "product_material", r.URL.Query().Get("relationshipType"))
				assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
				_, _ = w.Write([]byte(body))
			}))
			rels := c.GetProductComponents(context.Background(), "p1")
			require.Len(t, rels, 1)
			assert.Equal(t, "m1", rels[0].SecondaryID)
			assert.Equal(t, entity.RelProductMaterial, rels[0].Type)
			require.NotNil(t, rels[0].Measurements)
			assert.Equal(t, "kg", rels[0].Measurements.Unit)
		})
	}
}

func TestGetByPrimary_NuncaDevuelveError(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/relationships/primary/boom/Item":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			_, _ = w.Write([]byte(`"no es una lista"`))
		}
	}))

	rels := c.GetByPrimary(context.Background(), "boom", entity.EntityItem, "")
	assert.NotNil(t, rels)
	assert.Empty(t, rels)

	rels = c.GetBySecondary(context.Background(), "x", entity.EntityItem, "")
	assert.NotNil(t, rels)
	assert.Empty(t, rels)

	assert.Nil(t, c.GetSourceForDerivedItem(context.Background(), "x"))
}

func TestGetByPrimary_ServidorCaido(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c := client.New(config.ClientConfig{BaseURL: srv.URL}, zerolog.Nop())

	rels := c.GetItemSales(context.Background(), "i1")
	assert.NotNil(t, rels)
	assert.Empty(t, rels)
}

func TestAPIError_Mensajes(t *testing.T) {
	t.Run("mensaje del cuerpo", func(t *testing.T) {
		c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"status":"error","code":"DUPLICATE","message":"la relación ya existe"}`))
		}))
		_, err := c.Create(context.Background(), dto.CreateRelationshipRequest{})
		var apiErr *client.APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
		assert.Equal(t, "DUPLICATE", apiErr.Code)
		assert.Equal(t, "la relación ya existe", apiErr.Message)
	})

	t.Run("cuerpo sin mensaje", func(t *testing.T) {
		c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		_, err := c.Update(context.Background(), "nope", dto.UpdateRelationshipRequest{})
		assert.True(t, client.IsNotFound(err))
		assert.Equal(t, client.UnknownErrorMessage, client.ErrorMessage(err))
	})

	t.Run("error de transporte", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()
		c := client.New(config.ClientConfig{BaseURL: srv.URL}, zerolog.Nop())
		ok, err := c.Remove(context.Background(), "r1")
		assert.False(t, ok)
		var apiErr *client.APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Zero(t, apiErr.StatusCode)
		assert.NotEqual(t, client.UnknownErrorMessage, apiErr.Message)
		assert.NotNil(t, apiErr.Unwrap())
	})
}

func TestCreate_InvalidaCache(t *testing.T) {
	var lookups atomic.Int32
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			lookups.Add(1)
			_, _ = w.Write([]byte(`{"status":"success","results":0,"data":[]}`))
		case http.MethodPost:
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"status":"success","data":` + relJSON + `}`))
		}
	}))
	ctx := context.Background()

	c.GetProductComponents(ctx, "p1")
	c.GetProductComponents(ctx, "p1")
	assert.Equal(t, int32(1), lookups.Load(), "segunda lectura desde caché")

	c.Cache().Set("items", []dto.ItemResponse{})
	c.Cache().Set("item:m1", struct{}{})
	c.Cache().Set("sale:s9", struct{}{})

	rel, err := c.Create(ctx, dto.CreateRelationshipRequest{
		PrimaryID: "p1", PrimaryType: entity.EntityItem,
		SecondaryID: "m1", SecondaryType: entity.EntityItem,
		RelationshipType: entity.RelProductMaterial,
	})
	require.NoError(t, err)
	assert.Equal(t, "r1", rel.ID)

	_, ok := c.Cache().Get("items")
	assert.False(t, ok)
	_, ok = c.Cache().Get("item:m1")
	assert.False(t, ok)
	_, ok = c.Cache().Get("sale:s9")
	assert.True(t, ok, "entidades ajenas no se invalidan")

	c.GetProductComponents(ctx, "p1")
	assert.Equal(t, int32(2), lookups.Load())
}

func TestLinkProductMaterial_IdaYVuelta(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/relationships/product-material/p1/m1", r.URL.Path)
		var in dto.LinkRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))

		out := entity.Relationship{
			ID: "r1", PrimaryID: "p1", PrimaryType: entity.EntityItem,
			SecondaryID: "m1", SecondaryType: entity.EntityItem,
			Type: entity.RelProductMaterial, Measurements: in.Measurements, Notes: in.Notes,
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(dto.DataEnvelope(out))
	}))

	d := measurement.Descriptor{Kind: measurement.KindLength, Value: 3, Unit: "m"}
	rel, err := c.LinkProductMaterial(context.Background(), "p1", "m1", dto.LinkRequest{Measurements: &d, Notes: "tela"})
	require.NoError(t, err)
	assert.Equal(t, entity.RelProductMaterial, rel.Type)
	assert.Equal(t, "tela", rel.Notes)
	require.NotNil(t, rel.Measurements)
	assert.Equal(t, d, *rel.Measurements)
}

func TestWaitForJob_SeDetieneEnEstadoTerminal(t *testing.T) {
	var polls atomic.Int32
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := polls.Add(1)
		status := entity.JobStatusRunning
		if n >= 3 {
			status = entity.JobStatusCompleted
		}
		_ = json.NewEncoder(w).Encode(dto.JobStatusResponse{JobID: "j1", Status: status, PercentComplete: float64(n) * 30})
	}))

	var seen []string
	got, err := c.WaitForJob(context.Background(), "j1", time.Millisecond, func(s *dto.JobStatusResponse) {
		seen = append(seen, s.Status)
	})
	require.NoError(t, err)
	assert.Equal(t, entity.JobStatusCompleted, got.Status)
	assert.Equal(t, []string{"running", "running", "completed"}, seen)

	time.Sleep(2 * client.MinPollInterval)
	assert.Equal(t, int32(3), polls.Load(), "no hay sondeos después del estado terminal")
}

func TestWaitForJob_FalloDeSondeo(t *testing.T) {
	var polls atomic.Int32
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		polls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"status":"error","code":"NOT_FOUND","message":"trabajo no encontrado"}`))
	}))

	_, err := c.WaitForJob(context.Background(), "nope", 0, nil)
	require.Error(t, err)
	assert.True(t, client.IsNotFound(err))
	assert.Equal(t, int32(1), polls.Load())
}

func TestWaitForJob_TrabajoFallidoEsEstado(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(dto.JobStatusResponse{JobID: "j1", Status: entity.JobStatusFailed, Error: "fase items: timeout"})
	}))
	got, err := c.WaitForJob(context.Background(), "j1", time.Second, nil)
	require.NoError(t, err)
	assert.Equal(t, entity.JobStatusFailed, got.Status)
	assert.Equal(t, "fase items: timeout", got.Error)
}

func TestConvertLegacyRelationships_InvalidaEntidad(t *testing.T) {
	result := dto.ConversionResult{Success: true, Message: "ok", Result: dto.ConversionCounts{Created: 2}}
	cases := []struct {
		name string
		body any
	}{
		{"desnudo", result},
		{"con sobre", dto.DataEnvelope(result)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/relationships/convert/Purchase/pu1", r.URL.Path)
				_ = json.NewEncoder(w).Encode(tc.body)
			}))
			c.Cache().Set("relationships:primary:Purchase:pu1:purchase_item", []entity.Relationship{})
			c.Cache().Set("purchase:pu1", struct{}{})

			res, err := c.ConvertLegacyRelationships(context.Background(), "pu1", entity.EntityPurchase)
			require.NoError(t, err)
			assert.True(t, res.Success)
			assert.Equal(t, "ok", res.Message)
			assert.Equal(t, 2, res.Result.Created)
			assert.Zero(t, c.Cache().Len())
		})
	}
}

func TestConvertAllRelationships(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/relationships/convert-all", r.URL.Path)
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"jobId":"j42"}`))
	}))
	id, err := c.ConvertAllRelationships(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "j42", id)
}

func TestListItems_RecorrePaginas(t *testing.T) {
	all := make([]dto.ItemResponse, 600)
	for i := range all {
		all[i] = dto.ItemResponse{ID: fmt.Sprintf("it%03d", i), Name: "ítem"}
	}
	var calls atomic.Int32
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/api/items", r.URL.Path)
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		if limit <= 0 || limit > 500 {
			limit = 500
		}
		start := min(offset, len(all))
		end := min(start+limit, len(all))
		_ = json.NewEncoder(w).Encode(dto.ListEnvelope(all[start:end]))
	}))

	items := c.ListItems(context.Background())
	require.Len(t, items, 600)
	assert.Equal(t, "it000", items[0].ID)
	assert.Equal(t, "it599", items[599].ID)
	assert.EqualValues(t, 2, calls.Load())

	// segunda lectura desde caché
	assert.Len(t, c.ListItems(context.Background()), 600)
	assert.EqualValues(t, 2, calls.Load())
}

func TestListItems_PaginaExactaPideOtra(t *testing.T) {
	var calls atomic.Int32
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		if n == 1 {
			page := make([]dto.ItemResponse, 500)
			for i := range page {
				page[i].ID = strconv.Itoa(i)
			}
			_ = json.NewEncoder(w).Encode(dto.ListEnvelope(page))
			return
		}
		assert.Equal(t, "500", r.URL.Query().Get("offset"))
		_ = json.NewEncoder(w).Encode(dto.ListEnvelope([]dto.ItemResponse{}))
	}))
	assert.Len(t, c.ListItems(context.Background()), 500)
	assert.EqualValues(t, 2, calls.Load())
}

func TestCache_ResultadosSonCopias(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/items":
			_, _ = w.Write([]byte(`[{"id":"a","name":"A"},{"id":"b","name":"B"}]`))
		default:
			_, _ = w.Write([]byte(`[` + relJSON + `]`))
		}
	}))
	ctx := context.Background()

	rels := c.GetByPrimary(ctx, "p1", entity.EntityItem, "")
	require.Len(t, rels, 1)
	rels[0].ID = "alterado"
	_ = append(rels[:0], entity.Relationship{ID: "otro"})
	again := c.GetByPrimary(ctx, "p1", entity.EntityItem, "")
	require.Len(t, again, 1)
	assert.Equal(t, "r1", again[0].ID)

	items := c.ListItems(ctx)
	require.Len(t, items, 2)
	items[0], items[1] = items[1], items[0]
	items[0].Name = "cambiado"
	cached := c.ListItems(ctx)
	assert.Equal(t, "a", cached[0].ID)
	assert.Equal(t, "A", cached[0].Name)
}
