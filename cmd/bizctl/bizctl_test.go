package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jhoicas/biztracker/internal/application/dto"
	"github.com/jhoicas/biztracker/internal/domain/entity"
	"github.com/jhoicas/biztracker/pkg/measurement"
	"github.com/jhoicas/biztracker/pkg/preferences"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestPrefs_SetShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.yaml")

	_, err := run(t, "--prefs", path, "prefs", "set", "kg", "3")
	require.NoError(t, err)
	_, err = run(t, "--prefs", path, "prefs", "set", "groupBy", "category")
	require.NoError(t, err)

	out, err := run(t, "--prefs", path, "prefs", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "groupBy:   category")
	assert.Contains(t, out, "kg:")

	_, err = run(t, "--prefs", path, "prefs", "set", "viewMode", "mosaico")
	assert.Error(t, err)
}

func TestWriteReport_UmbralesLocales(t *testing.T) {
	items := []dto.ItemResponse{
		{ID: "1", Name: "Hilo", TrackingType: measurement.KindQuantity, Quantity: decimal.NewFromInt(4), Price: decimal.NewFromInt(10000), Cost: decimal.NewFromInt(5000)},
		{ID: "2", Name: "Tela", TrackingType: measurement.KindLength, PriceType: "per_length_unit",
			Measure: measurement.Descriptor{Kind: measurement.KindLength, Value: 2, Unit: "m"}, Price: decimal.NewFromInt(10)},
	}
	prefs := preferences.Defaults()
	prefs.QuantityThreshold = 3

	var buf bytes.Buffer
	writeReport(&buf, message.NewPrinter(language.Spanish), items, prefs, false)
	out := buf.String()
	assert.Contains(t, out, "40.000,00", "separadores de miles en español")
	assert.Contains(t, out, "100.00%")
	assert.Contains(t, out, "N/A")
	assert.Contains(t, out, "2 ítems")
	assert.Contains(t, out, "success 2")

	buf.Reset()
	prefs.QuantityThreshold = 5
	writeReport(&buf, message.NewPrinter(language.Spanish), items, prefs, true)
	out = buf.String()
	assert.Contains(t, out, "Hilo")
	assert.NotContains(t, out, "Tela")
}

func TestRelationshipsPrimary_ContraServidor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/relationships/primary/p1/Item", r.URL.Path)
		d := measurement.Quantity(2)
		rels := []entity.Relationship{{
			ID: "r1", PrimaryID: "p1", PrimaryType: entity.EntityItem,
			SecondaryID: "m1", SecondaryType: entity.EntityItem,
			Type: entity.RelProductMaterial, Measurements: &d,
		}}
		_ = json.NewEncoder(w).Encode(dto.ListEnvelope(rels))
	}))
	defer srv.Close()

	out, err := run(t, "--api", srv.URL+"/api", "--prefs", filepath.Join(t.TempDir(), "p.yaml"),
		"relationships", "primary", "p1", "Item")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "product_material")
	assert.Contains(t, lines[1], "Item:m1")
}

func TestRelationshipsPrimary_TipoInvalido(t *testing.T) {
	_, err := run(t, "--api", "http://127.0.0.1:0", "relationships", "primary", "p1", "Factura")
	assert.Error(t, err)
}
