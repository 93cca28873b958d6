package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductHandler_Create(t *testing.T) {
	f := newAPIFixture(t)

	w, envelope := f.do(t, http.MethodPost, "/api/v1/products", map[string]any{
		"sku":           "wdg01",
		"name":          "Widget",
		"unit_price":    "19.99",
		"initial_stock": 10,
	})

	require.Equal(t, http.StatusCreated, w.Code)
	data := dataField(t, envelope)
	assert.Equal(t, "WDG01", data["sku"], "SKU is normalized to upper case")
	assert.Equal(t, "Widget", data["name"])
	assert.Equal(t, float64(10), data["quantity_in_stock"])
}

func TestProductHandler_Create_DuplicateSKU(t *testing.T) {
	f := newAPIFixture(t)
	f.createProduct(t, "WDG01", 10, 5)

	w, envelope := f.do(t, http.MethodPost, "/api/v1/products", map[string]any{
		"sku":  "wdg01",
		"name": "Widget Again",
	})

	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "ALREADY_EXISTS", errorField(t, envelope)["code"])
}

func TestProductHandler_Create_ValidationFailure(t *testing.T) {
	f := newAPIFixture(t)

	// Missing required name
	w, envelope := f.do(t, http.MethodPost, "/api/v1/products", map[string]any{
		"sku": "WDG01",
	})

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorField(t, envelope)["code"])
}

func TestProductHandler_GetByID(t *testing.T) {
	f := newAPIFixture(t)
	created := f.createProduct(t, "WDG01", 10, 5)

	w, envelope := f.do(t, http.MethodGet, "/api/v1/products/"+created.ID.String(), nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "WDG01", dataField(t, envelope)["sku"])
}

func TestProductHandler_GetByID_NotFound(t *testing.T) {
	f := newAPIFixture(t)

	w, envelope := f.do(t, http.MethodGet, "/api/v1/products/2c9a4cfa-9c91-4f14-b9a8-632c9bfa8f7b", nil)

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", errorField(t, envelope)["code"])
}

func TestProductHandler_GetByID_MalformedID(t *testing.T) {
	f := newAPIFixture(t)

	w, _ := f.do(t, http.MethodGet, "/api/v1/products/not-a-uuid", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProductHandler_GetBySKU(t *testing.T) {
	f := newAPIFixture(t)
	f.createProduct(t, "WDG01", 10, 5)

	w, envelope := f.do(t, http.MethodGet, "/api/v1/products/sku/wdg01", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "WDG01", dataField(t, envelope)["sku"])
}

func TestProductHandler_List_Search(t *testing.T) {
	f := newAPIFixture(t)
	f.createProduct(t, "WDG01", 10, 5)
	f.createProduct(t, "GAD01", 10, 5)

	w, envelope := f.do(t, http.MethodGet, "/api/v1/products?q=wdg", nil)

	require.Equal(t, http.StatusOK, w.Code)
	list, ok := envelope["data"].([]any)
	require.True(t, ok)
	require.Len(t, list, 1)

	w, envelope = f.do(t, http.MethodGet, "/api/v1/products", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list, ok = envelope["data"].([]any)
	require.True(t, ok)
	assert.Len(t, list, 2)
}

func TestProductHandler_Update(t *testing.T) {
	f := newAPIFixture(t)
	created := f.createProduct(t, "WDG01", 10, 5)

	w, envelope := f.do(t, http.MethodPut, "/api/v1/products/"+created.ID.String(), map[string]any{
		"name":       "Widget Deluxe",
		"unit_price": "24.50",
	})

	require.Equal(t, http.StatusOK, w.Code)
	data := dataField(t, envelope)
	assert.Equal(t, "Widget Deluxe", data["name"])
	assert.Equal(t, "24.5", data["unit_price"])
}

func TestProductHandler_Delete(t *testing.T) {
	f := newAPIFixture(t)
	created := f.createProduct(t, "WDG01", 10, 5)

	w, _ := f.do(t, http.MethodDelete, "/api/v1/products/"+created.ID.String(), nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w, _ = f.do(t, http.MethodGet, "/api/v1/products/"+created.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
