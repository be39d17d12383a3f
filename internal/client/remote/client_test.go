package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faktur-app/faktur/internal/common"
	"github.com/faktur-app/faktur/internal/models"
)

func TestAPI_List(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/customers", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"Records": map[string]any{
				"c1": map[string]any{"id": "c1", "client": "PT A"},
			},
		})
	}))
	defer srv.Close()

	api := NewAPI[models.Customer](srv.URL, common.FamilyCustomers, srv.Client())

	records, err := api.List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "PT A", records["c1"].Client)
}

func TestAPI_CreateReturnsCanonicalRecord(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)

		var req models.CustomerRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "PT A", req.Client)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"Record": map[string]any{"id": "srv-1", "client": req.Client, "createdAt": "01/02/2021"},
		})
	}))
	defer srv.Close()

	api := NewAPI[models.Customer](srv.URL, common.FamilyCustomers, srv.Client())

	rec, err := api.Create(context.Background(), models.CustomerRequest{Client: "PT A"})
	require.NoError(t, err)
	assert.Equal(t, "srv-1", rec.ID)
	assert.Equal(t, "01/02/2021", rec.CreatedAt)
}

func TestAPI_UpdateHitsRecordURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/customers/c1", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"Record": map[string]any{"id": "c1", "client": "PT B"},
		})
	}))
	defer srv.Close()

	api := NewAPI[models.Customer](srv.URL, common.FamilyCustomers, srv.Client())

	rec, err := api.Update(context.Background(), "c1", models.CustomerRequest{Client: "PT B"})
	require.NoError(t, err)
	assert.Equal(t, "PT B", rec.Client)
}

func TestAPI_Delete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		switch r.URL.Path {
		case "/api/customers/c1":
			_ = json.NewEncoder(w).Encode(map[string]any{"Success": true})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	api := NewAPI[models.Customer](srv.URL, common.FamilyCustomers, srv.Client())
	ctx := context.Background()

	require.NoError(t, api.Delete(ctx, "c1"))

	err := api.Delete(ctx, "gone")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestAPI_ServerErrorIsSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	api := NewAPI[models.Customer](srv.URL, common.FamilyCustomers, srv.Client())

	_, err := api.Create(context.Background(), models.CustomerRequest{Client: "PT A"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}
