package tga

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/vuquimar/api-rei-do-pano/pkg/errors"
	"github.com/vuquimar/api-rei-do-pano/pkg/httpclient"
)

func newTestClient(baseURL string, limit int) *Client {
	return NewClient(httpclient.New(httpclient.Config{
		Timeout:         5 * time.Second,
		MaxRetries:      0,
		RetryWaitMin:    time.Millisecond,
		RetryWaitMax:    time.Millisecond,
		MaxConnsPerHost: 2,
	}), Config{
		BaseURL:   baseURL,
		APIKey:    "tga-key-123",
		PageLimit: limit,
	})
}

func TestClient_Products_DecodesUpstreamFields(t *testing.T) {
	var gotHeader http.Header
	var gotQuery map[string][]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Clone()
		gotQuery = r.URL.Query()
		assert.Equal(t, "/v1/produtos", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data": [
			{"CODPRD": "7898", "NOMEFANTASIA": "Toalha de Banho Gigante", "PRECO2": 39.9, "PRECO1": 37.9, "SALDOGERALFISICO": 12.5, "CODGRUPO": "12", "CODBARRAS": "7891234567890"},
			{"CODPRD": "9001", "NOMEFANTASIA": "Retalho de Malha", "PRECO2": null, "PRECO1": null, "SALDOGERALFISICO": 3.2, "CODGRUPO": null, "CODBARRAS": null}
		]}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, 100)

	products, err := client.Products(context.Background(), 1, time.Time{})
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Equal(t, "tga-key-123", gotHeader.Get("X-API-Key"))
	assert.Equal(t, "application/json", gotHeader.Get("Accept"))
	assert.Equal(t, []string{"1"}, gotQuery["page"])
	assert.Equal(t, []string{"100"}, gotQuery["limit"])
	assert.NotContains(t, gotQuery, "updated_after")

	assert.Equal(t, "7898", products[0].Code)
	assert.Equal(t, "Toalha de Banho Gigante", products[0].Name)
	assert.Equal(t, 39.9, products[0].Price)
	assert.Equal(t, 37.9, products[0].PriceCash)
	assert.Equal(t, 12.5, products[0].Stock)
	assert.Equal(t, "12", products[0].GroupCode)
	assert.Equal(t, "7891234567890", products[0].Barcode)

	// Never-priced items come back null and are treated as zero.
	assert.Zero(t, products[1].Price)
	assert.Zero(t, products[1].PriceCash)
	assert.Empty(t, products[1].GroupCode)
}

func TestClient_Products_SendsUpdatedAfter(t *testing.T) {
	var gotQuery map[string][]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(`{"data": []}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, 50)
	since := time.Date(2025, 6, 15, 3, 0, 0, 0, time.UTC)

	products, err := client.Products(context.Background(), 2, since)
	require.NoError(t, err)
	assert.Empty(t, products)
	assert.Equal(t, []string{"2"}, gotQuery["page"])
	assert.Equal(t, []string{"50"}, gotQuery["limit"])
	assert.Equal(t, []string{"2025-06-15T03:00:00Z"}, gotQuery["updated_after"])
}

func TestClient_Groups_DecodesUpstreamFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/grupos", r.URL.Path)
		_, _ = w.Write([]byte(`{"data": [
			{"CODGRUPO": "12", "DESCRICAO": "Toalhas"},
			{"CODGRUPO": "15", "DESCRICAO": "Cama"}
		]}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, 100)

	groups, err := client.Groups(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "12", groups[0].Code)
	assert.Equal(t, "Toalhas", groups[0].Description)
}

func TestClient_Products_AuthFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"detail": "Could not validate credentials"}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, 100)

	_, err := client.Products(context.Background(), 1, time.Time{})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	assert.Contains(t, err.Error(), "fetch products page 1")
}

func TestClient_Products_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data": [{"CODPRD": 123`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, 100)

	_, err := client.Products(context.Background(), 1, time.Time{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestClient_DefaultsPageLimit(t *testing.T) {
	client := NewClient(nil, Config{BaseURL: "http://tga", APIKey: "k"})
	assert.Equal(t, 100, client.PageLimit())
}
