package catalog_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nikolayk812/cart-demo/internal/catalog"
	"github.com/nikolayk812/cart-demo/internal/catalogserver"
	"github.com/nikolayk812/cart-demo/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalogServer(t *testing.T) *httptest.Server {
	t.Helper()

	log, _ := test.NewNullLogger()
	fixture := catalogserver.Fixture{
		Products: []domain.Product{
			{ID: 1, Title: "Tênis de Caminhada Leve Confortável", Price: decimal.RequireFromString("179.9"), Amount: 99},
			{ID: 2, Title: "Tênis Adidas Duramo Lite 2.0", Price: decimal.RequireFromString("219.9")},
		},
		Stock: []domain.Stock{
			{ProductID: 1, Amount: 3},
			{ProductID: 2, Amount: 0},
		},
	}

	srv := httptest.NewServer(catalogserver.New(fixture, log))
	t.Cleanup(srv.Close)

	return srv
}

func TestClient_GetStock(t *testing.T) {
	srv := newCatalogServer(t)

	client, err := catalog.New(srv.URL, catalog.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	tests := []struct {
		name      string
		productID int64
		want      domain.Stock
		wantErrIs error
	}{
		{
			name:      "existing stock: ok",
			productID: 1,
			want:      domain.Stock{ProductID: 1, Amount: 3},
		},
		{
			name:      "zero stock: ok",
			productID: 2,
			want:      domain.Stock{ProductID: 2, Amount: 0},
		},
		{
			name:      "missing stock: not found",
			productID: 42,
			wantErrIs: catalog.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := client.GetStock(t.Context(), tt.productID)
			if tt.wantErrIs != nil {
				require.ErrorIs(t, err, tt.wantErrIs)
				return
			}
			require.NoError(t, err)

			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClient_GetProduct(t *testing.T) {
	srv := newCatalogServer(t)

	client, err := catalog.New(srv.URL+"/", catalog.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	got, err := client.GetProduct(t.Context(), 1)
	require.NoError(t, err)

	assert.Equal(t, int64(1), got.ID)
	assert.Equal(t, "Tênis de Caminhada Leve Confortável", got.Title)
	assert.True(t, decimal.RequireFromString("179.9").Equal(got.Price))

	_, err = client.GetProduct(t.Context(), 7)
	require.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestClient_BadResponses(t *testing.T) {
	tests := []struct {
		name      string
		handler   http.HandlerFunc
		wantErrIs error
		wantError string
	}{
		{
			name: "server error: unexpected status",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			wantErrIs: catalog.ErrUnexpectedStatus,
		},
		{
			name: "malformed body: decode error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"id":`))
			},
			wantError: "json.Decode stock[5]",
		},
		{
			name: "mismatched id: error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"id":6,"amount":1}`))
			},
			wantError: "stock id[6] does not match requested id[5]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			client, err := catalog.New(srv.URL, catalog.WithHTTPClient(srv.Client()))
			require.NoError(t, err)

			_, err = client.GetStock(t.Context(), 5)
			require.Error(t, err)

			if tt.wantErrIs != nil {
				assert.ErrorIs(t, err, tt.wantErrIs)
			}
			if tt.wantError != "" {
				assert.ErrorContains(t, err, tt.wantError)
			}
		})
	}
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	client, err := catalog.New(srv.URL,
		catalog.WithHTTPClient(srv.Client()),
		catalog.WithTimeout(50*time.Millisecond),
	)
	require.NoError(t, err)

	_, err = client.GetStock(t.Context(), 1)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNew(t *testing.T) {
	_, err := catalog.New("")
	require.EqualError(t, err, "baseURL is empty")

	_, err = catalog.New("ftp://example.com")
	require.ErrorContains(t, err, "scheme is not http(s)")
}
