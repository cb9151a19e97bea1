package main

import (
	"bytes"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/nikolayk812/cart-demo/internal/catalogserver"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupEnv(t *testing.T) string {
	t.Helper()

	fixture, err := catalogserver.LoadFixture("../../fixtures/catalog.json")
	require.NoError(t, err)

	log, _ := test.NewNullLogger()
	srv := httptest.NewServer(catalogserver.New(fixture, log))
	t.Cleanup(srv.Close)

	dir := t.TempDir()

	t.Setenv("CART_API_BASE_URL", srv.URL)
	t.Setenv("CART_STORAGE_BACKEND", "file")
	t.Setenv("CART_STORAGE_DIR", dir)
	t.Setenv("CART_LOG_LEVEL", "panic")

	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(t.Context())
	return out.String(), err
}

func TestCartctl_Session(t *testing.T) {
	dir := setupEnv(t)

	steps := []struct {
		name         string
		args         []string
		wantContains []string
		wantAbsent   []string
	}{
		{
			name:         "empty cart",
			args:         []string{"cart"},
			wantContains: []string{"items: 0"},
		},
		{
			name:         "add new product",
			args:         []string{"add", "3"},
			wantContains: []string{"Tênis Adidas Duramo Lite 2.0", "items: 1", "219.90"},
		},
		{
			name:         "add same product again",
			args:         []string{"add", "3"},
			wantContains: []string{"items: 1", "439.80"},
		},
		{
			name:         "add beyond stock",
			args:         []string{"add", "3"},
			wantContains: []string{"[info] Requested quantity is out of stock", "439.80"},
		},
		{
			name:         "add zero-stock product",
			args:         []string{"add", "7"},
			wantContains: []string{"[info] Requested quantity is out of stock", "items: 1"},
			wantAbsent:   []string{"Tênis Esgotado"},
		},
		{
			name:         "add unknown product",
			args:         []string{"add", "99"},
			wantContains: []string{"[error] Error adding product", "items: 1"},
		},
		{
			name:         "add second product",
			args:         []string{"add", "2"},
			wantContains: []string{"items: 2", "579.70"},
		},
		{
			name:         "update within stock",
			args:         []string{"update", "2", "5"},
			wantContains: []string{"699.50", "139.30"},
		},
		{
			name:         "update above stock",
			args:         []string{"update", "2", "6"},
			wantContains: []string{"[info] Requested quantity is out of stock", "139.30"},
		},
		{
			name:         "update to zero is ignored",
			args:         []string{"update", "2", "0"},
			wantContains: []string{"139.30"},
			wantAbsent:   []string{"[error]", "[info]"},
		},
		{
			name:         "remove missing product",
			args:         []string{"remove", "1"},
			wantContains: []string{"[error] Error removing product", "items: 2"},
		},
		{
			name:         "remove product",
			args:         []string{"remove", "3"},
			wantContains: []string{"items: 1", "699.50"},
			wantAbsent:   []string{"Duramo"},
		},
	}

	for _, step := range steps {
		out, err := run(t, step.args...)
		require.NoError(t, err, step.name)

		for _, s := range step.wantContains {
			assert.Contains(t, out, s, step.name)
		}
		for _, s := range step.wantAbsent {
			assert.NotContains(t, out, s, step.name)
		}
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"id":2`)
	assert.Contains(t, string(data), `"amount":5`)
}

func TestCartctl_BadArgs(t *testing.T) {
	setupEnv(t)

	tests := []struct {
		name      string
		args      []string
		wantError string
	}{
		{
			name:      "non-numeric product id",
			args:      []string{"add", "abc"},
			wantError: "product-id[abc] is not a positive integer",
		},
		{
			name:      "non-numeric amount",
			args:      []string{"update", "1", "many"},
			wantError: "amount[many] is not an integer",
		},
		{
			name:      "missing args",
			args:      []string{"remove"},
			wantError: "accepts 1 arg(s), received 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			require.ErrorContains(t, err, tt.wantError)
		})
	}
}

func TestCartctl_BadConfig(t *testing.T) {
	t.Setenv("CART_STORAGE_BACKEND", "s3")

	_, err := run(t, "cart")
	require.ErrorContains(t, err, "storage.backend[s3] is not supported")
}
