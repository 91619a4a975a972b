package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/inventory-api/internal/adapter/storage"
	"github.com/rl1809/inventory-api/internal/core/service"
)

type testEnv struct {
	server  *httptest.Server
	cleanup func()
}

func setupTestEnv(t *testing.T) *testEnv {
	mysqlDSN := os.Getenv("MYSQL_DSN")
	if mysqlDSN == "" {
		mysqlDSN = "root:root@tcp(localhost:3306)/inventory?parseTime=true"
	}

	ctx := context.Background()
	db, err := storage.OpenMySQL(ctx, mysqlDSN, storage.PoolOptions{MaxOpenConns: 5, MaxIdleConns: 5})
	if err != nil {
		t.Skipf("MySQL not available: %v", err)
	}

	adapter := storage.NewMySQLAdapter(db)
	if err := adapter.EnsureSchema(ctx); err != nil {
		db.Close()
		t.Fatalf("ensure schema: %v", err)
	}

	svc := service.NewInventoryService(adapter, nil)
	server := httptest.NewServer(NewHTTPHandler(svc, 1<<20).Routes())

	return &testEnv{
		server: server,
		cleanup: func() {
			server.Close()
			db.Close()
		},
	}
}

func (e *testEnv) call(t *testing.T, method, path string, body any) (int, []byte) {
	t.Helper()

	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		payload = b
	}

	req, err := http.NewRequest(method, e.server.URL+path, bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, buf.Bytes()
}

func TestIntegration_ItemLifecycle(t *testing.T) {
	env := setupTestEnv(t)
	defer env.cleanup()

	status, body := env.call(t, http.MethodPost, "/inventory/", map[string]any{
		"name":        "integration-widget",
		"quantity":    10,
		"description": "lifecycle",
		"unit_price":  3.75,
	})
	require.Equal(t, http.StatusCreated, status, string(body))

	var created itemJSON
	require.NoError(t, json.Unmarshal(body, &created))
	path := fmt.Sprintf("/inventory/%d", created.ID)
	defer env.call(t, http.MethodDelete, path, nil)

	// Partial update keeps the other fields
	status, body = env.call(t, http.MethodPut, path, map[string]any{"quantity": 5})
	require.Equal(t, http.StatusOK, status, string(body))

	var updated itemJSON
	require.NoError(t, json.Unmarshal(body, &updated))
	assert.Equal(t, int64(5), updated.Quantity)
	assert.Equal(t, "integration-widget", updated.Name)
	assert.Equal(t, "lifecycle", updated.Description)
	assert.Equal(t, 3.75, updated.UnitPrice)

	// Out-of-range quantity is rejected and rolled back
	status, body = env.call(t, http.MethodPut, path, map[string]any{"name": "renamed", "quantity": int64(1) << 40})
	require.Equal(t, http.StatusBadRequest, status, string(body))
	assert.Contains(t, string(body), "quantity out of range")

	status, body = env.call(t, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, status)
	var fetched itemJSON
	require.NoError(t, json.Unmarshal(body, &fetched))
	assert.Equal(t, int64(5), fetched.Quantity)
	assert.Equal(t, "integration-widget", fetched.Name)

	// Listed exactly once
	status, body = env.call(t, http.MethodGet, "/inventory/", nil)
	require.Equal(t, http.StatusOK, status)
	var items []itemJSON
	require.NoError(t, json.Unmarshal(body, &items))
	var seen int
	for _, it := range items {
		if it.ID == created.ID {
			seen++
		}
	}
	assert.Equal(t, 1, seen)

	// Delete is permanent
	status, _ = env.call(t, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, status)

	status, body = env.call(t, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, string(body), fmt.Sprint(created.ID))

	status, _ = env.call(t, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestIntegration_CreateMissingField(t *testing.T) {
	env := setupTestEnv(t)
	defer env.cleanup()

	status, body := env.call(t, http.MethodPost, "/inventory/", map[string]any{
		"name":     "no-price",
		"quantity": 1,
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(body), "unit_price")
}
