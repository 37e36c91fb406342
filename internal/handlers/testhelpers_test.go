package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mcp-tool-shop-org/budgetwise/internal/engine"
	"github.com/mcp-tool-shop-org/budgetwise/internal/repository"
	"github.com/mcp-tool-shop-org/budgetwise/internal/store"
	validatorpkg "github.com/mcp-tool-shop-org/budgetwise/internal/validator"
)

func init() {
	gin.SetMode(gin.TestMode)
	validatorpkg.Register()
}

// setupHandlerDB creates an in-memory SQLite database migrated with every
// store row, for handler tests that exercise the real repository stack
// rather than a mock.
func setupHandlerDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := db.AutoMigrate(store.AllRows()...); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func newHandlerFactory(db *gorm.DB) repository.UnitOfWorkFactory {
	return store.NewFactory(db)
}

func newHandlerOrchestrator(db *gorm.DB) *engine.Orchestrator {
	return engine.NewOrchestrator(store.NewFactory(db))
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req = req.WithContext(context.Background())
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("parse response body %q: %v", rec.Body.String(), err)
	}
	return out
}

// parseJSONList unmarshals a JSON array response body into out.
func parseJSONList(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) error {
	t.Helper()
	return json.Unmarshal(rec.Body.Bytes(), out)
}

func assertErrorCode(t *testing.T, body map[string]interface{}, want string) {
	t.Helper()
	errs, ok := body["errors"].([]interface{})
	if !ok || len(errs) == 0 {
		t.Fatalf("response has no errors: %+v", body)
	}
	first, ok := errs[0].(map[string]interface{})
	if !ok {
		t.Fatalf("error entry has unexpected shape: %+v", errs[0])
	}
	if first["code"] != want {
		t.Fatalf("error code = %v, want %s", first["code"], want)
	}
}
