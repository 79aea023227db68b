package handlers_test_suite

import (
	"encoding/csv"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	handler "github.com/rogerio-castellano/product-catalog/internal/http/handlers"
	log "github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
)

func TestImportProductsHandler_Valid(t *testing.T) {
	t.Cleanup(clearAllProducts)
	r := newRouter()

	csvContent := `name,description,price,category
Shirt,Cotton shirt,49.90,Roupas
Jeans,,120,Roupas
Book,Paperback,35.5,Livros`

	w := importCSV(r, csvContent, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d: %s", w.Code, w.Body.String())
	}

	resp := decode[handler.ImportEnvelope](t, w)
	if resp.Message != "Importação concluída" {
		t.Errorf("unexpected message %q", resp.Message)
	}
	if resp.Data.ImportedProductsCount != 3 {
		t.Errorf("expected 3 imported, got %d", resp.Data.ImportedProductsCount)
	}
	if len(resp.Data.Errors) != 0 {
		t.Errorf("expected no errors, got %v", resp.Data.Errors)
	}

	list := decode[handler.ProductListEnvelope](t, doRequest(r, http.MethodGet, "/api/produtos", nil))
	if list.Pagination.Total != 3 {
		t.Errorf("expected 3 stored products, got %d", list.Pagination.Total)
	}
	if list.Data[1].Description != nil {
		t.Errorf("expected empty description to be stored as null, got %q", *list.Data[1].Description)
	}
}

func TestImportProductsHandler_Modes(t *testing.T) {
	t.Cleanup(clearAllProducts)
	r := newRouter()
	mustCreateProduct(t, r, "Shirt", "Roupas", "10")

	csvContent := `name,description,price,category
Shirt,Updated,99,Roupas
Socks,,5,Roupas`

	t.Run("Skip", func(t *testing.T) {
		resp := decode[handler.ImportEnvelope](t, importCSV(r, csvContent, "skip"))
		if resp.Data.ImportedProductsCount != 1 || resp.Data.UpdatedProductsCount != 0 {
			t.Errorf("unexpected counts %+v", resp.Data)
		}
		if len(resp.Data.Errors) != 1 || !strings.Contains(resp.Data.Errors[0].Description, "row 2") {
			t.Errorf("expected the existing product to be reported, got %v", resp.Data.Errors)
		}
	})

	t.Run("Update", func(t *testing.T) {
		resp := decode[handler.ImportEnvelope](t, importCSV(r, csvContent, "update"))
		// Socks was imported by the previous run.
		if resp.Data.ImportedProductsCount != 0 || resp.Data.UpdatedProductsCount != 2 {
			t.Errorf("unexpected counts %+v", resp.Data)
		}

		list := decode[handler.ProductListEnvelope](t, doRequest(r, http.MethodGet, "/api/produtos/search?q=shirt", nil))
		if len(list.Data) != 1 || list.Data[0].Price != 99 {
			t.Fatalf("expected updated shirt, got %+v", list.Data)
		}
		if list.Data[0].Description == nil || *list.Data[0].Description != "Updated" {
			t.Errorf("expected updated description, got %v", list.Data[0].Description)
		}
	})
}

func TestImportProductsHandler_InvalidRows(t *testing.T) {
	t.Cleanup(clearAllProducts)
	r := newRouter()

	csvContent := `name,price,category
,10,Roupas
Shirt,abc,Roupas
Hat,-3,Roupas
Cap,,Roupas
Scarf,12,`

	resp := decode[handler.ImportEnvelope](t, importCSV(r, csvContent, ""))
	if resp.Data.ImportedProductsCount != 0 {
		t.Errorf("expected nothing imported, got %d", resp.Data.ImportedProductsCount)
	}
	if len(resp.Data.Errors) != 5 {
		t.Fatalf("expected 5 errors, got %v", resp.Data.Errors)
	}
	for i, e := range resp.Data.Errors {
		prefix := "row " + string(rune('2'+i)) + ":"
		if !strings.HasPrefix(e.Description, prefix) {
			t.Errorf("expected error %d to start with %q, got %q", i, prefix, e.Description)
		}
	}
	if !strings.Contains(resp.Data.Errors[1].Description, "invalid price") {
		t.Errorf("expected invalid price error, got %q", resp.Data.Errors[1].Description)
	}
}

func TestImportProductsHandler_BadRequests(t *testing.T) {
	t.Cleanup(clearAllProducts)
	r := newRouter()

	t.Run("Missing column", func(t *testing.T) {
		w := importCSV(r, "name,description\nShirt,Cotton", "")
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
		if msg := decode[handler.ErrorEnvelope](t, w).Message; !strings.Contains(msg, "price") {
			t.Errorf("expected missing column to be named, got %q", msg)
		}
	})

	t.Run("Missing file", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/produtos/import", strings.NewReader("{}"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
		if msg := decode[handler.ErrorEnvelope](t, w).Message; msg != "Arquivo ausente" {
			t.Errorf("unexpected message %q", msg)
		}
	})
}

func TestExportProductsHandler(t *testing.T) {
	t.Cleanup(clearAllProducts)
	r := newRouter()
	mustCreateProduct(t, r, "Shirt", "Roupas", "49.9")
	mustCreateProduct(t, r, "Book", "Livros", "35")

	t.Run("CSV", func(t *testing.T) {
		w := doRequest(r, http.MethodGet, "/api/produtos/export?format=csv", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200 OK, got %d", w.Code)
		}
		if ct := w.Header().Get("Content-Type"); ct != "text/csv" {
			t.Errorf("expected text/csv, got %q", ct)
		}

		records, err := csv.NewReader(w.Body).ReadAll()
		if err != nil {
			t.Fatalf("invalid csv: %v", err)
		}
		if len(records) != 3 {
			t.Fatalf("expected header and 2 rows, got %d", len(records))
		}
		if strings.Join(records[0], ",") != "id,name,description,price,category,created_at,updated_at" {
			t.Errorf("unexpected header %v", records[0])
		}
		if records[1][1] != "Shirt" || records[1][3] != "49.90" {
			t.Errorf("unexpected row %v", records[1])
		}
	})

	t.Run("JSON by category", func(t *testing.T) {
		w := doRequest(r, http.MethodGet, "/api/produtos/export?category=Livros", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200 OK, got %d", w.Code)
		}
		resp := decode[handler.ProductListEnvelope](t, w)
		if len(resp.Data) != 1 || resp.Data[0].Name != "Book" {
			t.Errorf("unexpected export %+v", resp.Data)
		}
	})

	t.Run("Unknown format", func(t *testing.T) {
		w := doRequest(r, http.MethodGet, "/api/produtos/export?format=xml", nil)
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", w.Code)
		}
	})
}

// brokenConnWriter accepts headers but fails every body write.
type brokenConnWriter struct {
	header http.Header
	status int
}

func (b *brokenConnWriter) Header() http.Header { return b.header }
func (b *brokenConnWriter) WriteHeader(status int) { b.status = status }
func (b *brokenConnWriter) Write([]byte) (int, error) { return 0, errors.New("connection reset by peer") }

func TestExportProductsHandler_LogsWriteFailure(t *testing.T) {
	t.Cleanup(clearAllProducts)
	r := newRouter()
	mustCreateProduct(t, r, "Shirt", "Roupas", "49.9")

	hook := logtest.NewGlobal()
	t.Cleanup(func() { log.StandardLogger().ReplaceHooks(make(log.LevelHooks)) })

	w := &brokenConnWriter{header: http.Header{}}
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/produtos/export?format=csv", nil))

	if w.status != http.StatusOK {
		t.Fatalf("expected 200 header before the body, got %d", w.status)
	}

	var logged *log.Entry
	for _, e := range hook.AllEntries() {
		if e.Message == "export products" {
			logged = e
		}
	}
	if logged == nil {
		t.Fatalf("expected the failed export to be logged")
	}
	if logged.Level != log.ErrorLevel {
		t.Errorf("expected error level, got %v", logged.Level)
	}
	if err, ok := logged.Data[log.ErrorKey].(error); !ok || !strings.Contains(err.Error(), "connection reset") {
		t.Errorf("expected the write error in the entry, got %v", logged.Data[log.ErrorKey])
	}
}
