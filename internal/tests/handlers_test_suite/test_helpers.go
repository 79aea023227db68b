package handlers_test_suite

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rogerio-castellano/product-catalog/internal/catalog"
	handler "github.com/rogerio-castellano/product-catalog/internal/http/handlers"
	"github.com/rogerio-castellano/product-catalog/internal/http/router"
	"github.com/rogerio-castellano/product-catalog/internal/repo"
	"github.com/shopspring/decimal"
)

var productRepo *repo.InMemoryProductRepository

func init() {
	setupTestRepos()
}

func setupTestRepos() {
	productRepo = repo.NewInMemoryProductRepository()
	handler.SetProductService(catalog.NewService(productRepo))
	handler.SetMetricsRepo(repo.NewGatewayMetricsRepository(productRepo))
	handler.SetRedisService(nil)
}

func clearAllProducts() {
	productRepo.Clear()
}

func newRouter() http.Handler {
	return router.NewRouter(router.Options{})
}

func str(s string) *string { return &s }

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func doRequest(r http.Handler, method, path string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func sendProduct(r http.Handler, method, path string, p handler.ProductRequest) *httptest.ResponseRecorder {
	body, _ := json.Marshal(p)
	return doRequest(r, method, path, bytes.NewReader(body))
}

func createProduct(r http.Handler, p handler.ProductRequest) *httptest.ResponseRecorder {
	return sendProduct(r, http.MethodPost, "/api/produtos", p)
}

// mustCreateProduct creates a product and returns its id.
func mustCreateProduct(t *testing.T, r http.Handler, name, category, p string) int {
	t.Helper()
	w := createProduct(r, handler.ProductRequest{Name: str(name), Category: str(category), Price: price(p)})
	if w.Code != http.StatusCreated {
		t.Fatalf("product creation failed: %d %s", w.Code, w.Body.String())
	}
	return decodeProduct(t, w).Data.Id
}

func seedProducts(t *testing.T, r http.Handler, n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		mustCreateProduct(t, r, fmt.Sprintf("Produto %02d", i), "Geral", "10")
	}
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("error decoding response: %v", err)
	}
	return v
}

func decodeProduct(t *testing.T, w *httptest.ResponseRecorder) handler.ProductEnvelope {
	t.Helper()
	return decode[handler.ProductEnvelope](t, w)
}

func multipartCSV(csvContent string, filename string) (*bytes.Buffer, string) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, _ := writer.CreateFormFile("file", filename)
	part.Write([]byte(csvContent))

	writer.Close()
	return &buf, writer.FormDataContentType()
}

func importCSV(r http.Handler, csvContent, mode string) *httptest.ResponseRecorder {
	body, contentType := multipartCSV(csvContent, "products.csv")
	path := "/api/produtos/import"
	if mode != "" {
		path += "?mode=" + mode
	}
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
