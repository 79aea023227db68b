package handlers_integrated_test_suite

import (
	"net/http"
	"testing"

	handler "github.com/rogerio-castellano/product-catalog/internal/http/handlers"
)

func TestProductLifecycle(t *testing.T) {
	t.Cleanup(clearAllProducts)
	r := newRouter()

	created := createProduct(t, r, "Notebook", "Eletrônicos", "3499.999")
	if created.Price != 3500 {
		t.Errorf("expected price rounded to 3500, got %v", created.Price)
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Errorf("expected timestamps to be set by the database")
	}

	w := doRequest(r, http.MethodPut, productPath(created.Id), handler.ProductRequest{Description: str("i7, 16GB")})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d: %s", w.Code, w.Body.String())
	}
	updated := decode[handler.ProductEnvelope](t, w).Data
	if updated.Description == nil || *updated.Description != "i7, 16GB" || updated.Name != "Notebook" {
		t.Errorf("unexpected update result %+v", updated)
	}

	w = doRequest(r, http.MethodGet, productPath(created.Id), nil)
	if got := decode[handler.ProductEnvelope](t, w).Data; got.Price != 3500 || *got.Description != "i7, 16GB" {
		t.Errorf("unexpected stored product %+v", got)
	}

	if w := doRequest(r, http.MethodDelete, productPath(created.Id), nil); w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK on delete, got %d", w.Code)
	}
	if w := doRequest(r, http.MethodGet, productPath(created.Id), nil); w.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", w.Code)
	}
}

func TestUniqueNameAndCategory(t *testing.T) {
	t.Cleanup(clearAllProducts)
	r := newRouter()

	createProduct(t, r, "Caneta", "Papelaria", "2.5")
	other := createProduct(t, r, "Lápis", "Papelaria", "1")

	w := doRequest(r, http.MethodPost, "/api/produtos", handler.ProductRequest{
		Name: str("Caneta"), Category: str("Papelaria"), Price: price("3"),
	})
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 on duplicate create, got %d", w.Code)
	}

	w = doRequest(r, http.MethodPut, productPath(other.Id), handler.ProductRequest{Name: str("Caneta")})
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 on duplicate update, got %d", w.Code)
	}
}

func TestSearchAndCategories(t *testing.T) {
	t.Cleanup(clearAllProducts)
	r := newRouter()

	createProduct(t, r, "Camisa 100%", "Roupas", "50")
	createProduct(t, r, "Camisola", "Roupas", "80")
	createProduct(t, r, "Livro", "Livros", "30")

	list := decode[handler.ProductListEnvelope](t, doRequest(r, http.MethodGet, "/api/produtos/search?q=CAMIS", nil))
	if list.Pagination.Total != 2 {
		t.Errorf("expected case-insensitive search to find 2, got %d", list.Pagination.Total)
	}

	list = decode[handler.ProductListEnvelope](t, doRequest(r, http.MethodGet, "/api/produtos/search?q=100%25", nil))
	if list.Pagination.Total != 1 || list.Data[0].Name != "Camisa 100%" {
		t.Errorf("expected a literal %% match, got %+v", list.Data)
	}

	cats := decode[handler.CategoriesEnvelope](t, doRequest(r, http.MethodGet, "/api/produtos/categorias", nil))
	if len(cats.Data) != 2 || cats.Data[0] != "Livros" || cats.Data[1] != "Roupas" {
		t.Errorf("unexpected categories %v", cats.Data)
	}

	if w := doRequest(r, http.MethodGet, "/api/produtos/categorias/Nada", nil); w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for an empty category, got %d", w.Code)
	}
}

func TestDashboardMetrics(t *testing.T) {
	t.Cleanup(clearAllProducts)
	r := newRouter()

	createProduct(t, r, "Camisa", "Roupas", "50")
	createProduct(t, r, "Calça", "Roupas", "100")
	createProduct(t, r, "Livro", "Livros", "30.10")

	m := decode[handler.MetricsEnvelope](t, doRequest(r, http.MethodGet, "/api/metrics/dashboard", nil)).Data
	if m.TotalProducts != 3 || m.TotalCategories != 2 {
		t.Errorf("unexpected totals %+v", m)
	}
	if m.MostExpensiveProduct.Name != "Calça" {
		t.Errorf("unexpected most expensive product %+v", m.MostExpensiveProduct)
	}
}
