package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rogerio-castellano/product-catalog/internal/catalog"
	"github.com/rogerio-castellano/product-catalog/internal/models"
	"github.com/rogerio-castellano/product-catalog/internal/repo"
)

// writeFailure maps service errors onto the envelope responses.
func writeFailure(w http.ResponseWriter, r *http.Request, err error, action string) {
	var verrs models.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		respond(w, r, http.StatusUnprocessableEntity, Envelope{
			Status:  false,
			Message: msgInvalidData,
			Errors:  toValidationErrors(verrs),
		})
	case errors.Is(err, catalog.ErrDuplicateProduct):
		respondError(w, r, http.StatusUnprocessableEntity, msgDuplicate)
	case errors.Is(err, repo.ErrProductNotFound):
		respondError(w, r, http.StatusNotFound, msgNotFound)
	default:
		respondInternal(w, r, err, action)
	}
}

// writeBodyError answers 422 for a value of the wrong type and 400 for
// anything that is not a single JSON object.
func writeBodyError(w http.ResponseWriter, r *http.Request, err error) {
	var typeErr *fieldTypeError
	if errors.As(err, &typeErr) {
		respond(w, r, http.StatusUnprocessableEntity, Envelope{
			Status:  false,
			Message: msgInvalidData,
			Errors:  []ProductValidationError{{Field: typeErr.Field, Description: typeErr.description()}},
		})
		return
	}
	respondError(w, r, http.StatusBadRequest, msgInvalidInput)
}

// GetProductsHandler godoc
// @Summary List products
// @Description Paginated listing in insertion order
// @Tags products
// @Produce json
// @Param page query int false "Page number (default 1)"
// @Param limit query int false "Page size (default 10, max 100)"
// @Success 200 {object} ProductListEnvelope
// @Failure 500 {object} ErrorEnvelope
// @Router /api/produtos [get]
func GetProductsHandler(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)

	products, total, err := productService.List(r.Context(), page, limit)
	if err != nil {
		respondInternal(w, r, err, "list products")
		return
	}

	respond(w, r, http.StatusOK, Envelope{
		Status:     true,
		Message:    "Listar produtos",
		Data:       toProductResponses(products),
		Pagination: newPagination(total, page, limit),
	})
}

// SearchProductsHandler godoc
// @Summary Search products
// @Description Case-insensitive substring match on name or description
// @Tags products
// @Produce json
// @Param q query string false "Search term"
// @Param page query int false "Page number (default 1)"
// @Param limit query int false "Page size (default 10, max 100)"
// @Success 200 {object} ProductListEnvelope
// @Failure 500 {object} ErrorEnvelope
// @Router /api/produtos/search [get]
func SearchProductsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	page, limit := pageParams(r)

	products, total, err := productService.Search(r.Context(), q, page, limit)
	if err != nil {
		respondInternal(w, r, err, "search products")
		return
	}

	respond(w, r, http.StatusOK, Envelope{
		Status:     true,
		Message:    "Resultados da pesquisa",
		Data:       toProductResponses(products),
		Pagination: newPagination(total, page, limit),
	})
}

// GetCategoriesHandler godoc
// @Summary List categories
// @Tags categories
// @Produce json
// @Success 200 {object} CategoriesEnvelope
// @Failure 500 {object} ErrorEnvelope
// @Router /api/produtos/categorias [get]
func GetCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	categories, err := productService.Categories(r.Context())
	if err != nil {
		respondInternal(w, r, err, "list categories")
		return
	}

	respond(w, r, http.StatusOK, Envelope{
		Status:  true,
		Message: "Categorias de produtos",
		Data:    categories,
	})
}

// GetProductsByCategoryHandler godoc
// @Summary List the products of a category
// @Tags categories
// @Produce json
// @Param category path string true "Category"
// @Success 200 {object} ProductListEnvelope
// @Failure 404 {object} ErrorEnvelope
// @Failure 500 {object} ErrorEnvelope
// @Router /api/produtos/categorias/{category} [get]
func GetProductsByCategoryHandler(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")

	products, err := productService.ProductsByCategory(r.Context(), category)
	if err != nil {
		respondInternal(w, r, err, "list products by category")
		return
	}
	if len(products) == 0 {
		respondError(w, r, http.StatusNotFound, "Nenhum produto encontrado para esta categoria")
		return
	}

	respond(w, r, http.StatusOK, Envelope{
		Status:  true,
		Message: "Produtos na categoria: " + category,
		Data:    toProductResponses(products),
	})
}

// GetProductByIDHandler godoc
// @Summary Get product by ID
// @Tags products
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} ProductEnvelope
// @Failure 400 {object} ErrorEnvelope
// @Failure 404 {object} ErrorEnvelope
// @Failure 500 {object} ErrorEnvelope
// @Router /api/produtos/{id} [get]
func GetProductByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := productIDParam(r)
	if !ok {
		respondError(w, r, http.StatusBadRequest, msgInvalidID)
		return
	}

	product, found, err := productService.Get(r.Context(), id)
	if err != nil {
		respondInternal(w, r, err, "get product")
		return
	}
	if !found {
		respondError(w, r, http.StatusNotFound, msgNotFound)
		return
	}

	respond(w, r, http.StatusOK, Envelope{
		Status:  true,
		Message: "Detalhes do produto",
		Data:    toProductResponse(product),
	})
}

// CreateProductHandler godoc
// @Summary Create a new product
// @Description The (name, category) pair must be unique
// @Tags products
// @Accept json
// @Produce json
// @Param product body ProductRequest true "Product to add"
// @Success 201 {object} ProductEnvelope
// @Failure 400 {object} ErrorEnvelope
// @Failure 422 {object} ErrorEnvelope
// @Failure 500 {object} ErrorEnvelope
// @Router /api/produtos [post]
func CreateProductHandler(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := readJSON(w, r, &req); err != nil {
		writeBodyError(w, r, err)
		return
	}

	created, err := productService.Create(r.Context(), req.toInput())
	if err != nil {
		writeFailure(w, r, err, "create product")
		return
	}

	respond(w, r, http.StatusCreated, Envelope{
		Status:  true,
		Message: "Produto criado com sucesso",
		Data:    toProductResponse(created),
	})
}

// UpdateProductHandler godoc
// @Summary Update a product
// @Description Partial update: fields left out of the body keep their values
// @Tags products
// @Accept json
// @Produce json
// @Param id path int true "Product ID"
// @Param product body ProductRequest true "Fields to change"
// @Success 200 {object} ProductEnvelope
// @Failure 400 {object} ErrorEnvelope
// @Failure 404 {object} ErrorEnvelope
// @Failure 422 {object} ErrorEnvelope
// @Failure 500 {object} ErrorEnvelope
// @Router /api/produtos/{id} [put]
func UpdateProductHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := productIDParam(r)
	if !ok {
		respondError(w, r, http.StatusBadRequest, msgInvalidID)
		return
	}

	var req ProductRequest
	if err := readJSON(w, r, &req); err != nil {
		writeBodyError(w, r, err)
		return
	}

	product, found, err := productService.Get(r.Context(), id)
	if err != nil {
		respondInternal(w, r, err, "get product")
		return
	}
	if !found {
		respondError(w, r, http.StatusNotFound, msgNotFound)
		return
	}

	updated, err := productService.Update(r.Context(), product, req.toPatch())
	if err != nil {
		writeFailure(w, r, err, "update product")
		return
	}

	respond(w, r, http.StatusOK, Envelope{
		Status:  true,
		Message: "Produto atualizado com sucesso",
		Data:    toProductResponse(updated),
	})
}

// DeleteProductHandler godoc
// @Summary Delete a product
// @Tags products
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} ErrorEnvelope "Deleted successfully"
// @Failure 400 {object} ErrorEnvelope
// @Failure 404 {object} ErrorEnvelope
// @Failure 500 {object} ErrorEnvelope
// @Router /api/produtos/{id} [delete]
func DeleteProductHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := productIDParam(r)
	if !ok {
		respondError(w, r, http.StatusBadRequest, msgInvalidID)
		return
	}

	product, found, err := productService.Get(r.Context(), id)
	if err != nil {
		respondInternal(w, r, err, "get product")
		return
	}
	if !found {
		respondError(w, r, http.StatusNotFound, msgNotFound)
		return
	}

	if err := productService.Delete(r.Context(), product); err != nil {
		writeFailure(w, r, err, "delete product")
		return
	}

	respond(w, r, http.StatusOK, Envelope{Status: true, Message: "Produto excluído com sucesso"})
}
