package handlers

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/rogerio-castellano/product-catalog/internal/models"
	"github.com/rogerio-castellano/product-catalog/internal/repo"
	"github.com/shopspring/decimal"
)

// ProductRequest is the body of create and update calls. On update, absent or
// null fields keep their stored values.
type ProductRequest struct {
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty" swaggertype:"number"`
	Category    *string          `json:"category,omitempty"`
}

// fieldTypeError reports a well-formed body holding a value of the wrong type.
type fieldTypeError struct {
	Field string
}

func (e *fieldTypeError) Error() string {
	return "invalid value for field " + e.Field
}

func (e *fieldTypeError) description() string {
	if e.Field == "price" {
		return "O preço deve ser um número."
	}
	return "O campo " + e.Field + " deve ser um texto."
}

// UnmarshalJSON accepts the price as a number or a numeric string.
func (p *ProductRequest) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name        *string         `json:"name"`
		Description *string         `json:"description"`
		Price       json.RawMessage `json:"price"`
		Category    *string         `json:"category"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return &fieldTypeError{Field: typeErr.Field}
		}
		return err
	}

	*p = ProductRequest{Name: raw.Name, Description: raw.Description, Category: raw.Category}
	if len(raw.Price) > 0 && string(raw.Price) != "null" {
		var price decimal.Decimal
		if err := price.UnmarshalJSON(raw.Price); err != nil {
			return &fieldTypeError{Field: "price"}
		}
		p.Price = &price
	}
	return nil
}

func (p ProductRequest) toInput() models.ProductInput {
	in := models.ProductInput{Description: p.Description, Price: p.Price}
	if p.Name != nil {
		in.Name = *p.Name
	}
	if p.Category != nil {
		in.Category = *p.Category
	}
	return in
}

func (p ProductRequest) toPatch() models.ProductPatch {
	return models.ProductPatch{
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Category:    p.Category,
	}
}

type ProductResponse struct {
	Id          int       `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Price       float64   `json:"price"`
	Category    string    `json:"category"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toProductResponse(p models.Product) ProductResponse {
	return ProductResponse{
		Id:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.InexactFloat64(),
		Category:    p.Category,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toProductResponses(products []models.Product) []ProductResponse {
	resp := make([]ProductResponse, len(products))
	for i, p := range products {
		resp[i] = toProductResponse(p)
	}
	return resp
}

type Pagination struct {
	Total       int `json:"total"`
	PerPage     int `json:"per_page"`
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
}

func newPagination(total, page, limit int) *Pagination {
	return &Pagination{
		Total:       total,
		PerPage:     limit,
		CurrentPage: page,
		LastPage:    (total + limit - 1) / limit,
	}
}

// Envelope wraps every API response.
type Envelope struct {
	Status     bool                     `json:"status"`
	Message    string                   `json:"message"`
	Data       any                      `json:"data,omitempty"`
	Pagination *Pagination              `json:"pagination,omitempty"`
	Errors     []ProductValidationError `json:"errors,omitempty"`
}

// The typed envelopes below document responses and let clients decode them.

type ProductEnvelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    ProductResponse `json:"data"`
}

type ProductListEnvelope struct {
	Status     bool              `json:"status"`
	Message    string            `json:"message"`
	Data       []ProductResponse `json:"data"`
	Pagination *Pagination       `json:"pagination,omitempty"`
}

type CategoriesEnvelope struct {
	Status  bool     `json:"status"`
	Message string   `json:"message"`
	Data    []string `json:"data"`
}

type ErrorEnvelope struct {
	Status  bool                     `json:"status"`
	Message string                   `json:"message"`
	Errors  []ProductValidationError `json:"errors,omitempty"`
}

type ImportProductsResult struct {
	ImportedProductsCount int                      `json:"imported"`
	UpdatedProductsCount  int                      `json:"updated"`
	Errors                []ProductValidationError `json:"errors"`
}

type ImportEnvelope struct {
	Status  bool                 `json:"status"`
	Message string               `json:"message"`
	Data    ImportProductsResult `json:"data"`
}

type MetricsEnvelope struct {
	Status  bool         `json:"status"`
	Message string       `json:"message"`
	Data    repo.Metrics `json:"data"`
}

type HealthEnvelope struct {
	Status  bool              `json:"status"`
	Message string            `json:"message"`
	Data    map[string]string `json:"data"`
}
