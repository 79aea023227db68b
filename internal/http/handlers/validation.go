package handlers

import (
	"strings"

	"github.com/rogerio-castellano/product-catalog/internal/models"
)

type ProductValidationError struct {
	Field       string `json:"field,omitempty"`
	Description string `json:"description"`
}

func toValidationErrors(errs models.ValidationErrors) []ProductValidationError {
	out := make([]ProductValidationError, len(errs))
	for i, e := range errs {
		out[i] = ProductValidationError{Field: e.Field, Description: e.Description}
	}
	return out
}

func describe(errs models.ValidationErrors) string {
	parts := make([]string, len(errs))
	for i, e := range errs {
		parts[i] = e.Description
	}
	return strings.Join(parts, " ")
}
