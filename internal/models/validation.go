package models

import "strings"

// ValidationError describes a single invalid field.
type ValidationError struct {
	Field       string `json:"field"`
	Description string `json:"description"`
}

// ValidationErrors is returned by NewProduct and Product.Apply.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	parts := make([]string, len(v))
	for i, e := range v {
		parts[i] = e.Field + ": " + e.Description
	}
	return "invalid product: " + strings.Join(parts, "; ")
}

// Has reports whether field is among the errors.
func (v ValidationErrors) Has(field string) bool {
	for _, e := range v {
		if e.Field == field {
			return true
		}
	}
	return false
}
