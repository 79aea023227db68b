package handlers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rogerio-castellano/product-catalog/internal/catalog"
	mw "github.com/rogerio-castellano/product-catalog/internal/http/middleware"
	"github.com/rogerio-castellano/product-catalog/internal/models"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

const maxImportSize = 10 << 20

type csvRow struct {
	Name        string
	Description string
	Price       string
	Category    string
}

var requiredColumns = []string{"name", "price", "category"}

func parseCSV(file io.Reader) ([]csvRow, error) {
	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("invalid CSV header")
	}

	index := map[string]int{}
	for i, h := range headers {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("invalid CSV header: missing column %q", col)
		}
	}

	field := func(record []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}

	reader.FieldsPerRecord = -1
	var rows []csvRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("CSV read error: %v", err)
		}

		rows = append(rows, csvRow{
			Name:        field(record, "name"),
			Description: field(record, "description"),
			Price:       field(record, "price"),
			Category:    field(record, "category"),
		})
	}
	return rows, nil
}

func (row csvRow) toInput() (models.ProductInput, error) {
	in := models.ProductInput{Name: row.Name, Category: row.Category}
	if row.Description != "" {
		d := row.Description
		in.Description = &d
	}
	if strings.TrimSpace(row.Price) != "" {
		price, err := decimal.NewFromString(strings.TrimSpace(row.Price))
		if err != nil {
			return in, errors.New("invalid price")
		}
		in.Price = &price
	}
	return in, nil
}

func rowError(rowNum int, err error) ProductValidationError {
	var verrs models.ValidationErrors
	if errors.As(err, &verrs) {
		err = errors.New(describe(verrs))
	}
	return ProductValidationError{Description: fmt.Sprintf("row %d: %v", rowNum, err)}
}

// ImportProductsHandler godoc
// @Summary Import products via CSV
// @Description Columns: name, description, price, category. Existing (name, category) pairs are skipped or updated depending on mode.
// @Tags import
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV file"
// @Param mode query string false "Import mode (skip|update)"
// @Success 200 {object} ImportEnvelope
// @Failure 400 {object} ErrorEnvelope
// @Router /api/produtos/import [post]
func ImportProductsHandler(w http.ResponseWriter, r *http.Request) {
	mode := strings.ToLower(r.URL.Query().Get("mode"))
	if mode != "update" {
		mode = "skip" // default
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImportSize)
	file, _, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "Arquivo ausente")
		return
	}
	defer file.Close()

	records, err := parseCSV(file)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	result := ImportProductsResult{Errors: []ProductValidationError{}}

	for i, rec := range records {
		rowNum := i + 2 // header is row 1

		in, err := rec.toInput()
		if err != nil {
			result.Errors = append(result.Errors, rowError(rowNum, err))
			continue
		}

		existing, found, err := productService.FindByNameAndCategory(ctx, strings.TrimSpace(in.Name), strings.TrimSpace(in.Category))
		if err != nil {
			respondInternal(w, r, err, "import products")
			return
		}
		if found {
			if mode == "skip" {
				result.Errors = append(result.Errors, ProductValidationError{
					Description: fmt.Sprintf("row %d: product '%s' already exists in '%s'", rowNum, existing.Name, existing.Category),
				})
				continue
			}
			patch := models.ProductPatch{Price: in.Price, Description: in.Description}
			if _, err := productService.Update(ctx, existing, patch); err != nil {
				result.Errors = append(result.Errors, rowError(rowNum, err))
				continue
			}
			result.UpdatedProductsCount++
			continue
		}

		if _, err := productService.Create(ctx, in); err != nil {
			if errors.Is(err, catalog.ErrDuplicateProduct) {
				err = errors.New(msgDuplicate)
			}
			result.Errors = append(result.Errors, rowError(rowNum, err))
			continue
		}
		result.ImportedProductsCount++
	}

	respond(w, r, http.StatusOK, Envelope{
		Status:  true,
		Message: "Importação concluída",
		Data:    result,
	})
}

func writeProductsCSV(csvWriter *csv.Writer, products []models.Product) error {
	if err := csvWriter.Write([]string{"id", "name", "description", "price", "category", "created_at", "updated_at"}); err != nil {
		return err
	}
	for _, p := range products {
		err := csvWriter.Write([]string{
			fmt.Sprint(p.ID),
			p.Name,
			p.DescriptionOrEmpty(),
			p.PriceString(),
			p.Category,
			p.CreatedAt.Format(time.RFC3339),
			p.UpdatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return err
		}
	}
	csvWriter.Flush()
	return csvWriter.Error()
}

// ExportProductsHandler godoc
// @Summary Export products
// @Tags import
// @Produce text/csv, application/json
// @Param format query string false "Export format (csv or json, default json)"
// @Param category query string false "Only products of this category"
// @Success 200 {file} file
// @Failure 400 {object} ErrorEnvelope
// @Failure 500 {object} ErrorEnvelope
// @Router /api/produtos/export [get]
func ExportProductsHandler(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = "json"
	}
	if format != "csv" && format != "json" {
		respondError(w, r, http.StatusBadRequest, "format must be 'csv' or 'json'")
		return
	}

	var products []models.Product
	var err error
	if category := r.URL.Query().Get("category"); category != "" {
		products, err = productService.ProductsByCategory(r.Context(), category)
	} else {
		products, err = productService.All(r.Context())
	}
	if err != nil {
		respondInternal(w, r, err, "export products")
		return
	}

	switch format {
	case "json":
		w.Header().Set("Content-Disposition", `attachment; filename="products.json"`)
		respond(w, r, http.StatusOK, Envelope{
			Status:  true,
			Message: "Exportar produtos",
			Data:    toProductResponses(products),
		})
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="products.csv"`)
		w.WriteHeader(http.StatusOK)

		csvWriter := csv.NewWriter(w)
		if err := writeProductsCSV(csvWriter, products); err != nil {
			// Headers are already sent; the client sees a truncated file.
			log.WithError(err).WithField("request_id", mw.GetRequestID(r.Context())).Error("export products")
		}
	}
}
