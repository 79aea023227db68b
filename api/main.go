package main

import (
	"os"

	"github.com/rogerio-castellano/product-catalog/internal/cli"
)

// @title Product Catalog API
// @version 1.0
// @description REST API for managing the product catalog.
// @host localhost:8080
// @BasePath /
func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
