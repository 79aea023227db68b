package handlers

import (
	"github.com/rogerio-castellano/product-catalog/internal/catalog"
	"github.com/rogerio-castellano/product-catalog/internal/redissvc"
	"github.com/rogerio-castellano/product-catalog/internal/repo"
)

var (
	productService *catalog.Service
	metricsRepo    repo.MetricsRepository
	redisService   *redissvc.RedisService
)

func SetProductService(s *catalog.Service) {
	productService = s
}

func SetMetricsRepo(r repo.MetricsRepository) {
	metricsRepo = r
}

// SetRedisService enables the cache check of the health endpoint. Nil disables it.
func SetRedisService(rs *redissvc.RedisService) {
	redisService = rs
}
