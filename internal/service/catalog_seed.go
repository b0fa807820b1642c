package service

import (
	"context"
	"fmt"

	"github.com/Eursukkul/booking-microservice/wizard-service/internal/catalog"
	"github.com/Eursukkul/booking-microservice/wizard-service/internal/models"
	"github.com/Eursukkul/booking-microservice/wizard-service/internal/repository"
	"go.uber.org/zap"
)

// SeedCatalog fills an empty services table from src. It returns the number
// of services written; a table that already has rows is left alone.
func SeedCatalog(ctx context.Context, repo repository.ServiceRepository, src catalog.Source, logger *zap.Logger) (int, error) {
	count, err := repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count services: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	raws, err := src.FetchServices(ctx)
	if err != nil {
		return 0, fmt.Errorf("read seed catalog: %w", err)
	}

	services := make([]models.Service, 0, len(raws))
	for i, raw := range raws {
		svc, err := catalog.Normalize(raw)
		if err != nil {
			logger.Warn("skipping seed entry", zap.Int("index", i), zap.Error(err))
			continue
		}
		services = append(services, svc)
	}

	if err := repo.Upsert(ctx, services); err != nil {
		return 0, fmt.Errorf("seed services: %w", err)
	}
	logger.Info("seeded service catalog", zap.Int("services", len(services)))
	return len(services), nil
}
