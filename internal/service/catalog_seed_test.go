package service

import (
	"context"
	"testing"

	"github.com/Eursukkul/booking-microservice/wizard-service/internal/catalog"
	"github.com/Eursukkul/booking-microservice/wizard-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSeedCatalog_EmptyTable(t *testing.T) {
	var written []models.Service
	repo := &mockServiceRepo{
		countFn: func(ctx context.Context) (int64, error) { return 0, nil },
		upsertFn: func(ctx context.Context, services []models.Service) error {
			written = services
			return nil
		},
	}

	n, err := SeedCatalog(context.Background(), repo, catalog.NewFixtureSource("../catalog/testdata/catalog.json"), zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	require.Len(t, written, 5)
	assert.Equal(t, "120.5", written[2].BasePrice.String())
}

func TestSeedCatalog_SkipsPopulatedTable(t *testing.T) {
	repo := &mockServiceRepo{
		countFn: func(ctx context.Context) (int64, error) { return 3, nil },
		upsertFn: func(ctx context.Context, services []models.Service) error {
			t.Fatal("populated table must not be seeded")
			return nil
		},
	}

	n, err := SeedCatalog(context.Background(), repo, catalog.NewFixtureSource("does-not-matter.json"), zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestSeedCatalog_MissingFile(t *testing.T) {
	repo := &mockServiceRepo{
		countFn: func(ctx context.Context) (int64, error) { return 0, nil },
	}

	_, err := SeedCatalog(context.Background(), repo, catalog.NewFixtureSource("missing.json"), zap.NewNop())
	assert.ErrorContains(t, err, "read seed catalog")
}
