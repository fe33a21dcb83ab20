package ports

import (
	"aed-location-service/internal/domain"
	"context"
)

// Contract for retrieving the published AED open data as raw rows.
type OpenDataSource interface {
	Fetch(ctx context.Context) ([]domain.LocationInput, error)
}
