package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// RawService is a catalog entry as delivered by a source. Numeric fields may
// arrive as numbers or strings; Normalize settles them once.
type RawService struct {
	ID                any        `json:"id"`
	Name              any        `json:"name"`
	Description       any        `json:"description"`
	Category          any        `json:"category"`
	Image             any        `json:"image"`
	BasePrice         any        `json:"basePrice"`
	Price             any        `json:"price"`
	MinGuests         any        `json:"minGuests"`
	MaxGuests         any        `json:"maxGuests"`
	MinHours          any        `json:"minHours"`
	Duration          any        `json:"duration"`
	DurationMinutes   any        `json:"durationMinutes"`
	MaxBookingsPerDay any        `json:"maxBookingsPerDay"`
	AddOns            []RawAddOn `json:"addOns"`
}

type RawAddOn struct {
	ID          any `json:"id"`
	ServiceID   any `json:"serviceId"`
	Name        any `json:"name"`
	Description any `json:"description"`
	Price       any `json:"price"`
}

// Source delivers the catalog. Implementations: the services table
// (repository.ServiceRepository) and FixtureSource.
type Source interface {
	FetchServices(ctx context.Context) ([]RawService, error)
}

// FixtureSource reads a static JSON catalog from disk on every fetch.
type FixtureSource struct {
	path string
}

func NewFixtureSource(path string) *FixtureSource {
	return &FixtureSource{path: path}
}

func (f *FixtureSource) FetchServices(ctx context.Context) ([]RawService, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("read catalog fixture: %w", err)
	}
	return DecodeRawServices(data)
}

// DecodeRawServices accepts a bare array or an object wrapping the array in
// "services" or "data".
func DecodeRawServices(data []byte) ([]RawService, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	if data[0] == '[' {
		var list []RawService
		if err := decode(data, &list); err != nil {
			return nil, fmt.Errorf("decode catalog: %w", err)
		}
		return list, nil
	}

	var wrapped struct {
		Services []RawService `json:"services"`
		Data     []RawService `json:"data"`
	}
	if err := decode(data, &wrapped); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if wrapped.Services != nil {
		return wrapped.Services, nil
	}
	return wrapped.Data, nil
}

func decode(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}
