package usecase

import (
	"context"
	"fmt"
	"time"

	out "bustracker/internal/admin/application/ports/out"
	fleet "bustracker/internal/fleet/domain"
	"bustracker/internal/shared/logger"
)

// SeedIfEmpty один раз наполняет пустое хранилище примерами.
// На непустом хранилище ничего не делает; к steady-state поведению
// отношения не имеет.
func SeedIfEmpty(ctx context.Context, store out.FleetStore, log *logger.Logger) error {
	return seedIfEmpty(ctx, store, log, time.Now)
}

func seedIfEmpty(ctx context.Context, store out.FleetStore, log *logger.Logger, now func() time.Time) error {
	empty, err := store.Empty(ctx)
	if err != nil {
		return fmt.Errorf("check store empty: %w", err)
	}
	if !empty {
		return nil
	}

	millis := now().UnixMilli()
	sample := []fleet.BusRecord{
		{
			BusID:      "BUS001",
			Driver:     "Raj",
			Lat:        fleet.Float64Ptr(12.9716),
			Lng:        fleet.Float64Ptr(77.5946),
			Route:      "101",
			Status:     fleet.StatusOnline,
			LastUpdate: millis,
		},
		{
			BusID:      "BUS002",
			Driver:     "Amit",
			Lat:        fleet.Float64Ptr(12.9652),
			Lng:        fleet.Float64Ptr(77.5935),
			Route:      "102",
			Status:     fleet.StatusOnline,
			LastUpdate: millis,
		},
	}

	for _, rec := range sample {
		if err := store.Put(ctx, rec); err != nil {
			return fmt.Errorf("seed %s: %w", rec.BusID, err)
		}
	}

	log.Info(logger.Entry{
		Action:  "store_seeded",
		Message: fmt.Sprintf("seeded %d sample buses", len(sample)),
	})

	return nil
}
