package out

import (
	"context"

	fleet "bustracker/internal/fleet/domain"
)

// FleetWriter — запись во Fleet Store со стороны водителя.
type FleetWriter interface {
	Put(ctx context.Context, rec fleet.BusRecord) error
	PatchStatus(ctx context.Context, busID, status string, lastUpdate int64) error
	AppendHistory(ctx context.Context, busID string, entry fleet.HistoryEntry) error
}
