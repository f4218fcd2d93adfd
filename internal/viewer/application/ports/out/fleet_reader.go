package out

import (
	"context"

	fleet "bustracker/internal/fleet/domain"
)

// FleetReader — одноразовые чтения Fleet Store со стороны viewer.
type FleetReader interface {
	Snapshot(ctx context.Context) (fleet.Snapshot, error)
	SnapshotByRoute(ctx context.Context, route string) (fleet.Snapshot, error)
}
