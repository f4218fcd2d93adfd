package out

import (
	"context"

	fleet "bustracker/internal/fleet/domain"
)

// FleetStore — доступ к хранилищу флота со стороны админки.
type FleetStore interface {
	Put(ctx context.Context, rec fleet.BusRecord) error
	Empty(ctx context.Context) (bool, error)
}
