package usecase

import (
	"context"
	"fmt"
	"time"

	in "bustracker/internal/admin/application/ports/in"
	out "bustracker/internal/admin/application/ports/out"
	"bustracker/internal/admin/domain"
	fleet "bustracker/internal/fleet/domain"
	"bustracker/internal/shared/logger"

	"github.com/go-playground/validator/v10"
)

type registerBusUseCase struct {
	store    out.FleetStore
	validate *validator.Validate
	log      *logger.Logger
	now      func() time.Time
}

func NewRegisterBusUseCase(store out.FleetStore, log *logger.Logger) in.RegisterBusUseCase {
	return &registerBusUseCase{
		store:    store,
		validate: validator.New(),
		log:      log,
		now:      time.Now,
	}
}

func (uc *registerBusUseCase) Execute(ctx context.Context, input in.RegisterBusInput) (*in.RegisterBusOutput, error) {
	if err := uc.validate.Struct(input); err != nil {
		uc.log.Warn(logger.Entry{
			Action:  "register_bus_invalid_input",
			Message: err.Error(),
		})
		return nil, domain.ErrRegisterFieldsMissing
	}

	// полная перезапись с дефолтными полями
	rec := fleet.BusRecord{
		BusID:      input.BusID,
		Driver:     fleet.DriverUnassigned,
		Lat:        fleet.Float64Ptr(fleet.FallbackLat),
		Lng:        fleet.Float64Ptr(fleet.FallbackLng),
		Route:      input.Route,
		Status:     fleet.StatusOffline,
		LastUpdate: uc.now().UnixMilli(),
	}

	if err := uc.store.Put(ctx, rec); err != nil {
		uc.log.Error(logger.Entry{
			Action:  "register_bus_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
			BusID:   input.BusID,
		})
		return nil, fmt.Errorf("register bus: %w", err)
	}

	uc.log.Info(logger.Entry{
		Action:  "bus_registered",
		Message: "bus record created or replaced",
		BusID:   input.BusID,
		Additional: map[string]any{
			"route": input.Route,
		},
	})

	return &in.RegisterBusOutput{
		BusID:   input.BusID,
		Message: fmt.Sprintf("Registered %s", input.BusID),
	}, nil
}
