package usecase

import (
	"context"
	"strconv"
	"sync"
	"time"

	in "bustracker/internal/driver/application/ports/in"
	out "bustracker/internal/driver/application/ports/out"
	"bustracker/internal/driver/domain"
	fleet "bustracker/internal/fleet/domain"
	"bustracker/internal/shared/config"
	"bustracker/internal/shared/logger"

	"github.com/go-playground/validator/v10"
)

type shareService struct {
	fleet    out.FleetWriter
	source   out.LocationSource
	geo      config.GeoConfig
	validate *validator.Validate
	log      *logger.Logger
	now      func() time.Time

	mu          sync.Mutex
	sharing     bool
	cancelWatch context.CancelFunc
	done        chan struct{}
	busID       string
	display     in.DisplayState
}

// NewShareService создает publisher водительской стороны.
// Одна сессия шаринга на инстанс; состояние живет в полях сервиса,
// без глобальных переменных.
func NewShareService(
	fleetWriter out.FleetWriter,
	source out.LocationSource,
	geo config.GeoConfig,
	log *logger.Logger,
) in.ShareUseCase {
	return &shareService{
		fleet:    fleetWriter,
		source:   source,
		geo:      geo,
		validate: validator.New(),
		log:      log,
		now:      time.Now,
	}
}

func (s *shareService) Start(ctx context.Context, input in.StartShareInput) (*in.StartShareOutput, error) {
	if err := s.validate.Struct(input); err != nil {
		s.log.Warn(logger.Entry{
			Action:  "share_start_invalid_input",
			Message: err.Error(),
		})
		return nil, domain.ErrShareFieldsMissing
	}

	s.mu.Lock()
	if s.sharing {
		s.mu.Unlock()
		return nil, domain.ErrAlreadySharing
	}

	// Сессия переживает HTTP запрос: watch живет до явного Stop.
	watchCtx, cancel := context.WithCancel(context.Background())

	samples, err := s.source.Watch(watchCtx, out.FixOptions{
		HighAccuracy: true,
		MaxAge:       s.geo.MaxAge,
		Timeout:      s.geo.Timeout,
	})
	if err != nil {
		cancel()
		s.mu.Unlock()
		s.log.Error(logger.Entry{
			Action:  "share_start_watch_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
			BusID:   input.BusID,
		})
		return nil, err
	}

	done := make(chan struct{})
	s.sharing = true
	s.cancelWatch = cancel
	s.done = done
	s.busID = input.BusID
	s.display.Sharing = true
	s.display.Alert = "Sharing live location..."
	s.mu.Unlock()

	go s.run(watchCtx, samples, input, done)

	s.log.Info(logger.Entry{
		Action:  "share_started",
		Message: "driver location sharing started",
		BusID:   input.BusID,
		Additional: map[string]any{
			"driver": input.DriverName,
			"route":  input.Route,
		},
	})

	return &in.StartShareOutput{
		Status:  "sharing",
		Message: "Sharing live location...",
	}, nil
}

func (s *shareService) run(ctx context.Context, samples <-chan out.Fix, input in.StartShareInput, done chan struct{}) {
	defer close(done)

	for {
		select {
		case <-ctx.Done():
			return
		case fix, ok := <-samples:
			if !ok {
				return
			}
			s.handleFix(ctx, fix, input)
		}
	}
}

func (s *shareService) handleFix(ctx context.Context, fix out.Fix, input in.StartShareInput) {
	if fix.Err != nil {
		// ошибка сэмпла не завершает сессию: ждем следующий fix
		s.log.Warn(logger.Entry{
			Action:  "share_fix_error",
			Message: fix.Err.Error(),
			BusID:   input.BusID,
		})
		s.mu.Lock()
		s.display.Alert = "Error reading position: " + fix.Err.Error()
		s.mu.Unlock()
		return
	}

	millis := s.now().UnixMilli()

	s.mu.Lock()
	s.display.Lat = formatCoord(fix.Lat)
	s.display.Lng = formatCoord(fix.Lng)
	s.display.LastUpdate = time.UnixMilli(millis).Format("15:04:05")
	s.display.Alert = "Sharing live location..."
	s.mu.Unlock()

	rec := fleet.BusRecord{
		BusID:      input.BusID,
		Driver:     input.DriverName,
		Lat:        fleet.Float64Ptr(fix.Lat),
		Lng:        fleet.Float64Ptr(fix.Lng),
		Route:      input.Route,
		Status:     fleet.StatusOnline,
		LastUpdate: millis,
	}

	// fire-and-forget: потерянная запись просто теряется,
	// без retry и без очереди
	if err := s.fleet.Put(ctx, rec); err != nil {
		s.log.Error(logger.Entry{
			Action:  "share_put_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
			BusID:   input.BusID,
		})
	}

	if err := s.fleet.AppendHistory(ctx, input.BusID, fleet.HistoryEntry{
		Lat:       fix.Lat,
		Lng:       fix.Lng,
		Timestamp: millis,
	}); err != nil {
		s.log.Error(logger.Entry{
			Action:  "share_history_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
			BusID:   input.BusID,
		})
	}

	s.log.Debug(logger.Entry{
		Action:  "share_sample_published",
		Message: "bus record overwritten, history appended",
		BusID:   input.BusID,
		Additional: map[string]any{
			"lat": fix.Lat,
			"lng": fix.Lng,
		},
	})
}

func (s *shareService) Stop(ctx context.Context) (*in.StopShareOutput, error) {
	s.mu.Lock()
	if !s.sharing {
		s.mu.Unlock()
		return nil, domain.ErrNotSharing
	}

	cancel := s.cancelWatch
	done := s.done
	busID := s.busID
	s.sharing = false
	s.cancelWatch = nil
	s.done = nil
	s.busID = ""
	s.mu.Unlock()

	// останавливаем watch и дожидаемся выхода цикла, чтобы после
	// patch не проскочила отставшая полная запись
	cancel()
	<-done

	if busID != "" {
		if err := s.fleet.PatchStatus(ctx, busID, fleet.StatusOffline, s.now().UnixMilli()); err != nil {
			s.log.Error(logger.Entry{
				Action:  "share_stop_patch_failed",
				Message: err.Error(),
				Error:   &logger.ErrObj{Msg: err.Error()},
				BusID:   busID,
			})
		}
	}

	s.mu.Lock()
	s.display.Sharing = false
	s.display.Alert = "Stopped sharing"
	s.mu.Unlock()

	s.log.Info(logger.Entry{
		Action:  "share_stopped",
		Message: "driver location sharing stopped",
		BusID:   busID,
	})

	return &in.StopShareOutput{
		Status:  "idle",
		Message: "Stopped sharing",
	}, nil
}

func (s *shareService) LocateOnce(ctx context.Context) (*in.LocateOnceOutput, error) {
	fix, err := s.source.Current(ctx, out.FixOptions{HighAccuracy: true})
	if err != nil {
		s.log.Warn(logger.Entry{
			Action:  "locate_once_failed",
			Message: err.Error(),
		})
		return nil, err
	}

	s.mu.Lock()
	s.display.Lat = formatCoord(fix.Lat)
	s.display.Lng = formatCoord(fix.Lng)
	s.display.LastUpdate = s.now().Format("15:04:05")
	s.mu.Unlock()

	return &in.LocateOnceOutput{
		Lat: formatCoord(fix.Lat),
		Lng: formatCoord(fix.Lng),
	}, nil
}

func (s *shareService) Display() in.DisplayState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.display
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
